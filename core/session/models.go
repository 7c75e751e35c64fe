package session

import (
	"fmt"
	"time"

	"github.com/trezcool/presence/core"
)

// Session statuses
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

const (
	UnknownCourse  = "Unknown course"
	UnknownTrainer = "Unknown trainer"

	minDuration = 60  // minutes
	maxDuration = 480 // minutes
)

var (
	Statuses = []string{StatusPlanned, StatusInProgress, StatusCompleted}

	// allowed status moves
	transitions = map[string][]string{
		StatusPlanned:    {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusCompleted},
	}
)

// CanTransition reports whether a session may move from status `from` to status `to`.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is one dated occurrence of a course. Date is yyyy-MM-dd, times are HH:mm, all local.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	Date      string    `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	TrainerID int64     `db:"trainer_id" json:"trainer_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Label formats the session as "yyyy-MM-dd (HH:mm-HH:mm)".
func (s Session) Label() string {
	return fmt.Sprintf("%s (%s-%s)", s.Date, s.StartTime, s.EndTime)
}

// Details is a Session joined with its course title and trainer name.
type Details struct {
	Session
	CourseTitle string `json:"course_title"`
	TrainerName string `json:"trainer_name"`
}

// Filter restricts WithDetails. Zero values match everything.
type Filter struct {
	TrainerID int64
	Date      string
	Status    string
}

// NewSession contains information needed to create a new Session.
type NewSession struct {
	Date      string `json:"date" validate:"required,isodate"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	CourseID  int64  `json:"course_id" validate:"required"`
	TrainerID int64  `json:"trainer_id" validate:"required"`
}

func (ns *NewSession) Validate() error {
	ns.Date = core.CleanString(ns.Date)
	ns.StartTime = core.CleanString(ns.StartTime)
	ns.EndTime = core.CleanString(ns.EndTime)
	if err := core.ValidateStruct(ns); err != nil {
		return err
	}
	return validateSchedule(ns.StartTime, ns.EndTime)
}

// UpdateSession defines what information may be provided to modify an existing Session.
// The status only changes through Service.Transition.
type UpdateSession struct {
	Date      *string `json:"date" validate:"omitnil,isodate"`
	StartTime *string `json:"start_time" validate:"omitnil,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitnil,hhmm"`
	CourseID  *int64  `json:"course_id" validate:"omitnil,gt=0"`
	TrainerID *int64  `json:"trainer_id" validate:"omitnil,gt=0"`
}

// Validate checks the update on its own, then the schedule it produces once applied to `orig`.
func (us *UpdateSession) Validate(orig Session) error {
	for _, s := range []*string{us.Date, us.StartTime, us.EndTime} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	merged := us.apply(orig)
	return validateSchedule(merged.StartTime, merged.EndTime)
}

func (us UpdateSession) apply(s Session) Session {
	if us.Date != nil {
		s.Date = *us.Date
	}
	if us.StartTime != nil {
		s.StartTime = *us.StartTime
	}
	if us.EndTime != nil {
		s.EndTime = *us.EndTime
	}
	if us.CourseID != nil {
		s.CourseID = *us.CourseID
	}
	if us.TrainerID != nil {
		s.TrainerID = *us.TrainerID
	}
	return s
}

func (us UpdateSession) fields() core.Fields {
	f := core.Fields{}
	if us.Date != nil {
		f["date"] = *us.Date
	}
	if us.StartTime != nil {
		f["start_time"] = *us.StartTime
	}
	if us.EndTime != nil {
		f["end_time"] = *us.EndTime
	}
	if us.CourseID != nil {
		f["course_id"] = *us.CourseID
	}
	if us.TrainerID != nil {
		f["trainer_id"] = *us.TrainerID
	}
	return f
}

// validateSchedule checks that the session ends after it starts and lasts between 1 and 8 hours.
func validateSchedule(start, end string) error {
	mins, err := core.MinutesBetween(start, end)
	if err != nil {
		return core.NewFieldValidationError("start_time", err.Error())
	}
	switch {
	case mins <= 0:
		return core.NewFieldValidationError("end_time", "end time must be after start time")
	case mins < minDuration:
		return core.NewFieldValidationError("end_time", fmt.Sprintf("a session lasts at least %d minutes", minDuration))
	case mins > maxDuration:
		return core.NewFieldValidationError("end_time", fmt.Sprintf("a session lasts at most %d minutes", maxDuration))
	}
	return nil
}
