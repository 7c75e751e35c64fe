package session

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/trainer"
)

type (
	Repository interface {
		// Create stores `s` and sets its ID and CreatedAt.
		Create(ctx context.Context, s *Session) error
		Get(ctx context.Context, id int64) (Session, error)
		GetMany(ctx context.Context, ids []int64) ([]Session, error)
		// QueryAll returns every session, by date then start time.
		QueryAll(ctx context.Context) ([]Session, error)
		ByDate(ctx context.Context, date string) ([]Session, error)
		ByCourse(ctx context.Context, courseID int64) ([]Session, error)
		ByTrainer(ctx context.Context, trainerID int64) ([]Session, error)
		ByStatus(ctx context.Context, status string) ([]Session, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		// Delete removes the session with its assignments, attendance records and report, atomically.
		Delete(ctx context.Context, id int64) error
	}

	Courses interface {
		Get(ctx context.Context, id int64) (course.Course, error)
		GetMany(ctx context.Context, ids []int64) ([]course.Course, error)
	}

	Trainers interface {
		Get(ctx context.Context, id int64) (trainer.Trainer, error)
		GetMany(ctx context.Context, ids []int64) ([]trainer.Trainer, error)
	}

	Service struct {
		repo     Repository
		courses  Courses
		trainers Trainers
	}
)

func NewService(repo Repository, courses Courses, trainers Trainers) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(courses, "courses"),
		vala.IsNotNil(trainers, "trainers"),
	).CheckAndPanic()
	return &Service{repo: repo, courses: courses, trainers: trainers}
}

func (svc *Service) checkReferences(ctx context.Context, courseID, trainerID int64) error {
	if _, err := svc.courses.Get(ctx, courseID); err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldValidationError("course_id", "course does not exist")
		}
		return err
	}
	if _, err := svc.trainers.Get(ctx, trainerID); err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldValidationError("trainer_id", "trainer does not exist")
		}
		return err
	}
	return nil
}

// Create stores a new planned session.
func (svc *Service) Create(ctx context.Context, ns NewSession) (Session, error) {
	if err := ns.Validate(); err != nil {
		return Session{}, err
	}
	if err := svc.checkReferences(ctx, ns.CourseID, ns.TrainerID); err != nil {
		return Session{}, err
	}
	s := Session{
		Date:      ns.Date,
		StartTime: ns.StartTime,
		EndTime:   ns.EndTime,
		CourseID:  ns.CourseID,
		TrainerID: ns.TrainerID,
		Status:    StatusPlanned,
	}
	if err := svc.repo.Create(ctx, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Session, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) GetMany(ctx context.Context, ids []int64) ([]Session, error) {
	return svc.repo.GetMany(ctx, ids)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Session, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) ByDate(ctx context.Context, date string) ([]Session, error) {
	return svc.repo.ByDate(ctx, date)
}

func (svc *Service) ByCourse(ctx context.Context, courseID int64) ([]Session, error) {
	return svc.repo.ByCourse(ctx, courseID)
}

func (svc *Service) ByTrainer(ctx context.Context, trainerID int64) ([]Session, error) {
	return svc.repo.ByTrainer(ctx, trainerID)
}

func (svc *Service) ByStatus(ctx context.Context, status string) ([]Session, error) {
	return svc.repo.ByStatus(ctx, status)
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateSession) (Session, error) {
	orig, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if err = us.Validate(orig); err != nil {
		return Session{}, err
	}
	merged := us.apply(orig)
	if merged.CourseID != orig.CourseID || merged.TrainerID != orig.TrainerID {
		if err = svc.checkReferences(ctx, merged.CourseID, merged.TrainerID); err != nil {
			return Session{}, err
		}
	}
	if err = svc.repo.Update(ctx, id, us.fields()); err != nil {
		return Session{}, err
	}
	return svc.repo.Get(ctx, id)
}

// Transition moves session `id` to `status`: planned to in-progress or completed, in-progress to completed.
func (svc *Service) Transition(ctx context.Context, id int64, status string) (Session, error) {
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !CanTransition(s.Status, status) {
		return Session{}, core.NewFieldValidationError(
			"status", fmt.Sprintf("cannot move a %s session to %q", s.Status, status),
		)
	}
	if err = svc.repo.Update(ctx, id, core.Fields{"status": status}); err != nil {
		return Session{}, err
	}
	s.Status = status
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.Delete(ctx, id)
}

// WithDetails returns the sessions matching `filter` with their course title and trainer name.
// Dangling references are rendered as UnknownCourse and UnknownTrainer.
func (svc *Service) WithDetails(ctx context.Context, filter Filter) ([]Details, error) {
	var (
		sessions []Session
		err      error
	)
	if filter.TrainerID != 0 {
		sessions, err = svc.repo.ByTrainer(ctx, filter.TrainerID)
	} else {
		sessions, err = svc.repo.QueryAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	filtered := sessions[:0]
	for _, s := range sessions {
		if (filter.Date == "" || s.Date == filter.Date) && (filter.Status == "" || s.Status == filter.Status) {
			filtered = append(filtered, s)
		}
	}
	return svc.Details(ctx, filtered)
}

// Details joins `sessions` with their course title and trainer name.
func (svc *Service) Details(ctx context.Context, sessions []Session) ([]Details, error) {
	courseIDs := make([]int64, 0, len(sessions))
	trainerIDs := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		courseIDs = append(courseIDs, s.CourseID)
		trainerIDs = append(trainerIDs, s.TrainerID)
	}
	courses, err := svc.courses.GetMany(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	trainers, err := svc.trainers.GetMany(ctx, trainerIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	names := make(map[int64]string, len(trainers))
	for _, tr := range trainers {
		names[tr.ID] = tr.FullName()
	}

	res := make([]Details, 0, len(sessions))
	for _, s := range sessions {
		d := Details{Session: s, CourseTitle: UnknownCourse, TrainerName: UnknownTrainer}
		if title, ok := titles[s.CourseID]; ok {
			d.CourseTitle = title
		}
		if name, ok := names[s.TrainerID]; ok {
			d.TrainerName = name
		}
		res = append(res, d)
	}
	return res, nil
}
