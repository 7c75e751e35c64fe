package report

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/trainer"
)

type (
	Repository interface {
		// Upsert stores `r` as the report of its session, replacing the existing one if any.
		// It sets the ID and CreatedAt of `r`; a replaced report keeps its ID and CreatedAt.
		Upsert(ctx context.Context, r *Report) error
		Get(ctx context.Context, id int64) (Report, error)
		BySession(ctx context.Context, sessionID int64) ([]Report, error)
		ByTrainer(ctx context.Context, trainerID int64) ([]Report, error)
		QueryAll(ctx context.Context) ([]Report, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		Delete(ctx context.Context, id int64) error
	}

	Sessions interface {
		Get(ctx context.Context, id int64) (session.Session, error)
		GetMany(ctx context.Context, ids []int64) ([]session.Session, error)
	}

	Courses interface {
		GetMany(ctx context.Context, ids []int64) ([]course.Course, error)
	}

	Trainers interface {
		GetMany(ctx context.Context, ids []int64) ([]trainer.Trainer, error)
	}

	Service struct {
		repo     Repository
		sessions Sessions
		courses  Courses
		trainers Trainers
		now      core.NowFunc
	}
)

func NewService(repo Repository, sessions Sessions, courses Courses, trainers Trainers, now core.NowFunc) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(sessions, "sessions"),
		vala.IsNotNil(courses, "courses"),
		vala.IsNotNil(trainers, "trainers"),
	).CheckAndPanic()
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, sessions: sessions, courses: courses, trainers: trainers, now: now}
}

// Submit stores the report of a session. The latest submission wins and goes back to review.
func (svc *Service) Submit(ctx context.Context, nr NewReport) (Report, error) {
	if err := nr.Validate(); err != nil {
		return Report{}, err
	}
	s, err := svc.sessions.Get(ctx, nr.SessionID)
	if err != nil {
		if core.IsNotFound(err) {
			return Report{}, core.NewFieldValidationError("session_id", "session does not exist")
		}
		return Report{}, err
	}
	if s.TrainerID != nr.TrainerID {
		return Report{}, core.NewFieldValidationError("trainer_id", "trainer does not run this session")
	}
	r := Report{
		SessionID:   nr.SessionID,
		TrainerID:   nr.TrainerID,
		Kind:        nr.Kind,
		Content:     nr.Content,
		SubmittedAt: core.FormatDate(svc.now()),
		Status:      StatusSubmitted,
	}
	if err = svc.repo.Upsert(ctx, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Review sets the review status of report `id`.
func (svc *Service) Review(ctx context.Context, id int64, status string) (Report, error) {
	if !IsReviewStatus(status) {
		return Report{}, core.NewFieldValidationError("status", fmt.Sprintf("%q is not a review status", status))
	}
	if err := svc.repo.Update(ctx, id, core.Fields{"status": status}); err != nil {
		return Report{}, err
	}
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Get(ctx context.Context, id int64) (Report, error) {
	return svc.repo.Get(ctx, id)
}

// BySession returns the report of session `sessionID`, and false when none was submitted.
func (svc *Service) BySession(ctx context.Context, sessionID int64) (Report, bool, error) {
	rs, err := svc.repo.BySession(ctx, sessionID)
	if err != nil || len(rs) == 0 {
		return Report{}, false, err
	}
	return rs[0], true, nil
}

func (svc *Service) ByTrainer(ctx context.Context, trainerID int64) ([]Report, error) {
	return svc.repo.ByTrainer(ctx, trainerID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Report, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.Delete(ctx, id)
}

// WithDetails returns every report with its session label, course title and trainer name.
// Dangling references are rendered with placeholders.
func (svc *Service) WithDetails(ctx context.Context) ([]Details, error) {
	reports, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	sessionIDs := make([]int64, 0, len(reports))
	trainerIDs := make([]int64, 0, len(reports))
	for _, r := range reports {
		sessionIDs = append(sessionIDs, r.SessionID)
		trainerIDs = append(trainerIDs, r.TrainerID)
	}
	sessions, err := svc.sessions.GetMany(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	courseIDs := make([]int64, 0, len(sessions))
	sessionsByID := make(map[int64]session.Session, len(sessions))
	for _, s := range sessions {
		sessionsByID[s.ID] = s
		courseIDs = append(courseIDs, s.CourseID)
	}
	courses, err := svc.courses.GetMany(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	trainers, err := svc.trainers.GetMany(ctx, trainerIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(trainers))
	for _, tr := range trainers {
		names[tr.ID] = tr.FullName()
	}

	res := make([]Details, 0, len(reports))
	for _, r := range reports {
		d := Details{
			Report:       r,
			SessionLabel: UnknownSession,
			CourseTitle:  session.UnknownCourse,
			TrainerName:  session.UnknownTrainer,
		}
		if s, ok := sessionsByID[r.SessionID]; ok {
			d.SessionLabel = s.Label()
			if title, ok := titles[s.CourseID]; ok {
				d.CourseTitle = title
			}
		}
		if name, ok := names[r.TrainerID]; ok {
			d.TrainerName = name
		}
		res = append(res, d)
	}
	return res, nil
}
