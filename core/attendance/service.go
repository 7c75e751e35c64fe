// Package attendance records who attended a session, inside the daily presence window only.
package attendance

import (
	"context"
	"time"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/presence"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/trainer"
)

type (
	Repository interface {
		// Upsert sets the attendance of the (session, learner) pair and returns the id of its record,
		// the existing one when the pair was already marked. Lookup and write happen in one transaction.
		Upsert(ctx context.Context, sessionID, learnerID int64, present bool, recordedAt string) (int64, error)
		// UpsertTrainer does the same for the (session, trainer) pair.
		UpsertTrainer(ctx context.Context, sessionID, trainerID int64, present bool, recordedAt string) (int64, error)
		BySession(ctx context.Context, sessionID int64) ([]Record, error)
		ByLearner(ctx context.Context, learnerID int64) ([]Record, error)
		TrainerBySession(ctx context.Context, sessionID int64) ([]TrainerRecord, error)
		TrainerByTrainer(ctx context.Context, trainerID int64) ([]TrainerRecord, error)
	}

	Sessions interface {
		Get(ctx context.Context, id int64) (session.Session, error)
	}

	Learners interface {
		Get(ctx context.Context, id int64) (learner.Learner, error)
		GetMany(ctx context.Context, ids []int64) ([]learner.Learner, error)
	}

	Trainers interface {
		Get(ctx context.Context, id int64) (trainer.Trainer, error)
	}

	Assignments interface {
		LearnerIDsFor(ctx context.Context, sessionID int64) ([]int64, error)
	}

	// Windows returns the attendance window currently in force.
	Windows interface {
		Window(ctx context.Context) (presence.Window, error)
	}

	Service struct {
		repo        Repository
		sessions    Sessions
		learners    Learners
		trainers    Trainers
		assignments Assignments
		windows     Windows
		now         core.NowFunc
	}
)

type Option func(*Service)

// WithNowFunc replaces the clock the presence window is checked against.
func WithNowFunc(fn core.NowFunc) Option {
	return func(svc *Service) { svc.now = fn }
}

func NewService(
	repo Repository,
	sessions Sessions,
	learners Learners,
	trainers Trainers,
	assignments Assignments,
	windows Windows,
	opts ...Option,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(sessions, "sessions"),
		vala.IsNotNil(learners, "learners"),
		vala.IsNotNil(trainers, "trainers"),
		vala.IsNotNil(assignments, "assignments"),
		vala.IsNotNil(windows, "windows"),
	).CheckAndPanic()

	svc := &Service{
		repo:        repo,
		sessions:    sessions,
		learners:    learners,
		trainers:    trainers,
		assignments: assignments,
		windows:     windows,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) session(ctx context.Context, id int64) (session.Session, error) {
	s, err := svc.sessions.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return session.Session{}, core.NewFieldValidationError("session_id", "session does not exist")
		}
		return session.Session{}, err
	}
	return s, nil
}

// gate returns the HH:mm time to record, or *core.PresenceWindowExpiredError when the window is closed.
func (svc *Service) gate(ctx context.Context, s session.Session) (string, error) {
	w, err := svc.windows.Window(ctx)
	if err != nil {
		return "", err
	}
	now := svc.now()
	if !presence.CanMark(s.Date, now, w) {
		return "", w.ExpiredError()
	}
	return core.FormatTime(now), nil
}

// CanMarkPresence reports whether attendance for session `sessionID` may be recorded right now.
func (svc *Service) CanMarkPresence(ctx context.Context, sessionID int64) (bool, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	w, err := svc.windows.Window(ctx)
	if err != nil {
		return false, err
	}
	return presence.CanMark(s.Date, svc.now(), w), nil
}

// MarkPresence records whether learner `learnerID` attended session `sessionID` and returns the record id.
func (svc *Service) MarkPresence(ctx context.Context, sessionID, learnerID int64, present bool) (int64, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if _, err = svc.learners.Get(ctx, learnerID); err != nil {
		if core.IsNotFound(err) {
			return 0, core.NewFieldValidationError("learner_id", "learner does not exist")
		}
		return 0, err
	}
	recordedAt, err := svc.gate(ctx, s)
	if err != nil {
		return 0, err
	}
	return svc.repo.Upsert(ctx, sessionID, learnerID, present, recordedAt)
}

// MarkTrainerPresence records whether the trainer of session `sessionID` attended it.
func (svc *Service) MarkTrainerPresence(ctx context.Context, sessionID, trainerID int64, present bool) (int64, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if _, err = svc.trainers.Get(ctx, trainerID); err != nil {
		if core.IsNotFound(err) {
			return 0, core.NewFieldValidationError("trainer_id", "trainer does not exist")
		}
		return 0, err
	}
	if s.TrainerID != trainerID {
		return 0, core.NewFieldValidationError("trainer_id", "trainer does not run this session")
	}
	recordedAt, err := svc.gate(ctx, s)
	if err != nil {
		return 0, err
	}
	return svc.repo.UpsertTrainer(ctx, sessionID, trainerID, present, recordedAt)
}

func (svc *Service) BySession(ctx context.Context, sessionID int64) ([]Record, error) {
	return svc.repo.BySession(ctx, sessionID)
}

func (svc *Service) ByLearner(ctx context.Context, learnerID int64) ([]Record, error) {
	return svc.repo.ByLearner(ctx, learnerID)
}

// TrainerRecordForSession returns the trainer's record for session `sessionID`, and false when none exists.
func (svc *Service) TrainerRecordForSession(ctx context.Context, sessionID int64) (TrainerRecord, bool, error) {
	recs, err := svc.repo.TrainerBySession(ctx, sessionID)
	if err != nil || len(recs) == 0 {
		return TrainerRecord{}, false, err
	}
	return recs[0], true, nil
}

func (svc *Service) TrainerRecordsByTrainer(ctx context.Context, trainerID int64) ([]TrainerRecord, error) {
	return svc.repo.TrainerByTrainer(ctx, trainerID)
}

// WithDetails returns the records of session `sessionID` with each learner's identity,
// or UnknownLearner when the learner is gone.
func (svc *Service) WithDetails(ctx context.Context, sessionID int64) ([]Details, error) {
	recs, err := svc.repo.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.LearnerID)
	}
	learners, err := svc.learners.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]learner.Learner, len(learners))
	for _, l := range learners {
		byID[l.ID] = l
	}

	res := make([]Details, 0, len(recs))
	for _, rec := range recs {
		d := Details{Record: rec, LearnerName: UnknownLearner}
		if l, ok := byID[rec.LearnerID]; ok {
			d.LearnerName = l.FullName()
			d.LearnerEmail = l.Email.String
			d.LearnerPhone = l.Phone.String
		}
		res = append(res, d)
	}
	return res, nil
}

// SessionSummary counts present, absent and unmarked learners among those assigned to session `sessionID`.
func (svc *Service) SessionSummary(ctx context.Context, sessionID int64) (Summary, error) {
	ids, err := svc.assignments.LearnerIDsFor(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	recs, err := svc.repo.BySession(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	marks := make(map[int64]bool, len(recs))
	for _, rec := range recs {
		marks[rec.LearnerID] = rec.Present
	}

	sum := Summary{SessionID: sessionID, Assigned: len(ids)}
	for _, id := range ids {
		present, marked := marks[id]
		switch {
		case !marked:
			sum.Unmarked++
		case present:
			sum.Present++
		default:
			sum.Absent++
		}
	}
	return sum, nil
}
