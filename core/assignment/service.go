// Package assignment links learners to the sessions they are expected to attend.
package assignment

import (
	"context"
	"sort"
	"time"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/session"
)

// Assignment is the (session, learner) pair. A pair is stored at most once.
type Assignment struct {
	ID        int64     `db:"id" json:"id"`
	SessionID int64     `db:"session_id" json:"session_id"`
	LearnerID int64     `db:"learner_id" json:"learner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type (
	Repository interface {
		// Create stores `a` and sets its ID and CreatedAt.
		// It fails with *core.DuplicateAssignmentError when the pair already exists.
		Create(ctx context.Context, a *Assignment) error
		BySession(ctx context.Context, sessionID int64) ([]Assignment, error)
		ByLearner(ctx context.Context, learnerID int64) ([]Assignment, error)
		// Replace makes `learnerIDs` the exact set of learners of the session, in one transaction:
		// missing pairs are added, extra pairs removed, kept pairs left untouched.
		Replace(ctx context.Context, sessionID int64, learnerIDs []int64) (added, removed int, err error)
		Delete(ctx context.Context, sessionID, learnerID int64) error
		DeleteBySession(ctx context.Context, sessionID int64) error
	}

	Sessions interface {
		Get(ctx context.Context, id int64) (session.Session, error)
		GetMany(ctx context.Context, ids []int64) ([]session.Session, error)
	}

	Learners interface {
		Get(ctx context.Context, id int64) (learner.Learner, error)
		GetMany(ctx context.Context, ids []int64) ([]learner.Learner, error)
	}

	Service struct {
		repo     Repository
		sessions Sessions
		learners Learners
	}
)

func NewService(repo Repository, sessions Sessions, learners Learners) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(sessions, "sessions"),
		vala.IsNotNil(learners, "learners"),
	).CheckAndPanic()
	return &Service{repo: repo, sessions: sessions, learners: learners}
}

func (svc *Service) checkSession(ctx context.Context, id int64) error {
	if _, err := svc.sessions.Get(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldValidationError("session_id", "session does not exist")
		}
		return err
	}
	return nil
}

// Assign adds learner `learnerID` to session `sessionID`.
func (svc *Service) Assign(ctx context.Context, sessionID, learnerID int64) (Assignment, error) {
	if err := svc.checkSession(ctx, sessionID); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.learners.Get(ctx, learnerID); err != nil {
		if core.IsNotFound(err) {
			return Assignment{}, core.NewFieldValidationError("learner_id", "learner does not exist")
		}
		return Assignment{}, err
	}
	a := Assignment{SessionID: sessionID, LearnerID: learnerID}
	if err := svc.repo.Create(ctx, &a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// AssignMany replaces the learners of session `sessionID` with `learnerIDs`.
// Running it twice with the same set changes nothing.
func (svc *Service) AssignMany(ctx context.Context, sessionID int64, learnerIDs []int64) (added, removed int, err error) {
	if err = svc.checkSession(ctx, sessionID); err != nil {
		return 0, 0, err
	}
	ids := dedupe(learnerIDs)
	found, err := svc.learners.GetMany(ctx, ids)
	if err != nil {
		return 0, 0, err
	}
	if len(found) != len(ids) {
		return 0, 0, core.NewFieldValidationError("learner_ids", "some learners do not exist")
	}
	return svc.repo.Replace(ctx, sessionID, ids)
}

// LearnersFor returns the learners assigned to session `sessionID`. Deleted learners are skipped.
func (svc *Service) LearnersFor(ctx context.Context, sessionID int64) ([]learner.Learner, error) {
	as, err := svc.repo.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.LearnerID)
	}
	if len(ids) == 0 {
		return []learner.Learner{}, nil
	}
	return svc.learners.GetMany(ctx, ids)
}

// LearnerIDsFor returns the ids of the learners assigned to session `sessionID`.
func (svc *Service) LearnerIDsFor(ctx context.Context, sessionID int64) ([]int64, error) {
	as, err := svc.repo.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.LearnerID)
	}
	return ids, nil
}

// SessionsFor returns the sessions learner `learnerID` is assigned to. Deleted sessions are skipped.
func (svc *Service) SessionsFor(ctx context.Context, learnerID int64) ([]session.Session, error) {
	as, err := svc.repo.ByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.SessionID)
	}
	if len(ids) == 0 {
		return []session.Session{}, nil
	}
	return svc.sessions.GetMany(ctx, ids)
}

// IsAssigned reports whether learner `learnerID` is assigned to session `sessionID`.
func (svc *Service) IsAssigned(ctx context.Context, sessionID, learnerID int64) (bool, error) {
	as, err := svc.repo.BySession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, a := range as {
		if a.LearnerID == learnerID {
			return true, nil
		}
	}
	return false, nil
}

func (svc *Service) Unassign(ctx context.Context, sessionID, learnerID int64) error {
	return svc.repo.Delete(ctx, sessionID, learnerID)
}

func (svc *Service) UnassignAll(ctx context.Context, sessionID int64) error {
	return svc.repo.DeleteBySession(ctx, sessionID)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
