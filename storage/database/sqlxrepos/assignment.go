package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/assignment"
)

type assignmentRepository struct {
	t *Tables
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(t *Tables) *assignmentRepository {
	return &assignmentRepository{t: t}
}

func (repo *assignmentRepository) Create(ctx context.Context, a *assignment.Assignment) error {
	return repo.t.InTx(ctx, func(tx *Tables) error {
		n, err := tx.Assignments.CountByIndex(ctx, idxSessionLearner, a.SessionID, a.LearnerID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &core.DuplicateAssignmentError{SessionID: a.SessionID, LearnerID: a.LearnerID}
		}
		_, err = tx.Assignments.Add(ctx, a)
		return err
	})
}

func (repo *assignmentRepository) BySession(ctx context.Context, sessionID int64) ([]assignment.Assignment, error) {
	return repo.t.Assignments.ByIndex(ctx, idxSession, sessionID)
}

func (repo *assignmentRepository) ByLearner(ctx context.Context, learnerID int64) ([]assignment.Assignment, error) {
	return repo.t.Assignments.ByIndex(ctx, idxLearner, learnerID)
}

func (repo *assignmentRepository) Replace(ctx context.Context, sessionID int64, learnerIDs []int64) (added, removed int, err error) {
	wanted := make(map[int64]bool, len(learnerIDs))
	for _, id := range learnerIDs {
		wanted[id] = true
	}

	err = repo.t.InTx(ctx, func(tx *Tables) error {
		current, err := tx.Assignments.ByIndex(ctx, idxSession, sessionID)
		if err != nil {
			return err
		}
		kept := make(map[int64]bool, len(current))
		for _, a := range current {
			if wanted[a.LearnerID] && !kept[a.LearnerID] {
				kept[a.LearnerID] = true
				continue
			}
			if err = tx.Assignments.Delete(ctx, a.ID); err != nil {
				return err
			}
			removed++
		}
		for _, id := range learnerIDs {
			if kept[id] {
				continue
			}
			if _, err = tx.Assignments.Add(ctx, &assignment.Assignment{SessionID: sessionID, LearnerID: id}); err != nil {
				return err
			}
			kept[id] = true
			added++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, removed, nil
}

func (repo *assignmentRepository) Delete(ctx context.Context, sessionID, learnerID int64) error {
	_, err := repo.t.Assignments.DeleteByIndex(ctx, idxSessionLearner, sessionID, learnerID)
	return err
}

func (repo *assignmentRepository) DeleteBySession(ctx context.Context, sessionID int64) error {
	_, err := repo.t.Assignments.DeleteByIndex(ctx, idxSession, sessionID)
	return err
}
