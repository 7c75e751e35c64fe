package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/learner"
)

type learnerRepository struct {
	t *Tables
}

var _ learner.Repository = (*learnerRepository)(nil)

func NewLearnerRepository(t *Tables) *learnerRepository {
	return &learnerRepository{t: t}
}

func (repo *learnerRepository) Create(ctx context.Context, l *learner.Learner) error {
	_, err := repo.t.Learners.Add(ctx, l)
	return err
}

func (repo *learnerRepository) CreateMany(ctx context.Context, ls []learner.Learner) ([]learner.Learner, error) {
	res := make([]learner.Learner, len(ls))
	copy(res, ls)
	err := repo.t.InTx(ctx, func(tx *Tables) error {
		for i := range res {
			if _, err := tx.Learners.Add(ctx, &res[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (repo *learnerRepository) Get(ctx context.Context, id int64) (learner.Learner, error) {
	l, err := repo.t.Learners.Get(ctx, id)
	return l, notFound(err, "learner", id)
}

func (repo *learnerRepository) GetMany(ctx context.Context, ids []int64) ([]learner.Learner, error) {
	return repo.t.Learners.GetMany(ctx, ids)
}

func (repo *learnerRepository) QueryAll(ctx context.Context) ([]learner.Learner, error) {
	return repo.t.Learners.All(ctx, core.DBOrdering{Field: "surname", Ascending: true}, core.DBOrdering{Field: "name", Ascending: true})
}

func (repo *learnerRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Learners.Update(ctx, id, fields)
	return updated(n, err, "learner", id)
}

func (repo *learnerRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.InTx(ctx, func(tx *Tables) error {
		if _, err := tx.Assignments.DeleteByIndex(ctx, idxLearner, id); err != nil {
			return err
		}
		if _, err := tx.Attendance.DeleteByIndex(ctx, idxLearner, id); err != nil {
			return err
		}
		return tx.Learners.Delete(ctx, id)
	})
}
