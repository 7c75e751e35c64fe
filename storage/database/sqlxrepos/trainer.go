package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/trainer"
	"github.com/trezcool/presence/storage/database/entitystore"
)

type trainerRepository struct {
	t *Tables
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(t *Tables) *trainerRepository {
	return &trainerRepository{t: t}
}

func (repo *trainerRepository) Create(ctx context.Context, tr *trainer.Trainer) error {
	_, err := repo.t.Trainers.Add(ctx, tr)
	return err
}

func (repo *trainerRepository) Get(ctx context.Context, id int64) (trainer.Trainer, error) {
	tr, err := repo.t.Trainers.Get(ctx, id)
	return tr, notFound(err, "trainer", id)
}

func (repo *trainerRepository) GetMany(ctx context.Context, ids []int64) ([]trainer.Trainer, error) {
	return repo.t.Trainers.GetMany(ctx, ids)
}

func (repo *trainerRepository) GetByEmail(ctx context.Context, email string) (trainer.Trainer, error) {
	tr, err := repo.t.Trainers.FirstByIndex(ctx, idxEmail, email)
	if errors.Is(err, entitystore.ErrNoRecord) {
		return tr, trainer.ErrNotFound
	}
	return tr, err
}

func (repo *trainerRepository) QueryAll(ctx context.Context) ([]trainer.Trainer, error) {
	return repo.t.Trainers.All(ctx, core.DBOrdering{Field: "surname", Ascending: true}, core.DBOrdering{Field: "name", Ascending: true})
}

func (repo *trainerRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Trainers.Update(ctx, id, fields)
	return updated(n, err, "trainer", id)
}

func (repo *trainerRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.Trainers.Delete(ctx, id)
}

func (repo *trainerRepository) Count(ctx context.Context) (int64, error) {
	return repo.t.Trainers.Count(ctx)
}

func (repo *trainerRepository) References(ctx context.Context, id int64) (courses, sessions int64, err error) {
	if courses, err = repo.t.Courses.CountByIndex(ctx, idxTrainer, id); err != nil {
		return 0, 0, err
	}
	if sessions, err = repo.t.Sessions.CountByIndex(ctx, idxTrainer, id); err != nil {
		return 0, 0, err
	}
	return courses, sessions, nil
}
