package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/course"
)

type courseRepository struct {
	t *Tables
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(t *Tables) *courseRepository {
	return &courseRepository{t: t}
}

func (repo *courseRepository) Create(ctx context.Context, c *course.Course) error {
	_, err := repo.t.Courses.Add(ctx, c)
	return err
}

func (repo *courseRepository) Get(ctx context.Context, id int64) (course.Course, error) {
	c, err := repo.t.Courses.Get(ctx, id)
	return c, notFound(err, "course", id)
}

func (repo *courseRepository) GetMany(ctx context.Context, ids []int64) ([]course.Course, error) {
	return repo.t.Courses.GetMany(ctx, ids)
}

func (repo *courseRepository) QueryAll(ctx context.Context) ([]course.Course, error) {
	return repo.t.Courses.All(ctx, core.DBOrdering{Field: "title", Ascending: true})
}

func (repo *courseRepository) ByTrainer(ctx context.Context, trainerID int64) ([]course.Course, error) {
	return repo.t.Courses.ByIndex(ctx, idxTrainer, trainerID)
}

func (repo *courseRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Courses.Update(ctx, id, fields)
	return updated(n, err, "course", id)
}

func (repo *courseRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.Courses.Delete(ctx, id)
}

func (repo *courseRepository) SessionCount(ctx context.Context, id int64) (int64, error) {
	return repo.t.Sessions.CountByIndex(ctx, idxCourse, id)
}
