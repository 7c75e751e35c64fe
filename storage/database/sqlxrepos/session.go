package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/session"
)

type sessionRepository struct {
	t *Tables
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(t *Tables) *sessionRepository {
	return &sessionRepository{t: t}
}

func (repo *sessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := repo.t.Sessions.Add(ctx, s)
	return err
}

func (repo *sessionRepository) Get(ctx context.Context, id int64) (session.Session, error) {
	s, err := repo.t.Sessions.Get(ctx, id)
	return s, notFound(err, "session", id)
}

func (repo *sessionRepository) GetMany(ctx context.Context, ids []int64) ([]session.Session, error) {
	return repo.t.Sessions.GetMany(ctx, ids)
}

func (repo *sessionRepository) QueryAll(ctx context.Context) ([]session.Session, error) {
	return repo.t.Sessions.All(ctx,
		core.DBOrdering{Field: "date", Ascending: true},
		core.DBOrdering{Field: "start_time", Ascending: true},
	)
}

func (repo *sessionRepository) ByDate(ctx context.Context, date string) ([]session.Session, error) {
	return repo.t.Sessions.ByIndex(ctx, idxDate, date)
}

func (repo *sessionRepository) ByCourse(ctx context.Context, courseID int64) ([]session.Session, error) {
	return repo.t.Sessions.ByIndex(ctx, idxCourse, courseID)
}

func (repo *sessionRepository) ByTrainer(ctx context.Context, trainerID int64) ([]session.Session, error) {
	return repo.t.Sessions.ByIndex(ctx, idxTrainer, trainerID)
}

func (repo *sessionRepository) ByStatus(ctx context.Context, status string) ([]session.Session, error) {
	return repo.t.Sessions.ByIndex(ctx, idxStatus, status)
}

func (repo *sessionRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Sessions.Update(ctx, id, fields)
	return updated(n, err, "session", id)
}

func (repo *sessionRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.InTx(ctx, func(tx *Tables) error {
		if _, err := tx.Assignments.DeleteByIndex(ctx, idxSession, id); err != nil {
			return err
		}
		if _, err := tx.Attendance.DeleteByIndex(ctx, idxSession, id); err != nil {
			return err
		}
		if _, err := tx.TrainerAttendance.DeleteByIndex(ctx, idxSession, id); err != nil {
			return err
		}
		if _, err := tx.Reports.DeleteByIndex(ctx, idxSession, id); err != nil {
			return err
		}
		return tx.Sessions.Delete(ctx, id)
	})
}
