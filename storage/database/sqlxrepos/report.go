package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/report"
)

type reportRepository struct {
	t *Tables
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(t *Tables) *reportRepository {
	return &reportRepository{t: t}
}

func (repo *reportRepository) Upsert(ctx context.Context, r *report.Report) error {
	return repo.t.InTx(ctx, func(tx *Tables) error {
		existing, err := tx.Reports.ByIndex(ctx, idxSession, r.SessionID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			_, err = tx.Reports.Add(ctx, r)
			return err
		}
		r.ID = existing[0].ID
		r.CreatedAt = existing[0].CreatedAt
		_, err = tx.Reports.Update(ctx, r.ID, core.Fields{
			"trainer_id":   r.TrainerID,
			"kind":         r.Kind,
			"content":      r.Content,
			"submitted_at": r.SubmittedAt,
			"status":       r.Status,
		})
		return err
	})
}

func (repo *reportRepository) Get(ctx context.Context, id int64) (report.Report, error) {
	r, err := repo.t.Reports.Get(ctx, id)
	return r, notFound(err, "report", id)
}

func (repo *reportRepository) BySession(ctx context.Context, sessionID int64) ([]report.Report, error) {
	return repo.t.Reports.ByIndex(ctx, idxSession, sessionID)
}

func (repo *reportRepository) ByTrainer(ctx context.Context, trainerID int64) ([]report.Report, error) {
	return repo.t.Reports.ByIndex(ctx, idxTrainer, trainerID)
}

func (repo *reportRepository) QueryAll(ctx context.Context) ([]report.Report, error) {
	return repo.t.Reports.All(ctx, core.DBOrdering{Field: "submitted_at", Ascending: false})
}

func (repo *reportRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Reports.Update(ctx, id, fields)
	return updated(n, err, "report", id)
}

func (repo *reportRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.Reports.Delete(ctx, id)
}
