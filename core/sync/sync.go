// Package sync keeps the journal of local writes waiting to be pushed to a remote backend.
// The remote transport is left to Sender implementations.
package sync

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
)

// Operations
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

const DefaultBatchSize = 50

// ChangeRecord is one journaled write. Seq orders the journal; ID identifies the change remotely.
type ChangeRecord struct {
	Seq       int64     `db:"seq" json:"-"`
	ID        string    `db:"id" json:"id"`
	Table     string    `db:"table_name" json:"table"`
	Operation string    `db:"operation" json:"operation"`
	RecordID  int64     `db:"record_id" json:"record_id"`
	Payload   string    `db:"payload" json:"payload,omitempty"` // JSON
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// Status describes the journal.
type Status struct {
	Pending  int64     `json:"pending"`
	LastPush time.Time `json:"last_push"` // zero when nothing was ever pushed
}

// PushResult counts what a push sent.
type PushResult struct {
	Batches int `json:"batches"`
	Changes int `json:"changes"`
}

type (
	Repository interface {
		// Pending returns up to `limit` journal entries, oldest first.
		Pending(ctx context.Context, limit int) ([]ChangeRecord, error)
		CountPending(ctx context.Context) (int64, error)
		// Remove drops the entries with the given change ids.
		Remove(ctx context.Context, ids []string) error
		Clear(ctx context.Context) error
		LastPush(ctx context.Context) (time.Time, error)
		SetLastPush(ctx context.Context, t time.Time) error
	}

	// Sender delivers a batch of changes to the remote backend.
	Sender interface {
		Send(ctx context.Context, batch []ChangeRecord) error
	}

	Service struct {
		repo      Repository
		batchSize int
		logger    core.Logger
		now       core.NowFunc
	}
)

func NewService(repo Repository, batchSize int, logger core.Logger, now core.NowFunc) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, batchSize: batchSize, logger: logger, now: now}
}

// Pending returns the next batch of changes waiting to be pushed.
func (svc *Service) Pending(ctx context.Context) ([]ChangeRecord, error) {
	return svc.repo.Pending(ctx, svc.batchSize)
}

func (svc *Service) Status(ctx context.Context) (Status, error) {
	n, err := svc.repo.CountPending(ctx)
	if err != nil {
		return Status{}, err
	}
	last, err := svc.repo.LastPush(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Pending: n, LastPush: last}, nil
}

// Push sends the journal through `sender`, batch by batch, dropping each batch once delivered.
// It stops at the first failed batch, which stays in the journal; nothing is retried.
func (svc *Service) Push(ctx context.Context, sender Sender) (PushResult, error) {
	var res PushResult
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		batch, err := svc.repo.Pending(ctx, svc.batchSize)
		if err != nil {
			return res, err
		}
		if len(batch) == 0 {
			break
		}
		if err = sender.Send(ctx, batch); err != nil {
			svc.logger.Warn("sync: batch rejected", err, map[string]interface{}{"size": len(batch)})
			return res, errors.Wrapf(err, "sending batch %d", res.Batches+1)
		}
		ids := make([]string, 0, len(batch))
		for _, c := range batch {
			ids = append(ids, c.ID)
		}
		if err = svc.repo.Remove(ctx, ids); err != nil {
			return res, err
		}
		res.Batches++
		res.Changes += len(batch)
	}
	if res.Batches > 0 {
		if err := svc.repo.SetLastPush(ctx, svc.now()); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Discard drops every pending change without sending it.
func (svc *Service) Discard(ctx context.Context) (int64, error) {
	n, err := svc.repo.CountPending(ctx)
	if err != nil {
		return 0, err
	}
	if err = svc.repo.Clear(ctx); err != nil {
		return 0, err
	}
	svc.logger.Warn("sync: pending changes discarded", map[string]interface{}{"count": n})
	return n, nil
}

// LogSender only logs what would be sent.
type LogSender struct {
	Endpoint string
	Logger   core.Logger
}

func (s LogSender) Send(_ context.Context, batch []ChangeRecord) error {
	s.Logger.Info("sync: batch ready", map[string]interface{}{
		"endpoint": s.Endpoint,
		"size":     len(batch),
		"first":    batch[0].ID,
		"last":     batch[len(batch)-1].ID,
	})
	return nil
}
