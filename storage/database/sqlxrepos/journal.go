package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	coresync "github.com/trezcool/presence/core/sync"
	"github.com/trezcool/presence/storage/database/entitystore"
)

const lastPushKey = "sync_last_push"

// Journal appends every entity write to the sync_changes table, within the writer's transaction,
// and serves the pending entries to the sync service.
type Journal struct {
	db  *sqlx.DB
	now core.NowFunc
}

var (
	_ entitystore.ChangeHook = (*Journal)(nil)
	_ coresync.Repository    = (*Journal)(nil)
)

func NewJournal(db *sqlx.DB, now core.NowFunc) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{db: db, now: now}
}

func (j *Journal) RecordChange(
	ctx context.Context,
	ex entitystore.Executor,
	table string,
	op entitystore.Operation,
	id int64,
	payload interface{},
) error {
	var data string
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %d change", table, id)
		}
		data = string(raw)
	}
	_, err := ex.ExecContext(ctx,
		"INSERT INTO sync_changes (id, table_name, operation, record_id, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), table, string(op), id, data, j.now(),
	)
	if err != nil {
		return core.NewStorageError("sync_changes.append", err)
	}
	return nil
}

func (j *Journal) Pending(ctx context.Context, limit int) ([]coresync.ChangeRecord, error) {
	var changes []coresync.ChangeRecord
	if err := sqlx.SelectContext(ctx, j.db, &changes, "SELECT * FROM sync_changes ORDER BY seq LIMIT ?", limit); err != nil {
		return nil, core.NewStorageError("sync_changes.pending", err)
	}
	return changes, nil
}

func (j *Journal) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, j.db, &n, "SELECT COUNT(*) FROM sync_changes"); err != nil {
		return 0, core.NewStorageError("sync_changes.count", err)
	}
	return n, nil
}

func (j *Journal) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM sync_changes WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building IN query")
	}
	if _, err = j.db.ExecContext(ctx, j.db.Rebind(q), args...); err != nil {
		return core.NewStorageError("sync_changes.remove", err)
	}
	return nil
}

// Clear empties the journal.
func (j *Journal) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, "DELETE FROM sync_changes"); err != nil {
		return core.NewStorageError("sync_changes.clear", err)
	}
	return nil
}

func (j *Journal) LastPush(ctx context.Context) (time.Time, error) {
	raw, ok, err := loadState(ctx, j.db, lastPushKey)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

func (j *Journal) SetLastPush(ctx context.Context, t time.Time) error {
	return storeState(ctx, j.db, lastPushKey, t.Format(time.RFC3339))
}
