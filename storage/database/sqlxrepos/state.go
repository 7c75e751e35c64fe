package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/settings"
)

// stateRepository stores small values by key, apart from the entity tables.
type stateRepository struct {
	db *sqlx.DB
}

var _ settings.Repository = (*stateRepository)(nil)

func NewStateRepository(db *sqlx.DB) *stateRepository {
	return &stateRepository{db: db}
}

func (repo *stateRepository) Load(ctx context.Context, key string) (string, bool, error) {
	return loadState(ctx, repo.db, key)
}

func (repo *stateRepository) Store(ctx context.Context, key, value string) error {
	return storeState(ctx, repo.db, key, value)
}

func loadState(ctx context.Context, q sqlx.QueryerContext, key string) (string, bool, error) {
	var value string
	if err := sqlx.GetContext(ctx, q, &value, "SELECT value FROM app_state WHERE key = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, core.NewStorageError("app_state.load", err)
	}
	return value, true, nil
}

func storeState(ctx context.Context, ex sqlx.ExecerContext, key, value string) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return core.NewStorageError("app_state.store", err)
	}
	return nil
}
