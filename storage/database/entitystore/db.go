// Package entitystore provides typed tables over the embedded SQLite database: auto-increment keys,
// declared single and compound indexes, and a created_at stamp applied by the store on insert.
// Referential integrity is not enforced here; repositories check foreign keys explicitly.
package entitystore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
)

// Operation is the kind of write reported to a ChangeHook.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Executor runs queries, either directly on the database or inside a transaction.
type Executor interface {
	sqlx.ExtContext
}

// ChangeHook is notified of every write, through the executor that performed it,
// so journal entries commit or roll back together with the change.
type ChangeHook interface {
	RecordChange(ctx context.Context, ex Executor, table string, op Operation, id int64, payload interface{}) error
}

// DB owns the database handle shared by every table.
type DB struct {
	db      *sqlx.DB
	mapper  *reflectx.Mapper
	nowFunc core.NowFunc
	hook    ChangeHook
}

type Option func(*DB)

// WithNowFunc replaces the clock used to stamp created_at.
func WithNowFunc(fn core.NowFunc) Option {
	return func(d *DB) { d.nowFunc = fn }
}

// WithChangeHook registers the hook notified of every write.
func WithChangeHook(h ChangeHook) Option {
	return func(d *DB) { d.hook = h }
}

func New(db *sqlx.DB, opts ...Option) *DB {
	d := &DB{
		db:      db,
		mapper:  reflectx.NewMapperFunc("db", sqlx.NameMapper),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetChangeHook registers the hook after construction; the journal itself is built on a DB.
func (d *DB) SetChangeHook(h ChangeHook) { d.hook = h }

func (d *DB) Conn() *sqlx.DB { return d.db }

func (d *DB) now() time.Time { return d.nowFunc() }

// InTx runs `fn` inside a transaction. Tables used inside `fn` must be rebound with Table.With(ex).
// The database allows a single open connection, so a running transaction also holds back every
// other reader and writer of the process until it ends.
func (d *DB) InTx(ctx context.Context, fn func(ex Executor) error) (err error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStorageError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Wrapf(err, "rollback failed: %v", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = core.NewStorageError("commit transaction", cErr)
		}
	}()
	return fn(tx)
}
