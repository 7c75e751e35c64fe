package database

import (
	"context"
	"embed"
	"io/fs"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // driver

	"github.com/trezcool/presence/core"
)

const (
	driverName = "sqlite"
	memoryPath = ":memory:"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func dsn(path string) string {
	q := make(url.Values)
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(0)")
	if path != memoryPath {
		q.Add("_pragma", "journal_mode(wal)")
	}
	q.Set("_time_format", "sqlite")
	if path == memoryPath {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens the SQLite database of this installation.
// Only one connection is ever open: writes are serialized, and an in-memory database
// is shared by every query instead of being recreated per connection.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn(conf.DatabasePath))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 5
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func newProvider(db *sqlx.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "reading migrations")
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
	if err != nil {
		return nil, errors.Wrap(err, "creating migration provider")
	}
	return p, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return err
	}
	if _, err = p.Up(ctx); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sqlx.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return err
	}
	if _, err = p.Down(ctx); err != nil {
		return errors.Wrap(err, "rolling back migration")
	}
	return nil
}

// MigrationState describes one known migration.
type MigrationState struct {
	Version   int64
	Source    string
	Applied   bool
	AppliedAt time.Time
}

func MigrationStatus(ctx context.Context, db *sqlx.DB) ([]MigrationState, error) {
	p, err := newProvider(db)
	if err != nil {
		return nil, err
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading migration status")
	}
	states := make([]MigrationState, 0, len(statuses))
	for _, st := range statuses {
		states = append(states, MigrationState{
			Version:   st.Source.Version,
			Source:    st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return states, nil
}
