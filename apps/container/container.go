// Package container builds the application's services over one local database.
package container

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/assignment"
	"github.com/trezcool/presence/core/attendance"
	"github.com/trezcool/presence/core/auth"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/presence"
	"github.com/trezcool/presence/core/report"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/settings"
	coresync "github.com/trezcool/presence/core/sync"
	"github.com/trezcool/presence/core/trainer"
	"github.com/trezcool/presence/services/backup"
	"github.com/trezcool/presence/storage/database"
	"github.com/trezcool/presence/storage/database/entitystore"
	"github.com/trezcool/presence/storage/database/sqlxrepos"
)

// Container holds the database and every service built on it.
type Container struct {
	Conf   *core.Config
	Logger core.Logger
	DB     *sqlx.DB
	Tables *sqlxrepos.Tables

	AdminRepo   admin.Repository
	TrainerRepo trainer.Repository

	Admins      *admin.Service
	Trainers    *trainer.Service
	Learners    *learner.Service
	Courses     *course.Service
	Sessions    *session.Service
	Assignments *assignment.Service
	Settings    *settings.Service
	Attendance  *attendance.Service
	Reports     *report.Service
	Auth        *auth.Service
	Sync        *coresync.Service
	Backup      *backup.Service
}

type options struct {
	now     core.NowFunc
	migrate bool
}

type Option func(*options)

// WithNowFunc replaces the clock of every service.
func WithNowFunc(fn core.NowFunc) Option {
	return func(o *options) { o.now = fn }
}

// WithoutMigrations skips applying the pending migrations on start.
func WithoutMigrations() Option {
	return func(o *options) { o.migrate = false }
}

// New opens the database, applies the pending migrations and wires the services.
func New(ctx context.Context, conf *core.Config, logger core.Logger, opts ...Option) (*Container, error) {
	o := options{now: time.Now, migrate: true}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "setting up database")
	}
	if o.migrate {
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return Build(db, conf, logger, o.now), nil
}

// Build wires the services over an open database.
func Build(db *sqlx.DB, conf *core.Config, logger core.Logger, now core.NowFunc) *Container {
	if now == nil {
		now = time.Now
	}
	journal := sqlxrepos.NewJournal(db, now)
	store := entitystore.New(db, entitystore.WithNowFunc(now), entitystore.WithChangeHook(journal))
	tables := sqlxrepos.NewTables(store)

	adminRepo := sqlxrepos.NewAdminRepository(tables)
	trainerRepo := sqlxrepos.NewTrainerRepository(tables)
	learnerRepo := sqlxrepos.NewLearnerRepository(tables)
	courseRepo := sqlxrepos.NewCourseRepository(tables)
	sessionRepo := sqlxrepos.NewSessionRepository(tables)

	c := &Container{
		Conf:        conf,
		Logger:      logger,
		DB:          db,
		Tables:      tables,
		AdminRepo:   adminRepo,
		TrainerRepo: trainerRepo,
	}
	c.Admins = admin.NewService(adminRepo)
	c.Trainers = trainer.NewService(trainerRepo)
	c.Learners = learner.NewService(learnerRepo)
	c.Courses = course.NewService(courseRepo, trainerRepo)
	c.Sessions = session.NewService(sessionRepo, courseRepo, trainerRepo)
	c.Assignments = assignment.NewService(sqlxrepos.NewAssignmentRepository(tables), sessionRepo, learnerRepo)
	c.Settings = settings.NewService(
		sqlxrepos.NewStateRepository(db),
		presence.Window{Start: conf.PresenceStartTime, End: conf.PresenceEndTime},
		logger,
	)
	c.Attendance = attendance.NewService(
		sqlxrepos.NewAttendanceRepository(tables),
		sessionRepo, learnerRepo, trainerRepo, c.Assignments, c.Settings,
		attendance.WithNowFunc(now),
	)
	c.Reports = report.NewService(sqlxrepos.NewReportRepository(tables), sessionRepo, courseRepo, trainerRepo, now)
	c.Auth = auth.NewService(adminRepo, trainerRepo)
	c.Sync = coresync.NewService(journal, conf.SyncBatchSize, logger, now)
	c.Backup = backup.NewService(tables, c.Settings, now)
	return c
}

// Seed creates the default accounts on first start.
func (c *Container) Seed(ctx context.Context) (database.SeedResult, error) {
	return database.Seed(ctx, c.AdminRepo, c.TrainerRepo, c.Conf.Seed, c.Logger)
}

// Sender returns the transport used to push the sync journal.
func (c *Container) Sender() coresync.Sender {
	return coresync.LogSender{Endpoint: c.Conf.SyncEndpoint, Logger: c.Logger}
}

func (c *Container) Close() error {
	return c.DB.Close()
}
