// Package sqlxrepos implements the core repositories on the SQLite entity store.
package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/assignment"
	"github.com/trezcool/presence/core/attendance"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/report"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/trainer"
	"github.com/trezcool/presence/storage/database/entitystore"
)

// index names
const (
	idxEmail          = "email"
	idxPhone          = "phone"
	idxSurnameName    = "surname_name"
	idxTitle          = "title"
	idxTrainer        = "trainer"
	idxCourse         = "course"
	idxDate           = "date"
	idxStatus         = "status"
	idxSession        = "session"
	idxLearner        = "learner"
	idxSessionLearner = "session_learner"
	idxSessionTrainer = "session_trainer"
	idxSubmittedAt    = "submitted_at"
)

func single(name, col string) entitystore.Index {
	return entitystore.Index{Name: name, Columns: []string{col}}
}

var (
	adminSchema = entitystore.Schema{
		Name:    "admins",
		PK:      "id",
		Columns: []string{"name", "surname", "email", "password_hash"},
		Indexes: []entitystore.Index{single(idxEmail, "email")},
	}
	trainerSchema = entitystore.Schema{
		Name:    "trainers",
		PK:      "id",
		Columns: []string{"name", "surname", "email", "phone", "password_hash"},
		Indexes: []entitystore.Index{single(idxEmail, "email"), single(idxPhone, "phone")},
	}
	learnerSchema = entitystore.Schema{
		Name:    "learners",
		PK:      "id",
		Columns: []string{"name", "surname", "email", "phone"},
		Indexes: []entitystore.Index{{Name: idxSurnameName, Columns: []string{"surname", "name"}}},
	}
	courseSchema = entitystore.Schema{
		Name:    "courses",
		PK:      "id",
		Columns: []string{"title", "description", "trainer_id"},
		Indexes: []entitystore.Index{single(idxTitle, "title"), single(idxTrainer, "trainer_id")},
	}
	sessionSchema = entitystore.Schema{
		Name:    "sessions",
		PK:      "id",
		Columns: []string{"date", "start_time", "end_time", "course_id", "trainer_id", "status"},
		Indexes: []entitystore.Index{
			single(idxDate, "date"),
			single(idxCourse, "course_id"),
			single(idxTrainer, "trainer_id"),
			single(idxStatus, "status"),
		},
	}
	assignmentSchema = entitystore.Schema{
		Name:    "assignments",
		PK:      "id",
		Columns: []string{"session_id", "learner_id"},
		Indexes: []entitystore.Index{
			single(idxSession, "session_id"),
			single(idxLearner, "learner_id"),
			{Name: idxSessionLearner, Columns: []string{"session_id", "learner_id"}},
		},
	}
	attendanceSchema = entitystore.Schema{
		Name:    "attendance_records",
		PK:      "id",
		Columns: []string{"session_id", "learner_id", "recorded_at", "present"},
		Indexes: []entitystore.Index{
			single(idxSession, "session_id"),
			single(idxLearner, "learner_id"),
			{Name: idxSessionLearner, Columns: []string{"session_id", "learner_id"}},
		},
	}
	trainerAttendanceSchema = entitystore.Schema{
		Name:    "trainer_attendance_records",
		PK:      "id",
		Columns: []string{"session_id", "trainer_id", "recorded_at", "present"},
		Indexes: []entitystore.Index{
			single(idxSession, "session_id"),
			single(idxTrainer, "trainer_id"),
			{Name: idxSessionTrainer, Columns: []string{"session_id", "trainer_id"}},
		},
	}
	reportSchema = entitystore.Schema{
		Name:    "reports",
		PK:      "id",
		Columns: []string{"session_id", "trainer_id", "kind", "content", "submitted_at", "status"},
		Indexes: []entitystore.Index{
			single(idxSession, "session_id"),
			single(idxTrainer, "trainer_id"),
			single(idxSubmittedAt, "submitted_at"),
		},
	}
)

// Tables bundles the entity tables of the application over one database.
type Tables struct {
	db *entitystore.DB

	Admins            *entitystore.Table[admin.Admin]
	Trainers          *entitystore.Table[trainer.Trainer]
	Learners          *entitystore.Table[learner.Learner]
	Courses           *entitystore.Table[course.Course]
	Sessions          *entitystore.Table[session.Session]
	Assignments       *entitystore.Table[assignment.Assignment]
	Attendance        *entitystore.Table[attendance.Record]
	TrainerAttendance *entitystore.Table[attendance.TrainerRecord]
	Reports           *entitystore.Table[report.Report]
}

func NewTables(db *entitystore.DB) *Tables {
	return &Tables{
		db:                db,
		Admins:            entitystore.NewTable[admin.Admin](db, adminSchema),
		Trainers:          entitystore.NewTable[trainer.Trainer](db, trainerSchema),
		Learners:          entitystore.NewTable[learner.Learner](db, learnerSchema),
		Courses:           entitystore.NewTable[course.Course](db, courseSchema),
		Sessions:          entitystore.NewTable[session.Session](db, sessionSchema),
		Assignments:       entitystore.NewTable[assignment.Assignment](db, assignmentSchema),
		Attendance:        entitystore.NewTable[attendance.Record](db, attendanceSchema),
		TrainerAttendance: entitystore.NewTable[attendance.TrainerRecord](db, trainerAttendanceSchema),
		Reports:           entitystore.NewTable[report.Report](db, reportSchema),
	}
}

func (t *Tables) DB() *entitystore.DB { return t.db }

func (t *Tables) with(ex entitystore.Executor) *Tables {
	return &Tables{
		db:                t.db,
		Admins:            t.Admins.With(ex),
		Trainers:          t.Trainers.With(ex),
		Learners:          t.Learners.With(ex),
		Courses:           t.Courses.With(ex),
		Sessions:          t.Sessions.With(ex),
		Assignments:       t.Assignments.With(ex),
		Attendance:        t.Attendance.With(ex),
		TrainerAttendance: t.TrainerAttendance.With(ex),
		Reports:           t.Reports.With(ex),
	}
}

// InTx runs `fn` with every table bound to one transaction.
func (t *Tables) InTx(ctx context.Context, fn func(tx *Tables) error) error {
	return t.db.InTx(ctx, func(ex entitystore.Executor) error {
		return fn(t.with(ex))
	})
}

// notFound translates a missing row into *core.NotFoundError.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, entitystore.ErrNoRecord) {
		return core.NewNotFoundError(entity, id)
	}
	return err
}

// updated turns an update of a missing row into *core.NotFoundError.
func updated(n int64, err error, entity string, id int64) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return core.NewNotFoundError(entity, id)
	}
	return nil
}
