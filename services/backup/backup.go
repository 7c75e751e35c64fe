// Package backup exports the whole local database to JSON and restores it.
package backup

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/assignment"
	"github.com/trezcool/presence/core/attendance"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/report"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/settings"
	"github.com/trezcool/presence/core/trainer"
	"github.com/trezcool/presence/storage/database/entitystore"
	"github.com/trezcool/presence/storage/database/sqlxrepos"
)

// Snapshot is the content of every table at ExportedAt.
type Snapshot struct {
	ExportedAt        time.Time                  `json:"exported_at"`
	Settings          settings.Settings          `json:"settings"`
	Admins            []admin.Admin              `json:"admins"`
	Trainers          []trainer.Trainer          `json:"trainers"`
	Learners          []learner.Learner          `json:"learners"`
	Courses           []course.Course            `json:"courses"`
	Sessions          []session.Session          `json:"sessions"`
	Assignments       []assignment.Assignment    `json:"assignments"`
	Attendance        []attendance.Record        `json:"attendance"`
	TrainerAttendance []attendance.TrainerRecord `json:"trainer_attendance"`
	Reports           []report.Report            `json:"reports"`
}

// Counts returns the number of rows per table.
func (s Snapshot) Counts() map[string]int {
	return map[string]int{
		"admins":             len(s.Admins),
		"trainers":           len(s.Trainers),
		"learners":           len(s.Learners),
		"courses":            len(s.Courses),
		"sessions":           len(s.Sessions),
		"assignments":        len(s.Assignments),
		"attendance":         len(s.Attendance),
		"trainer_attendance": len(s.TrainerAttendance),
		"reports":            len(s.Reports),
	}
}

type (
	Settings interface {
		Get(ctx context.Context) (settings.Settings, error)
		Set(ctx context.Context, us settings.UpdateSettings) (settings.Settings, error)
	}

	Service struct {
		tables   *sqlxrepos.Tables
		settings Settings
		now      core.NowFunc
	}
)

func NewService(tables *sqlxrepos.Tables, stngs Settings, now core.NowFunc) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tables, "tables"),
		vala.IsNotNil(stngs, "settings"),
	).CheckAndPanic()
	if now == nil {
		now = time.Now
	}
	return &Service{tables: tables, settings: stngs, now: now}
}

// Export reads every table in one transaction, so the snapshot is consistent.
func (svc *Service) Export(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{ExportedAt: svc.now()}
	var err error
	if snap.Settings, err = svc.settings.Get(ctx); err != nil {
		return Snapshot{}, err
	}
	err = svc.tables.InTx(ctx, func(tx *sqlxrepos.Tables) error {
		if snap.Admins, err = tx.Admins.All(ctx); err != nil {
			return err
		}
		if snap.Trainers, err = tx.Trainers.All(ctx); err != nil {
			return err
		}
		if snap.Learners, err = tx.Learners.All(ctx); err != nil {
			return err
		}
		if snap.Courses, err = tx.Courses.All(ctx); err != nil {
			return err
		}
		if snap.Sessions, err = tx.Sessions.All(ctx); err != nil {
			return err
		}
		if snap.Assignments, err = tx.Assignments.All(ctx); err != nil {
			return err
		}
		if snap.Attendance, err = tx.Attendance.All(ctx); err != nil {
			return err
		}
		if snap.TrainerAttendance, err = tx.TrainerAttendance.All(ctx); err != nil {
			return err
		}
		snap.Reports, err = tx.Reports.All(ctx)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// WriteJSON exports the database to `w` as indented JSON.
func (svc *Service) WriteJSON(ctx context.Context, w io.Writer) (Snapshot, error) {
	snap, err := svc.Export(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(snap); err != nil {
		return Snapshot{}, errors.Wrap(err, "encoding snapshot")
	}
	return snap, nil
}

// ReadJSON decodes a snapshot written by WriteJSON.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, errors.Wrap(err, "decoding snapshot")
	}
	return snap, nil
}

// Import replaces the content of every table with `snap`, keeping ids and creation dates.
func (svc *Service) Import(ctx context.Context, snap Snapshot) error {
	err := svc.tables.InTx(ctx, func(tx *sqlxrepos.Tables) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Admins, snap.Admins); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Trainers, snap.Trainers); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Learners, snap.Learners); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Courses, snap.Courses); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Sessions, snap.Sessions); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Assignments, snap.Assignments); err != nil {
			return err
		}
		if err := putAll(ctx, tx.Attendance, snap.Attendance); err != nil {
			return err
		}
		if err := putAll(ctx, tx.TrainerAttendance, snap.TrainerAttendance); err != nil {
			return err
		}
		return putAll(ctx, tx.Reports, snap.Reports)
	})
	if err != nil {
		return err
	}
	_, err = svc.settings.Set(ctx, settings.UpdateSettings{
		PresenceStartTime: snap.Settings.PresenceStartTime,
		PresenceEndTime:   snap.Settings.PresenceEndTime,
	})
	return err
}

// ClearAll empties every entity table. Settings are kept.
func (svc *Service) ClearAll(ctx context.Context) error {
	return svc.tables.InTx(ctx, func(tx *sqlxrepos.Tables) error {
		return clearAll(ctx, tx)
	})
}

type clearer interface {
	Clear(ctx context.Context) error
}

func clearAll(ctx context.Context, tx *sqlxrepos.Tables) error {
	tables := []clearer{
		tx.Reports, tx.TrainerAttendance, tx.Attendance, tx.Assignments,
		tx.Sessions, tx.Courses, tx.Learners, tx.Trainers, tx.Admins,
	}
	for _, t := range tables {
		if err := t.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

func putAll[T any](ctx context.Context, t *entitystore.Table[T], recs []T) error {
	for i := range recs {
		if err := t.Put(ctx, &recs[i]); err != nil {
			return errors.Wrapf(err, "restoring %s", t.Name())
		}
	}
	return nil
}
