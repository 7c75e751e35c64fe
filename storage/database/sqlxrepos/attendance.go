package sqlxrepos

import (
	"context"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/attendance"
)

type attendanceRepository struct {
	t *Tables
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(t *Tables) *attendanceRepository {
	return &attendanceRepository{t: t}
}

func (repo *attendanceRepository) Upsert(ctx context.Context, sessionID, learnerID int64, present bool, recordedAt string) (id int64, err error) {
	err = repo.t.InTx(ctx, func(tx *Tables) error {
		recs, err := tx.Attendance.ByIndex(ctx, idxSessionLearner, sessionID, learnerID)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			id = recs[0].ID
			_, err = tx.Attendance.Update(ctx, id, core.Fields{"present": present, "recorded_at": recordedAt})
			return err
		}
		id, err = tx.Attendance.Add(ctx, &attendance.Record{
			SessionID:  sessionID,
			LearnerID:  learnerID,
			RecordedAt: recordedAt,
			Present:    present,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (repo *attendanceRepository) UpsertTrainer(ctx context.Context, sessionID, trainerID int64, present bool, recordedAt string) (id int64, err error) {
	err = repo.t.InTx(ctx, func(tx *Tables) error {
		recs, err := tx.TrainerAttendance.ByIndex(ctx, idxSessionTrainer, sessionID, trainerID)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			id = recs[0].ID
			_, err = tx.TrainerAttendance.Update(ctx, id, core.Fields{"present": present, "recorded_at": recordedAt})
			return err
		}
		id, err = tx.TrainerAttendance.Add(ctx, &attendance.TrainerRecord{
			SessionID:  sessionID,
			TrainerID:  trainerID,
			RecordedAt: recordedAt,
			Present:    present,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (repo *attendanceRepository) BySession(ctx context.Context, sessionID int64) ([]attendance.Record, error) {
	return repo.t.Attendance.ByIndex(ctx, idxSession, sessionID)
}

func (repo *attendanceRepository) ByLearner(ctx context.Context, learnerID int64) ([]attendance.Record, error) {
	return repo.t.Attendance.ByIndex(ctx, idxLearner, learnerID)
}

func (repo *attendanceRepository) TrainerBySession(ctx context.Context, sessionID int64) ([]attendance.TrainerRecord, error) {
	return repo.t.TrainerAttendance.ByIndex(ctx, idxSession, sessionID)
}

func (repo *attendanceRepository) TrainerByTrainer(ctx context.Context, trainerID int64) ([]attendance.TrainerRecord, error) {
	return repo.t.TrainerAttendance.ByIndex(ctx, idxTrainer, trainerID)
}
