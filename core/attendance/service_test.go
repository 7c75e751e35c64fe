package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/attendance"
	"github.com/trezcool/presence/core/settings"
	"github.com/trezcool/presence/tests"
)

const day = "2025-01-15"

func TestService_MarkPresence_window(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:45"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	ok, err := c.Attendance.CanMarkPresence(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	id, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, true)
	require.NoError(t, err)
	assert.NotZero(t, id)

	clock.Set(testutil.At(day, "09:00"))
	ok, err = c.Attendance.CanMarkPresence(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, false)
	require.Error(t, err)
	assert.True(t, core.IsPresenceWindowExpired(err), "got %v", err)

	recs, err := c.Attendance.BySession(ctx, fx.Session.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Present, "a rejected write leaves the record untouched")
	assert.Equal(t, "07:45", recs[0].RecordedAt)
}

func TestService_MarkPresence_boundaries(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"window start", testutil.At(day, "07:30"), false},
		{"window end", testutil.At(day, "08:00"), false},
		{"before the window", testutil.At(day, "07:29"), true},
		{"after the window", testutil.At(day, "08:01"), true},
		{"day before", testutil.At("2025-01-14", "07:45"), true},
		{"day after", testutil.At("2025-01-16", "07:45"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.NewClock(tt.now)
			c := testutil.PrepareContainer(t, clock)
			fx := testutil.CreateFixture(t, c, day)
			l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

			_, err := c.Attendance.MarkPresence(context.Background(), fx.Session.ID, l.ID, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MarkPresence() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				assert.True(t, core.IsPresenceWindowExpired(err))
			}
		})
	}
}

func TestService_MarkPresence_configuredWindow(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "13:15"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	_, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, true)
	require.Error(t, err)
	assert.Equal(t, "the attendance period has expired (07:30-08:00)", core.Message(err))

	_, err = c.Settings.Set(ctx, settings.UpdateSettings{PresenceStartTime: "13:00", PresenceEndTime: "14:00"})
	require.NoError(t, err)

	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, true)
	assert.NoError(t, err, "the new window applies to the next write")
}

func TestService_MarkPresence_upsert(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:35"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	first, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, true)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	second, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, false)
	require.NoError(t, err)
	assert.Equal(t, first, second, "the pair keeps a single record")

	recs, err := c.Attendance.BySession(ctx, fx.Session.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Present)
	assert.Equal(t, "07:45", recs[0].RecordedAt)

	byLearner, err := c.Attendance.ByLearner(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, recs, byLearner)
}

func TestService_MarkPresence_references(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:45"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	_, err := c.Attendance.MarkPresence(ctx, 999, l.ID, true)
	assert.True(t, core.IsValidation(err), "unknown session: %v", err)

	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, 999, true)
	assert.True(t, core.IsValidation(err), "unknown learner: %v", err)

	_, err = c.Attendance.CanMarkPresence(ctx, 999)
	assert.True(t, core.IsValidation(err))
}

func TestService_MarkTrainerPresence(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:50"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	other := testutil.CreateTrainer(t, c.Trainers, "Alan", "Turing", "alan.turing@formation.com")

	_, found, err := c.Attendance.TrainerRecordForSession(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = c.Attendance.MarkTrainerPresence(ctx, fx.Session.ID, other.ID, true)
	assert.True(t, core.IsValidation(err), "only the session's trainer is marked: %v", err)

	first, err := c.Attendance.MarkTrainerPresence(ctx, fx.Session.ID, fx.Trainer.ID, true)
	require.NoError(t, err)
	second, err := c.Attendance.MarkTrainerPresence(ctx, fx.Session.ID, fx.Trainer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rec, found, err := c.Attendance.TrainerRecordForSession(ctx, fx.Session.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, fx.Trainer.ID, rec.TrainerID)
	assert.Equal(t, "07:50", rec.RecordedAt)

	recs, err := c.Attendance.TrainerRecordsByTrainer(ctx, fx.Trainer.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	clock.Set(testutil.At(day, "08:30"))
	_, err = c.Attendance.MarkTrainerPresence(ctx, fx.Session.ID, fx.Trainer.ID, false)
	assert.True(t, core.IsPresenceWindowExpired(err))
}

func TestService_WithDetails(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:45"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)
	ada := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")
	gone := testutil.CreateLearner(t, c.Learners, "Blaise", "Pascal")

	for _, id := range []int64{ada.ID, gone.ID} {
		if _, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, id, true); err != nil {
			t.Fatalf("MarkPresence() failed: %v", err)
		}
	}
	require.NoError(t, c.Tables.Learners.Delete(ctx, gone.ID))

	details, err := c.Attendance.WithDetails(ctx, fx.Session.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Ada Lovelace", details[0].LearnerName)
	assert.Equal(t, attendance.UnknownLearner, details[1].LearnerName)
}

func TestService_SessionSummary(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At(day, "07:45"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, day)

	var ids []int64
	for _, name := range []string{"Ada", "Blaise", "Carl", "Dorothy"} {
		ids = append(ids, testutil.CreateLearner(t, c.Learners, name, "Test").ID)
	}
	_, _, err := c.Assignments.AssignMany(ctx, fx.Session.ID, ids)
	require.NoError(t, err)

	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, ids[0], true)
	require.NoError(t, err)
	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, ids[1], true)
	require.NoError(t, err)
	_, err = c.Attendance.MarkPresence(ctx, fx.Session.ID, ids[2], false)
	require.NoError(t, err)

	sum, err := c.Attendance.SessionSummary(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.Summary{SessionID: fx.Session.ID, Assigned: 4, Present: 2, Absent: 1, Unmarked: 1}, sum)
	assert.InDelta(t, 0.5, sum.Rate(), 1e-9)
	assert.Zero(t, attendance.Summary{}.Rate())
}
