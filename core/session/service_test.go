package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/report"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/tests"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	tr := testutil.CreateTrainer(t, c.Trainers, "Marie", "Curie", "marie.curie@formation.com")
	crs := testutil.CreateCourse(t, c.Courses, "Chemistry", tr.ID)

	tests := []struct {
		name    string
		ns      session.NewSession
		wantErr bool
	}{
		{"valid", session.NewSession{Date: "2025-01-15", StartTime: "08:00", EndTime: "10:00", CourseID: crs.ID, TrainerID: tr.ID}, false},
		{"unknown course", session.NewSession{Date: "2025-01-15", StartTime: "08:00", EndTime: "10:00", CourseID: 999, TrainerID: tr.ID}, true},
		{"unknown trainer", session.NewSession{Date: "2025-01-15", StartTime: "08:00", EndTime: "10:00", CourseID: crs.ID, TrainerID: 999}, true},
		{"bad schedule", session.NewSession{Date: "2025-01-15", StartTime: "10:00", EndTime: "08:00", CourseID: crs.ID, TrainerID: tr.ID}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := c.Sessions.Create(ctx, tt.ns)
			if tt.wantErr {
				assert.True(t, core.IsValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, s.ID)
			assert.Equal(t, session.StatusPlanned, s.Status)
			assert.False(t, s.CreatedAt.IsZero())

			got, err := c.Sessions.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.Label(), got.Label())
		})
	}
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-16")
	early := testutil.CreateSession(t, c.Sessions, "2025-01-15", "13:00", "15:00", fx.Course.ID, fx.Trainer.ID)
	morning := testutil.CreateSession(t, c.Sessions, "2025-01-15", "08:00", "10:00", fx.Course.ID, fx.Trainer.ID)

	all, err := c.Sessions.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{morning.ID, early.ID, fx.Session.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	byDate, err := c.Sessions.ByDate(ctx, "2025-01-15")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byCourse, err := c.Sessions.ByCourse(ctx, fx.Course.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 3)

	byTrainer, err := c.Sessions.ByTrainer(ctx, fx.Trainer.ID)
	require.NoError(t, err)
	assert.Len(t, byTrainer, 3)

	_, err = c.Sessions.Get(ctx, 999)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")

	s, err := c.Sessions.Transition(ctx, fx.Session.ID, session.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, session.StatusInProgress, s.Status)

	_, err = c.Sessions.Transition(ctx, fx.Session.ID, session.StatusPlanned)
	assert.True(t, core.IsValidation(err))

	_, err = c.Sessions.Transition(ctx, fx.Session.ID, session.StatusCompleted)
	require.NoError(t, err)

	completed, err := c.Sessions.ByStatus(ctx, session.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, fx.Session.ID, completed[0].ID)

	_, err = c.Sessions.Transition(ctx, 999, session.StatusCompleted)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	str := func(s string) *string { return &s }

	s, err := c.Sessions.Update(ctx, fx.Session.ID, session.UpdateSession{Date: str("2025-01-20"), EndTime: str("12:00")})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-20 (08:00-12:00)", s.Label())
	assert.Equal(t, session.StatusPlanned, s.Status)

	missing := int64(999)
	_, err = c.Sessions.Update(ctx, fx.Session.ID, session.UpdateSession{CourseID: &missing})
	assert.True(t, core.IsValidation(err))

	_, err = c.Sessions.Update(ctx, 999, session.UpdateSession{Date: str("2025-01-20")})
	assert.True(t, core.IsNotFound(err))
}

func TestService_WithDetails(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	other := testutil.CreateTrainer(t, c.Trainers, "Alan", "Turing", "alan.turing@formation.com")
	orphanCourse := testutil.CreateCourse(t, c.Courses, "Cryptography", other.ID)
	orphan := testutil.CreateSession(t, c.Sessions, "2025-01-16", "09:00", "11:00", orphanCourse.ID, other.ID)

	// dangling references are only reachable by bypassing the services
	require.NoError(t, c.Tables.Courses.Delete(ctx, orphanCourse.ID))
	require.NoError(t, c.Tables.Trainers.Delete(ctx, other.ID))

	details, err := c.Sessions.WithDetails(ctx, session.Filter{})
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, fx.Session.ID, details[0].ID)
	assert.Equal(t, "Chemistry", details[0].CourseTitle)
	assert.Equal(t, "Marie Curie", details[0].TrainerName)

	assert.Equal(t, orphan.ID, details[1].ID)
	assert.Equal(t, session.UnknownCourse, details[1].CourseTitle)
	assert.Equal(t, session.UnknownTrainer, details[1].TrainerName)

	filtered, err := c.Sessions.WithDetails(ctx, session.Filter{TrainerID: fx.Trainer.ID})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	filtered, err = c.Sessions.WithDetails(ctx, session.Filter{Date: "2025-01-16"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, orphan.ID, filtered[0].ID)

	filtered, err = c.Sessions.WithDetails(ctx, session.Filter{Status: session.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testutil.At("2025-01-15", "07:45"))
	c := testutil.PrepareContainer(t, clock)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	kept := testutil.CreateSession(t, c.Sessions, "2025-01-16", "08:00", "10:00", fx.Course.ID, fx.Trainer.ID)
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	for _, sessionID := range []int64{fx.Session.ID, kept.ID} {
		if _, err := c.Assignments.Assign(ctx, sessionID, l.ID); err != nil {
			t.Fatalf("Assign() failed: %v", err)
		}
	}
	_, err := c.Attendance.MarkPresence(ctx, fx.Session.ID, l.ID, true)
	require.NoError(t, err)
	_, err = c.Attendance.MarkTrainerPresence(ctx, fx.Session.ID, fx.Trainer.ID, true)
	require.NoError(t, err)
	_, err = c.Reports.Submit(ctx, report.NewReport{
		SessionID: fx.Session.ID,
		TrainerID: fx.Trainer.ID,
		Kind:      report.KindText,
		Content:   "All good",
	})
	require.NoError(t, err)

	require.NoError(t, c.Sessions.Delete(ctx, fx.Session.ID))
	require.NoError(t, c.Sessions.Delete(ctx, fx.Session.ID), "deleting twice is a no-op")

	_, err = c.Sessions.Get(ctx, fx.Session.ID)
	assert.True(t, core.IsNotFound(err))

	counts := map[string]func() (int64, error){
		"assignments":        func() (int64, error) { return c.Tables.Assignments.CountByIndex(ctx, "session", fx.Session.ID) },
		"attendance":         func() (int64, error) { return c.Tables.Attendance.CountByIndex(ctx, "session", fx.Session.ID) },
		"trainer attendance": func() (int64, error) { return c.Tables.TrainerAttendance.CountByIndex(ctx, "session", fx.Session.ID) },
		"reports":            func() (int64, error) { return c.Tables.Reports.CountByIndex(ctx, "session", fx.Session.ID) },
	}
	for name, count := range counts {
		n, err := count()
		require.NoError(t, err)
		assert.Zero(t, n, name)
	}

	ok, err := c.Assignments.IsAssigned(ctx, kept.ID, l.ID)
	require.NoError(t, err)
	assert.True(t, ok, "other sessions keep their assignments")
}
