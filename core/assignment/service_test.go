package assignment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/tests"
)

func learnerIDs(ls []learner.Learner) []int64 {
	ids := make([]int64, 0, len(ls))
	for _, l := range ls {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	a, err := c.Assignments.Assign(ctx, fx.Session.ID, l.ID)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	_, err = c.Assignments.Assign(ctx, fx.Session.ID, l.ID)
	assert.True(t, core.IsDuplicateAssignment(err), "got %v", err)

	_, err = c.Assignments.Assign(ctx, 999, l.ID)
	assert.True(t, core.IsValidation(err))
	_, err = c.Assignments.Assign(ctx, fx.Session.ID, 999)
	assert.True(t, core.IsValidation(err))

	ok, err := c.Assignments.IsAssigned(ctx, fx.Session.ID, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sessions, err := c.Assignments.SessionsFor(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, fx.Session.ID, sessions[0].ID)

	require.NoError(t, c.Assignments.Unassign(ctx, fx.Session.ID, l.ID))
	ok, err = c.Assignments.IsAssigned(ctx, fx.Session.ID, l.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_AssignMany(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	l1 := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")
	l2 := testutil.CreateLearner(t, c.Learners, "Blaise", "Pascal")
	l3 := testutil.CreateLearner(t, c.Learners, "Carl", "Gauss")

	tests := []struct {
		name        string
		ids         []int64
		wantAdded   int
		wantRemoved int
		want        []int64
	}{
		{"initial set", []int64{l1.ID, l2.ID}, 2, 0, []int64{l1.ID, l2.ID}},
		{"same set again", []int64{l2.ID, l1.ID}, 0, 0, []int64{l1.ID, l2.ID}},
		{"swap one learner", []int64{l2.ID, l3.ID}, 1, 1, []int64{l2.ID, l3.ID}},
		{"duplicates are ignored", []int64{l3.ID, l3.ID, l2.ID}, 0, 0, []int64{l2.ID, l3.ID}},
		{"empty set", nil, 0, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed, err := c.Assignments.AssignMany(ctx, fx.Session.ID, tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdded, added, "added")
			assert.Equal(t, tt.wantRemoved, removed, "removed")

			got, err := c.Assignments.LearnersFor(ctx, fx.Session.ID)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, learnerIDs(got))
		})
	}
}

func TestService_AssignMany_keepsExistingPairs(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	l1 := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")
	l2 := testutil.CreateLearner(t, c.Learners, "Blaise", "Pascal")

	kept, err := c.Assignments.Assign(ctx, fx.Session.ID, l1.ID)
	require.NoError(t, err)

	_, _, err = c.Assignments.AssignMany(ctx, fx.Session.ID, []int64{l1.ID, l2.ID})
	require.NoError(t, err)

	as, err := c.Tables.Assignments.ByIndexAnyOf(ctx, "learner", []int64{l1.ID})
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, kept.ID, as[0].ID, "untouched pairs keep their record")
}

func TestService_AssignMany_invalid(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	l := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")

	_, _, err := c.Assignments.AssignMany(ctx, 999, []int64{l.ID})
	assert.True(t, core.IsValidation(err))

	_, _, err = c.Assignments.AssignMany(ctx, fx.Session.ID, []int64{l.ID, 999})
	assert.True(t, core.IsValidation(err))

	ids, err := c.Assignments.LearnerIDsFor(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "a rejected set changes nothing")
}

func TestService_UnassignAll(t *testing.T) {
	ctx := context.Background()
	c := testutil.PrepareContainer(t, nil)
	fx := testutil.CreateFixture(t, c, "2025-01-15")
	l1 := testutil.CreateLearner(t, c.Learners, "Ada", "Lovelace")
	l2 := testutil.CreateLearner(t, c.Learners, "Blaise", "Pascal")

	_, _, err := c.Assignments.AssignMany(ctx, fx.Session.ID, []int64{l1.ID, l2.ID})
	require.NoError(t, err)
	require.NoError(t, c.Assignments.UnassignAll(ctx, fx.Session.ID))

	ls, err := c.Assignments.LearnersFor(ctx, fx.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, ls)
}
