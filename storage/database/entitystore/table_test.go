package entitystore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/storage/database"
	"github.com/trezcool/presence/storage/database/entitystore"
)

type note struct {
	ID        int64     `db:"id"`
	Owner     int64     `db:"owner"`
	Topic     string    `db:"topic"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

var noteSchema = entitystore.Schema{
	Name:    "notes",
	PK:      "id",
	Columns: []string{"owner", "topic", "body"},
	Indexes: []entitystore.Index{
		{Name: "owner", Columns: []string{"owner"}},
		{Name: "owner_topic", Columns: []string{"owner", "topic"}},
	},
}

type change struct {
	table string
	op    entitystore.Operation
	id    int64
}

type recorder struct {
	changes []change
	fail    bool
}

func (r *recorder) RecordChange(_ context.Context, _ entitystore.Executor, table string, op entitystore.Operation, id int64, _ interface{}) error {
	if r.fail {
		return errors.New("journal full")
	}
	r.changes = append(r.changes, change{table: table, op: op, id: id})
	return nil
}

var fixedNow = time.Date(2025, 1, 15, 7, 45, 0, 0, time.UTC)

func setup(t *testing.T) (*entitystore.Table[note], *entitystore.DB, *recorder) {
	t.Helper()
	db, err := database.Open(&core.Config{DatabasePath: ":memory:"})
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	createNotes(t, db)
	rec := &recorder{}
	store := entitystore.New(db,
		entitystore.WithNowFunc(func() time.Time { return fixedNow }),
		entitystore.WithChangeHook(rec),
	)
	return entitystore.NewTable[note](store, noteSchema), store, rec
}

func createNotes(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TABLE notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner INTEGER NOT NULL,
		topic TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`)
	if err != nil {
		t.Fatalf("creating notes table failed: %v", err)
	}
}

func TestTable_AddGet(t *testing.T) {
	ctx := context.Background()
	notes, _, rec := setup(t)

	n := note{Owner: 1, Topic: "math", Body: "fractions", CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)}
	id, err := notes.Add(ctx, &n)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, n.ID)
	assert.True(t, n.CreatedAt.Equal(fixedNow), "created_at is stamped by the store")

	got, err := notes.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, n.Owner, got.Owner)
	assert.Equal(t, n.Topic, got.Topic)
	assert.Equal(t, n.Body, got.Body)
	assert.True(t, got.CreatedAt.Equal(fixedNow))

	id2, err := notes.Add(ctx, &note{Owner: 1, Topic: "math", Body: "decimals"})
	require.NoError(t, err)
	assert.Greater(t, id2, id)

	_, err = notes.Get(ctx, 42)
	assert.ErrorIs(t, err, entitystore.ErrNoRecord)

	assert.Equal(t, []change{{"notes", entitystore.OpCreate, 1}, {"notes", entitystore.OpCreate, 2}}, rec.changes)
}

func TestTable_Update(t *testing.T) {
	ctx := context.Background()
	notes, _, _ := setup(t)

	n := note{Owner: 1, Topic: "math", Body: "fractions"}
	_, err := notes.Add(ctx, &n)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      int64
		fields  core.Fields
		want    int64
		wantErr error
	}{
		{name: "missing row", id: 99, fields: core.Fields{"body": "x"}, want: 0},
		{name: "unknown column", id: n.ID, fields: core.Fields{"color": "red"}, wantErr: entitystore.ErrUnknownColumn},
		{name: "no fields", id: n.ID, fields: core.Fields{}, want: 1},
		{
			name:   "immutable columns are ignored",
			id:     n.ID,
			fields: core.Fields{"id": 7, "created_at": time.Now(), "body": "percentages"},
			want:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := notes.Update(ctx, tt.id, tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "percentages", got.Body)
	assert.True(t, got.CreatedAt.Equal(fixedNow), "created_at never changes")
}

func TestTable_Indexes(t *testing.T) {
	ctx := context.Background()
	notes, _, _ := setup(t)

	for _, n := range []note{
		{Owner: 1, Topic: "math", Body: "a"},
		{Owner: 1, Topic: "art", Body: "b"},
		{Owner: 2, Topic: "math", Body: "c"},
	} {
		n := n
		_, err := notes.Add(ctx, &n)
		require.NoError(t, err)
	}

	byOwner, err := notes.ByIndex(ctx, "owner", 1)
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	compound, err := notes.ByIndex(ctx, "owner_topic", 2, "math")
	require.NoError(t, err)
	require.Len(t, compound, 1)
	assert.Equal(t, "c", compound[0].Body)

	anyOf, err := notes.ByIndexAnyOf(ctx, "owner", []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, anyOf, 3)

	n, err := notes.CountByIndex(ctx, "owner_topic", 1, "art")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = notes.ByIndex(ctx, "topic", "math")
	assert.ErrorIs(t, err, entitystore.ErrUnknownIndex)

	_, err = notes.ByIndex(ctx, "owner_topic", 1)
	assert.Error(t, err, "a compound index needs every value")

	_, err = notes.FirstByIndex(ctx, "owner", 3)
	assert.ErrorIs(t, err, entitystore.ErrNoRecord)
}

func TestTable_GetManyAllDelete(t *testing.T) {
	ctx := context.Background()
	notes, _, rec := setup(t)

	for _, body := range []string{"b", "a", "c"} {
		_, err := notes.Add(ctx, &note{Owner: 1, Topic: "t", Body: body})
		require.NoError(t, err)
	}

	many, err := notes.GetMany(ctx, []int64{3, 1, 99})
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, int64(1), many[0].ID)
	assert.Equal(t, int64(3), many[1].ID)

	none, err := notes.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := notes.All(ctx, core.DBOrdering{Field: "body", Ascending: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Body, all[1].Body, all[2].Body})

	_, err = notes.All(ctx, core.DBOrdering{Field: "color"})
	assert.ErrorIs(t, err, entitystore.ErrUnknownColumn)

	rec.changes = nil
	require.NoError(t, notes.Delete(ctx, 2))
	require.NoError(t, notes.Delete(ctx, 2), "deleting twice is not an error")
	assert.Equal(t, []change{{"notes", entitystore.OpDelete, 2}}, rec.changes)

	removed, err := notes.DeleteByIndex(ctx, "owner", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := notes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTable_PutClear(t *testing.T) {
	ctx := context.Background()
	notes, _, rec := setup(t)

	createdAt := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	n := note{ID: 10, Owner: 3, Topic: "history", Body: "rome", CreatedAt: createdAt}
	require.NoError(t, notes.Put(ctx, &n))

	got, err := notes.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "rome", got.Body)
	assert.True(t, got.CreatedAt.Equal(createdAt), "put keeps the given created_at")

	id, err := notes.Add(ctx, &note{Owner: 3, Topic: "history", Body: "athens"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id, "auto-increment continues after restored ids")

	require.NoError(t, notes.Clear(ctx))
	count, err := notes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, rec.changes, 1, "put and clear are not journaled")
}

func TestDB_InTx(t *testing.T) {
	ctx := context.Background()
	notes, store, rec := setup(t)

	err := store.InTx(ctx, func(ex entitystore.Executor) error {
		if _, err := notes.With(ex).Add(ctx, &note{Owner: 1, Topic: "t", Body: "kept?"}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	count, err := notes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "the write is rolled back")

	rec.fail = true
	_, err = notes.Add(ctx, &note{Owner: 1, Topic: "t", Body: "x"})
	assert.Error(t, err, "a failing hook fails the write")
}

func TestTable_StorageError(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(&core.Config{DatabasePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// no notes table
	notes := entitystore.NewTable[note](entitystore.New(db), noteSchema)
	_, err = notes.Add(ctx, &note{Owner: 1})
	assert.True(t, core.IsStorage(err), "driver errors are storage errors, got %v", err)

	_, err = notes.Get(ctx, 1)
	assert.True(t, core.IsStorage(err))
}
