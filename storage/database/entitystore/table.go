package entitystore

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
)

const createdAtColumn = "created_at"

var (
	ErrNoRecord      = errors.New("no record")
	ErrUnknownIndex  = errors.New("unknown index")
	ErrUnknownColumn = errors.New("unknown column")
)

// Index is a declared lookup path. Several columns make a compound index, matched exactly.
type Index struct {
	Name    string
	Columns []string
}

// Schema describes a table: its primary key, the columns callers may write and its indexes.
// Columns excludes the primary key and created_at, which belong to the store.
type Schema struct {
	Name    string
	PK      string
	Columns []string
	Indexes []Index
}

func (s Schema) index(name string) (Index, error) {
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return Index{}, errors.Wrapf(ErrUnknownIndex, "%s.%s", s.Name, name)
}

func (s Schema) hasColumn(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Table stores rows of type T. T is a struct whose `db` tags name the schema columns,
// including the primary key and created_at.
type Table[T any] struct {
	schema Schema
	db     *DB
	ex     Executor
}

func NewTable[T any](db *DB, schema Schema) *Table[T] {
	return &Table[T]{schema: schema, db: db, ex: db.db}
}

// With returns the same table bound to `ex`, typically a transaction from DB.InTx.
func (t *Table[T]) With(ex Executor) *Table[T] {
	return &Table[T]{schema: t.schema, db: t.db, ex: ex}
}

func (t *Table[T]) Name() string { return t.schema.Name }

func (t *Table[T]) fieldMap(rec *T) (map[string]reflect.Value, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nil, errors.Errorf("%s: record must be a non-nil pointer", t.schema.Name)
	}
	return t.db.mapper.FieldMap(v.Elem()), nil
}

func (t *Table[T]) storageErr(op string, err error) error {
	return core.NewStorageError(t.schema.Name+"."+op, err)
}

func (t *Table[T]) recordChange(ctx context.Context, op Operation, id int64, payload interface{}) error {
	if t.db.hook == nil {
		return nil
	}
	return t.db.hook.RecordChange(ctx, t.ex, t.schema.Name, op, id, payload)
}

// Add inserts `rec`, then sets its primary key and created_at to the values assigned by the store.
func (t *Table[T]) Add(ctx context.Context, rec *T) (int64, error) {
	fm, err := t.fieldMap(rec)
	if err != nil {
		return 0, err
	}
	createdAt := t.db.now()

	cols := make([]string, 0, len(t.schema.Columns)+1)
	args := make([]interface{}, 0, len(t.schema.Columns)+1)
	for _, col := range t.schema.Columns {
		fv, ok := fm[col]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownColumn, "%s.%s", t.schema.Name, col)
		}
		cols = append(cols, col)
		args = append(args, fv.Interface())
	}
	cols = append(cols, createdAtColumn)
	args = append(args, createdAt)

	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.schema.Name, strings.Join(cols, ", "), placeholders(len(cols)),
	)
	res, err := t.ex.ExecContext(ctx, t.ex.Rebind(q), args...)
	if err != nil {
		return 0, t.storageErr("add", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, t.storageErr("add", err)
	}

	if fv, ok := fm[t.schema.PK]; ok && fv.CanSet() {
		fv.SetInt(id)
	}
	if fv, ok := fm[createdAtColumn]; ok && fv.CanSet() {
		fv.Set(reflect.ValueOf(createdAt))
	}
	if err = t.recordChange(ctx, OpCreate, id, rec); err != nil {
		return 0, err
	}
	return id, nil
}

// Put inserts `rec` with its own primary key and created_at, replacing any row with the same key.
// It exists for restoring backups; regular writes go through Add.
func (t *Table[T]) Put(ctx context.Context, rec *T) error {
	fm, err := t.fieldMap(rec)
	if err != nil {
		return err
	}
	cols := make([]string, 0, len(t.schema.Columns)+2)
	cols = append(cols, t.schema.PK)
	cols = append(cols, t.schema.Columns...)
	cols = append(cols, createdAtColumn)

	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		fv, ok := fm[col]
		if !ok {
			return errors.Wrapf(ErrUnknownColumn, "%s.%s", t.schema.Name, col)
		}
		args = append(args, fv.Interface())
	}
	q := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		t.schema.Name, strings.Join(cols, ", "), placeholders(len(cols)),
	)
	if _, err = t.ex.ExecContext(ctx, t.ex.Rebind(q), args...); err != nil {
		return t.storageErr("put", err)
	}
	return nil
}

// Get returns the row with primary key `id`, or ErrNoRecord.
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var rec T
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", t.schema.Name, t.schema.PK)
	if err := sqlx.GetContext(ctx, t.ex, &rec, t.ex.Rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNoRecord
		}
		return rec, t.storageErr("get", err)
	}
	return rec, nil
}

// GetMany returns the rows whose primary key is in `ids`, in primary key order.
// Missing ids are skipped.
func (t *Table[T]) GetMany(ctx context.Context, ids []int64) ([]T, error) {
	return t.selectIn(ctx, "get many", t.schema.PK, ids)
}

// ByIndex returns the rows exactly matching `values` on the columns of the index named `index`.
func (t *Table[T]) ByIndex(ctx context.Context, index string, values ...interface{}) ([]T, error) {
	where, err := t.indexWhere(index, values)
	if err != nil {
		return nil, err
	}
	var recs []T
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s", t.schema.Name, where, t.schema.PK)
	if err = sqlx.SelectContext(ctx, t.ex, &recs, t.ex.Rebind(q), values...); err != nil {
		return nil, t.storageErr("by index "+index, err)
	}
	return recs, nil
}

// FirstByIndex returns the first row matching the index, or ErrNoRecord.
func (t *Table[T]) FirstByIndex(ctx context.Context, index string, values ...interface{}) (T, error) {
	var rec T
	recs, err := t.ByIndex(ctx, index, values...)
	if err != nil {
		return rec, err
	}
	if len(recs) == 0 {
		return rec, ErrNoRecord
	}
	return recs[0], nil
}

// ByIndexAnyOf returns the rows whose single-column index value is one of `values`.
func (t *Table[T]) ByIndexAnyOf(ctx context.Context, index string, values []int64) ([]T, error) {
	idx, err := t.schema.index(index)
	if err != nil {
		return nil, err
	}
	if len(idx.Columns) != 1 {
		return nil, errors.Errorf("%s.%s: any-of lookups need a single-column index", t.schema.Name, index)
	}
	return t.selectIn(ctx, "by index any of "+index, idx.Columns[0], values)
}

func (t *Table[T]) selectIn(ctx context.Context, op, col string, values []int64) ([]T, error) {
	if len(values) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(
		fmt.Sprintf("SELECT * FROM %s WHERE %s IN (?) ORDER BY %s", t.schema.Name, col, t.schema.PK),
		values,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building IN query")
	}
	var recs []T
	if err = sqlx.SelectContext(ctx, t.ex, &recs, t.ex.Rebind(q), args...); err != nil {
		return nil, t.storageErr(op, err)
	}
	return recs, nil
}

// Update merges `fields` into the row `id` and returns the number of rows matched: 0 when the row
// does not exist. The primary key and created_at are never written.
func (t *Table[T]) Update(ctx context.Context, id int64, fields core.Fields) (int64, error) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if col == t.schema.PK || col == createdAtColumn {
			continue
		}
		if !t.schema.hasColumn(col) {
			return 0, errors.Wrapf(ErrUnknownColumn, "%s.%s", t.schema.Name, col)
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return t.count(ctx, t.schema.PK+" = ?", id)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	args = append(args, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.schema.Name, strings.Join(sets, ", "), t.schema.PK)
	res, err := t.ex.ExecContext(ctx, t.ex.Rebind(q), args...)
	if err != nil {
		return 0, t.storageErr("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, t.storageErr("update", err)
	}
	if n > 0 {
		if err = t.recordChange(ctx, OpUpdate, id, fields); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Delete removes the row `id`. Deleting a missing row is not an error.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.schema.Name, t.schema.PK)
	res, err := t.ex.ExecContext(ctx, t.ex.Rebind(q), id)
	if err != nil {
		return t.storageErr("delete", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return t.recordChange(ctx, OpDelete, id, nil)
	}
	return nil
}

// DeleteByIndex removes every row matching the index and returns how many were removed.
func (t *Table[T]) DeleteByIndex(ctx context.Context, index string, values ...interface{}) (int64, error) {
	where, err := t.indexWhere(index, values)
	if err != nil {
		return 0, err
	}
	var ids []int64
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", t.schema.PK, t.schema.Name, where)
	if err = sqlx.SelectContext(ctx, t.ex, &ids, t.ex.Rebind(q), values...); err != nil {
		return 0, t.storageErr("delete by index "+index, err)
	}
	for _, id := range ids {
		if err = t.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return int64(len(ids)), nil
}

// All returns every row, in primary key order unless an ordering is given.
func (t *Table[T]) All(ctx context.Context, order ...core.DBOrdering) ([]T, error) {
	orderBy := make([]string, 0, len(order)+1)
	for _, ord := range order {
		if ord.Field != t.schema.PK && ord.Field != createdAtColumn && !t.schema.hasColumn(ord.Field) {
			return nil, errors.Wrapf(ErrUnknownColumn, "%s.%s", t.schema.Name, ord.Field)
		}
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, t.schema.PK+" ASC")

	var recs []T
	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", t.schema.Name, strings.Join(orderBy, ", "))
	if err := sqlx.SelectContext(ctx, t.ex, &recs, q); err != nil {
		return nil, t.storageErr("all", err)
	}
	return recs, nil
}

// Count returns the number of rows.
func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	return t.count(ctx, "1 = 1")
}

// CountByIndex returns the number of rows matching the index.
func (t *Table[T]) CountByIndex(ctx context.Context, index string, values ...interface{}) (int64, error) {
	where, err := t.indexWhere(index, values)
	if err != nil {
		return 0, err
	}
	return t.count(ctx, where, values...)
}

func (t *Table[T]) count(ctx context.Context, where string, args ...interface{}) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", t.schema.Name, where)
	if err := sqlx.GetContext(ctx, t.ex, &n, t.ex.Rebind(q), args...); err != nil {
		return 0, t.storageErr("count", err)
	}
	return n, nil
}

// Clear removes every row. Like Put, it bypasses the change hook.
func (t *Table[T]) Clear(ctx context.Context) error {
	if _, err := t.ex.ExecContext(ctx, "DELETE FROM "+t.schema.Name); err != nil {
		return t.storageErr("clear", err)
	}
	return nil
}

func (t *Table[T]) indexWhere(index string, values []interface{}) (string, error) {
	idx, err := t.schema.index(index)
	if err != nil {
		return "", err
	}
	if len(values) != len(idx.Columns) {
		return "", errors.Errorf(
			"%s.%s: index has %d column(s), got %d value(s)", t.schema.Name, index, len(idx.Columns), len(values),
		)
	}
	conds := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		conds = append(conds, col+" = ?")
	}
	return strings.Join(conds, " AND "), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

