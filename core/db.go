package core

// Fields holds a partial update, keyed by column name.
// The store never applies the primary key or created_at from it.
type Fields map[string]interface{}

// Set adds `value` under `column` when `ok`, which lets update structs made of optional values
// be translated field by field.
func (f Fields) Set(column string, value interface{}, ok bool) Fields {
	if ok {
		f[column] = value
	}
	return f
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
