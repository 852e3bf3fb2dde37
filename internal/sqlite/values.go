package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timeValue scans a DATETIME column. The driver returns such columns either
// as text or already parsed as time.Time, depending on the declared type.
type timeValue struct {
	time.Time
}

// Scan implements sql.Scanner.
func (v *timeValue) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		v.Time = x.UTC()
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	default:
		return fmt.Errorf("unsupported timestamp value %T", src)
	}
}

func (v *timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	v.Time = t.UTC()
	return nil
}

// dateValue scans a nullable DATE column.
type dateValue struct {
	date  types.Date
	valid bool
}

// Scan implements sql.Scanner.
func (v *dateValue) Scan(src any) error {
	v.valid = src != nil
	switch x := src.(type) {
	case nil:
		v.date = types.Date{}
		return nil
	case time.Time:
		v.date = types.DateOf(x.UTC())
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	default:
		return fmt.Errorf("unsupported date value %T", src)
	}
}

func (v *dateValue) parse(s string) error {
	if len(s) > len(types.DateLayout) {
		s = s[:len(types.DateLayout)]
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return fmt.Errorf("parsing date: %w", err)
	}
	v.date = d
	return nil
}

// ptr returns the scanned date, or nil for NULL.
func (v *dateValue) ptr() *types.Date {
	if !v.valid {
		return nil
	}
	d := v.date
	return &d
}

// dateArg converts an optional date into a column value.
func dateArg(d *types.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

// idArg converts an optional id into a column value.
func idArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// newIDArg leaves the id NULL for SQLite to assign when it is unset.
func newIDArg(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

// idPtr returns the scanned id, or nil for NULL.
func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// checkPage validates List arguments.
func checkPage(offset, limit int) error {
	if offset < 0 || limit < 0 {
		return fmt.Errorf("%w: offset and limit must be non-negative", types.ErrValidation)
	}
	return nil
}

// pageArgs converts List arguments into LIMIT/OFFSET values. A negative limit
// means no limit and is only used internally.
func pageArgs(offset, limit int) []any {
	return []any{limit, offset}
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](q querier, scan func(rowScanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// toAny converts a typed slice into the []any that Table.List returns.
func toAny[T any](in []*T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// notFound maps sql.ErrNoRows to types.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return fmt.Errorf("scanning %s: %w", what, err)
}
