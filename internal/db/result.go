// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"
	"iter"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Canonical text layouts for date and timestamp values.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// layouts accepted when a time column comes back as text.
var timeLayouts = []string{
	DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	DateLayout,
	"20060102150405",
	"20060102",
}

// Result is a single-pass cursor over the rows of a SELECT. It owns the
// underlying sql.Rows and must be closed.
type Result struct {
	rows   *sql.Rows
	cols   []string
	cur    Row
	err    error
	closed bool
}

func newResult(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}
	return &Result{rows: rows, cols: cols}, nil
}

// Columns returns the lower-cased column names of the result.
func (r *Result) Columns() []string { return r.cols }

// Next advances to the next row. It returns false at the end of the
// result or on error; the result is closed in both cases.
func (r *Result) Next() bool {
	if r.closed {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		_ = r.Close()
		return false
	}
	raw := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		_ = r.Close()
		return false
	}
	vals := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		if b, ok := raw[i].([]byte); ok {
			vals[c] = string(b)
			continue
		}
		vals[c] = raw[i]
	}
	r.cur = Row{values: vals}
	return true
}

// Row returns the current row. Rows are snapshots and stay valid after
// the cursor moves on.
func (r *Result) Row() Row { return r.cur }

// Err returns the error that stopped iteration, if any.
func (r *Result) Err() error { return r.err }

// Close releases the cursor. It is safe to call more than once.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}

// Rows adapts r to a range-over-func sequence. The result is closed when
// the loop ends, including on break; check r.Err afterwards.
func Rows(r *Result) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		defer func() { _ = r.Close() }()
		for r.Next() {
			if !yield(r.Row()) {
				return
			}
		}
	}
}

// Row holds the column values of one result row keyed by column name.
type Row struct {
	values map[string]any
}

// NewRow builds a Row from a column map. Keys are matched case-insensitively.
func NewRow(values map[string]any) Row {
	vals := make(map[string]any, len(values))
	for k, v := range values {
		vals[strings.ToLower(k)] = v
	}
	return Row{values: vals}
}

// Values returns a copy of the row's column map.
func (r Row) Values() map[string]any {
	return maps.Clone(r.values)
}

func (r Row) value(col string) (any, error) {
	v, ok := r.values[strings.ToLower(col)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchColumn, col)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrNullValue, col)
	}
	return v, nil
}

// IsNull reports whether col is NULL or absent.
func (r Row) IsNull(col string) bool {
	v, ok := r.values[strings.ToLower(col)]
	return !ok || v == nil
}

// GetInt64 reads col as a 64-bit integer.
func (r Row) GetInt64(col string) (int64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return n, nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) >= 1<<63 {
			return 0, fmt.Errorf("column %s: %v is not an integer", col, x)
		}
		return int64(x), nil
	case time.Time:
		return x.Unix(), nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

// GetInt is GetInt64; both exist to mirror the logical column kinds.
func (r Row) GetInt(col string) (int64, error) { return r.GetInt64(col) }

// GetDouble reads col as a float64.
func (r Row) GetDouble(col string) (float64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return f, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return f, nil
}

// GetFloat reads col as a float32.
func (r Row) GetFloat(col string) (float32, error) {
	f, err := r.GetDouble(col)
	return float32(f), err
}

// GetString reads col as text. Timestamps are rendered in DateTimeLayout.
func (r Row) GetString(col string) (string, error) {
	v, err := r.value(col)
	if err != nil {
		return "", err
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(DateTimeLayout), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", col, err)
	}
	return s, nil
}

// GetTime reads col as a UTC timestamp. Text values are parsed with the
// known layouts and integers are taken as Unix seconds.
func (r Row) GetTime(col string) (time.Time, error) {
	v, err := r.value(col)
	if err != nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTime(col, x)
	case int64:
		return time.Unix(x, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("column %s: cannot read %T as time", col, v)
}

func parseTime(col, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: unrecognised time %q", col, s)
}
