// Package frame holds rectangular, labelled data: named columns, a row
// index, and loosely typed cells. It is the exchange format between the
// SQLite helpers, the Google Sheets bridge, CSV files, the fuzzy matcher
// and the transformation pipeline.
//
// Cell values are nil (missing), string, float64, int64 or bool.
package frame

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/teranos/dugout/errors"
)

// Frame is a row-major table with column and row labels.
type Frame struct {
	Columns []string
	Index   []string
	Rows    [][]any
}

// New creates an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a frame from rows, assigning a positional index.
func FromRecords(columns []string, rows [][]any) (*Frame, error) {
	f := New(columns...)
	for _, row := range rows {
		if err := f.AppendRow(strconv.Itoa(f.Len()), row...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// AppendRow adds a row. The number of values must match the column count.
func (f *Frame) AppendRow(index string, values ...any) error {
	if len(values) != len(f.Columns) {
		return errors.NewInvalidArgumentError("row %q has %d values, frame has %d columns", index, len(values), len(f.Columns))
	}
	f.Index = append(f.Index, index)
	f.Rows = append(f.Rows, append([]any(nil), values...))
	return nil
}

// ColumnIndex returns the position of a column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of one column's values.
func (f *Frame) Column(name string) ([]any, error) {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return nil, errors.NewNotFoundError("column %q not found", name)
	}
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Strings returns the non-missing values of a column rendered as strings,
// in row order. Missing cells are skipped.
func (f *Frame) Strings(name string) ([]string, error) {
	values, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, FormatValue(v))
	}
	return out, nil
}

// Select returns a new frame with only the named columns, in the given order.
func (f *Frame) Select(columns ...string) (*Frame, error) {
	positions := make([]int, len(columns))
	for i, c := range columns {
		idx, ok := f.ColumnIndex(c)
		if !ok {
			return nil, errors.NewNotFoundError("column %q not found", c)
		}
		positions[i] = idx
	}

	out := New(columns...)
	out.Index = append([]string(nil), f.Index...)
	out.Rows = make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		newRow := make([]any, len(positions))
		for i, p := range positions {
			newRow[i] = row[p]
		}
		out.Rows[r] = newRow
	}
	return out, nil
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(columns ...string) (*Frame, error) {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		if _, ok := f.ColumnIndex(c); !ok {
			return nil, errors.NewNotFoundError("column %q not found", c)
		}
		drop[c] = true
	}

	keep := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	return f.Select(keep...)
}

// Clone returns a deep copy of the frame's structure. Cell values are
// immutable scalars so they are shared.
func (f *Frame) Clone() *Frame {
	out := New(f.Columns...)
	out.Index = append([]string(nil), f.Index...)
	out.Rows = make([][]any, len(f.Rows))
	for i, row := range f.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// JoinIndex inner-joins two frames on their row index, keeping the order of
// the receiver. Colliding column names get "_x" and "_y" suffixes.
func (f *Frame) JoinIndex(other *Frame) *Frame {
	otherRows := make(map[string][]any, len(other.Index))
	for i, idx := range other.Index {
		if _, seen := otherRows[idx]; !seen {
			otherRows[idx] = other.Rows[i]
		}
	}

	collide := make(map[string]bool)
	for _, c := range f.Columns {
		if _, ok := other.ColumnIndex(c); ok {
			collide[c] = true
		}
	}

	columns := make([]string, 0, len(f.Columns)+len(other.Columns))
	for _, c := range f.Columns {
		if collide[c] {
			c += "_x"
		}
		columns = append(columns, c)
	}
	for _, c := range other.Columns {
		if collide[c] {
			c += "_y"
		}
		columns = append(columns, c)
	}

	out := New(columns...)
	for i, idx := range f.Index {
		right, ok := otherRows[idx]
		if !ok {
			continue
		}
		row := make([]any, 0, len(columns))
		row = append(row, f.Rows[i]...)
		row = append(row, right...)
		out.Index = append(out.Index, idx)
		out.Rows = append(out.Rows, row)
	}
	return out
}

// FormatValue renders a cell for text outputs. Missing cells render empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// IsMissing reports whether a cell counts as missing (nil or NaN).
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if x, ok := v.(float64); ok && math.IsNaN(x) {
		return true
	}
	return false
}

// ToFloat converts a numeric cell to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
