package pipeline

import (
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// ColumnSelector keeps only the named columns.
type ColumnSelector struct {
	Columns []string
}

func (s *ColumnSelector) Fit(*frame.Frame, []any) error { return nil }

func (s *ColumnSelector) Transform(data *frame.Frame) (*frame.Frame, error) {
	return data.Select(s.Columns...)
}

// ColumnDropper removes the named columns.
type ColumnDropper struct {
	Columns []string
}

func (d *ColumnDropper) Fit(*frame.Frame, []any) error { return nil }

func (d *ColumnDropper) Transform(data *frame.Frame) (*frame.Frame, error) {
	return data.Drop(d.Columns...)
}

// StringCoercer renders every cell as a string. Missing cells become "nan".
type StringCoercer struct{}

// MissingString replaces missing cells in StringCoercer output.
const MissingString = "nan"

func (StringCoercer) Fit(*frame.Frame, []any) error { return nil }

func (StringCoercer) Transform(data *frame.Frame) (*frame.Frame, error) {
	out := data.Clone()
	for _, row := range out.Rows {
		for i, v := range row {
			if frame.IsMissing(v) {
				row[i] = MissingString
				continue
			}
			row[i] = frame.FormatValue(v)
		}
	}
	return out, nil
}

// How selects which rows DropNaN removes.
type How string

const (
	// HowAny drops a row when any considered cell is missing.
	HowAny How = "any"
	// HowAll drops a row only when every considered cell is missing.
	HowAll How = "all"
)

// DropNaN removes rows with missing cells. Subset restricts which columns
// are considered; empty means all columns.
type DropNaN struct {
	How    How
	Subset []string
}

func (d *DropNaN) Fit(*frame.Frame, []any) error { return nil }

func (d *DropNaN) Transform(data *frame.Frame) (*frame.Frame, error) {
	how := d.How
	if how == "" {
		how = HowAny
	}
	if how != HowAny && how != HowAll {
		return nil, errors.NewInvalidArgumentError("unknown drop mode %q", string(how))
	}

	positions, err := columnPositions(data, d.Subset)
	if err != nil {
		return nil, err
	}

	out := frame.New(data.Columns...)
	for r, row := range data.Rows {
		missing := 0
		for _, p := range positions {
			if frame.IsMissing(row[p]) {
				missing++
			}
		}
		drop := (how == HowAny && missing > 0) || (how == HowAll && missing == len(positions))
		if drop && len(positions) > 0 {
			continue
		}
		out.Index = append(out.Index, data.Index[r])
		out.Rows = append(out.Rows, append([]any(nil), row...))
	}
	return out, nil
}

// FunctionTransformer applies Func to the cell matrix and restores the
// input's labels. Func must return the same shape it was given.
type FunctionTransformer struct {
	Func func(rows [][]any) ([][]any, error)
}

func (f *FunctionTransformer) Fit(*frame.Frame, []any) error { return nil }

func (f *FunctionTransformer) Transform(data *frame.Frame) (*frame.Frame, error) {
	if f.Func == nil {
		return data.Clone(), nil
	}
	in := data.Clone()
	rows, err := f.Func(in.Rows)
	if err != nil {
		return nil, errors.Wrap(err, "function transformer")
	}
	if len(rows) != data.Len() {
		return nil, errors.NewInvalidArgumentError("function returned %d rows, expected %d", len(rows), data.Len())
	}
	for i, row := range rows {
		if len(row) != len(data.Columns) {
			return nil, errors.NewInvalidArgumentError("function returned %d values in row %d, expected %d", len(row), i, len(data.Columns))
		}
	}
	return &frame.Frame{
		Columns: append([]string(nil), data.Columns...),
		Index:   append([]string(nil), data.Index...),
		Rows:    rows,
	}, nil
}

// columnPositions resolves names to positions; empty names means all columns.
func columnPositions(data *frame.Frame, names []string) ([]int, error) {
	if len(names) == 0 {
		out := make([]int, len(data.Columns))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	out := make([]int, len(names))
	for i, n := range names {
		p, ok := data.ColumnIndex(n)
		if !ok {
			return nil, errors.NewNotFoundError("column %q not found", n)
		}
		out[i] = p
	}
	return out, nil
}
