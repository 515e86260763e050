package pipeline

import (
	"sort"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// OneHotEncoder replaces each encoded column with one 0/1 column per category
// seen in Fit, named "<column>_<category>", categories sorted. Categories not
// seen in Fit encode as all zeros. Columns empty means every column.
type OneHotEncoder struct {
	Columns []string

	columns    []string
	categories map[string][]string
}

func (e *OneHotEncoder) Fit(data *frame.Frame, _ []any) error {
	positions, err := columnPositions(data, e.Columns)
	if err != nil {
		return err
	}
	columns := make([]string, 0, len(positions))
	categories := make(map[string][]string, len(positions))
	for _, p := range positions {
		name := data.Columns[p]
		seen := make(map[string]bool)
		for r, row := range data.Rows {
			if frame.IsMissing(row[p]) {
				return errors.NewInvalidArgumentError("column %q has a missing value at row %q", name, data.Index[r])
			}
			seen[frame.FormatValue(row[p])] = true
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		columns = append(columns, name)
		categories[name] = cats
	}
	e.columns = columns
	e.categories = categories
	return nil
}

func (e *OneHotEncoder) Transform(data *frame.Frame) (*frame.Frame, error) {
	if e.categories == nil {
		return nil, notFitted("one-hot encoder")
	}

	var outColumns []string
	positions := make([]int, len(e.columns))
	for i, name := range e.columns {
		p, ok := data.ColumnIndex(name)
		if !ok {
			return nil, errors.NewNotFoundError("column %q not found", name)
		}
		positions[i] = p
		for _, c := range e.categories[name] {
			outColumns = append(outColumns, name+"_"+c)
		}
	}

	out := frame.New(outColumns...)
	for r, row := range data.Rows {
		encoded := make([]any, 0, len(outColumns))
		for i, name := range e.columns {
			v := row[positions[i]]
			if frame.IsMissing(v) {
				return nil, errors.NewInvalidArgumentError("column %q has a missing value at row %q", name, data.Index[r])
			}
			key := frame.FormatValue(v)
			for _, c := range e.categories[name] {
				if c == key {
					encoded = append(encoded, float64(1))
				} else {
					encoded = append(encoded, float64(0))
				}
			}
		}
		if err := out.AppendRow(data.Index[r], encoded...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FeatureNames returns the output column names, or nil before Fit.
func (e *OneHotEncoder) FeatureNames() []string {
	if e.categories == nil {
		return nil
	}
	var out []string
	for _, name := range e.columns {
		for _, c := range e.categories[name] {
			out = append(out, name+"_"+c)
		}
	}
	return out
}
