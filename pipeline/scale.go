package pipeline

import (
	"math"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// ScaleMethod selects Scaler's transformation.
type ScaleMethod string

const (
	// ScaleStandard centres on the mean and divides by the population
	// standard deviation.
	ScaleStandard ScaleMethod = "standard"
	// ScaleMinMax maps the observed range onto [0, 1].
	ScaleMinMax ScaleMethod = "minmax"
)

type scaling struct {
	offset, scale float64
}

// Scaler rescales numeric columns. Missing cells stay missing; a column with
// zero variance or range is scaled by 1.
type Scaler struct {
	Method  ScaleMethod
	Columns []string

	params map[string]scaling
}

func (s *Scaler) Fit(data *frame.Frame, _ []any) error {
	method := s.Method
	if method == "" {
		method = ScaleStandard
	}
	if method != ScaleStandard && method != ScaleMinMax {
		return errors.NewInvalidArgumentError("unknown scale method %q", string(method))
	}
	positions, err := columnPositions(data, s.Columns)
	if err != nil {
		return err
	}

	params := make(map[string]scaling, len(positions))
	for _, p := range positions {
		name := data.Columns[p]
		var observed []any
		for _, row := range data.Rows {
			if !frame.IsMissing(row[p]) {
				observed = append(observed, row[p])
			}
		}
		nums, err := numbers(name, observed)
		if err != nil {
			return err
		}
		if len(nums) == 0 {
			params[name] = scaling{scale: 1}
			continue
		}

		var sc scaling
		if method == ScaleStandard {
			m := mean(nums)
			var ss float64
			for _, n := range nums {
				ss += (n - m) * (n - m)
			}
			sc = scaling{offset: m, scale: math.Sqrt(ss / float64(len(nums)))}
		} else {
			lo, hi := nums[0], nums[0]
			for _, n := range nums[1:] {
				lo = math.Min(lo, n)
				hi = math.Max(hi, n)
			}
			sc = scaling{offset: lo, scale: hi - lo}
		}
		if sc.scale == 0 {
			sc.scale = 1
		}
		params[name] = sc
	}
	s.params = params
	return nil
}

func (s *Scaler) Transform(data *frame.Frame) (*frame.Frame, error) {
	if s.params == nil {
		return nil, notFitted("scaler")
	}
	out := data.Clone()
	for name, sc := range s.params {
		p, ok := out.ColumnIndex(name)
		if !ok {
			return nil, errors.NewNotFoundError("column %q not found", name)
		}
		for _, row := range out.Rows {
			if frame.IsMissing(row[p]) {
				continue
			}
			f, ok := frame.ToFloat(row[p])
			if !ok {
				return nil, errors.NewInvalidArgumentError("column %q has non-numeric value %q", name, frame.FormatValue(row[p]))
			}
			row[p] = (f - sc.offset) / sc.scale
		}
	}
	return out, nil
}
