package pipeline

import (
	"sort"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// Strategy selects how Imputer computes its fill values.
type Strategy string

const (
	StrategyMean         Strategy = "mean"
	StrategyMedian       Strategy = "median"
	StrategyMostFrequent Strategy = "most_frequent"
	StrategyConstant     Strategy = "constant"
)

// Imputer replaces missing cells with a per-column statistic learned in Fit.
// Columns restricts the imputed columns; empty means all columns. Columns
// with no observed values keep their missing cells.
type Imputer struct {
	Strategy  Strategy
	FillValue any
	Columns   []string

	stats map[string]any
}

func (im *Imputer) Fit(data *frame.Frame, _ []any) error {
	strategy := im.Strategy
	if strategy == "" {
		strategy = StrategyMean
	}
	positions, err := columnPositions(data, im.Columns)
	if err != nil {
		return err
	}

	stats := make(map[string]any, len(positions))
	for _, p := range positions {
		name := data.Columns[p]
		var observed []any
		for _, row := range data.Rows {
			if !frame.IsMissing(row[p]) {
				observed = append(observed, row[p])
			}
		}

		var stat any
		switch strategy {
		case StrategyMean, StrategyMedian:
			nums, err := numbers(name, observed)
			if err != nil {
				return err
			}
			if len(nums) > 0 {
				if strategy == StrategyMean {
					stat = mean(nums)
				} else {
					stat = median(nums)
				}
			}
		case StrategyMostFrequent:
			stat = mostFrequent(observed)
		case StrategyConstant:
			stat = im.FillValue
			if stat == nil {
				stat = float64(0)
			}
		default:
			return errors.NewInvalidArgumentError("unknown imputer strategy %q", string(strategy))
		}
		stats[name] = stat
	}
	im.stats = stats
	return nil
}

func (im *Imputer) Transform(data *frame.Frame) (*frame.Frame, error) {
	if im.stats == nil {
		return nil, notFitted("imputer")
	}
	out := data.Clone()
	for name, stat := range im.stats {
		if stat == nil {
			continue
		}
		p, ok := out.ColumnIndex(name)
		if !ok {
			return nil, errors.NewNotFoundError("column %q not found", name)
		}
		for _, row := range out.Rows {
			if frame.IsMissing(row[p]) {
				row[p] = stat
			}
		}
	}
	return out, nil
}

// Statistics returns the learned fill value per column, or nil before Fit.
func (im *Imputer) Statistics() map[string]any {
	if im.stats == nil {
		return nil
	}
	out := make(map[string]any, len(im.stats))
	for k, v := range im.stats {
		out[k] = v
	}
	return out
}

func numbers(column string, values []any) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := frame.ToFloat(v)
		if !ok {
			return nil, errors.NewInvalidArgumentError("column %q has non-numeric value %q", column, frame.FormatValue(v))
		}
		out = append(out, f)
	}
	return out, nil
}

func mean(nums []float64) float64 {
	var sum float64
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}

func median(nums []float64) float64 {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mostFrequent returns the modal value; ties go to the smallest rendering.
func mostFrequent(values []any) any {
	counts := make(map[string]int)
	first := make(map[string]any)
	for _, v := range values {
		key := frame.FormatValue(v)
		if _, ok := first[key]; !ok {
			first[key] = v
		}
		counts[key]++
	}
	var bestKey string
	best := 0
	for key, n := range counts {
		if n > best || (n == best && key < bestKey) {
			bestKey, best = key, n
		}
	}
	if best == 0 {
		return nil
	}
	return first[bestKey]
}
