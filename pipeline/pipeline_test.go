package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// players has a custom index so label preservation is visible.
func players(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New("name", "team", "hr", "avg")
	require.NoError(t, f.AppendRow("p1", "Judge", "NYY", 62.0, 0.311))
	require.NoError(t, f.AppendRow("p2", "Ohtani", "LAA", 34.0, nil))
	require.NoError(t, f.AppendRow("p3", "Alonso", "NYM", nil, 0.271))
	require.NoError(t, f.AppendRow("p4", "Rizzo", "NYY", 32.0, 0.224))
	return f
}

func TestColumnSelectorAndDropper(t *testing.T) {
	data := players(t)

	out, err := FitTransform(&ColumnSelector{Columns: []string{"hr", "name"}}, data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hr", "name"}, out.Columns)
	assert.Equal(t, data.Index, out.Index)

	out, err = FitTransform(&ColumnDropper{Columns: []string{"avg"}}, data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "team", "hr"}, out.Columns)

	_, err = FitTransform(&ColumnSelector{Columns: []string{"war"}}, data, nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestImputerStrategies(t *testing.T) {
	tests := []struct {
		name     string
		imputer  *Imputer
		column   string
		expected any
	}{
		{"mean", &Imputer{Strategy: StrategyMean, Columns: []string{"hr"}}, "hr", 128.0 / 3},
		{"median", &Imputer{Strategy: StrategyMedian, Columns: []string{"hr"}}, "hr", 34.0},
		{"most frequent", &Imputer{Strategy: StrategyMostFrequent, Columns: []string{"team"}}, "team", "NYY"},
		{"constant", &Imputer{Strategy: StrategyConstant, FillValue: -1.0, Columns: []string{"avg"}}, "avg", -1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.imputer.Fit(players(t), nil))
			stat := tt.imputer.Statistics()[tt.column]
			if f, ok := tt.expected.(float64); ok {
				assert.InDelta(t, f, stat, 1e-9)
			} else {
				assert.Equal(t, tt.expected, stat)
			}
		})
	}
}

func TestImputerFillsMissingAndKeepsLabels(t *testing.T) {
	data := players(t)
	im := &Imputer{Strategy: StrategyMedian, Columns: []string{"hr", "avg"}}
	out, err := FitTransform(im, data, nil)
	require.NoError(t, err)

	assert.Equal(t, data.Columns, out.Columns)
	assert.Equal(t, data.Index, out.Index)
	assert.Equal(t, 34.0, out.Rows[2][2])
	assert.InDelta(t, 0.271, out.Rows[1][3], 1e-9)
	assert.Nil(t, data.Rows[2][2], "input must not be modified")
}

func TestImputerRejectsTextForMean(t *testing.T) {
	err := (&Imputer{Strategy: StrategyMean, Columns: []string{"name"}}).Fit(players(t), nil)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestTransformBeforeFit(t *testing.T) {
	for _, step := range []Transformer{&Imputer{}, &Scaler{}, &OneHotEncoder{}} {
		_, err := step.Transform(players(t))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidArgument(err))
		assert.Contains(t, err.Error(), "not fitted")
	}
}

func TestScalerStandard(t *testing.T) {
	f, err := frame.FromRecords([]string{"x"}, [][]any{{1.0}, {2.0}, {3.0}, {nil}})
	require.NoError(t, err)

	out, err := FitTransform(&Scaler{Method: ScaleStandard}, f, nil)
	require.NoError(t, err)
	// population std of 1,2,3 is sqrt(2/3)
	assert.InDelta(t, -1.224744871, out.Rows[0][0], 1e-6)
	assert.InDelta(t, 0, out.Rows[1][0], 1e-9)
	assert.InDelta(t, 1.224744871, out.Rows[2][0], 1e-6)
	assert.Nil(t, out.Rows[3][0])
}

func TestScalerMinMaxAndConstantColumn(t *testing.T) {
	f, err := frame.FromRecords([]string{"x", "c"}, [][]any{{10.0, 5.0}, {20.0, 5.0}, {15.0, 5.0}})
	require.NoError(t, err)

	out, err := FitTransform(&Scaler{Method: ScaleMinMax}, f, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 0.0}, out.Rows[0])
	assert.Equal(t, []any{1.0, 0.0}, out.Rows[1])
	assert.Equal(t, []any{0.5, 0.0}, out.Rows[2])
}

func TestOneHotEncoder(t *testing.T) {
	data := players(t)
	enc := &OneHotEncoder{Columns: []string{"team"}}
	out, err := FitTransform(enc, data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"team_LAA", "team_NYM", "team_NYY"}, out.Columns)
	assert.Equal(t, enc.FeatureNames(), out.Columns)
	assert.Equal(t, data.Index, out.Index)
	assert.Equal(t, []any{0.0, 0.0, 1.0}, out.Rows[0])

	unseen := frame.New("name", "team", "hr", "avg")
	require.NoError(t, unseen.AppendRow("p9", "Betts", "LAD", 35.0, 0.269))
	out, err = enc.Transform(unseen)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 0.0, 0.0}, out.Rows[0])
}

func TestOneHotEncoderRejectsMissing(t *testing.T) {
	err := (&OneHotEncoder{Columns: []string{"hr"}}).Fit(players(t), nil)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestDropNaN(t *testing.T) {
	data := players(t)

	out, err := FitTransform(&DropNaN{}, data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p4"}, out.Index)

	out, err = FitTransform(&DropNaN{Subset: []string{"hr"}}, data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p4"}, out.Index)

	out, err = FitTransform(&DropNaN{How: HowAll, Subset: []string{"hr", "avg"}}, data, nil)
	require.NoError(t, err)
	assert.Len(t, out.Index, 4)

	_, err = FitTransform(&DropNaN{How: "some"}, data, nil)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestStringCoercer(t *testing.T) {
	out, err := FitTransform(StringCoercer{}, players(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ohtani", "LAA", "34", "nan"}, out.Rows[1])
}

func TestFunctionTransformer(t *testing.T) {
	double := &FunctionTransformer{Func: func(rows [][]any) ([][]any, error) {
		for _, row := range rows {
			for i, v := range row {
				if f, ok := v.(float64); ok {
					row[i] = f * 2
				}
			}
		}
		return rows, nil
	}}
	data := players(t)
	out, err := FitTransform(double, data, nil)
	require.NoError(t, err)
	assert.Equal(t, 124.0, out.Rows[0][2])
	assert.Equal(t, 62.0, data.Rows[0][2])
	assert.Equal(t, data.Index, out.Index)

	shrink := &FunctionTransformer{Func: func(rows [][]any) ([][]any, error) { return rows[:1], nil }}
	_, err = FitTransform(shrink, data, nil)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestFeatureUnionJoinsOnIndex(t *testing.T) {
	union := &FeatureUnion{Steps: []Transformer{
		&ColumnSelector{Columns: []string{"name"}},
		New(&DropNaN{Subset: []string{"hr"}}, &ColumnSelector{Columns: []string{"hr"}}),
	}}
	out, err := FitTransform(union, players(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "hr"}, out.Columns)
	assert.Equal(t, []string{"p1", "p2", "p4"}, out.Index)

	_, err = (&FeatureUnion{}).Transform(players(t))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestPipelineEndToEnd(t *testing.T) {
	p := New(
		&ColumnSelector{Columns: []string{"hr", "avg"}},
		&Imputer{Strategy: StrategyMean},
		&Scaler{Method: ScaleMinMax},
	)
	labels := []any{1, 0, 0, 1}
	require.NoError(t, p.Fit(players(t), labels))

	out, err := p.Transform(players(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"hr", "avg"}, out.Columns)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, out.Index)
	assert.InDelta(t, 1.0, out.Rows[0][0], 1e-9)
	assert.InDelta(t, 0.0, out.Rows[3][0], 1e-9)

	err = p.Fit(players(t), []any{1})
	assert.True(t, errors.IsInvalidArgument(err))
}
