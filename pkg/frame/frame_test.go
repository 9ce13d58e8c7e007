package frame_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

func TestNewFromColumns_Basic(t *testing.T) {
	f := frame.NewFromColumns(
		[]string{"id", "name"},
		map[string][]interface{}{
			"id":   {1, 2, 3},
			"name": {"a", "b", "c"},
		},
	)

	require.Equal(t, 3, f.NumRows())
	require.Equal(t, 2, f.NumCols())
	assert.Equal(t, []string{"id", "name"}, f.Columns())
	assert.True(t, f.HasColumn("id"))
	assert.False(t, f.HasColumn("missing"))
}

func TestNewFromRows_PreservesOrderAndFillsMissing(t *testing.T) {
	rows := []map[string]interface{}{
		{"a": 1.0, "b": "x"},
		{"a": 2.0},
	}
	f := frame.NewFromRows([]string{"a", "b"}, rows)

	require.Equal(t, 2, f.NumRows())
	col := f.Column("b")
	require.NotNil(t, col)
	assert.Equal(t, "x", col.Values[0])
	assert.Nil(t, col.Values[1])
	assert.Equal(t, 1, col.NullCount())
	assert.Equal(t, 1, col.NonNullCount())
}

func TestDTypeInference_NumericContinuous(t *testing.T) {
	vals := make([]interface{}, 0, 100)
	for i := 0; i < 100; i++ {
		vals = append(vals, float64(i)+0.5)
	}
	f := frame.NewFromColumns([]string{"metric"}, map[string][]interface{}{"metric": vals})

	col := f.Column("metric")
	assert.Equal(t, frame.DTypeNumericContinuous, col.DType)
	assert.True(t, col.DType.IsNumeric())
	assert.Contains(t, f.NumericColumns(), "metric")
}

func TestDTypeInference_NumericDiscrete(t *testing.T) {
	vals := make([]interface{}, 0, 100)
	for i := 0; i < 100; i++ {
		vals = append(vals, float64(i%3))
	}
	f := frame.NewFromColumns([]string{"status_code"}, map[string][]interface{}{"status_code": vals})

	assert.Equal(t, frame.DTypeNumericDiscrete, f.Column("status_code").DType)
}

func TestDTypeInference_CategoricalAndText(t *testing.T) {
	categorical := []interface{}{"GET", "POST", "GET", "PUT", "GET", "POST", "GET", "GET"}
	f := frame.NewFromColumns([]string{"method"}, map[string][]interface{}{"method": categorical})
	assert.Equal(t, frame.DTypeCategoricalNominal, f.Column("method").DType)
	assert.True(t, f.Column("method").DType.IsCategorical())
	assert.Contains(t, f.CategoricalColumns(), "method")

	text := []interface{}{"a long unique sentence one", "another very different phrase", "yet a third distinct line"}
	f2 := frame.NewFromColumns([]string{"message"}, map[string][]interface{}{"message": text})
	assert.Equal(t, frame.DTypeText, f2.Column("message").DType)
}

func TestDTypeInference_Boolean(t *testing.T) {
	f := frame.NewFromColumns([]string{"active"}, map[string][]interface{}{
		"active": {true, false, true, nil, false},
	})
	assert.Equal(t, frame.DTypeBoolean, f.Column("active").DType)
}

func TestDTypeInference_TemporalByHintedName(t *testing.T) {
	f := frame.NewFromColumns([]string{"timestamp"}, map[string][]interface{}{
		"timestamp": {"2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"},
	})
	assert.Equal(t, frame.DTypeTemporal, f.Column("timestamp").DType)
	assert.Equal(t, "timestamp", f.TemporalColumn())
}

func TestDTypeInference_TemporalByGoType(t *testing.T) {
	f := frame.NewFromColumns([]string{"arbitrary_name"}, map[string][]interface{}{
		"arbitrary_name": {time.Now(), time.Now()},
	})
	assert.Equal(t, frame.DTypeTemporal, f.Column("arbitrary_name").DType)
}

func TestSortedByTemporal(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := frame.NewFromColumns([]string{"timestamp", "value"}, map[string][]interface{}{
		"timestamp": {base.Add(2 * time.Hour), base, base.Add(time.Hour)},
		"value":     {3.0, 1.0, 2.0},
	})

	idx := f.SortedByTemporal()
	require.Len(t, idx, 3)
	values := f.Column("value").Values
	assert.Equal(t, 1.0, values[idx[0]])
	assert.Equal(t, 2.0, values[idx[1]])
	assert.Equal(t, 3.0, values[idx[2]])
}

func TestSortedByTemporal_NoTemporalColumnIsIdentity(t *testing.T) {
	f := frame.NewFromColumns([]string{"value"}, map[string][]interface{}{
		"value": {3.0, 1.0, 2.0},
	})
	assert.Equal(t, []int{0, 1, 2}, f.SortedByTemporal())
}

func TestSelect(t *testing.T) {
	f := frame.NewFromColumns([]string{"a", "b", "c"}, map[string][]interface{}{
		"a": {1.0}, "b": {2.0}, "c": {3.0},
	})
	sub := f.Select([]string{"a", "c"})
	assert.Equal(t, []string{"a", "c"}, sub.Columns())
	assert.Equal(t, 1, sub.NumRows())
	assert.False(t, sub.HasColumn("b"))
}

func TestColumnUniqueCount_NormalizesNumericTypes(t *testing.T) {
	col := &frame.Column{Values: []interface{}{1, int64(1), float32(1), 1.0, 2.0}}
	assert.Equal(t, 2, col.UniqueCount())
}

func TestStatisticsHelpers(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, frame.Mean(xs), 1e-9)
	assert.InDelta(t, 2.0, frame.Variance(xs), 1e-9)
	assert.InDelta(t, 1.4142135, frame.StdDev(xs), 1e-5)

	sorted := frame.Sorted([]float64{5, 1, 3, 2, 4})
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, sorted)
	assert.InDelta(t, 3.0, frame.Quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 1.0, frame.Quantile(sorted, 0), 1e-9)
	assert.InDelta(t, 5.0, frame.Quantile(sorted, 1), 1e-9)
}

func TestMeanVarianceEmptySlice(t *testing.T) {
	assert.Equal(t, 0.0, frame.Mean(nil))
	assert.Equal(t, 0.0, frame.Variance(nil))
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in    interface{}
		want  float64
		valid bool
	}{
		{1.5, 1.5, true},
		{int32(4), 4, true},
		{int64(7), 7, true},
		{true, 1, true},
		{false, 0, true},
		{"not a number", 0, false},
	}
	for _, c := range cases {
		got, ok := frame.ToFloat(c.in)
		assert.Equal(t, c.valid, ok)
		if c.valid {
			assert.Equal(t, c.want, got)
		}
	}
}

func TestParseTime(t *testing.T) {
	_, ok := frame.ParseTime("not a timestamp")
	assert.False(t, ok)

	now := time.Now()
	got, ok := frame.ParseTime(now)
	assert.True(t, ok)
	assert.Equal(t, now, got)
}
