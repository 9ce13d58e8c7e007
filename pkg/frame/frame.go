package frame

import (
	"math"
	"sort"
	"time"
)

// Column is a single typed, nullable column of a Frame.
type Column struct {
	Name   string
	DType  DType
	Values []interface{} // nil entries represent null
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Values) }

// NullCount returns the number of nil entries.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// NonNullCount returns the number of non-nil entries.
func (c *Column) NonNullCount() int { return c.Len() - c.NullCount() }

// UniqueCount returns the number of distinct non-null values.
func (c *Column) UniqueCount() int {
	seen := make(map[interface{}]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		seen[normalizeForSet(v)] = struct{}{}
	}
	return len(seen)
}

func normalizeForSet(v interface{}) interface{} {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return v
	}
}

// Floats returns the column's non-null values coerced to float64, in order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		f, ok := ToFloat(v)
		if ok {
			out = append(out, f)
		}
	}
	return out
}

// ToFloat coerces a frame value into a float64 where numerically meaningful.
func ToFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
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

// Frame is an immutable, column-oriented, insertion-ordered dataset.
type Frame struct {
	columnOrder []string
	columns     map[string]*Column
	rowCount    int

	// TimeIndex, if non-empty, names the column used as the implicit temporal
	// index. Empty string means no implicit temporal index is set.
	TimeIndex string
}

// NewFromColumns builds a Frame from a column-map form: ordered column names and
// their values. All columns must have equal length.
func NewFromColumns(order []string, data map[string][]interface{}) *Frame {
	f := &Frame{
		columnOrder: append([]string(nil), order...),
		columns:     make(map[string]*Column, len(order)),
	}
	for _, name := range order {
		vals := data[name]
		if f.rowCount == 0 {
			f.rowCount = len(vals)
		}
		col := &Column{Name: name, Values: append([]interface{}(nil), vals...)}
		col.DType = inferDType(name, col.Values)
		f.columns[name] = col
	}
	return f
}

// NewFromRows builds a Frame from a row-list form: an ordered list of column
// names (defining column order) and a slice of maps, one per row.
func NewFromRows(columnOrder []string, rows []map[string]interface{}) *Frame {
	data := make(map[string][]interface{}, len(columnOrder))
	for _, name := range columnOrder {
		vals := make([]interface{}, len(rows))
		for i, row := range rows {
			vals[i] = row[name]
		}
		data[name] = vals
	}
	return NewFromColumns(columnOrder, data)
}

// Columns returns the ordered list of column names.
func (f *Frame) Columns() []string { return append([]string(nil), f.columnOrder...) }

// NumRows returns the row count.
func (f *Frame) NumRows() int { return f.rowCount }

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.columnOrder) }

// Column returns the named column, or nil if absent.
func (f *Frame) Column(name string) *Column { return f.columns[name] }

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// NumericColumns returns the names of columns whose dtype is numeric, in
// insertion order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, name := range f.columnOrder {
		if f.columns[name].DType.IsNumeric() {
			out = append(out, name)
		}
	}
	return out
}

// CategoricalColumns returns the names of categorical columns.
func (f *Frame) CategoricalColumns() []string {
	var out []string
	for _, name := range f.columnOrder {
		if f.columns[name].DType.IsCategorical() {
			out = append(out, name)
		}
	}
	return out
}

// TemporalColumn returns the name of the first temporal-typed column, or the
// explicit TimeIndex if set, or "" if neither exists.
func (f *Frame) TemporalColumn() string {
	if f.TimeIndex != "" && f.HasColumn(f.TimeIndex) {
		return f.TimeIndex
	}
	for _, name := range f.columnOrder {
		if f.columns[name].DType == DTypeTemporal {
			return name
		}
	}
	return ""
}

// Select returns a new Frame restricted to the given column subset, preserving
// order. Underlying value slices are shared (no copy) since Frames are
// immutable after construction.
func (f *Frame) Select(names []string) *Frame {
	nf := &Frame{
		columnOrder: append([]string(nil), names...),
		columns:     make(map[string]*Column, len(names)),
		rowCount:    f.rowCount,
		TimeIndex:   f.TimeIndex,
	}
	for _, name := range names {
		if c, ok := f.columns[name]; ok {
			nf.columns[name] = c
		}
	}
	return nf
}

// SortedByTemporal returns row indices sorted ascending by the temporal column's
// parsed time, or the identity permutation if there is no temporal column.
func (f *Frame) SortedByTemporal() []int {
	idx := make([]int, f.rowCount)
	for i := range idx {
		idx[i] = i
	}
	tcol := f.TemporalColumn()
	if tcol == "" {
		return idx
	}
	col := f.columns[tcol]
	times := make([]time.Time, f.rowCount)
	for i, v := range col.Values {
		times[i] = parseTime(v)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return times[idx[a]].Before(times[idx[b]])
	})
	return idx
}

func parseTime(v interface{}) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t
			}
		}
	case float64:
		return time.Unix(int64(x), 0)
	case int64:
		return time.Unix(x, 0)
	}
	return time.Time{}
}

// ParseTime exposes the frame's best-effort timestamp coercion for callers that
// need to interpret a raw temporal cell value (detectors, shape analyzer).
func ParseTime(v interface{}) (time.Time, bool) {
	t := parseTime(v)
	return t, !t.IsZero()
}

var timeColumnNameHints = map[string]struct{}{
	"time": {}, "date": {}, "timestamp": {}, "datetime": {}, "created": {}, "updated": {},
}

func inferDType(name string, values []interface{}) DType {
	nonNull := 0
	for _, v := range values {
		if v != nil {
			nonNull++
		}
	}
	if nonNull == 0 {
		return DTypeMixed
	}

	if looksTemporal(name, values) {
		return DTypeTemporal
	}
	if looksBoolean(values) {
		return DTypeBoolean
	}
	if isNumeric, floats := allNumeric(values); isNumeric {
		return classifyNumeric(floats)
	}
	if looksCategorical(values, nonNull) {
		return DTypeCategoricalNominal
	}
	return DTypeText
}

func looksTemporal(name string, values []interface{}) bool {
	lname := toLower(name)
	hinted := false
	for hint := range timeColumnNameHints {
		if containsSub(lname, hint) {
			hinted = true
			break
		}
	}
	// time.Time values are always temporal regardless of name.
	sampleTimeTyped := 0
	checked := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(time.Time); ok {
			sampleTimeTyped++
		}
		checked++
		if checked >= 10 {
			break
		}
	}
	if sampleTimeTyped > 0 {
		return true
	}
	if !hinted {
		return false
	}
	parsed := 0
	checked = 0
	for _, v := range values {
		if v == nil {
			continue
		}
		checked++
		if t := parseTime(v); !t.IsZero() {
			parsed++
		}
		if checked >= 10 {
			break
		}
	}
	return checked > 0 && parsed == checked
}

func looksBoolean(values []interface{}) bool {
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(bool); !ok {
			return false
		}
	}
	return true
}

func allNumeric(values []interface{}) (bool, []float64) {
	floats := make([]float64, 0, len(values))
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			return false, nil
		}
		if _, isBool := v.(bool); isBool {
			return false, nil
		}
		floats = append(floats, f)
		any = true
	}
	return any, floats
}

// classifyNumeric splits continuous vs discrete by unique-ratio<0.05 and
// cardinality<20, per spec.md §4.1.
func classifyNumeric(values []float64) DType {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	cardinality := len(seen)
	uniqueRatio := float64(cardinality) / float64(len(values))
	if uniqueRatio < 0.05 && cardinality < 20 {
		return DTypeNumericDiscrete
	}
	return DTypeNumericContinuous
}

func looksCategorical(values []interface{}, nonNull int) bool {
	seen := make(map[interface{}]struct{})
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(string); !ok {
			return false
		}
		seen[v] = struct{}{}
	}
	// Cardinality well below row count suggests categorical rather than free text.
	return len(seen) > 0 && float64(len(seen))/float64(nonNull) < 0.5
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func containsSub(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// Mean returns the arithmetic mean of a float slice, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation.
func StdDev(xs []float64) float64 { return math.Sqrt(Variance(xs)) }

// Skewness returns the (biased) sample skewness.
func Skewness(xs []float64) float64 {
	n := float64(len(xs))
	if n < 3 {
		return 0
	}
	m := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := (x - m) / sd
		sum += d * d * d
	}
	return sum / n
}

// Kurtosis returns the excess kurtosis (normal distribution == 0).
func Kurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n < 4 {
		return 0
	}
	m := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := (x - m) / sd
		sum += d * d * d * d
	}
	return sum/n - 3
}

// Sorted returns a sorted copy of xs.
func Sorted(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// Quantile returns the linear-interpolated quantile q in [0,1] of a
// pre-sorted slice.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
