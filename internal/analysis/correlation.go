package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/vdjstat/internal/table"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result column names for a GroupedResult table.
const (
	CorrColumn   = "corr"
	PValueColumn = "Pvalue"
)

// CorrelationOptions controls ComputeCorrelation.
type CorrelationOptions struct {
	// Strict turns zero-variance groups into an InsufficientDataError
	// instead of a NaN entry.
	Strict bool
	// Save writes the result table to Path through Sink.
	Save bool
	Path string
	// Sink defaults to FileSink.
	Sink Sink
}

// CorrEntry is the correlation of one group.
type CorrEntry struct {
	Key    table.Key
	Corr   float64
	PValue float64
	N      int
}

// GroupedResult maps group keys to correlation entries in discovery order.
type GroupedResult struct {
	GroupCols []string
	Entries   []CorrEntry
	pos       map[string]int
}

func newGroupedResult(groupCols []string) *GroupedResult {
	return &GroupedResult{GroupCols: append([]string(nil), groupCols...), pos: map[string]int{}}
}

func (r *GroupedResult) add(e CorrEntry) {
	r.pos[e.Key.Encode()] = len(r.Entries)
	r.Entries = append(r.Entries, e)
}

// Len returns the number of groups.
func (r *GroupedResult) Len() int { return len(r.Entries) }

// Get returns the entry for the group with the given key values.
func (r *GroupedResult) Get(key ...any) (CorrEntry, bool) {
	i, ok := r.pos[table.Key(key).Encode()]
	if !ok {
		return CorrEntry{}, false
	}
	return r.Entries[i], true
}

// Table returns the result as a Dataset: the group columns followed by corr and Pvalue.
func (r *GroupedResult) Table() *table.Dataset {
	ds := table.New(concat(r.GroupCols, CorrColumn, PValueColumn)...)
	for _, e := range r.Entries {
		row := append(append([]any(nil), e.Key...), e.Corr, e.PValue)
		_ = ds.AddRow(row...)
	}
	return ds
}

// ComputeCorrelation computes the Pearson correlation and two-sided p-value
// between colA and colB within each group of groupCols. Only rows where both
// values are numeric take part.
//
// A group with fewer than two paired observations fails the whole call with
// an InsufficientDataError. A group with zero variance in either column gets
// NaN for both values, unless opt.Strict is set.
func (a *Analyzer) ComputeCorrelation(ds *table.Dataset, groupCols []string, colA, colB string, opt CorrelationOptions) (*GroupedResult, error) {
	if _, err := ds.Require(concat(groupCols, colA, colB)...); err != nil {
		return nil, err
	}
	groups, err := ds.GroupBy(groupCols...)
	if err != nil {
		return nil, err
	}
	xs, _ := ds.Floats(colA)
	ys, _ := ds.Floats(colB)

	res := newGroupedResult(groupCols)
	for _, g := range groups {
		x := make([]float64, 0, len(g.Rows))
		y := make([]float64, 0, len(g.Rows))
		for _, i := range g.Rows {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			x = append(x, xs[i])
			y = append(y, ys[i])
		}
		if len(x) < 2 {
			return nil, &InsufficientDataError{Key: g.Key, N: len(x), Reason: "fewer than 2 paired observations"}
		}
		r, p, ok := pearson(x, y)
		if !ok {
			if opt.Strict {
				return nil, &InsufficientDataError{Key: g.Key, N: len(x), Reason: "zero variance"}
			}
			a.logger.Warn("correlation undefined, zero variance",
				zap.String("group", g.Key.String()), zap.Int("n", len(x)))
		}
		res.add(CorrEntry{Key: g.Key, Corr: r, PValue: p, N: len(x)})
	}
	a.logger.Debug("computed grouped correlation",
		zap.Strings("group_by", groupCols), zap.String("a", colA), zap.String("b", colB), zap.Int("groups", res.Len()))

	if opt.Save && opt.Path != "" {
		if err := a.persist(opt.Sink, opt.Path, res.Table()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// pearson returns r and its two-sided p-value from the Student t distribution
// with n-2 degrees of freedom. ok is false when either vector is constant.
func pearson(x, y []float64) (r, p float64, ok bool) {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN(), math.NaN(), false
	}
	r = stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	return r, pValue(r, len(x)), true
}

func pValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	ar := math.Abs(r)
	if ar >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := ar * math.Sqrt(df/((1-ar)*(1+ar)))
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(t)
	return math.Max(0, math.Min(1, p))
}

// Matrix is a 2-D pivot of a GroupedResult. Rows and Cols hold the sorted
// distinct values of the two group columns; absent combinations are NaN.
type Matrix struct {
	RowName string
	ColName string
	Rows    []any
	Cols    []any
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the cell for (row, col). ok is false for unknown axis values
// and for combinations that were never observed.
func (m *Matrix) At(row, col any) (float64, bool) {
	i := axisIndex(m.Rows, row)
	j := axisIndex(m.Cols, col)
	if i < 0 || j < 0 || math.IsNaN(m.Values[i][j]) {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

// Table returns the matrix as a Dataset whose first column holds the row
// values and whose remaining columns are named after the column values.
// It fails with ErrAmbiguousHeader when two column values, or a column
// value and RowName, render to the same header.
func (m *Matrix) Table() (*table.Dataset, error) {
	cols := []string{m.RowName}
	seen := map[string]bool{m.RowName: true}
	for _, c := range m.Cols {
		name := table.Format(c)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousHeader, name)
		}
		seen[name] = true
		cols = append(cols, name)
	}
	ds := table.New(cols...)
	for i, r := range m.Rows {
		row := []any{r}
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		if err := ds.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func axisIndex(axis []any, v any) int {
	enc := table.Key{v}.Encode()
	for i, a := range axis {
		if (table.Key{a}).Encode() == enc {
			return i
		}
	}
	return -1
}

// MatrixOptions controls ComputeGroupwiseCorrMatrix.
type MatrixOptions struct {
	// Save writes both matrices next to the base Path, suffixed with
	// CorrMatrixSuffix and PValueMatrixSuffix.
	Save bool
	Path string
	Sink Sink
}

// ComputeGroupwiseCorrMatrix pivots a two-column GroupedResult into a
// correlation matrix and a p-value matrix. groupCols names the row axis then
// the column axis; giving them in the opposite order of the result transposes.
func (a *Analyzer) ComputeGroupwiseCorrMatrix(res *GroupedResult, groupCols []string, opt MatrixOptions) (*Matrix, *Matrix, error) {
	if len(groupCols) != 2 || len(res.GroupCols) != 2 {
		return nil, nil, fmt.Errorf("%w: got %v for a result grouped by %v", ErrMatrixShape, groupCols, res.GroupCols)
	}
	ri := indexOf(res.GroupCols, groupCols[0])
	ci := indexOf(res.GroupCols, groupCols[1])
	for i, idx := range []int{ri, ci} {
		if idx < 0 {
			return nil, nil, &table.MissingColumnError{Column: groupCols[i], Columns: res.GroupCols}
		}
	}
	if ri == ci {
		return nil, nil, fmt.Errorf("%w: %q used for both axes", ErrMatrixShape, groupCols[0])
	}

	rows := distinct(res.Entries, ri)
	cols := distinct(res.Entries, ci)
	corr := newMatrix(groupCols, rows, cols)
	pval := newMatrix(groupCols, rows, cols)
	for _, e := range res.Entries {
		i := axisIndex(rows, e.Key[ri])
		j := axisIndex(cols, e.Key[ci])
		corr.Values[i][j] = e.Corr
		pval.Values[i][j] = e.PValue
	}
	a.logger.Debug("pivoted correlation matrix", zap.Int("rows", len(rows)), zap.Int("cols", len(cols)))

	if opt.Save && opt.Path != "" {
		for _, out := range []struct {
			suffix string
			m      *Matrix
		}{{CorrMatrixSuffix, corr}, {PValueMatrixSuffix, pval}} {
			tbl, err := out.m.Table()
			if err != nil {
				return nil, nil, err
			}
			if err := a.persist(opt.Sink, opt.Path+out.suffix, tbl); err != nil {
				return nil, nil, err
			}
		}
	}
	return corr, pval, nil
}

func newMatrix(names []string, rows, cols []any) *Matrix {
	m := &Matrix{RowName: names[0], ColName: names[1], Rows: rows, Cols: cols}
	m.Values = make([][]float64, len(rows))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(cols))
		for j := range m.Values[i] {
			m.Values[i][j] = math.NaN()
		}
	}
	return m
}

func distinct(entries []CorrEntry, pos int) []any {
	seen := map[string]bool{}
	var out []any
	for _, e := range entries {
		enc := table.Key{e.Key[pos]}.Encode()
		if seen[enc] {
			continue
		}
		seen[enc] = true
		out = append(out, e.Key[pos])
	}
	sort.SliceStable(out, func(i, j int) bool { return table.Compare(out[i], out[j]) < 0 })
	return out
}
