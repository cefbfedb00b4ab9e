package table

import (
	"fmt"
	"math"
	"strconv"
)

// Dataset is an in-memory table of rows over named columns.
// Cells hold string, float64, int64, bool, or nil for a missing value.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// MissingColumnError reports a column name that is not present in a Dataset.
type MissingColumnError struct {
	Column  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found (have %v)", e.Column, e.Columns)
}

// New returns an empty Dataset with the given column names.
func New(columns ...string) *Dataset {
	d := &Dataset{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range d.columns {
		d.index[c] = i
	}
	return d
}

// FromRows builds a Dataset from literal rows.
func FromRows(columns []string, rows [][]any) (*Dataset, error) {
	d := New(columns...)
	for i, r := range rows {
		if err := d.AddRow(r...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return d, nil
}

// AddRow appends a row. Values are normalized to the supported cell types.
func (d *Dataset) AddRow(vals ...any) error {
	if len(vals) != len(d.columns) {
		return fmt.Errorf("row has %d values, want %d", len(vals), len(d.columns))
	}
	row := make([]any, len(vals))
	for i, v := range vals {
		nv, err := normalize(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", d.columns[i], err)
		}
		row[i] = nv
	}
	d.rows = append(d.rows, row)
	return nil
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return len(d.rows) }

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []any { return append([]any(nil), d.rows[i]...) }

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	idx, ok := d.index[name]
	if !ok {
		return -1, &MissingColumnError{Column: name, Columns: d.Columns()}
	}
	return idx, nil
}

// Require resolves every name and fails on the first one that is absent.
func (d *Dataset) Require(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, err := d.ColumnIndex(n)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Cell returns the value of column name in row i.
func (d *Dataset) Cell(i int, name string) (any, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return d.rows[i][idx], nil
}

// Column returns a copy of every value in the named column.
func (d *Dataset) Column(name string) ([]any, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Floats returns the named column as float64. Non-numeric and missing cells are NaN.
func (d *Dataset) Floats(name string) ([]float64, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		if f, ok := Float(r[idx]); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// ParseCell converts text to the cell type of the named column, taken from
// its first non-missing value, so the result compares equal to matching
// cells. Text is kept as a string when the column holds strings or has no
// values.
func (d *Dataset) ParseCell(name, s string) (any, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	var sample any
	for _, r := range d.rows {
		if !isMissing(r[idx]) {
			sample = r[idx]
			break
		}
	}
	switch sample.(type) {
	case int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q holds integers: %w", name, err)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q holds numbers: %w", name, err)
		}
		return f, nil
	case bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("column %q holds booleans: %w", name, err)
		}
		return b, nil
	default:
		return s, nil
	}
}

// Select projects the dataset onto the named columns.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	idxs, err := d.Require(names...)
	if err != nil {
		return nil, err
	}
	out := New(names...)
	out.rows = make([][]any, len(d.rows))
	for i, r := range d.rows {
		row := make([]any, len(idxs))
		for j, idx := range idxs {
			row[j] = r[idx]
		}
		out.rows[i] = row
	}
	return out, nil
}

// Filter returns the rows for which keep reports true.
func (d *Dataset) Filter(keep func(row []any) bool) *Dataset {
	out := New(d.columns...)
	for _, r := range d.rows {
		if keep(r) {
			out.rows = append(out.rows, append([]any(nil), r...))
		}
	}
	return out
}

// Float converts a numeric cell to float64.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, float64, int64, bool:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T", v)
	}
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}
