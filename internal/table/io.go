package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ReadCSV loads delimited text with a header row. Column types are detected
// per column: integers become int64, other numbers float64, true/false bool,
// everything else string. Empty and NA cells are missing.
func ReadCSV(r io.Reader, delim rune) (*Dataset, error) {
	if delim == 0 {
		delim = ','
	}
	df := dataframe.ReadCSV(r, append(loadOptions(), dataframe.WithDelimiter(delim))...)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return FromDataFrame(df)
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "<nil>"}),
	}
}

// LoadFile reads a CSV/TSV file, or the first sheet of an .xlsx workbook.
// A zero delim picks tab for .tsv and comma otherwise.
func LoadFile(path string, delim rune) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadXLSX(path, "")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(f, delim)
}

// FromDataFrame converts a gota DataFrame into a Dataset.
func FromDataFrame(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	names := df.Names()
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}
	d := New(names...)
	nrow := df.Nrow()
	d.rows = make([][]any, nrow)
	for i := 0; i < nrow; i++ {
		row := make([]any, len(cols))
		for j, s := range cols {
			v, err := cell(s, i)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, names[j], err)
			}
			row[j] = v
		}
		d.rows[i] = row
	}
	return d, nil
}

func cell(s series.Series, i int) (any, error) {
	e := s.Elem(i)
	if e.IsNA() {
		return nil, nil
	}
	switch s.Type() {
	case series.Int:
		n, err := e.Int()
		if err != nil {
			return nil, err
		}
		return int64(n), nil
	case series.Float:
		return e.Float(), nil
	case series.Bool:
		return e.Bool()
	default:
		v := strings.TrimSpace(e.String())
		if v == "" {
			return nil, nil
		}
		return v, nil
	}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// WriteCSV writes a header row followed by every row. Missing values are empty cells.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(d.columns))
	for i, r := range d.rows {
		for j, v := range r {
			rec[j] = Format(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the dataset encoded by WriteCSV.
func (d *Dataset) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Markdown renders a compact titled table suitable for terminals or docs.
// At most maxRows rows are shown; 0 means all.
func (d *Dataset) Markdown(title string, maxRows int) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("[" + title + "]\n")
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n\n", len(d.rows)))
	if len(d.columns) == 0 {
		return b.String()
	}
	b.WriteString("| ")
	for i, c := range d.columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range d.columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	limit := len(d.rows)
	if maxRows > 0 && maxRows < limit {
		limit = maxRows
	}
	for _, row := range d.rows[:limit] {
		b.WriteString("| ")
		for i, v := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := Format(v)
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	if limit < len(d.rows) {
		b.WriteString(fmt.Sprintf("\n(showing %d of %d rows)\n", limit, len(d.rows)))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
