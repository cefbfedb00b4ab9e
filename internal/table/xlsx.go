package table

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ReadXLSX loads one worksheet of an .xlsx workbook. The first row is the
// header. An empty sheet name selects the first sheet in workbook order.
// Cell types are detected the same way as ReadCSV.
func ReadXLSX(filename, sheet string) (*Dataset, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	wb := workbook{zr: &zr.Reader}
	target, err := wb.sheetPath(sheet)
	if err != nil {
		return nil, err
	}
	records, err := wb.records(target)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read xlsx: sheet %s has no rows", target)
	}
	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("read xlsx: %w", df.Err)
	}
	return FromDataFrame(df)
}

type workbook struct {
	zr *zip.Reader
}

type xlsxWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"` // r:id
	} `xml:"sheets>sheet"`
}

type xlsxRels struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xlsxSST struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type xlsxSheet struct {
	Rows []struct {
		Cells []struct {
			Ref    string `xml:"r,attr"`
			Type   string `xml:"t,attr"`
			V      string `xml:"v"`
			Inline struct {
				T string `xml:"t"`
			} `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// sheetPath resolves a sheet name to its part inside the archive.
func (w workbook) sheetPath(name string) (string, error) {
	var wb xlsxWorkbook
	if err := w.decode("xl/workbook.xml", &wb); err != nil {
		return "", err
	}
	var rels xlsxRels
	if err := w.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return "", err
	}
	targets := map[string]string{}
	for _, r := range rels.Relationships {
		targets[r.ID] = partPath(r.Target)
	}

	if name == "" {
		if len(wb.Sheets) > 0 {
			if t, ok := targets[wb.Sheets[0].RID]; ok {
				return t, nil
			}
		}
		return "xl/worksheets/sheet1.xml", nil
	}
	available := make([]string, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		if strings.EqualFold(s.Name, name) {
			if t, ok := targets[s.RID]; ok {
				return t, nil
			}
		}
		available = append(available, s.Name)
	}
	return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(available, ", "))
}

// records returns the sheet as rectangular string records.
func (w workbook) records(target string) ([][]string, error) {
	var sst xlsxSST
	if err := w.decode("xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	shared := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		var b strings.Builder
		b.WriteString(si.T)
		for _, r := range si.Runs {
			b.WriteString(r.T)
		}
		shared[i] = b.String()
	}

	var sh xlsxSheet
	found, err := w.open(target, &sh)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("read xlsx: missing sheet part %s", target)
	}

	var out [][]string
	width := 0
	for _, row := range sh.Rows {
		var rec []string
		for pos, c := range row.Cells {
			col := pos
			if c.Ref != "" {
				if ci := columnIndex(c.Ref); ci >= 0 {
					col = ci
				}
			}
			for len(rec) <= col {
				rec = append(rec, "")
			}
			switch c.Type {
			case "s":
				if i, err := strconv.Atoi(c.V); err == nil && i >= 0 && i < len(shared) {
					rec[col] = shared[i]
				}
			case "inlineStr":
				rec[col] = c.Inline.T
			case "b":
				rec[col] = strconv.FormatBool(c.V == "1")
			default:
				rec[col] = c.V
			}
		}
		if len(rec) > width {
			width = len(rec)
		}
		out = append(out, rec)
	}
	for i := range out {
		for len(out[i]) < width {
			out[i] = append(out[i], "")
		}
	}
	return out, nil
}

// decode unmarshals an optional part; a missing part leaves v untouched.
func (w workbook) decode(name string, v any) error {
	_, err := w.open(name, v)
	return err
}

func (w workbook) open(name string, v any) (bool, error) {
	for _, f := range w.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return true, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return true, fmt.Errorf("read %s: %w", name, err)
		}
		if err := xml.Unmarshal(b, v); err != nil {
			return true, fmt.Errorf("parse %s: %w", name, err)
		}
		return true, nil
	}
	return false, nil
}

// partPath turns a relationship target into an archive path.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func partPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

// columnIndex maps a cell reference like "C12" to a 0-based column.
// It returns -1 when ref has no column letters.
func columnIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}
