package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key is a composite group key drawn from one or more columns.
type Key []any

// String renders the key for humans, e.g. "IGHG | spleen".
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = Format(v)
	}
	return strings.Join(parts, " | ")
}

// Encode returns a string that is equal for two keys iff every component
// has the same type and value. Each component is length-prefixed, so
// separators inside values cannot make two keys collide. 0 and -0 encode
// the same.
func (k Key) Encode() string {
	var b strings.Builder
	for _, v := range k {
		var tag byte
		var body string
		switch x := v.(type) {
		case nil:
			tag = 'n'
		case string:
			tag, body = 's', x
		case float64:
			if x == 0 {
				x = 0
			}
			tag, body = 'f', strconv.FormatFloat(x, 'g', -1, 64)
		case int64:
			tag, body = 'i', strconv.FormatInt(x, 10)
		case bool:
			tag, body = 'b', strconv.FormatBool(x)
		default:
			tag, body = '?', fmt.Sprint(x)
		}
		b.WriteByte(tag)
		b.WriteString(strconv.Itoa(len(body)))
		b.WriteByte(':')
		b.WriteString(body)
	}
	return b.String()
}

// Group is one equivalence class of rows sharing a Key.
type Group struct {
	Key  Key
	Rows []int
}

// GroupBy partitions rows by equality on the named columns. Groups come back
// in the order their first row appears. Rows with a missing value in any key
// column belong to no group.
func (d *Dataset) GroupBy(cols ...string) ([]Group, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("group by: no columns given")
	}
	idxs, err := d.Require(cols...)
	if err != nil {
		return nil, err
	}
	var groups []Group
	pos := make(map[string]int)
rows:
	for i, r := range d.rows {
		key := make(Key, len(idxs))
		for j, idx := range idxs {
			if isMissing(r[idx]) {
				continue rows
			}
			key[j] = r[idx]
		}
		enc := key.Encode()
		g, ok := pos[enc]
		if !ok {
			g = len(groups)
			pos[enc] = g
			groups = append(groups, Group{Key: key})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups, nil
}

// Unique projects onto the named columns and keeps the first occurrence of
// each distinct combination. Missing values compare equal to each other here.
func (d *Dataset) Unique(cols ...string) (*Dataset, error) {
	proj, err := d.Select(cols...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(proj.rows))
	out := New(cols...)
	for _, r := range proj.rows {
		enc := Key(r).Encode()
		if _, dup := seen[enc]; dup {
			continue
		}
		seen[enc] = struct{}{}
		out.rows = append(out.rows, r)
	}
	return out, nil
}

// InnerJoin matches rows of left and right that agree on every column in on.
// The result holds the left columns followed by the non-key right columns,
// in left row order.
func InnerJoin(left, right *Dataset, on ...string) (*Dataset, error) {
	lidx, err := left.Require(on...)
	if err != nil {
		return nil, fmt.Errorf("join left: %w", err)
	}
	ridx, err := right.Require(on...)
	if err != nil {
		return nil, fmt.Errorf("join right: %w", err)
	}
	isKey := make(map[int]bool, len(ridx))
	for _, i := range ridx {
		isKey[i] = true
	}
	cols := left.Columns()
	var extra []int
	for i, c := range right.columns {
		if isKey[i] {
			continue
		}
		if _, clash := left.index[c]; clash {
			return nil, fmt.Errorf("join: column %q present on both sides", c)
		}
		cols = append(cols, c)
		extra = append(extra, i)
	}
	lookup := make(map[string][]int, len(right.rows))
	for i, r := range right.rows {
		enc := project(r, ridx).Encode()
		lookup[enc] = append(lookup[enc], i)
	}
	out := New(cols...)
	for _, lr := range left.rows {
		for _, ri := range lookup[project(lr, lidx).Encode()] {
			row := append([]any(nil), lr...)
			for _, i := range extra {
				row = append(row, right.rows[ri][i])
			}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

func project(row []any, idxs []int) Key {
	k := make(Key, len(idxs))
	for i, idx := range idxs {
		k[i] = row[idx]
	}
	return k
}

// Compare orders cell values: missing first, then numbers ascending,
// then strings lexicographically, then booleans (false < true).
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		fa, _ := Float(a)
		fb, _ := Float(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 3:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case float64, int64:
		if isMissing(v) {
			return 0
		}
		return 1
	case string:
		return 2
	case bool:
		return 3
	}
	return 0
}

// Format renders a cell as text. Missing values render as "".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
