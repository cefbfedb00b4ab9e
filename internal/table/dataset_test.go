package table

import (
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	d, err := FromRows([]string{"sample", "region", "clone", "umis"}, [][]any{
		{"s1", "IGHG", "c1", 3},
		{"s1", "IGHG", "c1", 1},
		{"s1", "IGHA", "c2", 2},
		{"s2", "IGHG", "c3", 5},
		{nil, "IGHG", "c4", 1},
		{"s2", "IGHG", "c3", math.NaN()},
	})
	require.NoError(t, err)
	return d
}

func TestGroupByDiscoveryOrderAndMissingKeys(t *testing.T) {
	d := sample(t)
	groups, err := d.GroupBy("sample", "region")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, Key{"s1", "IGHG"}, groups[0].Key)
	assert.Equal(t, []int{0, 1}, groups[0].Rows)
	assert.Equal(t, Key{"s1", "IGHA"}, groups[1].Key)
	assert.Equal(t, Key{"s2", "IGHG"}, groups[2].Key)
	assert.Equal(t, []int{3, 5}, groups[2].Rows)
}

func TestMissingColumn(t *testing.T) {
	d := sample(t)
	_, err := d.GroupBy("sample", "tissue")
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "tissue", mc.Column)

	_, err = d.Floats("nope")
	assert.True(t, errors.As(err, &mc))
}

func TestAddRowNormalizesAndChecksWidth(t *testing.T) {
	d := New("a", "b")
	require.NoError(t, d.AddRow(1, float32(0.5)))
	assert.Equal(t, []any{int64(1), 0.5}, d.Row(0))
	assert.Error(t, d.AddRow(1))
	assert.Error(t, d.AddRow(struct{}{}, 1))
}

func TestFloatsMarksNonNumericAsNaN(t *testing.T) {
	d := sample(t)
	got, err := d.Floats("umis")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2, 5, 1}, got[:5])
	assert.True(t, math.IsNaN(got[5]))

	names, err := d.Floats("clone")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(names[0]))
}

func TestParseCellFollowsColumnType(t *testing.T) {
	d, err := FromRows([]string{"label", "n", "area", "flag", "empty"}, [][]any{
		{nil, nil, nil, nil, nil},
		{"1", 1, 0.5, true, nil},
	})
	require.NoError(t, err)

	cases := []struct {
		col  string
		in   string
		want any
	}{
		{"label", "1", "1"},
		{"n", "1", int64(1)},
		{"area", "1", 1.0},
		{"flag", "false", false},
		{"empty", "7", "7"},
	}
	for _, tc := range cases {
		got, err := d.ParseCell(tc.col, tc.in)
		require.NoError(t, err, tc.col)
		assert.Equal(t, tc.want, got, tc.col)
	}

	_, err = d.ParseCell("n", "one")
	assert.Error(t, err)
	_, err = d.ParseCell("nope", "1")
	var mc *MissingColumnError
	assert.True(t, errors.As(err, &mc))
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	d := sample(t)
	u, err := d.Unique("sample", "clone")
	require.NoError(t, err)
	assert.Equal(t, 4, u.NumRows())
	assert.Equal(t, []any{"s1", "c1"}, u.Row(0))
	assert.Equal(t, []any{nil, "c4"}, u.Row(3))
}

func TestInnerJoin(t *testing.T) {
	left, err := FromRows([]string{"g", "v", "freq"}, [][]any{
		{"A", "x", 0.5},
		{"A", "y", 0.5},
		{"B", "x", 1.0},
	})
	require.NoError(t, err)
	right, err := FromRows([]string{"g", "v", "count"}, [][]any{
		{"B", "x", 1},
		{"A", "y", 1},
		{"A", "x", 1},
	})
	require.NoError(t, err)

	j, err := InnerJoin(left, right, "g", "v")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "v", "freq", "count"}, j.Columns())
	require.Equal(t, 3, j.NumRows())
	assert.Equal(t, []any{"A", "x", 0.5, int64(1)}, j.Row(0))

	_, err = InnerJoin(left, left, "g")
	assert.Error(t, err, "non-key columns collide")
}

func TestCompareOrdersMixedValues(t *testing.T) {
	vals := []any{"b", int64(10), true, 2.5, "a", nil, false}
	sort.SliceStable(vals, func(i, j int) bool { return Compare(vals[i], vals[j]) < 0 })
	assert.Equal(t, []any{nil, 2.5, int64(10), "a", "b", false, true}, vals)
}

func TestKeyEncodeDistinguishesTypes(t *testing.T) {
	assert.NotEqual(t, Key{"1"}.Encode(), Key{int64(1)}.Encode())
	assert.NotEqual(t, Key{int64(1)}.Encode(), Key{1.0}.Encode())
	assert.NotEqual(t, Key{"a", "b"}.Encode(), Key{"ab"}.Encode())
	assert.Equal(t, Key{"a", int64(2)}.Encode(), Key{"a", int64(2)}.Encode())
	assert.Equal(t, "a | 2", Key{"a", int64(2)}.String())
}

func TestGroupBySeparatorInsideValues(t *testing.T) {
	d, err := FromRows([]string{"a", "b"}, [][]any{
		{"a\x1fsb", "c"},
		{"a", "b\x1fsc"},
	})
	require.NoError(t, err)
	groups, err := d.GroupBy("a", "b")
	require.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.NotEqual(t, Key{"a\x1fsb", "c"}.Encode(), Key{"a", "b\x1fsc"}.Encode())
	assert.NotEqual(t, Key{"1:x"}.Encode(), Key{"1", "x"}.Encode())
}

func TestGroupByMergesSignedZero(t *testing.T) {
	d, err := FromRows([]string{"x", "v"}, [][]any{
		{0.0, int64(1)},
		{math.Copysign(0, -1), int64(2)},
	})
	require.NoError(t, err)
	groups, err := d.GroupBy("x")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1}, groups[0].Rows)
}

func TestReadCSVDetectsTypes(t *testing.T) {
	in := "sample,region,umis,area,flag\ns1,IGHG,3,0.5,true\ns2,IGHA,4,,false\n"
	d, err := ReadCSV(strings.NewReader(in), ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "region", "umis", "area", "flag"}, d.Columns())
	require.Equal(t, 2, d.NumRows())
	assert.Equal(t, []any{"s1", "IGHG", int64(3), 0.5, true}, d.Row(0))

	area, err := d.Cell(1, "area")
	require.NoError(t, err)
	assert.Nil(t, area)
}

func TestWriteCSVAndMarkdown(t *testing.T) {
	d, err := FromRows([]string{"g", "corr"}, [][]any{
		{"A", 1.0},
		{"B|C", math.NaN()},
	})
	require.NoError(t, err)

	b, err := d.CSV()
	require.NoError(t, err)
	assert.Equal(t, "g,corr\nA,1\nB|C,\n", string(b))

	md := d.Markdown("CORRELATION", 1)
	assert.Contains(t, md, "[CORRELATION]")
	assert.Contains(t, md, "| g | corr |")
	assert.Contains(t, md, "| A | 1 |")
	assert.Contains(t, md, "(showing 1 of 2 rows)")
}
