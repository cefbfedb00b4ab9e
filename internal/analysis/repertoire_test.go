package analysis

import (
	"testing"

	"github.com/KaramelBytes/vdjstat/internal/table"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repertoire has one row per UMI.
func repertoire(t *testing.T) *table.Dataset {
	return mustRows(t, []string{"sample", "region", "clone"}, [][]any{
		{"s1", "IGHG", "c1"},
		{"s1", "IGHG", "c1"},
		{"s1", "IGHA", "c2"},
		{"s1", "IGHG", "c3"},
		{"s1", "IGHA", "c1"},
		{"s2", "IGHM", "c9"},
		{"s2", "IGHM", "c9"},
		{"s2", "IGHM", "c9"},
		{nil, "IGHM", "c7"},
	})
}

func TestComputeCloneCounts(t *testing.T) {
	out, err := New(nil).ComputeCloneCounts(repertoire(t), []string{"sample"}, "clone", CloneCountOptions{MultiplicityName: "umis"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "clone", "freq", "count", "umis"}, out.Columns())

	want := [][]any{
		{"s1", "c1", 1.0 / 3, int64(1), int64(3)},
		{"s1", "c2", 1.0 / 3, int64(1), int64(1)},
		{"s1", "c3", 1.0 / 3, int64(1), int64(1)},
		{"s2", "c9", 1.0, int64(1), int64(3)},
	}
	require.Equal(t, len(want), out.NumRows())
	for i, w := range want {
		assert.Equal(t, w, out.Row(i), "row %d", i)
	}
}

func TestComputeCloneCountsByRegion(t *testing.T) {
	out, err := New(nil).ComputeCloneCounts(repertoire(t), []string{"sample", "region"}, "clone", CloneCountOptions{CountName: "n", FreqName: "f"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "region", "clone", "f", "n"}, out.Columns())
	require.Equal(t, 5, out.NumRows())
	assert.Equal(t, []any{"s1", "IGHG", "c1", 0.5, int64(1)}, out.Row(0))
	assert.Equal(t, []any{"s1", "IGHG", "c3", 0.5, int64(1)}, out.Row(1))
	assert.Equal(t, []any{"s1", "IGHA", "c2", 0.5, int64(1)}, out.Row(2))
	assert.Equal(t, []any{"s2", "IGHM", "c9", 1.0, int64(1)}, out.Row(4))
}

func TestComputeCloneCountsFrequenciesSumToOne(t *testing.T) {
	var rows [][]any
	for i := 0; i < 200; i++ {
		rows = append(rows, []any{[]string{"s1", "s2", "s3"}[i%3], []string{"IGHG", "IGHA"}[i%2], int64(i % 17)})
	}
	ds := mustRows(t, []string{"sample", "region", "clone"}, rows)
	out, err := New(nil).ComputeCloneCounts(ds, []string{"sample", "region"}, "clone", CloneCountOptions{})
	require.NoError(t, err)

	sums := map[string]float64{}
	for i := 0; i < out.NumRows(); i++ {
		r := out.Row(i)
		sums[table.Key(r[:2]).Encode()] += r[3].(float64)
	}
	require.Len(t, sums, 6)
	for k, s := range sums {
		assert.InDelta(t, 1.0, s, 1e-9, "group %q", k)
	}
}

func TestComputeCloneCountsMissingColumn(t *testing.T) {
	_, err := New(nil).ComputeCloneCounts(repertoire(t), []string{"sample"}, "family_id", CloneCountOptions{})
	assert.True(t, IsMissingColumn(err))
}

func TestJoinOneToOneMismatch(t *testing.T) {
	freqs := mustRows(t, []string{"sample", "clone", "freq"}, [][]any{
		{"s1", "c1", 0.5},
		{"s1", "c2", 0.5},
	})
	counts := mustRows(t, []string{"sample", "clone", "count"}, [][]any{
		{"s1", "c1", int64(1)},
		{"s1", "c1", int64(1)},
		{"s1", "c2", int64(1)},
	})
	_, err := joinOneToOne(freqs, counts, []string{"sample", "clone"})
	var mismatch *JoinMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, JoinMismatchError{Counts: 3, Freqs: 2, Joined: 3}, *mismatch)

	partial := mustRows(t, []string{"sample", "clone", "count"}, [][]any{{"s1", "c1", int64(1)}})
	_, err = joinOneToOne(freqs, partial, []string{"sample", "clone"})
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Joined)

	unique, err := counts.Unique("sample", "clone", "count")
	require.NoError(t, err)
	merged, err := joinOneToOne(freqs, unique, []string{"sample", "clone"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "clone", "freq", "count"}, merged.Columns())
	assert.Equal(t, 2, merged.NumRows())
}

func TestComputeRichness(t *testing.T) {
	ds := mustRows(t, []string{"g", "x"}, [][]any{
		{1, "a"}, {1, "a"}, {1, "b"}, {2, "c"},
	})
	out, err := New(nil).ComputeRichness(ds, []string{"g"}, []string{"x"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "richness"}, out.Columns())
	require.Equal(t, 3, out.NumRows())
	got := map[string]int64{}
	for i := 0; i < out.NumRows(); i++ {
		r := out.Row(i)
		got[r[0].(string)] = r[1].(int64)
	}
	assert.Equal(t, map[string]int64{"a": 1, "b": 1, "c": 1}, got)
}

func TestComputeRichnessAcrossGroups(t *testing.T) {
	// clone c1 is seen in two regions of s1, so it spans two (sample, region) buckets.
	out, err := New(nil).ComputeRichness(repertoire(t), []string{"sample", "region"}, []string{"sample", "clone"}, "cloneRichness")
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "clone", "cloneRichness"}, out.Columns())
	assert.Equal(t, []any{"s1", "c1", int64(2)}, out.Row(0))
	assert.Equal(t, 4, out.NumRows())
}

func TestRichnessLookup(t *testing.T) {
	an := New(nil)
	lookup, err := an.RichnessLookup(repertoire(t), []string{"region"}, []string{"sample"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample"}, lookup.Columns)
	assert.Equal(t, 2, lookup.Len())

	n, ok := lookup.Lookup("s1")
	require.True(t, ok)
	assert.Equal(t, 2, n)
	n, ok = lookup.Lookup("s2")
	require.True(t, ok)
	assert.Equal(t, 1, n)
	_, ok = lookup.Lookup("s3")
	assert.False(t, ok)

	for _, k := range lookup.Keys() {
		n, _ := lookup.Lookup(k...)
		assert.NotZero(t, n)
	}
}

func TestRichnessMissingColumn(t *testing.T) {
	_, err := New(nil).RichnessLookup(repertoire(t), []string{"tissue"}, []string{"sample"})
	assert.True(t, IsMissingColumn(err))
}

func TestSummariesIdempotent(t *testing.T) {
	an := New(nil)
	ds := repertoire(t)
	opts := cmp.AllowUnexported(table.Dataset{})

	c1, err := an.ComputeCloneCounts(ds, []string{"sample"}, "clone", CloneCountOptions{})
	require.NoError(t, err)
	c2, err := an.ComputeCloneCounts(ds, []string{"sample"}, "clone", CloneCountOptions{})
	require.NoError(t, err)
	if diff := cmp.Diff(c1, c2, opts); diff != "" {
		t.Fatalf("clone counts differ:\n%s", diff)
	}

	r1, err := an.ComputeRichness(ds, []string{"region"}, []string{"clone"}, "")
	require.NoError(t, err)
	r2, err := an.ComputeRichness(ds, []string{"region"}, []string{"clone"}, "")
	require.NoError(t, err)
	if diff := cmp.Diff(r1, r2, opts); diff != "" {
		t.Fatalf("richness differs:\n%s", diff)
	}
	if diff := cmp.Diff(repertoire(t), ds, opts); diff != "" {
		t.Fatalf("input mutated:\n%s", diff)
	}
}
