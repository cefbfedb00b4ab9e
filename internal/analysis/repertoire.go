package analysis

import (
	"sort"

	"github.com/KaramelBytes/vdjstat/internal/table"
	"go.uber.org/zap"
)

// Default result column names.
const (
	DefaultCountName    = "count"
	DefaultFreqName     = "freq"
	DefaultRichnessName = "richness"
)

// CloneCountOptions names the result columns of ComputeCloneCounts.
type CloneCountOptions struct {
	CountName string
	FreqName  string
	// MultiplicityName, when set, adds the number of input rows behind each
	// (group, value) combination.
	MultiplicityName string
}

// ComputeCloneCounts tabulates each distinct countCol value within each
// group of groupCols. Input rows are first collapsed to distinct
// (groupCols, countCol) combinations; per group, each value's count is the
// number of combinations carrying it and its frequency is that count over
// the group total, so frequencies sum to 1 per group.
//
// Rows come out grouped in discovery order, by descending count within a
// group. Columns are groupCols, countCol, FreqName, CountName and, if
// requested, MultiplicityName.
func (a *Analyzer) ComputeCloneCounts(ds *table.Dataset, groupCols []string, countCol string, opt CloneCountOptions) (*table.Dataset, error) {
	if opt.CountName == "" {
		opt.CountName = DefaultCountName
	}
	if opt.FreqName == "" {
		opt.FreqName = DefaultFreqName
	}
	keyCols := concat(groupCols, countCol)
	if _, err := ds.Require(keyCols...); err != nil {
		return nil, err
	}

	// distinct combinations with their multiplicity
	combos, err := ds.GroupBy(keyCols...)
	if err != nil {
		return nil, err
	}
	agg := table.New(concat(keyCols, "multiplicity")...)
	for _, c := range combos {
		if err := agg.AddRow(append(append([]any(nil), c.Key...), int64(len(c.Rows)))...); err != nil {
			return nil, err
		}
	}

	parts, err := agg.GroupBy(groupCols...)
	if err != nil {
		return nil, err
	}
	countCols := concat(keyCols, opt.CountName)
	if opt.MultiplicityName != "" {
		countCols = append(countCols, opt.MultiplicityName)
	}
	counts := table.New(countCols...)
	freqs := table.New(concat(keyCols, opt.FreqName)...)
	valuePos := len(groupCols)
	for _, p := range parts {
		type tally struct {
			value any
			n     int64
			mult  int64
		}
		var order []*tally
		byValue := map[string]*tally{}
		for _, i := range p.Rows {
			row := agg.Row(i)
			enc := table.Key{row[valuePos]}.Encode()
			t, ok := byValue[enc]
			if !ok {
				t = &tally{value: row[valuePos]}
				byValue[enc] = t
				order = append(order, t)
			}
			t.n++
			t.mult += row[valuePos+1].(int64)
		}
		sort.SliceStable(order, func(i, j int) bool { return order[i].n > order[j].n })
		total := float64(len(p.Rows))
		for _, t := range order {
			key := append(append([]any(nil), p.Key...), t.value)
			crow := append(append([]any(nil), key...), t.n)
			if opt.MultiplicityName != "" {
				crow = append(crow, t.mult)
			}
			if err := counts.AddRow(crow...); err != nil {
				return nil, err
			}
			if err := freqs.AddRow(append(key, float64(t.n)/total)...); err != nil {
				return nil, err
			}
		}
	}

	merged, err := joinOneToOne(freqs, counts, keyCols)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("computed clone counts",
		zap.Strings("group_by", groupCols), zap.String("count_col", countCol),
		zap.Int("groups", len(parts)), zap.Int("rows", merged.NumRows()))
	return merged, nil
}

// joinOneToOne inner-joins freqs and counts on keyCols and fails unless
// every row on each side found exactly one partner.
func joinOneToOne(freqs, counts *table.Dataset, keyCols []string) (*table.Dataset, error) {
	merged, err := table.InnerJoin(freqs, counts, keyCols...)
	if err != nil {
		return nil, err
	}
	if merged.NumRows() != freqs.NumRows() || merged.NumRows() != counts.NumRows() {
		return nil, &JoinMismatchError{Counts: counts.NumRows(), Freqs: freqs.NumRows(), Joined: merged.NumRows()}
	}
	return merged, nil
}

// ComputeRichness counts, for each distinct richnessCols combination, the
// distinct (groupCols, richnessCols) combinations it appears in. The result
// holds richnessCols and a count column called name (DefaultRichnessName if empty).
func (a *Analyzer) ComputeRichness(ds *table.Dataset, groupCols, richnessCols []string, name string) (*table.Dataset, error) {
	if name == "" {
		name = DefaultRichnessName
	}
	uniq, err := ds.Unique(union(groupCols, richnessCols)...)
	if err != nil {
		return nil, err
	}
	groups, err := uniq.GroupBy(richnessCols...)
	if err != nil {
		return nil, err
	}
	out := table.New(concat(richnessCols, name)...)
	for _, g := range groups {
		if err := out.AddRow(append(append([]any(nil), g.Key...), int64(len(g.Rows)))...); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("computed richness",
		zap.Strings("group_by", groupCols), zap.Strings("richness_cols", richnessCols),
		zap.Int("unique", uniq.NumRows()), zap.Int("rows", out.NumRows()))
	return out, nil
}

// RichnessTable is a point-lookup form of a richness result. It never holds
// a zero count.
type RichnessTable struct {
	Columns []string
	keys    []table.Key
	counts  map[string]int
}

// Lookup returns the richness of the given key values.
func (t *RichnessTable) Lookup(values ...any) (int, bool) {
	n, ok := t.counts[table.Key(values).Encode()]
	return n, ok
}

// Len returns the number of keys.
func (t *RichnessTable) Len() int { return len(t.keys) }

// Keys returns the keys in discovery order.
func (t *RichnessTable) Keys() []table.Key { return append([]table.Key(nil), t.keys...) }

// RichnessLookup computes ComputeRichness and returns it as a RichnessTable,
// dropping zero counts.
func (a *Analyzer) RichnessLookup(ds *table.Dataset, groupCols, richnessCols []string) (*RichnessTable, error) {
	res, err := a.ComputeRichness(ds, groupCols, richnessCols, DefaultRichnessName)
	if err != nil {
		return nil, err
	}
	countPos := len(richnessCols)
	t := &RichnessTable{Columns: append([]string(nil), richnessCols...), counts: map[string]int{}}
	for i := 0; i < res.NumRows(); i++ {
		row := res.Row(i)
		n := int(row[countPos].(int64))
		if n == 0 {
			continue
		}
		key := table.Key(row[:countPos])
		t.keys = append(t.keys, key)
		t.counts[key.Encode()] = n
	}
	return t, nil
}
