package analysis

import (
	"math"

	"github.com/KaramelBytes/vdjstat/internal/diversity"
	"github.com/KaramelBytes/vdjstat/internal/table"
	"go.uber.org/zap"
)

// DefaultExcludeValue is excluded when IndexOptions.ExcludeCol is set without values.
const DefaultExcludeValue = "Shared"

// IndexOptions controls ComputeGroupedIndex.
type IndexOptions struct {
	// ExcludeCol names a group column; result rows whose value in it is one
	// of ExcludeValues are removed. Setting ExcludeValues without
	// ExcludeCol is an error.
	ExcludeCol    string
	ExcludeValues []any
}

// ComputeGroupedIndex applies the named diversity index to the valueCol
// values of each group. Groups whose index is NaN are dropped. The result
// holds the group columns and one column named indexName.
func (a *Analyzer) ComputeGroupedIndex(ds *table.Dataset, indexName string, groupCols []string, valueCol string, opt IndexOptions) (*table.Dataset, error) {
	fn, err := diversity.Lookup(indexName)
	if err != nil {
		return nil, &UnknownIndexError{Name: indexName, Known: diversity.Names()}
	}
	if _, err := ds.Require(concat(groupCols, valueCol)...); err != nil {
		return nil, err
	}
	if opt.ExcludeCol == "" && len(opt.ExcludeValues) > 0 {
		// exclusion values without a column to test them against
		return nil, &table.MissingColumnError{Column: opt.ExcludeCol, Columns: groupCols}
	}
	excludePos := -1
	excluded := map[string]bool{}
	if opt.ExcludeCol != "" {
		if excludePos = indexOf(groupCols, opt.ExcludeCol); excludePos < 0 {
			return nil, &table.MissingColumnError{Column: opt.ExcludeCol, Columns: groupCols}
		}
		vals := opt.ExcludeValues
		if vals == nil {
			vals = []any{DefaultExcludeValue}
		}
		for _, v := range vals {
			excluded[table.Key{v}.Encode()] = true
		}
	}

	groups, err := ds.GroupBy(groupCols...)
	if err != nil {
		return nil, err
	}
	values, _ := ds.Floats(valueCol)

	out := table.New(concat(groupCols, indexName)...)
	var undefined, dropped int
	for _, g := range groups {
		xs := make([]float64, 0, len(g.Rows))
		for _, i := range g.Rows {
			if !math.IsNaN(values[i]) {
				xs = append(xs, values[i])
			}
		}
		v := fn(xs)
		if math.IsNaN(v) {
			undefined++
			continue
		}
		if excludePos >= 0 && excluded[table.Key{g.Key[excludePos]}.Encode()] {
			dropped++
			continue
		}
		if err := out.AddRow(append(append([]any(nil), g.Key...), v)...); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("computed grouped index",
		zap.String("index", indexName), zap.Strings("group_by", groupCols),
		zap.Int("groups", len(groups)), zap.Int("undefined", undefined), zap.Int("excluded", dropped))
	return out, nil
}
