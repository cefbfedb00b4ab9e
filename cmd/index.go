package cmd

import (
	"github.com/KaramelBytes/vdjstat/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	indexName       string
	indexGroupBy    []string
	indexValue      string
	indexExcludeCol string
	indexExclude    []string
	indexOutput     string
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Apply a diversity index to a value column within each group",
	Long: `Apply a named diversity index (see 'vdjstat indices') to the values of
--value within each --group-by group. Groups where the index is undefined,
such as single-clone groups for gini_index, are dropped. With --exclude-col,
groups whose value in that column is one of --exclude are removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadInput(args[0])
		if err != nil {
			return err
		}
		name := indexName
		if !cmd.Flags().Changed("index") {
			name = settings().DefaultIndex
		}
		opt := analysis.IndexOptions{ExcludeCol: indexExcludeCol}
		if indexExcludeCol != "" {
			values := indexExclude
			if !cmd.Flags().Changed("exclude") {
				values = []string{settings().ExcludeValue}
			}
			opt.ExcludeValues = make([]any, 0, len(values))
			for _, v := range values {
				cell, err := ds.ParseCell(indexExcludeCol, v)
				if err != nil {
					return err
				}
				opt.ExcludeValues = append(opt.ExcludeValues, cell)
			}
		}
		res, err := analysis.New(logger).ComputeGroupedIndex(ds, name, indexGroupBy, indexValue, opt)
		if err != nil {
			return err
		}
		return emit(cmd, name, res, indexOutput)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexName, "index", "", "diversity index name (default from config default_index)")
	indexCmd.Flags().StringSliceVarP(&indexGroupBy, "group-by", "g", nil, "columns defining the groups")
	indexCmd.Flags().StringVar(&indexValue, "value", "", "numeric column the index is computed over")
	indexCmd.Flags().StringVar(&indexExcludeCol, "exclude-col", "", "group column used to drop groups")
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "values of --exclude-col to drop (default from config exclude_value)")
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "write the result as CSV to this path")
	_ = indexCmd.MarkFlagRequired("group-by")
	_ = indexCmd.MarkFlagRequired("value")
}
