package cmd

import (
	"github.com/KaramelBytes/vdjstat/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	countsGroupBy      []string
	countsCol          string
	countsCountName    string
	countsFreqName     string
	countsMultiplicity string
	countsOutput       string
)

var countsCmd = &cobra.Command{
	Use:   "counts <file>",
	Short: "Clone counts and within-group frequencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadInput(args[0])
		if err != nil {
			return err
		}
		opt := analysis.CloneCountOptions{
			CountName:        countsCountName,
			FreqName:         countsFreqName,
			MultiplicityName: countsMultiplicity,
		}
		if !cmd.Flags().Changed("count-name") {
			opt.CountName = settings().CountName
		}
		if !cmd.Flags().Changed("freq-name") {
			opt.FreqName = settings().FreqName
		}
		res, err := analysis.New(logger).ComputeCloneCounts(ds, countsGroupBy, countsCol, opt)
		if err != nil {
			return err
		}
		return emit(cmd, "CLONE COUNTS", res, countsOutput)
	},
}

func init() {
	rootCmd.AddCommand(countsCmd)
	countsCmd.Flags().StringSliceVarP(&countsGroupBy, "group-by", "g", nil, "columns defining the groups")
	countsCmd.Flags().StringVar(&countsCol, "count-col", "", "column whose distinct values are counted (e.g. clone id)")
	countsCmd.Flags().StringVar(&countsCountName, "count-name", "", "name of the count column (default from config count_name)")
	countsCmd.Flags().StringVar(&countsFreqName, "freq-name", "", "name of the frequency column (default from config freq_name)")
	countsCmd.Flags().StringVar(&countsMultiplicity, "multiplicity-name", "", "if set, add a column with the number of input rows per combination")
	countsCmd.Flags().StringVarP(&countsOutput, "output", "o", "", "write the result as CSV to this path")
	_ = countsCmd.MarkFlagRequired("group-by")
	_ = countsCmd.MarkFlagRequired("count-col")
}
