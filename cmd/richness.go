package cmd

import (
	"fmt"

	"github.com/KaramelBytes/vdjstat/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	richGroupBy []string
	richCols    []string
	richName    string
	richLookup  []string
	richOutput  string
)

var richnessCmd = &cobra.Command{
	Use:   "richness <file>",
	Short: "Count the groups each value combination appears in",
	Long: `For each distinct combination of --richness-col values, count the
distinct --group-by groups it appears in. With --lookup, print the richness
of a single combination instead of the whole table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadInput(args[0])
		if err != nil {
			return err
		}
		an := analysis.New(logger)
		if len(richLookup) > 0 {
			if len(richLookup) != len(richCols) {
				return fmt.Errorf("--lookup needs %d values (one per --richness-col), got %d", len(richCols), len(richLookup))
			}
			t, err := an.RichnessLookup(ds, richGroupBy, richCols)
			if err != nil {
				return err
			}
			key := make([]any, len(richLookup))
			for i, v := range richLookup {
				if key[i], err = ds.ParseCell(richCols[i], v); err != nil {
					return err
				}
			}
			n, _ := t.Lookup(key...)
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		}
		name := richName
		if !cmd.Flags().Changed("name") {
			name = settings().RichnessName
		}
		res, err := an.ComputeRichness(ds, richGroupBy, richCols, name)
		if err != nil {
			return err
		}
		return emit(cmd, "RICHNESS", res, richOutput)
	},
}

func init() {
	rootCmd.AddCommand(richnessCmd)
	richnessCmd.Flags().StringSliceVarP(&richGroupBy, "group-by", "g", nil, "columns defining the groups")
	richnessCmd.Flags().StringSliceVar(&richCols, "richness-col", nil, "columns whose value combinations are counted")
	richnessCmd.Flags().StringVar(&richName, "name", "", "name of the richness column (default from config richness_name)")
	richnessCmd.Flags().StringSliceVar(&richLookup, "lookup", nil, "print the richness of this value combination only")
	richnessCmd.Flags().StringVarP(&richOutput, "output", "o", "", "write the result as CSV to this path")
	_ = richnessCmd.MarkFlagRequired("group-by")
	_ = richnessCmd.MarkFlagRequired("richness-col")
}
