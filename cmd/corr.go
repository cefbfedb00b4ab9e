package cmd

import (
	"fmt"

	"github.com/KaramelBytes/vdjstat/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	corrGroupBy   []string
	corrX         string
	corrY         string
	corrStrict    bool
	corrMatrix    bool
	corrOutput    string
	corrMatrixOut string
)

var corrCmd = &cobra.Command{
	Use:   "corr <file>",
	Short: "Pearson correlation and p-value between two columns within each group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadInput(args[0])
		if err != nil {
			return err
		}
		an := analysis.New(logger)
		res, err := an.ComputeCorrelation(ds, corrGroupBy, corrX, corrY, analysis.CorrelationOptions{
			Strict: corrStrict,
			Save:   corrOutput != "",
			Path:   corrOutput,
		})
		if err != nil {
			return err
		}
		if corrOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d group correlations to %s\n", res.Len(), corrOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), res.Table().Markdown("CORRELATION", settings().PreviewRows))
		}
		if !corrMatrix && corrMatrixOut == "" {
			return nil
		}

		cm, pm, err := an.ComputeGroupwiseCorrMatrix(res, corrGroupBy, analysis.MatrixOptions{
			Save: corrMatrixOut != "",
			Path: corrMatrixOut,
		})
		if err != nil {
			return err
		}
		if corrMatrixOut != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s%s and %s%s\n",
				corrMatrixOut, analysis.CorrMatrixSuffix, corrMatrixOut, analysis.PValueMatrixSuffix)
			return nil
		}
		for _, out := range []struct {
			title string
			m     *analysis.Matrix
		}{{"CORRELATION MATRIX", cm}, {"P-VALUE MATRIX", pm}} {
			tbl, err := out.m.Table()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Markdown(out.title, 0))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().StringSliceVarP(&corrGroupBy, "group-by", "g", nil, "columns defining the groups (comma-separated or repeated)")
	corrCmd.Flags().StringVar(&corrX, "x", "", "first numeric column")
	corrCmd.Flags().StringVar(&corrY, "y", "", "second numeric column")
	corrCmd.Flags().BoolVar(&corrStrict, "strict", false, "fail on zero-variance groups instead of reporting NaN")
	corrCmd.Flags().BoolVar(&corrMatrix, "matrix", false, "also pivot the result into correlation and p-value matrices (needs exactly two --group-by columns)")
	corrCmd.Flags().StringVarP(&corrOutput, "output", "o", "", "write the per-group result as CSV to this path")
	corrCmd.Flags().StringVar(&corrMatrixOut, "matrix-out", "", "base path for the matrix CSVs (adds _correlation_matrix.csv / _pvalue_matrix.csv)")
	_ = corrCmd.MarkFlagRequired("group-by")
	_ = corrCmd.MarkFlagRequired("x")
	_ = corrCmd.MarkFlagRequired("y")
}
