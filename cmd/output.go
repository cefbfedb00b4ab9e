package cmd

import (
	"fmt"

	"github.com/KaramelBytes/vdjstat/internal/analysis"
	"github.com/KaramelBytes/vdjstat/internal/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loadInput(path string) (*table.Dataset, error) {
	delim, err := settings().DelimiterRune()
	if err != nil {
		return nil, err
	}
	var ds *table.Dataset
	if flagSheet != "" {
		ds, err = table.ReadXLSX(path, flagSheet)
	} else {
		ds, err = table.LoadFile(path, delim)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded input", zap.String("path", path), zap.Int("rows", ds.NumRows()), zap.Strings("columns", ds.Columns()))
	return ds, nil
}

// emit writes ds as CSV to outPath, or prints it as Markdown when outPath is empty.
func emit(cmd *cobra.Command, title string, ds *table.Dataset, outPath string) error {
	if outPath != "" {
		if err := (analysis.FileSink{}).WriteTable(outPath, ds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d rows) to %s\n", title, ds.NumRows(), outPath)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), ds.Markdown(title, settings().PreviewRows))
	return nil
}
