package analysis

import (
	"fmt"

	"github.com/KaramelBytes/vdjstat/internal/table"
	"github.com/KaramelBytes/vdjstat/internal/utils"
	"go.uber.org/zap"
)

// File name suffixes appended to a base path when correlation matrices are saved.
const (
	CorrMatrixSuffix   = "_correlation_matrix.csv"
	PValueMatrixSuffix = "_pvalue_matrix.csv"
)

// Sink persists result tables.
type Sink interface {
	WriteTable(path string, ds *table.Dataset) error
}

// FileSink writes tables as comma-separated files, replacing them atomically.
type FileSink struct{}

// WriteTable implements Sink.
func (FileSink) WriteTable(path string, ds *table.Dataset) error {
	b, err := ds.CSV()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (a *Analyzer) persist(sink Sink, path string, ds *table.Dataset) error {
	if sink == nil {
		sink = FileSink{}
	}
	if err := sink.WriteTable(path, ds); err != nil {
		return err
	}
	a.logger.Debug("saved table", zap.String("path", path), zap.Int("rows", ds.NumRows()))
	return nil
}
