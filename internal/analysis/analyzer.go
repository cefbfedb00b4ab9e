// Package analysis computes grouped repertoire statistics: per-group Pearson
// correlations, diversity indices, clone count/frequency tables and richness.
//
// Every operation reads its input Dataset without modifying it and returns
// newly built values. The only side effect is the optional write to a Sink.
package analysis

import (
	"go.uber.org/zap"
)

// Analyzer runs the grouped computations. It holds no state besides its logger
// and is safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
}

// New returns an Analyzer logging to logger. A nil logger discards output.
func New(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger.Named("analysis")}
}

func concat(cols []string, more ...string) []string {
	out := make([]string, 0, len(cols)+len(more))
	out = append(out, cols...)
	return append(out, more...)
}

// union keeps the first occurrence of each name.
func union(a, b []string) []string {
	var out []string
	for _, c := range concat(a, b...) {
		if indexOf(out, c) < 0 {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
