package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/vdjstat/internal/diversity"
	"github.com/KaramelBytes/vdjstat/internal/table"
)

// InsufficientDataError indicates a group whose correlation is undefined:
// fewer than two paired observations, or (in strict mode) zero variance.
type InsufficientDataError struct {
	Key    table.Key
	N      int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data in group [%s]: %s (n=%d)", e.Key, e.Reason, e.N)
}

// UnknownIndexError indicates an index name missing from the diversity registry.
type UnknownIndexError struct {
	Name  string
	Known []string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("unknown index %q (known: %v)", e.Name, e.Known)
}

func (e *UnknownIndexError) Unwrap() error { return diversity.ErrUnknownIndex }

// JoinMismatchError indicates the count and frequency tables of a clone
// count did not pair up one-to-one.
type JoinMismatchError struct {
	Counts int
	Freqs  int
	Joined int
}

func (e *JoinMismatchError) Error() string {
	return fmt.Sprintf("count/frequency join mismatch: %d count rows, %d frequency rows, %d joined", e.Counts, e.Freqs, e.Joined)
}

// ErrMatrixShape is returned when a correlation matrix is requested over
// anything other than exactly two group columns.
var ErrMatrixShape = errors.New("correlation matrix needs exactly two group columns")

// ErrAmbiguousHeader is returned when a matrix cannot be written as a table
// because two of its column headers would render identically.
var ErrAmbiguousHeader = errors.New("matrix column headers are not distinct")

// IsMissingColumn reports whether err was caused by an absent column.
func IsMissingColumn(err error) bool {
	var mc *table.MissingColumnError
	return errors.As(err, &mc)
}
