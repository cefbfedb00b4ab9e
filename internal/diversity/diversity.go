// Package diversity is a registry of named diversity and evenness indices
// over a vector of clone abundances (counts or frequencies).
package diversity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IndexFunc computes one index value from abundances. It returns NaN when
// the index is undefined for the input.
type IndexFunc func(abundances []float64) float64

// ErrUnknownIndex is returned for names that were never registered.
var ErrUnknownIndex = errors.New("unknown diversity index")

type entry struct {
	name string
	fn   IndexFunc
}

var (
	mu    sync.RWMutex
	funcs = map[string]entry{}
)

func init() {
	Register("gini_index", Gini)
	Register("Clonality", Clonality)
	Register("Shannon", Shannon)
	Register("Pielou", Pielou)
	Register("Simpson", Simpson)
	Register("Gini-Simpson", GiniSimpson)
	Register("inverse_Simpson", InverseSimpson)
	Register("richness", Richness)
}

// Register adds or replaces a named index. Names match case-insensitively.
func Register(name string, fn IndexFunc) {
	mu.Lock()
	defer mu.Unlock()
	funcs[strings.ToLower(name)] = entry{name: name, fn: fn}
}

// Lookup returns the index registered under name.
func Lookup(name string) (IndexFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := funcs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	return e.fn, nil
}

// Call computes the named index over abundances.
func Call(name string, abundances []float64) (float64, error) {
	fn, err := Lookup(name)
	if err != nil {
		return math.NaN(), err
	}
	return fn(abundances), nil
}

// Names lists the registered index names, sorted case-insensitively.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(funcs))
	for _, e := range funcs {
		out = append(out, e.name)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// Gini is the Gini coefficient of the abundances: 0 for a perfectly even
// repertoire, approaching 1 when one clone dominates.
func Gini(abundances []float64) float64 {
	xs := finite(abundances, false)
	n := len(xs)
	sum := floats.Sum(xs)
	if n < 2 || sum == 0 {
		return math.NaN()
	}
	sort.Float64s(xs)
	var acc float64
	for i, x := range xs {
		acc += float64(2*(i+1)-n-1) * x
	}
	return acc / (float64(n) * sum)
}

// Shannon is the entropy -sum(p ln p) of the relative abundances.
func Shannon(abundances []float64) float64 {
	p, ok := proportions(abundances)
	if !ok {
		return math.NaN()
	}
	return stat.Entropy(p)
}

// Pielou is Shannon entropy normalized by ln(n).
func Pielou(abundances []float64) float64 {
	p, ok := proportions(abundances)
	if !ok || len(p) < 2 {
		return math.NaN()
	}
	return stat.Entropy(p) / math.Log(float64(len(p)))
}

// Clonality is 1 - Pielou evenness.
func Clonality(abundances []float64) float64 {
	e := Pielou(abundances)
	if math.IsNaN(e) {
		return e
	}
	return 1 - e
}

// Simpson is the probability that two draws with replacement hit the same clone.
func Simpson(abundances []float64) float64 {
	p, ok := proportions(abundances)
	if !ok {
		return math.NaN()
	}
	return floats.Dot(p, p)
}

// GiniSimpson is 1 - Simpson.
func GiniSimpson(abundances []float64) float64 {
	s := Simpson(abundances)
	if math.IsNaN(s) {
		return s
	}
	return 1 - s
}

// InverseSimpson is 1 / Simpson, the effective number of clones.
func InverseSimpson(abundances []float64) float64 {
	s := Simpson(abundances)
	if math.IsNaN(s) {
		return s
	}
	return 1 / s
}

// Richness counts the clones with a positive abundance.
func Richness(abundances []float64) float64 {
	return float64(len(finite(abundances, true)))
}

// finite drops NaN, infinite and negative entries, and zeros when positive is set.
func finite(xs []float64, positive bool) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 || (positive && x == 0) {
			continue
		}
		out = append(out, x)
	}
	return out
}

func proportions(abundances []float64) ([]float64, bool) {
	p := finite(abundances, true)
	sum := floats.Sum(p)
	if sum == 0 {
		return nil, false
	}
	floats.Scale(1/sum, p)
	return p, true
}
