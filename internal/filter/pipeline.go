// Package filter applies ordered lists of pass/fail filters to variants and
// genes and summarises their outcomes.
package filter

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

// Filter evaluates a single entity. Implementations must not modify the
// entity; the pipeline records the outcome.
type Filter[T any] interface {
	Type() outcome.FilterType
	Filter(entity T) outcome.Result
}

// Mode controls what happens after a filter fails.
type Mode int

const (
	// Exhaustive runs every filter and records every outcome.
	Exhaustive Mode = iota
	// ShortCircuit stops at the first failure and records the remaining
	// filters as not run.
	ShortCircuit
)

func (m Mode) String() string {
	if m == ShortCircuit {
		return "short-circuit"
	}
	return "exhaustive"
}

// ParseMode parses "exhaustive" or "short-circuit".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exhaustive":
		return Exhaustive, nil
	case "short-circuit", "shortcircuit":
		return ShortCircuit, nil
	}
	return Exhaustive, fmt.Errorf("unknown filter mode %q", s)
}

// Pipeline is an ordered list of filters applied uniformly to entities.
// A Pipeline is immutable and safe for concurrent use when its filters are.
type Pipeline[T any] struct {
	filters []Filter[T]
	mode    Mode
}

// NewPipeline creates a pipeline applying filters in the given order.
func NewPipeline[T any](mode Mode, filters ...Filter[T]) *Pipeline[T] {
	return &Pipeline[T]{filters: append([]Filter[T](nil), filters...), mode: mode}
}

// Mode returns the pipeline's mode.
func (p *Pipeline[T]) Mode() Mode {
	return p.mode
}

// Types returns the filter types in application order.
func (p *Pipeline[T]) Types() []outcome.FilterType {
	types := make([]outcome.FilterType, len(p.filters))
	for i, f := range p.filters {
		types[i] = f.Type()
	}
	return types
}

// Len returns the number of filters.
func (p *Pipeline[T]) Len() int {
	return len(p.filters)
}

// Apply runs the filters on entity, recording each outcome into results.
// Returns true if no filter failed.
func (p *Pipeline[T]) Apply(entity T, results *outcome.Set) bool {
	passed := true
	for i, f := range p.filters {
		r := f.Filter(entity)
		results.Record(f.Type(), r)
		if r != outcome.Fail {
			continue
		}
		passed = false
		if p.mode == ShortCircuit {
			for _, rest := range p.filters[i+1:] {
				results.Record(rest.Type(), outcome.NotRun)
			}
			break
		}
	}
	return passed
}

func result(pass bool) outcome.Result {
	if pass {
		return outcome.Pass
	}
	return outcome.Fail
}
