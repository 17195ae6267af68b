// Package outcome records per-filter pass/fail results on variants and genes.
package outcome

import "sort"

// FilterType identifies a filter.
type FilterType string

// Filter types.
const (
	QualityFilter           FilterType = "quality"
	FrequencyFilter         FilterType = "frequency"
	PathogenicityFilter     FilterType = "pathogenicity"
	VariantEffectFilter     FilterType = "variant-effect"
	IntervalFilter          FilterType = "interval"
	RegulatoryFeatureFilter FilterType = "regulatory-feature"
	PriorityScoreFilter     FilterType = "priority-score"
	GeneSymbolFilter        FilterType = "gene-symbol"
	PassingVariantsFilter   FilterType = "passing-variants"
)

// Result is the outcome of one filter on one entity.
type Result uint8

const (
	NotRun Result = iota
	Pass
	Fail
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	}
	return "NOT_RUN"
}

// Set holds the recorded filter results of a single entity. The zero value
// is an empty set ready for use. A Set is not safe for concurrent use.
type Set struct {
	results map[FilterType]Result
}

// Record stores the result for a filter, replacing any previous one.
func (s *Set) Record(ft FilterType, r Result) {
	if s.results == nil {
		s.results = make(map[FilterType]Result)
	}
	s.results[ft] = r
}

// Get returns the recorded result for ft, or NotRun.
func (s *Set) Get(ft FilterType) Result {
	return s.results[ft]
}

// Passed returns true when no recorded result is a failure. An entity
// with no recorded results has passed.
func (s *Set) Passed() bool {
	for _, r := range s.results {
		if r == Fail {
			return false
		}
	}
	return true
}

// PassedFilter reports whether ft was run and passed.
func (s *Set) PassedFilter(ft FilterType) bool {
	return s.results[ft] == Pass
}

// Failed returns the filter types that failed, sorted by name.
func (s *Set) Failed() []FilterType {
	return s.matching(Fail)
}

// Types returns all filter types with a recorded result, sorted by name.
func (s *Set) Types() []FilterType {
	types := make([]FilterType, 0, len(s.results))
	for ft := range s.results {
		types = append(types, ft)
	}
	sortTypes(types)
	return types
}

// Len returns the number of recorded results.
func (s *Set) Len() int {
	return len(s.results)
}

func (s *Set) matching(want Result) []FilterType {
	var types []FilterType
	for ft, r := range s.results {
		if r == want {
			types = append(types, ft)
		}
	}
	sortTypes(types)
	return types
}

func sortTypes(types []FilterType) {
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
}
