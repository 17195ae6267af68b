package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

// GeneFilter is a filter over genes. Gene filters run while the caller
// holds the gene's registry lock.
type GeneFilter = Filter[*gene.Gene]

// PriorityScoreFilter passes genes scoring at least Min for Priority.
// Unscored genes score 0.
type PriorityScoreFilter struct {
	Priority gene.PriorityType
	Min      float64
}

func (f PriorityScoreFilter) Type() outcome.FilterType { return outcome.PriorityScoreFilter }

func (f PriorityScoreFilter) Filter(g *gene.Gene) outcome.Result {
	return result(gene.Score(g, f.Priority) >= f.Min)
}

func (f PriorityScoreFilter) String() string {
	return fmt.Sprintf("%s score >= %g", f.Priority, f.Min)
}

// GeneSymbolFilter passes genes whose symbol is in the allowed set.
type GeneSymbolFilter struct {
	symbols map[string]bool
}

// NewGeneSymbolFilter creates a filter keeping only the given symbols.
func NewGeneSymbolFilter(symbols ...string) *GeneSymbolFilter {
	f := &GeneSymbolFilter{symbols: make(map[string]bool, len(symbols))}
	for _, s := range symbols {
		f.symbols[s] = true
	}
	return f
}

func (f *GeneSymbolFilter) Type() outcome.FilterType { return outcome.GeneSymbolFilter }

func (f *GeneSymbolFilter) Filter(g *gene.Gene) outcome.Result {
	return result(f.symbols[g.Symbol])
}

func (f *GeneSymbolFilter) String() string {
	symbols := make([]string, 0, len(f.symbols))
	for s := range f.symbols {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return "Genes to keep: " + strings.Join(symbols, ", ")
}

// PassingVariantsFilter fails genes none of whose variants passed the
// variant filters.
type PassingVariantsFilter struct{}

func (PassingVariantsFilter) Type() outcome.FilterType { return outcome.PassingVariantsFilter }

func (PassingVariantsFilter) Filter(g *gene.Gene) outcome.Result {
	for _, v := range g.Variants() {
		if v.PassedFilters() {
			return outcome.Pass
		}
	}
	return outcome.Fail
}

func (PassingVariantsFilter) String() string {
	return "Genes with at least one passing variant"
}
