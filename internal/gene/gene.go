// Package gene provides gene records, their phenotype priority scores and a
// concurrent registry keyed by gene symbol.
package gene

import (
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// PriorityType identifies the prioritiser that produced a gene score.
type PriorityType string

// Known priority types.
const (
	HiPhivePriority     PriorityType = "HIPHIVE_PRIORITY"
	PhivePriority       PriorityType = "PHIVE_PRIORITY"
	PhenixPriority      PriorityType = "PHENIX_PRIORITY"
	OmimPriority        PriorityType = "OMIM_PRIORITY"
	ExomeWalkerPriority PriorityType = "EXOMEWALKER_PRIORITY"
)

// Gene is a candidate gene. Fields other than Symbol and EntrezID are
// mutated during an analysis and must only be touched through the owning
// Registry's View/Update when the gene is shared between goroutines.
type Gene struct {
	Symbol   string
	EntrezID int

	priorityScores map[PriorityType]float64
	variants       []*variant.Evaluation

	Filters       outcome.Set
	VariantScore  float64
	CombinedScore float64
}

// New creates a gene with no scores.
func New(symbol string, entrezID int) *Gene {
	return &Gene{Symbol: symbol, EntrezID: entrezID}
}

// SetPriorityScore sets the score for a priority type.
func (g *Gene) SetPriorityScore(t PriorityType, score float64) {
	if g.priorityScores == nil {
		g.priorityScores = make(map[PriorityType]float64)
	}
	g.priorityScores[t] = score
}

// PriorityScore returns the score for a priority type, if present.
func (g *Gene) PriorityScore(t PriorityType) (float64, bool) {
	if g == nil {
		return 0, false
	}
	s, ok := g.priorityScores[t]
	return s, ok
}

// PriorityTypes returns the number of priority types scored for this gene.
func (g *Gene) PriorityTypes() int {
	return len(g.priorityScores)
}

// Score returns the score for t, or 0 when the gene is nil or unscored for t.
// This is the only comparator used when choosing between genes.
func Score(g *Gene, t PriorityType) float64 {
	s, _ := g.PriorityScore(t)
	return s
}

// AddVariant attaches a variant to this gene.
func (g *Gene) AddVariant(v *variant.Evaluation) {
	g.variants = append(g.variants, v)
}

// Variants returns the variants attached to this gene.
func (g *Gene) Variants() []*variant.Evaluation {
	return g.variants
}

// PassedVariants returns the attached variants that passed all variant filters.
func (g *Gene) PassedVariants() []*variant.Evaluation {
	var passed []*variant.Evaluation
	for _, v := range g.variants {
		if v.PassedFilters() {
			passed = append(passed, v)
		}
	}
	return passed
}

// PassedFilters is the logical AND of all recorded gene filter results.
func (g *Gene) PassedFilters() bool {
	return g.Filters.Passed()
}
