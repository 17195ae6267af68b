// Package reassign moves variants between candidate genes when a gene
// with a better phenotype score is plausibly the one they affect.
package reassign

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// Reassigner rewrites the gene assignment of variants. It reads the
// registry and region index and writes only to the variants it is given,
// so one Reassigner may serve many goroutines provided each variant is
// handled by a single goroutine at a time.
type Reassigner struct {
	priority gene.PriorityType
	registry *gene.Registry
	index    *genome.RegionIndex
	logger   *zap.Logger
}

// New creates a Reassigner comparing genes by their score for priority.
// A nil index disables domain-based reassignment.
func New(priority gene.PriorityType, registry *gene.Registry, index *genome.RegionIndex) *Reassigner {
	return &Reassigner{
		priority: priority,
		registry: registry,
		index:    index,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for debug output.
func (r *Reassigner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// PriorityType returns the priority type used for comparisons.
func (r *Reassigner) PriorityType() gene.PriorityType {
	return r.priority
}

// prioritiserScore returns the current score of symbol, 0 when the gene is
// unknown or unscored.
func (r *Reassigner) prioritiserScore(symbol string) float64 {
	c, _ := r.registry.Candidate(symbol, r.priority)
	return c.Score
}

// scored returns the candidate for symbol only if the gene exists and has a
// score for the configured priority type.
func (r *Reassigner) scored(symbol string) (gene.Candidate, bool) {
	c, ok := r.registry.Candidate(symbol, r.priority)
	if !ok || !c.Scored {
		return gene.Candidate{}, false
	}
	return c, true
}

// ReassignToBestInDomain moves a non-coding or regulatory variant to the
// best-scoring gene sharing a domain with it. The current gene's score is
// the baseline and only a strictly higher score moves the variant. When it
// moves, the variant's annotations are cleared. Returns true if the variant
// was reassigned.
func (r *Reassigner) ReassignToBestInDomain(v *variant.Evaluation) bool {
	if v == nil || r.index == nil || !v.Effect.IsReassignmentEligible() {
		return false
	}

	baseline := r.prioritiserScore(v.GeneSymbol)
	best := baseline
	var winner gene.Candidate
	found := false

	for _, symbol := range r.index.GenesContaining(v.Chromosome, v.Position) {
		c, ok := r.scored(symbol)
		if !ok {
			continue
		}
		if c.Score > best {
			best = c.Score
			winner = c
			found = true
		}
	}
	if !found {
		return false
	}

	r.logger.Debug("reassigning variant to best gene in domain",
		zap.String("variant", v.ID()),
		zap.Stringer("effect", v.Effect),
		zap.String("from", v.GeneSymbol),
		zap.String("to", winner.Symbol),
		zap.Float64("score", winner.Score))

	v.EntrezGeneID = winner.EntrezID
	v.GeneSymbol = winner.Symbol
	v.Annotations = []*variant.Annotation{}
	return true
}

type annotatedCandidate struct {
	symbol     string
	effect     effect.Kind
	annotation *variant.Annotation // nil for a fusion component
}

// ReassignToBestAnnotatedGene moves a variant to the best-scoring gene among
// its own annotations. A hyphenated fusion symbol also contributes each of
// its component symbols as a candidate with an unknown effect. The variant
// keeps only the winning annotation, or none if a fusion component won, and
// takes the winner's effect unless it is already a regulatory region
// variant. Variants whose current gene is unknown are left alone. Returns
// true if the variant was reassigned.
func (r *Reassigner) ReassignToBestAnnotatedGene(v *variant.Evaluation) bool {
	if v == nil || !r.registry.Contains(v.GeneSymbol) {
		return false
	}

	baseline := r.prioritiserScore(v.GeneSymbol)
	best := baseline
	var (
		winner      gene.Candidate
		winnerEntry annotatedCandidate
		found       bool
	)

	for _, c := range annotatedCandidates(v.Annotations) {
		g, ok := r.scored(c.symbol)
		if !ok {
			continue
		}
		if g.Score > best {
			best = g.Score
			winner = g
			winnerEntry = c
			found = true
		}
	}
	if !found {
		return false
	}

	r.logger.Debug("reassigning variant to best annotated gene",
		zap.String("variant", v.ID()),
		zap.String("from", v.GeneSymbol),
		zap.String("to", winner.Symbol),
		zap.Float64("score", winner.Score))

	if winnerEntry.annotation != nil {
		v.Annotations = []*variant.Annotation{winnerEntry.annotation}
	} else {
		v.Annotations = []*variant.Annotation{}
	}
	if v.Effect != effect.RegulatoryRegionVariant {
		v.Effect = winnerEntry.effect
	}
	v.EntrezGeneID = winner.EntrezID
	v.GeneSymbol = winner.Symbol
	return true
}

// Reassign runs domain-based then annotation-based reassignment on v.
func (r *Reassigner) Reassign(v *variant.Evaluation) bool {
	a := r.ReassignToBestInDomain(v)
	b := r.ReassignToBestAnnotatedGene(v)
	return a || b
}

func annotatedCandidates(anns []*variant.Annotation) []annotatedCandidate {
	candidates := make([]annotatedCandidate, 0, len(anns))
	for _, a := range anns {
		if a == nil {
			continue
		}
		candidates = append(candidates, annotatedCandidate{symbol: a.GeneSymbol, effect: a.Effect, annotation: a})
		if !strings.Contains(a.GeneSymbol, "-") {
			continue
		}
		for _, part := range strings.Split(a.GeneSymbol, "-") {
			if part == "" {
				continue
			}
			candidates = append(candidates, annotatedCandidate{symbol: part, effect: effect.Custom})
		}
	}
	return candidates
}
