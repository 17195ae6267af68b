// Package results summarises the outcome of an analysis for reporting.
package results

import (
	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// EffectCounts maps each reportable effect kind to per-sample variant counts.
type EffectCounts map[effect.Kind][]int

// CountByEffect tallies, for every reportable effect kind, how many of the
// variants each sample carries. The number of samples is taken from the
// first variant. Every reportable kind is present in the result, so an
// empty input yields one zero count per kind. Variants with effects outside
// the reportable set are ignored.
func CountByEffect(variants []*variant.Evaluation) EffectCounts {
	samples := 1
	if len(variants) > 0 {
		samples = variants[0].NumberOfIndividuals()
	}

	counts := make(EffectCounts, len(effect.Reportable()))
	for _, k := range effect.Reportable() {
		counts[k] = make([]int, samples)
	}
	for _, v := range variants {
		perSample, ok := counts[v.Effect]
		if !ok {
			continue
		}
		for s := range perSample {
			if v.CarriedBy(s) {
				perSample[s]++
			}
		}
	}
	return counts
}

// Total returns the count for k summed over all samples.
func (c EffectCounts) Total(k effect.Kind) int {
	n := 0
	for _, x := range c[k] {
		n += x
	}
	return n
}

// Samples returns the number of samples counted.
func (c EffectCounts) Samples() int {
	for _, perSample := range c {
		return len(perSample)
	}
	return 0
}

// Prune returns the genes that passed filtering, in their existing order,
// truncated to the first maxGenes. A maxGenes of 0 means no limit.
func Prune(genes []*gene.Gene, maxGenes int) []*gene.Gene {
	passed := make([]*gene.Gene, 0, len(genes))
	for _, g := range genes {
		if g.PassedFilters() {
			passed = append(passed, g)
		}
	}
	if maxGenes > 0 && len(passed) > maxGenes {
		passed = passed[:maxGenes]
	}
	return passed
}
