package results

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

func TestCountByEffect_Empty(t *testing.T) {
	for _, in := range [][]*variant.Evaluation{nil, {}} {
		counts := CountByEffect(in)
		require.Len(t, counts, len(effect.Reportable()))
		for _, k := range effect.Reportable() {
			assert.Equal(t, []int{0}, counts[k], k.String())
		}
		assert.Equal(t, 1, counts.Samples())
	}
}

func TestCountByEffect_PerSample(t *testing.T) {
	variants := []*variant.Evaluation{
		{Effect: effect.MissenseVariant, Genotypes: []string{"0/1", "0/0"}},
		{Effect: effect.MissenseVariant, Genotypes: []string{"1/1", "0|1"}},
		{Effect: effect.IntronVariant, Genotypes: []string{"0/1", "0/1"}}, // not reportable
		{Effect: effect.UpstreamGeneVariant, Genotypes: []string{"./.", "0/1"}},
	}

	counts := CountByEffect(variants)
	assert.Len(t, counts, len(effect.Reportable()))
	assert.Equal(t, 2, counts.Samples())
	assert.Equal(t, []int{2, 1}, counts[effect.MissenseVariant])
	assert.Equal(t, []int{0, 1}, counts[effect.UpstreamGeneVariant])
	assert.Equal(t, []int{0, 0}, counts[effect.StopGained])
	assert.NotContains(t, counts, effect.IntronVariant)
	assert.Equal(t, 3, counts.Total(effect.MissenseVariant))
}

func TestCountByEffect_SingleSample(t *testing.T) {
	counts := CountByEffect([]*variant.Evaluation{
		{Effect: effect.SynonymousVariant},
		{Effect: effect.SynonymousVariant},
	})
	assert.Equal(t, []int{2}, counts[effect.SynonymousVariant])
}

func makeGenes(passed ...bool) []*gene.Gene {
	genes := make([]*gene.Gene, len(passed))
	for i, p := range passed {
		g := gene.New(fmt.Sprintf("G%d", i), i)
		if !p {
			g.Filters.Record(outcome.PriorityScoreFilter, outcome.Fail)
		}
		genes[i] = g
	}
	return genes
}

func symbols(genes []*gene.Gene) []string {
	s := make([]string, len(genes))
	for i, g := range genes {
		s[i] = g.Symbol
	}
	return s
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name     string
		passed   []bool
		maxGenes int
		want     []string
	}{
		{"no limit", []bool{true, false, true, true}, 0, []string{"G0", "G2", "G3"}},
		{"first two of five", []bool{true, true, true, true, true}, 2, []string{"G0", "G1"}},
		{"limit above count", []bool{true, false}, 10, []string{"G0"}},
		{"failed genes skipped before limit", []bool{false, true, false, true, true}, 2, []string{"G1", "G3"}},
		{"none passed", []bool{false, false}, 0, []string{}},
		{"empty", nil, 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prune(makeGenes(tt.passed...), tt.maxGenes)
			assert.Equal(t, tt.want, symbols(got))
		})
	}
}

func TestPrune_DoesNotModifyInput(t *testing.T) {
	genes := makeGenes(true, false, true)
	Prune(genes, 1)
	assert.Equal(t, []string{"G0", "G1", "G2"}, symbols(genes))
}
