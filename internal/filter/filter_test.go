package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// countingFilter records how often it was evaluated.
type countingFilter struct {
	ft    outcome.FilterType
	pass  bool
	calls int
}

func (f *countingFilter) Type() outcome.FilterType { return f.ft }

func (f *countingFilter) Filter(*variant.Evaluation) outcome.Result {
	f.calls++
	return result(f.pass)
}

func TestPipeline_Exhaustive(t *testing.T) {
	q := &countingFilter{ft: outcome.QualityFilter, pass: false}
	fr := &countingFilter{ft: outcome.FrequencyFilter, pass: true}
	p := &countingFilter{ft: outcome.PathogenicityFilter, pass: false}
	pipeline := NewPipeline[*variant.Evaluation](Exhaustive, q, fr, p)

	v := &variant.Evaluation{}
	assert.False(t, pipeline.Apply(v, &v.Filters))

	assert.Equal(t, 1, fr.calls)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, outcome.Fail, v.Filters.Get(outcome.QualityFilter))
	assert.Equal(t, outcome.Pass, v.Filters.Get(outcome.FrequencyFilter))
	assert.Equal(t, outcome.Fail, v.Filters.Get(outcome.PathogenicityFilter))
	assert.Equal(t, []outcome.FilterType{outcome.PathogenicityFilter, outcome.QualityFilter}, v.Filters.Failed())
	assert.False(t, v.PassedFilters())
}

func TestPipeline_ShortCircuit(t *testing.T) {
	q := &countingFilter{ft: outcome.QualityFilter, pass: true}
	fr := &countingFilter{ft: outcome.FrequencyFilter, pass: false}
	p := &countingFilter{ft: outcome.PathogenicityFilter, pass: true}
	pipeline := NewPipeline[*variant.Evaluation](ShortCircuit, q, fr, p)

	v := &variant.Evaluation{}
	assert.False(t, pipeline.Apply(v, &v.Filters))

	assert.Equal(t, 0, p.calls)
	assert.Equal(t, 3, v.Filters.Len())
	assert.Equal(t, outcome.Pass, v.Filters.Get(outcome.QualityFilter))
	assert.Equal(t, outcome.Fail, v.Filters.Get(outcome.FrequencyFilter))
	assert.Equal(t, outcome.NotRun, v.Filters.Get(outcome.PathogenicityFilter))
}

func TestPipeline_AllPass(t *testing.T) {
	pipeline := NewPipeline[*variant.Evaluation](ShortCircuit, QualityFilter{Min: 10}, FrequencyFilter{MaxPercent: 1})
	v := &variant.Evaluation{Quality: 50, Frequency: 0.1}
	assert.True(t, pipeline.Apply(v, &v.Filters))
	assert.True(t, v.PassedFilters())
	assert.Equal(t, []outcome.FilterType{outcome.QualityFilter, outcome.FrequencyFilter}, pipeline.Types())
	assert.Equal(t, 2, pipeline.Len())

	empty := NewPipeline[*variant.Evaluation](Exhaustive)
	v = &variant.Evaluation{}
	assert.True(t, empty.Apply(v, &v.Filters))
	assert.Zero(t, v.Filters.Len())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("short-circuit")
	require.NoError(t, err)
	assert.Equal(t, ShortCircuit, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Exhaustive, m)
	_, err = ParseMode("lazy")
	assert.Error(t, err)
	assert.Equal(t, "short-circuit", ShortCircuit.String())
}

func TestVariantFilters(t *testing.T) {
	interval, err := ParseInterval("chr10:100-200")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter VariantFilter
		v      variant.Evaluation
		want   outcome.Result
	}{
		{"quality pass", QualityFilter{Min: 20}, variant.Evaluation{Quality: 20}, outcome.Pass},
		{"quality fail", QualityFilter{Min: 20}, variant.Evaluation{Quality: 19.9}, outcome.Fail},
		{"frequency pass", FrequencyFilter{MaxPercent: 1}, variant.Evaluation{Frequency: 1}, outcome.Pass},
		{"frequency fail", FrequencyFilter{MaxPercent: 1}, variant.Evaluation{Frequency: 1.5}, outcome.Fail},
		{"pathogenicity pass", PathogenicityFilter{Min: 0.5}, variant.Evaluation{Pathogenicity: 0.7}, outcome.Pass},
		{"pathogenicity fail", PathogenicityFilter{Min: 0.5}, variant.Evaluation{Pathogenicity: 0.2}, outcome.Fail},
		{"pathogenicity keep", PathogenicityFilter{Min: 0.5, KeepNonPathogenic: true}, variant.Evaluation{}, outcome.Pass},
		{"effect excluded", NewVariantEffectFilter(effect.SynonymousVariant), variant.Evaluation{Effect: effect.SynonymousVariant}, outcome.Fail},
		{"effect kept", NewVariantEffectFilter(effect.SynonymousVariant), variant.Evaluation{Effect: effect.MissenseVariant}, outcome.Pass},
		{"interval start", interval, variant.Evaluation{Chromosome: 10, Position: 100}, outcome.Pass},
		{"interval end", interval, variant.Evaluation{Chromosome: 10, Position: 200}, outcome.Pass},
		{"interval outside", interval, variant.Evaluation{Chromosome: 10, Position: 201}, outcome.Fail},
		{"interval other chrom", interval, variant.Evaluation{Chromosome: 11, Position: 150}, outcome.Fail},
		{"regulatory intergenic", RegulatoryFeatureFilter{}, variant.Evaluation{Effect: effect.IntergenicVariant}, outcome.Fail},
		{"regulatory upstream", RegulatoryFeatureFilter{}, variant.Evaluation{Effect: effect.UpstreamGeneVariant}, outcome.Fail},
		{"regulatory region", RegulatoryFeatureFilter{}, variant.Evaluation{Effect: effect.RegulatoryRegionVariant}, outcome.Pass},
		{"regulatory missense", RegulatoryFeatureFilter{}, variant.Evaluation{Effect: effect.MissenseVariant}, outcome.Pass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.v
			assert.Equal(t, tt.want, tt.filter.Filter(&v))
			assert.Zero(t, v.Filters.Len(), "filters must not record outcomes themselves")
		})
	}
}

func TestParseInterval(t *testing.T) {
	f, err := ParseInterval("X:1,000-2,000")
	require.NoError(t, err)
	assert.Equal(t, IntervalFilter{Chromosome: genome.ChromosomeX, Start: 1000, End: 2000}, f)
	assert.Equal(t, "Interval X:1000-2000", f.String())

	for _, bad := range []string{"10", "chrQ:1-2", "10:1", "10:a-2", "10:1-b", "10:5-1"} {
		_, err := ParseInterval(bad)
		assert.Error(t, err, bad)
	}
}

func TestGeneFilters(t *testing.T) {
	g := gene.New("FGFR2", 2263)
	g.SetPriorityScore(gene.HiPhivePriority, 0.6)

	assert.Equal(t, outcome.Pass, PriorityScoreFilter{Priority: gene.HiPhivePriority, Min: 0.5}.Filter(g))
	assert.Equal(t, outcome.Fail, PriorityScoreFilter{Priority: gene.HiPhivePriority, Min: 0.7}.Filter(g))
	assert.Equal(t, outcome.Fail, PriorityScoreFilter{Priority: gene.OmimPriority, Min: 0.1}.Filter(g))
	assert.Equal(t, outcome.Pass, PriorityScoreFilter{Priority: gene.OmimPriority, Min: 0}.Filter(g))

	assert.Equal(t, outcome.Pass, NewGeneSymbolFilter("FGFR2", "TP53").Filter(g))
	assert.Equal(t, outcome.Fail, NewGeneSymbolFilter("TP53").Filter(g))

	assert.Equal(t, outcome.Fail, PassingVariantsFilter{}.Filter(g))
	failed := &variant.Evaluation{}
	failed.Filters.Record(outcome.QualityFilter, outcome.Fail)
	g.AddVariant(failed)
	assert.Equal(t, outcome.Fail, PassingVariantsFilter{}.Filter(g))
	g.AddVariant(&variant.Evaluation{})
	assert.Equal(t, outcome.Pass, PassingVariantsFilter{}.Filter(g))

	pipeline := NewPipeline[*gene.Gene](Exhaustive,
		PriorityScoreFilter{Priority: gene.HiPhivePriority, Min: 0.7},
		PassingVariantsFilter{},
	)
	assert.False(t, pipeline.Apply(g, &g.Filters))
	assert.False(t, g.PassedFilters())
	assert.Equal(t, outcome.Pass, g.Filters.Get(outcome.PassingVariantsFilter))
}

func TestReports(t *testing.T) {
	pipeline := NewPipeline[*variant.Evaluation](ShortCircuit, QualityFilter{Min: 20}, FrequencyFilter{MaxPercent: 1})
	variants := []*variant.Evaluation{
		{Quality: 30, Frequency: 0.1},
		{Quality: 10, Frequency: 0.1},
		{Quality: 30, Frequency: 5},
	}
	sets := make([]*outcome.Set, len(variants))
	for i, v := range variants {
		pipeline.Apply(v, &v.Filters)
		sets[i] = &v.Filters
	}

	reports := Reports(pipeline, sets)
	require.Len(t, reports, 2)

	assert.Equal(t, outcome.QualityFilter, reports[0].FilterType)
	assert.Equal(t, 2, reports[0].Passed)
	assert.Equal(t, 1, reports[0].Failed)
	assert.Equal(t, 0, reports[0].NotRun)
	assert.Equal(t, []string{"Quality >= 20"}, reports[0].Messages)

	assert.Equal(t, 1, reports[1].Passed)
	assert.Equal(t, 1, reports[1].Failed)
	assert.Equal(t, 1, reports[1].NotRun)
	assert.True(t, reports[1].HasMessages())
	assert.Equal(t, "filter report for frequency: pass:1 fail:1 [Maximum allele frequency <= 1%]", reports[1].String())

	r := &Report{FilterType: outcome.GeneSymbolFilter}
	assert.False(t, r.HasMessages())
	r.AddMessage("hello")
	assert.Equal(t, []string{"hello"}, r.Messages)
}
