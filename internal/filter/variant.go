package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// VariantFilter is a filter over variant evaluations.
type VariantFilter = Filter[*variant.Evaluation]

// QualityFilter passes variants with call quality of at least Min.
type QualityFilter struct {
	Min float64
}

func (f QualityFilter) Type() outcome.FilterType { return outcome.QualityFilter }

func (f QualityFilter) Filter(v *variant.Evaluation) outcome.Result {
	return result(v.Quality >= f.Min)
}

func (f QualityFilter) String() string {
	return fmt.Sprintf("Quality >= %g", f.Min)
}

// FrequencyFilter passes variants whose maximum population allele
// frequency, in percent, does not exceed MaxPercent.
type FrequencyFilter struct {
	MaxPercent float64
}

func (f FrequencyFilter) Type() outcome.FilterType { return outcome.FrequencyFilter }

func (f FrequencyFilter) Filter(v *variant.Evaluation) outcome.Result {
	return result(v.Frequency <= f.MaxPercent)
}

func (f FrequencyFilter) String() string {
	return fmt.Sprintf("Maximum allele frequency <= %g%%", f.MaxPercent)
}

// PathogenicityFilter passes variants predicted at least Min pathogenic.
// With KeepNonPathogenic every variant passes.
type PathogenicityFilter struct {
	Min               float64
	KeepNonPathogenic bool
}

func (f PathogenicityFilter) Type() outcome.FilterType { return outcome.PathogenicityFilter }

func (f PathogenicityFilter) Filter(v *variant.Evaluation) outcome.Result {
	return result(f.KeepNonPathogenic || v.Pathogenicity >= f.Min)
}

func (f PathogenicityFilter) String() string {
	if f.KeepNonPathogenic {
		return "Retained all non-pathogenic variants of all types"
	}
	return fmt.Sprintf("Pathogenicity >= %g", f.Min)
}

// VariantEffectFilter fails variants whose effect is in the excluded set.
type VariantEffectFilter struct {
	excluded map[effect.Kind]bool
}

// NewVariantEffectFilter creates a filter removing the given effect kinds.
func NewVariantEffectFilter(excluded ...effect.Kind) *VariantEffectFilter {
	f := &VariantEffectFilter{excluded: make(map[effect.Kind]bool, len(excluded))}
	for _, k := range excluded {
		f.excluded[k] = true
	}
	return f
}

func (f *VariantEffectFilter) Type() outcome.FilterType { return outcome.VariantEffectFilter }

func (f *VariantEffectFilter) Filter(v *variant.Evaluation) outcome.Result {
	return result(!f.excluded[v.Effect])
}

func (f *VariantEffectFilter) String() string {
	terms := make([]string, 0, len(f.excluded))
	for k := range f.excluded {
		terms = append(terms, k.String())
	}
	sort.Strings(terms)
	return "Removed variant types: " + strings.Join(terms, ", ")
}

// IntervalFilter passes variants inside a genomic interval (1-based, inclusive).
type IntervalFilter struct {
	Chromosome int
	Start      int64
	End        int64
}

// ParseInterval parses "chr10:100-200" into an IntervalFilter.
func ParseInterval(s string) (IntervalFilter, error) {
	chromPart, rangePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return IntervalFilter{}, fmt.Errorf("invalid interval %q: want chrom:start-end", s)
	}
	chrom, err := genome.ParseChromosome(chromPart)
	if err != nil {
		return IntervalFilter{}, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	startPart, endPart, ok := strings.Cut(rangePart, "-")
	if !ok {
		return IntervalFilter{}, fmt.Errorf("invalid interval %q: want chrom:start-end", s)
	}
	start, err := strconv.ParseInt(strings.ReplaceAll(startPart, ",", ""), 10, 64)
	if err != nil {
		return IntervalFilter{}, fmt.Errorf("invalid interval start %q: %w", startPart, err)
	}
	end, err := strconv.ParseInt(strings.ReplaceAll(endPart, ",", ""), 10, 64)
	if err != nil {
		return IntervalFilter{}, fmt.Errorf("invalid interval end %q: %w", endPart, err)
	}
	if start > end {
		return IntervalFilter{}, fmt.Errorf("invalid interval %q: start is after end", s)
	}
	return IntervalFilter{Chromosome: chrom, Start: start, End: end}, nil
}

func (f IntervalFilter) Type() outcome.FilterType { return outcome.IntervalFilter }

func (f IntervalFilter) Filter(v *variant.Evaluation) outcome.Result {
	return result(v.Chromosome == f.Chromosome && v.Position >= f.Start && v.Position <= f.End)
}

func (f IntervalFilter) String() string {
	return fmt.Sprintf("Interval %s:%d-%d", genome.ChromosomeName(f.Chromosome), f.Start, f.End)
}

// RegulatoryFeatureFilter fails intergenic and upstream variants, which
// carry no evidence of lying in a regulatory feature.
type RegulatoryFeatureFilter struct{}

func (RegulatoryFeatureFilter) Type() outcome.FilterType { return outcome.RegulatoryFeatureFilter }

func (RegulatoryFeatureFilter) Filter(v *variant.Evaluation) outcome.Result {
	switch v.Effect {
	case effect.IntergenicVariant, effect.UpstreamGeneVariant:
		return outcome.Fail
	}
	return outcome.Pass
}

func (RegulatoryFeatureFilter) String() string {
	return "Removed intergenic and upstream variants outside regulatory features"
}
