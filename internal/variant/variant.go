// Package variant provides the per-variant evaluation record carried
// through filtering, gene reassignment and result aggregation.
package variant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

// Annotation is the predicted effect of a variant on one overlapping
// transcript, as produced by an upstream annotator.
type Annotation struct {
	GeneSymbol   string      // Gene symbol, possibly hyphen-joined for fusion transcripts
	Effect       effect.Kind // Most pathogenic effect on this transcript
	TranscriptID string      // Affected transcript, empty if unknown
	HGVSc        string      // HGVS coding DNA notation, empty if not available
	Raw          string      // Upstream payload, carried through untouched
}

// Evaluation is a single variant call and everything learned about it
// during an analysis. An Evaluation is owned by one pipeline worker at a
// time and carries no internal locking.
type Evaluation struct {
	Chromosome   int     // genome.Chromosome identifier
	Position     int64   // 1-based genomic position
	Ref          string  // Reference allele
	Alt          string  // Alternate allele
	Quality      float64 // Call quality (QUAL)
	Effect       effect.Kind
	GeneSymbol   string
	EntrezGeneID int
	Annotations  []*Annotation // Transcript-priority order

	Frequency     float64  // Maximum population allele frequency (percent)
	Pathogenicity float64  // Predicted pathogenicity (0-1)
	Genotypes     []string // One VCF-style genotype per sample, e.g. "0/1"

	Filters outcome.Set
}

// PassedFilters returns true if no variant filter failed.
func (v *Evaluation) PassedFilters() bool {
	return v.Filters.Passed()
}

// ID returns a compact identifier, e.g. "10_150_A/T".
func (v *Evaluation) ID() string {
	return genome.ChromosomeName(v.Chromosome) + "_" + strconv.FormatInt(v.Position, 10) + "_" + v.Ref + "/" + v.Alt
}

func (v *Evaluation) String() string {
	return fmt.Sprintf("%s:%d %s>%s %s %s", genome.ChromosomeName(v.Chromosome), v.Position, v.Ref, v.Alt, v.Effect, v.GeneSymbol)
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Evaluation) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Evaluation) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// NumberOfIndividuals returns the number of samples genotyped for this
// variant. A variant without genotypes is treated as a single-sample call.
func (v *Evaluation) NumberOfIndividuals() int {
	if len(v.Genotypes) == 0 {
		return 1
	}
	return len(v.Genotypes)
}

// CarriedBy reports whether sample carries at least one alternate allele.
func (v *Evaluation) CarriedBy(sample int) bool {
	if len(v.Genotypes) == 0 {
		return sample == 0
	}
	if sample < 0 || sample >= len(v.Genotypes) {
		return false
	}
	return hasAltAllele(v.Genotypes[sample])
}

func hasAltAllele(gt string) bool {
	for _, allele := range strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' }) {
		if allele != "0" && allele != "." {
			return true
		}
	}
	return false
}
