// Package genome provides chromosomal regions and a spatial index for
// point containment queries over them.
package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Chromosome numbers for the non-autosomal contigs.
const (
	ChromosomeX  = 23
	ChromosomeY  = 24
	ChromosomeMT = 25
)

// ParseChromosome converts a chromosome token (e.g. "chr10", "X", "MT") to
// its integer identifier.
func ParseChromosome(token string) (int, error) {
	t := strings.TrimSpace(token)
	if len(t) > 3 && strings.EqualFold(t[:3], "chr") {
		t = t[3:]
	}
	switch strings.ToUpper(t) {
	case "X":
		return ChromosomeX, nil
	case "Y":
		return ChromosomeY, nil
	case "M", "MT":
		return ChromosomeMT, nil
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < 1 || n > 22 {
		return 0, fmt.Errorf("unknown chromosome %q", token)
	}
	return n, nil
}

// ChromosomeName returns the display name for a chromosome identifier.
func ChromosomeName(chrom int) string {
	switch chrom {
	case ChromosomeX:
		return "X"
	case ChromosomeY:
		return "Y"
	case ChromosomeMT:
		return "MT"
	}
	return strconv.Itoa(chrom)
}

// Region is a contiguous chromosomal interval, 1-based and inclusive,
// listing the symbols of the genes it contains. Regions are immutable
// once loaded.
type Region struct {
	Chromosome int
	Start      int64
	End        int64
	Genes      []string
}

// Contains returns true if pos lies within [Start, End].
func (r *Region) Contains(pos int64) bool {
	return pos >= r.Start && pos <= r.End
}

// HasGene reports whether the region lists the given gene symbol.
func (r *Region) HasGene(symbol string) bool {
	for _, g := range r.Genes {
		if g == symbol {
			return true
		}
	}
	return false
}

func (r *Region) String() string {
	return fmt.Sprintf("%s:%d-%d", ChromosomeName(r.Chromosome), r.Start, r.End)
}

// InvalidRegionError reports a malformed region definition.
type InvalidRegionError struct {
	Region  Region
	Message string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region chr%d:%d-%d: %s",
		e.Region.Chromosome, e.Region.Start, e.Region.End, e.Message)
}
