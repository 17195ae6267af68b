package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// VariantWriter writes evaluated variants in tab-delimited format.
type VariantWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewVariantWriter creates a new variant writer.
func NewVariantWriter(w io.Writer) *VariantWriter {
	return &VariantWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#CHROM",
			"POS",
			"REF",
			"ALT",
			"QUAL",
			"EFFECT",
			"GENE",
			"ENTREZ_ID",
			"FREQ",
			"PATHOGENICITY",
			"FILTER_STATUS",
			"FAILED_FILTERS",
			"ANNOTATIONS",
		},
	}
}

// WriteHeader writes the header line.
func (vw *VariantWriter) WriteHeader() error {
	_, err := vw.w.WriteString(strings.Join(vw.columns, "\t") + "\n")
	return err
}

// Write writes a single variant.
func (vw *VariantWriter) Write(v *variant.Evaluation) error {
	entrez := "-"
	if v.EntrezGeneID > 0 {
		entrez = strconv.Itoa(v.EntrezGeneID)
	}
	symbol := v.GeneSymbol
	if symbol == "" {
		symbol = "-"
	}

	values := []string{
		genome.ChromosomeName(v.Chromosome),
		strconv.FormatInt(v.Position, 10),
		v.Ref,
		v.Alt,
		strconv.FormatFloat(v.Quality, 'f', -1, 64),
		v.Effect.String(),
		symbol,
		entrez,
		strconv.FormatFloat(v.Frequency, 'f', -1, 64),
		strconv.FormatFloat(v.Pathogenicity, 'f', -1, 64),
		filterStatus(&v.Filters),
		failedFilters(&v.Filters),
		formatAnnotations(v.Annotations),
	}

	_, err := vw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VariantWriter) Flush() error {
	return vw.w.Flush()
}

// formatAnnotations renders annotations in the input notation,
// SYMBOL|effect|transcript|hgvsc joined by ';'.
func formatAnnotations(anns []*variant.Annotation) string {
	if len(anns) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(anns))
	for _, a := range anns {
		fields := []string{a.GeneSymbol, a.Effect.String(), a.TranscriptID, a.HGVSc}
		n := len(fields)
		for n > 2 && fields[n-1] == "" {
			n--
		}
		parts = append(parts, strings.Join(fields[:n], "|"))
	}
	return strings.Join(parts, ";")
}
