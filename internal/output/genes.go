// Package output writes analysis results as tab-delimited tables.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

// GeneWriter writes ranked genes in tab-delimited format.
type GeneWriter struct {
	w        *bufio.Writer
	priority gene.PriorityType
	columns  []string
	rank     int
}

// NewGeneWriter creates a gene writer reporting scores for priority.
func NewGeneWriter(w io.Writer, priority gene.PriorityType) *GeneWriter {
	return &GeneWriter{
		w:        bufio.NewWriter(w),
		priority: priority,
		columns: []string{
			"#RANK",
			"GENE_SYMBOL",
			"ENTREZ_GENE_ID",
			"COMBINED_SCORE",
			"PRIORITY_SCORE",
			"VARIANT_SCORE",
			"PRIORITY_TYPE",
			"VARIANTS",
			"PASSED_VARIANTS",
			"FILTER_STATUS",
			"FAILED_FILTERS",
		},
	}
}

// WriteHeader writes the header line.
func (gw *GeneWriter) WriteHeader() error {
	_, err := gw.w.WriteString(strings.Join(gw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene; rows are ranked in write order starting at 1.
func (gw *GeneWriter) Write(g *gene.Gene) error {
	gw.rank++

	entrez := "-"
	if g.EntrezID > 0 {
		entrez = strconv.Itoa(g.EntrezID)
	}

	values := []string{
		strconv.Itoa(gw.rank),
		g.Symbol,
		entrez,
		formatScore(g.CombinedScore),
		formatScore(gene.Score(g, gw.priority)),
		formatScore(g.VariantScore),
		string(gw.priority),
		strconv.Itoa(len(g.Variants())),
		strconv.Itoa(len(g.PassedVariants())),
		filterStatus(&g.Filters),
		failedFilters(&g.Filters),
	}

	_, err := gw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every gene, then flushes.
func (gw *GeneWriter) WriteAll(genes []*gene.Gene) error {
	if err := gw.WriteHeader(); err != nil {
		return err
	}
	for _, g := range genes {
		if err := gw.Write(g); err != nil {
			return err
		}
	}
	return gw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GeneWriter) Flush() error {
	return gw.w.Flush()
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func filterStatus(s *outcome.Set) string {
	if s.Len() == 0 {
		return "."
	}
	if s.Passed() {
		return outcome.Pass.String()
	}
	return outcome.Fail.String()
}

func failedFilters(s *outcome.Set) string {
	failed := s.Failed()
	if len(failed) == 0 {
		return "-"
	}
	names := make([]string, len(failed))
	for i, ft := range failed {
		names[i] = string(ft)
	}
	return strings.Join(names, ",")
}
