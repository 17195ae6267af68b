package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/filter"
	"github.com/inodb/vibe-prioritiser/internal/results"
)

// EffectCountWriter writes the per-sample variant effect table.
type EffectCountWriter struct {
	w       *bufio.Writer
	samples []string
}

// NewEffectCountWriter creates an effect count writer. Sample names label
// the count columns; missing names are numbered.
func NewEffectCountWriter(w io.Writer, samples []string) *EffectCountWriter {
	return &EffectCountWriter{w: bufio.NewWriter(w), samples: samples}
}

// Write writes the header and one row per reportable effect, in display
// order, then flushes.
func (ew *EffectCountWriter) Write(counts results.EffectCounts) error {
	n := counts.Samples()
	header := []string{"#EFFECT", "IMPACT"}
	for i := 0; i < n; i++ {
		if i < len(ew.samples) && ew.samples[i] != "" {
			header = append(header, ew.samples[i])
		} else {
			header = append(header, fmt.Sprintf("SAMPLE_%d", i+1))
		}
	}
	if _, err := ew.w.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return err
	}

	for _, k := range effect.Reportable() {
		row := []string{k.String(), k.Impact()}
		for _, c := range counts[k] {
			row = append(row, strconv.Itoa(c))
		}
		if _, err := ew.w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return ew.w.Flush()
}

// WriteFilterReports writes a header and one line per filter report, with
// variant filters first.
func WriteFilterReports(w io.Writer, variantReports, geneReports []*filter.Report) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#TARGET\tFILTER\tPASSED\tFAILED\tNOT_RUN\tMESSAGES\n"); err != nil {
		return err
	}
	if err := writeReports(bw, "variant", variantReports); err != nil {
		return err
	}
	if err := writeReports(bw, "gene", geneReports); err != nil {
		return err
	}
	return bw.Flush()
}

func writeReports(bw *bufio.Writer, target string, reports []*filter.Report) error {
	for _, r := range reports {
		line := []string{target, string(r.FilterType),
			strconv.Itoa(r.Passed), strconv.Itoa(r.Failed), strconv.Itoa(r.NotRun),
			strings.Join(r.Messages, "; ")}
		if _, err := bw.WriteString(strings.Join(line, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}
