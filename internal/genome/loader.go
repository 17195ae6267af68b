package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed line in a domain file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("domain parse error at line %d: %s", e.Line, e.Message)
}

// LoadDomains reads topologically associating domains from a tab-separated
// file with columns chrom, start, end and an optional comma-separated list
// of gene symbols. Lines starting with '#' are skipped. Gzipped files are
// detected by their magic bytes.
func LoadDomains(path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domain file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return ReadDomains(gz)
	}
	return ReadDomains(br)
}

// ReadDomains parses domains from r. See LoadDomains for the format.
func ReadDomains(r io.Reader) ([]Region, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var regions []Region
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("expected at least 3 columns, got %d", len(fields))}
		}

		start, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("invalid start %q", fields[1])}
		}
		end, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("invalid end %q", fields[2])}
		}

		chrom, err := ParseChromosome(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, &InvalidRegionError{
				Region:  Region{Start: start, End: end},
				Message: err.Error(),
			})
		}

		region := Region{Chromosome: chrom, Start: start, End: end}
		if len(fields) > 3 {
			region.Genes = splitGenes(fields[3])
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading domain file: %w", err)
	}
	return regions, nil
}

func splitGenes(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" || field == "." {
		return nil
	}
	parts := strings.Split(field, ",")
	genes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genes = append(genes, p)
		}
	}
	return genes
}

// LoadIndex loads a domain file and builds a RegionIndex from it.
func LoadIndex(path string) (*RegionIndex, error) {
	regions, err := LoadDomains(path)
	if err != nil {
		return nil, err
	}
	return Build(regions)
}
