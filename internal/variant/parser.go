package variant

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/genome"
)

// Column names of the pre-annotated variant table.
const (
	ColChromosome    = "CHROM"
	ColPosition      = "POS"
	ColRef           = "REF"
	ColAlt           = "ALT"
	ColQuality       = "QUAL"
	ColEffect        = "EFFECT"
	ColGene          = "GENE"
	ColEntrezID      = "ENTREZ_ID"
	ColFrequency     = "FREQ"
	ColPathogenicity = "PATHOGENICITY"
	ColAnnotations   = "ANNOTATIONS"
	ColGenotypes     = "GENOTYPES"
)

// ColumnIndices holds the indices of the variant table columns, -1 when absent.
type ColumnIndices struct {
	Chromosome    int
	Position      int
	Ref           int
	Alt           int
	Quality       int
	Effect        int
	Gene          int
	EntrezID      int
	Frequency     int
	Pathogenicity int
	Annotations   int
	Genotypes     int
}

// Parser reads pre-annotated variants from a tab-separated file.
//
// Annotations are ';'-separated, each a '|'-separated tuple of
// gene symbol, effect term, transcript ID and HGVSc; trailing fields may
// be omitted. Genotypes are ','-separated, one per sample.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	columns     ColumnIndices
	sampleNames []string
}

// NewParser creates a parser for the given file. Supports plain and gzipped
// input; "-" reads from stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant file: %w", err)
	}

	p := &Parser{file: file}
	br := bufio.NewReader(file)

	// Check for gzip magic number (0x1f, 0x8b)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = br
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r)}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeader reads "##" metadata lines and the column header line.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{Line: p.lineNumber, Message: "no header line found"}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			if v, ok := strings.CutPrefix(line, "##samples="); ok {
				p.sampleNames = strings.Split(v, ",")
			}
			continue
		}
		return p.parseColumnIndices(strings.TrimPrefix(line, "#"))
	}
}

func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome: -1, Position: -1, Ref: -1, Alt: -1,
		Quality: -1, Effect: -1, Gene: -1, EntrezID: -1,
		Frequency: -1, Pathogenicity: -1, Annotations: -1, Genotypes: -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColPosition:
			p.columns.Position = i
		case ColRef:
			p.columns.Ref = i
		case ColAlt:
			p.columns.Alt = i
		case ColQuality:
			p.columns.Quality = i
		case ColEffect:
			p.columns.Effect = i
		case ColGene:
			p.columns.Gene = i
		case ColEntrezID:
			p.columns.EntrezID = i
		case ColFrequency:
			p.columns.Frequency = i
		case ColPathogenicity:
			p.columns.Pathogenicity = i
		case ColAnnotations:
			p.columns.Annotations = i
		case ColGenotypes:
			p.columns.Genotypes = i
		}
	}

	for _, req := range []struct {
		idx  int
		name string
	}{
		{p.columns.Chromosome, ColChromosome},
		{p.columns.Position, ColPosition},
		{p.columns.Ref, ColRef},
		{p.columns.Alt, ColAlt},
	} {
		if req.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", req.name),
			}
		}
	}
	return nil
}

// Next reads the next variant. Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Evaluation, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

func (p *Parser) parseLine(line string) (*Evaluation, error) {
	fields := strings.Split(line, "\t")
	field := func(idx int) string {
		if idx < 0 || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	chrom, err := genome.ParseChromosome(field(p.columns.Chromosome))
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}
	pos, err := strconv.ParseInt(field(p.columns.Position), 10, 64)
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid position %q", field(p.columns.Position))}
	}

	v := &Evaluation{
		Chromosome: chrom,
		Position:   pos,
		Ref:        field(p.columns.Ref),
		Alt:        field(p.columns.Alt),
	}

	floats := []struct {
		idx  int
		dest *float64
		name string
	}{
		{p.columns.Quality, &v.Quality, ColQuality},
		{p.columns.Frequency, &v.Frequency, ColFrequency},
		{p.columns.Pathogenicity, &v.Pathogenicity, ColPathogenicity},
	}
	for _, f := range floats {
		s := field(f.idx)
		if s == "" || s == "." {
			continue
		}
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid %s %q", f.name, s)}
		}
		*f.dest = val
	}

	if s := field(p.columns.EntrezID); s != "" && s != "." {
		id, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid %s %q", ColEntrezID, s)}
		}
		v.EntrezGeneID = id
	}

	v.Annotations = parseAnnotations(field(p.columns.Annotations))

	v.GeneSymbol = field(p.columns.Gene)
	if v.GeneSymbol == "" && len(v.Annotations) > 0 {
		v.GeneSymbol = v.Annotations[0].GeneSymbol
	}
	if term := field(p.columns.Effect); term != "" {
		v.Effect, _ = effect.Parse(term)
	} else if len(v.Annotations) > 0 {
		v.Effect = v.Annotations[0].Effect
	}

	if gts := field(p.columns.Genotypes); gts != "" && gts != "." {
		v.Genotypes = strings.Split(gts, ",")
	}

	return v, nil
}

func parseAnnotations(s string) []*Annotation {
	if s == "" || s == "." {
		return nil
	}
	var anns []*Annotation
	for _, raw := range strings.Split(s, ";") {
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, "|")
		ann := &Annotation{GeneSymbol: parts[0], Raw: raw}
		if len(parts) > 1 {
			ann.Effect, _ = effect.Parse(parts[1])
		}
		if len(parts) > 2 {
			ann.TranscriptID = parts[2]
		}
		if len(parts) > 3 {
			ann.HGVSc = parts[3]
		}
		anns = append(anns, ann)
	}
	return anns
}

// ReadAll reads all remaining variants.
func (p *Parser) ReadAll() ([]*Evaluation, error) {
	var variants []*Evaluation
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return variants, nil
		}
		variants = append(variants, v)
	}
}

// SampleNames returns the sample names declared by a "##samples=" line.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and releases resources.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError reports a malformed line in a variant file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("variant parse error at line %d: %s", e.Line, e.Message)
}
