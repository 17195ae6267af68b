package gene

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the gene score table.
const (
	ColSymbol       = "symbol"
	ColEntrezID     = "entrez_id"
	ColPriorityType = "priority_type"
	ColScore        = "score"
)

// ParseError reports a malformed line in a gene score file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gene score parse error at line %d: %s", e.Line, e.Message)
}

// LoadScores reads a gene score TSV into the registry and returns the
// number of score rows loaded. Plain and gzipped files are supported.
func LoadScores(path string, r *Registry) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open gene scores: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return 0, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return ReadScores(gz, r)
	}
	return ReadScores(br, r)
}

// ReadScores reads gene scores from a TSV stream with a header containing
// symbol, entrez_id, priority_type and score columns. Rows for the same
// symbol accumulate scores for different priority types; a gene without
// a score row can be declared with an empty or "." score.
func ReadScores(in io.Reader, r *Registry) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	var header []string
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "##") {
			continue
		}
		header = strings.Split(strings.TrimPrefix(text, "#"), "\t")
		break
	}
	if header == nil {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("reading gene scores: %w", err)
		}
		return 0, &ParseError{Line: line, Message: "no header line found"}
	}

	symbolIdx, entrezIdx, typeIdx, scoreIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case ColSymbol:
			symbolIdx = i
		case ColEntrezID:
			entrezIdx = i
		case ColPriorityType:
			typeIdx = i
		case ColScore:
			scoreIdx = i
		}
	}
	if symbolIdx < 0 {
		return 0, &ParseError{Line: line, Message: fmt.Sprintf("required column '%s' not found in header", ColSymbol)}
	}
	if scoreIdx >= 0 && typeIdx < 0 {
		return 0, &ParseError{Line: line, Message: fmt.Sprintf("column '%s' requires '%s'", ColScore, ColPriorityType)}
	}

	n := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		field := func(idx int) string {
			if idx < 0 || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}

		symbol := field(symbolIdx)
		if symbol == "" || symbol == "." {
			return n, &ParseError{Line: line, Message: "empty gene symbol"}
		}
		entrez := 0
		if s := field(entrezIdx); s != "" && s != "." {
			id, err := strconv.Atoi(s)
			if err != nil {
				return n, &ParseError{Line: line, Message: fmt.Sprintf("invalid entrez id %q", s)}
			}
			entrez = id
		}

		g := r.GetOrCreate(symbol, entrez)
		s := field(scoreIdx)
		if s == "" || s == "." {
			continue
		}
		score, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return n, &ParseError{Line: line, Message: fmt.Sprintf("invalid score %q", s)}
		}
		pt := PriorityType(strings.ToUpper(field(typeIdx)))
		if pt == "" {
			return n, &ParseError{Line: line, Message: "empty priority type"}
		}
		r.Update(g.Symbol, func(g *Gene) {
			if g.EntrezID == 0 {
				g.EntrezID = entrez
			}
			g.SetPriorityScore(pt, score)
		})
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading gene scores: %w", err)
	}
	return n, nil
}
