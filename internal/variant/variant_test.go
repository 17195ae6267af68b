package variant

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

const variantTSV = `##samples=proband,mother
#CHROM	POS	REF	ALT	QUAL	EFFECT	GENE	ENTREZ_ID	FREQ	PATHOGENICITY	ANNOTATIONS	GENOTYPES
10	150	A	T	99.5	upstream_gene_variant	A	1001	0.01	0.2	A|upstream_gene_variant|ENST0001|c.-120A>T;A-B|intron_variant	0/1,0/0
chrX	2000	G	GC	30	.	.	.	.	.		1/1,0|1
`

func TestParser_ReadAll(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(variantTSV))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"proband", "mother"}, p.SampleNames())

	variants, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, variants, 2)

	v := variants[0]
	assert.Equal(t, 10, v.Chromosome)
	assert.Equal(t, int64(150), v.Position)
	assert.Equal(t, "A", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, 99.5, v.Quality)
	assert.Equal(t, effect.UpstreamGeneVariant, v.Effect)
	assert.Equal(t, "A", v.GeneSymbol)
	assert.Equal(t, 1001, v.EntrezGeneID)
	assert.Equal(t, 0.01, v.Frequency)
	assert.Equal(t, 0.2, v.Pathogenicity)
	require.Len(t, v.Annotations, 2)
	assert.Equal(t, "ENST0001", v.Annotations[0].TranscriptID)
	assert.Equal(t, "c.-120A>T", v.Annotations[0].HGVSc)
	assert.Equal(t, "A-B", v.Annotations[1].GeneSymbol)
	assert.Equal(t, effect.IntronVariant, v.Annotations[1].Effect)
	assert.Equal(t, []string{"0/1", "0/0"}, v.Genotypes)
	assert.True(t, v.IsSNV())

	v2 := variants[1]
	assert.Equal(t, genome.ChromosomeX, v2.Chromosome)
	assert.Equal(t, ".", v2.GeneSymbol)
	assert.Equal(t, effect.SequenceVariant, v2.Effect)
	assert.Empty(t, v2.Annotations)
	assert.True(t, v2.IsIndel())
}

func TestParser_GeneFromFirstAnnotation(t *testing.T) {
	in := "CHROM\tPOS\tREF\tALT\tANNOTATIONS\n1\t10\tA\tC\tFGFR2|missense_variant;X|intron_variant"
	p, err := NewParserFromReader(strings.NewReader(in))
	require.NoError(t, err)

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "FGFR2", v.GeneSymbol)
	assert.Equal(t, effect.MissenseVariant, v.Effect)

	v, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParser_Errors(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("CHROM\tPOS\tREF\n"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "ALT")

	_, err = NewParserFromReader(strings.NewReader(""))
	assert.True(t, errors.As(err, &pe))

	p, err := NewParserFromReader(strings.NewReader("CHROM\tPOS\tREF\tALT\nchrQ\t1\tA\tC\n"))
	require.NoError(t, err)
	_, err = p.Next()
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)

	p, err = NewParserFromReader(strings.NewReader("CHROM\tPOS\tREF\tALT\tQUAL\n1\t1\tA\tC\thigh\n"))
	require.NoError(t, err)
	_, err = p.Next()
	assert.True(t, errors.As(err, &pe))
}

func TestNewParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(variantTSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	variants, err := p.ReadAll()
	require.NoError(t, err)
	assert.Len(t, variants, 2)
}

func TestEvaluation_Genotypes(t *testing.T) {
	v := &Evaluation{Genotypes: []string{"0/1", "0/0", "./.", "1|1", "0/2"}}
	assert.Equal(t, 5, v.NumberOfIndividuals())
	assert.True(t, v.CarriedBy(0))
	assert.False(t, v.CarriedBy(1))
	assert.False(t, v.CarriedBy(2))
	assert.True(t, v.CarriedBy(3))
	assert.True(t, v.CarriedBy(4))
	assert.False(t, v.CarriedBy(5))

	single := &Evaluation{}
	assert.Equal(t, 1, single.NumberOfIndividuals())
	assert.True(t, single.CarriedBy(0))
}

func TestEvaluation_PassedFilters(t *testing.T) {
	v := &Evaluation{Chromosome: 10, Position: 150, Ref: "A", Alt: "T"}
	assert.True(t, v.PassedFilters())
	v.Filters.Record(outcome.QualityFilter, outcome.Fail)
	assert.False(t, v.PassedFilters())
	assert.Equal(t, "10_150_A/T", v.ID())
}
