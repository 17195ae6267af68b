package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-prioritiser/internal/analysis"
	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/filter"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func runAnalysis(t *testing.T) *analysis.Results {
	t.Helper()
	registry := gene.NewRegistry()
	for i, sc := range []struct {
		symbol string
		score  float64
	}{{"A", 0.2}, {"B", 0.9}, {"C", 0.5}} {
		g := gene.New(sc.symbol, 1001+i)
		g.SetPriorityScore(gene.HiPhivePriority, sc.score)
		registry.Add(g)
	}
	index, err := genome.Build([]genome.Region{{Chromosome: 10, Start: 100, End: 200, Genes: []string{"A", "B"}}})
	require.NoError(t, err)

	opts := analysis.DefaultOptions()
	opts.VariantFilters = []filter.VariantFilter{filter.QualityFilter{Min: 20}}
	res, err := analysis.NewRunner(registry, index, opts).Run(context.Background(), []*variant.Evaluation{
		// Moves to B; its annotations are cleared.
		{Chromosome: 10, Position: 150, Ref: "A", Alt: "T", Quality: 50, Pathogenicity: 0.3,
			Effect: effect.UpstreamGeneVariant, GeneSymbol: "A",
			Annotations: []*variant.Annotation{{GeneSymbol: "A", Effect: effect.UpstreamGeneVariant}}},
		{Chromosome: 2, Position: 500, Ref: "G", Alt: "C", Quality: 5, Pathogenicity: 0.8,
			Effect: effect.MissenseVariant, GeneSymbol: "C",
			Annotations: []*variant.Annotation{{GeneSymbol: "C", Effect: effect.MissenseVariant}}},
		// Annotated, but not a known gene.
		{Chromosome: 23, Position: 900, Ref: "T", Alt: "A", Quality: 90,
			Effect: effect.IntergenicVariant, GeneSymbol: ".",
			Annotations: []*variant.Annotation{{GeneSymbol: ".", Effect: effect.IntergenicVariant}}},
	})
	require.NoError(t, err)
	return res
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)

	// Reopening an existing database keeps the schema.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestWriteRunAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)
	res := runAnalysis(t)

	input := filepath.Join(t.TempDir(), "variants.tsv")
	require.NoError(t, os.WriteFile(input, []byte("CHROM\tPOS\tREF\tALT\n"), 0644))
	fp, err := StatFile("variants", input)
	require.NoError(t, err)

	require.NoError(t, s.WriteRun(ctx, res, []FileFingerprint{fp}))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, res.RunID.String(), r.RunID)
	assert.Equal(t, "HIPHIVE_PRIORITY", r.Priority)
	assert.Equal(t, "exhaustive", r.Mode)
	assert.Equal(t, int64(3), r.Variants)
	assert.Equal(t, int64(1), r.Unannotated)
	assert.Equal(t, int64(1), r.UnknownGene)
	assert.Equal(t, int64(1), r.Reassigned)
	assert.Equal(t, int64(2), r.Genes)
	assert.Equal(t, int64(1), r.PassedGenes)

	latest, err := s.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, latest)

	genes, err := s.TopGenes(ctx, latest, 0, false)
	require.NoError(t, err)
	require.Len(t, genes, 2)
	assert.Equal(t, "B", genes[0].Symbol)
	assert.Equal(t, int64(1), genes[0].Rank)
	assert.InDelta(t, 0.6, genes[0].CombinedScore, 1e-9)
	assert.True(t, genes[0].Passed)
	assert.Equal(t, "C", genes[1].Symbol)
	assert.False(t, genes[1].Passed)
	assert.Equal(t, "passing-variants", genes[1].FailedFilters)

	passed, err := s.TopGenes(ctx, latest, 0, true)
	require.NoError(t, err)
	require.Len(t, passed, 1)

	limited, err := s.TopGenes(ctx, latest, 1, false)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	variants, err := s.GeneVariants(ctx, latest, "B")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "10", variants[0].Chrom)
	assert.Equal(t, int64(150), variants[0].Pos)
	assert.Equal(t, "upstream_gene_variant", variants[0].Effect)
	assert.True(t, variants[0].KnownGene)

	unknown, err := s.GeneVariants(ctx, latest, ".")
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "X", unknown[0].Chrom)
	assert.False(t, unknown[0].KnownGene)

	inputs, err := s.RunInputs(ctx, latest)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "variants", inputs[0].Role)
	assert.Equal(t, fp.Size, inputs[0].Size)
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)

	first := runAnalysis(t)
	second := runAnalysis(t)
	require.NoError(t, s.WriteRun(ctx, first, nil))
	require.NoError(t, s.WriteRun(ctx, second, nil))

	require.NoError(t, s.DeleteRun(ctx, first.RunID.String()))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.RunID.String(), runs[0].RunID)

	genes, err := s.TopGenes(ctx, first.RunID.String(), 0, false)
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func TestWriteRun_FailureLeavesNoRun(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)
	_, err := s.DB().ExecContext(ctx, `DROP TABLE gene_results`)
	require.NoError(t, err)

	res := runAnalysis(t)
	require.Error(t, s.WriteRun(ctx, res, nil))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		`SELECT count(*) FROM variant_results WHERE run_id=?`, res.RunID.String()).Scan(&n))
	assert.Zero(t, n)
}

func TestLatestRunID_Empty(t *testing.T) {
	_, err := openInMemory(t).LatestRunID(context.Background())
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile("genes", filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
