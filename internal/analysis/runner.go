// Package analysis runs the prioritisation pipeline: variant filtering,
// gene reassignment, gene filtering and ranking.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-prioritiser/internal/filter"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/reassign"
	"github.com/inodb/vibe-prioritiser/internal/results"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// Options configures a Runner.
type Options struct {
	Priority       gene.PriorityType
	Mode           filter.Mode
	VariantFilters []filter.VariantFilter
	GeneFilters    []filter.GeneFilter
	Reassign       bool // move non-coding variants to better-scoring genes
	Workers        int  // 0 means runtime.NumCPU()
}

// DefaultOptions returns options with reassignment enabled and the
// passing-variants gene filter.
func DefaultOptions() Options {
	return Options{
		Priority:    gene.HiPhivePriority,
		Mode:        filter.Exhaustive,
		GeneFilters: []filter.GeneFilter{filter.PassingVariantsFilter{}},
		Reassign:    true,
	}
}

// Results holds the outcome of one analysis run.
type Results struct {
	RunID      uuid.UUID
	Priority   gene.PriorityType
	Mode       filter.Mode
	StartedAt  time.Time
	FinishedAt time.Time

	// Variants holds every evaluated variant in input order.
	Variants []*variant.Evaluation
	// Genes holds the genes with at least one variant, ranked by combined
	// score descending then symbol.
	Genes []*gene.Gene
	// UnknownGeneVariants holds variants whose gene is not in the registry.
	// They are not attached to any gene.
	UnknownGeneVariants []*variant.Evaluation

	VariantFilterReports []*filter.Report
	GeneFilterReports    []*filter.Report
	EffectCounts         results.EffectCounts
	Reassigned           int
}

// UnannotatedVariants returns the variants, in input order, left without
// any transcript annotation. This includes variants whose annotations were
// cleared by domain-based reassignment.
func (r *Results) UnannotatedVariants() []*variant.Evaluation {
	var unannotated []*variant.Evaluation
	for _, v := range r.Variants {
		if len(v.Annotations) == 0 {
			unannotated = append(unannotated, v)
		}
	}
	return unannotated
}

// PassedGenes returns the ranked genes that passed filtering, at most
// maxGenes of them. A maxGenes of 0 means no limit.
func (r *Results) PassedGenes(maxGenes int) []*gene.Gene {
	return results.Prune(r.Genes, maxGenes)
}

// Runner executes analyses against a gene registry and region index.
type Runner struct {
	registry   *gene.Registry
	reassigner *reassign.Reassigner
	variants   *filter.Pipeline[*variant.Evaluation]
	genes      *filter.Pipeline[*gene.Gene]
	opts       Options
	logger     *zap.Logger
}

// NewRunner creates a Runner. The registry must hold final priority scores
// before Run is called. A nil index disables domain-based reassignment.
func NewRunner(registry *gene.Registry, index *genome.RegionIndex, opts Options) *Runner {
	if opts.Priority == "" {
		opts.Priority = gene.HiPhivePriority
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{
		registry:   registry,
		reassigner: reassign.New(opts.Priority, registry, index),
		variants:   filter.NewPipeline(opts.Mode, opts.VariantFilters...),
		genes:      filter.NewPipeline(opts.Mode, opts.GeneFilters...),
		opts:       opts,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for the runner and its reassigner.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
	r.reassigner.SetLogger(l)
}

// evaluate filters and reassigns one variant, then reports whether its
// final gene is known to the registry.
func (r *Runner) evaluate(v *variant.Evaluation) (reassigned, known bool) {
	r.variants.Apply(v, &v.Filters)
	if r.opts.Reassign {
		reassigned = r.reassigner.Reassign(v)
	}
	return reassigned, r.registry.Contains(v.GeneSymbol)
}

// Run analyses variants. Gene state left by any previous run is cleared
// first. Cancelling ctx stops submission of further variants; variants
// already being evaluated complete, and Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, variants []*variant.Evaluation) (*Results, error) {
	res := &Results{
		RunID:     uuid.New(),
		Priority:  r.opts.Priority,
		Mode:      r.opts.Mode,
		StartedAt: time.Now(),
		Variants:  make([]*variant.Evaluation, 0, len(variants)),
	}
	r.logger.Info("starting analysis",
		zap.String("run_id", res.RunID.String()),
		zap.Int("variants", len(variants)),
		zap.String("priority", string(r.opts.Priority)),
		zap.Stringer("mode", r.opts.Mode),
		zap.Bool("reassign", r.opts.Reassign),
		zap.Int("workers", r.opts.Workers))

	r.registry.ResetAnalysis()

	items := Submit(ctx, variants)
	err := OrderedCollect(r.ParallelEvaluate(items, r.opts.Workers), func(wr WorkResult) error {
		res.Variants = append(res.Variants, wr.Variant)
		if wr.Reassigned {
			res.Reassigned++
		}
		if !wr.KnownGene || !r.registry.AddVariant(wr.Variant) {
			res.UnknownGeneVariants = append(res.UnknownGeneVariants, wr.Variant)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate variants: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	genes, err := r.scoreGenes(ctx)
	if err != nil {
		return nil, err
	}
	res.Genes = genes

	variantSets := make([]*outcome.Set, len(res.Variants))
	for i, v := range res.Variants {
		variantSets[i] = &v.Filters
	}
	geneSets := make([]*outcome.Set, len(res.Genes))
	for i, g := range res.Genes {
		geneSets[i] = &g.Filters
	}
	res.VariantFilterReports = filter.Reports(r.variants, variantSets)
	res.GeneFilterReports = filter.Reports(r.genes, geneSets)
	res.EffectCounts = results.CountByEffect(res.Variants)
	res.FinishedAt = time.Now()

	r.logger.Info("analysis complete",
		zap.String("run_id", res.RunID.String()),
		zap.Int("variants", len(res.Variants)),
		zap.Int("unknown_gene", len(res.UnknownGeneVariants)),
		zap.Int("unannotated", len(res.UnannotatedVariants())),
		zap.Int("reassigned", res.Reassigned),
		zap.Int("genes", len(res.Genes)),
		zap.Int("passed_genes", len(res.PassedGenes(0))),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

// scoreGenes runs the gene filters and computes scores for every gene with
// variants, each under its registry lock, then ranks them.
func (r *Runner) scoreGenes(ctx context.Context) ([]*gene.Gene, error) {
	genes := r.registry.GenesWithVariants()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, gn := range genes {
		symbol := gn.Symbol
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.registry.Update(symbol, r.scoreGene)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(genes, func(i, j int) bool {
		if genes[i].CombinedScore != genes[j].CombinedScore {
			return genes[i].CombinedScore > genes[j].CombinedScore
		}
		return genes[i].Symbol < genes[j].Symbol
	})
	return genes, nil
}

// scoreGene applies gene filters and sets the variant and combined scores.
// The variant score is the highest pathogenicity among passing variants.
func (r *Runner) scoreGene(g *gene.Gene) {
	r.genes.Apply(g, &g.Filters)

	best := 0.0
	for _, v := range g.PassedVariants() {
		if v.Pathogenicity > best {
			best = v.Pathogenicity
		}
	}
	g.VariantScore = best
	g.CombinedScore = (gene.Score(g, r.opts.Priority) + best) / 2
}
