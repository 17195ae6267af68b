package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-prioritiser/internal/analysis"
	"github.com/inodb/vibe-prioritiser/internal/duckdb"
	"github.com/inodb/vibe-prioritiser/internal/effect"
	"github.com/inodb/vibe-prioritiser/internal/filter"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/output"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

func newAnalyseCmd(logger **zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Filter variants and rank candidate genes",
		Long: `Filter pre-annotated variants, reassign non-coding variants to the
best-scoring gene in their domain or annotations, then filter and rank genes.

Flags can also be set in the config file under "analyse", e.g.
analyse.priority, or with VIBE_PRIORITISER_ANALYSE_* environment variables.`,
		Example: `  vibe-prioritiser analyse --variants sample.tsv --genes hiphive.tsv --domains tads.tsv
  vibe-prioritiser analyse --variants sample.tsv.gz --genes scores.tsv --min-quality 20 --max-frequency 1 --max-genes 50 -o genes.tsv
  vibe-prioritiser analyse --variants sample.tsv --genes scores.tsv --db results.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAnalyse(ctx, *logger, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("variants", "", "Pre-annotated variant TSV (plain or gzipped, '-' for stdin)")
	f.String("genes", "", "Gene priority score TSV")
	f.String("domains", "", "Topologically associating domain TSV (enables domain reassignment)")
	f.String("priority", string(gene.HiPhivePriority), "Priority type used to compare genes")
	f.Float64("min-quality", 0, "Minimum variant call quality")
	f.Float64("max-frequency", 0, "Maximum population allele frequency in percent")
	f.Float64("min-pathogenicity", 0, "Minimum predicted pathogenicity")
	f.Bool("keep-non-pathogenic", false, "Keep variants below --min-pathogenicity")
	f.StringSlice("exclude-effects", nil, "Sequence Ontology effect terms to remove")
	f.String("interval", "", "Only keep variants in chrom:start-end")
	f.Bool("regulatory-filter", false, "Remove intergenic and upstream variants")
	f.Float64("min-priority-score", 0, "Minimum gene priority score")
	f.StringSlice("genes-to-keep", nil, "Only keep these gene symbols")
	f.Bool("short-circuit", false, "Stop filtering an entity at its first failed filter")
	f.Bool("no-reassign", false, "Disable gene reassignment")
	f.Int("max-genes", 0, "Maximum number of passed genes to report (0 = no limit)")
	f.Int("workers", 0, "Number of worker goroutines (0 = number of CPUs)")
	f.StringP("output", "o", "", "Ranked gene output file (default: stdout)")
	f.String("variants-output", "", "Write evaluated variants to this file")
	f.String("effects-output", "", "Write the per-sample effect count table to this file")
	f.String("reports-output", "", "Write filter reports to this file")
	f.String("db", "", "Store results in this DuckDB database")
	f.Bool("save", false, "Store results in the default database (~/"+configName+"/results.duckdb)")

	f.VisitAll(func(fl *pflag.Flag) {
		_ = viper.BindPFlag("analyse."+fl.Name, fl)
	})

	return cmd
}

func runAnalyse(ctx context.Context, logger *zap.Logger, stdout io.Writer) error {
	variantsPath := viper.GetString("analyse.variants")
	genesPath := viper.GetString("analyse.genes")
	if variantsPath == "" || genesPath == "" {
		return fmt.Errorf("%w: --variants and --genes are required", errUsage)
	}

	opts, err := analysisOptions()
	if err != nil {
		return err
	}

	registry := gene.NewRegistry()
	n, err := gene.LoadScores(genesPath, registry)
	if err != nil {
		return fmt.Errorf("load gene scores: %w", err)
	}
	logger.Info("loaded gene scores", zap.String("path", genesPath), zap.Int("genes", registry.Len()), zap.Int("scores", n))

	var index *genome.RegionIndex
	if path := viper.GetString("analyse.domains"); path != "" {
		index, err = genome.LoadIndex(path)
		if err != nil {
			return fmt.Errorf("load domains: %w", err)
		}
		logger.Info("loaded domains", zap.String("path", path), zap.Int("regions", index.Len()))
	}

	parser, err := variant.NewParser(variantsPath)
	if err != nil {
		return err
	}
	defer parser.Close()
	variants, err := parser.ReadAll()
	if err != nil {
		return err
	}
	logger.Info("loaded variants", zap.String("path", variantsPath), zap.Int("variants", len(variants)))

	runner := analysis.NewRunner(registry, index, opts)
	runner.SetLogger(logger)
	res, err := runner.Run(ctx, variants)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if err := writeGenes(res, viper.GetString("analyse.output"), viper.GetInt("analyse.max-genes"), stdout); err != nil {
		return err
	}
	if err := writeOptional(viper.GetString("analyse.variants-output"), func(w io.Writer) error {
		vw := output.NewVariantWriter(w)
		if err := vw.WriteHeader(); err != nil {
			return err
		}
		for _, v := range res.Variants {
			if err := vw.Write(v); err != nil {
				return err
			}
		}
		return vw.Flush()
	}); err != nil {
		return err
	}
	if err := writeOptional(viper.GetString("analyse.effects-output"), func(w io.Writer) error {
		return output.NewEffectCountWriter(w, parser.SampleNames()).Write(res.EffectCounts)
	}); err != nil {
		return err
	}
	if err := writeOptional(viper.GetString("analyse.reports-output"), func(w io.Writer) error {
		return output.WriteFilterReports(w, res.VariantFilterReports, res.GeneFilterReports)
	}); err != nil {
		return err
	}

	dbPath := viper.GetString("analyse.db")
	if dbPath == "" && viper.GetBool("analyse.save") {
		dbPath = defaultDBPath()
	}
	if dbPath != "" {
		if err := storeRun(ctx, dbPath, res, variantsPath, genesPath, viper.GetString("analyse.domains")); err != nil {
			return err
		}
		logger.Info("stored results", zap.String("db", dbPath), zap.String("run_id", res.RunID.String()))
	}
	return nil
}

// analysisOptions builds runner options from flags and config. Filters are
// only added for options that were explicitly set.
func analysisOptions() (analysis.Options, error) {
	opts := analysis.DefaultOptions()
	opts.Priority = gene.PriorityType(strings.ToUpper(viper.GetString("analyse.priority")))
	opts.Reassign = !viper.GetBool("analyse.no-reassign")
	opts.Workers = viper.GetInt("analyse.workers")
	if viper.GetBool("analyse.short-circuit") {
		opts.Mode = filter.ShortCircuit
	}

	if viper.IsSet("analyse.min-quality") {
		opts.VariantFilters = append(opts.VariantFilters, filter.QualityFilter{Min: viper.GetFloat64("analyse.min-quality")})
	}
	if viper.IsSet("analyse.max-frequency") {
		opts.VariantFilters = append(opts.VariantFilters, filter.FrequencyFilter{MaxPercent: viper.GetFloat64("analyse.max-frequency")})
	}
	if viper.IsSet("analyse.min-pathogenicity") || viper.GetBool("analyse.keep-non-pathogenic") {
		opts.VariantFilters = append(opts.VariantFilters, filter.PathogenicityFilter{
			Min:               viper.GetFloat64("analyse.min-pathogenicity"),
			KeepNonPathogenic: viper.GetBool("analyse.keep-non-pathogenic"),
		})
	}
	if terms := viper.GetStringSlice("analyse.exclude-effects"); len(terms) > 0 {
		kinds := make([]effect.Kind, 0, len(terms))
		for _, term := range terms {
			k, ok := effect.Parse(term)
			if !ok {
				return opts, fmt.Errorf("%w: unknown effect %q", errUsage, term)
			}
			kinds = append(kinds, k)
		}
		opts.VariantFilters = append(opts.VariantFilters, filter.NewVariantEffectFilter(kinds...))
	}
	if s := viper.GetString("analyse.interval"); s != "" {
		interval, err := filter.ParseInterval(s)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", errUsage, err)
		}
		opts.VariantFilters = append(opts.VariantFilters, interval)
	}
	if viper.GetBool("analyse.regulatory-filter") {
		opts.VariantFilters = append(opts.VariantFilters, filter.RegulatoryFeatureFilter{})
	}

	if viper.IsSet("analyse.min-priority-score") {
		opts.GeneFilters = append(opts.GeneFilters, filter.PriorityScoreFilter{
			Priority: opts.Priority,
			Min:      viper.GetFloat64("analyse.min-priority-score"),
		})
	}
	if symbols := viper.GetStringSlice("analyse.genes-to-keep"); len(symbols) > 0 {
		opts.GeneFilters = append(opts.GeneFilters, filter.NewGeneSymbolFilter(symbols...))
	}
	return opts, nil
}

func writeGenes(res *analysis.Results, path string, maxGenes int, stdout io.Writer) error {
	genes := res.PassedGenes(maxGenes)
	if path == "" {
		return output.NewGeneWriter(stdout, res.Priority).WriteAll(genes)
	}
	return writeOptional(path, func(w io.Writer) error {
		return output.NewGeneWriter(w, res.Priority).WriteAll(genes)
	})
}

// writeOptional creates path and calls fn with it; an empty path is a no-op.
func writeOptional(path string, fn func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func storeRun(ctx context.Context, dbPath string, res *analysis.Results, variantsPath, genesPath, domainsPath string) error {
	var inputs []duckdb.FileFingerprint
	for _, in := range []struct{ role, path string }{
		{"variants", variantsPath}, {"genes", genesPath}, {"domains", domainsPath},
	} {
		if in.path == "" || in.path == "-" {
			continue
		}
		fp, err := duckdb.StatFile(in.role, in.path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", in.path, err)
		}
		inputs = append(inputs, fp)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.WriteRun(ctx, res, inputs); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	return nil
}
