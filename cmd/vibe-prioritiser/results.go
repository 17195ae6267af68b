package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-prioritiser/internal/duckdb"
)

type resultsOptions struct {
	db     string
	run    string
	limit  int
	passed bool
}

func newResultsCmd(logger **zap.Logger) *cobra.Command {
	opts := &resultsOptions{}

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show stored analysis results",
		Long:  "Show the ranked genes of a stored analysis run (the latest run by default).",
		Example: `  vibe-prioritiser results --limit 20 --passed
  vibe-prioritiser results runs
  vibe-prioritiser results variants FGFR2 --run 6f1c...
  vibe-prioritiser results delete 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts.db, func(ctx context.Context, store *duckdb.Store) error {
				runID, err := resolveRun(ctx, store, opts.run)
				if err != nil {
					return err
				}
				genes, err := store.TopGenes(ctx, runID, opts.limit, opts.passed)
				if err != nil {
					return err
				}
				(*logger).Debug("loaded gene results", zap.String("run_id", runID), zap.Int("genes", len(genes)))
				return printGenes(cmd.OutOrStdout(), genes)
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.db, "db", defaultDBPath(), "Results database")
	cmd.PersistentFlags().StringVar(&opts.run, "run", "", "Run ID (default: latest run)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of genes to show (0 = all)")
	cmd.Flags().BoolVar(&opts.passed, "passed", false, "Only show genes that passed filtering")

	cmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts.db, func(ctx context.Context, store *duckdb.Store) error {
				runs, err := store.Runs(ctx)
				if err != nil {
					return err
				}
				return printRuns(cmd.OutOrStdout(), runs)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "variants <gene>",
		Short: "List the variants assigned to a gene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts.db, func(ctx context.Context, store *duckdb.Store) error {
				runID, err := resolveRun(ctx, store, opts.run)
				if err != nil {
					return err
				}
				variants, err := store.GeneVariants(ctx, runID, args[0])
				if err != nil {
					return err
				}
				return printVariants(cmd.OutOrStdout(), variants)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts.db, func(ctx context.Context, store *duckdb.Store) error {
				if err := store.DeleteRun(ctx, args[0]); err != nil {
					return err
				}
				(*logger).Info("deleted run", zap.String("run_id", args[0]))
				return nil
			})
		},
	})

	return cmd
}

func withStore(ctx context.Context, path string, fn func(context.Context, *duckdb.Store) error) error {
	if path == "" {
		return fmt.Errorf("%w: --db is required", errUsage)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func resolveRun(ctx context.Context, store *duckdb.Store, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	id, err := store.LatestRunID(ctx)
	if errors.Is(err, duckdb.ErrNoRuns) {
		return "", fmt.Errorf("%w: run 'vibe-prioritiser analyse --save' first", err)
	}
	return id, err
}

func printGenes(w io.Writer, genes []duckdb.GeneRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tGENE\tENTREZ\tCOMBINED\tPRIORITY\tVARIANT\tVARIANTS\tPASSED\tSTATUS\tFAILED_FILTERS")
	for _, g := range genes {
		status := "FAIL"
		if g.Passed {
			status = "PASS"
		}
		failed := g.FailedFilters
		if failed == "" {
			failed = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.4f\t%.4f\t%.4f\t%d\t%d\t%s\t%s\n",
			g.Rank, g.Symbol, g.EntrezID, g.CombinedScore, g.PriorityScore, g.VariantScore,
			g.Variants, g.PassedVariants, status, failed)
	}
	return tw.Flush()
}

func printRuns(w io.Writer, runs []duckdb.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN_ID\tSTARTED\tPRIORITY\tMODE\tVARIANTS\tUNANNOTATED\tUNKNOWN_GENE\tREASSIGNED\tGENES\tPASSED_GENES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.RunID, r.StartedAt.Local().Format(time.DateTime), r.Priority, r.Mode,
			r.Variants, r.Unannotated, r.UnknownGene, r.Reassigned, r.Genes, r.PassedGenes)
	}
	return tw.Flush()
}

func printVariants(w io.Writer, variants []duckdb.VariantRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHROM\tPOS\tREF\tALT\tEFFECT\tQUAL\tFREQ\tPATH\tSTATUS\tFAILED_FILTERS")
	for _, v := range variants {
		status := "FAIL"
		if v.Passed {
			status = "PASS"
		}
		failed := v.FailedFilters
		if failed == "" {
			failed = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.1f\t%g\t%.3f\t%s\t%s\n",
			v.Chrom, v.Pos, v.Ref, v.Alt, v.Effect, v.Quality, v.Frequency, v.Pathogenicity, status, failed)
	}
	return tw.Flush()
}
