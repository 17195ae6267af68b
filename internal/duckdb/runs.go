package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-prioritiser/internal/analysis"
	"github.com/inodb/vibe-prioritiser/internal/gene"
	"github.com/inodb/vibe-prioritiser/internal/genome"
	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

// ErrNoRuns is returned when the store holds no analysis runs.
var ErrNoRuns = errors.New("no analysis runs stored")

// RunSummary describes one stored analysis run.
type RunSummary struct {
	RunID       string
	Priority    string
	Mode        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Variants    int64
	Unannotated int64 // variants without annotations
	UnknownGene int64 // variants whose gene is not in the registry
	Reassigned  int64
	Genes       int64
	PassedGenes int64
}

// GeneRow is a stored gene result.
type GeneRow struct {
	Rank           int64
	Symbol         string
	EntrezID       int64
	PriorityScore  float64
	VariantScore   float64
	CombinedScore  float64
	Variants       int64
	PassedVariants int64
	Passed         bool
	FailedFilters  string
}

// VariantRow is a stored variant result.
type VariantRow struct {
	Seq           int64
	Chrom         string
	Pos           int64
	Ref           string
	Alt           string
	Quality       float64
	Effect        string
	GeneSymbol    string
	EntrezGeneID  int64
	Frequency     float64
	Pathogenicity float64
	Passed        bool
	FailedFilters string
	KnownGene     bool
}

// WriteRun stores an analysis run with its variants, genes and input file
// fingerprints using the Appender API. If any step fails, rows already
// written for the run are removed.
func (s *Store) WriteRun(ctx context.Context, res *analysis.Results, inputs []FileFingerprint) error {
	if err := s.writeRun(ctx, res, inputs); err != nil {
		if delErr := s.DeleteRun(context.WithoutCancel(ctx), res.RunID.String()); delErr != nil {
			return errors.Join(err, fmt.Errorf("remove partial run: %w", delErr))
		}
		return err
	}
	return nil
}

func (s *Store) writeRun(ctx context.Context, res *analysis.Results, inputs []FileFingerprint) error {
	runID := res.RunID.String()

	unknownGene := make(map[*variant.Evaluation]bool, len(res.UnknownGeneVariants))
	for _, v := range res.UnknownGeneVariants {
		unknownGene[v] = true
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO analysis_runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, string(res.Priority), res.Mode.String(), res.StartedAt, res.FinishedAt,
		int64(len(res.Variants)), int64(len(res.UnannotatedVariants())),
		int64(len(res.UnknownGeneVariants)), int64(res.Reassigned),
		int64(len(res.Genes)), int64(len(res.PassedGenes(0))),
	); err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}

	err := s.appendRows(ctx, "run_inputs", func(a *goduckdb.Appender) error {
		for _, in := range inputs {
			if err := a.AppendRow(runID, in.Role, in.Path, in.Size, in.ModTime); err != nil {
				return fmt.Errorf("append run input: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.appendRows(ctx, "variant_results", func(a *goduckdb.Appender) error {
		for i, v := range res.Variants {
			if err := a.AppendRow(
				runID, int64(i),
				genome.ChromosomeName(v.Chromosome), v.Position, v.Ref, v.Alt,
				v.Quality, v.Effect.String(), v.GeneSymbol, int64(v.EntrezGeneID),
				v.Frequency, v.Pathogenicity,
				v.PassedFilters(), joinFilters(v.Filters.Failed()), !unknownGene[v],
			); err != nil {
				return fmt.Errorf("append variant result: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.appendRows(ctx, "gene_results", func(a *goduckdb.Appender) error {
		for i, g := range res.Genes {
			if err := a.AppendRow(
				runID, int64(i+1), g.Symbol, int64(g.EntrezID),
				gene.Score(g, res.Priority), g.VariantScore, g.CombinedScore,
				int64(len(g.Variants())), int64(len(g.PassedVariants())),
				g.PassedFilters(), joinFilters(g.Filters.Failed()),
			); err != nil {
				return fmt.Errorf("append gene result: %w", err)
			}
		}
		return nil
	})
}

// appendRows opens an appender on table, calls fn and flushes.
func (s *Store) appendRows(ctx context.Context, table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender for %s: %w", table, err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

func joinFilters(types []outcome.FilterType) string {
	names := make([]string, len(types))
	for i, ft := range types {
		names[i] = string(ft)
	}
	return strings.Join(names, ",")
}

// Runs returns all stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, priority_type, filter_mode, started_at, finished_at,
		variant_count, unannotated_count, unknown_gene_count, reassigned_count, gene_count, passed_gene_count
		FROM analysis_runs
		ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Priority, &r.Mode, &r.StartedAt, &r.FinishedAt,
			&r.Variants, &r.Unannotated, &r.UnknownGene, &r.Reassigned, &r.Genes, &r.PassedGenes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRunID returns the ID of the most recently started run, or ErrNoRuns.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM analysis_runs ORDER BY started_at DESC, run_id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return id, nil
}

// TopGenes returns the stored genes of a run in rank order. With passedOnly
// only genes that passed filtering are returned. A limit of 0 means no limit.
func (s *Store) TopGenes(ctx context.Context, runID string, limit int, passedOnly bool) ([]GeneRow, error) {
	query := `SELECT
		rank, gene_symbol, entrez_gene_id, priority_score, variant_score, combined_score,
		variant_count, passed_variant_count, passed_filters, failed_filters
		FROM gene_results
		WHERE run_id=?`
	if passedOnly {
		query += ` AND passed_filters`
	}
	query += ` ORDER BY rank`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, int64(limit))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var genes []GeneRow
	for rows.Next() {
		var g GeneRow
		if err := rows.Scan(&g.Rank, &g.Symbol, &g.EntrezID, &g.PriorityScore, &g.VariantScore,
			&g.CombinedScore, &g.Variants, &g.PassedVariants, &g.Passed, &g.FailedFilters); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		genes = append(genes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}
	return genes, nil
}

// GeneVariants returns the stored variants of a run assigned to symbol, in
// input order.
func (s *Store) GeneVariants(ctx context.Context, runID, symbol string) ([]VariantRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		seq, chrom, pos, ref, alt, quality, effect, gene_symbol, entrez_gene_id,
		frequency, pathogenicity, passed_filters, failed_filters, known_gene
		FROM variant_results
		WHERE run_id=? AND gene_symbol=?
		ORDER BY seq`, runID, symbol)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var variants []VariantRow
	for rows.Next() {
		var v VariantRow
		if err := rows.Scan(&v.Seq, &v.Chrom, &v.Pos, &v.Ref, &v.Alt, &v.Quality, &v.Effect,
			&v.GeneSymbol, &v.EntrezGeneID, &v.Frequency, &v.Pathogenicity,
			&v.Passed, &v.FailedFilters, &v.KnownGene); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// RunInputs returns the input file fingerprints recorded for a run.
func (s *Store) RunInputs(ctx context.Context, runID string) ([]FileFingerprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role, path, size, mod_time
		FROM run_inputs WHERE run_id=? ORDER BY role`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run inputs: %w", err)
	}
	defer rows.Close()

	var inputs []FileFingerprint
	for rows.Next() {
		var f FileFingerprint
		if err := rows.Scan(&f.Role, &f.Path, &f.Size, &f.ModTime); err != nil {
			return nil, fmt.Errorf("scan run input: %w", err)
		}
		inputs = append(inputs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run inputs: %w", err)
	}
	return inputs, nil
}

// DeleteRun removes a run and all of its results. Every table is attempted
// even if an earlier delete fails.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	var errs []error
	for _, table := range []string{"gene_results", "variant_results", "run_inputs", "analysis_runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id=?", runID); err != nil {
			errs = append(errs, fmt.Errorf("delete from %s: %w", table, err))
		}
	}
	return errors.Join(errs...)
}
