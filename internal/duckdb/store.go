// Package duckdb persists analysis runs, their variants and ranked genes in
// DuckDB so results can be queried after the run.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding analysis results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id VARCHAR PRIMARY KEY,
			priority_type VARCHAR,
			filter_mode VARCHAR,
			started_at TIMESTAMP,
			finished_at TIMESTAMP,
			variant_count BIGINT,
			unannotated_count BIGINT,
			unknown_gene_count BIGINT,
			reassigned_count BIGINT,
			gene_count BIGINT,
			passed_gene_count BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS run_inputs (
			run_id VARCHAR,
			role VARCHAR,
			path VARCHAR,
			size BIGINT,
			mod_time TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS variant_results (
			run_id VARCHAR,
			seq BIGINT,
			chrom VARCHAR,
			pos BIGINT,
			ref VARCHAR,
			alt VARCHAR,
			quality DOUBLE,
			effect VARCHAR,
			gene_symbol VARCHAR,
			entrez_gene_id BIGINT,
			frequency DOUBLE,
			pathogenicity DOUBLE,
			passed_filters BOOLEAN,
			failed_filters VARCHAR,
			known_gene BOOLEAN,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS gene_results (
			run_id VARCHAR,
			rank BIGINT,
			gene_symbol VARCHAR,
			entrez_gene_id BIGINT,
			priority_score DOUBLE,
			variant_score DOUBLE,
			combined_score DOUBLE,
			variant_count BIGINT,
			passed_variant_count BIGINT,
			passed_filters BOOLEAN,
			failed_filters VARCHAR,
			PRIMARY KEY (run_id, gene_symbol)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
