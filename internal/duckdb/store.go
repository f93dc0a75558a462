// Package duckdb records normalization runs, and optionally the normalized
// genotypes they produced, in a DuckDB database.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the run history.
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
			return nil, fmt.Errorf("create history directory: %w", err)
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

// Path returns the database file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS run_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGINT PRIMARY KEY DEFAULT nextval('run_id_seq'),
			started_at_us BIGINT,
			finished_at_us BIGINT,
			input_path VARCHAR,
			input_size BIGINT,
			input_modtime_us BIGINT,
			input_digest VARCHAR,
			output_path VARCHAR,
			status VARCHAR,
			error_kind VARCHAR,
			error_line BIGINT,
			error_message VARCHAR,
			records BIGINT,
			no_calls BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS genotypes (
			run_id BIGINT,
			rsid VARCHAR,
			chrom VARCHAR,
			pos VARCHAR,
			genotype VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
