package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ancient-ibd/gtnorm/internal/genotype"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded normalization attempt.
type Run struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Input        InputFingerprint
	OutputPath   string
	Status       string
	ErrorKind    string
	ErrorLine    int64
	ErrorMessage string
	Records      int64
	NoCalls      int64
}

// OK reports whether the run succeeded.
func (r *Run) OK() bool {
	return r.Status == StatusOK
}

// Times are stored as Unix microseconds.
func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// RecordRun inserts a run and returns its assigned ID.
func (s *Store) RecordRun(r *Run) (int64, error) {
	var id int64
	err := s.db.QueryRow(`INSERT INTO runs (
		started_at_us, finished_at_us, input_path, input_size, input_modtime_us,
		input_digest, output_path, status, error_kind, error_line, error_message,
		records, no_calls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		toMicros(r.StartedAt), toMicros(r.FinishedAt),
		r.Input.Path, r.Input.Size, toMicros(r.Input.ModTime), r.Input.Digest,
		r.OutputPath, r.Status, r.ErrorKind, r.ErrorLine, r.ErrorMessage,
		r.Records, r.NoCalls,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	r.ID = id
	return id, nil
}

// AppendGenotypes batch-inserts the normalized records of a run using the
// Appender API.
func (s *Store) AppendGenotypes(runID int64, records []genotype.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "genotypes")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, rec := range records {
		if err := appender.AppendRow(runID, rec.RSID, rec.Chromosome, rec.Position, rec.Genotype); err != nil {
			return fmt.Errorf("append genotype: %w", err)
		}
	}

	return appender.Flush()
}

// GenotypesForRun returns the stored records of a run in insertion order.
func (s *Store) GenotypesForRun(runID int64) ([]genotype.Record, error) {
	rows, err := s.db.Query(`SELECT rsid, chrom, pos, genotype
		FROM genotypes WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query genotypes: %w", err)
	}
	defer rows.Close()

	var records []genotype.Record
	for rows.Next() {
		var rec genotype.Record
		if err := rows.Scan(&rec.RSID, &rec.Chromosome, &rec.Position, &rec.Genotype); err != nil {
			return nil, fmt.Errorf("scan genotype: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotypes: %w", err)
	}
	return records, nil
}

const runColumns = `id, started_at_us, finished_at_us, input_path, input_size, input_modtime_us,
	input_digest, output_path, status, error_kind, error_line, error_message, records, no_calls`

// ListRuns returns the most recent runs, newest first.
// A limit of 0 or less returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastSuccessFor returns the newest successful run that read the same path
// with the same contents as fp, or nil if there is none. Modification time
// is ignored.
func (s *Store) LastSuccessFor(fp InputFingerprint) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs
		WHERE input_path = ? AND input_size = ? AND input_digest = ? AND status = ?
		ORDER BY id DESC LIMIT 1`,
		fp.Path, fp.Size, fp.Digest, StatusOK)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ClearRuns removes all recorded runs and their genotypes.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM genotypes"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

func scanRun(row interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		r                        Run
		started, finished, modUs int64
	)
	if err := row.Scan(
		&r.ID, &started, &finished, &r.Input.Path, &r.Input.Size, &modUs,
		&r.Input.Digest, &r.OutputPath, &r.Status, &r.ErrorKind, &r.ErrorLine, &r.ErrorMessage,
		&r.Records, &r.NoCalls,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt = fromMicros(started)
	r.FinishedAt = fromMicros(finished)
	r.Input.ModTime = fromMicros(modUs)
	return &r, nil
}
