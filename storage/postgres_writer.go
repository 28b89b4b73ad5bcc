package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"phone-scrubber/models"
)

// PostgresWriter persists the audit trail of scrub runs to PostgreSQL.
type PostgresWriter struct {
	db *sqlx.DB
}

var _ RunRecorder = (*PostgresWriter)(nil)

type runRow struct {
	ID             string `db:"id"`
	ListName       string `db:"list_name"`
	NumbersMatched int    `db:"numbers_matched"`
	LogsTotal      int    `db:"logs_total"`
	LogsFailed     int    `db:"logs_failed"`
}

type removedNumberRow struct {
	RunID string `db:"run_id"`
	Phone string `db:"phone"`
}

type removedRecordRow struct {
	RunID    string `db:"run_id"`
	LogName  string `db:"log_name"`
	RowIndex int    `db:"row_index"`
	Record   string `db:"record"`
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS scrub_runs (
			id              UUID         PRIMARY KEY,
			list_name       TEXT         NOT NULL,
			numbers_matched INTEGER      NOT NULL DEFAULT 0,
			logs_total      INTEGER      NOT NULL DEFAULT 0,
			logs_failed     INTEGER      NOT NULL DEFAULT 0,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS scrub_removed_numbers (
			run_id UUID NOT NULL REFERENCES scrub_runs(id) ON DELETE CASCADE,
			phone  TEXT NOT NULL,
			PRIMARY KEY (run_id, phone)
		);

		CREATE TABLE IF NOT EXISTS scrub_removed_records (
			id        SERIAL  PRIMARY KEY,
			run_id    UUID    NOT NULL REFERENCES scrub_runs(id) ON DELETE CASCADE,
			log_name  TEXT    NOT NULL,
			row_index INTEGER NOT NULL,
			record    JSONB   NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_removed_numbers_phone ON scrub_removed_numbers(phone);
		CREATE INDEX IF NOT EXISTS idx_removed_records_run   ON scrub_removed_records(run_id, log_name);
	`)
	return err
}

// RecordRun stores the run, its removal set and every removed record in
// one transaction.
func (pw *PostgresWriter) RecordRun(ctx context.Context, listName string, r *models.RunResult) (err error) {
	records, err := removedRecordRows(r)
	if err != nil {
		return err
	}

	tx, err := pw.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	failed := 0
	for _, l := range r.Logs {
		if l.Err != nil {
			failed++
		}
	}
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO scrub_runs (id, list_name, numbers_matched, logs_total, logs_failed)
		VALUES (:id, :list_name, :numbers_matched, :logs_total, :logs_failed)
	`, runRow{
		ID:             r.RunID,
		ListName:       BaseName(listName),
		NumbersMatched: r.RemovalSet.Len(),
		LogsTotal:      len(r.Logs),
		LogsFailed:     failed,
	}); err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}

	numbers := make([]removedNumberRow, 0, r.RemovalSet.Len())
	for _, p := range r.RemovalSet.Sorted() {
		numbers = append(numbers, removedNumberRow{RunID: r.RunID, Phone: p})
	}
	if err = insertBatches(ctx, tx, `
		INSERT INTO scrub_removed_numbers (run_id, phone) VALUES (:run_id, :phone)
	`, numbers); err != nil {
		return fmt.Errorf("postgres: insert numbers: %w", err)
	}

	if err = insertBatches(ctx, tx, `
		INSERT INTO scrub_removed_records (run_id, log_name, row_index, record)
		VALUES (:run_id, :log_name, :row_index, :record)
	`, records); err != nil {
		return fmt.Errorf("postgres: insert records: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const batchSize = 500

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// removedRecordRows flattens every removed record into a JSON object keyed
// by column name.
func removedRecordRows(r *models.RunResult) ([]removedRecordRow, error) {
	var out []removedRecordRow
	for _, l := range r.Logs {
		if l.Removed == nil {
			continue
		}
		for i, rec := range l.Removed.Records() {
			raw, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("postgres: encode record: %w", err)
			}
			rowIndex := -1
			if i < len(l.RemovedRows) {
				rowIndex = l.RemovedRows[i]
			}
			out = append(out, removedRecordRow{
				RunID:    r.RunID,
				LogName:  BaseName(l.Name),
				RowIndex: rowIndex,
				Record:   string(raw),
			})
		}
	}
	return out, nil
}

// Close releases the connection pool.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
