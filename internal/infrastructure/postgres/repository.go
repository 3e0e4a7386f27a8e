package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"msg-generator/internal/domain/models"
)

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS generator_runs (
		id SERIAL PRIMARY KEY,
		cid TEXT NOT NULL,
		publisher TEXT NOT NULL,
		topic TEXT NOT NULL,
		sent INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		bytes BIGINT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);
`

// PostgresRepository stores one summary row per generator run. Generated
// messages themselves are never stored.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// EnsureSchema creates the runs table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRunsTable); err != nil {
		slog.Error("Failed to create generator_runs table", "error", err)
		return fmt.Errorf("create generator_runs: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveRun(ctx context.Context, report models.RunReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO generator_runs (
			cid, publisher, topic, sent, failed, bytes, started_at, finished_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		);
	`,
		report.CorrelationID, report.Publisher, report.Topic,
		report.Sent, report.Failed, report.Bytes,
		report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		slog.Error("Failed to save run", "error", err, "cid", report.CorrelationID)
		return fmt.Errorf("save run %s: %w", report.CorrelationID, err)
	}

	slog.Info("Run saved", "cid", report.CorrelationID, "sent", report.Sent)
	return nil
}

// ListRuns returns the most recent runs first.
func (r *PostgresRepository) ListRuns(ctx context.Context, limit int) ([]models.RunReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cid, publisher, topic, sent, failed, bytes, started_at, finished_at
		FROM generator_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		slog.Error("Failed to query runs", "error", err)
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var runs []models.RunReport
	for rows.Next() {
		var run models.RunReport
		if err := rows.Scan(
			&run.CorrelationID, &run.Publisher, &run.Topic,
			&run.Sent, &run.Failed, &run.Bytes,
			&run.StartedAt, &run.FinishedAt,
		); err != nil {
			slog.Error("Failed to scan run", "error", err)
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		slog.Error("Error iterating run rows", "error", err)
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ConnectToDB opens and pings a PostgreSQL connection pool.
func ConnectToDB(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
