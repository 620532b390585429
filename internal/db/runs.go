package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/listing-pipeline/internal/pipeline"
)

const runColumns = `id, status, request, created_at, updated_at, completed_at`

// CreateRun inserts a run and its initial step records in one transaction.
func (db *DB) CreateRun(ctx context.Context, run *pipeline.Run) error {
	request, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO pipeline_runs (id, product_id, product_title, channel, status, request, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Request.ProductID, run.Request.ProductTitle, string(run.Request.Channel),
		string(run.Status), request, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	for _, step := range run.Steps {
		if err := upsertStep(ctx, tx, run.ID, step); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its ordered steps. It returns nil, nil when the
// run does not exist.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*pipeline.Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Steps, err = db.ListRunSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*pipeline.Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs
		 ORDER BY created_at DESC
		 LIMIT NULLIF($1::int, 0)`,
		max(limit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return db.collectRuns(ctx, rows)
}

// ListRunsByStatus returns runs in any of the given statuses, oldest first.
func (db *DB) ListRunsByStatus(ctx context.Context, statuses ...pipeline.RunStatus) ([]*pipeline.Run, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs
		 WHERE status = ANY($1)
		 ORDER BY created_at`,
		names,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs by status: %w", err)
	}
	return db.collectRuns(ctx, rows)
}

// UpdateRunStatus sets the run status. Terminal statuses also stamp completed_at.
func (db *DB) UpdateRunStatus(ctx context.Context, id uuid.UUID, status pipeline.RunStatus) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, updated_at = NOW(),
		     completed_at = CASE WHEN $2 THEN NOW() ELSE completed_at END
		 WHERE id = $3`,
		string(status), status.Terminal(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &pipeline.NotFoundError{RunID: id}
	}
	return nil
}

func (db *DB) collectRuns(ctx context.Context, rows pgx.Rows) ([]*pipeline.Run, error) {
	var runs []*pipeline.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	for _, run := range runs {
		steps, err := db.ListRunSteps(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Steps = steps
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*pipeline.Run, error) {
	var (
		run         pipeline.Run
		status      string
		request     []byte
		completedAt *time.Time
	)
	if err := row.Scan(&run.ID, &status, &request, &run.CreatedAt, &run.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(request, &run.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	run.Status = pipeline.RunStatus(status)
	run.CompletedAt = completedAt
	return &run, nil
}
