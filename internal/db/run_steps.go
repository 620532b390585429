package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
)

// -----------------------------------------------------------------------------
// Run Steps Methods
// -----------------------------------------------------------------------------

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SaveStep records a step result, replacing the previous record for that step.
func (db *DB) SaveStep(ctx context.Context, runID uuid.UUID, result steps.Result) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET updated_at = NOW() WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to touch run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &pipeline.NotFoundError{RunID: runID}
	}
	return upsertStep(ctx, db.pool, runID, result)
}

func upsertStep(ctx context.Context, ex execer, runID uuid.UUID, r steps.Result) error {
	var output []byte
	if len(r.Output) > 0 {
		output = r.Output
	}
	var errorMsg *string
	if r.Error != "" {
		errorMsg = &r.Error
	}

	_, err := ex.Exec(ctx,
		`INSERT INTO run_steps (id, run_id, step, position, status, started_at, completed_at,
		                        duration_ms, output, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET status = EXCLUDED.status, started_at = EXCLUDED.started_at,
		     completed_at = EXCLUDED.completed_at, duration_ms = EXCLUDED.duration_ms,
		     output = EXCLUDED.output, error_message = EXCLUDED.error_message,
		     updated_at = NOW()`,
		uuid.New(), runID, string(r.StepID), steps.Index(r.StepID), string(r.Status),
		r.StartedAt, r.CompletedAt, r.DurationMs, output, errorMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to save run step %s: %w", r.StepID, err)
	}
	return nil
}

// ListRunSteps retrieves all steps for a run in execution order.
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]steps.Result, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT step, status, started_at, completed_at, duration_ms, output, error_message
		 FROM run_steps
		 WHERE run_id = $1
		 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var results []steps.Result
	for rows.Next() {
		r, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	return results, nil
}

// GetRunStep retrieves one step record. It returns nil, nil when the step has
// no record.
func (db *DB) GetRunStep(ctx context.Context, runID uuid.UUID, stepID steps.ID) (*steps.Result, error) {
	r, err := scanStep(db.pool.QueryRow(ctx,
		`SELECT step, status, started_at, completed_at, duration_ms, output, error_message
		 FROM run_steps
		 WHERE run_id = $1 AND step = $2`,
		runID, string(stepID),
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run step: %w", err)
	}
	return &r, nil
}

func scanStep(row pgx.Row) (steps.Result, error) {
	var (
		r        steps.Result
		stepID   string
		status   string
		output   []byte
		errorMsg *string
	)
	if err := row.Scan(&stepID, &status, &r.StartedAt, &r.CompletedAt, &r.DurationMs, &output, &errorMsg); err != nil {
		return steps.Result{}, err
	}
	r.StepID = steps.ID(stepID)
	r.Status = steps.Status(status)
	if len(output) > 0 {
		r.Output = output
	}
	if errorMsg != nil {
		r.Error = *errorMsg
	}
	return r, nil
}
