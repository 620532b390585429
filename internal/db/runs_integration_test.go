//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/types"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func newRun(t *testing.T) *pipeline.Run {
	t.Helper()
	req := types.PipelineRequest{
		ProductID:    "OLED65C47LA-" + uuid.NewString()[:8],
		ProductTitle: "OLED evo C4",
		Channel:      types.ChannelThirdParty,
		Platforms:    []types.Platform{types.PlatformOtto},
	}
	req.Normalize()
	return pipeline.NewRun(uuid.New(), req, time.Now().UTC().Truncate(time.Millisecond))
}

func TestCreateAndGetRun_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := newRun(t)
	require.NoError(t, db.CreateRun(ctx, run))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pipeline.RunPending, got.Status)
	assert.Equal(t, run.Request.ProductID, got.Request.ProductID)
	assert.Equal(t, []types.Platform{types.PlatformOtto}, got.Request.Platforms)
	require.Len(t, got.Steps, len(steps.Order))
	for i, s := range got.Steps {
		assert.Equal(t, steps.Order[i], s.StepID)
		assert.Equal(t, steps.StatusPending, s.Status)
	}

	missing, err := db.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveStep_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := newRun(t)
	require.NoError(t, db.CreateRun(ctx, run))

	started := time.Now().UTC().Truncate(time.Millisecond)
	finished := started.Add(1500 * time.Millisecond)
	duration := int64(1500)
	require.NoError(t, db.SaveStep(ctx, run.ID, steps.Result{
		StepID:      steps.ComplianceCheck,
		Status:      steps.StatusWarning,
		StartedAt:   &started,
		CompletedAt: &finished,
		DurationMs:  &duration,
		Output:      []byte(`{"totalIssues":2}`),
	}))
	require.NoError(t, db.SaveStep(ctx, run.ID, steps.Result{
		StepID: steps.BannerGeneration,
		Status: steps.StatusFailed,
		Error:  "all 1 platforms failed",
	}))

	step, err := db.GetRunStep(ctx, run.ID, steps.ComplianceCheck)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, steps.StatusWarning, step.Status)
	assert.JSONEq(t, `{"totalIssues":2}`, string(step.Output))
	require.NotNil(t, step.DurationMs)
	assert.Equal(t, int64(1500), *step.DurationMs)
	assert.True(t, started.Equal(*step.StartedAt))

	banner, err := db.GetRunStep(ctx, run.ID, steps.BannerGeneration)
	require.NoError(t, err)
	assert.Equal(t, "all 1 platforms failed", banner.Error)
	assert.Empty(t, banner.Output)

	var notFound *pipeline.NotFoundError
	assert.ErrorAs(t, db.SaveStep(ctx, uuid.New(), steps.Result{StepID: steps.Distribution}), &notFound)
}

func TestUpdateRunStatusAndList_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := newRun(t)
	require.NoError(t, db.CreateRun(ctx, run))

	require.NoError(t, db.UpdateRunStatus(ctx, run.ID, pipeline.RunAwaitingReview))
	active, err := db.ListRunsByStatus(ctx, pipeline.RunAwaitingReview)
	require.NoError(t, err)
	found := false
	for _, r := range active {
		if r.ID == run.ID {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, db.UpdateRunStatus(ctx, run.ID, pipeline.RunCompleted))
	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	recent, err := db.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	var notFound *pipeline.NotFoundError
	assert.ErrorAs(t, db.UpdateRunStatus(ctx, uuid.New(), pipeline.RunPaused), &notFound)
}

func TestOrchestratorWithPostgres_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	o := pipeline.New(pipeline.Options{Store: db, ReviewMode: pipeline.ReviewAuto, ReviewDelay: time.Millisecond})
	defer o.Close()

	req := types.PipelineRequest{
		ProductID:    "OLED65C47LA",
		ProductTitle: "OLED evo C4",
		Channel:      types.ChannelThirdParty,
		Platforms:    []types.Platform{types.PlatformGalaxus},
	}
	run, err := o.Create(ctx, req)
	require.NoError(t, err)
	run, err = o.Execute(ctx, run.ID)
	require.NoError(t, err)

	assert.True(t, run.Status.Terminal())
	require.Len(t, run.Steps, len(steps.Order))
	for _, s := range run.Steps {
		assert.True(t, s.Status.Terminal())
	}
}
