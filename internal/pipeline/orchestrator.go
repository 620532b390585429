package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/artifacts"
	"github.com/jonathan/listing-pipeline/internal/events"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// ReviewMode selects how the human-review step completes.
type ReviewMode string

const (
	// ReviewAuto approves after ReviewDelay. Intended for development.
	ReviewAuto ReviewMode = "auto"
	// ReviewManual blocks the run until Approve is called.
	ReviewManual ReviewMode = "manual"
)

// ParseReviewMode resolves a review mode name. Empty selects manual review.
func ParseReviewMode(s string) (ReviewMode, error) {
	switch ReviewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReviewManual:
		return ReviewManual, nil
	case ReviewAuto:
		return ReviewAuto, nil
	}
	return "", fmt.Errorf("invalid review mode %q: must be auto or manual", s)
}

// Orchestrator defaults.
const (
	DefaultReviewDelay     = 500 * time.Millisecond
	DefaultConcurrency     = 3
	DefaultArtifactBaseURL = "https://cdn.example.com"
)

// Decision is a reviewer's verdict on a run awaiting review.
type Decision struct {
	Approved bool   `json:"approved"`
	Reviewer string `json:"reviewer,omitempty"`
	Comments string `json:"comments,omitempty"`

	// skip ends the wait without a decision; the step is recorded skipped.
	skip bool
}

// Options configures an Orchestrator. Zero values select defaults.
type Options struct {
	Store       Store
	Generator   generation.Generator
	Artifacts   artifacts.Store
	Publisher   events.Publisher
	ReviewMode  ReviewMode
	ReviewDelay time.Duration
	// Concurrency bounds per-platform generation within a step.
	Concurrency int
	Logger      *zap.Logger
	// BeforeStep runs ahead of each step's work. An error fails that step.
	BeforeStep func(ctx context.Context, runID uuid.UUID, step steps.ID) error
	Now        func() time.Time
}

type stepFunc func(ctx context.Context, run *Run) (steps.Status, any, error)

// Orchestrator runs pipeline runs step by step and records every step boundary.
type Orchestrator struct {
	store       Store
	gen         *generation.Resilient
	artifacts   artifacts.Store
	publisher   events.Publisher
	reviewMode  ReviewMode
	reviewDelay time.Duration
	concurrency int
	logger      *zap.Logger
	beforeStep  func(ctx context.Context, runID uuid.UUID, step steps.ID) error
	now         func() time.Time
	work        map[steps.ID]stepFunc

	// mu guards active, claims and reviews, and serializes status
	// read-modify-write. active maps a run to the claim of its executor.
	mu      sync.Mutex
	active  map[uuid.UUID]uint64
	claims  uint64
	reviews map[uuid.UUID]chan Decision

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var gen *generation.Resilient
	switch g := opts.Generator.(type) {
	case *generation.Resilient:
		gen = g
	case nil:
		gen = generation.WithFallback(generation.FallbackGenerator{}, logger)
	default:
		gen = generation.WithFallback(g, logger)
	}

	o := &Orchestrator{
		store:       opts.Store,
		gen:         gen,
		artifacts:   opts.Artifacts,
		publisher:   opts.Publisher,
		reviewMode:  opts.ReviewMode,
		reviewDelay: opts.ReviewDelay,
		concurrency: opts.Concurrency,
		logger:      logger,
		beforeStep:  opts.BeforeStep,
		now:         opts.Now,
		active:      make(map[uuid.UUID]uint64),
		reviews:     make(map[uuid.UUID]chan Decision),
	}
	if o.store == nil {
		o.store = NewMemoryStore()
	}
	if o.artifacts == nil {
		o.artifacts = artifacts.NewMemoryStore(DefaultArtifactBaseURL)
	}
	if o.publisher == nil {
		o.publisher = events.Nop{}
	}
	if o.reviewMode == "" {
		o.reviewMode = ReviewManual
	}
	if o.reviewDelay <= 0 {
		o.reviewDelay = DefaultReviewDelay
	}
	if o.concurrency <= 0 {
		o.concurrency = DefaultConcurrency
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())

	o.work = map[steps.ID]stepFunc{
		steps.AssetVerification:   o.verifyAssets,
		steps.SpecVerification:    o.verifySpecs,
		steps.ComplianceCheck:     o.checkCompliance,
		steps.BannerGeneration:    o.generateBanners,
		steps.ThumbnailGeneration: o.generateThumbnails,
		steps.SEOOptimization:     o.optimizeSEO,
		steps.HumanReview:         o.review,
		steps.Distribution:        o.distribute,
	}
	return o
}

// ReviewMode reports the configured review mode.
func (o *Orchestrator) ReviewMode() ReviewMode {
	return o.reviewMode
}

// Create validates req and records a new run with every step pending.
func (o *Orchestrator) Create(ctx context.Context, req types.PipelineRequest) (*Run, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		var reqErr *types.RequestError
		if errors.As(err, &reqErr) {
			return nil, &ValidationError{Field: reqErr.Field, Message: reqErr.Message}
		}
		return nil, &ValidationError{Message: err.Error()}
	}

	run := NewRun(uuid.New(), req, o.now())
	if err := o.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	o.logger.Info("pipeline created",
		zap.String("pipeline_id", run.ID.String()),
		zap.String("product_id", req.ProductID),
		zap.String("channel", string(req.Channel)),
		zap.Int("platforms", len(req.Platforms)))
	o.publish(ctx, run.ID, events.PipelineStarted, run.Request)
	return run, nil
}

// Start creates a run and executes it in the background.
func (o *Orchestrator) Start(ctx context.Context, req types.PipelineRequest) (uuid.UUID, error) {
	run, err := o.Create(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	o.launch(run.ID)
	return run.ID, nil
}

// Execute runs the remaining steps of a run in the calling goroutine. It
// returns when the run finishes, is paused, or ctx is cancelled.
func (o *Orchestrator) Execute(ctx context.Context, id uuid.UUID) (*Run, error) {
	claim, ok := o.claim(id)
	if !ok {
		run, err := o.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		return run, &StateError{RunID: id, Status: run.Status, Action: "execute", Message: "run is already executing"}
	}
	defer o.release(id, claim)
	return o.execute(ctx, id, claim)
}

// GetRun returns a run by ID.
func (o *Orchestrator) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := o.store.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, &NotFoundError{RunID: id}
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	runs, err := o.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Pause stops a run at the next step boundary.
func (o *Orchestrator) Pause(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := o.transition(ctx, id, func(r *Run) (RunStatus, error) {
		switch {
		case r.Status.Terminal():
			return r.Status, &StateError{RunID: id, Status: r.Status, Action: "pause", Message: "run already finished"}
		case r.Status == RunPaused:
			return r.Status, nil
		}
		return RunPaused, nil
	})
	if err != nil {
		return run, err
	}
	o.logger.Info("pipeline paused", zap.String("pipeline_id", id.String()))
	o.publish(ctx, id, events.PipelinePaused, nil)
	return run, nil
}

// Resume continues a paused or interrupted run from its first unfinished step.
// Steps already in a terminal state are never run again.
func (o *Orchestrator) Resume(ctx context.Context, id uuid.UUID) (*Run, error) {
	launch := false
	run, err := o.transition(ctx, id, func(r *Run) (RunStatus, error) {
		if r.Status.Terminal() {
			return r.Status, &StateError{RunID: id, Status: r.Status, Action: "resume", Message: "run already finished"}
		}
		if _, executing := o.active[id]; executing {
			if r.Status != RunPaused {
				return r.Status, &StateError{RunID: id, Status: r.Status, Action: "resume", Message: "run is already executing"}
			}
			if _, waiting := o.reviews[id]; waiting {
				return RunAwaitingReview, nil
			}
			return RunRunning, nil
		}
		launch = true
		return RunRunning, nil
	})
	if err != nil {
		return run, err
	}
	if launch {
		o.launch(id)
	}
	o.logger.Info("pipeline resumed", zap.String("pipeline_id", id.String()))
	return run, nil
}

// Skip marks a step that has not started as skipped. Its work never runs.
// A human review that is waiting for a decision is skipped too: the wait
// ends and the step is recorded skipped once the run advances.
func (o *Orchestrator) Skip(ctx context.Context, id uuid.UUID, stepID string) (*Run, error) {
	def, err := steps.Lookup(stepID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	run, err := o.GetRun(ctx, id)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if run.Status.Terminal() {
		o.mu.Unlock()
		return run, &StateError{RunID: id, Status: run.Status, Action: "skip", Message: "run already finished"}
	}
	current, _ := run.Step(def.ID)
	if ch, waiting := o.reviews[id]; waiting && def.ID == steps.HumanReview && current.Status == steps.StatusInProgress {
		delete(o.reviews, id)
		ch <- Decision{skip: true}
		o.mu.Unlock()
		o.logger.Info("review skipped", zap.String("pipeline_id", id.String()))
		return run, nil
	}
	if current.Status != steps.StatusPending {
		o.mu.Unlock()
		return run, &StateError{RunID: id, Status: run.Status, Action: "skip", Message: fmt.Sprintf("step %s is %s", def.ID, current.Status)}
	}
	now := o.now()
	res := steps.Result{StepID: def.ID, Status: steps.StatusSkipped, CompletedAt: &now}
	err = o.store.SaveStep(ctx, id, res)
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to save step: %w", err)
	}

	run.SetStep(res)
	o.logger.Info("step skipped", zap.String("pipeline_id", id.String()), zap.String("step", string(def.ID)))
	o.publish(ctx, id, events.StepCompleted, res)
	return run, nil
}

// Approve delivers a review decision to a run blocked in manual review.
func (o *Orchestrator) Approve(ctx context.Context, id uuid.UUID, d Decision) error {
	o.mu.Lock()
	ch, ok := o.reviews[id]
	if ok {
		delete(o.reviews, id)
	}
	o.mu.Unlock()

	if !ok {
		run, err := o.GetRun(ctx, id)
		if err != nil {
			return err
		}
		return &StateError{RunID: id, Status: run.Status, Action: "approve", Message: "run is not awaiting review"}
	}
	ch <- d
	return nil
}

// RecoverRuns restarts every unfinished run that is not paused. It is called
// once at startup to continue runs interrupted by a restart.
func (o *Orchestrator) RecoverRuns(ctx context.Context) (int, error) {
	runs, err := o.store.ListRunsByStatus(ctx, RunPending, RunRunning, RunAwaitingReview)
	if err != nil {
		return 0, fmt.Errorf("failed to list unfinished runs: %w", err)
	}
	n := 0
	for _, run := range runs {
		if o.launch(run.ID) {
			n++
		}
	}
	if n > 0 {
		o.logger.Info("recovered pipeline runs", zap.Int("count", n))
	}
	return n, nil
}

// Wait blocks until every background execution has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels background executions and waits for them. Interrupted steps
// stay in progress and run again on recovery.
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) claim(id uuid.UUID) (uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.active[id]; ok {
		return 0, false
	}
	o.claims++
	o.active[id] = o.claims
	return o.claims, true
}

// release drops claim. A newer executor's claim is left alone. Callers hold
// no lock; dropClaim is the variant for code already under o.mu.
func (o *Orchestrator) release(id uuid.UUID, claim uint64) {
	o.mu.Lock()
	o.dropClaim(id, claim)
	o.mu.Unlock()
}

func (o *Orchestrator) dropClaim(id uuid.UUID, claim uint64) {
	if o.active[id] == claim {
		delete(o.active, id)
	}
}

// launch executes a run in the background unless it is already executing.
func (o *Orchestrator) launch(id uuid.UUID) bool {
	claim, ok := o.claim(id)
	if !ok {
		return false
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.release(id, claim)
		if _, err := o.execute(o.ctx, id, claim); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("pipeline execution stopped", zap.String("pipeline_id", id.String()), zap.Error(err))
		}
	}()
	return true
}

// transition applies fn to the current run under the orchestrator lock and
// persists the returned status when it changed.
func (o *Orchestrator) transition(ctx context.Context, id uuid.UUID, fn func(*Run) (RunStatus, error)) (*Run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	run, err := o.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(run)
	if err != nil {
		return run, err
	}
	if next != run.Status {
		if err := o.store.UpdateRunStatus(ctx, id, next); err != nil {
			return run, fmt.Errorf("failed to update run status: %w", err)
		}
		now := o.now()
		run.Status = next
		run.UpdatedAt = now
		if next.Terminal() {
			run.CompletedAt = &now
		}
	}
	return run, nil
}

// execute runs steps under claim. Seeing a pause and giving up the claim
// happen under one lock, so a Resume either finds this executor still
// committed to continue or finds no executor and launches a new one.
func (o *Orchestrator) execute(ctx context.Context, id uuid.UUID, claim uint64) (*Run, error) {
	run, err := o.transition(ctx, id, func(r *Run) (RunStatus, error) {
		switch r.Status {
		case RunPending, RunAwaitingReview:
			return RunRunning, nil
		case RunPaused:
			o.dropClaim(id, claim)
		}
		return r.Status, nil
	})
	if err != nil {
		return run, err
	}
	if run.Status.Terminal() || run.Status == RunPaused {
		return run, nil
	}

	logger := o.logger.With(zap.String("pipeline_id", id.String()))
	logger.Info("pipeline executing", zap.String("product_id", run.Request.ProductID))

	for {
		if err := ctx.Err(); err != nil {
			return o.snapshot(ctx, id), err
		}
		run, err = o.transition(ctx, id, func(r *Run) (RunStatus, error) {
			if r.Status == RunPaused {
				o.dropClaim(id, claim)
			}
			return r.Status, nil
		})
		if err != nil {
			return nil, err
		}
		if run.Status == RunPaused {
			logger.Info("pipeline stopped at step boundary")
			return run, nil
		}
		next, ok := run.NextStep()
		if !ok {
			break
		}
		if err := o.runStep(ctx, run, next); err != nil {
			return o.snapshot(ctx, id), err
		}
	}
	return o.finish(ctx, id)
}

// snapshot reads a run after its execution context may have been cancelled.
func (o *Orchestrator) snapshot(ctx context.Context, id uuid.UUID) *Run {
	run, err := o.GetRun(context.WithoutCancel(ctx), id)
	if err != nil {
		return nil
	}
	return run
}

// beginStep marks a step in progress unless it was skipped meanwhile.
func (o *Orchestrator) beginStep(ctx context.Context, id uuid.UUID, stepID steps.ID) (steps.Result, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	run, err := o.GetRun(ctx, id)
	if err != nil {
		return steps.Result{}, false, err
	}
	current, _ := run.Step(stepID)
	if current.Status.Terminal() {
		return current, false, nil
	}
	started := o.now()
	res := steps.Result{StepID: stepID, Status: steps.StatusInProgress, StartedAt: &started}
	if err := o.store.SaveStep(ctx, id, res); err != nil {
		return steps.Result{}, false, fmt.Errorf("failed to save step: %w", err)
	}
	return res, true, nil
}

// runStep executes one step and records its outcome. Step errors and panics
// become a failed result. A cancelled context leaves the step in progress,
// except human review, which records the aborted wait as a failure.
func (o *Orchestrator) runStep(ctx context.Context, run *Run, stepID steps.ID) error {
	res, ok, err := o.beginStep(ctx, run.ID, stepID)
	if err != nil || !ok {
		return err
	}
	logger := o.logger.With(zap.String("pipeline_id", run.ID.String()), zap.String("step", string(stepID)))
	logger.Info("step started")
	o.publish(ctx, run.ID, events.StepStarted, res)

	status, output, err := o.perform(ctx, run, stepID)
	if err != nil && ctx.Err() != nil && stepID != steps.HumanReview {
		logger.Info("step interrupted", zap.Error(err))
		return ctx.Err()
	}

	finished := o.now()
	duration := finished.Sub(*res.StartedAt).Milliseconds()
	res.CompletedAt = &finished
	res.DurationMs = &duration
	res.Status = status
	if err == nil && output != nil {
		raw, merr := json.Marshal(output)
		if merr != nil {
			err = fmt.Errorf("failed to encode step output: %w", merr)
		}
		res.Output = raw
	}
	if err != nil {
		res.Status = steps.StatusFailed
		res.Error = err.Error()
		res.Output = nil
		logger.Warn("step failed", zap.Error(err))
	} else {
		logger.Info("step finished", zap.String("status", string(res.Status)), zap.Int64("duration_ms", duration))
	}

	persist := context.WithoutCancel(ctx)
	if err := o.store.SaveStep(persist, run.ID, res); err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	o.publish(persist, run.ID, events.StepCompleted, res)
	return nil
}

// perform runs the step's work, converting a panic into a step error.
func (o *Orchestrator) perform(ctx context.Context, run *Run, stepID steps.ID) (status steps.Status, output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("step panicked", zap.String("step", string(stepID)), zap.Any("panic", r))
			status, output, err = steps.StatusFailed, nil, &StepPanicError{Step: string(stepID), Value: r}
		}
	}()

	if o.beforeStep != nil {
		if err := o.beforeStep(ctx, run.ID, stepID); err != nil {
			return steps.StatusFailed, nil, err
		}
	}
	fn, ok := o.work[stepID]
	if !ok {
		return steps.StatusFailed, nil, &steps.UnknownStepError{Step: string(stepID)}
	}
	return fn(ctx, run)
}

// finish moves the run to its terminal status and publishes the completion
// event. Execution is exclusive per run, so this happens once.
func (o *Orchestrator) finish(ctx context.Context, id uuid.UUID) (*Run, error) {
	ctx = context.WithoutCancel(ctx)
	done := false
	run, err := o.transition(ctx, id, func(r *Run) (RunStatus, error) {
		if r.Status.Terminal() || r.Status == RunPaused {
			return r.Status, nil
		}
		done = true
		return r.Summary().FinalStatus(), nil
	})
	if err != nil || !done {
		return run, err
	}

	summary := run.Summary()
	o.logger.Info("pipeline finished",
		zap.String("pipeline_id", id.String()),
		zap.String("status", string(run.Status)),
		zap.Int("completed_steps", summary.CompletedSteps),
		zap.Int("failed_steps", summary.FailedSteps),
		zap.Int("skipped_steps", summary.SkippedSteps))
	o.publish(ctx, id, events.PipelineCompleted, CompletionEvent{
		PipelineID: id.String(),
		Status:     run.Status,
		Summary:    summary,
	})
	return run, nil
}

func (o *Orchestrator) publish(ctx context.Context, id uuid.UUID, name string, data any) {
	err := o.publisher.Publish(ctx, events.Envelope{
		Name:       name,
		PipelineID: id.String(),
		Data:       data,
		Time:       o.now(),
	})
	if err != nil {
		o.logger.Warn("failed to publish event", zap.String("event", name), zap.String("pipeline_id", id.String()), zap.Error(err))
	}
}
