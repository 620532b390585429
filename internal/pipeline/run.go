// Package pipeline orchestrates the listing pipeline: eight fixed steps run
// sequentially per product, each recorded before the next starts.
package pipeline

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

// Run statuses.
const (
	RunPending        RunStatus = "pending"
	RunRunning        RunStatus = "running"
	RunPaused         RunStatus = "paused"
	RunAwaitingReview RunStatus = "awaiting_review"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
)

// Terminal reports whether the run has emitted its completion event.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// Summary counts step outcomes. Warning steps count as completed.
type Summary struct {
	TotalSteps     int `json:"totalSteps"`
	CompletedSteps int `json:"completedSteps"`
	FailedSteps    int `json:"failedSteps"`
	SkippedSteps   int `json:"skippedSteps"`
}

// Run is one pipeline execution for a product and its target platforms.
type Run struct {
	ID          uuid.UUID             `json:"pipelineId"`
	Request     types.PipelineRequest `json:"request"`
	Status      RunStatus             `json:"status"`
	Steps       []steps.Result        `json:"steps"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}

// NewRun creates a run with every step pending.
func NewRun(id uuid.UUID, req types.PipelineRequest, now time.Time) *Run {
	return &Run{
		ID:        id,
		Request:   req,
		Status:    RunPending,
		Steps:     steps.Pending(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no step slice with r.
func (r *Run) Clone() *Run {
	c := *r
	c.Steps = slices.Clone(r.Steps)
	c.Request.Platforms = slices.Clone(r.Request.Platforms)
	return &c
}

// Step returns the recorded result of id.
func (r *Run) Step(id steps.ID) (steps.Result, bool) {
	for _, s := range r.Steps {
		if s.StepID == id {
			return s, true
		}
	}
	return steps.Result{}, false
}

// SetStep replaces the result for res.StepID, keeping canonical order.
func (r *Run) SetStep(res steps.Result) {
	for i := range r.Steps {
		if r.Steps[i].StepID == res.StepID {
			r.Steps[i] = res
			return
		}
	}
	r.Steps = append(r.Steps, res)
	slices.SortStableFunc(r.Steps, func(a, b steps.Result) int {
		return steps.Index(a.StepID) - steps.Index(b.StepID)
	})
}

// NextStep returns the first step that has not reached a terminal status.
// A step left in progress by an interrupted execution is returned again.
func (r *Run) NextStep() (steps.ID, bool) {
	for _, s := range r.Steps {
		if !s.Status.Terminal() {
			return s.StepID, true
		}
	}
	return "", false
}

// Summary counts the step outcomes recorded so far.
func (r *Run) Summary() Summary {
	sum := Summary{TotalSteps: len(steps.Order)}
	for _, s := range r.Steps {
		switch s.Status {
		case steps.StatusCompleted, steps.StatusWarning:
			sum.CompletedSteps++
		case steps.StatusFailed:
			sum.FailedSteps++
		case steps.StatusSkipped:
			sum.SkippedSteps++
		}
	}
	return sum
}

// FinalStatus is the terminal status implied by the step outcomes.
func (s Summary) FinalStatus() RunStatus {
	if s.FailedSteps > 0 {
		return RunFailed
	}
	return RunCompleted
}

// CompletionEvent is published once per run after the last step.
type CompletionEvent struct {
	PipelineID string    `json:"pipelineId"`
	Status     RunStatus `json:"status"`
	Summary    Summary   `json:"summary"`
}

// View is the API representation of a run.
type View struct {
	*Run
	Summary Summary `json:"summary"`
}

// NewView wraps r with its summary.
func NewView(r *Run) View {
	return View{Run: r, Summary: r.Summary()}
}
