// Package events publishes pipeline progress to in-process subscribers and Redis.
package events

import (
	"context"
	"errors"
	"time"
)

// Event names.
const (
	PipelineStarted   = "pipeline/started"
	StepStarted       = "pipeline/step.started"
	StepCompleted     = "pipeline/step.completed"
	ReviewRequested   = "pipeline/review.requested"
	PipelinePaused    = "pipeline/paused"
	PipelineCompleted = "pipeline/completed"
)

// Envelope is one published event.
type Envelope struct {
	Name       string    `json:"name"`
	PipelineID string    `json:"pipelineId"`
	Data       any       `json:"data,omitempty"`
	Time       time.Time `json:"time"`
}

// Terminal reports whether no further events follow for the pipeline.
func (e Envelope) Terminal() bool {
	return e.Name == PipelineCompleted
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Envelope) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Envelope) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
