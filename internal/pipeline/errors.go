package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError represents a rejected pipeline trigger. No run is created.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NotFoundError is returned for an unknown run ID.
type NotFoundError struct {
	RunID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pipeline run not found: %s", e.RunID)
}

// StateError is returned when an action does not fit the current run or step state.
type StateError struct {
	RunID   uuid.UUID
	Status  RunStatus
	Action  string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s pipeline %s (%s): %s", e.Action, e.RunID, e.Status, e.Message)
}

// StepPanicError records a panic recovered inside a step.
type StepPanicError struct {
	Step  string
	Value any
}

func (e *StepPanicError) Error() string {
	return fmt.Sprintf("step %s panicked: %v", e.Step, e.Value)
}
