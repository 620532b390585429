// Package sections tracks per-platform, per-section generation state for a
// product page so sections can be retried and regenerated independently.
package sections

import (
	"fmt"
	"time"

	"github.com/jonathan/listing-pipeline/internal/types"
)

// Status is the generation state of one section.
type Status string

// Section statuses.
const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

var transitions = map[Status][]Status{
	StatusIdle:       {StatusGenerating},
	StatusGenerating: {StatusComplete, StatusError},
	StatusError:      {StatusGenerating},
	StatusComplete:   {StatusGenerating},
}

// CanTransition reports whether a section may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// State is the client-visible state of one section.
type State struct {
	Section      types.SectionKey `json:"section"`
	Status       Status           `json:"status"`
	Enabled      bool             `json:"enabled"`
	Content      string           `json:"content,omitempty"`
	UsedFallback bool             `json:"usedFallback,omitempty"`
	Error        string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// TransitionError is returned for a status change the state machine forbids.
type TransitionError struct {
	Platform types.Platform
	Section  types.SectionKey
	From     Status
	To       Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("section %s/%s: cannot move from %s to %s", e.Platform, e.Section, e.From, e.To)
}
