// Package steps provides step definitions and step result records for the
// listing pipeline.
package steps

import (
	"encoding/json"
	"fmt"
	"time"
)

// ID identifies a pipeline step.
type ID string

// Pipeline steps in execution order.
const (
	AssetVerification   ID = "asset-verification"
	SpecVerification    ID = "spec-verification"
	ComplianceCheck     ID = "compliance-check"
	BannerGeneration    ID = "banner-generation"
	ThumbnailGeneration ID = "thumbnail-generation"
	SEOOptimization     ID = "seo-optimization"
	HumanReview         ID = "human-review"
	Distribution        ID = "distribution"
)

// Step categories.
const (
	CategoryVerification = "verification"
	CategoryCompliance   = "compliance"
	CategoryGeneration   = "generation"
	CategoryOptimization = "optimization"
	CategoryReview       = "review"
	CategoryDistribution = "distribution"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Agent       string `json:"agent"`
	Category    string `json:"category"`
}

// Order is the fixed execution order of every run.
var Order = []ID{
	AssetVerification,
	SpecVerification,
	ComplianceCheck,
	BannerGeneration,
	ThumbnailGeneration,
	SEOOptimization,
	HumanReview,
	Distribution,
}

// StepRegistry holds all step definitions
var StepRegistry = map[ID]StepDefinition{
	AssetVerification: {
		ID:          AssetVerification,
		Name:        "Asset Verification",
		Description: "Validating images, checking quality and dimensions",
		Agent:       "Asset Verification Agent",
		Category:    CategoryVerification,
	},
	SpecVerification: {
		ID:          SpecVerification,
		Name:        "Spec Verification",
		Description: "Cross-referencing specifications with source data",
		Agent:       "Spec Verification Agent",
		Category:    CategoryVerification,
	},
	ComplianceCheck: {
		ID:          ComplianceCheck,
		Name:        "Compliance Check",
		Description: "Ensuring content meets platform requirements",
		Agent:       "Compliance Agent",
		Category:    CategoryCompliance,
	},
	BannerGeneration: {
		ID:          BannerGeneration,
		Name:        "Banner Generation",
		Description: "Creating platform-optimized banner images",
		Agent:       "Banner Generation Agent",
		Category:    CategoryGeneration,
	},
	ThumbnailGeneration: {
		ID:          ThumbnailGeneration,
		Name:        "Thumbnail Generation",
		Description: "Generating product thumbnails for listings",
		Agent:       "Thumbnail Agent",
		Category:    CategoryGeneration,
	},
	SEOOptimization: {
		ID:          SEOOptimization,
		Name:        "SEO Optimization",
		Description: "Optimizing titles, descriptions, and keywords",
		Agent:       "SEO Agent",
		Category:    CategoryOptimization,
	},
	HumanReview: {
		ID:          HumanReview,
		Name:        "Human Review",
		Description: "Content review and approval workflow",
		Agent:       "Human-in-the-Loop",
		Category:    CategoryReview,
	},
	Distribution: {
		ID:          Distribution,
		Name:        "Platform Distribution",
		Description: "Publishing content to marketplace APIs",
		Agent:       "Distribution Agent",
		Category:    CategoryDistribution,
	},
}

// UnknownStepError is returned for a step ID outside the registry.
type UnknownStepError struct {
	Step string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step: %s", e.Step)
}

// Lookup returns the definition of the named step.
func Lookup(id string) (StepDefinition, error) {
	def, ok := StepRegistry[ID(id)]
	if !ok {
		return StepDefinition{}, &UnknownStepError{Step: id}
	}
	return def, nil
}

// Definitions returns every step definition in execution order.
func Definitions() []StepDefinition {
	defs := make([]StepDefinition, 0, len(Order))
	for _, id := range Order {
		defs = append(defs, StepRegistry[id])
	}
	return defs
}

// Index returns the position of id in Order, or -1.
func Index(id ID) int {
	for i, o := range Order {
		if o == id {
			return i
		}
	}
	return -1
}

// Status is the state of one step within a run.
type Status string

// Step statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	// StatusWarning is a completed step that reported issues.
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Terminal reports whether the step will not run again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusWarning, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s.Terminal()
}

// Result is the recorded outcome of one step.
type Result struct {
	StepID      ID              `json:"stepId"`
	Status      Status          `json:"status"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	DurationMs  *int64          `json:"durationMs,omitempty"`
	Output      json.RawMessage `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Pending returns a fresh result for every step in execution order.
func Pending() []Result {
	results := make([]Result, 0, len(Order))
	for _, id := range Order {
		results = append(results, Result{StepID: id, Status: StatusPending})
	}
	return results
}

// Decode unmarshals the step output into v.
func (r Result) Decode(v any) error {
	if len(r.Output) == 0 {
		return fmt.Errorf("step %s has no output", r.StepID)
	}
	return json.Unmarshal(r.Output, v)
}
