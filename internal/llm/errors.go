package llm

import "fmt"

// APIError wraps a failed provider call.
type APIError struct {
	Op    string
	Model string
	Cause error
}

func (e *APIError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Model, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError is returned when the provider answered without usable text.
type EmptyResponseError struct {
	Reason string
}

func (e *EmptyResponseError) Error() string {
	return "empty model response: " + e.Reason
}
