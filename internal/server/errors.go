package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/schemas"
	"github.com/jonathan/listing-pipeline/internal/sections"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation    *ErrValidation
		pipelineInput *pipeline.ValidationError
		requestInput  *types.RequestError
		schemaInput   *schemas.ValidationError
		unknownStep   *steps.UnknownStepError
		unknownPlat   *platforms.UnknownPlatformError
		unknownSect   *generation.UnknownSectionError
		unknownRule   *compliance.UnknownRuleError
		notFound      *pipeline.NotFoundError
		state         *pipeline.StateError
		transition    *sections.TransitionError
		generationErr *generation.GenerationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &pipelineInput), errors.As(err, &requestInput),
		errors.As(err, &schemaInput), errors.As(err, &unknownStep), errors.As(err, &unknownPlat),
		errors.As(err, &unknownSect), errors.As(err, &unknownRule), errors.Is(err, generation.ErrMissingInput):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &state), errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &generationErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing message for err. Schema errors are
// flattened to one line.
func errorMessage(err error) string {
	var schemaInput *schemas.ValidationError
	if errors.As(err, &schemaInput) {
		return schemaInput.Summary()
	}
	return err.Error()
}
