package httpapi

import "errors"

var (
	// ErrSearcherRequired is returned when no searcher is provided.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrProcessorRequired is returned when no processor is provided.
	ErrProcessorRequired = errors.New("processor is required")

	// ErrTargetsRequired is returned when no target lister is provided.
	ErrTargetsRequired = errors.New("target lister is required")
)

// Error codes returned in error bodies.
const (
	codeBadRequest    = "bad_request"
	codeInvalidAction = "invalid_action"
	codeValidation    = "validation_failed"
	codeInternal      = "internal_error"
)
