package tool

import "errors"

var (
	// ErrToolNotFound is returned when no tool is registered under a name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is returned when a tool name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrEmptyToolName is returned when a tool has no name.
	ErrEmptyToolName = errors.New("tool name is empty")

	// ErrInvocationLimit is returned when a session has used all of its invocations.
	ErrInvocationLimit = errors.New("tool invocation limit reached")

	// ErrInvalidLimit is returned for a session limit below 1.
	ErrInvalidLimit = errors.New("invocation limit must be at least 1")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrRegistryRequired is returned when a registry is not provided.
	ErrRegistryRequired = errors.New("registry required")
)
