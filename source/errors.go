package source

import (
	"errors"

	"github.com/poiesic/namescan/core"
)

var (
	// ErrConfigRequired is returned when a provider is built without configuration.
	ErrConfigRequired = errors.New("config required")

	// ErrUnknownSource is returned when no source with the requested id is configured.
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnsupportedDriver is returned for a driver without a dialect.
	ErrUnsupportedDriver = errors.New("unsupported driver")

	// ErrInvalidAttempts is returned when retry attempts is less than one.
	ErrInvalidAttempts = errors.New("connect attempts must be at least 1")
)

func connectionError(sourceID string, err error) *core.ConnectionError {
	return &core.ConnectionError{SourceID: sourceID, Err: err}
}
