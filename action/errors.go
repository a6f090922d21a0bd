package action

import "errors"

var (
	// ErrRepositoryRequired is returned when an audit repository is not provided.
	ErrRepositoryRequired = errors.New("audit repository required")

	// ErrMalformedCiphertext is returned when a masked name cannot be decoded.
	ErrMalformedCiphertext = errors.New("malformed masked name")
)
