package config

import "errors"

var (
	// ErrUnsupportedVersion is returned when the config layout version is unknown.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidSource is returned for an incomplete source definition.
	ErrInvalidSource = errors.New("invalid source")

	// ErrDuplicateSource is returned when two sources share an id.
	ErrDuplicateSource = errors.New("duplicate source id")

	// ErrUnsupportedDriver is returned for a driver namescan cannot open.
	ErrUnsupportedDriver = errors.New("unsupported driver")

	// ErrUnknownSource is returned when a target references an undefined source.
	ErrUnknownSource = errors.New("target references unknown source")

	// ErrDuplicateTarget is returned when the same 4-tuple is listed twice.
	ErrDuplicateTarget = errors.New("duplicate target")

	// ErrNoTargets is returned when no targets are configured.
	ErrNoTargets = errors.New("no search targets configured")

	// ErrInvalidSearch is returned for out-of-range search tuning values.
	ErrInvalidSearch = errors.New("invalid search settings")

	// ErrInvalidAudit is returned for an unusable audit backend setting.
	ErrInvalidAudit = errors.New("invalid audit settings")
)
