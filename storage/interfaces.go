package storage

import (
	"context"

	"github.com/poiesic/namescan/core"
)

// AuditRepository is the append-only log of processed decisions.
// Implementations must be thread-safe and support concurrent access.
type AuditRepository interface {
	// Append stores entries in order.
	// Assigns ID and CreatedAt to entries that do not carry them yet.
	// Returns the entries with IDs and timestamps populated.
	Append(ctx context.Context, entries ...*core.AuditEntry) ([]*core.AuditEntry, error)

	// List returns stored entries in insertion order.
	// With limit > 0 only the most recent limit entries are returned,
	// still oldest first.
	List(ctx context.Context, limit int) ([]*core.AuditEntry, error)

	// Close releases the repository and any backend it owns.
	Close() error
}
