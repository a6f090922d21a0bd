package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchTarget is one queryable (source, schema, table, column) location.
// Its identity is the full 4-tuple.
type SearchTarget struct {
	SourceID string `json:"source_id" yaml:"source"`
	Schema   string `json:"schema" yaml:"schema"`
	Table    string `json:"table" yaml:"table"`
	Column   string `json:"column" yaml:"column"`
}

// Qualified returns "source.schema.table.column".
func (t SearchTarget) Qualified() string {
	return t.SourceID + "." + t.Schema + "." + t.Table + "." + t.Column
}

// Source returns the provenance string "source.schema.table" reported to callers.
func (t SearchTarget) Source() string {
	return t.SourceID + "." + t.Schema + "." + t.Table
}

// Key returns the record key derived from the target alone.
// Every row matched in the same target yields the same key.
func (t SearchTarget) Key() string {
	return t.SourceID + "_" + t.Table + "_" + t.Column
}

// ID returns the content-derived identifier of the target tuple.
func (t SearchTarget) ID() ID {
	return IDFromContent(t.Qualified())
}

// MatchRow is a single matching row found in a target.
type MatchRow struct {
	Target SearchTarget
	Value  string         // Value of the target column
	Row    map[string]any // All selected columns, keyed by column name
}

// AggregatedRecord is the uniform output shape handed to callers.
type AggregatedRecord struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	Probability float64 `json:"probability"`
}

// TargetStatus is the terminal state of one target query.
type TargetStatus string

const (
	// TargetSucceeded means the query ran, with or without matches.
	TargetSucceeded TargetStatus = "succeeded"
	// TargetFailed means the connection or the query failed.
	TargetFailed TargetStatus = "failed"
)

// TargetOutcome records what happened to one target during a search.
type TargetOutcome struct {
	Target  SearchTarget
	Status  TargetStatus
	Matches int
	Elapsed time.Duration
	Err     error
}

// Summary reports per-target status next to the aggregated records, so an
// empty record list can be told apart from a total failure.
type Summary struct {
	Targets   []TargetOutcome
	Succeeded int
	Failed    int
	Matches   int
}

// AllFailed reports whether every queried target failed.
func (s Summary) AllFailed() bool {
	return len(s.Targets) > 0 && s.Failed == len(s.Targets)
}

// SearchResponse bundles the formatted records with their status summary.
type SearchResponse struct {
	Records []AggregatedRecord
	Summary Summary
}

// Action is the compliance action applied to a matched name.
type Action string

const (
	// ActionMask replaces the name with an encrypted form.
	ActionMask Action = "mask"
	// ActionDelete removes the name, keeping only an audit trail.
	ActionDelete Action = "delete"
)

// Decision is a caller's instruction to process one matched record.
type Decision struct {
	SourceRecordID string
	Name           string
	Source         string
	Probability    float64
	Action         Action
}

// DeletedKeyPlaceholder is stored as the encryption key of deleted names.
const DeletedKeyPlaceholder = "-"

// AuditEntry is one row of the append-only processing log.
type AuditEntry struct {
	ID            ID
	Key           string
	EncryptionKey string // Key material for masked names, DeletedKeyPlaceholder otherwise
	Source        string
	Name          string // Ciphertext for masked names, empty for deleted ones
	Probability   float64
	Action        Action
	CreatedAt     time.Time
}
