package action

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/storage"
)

// Recorder observes processed decisions. metrics.Metrics implements it.
type Recorder interface {
	RecordDecision(action core.Action, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(core.Action, error) {}

// Result describes one processed decision.
type Result struct {
	Entry        *core.AuditEntry
	OriginalName string
	// MaskedName is the ciphertext for masked names and empty for deleted ones.
	MaskedName string
	// EncryptionKey is the key for masked names and empty for deleted ones.
	EncryptionKey string
}

// Processor applies decisions and appends them to the audit log.
type Processor struct {
	repo     storage.AuditRepository
	recorder Recorder
	random   io.Reader
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRecorder reports every decision to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(p *Processor) error {
		if recorder == nil {
			recorder = noopRecorder{}
		}
		p.recorder = recorder
		return nil
	}
}

// WithRandom sets the source of key and nonce material.
// Default is crypto/rand.
func WithRandom(random io.Reader) Option {
	return func(p *Processor) error {
		p.random = random
		return nil
	}
}

// NewProcessor creates a Processor writing to repo.
func NewProcessor(repo storage.AuditRepository, opts ...Option) (*Processor, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	p := &Processor{
		repo:     repo,
		recorder: noopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "action-processor")

	return p, nil
}

// Process validates decision, applies its action and appends the audit entry.
// Decisions without a SourceRecordID are logged under a random UUID.
func (p *Processor) Process(ctx context.Context, decision *core.Decision) (*Result, error) {
	if err := core.ValidateDecision(decision); err != nil {
		return nil, err
	}

	result, err := p.process(ctx, decision)
	p.recorder.RecordDecision(decision.Action, err)
	if err != nil {
		p.logger.Error("error processing decision", "key", decision.SourceRecordID,
			"action", decision.Action, "err", err)
		return nil, err
	}

	p.logger.Info("decision processed", "key", result.Entry.Key, "action", decision.Action,
		"source", decision.Source, "audit_id", result.Entry.ID)
	return result, nil
}

func (p *Processor) process(ctx context.Context, decision *core.Decision) (*Result, error) {
	key := decision.SourceRecordID
	if key == "" {
		key = uuid.NewString()
	}
	entry := &core.AuditEntry{
		Key:         key,
		Source:      decision.Source,
		Probability: decision.Probability,
		Action:      decision.Action,
	}
	result := &Result{OriginalName: decision.Name}

	switch decision.Action {
	case core.ActionMask:
		masked, key, err := Mask(decision.Name, p.random)
		if err != nil {
			return nil, err
		}
		entry.Name = masked
		entry.EncryptionKey = key
		result.MaskedName = masked
		result.EncryptionKey = key
	case core.ActionDelete:
		entry.EncryptionKey = core.DeletedKeyPlaceholder
	}

	stored, err := p.repo.Append(ctx, entry)
	if err != nil {
		return nil, err
	}
	result.Entry = stored[0]
	return result, nil
}
