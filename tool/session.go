package tool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/poiesic/namescan/core"
)

// DefaultInvocationLimit is the number of invocations a session allows.
const DefaultInvocationLimit = 3

// Session bounds the number of tool invocations made by one orchestration run.
// Safe for concurrent use.
type Session struct {
	id       string
	registry *Registry
	limit    int
	logger   *slog.Logger

	mu   sync.Mutex
	used int
}

// SessionOption configures a Session.
type SessionOption func(*Session) error

// WithLimit sets the maximum number of invocations.
// Default is DefaultInvocationLimit.
func WithLimit(limit int) SessionOption {
	return func(s *Session) error {
		if limit < 1 {
			return ErrInvalidLimit
		}
		s.limit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSession starts a session over registry.
func NewSession(registry *Registry, opts ...SessionOption) (*Session, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	s := &Session{
		id:       uuid.NewString(),
		registry: registry,
		limit:    DefaultInvocationLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "tool-session", "session", s.id)

	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Remaining returns how many invocations are left.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit - s.used
}

// Invoke calls the named tool, counting against the session limit.
// Every failure is returned as *core.ToolInvocationError.
func (s *Session) Invoke(ctx context.Context, name, input string) (any, error) {
	t, err := s.registry.Lookup(name)
	if err != nil {
		return nil, &core.ToolInvocationError{Tool: name, Err: err}
	}

	s.mu.Lock()
	if s.used >= s.limit {
		s.mu.Unlock()
		s.logger.Warn("invocation limit reached", "tool", name, "limit", s.limit)
		return nil, &core.ToolInvocationError{Tool: name, Err: ErrInvocationLimit}
	}
	s.used++
	step := s.used
	s.mu.Unlock()

	s.logger.Debug("invoking tool", "tool", name, "step", step, "limit", s.limit)
	result, err := t.Invoke(ctx, input)
	if err != nil {
		return nil, &core.ToolInvocationError{Tool: name, Err: err}
	}
	return result, nil
}
