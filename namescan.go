// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package namescan finds a person's name across a fixed set of relational
// sources and records what was done about each match.
package namescan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/namescan/action"
	"github.com/poiesic/namescan/aggregate"
	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/metrics"
	"github.com/poiesic/namescan/registry"
	"github.com/poiesic/namescan/search"
	"github.com/poiesic/namescan/source"
	"github.com/poiesic/namescan/storage"
	"github.com/poiesic/namescan/storage/badger"
	"github.com/poiesic/namescan/storage/gormstore"
	"github.com/poiesic/namescan/tool"
)

var (
	// ErrConfigRequired is returned when no configuration is provided.
	ErrConfigRequired = errors.New("config is required")

	// ErrUnknownAuditBackend is returned for an audit backend other than badger or sql.
	ErrUnknownAuditBackend = errors.New("unknown audit backend")
)

// Scanner wires the search pipeline, the tool registry and the decision
// processor for one configuration.
type Scanner struct {
	cfg       *config.Config
	targets   *registry.Registry
	executor  *search.Executor
	tools     *tool.Registry
	processor *action.Processor
	audit     storage.AuditRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ tool.Searcher = (*Scanner)(nil)

// ScannerOption configures a Scanner.
type ScannerOption func(*scannerOptions)

type scannerOptions struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     storage.AuditRepository
	connector source.Connector
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(o *scannerOptions) {
		o.logger = logger
	}
}

// WithMetrics reports to m instead of a private registry.
func WithMetrics(m *metrics.Metrics) ScannerOption {
	return func(o *scannerOptions) {
		o.metrics = m
	}
}

// WithAuditRepository records decisions in repo instead of the configured
// backend. The Scanner closes it on Close.
func WithAuditRepository(repo storage.AuditRepository) ScannerOption {
	return func(o *scannerOptions) {
		o.audit = repo
	}
}

// WithConnector replaces the gorm connection provider.
func WithConnector(connector source.Connector) ScannerOption {
	return func(o *scannerOptions) {
		o.connector = connector
	}
}

// NewScanner validates cfg and builds every component it describes. The
// audit backend is opened eagerly; sources are only contacted by searches.
func NewScanner(cfg *config.Config, opts ...ScannerOption) (*Scanner, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	options := &scannerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	targets, err := registry.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	m := options.metrics
	if m == nil {
		if m, err = metrics.New(nil); err != nil {
			return nil, err
		}
	}

	connector := options.connector
	if connector == nil {
		if connector, err = source.NewProvider(cfg, source.WithLogger(logger)); err != nil {
			return nil, err
		}
	}
	runner, err := search.NewRunner(connector, search.WithRunnerLogger(logger))
	if err != nil {
		return nil, err
	}

	audit := options.audit
	if audit == nil {
		if audit, err = openAudit(cfg, logger); err != nil {
			return nil, err
		}
	}

	processor, err := action.NewProcessor(audit,
		action.WithLogger(logger),
		action.WithRecorder(m),
	)
	if err != nil {
		audit.Close()
		return nil, err
	}

	executor, err := search.NewExecutor(targets, runner,
		search.WithPoolSize(cfg.Search.PoolSize),
		search.WithLogger(logger),
		search.WithMonitor(m.Monitor()),
	)
	if err != nil {
		audit.Close()
		return nil, err
	}

	s := &Scanner{
		cfg:       cfg,
		targets:   targets,
		executor:  executor,
		processor: processor,
		audit:     audit,
		metrics:   m,
		logger:    logger.With("component", "scanner"),
	}

	searchTool, err := tool.NewSearchTool(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	if s.tools, err = tool.NewRegistry(searchTool); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func openAudit(cfg *config.Config, logger *slog.Logger) (storage.AuditRepository, error) {
	switch cfg.Audit.Backend {
	case config.AuditBadger:
		return badger.Open(cfg.Audit.Path, logger)
	case config.AuditSQL:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Search.ConnectTimeout)
		defer cancel()
		return gormstore.Open(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuditBackend, cfg.Audit.Backend)
	}
}

// Search returns one record per matching row across every target. Targets
// that fail are logged and skipped, so the result is empty rather than an
// error when nothing could be searched. Use SearchDetailed to tell the two
// apart.
func (s *Scanner) Search(ctx context.Context, name string) ([]core.AggregatedRecord, error) {
	resp, err := s.SearchDetailed(ctx, name)
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// SearchDetailed returns the records along with the outcome of every target.
// The only error is a *core.AggregationFault.
func (s *Scanner) SearchDetailed(ctx context.Context, name string) (*core.SearchResponse, error) {
	start := time.Now()
	result := s.executor.Dispatch(ctx, name)

	resp, err := aggregate.Response(result.Rows, result.Outcomes, s.cfg.ProbabilityFor)
	if err != nil {
		s.logger.Error("aggregation fault", "err", err)
		return nil, err
	}

	if resp.Summary.AllFailed() {
		s.logger.Warn("every target failed", "targets", len(resp.Summary.Targets))
	}
	s.logger.Debug("search complete", "records", len(resp.Records),
		"succeeded", resp.Summary.Succeeded, "failed", resp.Summary.Failed,
		"elapsed", time.Since(start))
	return resp, nil
}

// Process applies decision and appends it to the audit log.
func (s *Scanner) Process(ctx context.Context, decision *core.Decision) (*action.Result, error) {
	return s.processor.Process(ctx, decision)
}

// Audit returns the most recent limit audit entries, oldest first.
// A limit of 0 returns everything.
func (s *Scanner) Audit(ctx context.Context, limit int) ([]*core.AuditEntry, error) {
	return s.audit.List(ctx, limit)
}

// Config returns the normalized configuration the scanner was built from.
func (s *Scanner) Config() *config.Config {
	return s.cfg
}

// Targets returns the immutable target registry.
func (s *Scanner) Targets() *registry.Registry {
	return s.targets
}

// Tools returns the tool registry holding the search tool.
func (s *Scanner) Tools() *tool.Registry {
	return s.tools
}

// Metrics returns the collectors fed by searches and decisions.
func (s *Scanner) Metrics() *metrics.Metrics {
	return s.metrics
}

// Close releases the worker pool and the audit repository.
func (s *Scanner) Close() error {
	s.executor.Release()
	if err := s.audit.Close(); err != nil {
		s.logger.Error("error closing audit repository", "err", err)
		return err
	}
	return nil
}
