package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/source"
)

// TargetSearcher searches a single target for a pattern.
type TargetSearcher interface {
	Search(ctx context.Context, target core.SearchTarget, pattern string) ([]core.MatchRow, error)
}

// Runner is the TargetSearcher backed by live source connections.
// Each call opens its own connection and closes it before returning.
type Runner struct {
	connector source.Connector
	logger    *slog.Logger
}

var _ TargetSearcher = (*Runner)(nil)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithRunnerLogger sets a custom logger.
// Default is slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner that connects through connector.
func NewRunner(connector source.Connector, opts ...RunnerOption) (*Runner, error) {
	if connector == nil {
		return nil, ErrConnectorRequired
	}

	r := &Runner{
		connector: connector,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "search-runner")

	return r, nil
}

// Search returns every row of target whose column contains pattern, ignoring
// case and diacritics, in the source's native order. Any failure is returned
// as *core.QueryError; connection failures are wrapped inside it.
func (r *Runner) Search(ctx context.Context, target core.SearchTarget, pattern string) ([]core.MatchRow, error) {
	start := time.Now()
	fail := func(err error) error {
		return &core.QueryError{Target: target, Elapsed: time.Since(start), Err: err}
	}

	if err := core.ValidateTarget(target); err != nil {
		return nil, fail(err)
	}

	conn, err := r.connector.Connect(ctx, target.SourceID)
	if err != nil {
		return nil, fail(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.logger.Warn("error closing connection", "target", target.Qualified(), "err", err)
		}
	}()

	query := source.SubstringQuery(conn.Dialect(), target)
	rows, err := conn.DB().WithContext(ctx).Raw(query, source.ContainsPattern(pattern)).Rows()
	if err != nil {
		return nil, fail(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fail(err)
	}
	valueIdx := columnIndex(columns, target.Column)
	if valueIdx < 0 {
		return nil, fail(fmt.Errorf("%w: %s", ErrColumnNotSelected, target.Column))
	}

	matches := []core.MatchRow{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fail(err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[column] = values[i]
		}
		matches = append(matches, core.MatchRow{
			Target: target,
			Value:  valueString(values[valueIdx]),
			Row:    row,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fail(err)
	}

	r.logger.Debug("target searched", "target", target.Qualified(), "matches", len(matches),
		"elapsed", time.Since(start))
	return matches, nil
}
