package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/namescan/core"
)

// MaxPoolSize caps the default worker pool size.
const MaxPoolSize = 32

// DefaultPoolSize returns min(32, 2 x GOMAXPROCS).
func DefaultPoolSize() int {
	return min(MaxPoolSize, 2*runtime.GOMAXPROCS(0))
}

// TargetLister supplies the targets searched by each dispatch.
// registry.Registry implements it.
type TargetLister interface {
	List() []core.SearchTarget
}

// Result is the collected output of one dispatch.
type Result struct {
	// Rows holds the matches of every successful target, in completion order.
	Rows []core.MatchRow
	// Outcomes holds one entry per target, in completion order.
	Outcomes []core.TargetOutcome
}

// Executor fans a search out over every target on a bounded worker pool.
// The pool size bounds the number of simultaneously open source connections.
type Executor struct {
	targets  TargetLister
	searcher TargetSearcher
	pool     *ants.Pool
	poolSize int
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor) error

// WithPoolSize sets the worker pool size.
// Sizes below 1 select DefaultPoolSize().
func WithPoolSize(size int) Option {
	return func(e *Executor) error {
		if size < 1 {
			size = DefaultPoolSize()
		}
		e.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor notified about every dispatch.
func WithMonitor(monitor Monitor) Option {
	return func(e *Executor) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// NewExecutor creates an Executor searching every target of targets with searcher.
// Call Release when done.
func NewExecutor(targets TargetLister, searcher TargetSearcher, opts ...Option) (*Executor, error) {
	if targets == nil {
		return nil, ErrTargetsRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	e := &Executor{
		targets:  targets,
		searcher: searcher,
		poolSize: DefaultPoolSize(),
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search-executor")

	// Create the pool after options are applied so it gets the final size
	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	return e, nil
}

// PoolSize returns the number of workers.
func (e *Executor) PoolSize() int {
	return e.poolSize
}

type taskOutcome struct {
	target  core.SearchTarget
	rows    []core.MatchRow
	elapsed time.Duration
	err     error
}

// Dispatch searches every target for pattern and blocks until all of them
// have finished. A blank pattern returns an empty result without querying.
// Failing targets contribute no rows and are recorded as failed outcomes;
// Dispatch itself never fails.
func (e *Executor) Dispatch(ctx context.Context, pattern string) *Result {
	result := &Result{
		Rows:     []core.MatchRow{},
		Outcomes: []core.TargetOutcome{},
	}

	pattern = NormalizePattern(pattern)
	if pattern == "" {
		return result
	}

	start := time.Now()
	targets := e.targets.List()
	e.monitor.Start(pattern, len(targets))

	// Every task sends exactly one outcome. The buffer holds all of them, so
	// workers never wait on the collector.
	outcomes := make(chan taskOutcome, len(targets))
	for _, target := range targets {
		err := e.pool.Submit(func() {
			outcomes <- e.run(ctx, target, pattern)
		})
		if err != nil {
			outcomes <- taskOutcome{
				target: target,
				err:    &core.QueryError{Target: target, Err: fmt.Errorf("%w: %v", ErrSubmitFailed, err)},
			}
		}
	}

	// Only this goroutine touches result.
	for range len(targets) {
		o := <-outcomes
		outcome := core.TargetOutcome{
			Target:  o.target,
			Elapsed: o.elapsed,
		}

		if o.err != nil {
			outcome.Status = core.TargetFailed
			outcome.Err = o.err
			e.logger.Warn("target search failed", "target", o.target.Qualified(),
				"elapsed", o.elapsed, "err", o.err)
			e.monitor.TargetFailed(o.target, o.elapsed, o.err)
		} else {
			outcome.Status = core.TargetSucceeded
			outcome.Matches = len(o.rows)
			result.Rows = append(result.Rows, o.rows...)
			e.monitor.TargetSucceeded(o.target, len(o.rows), o.elapsed)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	elapsed := time.Since(start)
	e.logger.Debug("dispatch finished", "targets", len(targets), "rows", len(result.Rows),
		"elapsed", elapsed)
	e.monitor.Finish(result, elapsed)

	return result
}

// run executes one target search, converting panics and foreign errors into
// *core.QueryError.
func (e *Executor) run(ctx context.Context, target core.SearchTarget, pattern string) (o taskOutcome) {
	start := time.Now()
	o.target = target

	defer func() {
		o.elapsed = time.Since(start)
		if r := recover(); r != nil {
			o.rows = nil
			o.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		if o.err != nil {
			o.rows = nil
			o.err = asQueryError(target, o.elapsed, o.err)
		}
	}()

	o.rows, o.err = e.searcher.Search(ctx, target, pattern)
	return o
}

func asQueryError(target core.SearchTarget, elapsed time.Duration, err error) error {
	var qe *core.QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return &core.QueryError{Target: target, Elapsed: elapsed, Err: err}
}

// Release stops the worker pool. The executor must not be used afterwards.
func (e *Executor) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}
