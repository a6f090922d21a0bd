package search

import (
	"time"

	"github.com/poiesic/namescan/core"
)

// Monitor provides hooks to observe a dispatch.
// Implementations must be safe for concurrent use: target hooks are called
// from the dispatching goroutine, but several dispatches may run at once.
type Monitor interface {
	Start(pattern string, targets int)
	TargetSucceeded(target core.SearchTarget, matches int, elapsed time.Duration)
	TargetFailed(target core.SearchTarget, elapsed time.Duration, err error)
	Finish(result *Result, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                                       {}
func (n *noopMonitor) TargetSucceeded(_ core.SearchTarget, _ int, _ time.Duration) {}
func (n *noopMonitor) TargetFailed(_ core.SearchTarget, _ time.Duration, _ error)  {}
func (n *noopMonitor) Finish(_ *Result, _ time.Duration)                           {}
