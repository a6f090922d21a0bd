package metrics

import (
	"time"

	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/search"
)

// Monitor returns a search.Monitor that feeds m.
func (m *Metrics) Monitor() search.Monitor {
	return &searchMonitor{m: m}
}

type searchMonitor struct {
	m *Metrics
}

var _ search.Monitor = (*searchMonitor)(nil)

func (s *searchMonitor) Start(_ string, _ int) {
	s.m.searchesTotal.Inc()
}

func (s *searchMonitor) TargetSucceeded(target core.SearchTarget, matches int, elapsed time.Duration) {
	s.m.recordTarget(target, matches, elapsed, nil)
}

func (s *searchMonitor) TargetFailed(target core.SearchTarget, elapsed time.Duration, err error) {
	s.m.recordTarget(target, 0, elapsed, err)
}

func (s *searchMonitor) Finish(result *search.Result, elapsed time.Duration) {
	s.m.searchDuration.Observe(elapsed.Seconds())
	s.m.searchRows.Observe(float64(len(result.Rows)))
}
