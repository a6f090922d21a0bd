// Package registry holds the fixed list of columns a search fans out to.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/core"
)

// ErrConfigRequired is returned when a registry is built without a configuration.
var ErrConfigRequired = errors.New("config required")

// Registry is an immutable, ordered set of search targets.
// It is safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	targets []core.SearchTarget
}

// New builds a registry from targets, rejecting invalid or duplicate tuples.
func New(targets ...core.SearchTarget) (*Registry, error) {
	seen := make(map[core.SearchTarget]bool, len(targets))
	list := make([]core.SearchTarget, 0, len(targets))
	for _, t := range targets {
		if err := core.ValidateTarget(t); err != nil {
			return nil, err
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate %s", core.ErrInvalidTarget, t.Qualified())
		}
		seen[t] = true
		list = append(list, t)
	}
	return &Registry{targets: list}, nil
}

// FromConfig builds the registry from the configured target list.
// The configuration is validated first.
func FromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	targets := make([]core.SearchTarget, len(cfg.Targets))
	for i, t := range cfg.Targets {
		targets[i] = t.SearchTarget()
	}
	return New(targets...)
}

// List returns the targets in registration order.
// The returned slice is a copy.
func (r *Registry) List() []core.SearchTarget {
	return slices.Clone(r.targets)
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	return len(r.targets)
}

// Sources returns the distinct source ids in first-seen order.
func (r *Registry) Sources() []string {
	var ids []string
	for _, t := range r.targets {
		if !slices.Contains(ids, t.SourceID) {
			ids = append(ids, t.SourceID)
		}
	}
	return ids
}
