package platform

import (
	"fmt"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// Registry holds the configured portal adapters keyed by platform.
type Registry struct {
	adapters map[model.Platform]core.PlatformAdapter
}

// NewRegistry builds a registry from the given adapters. Registering two
// adapters for the same platform is a configuration error.
func NewRegistry(adapters ...core.PlatformAdapter) (*Registry, error) {
	m := make(map[model.Platform]core.PlatformAdapter, len(adapters))
	for _, a := range adapters {
		p := a.Platform()
		if !p.Valid() {
			return nil, fmt.Errorf("adapter reports unknown platform %q", p)
		}
		if _, dup := m[p]; dup {
			return nil, fmt.Errorf("duplicate adapter for platform %s", p)
		}
		m[p] = a
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("at least one adapter is required")
	}
	return &Registry{adapters: m}, nil
}

// Get returns the adapter for the platform, or an error when none is registered.
func (r *Registry) Get(p model.Platform) (core.PlatformAdapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %s", p)
	}
	return a, nil
}

// All returns the adapter map, keyed by platform.
func (r *Registry) All() map[model.Platform]core.PlatformAdapter {
	out := make(map[model.Platform]core.PlatformAdapter, len(r.adapters))
	for p, a := range r.adapters {
		out[p] = a
	}
	return out
}

// Platforms returns the registered platform identifiers.
func (r *Registry) Platforms() []model.Platform {
	out := make([]model.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}
