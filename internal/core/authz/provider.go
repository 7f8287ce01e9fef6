package authz

import (
	"context"
	"sync"
)

// Provider supplies the current authorization configuration.
// Abstraction allows different backends: postgres-loaded, in-memory, etc.
type Provider interface {
	// Current returns the configuration to resolve against.
	Current(ctx context.Context) (*Config, error)

	// Reload forces the next Current call to see fresh state.
	// Called after any mutation to roles, overrides or hide-lists.
	Reload(ctx context.Context) error
}

// StaticProvider wraps a fixed Config. Suitable for tests and tooling.
type StaticProvider struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStaticProvider creates a provider over the given config.
func NewStaticProvider(cfg *Config) *StaticProvider {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &StaticProvider{cfg: cfg}
}

func (p *StaticProvider) Current(ctx context.Context) (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg, nil
}

func (p *StaticProvider) Reload(ctx context.Context) error {
	return nil
}

// Set replaces the config (for tests/admin tooling).
func (p *StaticProvider) Set(cfg *Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}
