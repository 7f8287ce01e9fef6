// Package authz_repo loads the authorization configuration from PostgreSQL.
package authz_repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dukkan/internal/core/authz"
	"dukkan/internal/infrastructure/storage/postgres"
	"dukkan/pkg/logger"
)

// Compile-time check that Provider implements authz.Provider.
var _ authz.Provider = (*Provider)(nil)

// Provider loads the authorization configuration from the store and caches it.
// Permission tables change rarely; every mutation path calls Reload so the
// cache never serves stale rules for longer than the TTL.
type Provider struct {
	txm *postgres.TxManager

	mu       sync.RWMutex
	cfg      *authz.Config
	loadedAt time.Time

	// ttl bounds staleness when a mutation path forgets to call Reload.
	ttl time.Duration
}

// NewProvider creates a store-backed authorization provider.
func NewProvider(txm *postgres.TxManager) *Provider {
	return &Provider{
		txm: txm,
		ttl: 5 * time.Minute,
	}
}

// Current returns the cached configuration, loading it when missing or stale.
func (p *Provider) Current(ctx context.Context) (*authz.Config, error) {
	p.mu.RLock()
	cfg, loadedAt := p.cfg, p.loadedAt
	p.mu.RUnlock()

	if cfg != nil && time.Since(loadedAt) < p.ttl {
		return cfg, nil
	}
	return p.load(ctx)
}

// Reload forces a fresh load on the next Current call.
func (p *Provider) Reload(ctx context.Context) error {
	_, err := p.load(ctx)
	return err
}

func (p *Provider) load(ctx context.Context) (*authz.Config, error) {
	cfg := authz.NewConfig()

	if err := p.loadSettings(ctx, cfg); err != nil {
		return nil, err
	}
	if err := p.loadRoleRules(ctx, cfg); err != nil {
		return nil, err
	}
	if err := p.loadUserRules(ctx, cfg); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.loadedAt = time.Now()
	p.mu.Unlock()

	logger.Debug(ctx, "authorization config loaded",
		"global_lock", cfg.GlobalLock,
		"roles", len(cfg.RoleOverrides),
	)
	return cfg, nil
}

// loadSettings reads the platform-wide switches: super-admin identity,
// global lock flag and lock-exempt roles.
func (p *Provider) loadSettings(ctx context.Context, cfg *authz.Config) error {
	querier := p.txm.GetQuerier(ctx)

	err := querier.QueryRow(ctx,
		`SELECT super_admin, global_lock FROM authz_settings WHERE id = 1`,
	).Scan(&cfg.SuperAdmin, &cfg.GlobalLock)
	if err != nil {
		return postgres.MapError(fmt.Errorf("load authz settings: %w", err))
	}

	rows, err := querier.Query(ctx, `SELECT role FROM authz_exempt_roles`)
	if err != nil {
		return postgres.MapError(fmt.Errorf("load exempt roles: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return fmt.Errorf("scan exempt role: %w", err)
		}
		cfg.ExemptRoles[role] = struct{}{}
	}
	return rows.Err()
}

// loadRoleRules reads role hide-lists and role overrides.
func (p *Provider) loadRoleRules(ctx context.Context, cfg *authz.Config) error {
	querier := p.txm.GetQuerier(ctx)

	rows, err := querier.Query(ctx,
		`SELECT role, rule_type, action, section, allowed FROM authz_role_rules`)
	if err != nil {
		return postgres.MapError(fmt.Errorf("load role rules: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, ruleType  string
			action, section *string
			allowed         *bool
		)
		if err := rows.Scan(&role, &ruleType, &action, &section, &allowed); err != nil {
			return fmt.Errorf("scan role rule: %w", err)
		}

		switch ruleType {
		case "hidden_action":
			if action == nil {
				continue
			}
			set, ok := cfg.RoleHiddenActions[role]
			if !ok {
				set = authz.NewActionSet()
				cfg.RoleHiddenActions[role] = set
			}
			set[authz.Action(*action)] = struct{}{}
		case "hidden_section":
			if section == nil {
				continue
			}
			set, ok := cfg.RoleHiddenSections[role]
			if !ok {
				set = authz.NewSectionSet()
				cfg.RoleHiddenSections[role] = set
			}
			set[authz.Section(*section)] = struct{}{}
		case "override":
			if action == nil || allowed == nil {
				continue
			}
			overrides, ok := cfg.RoleOverrides[role]
			if !ok {
				overrides = make(map[authz.Action]bool)
				cfg.RoleOverrides[role] = overrides
			}
			overrides[authz.Action(*action)] = *allowed
		}
	}
	return rows.Err()
}

// loadUserRules reads user hide-lists and user overrides.
func (p *Provider) loadUserRules(ctx context.Context, cfg *authz.Config) error {
	querier := p.txm.GetQuerier(ctx)

	rows, err := querier.Query(ctx,
		`SELECT username, rule_type, action, section, allowed FROM authz_user_rules`)
	if err != nil {
		return postgres.MapError(fmt.Errorf("load user rules: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			username, ruleType string
			action, section    *string
			allowed            *bool
		)
		if err := rows.Scan(&username, &ruleType, &action, &section, &allowed); err != nil {
			return fmt.Errorf("scan user rule: %w", err)
		}

		switch ruleType {
		case "hidden_action":
			if action == nil {
				continue
			}
			set, ok := cfg.UserHiddenActions[username]
			if !ok {
				set = authz.NewActionSet()
				cfg.UserHiddenActions[username] = set
			}
			set[authz.Action(*action)] = struct{}{}
		case "hidden_section":
			if section == nil {
				continue
			}
			set, ok := cfg.UserHiddenSections[username]
			if !ok {
				set = authz.NewSectionSet()
				cfg.UserHiddenSections[username] = set
			}
			set[authz.Section(*section)] = struct{}{}
		case "override":
			if action == nil || allowed == nil {
				continue
			}
			overrides, ok := cfg.UserOverrides[username]
			if !ok {
				overrides = make(map[authz.Action]bool)
				cfg.UserOverrides[username] = overrides
			}
			overrides[authz.Action(*action)] = *allowed
		}
	}
	return rows.Err()
}
