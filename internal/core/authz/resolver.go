package authz

import (
	"dukkan/internal/core/apperror"
)

// Actor is the identity a decision is made for.
type Actor struct {
	Username string
	Role     string
}

// ActionSet is a set of actions keyed for O(1) membership checks.
type ActionSet map[Action]struct{}

// SectionSet is a set of sections.
type SectionSet map[Section]struct{}

// NewActionSet builds an ActionSet from a list.
func NewActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// NewSectionSet builds a SectionSet from a list.
func NewSectionSet(sections ...Section) SectionSet {
	s := make(SectionSet, len(sections))
	for _, sec := range sections {
		s[sec] = struct{}{}
	}
	return s
}

// Config is the full authorization state the resolver decides over.
// It is an explicit value passed into every call, not ambient global state.
// The store loader rebuilds it on every permission mutation.
type Config struct {
	// SuperAdmin is the reserved identity that bypasses every rule.
	SuperAdmin string

	// GlobalLock revokes all actions platform-wide except for exempt roles.
	GlobalLock bool

	// ExemptRoles are roles unaffected by GlobalLock (system administrators).
	ExemptRoles map[string]struct{}

	// Administrative hide-lists. Hidden actions/sections cannot be re-granted
	// by overrides.
	RoleHiddenActions  map[string]ActionSet
	RoleHiddenSections map[string]SectionSet
	UserHiddenActions  map[string]ActionSet
	UserHiddenSections map[string]SectionSet

	// Explicit overrides: allow or deny a specific action. User-level
	// overrides take precedence over role-level ones.
	UserOverrides map[string]map[Action]bool
	RoleOverrides map[string]map[Action]bool
}

// NewConfig returns an empty default-allow configuration.
func NewConfig() *Config {
	return &Config{
		ExemptRoles:        make(map[string]struct{}),
		RoleHiddenActions:  make(map[string]ActionSet),
		RoleHiddenSections: make(map[string]SectionSet),
		UserHiddenActions:  make(map[string]ActionSet),
		UserHiddenSections: make(map[string]SectionSet),
		UserOverrides:      make(map[string]map[Action]bool),
		RoleOverrides:      make(map[string]map[Action]bool),
	}
}

// IsAllowed decides whether actor may perform action.
//
// Resolution order, first matching rule wins, else default allow:
//  1. super-admin identity always allowed
//  2. global lock denies everything for non-exempt roles
//  3. role hidden-actions deny
//  4. role hidden-sections deny
//  5. user hidden-actions deny
//  6. user hidden-sections deny
//  7. explicit user override (allow or deny)
//  8. explicit role override (allow or deny)
//  9. default allow
//
// Coarse platform lock > hide-lists > explicit overrides > default allow:
// overrides can re-grant what a hide-list does not cover, but cannot bypass
// the global lock.
func (c *Config) IsAllowed(actor Actor, action Action) bool {
	if actor.Username == c.SuperAdmin && c.SuperAdmin != "" {
		return true
	}

	if c.GlobalLock {
		if _, exempt := c.ExemptRoles[actor.Role]; !exempt {
			return false
		}
	}

	section, hasSection := SectionOf(action)

	if set, ok := c.RoleHiddenActions[actor.Role]; ok {
		if _, hidden := set[action]; hidden {
			return false
		}
	}
	if hasSection {
		if set, ok := c.RoleHiddenSections[actor.Role]; ok {
			if _, hidden := set[section]; hidden {
				return false
			}
		}
	}

	if set, ok := c.UserHiddenActions[actor.Username]; ok {
		if _, hidden := set[action]; hidden {
			return false
		}
	}
	if hasSection {
		if set, ok := c.UserHiddenSections[actor.Username]; ok {
			if _, hidden := set[section]; hidden {
				return false
			}
		}
	}

	if overrides, ok := c.UserOverrides[actor.Username]; ok {
		if allowed, ok := overrides[action]; ok {
			return allowed
		}
	}

	if overrides, ok := c.RoleOverrides[actor.Role]; ok {
		if allowed, ok := overrides[action]; ok {
			return allowed
		}
	}

	return true
}

// Guard returns a typed error when actor may not perform action.
// Services call Guard before opening any ledger transaction.
func (c *Config) Guard(actor Actor, action Action) error {
	if !c.IsAllowed(actor, action) {
		return apperror.NewAuthorizationDenied(string(action)).
			WithDetail("username", actor.Username).
			WithDetail("role", actor.Role)
	}
	return nil
}
