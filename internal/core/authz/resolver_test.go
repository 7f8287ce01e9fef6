package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	cfg := NewConfig()
	cfg.SuperAdmin = "root"
	cfg.ExemptRoles["sysadmin"] = struct{}{}
	return cfg
}

func TestIsAllowed_DefaultAllow(t *testing.T) {
	cfg := baseConfig()
	assert.True(t, cfg.IsAllowed(Actor{Username: "kasim", Role: "cashier"}, ActionProcessSale))
}

func TestIsAllowed_SuperAdminBypassesEverything(t *testing.T) {
	cfg := baseConfig()
	cfg.GlobalLock = true
	cfg.UserHiddenActions["root"] = NewActionSet(ActionProcessSale)
	cfg.UserOverrides["root"] = map[Action]bool{ActionProcessSale: false}

	assert.True(t, cfg.IsAllowed(Actor{Username: "root", Role: "cashier"}, ActionProcessSale))
}

func TestIsAllowed_GlobalLock(t *testing.T) {
	cfg := baseConfig()
	cfg.GlobalLock = true

	// Even an explicit allow override is denied under the global lock.
	cfg.UserOverrides["kasim"] = map[Action]bool{ActionProcessSale: true}

	actor := Actor{Username: "kasim", Role: "cashier"}
	assert.False(t, cfg.IsAllowed(actor, ActionProcessSale))
	assert.False(t, cfg.IsAllowed(actor, ActionOpenShift))

	// Exempt roles keep working.
	admin := Actor{Username: "amira", Role: "sysadmin"}
	assert.True(t, cfg.IsAllowed(admin, ActionProcessSale))
}

func TestIsAllowed_HideListsBeatOverrides(t *testing.T) {
	cfg := baseConfig()
	cfg.RoleHiddenActions["cashier"] = NewActionSet(ActionDeleteSale)
	cfg.UserOverrides["kasim"] = map[Action]bool{ActionDeleteSale: true}

	// An override cannot re-grant a hidden action.
	assert.False(t, cfg.IsAllowed(Actor{Username: "kasim", Role: "cashier"}, ActionDeleteSale))
}

func TestIsAllowed_SectionGating(t *testing.T) {
	cfg := baseConfig()
	cfg.RoleHiddenSections["cashier"] = NewSectionSet(SectionPurchases)

	actor := Actor{Username: "kasim", Role: "cashier"}
	assert.False(t, cfg.IsAllowed(actor, ActionProcessPurchase))
	assert.False(t, cfg.IsAllowed(actor, ActionDeletePurchase))
	assert.True(t, cfg.IsAllowed(actor, ActionProcessSale))

	cfg.UserHiddenSections["kasim"] = NewSectionSet(SectionShifts)
	assert.False(t, cfg.IsAllowed(actor, ActionOpenShift))
}

func TestIsAllowed_UserOverrideBeatsRoleOverride(t *testing.T) {
	cfg := baseConfig()
	cfg.RoleOverrides["cashier"] = map[Action]bool{ActionProcessSalesReturn: false}
	cfg.UserOverrides["kasim"] = map[Action]bool{ActionProcessSalesReturn: true}

	// User-level explicit allow wins over role-level deny.
	assert.True(t, cfg.IsAllowed(Actor{Username: "kasim", Role: "cashier"}, ActionProcessSalesReturn))

	// Other cashiers stay denied by the role override.
	assert.False(t, cfg.IsAllowed(Actor{Username: "nadia", Role: "cashier"}, ActionProcessSalesReturn))
}

func TestIsAllowed_RoleOverrideDeny(t *testing.T) {
	cfg := baseConfig()
	cfg.RoleOverrides["viewer"] = map[Action]bool{ActionProcessSale: false}

	assert.False(t, cfg.IsAllowed(Actor{Username: "zaid", Role: "viewer"}, ActionProcessSale))
	assert.True(t, cfg.IsAllowed(Actor{Username: "zaid", Role: "viewer"}, ActionViewLowStock))
}

func TestGuard(t *testing.T) {
	cfg := baseConfig()
	cfg.RoleHiddenActions["cashier"] = NewActionSet(ActionDeleteSale)

	actor := Actor{Username: "kasim", Role: "cashier"}
	assert.NoError(t, cfg.Guard(actor, ActionProcessSale))

	err := cfg.Guard(actor, ActionDeleteSale)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "AUTHORIZATION_DENIED")
}

func TestSectionOf_AllActionsRegistered(t *testing.T) {
	for _, a := range Actions() {
		_, ok := SectionOf(a)
		assert.True(t, ok, "action %s has no section", a)
	}
}
