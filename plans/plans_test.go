package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHierarchyMatchesCatalog(t *testing.T) {
	assert.Len(t, Hierarchy, len(Catalog))
	for _, name := range Hierarchy {
		_, ok := Catalog[name]
		assert.True(t, ok, "hierarchy entry %q missing from catalog", name)
	}
}

func TestHierarchyIndex(t *testing.T) {
	assert.Equal(t, 0, HierarchyIndex(PlanBasic))
	assert.Equal(t, 4, HierarchyIndex(PlanTradersPlatinum))
	assert.Equal(t, -1, HierarchyIndex("Diamond"))
	assert.Equal(t, -1, HierarchyIndex(""))
}

func TestIsUpgrade(t *testing.T) {
	assert.True(t, IsUpgrade(PlanBasic, PlanTradersSilver))
	assert.True(t, IsUpgrade("", PlanBasic), "any plan upgrades from no plan")
	assert.False(t, IsUpgrade(PlanTradersGold, PlanBasic))
	assert.False(t, IsUpgrade(PlanTradersGold, PlanTradersGold), "same tier is not an upgrade")
	assert.False(t, IsUpgrade(PlanBasic, "Diamond"))
}

func TestIsValidRenewal(t *testing.T) {
	assert.True(t, IsValidRenewal(PlanTradersGold, PlanTradersGold), "same tier renews")
	assert.True(t, IsValidRenewal(PlanBasic, PlanTradersPlatinum), "renewing onto a higher tier is allowed")
	assert.False(t, IsValidRenewal(PlanTradersGold, PlanBasic), "renewal cannot downgrade")
	assert.False(t, IsValidRenewal(PlanBasic, "Diamond"))
}

func TestUpgradesFrom(t *testing.T) {
	assert.Equal(t, []string{PlanPrivateGold, PlanTradersSilver, PlanTradersGold, PlanTradersPlatinum}, UpgradesFrom(PlanBasic))
	assert.Equal(t, Hierarchy, UpgradesFrom(""))
	assert.Equal(t, []string{}, UpgradesFrom(PlanTradersPlatinum))
}

func TestRenewalsFrom(t *testing.T) {
	assert.Equal(t, []string{PlanTradersPlatinum}, RenewalsFrom(PlanTradersPlatinum))
	assert.Equal(t, []string{PlanTradersGold, PlanTradersPlatinum}, RenewalsFrom(PlanTradersGold))
}

func TestRolloverTokens(t *testing.T) {
	// 10 total, 3 used, new plan grants 15: the 7 left over carry forward
	assert.Equal(t, 22, RolloverTokens(10, 3, 15))
	// fully spent plans get just the new allocation
	assert.Equal(t, 25, RolloverTokens(5, 5, 25))
	// over-spent counters never roll negative
	assert.Equal(t, 25, RolloverTokens(5, 9, 25))
	// first purchase starts from zero
	assert.Equal(t, 5, RolloverTokens(0, 0, 5))
}
