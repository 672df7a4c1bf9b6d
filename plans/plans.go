package plans

// Plan tier names. Hierarchy position, not price, determines which
// transitions are legal: Basic and Private Gold share a price but occupy
// different positions (tiering by validity and terms).
const (
	PlanBasic           = "Basic"
	PlanPrivateGold     = "Private Gold"
	PlanTradersSilver   = "Traders Silver"
	PlanTradersGold     = "Traders Gold"
	PlanTradersPlatinum = "Traders Platinum"
)

// Hierarchy lists the plan tiers in strictly ascending order
var Hierarchy = []string{
	PlanBasic,
	PlanPrivateGold,
	PlanTradersSilver,
	PlanTradersGold,
	PlanTradersPlatinum,
}

// Plan describes a purchasable tier
type Plan struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Tokens       int     `json:"tokens"`
	ValidityDays int     `json:"validityDays"`
}

// Catalog maps plan name to its terms
var Catalog = map[string]Plan{
	PlanBasic:           {Name: PlanBasic, Price: 9.99, Tokens: 5, ValidityDays: 30},
	PlanPrivateGold:     {Name: PlanPrivateGold, Price: 9.99, Tokens: 10, ValidityDays: 60},
	PlanTradersSilver:   {Name: PlanTradersSilver, Price: 49.99, Tokens: 25, ValidityDays: 30},
	PlanTradersGold:     {Name: PlanTradersGold, Price: 99.99, Tokens: 50, ValidityDays: 60},
	PlanTradersPlatinum: {Name: PlanTradersPlatinum, Price: 199.99, Tokens: 100, ValidityDays: 90},
}

// ByName looks a plan up in the catalog
func ByName(name string) (Plan, bool) {
	p, ok := Catalog[name]
	return p, ok
}

// HierarchyIndex returns the tier position of name, or -1 when the plan is
// unknown or absent. The -1 makes any known plan count as an upgrade from
// no plan at all.
func HierarchyIndex(name string) int {
	for i, n := range Hierarchy {
		if n == name {
			return i
		}
	}
	return -1
}

// IsUpgrade reports whether target sits strictly above current in the
// hierarchy
func IsUpgrade(current, target string) bool {
	return HierarchyIndex(target) > HierarchyIndex(current)
}

// IsValidRenewal reports whether target sits at or above current in the
// hierarchy. Same-tier renewal is permitted; downgrading via renewal is not.
func IsValidRenewal(current, target string) bool {
	targetIdx := HierarchyIndex(target)
	if targetIdx < 0 {
		return false
	}
	return targetIdx >= HierarchyIndex(current)
}

// UpgradesFrom returns the plans strictly above current
func UpgradesFrom(current string) []string {
	out := []string{}
	for _, name := range Hierarchy {
		if IsUpgrade(current, name) {
			out = append(out, name)
		}
	}
	return out
}

// RenewalsFrom returns the plans at or above current
func RenewalsFrom(current string) []string {
	out := []string{}
	for _, name := range Hierarchy {
		if IsValidRenewal(current, name) {
			out = append(out, name)
		}
	}
	return out
}

// RolloverTokens computes the total after a plan change: unused tokens roll
// forward into the new allocation, and the used counter resets to zero.
func RolloverTokens(oldTotal, oldUsed, allocation int) int {
	remaining := oldTotal - oldUsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining + allocation
}
