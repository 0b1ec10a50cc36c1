package economics

import (
	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// DropPolicy is the canonical reward configuration for a drop type.
type DropPolicy struct {
	RequiresProof   bool `json:"requires_proof"`
	IsPaidEntry     bool `json:"is_paid_entry"`
	GemPoolRequired bool `json:"gem_pool_required"`
}

// PolicyTable maps each drop type to its policy, plus the minimum pool
// enforced on paid and pool-required drops.
type PolicyTable struct {
	Policies   map[model.DropType]DropPolicy
	MinGemPool amount.Gems
}

// minGemPoolTenths is 100 gems.
const minGemPoolTenths = 1000

// DefaultPolicies returns the production policy table. Proof drops pay out
// manually after review; every paid-entry type requires a gem pool of at
// least 100 gems.
func DefaultPolicies() PolicyTable {
	minPool, _ := amount.NewGems(minGemPoolTenths)
	proof := DropPolicy{RequiresProof: true}
	paid := DropPolicy{IsPaidEntry: true, GemPoolRequired: true}
	return PolicyTable{
		Policies: map[model.DropType]DropPolicy{
			model.DropTypeContentCreation:   proof,
			model.DropTypeContentClipping:   proof,
			model.DropTypeReviews:           proof,
			model.DropTypeEngagement:        paid,
			model.DropTypeAffiliateReferral: paid,
			model.DropTypeSurveys:           paid,
		},
		MinGemPool: minPool,
	}
}

// Lookup returns the policy for dropType.
func (t PolicyTable) Lookup(dropType model.DropType) (DropPolicy, bool) {
	p, ok := t.Policies[dropType]
	return p, ok
}
