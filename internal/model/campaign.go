package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
)

// Campaign is an advertiser's funding envelope bundling drops, content and coupons.
// Operations on a Campaign return a new value; the slices are never modified in place.
type Campaign struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Status                 CampaignStatus `json:"status"`
	TotalBudget            amount.Money   `json:"total_budget"`
	BudgetSpent            amount.Money   `json:"budget_spent"`
	ReservedGems           amount.Gems    `json:"reserved_gems"` // required budget locked in at publish
	PromoshareContribution amount.Gems    `json:"promoshare_contribution"`
	StartDate              time.Time      `json:"start_date"`
	EndDate                *time.Time     `json:"end_date,omitempty"`
	Drops                  []Drop         `json:"drops"`
	ContentItems           []ContentItem  `json:"content_items"`
	Coupons                []Coupon       `json:"coupons"`
	CreatedAt              time.Time      `json:"-"`
	UpdatedAt              time.Time      `json:"-"`
}

// Ended reports whether the campaign's end date has passed.
func (c Campaign) Ended(now time.Time) bool {
	return c.EndDate != nil && now.After(*c.EndDate)
}

// CampaignDraft is the submitted composition of a new campaign.
type CampaignDraft struct {
	Name                   string             `json:"name" validate:"required,notblank,max=255"`
	StartDate              time.Time          `json:"start_date" validate:"required"`
	EndDate                *time.Time         `json:"end_date"`
	Drops                  []DropDraft        `json:"drops"`
	ContentItems           []ContentItemDraft `json:"content_items"`
	Coupons                []CouponDraft      `json:"coupons"`
	PromoshareContribution decimal.Decimal    `json:"promoshare_contribution"`
}

// CampaignSummary is the API view of a campaign with its derived metrics.
type CampaignSummary struct {
	Campaign
	UtilizationPct decimal.Decimal `json:"utilization_pct"`
	Remaining      amount.Money    `json:"remaining"`
	RequiredGems   amount.Gems     `json:"required_gems"`
	GemBudget      amount.Gems     `json:"gem_budget"`
}

// Funding is one applied fund addition, keyed by the caller's idempotency key.
type Funding struct {
	IdempotencyKey string       `json:"idempotency_key"`
	CampaignID     string       `json:"campaign_id"`
	Amount         amount.Money `json:"amount"`
	CreatedAt      time.Time    `json:"created_at"`
}

// FundingResult is the outcome of a fund addition. Replayed is true when the
// idempotency key had already been applied and nothing changed.
type FundingResult struct {
	Campaign Campaign `json:"campaign"`
	Replayed bool     `json:"replayed"`
}

// BudgetEstimate compares the gems a campaign's drops can pay out with the
// gems its USD budget buys.
type BudgetEstimate struct {
	CampaignID   string      `json:"campaign_id"`
	RequiredGems amount.Gems `json:"required_gems"`
	GemBudget    amount.Gems `json:"gem_budget"`
	Sufficient   bool        `json:"sufficient"`

	// Shortfall is the USD still needed to cover RequiredGems; zero when sufficient.
	Shortfall amount.Money `json:"shortfall"`
}
