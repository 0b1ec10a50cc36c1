package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
)

// DropType is the kind of task a drop asks creators to complete.
type DropType string

const (
	DropTypeContentCreation   DropType = "content_creation"
	DropTypeContentClipping   DropType = "content_clipping"
	DropTypeEngagement        DropType = "engagement"
	DropTypeReviews           DropType = "reviews"
	DropTypeAffiliateReferral DropType = "affiliate_referral"
	DropTypeSurveys           DropType = "surveys"
)

// Difficulty grades how much effort a drop takes.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Drop is a validated task definition.
type Drop struct {
	ID                  string      `json:"id"`
	CampaignID          string      `json:"campaign_id,omitempty"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	DropType            DropType    `json:"drop_type"`
	Difficulty          Difficulty  `json:"difficulty"`
	RequiresProof       bool        `json:"requires_proof"`
	IsPaidEntry         bool        `json:"is_paid_entry"`
	MaxParticipants     int         `json:"max_participants"`
	CurrentParticipants int         `json:"current_participants"`
	GemRewardBase       amount.Gems `json:"gem_reward_base"`
	GemPoolTotal        amount.Gems `json:"gem_pool_total"`
	GemPoolRemaining    amount.Gems `json:"gem_pool_remaining"`
	KeyCost             amount.Keys `json:"key_cost"`
	FollowerThreshold   int         `json:"follower_threshold"`
	DeadlineDays        int         `json:"deadline_days"`
	Deadline            *time.Time  `json:"deadline,omitempty"` // set when the drop goes active
	Status              DropStatus  `json:"status"`
	CreatedAt           time.Time   `json:"-"`
}

// IsFull reports whether every participant slot is taken.
func (d Drop) IsFull() bool {
	return d.CurrentParticipants >= d.MaxParticipants
}

// PastDeadline reports whether now is after the drop's deadline.
// Drops without a deadline never expire.
func (d Drop) PastDeadline(now time.Time) bool {
	return d.Deadline != nil && now.After(*d.Deadline)
}

// Draft converts the drop back into the input form so it can be re-validated.
func (d Drop) Draft() DropDraft {
	return DropDraft{
		Title:             d.Title,
		Description:       d.Description,
		DropType:          d.DropType,
		Difficulty:        d.Difficulty,
		RequiresProof:     d.RequiresProof,
		IsPaidEntry:       d.IsPaidEntry,
		MaxParticipants:   d.MaxParticipants,
		GemRewardBase:     d.GemRewardBase.Decimal(),
		GemPoolTotal:      d.GemPoolTotal.Decimal(),
		KeyCost:           d.KeyCost.Count(),
		DeadlineDays:      d.DeadlineDays,
		FollowerThreshold: d.FollowerThreshold,
	}
}

// DropDraft is the unvalidated drop definition submitted by an advertiser.
// Numeric fields are kept raw so every problem can be reported at once.
type DropDraft struct {
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	DropType          DropType        `json:"drop_type"`
	Difficulty        Difficulty      `json:"difficulty"`
	RequiresProof     bool            `json:"requires_proof"`
	IsPaidEntry       bool            `json:"is_paid_entry"`
	MaxParticipants   int             `json:"max_participants"`
	GemRewardBase     decimal.Decimal `json:"gem_reward_base"`
	GemPoolTotal      decimal.Decimal `json:"gem_pool_total"`
	KeyCost           int64           `json:"key_cost"`
	DeadlineDays      int             `json:"deadline_days"`
	FollowerThreshold int             `json:"follower_threshold"`
}
