package model

import (
	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon discounts.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
	DiscountFreebie DiscountType = "freebie"
)

// Coupon is a discount or giveaway attached to a campaign.
type Coupon struct {
	ID              string          `json:"id"`
	CampaignID      string          `json:"campaign_id"`
	Title           string          `json:"title"`
	DiscountType    DiscountType    `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"` // percent points, or USD for fixed
	QuantityTotal   int             `json:"quantity_total"`
	QuantityClaimed int             `json:"quantity_claimed"`
}

// Remaining returns the number of unclaimed coupons.
func (c Coupon) Remaining() int {
	if c.QuantityClaimed >= c.QuantityTotal {
		return 0
	}
	return c.QuantityTotal - c.QuantityClaimed
}

// CouponDraft is the submitted definition of a coupon.
type CouponDraft struct {
	Title         string          `json:"title"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	QuantityTotal int             `json:"quantity_total"`
}
