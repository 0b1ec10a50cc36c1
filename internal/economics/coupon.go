package economics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

var (
	hundred = decimal.NewFromInt(100)

	// maxFixedDiscount is the first value NUMERIC(12,2) cannot hold.
	maxFixedDiscount = decimal.New(1, 10)
)

// BuildCoupon validates a coupon draft.
func BuildCoupon(draft model.CouponDraft) (model.Coupon, Violations) {
	var vs Violations

	vs = checkTitle(vs, "title", draft.Title)
	vs = append(vs, checkDiscount(draft.DiscountType, draft.DiscountValue)...)
	vs = checkQuantity(vs, draft.QuantityTotal)

	if len(vs) > 0 {
		return model.Coupon{}, vs
	}
	return model.Coupon{
		Title:         strings.TrimSpace(draft.Title),
		DiscountType:  draft.DiscountType,
		DiscountValue: draft.DiscountValue,
		QuantityTotal: draft.QuantityTotal,
	}, nil
}

func checkDiscount(t model.DiscountType, value decimal.Decimal) Violations {
	var vs Violations
	switch t {
	case "":
		vs = vs.add("discount_type", CodeMissingRequiredField, "discount type is required")
	case model.DiscountPercent:
		if !value.IsPositive() || value.GreaterThan(hundred) || !value.Equal(value.Truncate(2)) {
			vs = vs.add("discount_value", CodeInvalidDiscount, "percent discount must be greater than 0 and at most 100")
		}
	case model.DiscountFixed:
		m, err := amount.MoneyFromDecimal(value, amount.CurrencyUSD)
		switch {
		case err != nil || m.IsZero():
			vs = vs.add("discount_value", CodeInvalidDiscount, "fixed discount must be a positive USD amount with at most two decimals")
		case !value.LessThan(maxFixedDiscount):
			vs = vs.add("discount_value", CodeInvalidDiscount, "fixed discount must be below %s", maxFixedDiscount)
		}
	case model.DiscountFreebie:
		if !value.IsZero() {
			vs = vs.add("discount_value", CodeInvalidDiscount, "freebie coupons carry no discount value")
		}
	default:
		vs = vs.add("discount_type", CodeInvalidDiscount, "discount type must be percent, fixed or freebie")
	}
	return vs
}

func checkCoupon(c model.Coupon) Violations {
	var vs Violations
	vs = checkTitle(vs, "title", c.Title)
	vs = append(vs, checkDiscount(c.DiscountType, c.DiscountValue)...)
	vs = checkQuantity(vs, c.QuantityTotal)
	if c.QuantityClaimed < 0 {
		vs = vs.add("quantity_claimed", CodeInvalidQuantity, "claimed quantity cannot be negative")
	} else if c.QuantityClaimed > c.QuantityTotal {
		vs = vs.add("quantity_claimed", CodeQuantityExceeded, "claimed %d of %d", c.QuantityClaimed, c.QuantityTotal)
	}
	return vs
}

func checkQuantity(vs Violations, total int) Violations {
	switch {
	case total < 1:
		return vs.add("quantity_total", CodeInvalidQuantity, "quantity must be at least 1")
	case total > MaxCount:
		return vs.add("quantity_total", CodeInvalidQuantity, "quantity must be at most %d", MaxCount)
	}
	return vs
}

// ClaimCoupon returns c with one more claim, or an *InvariantError wrapping
// ErrQuantityExceeded when nothing is left.
func ClaimCoupon(c model.Coupon) (model.Coupon, error) {
	if c.Remaining() == 0 {
		return c, &InvariantError{
			Err:       ErrQuantityExceeded,
			Attempted: "1",
			Available: strconv.Itoa(c.Remaining()),
		}
	}
	c.QuantityClaimed++
	return c, nil
}
