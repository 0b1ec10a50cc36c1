package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate converts a USD budget into the gems it can fund.
type Rate struct {
	centsPerGem int64
}

// NewRate creates a rate where one gem costs centsPerGem cents.
func NewRate(centsPerGem int64) (Rate, error) {
	if centsPerGem <= 0 {
		return Rate{}, fmt.Errorf("%w: cents per gem must be positive, got %d", ErrInvalidAmount, centsPerGem)
	}
	return Rate{centsPerGem: centsPerGem}, nil
}

// CentsPerGem returns the price of one gem in cents.
func (r Rate) CentsPerGem() int64 { return r.centsPerGem }

// GemsFor returns how many gems m buys, floored to a tenth of a gem.
func (r Rate) GemsFor(m Money) Gems {
	if r.centsPerGem <= 0 {
		return Gems{}
	}
	tenths := decimal.NewFromInt(m.Cents()).
		Mul(decimal.NewFromInt(10)).
		Div(decimal.NewFromInt(r.centsPerGem)).
		Floor()
	if tenths.GreaterThan(maxInt64) {
		return Gems{tenths: maxInt64.IntPart()}
	}
	return Gems{tenths: tenths.IntPart()}
}

// CostOf returns the USD needed to fund g, rounded up to the next cent.
func (r Rate) CostOf(g Gems) (Money, error) {
	cents := decimal.NewFromInt(g.Tenths()).
		Mul(decimal.NewFromInt(r.centsPerGem)).
		Div(decimal.NewFromInt(10)).
		Ceil()
	if cents.GreaterThan(maxInt64) {
		return Money{}, fmt.Errorf("%w: cost of %s gems overflows", ErrInvalidAmount, g)
	}
	return USD(cents.IntPart())
}
