package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const gemPlaces = 1

// Gems is a non-negative gem amount stored as tenths of a gem.
type Gems struct {
	tenths int64
}

// NewGems creates a gem amount from tenths (25 tenths = 2.5 gems).
func NewGems(tenths int64) (Gems, error) {
	if tenths < 0 {
		return Gems{}, fmt.Errorf("%w: negative gems %d", ErrInvalidAmount, tenths)
	}
	return Gems{tenths: tenths}, nil
}

// WholeGems creates a gem amount from a whole number of gems.
func WholeGems(n int64) (Gems, error) {
	tenths, err := mulChecked(n, 10)
	if err != nil || n < 0 {
		return Gems{}, fmt.Errorf("%w: %d gems", ErrInvalidAmount, n)
	}
	return Gems{tenths: tenths}, nil
}

// GemsFromDecimal converts a gem count with at most one decimal place.
func GemsFromDecimal(d decimal.Decimal) (Gems, error) {
	tenths, err := minorUnits(d, gemPlaces)
	if err != nil {
		return Gems{}, err
	}
	return Gems{tenths: tenths}, nil
}

// ParseGems parses a string such as "2.5".
func ParseGems(s string) (Gems, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Gems{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return GemsFromDecimal(d)
}

// Tenths returns the raw fixed-point value.
func (g Gems) Tenths() int64 { return g.tenths }

// IsZero reports whether the amount is zero.
func (g Gems) IsZero() bool { return g.tenths == 0 }

// Decimal returns the gem count as a decimal.
func (g Gems) Decimal() decimal.Decimal { return decimal.New(g.tenths, -gemPlaces) }

func (g Gems) String() string { return g.Decimal().String() }

// Add returns g + o.
func (g Gems) Add(o Gems) (Gems, error) {
	t, err := addChecked(g.tenths, o.tenths)
	if err != nil {
		return g, err
	}
	return Gems{tenths: t}, nil
}

// Sub returns g - o, or ErrInsufficientAmount if o > g.
func (g Gems) Sub(o Gems) (Gems, error) {
	t, err := subChecked(g.tenths, o.tenths)
	if err != nil {
		return g, fmt.Errorf("subtract %s gems from %s: %w", o, g, err)
	}
	return Gems{tenths: t}, nil
}

// Mul returns g * n for a non-negative scalar.
func (g Gems) Mul(n int64) (Gems, error) {
	t, err := mulChecked(g.tenths, n)
	if err != nil {
		return g, err
	}
	return Gems{tenths: t}, nil
}

// Cmp compares g and o: -1, 0 or +1.
func (g Gems) Cmp(o Gems) int { return cmpInt64(g.tenths, o.tenths) }

// LessThan reports g < o.
func (g Gems) LessThan(o Gems) bool { return g.tenths < o.tenths }

// MarshalJSON encodes as a JSON number, e.g. 2.5.
func (g Gems) MarshalJSON() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (g *Gems) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := GemsFromDecimal(d)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
