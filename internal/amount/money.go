package amount

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency is a three-letter upper-case currency code.
type Currency string

// CurrencyUSD is the only currency campaigns are funded in today.
const CurrencyUSD Currency = "USD"

// Valid reports whether c looks like an ISO-4217 code.
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

const centsPlaces = 2

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// Money is a non-negative amount in integer minor units (cents).
// The zero value is 0 USD.
type Money struct {
	cents    int64
	currency Currency
}

// NewMoney creates Money from minor units.
func NewMoney(cents int64, currency Currency) (Money, error) {
	if cents < 0 {
		return Money{}, fmt.Errorf("%w: negative money %d", ErrInvalidAmount, cents)
	}
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidAmount, currency)
	}
	return Money{cents: cents, currency: currency}, nil
}

// USD creates a USD amount from cents.
func USD(cents int64) (Money, error) {
	return NewMoney(cents, CurrencyUSD)
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// MoneyFromDecimal converts a major-unit decimal (12.50) into Money.
// More than two decimal places is rejected rather than rounded.
func MoneyFromDecimal(d decimal.Decimal, currency Currency) (Money, error) {
	cents, err := minorUnits(d, centsPlaces)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(cents, currency)
}

// ParseMoney parses a major-unit string such as "12.50".
func ParseMoney(s string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d, currency)
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return m.cents }

// Currency returns the currency tag, USD for the zero value.
func (m Money) Currency() Currency {
	if m.currency == "" {
		return CurrencyUSD
	}
	return m.currency
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.cents == 0 }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -centsPlaces) }

func (m Money) String() string {
	return m.Decimal().StringFixed(centsPlaces) + " " + string(m.Currency())
}

func (m Money) sameCurrency(o Money) error {
	if m.Currency() != o.Currency() {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency(), o.Currency())
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return m, err
	}
	cents, err := addChecked(m.cents, o.cents)
	if err != nil {
		return m, err
	}
	return Money{cents: cents, currency: m.Currency()}, nil
}

// Sub returns m - o, or ErrInsufficientAmount if o > m.
func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return m, err
	}
	cents, err := subChecked(m.cents, o.cents)
	if err != nil {
		return m, fmt.Errorf("subtract %s from %s: %w", o, m, err)
	}
	return Money{cents: cents, currency: m.Currency()}, nil
}

// Mul returns m * n for a non-negative scalar.
func (m Money) Mul(n int64) (Money, error) {
	cents, err := mulChecked(m.cents, n)
	if err != nil {
		return m, err
	}
	return Money{cents: cents, currency: m.Currency()}, nil
}

// Cmp compares m and o: -1, 0 or +1.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return cmpInt64(m.cents, o.cents), nil
}

// LessThan reports m < o.
func (m Money) LessThan(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c < 0, err
}

// Equal reports whether both amount and currency match. Amounts in different
// currencies are never equal; unlike Cmp it does not return ErrCurrencyMismatch.
func (m Money) Equal(o Money) bool {
	return m.Currency() == o.Currency() && m.cents == o.cents
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// MarshalJSON encodes as {"amount":"12.50","currency":"USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.Decimal().StringFixed(centsPlaces),
		Currency: m.Currency(),
	})
}

// UnmarshalJSON accepts the amount as a JSON string or number.
func (m *Money) UnmarshalJSON(b []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if raw.Currency == "" {
		raw.Currency = CurrencyUSD
	}
	parsed, err := MoneyFromDecimal(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// minorUnits converts d into an integer count of 10^-places units, refusing
// negatives, overflow and any precision beyond places.
func minorUnits(d decimal.Decimal, places int32) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d)
	}
	if !d.Equal(d.Truncate(places)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, places)
	}
	shifted := d.Shift(places)
	if shifted.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, d)
	}
	return shifted.IntPart(), nil
}
