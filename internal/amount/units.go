package amount

import (
	"encoding/json"
	"fmt"
)

// Keys is a non-negative whole number of keys, the currency gating paid-entry drops.
type Keys struct {
	n int64
}

// NewKeys creates a key amount.
func NewKeys(n int64) (Keys, error) {
	if n < 0 {
		return Keys{}, fmt.Errorf("%w: negative keys %d", ErrInvalidAmount, n)
	}
	return Keys{n: n}, nil
}

// Count returns the number of keys.
func (k Keys) Count() int64 { return k.n }

// IsZero reports whether the amount is zero.
func (k Keys) IsZero() bool { return k.n == 0 }

// Add returns k + o.
func (k Keys) Add(o Keys) (Keys, error) {
	n, err := addChecked(k.n, o.n)
	if err != nil {
		return k, err
	}
	return Keys{n: n}, nil
}

// Sub returns k - o, or ErrInsufficientAmount if o > k.
func (k Keys) Sub(o Keys) (Keys, error) {
	n, err := subChecked(k.n, o.n)
	if err != nil {
		return k, err
	}
	return Keys{n: n}, nil
}

// Mul returns k * n for a non-negative scalar.
func (k Keys) Mul(n int64) (Keys, error) {
	r, err := mulChecked(k.n, n)
	if err != nil {
		return k, err
	}
	return Keys{n: r}, nil
}

// Cmp compares k and o: -1, 0 or +1.
func (k Keys) Cmp(o Keys) int { return cmpInt64(k.n, o.n) }

func (k Keys) MarshalJSON() ([]byte, error) { return json.Marshal(k.n) }

func (k *Keys) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := NewKeys(n)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Points is a non-negative loyalty/engagement score.
type Points struct {
	n int64
}

// NewPoints creates a point amount.
func NewPoints(n int64) (Points, error) {
	if n < 0 {
		return Points{}, fmt.Errorf("%w: negative points %d", ErrInvalidAmount, n)
	}
	return Points{n: n}, nil
}

// Count returns the number of points.
func (p Points) Count() int64 { return p.n }

// Add returns p + o.
func (p Points) Add(o Points) (Points, error) {
	n, err := addChecked(p.n, o.n)
	if err != nil {
		return p, err
	}
	return Points{n: n}, nil
}

// Sub returns p - o, or ErrInsufficientAmount if o > p.
func (p Points) Sub(o Points) (Points, error) {
	n, err := subChecked(p.n, o.n)
	if err != nil {
		return p, err
	}
	return Points{n: n}, nil
}

// Mul returns p * n for a non-negative scalar.
func (p Points) Mul(n int64) (Points, error) {
	r, err := mulChecked(p.n, n)
	if err != nil {
		return p, err
	}
	return Points{n: r}, nil
}

// Cmp compares p and o: -1, 0 or +1.
func (p Points) Cmp(o Points) int { return cmpInt64(p.n, o.n) }

func (p Points) MarshalJSON() ([]byte, error) { return json.Marshal(p.n) }

func (p *Points) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := NewPoints(n)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
