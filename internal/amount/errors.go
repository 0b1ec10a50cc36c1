package amount

import "errors"

var (
	// ErrInvalidAmount is returned for negative, malformed or over-precise amounts
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientAmount is returned when a subtraction would go below zero
	ErrInsufficientAmount = errors.New("insufficient amount")

	// ErrCurrencyMismatch is returned when combining or comparing different currencies
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
