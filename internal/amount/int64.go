package amount

import (
	"fmt"
	"math"
)

// Shared checked arithmetic on the non-negative int64 counters backing every
// unit in this package.

func addChecked(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrInvalidAmount, a, b)
	}
	return a + b, nil
}

func subChecked(a, b int64) (int64, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %d - %d is negative", ErrInsufficientAmount, a, b)
	}
	return a - b, nil
}

func mulChecked(a, n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative multiplier %d", ErrInvalidAmount, n)
	}
	if n != 0 && a > math.MaxInt64/n {
		return 0, fmt.Errorf("%w: %d * %d overflows", ErrInvalidAmount, a, n)
	}
	return a * n, nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
