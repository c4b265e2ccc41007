package domain

import "math"

// All monetary scalars are int64 minor units. Ledger updates go through these
// helpers so a wrap aborts the operation instead of corrupting a balance.

// CheckedAdd returns a+b, or ErrOverflow if the sum does not fit in int64.
func CheckedAdd(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b, or ErrUnderflow if the difference does not fit.
func CheckedSub(a, b int64) (int64, error) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, ErrUnderflow
	}
	return a - b, nil
}
