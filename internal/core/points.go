// Package core holds the loyalty domain: customers, transactions and the
// reward calculator that turns purchase amounts into points.
//
// The calculator is pure. It never touches storage and can be invoked
// concurrently over independent transaction sets.
package core

import "github.com/shopspring/decimal"

const (
	doubleRateThreshold = 100 // dollars above this earn DoubleRate points each
	singleRateThreshold = 50  // dollars above this, up to doubleRateThreshold, earn SingleRate points each

	DoubleRate = 2
	SingleRate = 1

	// maxAmountDollars caps a single purchase.
	maxAmountDollars = 1_000_000_000
	// maxAmountExponent and minAmountExponent bound the decimal exponent of
	// an accepted amount.
	maxAmountExponent = 12
	minAmountExponent = -12
)

// MaxAmount is the largest purchase amount accepted.
var MaxAmount = decimal.NewFromInt(maxAmountDollars)

// exceedsMaxAmount reports whether a positive amount is above MaxAmount.
// The exponent check runs first so huge exponents are never rescaled.
func exceedsMaxAmount(amount decimal.Decimal) bool {
	return amount.Exponent() > maxAmountExponent || amount.GreaterThan(MaxAmount)
}

// CalculatePoints returns the points earned by a single purchase.
//
// Only whole dollars count: the amount is floored before the tiers apply.
// Every dollar over $100 earns 2 points and every dollar from $51 to $100
// earns 1 point, so $100.00 yields 50 and $101.00 yields 52. Amounts at or
// below $50, including negative ones, earn nothing. Amounts above
// MaxAmount earn the same as MaxAmount.
//
// Examples:
//
//	CalculatePoints(decimal.RequireFromString("49.99"))  -> 0
//	CalculatePoints(decimal.RequireFromString("120.00")) -> 90
//	CalculatePoints(decimal.RequireFromString("200.00")) -> 250
func CalculatePoints(amount decimal.Decimal) int {
	if amount.Sign() <= 0 {
		return 0
	}

	dollars := int64(maxAmountDollars)
	if !exceedsMaxAmount(amount) {
		dollars = amount.Floor().IntPart()
	}

	var points int64
	if dollars > doubleRateThreshold {
		points += (dollars - doubleRateThreshold) * DoubleRate
	}
	if dollars > singleRateThreshold {
		points += (min(dollars, doubleRateThreshold) - singleRateThreshold) * SingleRate
	}
	return int(points)
}
