package service

import "github.com/shopspring/decimal"

// remaining returns total - advance computed in decimal so values such as
// 0.3 - 0.1 come out as 0.2.  It is not floored at zero.
func remaining(total, advance float64) float64 {
	return decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(advance)).InexactFloat64()
}

// estimateOrTotal applies the estimate_cost fallback: an unset or zero
// estimate becomes the total amount.
func estimateOrTotal(estimate *float64, total float64) float64 {
	if estimate == nil || decimal.NewFromFloat(*estimate).IsZero() {
		return total
	}
	return *estimate
}
