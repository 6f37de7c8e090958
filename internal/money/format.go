// Package money rounds and formats monetary values for presentation.
// Calculations keep full float64 precision; rounding happens only here.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places shown for currency values.
const Places = 2

// Round rounds v half-to-even to the given number of places.
// NaN and infinities round to zero.
func Round(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).RoundBank(places)
}

// Round2 rounds v half-to-even to cents.
func Round2(v float64) decimal.Decimal {
	return Round(v, Places)
}

// BRL formats v as reais, e.g. "R$ 142.36".
func BRL(v float64) string {
	return "R$ " + Round2(v).StringFixedBank(Places)
}

// USD formats v as dollars, e.g. "US$ 4.75".
func USD(v float64) string {
	return "US$ " + Round2(v).StringFixedBank(Places)
}

// Percent formats v (already in percent units) with one decimal, e.g. "5.4%".
func Percent(v float64) string {
	return Round(v, 1).StringFixedBank(1) + "%"
}

// Plain formats v with two decimals and no currency symbol.
func Plain(v float64) string {
	return Round2(v).StringFixedBank(Places)
}
