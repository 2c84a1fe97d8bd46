// Package money holds the single rounding rule applied to every amount that
// enters or leaves the ledger.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every amount.
const Places = 4

// Round rounds d to Places fractional digits, ties away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse converts external text into an internal amount. Empty or malformed
// input yields an invalid NullDecimal instead of an error. Only plain decimal
// notation is accepted; exponents such as "1e3" are malformed.
func Parse(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(Round(d))
}

// Format renders d with exactly Places fractional digits.
func Format(d decimal.Decimal) string {
	return Round(d).StringFixed(Places)
}
