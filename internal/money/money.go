// Package money holds the decimal helpers shared by services and exports.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a decimal amount strictly. A comma is accepted as the decimal
// separator when no dot is present ("12,50").
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// NonNegative clamps d to zero from below.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatBRL renders an amount the way reports print it: "R$ 1234.50".
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// PercentOf returns the truncated integer percentage of part over whole.
// ok is false when whole is zero, in which case the percentage is 0.
func PercentOf(part, whole decimal.Decimal) (int, bool) {
	if whole.IsZero() {
		return 0, false
	}
	return int(part.Mul(decimal.NewFromInt(100)).Div(whole).IntPart()), true
}

// Sum adds a list of amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
