package calculator

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Round rounds v to cents, half away from zero, on its shortest decimal
// representation. Binary float error is not allowed to pull a half cent
// down: 10.005 becomes 10.01.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatAmount renders a money figure with exactly two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatPercent renders a percentage without trailing zeros (15, 12.5).
func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64)
}
