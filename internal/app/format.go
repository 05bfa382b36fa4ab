package app

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// formatFloat renders v with a fixed number of places. Non-finite values,
// which decimal cannot represent, fall back to strconv ("+Inf", "NaN").
func formatFloat(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func formatAmount(v float64) string {
	return formatFloat(v, 2)
}

// formatPercent renders a rate fraction as a percentage, e.g. 0.041 -> "4.100".
func formatPercent(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(3)
}
