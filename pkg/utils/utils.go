package utils

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// brl formats amounts the way the dashboard shows them: "R$ 1.234,56".
var brl = money.NewFormatter(2, ",", ".", "R$", "$ 1")

// plain is brl without the currency symbol.
var plain = money.NewFormatter(2, ",", ".", "", "1")

// IsFinite reports whether value is neither NaN nor infinite.
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}

// cents converts a major-unit amount into minor units, rounding half away from zero.
func cents(value float64) int64 {
	return decimal.NewFromFloat(value).Shift(2).Round(0).IntPart()
}

// FormatCurrency renders value as Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(value float64) string {
	if !IsFinite(value) {
		return "-"
	}
	return brl.Format(cents(value))
}

// FormatAmount renders value with pt-BR separators and no symbol, e.g. "1.234,56".
func FormatAmount(value float64) string {
	if !IsFinite(value) {
		return "-"
	}
	return plain.Format(cents(value))
}

// FormatPercent renders a percentage with two decimals, e.g. "12.68%".
func FormatPercent(value float64) string {
	if !IsFinite(value) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", value)
}
