package calculations

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ReturnPercent is the return of a position relative to what was paid for it.
// It is computed once when a position is saved and stored with it.
func ReturnPercent(currentValue, purchaseValue float64) float64 {
	if purchaseValue <= 0 {
		return 0
	}
	return (currentValue - purchaseValue) / purchaseValue * 100
}

// amount converts v for summing. NaN and infinities count as 0.
func amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Summarize totals the holdings and weights each stored return by the amount
// invested in it. The stored percentages are used as is, so the weighted return
// can differ from (current - invested) / invested when a snapshot is stale.
// Fields that are not finite numbers count as 0.
func Summarize(holdings []Holding) PortfolioSummary {
	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	weighted := decimal.Zero

	for _, h := range holdings {
		invested := amount(h.Invested)
		totalValue = totalValue.Add(amount(h.CurrentValue))
		totalInvested = totalInvested.Add(invested)
		weighted = weighted.Add(amount(h.ReturnPercent).Mul(invested))
	}

	summary := PortfolioSummary{
		TotalCurrentValue: totalValue.InexactFloat64(),
		TotalInvested:     totalInvested.InexactFloat64(),
	}
	if totalInvested.IsZero() {
		return summary
	}
	summary.WeightedReturnPercent = weighted.Div(totalInvested).InexactFloat64()
	return summary
}

// Allocation groups current value by category, largest first. Percent is the
// category's share of the total current value, or 0 when the total is 0.
func Allocation(categories []string, values []float64) []CategoryShare {
	sums := map[string]decimal.Decimal{}
	total := decimal.Zero
	for i, c := range categories {
		if i >= len(values) {
			break
		}
		v := amount(values[i])
		sums[c] = sums[c].Add(v)
		total = total.Add(v)
	}

	shares := make([]CategoryShare, 0, len(sums))
	for c, v := range sums {
		share := CategoryShare{Category: c, Value: v.InexactFloat64()}
		if !total.IsZero() {
			share.Percent = v.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}
