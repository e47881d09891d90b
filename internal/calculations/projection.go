package calculations

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a projection parameter is not a number.
var ErrInvalidInput = errors.New("invalid input")

// Project runs the compound-interest simulation: every month the balance grows
// by the monthly rate and then receives the contribution. The lump-sum baseline
// deposits the total invested once and compounds it yearly at the nominal rate.
func Project(in ProjectionInput) (*ProjectionResult, error) {
	if err := checkNumeric(in); err != nil {
		return nil, err
	}

	r := in.AnnualRatePercent / 100.0 / 12.0
	n := in.Years * 12
	if n < 0 {
		n = 0
	}

	values := make([]float64, n+1)
	invested := make([]float64, n+1)
	values[0] = in.InitialCapital
	invested[0] = in.InitialCapital

	for m := 1; m <= n; m++ {
		values[m] = values[m-1]*(1+r) + in.MonthlyContribution
		invested[m] = in.InitialCapital + in.MonthlyContribution*float64(m)
	}

	final := values[n]
	totalInvested := invested[n]
	interest := final - totalInvested

	var returnPercent float64
	if totalInvested > 0 {
		returnPercent = interest / totalInvested * 100
	}

	years := in.Years
	if years < 0 {
		years = 0
	}
	lumpSum := totalInvested * math.Pow(1+in.AnnualRatePercent/100.0, float64(years))

	return &ProjectionResult{
		MonthlyValues:           values,
		MonthlyInvested:         invested,
		FinalAmount:             final,
		TotalInvested:           totalInvested,
		TotalInterest:           interest,
		TotalReturnPercent:      returnPercent,
		LumpSumEquivalentAmount: totalInvested,
		LumpSumFinalAmount:      lumpSum,
		DifferenceVsLumpSum:     final - lumpSum,
	}, nil
}

func checkNumeric(in ProjectionInput) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"initial_capital", in.InitialCapital},
		{"monthly_contribution", in.MonthlyContribution},
		{"annual_rate_percent", in.AnnualRatePercent},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidInput, f.name)
		}
	}
	if in.Years > math.MaxInt/12 {
		return fmt.Errorf("%w: years out of range", ErrInvalidInput)
	}
	return nil
}

// MonthLabel formats a trajectory index as elapsed years and months, e.g. "2a 3m".
func MonthLabel(index int) string {
	return fmt.Sprintf("%da %dm", index/12, index%12)
}

// MonthLabels returns the labels for a trajectory of the given number of months.
func MonthLabels(months int) []string {
	if months < 0 {
		months = 0
	}
	labels := make([]string, 0, months+1)
	for i := 0; i <= months; i++ {
		labels = append(labels, MonthLabel(i))
	}
	return labels
}
