package calculations

// ProjectionInput holds the simulator parameters. Values are used as given;
// range checks belong to the caller.
type ProjectionInput struct {
	InitialCapital      float64 `json:"initial_capital"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	AnnualRatePercent   float64 `json:"annual_rate_percent"`
	Years               int     `json:"years"`
}

// ProjectionResult is the month-indexed trajectory of a projection plus its
// summary and the lump-sum comparison. MonthlyValues[0] is the initial capital.
type ProjectionResult struct {
	MonthlyValues      []float64 `json:"monthly_values"`
	MonthlyInvested    []float64 `json:"monthly_invested"`
	FinalAmount        float64   `json:"final_amount"`
	TotalInvested      float64   `json:"total_invested"`
	TotalInterest      float64   `json:"total_interest"`
	TotalReturnPercent float64   `json:"total_return_percent"`

	LumpSumEquivalentAmount float64 `json:"lump_sum_equivalent_amount"`
	LumpSumFinalAmount      float64 `json:"lump_sum_final_amount"`
	DifferenceVsLumpSum     float64 `json:"difference_vs_lump_sum"`
}

// Months returns the number of compounding periods in the trajectory.
func (r *ProjectionResult) Months() int {
	if len(r.MonthlyValues) == 0 {
		return 0
	}
	return len(r.MonthlyValues) - 1
}

// Holding is one portfolio position as the aggregator sees it.
// ReturnPercent is the value stored when the position was saved.
type Holding struct {
	Invested      float64 `json:"invested"`
	CurrentValue  float64 `json:"current_value"`
	ReturnPercent float64 `json:"return_percent"`
}

// PortfolioSummary aggregates a set of holdings.
type PortfolioSummary struct {
	TotalCurrentValue     float64 `json:"total_current_value"`
	TotalInvested         float64 `json:"total_invested"`
	WeightedReturnPercent float64 `json:"weighted_return_percent"`
}

// CategoryShare is the current value held in one category.
type CategoryShare struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Percent  float64 `json:"percent"`
}
