package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/validators"
	"github.com/financaspro/financas/pkg/utils"
)

// GoalKey is the settings key of the portfolio goal.
const GoalKey = "meta"

// Dashboard is the portfolio overview.
type Dashboard struct {
	Summary     calculations.PortfolioSummary `json:"summary"`
	Goal        *float64                      `json:"goal,omitempty"`
	GoalPercent *float64                      `json:"goal_percent,omitempty"`
	Allocation  []calculations.CategoryShare  `json:"allocation"`
	Ranking     []Investment                  `json:"ranking"`
	Formatted   map[string]string             `json:"formatted"`
}

// Dashboard summarizes the portfolio, its allocation by category and the
// positions ranked by stored return.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	investments, err := s.ListInvestments(ctx)
	if err != nil {
		return nil, err
	}
	goal, err := s.Goal(ctx)
	if err != nil {
		return nil, err
	}

	summary := calculations.Summarize(holdings(investments))

	categories := make([]string, len(investments))
	values := make([]float64, len(investments))
	for i, inv := range investments {
		categories[i] = inv.Category
		values[i] = inv.CurrentValue
	}

	ranking := make([]Investment, len(investments))
	copy(ranking, investments)
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].ReturnPercentage > ranking[j].ReturnPercentage
	})

	d := &Dashboard{
		Summary:    summary,
		Goal:       goal,
		Allocation: calculations.Allocation(categories, values),
		Ranking:    ranking,
		Formatted: map[string]string{
			"total_current_value":     utils.FormatCurrency(summary.TotalCurrentValue),
			"total_invested":          utils.FormatCurrency(summary.TotalInvested),
			"weighted_return_percent": utils.FormatPercent(summary.WeightedReturnPercent),
		},
	}
	if goal != nil {
		d.Formatted["goal"] = utils.FormatCurrency(*goal)
		if *goal > 0 {
			pct := summary.TotalCurrentValue / *goal * 100
			d.GoalPercent = &pct
		}
	}
	return d, nil
}

// Goal returns the portfolio goal, or nil when none is set.
func (s *Service) Goal(ctx context.Context) (*float64, error) {
	raw, err := s.store.GetSetting(ctx, GoalKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read goal: %w", err)
	}
	var goal float64
	if err := json.Unmarshal(raw, &goal); err != nil {
		return nil, fmt.Errorf("read goal: %w", err)
	}
	return &goal, nil
}

// SetGoal stores the portfolio goal.
func (s *Service) SetGoal(ctx context.Context, amount float64) error {
	if err := validators.ValidateStrictlyPositive("goal", amount); err != nil {
		return invalid(err)
	}
	if err := s.store.PutSetting(ctx, GoalKey, amount); err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	s.logger.Info("goal set", "amount", amount)
	return nil
}
