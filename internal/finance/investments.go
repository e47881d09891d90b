package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/validators"
)

// Investment is one portfolio position. ReturnPercentage is computed when the
// position is saved and kept as stored afterwards.
type Investment struct {
	ID               int64     `json:"id,omitempty"`
	Category         string    `json:"category"`
	Name             string    `json:"name"`
	PurchaseDate     string    `json:"purchaseDate"`
	PurchaseValue    float64   `json:"purchaseValue"`
	SaleDate         string    `json:"saleDate,omitempty"`
	CurrentValue     float64   `json:"currentValue"`
	ReturnPercentage float64   `json:"returnPercentage"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Holding returns the aggregator view of the position.
func (inv Investment) Holding() calculations.Holding {
	return calculations.Holding{
		Invested:      inv.PurchaseValue,
		CurrentValue:  inv.CurrentValue,
		ReturnPercent: inv.ReturnPercentage,
	}
}

// InvestmentInput is what a user enters for a position.
type InvestmentInput struct {
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	PurchaseDate  string  `json:"purchaseDate"`
	PurchaseValue float64 `json:"purchaseValue"`
	SaleDate      string  `json:"saleDate,omitempty"`
	CurrentValue  float64 `json:"currentValue"`
}

// Validate applies the investment form rules.
func (in InvestmentInput) Validate() error {
	checks := []error{
		validators.ValidateRequired("category", in.Category),
		validators.ValidateRequired("name", in.Name),
		validators.ValidateDate("purchaseDate", in.PurchaseDate),
		validators.ValidateStrictlyPositive("purchaseValue", in.PurchaseValue),
		validators.ValidateStrictlyPositive("currentValue", in.CurrentValue),
	}
	if strings.TrimSpace(in.SaleDate) != "" {
		checks = append(checks, validators.ValidateDate("saleDate", in.SaleDate))
	}
	return firstError(checks...)
}

func (s *Service) newInvestment(in InvestmentInput) Investment {
	return Investment{
		Category:         strings.TrimSpace(in.Category),
		Name:             strings.TrimSpace(in.Name),
		PurchaseDate:     in.PurchaseDate,
		PurchaseValue:    in.PurchaseValue,
		SaleDate:         strings.TrimSpace(in.SaleDate),
		CurrentValue:     in.CurrentValue,
		ReturnPercentage: calculations.ReturnPercent(in.CurrentValue, in.PurchaseValue),
		CreatedAt:        s.now().UTC(),
	}
}

// AddInvestment stores a new position and records today's portfolio history.
// The position is returned once stored even if the history write fails.
func (s *Service) AddInvestment(ctx context.Context, in InvestmentInput) (*Investment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	inv := s.newInvestment(in)
	rec, err := store.Encode(inv)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, store.Investments, rec)
	if err != nil {
		return nil, fmt.Errorf("add investment: %w", err)
	}
	inv.ID = id
	s.logger.Info("investment added", "id", id, "category", inv.Category, "name", inv.Name)

	s.refreshHistory(ctx, "add", id)
	return &inv, nil
}

// UpdateInvestment replaces an existing position. The stored return is
// recomputed from the new values.
func (s *Service) UpdateInvestment(ctx context.Context, id int64, in InvestmentInput) (*Investment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, store.Investments, id); err != nil {
		return nil, fmt.Errorf("update investment: %w", err)
	}
	inv := s.newInvestment(in)
	inv.ID = id
	rec, err := store.Encode(inv)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Put(ctx, store.Investments, rec); err != nil {
		return nil, fmt.Errorf("update investment: %w", err)
	}
	s.logger.Info("investment updated", "id", id)

	s.refreshHistory(ctx, "update", id)
	return &inv, nil
}

// DeleteInvestment removes a position and records today's portfolio history.
func (s *Service) DeleteInvestment(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, store.Investments, id); err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	s.logger.Info("investment deleted", "id", id)

	s.refreshHistory(ctx, "delete", id)
	return nil
}

// refreshHistory records today's snapshot after a committed portfolio change.
// A failure here does not undo the change, so it is logged and dropped.
func (s *Service) refreshHistory(ctx context.Context, op string, id int64) {
	if err := s.RecordHistory(ctx, s.Today()); err != nil {
		s.logger.Warn("failed to record portfolio history", "op", op, "investment_id", id, "err", err)
	}
}

// ListInvestments returns every position in id order.
func (s *Service) ListInvestments(ctx context.Context) ([]Investment, error) {
	records, err := s.store.GetAll(ctx, store.Investments)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return store.DecodeAll[Investment](records)
}

func holdings(investments []Investment) []calculations.Holding {
	out := make([]calculations.Holding, len(investments))
	for i, inv := range investments {
		out[i] = inv.Holding()
	}
	return out
}
