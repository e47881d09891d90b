package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/store"
)

// Scenario is a saved simulator run: the inputs plus the headline results.
// Field names follow the stored backup format.
type Scenario struct {
	ID                  int64     `json:"id,omitempty"`
	Name                string    `json:"name"`
	InitialCapital      float64   `json:"capitalInicial"`
	MonthlyContribution float64   `json:"aporteMensal"`
	AnnualRatePercent   float64   `json:"taxaJuros"`
	Years               int       `json:"periodo"`
	FinalAmount         float64   `json:"montanteFinal"`
	TotalInvested       float64   `json:"totalInvestido"`
	TotalInterest       float64   `json:"jurosAcumulados"`
	TotalReturnPercent  float64   `json:"rentabilidadeTotal"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Input returns the projection parameters of the scenario.
func (sc Scenario) Input() calculations.ProjectionInput {
	return calculations.ProjectionInput{
		InitialCapital:      sc.InitialCapital,
		MonthlyContribution: sc.MonthlyContribution,
		AnnualRatePercent:   sc.AnnualRatePercent,
		Years:               sc.Years,
	}
}

// Simulate runs the projection engine.
func (s *Service) Simulate(in calculations.ProjectionInput) (*calculations.ProjectionResult, error) {
	return calculations.Project(in)
}

// SaveScenario projects in and stores it under name.
func (s *Service) SaveScenario(ctx context.Context, name string, in calculations.ProjectionInput) (*Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: scenario name is required", ErrValidation)
	}

	result, err := calculations.Project(in)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{
		Name:                name,
		InitialCapital:      in.InitialCapital,
		MonthlyContribution: in.MonthlyContribution,
		AnnualRatePercent:   in.AnnualRatePercent,
		Years:               in.Years,
		FinalAmount:         result.FinalAmount,
		TotalInvested:       result.TotalInvested,
		TotalInterest:       result.TotalInterest,
		TotalReturnPercent:  result.TotalReturnPercent,
		CreatedAt:           s.now().UTC(),
	}
	rec, err := store.Encode(sc)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, store.Scenarios, rec)
	if err != nil {
		return nil, fmt.Errorf("save scenario: %w", err)
	}
	sc.ID = id
	s.logger.Info("scenario saved", "id", id, "name", name)
	return sc, nil
}

// ListScenarios returns saved scenarios in the order they were saved.
func (s *Service) ListScenarios(ctx context.Context) ([]Scenario, error) {
	records, err := s.store.GetAll(ctx, store.Scenarios)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return store.DecodeAll[Scenario](records)
}

// Scenario returns the saved scenario with id.
func (s *Service) Scenario(ctx context.Context, id int64) (*Scenario, error) {
	rec, err := s.store.Get(ctx, store.Scenarios, id)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var sc Scenario
	if err := store.Decode(rec, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
