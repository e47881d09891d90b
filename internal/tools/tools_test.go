package tools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/financaspro/financas/internal/config"
	"github.com/financaspro/financas/internal/finance"
	"github.com/financaspro/financas/internal/metrics"
	"github.com/financaspro/financas/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxCapital:      1e9,
		MaxContribution: 1e8,
		MaxYears:        100,
		MaxRate:         200,
	}
}

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.OpenReady(ctx, store.Options{Path: filepath.Join(t.TempDir(), "tools.db")})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := finance.NewService(st, finance.WithClock(func() time.Time { return now }))
	return NewRegistry(testConfig(), svc, noop.NewTracerProvider().Tracer("test"))
}

func TestSimulateCompoundInterest(t *testing.T) {
	r := setupTestRegistry(t)

	tests := []struct {
		name        string
		params      map[string]interface{}
		wantErr     error
		checkResult func(t *testing.T, s *Simulation)
	}{
		{
			name: "no interest",
			params: map[string]interface{}{
				"initial_capital":      1000.0,
				"monthly_contribution": 100.0,
				"annual_rate_percent":  0.0,
				"years":                1.0,
			},
			checkResult: func(t *testing.T, s *Simulation) {
				if s.FinalAmount != 2200 {
					t.Errorf("FinalAmount = %v, want 2200", s.FinalAmount)
				}
				if len(s.Labels) != 13 || s.Labels[12] != "1a 0m" {
					t.Errorf("unexpected labels: %v", s.Labels)
				}
				if s.Formatted["final_amount"] != "R$ 2.200,00" {
					t.Errorf("unexpected formatted amount: %q", s.Formatted["final_amount"])
				}
			},
		},
		{
			name: "contribution defaults to zero",
			params: map[string]interface{}{
				"initial_capital":     1000.0,
				"annual_rate_percent": 12.0,
				"years":               2.0,
			},
			checkResult: func(t *testing.T, s *Simulation) {
				if s.TotalInvested != 1000 {
					t.Errorf("TotalInvested = %v, want 1000", s.TotalInvested)
				}
				if s.FinalAmount <= 1000 {
					t.Errorf("FinalAmount = %v, want growth", s.FinalAmount)
				}
			},
		},
		{
			name:    "missing rate",
			params:  map[string]interface{}{"initial_capital": 1000.0, "years": 1.0},
			wantErr: ErrInvalidParams,
		},
		{
			name: "years out of range",
			params: map[string]interface{}{
				"initial_capital":     1000.0,
				"annual_rate_percent": 10.0,
				"years":               0.0,
			},
			wantErr: ErrInvalidParams,
		},
		{
			name: "fractional years",
			params: map[string]interface{}{
				"initial_capital":     1000.0,
				"annual_rate_percent": 10.0,
				"years":               1.5,
			},
			wantErr: ErrInvalidParams,
		},
		{
			name: "rate above limit",
			params: map[string]interface{}{
				"initial_capital":     1000.0,
				"annual_rate_percent": 500.0,
				"years":               1.0,
			},
			wantErr: ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Call(context.Background(), "simulate_compound_interest", tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s, ok := result.(*Simulation)
			if !ok {
				t.Fatalf("unexpected result type %T", result)
			}
			tt.checkResult(t, s)
		})
	}
}

func TestInvestmentTools(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	result, err := r.Call(ctx, "add_investment", map[string]interface{}{
		"category":       "Renda Fixa",
		"name":           "CDB Banco X",
		"purchase_date":  "2024-01-15",
		"purchase_value": 1000.0,
		"current_value":  1080.0,
	})
	if err != nil {
		t.Fatalf("add_investment: %v", err)
	}
	inv := result.(*finance.Investment)
	if inv.ID != 1 {
		t.Errorf("expected id 1, got %d", inv.ID)
	}

	_, err = r.Call(ctx, "update_investment", map[string]interface{}{
		"id":             float64(inv.ID),
		"category":       "Renda Fixa",
		"name":           "CDB Banco X",
		"purchase_date":  "2024-01-15",
		"purchase_value": 1000.0,
		"sale_date":      "2024-05-30",
		"current_value":  1100.0,
	})
	if err != nil {
		t.Fatalf("update_investment: %v", err)
	}

	result, err = r.Call(ctx, "list_investments", nil)
	if err != nil {
		t.Fatalf("list_investments: %v", err)
	}
	list := result.([]finance.Investment)
	if len(list) != 1 || list[0].SaleDate != "2024-05-30" || list[0].CurrentValue != 1100 {
		t.Errorf("unexpected investments: %+v", list)
	}

	result, err = r.Call(ctx, "portfolio_dashboard", nil)
	if err != nil {
		t.Fatalf("portfolio_dashboard: %v", err)
	}
	if d := result.(*finance.Dashboard); d.Summary.TotalCurrentValue != 1100 {
		t.Errorf("unexpected dashboard summary: %+v", d.Summary)
	}

	result, err = r.Call(ctx, "portfolio_history", nil)
	if err != nil {
		t.Fatalf("portfolio_history: %v", err)
	}
	history := result.([]finance.HistoryEntry)
	if len(history) != 1 || history[0].Date != "2024-06-01" || history[0].Value != 1100 {
		t.Errorf("unexpected history: %+v", history)
	}

	if _, err := r.Call(ctx, "delete_investment", map[string]interface{}{"id": -1.0}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams for negative id, got %v", err)
	}
	if _, err := r.Call(ctx, "delete_investment", map[string]interface{}{"id": 1.0}); err != nil {
		t.Errorf("delete_investment: %v", err)
	}
}

func TestLedgerAndGoalTools(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	income := map[string]interface{}{"date": "2024-06-01", "description": "Salário", "category": "Trabalho", "amount": 4000.0}
	expense := map[string]interface{}{"date": "2024-06-02", "description": "Aluguel", "category": "Moradia", "amount": 1500.0}

	if _, err := r.Call(ctx, "add_income", income); err != nil {
		t.Fatalf("add_income: %v", err)
	}
	result, err := r.Call(ctx, "add_expense", expense)
	if err != nil {
		t.Fatalf("add_expense: %v", err)
	}
	exp := result.(*finance.Entry)

	result, err = r.Call(ctx, "cash_flow", nil)
	if err != nil {
		t.Fatalf("cash_flow: %v", err)
	}
	if cf := result.(*finance.CashFlowSummary); cf.Balance != 2500 || cf.Formatted["balance"] != "2.500,00" {
		t.Errorf("unexpected cash flow: %+v", cf)
	}

	expense["id"] = float64(exp.ID)
	expense["amount"] = 1750.0
	if _, err := r.Call(ctx, "update_expense", expense); err != nil {
		t.Fatalf("update_expense: %v", err)
	}
	income["id"] = 1.0
	income["description"] = "Salário + bônus"
	income["amount"] = 4500.0
	if _, err := r.Call(ctx, "update_income", income); err != nil {
		t.Fatalf("update_income: %v", err)
	}
	income["id"] = 9.0
	if _, err := r.Call(ctx, "update_income", income); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing income, got %v", err)
	}
	delete(expense, "id")
	if _, err := r.Call(ctx, "update_expense", expense); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams without id, got %v", err)
	}

	result, err = r.Call(ctx, "list_incomes", nil)
	if err != nil {
		t.Fatalf("list_incomes: %v", err)
	}
	if incomes := result.([]finance.Entry); len(incomes) != 1 || incomes[0].Amount != 4500 || incomes[0].Description != "Salário + bônus" {
		t.Errorf("unexpected incomes: %+v", incomes)
	}
	result, err = r.Call(ctx, "list_expenses", nil)
	if err != nil {
		t.Fatalf("list_expenses: %v", err)
	}
	if expenses := result.([]finance.Entry); len(expenses) != 1 || expenses[0].Amount != 1750 {
		t.Errorf("unexpected expenses: %+v", expenses)
	}

	if _, err := r.Call(ctx, "delete_expense", map[string]interface{}{"id": float64(exp.ID)}); err != nil {
		t.Fatalf("delete_expense: %v", err)
	}
	if _, err := r.Call(ctx, "delete_income", map[string]interface{}{"id": 1.0}); err != nil {
		t.Fatalf("delete_income: %v", err)
	}
	result, _ = r.Call(ctx, "cash_flow", nil)
	if cf := result.(*finance.CashFlowSummary); cf.Balance != 0 || cf.Incomes != 0 {
		t.Errorf("expected empty ledger, got %+v", cf)
	}

	before := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("set_goal", "validation_error"))
	if _, err := r.Call(ctx, "set_goal", map[string]interface{}{"amount": -5.0}); !errors.Is(err, finance.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	after := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("set_goal", "validation_error"))
	if after != before+1 {
		t.Errorf("validation_error counter = %v, want %v", after, before+1)
	}

	if _, err := r.Call(ctx, "set_goal", map[string]interface{}{"amount": 100000.0}); err != nil {
		t.Errorf("set_goal: %v", err)
	}
}

func TestScenarioTools(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	params := map[string]interface{}{
		"name":                 "Aposentadoria",
		"initial_capital":      10000.0,
		"monthly_contribution": 500.0,
		"annual_rate_percent":  8.0,
		"years":                30.0,
	}
	if _, err := r.Call(ctx, "save_scenario", params); err != nil {
		t.Fatalf("save_scenario: %v", err)
	}
	result, err := r.Call(ctx, "list_scenarios", nil)
	if err != nil {
		t.Fatalf("list_scenarios: %v", err)
	}
	scenarios := result.([]finance.Scenario)
	if len(scenarios) != 1 || scenarios[0].Name != "Aposentadoria" || scenarios[0].Years != 30 {
		t.Errorf("unexpected scenarios: %+v", scenarios)
	}

	result, err = r.Call(ctx, "load_scenario", map[string]interface{}{"id": float64(scenarios[0].ID)})
	if err != nil {
		t.Fatalf("load_scenario: %v", err)
	}
	loaded := result.(*LoadedScenario)
	if loaded.Scenario.Name != "Aposentadoria" {
		t.Errorf("unexpected scenario: %+v", loaded.Scenario)
	}
	if loaded.Simulation.FinalAmount != scenarios[0].FinalAmount || len(loaded.Simulation.Labels) != 361 {
		t.Errorf("rerun should match the saved result: final=%v saved=%v labels=%d",
			loaded.Simulation.FinalAmount, scenarios[0].FinalAmount, len(loaded.Simulation.Labels))
	}
	if _, err := r.Call(ctx, "load_scenario", map[string]interface{}{"id": 99.0}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	delete(params, "name")
	if _, err := r.Call(ctx, "save_scenario", params); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams without a name, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := setupTestRegistry(t)

	if _, err := r.Call(context.Background(), "loan_schedule", nil); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}

	list := r.Tools()
	if len(list) != 20 {
		t.Errorf("expected 20 tools, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Fatalf("tools not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}
