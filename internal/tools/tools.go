package tools

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/config"
	"github.com/financaspro/financas/internal/finance"
	"github.com/financaspro/financas/internal/metrics"
	"github.com/financaspro/financas/internal/validators"
	"github.com/financaspro/financas/pkg/utils"
)

// ToolHandler runs one tool with its JSON arguments.
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Simulation is the simulator output with chart labels and display strings.
type Simulation struct {
	*calculations.ProjectionResult
	Labels    []string          `json:"labels"`
	Formatted map[string]string `json:"formatted"`
}

// instrument wraps a tool body with a span and the tool metrics.
func instrument(tracer trace.Tracer, toolName string, body func(ctx context.Context, p Params, span trace.Span) (interface{}, error)) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		result, err := body(ctx, Params(params), span)
		if err != nil {
			status, errType := "error", "calculation"
			if isValidation(err) {
				status, errType = "validation_error", "validation"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("error", status))
			metrics.ToolCalls.WithLabelValues(toolName, status).Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, errType).Inc()
			return nil, err
		}

		span.SetAttributes(attribute.Bool("success", true))
		metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
		return result, nil
	}
}

func isValidation(err error) bool {
	return errors.Is(err, ErrInvalidParams) ||
		errors.Is(err, finance.ErrValidation) ||
		errors.Is(err, calculations.ErrInvalidInput)
}

func invalidParams(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidParams, err)
}

func projectionAttributes(in calculations.ProjectionInput) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("initial_capital", in.InitialCapital),
		attribute.Float64("monthly_contribution", in.MonthlyContribution),
		attribute.Float64("annual_rate_percent", in.AnnualRatePercent),
		attribute.Int("years", in.Years),
	}
}

// SimulateHandler projects a compound-interest scenario.
func SimulateHandler(cfg *config.Config, svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "simulate_compound_interest", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		in, err := p.projection()
		if err != nil {
			return nil, err
		}
		span.SetAttributes(projectionAttributes(in)...)

		if err := validators.CheckProjection(cfg, in); err != nil {
			return nil, invalidParams(err)
		}

		result, err := svc.Simulate(in)
		if err != nil {
			return nil, fmt.Errorf("simulation failed: %w", err)
		}
		span.SetAttributes(attribute.Float64("final_amount", result.FinalAmount))

		return newSimulation(result), nil
	})
}

func newSimulation(result *calculations.ProjectionResult) *Simulation {
	return &Simulation{
		ProjectionResult: result,
		Labels:           calculations.MonthLabels(result.Months()),
		Formatted: map[string]string{
			"final_amount":          utils.FormatCurrency(result.FinalAmount),
			"total_invested":        utils.FormatCurrency(result.TotalInvested),
			"total_interest":        utils.FormatCurrency(result.TotalInterest),
			"total_return_percent":  utils.FormatPercent(result.TotalReturnPercent),
			"lump_sum_final_amount": utils.FormatCurrency(result.LumpSumFinalAmount),
		},
	}
}

// SaveScenarioHandler projects and stores a named scenario.
func SaveScenarioHandler(cfg *config.Config, svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "save_scenario", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		name, err := p.getString("name")
		if err != nil {
			return nil, err
		}
		in, err := p.projection()
		if err != nil {
			return nil, err
		}
		span.SetAttributes(projectionAttributes(in)...)

		if err := validators.CheckProjection(cfg, in); err != nil {
			return nil, invalidParams(err)
		}
		return svc.SaveScenario(ctx, name, in)
	})
}

// ListScenariosHandler returns the saved scenarios.
func ListScenariosHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "list_scenarios", func(ctx context.Context, _ Params, _ trace.Span) (interface{}, error) {
		return svc.ListScenarios(ctx)
	})
}

// LoadedScenario is a saved scenario with its projection run again.
type LoadedScenario struct {
	Scenario   *finance.Scenario `json:"scenario"`
	Simulation *Simulation       `json:"simulation"`
}

// LoadScenarioHandler reruns the simulator with a saved scenario's inputs.
func LoadScenarioHandler(cfg *config.Config, svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "load_scenario", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("id", id))

		sc, err := svc.Scenario(ctx, id)
		if err != nil {
			return nil, err
		}
		in := sc.Input()
		span.SetAttributes(projectionAttributes(in)...)

		// imported scenarios never went through the simulator limits
		if err := validators.CheckProjection(cfg, in); err != nil {
			return nil, invalidParams(err)
		}
		result, err := svc.Simulate(in)
		if err != nil {
			return nil, fmt.Errorf("simulation failed: %w", err)
		}
		return &LoadedScenario{Scenario: sc, Simulation: newSimulation(result)}, nil
	})
}

// DashboardHandler returns the portfolio overview.
func DashboardHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "portfolio_dashboard", func(ctx context.Context, _ Params, span trace.Span) (interface{}, error) {
		d, err := svc.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(
			attribute.Float64("total_current_value", d.Summary.TotalCurrentValue),
			attribute.Int("positions", len(d.Ranking)),
		)
		return d, nil
	})
}

func investmentInput(p Params) (finance.InvestmentInput, error) {
	var in finance.InvestmentInput
	var err error
	if in.Category, err = p.getString("category"); err != nil {
		return in, err
	}
	if in.Name, err = p.getString("name"); err != nil {
		return in, err
	}
	if in.PurchaseDate, err = p.getString("purchase_date"); err != nil {
		return in, err
	}
	if in.PurchaseValue, err = p.getFloat("purchase_value"); err != nil {
		return in, err
	}
	if in.SaleDate, err = p.getOptionalString("sale_date"); err != nil {
		return in, err
	}
	if in.CurrentValue, err = p.getFloat("current_value"); err != nil {
		return in, err
	}
	return in, nil
}

// AddInvestmentHandler stores a new position.
func AddInvestmentHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "add_investment", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		in, err := investmentInput(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(
			attribute.Float64("purchase_value", in.PurchaseValue),
			attribute.Float64("current_value", in.CurrentValue),
		)
		return svc.AddInvestment(ctx, in)
	})
}

// UpdateInvestmentHandler replaces an existing position.
func UpdateInvestmentHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "update_investment", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		in, err := investmentInput(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("id", id))
		return svc.UpdateInvestment(ctx, id, in)
	})
}

// DeleteInvestmentHandler removes a position.
func DeleteInvestmentHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "delete_investment", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("id", id))
		if err := svc.DeleteInvestment(ctx, id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}

// ListInvestmentsHandler returns every position.
func ListInvestmentsHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "list_investments", func(ctx context.Context, _ Params, _ trace.Span) (interface{}, error) {
		return svc.ListInvestments(ctx)
	})
}

// HistoryHandler returns the daily portfolio history, seeding it when empty.
func HistoryHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "portfolio_history", func(ctx context.Context, _ Params, _ trace.Span) (interface{}, error) {
		if err := svc.EnsureHistory(ctx, svc.Today()); err != nil {
			return nil, err
		}
		return svc.History(ctx)
	})
}

func ledgerEntry(p Params) (finance.Entry, error) {
	var e finance.Entry
	var err error
	if e.Date, err = p.getString("date"); err != nil {
		return e, err
	}
	if e.Description, err = p.getString("description"); err != nil {
		return e, err
	}
	if e.Category, err = p.getString("category"); err != nil {
		return e, err
	}
	if e.Amount, err = p.getFloat("amount"); err != nil {
		return e, err
	}
	return e, nil
}

// AddIncomeHandler stores an income entry.
func AddIncomeHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "add_income", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		e, err := ledgerEntry(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Float64("amount", e.Amount))
		return svc.AddIncome(ctx, e)
	})
}

// AddExpenseHandler stores an expense entry.
func AddExpenseHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "add_expense", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		e, err := ledgerEntry(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Float64("amount", e.Amount))
		return svc.AddExpense(ctx, e)
	})
}

// UpdateIncomeHandler replaces an income entry.
func UpdateIncomeHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "update_income", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		e, err := ledgerEntry(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("id", id), attribute.Float64("amount", e.Amount))
		return svc.UpdateIncome(ctx, id, e)
	})
}

// UpdateExpenseHandler replaces an expense entry.
func UpdateExpenseHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "update_expense", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		e, err := ledgerEntry(p)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("id", id), attribute.Float64("amount", e.Amount))
		return svc.UpdateExpense(ctx, id, e)
	})
}

// ListIncomesHandler returns the income entries.
func ListIncomesHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "list_incomes", func(ctx context.Context, _ Params, _ trace.Span) (interface{}, error) {
		return svc.ListIncomes(ctx)
	})
}

// ListExpensesHandler returns the expense entries.
func ListExpensesHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "list_expenses", func(ctx context.Context, _ Params, _ trace.Span) (interface{}, error) {
		return svc.ListExpenses(ctx)
	})
}

// DeleteIncomeHandler removes an income entry.
func DeleteIncomeHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "delete_income", func(ctx context.Context, p Params, _ trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteIncome(ctx, id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}

// DeleteExpenseHandler removes an expense entry.
func DeleteExpenseHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "delete_expense", func(ctx context.Context, p Params, _ trace.Span) (interface{}, error) {
		id, err := p.id()
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteExpense(ctx, id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}

// CashFlowHandler totals incomes and expenses.
func CashFlowHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "cash_flow", func(ctx context.Context, _ Params, span trace.Span) (interface{}, error) {
		cf, err := svc.CashFlow(ctx)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Float64("balance", cf.Balance))
		return cf, nil
	})
}

// SetGoalHandler stores the portfolio goal.
func SetGoalHandler(svc *finance.Service, tracer trace.Tracer) ToolHandler {
	return instrument(tracer, "set_goal", func(ctx context.Context, p Params, span trace.Span) (interface{}, error) {
		amount, err := p.getFloat("amount")
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Float64("amount", amount))
		if err := svc.SetGoal(ctx, amount); err != nil {
			return nil, err
		}
		return map[string]float64{"goal": amount}, nil
	})
}
