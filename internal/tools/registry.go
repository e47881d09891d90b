package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/financaspro/financas/internal/config"
	"github.com/financaspro/financas/internal/finance"
)

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Tool describes a registered tool.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
}

type entry struct {
	tool    Tool
	handler ToolHandler
}

// Registry maps tool names to handlers.
type Registry struct {
	entries map[string]entry
}

// NewRegistry registers every finance tool.
func NewRegistry(cfg *config.Config, svc *finance.Service, tracer trace.Tracer) *Registry {
	r := &Registry{entries: map[string]entry{}}

	projection := []string{"initial_capital", "monthly_contribution", "annual_rate_percent", "years"}
	investment := []string{"category", "name", "purchase_date", "purchase_value", "sale_date", "current_value"}
	ledger := []string{"date", "description", "category", "amount"}

	r.Register(Tool{Name: "simulate_compound_interest", Description: "Project monthly compound growth with contributions", Params: projection},
		SimulateHandler(cfg, svc, tracer))
	r.Register(Tool{Name: "save_scenario", Description: "Project and save a named scenario", Params: append([]string{"name"}, projection...)},
		SaveScenarioHandler(cfg, svc, tracer))
	r.Register(Tool{Name: "list_scenarios", Description: "List saved scenarios"},
		ListScenariosHandler(svc, tracer))
	r.Register(Tool{Name: "load_scenario", Description: "Rerun the simulator with a saved scenario", Params: []string{"id"}},
		LoadScenarioHandler(cfg, svc, tracer))
	r.Register(Tool{Name: "portfolio_dashboard", Description: "Portfolio totals, weighted return, allocation and ranking"},
		DashboardHandler(svc, tracer))
	r.Register(Tool{Name: "add_investment", Description: "Add a portfolio position", Params: investment},
		AddInvestmentHandler(svc, tracer))
	r.Register(Tool{Name: "update_investment", Description: "Replace a portfolio position", Params: append([]string{"id"}, investment...)},
		UpdateInvestmentHandler(svc, tracer))
	r.Register(Tool{Name: "delete_investment", Description: "Delete a portfolio position", Params: []string{"id"}},
		DeleteInvestmentHandler(svc, tracer))
	r.Register(Tool{Name: "list_investments", Description: "List portfolio positions"},
		ListInvestmentsHandler(svc, tracer))
	r.Register(Tool{Name: "portfolio_history", Description: "Daily portfolio value history"},
		HistoryHandler(svc, tracer))
	r.Register(Tool{Name: "add_income", Description: "Add an income entry", Params: ledger},
		AddIncomeHandler(svc, tracer))
	r.Register(Tool{Name: "add_expense", Description: "Add an expense entry", Params: ledger},
		AddExpenseHandler(svc, tracer))
	r.Register(Tool{Name: "update_income", Description: "Replace an income entry", Params: append([]string{"id"}, ledger...)},
		UpdateIncomeHandler(svc, tracer))
	r.Register(Tool{Name: "update_expense", Description: "Replace an expense entry", Params: append([]string{"id"}, ledger...)},
		UpdateExpenseHandler(svc, tracer))
	r.Register(Tool{Name: "list_incomes", Description: "List income entries"},
		ListIncomesHandler(svc, tracer))
	r.Register(Tool{Name: "list_expenses", Description: "List expense entries"},
		ListExpensesHandler(svc, tracer))
	r.Register(Tool{Name: "delete_income", Description: "Delete an income entry", Params: []string{"id"}},
		DeleteIncomeHandler(svc, tracer))
	r.Register(Tool{Name: "delete_expense", Description: "Delete an expense entry", Params: []string{"id"}},
		DeleteExpenseHandler(svc, tracer))
	r.Register(Tool{Name: "cash_flow", Description: "Income and expense totals and balance"},
		CashFlowHandler(svc, tracer))
	r.Register(Tool{Name: "set_goal", Description: "Set the portfolio goal", Params: []string{"amount"}},
		SetGoalHandler(svc, tracer))

	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(tool Tool, handler ToolHandler) {
	r.entries[tool.Name] = entry{tool: tool, handler: handler}
}

// Tools lists the registered tools by name.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool.
func (r *Registry) Call(ctx context.Context, name string, params map[string]interface{}) (interface{}, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return e.handler(ctx, params)
}
