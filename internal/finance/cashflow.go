package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/validators"
	"github.com/financaspro/financas/pkg/utils"
)

// Entry is one income or expense. The json names are the ones the browser
// dashboard wrote to its receitas and despesas stores, so its backups load
// unchanged.
type Entry struct {
	ID          int64     `json:"id,omitempty"`
	Date        string    `json:"data"`
	Description string    `json:"descricao"`
	Category    string    `json:"categoria"`
	Amount      float64   `json:"valor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate applies the ledger form rules.
func (e Entry) Validate() error {
	return firstError(
		validators.ValidateDate("date", e.Date),
		validators.ValidateRequired("description", e.Description),
		validators.ValidateRequired("category", e.Category),
		validators.ValidateStrictlyPositive("amount", e.Amount),
	)
}

// CashFlowSummary totals the ledger.
type CashFlowSummary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Balance       float64 `json:"balance"`
	Incomes       int     `json:"incomes"`
	Expenses      int     `json:"expenses"`

	Formatted map[string]string `json:"formatted"`
}

// AddIncome stores an income entry.
func (s *Service) AddIncome(ctx context.Context, e Entry) (*Entry, error) {
	return s.addEntry(ctx, store.Incomes, e)
}

// AddExpense stores an expense entry.
func (s *Service) AddExpense(ctx context.Context, e Entry) (*Entry, error) {
	return s.addEntry(ctx, store.Expenses, e)
}

// UpdateIncome replaces the income entry with id.
func (s *Service) UpdateIncome(ctx context.Context, id int64, e Entry) (*Entry, error) {
	return s.updateEntry(ctx, store.Incomes, id, e)
}

// UpdateExpense replaces the expense entry with id.
func (s *Service) UpdateExpense(ctx context.Context, id int64, e Entry) (*Entry, error) {
	return s.updateEntry(ctx, store.Expenses, id, e)
}

// DeleteIncome removes an income entry.
func (s *Service) DeleteIncome(ctx context.Context, id int64) error {
	return s.deleteEntry(ctx, store.Incomes, id)
}

// DeleteExpense removes an expense entry.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteEntry(ctx, store.Expenses, id)
}

// ListIncomes returns income entries in id order.
func (s *Service) ListIncomes(ctx context.Context) ([]Entry, error) {
	return s.listEntries(ctx, store.Incomes)
}

// ListExpenses returns expense entries in id order.
func (s *Service) ListExpenses(ctx context.Context) ([]Entry, error) {
	return s.listEntries(ctx, store.Expenses)
}

// CashFlow totals incomes and expenses. Balance is incomes minus expenses.
func (s *Service) CashFlow(ctx context.Context) (*CashFlowSummary, error) {
	incomes, err := s.ListIncomes(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	in, out := sumEntries(incomes), sumEntries(expenses)
	summary := &CashFlowSummary{
		TotalIncome:   in.InexactFloat64(),
		TotalExpenses: out.InexactFloat64(),
		Balance:       in.Sub(out).InexactFloat64(),
		Incomes:       len(incomes),
		Expenses:      len(expenses),
	}
	summary.Formatted = map[string]string{
		"total_income":   utils.FormatAmount(summary.TotalIncome),
		"total_expenses": utils.FormatAmount(summary.TotalExpenses),
		"balance":        utils.FormatAmount(summary.Balance),
	}
	return summary, nil
}

func sumEntries(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

func normalizeEntry(e Entry) Entry {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	return e
}

func (s *Service) addEntry(ctx context.Context, collection string, e Entry) (*Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e = normalizeEntry(e)
	e.ID = 0
	e.CreatedAt = s.now().UTC()
	rec, err := store.Encode(e)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, collection, rec)
	if err != nil {
		return nil, fmt.Errorf("add %s entry: %w", collection, err)
	}
	e.ID = id
	s.logger.Info("ledger entry added", "collection", collection, "id", id, "amount", e.Amount)
	return &e, nil
}

func (s *Service) updateEntry(ctx context.Context, collection string, id int64, e Entry) (*Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("update %s entry: %w", collection, err)
	}
	var prev Entry
	if err := store.Decode(existing, &prev); err != nil {
		return nil, err
	}
	e = normalizeEntry(e)
	e.ID = id
	e.CreatedAt = prev.CreatedAt
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	rec, err := store.Encode(e)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Put(ctx, collection, rec); err != nil {
		return nil, fmt.Errorf("update %s entry: %w", collection, err)
	}
	return &e, nil
}

func (s *Service) deleteEntry(ctx context.Context, collection string, id int64) error {
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete %s entry: %w", collection, err)
	}
	s.logger.Info("ledger entry deleted", "collection", collection, "id", id)
	return nil
}

func (s *Service) listEntries(ctx context.Context, collection string) ([]Entry, error) {
	records, err := s.store.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return store.DecodeAll[Entry](records)
}
