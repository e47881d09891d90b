package finance

import (
	"context"
	"fmt"
	"sort"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/validators"
)

// HistoryEntry is the portfolio state on one calendar day.
type HistoryEntry struct {
	ID       int64   `json:"id,omitempty"`
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Invested float64 `json:"invested"`
	Return   float64 `json:"return"`
}

// History returns the daily entries, oldest first.
func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	records, err := s.store.GetAll(ctx, store.History)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	entries, err := store.DecodeAll[HistoryEntry](records)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// RecordHistory writes the current portfolio summary as the entry for day,
// replacing an existing entry for the same day.
func (s *Service) RecordHistory(ctx context.Context, day string) error {
	if err := validators.ValidateDate("date", day); err != nil {
		return invalid(err)
	}
	investments, err := s.ListInvestments(ctx)
	if err != nil {
		return err
	}
	summary := calculations.Summarize(holdings(investments))

	entries, err := s.History(ctx)
	if err != nil {
		return err
	}
	entry := HistoryEntry{
		Date:     day,
		Value:    summary.TotalCurrentValue,
		Invested: summary.TotalInvested,
		Return:   summary.WeightedReturnPercent,
	}
	for _, e := range entries {
		if e.Date == day {
			entry.ID = e.ID
			break
		}
	}

	rec, err := store.Encode(entry)
	if err != nil {
		return err
	}
	if entry.ID != 0 {
		_, err = s.store.Put(ctx, store.History, rec)
	} else {
		_, err = s.store.Add(ctx, store.History, rec)
	}
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	s.logger.Debug("history recorded", "date", day, "value", entry.Value)
	return nil
}

// EnsureHistory seeds the history with a single entry for day when it is
// empty. The seed treats the current value as the invested amount, so its
// return is 0.
func (s *Service) EnsureHistory(ctx context.Context, day string) error {
	entries, err := s.History(ctx)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return nil
	}
	investments, err := s.ListInvestments(ctx)
	if err != nil {
		return err
	}
	total := calculations.Summarize(holdings(investments)).TotalCurrentValue
	rec, err := store.Encode(HistoryEntry{Date: day, Value: total, Invested: total})
	if err != nil {
		return err
	}
	if _, err := s.store.Add(ctx, store.History, rec); err != nil {
		return fmt.Errorf("seed history: %w", err)
	}
	s.logger.Info("history seeded", "date", day, "value", total)
	return nil
}
