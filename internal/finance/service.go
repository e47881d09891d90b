// Package finance holds the application operations of the personal finance
// tracker: saved simulator scenarios, the investment portfolio and its daily
// history, the income/expense ledger, the goal setting and whole-store backup.
package finance

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/validators"
)

// ErrValidation marks input rejected by the form rules.
var ErrValidation = errors.New("validation failed")

// Service runs the finance operations against a record store.
type Service struct {
	store  store.RecordStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, e.g. to pin dates in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service over st.
func NewService(st store.RecordStore, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current UTC calendar day in the store date format.
func (s *Service) Today() string {
	return s.now().UTC().Format(validators.DateLayout)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// firstError returns the first non-nil error of checks.
func firstError(checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return invalid(err)
		}
	}
	return nil
}
