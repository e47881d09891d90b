package validators

import (
	"fmt"
	"strings"
	"time"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/config"
	"github.com/financaspro/financas/pkg/utils"
)

// DateLayout is the calendar-day format used for every stored date.
const DateLayout = "2006-01-02"

// ValidatePositiveNumber checks that value is finite and within [minInclusive, maxInclusive].
func ValidatePositiveNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%s: value is not a finite number", name)
	}
	if value < minInclusive {
		return fmt.Errorf("%s: value must be ≥ %.0f", name, minInclusive)
	}
	if value > maxInclusive {
		return fmt.Errorf("%s: value is too large (>%.0f)", name, maxInclusive)
	}
	return nil
}

// ValidateStrictlyPositive checks that value is finite and greater than zero.
func ValidateStrictlyPositive(name string, value float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%s: value is not a finite number", name)
	}
	if value <= 0 {
		return fmt.Errorf("%s: value must be > 0", name)
	}
	return nil
}

// ValidateIntRange checks that value is within [minInclusive, maxInclusive].
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fmt.Errorf("%s: value must be in [%d; %d]", name, minInclusive, maxInclusive)
	}
	return nil
}

// ValidateRequired checks that a text field is not blank.
func ValidateRequired(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: value is required", name)
	}
	return nil
}

// ValidateDate checks that value is a YYYY-MM-DD calendar day.
func ValidateDate(name, value string) error {
	if err := ValidateRequired(name, value); err != nil {
		return err
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return nil
}

// CheckCapital checks the initial capital.
func CheckCapital(cfg *config.Config, capital float64) error {
	return ValidatePositiveNumber("initial_capital", capital, 0.0, cfg.MaxCapital)
}

// CheckRate checks the annual interest rate.
func CheckRate(cfg *config.Config, rate float64) error {
	return ValidatePositiveNumber("annual_rate_percent", rate, 0.0, cfg.MaxRate)
}

// CheckYears checks the projection length.
func CheckYears(cfg *config.Config, years int) error {
	return ValidateIntRange("years", years, 1, cfg.MaxYears)
}

// CheckContribution checks the monthly contribution.
func CheckContribution(cfg *config.Config, contribution float64) error {
	return ValidatePositiveNumber("monthly_contribution", contribution, 0.0, cfg.MaxContribution)
}

// CheckProjection applies the simulator form rules to a projection input.
func CheckProjection(cfg *config.Config, in calculations.ProjectionInput) error {
	if err := CheckCapital(cfg, in.InitialCapital); err != nil {
		return err
	}
	if err := CheckContribution(cfg, in.MonthlyContribution); err != nil {
		return err
	}
	if err := CheckRate(cfg, in.AnnualRatePercent); err != nil {
		return err
	}
	return CheckYears(cfg, in.Years)
}
