package tools

import (
	"errors"
	"fmt"
	"math"

	"github.com/financaspro/financas/internal/calculations"
)

// ErrInvalidParams is returned when a tool parameter is missing or has the wrong type.
var ErrInvalidParams = errors.New("invalid parameter")

// Params are the decoded JSON arguments of a tool call. Numbers arrive as float64.
type Params map[string]interface{}

func (p Params) getFloat(name string) (float64, error) {
	v, ok := p[name].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParams, name)
	}
	return v, nil
}

func (p Params) getOptionalFloat(name string, fallback float64) (float64, error) {
	if _, present := p[name]; !present {
		return fallback, nil
	}
	return p.getFloat(name)
}

func (p Params) getInt(name string) (int, error) {
	v, err := p.getFloat(name)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a whole number", ErrInvalidParams, name)
	}
	return int(v), nil
}

func (p Params) id() (int64, error) {
	v, err := p.getInt("id")
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: id must be positive", ErrInvalidParams)
	}
	return int64(v), nil
}

func (p Params) getString(name string) (string, error) {
	v, ok := p[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidParams, name)
	}
	return v, nil
}

func (p Params) getOptionalString(name string) (string, error) {
	if v, present := p[name]; !present || v == nil {
		return "", nil
	}
	return p.getString(name)
}

func (p Params) projection() (calculations.ProjectionInput, error) {
	var in calculations.ProjectionInput
	var err error
	if in.InitialCapital, err = p.getFloat("initial_capital"); err != nil {
		return in, err
	}
	if in.MonthlyContribution, err = p.getOptionalFloat("monthly_contribution", 0); err != nil {
		return in, err
	}
	if in.AnnualRatePercent, err = p.getFloat("annual_rate_percent"); err != nil {
		return in, err
	}
	if in.Years, err = p.getInt("years"); err != nil {
		return in, err
	}
	return in, nil
}
