package utils

import (
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  bool
	}{
		{name: "finite number", input: 123.45, want: true},
		{name: "infinity", input: math.Inf(1), want: false},
		{name: "negative infinity", input: math.Inf(-1), want: false},
		{name: "NaN", input: math.NaN(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.input); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{input: 1234.56, want: "R$ 1.234,56"},
		{input: 0, want: "R$ 0,00"},
		{input: 0.5, want: "R$ 0,50"},
		{input: 1000000, want: "R$ 1.000.000,00"},
		{input: -250.1, want: "-R$ 250,10"},
		{input: 1126.825, want: "R$ 1.126,83"},
		{input: math.NaN(), want: "-"},
	}

	for _, tt := range tests {
		if got := FormatCurrency(tt.input); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(98765.4); got != "98.765,40" {
		t.Errorf("FormatAmount() = %q, want %q", got, "98.765,40")
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(-5); got != "-5.00%" {
		t.Errorf("FormatPercent() = %q", got)
	}
	if got := FormatPercent(math.Inf(1)); got != "-" {
		t.Errorf("FormatPercent(Inf) = %q", got)
	}
}
