package efd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"credsped/internal/efd"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234,56", 1234.56},
		{"1.234,56", 1234.56},
		{"1.234.567,89", 1234567.89},
		{"0,65", 0.65},
		{"100,00", 100},
		{"-1.234,56", -1234.56},
		{"1234.56", 1234.56}, // already canonical
		{"42", 42},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"1,2,3", 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, efd.ParseDecimal(tc.in), 1e-9, "input %q", tc.in)
	}
}

func TestParseDecimal_Idempotent(t *testing.T) {
	// Re-parsing a canonically formatted value must not change it.
	v := efd.ParseDecimal("1.234,56")
	assert.InDelta(t, v, efd.ParseDecimal("1234.56"), 1e-9)
}

func TestFormatBR(t *testing.T) {
	assert.Equal(t, "1234,56", efd.FormatBR(1234.56))
	assert.Equal(t, "0,00", efd.FormatBR(0))
	assert.Equal(t, "-10,50", efd.FormatBR(-10.5))
	assert.Equal(t, "100,00", efd.FormatBR(100))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", efd.FormatBRL(1234.56))
	assert.Equal(t, "R$ 0,65", efd.FormatBRL(0.65))
	assert.Equal(t, "R$ 1.234.567,89", efd.FormatBRL(1234567.89))
	assert.Equal(t, "R$ -1.234,56", efd.FormatBRL(-1234.56))
	assert.Equal(t, "R$ 100,00", efd.FormatBRL(100))
}

func TestFormatBR_RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.65, 100, 1234.56, -42.1} {
		assert.InDelta(t, v, efd.ParseDecimal(efd.FormatBR(v)), 1e-9)
	}
}
