package efd

import (
	"strconv"
	"strings"
)

// ParseDecimal converts a Brazilian-formatted decimal string ("1.234,56")
// to a float64. It is total: empty, malformed or unmappable input yields 0.
// A string already in canonical form ("1234.56") parses unchanged.
func ParseDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		// Periods are thousands separators whenever a decimal comma exists.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatBR renders a value with two decimals and a decimal comma,
// without thousands separators ("9999,99").
func FormatBR(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

// FormatBRL renders a currency amount in full Brazilian notation,
// e.g. "R$ 1.234,56".
func FormatBRL(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "R$ -" + b.String() + "," + fracPart
	}
	return out
}
