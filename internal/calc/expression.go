// Package calc turns a tag sequence into a number.
//
// The sequence is first written out as expression text, then parsed by a
// small recursive-descent parser that only understands numeric literals and
// the operators + - * / % ^. Nothing else is ever evaluated.
package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/f3rmion/tagcalc/internal/tag"
)

// Build writes the expression text for items.
//
// Operators are appended with a leading space, parentheses are skipped, ^ is
// kept as the power operator, and every other item appends its value with no
// separator, so two consecutive values run together into one literal.
func Build(items []tag.Item) string {
	var b strings.Builder
	for _, it := range items {
		switch it.Name {
		case "+", "-", "*", "/", "%", "^":
			b.WriteString(" ")
			b.WriteString(it.Name)
		case "(", ")":
			// Grouping is display only.
		default:
			b.WriteString(FormatNumber(it.Value))
		}
	}
	return b.String()
}

// FormatNumber renders v the way a JavaScript number prints: shortest
// round-trip decimal, exponent form outside [1e-6, 1e21), and the words
// NaN and Infinity.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// Format renders v for the result display. Non-finite values render empty.
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return FormatNumber(v)
}
