package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/tagcalc/internal/tag"
)

func num(v float64) tag.Item {
	return tag.Item{Category: "number", ID: FormatNumber(v), Name: "n" + FormatNumber(v), Value: v}
}

func sym(s string) tag.Item {
	return tag.Symbol(s)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		items []tag.Item
		want  float64
	}{
		{"addition", []tag.Item{num(5), sym("+"), num(3)}, 8},
		{"power", []tag.Item{num(2), sym("^"), num(3)}, 8},
		{"juxtaposed values concatenate", []tag.Item{num(2), num(3)}, 23},
		{"juxtaposed decimals", []tag.Item{num(1.5), num(2)}, 1.52},
		{"parentheses ignored", []tag.Item{sym("("), num(4), sym("+"), num(1), sym(")")}, 5},
		{"grouping has no effect", []tag.Item{sym("("), num(1), sym("+"), num(2), sym(")"), sym("*"), num(3)}, 7},
		{"precedence", []tag.Item{num(2), sym("+"), num(3), sym("*"), num(4)}, 14},
		{"power above multiply", []tag.Item{num(2), sym("*"), num(3), sym("^"), num(2)}, 18},
		{"power is right associative", []tag.Item{num(2), sym("^"), num(3), sym("^"), num(2)}, 512},
		{"subtraction is left associative", []tag.Item{num(10), sym("-"), num(4), sym("-"), num(3)}, 3},
		{"division is left associative", []tag.Item{num(100), sym("/"), num(10), sym("/"), num(5)}, 2},
		{"remainder", []tag.Item{num(7), sym("%"), num(3)}, 1},
		{"remainder keeps dividend sign", []tag.Item{sym("-"), num(7), sym("%"), num(3)}, -1},
		{"unary minus", []tag.Item{sym("-"), num(3)}, -3},
		{"sign after operator", []tag.Item{num(5), sym("*"), sym("-"), num(3)}, -15},
		{"negative value joins previous", []tag.Item{num(5), num(-3)}, 2},
		{"trailing operator recovered", []tag.Item{num(5), sym("+"), num(3), sym("*")}, 8},
		{"single value", []tag.Item{num(42)}, 42},
		{"empty", nil, 0},
		{"lone operator", []tag.Item{sym("+")}, 0},
		{"consecutive binary operators", []tag.Item{num(5), sym("+"), sym("*"), num(3)}, 0},
		{"only parentheses", []tag.Item{sym("("), sym(")")}, 0},
		{"minus before negative value", []tag.Item{num(5), sym("-"), num(-3)}, 0},
		{"spaced double minus", []tag.Item{num(5), sym("-"), sym("-"), num(3)}, 8},
		{"negative value as power base", []tag.Item{num(-2), sym("^"), num(2)}, 0},
		{"sign before power base", []tag.Item{sym("-"), num(2), sym("^"), num(2)}, 0},
		{"negative exponent", []tag.Item{num(2), sym("^"), num(-1)}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Evaluate(tt.items), 1e-9)
		})
	}
}

func TestEvaluateParenthesesAreNoOps(t *testing.T) {
	grouped := []tag.Item{sym("("), num(4), sym("+"), num(1), sym(")")}
	plain := []tag.Item{num(4), sym("+"), num(1)}
	assert.Equal(t, Evaluate(plain), Evaluate(grouped))
	assert.Equal(t, 5.0, Evaluate(grouped))
}

func TestEvaluateDivisionByZero(t *testing.T) {
	var v float64
	require.NotPanics(t, func() {
		v = Evaluate([]tag.Item{num(10), sym("/"), num(0)})
	})
	assert.True(t, math.IsInf(v, 1))
	assert.Equal(t, "", Format(v))

	nan := Evaluate([]tag.Item{num(0), sym("/"), num(0)})
	assert.True(t, math.IsNaN(nan))
	assert.Equal(t, "", Format(nan))

	mod := Evaluate([]tag.Item{num(5), sym("%"), num(0)})
	assert.True(t, math.IsNaN(mod))
}

func TestRunReportsRecovery(t *testing.T) {
	r := Run([]tag.Item{num(12), sym("+")})
	assert.Equal(t, "12 +", r.Built)
	assert.Equal(t, "12 ", r.Expression)
	assert.True(t, r.Recovered)
	assert.False(t, r.Failed())
	assert.Equal(t, 12.0, r.Value)

	r = Run([]tag.Item{sym("+")})
	assert.True(t, r.Failed())
	assert.False(t, r.Recovered)
	assert.Equal(t, 0.0, r.Value)

	r = Run([]tag.Item{num(1), sym("-"), num(1)})
	assert.False(t, r.Recovered)
	assert.NoError(t, r.Err)
	assert.Equal(t, "1 -1", r.Expression)
}

func TestRunRetryDropsOneCharacterOnly(t *testing.T) {
	// "5 + *34" loses only the 4 and is still malformed.
	r := Run([]tag.Item{num(5), sym("+"), sym("*"), num(34)})
	assert.Equal(t, "5 + *3", r.Expression)
	assert.True(t, r.Failed())
	assert.Equal(t, 0.0, r.Value)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		items []tag.Item
		want  string
	}{
		{"operators get a leading space", []tag.Item{num(5), sym("+"), num(3)}, "5 +3"},
		{"values run together", []tag.Item{num(2), num(3)}, "23"},
		{"parentheses dropped", []tag.Item{sym("("), num(1), sym(")")}, "1"},
		{"power kept", []tag.Item{num(2), sym("^"), num(8)}, "2 ^8"},
		{"all operators", []tag.Item{sym("+"), sym("-"), sym("*"), sym("/"), sym("%"), sym("^")}, " + - * / % ^"},
		{"symbol value ignored", []tag.Item{{Category: "symbol", Name: "+", Value: 9}}, " +"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.items))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{5, "5"},
		{-3, "-3"},
		{0.1, "0.1"},
		{2.5, "2.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1 + 2", 3, false},
		{".5 * 4", 2, false},
		{"5. + 1", 6, false},
		{"1e3 + 1", 1001, false},
		{"1.5e+2", 150, false},
		{"2 ^ -1", 0.5, false},
		{"-2 ^ 2", 0, true},
		{"2 ^ -2 ^ 2", 0, true},
		{"- - 3", 3, false},
		{"5 - -3", 8, false},
		{"5 --3", 0, true},
		{"5 ++3", 0, true},
		{"--3", 0, true},
		{"NaN", math.NaN(), false},
		{"Infinity - 1", math.Inf(1), false},
		{"", 0, true},
		{"   ", 0, true},
		{"1 +", 0, true},
		{"* 2", 0, true},
		{"2.53.5", 0, true},
		{"2.53.", 0, true},
		{".", 0, true},
		{"1e", 0, true},
		{"1 ** 2", 0, true},
		{"(1)", 0, true},
		{"alert(1)", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Eval(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRejectsIncrementOperators(t *testing.T) {
	_, err := Eval("5 --3")
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 2, syn.Pos)

	r := Run([]tag.Item{num(5), sym("-"), num(-3)})
	assert.Equal(t, "5 --3", r.Built)
	assert.True(t, r.Failed())
	assert.Equal(t, 0.0, r.Value)
}

func TestEvalSignedPowerBase(t *testing.T) {
	_, err := Eval("-2 ^ 2")
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 3, syn.Pos)

	r := Run([]tag.Item{num(-2), sym("^"), num(2)})
	assert.Equal(t, "-2 ^2", r.Built)
	assert.True(t, r.Failed())
	assert.Equal(t, 0.0, r.Value)
}

func TestEvalEmpty(t *testing.T) {
	_, err := Eval(" ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Eval("1 +")
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 3, syn.Pos)
}
