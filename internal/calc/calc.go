package calc

import (
	"unicode/utf8"

	"github.com/f3rmion/tagcalc/internal/tag"
)

// Result is the outcome of evaluating a tag sequence.
type Result struct {
	Value      float64 // Computed value; 0 when both attempts failed
	Built      string  // Expression text written from the tags
	Expression string  // Text that produced Value (Built, or Built minus its last character)
	Recovered  bool    // The first attempt failed and the shortened text succeeded
	Err        error   // Set only when both attempts failed
}

// Failed reports whether the value is the zero fallback.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Run evaluates items. A malformed expression is retried once with its last
// character dropped; if that fails too the value is 0.
func Run(items []tag.Item) Result {
	built := Build(items)

	v, err := Eval(built)
	if err == nil {
		return Result{Value: v, Built: built, Expression: built}
	}

	retry := dropLast(built)
	v, err = Eval(retry)
	if err == nil {
		return Result{Value: v, Built: built, Expression: retry, Recovered: true}
	}

	return Result{Built: built, Expression: retry, Err: err}
}

// Evaluate returns the value of items under the same policy as Run.
func Evaluate(items []tag.Item) float64 {
	return Run(items).Value
}

func dropLast(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
