package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmpty is returned for expression text with no tokens.
var ErrEmpty = errors.New("empty expression")

// SyntaxError reports malformed expression text.
type SyntaxError struct {
	Pos int    // Byte offset of the offending token
	Msg string // What was wrong there
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
)

type token struct {
	kind tokenKind
	op   byte
	num  float64
	pos  int
}

// lex splits text into number and operator tokens.
func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("+-*/%^", c) >= 0:
			// "++" and "--" are increment and decrement, never two signs.
			if (c == '+' || c == '-') && i+1 < len(text) && text[i+1] == c {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q", text[i:i+2])}
			}
			toks = append(toks, token{kind: tokOp, op: c, pos: i})
			i++
		case isDigit(c) || c == '.':
			n, end, err := lexNumber(text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNumber, num: n, pos: i})
			i = end
		case strings.HasPrefix(text[i:], "NaN"):
			toks = append(toks, token{kind: tokNumber, num: math.NaN(), pos: i})
			i += len("NaN")
		case strings.HasPrefix(text[i:], "Infinity"):
			toks = append(toks, token{kind: tokNumber, num: math.Inf(1), pos: i})
			i += len("Infinity")
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(text)})
	return toks, nil
}

// lexNumber scans digits[.digits][e[+-]digits] starting at start.
// Either side of the dot may be empty but not both.
func lexNumber(text string, start int) (float64, int, error) {
	i := start
	digits := 0
	for i < len(text) && isDigit(text[i]) {
		i++
		digits++
	}
	if i < len(text) && text[i] == '.' {
		i++
		for i < len(text) && isDigit(text[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0, &SyntaxError{Pos: start, Msg: "number has no digits"}
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < len(text) && (text[j] == '+' || text[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(text) && isDigit(text[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			return 0, 0, &SyntaxError{Pos: i, Msg: "exponent has no digits"}
		}
		i = j
	}

	lit := text[start:i]
	if strings.HasPrefix(lit, ".") {
		lit = "0" + lit
	}
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// Out-of-range literals overflow to ±Inf like any float would.
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, 0, &SyntaxError{Pos: start, Msg: fmt.Sprintf("bad number %q", text[start:i])}
		}
	}
	return n, i, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parser is a recursive-descent parser over the grammar
//
//	expr  = term { ("+" | "-") term }
//	term  = unary { ("*" | "/" | "%") unary }
//	unary = ("+" | "-") ( unary | number ) | power
//	power = number [ "^" unary ]
//
// A signed operand may not be the base of "^": "-2 ^ 2" is an error.
type parser struct {
	toks []token
	pos  int
}

// Eval evaluates raw expression text.
func Eval(text string) (float64, error) {
	toks, err := lex(text)
	if err != nil {
		return 0, err
	}
	if len(toks) == 1 {
		return 0, ErrEmpty
	}

	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, p.unexpected(t)
	}
	return v, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	switch t.kind {
	case tokEOF:
		return &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	case tokNumber:
		return &SyntaxError{Pos: t.pos, Msg: "unexpected number"}
	default:
		return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected operator %q", t.op)}
	}
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if t.op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/' && t.op != '%') {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch t.op {
		case '*':
			left *= right
		case '/':
			left /= right
		case '%':
			left = math.Mod(left, right)
		}
	}
}

func (p *parser) unary() (float64, error) {
	t := p.peek()
	if t.kind != tokOp || (t.op != '+' && t.op != '-') {
		return p.power()
	}
	p.next()

	var (
		v   float64
		err error
	)
	if nt := p.peek(); nt.kind == tokOp && (nt.op == '+' || nt.op == '-') {
		v, err = p.unary()
	} else {
		v, err = p.operand()
	}
	if err != nil {
		return 0, err
	}
	if nt := p.peek(); nt.kind == tokOp && nt.op == '^' {
		return 0, &SyntaxError{Pos: nt.pos, Msg: "signed operand before ^"}
	}

	if t.op == '-' {
		return -v, nil
	}
	return v, nil
}

func (p *parser) power() (float64, error) {
	base, err := p.operand()
	if err != nil {
		return 0, err
	}

	if nt := p.peek(); nt.kind == tokOp && nt.op == '^' {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return 0, err
		}
		return pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) operand() (float64, error) {
	t := p.next()
	if t.kind != tokNumber {
		return 0, p.unexpected(t)
	}
	return t.num, nil
}

// pow differs from math.Pow only where IEEE-754 pow and ECMAScript ** disagree.
func pow(base, exp float64) float64 {
	if math.IsInf(exp, 0) && math.Abs(base) == 1 {
		return math.NaN()
	}
	return math.Pow(base, exp)
}
