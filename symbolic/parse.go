package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"text/scanner"
	"unicode"
)

// ============================================================
// Parser
// ============================================================
//
//   expr    = term {("+" | "-") term}
//   term    = unary {("*" | "/") unary}
//   unary   = ("-" | "+") unary | power
//   power   = primary [("^" | "**") unary]
//   primary = number | name ["(" expr ")"] | "(" expr ")"
//
// Numbers are exact decimals. There is no implicit multiplication: "2x" is an
// error, write "2*x".

const (
	// MaxExprLen bounds the input accepted by Parse, in bytes.
	MaxExprLen = 4096
	// maxNesting bounds parentheses, calls, signs and exponents nested in
	// one another.
	maxNesting = 256
)

type parser struct {
	s     scanner.Scanner
	tok   rune
	pos   int
	depth int
	// undefined is set when a function argument divides by zero; Apply
	// simplifies arguments, so the final tree may no longer show it.
	undefined bool
}

// Parse reads an expression in the usual calculator notation. Malformed input
// gives a *SyntaxError that unwraps to ErrSyntax. A division by zero, or 0^0,
// anywhere in the expression gives ErrNotFinite.
func Parse(text string) (expr Expr, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	if len(text) > MaxExprLen {
		return nil, &SyntaxError{Pos: MaxExprLen, Msg: fmt.Sprintf("expression longer than %d bytes", MaxExprLen)}
	}
	p := &parser{}
	p.s.Init(strings.NewReader(text))
	p.s.Mode = scanner.ScanIdents | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		panic(&SyntaxError{Pos: s.Pos().Offset, Msg: msg})
	}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			expr, err = nil, se
		}
	}()
	p.next()
	e := p.expr()
	if p.tok != scanner.EOF {
		p.fail("unexpected %s", p.describe())
	}
	if p.undefined || divides0(e) {
		return nil, fmt.Errorf("%w: zero raised to a non-positive power in %s", ErrNotFinite, strings.TrimSpace(text))
	}
	return e.Simplify(), nil
}

// divides0 reports whether some power in the unsimplified tree has a base
// that simplifies to zero and a non-positive exponent. It runs before
// simplification, which would otherwise cancel 1/0 - 1/0 to 0.
func divides0(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if divides0(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if divides0(f) {
				return true
			}
		}
	case *Pow:
		if divides0(v.base) || divides0(v.exp) {
			return true
		}
		return undefinedPow(v.base.Simplify(), v.exp.Simplify())
	case *Func:
		return divides0(v.arg)
	}
	return false
}

// MustParse is Parse for literals in code and tests.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.pos = p.s.Position.Offset
	if p.tok == scanner.EOF {
		p.pos = p.s.Pos().Offset
	}
}

func (p *parser) fail(format string, args ...interface{}) {
	p.failAt(p.pos, format, args...)
}

func (p *parser) failAt(pos int, format string, args ...interface{}) {
	panic(&SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) describe() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", p.s.TokenText())
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.fail("expected %q, found %s", string(tok), p.describe())
	}
	p.next()
}

// expr and term collect operands into one flat node so long sums and
// products do not nest.
func (p *parser) expr() Expr {
	terms := []Expr{p.term()}
	for p.tok == '+' || p.tok == '-' {
		op := p.tok
		p.next()
		right := p.term()
		if op == '-' {
			right = &Mul{factors: []Expr{N(-1), right}}
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Add{terms: terms}
}

func (p *parser) term() Expr {
	factors := []Expr{p.unary()}
	for {
		switch p.tok {
		case '*':
			p.next()
			factors = append(factors, p.unary())
		case '/':
			p.next()
			factors = append(factors, &Pow{base: p.unary(), exp: N(-1)})
		default:
			if len(factors) == 1 {
				return factors[0]
			}
			return &Mul{factors: factors}
		}
	}
}

// unary is on the path of every nested operand, so it carries the depth check.
func (p *parser) unary() Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		p.fail("expression nested more than %d levels deep", maxNesting)
	}
	switch p.tok {
	case '-':
		p.next()
		return &Mul{factors: []Expr{N(-1), p.unary()}}
	case '+':
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() Expr {
	base := p.primary()
	switch {
	case p.tok == '^':
		p.next()
	case p.tok == '*' && p.s.Peek() == '*':
		p.s.Next()
		p.next()
	default:
		return base
	}
	return &Pow{base: base, exp: p.unary()}
}

func (p *parser) primary() Expr {
	switch p.tok {
	case scanner.Int, scanner.Float:
		text := p.s.TokenText()
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			p.fail("invalid number %q", text)
		}
		p.next()
		return NRat(r)
	case scanner.Ident:
		name, start := p.s.TokenText(), p.pos
		p.next()
		if p.tok == '(' {
			if !IsFunctionName(name) {
				p.failAt(start, "unknown function %q", name)
			}
			p.next()
			arg := p.expr()
			p.expect(')')
			p.undefined = p.undefined || divides0(arg)
			e, _ := Apply(name, arg)
			return e
		}
		if IsFunctionName(name) {
			p.failAt(start, "function %q needs an argument", name)
		}
		if c, ok := constNamed(name); ok {
			return c
		}
		return S(name)
	case '(':
		p.next()
		e := p.expr()
		p.expect(')')
		return e
	case scanner.EOF:
		p.fail("unexpected end of input")
	}
	p.fail("unexpected %s", p.describe())
	return nil
}

// ============================================================
// Variable lists
// ============================================================

// ParseSymbols splits "x,y" or "x y" into names. Duplicates are dropped and the
// first-seen order is kept.
func ParseSymbols(text string) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, ErrNoSymbols
	}
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, name := range fields {
		if !isIdent(name) {
			return nil, fmt.Errorf("%w: %q", ErrBadSymbol, name)
		}
		if _, isConst := constNamed(name); isConst || IsFunctionName(name) {
			return nil, fmt.Errorf("%w: %q is reserved", ErrBadSymbol, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func isIdent(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}
