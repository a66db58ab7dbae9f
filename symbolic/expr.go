// Package symbolic is the math collaborator behind the calculator.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), with an inexact flag for values
//     that entered the tree as floats
//   - Deterministic simplification and stable output
//   - Plain-text and LaTeX rendering of every node
//   - Errors instead of panics for anything a user can type
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	toJSON() map[string]interface{}
}

// ============================================================
// Num — rational number, optionally marked inexact
// ============================================================

type Num struct {
	val     *big.Rat
	inexact bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the exact fraction p/q. It panics when q is zero, which is a
// programming error: user input goes through Parse.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a float64 as an inexact number. Non-finite values are not
// representable and yield nil, false.
func NFloat(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFloat64(f), inexact: true}, true
}

// NRat wraps an exact rational. r is copied.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsExact() bool         { return !n.inexact }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.inexact {
		return strconv.FormatFloat(n.Float64(), 'g', 10, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.inexact || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": n.val.RatString()}
	if n.inexact {
		m["inexact"] = true
	}
	return m
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), inexact: a.inexact} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), inexact: a.inexact}
}
func numAbs(a *Num) *Num {
	r := new(big.Rat).Abs(a.val)
	return &Num{val: r, inexact: a.inexact}
}

// floatResult converts a float computed from exact inputs back into a Num.
func floatResult(f float64) (*Num, bool) { return NFloat(f) }

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return latexName(s.name) }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// latexName renders multi-letter names upright and splits a trailing digit run
// into a subscript: x1 -> x_{1}.
func latexName(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	base, sub := name[:i], name[i:]
	if len(base) > 1 {
		base = "\\mathrm{" + base + "}"
	}
	if sub != "" && i > 0 {
		return base + "_{" + sub + "}"
	}
	return base + sub
}

// ============================================================
// Const — named mathematical constants
// ============================================================

type Const struct {
	name  string
	value float64
}

var (
	Pi = &Const{name: "pi", value: math.Pi}
	E  = &Const{name: "E", value: math.E}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) LaTeX() string {
	if c == Pi || c.name == "pi" {
		return "\\pi"
	}
	return "e"
}
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func constNamed(name string) (*Const, bool) {
	switch name {
	case "pi":
		return Pi, true
	case "E":
		return E, true
	}
	return nil, false
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	type keyed struct {
		e      Expr
		key    string
		degree int
		peak   int
	}
	ks := make([]keyed, 0, len(order))
	for _, key := range order {
		coeff := coeffs[key]
		if coeff.IsZero() {
			continue
		}
		var term Expr
		if coeff.IsOne() && coeff.IsExact() {
			term = rests[key]
		} else {
			term = MulOf(coeff, rests[key])
		}
		ks = append(ks, keyed{e: term, key: key, degree: totalDegree(rests[key]), peak: peakDegree(rests[key])})
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].degree != ks[j].degree {
			return ks[i].degree > ks[j].degree
		}
		if ks[i].peak != ks[j].peak {
			return ks[i].peak > ks[j].peak
		}
		return ks[i].key < ks[j].key
	})
	result := make([]Expr, 0, len(ks)+1)
	for _, k := range ks {
		result = append(result, k.e)
	}
	if !numAccum.IsZero() || (numAccum.inexact && len(result) == 0) {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// totalDegree is the sum of positive integer exponents over symbols in a
// monomial; it only orders terms for display.
func totalDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
				return int(n.val.Num().Int64())
			}
		}
	case *Mul:
		d := 0
		for _, f := range v.factors {
			d += totalDegree(f)
		}
		return d
	}
	return 0
}

// peakDegree is the largest single exponent in a monomial, so x^2 sorts
// ahead of x*y.
func peakDegree(e Expr) int {
	if m, ok := e.(*Mul); ok {
		peak := 0
		for _, f := range m.factors {
			if d := totalDegree(f); d > peak {
				peak = d
			}
		}
		return peak
	}
	return totalDegree(e)
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		if i > 0 {
			if neg, ok := negated(t); ok {
				sb.WriteString(" - ")
				sb.WriteString(neg.String())
				continue
			}
			sb.WriteString(" + ")
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i > 0 {
			if neg, ok := negated(t); ok {
				sb.WriteString(" - ")
				sb.WriteString(neg.LaTeX())
				continue
			}
			sb.WriteString(" + ")
		}
		sb.WriteString(t.LaTeX())
	}
	return sb.String()
}

// negated reports whether t carries a negative leading coefficient and, if
// so, returns -t.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return MulOf(append([]Expr{numNeg(c)}, v.factors[1:]...)...), true
		}
	}
	return nil, false
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	exps := map[string]Expr{}
	bases := map[string]Expr{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if _, seen := exps[key]; !seen {
			order = append(order, key)
			bases[key] = base
			exps[key] = exp
			continue
		}
		exps[key] = AddOf(exps[key], exp)
	}
	if coeff.IsZero() {
		return zeroProduct(coeff, flat)
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, 0, len(order))
	for _, key := range order {
		var merged Expr
		if en, ok := exps[key].(*Num); ok && en.IsOne() {
			merged = bases[key]
		} else {
			merged = PowOf(bases[key], exps[key])
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Mul:
			// (a*b)^n distributed by PowOf
			for _, inner := range v.factors {
				if n, ok := inner.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					ks = append(ks, keyed{e: inner, key: inner.String()})
				}
			}
			continue
		}
		ks = append(ks, keyed{e: merged, key: merged.String()})
	}
	if coeff.IsZero() {
		return zeroProduct(coeff, flat)
	}
	if len(ks) == 0 {
		return coeff
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	others := make([]Expr, len(ks))
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() && coeff.IsExact() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// zeroProduct is 0 unless a factor is itself undefined, such as the 1/0 in
// 0/0. That factor is kept so Eval still fails.
func zeroProduct(zero *Num, factors []Expr) Expr {
	for _, f := range factors {
		if p, ok := f.(*Pow); ok && undefinedPow(p.base, p.exp) {
			return p
		}
	}
	return zero
}

// undefinedPow reports 0^e for a numeric e <= 0.
func undefinedPow(base, exp Expr) bool {
	bn, ok := base.(*Num)
	if !ok || !bn.IsZero() {
		return false
	}
	en, ok := exp.(*Num)
	return ok && !en.IsPositive()
}

// splitFraction separates factors into numerator and denominator parts for
// display. Negative integer powers move to the denominator.
func (m *Mul) splitFraction() (num, den []Expr, coeff *Num) {
	coeff = N(1)
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = v
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(v.base, numNeg(en)))
				continue
			}
			num = append(num, f)
		default:
			num = append(num, f)
		}
	}
	return num, den, coeff
}

func factorString(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	num, den, coeff := m.splitFraction()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	numParts := []string{}
	denParts := []string{}
	switch {
	case coeff.inexact:
		numParts = append(numParts, coeff.String())
	case coeff.IsInteger():
		if !coeff.IsOne() || len(num) == 0 {
			numParts = append(numParts, coeff.String())
		}
	default:
		if !(coeff.val.Num().IsInt64() && coeff.val.Num().Int64() == 1) || len(num) == 0 {
			numParts = append(numParts, coeff.val.Num().String())
		}
		denParts = append(denParts, coeff.val.Denom().String())
	}
	for _, f := range num {
		numParts = append(numParts, factorString(f))
	}
	for _, f := range den {
		denParts = append(denParts, factorString(f))
	}
	out := sign + strings.Join(numParts, "*")
	if len(denParts) == 0 {
		return out
	}
	if len(numParts) == 0 {
		out = sign + "1"
	}
	if len(denParts) == 1 {
		return out + "/" + denParts[0]
	}
	return out + "/(" + strings.Join(denParts, "*") + ")"
}

func factorLaTeX(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

func (m *Mul) LaTeX() string {
	num, den, coeff := m.splitFraction()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	numParts := []string{}
	denParts := []string{}
	switch {
	case coeff.inexact:
		numParts = append(numParts, coeff.LaTeX())
	case coeff.IsInteger():
		if !coeff.IsOne() || len(num) == 0 {
			numParts = append(numParts, coeff.LaTeX())
		}
	default:
		if !(coeff.val.Num().IsInt64() && coeff.val.Num().Int64() == 1) {
			numParts = append(numParts, coeff.val.Num().String())
		}
		denParts = append(denParts, coeff.val.Denom().String())
	}
	for _, f := range num {
		numParts = append(numParts, factorLaTeX(f))
	}
	for _, f := range den {
		denParts = append(denParts, factorLaTeX(f))
	}
	top := strings.Join(numParts, " ")
	if top == "" {
		top = "1"
	}
	if len(denParts) == 0 {
		return sign + top
	}
	return sign + "\\frac{" + top + "}{" + strings.Join(denParts, " ") + "}"
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// extractCoefficient splits a term into its numeric coefficient and the rest.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if base == Expr(E) {
		return ExpOf(exp)
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		// 0^0 is indeterminate; 0^negative is division by zero.
		if expIsNum && (en.IsZero() || en.IsNegative()) {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if baseIsNum && bn.IsOne() {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if en.IsInteger() && en.IsExact() {
			e := en.val.Num().Int64()
			if e >= -64 && e <= 64 && ratBits(bn)*absInt(e) <= maxFoldBits {
				result := N(1)
				for i := int64(0); i < absInt(e); i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					return numRecip(result)
				}
				return result
			}
		}
		if bn.inexact || en.inexact {
			if bn.IsPositive() {
				if v, ok := floatResult(math.Pow(bn.Float64(), en.Float64())); ok {
					return v
				}
			}
		}
	}
	if expIsNum && en.IsInteger() {
		if inner, ok := base.(*Pow); ok {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
		if m, ok := base.(*Mul); ok {
			factors := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				factors[i] = PowOf(f, exp)
			}
			return MulOf(factors...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// maxFoldBits bounds the size of an exact power folded into one number;
// larger powers stay symbolic and evaluate as floats.
const maxFoldBits = 1 << 14

func ratBits(n *Num) int64 {
	return int64(n.val.Num().BitLen() + n.val.Denom().BitLen())
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func powBaseString(b Expr) string {
	switch v := b.(type) {
	case *Add, *Mul, *Pow:
		return "(" + b.String() + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + b.String() + ")"
		}
	}
	return b.String()
}

func powExpString(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + e.String() + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && en.IsExact() {
		if en.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
		if en.IsNegative() {
			return "1/" + factorString(PowOf(p.base, numNeg(en)))
		}
	}
	return powBaseString(p.base) + "^" + powExpString(p.exp)
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.IsExact() {
		if en.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
		if en.IsNegative() {
			return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			baseStr = "\\left(" + baseStr + "\\right)"
		}
	case *Func:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if FreeOf(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if FreeOf(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if b.IsZero() && !e.IsPositive() {
		return nil, false
	}
	if e.IsInteger() && e.IsExact() && b.IsExact() {
		if s, ok := PowOf(b, e).(*Num); ok {
			return s, true
		}
	}
	return floatResult(math.Pow(b.Float64(), e.Float64()))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }
