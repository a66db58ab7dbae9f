package symbolic

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// ============================================================
// Expand
// ============================================================

// maxExpandTerms bounds the terms Expand may produce. Larger products are
// returned unexpanded.
const maxExpandTerms = 2000

func Expand(e Expr) Expr {
	if expandedSize(e) > maxExpandTerms {
		return e.Simplify()
	}
	return expandExpr(e).Simplify()
}

// expandedSize counts the terms expandExpr would produce, saturating just
// above maxExpandTerms. Terms inside function arguments and unexpanded
// powers count toward their own expansion only.
func expandedSize(e Expr) int {
	switch v := e.(type) {
	case *Add:
		n := 0
		for _, t := range v.terms {
			n = capTerms(n + expandedSize(t))
		}
		return n
	case *Mul:
		n := 1
		for _, f := range v.factors {
			n = capTerms(n * expandedSize(f))
		}
		return n
	case *Pow:
		if k, ok := v.exp.(*Num); ok && k.IsInteger() && k.IsExact() {
			if _, isAdd := v.base.(*Add); isAdd {
				if exp := k.val.Num().Int64(); exp >= 2 && exp <= 10 {
					return multisets(expandedSize(v.base), int(exp))
				}
			}
		}
		return nested(expandedSize(v.base), expandedSize(v.exp))
	case *Func:
		return nested(expandedSize(v.arg))
	}
	return 1
}

func capTerms(n int) int {
	if n > maxExpandTerms {
		return maxExpandTerms + 1
	}
	return n
}

// nested is 1 unless an inner expansion is already over the bound.
func nested(sizes ...int) int {
	for _, n := range sizes {
		if n > maxExpandTerms {
			return n
		}
	}
	return 1
}

// multisets is the number of distinct monomials of degree k in n terms,
// C(n+k-1, k).
func multisets(n, k int) int {
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - 1 + i) / i
		if r > maxExpandTerms {
			return maxExpandTerms + 1
		}
	}
	return r
}

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsExact() {
			exp := n.val.Num().Int64()
			if _, isAdd := v.base.(*Add); isAdd && exp >= 2 && exp <= 10 {
				result := Expr(N(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded sums term by term. Going through MulOf
// on the whole sums would fold (a+b)*(a+b) back into a power.
func distribute(a, b Expr) Expr {
	ta, tb := addTerms(a), addTerms(b)
	products := make([]Expr, 0, len(ta)*len(tb))
	for _, x := range ta {
		for _, y := range tb {
			products = append(products, MulOf(x, y))
		}
	}
	return AddOf(products...)
}

func addTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols returns the free symbol names of e in lexical order.
func SortedSymbols(e Expr) []string {
	syms := FreeSymbols(e)
	names := make([]string, 0, len(syms))
	for n := range syms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FreeOf reports whether e does not mention varName.
func FreeOf(e Expr, varName string) bool {
	_, found := FreeSymbols(e)[varName]
	return !found
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// ============================================================
// Integration (rule-based symbolic + numerical)
// ============================================================

// maxPartsDepth bounds nested integration by parts (x^n * exp(x) needs n+1).
const maxPartsDepth = 6

// Integrate returns an antiderivative of expr with respect to varName, without
// the constant of integration. It reports false when no rule applies, after one
// retry on the expanded form.
func Integrate(expr Expr, varName string) (Expr, bool) {
	expr = expr.Simplify()
	if r, ok := integrate(expr, varName, maxPartsDepth); ok {
		return r, true
	}
	if ex := Expand(expr); !ex.Equal(expr) {
		return integrate(ex, varName, maxPartsDepth)
	}
	return nil, false
}

func integrate(e Expr, v string, depth int) (Expr, bool) {
	x := S(v)
	if FreeOf(e, v) {
		return MulOf(e, x), true
	}
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, ok := integrate(term, v, depth)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true
	case *Mul:
		var consts, deps []Expr
		for _, f := range t.factors {
			if FreeOf(f, v) {
				consts = append(consts, f)
			} else {
				deps = append(deps, f)
			}
		}
		c := MulOf(consts...)
		switch len(deps) {
		case 1:
			r, ok := integrate(deps[0], v, depth)
			if !ok {
				return nil, false
			}
			return MulOf(c, r), true
		case 2:
			if depth <= 0 {
				return nil, false
			}
			r, ok := byParts(deps[0], deps[1], v, depth-1)
			if !ok {
				return nil, false
			}
			return MulOf(c, r), true
		}
		return nil, false
	case *Pow:
		if FreeOf(t.exp, v) {
			a, ok := linearSlope(t.base, v)
			if !ok {
				return nil, false
			}
			if n, ok := t.exp.(*Num); ok && n.IsNegOne() {
				return DivOf(LnOf(AbsOf(t.base)), a), true
			}
			np1 := AddOf(t.exp, N(1))
			return DivOf(PowOf(t.base, np1), MulOf(a, np1)), true
		}
		if FreeOf(t.base, v) {
			if a, ok := linearSlope(t.exp, v); ok {
				return DivOf(t, MulOf(a, LnOf(t.base))), true
			}
		}
		return nil, false
	case *Func:
		return integrateFunc(t, v)
	}
	return nil, false
}

func integrateFunc(f *Func, v string) (Expr, bool) {
	a, ok := linearSlope(f.arg, v)
	if !ok {
		return nil, false
	}
	u := f.arg
	var r Expr
	switch f.name {
	case "sin":
		r = MulOf(N(-1), CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = MulOf(N(-1), LnOf(AbsOf(CosOf(u))))
	case "exp":
		r = ExpOf(u)
	case "sinh":
		r = CoshOf(u)
	case "cosh":
		r = SinhOf(u)
	case "tanh":
		r = LnOf(CoshOf(u))
	case "log":
		r = SubOf(MulOf(u, LnOf(u)), u)
	case "asin":
		r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
	case "acos":
		r = SubOf(MulOf(u, AcosOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
	case "atan":
		r = SubOf(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
	default:
		return nil, false
	}
	return DivOf(r, a), true
}

// linearSlope returns du/dv when u is linear in v.
func linearSlope(u Expr, v string) (Expr, bool) {
	d := Diff(u, v)
	if !FreeOf(d, v) {
		return nil, false
	}
	if n, ok := d.(*Num); ok && n.IsZero() {
		return nil, false
	}
	return d, true
}

// byParts integrates f*g choosing u by the usual LIATE order:
// log and inverse trig first, then powers of v.
func byParts(f, g Expr, v string, depth int) (Expr, bool) {
	u, dv := f, g
	switch {
	case isLogOrInverseTrig(g):
		u, dv = g, f
	case isLogOrInverseTrig(f):
	case isMonomial(g, v) && !isMonomial(f, v):
		u, dv = g, f
	case isMonomial(f, v):
	default:
		return nil, false
	}
	vInt, ok := integrate(dv, v, depth)
	if !ok {
		return nil, false
	}
	rest, ok := integrate(Expand(MulOf(Diff(u, v), vInt)), v, depth)
	if !ok {
		return nil, false
	}
	return SubOf(MulOf(u, vInt), rest), true
}

func isLogOrInverseTrig(e Expr) bool {
	f, ok := e.(*Func)
	if !ok {
		return false
	}
	switch f.name {
	case "log", "asin", "acos", "atan":
		return true
	}
	return false
}

func isMonomial(e Expr, v string) bool {
	switch t := e.(type) {
	case *Sym:
		return t.name == v
	case *Pow:
		s, ok := t.base.(*Sym)
		n, ok2 := t.exp.(*Num)
		return ok && ok2 && s.name == v && n.IsInteger() && n.IsPositive()
	}
	return false
}

// DefiniteIntegrate computes the integral of expr over [a, b]. It evaluates
// F(b) - F(a) exactly when an antiderivative exists, which keeps other free
// symbols in the result. Otherwise univariate integrands fall back to
// Gauss-Legendre quadrature and the result is inexact.
//
// A pole of the integrand inside [a, b], including at either limit, gives
// ErrNotFinite rather than a value.
func DefiniteIntegrate(expr Expr, varName string, a, b Expr) (Expr, error) {
	if err := checkPoles(expr, varName, a, b); err != nil {
		return nil, err
	}
	if anti, ok := Integrate(expr, varName); ok {
		r := SubOf(Sub(anti, varName, b), Sub(anti, varName, a))
		if len(FreeSymbols(r)) == 0 {
			if _, ok := r.Eval(); !ok {
				return nil, fmt.Errorf("integral of %s over [%s, %s]: %w", expr, a, b, ErrNotFinite)
			}
		}
		return r, nil
	}
	for name := range FreeSymbols(expr) {
		if name != varName {
			return nil, fmt.Errorf("integral of %s: %w", expr, ErrNoClosedForm)
		}
	}
	an, aok := a.Eval()
	bn, bok := b.Eval()
	if !aok || !bok {
		return nil, fmt.Errorf("integral of %s: limits must be numeric: %w", expr, ErrNoClosedForm)
	}
	f, err := gaussLegendre(expr, varName, an.Float64(), bn.Float64())
	if err != nil {
		return nil, err
	}
	n, ok := NFloat(f)
	if !ok {
		return nil, fmt.Errorf("integral of %s: %w", expr, ErrNotFinite)
	}
	return n, nil
}

var glNodes = [...]float64{
	-0.9739065285171717, -0.8650633666889845, -0.6794095682990244,
	-0.4333953941292472, -0.1488743389816312, 0.1488743389816312,
	0.4333953941292472, 0.6794095682990244, 0.8650633666889845, 0.9739065285171717,
}

var glWeights = [...]float64{
	0.0666713443086881, 0.1494513491505806, 0.2190863625159820,
	0.2692667193099963, 0.2955242247147529, 0.2955242247147529,
	0.2692667193099963, 0.2190863625159820, 0.1494513491505806, 0.0666713443086881,
}

// quadPanels is the number of equal sub-intervals for composite quadrature.
const quadPanels = 32

// NumericIntegrate applies composite 10-point Gauss-Legendre quadrature. An
// integrand with a pole in [a, b] gives ErrNotFinite.
func NumericIntegrate(expr Expr, varName string, a, b float64) (float64, error) {
	if x0, ok := singularity(expr, varName, a, b); ok {
		return 0, fmt.Errorf("integrand %s has a pole near %s=%.6g: %w", expr, varName, x0, ErrNotFinite)
	}
	return gaussLegendre(expr, varName, a, b)
}

func gaussLegendre(expr Expr, varName string, a, b float64) (float64, error) {
	if a == b {
		return 0, nil
	}
	width := (b - a) / quadPanels
	sum := 0.0
	for p := 0; p < quadPanels; p++ {
		lo := a + float64(p)*width
		mid := lo + width/2
		half := width / 2
		panel := 0.0
		for i, t := range glNodes {
			xi, ok := NFloat(mid + half*t)
			if !ok {
				return 0, ErrNotFinite
			}
			v, ok := expr.Sub(varName, xi).Simplify().Eval()
			if !ok {
				return 0, fmt.Errorf("integrand %s at %s=%g: %w", expr, varName, mid+half*t, ErrNotFinite)
			}
			panel += glWeights[i] * v.Float64()
		}
		sum += half * panel
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, ErrNotFinite
	}
	return sum, nil
}

// ============================================================
// Poles
// ============================================================

const (
	// poleSamples is the number of sub-intervals scanned for zeros of a
	// denominator.
	poleSamples = 512
	// generic stands in for symbols other than the integration variable
	// when the integrand is evaluated near a suspected pole.
	generic = 0.6180339887498949
)

func checkPoles(expr Expr, v string, a, b Expr) error {
	an, ok := a.Eval()
	if !ok {
		return nil
	}
	bn, ok := b.Eval()
	if !ok {
		return nil
	}
	if x0, bad := singularity(expr, v, an.Float64(), bn.Float64()); bad {
		return fmt.Errorf("integral of %s over [%s, %s] diverges near %s=%.6g: %w", expr, a, b, v, x0, ErrNotFinite)
	}
	return nil
}

// singularity finds a point of [a, b] where expr has a pole. Candidates are
// zeros of the base of a power with exponent <= -1 and zeros of cos(u) for
// tan(u). A candidate counts when the integrand grows without bound towards
// it, so sin(x)/x passes.
func singularity(expr Expr, v string, a, b float64) (float64, bool) {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if lo == hi || math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, false
	}
	var f Expr
	for _, g := range denominators(expr, v, nil) {
		for _, x0 := range zeros(g, v, lo, hi) {
			if f == nil {
				f = withGeneric(expr, v)
			}
			if blowsUp(f, v, x0, lo, hi) {
				return x0, true
			}
		}
	}
	return 0, false
}

func denominators(e Expr, v string, out []Expr) []Expr {
	switch t := e.(type) {
	case *Add:
		for _, term := range t.terms {
			out = denominators(term, v, out)
		}
	case *Mul:
		for _, f := range t.factors {
			out = denominators(f, v, out)
		}
	case *Pow:
		out = denominators(t.base, v, out)
		out = denominators(t.exp, v, out)
		if n, ok := t.exp.(*Num); ok && n.Float64() <= -1 && dependsOnlyOn(t.base, v) {
			out = append(out, t.base)
		}
	case *Func:
		out = denominators(t.arg, v, out)
		if t.name == "tan" && dependsOnlyOn(t.arg, v) {
			out = append(out, CosOf(t.arg))
		}
	}
	return out
}

func dependsOnlyOn(e Expr, v string) bool {
	syms := FreeSymbols(e)
	if _, ok := syms[v]; !ok {
		return false
	}
	return len(syms) == 1
}

func withGeneric(e Expr, v string) Expr {
	g, _ := NFloat(generic)
	for name := range FreeSymbols(e) {
		if name != v {
			e = e.Sub(name, g)
		}
	}
	return e.Simplify()
}

// evalAt evaluates e at v = x, failing on non-finite values.
func evalAt(e Expr, v string, x float64) (float64, bool) {
	xn, ok := NFloat(x)
	if !ok {
		return 0, false
	}
	n, ok := e.Sub(v, xn).Simplify().Eval()
	if !ok {
		return 0, false
	}
	f := n.Float64()
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

// zeros samples g on [lo, hi] and returns the points where it vanishes, is
// undefined, changes sign, or has a local minimum of |g| that is zero to
// rounding.
func zeros(g Expr, v string, lo, hi float64) []float64 {
	at := func(x float64) (float64, bool) { return evalAt(g, v, x) }
	xs := make([]float64, poleSamples+1)
	ys := make([]float64, poleSamples+1)
	var out []float64
	scale := 0.0
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/poleSamples
		y, ok := at(xs[i])
		if !ok || y == 0 {
			out = append(out, xs[i])
			y = 0
		}
		ys[i] = y
		scale = math.Max(scale, math.Abs(y))
	}
	for i := 0; i < poleSamples; i++ {
		if ys[i] != 0 && ys[i+1] != 0 && (ys[i] < 0) != (ys[i+1] < 0) {
			out = append(out, bisect(at, xs[i], xs[i+1], ys[i]))
		}
	}
	for i := 1; i < poleSamples; i++ {
		y := math.Abs(ys[i])
		if y == 0 || y > math.Abs(ys[i-1]) || y > math.Abs(ys[i+1]) {
			continue
		}
		if x, m := minimize(at, xs[i-1], xs[i+1]); math.Abs(m) <= 1e-9*scale {
			out = append(out, x)
		}
	}
	return out
}

func bisect(at func(float64) (float64, bool), a, b, ya float64) float64 {
	for i := 0; i < 200; i++ {
		m := a + (b-a)/2
		if m == a || m == b {
			break
		}
		y, ok := at(m)
		if !ok || y == 0 {
			return m
		}
		if (y < 0) == (ya < 0) {
			a, ya = m, y
		} else {
			b = m
		}
	}
	return a + (b-a)/2
}

// minimize narrows [a, b] around the smallest |g| by ternary search.
func minimize(at func(float64) (float64, bool), a, b float64) (float64, float64) {
	for i := 0; i < 80; i++ {
		m1, m2 := a+(b-a)/3, b-(b-a)/3
		y1, ok := at(m1)
		if !ok {
			return m1, 0
		}
		y2, ok := at(m2)
		if !ok {
			return m2, 0
		}
		if math.Abs(y1) < math.Abs(y2) {
			b = m2
		} else {
			a = m1
		}
	}
	x := a + (b-a)/2
	y, ok := at(x)
	if !ok {
		return x, 0
	}
	return x, y
}

// blowsUp compares f at 1e-4 and 1e-8 (relative) from x0 on each side that
// lies inside [lo, hi].
func blowsUp(f Expr, v string, x0, lo, hi float64) bool {
	scale := math.Max(1, math.Abs(x0))
	probed := false
	for _, dir := range []float64{-1, 1} {
		far, near := x0+dir*1e-4*scale, x0+dir*1e-8*scale
		if far < lo || far > hi {
			continue
		}
		probed = true
		yf, ok := evalAt(f, v, far)
		if !ok {
			return true
		}
		yn, ok := evalAt(f, v, near)
		if !ok {
			return true
		}
		if math.Abs(yn) > 1e6 && math.Abs(yn) > 100*math.Abs(yf) {
			return true
		}
	}
	if !probed {
		_, ok := evalAt(f, v, x0)
		return !ok
	}
	return false
}
