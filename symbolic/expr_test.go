package symbolic_test

import (
	"math"
	"testing"

	"github.com/njchilds90/scicalc/symbolic"
)

var x, y = symbolic.S("x"), symbolic.S("y")

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	if got := symbolic.F(-2, 5).LaTeX(); got != `-\frac{2}{5}` {
		t.Errorf("want -\\frac{2}{5}, got %s", got)
	}
}

func TestNum_FloatIsInexact(t *testing.T) {
	n, ok := symbolic.NFloat(0.1)
	if !ok || n.IsExact() {
		t.Fatalf("NFloat(0.1) should be an inexact number")
	}
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
	sum := symbolic.AddOf(n, symbolic.N(1))
	if sn, ok := sum.(*symbolic.Num); !ok || sn.IsExact() {
		t.Errorf("inexact + exact should stay inexact, got %s", sum)
	}
}

func TestNum_FloatRejectsNaN(t *testing.T) {
	if _, ok := symbolic.NFloat(math.NaN()); ok {
		t.Error("NaN must not become a Num")
	}
	if _, ok := symbolic.NFloat(math.Inf(1)); ok {
		t.Error("+Inf must not become a Num")
	}
}

// ============================================================
// Sym / Const tests
// ============================================================

func TestSym_Sub(t *testing.T) {
	if got := symbolic.String(x.Sub("x", symbolic.N(3))); got != "3" {
		t.Errorf("want 3, got %s", got)
	}
	if got := symbolic.String(x.Sub("y", symbolic.N(3))); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestSym_LaTeXSubscript(t *testing.T) {
	if got := symbolic.S("x1").LaTeX(); got != "x_{1}" {
		t.Errorf("want x_{1}, got %s", got)
	}
	if got := symbolic.S("theta").LaTeX(); got != `\mathrm{theta}` {
		t.Errorf("want \\mathrm{theta}, got %s", got)
	}
}

func TestConst_Eval(t *testing.T) {
	v, ok := symbolic.Pi.Eval()
	if !ok || math.Abs(v.Float64()-math.Pi) > 1e-15 {
		t.Errorf("pi should evaluate to math.Pi")
	}
	if symbolic.Pi.LaTeX() != `\pi` {
		t.Errorf("want \\pi, got %s", symbolic.Pi.LaTeX())
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	if got := symbolic.String(symbolic.AddOf(symbolic.N(1), x)); got != "x + 1" {
		t.Errorf("want x + 1, got %s", got)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	if got := symbolic.String(symbolic.SubOf(x, x)); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	if got := symbolic.String(symbolic.AddOf(x, x, y)); got != "2*x + y" {
		t.Errorf("want 2*x + y, got %s", got)
	}
}

func TestAdd_NegativeTerms(t *testing.T) {
	e := symbolic.SubOf(symbolic.PowOf(x, symbolic.N(2)), x)
	if got := symbolic.String(e); got != "x^2 - x" {
		t.Errorf("want x^2 - x, got %s", got)
	}
	if got := symbolic.LaTeX(e); got != "x^{2} - x" {
		t.Errorf("want x^{2} - x, got %s", got)
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	if got := symbolic.String(symbolic.MulOf(symbolic.N(0), x)); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_ZeroKeepsUndefinedFactor(t *testing.T) {
	zero := symbolic.N(0)
	tests := []symbolic.Expr{
		symbolic.DivOf(zero, zero),
		symbolic.MulOf(zero, symbolic.PowOf(zero, symbolic.N(-1))),
		symbolic.MulOf(zero, x, symbolic.PowOf(zero, symbolic.N(-2))),
	}
	for _, e := range tests {
		if v, ok := e.Eval(); ok {
			t.Errorf("%s should not evaluate, got %s", e, v)
		}
	}
}

func TestPow_LargeExactPowerStaysSymbolic(t *testing.T) {
	p := symbolic.PowOf(symbolic.N(10), symbolic.N(64))
	p = symbolic.PowOf(p, symbolic.N(64))
	if _, ok := p.(*symbolic.Num); !ok {
		t.Fatalf("want 10^4096 folded, got %s", p)
	}
	huge := symbolic.PowOf(p, symbolic.N(64))
	if _, ok := huge.(*symbolic.Num); ok {
		t.Errorf("want 10^262144 unevaluated, got a number")
	}
	if _, ok := huge.Eval(); ok {
		t.Errorf("10^262144 should not evaluate to a finite float")
	}
	if got := symbolic.PowOf(symbolic.N(2), symbolic.N(64)).String(); got != "18446744073709551616" {
		t.Errorf("want 2^64 folded, got %s", got)
	}
}

func TestMul_OneElide(t *testing.T) {
	if got := symbolic.String(symbolic.MulOf(symbolic.N(1), x)); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	e := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2)))
	if got := symbolic.String(e); got != "x^3" {
		t.Errorf("want x^3, got %s", got)
	}
	if got := symbolic.String(symbolic.DivOf(x, x)); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestMul_Fractions(t *testing.T) {
	tests := []struct {
		e    symbolic.Expr
		want string
		tex  string
	}{
		{symbolic.DivOf(x, symbolic.N(2)), "x/2", `\frac{x}{2}`},
		{symbolic.DivOf(symbolic.N(1), symbolic.MulOf(x, y)), "1/(x*y)", `\frac{1}{x y}`},
		{symbolic.MulOf(symbolic.F(-3, 2), x), "-3*x/2", `-\frac{3 x}{2}`},
		{symbolic.DivOf(y, symbolic.AddOf(x, symbolic.N(1))), "y/(x + 1)", `\frac{y}{\left(x + 1\right)}`},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String: want %s, got %s", tt.want, got)
		}
		if got := tt.e.LaTeX(); got != tt.tex {
			t.Errorf("LaTeX: want %s, got %s", tt.tex, got)
		}
	}
}

func TestPow_Rules(t *testing.T) {
	tests := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.PowOf(x, symbolic.N(0)), "1"},
		{symbolic.PowOf(x, symbolic.N(1)), "x"},
		{symbolic.PowOf(symbolic.N(2), symbolic.N(10)), "1024"},
		{symbolic.PowOf(symbolic.N(2), symbolic.N(-2)), "1/4"},
		{symbolic.PowOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(3)), "x^6"},
		{symbolic.SqrtOf(x), "sqrt(x)"},
		{symbolic.PowOf(x, symbolic.N(-1)), "1/x"},
		{symbolic.PowOf(symbolic.E, x), "exp(x)"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("want %s, got %s", tt.want, got)
		}
	}
}

func TestPow_ZeroToNegativeDoesNotPanic(t *testing.T) {
	e := symbolic.PowOf(symbolic.N(0), symbolic.N(-1))
	if _, ok := e.Eval(); ok {
		t.Errorf("0^-1 should not evaluate, got %s", e)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_SpecialValues(t *testing.T) {
	tests := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.SinOf(symbolic.N(0)), "0"},
		{symbolic.CosOf(symbolic.N(0)), "1"},
		{symbolic.SinOf(symbolic.Pi), "0"},
		{symbolic.CosOf(symbolic.Pi), "-1"},
		{symbolic.LnOf(symbolic.E), "1"},
		{symbolic.LnOf(symbolic.ExpOf(x)), "x"},
		{symbolic.AbsOf(symbolic.N(-3)), "3"},
		{symbolic.SinOf(symbolic.N(1)), "sin(1)"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("want %s, got %s", tt.want, got)
		}
	}
}

func TestFunc_Numeric_Eval(t *testing.T) {
	v, ok := symbolic.SinOf(symbolic.DivOf(symbolic.Pi, symbolic.N(6))).Eval()
	if !ok || math.Abs(v.Float64()-0.5) > 1e-12 {
		t.Errorf("sin(pi/6) should be 0.5")
	}
	if _, ok := symbolic.LnOf(symbolic.N(-1)).Eval(); ok {
		t.Errorf("log(-1) should not evaluate")
	}
}

func TestFunc_LaTeX(t *testing.T) {
	if got := symbolic.SinOf(x).LaTeX(); got != `\sin\left(x\right)` {
		t.Errorf("want \\sin\\left(x\\right), got %s", got)
	}
	if got := symbolic.AsinOf(x).LaTeX(); got != `\arcsin\left(x\right)` {
		t.Errorf("want \\arcsin\\left(x\\right), got %s", got)
	}
}

func TestEqual(t *testing.T) {
	if !symbolic.N(3).Equal(symbolic.N(3)) {
		t.Error("3 should equal 3")
	}
	if symbolic.N(3).Equal(x) {
		t.Error("3 should not equal x")
	}
	if !symbolic.AddOf(y, x).Equal(symbolic.AddOf(x, y)) {
		t.Error("y + x should equal x + y after simplification")
	}
}

func TestDeterminism(t *testing.T) {
	first := symbolic.AddOf(y, symbolic.PowOf(x, symbolic.N(2)), symbolic.SinOf(x), symbolic.N(3)).String()
	for i := 0; i < 50; i++ {
		got := symbolic.AddOf(symbolic.N(3), symbolic.SinOf(x), y, symbolic.PowOf(x, symbolic.N(2))).String()
		if got != first {
			t.Fatalf("non-deterministic output: %s vs %s", first, got)
		}
	}
}
