package scicalc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/scicalc/symbolic"
	"github.com/njchilds90/scicalc/trig"
)

const TitleCalculus = "Calculus"

// Calculus operations offered by the page.
const (
	OpDerivative         = "Derivative"
	OpIndefiniteIntegral = "Indefinite Integral"
	OpDefiniteIntegral   = "Definite Integral"
)

var CalculusOps = []string{OpDerivative, OpIndefiniteIntegral, OpDefiniteIntegral}

// CalculusInput is the calculus part of the form. Var may be empty, which
// selects the first variable of Vars. Lower and Upper are only read for
// definite integrals.
type CalculusInput struct {
	Expr  string
	Vars  string
	Op    string
	Var   string
	Lower string
	Upper string
}

func (c *Calculator) Calculus(in CalculusInput) Section {
	lines, err := c.calculus(in)
	return newSection(TitleCalculus, lines, err)
}

func (c *Calculator) calculus(in CalculusInput) ([]Line, error) {
	switch in.Op {
	case OpDerivative, OpIndefiniteIntegral, OpDefiniteIntegral:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, in.Op)
	}
	vars, err := symbolic.ParseSymbols(in.Vars)
	if err != nil {
		return nil, fmt.Errorf("variables: %w", err)
	}
	expr, err := symbolic.Parse(in.Expr)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	v, err := selectVar(vars, in.Var)
	if err != nil {
		return nil, err
	}
	if err := checkDeclared(expr, vars); err != nil {
		return nil, err
	}

	switch in.Op {
	case OpDerivative:
		return derivativeLines(expr, v), nil
	case OpIndefiniteIntegral:
		return indefiniteLines(expr, v)
	}
	lo, err := parseLimit("lower limit", in.Lower)
	if err != nil {
		return nil, err
	}
	hi, err := parseLimit("upper limit", in.Upper)
	if err != nil {
		return nil, err
	}
	return c.definiteLines(expr, v, lo, hi)
}

// selectVar returns the chosen variable, defaulting to the first declared one.
func selectVar(vars []string, chosen string) (string, error) {
	chosen = strings.TrimSpace(chosen)
	if chosen == "" {
		return vars[0], nil
	}
	for _, v := range vars {
		if v == chosen {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q not in %s", ErrUnknownVariable, chosen, strings.Join(vars, ", "))
}

// checkDeclared requires every free symbol of expr to be in vars.
func checkDeclared(expr symbolic.Expr, vars []string) error {
	declared := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		declared[v] = struct{}{}
	}
	var missing []string
	for name := range symbolic.FreeSymbols(expr) {
		if _, ok := declared[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrUndefinedVariable, strings.Join(missing, ", "))
}

// parseLimit reads an integration limit: an exact decimal or a constant
// expression such as "pi/2".
func parseLimit(what, text string) (symbolic.Expr, error) {
	e, err := symbolic.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if _, ok := e.Eval(); !ok || len(symbolic.FreeSymbols(e)) > 0 {
		return nil, fmt.Errorf("%w: %s is %q", ErrInvalidLimit, what, text)
	}
	return e, nil
}

func derivativeLines(expr symbolic.Expr, v string) []Line {
	d := symbolic.Diff(expr, v)
	return []Line{
		{Text: fmt.Sprintf("Derivative of %s with respect to %s:", expr, v)},
		{
			Text:  fmt.Sprintf("d/d%s (%s) = %s", v, expr, d),
			LaTeX: fmt.Sprintf(`\frac{d}{d%s}\left(%s\right) = %s`, symbolic.S(v).LaTeX(), expr.LaTeX(), d.LaTeX()),
		},
	}
}

func indefiniteLines(expr symbolic.Expr, v string) ([]Line, error) {
	anti, ok := symbolic.Integrate(expr, v)
	if !ok {
		return nil, fmt.Errorf("∫ %s d%s: %w", expr, v, symbolic.ErrNoClosedForm)
	}
	return []Line{
		{Text: fmt.Sprintf("Indefinite integral of %s with respect to %s:", expr, v)},
		{
			Text:  fmt.Sprintf("∫ %s d%s = %s + C", expr, v, anti),
			LaTeX: fmt.Sprintf(`\int %s \, d%s = %s + C`, expr.LaTeX(), symbolic.S(v).LaTeX(), anti.LaTeX()),
		},
	}, nil
}

func (c *Calculator) definiteLines(expr symbolic.Expr, v string, lo, hi symbolic.Expr) ([]Line, error) {
	r, err := symbolic.DefiniteIntegrate(expr, v, lo, hi)
	if err != nil {
		return nil, err
	}
	lines := []Line{
		{Text: fmt.Sprintf("Definite integral of %s from %s to %s with respect to %s:", expr, lo, hi, v)},
		{
			Text: fmt.Sprintf("∫[%s, %s] %s d%s = %s", lo, hi, expr, v, r),
			LaTeX: fmt.Sprintf(`\int_{%s}^{%s} \left(%s\right) \, d%s = %s`,
				lo.LaTeX(), hi.LaTeX(), expr.LaTeX(), symbolic.S(v).LaTeX(), r.LaTeX()),
		},
	}
	if approx, ok := c.approximate(r); ok {
		lines = append(lines, Line{Text: "≈ " + approx, LaTeX: `\approx ` + approx})
	}
	return lines, nil
}

// approximate formats a decimal value for results that are numeric but not
// already a plain decimal or integer.
func (c *Calculator) approximate(r symbolic.Expr) (string, bool) {
	if n, isNum := r.(*symbolic.Num); isNum && (!n.IsExact() || n.IsInteger()) {
		return "", false
	}
	n, ok := r.Eval()
	if !ok {
		return "", false
	}
	return trig.FormatValue(n.Float64(), c.opts.Precision), true
}
