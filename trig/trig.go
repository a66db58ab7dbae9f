// Package trig evaluates the calculator's trigonometric table for an angle
// given in degrees.
//
// In Direct mode the table lists sin, cos, tan and their reciprocals csc, sec,
// cot. In Inverse mode (the calculator's shift key) it lists arcsin(sin θ),
// arccos(cos θ) and arctan(tan θ), which recover the principal angle.
package trig

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// DefaultPrecision is the number of decimals printed for values.
const DefaultPrecision = 4

// zeroTolerance decides when sin or cos of a reduced angle counts as zero.
const zeroTolerance = 1e-12

var (
	ErrInvalidAngle = errors.New("trig: angle must be a finite number")
	ErrUndefined    = errors.New("undefined")
	ErrDomain       = errors.New("trig: argument outside [-1, 1]")
	ErrUnknownFunc  = errors.New("trig: unknown function")
)

type Mode int

const (
	Direct Mode = iota
	Inverse
)

func (m Mode) String() string {
	if m == Inverse {
		return "inverse"
	}
	return "direct"
}

// ModeFor maps the shift toggle to a Mode.
func ModeFor(shift bool) Mode {
	if shift {
		return Inverse
	}
	return Direct
}

// Row is one line of the table. Expr is the left-hand side as shown to the
// user, Unit is "°" for angles and empty for ratios. Err is ErrUndefined when
// the value does not exist at this angle.
type Row struct {
	Name  string
	Expr  string
	Value float64
	Unit  string
	Err   error
}

type Table struct {
	Angle float64
	Mode  Mode
	Rows  []Row
}

func ToRadians(deg float64) float64 { return deg * math.Pi / 180 }
func ToDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// reduce maps deg into [0, 360).
func reduce(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// sinDeg and cosDeg are exact at multiples of 90° so that tan(90°) is
// reported as undefined rather than 1.6e16.
func sinDeg(deg float64) float64 {
	switch r := reduce(deg); r {
	case 0, 180:
		return 0
	case 90:
		return 1
	case 270:
		return -1
	default:
		v := math.Sin(ToRadians(r))
		if math.Abs(v) < zeroTolerance {
			return 0
		}
		return v
	}
}

func cosDeg(deg float64) float64 { return sinDeg(deg + 90) }

func ratio(num, den float64) (float64, error) {
	if den == 0 {
		return 0, ErrUndefined
	}
	return num / den, nil
}

// Func evaluates sin, cos, tan, csc, sec or cot at angleDeg.
func Func(name string, angleDeg float64) (float64, error) {
	if math.IsNaN(angleDeg) || math.IsInf(angleDeg, 0) {
		return 0, ErrInvalidAngle
	}
	s, c := sinDeg(angleDeg), cosDeg(angleDeg)
	switch name {
	case "sin":
		return s, nil
	case "cos":
		return c, nil
	case "tan":
		return ratio(s, c)
	case "csc":
		return ratio(1, s)
	case "sec":
		return ratio(1, c)
	case "cot":
		return ratio(c, s)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFunc, name)
}

// InverseFunc evaluates arcsin, arccos or arctan of v and returns degrees.
// Arguments a hair outside [-1, 1] from rounding are clamped.
func InverseFunc(name string, v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, ErrDomain
	}
	switch name {
	case "arcsin", "arccos":
		if math.Abs(v) > 1 {
			if math.Abs(v)-1 > zeroTolerance {
				return 0, ErrDomain
			}
			v = math.Copysign(1, v)
		}
		if name == "arcsin" {
			return ToDegrees(math.Asin(v)), nil
		}
		return ToDegrees(math.Acos(v)), nil
	case "arctan":
		return ToDegrees(math.Atan(v)), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFunc, name)
}

var (
	directFuncs  = []string{"sin", "cos", "tan", "csc", "sec", "cot"}
	inverseFuncs = []struct{ name, forward string }{
		{"arcsin", "sin"}, {"arccos", "cos"}, {"arctan", "tan"},
	}
)

// Evaluate builds the table for angleDeg. An undefined value only marks its
// own row; the other rows are still computed.
func Evaluate(angleDeg float64, shift bool) (Table, error) {
	if math.IsNaN(angleDeg) || math.IsInf(angleDeg, 0) {
		return Table{}, ErrInvalidAngle
	}
	t := Table{Angle: angleDeg, Mode: ModeFor(shift)}
	if !shift {
		for _, name := range directFuncs {
			v, err := Func(name, angleDeg)
			t.Rows = append(t.Rows, Row{
				Name:  name,
				Expr:  fmt.Sprintf("%s(%s°)", name, trimFloat(angleDeg, DefaultPrecision)),
				Value: v,
				Err:   err,
			})
		}
		return t, nil
	}
	for _, f := range inverseFuncs {
		fwd, err := Func(f.forward, angleDeg)
		row := Row{Name: f.name, Unit: "°"}
		if err != nil {
			row.Expr = fmt.Sprintf("%s(%s(%s°))", f.name, f.forward, trimFloat(angleDeg, DefaultPrecision))
			row.Err = err
			t.Rows = append(t.Rows, row)
			continue
		}
		row.Expr = fmt.Sprintf("%s(%s)", f.name, trimFloat(fwd, DefaultPrecision))
		v, err := InverseFunc(f.name, fwd)
		if err != nil {
			return Table{}, err
		}
		row.Value = v
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// FormatValue prints v with prec decimals, never as "-0.0000".
func FormatValue(v float64, prec int) string {
	if prec < 0 {
		prec = DefaultPrecision
	}
	if math.Abs(v) < 0.5*math.Pow10(-prec) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// trimFloat rounds v to prec decimals and drops trailing zeros: 30 -> "30",
// 0.49999999999999994 -> "0.5".
func trimFloat(v float64, prec int) string {
	p := math.Pow10(prec)
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Text renders the row as "sin(30°) = 0.5000".
func (r Row) Text(prec int) string {
	if r.Err != nil {
		return r.Expr + " = " + r.Err.Error()
	}
	return r.Expr + " = " + FormatValue(r.Value, prec) + r.Unit
}

var latexNames = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"csc": `\csc`, "sec": `\sec`, "cot": `\cot`,
	"arcsin": `\arcsin`, "arccos": `\arccos`, "arctan": `\arctan`,
}

// LaTeX renders the row for KaTeX, e.g. `\sin(30^\circ) = 0.5000`.
func (r Row) LaTeX(prec int) string {
	lhs := r.Expr
	if name, ok := latexNames[r.Name]; ok {
		lhs = name + lhs[len(r.Name):]
	}
	lhs = replaceDegree(lhs)
	if r.Err != nil {
		return lhs + ` = \text{` + r.Err.Error() + `}`
	}
	rhs := FormatValue(r.Value, prec)
	if r.Unit == "°" {
		rhs += `^\circ`
	}
	return lhs + " = " + rhs
}

func replaceDegree(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '°' {
			out = append(out, []rune(`^\circ`)...)
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// Lines renders every row.
func (t Table) Lines(prec int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Text(prec)
	}
	return out
}
