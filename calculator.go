// Package scicalc is the render pass behind the scientific calculator page.
//
// A Form holds the raw fields the page posts. Render turns it into a Page with
// three independent sections: the trigonometric table, the matrix result and
// the calculus result. Each section either carries output lines (plain text
// plus LaTeX) or an inline error; one failing section never hides another.
// Nothing survives between calls.
//
// The math itself lives in the trig and symbolic packages.
package scicalc

import (
	"github.com/njchilds90/scicalc/trig"
)

// ============================================================
// Form / Page
// ============================================================

// Form is exactly what the page posts. Everything is text so that bad input
// reaches the section that reports it.
type Form struct {
	Angle    string `json:"angle" yaml:"angle"`
	Shift    bool   `json:"shift" yaml:"shift"`
	MatrixOp string `json:"matrix_op" yaml:"matrix_op"`
	MatrixA  string `json:"matrix_a" yaml:"matrix_a"`
	MatrixB  string `json:"matrix_b" yaml:"matrix_b"`
	Expr     string `json:"expr" yaml:"expr"`
	Vars     string `json:"vars" yaml:"vars"`
	CalcOp   string `json:"calc_op" yaml:"calc_op"`
	Var      string `json:"var" yaml:"var"`
	Lower    string `json:"lower" yaml:"lower"`
	Upper    string `json:"upper" yaml:"upper"`
}

// Sample matrices shown when the page first loads.
const (
	SampleMatrixA = "1 2; 3 4"
	SampleMatrixB = "5 6; 7 8"
)

// DefaultForm is the page as first loaded.
func DefaultForm() Form {
	return Form{
		Angle:    "0",
		MatrixOp: OpAdd,
		MatrixA:  SampleMatrixA,
		MatrixB:  SampleMatrixB,
		Expr:     "x*2 + y*2",
		Vars:     "x,y",
		CalcOp:   OpDerivative,
		Var:      "x",
		Lower:    "0",
		Upper:    "1",
	}
}

// Line is one output line. LaTeX is empty for plain captions.
type Line struct {
	Text  string `json:"text"`
	LaTeX string `json:"latex,omitempty"`
}

type Section struct {
	Title string `json:"title"`
	Lines []Line `json:"lines,omitempty"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

func (s Section) OK() bool { return s.Err == nil }

func newSection(title string, lines []Line, err error) Section {
	if err != nil {
		return Section{Title: title, Error: DisplayError(err), Err: err}
	}
	return Section{Title: title, Lines: lines}
}

type Page struct {
	Form     Form    `json:"form"`
	Trig     Section `json:"trig"`
	Matrix   Section `json:"matrix"`
	Calculus Section `json:"calculus"`
}

// Sections lists the sections in page order.
func (p Page) Sections() []Section { return []Section{p.Trig, p.Matrix, p.Calculus} }

// ============================================================
// Calculator
// ============================================================

type Options struct {
	// Precision is the number of decimals for numeric output.
	Precision int
}

type Calculator struct {
	opts Options
}

func New(opts Options) *Calculator {
	if opts.Precision <= 0 {
		opts.Precision = trig.DefaultPrecision
	}
	return &Calculator{opts: opts}
}

func (c *Calculator) Precision() int { return c.opts.Precision }

// Render runs every section on f, in page order.
func (c *Calculator) Render(f Form) Page {
	return Page{
		Form:     f,
		Trig:     c.Trig(f.Angle, f.Shift),
		Matrix:   c.Matrix(f.MatrixOp, f.MatrixA, f.MatrixB),
		Calculus: c.Calculus(CalculusInput{Expr: f.Expr, Vars: f.Vars, Op: f.CalcOp, Var: f.Var, Lower: f.Lower, Upper: f.Upper}),
	}
}

var defaultCalculator = New(Options{})

// Render uses a calculator with default options.
func Render(f Form) Page { return defaultCalculator.Render(f) }
