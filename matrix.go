package scicalc

import (
	"fmt"

	"github.com/njchilds90/scicalc/symbolic"
)

const TitleMatrix = "Matrix Operations"

// Matrix operations offered by the page.
const (
	OpAdd         = "Add"
	OpSubtract    = "Subtract"
	OpMultiply    = "Multiply"
	OpDeterminant = "Determinant"
	OpInverse     = "Inverse"
	OpTranspose   = "Transpose"
)

var MatrixOps = []string{OpAdd, OpSubtract, OpMultiply, OpDeterminant, OpInverse, OpTranspose}

type binaryOp struct {
	text, latex string
	apply       func(a, b *symbolic.Matrix) (*symbolic.Matrix, error)
}

var binaryOps = map[string]binaryOp{
	OpAdd:      {"A + B", "A + B", (*symbolic.Matrix).Add},
	OpSubtract: {"A - B", "A - B", (*symbolic.Matrix).Sub},
	OpMultiply: {"A · B", `A \cdot B`, (*symbolic.Matrix).Mul},
}

// Matrix applies op to the matrices typed as a and b ("1 2; 3 4"). Unary
// operations are applied to both.
func (c *Calculator) Matrix(op, a, b string) Section {
	lines, err := c.matrix(op, a, b)
	return newSection(TitleMatrix, lines, err)
}

func (c *Calculator) matrix(op, a, b string) ([]Line, error) {
	bin, isBinary := binaryOps[op]
	if !isBinary && op != OpDeterminant && op != OpInverse && op != OpTranspose {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, op)
	}
	ma, err := symbolic.ParseMatrix(a)
	if err != nil {
		return nil, fmt.Errorf("matrix A: %w", err)
	}
	mb, err := symbolic.ParseMatrix(b)
	if err != nil {
		return nil, fmt.Errorf("matrix B: %w", err)
	}
	lines := []Line{matrixLine("A", "A", ma), matrixLine("B", "B", mb)}

	if isBinary {
		r, err := bin.apply(ma, mb)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", bin.text, err)
		}
		return append(lines, matrixLine(bin.text, bin.latex, r)), nil
	}

	for _, named := range []struct {
		name string
		m    *symbolic.Matrix
	}{{"A", ma}, {"B", mb}} {
		switch op {
		case OpDeterminant:
			d, err := named.m.Det()
			if err != nil {
				return nil, fmt.Errorf("det(%s): %w", named.name, err)
			}
			lines = append(lines, Line{
				Text:  fmt.Sprintf("det(%s) = %s", named.name, d),
				LaTeX: fmt.Sprintf(`\det(%s) = %s`, named.name, d.LaTeX()),
			})
		case OpInverse:
			inv, err := named.m.Inverse()
			if err != nil {
				return nil, fmt.Errorf("%s⁻¹: %w", named.name, err)
			}
			lines = append(lines, matrixLine(named.name+"⁻¹", named.name+"^{-1}", inv))
		case OpTranspose:
			lines = append(lines, matrixLine(named.name+"ᵀ", named.name+"^{T}", named.m.Transpose()))
		}
	}
	return lines, nil
}

func matrixLine(text, latex string, m *symbolic.Matrix) Line {
	return Line{Text: text + " = " + m.String(), LaTeX: latex + " = " + m.LaTeX()}
}
