package symbolic

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix — dense matrix of expressions
// ============================================================

type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MaxMatrixDim bounds rows and columns. Det and Inverse expand cofactors,
// which grows factorially with the dimension.
const MaxMatrixDim = 6

// MatrixFromRows copies rows into a matrix. Every row must have the same,
// non-zero length, at most MaxMatrixDim.
func MatrixFromRows(rows [][]Expr) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: matrix is empty", ErrBadShape)
	}
	cols := len(rows[0])
	if len(rows) > MaxMatrixDim || cols > MaxMatrixDim {
		return nil, fmt.Errorf("%w: %dx%d is larger than %dx%d", ErrBadShape, len(rows), cols, MaxMatrixDim, MaxMatrixDim)
	}
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrBadShape, i+1, len(r), cols)
		}
		for j, e := range r {
			m.data[i][j] = e.Simplify()
		}
	}
	return m, nil
}

// ParseMatrix reads rows separated by ";" or newlines. Entries are separated by
// commas when a row has any, otherwise by whitespace, so "1 2; 3 4" and
// "x + 1, 2; 3, 4" both work. The bracketed form "[[1, 2], [3, 4]]" is accepted
// too. Each entry is parsed with Parse.
func ParseMatrix(text string) (*Matrix, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "[") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		s = strings.NewReplacer("],", ";", "] ,", ";", "]", "", "[", "").Replace(s)
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' })
	rows := make([][]Expr, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(rows) == MaxMatrixDim {
			return nil, fmt.Errorf("%w: more than %d rows", ErrBadShape, MaxMatrixDim)
		}
		i := len(rows)
		var cells []string
		if strings.Contains(line, ",") {
			cells = strings.Split(line, ",")
		} else {
			cells = strings.Fields(line)
		}
		if len(cells) > MaxMatrixDim {
			return nil, fmt.Errorf("%w: row %d has more than %d entries", ErrBadShape, i+1, MaxMatrixDim)
		}
		row := make([]Expr, len(cells))
		for j, c := range cells {
			e, err := Parse(c)
			if err != nil {
				return nil, fmt.Errorf("entry (%d,%d): %w", i+1, j+1, err)
			}
			row[j] = e
		}
		rows = append(rows, row)
	}
	return MatrixFromRows(rows)
}

func (m *Matrix) Get(row, col int) Expr { return m.data[row][col] }
func (m *Matrix) Rows() int             { return m.rows }
func (m *Matrix) Cols() int             { return m.cols }

// Entries returns a copy of the rows.
func (m *Matrix) Entries() [][]Expr {
	out := make([][]Expr, m.rows)
	for i := range m.data {
		out[i] = append([]Expr(nil), m.data[i]...)
	}
	return out
}

func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		for j := range m.data[i] {
			if !m.data[i][j].Equal(other.data[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{bmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{bmatrix}")
	return sb.String()
}

func (m *Matrix) sameShape(other *Matrix, op string) error {
	if m.rows != other.rows || m.cols != other.cols {
		return fmt.Errorf("%w: cannot %s %dx%d and %dx%d", ErrDimensionMismatch, op, m.rows, m.cols, other.rows, other.cols)
	}
	return nil
}

func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if err := m.sameShape(other, "add"); err != nil {
		return nil, err
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = AddOf(m.data[i][j], other.data[i][j])
		}
	}
	return result, nil
}

func (m *Matrix) Sub(other *Matrix) (*Matrix, error) {
	if err := m.sameShape(other, "subtract"); err != nil {
		return nil, err
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = SubOf(m.data[i][j], other.data[i][j])
		}
	}
	return result, nil
}

// Mul is the matrix product m·other.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d", ErrDimensionMismatch, m.rows, m.cols, other.rows, other.cols)
	}
	result := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.data[i][k], other.data[k][j])
			}
			result.data[i][j] = AddOf(terms...)
		}
	}
	return result, nil
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = MulOf(scalar, m.data[i][j])
		}
	}
	return result
}

func (m *Matrix) Transpose() *Matrix {
	result := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j][i] = m.data[i][j]
		}
	}
	return result
}

func (m *Matrix) square(op string) error {
	if m.rows != m.cols {
		return fmt.Errorf("%w: %s of a %dx%d matrix", ErrNonSquare, op, m.rows, m.cols)
	}
	return nil
}

func (m *Matrix) Trace() (Expr, error) {
	if err := m.square("trace"); err != nil {
		return nil, err
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...), nil
}

func (m *Matrix) Det() (Expr, error) {
	if err := m.square("determinant"); err != nil {
		return nil, err
	}
	return matDet(m.data, m.rows), nil
}

// matDet expands along the first row; MaxMatrixDim keeps that affordable.
func matDet(data [][]Expr, n int) Expr {
	if n == 1 {
		return data[0][0]
	}
	if n == 2 {
		return SubOf(MulOf(data[0][0], data[1][1]), MulOf(data[0][1], data[1][0]))
	}
	terms := make([]Expr, n)
	for j := 0; j < n; j++ {
		sign := N(1)
		if j%2 == 1 {
			sign = N(-1)
		}
		terms[j] = MulOf(sign, data[0][j], matDet(makeMinor(data, n, 0, j), n-1))
	}
	return AddOf(terms...)
}

func makeMinor(data [][]Expr, n, skipRow, skipCol int) [][]Expr {
	minor := make([][]Expr, 0, n-1)
	for i := 0; i < n; i++ {
		if i == skipRow {
			continue
		}
		row := make([]Expr, 0, n-1)
		for j := 0; j < n; j++ {
			if j != skipCol {
				row = append(row, data[i][j])
			}
		}
		minor = append(minor, row)
	}
	return minor
}

// Inverse is the adjugate divided by the determinant. A determinant that
// simplifies to zero yields ErrSingular.
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if dn, ok := det.Eval(); ok && dn.IsZero() {
		return nil, ErrSingular
	}
	n := m.rows
	if n == 1 {
		return &Matrix{rows: 1, cols: 1, data: [][]Expr{{PowOf(det, N(-1))}}}, nil
	}
	cof := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sign := N(1)
			if (i+j)%2 == 1 {
				sign = N(-1)
			}
			cof.data[i][j] = MulOf(sign, matDet(makeMinor(m.data, n, i, j), n-1))
		}
	}
	return cof.Transpose().Scale(PowOf(det, N(-1))), nil
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}
