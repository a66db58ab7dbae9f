package symbolic

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "symbolic:" so callers can grep logs; match
// them with errors.Is.
var (
	ErrSyntax            = errors.New("symbolic: invalid expression syntax")
	ErrNoSymbols         = errors.New("symbolic: no variables given")
	ErrBadSymbol         = errors.New("symbolic: invalid variable name")
	ErrNoClosedForm      = errors.New("symbolic: no closed form found")
	ErrNotFinite         = errors.New("symbolic: result is not finite")
	ErrBadShape          = errors.New("symbolic: invalid matrix shape")
	ErrDimensionMismatch = errors.New("symbolic: matrix dimension mismatch")
	ErrNonSquare         = errors.New("symbolic: matrix is not square")
	ErrSingular          = errors.New("symbolic: matrix is singular")
)

// SyntaxError locates a parse failure. It unwraps to ErrSyntax.
type SyntaxError struct {
	Pos int // byte offset into the input
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s at position %d", ErrSyntax.Error(), e.Msg, e.Pos+1)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
