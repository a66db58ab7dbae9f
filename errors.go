package scicalc

import (
	"errors"

	"github.com/njchilds90/scicalc/symbolic"
	"github.com/njchilds90/scicalc/trig"
)

var (
	ErrUnsupportedOperation = errors.New("scicalc: unsupported operation")
	ErrUnknownVariable      = errors.New("scicalc: variable is not in the variable list")
	ErrUndefinedVariable    = errors.New("scicalc: expression uses undeclared variables")
	ErrInvalidNumber        = errors.New("scicalc: not a number")
	ErrInvalidLimit         = errors.New("scicalc: integration limit must be numeric")
	ErrUnknownTool          = errors.New("scicalc: unknown tool")
	ErrMissingParam         = errors.New("scicalc: missing param")
	ErrBadParam             = errors.New("scicalc: invalid param")
)

// Messages the page shows verbatim for the errors users hit most.
const (
	MsgUnsupportedOperation = "Unsupported Operation"
	MsgInverseDomain        = "Invalid input for inverse trigonometric functions."
)

// DisplayError turns a section error into the inline text shown on the page.
func DisplayError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedOperation):
		return MsgUnsupportedOperation
	case errors.Is(err, trig.ErrDomain):
		return MsgInverseDomain
	case errors.Is(err, symbolic.ErrSyntax):
		return "Invalid expression: " + err.Error()
	}
	return "Error: " + err.Error()
}
