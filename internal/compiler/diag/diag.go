// Package diag holds the compilation error raised when a program fails to
// analyse and the trace of grammar rules that led to it.
package diag

import (
	"errors"
	"fmt"

	"github.com/arnavsurve/synan/internal/compiler/token"
)

type Kind string

const (
	UnexpectedSymbol       Kind = "UNEXPECTED_SYMBOL"
	UninitialisedVariable  Kind = "UNINITIALISED_VARIABLE"
	IllegalStringOperation Kind = "ILLEGAL_STRING_OPERATION"
)

const (
	MsgUnexpectedSymbol      = "Unexpected symbol. A token is either incorrectly formed, misplaced, or missing."
	MsgUninitialisedVariable = "Uninitialised variable. A variable must first be initialised before it can be used."
	MsgIllegalStringOperand  = "Illegal String operation. String types are not compatible with number types or '/', '-'. and '*' operators."
)

// MsgIllegalStringOperator is the message for a '-', '*' or '/' applied after
// a string operand.
func MsgIllegalStringOperator(op string) string {
	return fmt.Sprintf("Illegal String operation. The '%s' operator cannot used used with String types.", op)
}

// CompilationError is fatal to the program under analysis.
type CompilationError struct {
	Kind    Kind
	Token   token.Token
	Message string
	Trace   []Frame // innermost rule last
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("line %d: %s (at %s)", e.Token.Line, e.Message, e.Token)
}

func New(kind Kind, tok token.Token, message string) *CompilationError {
	return &CompilationError{
		Kind:    kind,
		Token:   tok,
		Message: message,
	}
}

// IsKind reports whether err is, or wraps, a CompilationError of kind.
func IsKind(err error, kind Kind) bool {
	var ce *CompilationError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
