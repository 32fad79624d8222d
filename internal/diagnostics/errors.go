package diagnostics

import (
	"fmt"

	"github.com/sumlower/sumlower/internal/token"
)

// ErrorCode identifies a class of lowering failure.
type ErrorCode string

const (
	// Substitution engine.
	ErrS001 ErrorCode = "S001" // kind mismatch between parameter and argument
	ErrS005 ErrorCode = "S005" // substitution requested in an unsupported construct
	ErrS006 ErrorCode = "S006" // too few / superfluous arguments or parameters

	// Declaration lowering.
	ErrL002 ErrorCode = "L002" // structural mismatch between impl and target
	ErrL003 ErrorCode = "L003" // dispatch required but no match arm supplied
	ErrL004 ErrorCode = "L004" // unknown dispatch target
	ErrL006 ErrorCode = "L006" // positional cardinality mismatch
)

// DiagnosticError is the single error currency of the lowering passes. Every
// failure carries the offending node's source location; the passes stop at
// the first failure, so one run reports at most one of these.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Line    int
	Column  int
	Message string
}

func (e *DiagnosticError) Error() string {
	if e.File == "" && e.Line == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d [%s] %s", e.File, e.Line, e.Column, e.Code, e.Message)
}

// NewError builds a located diagnostic.
func NewError(code ErrorCode, span token.Span, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		File:    span.File,
		Line:    span.Start.Line,
		Column:  span.Start.Column,
		Message: message,
	}
}

// Errorf builds a located diagnostic with fmt-style formatting.
func Errorf(code ErrorCode, span token.Span, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, span, fmt.Sprintf(format, args...))
}
