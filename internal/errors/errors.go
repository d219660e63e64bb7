// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// Phase identifies the interpreter phase that produced an error.
type Phase string

const (
	LexError     Phase = "LexError"
	ParseError   Phase = "ParseError"
	TypeError    Phase = "TypeError"
	RuntimeError Phase = "RuntimeError"
)

// Code identifies the specific failure within a phase.
type Code string

const (
	// Lex
	UnterminatedString  Code = "UnterminatedString"
	InvalidNumber       Code = "InvalidNumber"
	UnexpectedCharacter Code = "UnexpectedCharacter"

	// Parse
	UnexpectedToken Code = "UnexpectedToken"

	// Type check
	TypeMismatch         Code = "TypeMismatch"
	AssignToConst        Code = "AssignToConst"
	UndefinedIdentifier  Code = "UndefinedIdentifier"
	DuplicateDeclaration Code = "DuplicateDeclaration"
	InvalidOperandTypes  Code = "InvalidOperandTypes"

	// Runtime
	DivisionByZero Code = "DivisionByZero"
	UseAfterFree   Code = "UseAfterFree"
)

// Error is a diagnostic with a source position. Each interpreter phase
// stops at the first Error it produces; the caller formats it.
type Error struct {
	Phase   Phase
	Code    Code
	Message string
	Line    int
	Column  int
	Source  string // the offending source line, when available
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s: %s", e.Phase, e.Code, e.Message))
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("\n  at line %d, column %d", e.Line, e.Column))
	}

	// Show the source line with a caret under the offending column.
	if e.Source != "" {
		prefix := fmt.Sprintf("%d | ", e.Line)
		sb.WriteString(fmt.Sprintf("\n\n  %s%s\n", prefix, e.Source))
		sb.WriteString("  " + strings.Repeat(" ", len(prefix)))
		if e.Column > 1 {
			sb.WriteString(strings.Repeat(" ", e.Column-1))
		}
		sb.WriteString("^")
	}

	return sb.String()
}

// New creates a positioned diagnostic.
func New(phase Phase, code Code, message string, line, column int) *Error {
	return &Error{
		Phase:   phase,
		Code:    code,
		Message: message,
		Line:    line,
		Column:  column,
	}
}

// WithSource attaches the source line the error points into.
func (e *Error) WithSource(line string) *Error {
	e.Source = line
	return e
}

// SourceLine extracts line n (1-based) from source for WithSource.
func SourceLine(source string, n int) string {
	lines := strings.Split(source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
