package diagnostics

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // illegal character
	ErrL002 ErrorCode = "L002" // unterminated string
	ErrL003 ErrorCode = "L003" // malformed number

	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expected token missing
	ErrP003 ErrorCode = "P003" // no prefix parse function
	ErrP004 ErrorCode = "P004" // invalid assignment target
	ErrP005 ErrorCode = "P005" // invalid pattern
	ErrP006 ErrorCode = "P006" // construct not allowed here
	ErrP007 ErrorCode = "P007" // malformed interpolation
	ErrP010 ErrorCode = "P010" // or-pattern alternatives bind different names
)

var descriptions = map[ErrorCode]string{
	ErrL001: "illegal character",
	ErrL002: "unterminated string",
	ErrL003: "malformed number",
	ErrP001: "unexpected token",
	ErrP002: "missing token",
	ErrP003: "unexpected start of expression",
	ErrP004: "invalid assignment target",
	ErrP005: "invalid pattern",
	ErrP006: "not allowed here",
	ErrP007: "malformed interpolation",
	ErrP010: "inconsistent or-pattern bindings",
}

// DiagnosticError is a positioned error produced before evaluation.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

// NewError builds a diagnostic. If args are given, format is treated as a
// fmt format string.
func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: error [%s]: %s", loc, e.Code, e.Message)
}

// Description returns the short human name of the code.
func (c ErrorCode) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return string(c)
}
