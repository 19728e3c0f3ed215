package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

type ErrorKind string

const (
	NameError          ErrorKind = "NameError"
	TypeError          ErrorKind = "TypeError"
	DivisionByZero     ErrorKind = "DivisionByZero"
	IndexOutOfBounds   ErrorKind = "IndexOutOfBounds"
	NoSuchField        ErrorKind = "NoSuchField"
	NonExhaustiveMatch ErrorKind = "NonExhaustiveMatch"
	ArityMismatch      ErrorKind = "ArityMismatch"
	StackOverflow      ErrorKind = "StackOverflow"
	ResourceExceeded   ErrorKind = "ResourceExceeded"
	InvalidControlFlow ErrorKind = "InvalidControlFlow"
	UserError          ErrorKind = "UserError"
	RuntimeError       ErrorKind = "RuntimeError"
	SyntaxError        ErrorKind = "SyntaxError"
)

// Error is a runtime error. It is both a Go error and an ordinary value,
// so a catch clause can bind it and read kind, message, line and column.
type Error struct {
	Kind       ErrorKind
	Message    string
	Line       int
	Column     int
	File       string
	StackTrace []CallFrame
	// Payload is the thrown value for `throw v`; nil otherwise.
	Payload Object
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR at %d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("ERROR: %s: %s", e.Kind, e.Message)
}

// Report renders the error with its stack trace, innermost call first.
func (e *Error) Report() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		f := e.StackTrace[i]
		fmt.Fprintf(&sb, "\n  at %s (%d:%d)", f.Name, f.Line, f.Column)
	}
	return sb.String()
}

// Field exposes the error's attributes to field access and struct patterns.
func (e *Error) Field(name string) (Object, bool) {
	switch name {
	case "kind":
		return &String{Value: string(e.Kind)}, true
	case "message":
		return &String{Value: e.Message}, true
	case "line":
		return &Integer{Value: int64(e.Line)}, true
	case "column":
		return &Integer{Value: int64(e.Column)}, true
	case "value":
		if e.Payload != nil {
			return e.Payload, true
		}
		return UNIT, true
	}
	return nil, false
}

func newError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

type SignalKind int

const (
	SignalReturn SignalKind = iota
	SignalBreak
	SignalContinue
	SignalRaised
)

func (k SignalKind) String() string {
	switch k {
	case SignalReturn:
		return "return"
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	default:
		return "raised"
	}
}

// Signal is the only non-local control mechanism. Every non-nil error
// returned from Eval is a *Signal; loops consume Break/Continue, calls
// consume Return, try/catch consumes Raised.
type Signal struct {
	Kind  SignalKind
	Value Object
	Label string
	Err   *Error
}

func (s *Signal) Error() string {
	if s.Kind == SignalRaised && s.Err != nil {
		return s.Err.Error()
	}
	if s.Label != "" {
		return fmt.Sprintf("%s '%s outside of loop", s.Kind, s.Label)
	}
	return fmt.Sprintf("%s outside of its construct", s.Kind)
}

func (s *Signal) Unwrap() error {
	if s.Err != nil {
		return s.Err
	}
	return nil
}

func raise(err *Error) *Signal {
	return &Signal{Kind: SignalRaised, Err: err}
}

// raiseAt raises err with the span of node, unless the error already
// carries a position.
func (e *Evaluator) raiseAt(node ast.Node, err *Error) *Signal {
	e.locate(node, err)
	return raise(err)
}

func (e *Evaluator) locate(node ast.Node, err *Error) {
	if err.Line == 0 && node != nil {
		tok := node.GetToken()
		err.Line, err.Column = tok.Line, tok.Column
	}
	if err.File == "" {
		err.File = e.CurrentFile
	}
	if err.StackTrace == nil && len(e.CallStack) > 0 {
		err.StackTrace = append([]CallFrame(nil), e.CallStack...)
	}
}

// errorf raises a new error of kind located at node.
func (e *Evaluator) errorf(node ast.Node, kind ErrorKind, format string, a ...interface{}) *Signal {
	return e.raiseAt(node, newError(kind, format, a...))
}

// toSignal normalises an error returned by a builtin into a Signal.
func (e *Evaluator) toSignal(node ast.Node, err error) *Signal {
	var sig *Signal
	if errors.As(err, &sig) {
		if sig.Kind == SignalRaised && sig.Err != nil {
			e.locate(node, sig.Err)
		}
		return sig
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return e.raiseAt(node, rerr)
	}
	return e.errorf(node, RuntimeError, "%v", err)
}

// AsError extracts the runtime error carried by err, if any.
func AsError(err error) (*Error, bool) {
	var sig *Signal
	if errors.As(err, &sig) && sig.Kind == SignalRaised {
		return sig.Err, sig.Err != nil
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
