package evaluator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/config"
)

// CallFrame represents a single frame in the call stack
type CallFrame struct {
	Name   string
	File   string
	Line   int
	Column int
}

type Evaluator struct {
	// Context for cancellation and deadlines; checked at loop iterations
	// and calls.
	Context context.Context

	Out io.Writer
	Err io.Writer

	Logger *slog.Logger

	// Types holds struct and enum declarations by name.
	Types map[string]Object

	// CallStack for stack traces on errors
	CallStack []CallFrame
	// CurrentFile being evaluated
	CurrentFile string

	MaxEvalDepth int
	MaxCallDepth int
	// StepBudget limits loop iterations plus calls per top-level unit;
	// 0 means unlimited.
	StepBudget int64
	// MaxCollectionSize caps arrays and strings built from a user-supplied
	// count; 0 means unlimited.
	MaxCollectionSize int64

	steps     int64
	evalDepth int
	// site is the call expression of the innermost native call, used to
	// locate errors raised through Apply.
	site ast.Node
}

func New() *Evaluator {
	return &Evaluator{
		Context:      context.Background(),
		Out:          os.Stdout,
		Err:          os.Stderr,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Types:        make(map[string]Object),
		MaxEvalDepth: config.DefaultMaxEvalDepth,
		MaxCallDepth: config.DefaultMaxCallDepth,
		StepBudget:   config.DefaultStepBudget,

		MaxCollectionSize: config.DefaultMaxCollectionSize,
	}
}

// ApplyLimits copies the evaluation limits from cfg.
func (e *Evaluator) ApplyLimits(l config.Limits) {
	if l.MaxEvalDepth > 0 {
		e.MaxEvalDepth = l.MaxEvalDepth
	}
	if l.MaxCallDepth > 0 {
		e.MaxCallDepth = l.MaxCallDepth
	}
	e.StepBudget = l.StepBudget
	if l.MaxCollectionSize > 0 {
		e.MaxCollectionSize = l.MaxCollectionSize
	}
}

// checkSize raises ResourceExceeded when n elements would exceed
// MaxCollectionSize.
func (e *Evaluator) checkSize(n int64, what string) *Error {
	if n < 0 || (e.MaxCollectionSize > 0 && n > e.MaxCollectionSize) {
		return newError(ResourceExceeded, "%s would exceed the size limit of %d", what, e.MaxCollectionSize)
	}
	return nil
}

// Steps reports how many budgeted steps the current unit has taken.
func (e *Evaluator) Steps() int64 { return e.steps }

// tick is called at every loop iteration and function call. It enforces
// the step budget and observes context cancellation.
func (e *Evaluator) tick(node ast.Node) error {
	e.steps++
	if e.StepBudget > 0 && e.steps > e.StepBudget {
		return e.errorf(node, ResourceExceeded, "step budget of %d exhausted", e.StepBudget)
	}
	if e.Context != nil && e.steps&0xff == 0 {
		if err := e.Context.Err(); err != nil {
			return e.errorf(node, ResourceExceeded, "evaluation interrupted: %v", err)
		}
	}
	return nil
}

func (e *Evaluator) pushCall(name string, node ast.Node) {
	frame := CallFrame{Name: name, File: e.CurrentFile}
	if node != nil {
		tok := node.GetToken()
		frame.Line, frame.Column = tok.Line, tok.Column
	}
	e.CallStack = append(e.CallStack, frame)
}

func (e *Evaluator) popCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

// EvalTopLevel evaluates one top-level statement in env. Control signals
// that escape the statement are resolved here: a return ends the unit with
// its value, a stray break or continue becomes InvalidControlFlow, and a
// raised error is returned as *Error. A panic inside the evaluator aborts
// only this statement and is reported as a RuntimeError.
func (e *Evaluator) EvalTopLevel(stmt ast.Statement, env *Environment) (result Object, rerr *Error) {
	defer func() {
		if r := recover(); r != nil {
			if e.Logger != nil {
				e.Logger.Error("evaluator panic", "panic", r, "stack", string(debug.Stack()))
			}
			result, rerr = nil, newError(RuntimeError, "internal error: %v", r)
			e.locate(stmt, rerr)
		}
	}()

	e.steps = 0
	e.evalDepth = 0
	e.CallStack = e.CallStack[:0]
	e.site = nil
	if e.Context != nil {
		if err := e.Context.Err(); err != nil {
			interrupted := newError(ResourceExceeded, "evaluation interrupted: %v", err)
			e.locate(stmt, interrupted)
			return nil, interrupted
		}
	}

	val, err := e.evalStatement(stmt, env)
	if err == nil {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && es.Terminated {
			return UNIT, nil
		}
		return val, nil
	}
	return e.resolveEscaped(stmt, err)
}

func (e *Evaluator) resolveEscaped(node ast.Node, err error) (Object, *Error) {
	sig, ok := err.(*Signal)
	if !ok {
		rerr, isErr := AsError(err)
		if !isErr {
			rerr = newError(RuntimeError, "%v", err)
		}
		e.locate(node, rerr)
		return nil, rerr
	}
	switch sig.Kind {
	case SignalReturn:
		if sig.Value == nil {
			return UNIT, nil
		}
		return sig.Value, nil
	case SignalBreak, SignalContinue:
		rerr := newError(InvalidControlFlow, "%s", sig.Error())
		e.locate(node, rerr)
		return nil, rerr
	}
	e.locate(node, sig.Err)
	return nil, sig.Err
}

// EvalProgram runs every statement of prog in env and returns the value of
// the last one. Evaluation stops at the first error.
func (e *Evaluator) EvalProgram(prog *ast.Program, env *Environment) (Object, *Error) {
	var result Object = UNIT
	for _, stmt := range prog.Statements {
		val, err := e.EvalTopLevel(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

// Eval evaluates node in env. Every non-nil error is a *Signal.
func (e *Evaluator) Eval(node ast.Node, env *Environment) (Object, error) {
	e.evalDepth++
	defer func() { e.evalDepth-- }()
	if e.evalDepth > e.MaxEvalDepth {
		return nil, e.errorf(node, StackOverflow, "maximum evaluation depth of %d exceeded", e.MaxEvalDepth)
	}

	switch node := node.(type) {
	case ast.Statement:
		return e.evalStatement(node, env)

	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, nil
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}, nil
	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil
	case *ast.BooleanLiteral:
		return nativeBool(node.Value), nil
	case *ast.UnitLiteral:
		return UNIT, nil
	case *ast.InterpolatedString:
		return e.evalInterpolatedString(node, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(node, env)
	case *ast.ArrayRepeat:
		return e.evalArrayRepeat(node, env)
	case *ast.ListComprehension:
		return e.evalListComprehension(node, env)
	case *ast.TupleLiteral:
		elems, err := e.evalExpressions(node.Elements, env)
		if err != nil {
			return nil, err
		}
		return &Tuple{Elements: elems}, nil
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(node, env)
	case *ast.StructLiteral:
		return e.evalStructLiteral(node, env)
	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(node, env), nil

	// Names and access
	case *ast.Identifier:
		val, err := env.Lookup(node.Value)
		if err != nil {
			return nil, e.raiseAt(node, err)
		}
		return val, nil
	case *ast.PathExpression:
		return e.evalPathExpression(node)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.FieldExpression:
		return e.evalFieldExpression(node, env)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)

	// Operators
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.RangeExpression:
		return e.evalRangeExpression(node, env)
	case *ast.CastExpression:
		return e.evalCastExpression(node, env)

	// Calls
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.MethodCallExpression:
		return e.evalMethodCall(node, env)

	// Control flow
	case *ast.BlockExpression:
		return e.evalBlock(node, env)
	case *ast.IfExpression:
		return e.evalIfExpression(node, env)
	case *ast.IfLetExpression:
		return e.evalIfLetExpression(node, env)
	case *ast.MatchExpression:
		return e.evalMatchExpression(node, env)
	case *ast.ForExpression:
		return e.evalForExpression(node, env)
	case *ast.WhileExpression:
		return e.evalWhileExpression(node, env)
	case *ast.WhileLetExpression:
		return e.evalWhileLetExpression(node, env)
	case *ast.LoopExpression:
		return e.evalLoopExpression(node, env)
	case *ast.BreakExpression:
		return e.evalBreakExpression(node, env)
	case *ast.ContinueExpression:
		return nil, &Signal{Kind: SignalContinue, Label: node.Label}
	case *ast.ReturnExpression:
		return e.evalReturnExpression(node, env)
	case *ast.PropagateExpression:
		return e.evalPropagateExpression(node, env)
	case *ast.TryExpression:
		return e.evalTryExpression(node, env)
	case *ast.ThrowExpression:
		return e.evalThrowExpression(node, env)
	}

	return nil, e.errorf(node, RuntimeError, "cannot evaluate %T", node)
}

func (e *Evaluator) evalExpressions(exps []ast.Expression, env *Environment) ([]Object, error) {
	result := make([]Object, 0, len(exps))
	for _, exp := range exps {
		val, err := e.Eval(exp, env)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}
