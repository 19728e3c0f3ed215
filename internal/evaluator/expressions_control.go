package evaluator

import (
	"errors"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

// errStopIteration ends an iterate callback early; it never escapes a loop.
var errStopIteration = errors.New("stop iteration")

func (e *Evaluator) evalIfExpression(node *ast.IfExpression, env *Environment) (Object, error) {
	cond, err := e.Eval(node.Condition, env)
	if err != nil {
		return nil, err
	}
	ok, err := e.truthy(node.Condition, cond, "if condition")
	if err != nil {
		return nil, err
	}
	if ok {
		return e.evalBlock(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return UNIT, nil
}

func (e *Evaluator) evalIfLetExpression(node *ast.IfLetExpression, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	scope := NewEnclosedEnvironment(env)
	ok, err := e.MatchPattern(node.Pattern, val, scope)
	if err != nil {
		return nil, err
	}
	if ok {
		return e.evalBlockIn(node.Consequence, scope)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return UNIT, nil
}

// Arms are tried in order; each gets its own scope and its guard is
// evaluated at most once, after the pattern matched.
func (e *Evaluator) evalMatchExpression(node *ast.MatchExpression, env *Environment) (Object, error) {
	subject, err := e.Eval(node.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range node.Arms {
		scope := NewEnclosedEnvironment(env)
		ok, err := e.MatchPattern(arm.Pattern, subject, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if arm.Guard != nil {
			g, err := e.Eval(arm.Guard, scope)
			if err != nil {
				return nil, err
			}
			pass, err := e.truthy(arm.Guard, g, "match guard")
			if err != nil {
				return nil, err
			}
			if !pass {
				continue
			}
		}
		return e.Eval(arm.Body, scope)
	}
	return nil, e.errorf(node, NonExhaustiveMatch, "no match arm matched %s", Display(subject))
}

// loopControl interprets an error leaving a loop body. stop reports that
// the loop ends with val; a non-nil out propagates further.
func loopControl(label string, err error) (stop bool, val Object, out error) {
	sig, ok := err.(*Signal)
	if !ok {
		return true, nil, err
	}
	switch sig.Kind {
	case SignalBreak:
		if sig.Label == "" || sig.Label == label {
			if sig.Value == nil {
				return true, UNIT, nil
			}
			return true, sig.Value, nil
		}
	case SignalContinue:
		if sig.Label == "" || sig.Label == label {
			return false, nil, nil
		}
	}
	return true, nil, err
}

func (e *Evaluator) evalForExpression(node *ast.ForExpression, env *Environment) (Object, error) {
	iterable, err := e.Eval(node.Iterable, env)
	if err != nil {
		return nil, err
	}
	var result Object = UNIT
	err = e.iterate(node.Iterable, iterable, func(item Object) error {
		if err := e.tick(node); err != nil {
			return err
		}
		scope := NewEnclosedEnvironment(env)
		ok, err := e.MatchPattern(node.Pattern, item, scope)
		if err != nil {
			return err
		}
		if !ok {
			return e.errorf(node, NonExhaustiveMatch, "for pattern %s does not match %s", node.Pattern.String(), Display(item))
		}
		if _, err := e.evalBlockIn(node.Body, scope); err != nil {
			stop, val, out := loopControl(node.Label, err)
			if out != nil {
				return out
			}
			if stop {
				result = val
				return errStopIteration
			}
		}
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, err
	}
	return result, nil
}

func (e *Evaluator) evalWhileExpression(node *ast.WhileExpression, env *Environment) (Object, error) {
	for {
		if err := e.tick(node); err != nil {
			return nil, err
		}
		cond, err := e.Eval(node.Condition, env)
		if err != nil {
			return nil, err
		}
		ok, err := e.truthy(node.Condition, cond, "while condition")
		if err != nil {
			return nil, err
		}
		if !ok {
			return UNIT, nil
		}
		if _, err := e.evalBlock(node.Body, env); err != nil {
			stop, val, out := loopControl(node.Label, err)
			if out != nil {
				return nil, out
			}
			if stop {
				return val, nil
			}
		}
	}
}

func (e *Evaluator) evalWhileLetExpression(node *ast.WhileLetExpression, env *Environment) (Object, error) {
	for {
		if err := e.tick(node); err != nil {
			return nil, err
		}
		val, err := e.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		scope := NewEnclosedEnvironment(env)
		ok, err := e.MatchPattern(node.Pattern, val, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return UNIT, nil
		}
		if _, err := e.evalBlockIn(node.Body, scope); err != nil {
			stop, bval, out := loopControl(node.Label, err)
			if out != nil {
				return nil, out
			}
			if stop {
				return bval, nil
			}
		}
	}
}

func (e *Evaluator) evalLoopExpression(node *ast.LoopExpression, env *Environment) (Object, error) {
	for {
		if err := e.tick(node); err != nil {
			return nil, err
		}
		if _, err := e.evalBlock(node.Body, env); err != nil {
			stop, val, out := loopControl(node.Label, err)
			if out != nil {
				return nil, out
			}
			if stop {
				return val, nil
			}
		}
	}
}

func (e *Evaluator) evalBreakExpression(node *ast.BreakExpression, env *Environment) (Object, error) {
	sig := &Signal{Kind: SignalBreak, Label: node.Label}
	if node.Value != nil {
		val, err := e.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		sig.Value = val
	}
	return nil, sig
}

func (e *Evaluator) evalReturnExpression(node *ast.ReturnExpression, env *Environment) (Object, error) {
	if node.Value == nil {
		return nil, &Signal{Kind: SignalReturn, Value: UNIT}
	}
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	return nil, &Signal{Kind: SignalReturn, Value: val}
}

// expr? unwraps Some/Ok and returns None/Err from the enclosing function.
func (e *Evaluator) evalPropagateExpression(node *ast.PropagateExpression, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case *Option:
		if v.IsSome() {
			return v.Value, nil
		}
		return nil, &Signal{Kind: SignalReturn, Value: v}
	case *Result:
		if v.IsOk {
			return v.Value, nil
		}
		return nil, &Signal{Kind: SignalReturn, Value: v}
	}
	return nil, e.errorf(node, TypeError, "the ? operator needs Option or Result, got %s", TypeName(val))
}

// try/catch is a match over raised errors. A clause pattern is tried
// against the thrown payload first, then against the error value itself.
// Return, break and continue pass through untouched; finally always runs
// and an error or signal from it replaces the outcome.
func (e *Evaluator) evalTryExpression(node *ast.TryExpression, env *Environment) (Object, error) {
	val, err := e.evalBlock(node.Body, env)
	if err != nil {
		if sig, ok := err.(*Signal); ok && sig.Kind == SignalRaised && sig.Err != nil {
			val, err = e.catch(node, sig, env)
		}
	}
	if node.Finally != nil {
		if _, ferr := e.evalBlock(node.Finally, env); ferr != nil {
			return nil, ferr
		}
	}
	return val, err
}

func (e *Evaluator) catch(node *ast.TryExpression, sig *Signal, env *Environment) (Object, error) {
	candidates := []Object{sig.Err}
	if sig.Err.Payload != nil {
		candidates = []Object{sig.Err.Payload, sig.Err}
	}
	for _, clause := range node.Catches {
		for _, caught := range candidates {
			scope := NewEnclosedEnvironment(env)
			ok, err := e.MatchPattern(clause.Pattern, caught, scope)
			if err != nil {
				return nil, err
			}
			if ok {
				e.Logger.Debug("caught error", "kind", sig.Err.Kind, "line", sig.Err.Line)
				return e.evalBlockIn(clause.Body, scope)
			}
		}
	}
	return nil, sig
}

func (e *Evaluator) evalThrowExpression(node *ast.ThrowExpression, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	if rerr, ok := val.(*Error); ok {
		return nil, raise(rerr)
	}
	rerr := newError(UserError, "%s", ToText(val))
	rerr.Payload = val
	return nil, e.raiseAt(node, rerr)
}

// iterate feeds each element of a collection to fn. Arrays are iterated
// over a snapshot of their elements; ranges are produced lazily.
func (e *Evaluator) iterate(node ast.Node, iterable Object, fn func(Object) error) error {
	switch it := iterable.(type) {
	case *Array:
		items := make([]Object, len(it.Elements))
		copy(items, it.Elements)
		return eachObject(items, fn)
	case *Tuple:
		return eachObject(it.Elements, fn)
	case *Range:
		last, ok := it.Last()
		if !ok {
			return nil
		}
		for i := it.Start; ; i++ {
			if err := fn(&Integer{Value: i}); err != nil {
				return err
			}
			if i == last {
				return nil
			}
		}
	case *String:
		for _, r := range it.Value {
			if err := fn(&String{Value: string(r)}); err != nil {
				return err
			}
		}
		return nil
	case *Record:
		keys := make([]string, len(it.Keys))
		copy(keys, it.Keys)
		for _, k := range keys {
			v, ok := it.Get(k)
			if !ok {
				continue
			}
			if err := fn(&Tuple{Elements: []Object{&String{Value: k}, v}}); err != nil {
				return err
			}
		}
		return nil
	}
	return e.errorf(node, TypeError, "%s is not iterable", TypeName(iterable))
}

func eachObject(items []Object, fn func(Object) error) error {
	for _, item := range items {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}
