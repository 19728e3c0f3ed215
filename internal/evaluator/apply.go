package evaluator

import (
	"strconv"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) (Object, error) {
	fn, err := e.Eval(node.Function, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}
	return e.applyFunction(node, fn, args)
}

// Apply calls fn with args from native code (builtins and methods taking
// callbacks). Errors are *Signal values and should be returned unchanged.
func (e *Evaluator) Apply(fn Object, args ...Object) (Object, error) {
	return e.applyFunction(e.site, fn, args)
}

func (e *Evaluator) applyFunction(node ast.Node, fn Object, args []Object) (Object, error) {
	switch fn := fn.(type) {
	case *Function:
		return e.callFunction(node, fn, args)
	case *Builtin:
		return e.callBuiltin(node, fn.Name, func() (Object, error) { return fn.Fn(e, args...) })
	}
	return nil, e.errorf(node, TypeError, "%s is not callable", TypeName(fn))
}

// callBuiltin runs native code as one call frame and normalises whatever
// error it returns.
func (e *Evaluator) callBuiltin(node ast.Node, name string, call func() (Object, error)) (Object, error) {
	if err := e.enterCall(node, name); err != nil {
		return nil, err
	}
	defer e.popCall()
	prev := e.site
	e.site = node
	defer func() { e.site = prev }()

	val, err := call()
	if err != nil {
		return nil, e.toSignal(node, err)
	}
	if val == nil {
		return UNIT, nil
	}
	return val, nil
}

func (e *Evaluator) enterCall(node ast.Node, name string) error {
	if len(e.CallStack) >= e.MaxCallDepth {
		return e.errorf(node, StackOverflow, "maximum call depth of %d exceeded", e.MaxCallDepth)
	}
	if err := e.tick(node); err != nil {
		return err
	}
	e.pushCall(name, node)
	return nil
}

func (e *Evaluator) callFunction(node ast.Node, fn *Function, args []Object) (Object, error) {
	name := fn.Name
	if name == "" {
		name = "<lambda>"
	}
	if err := e.enterCall(node, name); err != nil {
		return nil, err
	}
	defer e.popCall()

	scope := NewEnclosedEnvironment(fn.Env)
	params := fn.Parameters
	if fn.Receiver != nil && len(params) > 0 {
		scope.Define("self", fn.Receiver)
		params = params[1:]
	}

	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(params) {
		want := "exactly " + strconv.Itoa(len(params))
		if required != len(params) {
			want = strconv.Itoa(required) + " to " + strconv.Itoa(len(params))
		}
		return nil, e.errorf(node, ArityMismatch, "%s expects %s argument(s), got %d", name, want, len(args))
	}

	for i, p := range params {
		var val Object
		if i < len(args) {
			val = args[i]
		} else {
			v, err := e.Eval(p.Default, scope)
			if err != nil {
				return nil, err
			}
			val = v
		}
		ok, err := e.MatchPattern(p.Pattern, val, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, e.errorf(node, NonExhaustiveMatch, "argument %s does not match parameter %s of %s", Display(val), p.Pattern.String(), name)
		}
	}

	val, err := e.evalBlockIn(fn.Body, scope)
	if err == nil {
		return val, nil
	}
	sig, ok := err.(*Signal)
	if !ok {
		return nil, e.toSignal(node, err)
	}
	switch sig.Kind {
	case SignalReturn:
		if sig.Value == nil {
			return UNIT, nil
		}
		return sig.Value, nil
	case SignalBreak, SignalContinue:
		return nil, e.errorf(node, InvalidControlFlow, "%s escaped function %s", sig.Kind, name)
	}
	return nil, sig
}

func (e *Evaluator) evalMethodCall(node *ast.MethodCallExpression, env *Environment) (Object, error) {
	recv, err := e.Eval(node.Receiver, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}
	return e.CallMethod(node, recv, node.Method, args)
}

// CallMethod dispatches recv.name(args): impl methods first, then a
// callable field of a record, then the built-in methods of the value's
// type.
func (e *Evaluator) CallMethod(node ast.Node, recv Object, name string, args []Object) (Object, error) {
	if m := e.implMethod(recv, name); m != nil {
		bound := *m
		bound.Receiver = recv
		return e.callFunction(node, &bound, args)
	}
	if rec, ok := recv.(*Record); ok {
		if field, ok := rec.Get(name); ok {
			switch field.(type) {
			case *Function, *Builtin:
				return e.applyFunction(node, field, args)
			}
		}
	}
	if method, ok := lookupMethod(recv, name); ok {
		return e.callBuiltin(node, TypeName(recv)+"."+name, func() (Object, error) {
			return method(e, recv, args)
		})
	}
	return nil, e.errorf(node, NoSuchField, "no method '%s' on %s", name, TypeName(recv))
}

func (e *Evaluator) implMethod(recv Object, name string) *Function {
	switch r := recv.(type) {
	case *Record:
		if r.Name == "" {
			return nil
		}
		if st, ok := e.Types[r.Name].(*StructType); ok {
			return st.Methods[name]
		}
	case *EnumValue:
		if et, ok := e.Types[r.Enum].(*EnumType); ok {
			return et.Methods[name]
		}
	}
	return nil
}
