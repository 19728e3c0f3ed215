package evaluator

import (
	"strconv"
)

// methodFunc implements a built-in method; recv is the receiver value.
type methodFunc func(e *Evaluator, recv Object, args []Object) (Object, error)

// Populated in init: the tables reach Eval through callbacks.
var (
	arrayMethods  map[string]methodFunc
	stringMethods map[string]methodFunc
	numberMethods map[string]methodFunc
	recordMethods map[string]methodFunc
	optionMethods map[string]methodFunc
	resultMethods map[string]methodFunc
	rangeMethods  map[string]methodFunc
	tupleMethods  map[string]methodFunc
)

func lookupMethod(recv Object, name string) (methodFunc, bool) {
	var table map[string]methodFunc
	switch recv.(type) {
	case *Array:
		table = arrayMethods
	case *String:
		table = stringMethods
	case *Integer, *Float:
		table = numberMethods
	case *Record:
		table = recordMethods
	case *Option:
		table = optionMethods
	case *Result:
		table = resultMethods
	case *Range:
		table = rangeMethods
	case *Tuple:
		table = tupleMethods
	}
	m, ok := table[name]
	return m, ok
}

func methodArgs(name string, args []Object, n int) *Error {
	if len(args) != n {
		return arityError(name, strconv.Itoa(n), len(args))
	}
	return nil
}

func intArg(name string, obj Object) (int64, *Error) {
	i, ok := obj.(*Integer)
	if !ok {
		return 0, newError(TypeError, "%s expects an i64 argument, got %s", name, TypeName(obj))
	}
	return i.Value, nil
}

// predicate calls fn and requires a bool result.
func (e *Evaluator) predicate(name string, fn Object, args ...Object) (bool, error) {
	val, err := e.Apply(fn, args...)
	if err != nil {
		return false, err
	}
	b, ok := val.(*Boolean)
	if !ok {
		return false, newError(TypeError, "%s callback must return bool, got %s", name, TypeName(val))
	}
	return b.Value, nil
}

func optionOf(obj Object, ok bool) Object {
	if !ok {
		return NONE
	}
	return makeSome(obj)
}
