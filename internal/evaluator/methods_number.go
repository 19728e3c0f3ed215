package evaluator

import (
	"math"
)

func init() {
	numberMethods = map[string]methodFunc{
		"abs":       numberUnary(builtinAbs),
		"sqrt":      numberUnary(builtinSqrt),
		"floor":     numberUnary(builtinFloor),
		"ceil":      numberUnary(builtinCeil),
		"round":     numberUnary(builtinRound),
		"to_string": numberUnary(builtinToString),
		"pow":       numberBinary(builtinPow),
		"min":       numberBinary(builtinMin),
		"max":       numberBinary(builtinMax),
		"to_float":  numberToFloat,
		"to_int":    numberToInt,
	}
}

// numberUnary and numberBinary reuse a prelude function with the receiver
// as its first argument.
func numberUnary(fn BuiltinFunction) methodFunc {
	return func(e *Evaluator, recv Object, args []Object) (Object, error) {
		if err := methodArgs("number method", args, 0); err != nil {
			return nil, err
		}
		return fn(e, recv)
	}
}

func numberBinary(fn BuiltinFunction) methodFunc {
	return func(e *Evaluator, recv Object, args []Object) (Object, error) {
		if err := methodArgs("number method", args, 1); err != nil {
			return nil, err
		}
		return fn(e, recv, args[0])
	}
}

func numberToFloat(e *Evaluator, recv Object, args []Object) (Object, error) {
	f, _ := toFloat(recv)
	return &Float{Value: f}, nil
}

func numberToInt(e *Evaluator, recv Object, args []Object) (Object, error) {
	switch v := recv.(type) {
	case *Integer:
		return v, nil
	case *Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return nil, newError(TypeError, "cannot convert %s to i64", v.Inspect())
		}
		return &Integer{Value: int64(v.Value)}, nil
	}
	return nil, newError(TypeError, "to_int on %s", TypeName(recv))
}
