package evaluator

import (
	"strings"
)

func init() {
	stringMethods = map[string]methodFunc{
		"len":         stringLen,
		"is_empty":    stringIsEmpty,
		"to_upper":    stringMap(strings.ToUpper),
		"to_lower":    stringMap(strings.ToLower),
		"trim":        stringMap(strings.TrimSpace),
		"to_string":   stringMap(func(s string) string { return s }),
		"split":       stringSplit,
		"contains":    stringPredicate(strings.Contains),
		"starts_with": stringPredicate(strings.HasPrefix),
		"ends_with":   stringPredicate(strings.HasSuffix),
		"replace":     stringReplace,
		"chars":       stringChars,
		"parse_int":   stringParseInt,
		"parse_float": stringParseFloat,
	}
}

func stringLen(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("len", args, 0); err != nil {
		return nil, err
	}
	return &Integer{Value: int64(len([]rune(recv.(*String).Value)))}, nil
}

func stringIsEmpty(e *Evaluator, recv Object, args []Object) (Object, error) {
	return nativeBool(recv.(*String).Value == ""), nil
}

func stringMap(f func(string) string) methodFunc {
	return func(e *Evaluator, recv Object, args []Object) (Object, error) {
		if len(args) != 0 {
			return nil, arityError("string method", "0", len(args))
		}
		return &String{Value: f(recv.(*String).Value)}, nil
	}
}

func stringPredicate(f func(s, sub string) bool) methodFunc {
	return func(e *Evaluator, recv Object, args []Object) (Object, error) {
		if err := methodArgs("string method", args, 1); err != nil {
			return nil, err
		}
		sub, ok := args[0].(*String)
		if !ok {
			return nil, newError(TypeError, "expected String argument, got %s", TypeName(args[0]))
		}
		return nativeBool(f(recv.(*String).Value, sub.Value)), nil
	}
}

func stringSplit(e *Evaluator, recv Object, args []Object) (Object, error) {
	s := recv.(*String).Value
	var parts []string
	switch len(args) {
	case 0:
		parts = strings.Fields(s)
	case 1:
		sep, ok := args[0].(*String)
		if !ok {
			return nil, newError(TypeError, "split separator must be String, got %s", TypeName(args[0]))
		}
		parts = strings.Split(s, sep.Value)
	default:
		return nil, arityError("split", "0 or 1", len(args))
	}
	out := make([]Object, len(parts))
	for i, p := range parts {
		out[i] = &String{Value: p}
	}
	return &Array{Elements: out}, nil
}

func stringReplace(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("replace", args, 2); err != nil {
		return nil, err
	}
	from, ok1 := args[0].(*String)
	to, ok2 := args[1].(*String)
	if !ok1 || !ok2 {
		return nil, newError(TypeError, "replace expects String arguments")
	}
	return &String{Value: strings.ReplaceAll(recv.(*String).Value, from.Value, to.Value)}, nil
}

func stringChars(e *Evaluator, recv Object, args []Object) (Object, error) {
	runes := []rune(recv.(*String).Value)
	out := make([]Object, len(runes))
	for i, r := range runes {
		out[i] = &String{Value: string(r)}
	}
	return &Array{Elements: out}, nil
}

func stringParseInt(e *Evaluator, recv Object, args []Object) (Object, error) {
	return parseIntResult(recv.(*String).Value), nil
}

func stringParseFloat(e *Evaluator, recv Object, args []Object) (Object, error) {
	return parseFloatResult(recv.(*String).Value), nil
}
