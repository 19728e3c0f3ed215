package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/config"
)

// Builtins is the prelude: every native function visible to programs.
var Builtins = map[string]*Builtin{
	config.SomeCtorName:      {Name: config.SomeCtorName, Fn: builtinSome},
	config.OkCtorName:        {Name: config.OkCtorName, Fn: builtinOk},
	config.ErrCtorName:       {Name: config.ErrCtorName, Fn: builtinErr},
	config.PrintFuncName:     {Name: config.PrintFuncName, Fn: builtinPrint},
	config.PrintlnFuncName:   {Name: config.PrintlnFuncName, Fn: builtinPrintln},
	config.EprintFuncName:    {Name: config.EprintFuncName, Fn: builtinEprint},
	config.EprintlnFuncName:  {Name: config.EprintlnFuncName, Fn: builtinEprintln},
	config.DbgFuncName:       {Name: config.DbgFuncName, Fn: builtinDbg},
	config.LenFuncName:       {Name: config.LenFuncName, Fn: builtinLen},
	config.TypeOfFuncName:    {Name: config.TypeOfFuncName, Fn: builtinTypeOf},
	config.ToStringFuncName:  {Name: config.ToStringFuncName, Fn: builtinToString},
	config.RangeFuncName:     {Name: config.RangeFuncName, Fn: builtinRange},
	"min":                    {Name: "min", Fn: builtinMin},
	"max":                    {Name: "max", Fn: builtinMax},
	"abs":                    {Name: "abs", Fn: builtinAbs},
	"sqrt":                   {Name: "sqrt", Fn: builtinSqrt},
	"pow":                    {Name: "pow", Fn: builtinPow},
	"floor":                  {Name: "floor", Fn: builtinFloor},
	"ceil":                   {Name: "ceil", Fn: builtinCeil},
	"round":                  {Name: "round", Fn: builtinRound},
	config.AssertFuncName:    {Name: config.AssertFuncName, Fn: builtinAssert},
	config.AssertEqFuncName:  {Name: config.AssertEqFuncName, Fn: builtinAssertEq},
	"parse_int":              {Name: "parse_int", Fn: builtinParseInt},
	"parse_float":            {Name: "parse_float", Fn: builtinParseFloat},
	"keys":                   {Name: "keys", Fn: builtinKeys},
	"values":                 {Name: "values", Fn: builtinValues},
	"push":                   {Name: "push", Fn: builtinPush},
	config.IsTTYFuncName:     {Name: config.IsTTYFuncName, Fn: builtinIsTTY},
	config.YamlParseFuncName: {Name: config.YamlParseFuncName, Fn: builtinYamlParse},
	config.YamlStringifyName: {Name: config.YamlStringifyName, Fn: builtinYamlStringify},
	config.JsonParseFuncName: {Name: config.JsonParseFuncName, Fn: builtinJsonParse},
	config.JsonStringifyName: {Name: config.JsonStringifyName, Fn: builtinJsonStringify},
}

// RegisterBuiltins defines the prelude in env.
func RegisterBuiltins(env *Environment) {
	for name, b := range Builtins {
		env.Define(name, b)
	}
	env.Define(config.NoneCtorName, NONE)
}

func arityError(name string, want string, got int) *Error {
	return newError(ArityMismatch, "%s expects %s argument(s), got %d", name, want, got)
}

func checkArgs(name string, args []Object, n int) *Error {
	if len(args) != n {
		return arityError(name, strconv.Itoa(n), len(args))
	}
	return nil
}

func builtinSome(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("Some", args, 1); err != nil {
		return nil, err
	}
	return makeSome(args[0]), nil
}

func builtinOk(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("Ok", args, 1); err != nil {
		return nil, err
	}
	return makeOk(args[0]), nil
}

func builtinErr(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("Err", args, 1); err != nil {
		return nil, err
	}
	return makeErr(args[0]), nil
}

func joinText(args []Object) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = ToText(a)
	}
	return strings.Join(parts, " ")
}

func builtinPrint(e *Evaluator, args ...Object) (Object, error) {
	fmt.Fprint(e.Out, joinText(args))
	return UNIT, nil
}

func builtinPrintln(e *Evaluator, args ...Object) (Object, error) {
	fmt.Fprintln(e.Out, joinText(args))
	return UNIT, nil
}

func builtinEprint(e *Evaluator, args ...Object) (Object, error) {
	fmt.Fprint(e.Err, joinText(args))
	return UNIT, nil
}

func builtinEprintln(e *Evaluator, args ...Object) (Object, error) {
	fmt.Fprintln(e.Err, joinText(args))
	return UNIT, nil
}

// dbg prints its argument's display form to stderr and returns it.
func builtinDbg(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("dbg", args, 1); err != nil {
		return nil, err
	}
	fmt.Fprintf(e.Err, "[dbg] %s\n", Display(args[0]))
	return args[0], nil
}

func builtinLen(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("len", args, 1); err != nil {
		return nil, err
	}
	n, ok := lengthOf(args[0])
	if !ok {
		return nil, newError(TypeError, "len() not supported for %s", TypeName(args[0]))
	}
	return &Integer{Value: n}, nil
}

func lengthOf(obj Object) (int64, bool) {
	switch o := obj.(type) {
	case *Array:
		return int64(len(o.Elements)), true
	case *String:
		return int64(len([]rune(o.Value))), true
	case *Tuple:
		return int64(len(o.Elements)), true
	case *Record:
		return int64(len(o.Fields)), true
	case *Range:
		return o.Len(), true
	}
	return 0, false
}

func builtinTypeOf(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("type_of", args, 1); err != nil {
		return nil, err
	}
	return &String{Value: TypeName(args[0])}, nil
}

func builtinToString(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("to_string", args, 1); err != nil {
		return nil, err
	}
	return &String{Value: ToText(args[0])}, nil
}

// range(a, b) is the lazy range a..b; range(a, b, step) materialises an
// array.
func builtinRange(e *Evaluator, args ...Object) (Object, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, arityError("range", "2 or 3", len(args))
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		n, ok := a.(*Integer)
		if !ok {
			return nil, newError(TypeError, "range() arguments must be i64, got %s", TypeName(a))
		}
		bounds[i] = n.Value
	}
	if len(bounds) == 2 {
		return &Range{Start: bounds[0], End: bounds[1]}, nil
	}
	step := bounds[2]
	if step == 0 {
		return nil, newError(TypeError, "range() step must not be zero")
	}
	n := stepCount(bounds[0], bounds[1], step)
	if err := e.checkSize(n, "range()"); err != nil {
		return nil, err
	}
	out := &Array{Elements: make([]Object, 0, n)}
	for i, v := int64(0), bounds[0]; i < n; i, v = i+1, v+step {
		if err := e.tick(e.site); err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, &Integer{Value: v})
	}
	return out, nil
}

// stepCount is the number of values start, start+step, ... strictly before
// end, computed without overflowing int64. It saturates at math.MaxInt64.
func stepCount(start, end, step int64) int64 {
	var span, stride uint64
	switch {
	case step > 0 && end > start:
		span, stride = uint64(end)-uint64(start), uint64(step)
	case step < 0 && end < start:
		span, stride = uint64(start)-uint64(end), uint64(-step)
	default:
		return 0
	}
	n := (span-1)/stride + 1
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// extremum backs min and max: either several arguments or one array.
func extremum(name string, args []Object, want int) (Object, error) {
	items := args
	if len(args) == 1 {
		arr, ok := args[0].(*Array)
		if !ok {
			return nil, newError(TypeError, "%s() of a single argument needs an Array, got %s", name, TypeName(args[0]))
		}
		items = arr.Elements
	}
	if len(items) == 0 {
		return nil, newError(TypeError, "%s() of an empty sequence", name)
	}
	best := items[0]
	for _, it := range items[1:] {
		c, ok := Compare(it, best)
		if !ok {
			return nil, newError(TypeError, "%s() cannot compare %s and %s", name, TypeName(it), TypeName(best))
		}
		if c == want {
			best = it
		}
	}
	return best, nil
}

func builtinMin(e *Evaluator, args ...Object) (Object, error) {
	return extremum("min", args, -1)
}

func builtinMax(e *Evaluator, args ...Object) (Object, error) {
	return extremum("max", args, 1)
}

func toFloat(obj Object) (float64, bool) {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value), true
	case *Float:
		return o.Value, true
	}
	return 0, false
}

func builtinAbs(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("abs", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *Integer:
		if v.Value < 0 {
			return &Integer{Value: -v.Value}, nil
		}
		return v, nil
	case *Float:
		return &Float{Value: math.Abs(v.Value)}, nil
	}
	return nil, newError(TypeError, "abs() needs a number, got %s", TypeName(args[0]))
}

func floatFunc(name string, f func(float64) float64) BuiltinFunction {
	return func(e *Evaluator, args ...Object) (Object, error) {
		if err := checkArgs(name, args, 1); err != nil {
			return nil, err
		}
		x, ok := toFloat(args[0])
		if !ok {
			return nil, newError(TypeError, "%s() needs a number, got %s", name, TypeName(args[0]))
		}
		return &Float{Value: f(x)}, nil
	}
}

func builtinSqrt(e *Evaluator, args ...Object) (Object, error) {
	return floatFunc("sqrt", math.Sqrt)(e, args...)
}

// floor, ceil and round leave integers unchanged.
func roundingFunc(name string, f func(float64) float64) BuiltinFunction {
	return func(e *Evaluator, args ...Object) (Object, error) {
		if err := checkArgs(name, args, 1); err != nil {
			return nil, err
		}
		if i, ok := args[0].(*Integer); ok {
			return i, nil
		}
		return floatFunc(name, f)(e, args...)
	}
}

func builtinFloor(e *Evaluator, args ...Object) (Object, error) {
	return roundingFunc("floor", math.Floor)(e, args...)
}

func builtinCeil(e *Evaluator, args ...Object) (Object, error) {
	return roundingFunc("ceil", math.Ceil)(e, args...)
}

func builtinRound(e *Evaluator, args ...Object) (Object, error) {
	return roundingFunc("round", math.Round)(e, args...)
}

func builtinPow(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("pow", args, 2); err != nil {
		return nil, err
	}
	val, rerr := BinaryOp("**", args[0], args[1])
	if rerr != nil {
		return nil, rerr
	}
	return val, nil
}

func builtinAssert(e *Evaluator, args ...Object) (Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, arityError("assert", "1 or 2", len(args))
	}
	b, ok := args[0].(*Boolean)
	if !ok {
		return nil, newError(TypeError, "assert() condition must be bool, got %s", TypeName(args[0]))
	}
	if !b.Value {
		msg := "assertion failed"
		if len(args) == 2 {
			msg += ": " + ToText(args[1])
		}
		return nil, newError(RuntimeError, "%s", msg)
	}
	return UNIT, nil
}

func builtinAssertEq(e *Evaluator, args ...Object) (Object, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, arityError("assert_eq", "2 or 3", len(args))
	}
	if !Equal(args[0], args[1]) {
		msg := fmt.Sprintf("assertion failed: %s != %s", Display(args[0]), Display(args[1]))
		if len(args) == 3 {
			msg += ": " + ToText(args[2])
		}
		return nil, newError(RuntimeError, "%s", msg)
	}
	return UNIT, nil
}

func stringArg(name string, args []Object) (string, *Error) {
	if err := checkArgs(name, args, 1); err != nil {
		return "", err
	}
	s, ok := args[0].(*String)
	if !ok {
		return "", newError(TypeError, "%s() needs a String, got %s", name, TypeName(args[0]))
	}
	return s.Value, nil
}

func parseIntResult(s string) Object {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return makeErr(&String{Value: fmt.Sprintf("invalid integer %q", s)})
	}
	return makeOk(&Integer{Value: n})
}

func parseFloatResult(s string) Object {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return makeErr(&String{Value: fmt.Sprintf("invalid float %q", s)})
	}
	return makeOk(&Float{Value: f})
}

func builtinParseInt(e *Evaluator, args ...Object) (Object, error) {
	s, err := stringArg("parse_int", args)
	if err != nil {
		return nil, err
	}
	return parseIntResult(s), nil
}

func builtinParseFloat(e *Evaluator, args ...Object) (Object, error) {
	s, err := stringArg("parse_float", args)
	if err != nil {
		return nil, err
	}
	return parseFloatResult(s), nil
}

func recordArg(name string, args []Object) (*Record, *Error) {
	if err := checkArgs(name, args, 1); err != nil {
		return nil, err
	}
	r, ok := args[0].(*Record)
	if !ok {
		return nil, newError(TypeError, "%s() needs an object, got %s", name, TypeName(args[0]))
	}
	return r, nil
}

func recordKeys(r *Record) *Array {
	out := &Array{Elements: make([]Object, 0, len(r.Keys))}
	for _, k := range r.SortedKeys() {
		out.Elements = append(out.Elements, &String{Value: k})
	}
	return out
}

func recordValues(r *Record) *Array {
	out := &Array{Elements: make([]Object, 0, len(r.Keys))}
	for _, k := range r.SortedKeys() {
		out.Elements = append(out.Elements, r.Fields[k])
	}
	return out
}

func builtinKeys(e *Evaluator, args ...Object) (Object, error) {
	r, err := recordArg("keys", args)
	if err != nil {
		return nil, err
	}
	return recordKeys(r), nil
}

func builtinValues(e *Evaluator, args ...Object) (Object, error) {
	r, err := recordArg("values", args)
	if err != nil {
		return nil, err
	}
	return recordValues(r), nil
}

func builtinPush(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("push", args, 2); err != nil {
		return nil, err
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, newError(TypeError, "push() needs an Array, got %s", TypeName(args[0]))
	}
	arr.Elements = append(arr.Elements, args[1])
	return UNIT, nil
}
