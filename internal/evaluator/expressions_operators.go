package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

// truthy accepts only booleans; what names the construct for the error.
func (e *Evaluator) truthy(node ast.Node, val Object, what string) (bool, error) {
	b, ok := val.(*Boolean)
	if !ok {
		return false, e.errorf(node, TypeError, "%s must be bool, got %s", what, TypeName(val))
	}
	return b.Value, nil
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) (Object, error) {
	right, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "!":
		b, err := e.truthy(node, right, "operand of '!'")
		if err != nil {
			return nil, err
		}
		return nativeBool(!b), nil
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}, nil
		case *Float:
			return &Float{Value: -r.Value}, nil
		}
	case "~":
		if r, ok := right.(*Integer); ok {
			return &Integer{Value: ^r.Value}, nil
		}
	}
	return nil, e.errorf(node, TypeError, "unsupported operand type for unary %s: %s", node.Operator, TypeName(right))
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) (Object, error) {
	switch node.Operator {
	case "&&", "||":
		return e.evalLogical(node, env)
	case "|>":
		return e.evalPipeline(node, env)
	case "??":
		return e.evalCoalesce(node, env)
	}

	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	val, rerr := e.binaryOp(node.Operator, left, right)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return val, nil
}

// binaryOp is BinaryOp with the evaluator's size limit applied to string
// repetition.
func (e *Evaluator) binaryOp(op string, left, right Object) (Object, *Error) {
	if s, ok := left.(*String); ok && op == "*" {
		if n, ok := right.(*Integer); ok && n.Value > 0 && len(s.Value) > 0 {
			size := int64(math.MaxInt64)
			if n.Value <= math.MaxInt64/int64(len(s.Value)) {
				size = n.Value * int64(len(s.Value))
			}
			if err := e.checkSize(size, "string repetition"); err != nil {
				return nil, err
			}
		}
	}
	return BinaryOp(op, left, right)
}

func (e *Evaluator) evalLogical(node *ast.InfixExpression, env *Environment) (Object, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	lb, err := e.truthy(node.Left, left, "left operand of '"+node.Operator+"'")
	if err != nil {
		return nil, err
	}
	if node.Operator == "&&" && !lb {
		return FALSE, nil
	}
	if node.Operator == "||" && lb {
		return TRUE, nil
	}
	right, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	rb, err := e.truthy(node.Right, right, "right operand of '"+node.Operator+"'")
	if err != nil {
		return nil, err
	}
	return nativeBool(rb), nil
}

// x |> f is f(x); x |> f(a) is f(x, a).
func (e *Evaluator) evalPipeline(node *ast.InfixExpression, env *Environment) (Object, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	if call, ok := node.Right.(*ast.CallExpression); ok {
		fn, err := e.Eval(call.Function, env)
		if err != nil {
			return nil, err
		}
		args, err := e.evalExpressions(call.Arguments, env)
		if err != nil {
			return nil, err
		}
		return e.applyFunction(call, fn, append([]Object{left}, args...))
	}
	fn, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	return e.applyFunction(node, fn, []Object{left})
}

// a ?? b: b when a is None or unit, the payload when a is Some, a otherwise.
func (e *Evaluator) evalCoalesce(node *ast.InfixExpression, env *Environment) (Object, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	switch l := left.(type) {
	case *Option:
		if l.IsSome() {
			return l.Value, nil
		}
	case *Unit:
	default:
		return left, nil
	}
	return e.Eval(node.Right, env)
}

// BinaryOp applies a non-short-circuit binary operator. Int op Int stays
// integral; any Float operand promotes to Float.
func BinaryOp(op string, left, right Object) (Object, *Error) {
	switch op {
	case "==":
		return nativeBool(Equal(left, right)), nil
	case "!=":
		return nativeBool(!Equal(left, right)), nil
	}

	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return intOp(op, l.Value, r.Value)
		case *Float:
			return floatOp(op, float64(l.Value), r.Value)
		}
	case *Float:
		switch r := right.(type) {
		case *Integer:
			return floatOp(op, l.Value, float64(r.Value))
		case *Float:
			return floatOp(op, l.Value, r.Value)
		}
	case *String:
		switch r := right.(type) {
		case *String:
			return stringOp(op, l.Value, r.Value)
		case *Integer:
			if op == "*" {
				if r.Value < 0 {
					return nil, newError(TypeError, "cannot repeat a string a negative number of times")
				}
				return &String{Value: strings.Repeat(l.Value, int(r.Value))}, nil
			}
		}
	case *Array:
		if r, ok := right.(*Array); ok && op == "+" {
			elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return &Array{Elements: elems}, nil
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			switch op {
			case "&":
				return nativeBool(l.Value && r.Value), nil
			case "|":
				return nativeBool(l.Value || r.Value), nil
			case "^":
				return nativeBool(l.Value != r.Value), nil
			}
		}
	}

	if isOrdering(op) {
		if c, ok := Compare(left, right); ok {
			return nativeBool(ordered(op, c)), nil
		}
	}
	return nil, newError(TypeError, "unsupported operand types for %s: %s and %s", op, TypeName(left), TypeName(right))
}

func isOrdering(op string) bool {
	return op == "<" || op == ">" || op == "<=" || op == ">="
}

func ordered(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	default:
		return c >= 0
	}
}

func intOp(op string, a, b int64) (Object, *Error) {
	switch op {
	case "+":
		return &Integer{Value: a + b}, nil
	case "-":
		return &Integer{Value: a - b}, nil
	case "*":
		return &Integer{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, newError(DivisionByZero, "division by zero")
		}
		return &Integer{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, newError(DivisionByZero, "modulo by zero")
		}
		return &Integer{Value: a % b}, nil
	case "**":
		if b < 0 {
			return &Float{Value: math.Pow(float64(a), float64(b))}, nil
		}
		return &Integer{Value: ipow(a, b)}, nil
	case "&":
		return &Integer{Value: a & b}, nil
	case "|":
		return &Integer{Value: a | b}, nil
	case "^":
		return &Integer{Value: a ^ b}, nil
	case "<<":
		if b < 0 {
			return nil, newError(TypeError, "negative shift count %d", b)
		}
		return &Integer{Value: a << uint64(b)}, nil
	case ">>":
		if b < 0 {
			return nil, newError(TypeError, "negative shift count %d", b)
		}
		return &Integer{Value: a >> uint64(b)}, nil
	case "<":
		return nativeBool(a < b), nil
	case ">":
		return nativeBool(a > b), nil
	case "<=":
		return nativeBool(a <= b), nil
	case ">=":
		return nativeBool(a >= b), nil
	}
	return nil, newError(TypeError, "unsupported operand types for %s: i64 and i64", op)
}

func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// Float division by zero follows IEEE 754 (inf or NaN).
func floatOp(op string, a, b float64) (Object, *Error) {
	switch op {
	case "+":
		return &Float{Value: a + b}, nil
	case "-":
		return &Float{Value: a - b}, nil
	case "*":
		return &Float{Value: a * b}, nil
	case "/":
		return &Float{Value: a / b}, nil
	case "%":
		return &Float{Value: math.Mod(a, b)}, nil
	case "**":
		return &Float{Value: math.Pow(a, b)}, nil
	case "<":
		return nativeBool(a < b), nil
	case ">":
		return nativeBool(a > b), nil
	case "<=":
		return nativeBool(a <= b), nil
	case ">=":
		return nativeBool(a >= b), nil
	}
	return nil, newError(TypeError, "unsupported operand types for %s: f64 and f64", op)
}

func stringOp(op string, a, b string) (Object, *Error) {
	switch op {
	case "+":
		return &String{Value: a + b}, nil
	case "<":
		return nativeBool(a < b), nil
	case ">":
		return nativeBool(a > b), nil
	case "<=":
		return nativeBool(a <= b), nil
	case ">=":
		return nativeBool(a >= b), nil
	}
	return nil, newError(TypeError, "unsupported operand types for %s: String and String", op)
}

func (e *Evaluator) evalRangeExpression(node *ast.RangeExpression, env *Environment) (Object, error) {
	if node.Start == nil || node.End == nil {
		return nil, e.errorf(node, TypeError, "open range %s is only allowed as a slice index", node.String())
	}
	start, err := e.evalRangeBound(node.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := e.evalRangeBound(node.End, env)
	if err != nil {
		return nil, err
	}
	return &Range{Start: start, End: end, Inclusive: node.Inclusive}, nil
}

func (e *Evaluator) evalRangeBound(exp ast.Expression, env *Environment) (int64, error) {
	val, err := e.Eval(exp, env)
	if err != nil {
		return 0, err
	}
	i, ok := val.(*Integer)
	if !ok {
		return 0, e.errorf(exp, TypeError, "range bound must be i64, got %s", TypeName(val))
	}
	return i.Value, nil
}

func (e *Evaluator) evalCastExpression(node *ast.CastExpression, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	out, rerr := Cast(val, node.Type)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return out, nil
}

// Cast implements `value as Type` for the numeric, bool and string types.
func Cast(val Object, typeName string) (Object, *Error) {
	switch typeName {
	case "i8", "i16", "i32", "i64", "isize", "u8", "u16", "u32", "u64", "usize", "int":
		switch v := val.(type) {
		case *Integer:
			return v, nil
		case *Float:
			return &Integer{Value: int64(v.Value)}, nil
		case *Boolean:
			if v.Value {
				return &Integer{Value: 1}, nil
			}
			return &Integer{Value: 0}, nil
		case *String:
			if n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64); err == nil {
				return &Integer{Value: n}, nil
			}
			return nil, newError(TypeError, "cannot cast %s to %s", v.Inspect(), typeName)
		}
	case "f32", "f64", "float":
		switch v := val.(type) {
		case *Integer:
			return &Float{Value: float64(v.Value)}, nil
		case *Float:
			return v, nil
		case *String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
				return &Float{Value: f}, nil
			}
			return nil, newError(TypeError, "cannot cast %s to %s", v.Inspect(), typeName)
		}
	case "bool":
		if b, ok := val.(*Boolean); ok {
			return b, nil
		}
	case "String", "str", "&str":
		return &String{Value: ToText(val)}, nil
	}
	return nil, newError(TypeError, "cannot cast %s to %s", TypeName(val), typeName)
}
