package evaluator

import (
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) (Object, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	if rng, ok := node.Index.(*ast.RangeExpression); ok {
		return e.evalSlice(node, left, rng, env)
	}
	index, err := e.Eval(node.Index, env)
	if err != nil {
		return nil, err
	}
	val, rerr := IndexValue(left, index)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return val, nil
}

// IndexValue implements container[index] for a non-range index.
func IndexValue(container, index Object) (Object, *Error) {
	switch c := container.(type) {
	case *Array:
		i, err := intIndex(index, len(c.Elements))
		if err != nil {
			return nil, err
		}
		return c.Elements[i], nil
	case *Tuple:
		i, err := intIndex(index, len(c.Elements))
		if err != nil {
			return nil, err
		}
		return c.Elements[i], nil
	case *String:
		runes := []rune(c.Value)
		i, err := intIndex(index, len(runes))
		if err != nil {
			return nil, err
		}
		return &String{Value: string(runes[i])}, nil
	case *Record:
		key, ok := index.(*String)
		if !ok {
			return nil, newError(TypeError, "record key must be String, got %s", TypeName(index))
		}
		if v, ok := c.Get(key.Value); ok {
			return v, nil
		}
		return nil, newError(NoSuchField, "no field '%s' in %s", key.Value, TypeName(c))
	case *Range:
		i, err := intIndex(index, int(c.Len()))
		if err != nil {
			return nil, err
		}
		return &Integer{Value: c.Start + int64(i)}, nil
	}
	return nil, newError(TypeError, "cannot index into %s", TypeName(container))
}

func intIndex(index Object, length int) (int, *Error) {
	i, ok := index.(*Integer)
	if !ok {
		return 0, newError(TypeError, "index must be i64, got %s", TypeName(index))
	}
	if i.Value < 0 || i.Value >= int64(length) {
		return 0, newError(IndexOutOfBounds, "index %d out of bounds for length %d", i.Value, length)
	}
	return int(i.Value), nil
}

// evalSlice handles xs[a..b], xs[a..], xs[..b] and the inclusive forms.
func (e *Evaluator) evalSlice(node *ast.IndexExpression, left Object, rng *ast.RangeExpression, env *Environment) (Object, error) {
	var length int64
	switch l := left.(type) {
	case *Array:
		length = int64(len(l.Elements))
	case *String:
		length = int64(len([]rune(l.Value)))
	default:
		return nil, e.errorf(node, TypeError, "cannot slice %s", TypeName(left))
	}

	start, end := int64(0), length
	if rng.Start != nil {
		s, err := e.evalRangeBound(rng.Start, env)
		if err != nil {
			return nil, err
		}
		start = s
	}
	if rng.End != nil {
		s, err := e.evalRangeBound(rng.End, env)
		if err != nil {
			return nil, err
		}
		end = s
		if rng.Inclusive {
			end++
		}
	}
	val, rerr := sliceValue(left, start, end)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return val, nil
}

func sliceValue(val Object, start, end int64) (Object, *Error) {
	switch v := val.(type) {
	case *Array:
		if start < 0 || end > int64(len(v.Elements)) || start > end {
			return nil, newError(IndexOutOfBounds, "slice %d..%d out of bounds for length %d", start, end, len(v.Elements))
		}
		elems := make([]Object, end-start)
		copy(elems, v.Elements[start:end])
		return &Array{Elements: elems}, nil
	case *String:
		runes := []rune(v.Value)
		if start < 0 || end > int64(len(runes)) || start > end {
			return nil, newError(IndexOutOfBounds, "slice %d..%d out of bounds for length %d", start, end, len(runes))
		}
		return &String{Value: string(runes[start:end])}, nil
	}
	return nil, newError(TypeError, "cannot slice %s", TypeName(val))
}

func (e *Evaluator) evalFieldExpression(node *ast.FieldExpression, env *Environment) (Object, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	val, rerr := FieldValue(left, node.Field)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return val, nil
}

// FieldValue implements value.name and tuple.N.
func FieldValue(obj Object, name string) (Object, *Error) {
	switch o := obj.(type) {
	case *Record:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
	case *Tuple:
		if i, err := strconv.Atoi(name); err == nil {
			if i < 0 || i >= len(o.Elements) {
				return nil, newError(IndexOutOfBounds, "tuple index %d out of bounds for length %d", i, len(o.Elements))
			}
			return o.Elements[i], nil
		}
	case *Error:
		if v, ok := o.Field(name); ok {
			return v, nil
		}
	case *Range:
		switch name {
		case "start":
			return &Integer{Value: o.Start}, nil
		case "end":
			return &Integer{Value: o.End}, nil
		}
	}
	return nil, newError(NoSuchField, "no field '%s' on %s", name, TypeName(obj))
}

// Assignment evaluates to unit. Containers are mutated in place so every
// alias observes the change.
func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) (Object, error) {
	switch target := node.Target.(type) {
	case *ast.Identifier:
		var current Object
		if node.Operator != "=" {
			cur, lerr := env.Lookup(target.Value)
			if lerr != nil {
				return nil, e.raiseAt(target, lerr)
			}
			current = cur
		}
		val, err := e.assignedValue(node, current, env)
		if err != nil {
			return nil, err
		}
		if !env.Assign(target.Value, val) {
			return nil, e.errorf(target, NameError, "cannot assign to undefined variable '%s'", target.Value)
		}
		return UNIT, nil

	case *ast.IndexExpression:
		container, err := e.Eval(target.Left, env)
		if err != nil {
			return nil, err
		}
		index, err := e.Eval(target.Index, env)
		if err != nil {
			return nil, err
		}
		var current Object
		if node.Operator != "=" {
			cur, rerr := IndexValue(container, index)
			if rerr != nil {
				return nil, e.raiseAt(target, rerr)
			}
			current = cur
		}
		val, err := e.assignedValue(node, current, env)
		if err != nil {
			return nil, err
		}
		if rerr := setIndex(container, index, val); rerr != nil {
			return nil, e.raiseAt(target, rerr)
		}
		return UNIT, nil

	case *ast.FieldExpression:
		container, err := e.Eval(target.Left, env)
		if err != nil {
			return nil, err
		}
		rec, ok := container.(*Record)
		if !ok {
			return nil, e.errorf(target, TypeError, "cannot assign field '%s' on %s", target.Field, TypeName(container))
		}
		current, exists := rec.Get(target.Field)
		if rec.Name != "" && !exists {
			return nil, e.errorf(target, NoSuchField, "struct %s has no field '%s'", rec.Name, target.Field)
		}
		if node.Operator != "=" && !exists {
			return nil, e.errorf(target, NoSuchField, "no field '%s' on %s", target.Field, TypeName(rec))
		}
		val, err := e.assignedValue(node, current, env)
		if err != nil {
			return nil, err
		}
		rec.Set(target.Field, val)
		return UNIT, nil
	}
	return nil, e.errorf(node, TypeError, "invalid assignment target %s", node.Target.String())
}

// assignedValue evaluates the right-hand side and, for compound operators,
// combines it with the current value.
func (e *Evaluator) assignedValue(node *ast.AssignExpression, current Object, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	if node.Operator == "=" {
		return val, nil
	}
	op := strings.TrimSuffix(node.Operator, "=")
	out, rerr := e.binaryOp(op, current, val)
	if rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	return out, nil
}

func setIndex(container, index, val Object) *Error {
	switch c := container.(type) {
	case *Array:
		i, err := intIndex(index, len(c.Elements))
		if err != nil {
			return err
		}
		c.Elements[i] = val
		return nil
	case *Record:
		key, ok := index.(*String)
		if !ok {
			return newError(TypeError, "record key must be String, got %s", TypeName(index))
		}
		if c.Name != "" {
			if _, exists := c.Get(key.Value); !exists {
				return newError(NoSuchField, "struct %s has no field '%s'", c.Name, key.Value)
			}
		}
		c.Set(key.Value, val)
		return nil
	}
	return newError(TypeError, "cannot assign by index into %s", TypeName(container))
}
