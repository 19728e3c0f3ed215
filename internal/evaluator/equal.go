package evaluator

import (
	"math"
)

type objectPair struct{ a, b Object }

// Equal is structural equality. Integers and floats compare numerically,
// functions by identity. Cyclic arrays and records are handled by treating
// a pair already under comparison as equal.
func Equal(a, b Object) bool {
	return equal(a, b, map[objectPair]bool{})
}

func equal(a, b Object, seen map[objectPair]bool) bool {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.Value == y.Value
		case *Float:
			return float64(x.Value) == y.Value
		}
		return false
	case *Float:
		switch y := b.(type) {
		case *Integer:
			return x.Value == float64(y.Value)
		case *Float:
			return x.Value == y.Value
		}
		return false
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Unit:
		_, ok := b.(*Unit)
		return ok
	case *Array:
		y, ok := b.(*Array)
		if !ok {
			return false
		}
		if x == y || seen[objectPair{x, y}] {
			return true
		}
		seen[objectPair{x, y}] = true
		return equalSlices(x.Elements, y.Elements, seen)
	case *Tuple:
		y, ok := b.(*Tuple)
		return ok && equalSlices(x.Elements, y.Elements, seen)
	case *Record:
		y, ok := b.(*Record)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}
		if x == y || seen[objectPair{x, y}] {
			return true
		}
		seen[objectPair{x, y}] = true
		for k, xv := range x.Fields {
			yv, ok := y.Fields[k]
			if !ok || !equal(xv, yv, seen) {
				return false
			}
		}
		return true
	case *Range:
		y, ok := b.(*Range)
		return ok && *x == *y
	case *Option:
		y, ok := b.(*Option)
		if !ok || x.IsSome() != y.IsSome() {
			return false
		}
		return !x.IsSome() || equal(x.Value, y.Value, seen)
	case *Result:
		y, ok := b.(*Result)
		return ok && x.IsOk == y.IsOk && equal(x.Value, y.Value, seen)
	case *EnumValue:
		y, ok := b.(*EnumValue)
		return ok && x.Enum == y.Enum && x.Variant == y.Variant && equalSlices(x.Values, y.Values, seen)
	case *Error:
		y, ok := b.(*Error)
		return ok && (x == y || (x.Kind == y.Kind && x.Message == y.Message))
	}
	return a == b
}

func equalSlices(xs, ys []Object, seen map[objectPair]bool) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !equal(xs[i], ys[i], seen) {
			return false
		}
	}
	return true
}

// Compare orders numbers, strings, booleans and, element by element,
// arrays and tuples. ok is false when the values are not comparable.
func Compare(a, b Object) (int, bool) {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return cmpOrdered(x.Value, y.Value), true
		case *Float:
			return cmpFloat(float64(x.Value), y.Value)
		}
	case *Float:
		switch y := b.(type) {
		case *Integer:
			return cmpFloat(x.Value, float64(y.Value))
		case *Float:
			return cmpFloat(x.Value, y.Value)
		}
	case *String:
		if y, ok := b.(*String); ok {
			return cmpOrdered(x.Value, y.Value), true
		}
	case *Boolean:
		if y, ok := b.(*Boolean); ok {
			if x.Value == y.Value {
				return 0, true
			}
			if !x.Value {
				return -1, true
			}
			return 1, true
		}
	case *Array:
		if y, ok := b.(*Array); ok {
			return compareSlices(x.Elements, y.Elements)
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			return compareSlices(x.Elements, y.Elements)
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) (int, bool) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

func compareSlices(xs, ys []Object) (int, bool) {
	for i := 0; i < len(xs) && i < len(ys); i++ {
		c, ok := Compare(xs[i], ys[i])
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmpOrdered(int64(len(xs)), int64(len(ys))), true
}

// DeepCopy clones the mutable containers reachable from obj, preserving
// sharing and cycles. Immutable values and closures are shared.
func DeepCopy(obj Object) Object {
	return deepCopy(obj, map[Object]Object{})
}

// DeepCopyBindings clones every value in bindings with one shared copy
// table, so two names aliasing the same array still alias afterwards.
func DeepCopyBindings(bindings map[string]Binding) map[string]Binding {
	copies := map[Object]Object{}
	out := make(map[string]Binding, len(bindings))
	for name, b := range bindings {
		out[name] = Binding{Value: deepCopy(b.Value, copies), Mutable: b.Mutable}
	}
	return out
}

func deepCopy(obj Object, copies map[Object]Object) Object {
	switch o := obj.(type) {
	case *Array:
		if c, ok := copies[o]; ok {
			return c
		}
		out := &Array{Elements: make([]Object, len(o.Elements))}
		copies[o] = out
		for i, el := range o.Elements {
			out.Elements[i] = deepCopy(el, copies)
		}
		return out
	case *Record:
		if c, ok := copies[o]; ok {
			return c
		}
		out := NewRecord(o.Name)
		copies[o] = out
		for _, k := range o.Keys {
			out.Set(k, deepCopy(o.Fields[k], copies))
		}
		return out
	case *Tuple:
		out := &Tuple{Elements: make([]Object, len(o.Elements))}
		for i, el := range o.Elements {
			out.Elements[i] = deepCopy(el, copies)
		}
		return out
	case *Option:
		if !o.IsSome() {
			return o
		}
		return makeSome(deepCopy(o.Value, copies))
	case *Result:
		return &Result{Value: deepCopy(o.Value, copies), IsOk: o.IsOk}
	case *EnumValue:
		out := &EnumValue{Enum: o.Enum, Variant: o.Variant, Values: make([]Object, len(o.Values))}
		for i, v := range o.Values {
			out.Values[i] = deepCopy(v, copies)
		}
		return out
	}
	return obj
}
