package evaluator

import (
	"sort"
	"strings"
)

func init() {
	arrayMethods = map[string]methodFunc{
		"len":       arrayLen,
		"is_empty":  arrayIsEmpty,
		"push":      arrayPush,
		"pop":       arrayPop,
		"get":       arrayGet,
		"first":     arrayFirst,
		"last":      arrayLast,
		"contains":  arrayContains,
		"map":       arrayMap,
		"filter":    arrayFilter,
		"reduce":    arrayReduce,
		"fold":      arrayFold,
		"each":      arrayEach,
		"join":      arrayJoin,
		"reverse":   arrayReverse,
		"sort":      arraySort,
		"sum":       arraySum,
		"slice":     arraySlice,
		"enumerate": arrayEnumerate,
		"zip":       arrayZip,
		"take":      arrayTake,
		"skip":      arraySkip,
		"find":      arrayFind,
		"any":       arrayAny,
		"all":       arrayAll,
	}
}

func arrayLen(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("len", args, 0); err != nil {
		return nil, err
	}
	return &Integer{Value: int64(len(recv.(*Array).Elements))}, nil
}

func arrayIsEmpty(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("is_empty", args, 0); err != nil {
		return nil, err
	}
	return nativeBool(len(recv.(*Array).Elements) == 0), nil
}

func arrayPush(e *Evaluator, recv Object, args []Object) (Object, error) {
	arr := recv.(*Array)
	arr.Elements = append(arr.Elements, args...)
	return UNIT, nil
}

func arrayPop(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("pop", args, 0); err != nil {
		return nil, err
	}
	arr := recv.(*Array)
	if len(arr.Elements) == 0 {
		return NONE, nil
	}
	last := arr.Elements[len(arr.Elements)-1]
	arr.Elements = arr.Elements[:len(arr.Elements)-1]
	return makeSome(last), nil
}

func arrayGet(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("get", args, 1); err != nil {
		return nil, err
	}
	i, err := intArg("get", args[0])
	if err != nil {
		return nil, err
	}
	elems := recv.(*Array).Elements
	if i < 0 || i >= int64(len(elems)) {
		return NONE, nil
	}
	return makeSome(elems[i]), nil
}

func arrayFirst(e *Evaluator, recv Object, args []Object) (Object, error) {
	elems := recv.(*Array).Elements
	if len(elems) == 0 {
		return NONE, nil
	}
	return makeSome(elems[0]), nil
}

func arrayLast(e *Evaluator, recv Object, args []Object) (Object, error) {
	elems := recv.(*Array).Elements
	if len(elems) == 0 {
		return NONE, nil
	}
	return makeSome(elems[len(elems)-1]), nil
}

func arrayContains(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("contains", args, 1); err != nil {
		return nil, err
	}
	for _, el := range recv.(*Array).Elements {
		if Equal(el, args[0]) {
			return TRUE, nil
		}
	}
	return FALSE, nil
}

// snapshot copies the elements so callbacks may mutate the array.
func snapshot(recv Object) []Object {
	elems := recv.(*Array).Elements
	out := make([]Object, len(elems))
	copy(out, elems)
	return out
}

func arrayMap(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("map", args, 1); err != nil {
		return nil, err
	}
	items := snapshot(recv)
	out := make([]Object, len(items))
	for i, el := range items {
		v, err := e.Apply(args[0], el)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return &Array{Elements: out}, nil
}

func arrayFilter(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("filter", args, 1); err != nil {
		return nil, err
	}
	out := []Object{}
	for _, el := range snapshot(recv) {
		keep, err := e.predicate("filter", args[0], el)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, el)
		}
	}
	return &Array{Elements: out}, nil
}

func arrayReduce(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("reduce", args, 1); err != nil {
		return nil, err
	}
	items := snapshot(recv)
	if len(items) == 0 {
		return nil, newError(TypeError, "reduce of an empty array")
	}
	acc := items[0]
	for _, el := range items[1:] {
		v, err := e.Apply(args[0], acc, el)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func arrayFold(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("fold", args, 2); err != nil {
		return nil, err
	}
	acc := args[0]
	for _, el := range snapshot(recv) {
		v, err := e.Apply(args[1], acc, el)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func arrayEach(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("each", args, 1); err != nil {
		return nil, err
	}
	for _, el := range snapshot(recv) {
		if _, err := e.Apply(args[0], el); err != nil {
			return nil, err
		}
	}
	return UNIT, nil
}

func arrayJoin(e *Evaluator, recv Object, args []Object) (Object, error) {
	sep := ""
	if len(args) == 1 {
		s, ok := args[0].(*String)
		if !ok {
			return nil, newError(TypeError, "join separator must be String, got %s", TypeName(args[0]))
		}
		sep = s.Value
	} else if len(args) > 1 {
		return nil, arityError("join", "0 or 1", len(args))
	}
	elems := recv.(*Array).Elements
	parts := make([]string, len(elems))
	for i, el := range elems {
		parts[i] = ToText(el)
	}
	return &String{Value: strings.Join(parts, sep)}, nil
}

func arrayReverse(e *Evaluator, recv Object, args []Object) (Object, error) {
	items := snapshot(recv)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return &Array{Elements: items}, nil
}

// sort returns a new sorted array; sort(f) orders by f(a, b) < 0.
func arraySort(e *Evaluator, recv Object, args []Object) (Object, error) {
	if len(args) > 1 {
		return nil, arityError("sort", "0 or 1", len(args))
	}
	items := snapshot(recv)
	var failure error
	sort.SliceStable(items, func(i, j int) bool {
		if failure != nil {
			return false
		}
		if len(args) == 1 {
			v, err := e.Apply(args[0], items[i], items[j])
			if err != nil {
				failure = err
				return false
			}
			n, ok := v.(*Integer)
			if !ok {
				failure = newError(TypeError, "sort comparator must return i64, got %s", TypeName(v))
				return false
			}
			return n.Value < 0
		}
		c, ok := Compare(items[i], items[j])
		if !ok {
			failure = newError(TypeError, "cannot compare %s and %s", TypeName(items[i]), TypeName(items[j]))
			return false
		}
		return c < 0
	})
	if failure != nil {
		return nil, failure
	}
	return &Array{Elements: items}, nil
}

func arraySum(e *Evaluator, recv Object, args []Object) (Object, error) {
	var acc Object = &Integer{Value: 0}
	for _, el := range recv.(*Array).Elements {
		v, err := BinaryOp("+", acc, el)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func arraySlice(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("slice", args, 2); err != nil {
		return nil, err
	}
	start, err := intArg("slice", args[0])
	if err != nil {
		return nil, err
	}
	end, err := intArg("slice", args[1])
	if err != nil {
		return nil, err
	}
	val, serr := sliceValue(recv, start, end)
	if serr != nil {
		return nil, serr
	}
	return val, nil
}

func arrayEnumerate(e *Evaluator, recv Object, args []Object) (Object, error) {
	elems := recv.(*Array).Elements
	out := make([]Object, len(elems))
	for i, el := range elems {
		out[i] = &Tuple{Elements: []Object{&Integer{Value: int64(i)}, el}}
	}
	return &Array{Elements: out}, nil
}

func arrayZip(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("zip", args, 1); err != nil {
		return nil, err
	}
	other, ok := args[0].(*Array)
	if !ok {
		return nil, newError(TypeError, "zip expects an Array, got %s", TypeName(args[0]))
	}
	elems := recv.(*Array).Elements
	n := min(len(elems), len(other.Elements))
	out := make([]Object, n)
	for i := 0; i < n; i++ {
		out[i] = &Tuple{Elements: []Object{elems[i], other.Elements[i]}}
	}
	return &Array{Elements: out}, nil
}

func clampCount(name string, args []Object, length int) (int, error) {
	if err := methodArgs(name, args, 1); err != nil {
		return 0, err
	}
	n, err := intArg(name, args[0])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, newError(TypeError, "%s count must not be negative, got %d", name, n)
	}
	return int(min(n, int64(length))), nil
}

func arrayTake(e *Evaluator, recv Object, args []Object) (Object, error) {
	items := snapshot(recv)
	n, err := clampCount("take", args, len(items))
	if err != nil {
		return nil, err
	}
	return &Array{Elements: items[:n]}, nil
}

func arraySkip(e *Evaluator, recv Object, args []Object) (Object, error) {
	items := snapshot(recv)
	n, err := clampCount("skip", args, len(items))
	if err != nil {
		return nil, err
	}
	return &Array{Elements: items[n:]}, nil
}

func arrayFind(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("find", args, 1); err != nil {
		return nil, err
	}
	for _, el := range snapshot(recv) {
		ok, err := e.predicate("find", args[0], el)
		if err != nil {
			return nil, err
		}
		if ok {
			return makeSome(el), nil
		}
	}
	return NONE, nil
}

func arrayAny(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("any", args, 1); err != nil {
		return nil, err
	}
	for _, el := range snapshot(recv) {
		ok, err := e.predicate("any", args[0], el)
		if err != nil {
			return nil, err
		}
		if ok {
			return TRUE, nil
		}
	}
	return FALSE, nil
}

func arrayAll(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("all", args, 1); err != nil {
		return nil, err
	}
	for _, el := range snapshot(recv) {
		ok, err := e.predicate("all", args[0], el)
		if err != nil {
			return nil, err
		}
		if !ok {
			return FALSE, nil
		}
	}
	return TRUE, nil
}
