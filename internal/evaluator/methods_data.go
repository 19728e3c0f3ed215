package evaluator

func init() {
	recordMethods = map[string]methodFunc{
		"keys":         recordKeysMethod,
		"values":       recordValuesMethod,
		"len":          recordLen,
		"contains_key": recordContainsKey,
		"get":          recordGet,
		"insert":       recordInsert,
		"remove":       recordRemove,
	}
	optionMethods = map[string]methodFunc{
		"unwrap":    optionUnwrap,
		"expect":    optionExpect,
		"unwrap_or": optionUnwrapOr,
		"is_some":   optionIsSome,
		"is_none":   optionIsNone,
		"map":       optionMap,
	}
	resultMethods = map[string]methodFunc{
		"unwrap":    resultUnwrap,
		"expect":    resultExpect,
		"unwrap_or": resultUnwrapOr,
		"is_ok":     resultIsOk,
		"is_err":    resultIsErr,
		"map":       resultMap,
	}
	rangeMethods = map[string]methodFunc{
		"to_array": rangeToArray,
		"len":      rangeLen,
		"contains": rangeContains,
	}
	tupleMethods = map[string]methodFunc{
		"len": tupleLen,
	}
}

func recordKeysMethod(e *Evaluator, recv Object, args []Object) (Object, error) {
	return recordKeys(recv.(*Record)), nil
}

func recordValuesMethod(e *Evaluator, recv Object, args []Object) (Object, error) {
	return recordValues(recv.(*Record)), nil
}

func recordLen(e *Evaluator, recv Object, args []Object) (Object, error) {
	return &Integer{Value: int64(len(recv.(*Record).Fields))}, nil
}

func keyArg(name string, args []Object, n int) (string, *Error) {
	if err := methodArgs(name, args, n); err != nil {
		return "", err
	}
	k, ok := args[0].(*String)
	if !ok {
		return "", newError(TypeError, "%s key must be String, got %s", name, TypeName(args[0]))
	}
	return k.Value, nil
}

func recordContainsKey(e *Evaluator, recv Object, args []Object) (Object, error) {
	k, err := keyArg("contains_key", args, 1)
	if err != nil {
		return nil, err
	}
	_, ok := recv.(*Record).Get(k)
	return nativeBool(ok), nil
}

func recordGet(e *Evaluator, recv Object, args []Object) (Object, error) {
	k, err := keyArg("get", args, 1)
	if err != nil {
		return nil, err
	}
	return optionOf(recv.(*Record).Get(k)), nil
}

func recordInsert(e *Evaluator, recv Object, args []Object) (Object, error) {
	k, err := keyArg("insert", args, 2)
	if err != nil {
		return nil, err
	}
	rec := recv.(*Record)
	if rec.Name != "" {
		if _, exists := rec.Get(k); !exists {
			return nil, newError(NoSuchField, "struct %s has no field '%s'", rec.Name, k)
		}
	}
	rec.Set(k, args[1])
	return UNIT, nil
}

func recordRemove(e *Evaluator, recv Object, args []Object) (Object, error) {
	k, err := keyArg("remove", args, 1)
	if err != nil {
		return nil, err
	}
	rec := recv.(*Record)
	old, ok := rec.Get(k)
	if ok {
		rec.Delete(k)
	}
	return optionOf(old, ok), nil
}

func optionUnwrap(e *Evaluator, recv Object, args []Object) (Object, error) {
	o := recv.(*Option)
	if !o.IsSome() {
		return nil, newError(RuntimeError, "called unwrap on None")
	}
	return o.Value, nil
}

func optionExpect(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("expect", args, 1); err != nil {
		return nil, err
	}
	o := recv.(*Option)
	if !o.IsSome() {
		return nil, newError(RuntimeError, "%s", ToText(args[0]))
	}
	return o.Value, nil
}

func optionUnwrapOr(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("unwrap_or", args, 1); err != nil {
		return nil, err
	}
	o := recv.(*Option)
	if !o.IsSome() {
		return args[0], nil
	}
	return o.Value, nil
}

func optionIsSome(e *Evaluator, recv Object, args []Object) (Object, error) {
	return nativeBool(recv.(*Option).IsSome()), nil
}

func optionIsNone(e *Evaluator, recv Object, args []Object) (Object, error) {
	return nativeBool(!recv.(*Option).IsSome()), nil
}

func optionMap(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("map", args, 1); err != nil {
		return nil, err
	}
	o := recv.(*Option)
	if !o.IsSome() {
		return o, nil
	}
	v, err := e.Apply(args[0], o.Value)
	if err != nil {
		return nil, err
	}
	return makeSome(v), nil
}

func resultUnwrap(e *Evaluator, recv Object, args []Object) (Object, error) {
	r := recv.(*Result)
	if !r.IsOk {
		return nil, newError(RuntimeError, "called unwrap on Err(%s)", Display(r.Value))
	}
	return r.Value, nil
}

func resultExpect(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("expect", args, 1); err != nil {
		return nil, err
	}
	r := recv.(*Result)
	if !r.IsOk {
		return nil, newError(RuntimeError, "%s: %s", ToText(args[0]), Display(r.Value))
	}
	return r.Value, nil
}

func resultUnwrapOr(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("unwrap_or", args, 1); err != nil {
		return nil, err
	}
	r := recv.(*Result)
	if !r.IsOk {
		return args[0], nil
	}
	return r.Value, nil
}

func resultIsOk(e *Evaluator, recv Object, args []Object) (Object, error) {
	return nativeBool(recv.(*Result).IsOk), nil
}

func resultIsErr(e *Evaluator, recv Object, args []Object) (Object, error) {
	return nativeBool(!recv.(*Result).IsOk), nil
}

func resultMap(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("map", args, 1); err != nil {
		return nil, err
	}
	r := recv.(*Result)
	if !r.IsOk {
		return r, nil
	}
	v, err := e.Apply(args[0], r.Value)
	if err != nil {
		return nil, err
	}
	return makeOk(v), nil
}

func rangeToArray(e *Evaluator, recv Object, args []Object) (Object, error) {
	r := recv.(*Range)
	n := r.Len()
	if err := e.checkSize(n, "to_array of "+r.Inspect()); err != nil {
		return nil, err
	}
	out := make([]Object, 0, n)
	for i := int64(0); i < n; i++ {
		if i&0xff == 0 {
			if err := e.tick(e.site); err != nil {
				return nil, err
			}
		}
		out = append(out, &Integer{Value: r.Start + i})
	}
	return &Array{Elements: out}, nil
}

func rangeLen(e *Evaluator, recv Object, args []Object) (Object, error) {
	return &Integer{Value: recv.(*Range).Len()}, nil
}

func rangeContains(e *Evaluator, recv Object, args []Object) (Object, error) {
	if err := methodArgs("contains", args, 1); err != nil {
		return nil, err
	}
	r := recv.(*Range)
	i, ok := args[0].(*Integer)
	if !ok {
		return FALSE, nil
	}
	return nativeBool(r.Contains(i.Value)), nil
}

func tupleLen(e *Evaluator, recv Object, args []Object) (Object, error) {
	return &Integer{Value: int64(len(recv.(*Tuple).Elements))}, nil
}
