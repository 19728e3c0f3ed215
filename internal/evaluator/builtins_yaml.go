package evaluator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// yaml_parse(s) returns Ok(value) or Err(message). Mappings become
// objects, sequences arrays, and null becomes unit.
func builtinYamlParse(e *Evaluator, args ...Object) (Object, error) {
	s, err := stringArg("yaml_parse", args)
	if err != nil {
		return nil, err
	}
	var data interface{}
	if uerr := yaml.Unmarshal([]byte(s), &data); uerr != nil {
		return makeErr(&String{Value: fmt.Sprintf("YAML parse error: %v", uerr)}), nil
	}
	val, cerr := fromNative(data)
	if cerr != nil {
		return makeErr(&String{Value: cerr.Error()}), nil
	}
	return makeOk(val), nil
}

func builtinYamlStringify(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("yaml_stringify", args, 1); err != nil {
		return nil, err
	}
	data, err := toNative(args[0], map[Object]bool{})
	if err != nil {
		return nil, err
	}
	out, merr := yaml.Marshal(data)
	if merr != nil {
		return nil, newError(RuntimeError, "YAML encode error: %v", merr)
	}
	return &String{Value: strings.TrimSuffix(string(out), "\n")}, nil
}

// fromNative converts decoded YAML or JSON data into values.
func fromNative(data interface{}) (Object, error) {
	switch v := data.(type) {
	case nil:
		return UNIT, nil
	case bool:
		return nativeBool(v), nil
	case int:
		return &Integer{Value: int64(v)}, nil
	case int64:
		return &Integer{Value: v}, nil
	case uint64:
		return &Integer{Value: int64(v)}, nil
	case float64:
		return &Float{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []interface{}:
		elems := make([]Object, len(v))
		for i, item := range v {
			obj, err := fromNative(item)
			if err != nil {
				return nil, err
			}
			elems[i] = obj
		}
		return &Array{Elements: elems}, nil
	case map[string]interface{}:
		rec := NewRecord("")
		for _, k := range sortedNativeKeys(v) {
			obj, err := fromNative(v[k])
			if err != nil {
				return nil, err
			}
			rec.Set(k, obj)
		}
		return rec, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = item
		}
		return fromNative(m)
	}
	return nil, fmt.Errorf("unsupported value of type %T", data)
}

// toNative converts a value into plain Go data for encoding. Cyclic
// structures cannot be encoded.
func toNative(obj Object, visiting map[Object]bool) (interface{}, *Error) {
	switch o := obj.(type) {
	case *Unit:
		return nil, nil
	case *Boolean:
		return o.Value, nil
	case *Integer:
		return o.Value, nil
	case *Float:
		return o.Value, nil
	case *String:
		return o.Value, nil
	case *Option:
		if !o.IsSome() {
			return nil, nil
		}
		return toNative(o.Value, visiting)
	case *Array:
		if visiting[o] {
			return nil, newError(TypeError, "cannot encode a circular array")
		}
		visiting[o] = true
		defer delete(visiting, o)
		return toNativeSlice(o.Elements, visiting)
	case *Tuple:
		return toNativeSlice(o.Elements, visiting)
	case *Record:
		if visiting[o] {
			return nil, newError(TypeError, "cannot encode a circular object")
		}
		visiting[o] = true
		defer delete(visiting, o)
		m := make(map[string]interface{}, len(o.Fields))
		for k, v := range o.Fields {
			nv, err := toNative(v, visiting)
			if err != nil {
				return nil, err
			}
			m[k] = nv
		}
		return m, nil
	}
	return nil, newError(TypeError, "cannot encode %s", TypeName(obj))
}

func toNativeSlice(elems []Object, visiting map[Object]bool) ([]interface{}, *Error) {
	out := make([]interface{}, len(elems))
	for i, el := range elems {
		v, err := toNative(el, visiting)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
