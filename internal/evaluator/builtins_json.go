package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// json_parse(s) returns Ok(value) or Err(message). Whole numbers decode
// as integers.
func builtinJsonParse(e *Evaluator, args ...Object) (Object, error) {
	s, err := stringArg("json_parse", args)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var data interface{}
	if derr := dec.Decode(&data); derr != nil {
		return makeErr(&String{Value: fmt.Sprintf("JSON parse error: %v", derr)}), nil
	}
	val, cerr := fromNative(normalizeJSON(data))
	if cerr != nil {
		return makeErr(&String{Value: cerr.Error()}), nil
	}
	return makeOk(val), nil
}

func normalizeJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []interface{}:
		for i := range v {
			v[i] = normalizeJSON(v[i])
		}
	case map[string]interface{}:
		for k := range v {
			v[k] = normalizeJSON(v[k])
		}
	}
	return data
}

func builtinJsonStringify(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("json_stringify", args, 1); err != nil {
		return nil, err
	}
	data, err := toNative(args[0], map[Object]bool{})
	if err != nil {
		return nil, err
	}
	out, merr := json.Marshal(data)
	if merr != nil {
		return nil, newError(RuntimeError, "JSON encode error: %v", merr)
	}
	return &String{Value: string(out)}, nil
}

func sortedNativeKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
