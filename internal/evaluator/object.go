package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/config"
)

type ObjectType string

const (
	INTEGER_OBJ     = "INTEGER"
	FLOAT_OBJ       = "FLOAT"
	BOOLEAN_OBJ     = "BOOLEAN"
	STRING_OBJ      = "STRING"
	UNIT_OBJ        = "UNIT"
	ARRAY_OBJ       = "ARRAY"
	TUPLE_OBJ       = "TUPLE"
	RECORD_OBJ      = "RECORD"
	RANGE_OBJ       = "RANGE"
	FUNCTION_OBJ    = "FUNCTION"
	BUILTIN_OBJ     = "BUILTIN"
	OPTION_OBJ      = "OPTION"
	RESULT_OBJ      = "RESULT"
	ENUM_VALUE_OBJ  = "ENUM_VALUE"
	STRUCT_TYPE_OBJ = "STRUCT_TYPE"
	ENUM_TYPE_OBJ   = "ENUM_TYPE"
	ERROR_OBJ       = "ERROR"
)

// Object is a runtime value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return formatFloat(f.Value) }

// formatFloat always shows a fractional part so 1.0 is distinguishable
// from the integer 1.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

type Unit struct{}

func (u *Unit) Type() ObjectType { return UNIT_OBJ }
func (u *Unit) Inspect() string  { return "()" }

var (
	UNIT  = &Unit{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NONE  = &Option{}
)

func nativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Array is a shared-mutable sequence. Bindings hold the pointer, so every
// alias observes in-place mutation.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string  { return Display(a) }

type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string  { return Display(t) }

// Record backs both anonymous objects and struct instances (Name != "").
// Keys keeps insertion order for iteration; display sorts by key.
type Record struct {
	Name   string
	Fields map[string]Object
	Keys   []string
}

func NewRecord(name string) *Record {
	return &Record{Name: name, Fields: make(map[string]Object)}
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string  { return Display(r) }

func (r *Record) Get(key string) (Object, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

func (r *Record) Set(key string, val Object) {
	if _, ok := r.Fields[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Fields[key] = val
}

func (r *Record) Delete(key string) bool {
	if _, ok := r.Fields[key]; !ok {
		return false
	}
	delete(r.Fields, key)
	for i, k := range r.Keys {
		if k == key {
			r.Keys = append(r.Keys[:i:i], r.Keys[i+1:]...)
			break
		}
	}
	return true
}

func (r *Record) SortedKeys() []string {
	keys := make([]string, len(r.Keys))
	copy(keys, r.Keys)
	sort.Strings(keys)
	return keys
}

type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

func (r *Range) Type() ObjectType { return RANGE_OBJ }
func (r *Range) Inspect() string {
	if r.Inclusive {
		return fmt.Sprintf("%d..=%d", r.Start, r.End)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Last returns the final integer the range yields; ok is false when the
// range is empty.
func (r *Range) Last() (last int64, ok bool) {
	if r.Inclusive {
		return r.End, r.End >= r.Start
	}
	return r.End - 1, r.End > r.Start
}

// Len returns the number of integers the range yields, saturating at
// math.MaxInt64.
func (r *Range) Len() int64 {
	last, ok := r.Last()
	if !ok {
		return 0
	}
	span := uint64(last) - uint64(r.Start)
	if span >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(span) + 1
}

// Contains reports whether n is one of the integers the range yields.
func (r *Range) Contains(n int64) bool {
	last, ok := r.Last()
	return ok && n >= r.Start && n <= last
}

// Function is a closure: the parameters and body plus the environment
// that was active when it was created. Env is shared, not copied.
type Function struct {
	Name       string
	Parameters []*ast.Parameter
	Body       *ast.BlockExpression
	Env        *Environment
	// Receiver is set for methods bound to an instance.
	Receiver Object
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name == "" {
		return "<function>"
	}
	return "<function " + f.Name + ">"
}

// BuiltinFunction implements a native function. Returning a *Error raises
// it in the calling program.
type BuiltinFunction func(e *Evaluator, args ...Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin function: " + b.Name + ">" }

// Option is Some(Value) or None (Value == nil).
type Option struct {
	Value Object
}

func (o *Option) Type() ObjectType { return OPTION_OBJ }
func (o *Option) Inspect() string  { return Display(o) }
func (o *Option) IsSome() bool     { return o.Value != nil }

func makeSome(v Object) *Option { return &Option{Value: v} }

type Result struct {
	Value Object
	IsOk  bool
}

func (r *Result) Type() ObjectType { return RESULT_OBJ }
func (r *Result) Inspect() string  { return Display(r) }

func makeOk(v Object) *Result  { return &Result{Value: v, IsOk: true} }
func makeErr(v Object) *Result { return &Result{Value: v} }

// EnumValue is an instance of a user enum variant.
type EnumValue struct {
	Enum    string
	Variant string
	Values  []Object
}

func (ev *EnumValue) Type() ObjectType { return ENUM_VALUE_OBJ }
func (ev *EnumValue) Inspect() string  { return Display(ev) }

// StructType is the value bound to a struct declaration's name.
type StructType struct {
	Name    string
	Fields  []*ast.StructField
	Env     *Environment
	Methods map[string]*Function
	Statics map[string]*Function
}

func (st *StructType) Type() ObjectType { return STRUCT_TYPE_OBJ }
func (st *StructType) Inspect() string  { return "<struct " + st.Name + ">" }

// EnumType is the value bound to an enum declaration's name.
type EnumType struct {
	Name     string
	Variants map[string]int // variant name -> payload arity
	Order    []string
	Methods  map[string]*Function
	Statics  map[string]*Function
}

func (et *EnumType) Type() ObjectType { return ENUM_TYPE_OBJ }
func (et *EnumType) Inspect() string  { return "<enum " + et.Name + ">" }

// Display renders a value for output. Self-referential arrays and records
// print <circular> at the point of recursion.
func Display(obj Object) string {
	var sb strings.Builder
	writeDisplay(&sb, obj, map[Object]bool{})
	return sb.String()
}

func writeDisplay(sb *strings.Builder, obj Object, visiting map[Object]bool) {
	switch o := obj.(type) {
	case *Array:
		if visiting[o] {
			sb.WriteString("<circular>")
			return
		}
		visiting[o] = true
		defer delete(visiting, o)
		sb.WriteByte('[')
		for i, el := range o.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDisplay(sb, el, visiting)
		}
		sb.WriteByte(']')
	case *Tuple:
		sb.WriteByte('(')
		for i, el := range o.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDisplay(sb, el, visiting)
		}
		if len(o.Elements) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *Record:
		if visiting[o] {
			sb.WriteString("<circular>")
			return
		}
		visiting[o] = true
		defer delete(visiting, o)
		if o.Name != "" {
			sb.WriteString(o.Name + " ")
		}
		sb.WriteByte('{')
		for i, k := range o.SortedKeys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + ": ")
			writeDisplay(sb, o.Fields[k], visiting)
		}
		sb.WriteByte('}')
	case *Option:
		if o.Value == nil {
			sb.WriteString("None")
			return
		}
		sb.WriteString("Some(")
		writeDisplay(sb, o.Value, visiting)
		sb.WriteByte(')')
	case *Result:
		if o.IsOk {
			sb.WriteString("Ok(")
		} else {
			sb.WriteString("Err(")
		}
		writeDisplay(sb, o.Value, visiting)
		sb.WriteByte(')')
	case *EnumValue:
		sb.WriteString(o.Enum + "::" + o.Variant)
		if len(o.Values) > 0 {
			sb.WriteByte('(')
			for i, v := range o.Values {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeDisplay(sb, v, visiting)
			}
			sb.WriteByte(')')
		}
	default:
		sb.WriteString(obj.Inspect())
	}
}

// ToText is the print/interpolation form: strings are unquoted at the top
// level, everything else uses Display.
func ToText(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	return Display(obj)
}

// TypeName is the user-facing type name returned by type_of.
func TypeName(obj Object) string {
	switch o := obj.(type) {
	case *Integer:
		return config.IntTypeName
	case *Float:
		return config.FloatTypeName
	case *Boolean:
		return config.BoolTypeName
	case *String:
		return config.StringTypeName
	case *Unit:
		return config.UnitTypeName
	case *Array:
		return config.ArrayTypeName
	case *Tuple:
		return config.TupleTypeName
	case *Record:
		if o.Name != "" {
			return o.Name
		}
		return config.ObjectTypeName
	case *Range:
		return config.RangeTypeName
	case *Function, *Builtin:
		return config.FunctionTypeName
	case *Option:
		return config.OptionTypeName
	case *Result:
		return config.ResultTypeName
	case *EnumValue:
		return o.Enum
	case *StructType, *EnumType:
		return "Type"
	case *Error:
		return config.ErrorTypeName
	}
	return string(obj.Type())
}
