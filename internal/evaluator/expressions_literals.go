package evaluator

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

func (e *Evaluator) evalInterpolatedString(node *ast.InterpolatedString, env *Environment) (Object, error) {
	var sb strings.Builder
	for _, part := range node.Parts {
		if s, ok := part.(*ast.StringLiteral); ok {
			sb.WriteString(s.Value)
			continue
		}
		val, err := e.Eval(part, env)
		if err != nil {
			return nil, err
		}
		sb.WriteString(ToText(val))
	}
	return &String{Value: sb.String()}, nil
}

func (e *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) (Object, error) {
	elems, err := e.evalExpressions(node.Elements, env)
	if err != nil {
		return nil, err
	}
	return &Array{Elements: elems}, nil
}

// [v; n] gives n independent copies of v.
func (e *Evaluator) evalArrayRepeat(node *ast.ArrayRepeat, env *Environment) (Object, error) {
	val, err := e.Eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	countObj, err := e.Eval(node.Count, env)
	if err != nil {
		return nil, err
	}
	count, ok := countObj.(*Integer)
	if !ok {
		return nil, e.errorf(node.Count, TypeError, "array repeat count must be i64, got %s", TypeName(countObj))
	}
	if count.Value < 0 {
		return nil, e.errorf(node.Count, TypeError, "array repeat count must not be negative, got %d", count.Value)
	}
	if rerr := e.checkSize(count.Value, "array repetition"); rerr != nil {
		return nil, e.raiseAt(node, rerr)
	}
	elems := make([]Object, count.Value)
	for i := range elems {
		elems[i] = DeepCopy(val)
	}
	return &Array{Elements: elems}, nil
}

func (e *Evaluator) evalListComprehension(node *ast.ListComprehension, env *Environment) (Object, error) {
	iterable, err := e.Eval(node.Iterable, env)
	if err != nil {
		return nil, err
	}
	out := &Array{Elements: []Object{}}
	err = e.iterate(node.Iterable, iterable, func(item Object) error {
		if err := e.tick(node); err != nil {
			return err
		}
		scope := NewEnclosedEnvironment(env)
		ok, err := e.MatchPattern(node.Pattern, item, scope)
		if err != nil {
			return err
		}
		if !ok {
			return e.errorf(node, NonExhaustiveMatch, "pattern %s does not match %s", node.Pattern.String(), Display(item))
		}
		if node.Condition != nil {
			cond, err := e.Eval(node.Condition, scope)
			if err != nil {
				return err
			}
			keep, err := e.truthy(node.Condition, cond, "comprehension filter")
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
		}
		val, err := e.Eval(node.Element, scope)
		if err != nil {
			return err
		}
		out.Elements = append(out.Elements, val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Evaluator) evalObjectLiteral(node *ast.ObjectLiteral, env *Environment) (Object, error) {
	rec := NewRecord("")
	for i, key := range node.Keys {
		val, err := e.Eval(node.Values[i], env)
		if err != nil {
			return nil, err
		}
		rec.Set(key, val)
	}
	return rec, nil
}

func (e *Evaluator) evalStructLiteral(node *ast.StructLiteral, env *Environment) (Object, error) {
	st, ok := e.Types[node.Name].(*StructType)
	if !ok {
		return nil, e.errorf(node, NameError, "undefined struct '%s'", node.Name)
	}
	given := make(map[string]Object, len(node.Keys))
	for i, key := range node.Keys {
		if !st.hasField(key) {
			return nil, e.errorf(node.Values[i], NoSuchField, "struct %s has no field '%s'", st.Name, key)
		}
		val, err := e.Eval(node.Values[i], env)
		if err != nil {
			return nil, err
		}
		given[key] = val
	}

	rec := NewRecord(st.Name)
	for _, f := range st.Fields {
		if val, ok := given[f.Name]; ok {
			rec.Set(f.Name, val)
			continue
		}
		if f.Default == nil {
			return nil, e.errorf(node, TypeError, "missing field '%s' in %s initializer", f.Name, st.Name)
		}
		val, err := e.Eval(f.Default, st.Env)
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, val)
	}
	return rec, nil
}

func (st *StructType) hasField(name string) bool {
	for _, f := range st.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (e *Evaluator) newFunction(fn *ast.FunctionLiteral, env *Environment) *Function {
	return &Function{Name: fn.Name, Parameters: fn.Parameters, Body: fn.Body, Env: env}
}

// A named function literal can call itself through its own name.
func (e *Evaluator) evalFunctionLiteral(node *ast.FunctionLiteral, env *Environment) Object {
	if node.Name == "" || node.IsLambda {
		return e.newFunction(node, env)
	}
	scope := NewEnclosedEnvironment(env)
	fn := e.newFunction(node, scope)
	scope.Define(node.Name, fn)
	return fn
}

// Type::Member resolves enum variants and associated functions.
func (e *Evaluator) evalPathExpression(node *ast.PathExpression) (Object, error) {
	switch t := e.Types[node.Type].(type) {
	case *EnumType:
		if arity, ok := t.Variants[node.Member]; ok {
			if arity == 0 {
				return &EnumValue{Enum: t.Name, Variant: node.Member}, nil
			}
			return t.constructor(node.Member, arity), nil
		}
		if fn, ok := t.Statics[node.Member]; ok {
			return fn, nil
		}
		if fn, ok := t.Methods[node.Member]; ok {
			return fn, nil
		}
		return nil, e.errorf(node, NoSuchField, "enum %s has no variant or function '%s'", t.Name, node.Member)
	case *StructType:
		if fn, ok := t.Statics[node.Member]; ok {
			return fn, nil
		}
		if fn, ok := t.Methods[node.Member]; ok {
			return fn, nil
		}
		return nil, e.errorf(node, NoSuchField, "struct %s has no associated function '%s'", t.Name, node.Member)
	}
	return nil, e.errorf(node, NameError, "undefined type '%s'", node.Type)
}

func (et *EnumType) constructor(variant string, arity int) *Builtin {
	name := et.Name + "::" + variant
	return &Builtin{Name: name, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		if len(args) != arity {
			return nil, newError(ArityMismatch, "%s expects %d argument(s), got %d", name, arity, len(args))
		}
		vals := make([]Object, len(args))
		copy(vals, args)
		return &EnumValue{Enum: et.Name, Variant: variant, Values: vals}, nil
	}}
}
