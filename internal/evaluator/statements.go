package evaluator

import (
	"github.com/ruchy-lang/ruchy/internal/ast"
)

func (e *Evaluator) evalStatement(stmt ast.Statement, env *Environment) (Object, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return e.Eval(s.Expression, env)
	case *ast.LetStatement:
		return e.evalLetStatement(s, env)
	case *ast.FunctionStatement:
		env.Define(s.Name.Value, e.newFunction(s.Function, env))
		return UNIT, nil
	case *ast.StructStatement:
		return e.evalStructStatement(s, env)
	case *ast.EnumStatement:
		return e.evalEnumStatement(s, env)
	case *ast.ImplStatement:
		return e.evalImplStatement(s, env)
	}
	return nil, e.errorf(stmt, RuntimeError, "unknown statement %T", stmt)
}

// let binds nothing unless the whole pattern matches.
func (e *Evaluator) evalLetStatement(s *ast.LetStatement, env *Environment) (Object, error) {
	val, err := e.Eval(s.Value, env)
	if err != nil {
		return nil, err
	}
	ok, err := e.MatchPattern(s.Pattern, val, env)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.errorf(s, NonExhaustiveMatch, "let pattern %s does not match %s", s.Pattern.String(), Display(val))
	}
	return UNIT, nil
}

// evalBlock runs a block in a fresh child scope.
func (e *Evaluator) evalBlock(block *ast.BlockExpression, env *Environment) (Object, error) {
	return e.evalBlockIn(block, NewEnclosedEnvironment(env))
}

// evalBlockIn runs the block's statements directly in scope. Named
// functions are bound before the first statement runs so they can call
// each other regardless of order.
func (e *Evaluator) evalBlockIn(block *ast.BlockExpression, scope *Environment) (Object, error) {
	for _, stmt := range block.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok {
			scope.Define(fs.Name.Value, e.newFunction(fs.Function, scope))
		}
	}

	var result Object = UNIT
	for i, stmt := range block.Statements {
		if _, ok := stmt.(*ast.FunctionStatement); ok {
			result = UNIT
			continue
		}
		val, err := e.evalStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = UNIT
		if i == len(block.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok && !es.Terminated {
				result = val
			}
		}
	}
	return result, nil
}

func (e *Evaluator) evalStructStatement(s *ast.StructStatement, env *Environment) (Object, error) {
	st := &StructType{
		Name:    s.Name.Value,
		Fields:  s.Fields,
		Env:     env,
		Methods: make(map[string]*Function),
		Statics: make(map[string]*Function),
	}
	// re-declaring keeps previously attached methods
	if old, ok := e.Types[st.Name].(*StructType); ok {
		st.Methods, st.Statics = old.Methods, old.Statics
	}
	e.Types[st.Name] = st
	env.Define(st.Name, st)
	return UNIT, nil
}

func (e *Evaluator) evalEnumStatement(s *ast.EnumStatement, env *Environment) (Object, error) {
	et := &EnumType{
		Name:     s.Name.Value,
		Variants: make(map[string]int),
		Methods:  make(map[string]*Function),
		Statics:  make(map[string]*Function),
	}
	for _, v := range s.Variants {
		if _, dup := et.Variants[v.Name]; dup {
			return nil, e.errorf(s, TypeError, "duplicate variant %s in enum %s", v.Name, et.Name)
		}
		et.Variants[v.Name] = len(v.Fields)
		et.Order = append(et.Order, v.Name)
	}
	if old, ok := e.Types[et.Name].(*EnumType); ok {
		et.Methods, et.Statics = old.Methods, old.Statics
	}
	e.Types[et.Name] = et
	env.Define(et.Name, et)
	return UNIT, nil
}

// impl attaches methods (first parameter self) and associated functions.
func (e *Evaluator) evalImplStatement(s *ast.ImplStatement, env *Environment) (Object, error) {
	var methods, statics map[string]*Function
	switch t := e.Types[s.TypeName.Value].(type) {
	case *StructType:
		methods, statics = t.Methods, t.Statics
	case *EnumType:
		methods, statics = t.Methods, t.Statics
	default:
		return nil, e.errorf(s, NameError, "cannot implement methods for undefined type '%s'", s.TypeName.Value)
	}
	for _, m := range s.Methods {
		fn := e.newFunction(m.Function, env)
		fn.Name = s.TypeName.Value + "::" + m.Name.Value
		if isMethod(m.Function) {
			methods[m.Name.Value] = fn
		} else {
			statics[m.Name.Value] = fn
		}
	}
	return UNIT, nil
}

func isMethod(fn *ast.FunctionLiteral) bool {
	if len(fn.Parameters) == 0 {
		return false
	}
	ip, ok := fn.Parameters[0].Pattern.(*ast.IdentifierPattern)
	return ok && ip.Name == "self"
}
