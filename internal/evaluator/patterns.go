package evaluator

import (
	"github.com/ruchy-lang/ruchy/internal/ast"
)

type patternBinding struct {
	name    string
	value   Object
	mutable bool
}

// matcher collects candidate bindings for one pattern. Nothing is written
// to env until the whole pattern has matched.
type matcher struct {
	e     *Evaluator
	env   *Environment
	binds []patternBinding
}

// MatchPattern tests val against p. On success every binding the pattern
// introduces is defined in env; on failure env is left untouched. Errors
// come only from evaluating guards and literal bounds.
func (e *Evaluator) MatchPattern(p ast.Pattern, val Object, env *Environment) (bool, error) {
	m := &matcher{e: e, env: env}
	ok, err := m.match(p, val)
	if err != nil || !ok {
		return false, err
	}
	for _, b := range m.binds {
		env.DefineMutable(b.name, b.value, b.mutable)
	}
	return true, nil
}

func (m *matcher) bind(name string, val Object, mutable bool) {
	m.binds = append(m.binds, patternBinding{name: name, value: val, mutable: mutable})
}

func (m *matcher) match(p ast.Pattern, val Object) (bool, error) {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return true, nil

	case *ast.IdentifierPattern:
		m.bind(p.Name, val, p.Mutable)
		return true, nil

	case *ast.LiteralPattern:
		lit, err := m.e.Eval(p.Value, m.env)
		if err != nil {
			return false, err
		}
		return Equal(lit, val), nil

	case *ast.RangePattern:
		return m.matchRange(p, val)

	case *ast.TuplePattern:
		t, ok := val.(*Tuple)
		if !ok {
			return false, nil
		}
		return m.matchSequence(p.Elements, t.Elements)

	case *ast.ListPattern:
		a, ok := val.(*Array)
		if !ok {
			return false, nil
		}
		return m.matchSequence(p.Elements, a.Elements)

	case *ast.StructPattern:
		return m.matchStruct(p, val)

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			mark := len(m.binds)
			ok, err := m.match(alt, val)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			m.binds = m.binds[:mark]
		}
		return false, nil

	case *ast.GuardPattern:
		ok, err := m.match(p.Pattern, val)
		if err != nil || !ok {
			return false, err
		}
		scratch := NewEnclosedEnvironment(m.env)
		for _, b := range m.binds {
			scratch.DefineMutable(b.name, b.value, b.mutable)
		}
		cond, err := m.e.Eval(p.Guard, scratch)
		if err != nil {
			return false, err
		}
		return m.e.truthy(p.Guard, cond, "pattern guard")

	case *ast.ConstructorPattern:
		return m.matchConstructor(p, val)

	case *ast.RestPattern:
		// a rest outside a sequence matches anything
		if p.Name != "" {
			m.bind(p.Name, val, false)
		}
		return true, nil
	}
	return false, m.e.errorf(p, RuntimeError, "unsupported pattern %T", p)
}

// matchSequence matches element patterns against values. A rest pattern
// absorbs whatever the patterns before and after it leave over.
func (m *matcher) matchSequence(pats []ast.Pattern, vals []Object) (bool, error) {
	restAt := -1
	for i, p := range pats {
		if _, ok := p.(*ast.RestPattern); ok {
			restAt = i
			break
		}
	}
	if restAt < 0 {
		if len(pats) != len(vals) {
			return false, nil
		}
		for i, p := range pats {
			if ok, err := m.match(p, vals[i]); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}

	before, after := restAt, len(pats)-restAt-1
	if len(vals) < before+after {
		return false, nil
	}
	for i := 0; i < before; i++ {
		if ok, err := m.match(pats[i], vals[i]); err != nil || !ok {
			return false, err
		}
	}
	for i := 0; i < after; i++ {
		if ok, err := m.match(pats[restAt+1+i], vals[len(vals)-after+i]); err != nil || !ok {
			return false, err
		}
	}
	if rest := pats[restAt].(*ast.RestPattern); rest.Name != "" {
		middle := make([]Object, len(vals)-before-after)
		copy(middle, vals[before:len(vals)-after])
		m.bind(rest.Name, &Array{Elements: middle}, false)
	}
	return true, nil
}

func (m *matcher) matchStruct(p *ast.StructPattern, val Object) (bool, error) {
	var get func(string) (Object, bool)
	var count int
	switch v := val.(type) {
	case *Record:
		if p.Name != "" && v.Name != p.Name {
			return false, nil
		}
		get, count = v.Get, len(v.Fields)
	case *Error:
		if p.Name != "" && p.Name != "Error" && p.Name != string(v.Kind) {
			return false, nil
		}
		if p.Closed {
			return false, nil
		}
		get = v.Field
	default:
		return false, nil
	}

	if p.Closed && count != len(p.Fields) {
		return false, nil
	}
	for _, f := range p.Fields {
		fv, ok := get(f.Name)
		if !ok {
			return false, nil
		}
		if f.Pattern == nil {
			m.bind(f.Name, fv, false)
			continue
		}
		if ok, err := m.match(f.Pattern, fv); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (m *matcher) matchRange(p *ast.RangePattern, val Object) (bool, error) {
	lo, err := m.e.Eval(p.Start, m.env)
	if err != nil {
		return false, err
	}
	hi, err := m.e.Eval(p.End, m.env)
	if err != nil {
		return false, err
	}
	c, ok := Compare(val, lo)
	if !ok || c < 0 {
		return false, nil
	}
	c, ok = Compare(val, hi)
	if !ok {
		return false, nil
	}
	if p.Inclusive {
		return c <= 0, nil
	}
	return c < 0, nil
}

func (m *matcher) matchConstructor(p *ast.ConstructorPattern, val Object) (bool, error) {
	if p.Type == "" {
		switch p.Name {
		case "Some":
			o, ok := val.(*Option)
			if !ok || !o.IsSome() {
				return false, nil
			}
			return m.matchSequence(p.Args, []Object{o.Value})
		case "None":
			o, ok := val.(*Option)
			return ok && !o.IsSome(), nil
		case "Ok", "Err":
			r, ok := val.(*Result)
			if !ok || r.IsOk != (p.Name == "Ok") {
				return false, nil
			}
			return m.matchSequence(p.Args, []Object{r.Value})
		}
		if rerr, ok := val.(*Error); ok {
			return m.matchErrorKind(p, rerr)
		}
	}

	ev, ok := val.(*EnumValue)
	if !ok || ev.Variant != p.Name {
		return false, nil
	}
	if p.Type != "" && p.Type != ev.Enum {
		return false, nil
	}
	return m.matchSequence(p.Args, ev.Values)
}

// Kind(msg) matches an error of that kind and binds its message; Error(msg)
// matches any error.
func (m *matcher) matchErrorKind(p *ast.ConstructorPattern, rerr *Error) (bool, error) {
	if p.Name != "Error" && p.Name != string(rerr.Kind) {
		return false, nil
	}
	if len(p.Args) == 0 {
		return true, nil
	}
	return m.matchSequence(p.Args, []Object{&String{Value: rerr.Message}})
}
