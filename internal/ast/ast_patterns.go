package ast

import (
	"sort"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/token"
)

// Pattern is a destructuring shape used by let, match, for, parameters and
// catch clauses.
type Pattern interface {
	Node
	patternNode()
}

func joinPatterns(ps []Pattern, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()          {}
func (wp *WildcardPattern) TokenLiteral() string  { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token { return wp.Token }
func (wp *WildcardPattern) String() string        { return "_" }

// LiteralPattern matches by structural equality against a literal
// expression (possibly a negated number).
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()          {}
func (lp *LiteralPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token { return lp.Token }
func (lp *LiteralPattern) String() string        { return lp.Value.String() }

type IdentifierPattern struct {
	Token   token.Token
	Name    string
	Mutable bool
}

func (ip *IdentifierPattern) patternNode()          {}
func (ip *IdentifierPattern) TokenLiteral() string  { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token { return ip.Token }
func (ip *IdentifierPattern) String() string {
	if ip.Mutable {
		return "mut " + ip.Name
	}
	return ip.Name
}

type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (tp *TuplePattern) patternNode()          {}
func (tp *TuplePattern) TokenLiteral() string  { return tp.Token.Lexeme }
func (tp *TuplePattern) GetToken() token.Token { return tp.Token }
func (tp *TuplePattern) String() string        { return "(" + joinPatterns(tp.Elements, ", ") + ")" }

type ListPattern struct {
	Token    token.Token
	Elements []Pattern
}

func (lp *ListPattern) patternNode()          {}
func (lp *ListPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *ListPattern) GetToken() token.Token { return lp.Token }
func (lp *ListPattern) String() string        { return "[" + joinPatterns(lp.Elements, ", ") + "]" }

type FieldPattern struct {
	Name    string
	Pattern Pattern // nil for shorthand `{ x }`
}

// StructPattern matches named fields of a record. Name is empty for the
// anonymous form. Unless Closed, fields not mentioned are ignored.
type StructPattern struct {
	Token  token.Token
	Name   string
	Fields []*FieldPattern
	Closed bool
}

func (sp *StructPattern) patternNode()          {}
func (sp *StructPattern) TokenLiteral() string  { return sp.Token.Lexeme }
func (sp *StructPattern) GetToken() token.Token { return sp.Token }
func (sp *StructPattern) String() string {
	parts := make([]string, 0, len(sp.Fields)+1)
	for _, f := range sp.Fields {
		if f.Pattern == nil {
			parts = append(parts, f.Name)
		} else {
			parts = append(parts, f.Name+": "+f.Pattern.String())
		}
	}
	if sp.Closed {
		parts = append(parts, "!..")
	}
	s := "{ " + strings.Join(parts, ", ") + " }"
	if sp.Name != "" {
		s = sp.Name + " " + s
	}
	return s
}

type OrPattern struct {
	Token        token.Token
	Alternatives []Pattern
}

func (op *OrPattern) patternNode()          {}
func (op *OrPattern) TokenLiteral() string  { return op.Token.Lexeme }
func (op *OrPattern) GetToken() token.Token { return op.Token }
func (op *OrPattern) String() string        { return joinPatterns(op.Alternatives, " | ") }

// RestPattern is `..` or `..name` inside a list or tuple pattern.
type RestPattern struct {
	Token token.Token
	Name  string
}

func (rp *RestPattern) patternNode()          {}
func (rp *RestPattern) TokenLiteral() string  { return rp.Token.Lexeme }
func (rp *RestPattern) GetToken() token.Token { return rp.Token }
func (rp *RestPattern) String() string        { return ".." + rp.Name }

// GuardPattern is (pattern if condition) nested inside another pattern.
type GuardPattern struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
}

func (gp *GuardPattern) patternNode()          {}
func (gp *GuardPattern) TokenLiteral() string  { return gp.Token.Lexeme }
func (gp *GuardPattern) GetToken() token.Token { return gp.Token }
func (gp *GuardPattern) String() string {
	return "(" + gp.Pattern.String() + " if " + gp.Guard.String() + ")"
}

// RangePattern matches numbers (or strings) within start..end / start..=end.
type RangePattern struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (rp *RangePattern) patternNode()          {}
func (rp *RangePattern) TokenLiteral() string  { return rp.Token.Lexeme }
func (rp *RangePattern) GetToken() token.Token { return rp.Token }
func (rp *RangePattern) String() string {
	op := ".."
	if rp.Inclusive {
		op = "..="
	}
	return rp.Start.String() + op + rp.End.String()
}

// ConstructorPattern matches Some/None/Ok/Err and user enum variants.
// Type is empty for the built-in constructors and unqualified variants.
type ConstructorPattern struct {
	Token token.Token
	Type  string
	Name  string
	Args  []Pattern
}

func (cp *ConstructorPattern) patternNode()          {}
func (cp *ConstructorPattern) TokenLiteral() string  { return cp.Token.Lexeme }
func (cp *ConstructorPattern) GetToken() token.Token { return cp.Token }
func (cp *ConstructorPattern) String() string {
	s := cp.Name
	if cp.Type != "" {
		s = cp.Type + "::" + s
	}
	if len(cp.Args) > 0 {
		s += "(" + joinPatterns(cp.Args, ", ") + ")"
	}
	return s
}

// PatternBindings returns the sorted, de-duplicated names a pattern binds.
// For an or-pattern it reports the first alternative's names.
func PatternBindings(p Pattern) []string {
	seen := map[string]bool{}
	collectBindings(p, seen)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectBindings(p Pattern, seen map[string]bool) {
	switch p := p.(type) {
	case *IdentifierPattern:
		seen[p.Name] = true
	case *RestPattern:
		if p.Name != "" {
			seen[p.Name] = true
		}
	case *TuplePattern:
		for _, e := range p.Elements {
			collectBindings(e, seen)
		}
	case *ListPattern:
		for _, e := range p.Elements {
			collectBindings(e, seen)
		}
	case *StructPattern:
		for _, f := range p.Fields {
			if f.Pattern == nil {
				seen[f.Name] = true
			} else {
				collectBindings(f.Pattern, seen)
			}
		}
	case *OrPattern:
		if len(p.Alternatives) > 0 {
			collectBindings(p.Alternatives[0], seen)
		}
	case *GuardPattern:
		collectBindings(p.Pattern, seen)
	case *ConstructorPattern:
		for _, a := range p.Args {
			collectBindings(a, seen)
		}
	}
}
