package ast

import (
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/token"
)

func joinExprs(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return fl.Token.Lexeme }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return strconv.FormatBool(bl.Value) }

// UnitLiteral is ().
type UnitLiteral struct {
	Token token.Token
}

func (ul *UnitLiteral) expressionNode()       {}
func (ul *UnitLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token { return ul.Token }
func (ul *UnitLiteral) String() string        { return "()" }

// InterpolatedString is f"...{expr}...". Parts alternate freely between
// *StringLiteral segments and arbitrary expressions.
type InterpolatedString struct {
	Token token.Token
	Parts []Expression
}

func (is *InterpolatedString) expressionNode()       {}
func (is *InterpolatedString) TokenLiteral() string  { return is.Token.Lexeme }
func (is *InterpolatedString) GetToken() token.Token { return is.Token }
func (is *InterpolatedString) String() string {
	var sb strings.Builder
	sb.WriteString(`f"`)
	for _, p := range is.Parts {
		if s, ok := p.(*StringLiteral); ok {
			sb.WriteString(s.Value)
			continue
		}
		sb.WriteString("{" + p.String() + "}")
	}
	sb.WriteString(`"`)
	return sb.String()
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }
func (al *ArrayLiteral) String() string        { return "[" + joinExprs(al.Elements, ", ") + "]" }

// ArrayRepeat is [value; count].
type ArrayRepeat struct {
	Token token.Token
	Value Expression
	Count Expression
}

func (ar *ArrayRepeat) expressionNode()       {}
func (ar *ArrayRepeat) TokenLiteral() string  { return ar.Token.Lexeme }
func (ar *ArrayRepeat) GetToken() token.Token { return ar.Token }
func (ar *ArrayRepeat) String() string {
	return "[" + ar.Value.String() + "; " + ar.Count.String() + "]"
}

// ListComprehension is [element for pattern in iterable if condition].
type ListComprehension struct {
	Token     token.Token
	Element   Expression
	Pattern   Pattern
	Iterable  Expression
	Condition Expression
}

func (lc *ListComprehension) expressionNode()       {}
func (lc *ListComprehension) TokenLiteral() string  { return lc.Token.Lexeme }
func (lc *ListComprehension) GetToken() token.Token { return lc.Token }
func (lc *ListComprehension) String() string {
	s := "[" + lc.Element.String() + " for " + lc.Pattern.String() + " in " + lc.Iterable.String()
	if lc.Condition != nil {
		s += " if " + lc.Condition.String()
	}
	return s + "]"
}

type TupleLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()       {}
func (tl *TupleLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token { return tl.Token }
func (tl *TupleLiteral) String() string {
	if len(tl.Elements) == 1 {
		return "(" + tl.Elements[0].String() + ",)"
	}
	return "(" + joinExprs(tl.Elements, ", ") + ")"
}

// ObjectLiteral is an anonymous record {key: value, ...}. Keys keep their
// source order.
type ObjectLiteral struct {
	Token  token.Token
	Keys   []string
	Values []Expression
}

func (ol *ObjectLiteral) expressionNode()       {}
func (ol *ObjectLiteral) TokenLiteral() string  { return ol.Token.Lexeme }
func (ol *ObjectLiteral) GetToken() token.Token { return ol.Token }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Keys))
	for i, k := range ol.Keys {
		parts[i] = k + ": " + ol.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// StructLiteral is Name { field: value, ... }.
type StructLiteral struct {
	Token  token.Token
	Name   string
	Keys   []string
	Values []Expression
}

func (sl *StructLiteral) expressionNode()       {}
func (sl *StructLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StructLiteral) GetToken() token.Token { return sl.Token }
func (sl *StructLiteral) String() string {
	parts := make([]string, len(sl.Keys))
	for i, k := range sl.Keys {
		parts[i] = k + ": " + sl.Values[i].String()
	}
	return sl.Name + " { " + strings.Join(parts, ", ") + " }"
}

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string        { return "(" + pe.Operator + pe.Right.String() + ")" }

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// RangeExpression is start..end or start..=end. Either bound may be nil
// when used as a slice index.
type RangeExpression struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (re *RangeExpression) expressionNode()       {}
func (re *RangeExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *RangeExpression) GetToken() token.Token { return re.Token }
func (re *RangeExpression) String() string {
	var sb strings.Builder
	if re.Start != nil {
		sb.WriteString(re.Start.String())
	}
	if re.Inclusive {
		sb.WriteString("..=")
	} else {
		sb.WriteString("..")
	}
	if re.End != nil {
		sb.WriteString(re.End.String())
	}
	return sb.String()
}

// AssignExpression covers = and the compound forms (+=, -=, ...).
// Target is an *Identifier, *IndexExpression or *FieldExpression.
type AssignExpression struct {
	Token    token.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " " + ae.Operator + " " + ae.Value.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments, ", ") + ")"
}

// MethodCallExpression is receiver.method(args).
type MethodCallExpression struct {
	Token     token.Token
	Receiver  Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()       {}
func (mc *MethodCallExpression) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token { return mc.Token }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Method + "(" + joinExprs(mc.Arguments, ", ") + ")"
}

type IndexExpression struct {
	Token token.Token // The '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

// FieldExpression is left.field; tuple access uses a numeric field name.
type FieldExpression struct {
	Token token.Token
	Left  Expression
	Field string
}

func (fe *FieldExpression) expressionNode()       {}
func (fe *FieldExpression) TokenLiteral() string  { return fe.Token.Lexeme }
func (fe *FieldExpression) GetToken() token.Token { return fe.Token }
func (fe *FieldExpression) String() string        { return fe.Left.String() + "." + fe.Field }

// PathExpression is Type::Member, used for enum variants and associated
// functions.
type PathExpression struct {
	Token  token.Token
	Type   string
	Member string
}

func (pe *PathExpression) expressionNode()       {}
func (pe *PathExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PathExpression) GetToken() token.Token { return pe.Token }
func (pe *PathExpression) String() string        { return pe.Type + "::" + pe.Member }

// Parameter is one function parameter; Pattern is usually an
// *IdentifierPattern but destructuring patterns are accepted.
type Parameter struct {
	Pattern Pattern
	Type    string
	Default Expression
}

func (p *Parameter) String() string {
	s := p.Pattern.String()
	if p.Type != "" {
		s += ": " + p.Type
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// FunctionLiteral is both `fun name(a) { }` and the closure form `|a| expr`.
type FunctionLiteral struct {
	Token      token.Token
	Name       string
	Parameters []*Parameter
	ReturnType string
	Body       *BlockExpression
	IsLambda   bool
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }
func (fl *FunctionLiteral) String() string {
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.String()
	}
	if fl.IsLambda {
		body := fl.Body.String()
		if len(fl.Body.Statements) == 1 {
			body = fl.Body.Statements[0].String()
		}
		return "|" + strings.Join(params, ", ") + "| " + body
	}
	s := "fun "
	if fl.Name != "" {
		s += fl.Name
	}
	s += "(" + strings.Join(params, ", ") + ")"
	if fl.ReturnType != "" {
		s += " -> " + fl.ReturnType
	}
	return s + " " + fl.Body.String()
}

// CastExpression is value as Type.
type CastExpression struct {
	Token token.Token
	Value Expression
	Type  string
}

func (ce *CastExpression) expressionNode()       {}
func (ce *CastExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CastExpression) GetToken() token.Token { return ce.Token }
func (ce *CastExpression) String() string        { return "(" + ce.Value.String() + " as " + ce.Type + ")" }
