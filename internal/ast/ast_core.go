package ast

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/token"
)

// Node is the base interface for all AST nodes. Every node carries the
// token it started at, which the evaluator uses for error spans.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}
func (p *Program) String() string {
	var out []string
	for _, s := range p.Statements {
		out = append(out, s.String())
	}
	return strings.Join(out, "\n")
}

// LetStatement binds a pattern: let [mut] pat [: T] = value
type LetStatement struct {
	Token   token.Token
	Pattern Pattern
	Mutable bool
	Type    string
	Value   Expression
}

func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	var sb strings.Builder
	sb.WriteString("let ")
	if ls.Mutable {
		sb.WriteString("mut ")
	}
	sb.WriteString(ls.Pattern.String())
	if ls.Type != "" {
		sb.WriteString(": " + ls.Type)
	}
	sb.WriteString(" = ")
	if ls.Value != nil {
		sb.WriteString(ls.Value.String())
	}
	return sb.String()
}

// ExpressionStatement wraps an expression in statement position.
// Terminated is true when the expression was followed by ';', which makes
// the enclosing block evaluate to unit instead of this value.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
	Terminated bool
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	if es.Terminated {
		return es.Expression.String() + ";"
	}
	return es.Expression.String()
}

// FunctionStatement is a named function declaration.
type FunctionStatement struct {
	Token    token.Token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }
func (fs *FunctionStatement) String() string        { return fs.Function.String() }

type StructField struct {
	Name    string
	Type    string
	Default Expression
}

// StructStatement declares a named record type.
type StructStatement struct {
	Token  token.Token
	Name   *Identifier
	Fields []*StructField
}

func (ss *StructStatement) statementNode()        {}
func (ss *StructStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *StructStatement) GetToken() token.Token { return ss.Token }
func (ss *StructStatement) String() string {
	var fields []string
	for _, f := range ss.Fields {
		s := f.Name
		if f.Type != "" {
			s += ": " + f.Type
		}
		if f.Default != nil {
			s += " = " + f.Default.String()
		}
		fields = append(fields, s)
	}
	return "struct " + ss.Name.Value + " { " + strings.Join(fields, ", ") + " }"
}

type EnumVariant struct {
	Name   string
	Fields []string // payload type names; empty for unit variants
}

// EnumStatement declares a tagged union.
type EnumStatement struct {
	Token    token.Token
	Name     *Identifier
	Variants []*EnumVariant
}

func (es *EnumStatement) statementNode()        {}
func (es *EnumStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *EnumStatement) GetToken() token.Token { return es.Token }
func (es *EnumStatement) String() string {
	var vs []string
	for _, v := range es.Variants {
		if len(v.Fields) > 0 {
			vs = append(vs, v.Name+"("+strings.Join(v.Fields, ", ")+")")
		} else {
			vs = append(vs, v.Name)
		}
	}
	return "enum " + es.Name.Value + " { " + strings.Join(vs, ", ") + " }"
}

// ImplStatement attaches methods to a struct or enum type.
type ImplStatement struct {
	Token    token.Token
	TypeName *Identifier
	Methods  []*FunctionStatement
}

func (is *ImplStatement) statementNode()        {}
func (is *ImplStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImplStatement) GetToken() token.Token { return is.Token }
func (is *ImplStatement) String() string {
	var ms []string
	for _, m := range is.Methods {
		ms = append(ms, m.String())
	}
	return "impl " + is.TypeName.Value + " { " + strings.Join(ms, " ") + " }"
}
