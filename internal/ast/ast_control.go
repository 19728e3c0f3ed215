package ast

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/token"
)

// BlockExpression is { stmts }. Its value is the last statement when that
// statement is an unterminated expression, unit otherwise.
type BlockExpression struct {
	Token      token.Token
	Statements []Statement
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token { return be.Token }
func (be *BlockExpression) String() string {
	if len(be.Statements) == 0 {
		return "{ }"
	}
	parts := make([]string, len(be.Statements))
	for i, s := range be.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockExpression
	Alternative Expression // *BlockExpression, *IfExpression, *IfLetExpression or nil
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) String() string {
	s := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s
}

// IfLetExpression is if let pat = value { } else { }.
type IfLetExpression struct {
	Token       token.Token
	Pattern     Pattern
	Value       Expression
	Consequence *BlockExpression
	Alternative Expression
}

func (ie *IfLetExpression) expressionNode()       {}
func (ie *IfLetExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfLetExpression) GetToken() token.Token { return ie.Token }
func (ie *IfLetExpression) String() string {
	s := "if let " + ie.Pattern.String() + " = " + ie.Value.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s
}

type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

func (ma *MatchArm) String() string {
	s := ma.Pattern.String()
	if ma.Guard != nil {
		s += " if " + ma.Guard.String()
	}
	return s + " => " + ma.Body.String()
}

type MatchExpression struct {
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }
func (me *MatchExpression) String() string {
	arms := make([]string, len(me.Arms))
	for i, a := range me.Arms {
		arms[i] = a.String()
	}
	return "match " + me.Subject.String() + " { " + strings.Join(arms, ", ") + " }"
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}
	return "'" + label + ": "
}

type ForExpression struct {
	Token    token.Token
	Label    string
	Pattern  Pattern
	Iterable Expression
	Body     *BlockExpression
}

func (fe *ForExpression) expressionNode()       {}
func (fe *ForExpression) TokenLiteral() string  { return fe.Token.Lexeme }
func (fe *ForExpression) GetToken() token.Token { return fe.Token }
func (fe *ForExpression) String() string {
	return labelPrefix(fe.Label) + "for " + fe.Pattern.String() + " in " + fe.Iterable.String() + " " + fe.Body.String()
}

type WhileExpression struct {
	Token     token.Token
	Label     string
	Condition Expression
	Body      *BlockExpression
}

func (we *WhileExpression) expressionNode()       {}
func (we *WhileExpression) TokenLiteral() string  { return we.Token.Lexeme }
func (we *WhileExpression) GetToken() token.Token { return we.Token }
func (we *WhileExpression) String() string {
	return labelPrefix(we.Label) + "while " + we.Condition.String() + " " + we.Body.String()
}

// WhileLetExpression loops while the value matches the pattern.
type WhileLetExpression struct {
	Token   token.Token
	Label   string
	Pattern Pattern
	Value   Expression
	Body    *BlockExpression
}

func (we *WhileLetExpression) expressionNode()       {}
func (we *WhileLetExpression) TokenLiteral() string  { return we.Token.Lexeme }
func (we *WhileLetExpression) GetToken() token.Token { return we.Token }
func (we *WhileLetExpression) String() string {
	return labelPrefix(we.Label) + "while let " + we.Pattern.String() + " = " + we.Value.String() + " " + we.Body.String()
}

type LoopExpression struct {
	Token token.Token
	Label string
	Body  *BlockExpression
}

func (le *LoopExpression) expressionNode()       {}
func (le *LoopExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LoopExpression) GetToken() token.Token { return le.Token }
func (le *LoopExpression) String() string        { return labelPrefix(le.Label) + "loop " + le.Body.String() }

type BreakExpression struct {
	Token token.Token
	Label string
	Value Expression
}

func (be *BreakExpression) expressionNode()       {}
func (be *BreakExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BreakExpression) GetToken() token.Token { return be.Token }
func (be *BreakExpression) String() string {
	s := "break"
	if be.Label != "" {
		s += " '" + be.Label
	}
	if be.Value != nil {
		s += " " + be.Value.String()
	}
	return s
}

type ContinueExpression struct {
	Token token.Token
	Label string
}

func (ce *ContinueExpression) expressionNode()       {}
func (ce *ContinueExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *ContinueExpression) GetToken() token.Token { return ce.Token }
func (ce *ContinueExpression) String() string {
	if ce.Label != "" {
		return "continue '" + ce.Label
	}
	return "continue"
}

type ReturnExpression struct {
	Token token.Token
	Value Expression
}

func (re *ReturnExpression) expressionNode()       {}
func (re *ReturnExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *ReturnExpression) GetToken() token.Token { return re.Token }
func (re *ReturnExpression) String() string {
	if re.Value == nil {
		return "return"
	}
	return "return " + re.Value.String()
}

// PropagateExpression is the postfix ? operator.
type PropagateExpression struct {
	Token token.Token
	Value Expression
}

func (pe *PropagateExpression) expressionNode()       {}
func (pe *PropagateExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PropagateExpression) GetToken() token.Token { return pe.Token }
func (pe *PropagateExpression) String() string        { return pe.Value.String() + "?" }

type CatchClause struct {
	Token   token.Token
	Pattern Pattern
	Body    *BlockExpression
}

// TryExpression is try { } catch pat { } ... [finally { }].
type TryExpression struct {
	Token   token.Token
	Body    *BlockExpression
	Catches []*CatchClause
	Finally *BlockExpression
}

func (te *TryExpression) expressionNode()       {}
func (te *TryExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TryExpression) GetToken() token.Token { return te.Token }
func (te *TryExpression) String() string {
	s := "try " + te.Body.String()
	for _, c := range te.Catches {
		s += " catch " + c.Pattern.String() + " " + c.Body.String()
	}
	if te.Finally != nil {
		s += " finally " + te.Finally.String()
	}
	return s
}

type ThrowExpression struct {
	Token token.Token
	Value Expression
}

func (te *ThrowExpression) expressionNode()       {}
func (te *ThrowExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *ThrowExpression) GetToken() token.Token { return te.Token }
func (te *ThrowExpression) String() string        { return "throw " + te.Value.String() }
