package parser

import (
	"unicode"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
	"github.com/ruchy-lang/ruchy/internal/token"
)

// MaxRecursionDepth bounds nested expression parsing.
const MaxRecursionDepth = 1000

const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -=
	PIPELINE    // |>
	COALESCE    // ??
	RANGE       // .. ..=
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // > < >= <=
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	CAST        // as
	PREFIX      // -x !x
	POWER       // **
	POSTFIX     // f(x) a[i] a.b x?
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:          ASSIGN,
	token.PLUS_ASSIGN:     ASSIGN,
	token.MINUS_ASSIGN:    ASSIGN,
	token.ASTERISK_ASSIGN: ASSIGN,
	token.SLASH_ASSIGN:    ASSIGN,
	token.PERCENT_ASSIGN:  ASSIGN,
	token.PIPE_GT:         PIPELINE,
	token.NULL_COALESCE:   COALESCE,
	token.DOT_DOT:         RANGE,
	token.DOT_DOT_EQ:      RANGE,
	token.OR:              LOGIC_OR,
	token.AND:             LOGIC_AND,
	token.EQ:              EQUALS,
	token.NOT_EQ:          EQUALS,
	token.LT:              LESSGREATER,
	token.GT:              LESSGREATER,
	token.LTE:             LESSGREATER,
	token.GTE:             LESSGREATER,
	token.PIPE:            BIT_OR,
	token.CARET:           BIT_XOR,
	token.AMPERSAND:       BIT_AND,
	token.LSHIFT:          SHIFT,
	token.RSHIFT:          SHIFT,
	token.PLUS:            SUM,
	token.MINUS:           SUM,
	token.ASTERISK:        PRODUCT,
	token.SLASH:           PRODUCT,
	token.PERCENT:         PRODUCT,
	token.AS:              CAST,
	token.POWER:           POWER,
	token.LPAREN:          POSTFIX,
	token.LBRACKET:        POSTFIX,
	token.DOT:             POSTFIX,
	token.QUESTION:        POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth int
	// noStructLiteral is set while parsing if/while/match/for heads, where
	// `Name {` opens the body rather than a struct literal.
	noStructLiteral bool
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:      p.parseIdentifier,
		token.SOME:       p.parseConstructorName,
		token.NONE:       p.parseConstructorName,
		token.OK:         p.parseConstructorName,
		token.ERR:        p.parseConstructorName,
		token.INT:        p.parseIntegerLiteral,
		token.FLOAT:      p.parseFloatLiteral,
		token.STRING:     p.parseStringLiteral,
		token.FSTRING:    p.parseInterpolatedString,
		token.TRUE:       p.parseBoolean,
		token.FALSE:      p.parseBoolean,
		token.MINUS:      p.parsePrefixExpression,
		token.BANG:       p.parsePrefixExpression,
		token.TILDE:      p.parsePrefixExpression,
		token.LPAREN:     p.parseGroupedExpression,
		token.LBRACKET:   p.parseArrayLiteral,
		token.LBRACE:     p.parseBraceExpression,
		token.IF:         p.parseIfExpression,
		token.MATCH:      p.parseMatchExpression,
		token.FOR:        p.parseForExpression,
		token.WHILE:      p.parseWhileExpression,
		token.LOOP:       p.parseLoopExpression,
		token.LABEL:      p.parseLabeledLoop,
		token.BREAK:      p.parseBreakExpression,
		token.CONTINUE:   p.parseContinueExpression,
		token.RETURN:     p.parseReturnExpression,
		token.THROW:      p.parseThrowExpression,
		token.TRY:        p.parseTryExpression,
		token.FUN:        p.parseFunctionLiteral,
		token.PIPE:       p.parseLambda,
		token.OR:         p.parseLambda,
		token.DOT_DOT:    p.parseOpenRange,
		token.DOT_DOT_EQ: p.parseOpenRange,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE,
		token.AND, token.OR, token.PIPE, token.CARET, token.AMPERSAND,
		token.LSHIFT, token.RSHIFT, token.PIPE_GT, token.NULL_COALESCE,
	} {
		p.infixParseFns[t] = p.parseInfixExpression
	}
	p.infixParseFns[token.POWER] = p.parsePowerExpression
	for _, t := range []token.TokenType{
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN,
		token.ASTERISK_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN,
	} {
		p.infixParseFns[t] = p.parseAssignExpression
	}
	p.infixParseFns[token.DOT_DOT] = p.parseRangeExpression
	p.infixParseFns[token.DOT_DOT_EQ] = p.parseRangeExpression
	p.infixParseFns[token.LPAREN] = p.parseCallExpression
	p.infixParseFns[token.LBRACKET] = p.parseIndexExpression
	p.infixParseFns[token.DOT] = p.parseDotExpression
	p.infixParseFns[token.QUESTION] = p.parsePropagateExpression
	p.infixParseFns[token.AS] = p.parseCastExpression

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) skipNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// peekPastNewlines returns the first token after peekToken that is not a
// newline, without consuming anything.
func (p *Parser) peekPastNewlines() token.Token {
	if !p.peekTokenIs(token.NEWLINE) {
		return p.peekToken
	}
	for _, tok := range p.stream.Peek(64) {
		if tok.Type != token.NEWLINE {
			return tok
		}
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	if tok.Type == token.EOF {
		p.ctx.Incomplete = true
	}
	err := diagnostics.NewError(code, tok, format, args...)
	err.File = p.ctx.FilePath
	p.ctx.Errors = append(p.ctx.Errors, err)
}

func (p *Parser) peekError(t token.TokenType) {
	if p.peekToken.Type == token.EOF {
		p.addError(diagnostics.ErrP002, p.peekToken, "expected '%s', got end of input", t)
		return
	}
	p.addError(diagnostics.ErrP002, p.peekToken, "expected '%s', got '%s'", t, p.peekToken.Lexeme)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.EOF {
		p.addError(diagnostics.ErrP003, tok, "unexpected end of input")
		return
	}
	p.addError(diagnostics.ErrP003, tok, "unexpected '%s'", tok.Lexeme)
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if !p.endStatement() {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
	return program
}

// endStatement verifies that the statement just parsed is followed by a
// separator. It does not consume the separator.
func (p *Parser) endStatement() bool {
	if p.curTokenIs(token.SEMICOLON) {
		return true
	}
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	if len(p.ctx.Errors) == 0 {
		p.addError(diagnostics.ErrP001, p.peekToken, "unexpected '%s' after statement", p.peekToken.Lexeme)
	}
	return false
}

func (p *Parser) skipToStatementBoundary() {
	for !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.SEMICOLON) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
}

func isUpper(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
