package parser

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/lexer"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
	"github.com/ruchy-lang/ruchy/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.ErrP006, p.curToken, "expression too complex: recursion depth limit exceeded")
		p.skipToStatementBoundary()
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for {
		if p.peekTokenIs(token.NEWLINE) {
			// Method chains and pipelines may continue on the next line
			if !isContinuationOperator(p.peekPastNewlines().Type) {
				break
			}
			p.skipNewlines()
		}

		if precedence >= p.peekPrecedence() {
			break
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// isContinuationOperator returns true for operators that continue an
// expression across a line break. || is excluded: a line may start with a
// zero-parameter closure.
func isContinuationOperator(t token.TokenType) bool {
	switch t {
	case token.DOT, token.PIPE_GT, token.AND, token.NULL_COALESCE:
		return true
	}
	return false
}

func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON_COLON) {
		p.nextToken()
		p.nextToken()
		if p.curToken.Lexeme == "" || (!p.curTokenIs(token.IDENT) && !token.IsKeyword(p.curToken.Lexeme)) {
			p.addError(diagnostics.ErrP002, p.curToken, "expected name after '::'")
			return nil
		}
		return &ast.PathExpression{Token: ident.Token, Type: ident.Value, Member: p.curToken.Lexeme}
	}

	if isUpper(ident.Value) && p.peekTokenIs(token.LBRACE) && !p.noStructLiteral {
		p.nextToken()
		return p.parseStructLiteral(ident)
	}
	return ident
}

// Some, None, Ok and Err are ordinary prelude bindings in expression
// position.
func (p *Parser) parseConstructorName() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return &ast.IntegerLiteral{Token: p.curToken, Value: p.curToken.Literal.(int64)}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return &ast.FloatLiteral{Token: p.curToken, Value: p.curToken.Literal.(float64)}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	p.skipCurNewlines()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// ** is right-associative.
func (p *Parser) parsePowerExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{Token: p.curToken, Operator: "**", Left: left}
	p.nextToken()
	expression.Right = p.parseExpression(POWER - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.FieldExpression:
	default:
		p.addError(diagnostics.ErrP004, p.curToken, "cannot assign to %s", left.String())
		return nil
	}
	expr := &ast.AssignExpression{Token: p.curToken, Target: left, Operator: p.curToken.Lexeme}
	p.nextToken()
	p.skipCurNewlines()
	// right-associative: a = b = c
	expr.Value = p.parseExpression(LOWEST)
	if expr.Value == nil {
		return nil
	}
	return expr
}

// rangeEndFollows reports whether the token after a range operator ends
// the range (open upper bound).
func (p *Parser) rangeEndFollows() bool {
	switch p.peekToken.Type {
	case token.RBRACKET, token.RPAREN, token.COMMA, token.NEWLINE, token.SEMICOLON,
		token.RBRACE, token.EOF:
		return true
	case token.LBRACE:
		return p.noStructLiteral
	}
	return false
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expr := &ast.RangeExpression{Token: p.curToken, Start: left, Inclusive: p.curTokenIs(token.DOT_DOT_EQ)}
	if p.rangeEndFollows() {
		return expr
	}
	p.nextToken()
	expr.End = p.parseExpression(RANGE)
	if expr.End == nil {
		return nil
	}
	return expr
}

// ..end and .. in prefix position (slice bounds).
func (p *Parser) parseOpenRange() ast.Expression {
	expr := &ast.RangeExpression{Token: p.curToken, Inclusive: p.curTokenIs(token.DOT_DOT_EQ)}
	if p.rangeEndFollows() {
		return expr
	}
	p.nextToken()
	expr.End = p.parseExpression(RANGE)
	if expr.End == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePropagateExpression(left ast.Expression) ast.Expression {
	return &ast.PropagateExpression{Token: p.curToken, Value: left}
}

func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	expr := &ast.CastExpression{Token: p.curToken, Value: left}
	p.nextToken()
	expr.Type = p.parseType()
	return expr
}

// parseInterpolatedString splits an f-string body into literal segments and
// embedded expressions. {{ and }} are literal braces.
func (p *Parser) parseInterpolatedString() ast.Expression {
	tok := p.curToken
	body := tok.Literal.(string)
	result := &ast.InterpolatedString{Token: tok}

	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			result.Parts = append(result.Parts, &ast.StringLiteral{Token: tok, Value: text.String()})
			text.Reset()
		}
	}

	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '{' && i+1 < len(runes) && runes[i+1] == '{':
			text.WriteRune('{')
			i++
		case ch == '}' && i+1 < len(runes) && runes[i+1] == '}':
			text.WriteRune('}')
			i++
		case ch == '{':
			end := matchingBrace(runes, i)
			if end < 0 {
				p.addError(diagnostics.ErrP007, tok, "unclosed '{' in interpolated string")
				return nil
			}
			src := strings.TrimSpace(string(runes[i+1 : end]))
			if src == "" {
				p.addError(diagnostics.ErrP007, tok, "empty expression in interpolated string")
				return nil
			}
			expr := p.parseEmbeddedExpression(src, tok)
			if expr == nil {
				return nil
			}
			flush()
			result.Parts = append(result.Parts, expr)
			i = end
		default:
			text.WriteRune(ch)
		}
	}
	flush()
	return result
}

func matchingBrace(runes []rune, open int) int {
	depth := 0
	var quote rune
	for i := open; i < len(runes); i++ {
		ch := runes[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"':
			quote = ch
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseEmbeddedExpression parses the text of an interpolation hole with a
// fresh lexer. Diagnostics are reported at the f-string's position.
func (p *Parser) parseEmbeddedExpression(src string, at token.Token) ast.Expression {
	sub := &pipeline.PipelineContext{SourceCode: src, FilePath: p.ctx.FilePath}
	stream := lexer.NewTokenStream(lexer.New(src))
	embedded := New(stream, sub)
	expr := embedded.parseExpression(LOWEST)
	if len(sub.Errors) == 0 && !embedded.peekTokenIs(token.EOF) {
		embedded.addError(diagnostics.ErrP007, embedded.peekToken, "unexpected '%s'", embedded.peekToken.Lexeme)
	}
	for _, err := range sub.Errors {
		p.addError(diagnostics.ErrP007, at, "in interpolation {%s}: %s", src, err.Message)
	}
	if len(sub.Errors) > 0 {
		return nil
	}
	return expr
}
