package parser

import (
	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/token"
)

// parseHead parses a condition / subject / iterable where `Name {` must
// not be read as a struct literal.
func (p *Parser) parseHead() ast.Expression {
	prev := p.noStructLiteral
	p.noStructLiteral = true
	defer func() { p.noStructLiteral = prev }()
	return p.parseExpression(LOWEST)
}

// peekKeywordPastNewlines consumes newlines only if the next real token is t.
func (p *Parser) peekKeywordPastNewlines(t token.TokenType) bool {
	if p.peekPastNewlines().Type != t {
		return false
	}
	p.skipNewlines()
	return true
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.curToken
	p.nextToken() // consume 'if'

	if p.curTokenIs(token.LET) {
		expr := &ast.IfLetExpression{Token: tok}
		p.nextToken()
		expr.Pattern = p.parsePattern()
		if expr.Pattern == nil || !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		expr.Value = p.parseHead()
		if expr.Value == nil || !p.expectPeek(token.LBRACE) {
			return nil
		}
		expr.Consequence = p.parseBlock()
		if expr.Consequence == nil {
			return nil
		}
		alt, ok := p.parseElse()
		if !ok {
			return nil
		}
		expr.Alternative = alt
		return expr
	}

	expr := &ast.IfExpression{Token: tok}
	expr.Condition = p.parseHead()
	if expr.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Consequence = p.parseBlock()
	if expr.Consequence == nil {
		return nil
	}
	alt, ok := p.parseElse()
	if !ok {
		return nil
	}
	expr.Alternative = alt
	return expr
}

func (p *Parser) parseElse() (ast.Expression, bool) {
	if !p.peekKeywordPastNewlines(token.ELSE) {
		return nil, true
	}
	p.nextToken() // else
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		alt := p.parseIfExpression()
		return alt, alt != nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, false
	}
	block := p.parseBlock()
	if block == nil {
		return nil, false
	}
	return block, true
}

// match subject { pattern [if guard] => body, ... }
func (p *Parser) parseMatchExpression() ast.Expression {
	expr := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	expr.Subject = p.parseHead()
	if expr.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}

	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			break
		}
		p.nextToken()
		arm := &ast.MatchArm{Token: p.curToken}
		arm.Pattern = p.parsePattern()
		if arm.Pattern == nil {
			return nil
		}
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			arm.Guard = p.parseExpression(LOWEST)
			if arm.Guard == nil {
				return nil
			}
		}
		if !p.expectPeek(token.FAT_ARROW) {
			return nil
		}
		p.nextToken()
		p.skipCurNewlines()
		arm.Body = p.parseBodyExpression()
		if arm.Body == nil {
			return nil
		}
		expr.Arms = append(expr.Arms, arm)

		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
	}
	return expr
}

// 'label: loop { } / while / for
func (p *Parser) parseLabeledLoop() ast.Expression {
	label := p.curToken.Literal.(string)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	var expr ast.Expression
	switch p.curToken.Type {
	case token.LOOP:
		expr = p.parseLoopExpression()
		if l, ok := expr.(*ast.LoopExpression); ok {
			l.Label = label
		}
	case token.WHILE:
		expr = p.parseWhileExpression()
		switch w := expr.(type) {
		case *ast.WhileExpression:
			w.Label = label
		case *ast.WhileLetExpression:
			w.Label = label
		}
	case token.FOR:
		expr = p.parseForExpression()
		if f, ok := expr.(*ast.ForExpression); ok {
			f.Label = label
		}
	default:
		p.addError(diagnostics.ErrP006, p.curToken, "label '%s must be followed by a loop", label)
		return nil
	}
	return expr
}

func (p *Parser) parseForExpression() ast.Expression {
	expr := &ast.ForExpression{Token: p.curToken}
	p.nextToken()
	expr.Pattern = p.parsePattern()
	if expr.Pattern == nil || !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	expr.Iterable = p.parseHead()
	if expr.Iterable == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Body = p.parseBlock()
	if expr.Body == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseWhileExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	if p.curTokenIs(token.LET) {
		expr := &ast.WhileLetExpression{Token: tok}
		p.nextToken()
		expr.Pattern = p.parsePattern()
		if expr.Pattern == nil || !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		expr.Value = p.parseHead()
		if expr.Value == nil || !p.expectPeek(token.LBRACE) {
			return nil
		}
		expr.Body = p.parseBlock()
		if expr.Body == nil {
			return nil
		}
		return expr
	}
	expr := &ast.WhileExpression{Token: tok}
	expr.Condition = p.parseHead()
	if expr.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Body = p.parseBlock()
	if expr.Body == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseLoopExpression() ast.Expression {
	expr := &ast.LoopExpression{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Body = p.parseBlock()
	if expr.Body == nil {
		return nil
	}
	return expr
}

// valueFollows reports whether the token after break/return starts an
// operand rather than ending the statement.
func (p *Parser) valueFollows() bool {
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.RPAREN, token.RBRACKET,
		token.COMMA, token.EOF:
		return false
	}
	return true
}

func (p *Parser) parseBreakExpression() ast.Expression {
	expr := &ast.BreakExpression{Token: p.curToken}
	if p.peekTokenIs(token.LABEL) {
		p.nextToken()
		expr.Label = p.curToken.Literal.(string)
	}
	if p.valueFollows() {
		p.nextToken()
		expr.Value = p.parseExpression(LOWEST)
		if expr.Value == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseContinueExpression() ast.Expression {
	expr := &ast.ContinueExpression{Token: p.curToken}
	if p.peekTokenIs(token.LABEL) {
		p.nextToken()
		expr.Label = p.curToken.Literal.(string)
	}
	return expr
}

func (p *Parser) parseReturnExpression() ast.Expression {
	expr := &ast.ReturnExpression{Token: p.curToken}
	if p.valueFollows() {
		p.nextToken()
		expr.Value = p.parseExpression(LOWEST)
		if expr.Value == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseThrowExpression() ast.Expression {
	expr := &ast.ThrowExpression{Token: p.curToken}
	p.nextToken()
	expr.Value = p.parseExpression(LOWEST)
	if expr.Value == nil {
		return nil
	}
	return expr
}

// try { } catch pat { } ... [finally { }]
func (p *Parser) parseTryExpression() ast.Expression {
	expr := &ast.TryExpression{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Body = p.parseBlock()
	if expr.Body == nil {
		return nil
	}

	for p.peekKeywordPastNewlines(token.CATCH) {
		p.nextToken()
		clause := &ast.CatchClause{Token: p.curToken}
		if p.peekTokenIs(token.LBRACE) {
			clause.Pattern = &ast.WildcardPattern{Token: p.curToken}
		} else {
			p.nextToken()
			prev := p.noStructLiteral
			p.noStructLiteral = true
			clause.Pattern = p.parsePattern()
			p.noStructLiteral = prev
			if clause.Pattern == nil {
				return nil
			}
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		clause.Body = p.parseBlock()
		if clause.Body == nil {
			return nil
		}
		expr.Catches = append(expr.Catches, clause)
	}

	if p.peekKeywordPastNewlines(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		expr.Finally = p.parseBlock()
		if expr.Finally == nil {
			return nil
		}
	}

	if len(expr.Catches) == 0 && expr.Finally == nil {
		p.addError(diagnostics.ErrP002, p.peekToken, "expected 'catch' or 'finally' after try block")
		return nil
	}
	return expr
}

// fun (params) { body } in expression position.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.curToken.Lexeme
	}
	if !p.parseFunctionSignatureAndBody(fn) {
		return nil
	}
	return fn
}

// |a, b| body and || body
func (p *Parser) parseLambda() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken, IsLambda: true}
	if p.curTokenIs(token.PIPE) {
		params, ok := p.parseParameters(token.PIPE)
		if !ok {
			return nil
		}
		fn.Parameters = params
	}
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
	}
	p.nextToken()
	p.skipCurNewlines()

	body := p.parseBodyExpression()
	if body == nil {
		return nil
	}
	if block, ok := body.(*ast.BlockExpression); ok {
		fn.Body = block
	} else {
		fn.Body = &ast.BlockExpression{
			Token:      body.GetToken(),
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: body.GetToken(), Expression: body}},
		}
	}
	return fn
}
