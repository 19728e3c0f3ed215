package parser

import (
	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/token"
)

// parseExpressionList parses comma separated expressions up to end.
// curToken is the opening delimiter; on return curToken is end.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}
	p.skipNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	for {
		prev := p.noStructLiteral
		p.noStructLiteral = false
		expr := p.parseExpression(LOWEST)
		p.noStructLiteral = prev
		if expr == nil {
			return nil
		}
		list = append(list, expr)
		p.skipNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipNewlines()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// (), (e), (e,), (a, b, ...)
func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken
	p.skipNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.UnitLiteral{Token: tok}
	}
	p.nextToken()

	prev := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = prev }()

	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	p.skipNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return first
	}
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	tuple := &ast.TupleLiteral{Token: tok, Elements: []ast.Expression{first}}
	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			return tuple
		}
		p.nextToken()
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, elem)
		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return tuple
	}
}

// [a, b], [v; n], [e for x in xs if cond]
func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	p.skipNewlines()
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ArrayLiteral{Token: tok, Elements: []ast.Expression{}}
	}
	p.nextToken()

	prev := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = prev }()

	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}

	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
		p.nextToken()
		count := p.parseExpression(LOWEST)
		if count == nil || !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return &ast.ArrayRepeat{Token: tok, Value: first, Count: count}
	case p.peekTokenIs(token.FOR):
		return p.parseListComprehension(tok, first)
	}

	arr := &ast.ArrayLiteral{Token: tok, Elements: []ast.Expression{first}}
	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			return arr
		}
		if !p.expectPeek(token.COMMA) {
			return nil
		}
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			return arr
		}
		p.nextToken()
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, elem)
	}
}

func (p *Parser) parseListComprehension(tok token.Token, element ast.Expression) ast.Expression {
	lc := &ast.ListComprehension{Token: tok, Element: element}
	p.nextToken() // for
	p.nextToken()
	lc.Pattern = p.parsePattern()
	if lc.Pattern == nil || !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	lc.Iterable = p.parseExpression(LOWEST)
	if lc.Iterable == nil {
		return nil
	}
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		p.nextToken()
		lc.Condition = p.parseExpression(LOWEST)
		if lc.Condition == nil {
			return nil
		}
	}
	p.skipNewlines()
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return lc
}

// looksLikeObject reports whether the '{' at curToken opens an object
// literal: `{}` or `{ key: ...`.
func (p *Parser) looksLikeObject(emptyIsObject bool) bool {
	next := p.peekPastNewlines()
	if next.Type == token.RBRACE {
		return emptyIsObject
	}
	if next.Type != token.IDENT && next.Type != token.STRING {
		return false
	}
	// find the token after `next`
	var after token.Token
	if p.peekTokenIs(token.NEWLINE) {
		seen := false
		for _, tok := range p.stream.Peek(64) {
			if tok.Type == token.NEWLINE {
				continue
			}
			if !seen {
				seen = true
				continue
			}
			after = tok
			break
		}
	} else if toks := p.stream.Peek(1); len(toks) > 0 {
		after = toks[0]
	}
	return after.Type == token.COLON
}

func (p *Parser) parseBraceExpression() ast.Expression {
	if p.looksLikeObject(true) {
		return p.parseObjectLiteral()
	}
	prev := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = prev }()
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return block
}

// parseBodyExpression is used for match arm and closure bodies, where a
// bare `{}` is an empty block rather than an empty object.
func (p *Parser) parseBodyExpression() ast.Expression {
	if p.curTokenIs(token.LBRACE) && !p.looksLikeObject(false) {
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		return block
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{Token: p.curToken}
	keys, values, ok := p.parseFieldInits(false)
	if !ok {
		return nil
	}
	obj.Keys, obj.Values = keys, values
	return obj
}

func (p *Parser) parseStructLiteral(name *ast.Identifier) ast.Expression {
	sl := &ast.StructLiteral{Token: name.Token, Name: name.Value}
	keys, values, ok := p.parseFieldInits(true)
	if !ok {
		return nil
	}
	sl.Keys, sl.Values = keys, values
	return sl
}

// parseFieldInits parses `key: value, ...}`; curToken is '{'. Shorthand
// `{ x }` (meaning x: x) is allowed for struct literals.
func (p *Parser) parseFieldInits(allowShorthand bool) ([]string, []ast.Expression, bool) {
	var keys []string
	var values []ast.Expression
	prev := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = prev }()

	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return keys, values, true
		}
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.STRING) {
			p.addError(diagnostics.ErrP001, p.curToken, "expected field name, got '%s'", p.curToken.Lexeme)
			return nil, nil, false
		}
		keyTok := p.curToken
		key := keyTok.Lexeme
		if keyTok.Type == token.STRING {
			key = keyTok.Literal.(string)
		}
		for _, k := range keys {
			if k == key {
				p.addError(diagnostics.ErrP001, keyTok, "duplicate field '%s'", key)
				return nil, nil, false
			}
		}

		var value ast.Expression
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			p.skipCurNewlines()
			value = p.parseExpression(LOWEST)
			if value == nil {
				return nil, nil, false
			}
		} else if allowShorthand && keyTok.Type == token.IDENT {
			value = &ast.Identifier{Token: keyTok, Value: key}
		} else {
			p.peekError(token.COLON)
			return nil, nil, false
		}
		keys = append(keys, key)
		values = append(values, value)

		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
			return nil, nil, false
		}
	}
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	prev := p.noStructLiteral
	p.noStructLiteral = false
	exp.Index = p.parseExpression(LOWEST)
	p.noStructLiteral = prev
	if exp.Index == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

// a.b, a.0, a.m(args)
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	dot := p.curToken
	p.nextToken()
	switch {
	case p.curTokenIs(token.INT):
		return &ast.FieldExpression{Token: dot, Left: left, Field: p.curToken.Lexeme}
	case p.curTokenIs(token.IDENT) || token.IsKeyword(p.curToken.Lexeme):
	default:
		p.addError(diagnostics.ErrP002, p.curToken, "expected field or method name after '.', got '%s'", p.curToken.Lexeme)
		return nil
	}
	name := p.curToken.Lexeme
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		mc := &ast.MethodCallExpression{Token: dot, Receiver: left, Method: name}
		mc.Arguments = p.parseExpressionList(token.RPAREN)
		if mc.Arguments == nil {
			return nil
		}
		return mc
	}
	return &ast.FieldExpression{Token: dot, Left: left, Field: name}
}
