package parser

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/token"
)

// parsePattern parses a full pattern including `a | b` alternatives.
// curToken is the first token; on return curToken is the last token of
// the pattern.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePrimaryPattern()
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(token.PIPE) {
		return first
	}

	or := &ast.OrPattern{Token: first.GetToken(), Alternatives: []ast.Pattern{first}}
	for p.peekTokenIs(token.PIPE) {
		p.nextToken()
		p.nextToken()
		alt := p.parsePrimaryPattern()
		if alt == nil {
			return nil
		}
		or.Alternatives = append(or.Alternatives, alt)
	}

	want := ast.PatternBindings(first)
	for _, alt := range or.Alternatives[1:] {
		got := ast.PatternBindings(alt)
		if strings.Join(got, ",") != strings.Join(want, ",") {
			p.addError(diagnostics.ErrP010, alt.GetToken(),
				"or-pattern alternatives must bind the same names: [%s] vs [%s]",
				strings.Join(want, ", "), strings.Join(got, ", "))
			return nil
		}
	}
	return or
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	tok := p.curToken
	switch tok.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: tok}

	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		return p.parseLiteralOrRangePattern(p.literalExpression())

	case token.MINUS:
		if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
			p.addError(diagnostics.ErrP005, tok, "expected number after '-' in pattern")
			return nil
		}
		p.nextToken()
		neg := &ast.PrefixExpression{Token: tok, Operator: "-", Right: p.literalExpression()}
		return p.parseLiteralOrRangePattern(neg)

	case token.MUT:
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		return &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme, Mutable: true}

	case token.SOME, token.OK, token.ERR:
		cp := &ast.ConstructorPattern{Token: tok, Name: tok.Lexeme}
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		args := p.parsePatternList(token.RPAREN)
		if args == nil {
			return nil
		}
		if len(args) != 1 {
			p.addError(diagnostics.ErrP005, tok, "%s pattern takes exactly one argument", tok.Lexeme)
			return nil
		}
		cp.Args = args
		return cp

	case token.NONE:
		return &ast.ConstructorPattern{Token: tok, Name: "None"}

	case token.IDENT:
		return p.parseIdentPattern()

	case token.LPAREN:
		return p.parseParenPattern()

	case token.LBRACKET:
		lp := &ast.ListPattern{Token: tok}
		lp.Elements = p.parsePatternList(token.RBRACKET)
		if lp.Elements == nil {
			return nil
		}
		return lp

	case token.LBRACE:
		return p.parseStructPatternBody(tok, "")

	case token.DOT_DOT:
		rp := &ast.RestPattern{Token: tok}
		if p.peekTokenIs(token.IDENT) {
			p.nextToken()
			rp.Name = p.curToken.Lexeme
		}
		return rp
	}

	if tok.Type == token.EOF {
		p.addError(diagnostics.ErrP005, tok, "expected pattern, got end of input")
	} else {
		p.addError(diagnostics.ErrP005, tok, "expected pattern, got '%s'", tok.Lexeme)
	}
	return nil
}

func (p *Parser) literalExpression() ast.Expression {
	switch p.curToken.Type {
	case token.INT:
		return p.parseIntegerLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	default:
		return p.parseBoolean()
	}
}

func (p *Parser) parseLiteralOrRangePattern(start ast.Expression) ast.Pattern {
	tok := start.GetToken()
	if !p.peekTokenIs(token.DOT_DOT) && !p.peekTokenIs(token.DOT_DOT_EQ) {
		return &ast.LiteralPattern{Token: tok, Value: start}
	}
	p.nextToken()
	rp := &ast.RangePattern{Token: tok, Start: start, Inclusive: p.curTokenIs(token.DOT_DOT_EQ)}
	p.nextToken()
	var end ast.Expression
	switch p.curToken.Type {
	case token.INT, token.FLOAT, token.STRING:
		end = p.literalExpression()
	case token.MINUS:
		minus := p.curToken
		p.nextToken()
		if !p.curTokenIs(token.INT) && !p.curTokenIs(token.FLOAT) {
			p.addError(diagnostics.ErrP005, p.curToken, "expected number in range pattern")
			return nil
		}
		end = &ast.PrefixExpression{Token: minus, Operator: "-", Right: p.literalExpression()}
	default:
		p.addError(diagnostics.ErrP005, p.curToken, "expected literal bound in range pattern, got '%s'", p.curToken.Lexeme)
		return nil
	}
	rp.End = end
	return rp
}

// x, Variant, Variant(p), Enum::Variant(p), Name { fields }
func (p *Parser) parseIdentPattern() ast.Pattern {
	tok := p.curToken
	name := tok.Lexeme

	if p.peekTokenIs(token.COLON_COLON) {
		p.nextToken()
		p.nextToken()
		cp := &ast.ConstructorPattern{Token: tok, Type: name, Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			cp.Args = p.parsePatternList(token.RPAREN)
			if cp.Args == nil {
				return nil
			}
		}
		return cp
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		cp := &ast.ConstructorPattern{Token: tok, Name: name}
		cp.Args = p.parsePatternList(token.RPAREN)
		if cp.Args == nil {
			return nil
		}
		return cp
	}
	if isUpper(name) {
		if p.peekTokenIs(token.LBRACE) && !p.noStructLiteral {
			p.nextToken()
			return p.parseStructPatternBody(tok, name)
		}
		// capitalised bare names are unit variants, not bindings
		return &ast.ConstructorPattern{Token: tok, Name: name}
	}
	return &ast.IdentifierPattern{Token: tok, Name: name}
}

// (), (p), (p,), (a, b), (p if guard)
func (p *Parser) parseParenPattern() ast.Pattern {
	tok := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.LiteralPattern{Token: tok, Value: &ast.UnitLiteral{Token: tok}}
	}
	p.nextToken()
	first := p.parsePattern()
	if first == nil {
		return nil
	}

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		p.nextToken()
		guard := p.parseExpression(LOWEST)
		if guard == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.GuardPattern{Token: tok, Pattern: first, Guard: guard}
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if _, isRest := first.(*ast.RestPattern); isRest {
			return &ast.TuplePattern{Token: tok, Elements: []ast.Pattern{first}}
		}
		return first
	}
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	tp := &ast.TuplePattern{Token: tok, Elements: []ast.Pattern{first}}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return tp
	}
	rest := p.parsePatternList(token.RPAREN)
	if rest == nil {
		return nil
	}
	tp.Elements = append(tp.Elements, rest...)
	if err := checkSingleRest(tp.Elements); err != nil {
		p.addError(diagnostics.ErrP005, tok, "%s", err.Error())
		return nil
	}
	return tp
}

type patternError string

func (e patternError) Error() string { return string(e) }

func checkSingleRest(elems []ast.Pattern) error {
	count := 0
	for _, e := range elems {
		if _, ok := e.(*ast.RestPattern); ok {
			count++
		}
	}
	if count > 1 {
		return patternError("at most one rest pattern is allowed in a sequence")
	}
	return nil
}

// parsePatternList parses patterns separated by commas until end.
// curToken is the opening delimiter, or for tuple continuation the comma
// before the next element. On return curToken is end.
func (p *Parser) parsePatternList(end token.TokenType) []ast.Pattern {
	list := []ast.Pattern{}
	open := p.curToken
	p.skipNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	for {
		pat := p.parsePattern()
		if pat == nil {
			return nil
		}
		list = append(list, pat)
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
	if err := checkSingleRest(list); err != nil {
		p.addError(diagnostics.ErrP005, open, "%s", err.Error())
		return nil
	}
	return list
}

// parseStructPatternBody parses `{ a, b: pat, .. }`; curToken is '{'.
// A trailing `!..` closes the pattern so unlisted fields fail the match.
func (p *Parser) parseStructPatternBody(tok token.Token, name string) ast.Pattern {
	sp := &ast.StructPattern{Token: tok, Name: name}
	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return sp
		}
		p.nextToken()
		switch {
		case p.curTokenIs(token.DOT_DOT):
			// explicit open marker; open is the default
		case p.curTokenIs(token.BANG) && p.peekTokenIs(token.DOT_DOT):
			p.nextToken()
			sp.Closed = true
		case p.curTokenIs(token.IDENT):
			field := &ast.FieldPattern{Name: p.curToken.Lexeme}
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				field.Pattern = p.parsePattern()
				if field.Pattern == nil {
					return nil
				}
			}
			sp.Fields = append(sp.Fields, field)
		case p.curTokenIs(token.MUT) && p.peekTokenIs(token.IDENT):
			p.nextToken()
			field := &ast.FieldPattern{Name: p.curToken.Lexeme}
			field.Pattern = &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme, Mutable: true}
			sp.Fields = append(sp.Fields, field)
		default:
			p.addError(diagnostics.ErrP005, p.curToken, "expected field name in struct pattern, got '%s'", p.curToken.Lexeme)
			return nil
		}
		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
			return nil
		}
	}
}
