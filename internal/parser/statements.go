package parser

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FUN:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
	case token.STRUCT:
		return p.parseStructStatement()
	case token.ENUM:
		return p.parseEnumStatement()
	case token.IMPL:
		return p.parseImplStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) consumeSemicolon() bool {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return true
	}
	return false
}

// let [mut] pattern [: Type] = value
func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}
	p.nextToken()

	if p.curTokenIs(token.MUT) {
		stmt.Mutable = true
		p.nextToken()
	}
	stmt.Pattern = p.parsePattern()
	if stmt.Pattern == nil {
		return nil
	}
	if ip, ok := stmt.Pattern.(*ast.IdentifierPattern); ok && stmt.Mutable {
		ip.Mutable = true
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.Type = p.parseType()
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	p.skipCurNewlines()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	stmt.Terminated = p.consumeSemicolon()
	return stmt
}

// skipCurNewlines advances while the current token is a newline.
func (p *Parser) skipCurNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	p.nextToken()
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	fn := &ast.FunctionLiteral{Token: stmt.Token, Name: stmt.Name.Value}
	if !p.parseFunctionSignatureAndBody(fn) {
		return nil
	}
	stmt.Function = fn
	return stmt
}

// parseFunctionSignatureAndBody expects curToken to be just before '(' (or
// a generic parameter list) and fills in parameters, return type and body.
func (p *Parser) parseFunctionSignatureAndBody(fn *ast.FunctionLiteral) bool {
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.skipGenericParams()
	}
	if !p.expectPeek(token.LPAREN) {
		return false
	}
	params, ok := p.parseParameters(token.RPAREN)
	if !ok {
		return false
	}
	fn.Parameters = params

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
	}
	if !p.expectPeek(token.LBRACE) {
		return false
	}
	fn.Body = p.parseBlock()
	return fn.Body != nil
}

// parseParameters parses a parameter list; curToken is the opening
// delimiter and end the closing one. On return curToken is end.
func (p *Parser) parseParameters(end token.TokenType) ([]*ast.Parameter, bool) {
	var params []*ast.Parameter
	p.skipNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return params, true
	}
	p.nextToken()
	for {
		// &self and &mut self read as self
		if p.curTokenIs(token.AMPERSAND) {
			p.nextToken()
			if p.curTokenIs(token.MUT) {
				p.nextToken()
			}
		}
		param := &ast.Parameter{}
		param.Pattern = p.parsePrimaryPattern()
		if param.Pattern == nil {
			return nil, false
		}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.Type = p.parseType()
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(BIT_OR)
		}
		params = append(params, param)

		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
			if p.peekTokenIs(end) {
				p.nextToken()
				return params, true
			}
			p.nextToken()
			continue
		}
		if !p.expectPeek(end) {
			return nil, false
		}
		return params, true
	}
}

// parseBlock parses { stmts }; curToken must be '{'. On return curToken
// is the closing '}'.
func (p *Parser) parseBlock() *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(diagnostics.ErrP002, p.curToken, "expected '}' to close block opened at %d:%d", block.Token.Line, block.Token.Column)
			return nil
		}
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		switch stmt.(type) {
		case *ast.StructStatement, *ast.EnumStatement, *ast.ImplStatement:
			p.addError(diagnostics.ErrP006, stmt.GetToken(), "'%s' declarations are only allowed at the top level", stmt.TokenLiteral())
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		if !p.endStatement() {
			return nil
		}
		p.nextToken()
	}
	return block
}

// struct Name[<T>] { field: Type [= default], ... }
func (p *Parser) parseStructStatement() ast.Statement {
	stmt := &ast.StructStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.skipGenericParams()
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			break
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		if p.curToken.Lexeme == "pub" && p.peekTokenIs(token.IDENT) {
			p.nextToken()
		}
		field := &ast.StructField{Name: p.curToken.Lexeme}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		field.Type = p.parseType()
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			field.Default = p.parseExpression(LOWEST)
		}
		stmt.Fields = append(stmt.Fields, field)
		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
			return nil
		}
	}
	return stmt
}

// enum Name[<T>] { A, B(Type, ...), ... }
func (p *Parser) parseEnumStatement() ast.Statement {
	stmt := &ast.EnumStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.skipGenericParams()
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for {
		p.skipNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			break
		}
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.SOME) && !p.curTokenIs(token.NONE) &&
			!p.curTokenIs(token.OK) && !p.curTokenIs(token.ERR) {
			p.addError(diagnostics.ErrP001, p.curToken, "expected variant name, got '%s'", p.curToken.Lexeme)
			return nil
		}
		variant := &ast.EnumVariant{Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			for !p.peekTokenIs(token.RPAREN) {
				p.nextToken()
				variant.Fields = append(variant.Fields, p.parseType())
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
				} else if !p.peekTokenIs(token.RPAREN) {
					p.peekError(token.RPAREN)
					return nil
				}
			}
			p.nextToken()
		}
		if p.peekTokenIs(token.ASSIGN) {
			// explicit discriminants are accepted and ignored
			p.nextToken()
			p.nextToken()
			p.parseExpression(LOWEST)
		}
		stmt.Variants = append(stmt.Variants, variant)
		p.skipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
			return nil
		}
	}
	return stmt
}

// impl Name { fun method(self, ...) { } ... }
func (p *Parser) parseImplStatement() ast.Statement {
	stmt := &ast.ImplStatement{Token: p.curToken}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.skipGenericParams()
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.TypeName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	// impl Trait for Type: methods attach to Type
	if p.peekTokenIs(token.FOR) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.TypeName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.skipGenericParams()
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for {
		p.nextToken()
		switch {
		case p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON):
			continue
		case p.curTokenIs(token.RBRACE):
			return stmt
		case p.curTokenIs(token.IDENT) && p.curToken.Lexeme == "pub":
			continue
		case p.curTokenIs(token.FUN) && p.peekTokenIs(token.IDENT):
			fs, ok := p.parseFunctionStatement().(*ast.FunctionStatement)
			if !ok || fs == nil {
				return nil
			}
			stmt.Methods = append(stmt.Methods, fs)
		default:
			p.addError(diagnostics.ErrP006, p.curToken, "only functions are allowed in impl blocks, got '%s'", p.curToken.Lexeme)
			return nil
		}
	}
}

// skipGenericParams consumes <...>; curToken must be '<'.
func (p *Parser) skipGenericParams() {
	depth := 1
	for depth > 0 && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		switch p.curToken.Type {
		case token.LT:
			depth++
		case token.GT:
			depth--
		case token.RSHIFT:
			depth -= 2
		}
	}
}

// parseType reads a type annotation starting at curToken and returns its
// source text. Types are recorded but never checked.
func (p *Parser) parseType() string {
	var sb strings.Builder
	switch p.curToken.Type {
	case token.AMPERSAND:
		sb.WriteString("&")
		if p.peekTokenIs(token.MUT) {
			p.nextToken()
			sb.WriteString("mut ")
		}
		p.nextToken()
		sb.WriteString(p.parseType())
		return sb.String()
	case token.LBRACKET:
		p.nextToken()
		sb.WriteString("[" + p.parseType())
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			p.nextToken()
			sb.WriteString("; " + p.curToken.Lexeme)
		}
		p.expectPeek(token.RBRACKET)
		sb.WriteString("]")
		return sb.String()
	case token.LPAREN:
		var parts []string
		for !p.peekTokenIs(token.RPAREN) && !p.peekTokenIs(token.EOF) {
			p.nextToken()
			parts = append(parts, p.parseType())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.nextToken()
		return "(" + strings.Join(parts, ", ") + ")"
	case token.FUN:
		sb.WriteString("fn(")
		if p.expectPeek(token.LPAREN) {
			var parts []string
			for !p.peekTokenIs(token.RPAREN) && !p.peekTokenIs(token.EOF) {
				p.nextToken()
				parts = append(parts, p.parseType())
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
				}
			}
			p.nextToken()
			sb.WriteString(strings.Join(parts, ", "))
		}
		sb.WriteString(")")
		if p.peekTokenIs(token.ARROW) {
			p.nextToken()
			p.nextToken()
			sb.WriteString(" -> " + p.parseType())
		}
		return sb.String()
	}

	sb.WriteString(p.curToken.Lexeme)
	for p.peekTokenIs(token.COLON_COLON) {
		p.nextToken()
		p.nextToken()
		sb.WriteString("::" + p.curToken.Lexeme)
	}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		var args []string
		for {
			p.nextToken()
			args = append(args, p.parseType())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if p.peekTokenIs(token.RSHIFT) {
			// Vec<Vec<T>>: close this list and leave one '>' for the caller
			p.peekToken.Type = token.GT
			p.peekToken.Lexeme = ">"
			p.peekToken.Column++
		} else {
			p.expectPeek(token.GT)
		}
		sb.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	return sb.String()
}
