package lexer

import "github.com/ruchy-lang/ruchy/internal/token"

// TokenStream buffers the lexer output so the parser can look ahead past
// newlines.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// NewTokenStream drains l into a buffered stream. The stream always ends
// with a single EOF token.
func NewTokenStream(l *Lexer) *TokenStream {
	ts := &TokenStream{}
	for {
		tok := l.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ts
}

func (ts *TokenStream) Next() token.Token {
	tok := ts.tokens[ts.pos]
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

// Peek returns up to n upcoming tokens without consuming them.
func (ts *TokenStream) Peek(n int) []token.Token {
	end := ts.pos + n
	if end > len(ts.tokens) {
		end = len(ts.tokens)
	}
	return ts.tokens[ts.pos:end]
}

// Tokens returns every token in the stream, EOF included.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}
