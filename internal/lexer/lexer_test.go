package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ruchy-lang/ruchy/internal/token"
)

func tokenTypes(input string) []token.TokenType {
	l := New(input)
	var out []token.TokenType
	for {
		tok := l.NextToken()
		out = append(out, tok.Type)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.TokenType
	}{
		{"x += 10", []token.TokenType{token.IDENT, token.PLUS_ASSIGN, token.INT, token.EOF}},
		{"a ** b", []token.TokenType{token.IDENT, token.POWER, token.IDENT, token.EOF}},
		{"0..=9", []token.TokenType{token.INT, token.DOT_DOT_EQ, token.INT, token.EOF}},
		{"x |> f", []token.TokenType{token.IDENT, token.PIPE_GT, token.IDENT, token.EOF}},
		{"a ?? b", []token.TokenType{token.IDENT, token.NULL_COALESCE, token.IDENT, token.EOF}},
		{"f()?", []token.TokenType{token.IDENT, token.LPAREN, token.RPAREN, token.QUESTION, token.EOF}},
		{"P::new", []token.TokenType{token.IDENT, token.COLON_COLON, token.IDENT, token.EOF}},
		{"_ => 1", []token.TokenType{token.UNDERSCORE, token.FAT_ARROW, token.INT, token.EOF}},
		{"a || b && c", []token.TokenType{token.IDENT, token.OR, token.IDENT, token.AND, token.IDENT, token.EOF}},
		{"1 << 2 >> 3", []token.TokenType{token.INT, token.LSHIFT, token.INT, token.RSHIFT, token.INT, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, tokenTypes(tt.input)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	got := tokenTypes("let mut fun match loop break")
	want := []token.TokenType{token.LET, token.MUT, token.FUN, token.MATCH, token.LOOP, token.BREAK, token.EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		typ     token.TokenType
		literal interface{}
	}{
		{"int", "42", token.INT, int64(42)},
		{"string escapes", `"a\nb"`, token.STRING, "a\nb"},
		{"char", "'x'", token.STRING, "x"},
		{"label", "'outer", token.LABEL, "outer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.typ {
				t.Fatalf("expected %s, got %s", tt.typ, tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Errorf("expected literal %#v, got %#v", tt.literal, tok.Literal)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	l := New("a\n  b")
	first := l.NextToken()
	if first.Line != 1 {
		t.Errorf("expected line 1, got %d", first.Line)
	}
	if nl := l.NextToken(); nl.Type != token.NEWLINE {
		t.Fatalf("expected NEWLINE, got %s", nl.Type)
	}
	second := l.NextToken()
	if second.Line != 2 || second.Column != 3 {
		t.Errorf("expected 2:3, got %d:%d", second.Line, second.Column)
	}
}

func TestUnterminatedString(t *testing.T) {
	tok := New(`"abc`).NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("expected ILLEGAL, got %s", tok.Type)
	}
}
