package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ruchy-lang/ruchy/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
	last         token.TokenType
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

// NextToken scans the next token. Every token carries the line and column
// of its first character.
func (l *Lexer) NextToken() token.Token {
	tok := l.scan()
	l.last = tok.Type
	return tok
}

func (l *Lexer) scan() token.Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	op := func(t token.TokenType, lexeme string) token.Token {
		for i := 0; i < utf8.RuneCountInString(lexeme); i++ {
			l.readChar()
		}
		return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
	}
	peek := l.peekChar()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case '\n':
		return op(token.NEWLINE, "\n")
	case '=':
		switch peek {
		case '=':
			return op(token.EQ, "==")
		case '>':
			return op(token.FAT_ARROW, "=>")
		}
		return op(token.ASSIGN, "=")
	case '+':
		if peek == '=' {
			return op(token.PLUS_ASSIGN, "+=")
		}
		return op(token.PLUS, "+")
	case '-':
		switch peek {
		case '>':
			return op(token.ARROW, "->")
		case '=':
			return op(token.MINUS_ASSIGN, "-=")
		}
		return op(token.MINUS, "-")
	case '*':
		switch peek {
		case '*':
			return op(token.POWER, "**")
		case '=':
			return op(token.ASTERISK_ASSIGN, "*=")
		}
		return op(token.ASTERISK, "*")
	case '/':
		if peek == '=' {
			return op(token.SLASH_ASSIGN, "/=")
		}
		return op(token.SLASH, "/")
	case '%':
		if peek == '=' {
			return op(token.PERCENT_ASSIGN, "%=")
		}
		return op(token.PERCENT, "%")
	case '!':
		if peek == '=' {
			return op(token.NOT_EQ, "!=")
		}
		return op(token.BANG, "!")
	case '<':
		switch peek {
		case '=':
			return op(token.LTE, "<=")
		case '<':
			return op(token.LSHIFT, "<<")
		}
		return op(token.LT, "<")
	case '>':
		switch peek {
		case '=':
			return op(token.GTE, ">=")
		case '>':
			return op(token.RSHIFT, ">>")
		}
		return op(token.GT, ">")
	case '&':
		if peek == '&' {
			return op(token.AND, "&&")
		}
		return op(token.AMPERSAND, "&")
	case '|':
		switch peek {
		case '|':
			return op(token.OR, "||")
		case '>':
			return op(token.PIPE_GT, "|>")
		}
		return op(token.PIPE, "|")
	case '^':
		return op(token.CARET, "^")
	case '~':
		return op(token.TILDE, "~")
	case '?':
		if peek == '?' {
			return op(token.NULL_COALESCE, "??")
		}
		return op(token.QUESTION, "?")
	case '.':
		if peek == '.' {
			if l.peekChar2() == '=' {
				return op(token.DOT_DOT_EQ, "..=")
			}
			return op(token.DOT_DOT, "..")
		}
		return op(token.DOT, ".")
	case ':':
		if peek == ':' {
			return op(token.COLON_COLON, "::")
		}
		return op(token.COLON, ":")
	case ',':
		return op(token.COMMA, ",")
	case ';':
		return op(token.SEMICOLON, ";")
	case '(':
		return op(token.LPAREN, "(")
	case ')':
		return op(token.RPAREN, ")")
	case '{':
		return op(token.LBRACE, "{")
	case '}':
		return op(token.RBRACE, "}")
	case '[':
		return op(token.LBRACKET, "[")
	case ']':
		return op(token.RBRACKET, "]")
	case '"':
		start := l.position
		s, ok := l.readString()
		lexeme := l.input[start:min(l.position, len(l.input))]
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "unterminated string", Line: line, Column: col}
		}
		return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: s, Line: line, Column: col}
	case '\'':
		return l.readQuote(line, col)
	}

	if l.ch == 'f' && peek == '"' {
		l.readChar()
		start := l.position
		s, ok := l.readInterpolated()
		lexeme := "f" + l.input[start:min(l.position, len(l.input))]
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "unterminated string", Line: line, Column: col}
		}
		return token.Token{Type: token.FSTRING, Lexeme: lexeme, Literal: s, Line: line, Column: col}
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
	}

	if isDigit(l.ch) {
		return l.readNumber(line, col)
	}

	ch := l.ch
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Lexeme: string(ch), Literal: "illegal character " + strconv.QuoteRune(ch), Line: line, Column: col}
}

// readString consumes a double-quoted string starting at the opening quote
// and leaves l.ch just past the closing quote.
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), false
		case '"':
			l.readChar()
			return sb.String(), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return sb.String(), false
			}
			sb.WriteRune(unescape(l.ch))
		default:
			sb.WriteRune(l.ch)
		}
	}
}

// readInterpolated reads an f-string body. Escapes are decoded in text
// segments; text between braces is kept verbatim (including nested string
// literals) so the parser can re-lex it as an expression.
func (l *Lexer) readInterpolated() (string, bool) {
	var sb strings.Builder
	depth := 0
	var quote rune
	for {
		l.readChar()
		if l.ch == 0 {
			return sb.String(), false
		}
		if quote != 0 {
			sb.WriteRune(l.ch)
			if l.ch == '\\' {
				l.readChar()
				if l.ch == 0 {
					return sb.String(), false
				}
				sb.WriteRune(l.ch)
			} else if l.ch == quote {
				quote = 0
			}
			continue
		}
		if depth > 0 {
			switch l.ch {
			case '"':
				quote = '"'
			case '{':
				depth++
			case '}':
				depth--
			}
			sb.WriteRune(l.ch)
			continue
		}
		switch l.ch {
		case '"':
			l.readChar()
			return sb.String(), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return sb.String(), false
			}
			sb.WriteRune(unescape(l.ch))
		case '{':
			if l.peekChar() == '{' {
				l.readChar()
				sb.WriteString("{{")
				continue
			}
			depth++
			sb.WriteRune(l.ch)
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return ch
}

// readQuote handles 'c' and '\n' character literals (which evaluate to
// one-character strings) and 'label loop labels.
func (l *Lexer) readQuote(line, col int) token.Token {
	start := l.position
	l.readChar()
	var ch rune
	switch {
	case l.ch == '\\':
		l.readChar()
		ch = unescape(l.ch)
	case l.peekChar() == '\'':
		ch = l.ch
	case isLetter(l.ch):
		name := l.readIdentifier()
		return token.Token{Type: token.LABEL, Lexeme: "'" + name, Literal: name, Line: line, Column: col}
	default:
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:min(l.position, len(l.input))], Literal: "malformed character literal", Line: line, Column: col}
	}
	l.readChar()
	if l.ch != '\'' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:min(l.position, len(l.input))], Literal: "unterminated character literal, expected '", Line: line, Column: col}
	}
	l.readChar()
	return token.Token{Type: token.STRING, Lexeme: l.input[start:l.position], Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber(line, col int) token.Token {
	position := l.position
	isFloat := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X' || l.peekChar() == 'b' || l.peekChar() == 'B' || l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		// t.0.1 is two tuple accesses, not a float
		if l.last != token.DOT && l.ch == '.' && isDigit(l.peekChar()) {
			isFloat = true
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.last != token.DOT && (l.ch == 'e' || l.ch == 'E') {
			p := l.peekChar()
			if isDigit(p) || ((p == '+' || p == '-') && isDigit(l.peekChar2())) {
				isFloat = true
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) {
					l.readChar()
				}
			}
		}
	}

	lexeme := l.input[position:l.position]
	text := strings.ReplaceAll(lexeme, "_", "")

	if isFloat {
		val, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: line, Column: col}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: line, Column: col}
	}
	// strconv.ParseInt(s, 0, 64) auto-detects base
	val, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer literal out of range", Line: line, Column: col}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: line, Column: col}
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			continue
		}
		return
	}
}
