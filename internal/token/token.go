package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string      // raw text as it appeared in the source
	Literal interface{} // decoded value for literals (int64, float64, string)
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"

	// Identifiers + literals
	IDENT      TokenType = "IDENT"
	INT        TokenType = "INT"
	FLOAT      TokenType = "FLOAT"
	STRING     TokenType = "STRING"
	FSTRING    TokenType = "FSTRING"
	LABEL      TokenType = "LABEL" // 'outer
	UNDERSCORE TokenType = "_"

	// Operators
	ASSIGN          TokenType = "="
	PLUS            TokenType = "+"
	MINUS           TokenType = "-"
	ASTERISK        TokenType = "*"
	SLASH           TokenType = "/"
	PERCENT         TokenType = "%"
	POWER           TokenType = "**"
	BANG            TokenType = "!"
	TILDE           TokenType = "~"
	AMPERSAND       TokenType = "&"
	PIPE            TokenType = "|"
	CARET           TokenType = "^"
	LSHIFT          TokenType = "<<"
	RSHIFT          TokenType = ">>"
	AND             TokenType = "&&"
	OR              TokenType = "||"
	EQ              TokenType = "=="
	NOT_EQ          TokenType = "!="
	LT              TokenType = "<"
	GT              TokenType = ">"
	LTE             TokenType = "<="
	GTE             TokenType = ">="
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="
	ARROW           TokenType = "->"
	FAT_ARROW       TokenType = "=>"
	PIPE_GT         TokenType = "|>"
	QUESTION        TokenType = "?"
	NULL_COALESCE   TokenType = "??"
	DOT             TokenType = "."
	DOT_DOT         TokenType = ".."
	DOT_DOT_EQ      TokenType = "..="
	COLON_COLON     TokenType = "::"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	LET      TokenType = "LET"
	MUT      TokenType = "MUT"
	FUN      TokenType = "FUN"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	MATCH    TokenType = "MATCH"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	WHILE    TokenType = "WHILE"
	LOOP     TokenType = "LOOP"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	RETURN   TokenType = "RETURN"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	STRUCT   TokenType = "STRUCT"
	ENUM     TokenType = "ENUM"
	IMPL     TokenType = "IMPL"
	TRY      TokenType = "TRY"
	CATCH    TokenType = "CATCH"
	FINALLY  TokenType = "FINALLY"
	THROW    TokenType = "THROW"
	AS       TokenType = "AS"
	SOME     TokenType = "SOME"
	NONE     TokenType = "NONE"
	OK       TokenType = "OK"
	ERR      TokenType = "ERR"
)

var keywords = map[string]TokenType{
	"let":      LET,
	"mut":      MUT,
	"fun":      FUN,
	"fn":       FUN,
	"if":       IF,
	"else":     ELSE,
	"match":    MATCH,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
	"loop":     LOOP,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"struct":   STRUCT,
	"enum":     ENUM,
	"impl":     IMPL,
	"try":      TRY,
	"catch":    CATCH,
	"finally":  FINALLY,
	"throw":    THROW,
	"as":       AS,
	"Some":     SOME,
	"None":     NONE,
	"Ok":       OK,
	"Err":      ERR,
	"_":        UNDERSCORE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}
