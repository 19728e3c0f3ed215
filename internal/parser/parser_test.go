package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/lexer"
	"github.com/ruchy-lang/ruchy/internal/parser"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
)

func run(input string) *pipeline.PipelineContext {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	return (&parser.ParserProcessor{}).Process(ctx)
}

// parse is a test helper: lexes+parses input and fails on errors.
func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := run(input)
	if len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %s", e)
		}
		t.FailNow()
	}
	return ctx.AstRoot.(*ast.Program)
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"-a * b", "((-a) * b)"},
		{"a ** b ** c", "(a ** (b ** c))"},
		{"a == b && c < d", "((a == b) && (c < d))"},
		{"a.b(1)[0]", "a.b(1)[0]"},
		{"x |> f(1)", "(x |> f(1))"},
		{"1..n", "1..n"},
		{"[1; 3]", "[1; 3]"},
		{"(1,)", "(1,)"},
		{"x += 1", "x += 1"},
		{"P::new(1)", "P::new(1)"},
		{"[x for x in xs if x > 0]", "[x for x in xs if (x > 0)]"},
		{"a\n  .b()\n  .c()", "a.b().c()"},
		{"a\n  |> f", "(a |> f)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			if len(prog.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
			}
			if got := prog.Statements[0].String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestStatementSeparation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"semicolon on one line", "a; b", 2},
		{"newline", "a\nb", 2},
		{"minus starts a new line", "a\n-b", 2},
		{"closure starts a new line", "let n = 0\n|| n", 2},
		{"blank lines", "\n\na\n\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(parse(t, tt.input).Statements); got != tt.count {
				t.Errorf("expected %d statements, got %d", tt.count, got)
			}
		})
	}
}

func TestTerminatedStatement(t *testing.T) {
	prog := parse(t, "a;\nb")
	first, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok || !first.Terminated {
		t.Errorf("expected a terminated expression statement, got %#v", prog.Statements[0])
	}
	second := prog.Statements[1].(*ast.ExpressionStatement)
	if second.Terminated {
		t.Error("b is not terminated")
	}
}

func TestBraceDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let r = {a: 1}", "*ast.ObjectLiteral"},
		{"let r = {}", "*ast.ObjectLiteral"},
		{"let r = { let a = 1\n a }", "*ast.BlockExpression"},
		{"let r = P { a: 1 }", "*ast.StructLiteral"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			let, ok := prog.Statements[0].(*ast.LetStatement)
			if !ok {
				t.Fatalf("expected let, got %T", prog.Statements[0])
			}
			if got := fmt.Sprintf("%T", let.Value); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestStructLiteralNotInHead(t *testing.T) {
	prog := parse(t, "if x { 1 } else { 2 }")
	if _, ok := prog.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.IfExpression); !ok {
		t.Fatalf("expected if expression, got %s", prog.Statements[0].String())
	}
}

func TestDeclarations(t *testing.T) {
	prog := parse(t, `struct Point { x: i64, y: i64 = 0 }
enum Shape { Circle(f64), Empty }
impl Point {
  fun norm(self) { self.x + self.y }
}
fun main() { 1 }`)
	want := []string{"*ast.StructStatement", "*ast.EnumStatement", "*ast.ImplStatement", "*ast.FunctionStatement"}
	if len(prog.Statements) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(prog.Statements))
	}
	for i, stmt := range prog.Statements {
		if got := fmt.Sprintf("%T", stmt); got != want[i] {
			t.Errorf("statement %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		code       diagnostics.ErrorCode
		incomplete bool
	}{
		{"missing let target", "let = 1", diagnostics.ErrP005, false},
		{"or-pattern bindings", "match x { (a, b) | (a, 0) => 1 }", diagnostics.ErrP010, false},
		{"struct in function body", "fun f() {\n  struct Inner { x: i64 }\n  1\n}", diagnostics.ErrP006, false},
		{"enum in block", "let v = {\n  enum E { A }\n  1\n}", diagnostics.ErrP006, false},
		{"impl in block", "if true {\n  impl P { fun m(self) { 1 } }\n}", diagnostics.ErrP006, false},
		{"unclosed block", "fun f() {", "", true},
		{"dangling operator", "1 +", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := run(tt.input)
			if len(ctx.Errors) == 0 {
				t.Fatal("expected errors")
			}
			if tt.code != "" && ctx.Errors[0].Code != tt.code {
				t.Errorf("expected %s, got %s: %s", tt.code, ctx.Errors[0].Code, ctx.Errors[0].Message)
			}
			if ctx.Incomplete != tt.incomplete {
				t.Errorf("expected incomplete=%v, got %v", tt.incomplete, ctx.Incomplete)
			}
		})
	}
}

func TestErrorPositions(t *testing.T) {
	ctx := run("let a = 1\nlet b = )")
	if len(ctx.Errors) == 0 {
		t.Fatal("expected errors")
	}
	if ctx.Errors[0].Token.Line != 2 {
		t.Errorf("expected error on line 2, got %d", ctx.Errors[0].Token.Line)
	}
	if !strings.Contains(ctx.Errors[0].Error(), ")") {
		t.Errorf("message should name the token: %s", ctx.Errors[0].Error())
	}
}
