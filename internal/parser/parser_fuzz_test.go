package parser_test

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/ast"
)

// FuzzParser feeds arbitrary source through the lexer and parser. Neither
// stage may panic, and a clean parse always yields a program.
func FuzzParser(f *testing.F) {
	f.Add("fun main() { println(\"Hello\") }")
	f.Add("let mut x = 1 + 2\nx += 1")
	f.Add("if true { x } else { y }")
	f.Add("match v { Some((a, b)) | Ok((a, b)) if a > b => a, [x, ..rest] => x, _ => 0 }")
	f.Add("'outer: for i in 0..=3 { break 'outer i }")
	f.Add("f\"{a} and {b.c(1)}\"")
	f.Add("struct P { x: i64 = 0 }\nimpl P { fun new() { P { x: 1 } } }")
	f.Add("{")

	f.Fuzz(func(t *testing.T, input string) {
		ctx := run(input)
		if len(ctx.Errors) > 0 {
			return
		}
		if _, ok := ctx.AstRoot.(*ast.Program); !ok {
			t.Fatalf("clean parse of %q produced %T", input, ctx.AstRoot)
		}
	})
}
