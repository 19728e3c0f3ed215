package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/lexer"
	"github.com/ruchy-lang/ruchy/internal/parser"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
)

// FuzzEval runs every program that parses. Evaluation must end in a value
// or an *Error; runaway programs are cut off by the step budget.
func FuzzEval(f *testing.F) {
	f.Add("let xs = [1, 2, 3]\nxs.map(|x| x * 2).sum()")
	f.Add("fun f(n) { if n == 0 { 0 } else { f(n - 1) } }\nf(50)")
	f.Add("loop { }")
	f.Add("let r = Err(\"x\")\nmatch r { Ok(v) => v, Err(e) => throw e }")
	f.Add("try { 1 / 0 } catch e { e }")
	f.Add("let a = [1]\na.push(a)\na")

	f.Fuzz(func(t *testing.T, src string) {
		ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: src})
		if ctx.HasErrors() {
			return
		}
		prog, ok := ctx.AstRoot.(*ast.Program)
		if !ok {
			return
		}

		h := newHarness()
		h.eval.StepBudget = 10_000
		h.eval.MaxCallDepth = 64
		runCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.eval.Context = runCtx

		val, err := h.eval.EvalProgram(prog, h.env)
		if err == nil && val == nil {
			t.Fatalf("%q evaluated to nil without an error", src)
		}
	})
}
