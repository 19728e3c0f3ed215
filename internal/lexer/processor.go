package lexer

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/diagnostics"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
	"github.com/ruchy-lang/ruchy/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ts := NewTokenStream(New(ctx.SourceCode))
	for _, tok := range ts.Tokens() {
		if tok.Type != token.ILLEGAL {
			continue
		}
		code := diagnostics.ErrL001
		msg := fmt.Sprint(tok.Literal)
		switch msg {
		case "unterminated string", "unterminated character literal, expected '":
			code = diagnostics.ErrL002
		case "integer literal out of range":
			code = diagnostics.ErrL003
		}
		err := diagnostics.NewError(code, tok, msg)
		err.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, err)
	}
	ctx.TokenStream = ts
	return ctx
}
