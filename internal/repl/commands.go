package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/session"
)

const helpText = `Commands:
  :help            show this help
  :quit            exit the REPL
  :vars            list bindings with their values
  :env             list bindings with their types
  :type <expr>     show the type of an expression
  :ast <src>       show the parsed form of source
  :inspect <expr>  show type, value and size of an expression
  :history         list submitted inputs
  :clear           clear the screen
  :reset           discard all bindings`

func (r *REPL) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprintln(r.out, helpText)
	case ":vars":
		bindings := r.sess.Bindings()
		for _, n := range r.sess.Names() {
			fmt.Fprintf(r.out, "%s = %s\n", n, evaluator.Display(bindings[n]))
		}
	case ":env":
		bindings := r.sess.Bindings()
		for _, n := range r.sess.Names() {
			fmt.Fprintf(r.out, "%s: %s\n", n, evaluator.TypeName(bindings[n]))
		}
	case ":type":
		if val, ok := r.peek(ctx, name, arg); ok {
			fmt.Fprintln(r.out, evaluator.TypeName(val))
		}
	case ":inspect":
		if val, ok := r.peek(ctx, name, arg); ok {
			fmt.Fprintf(r.out, "type:  %s\nvalue: %s\n", evaluator.TypeName(val), evaluator.Display(val))
			if n, sized := sizeOf(val); sized {
				fmt.Fprintf(r.out, "len:   %d\n", n)
			}
		}
	case ":ast":
		prog, diags := session.Parse(arg, "")
		if len(diags) > 0 {
			for _, d := range diags {
				fmt.Fprintln(r.errOut, r.red(d.Error()))
			}
			break
		}
		for _, stmt := range prog.Statements {
			fmt.Fprintf(r.out, "%T %s\n", stmt, stmt.String())
		}
	case ":history":
		for i, src := range r.sess.History() {
			fmt.Fprintf(r.out, "%3d  %s\n", i+1, strings.ReplaceAll(src, "\n", " "))
		}
	case ":clear":
		if r.color {
			fmt.Fprint(r.out, "\033[H\033[2J")
		}
	case ":reset":
		r.sess.Reset()
		fmt.Fprintln(r.out, r.dim("session reset"))
	default:
		fmt.Fprintf(r.errOut, "unknown command %s. Type :help for a list.\n", name)
	}
	return false
}

// peek evaluates arg and then rewinds the session, so inspecting an
// expression leaves no bindings behind.
func (r *REPL) peek(ctx context.Context, cmd, arg string) (evaluator.Object, bool) {
	if arg == "" {
		fmt.Fprintf(r.errOut, "usage: %s <expr>\n", cmd)
		return nil, false
	}
	cp := r.sess.Checkpoint(cmd)
	res := r.sess.EvalSource(ctx, arg)
	r.sess.Restore(cp)
	if !res.OK() {
		r.report(res)
		return nil, false
	}
	return res.Value, true
}

func sizeOf(val evaluator.Object) (int, bool) {
	switch v := val.(type) {
	case *evaluator.Array:
		return len(v.Elements), true
	case *evaluator.Tuple:
		return len(v.Elements), true
	case *evaluator.Record:
		return len(v.Fields), true
	case *evaluator.String:
		return len([]rune(v.Value)), true
	}
	return 0, false
}
