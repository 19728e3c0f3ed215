// Package repl is the interactive read-eval-print loop over a session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/ruchy-lang/ruchy/internal/config"
	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/session"
)

const (
	promptMain = "ruchy> "
	promptCont = "   ... "
)

const banner = "Ruchy " + config.Version + "  (:help for commands, :quit to exit)"

// LineReader is the subset of liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type REPL struct {
	sess   *session.Session
	out    io.Writer
	errOut io.Writer
	color  bool
}

// New creates a REPL writing to out and errOut. Program output is teed to
// the same writers as it is produced.
func New(out, errOut io.Writer, color bool, opts ...session.Option) *REPL {
	opts = append(opts, session.WithOutput(out, errOut))
	return &REPL{
		sess:   session.New(opts...),
		out:    out,
		errOut: errOut,
		color:  color,
	}
}

func (r *REPL) Session() *session.Session { return r.sess }

// UseColor resolves a repl.color setting against the output writer.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return evaluator.IsTerminal(w)
}

func (r *REPL) paint(code, s string) string {
	if !r.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func (r *REPL) green(s string) string { return r.paint("32", s) }
func (r *REPL) red(s string) string   { return r.paint("31", s) }
func (r *REPL) dim(s string) string   { return r.paint("2", s) }

// Run reads units from lines until EOF or :quit.
func (r *REPL) Run(ctx context.Context, lines LineReader) error {
	fmt.Fprintln(r.out, r.dim(banner))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, ok := readUnit(lines)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		lines.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if r.Handle(ctx, src) {
			return nil
		}
	}
}

// readUnit keeps prompting while the buffered input is an incomplete
// construct. ok is false at end of input.
func readUnit(lines LineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := lines.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending input.
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.Incomplete(src) {
			return src, true
		}
	}
}

// Handle evaluates one unit or command. It reports true when the loop
// should stop.
func (r *REPL) Handle(ctx context.Context, src string) bool {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		return r.command(ctx, trimmed)
	}
	res := r.sess.EvalSource(ctx, src)
	r.report(res)
	return false
}

func (r *REPL) report(res *session.Result) {
	if !res.OK() {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(r.errOut, r.red(d.Report()))
		}
		return
	}
	if res.Stdout != "" && !strings.HasSuffix(res.Stdout, "\n") {
		fmt.Fprintln(r.out)
	}
	if _, isUnit := res.Value.(*evaluator.Unit); !isUnit && res.Value != nil {
		fmt.Fprintln(r.out, r.green(evaluator.Display(res.Value)))
	}
}

// RunInteractive runs the REPL on the process terminal with liner line
// editing and the configured history file.
func RunInteractive(ctx context.Context, cfg *config.Config, opts ...session.Option) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	histPath := cfg.Repl.HistoryFile
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	opts = append([]session.Option{session.WithLimits(cfg.Limits)}, opts...)
	r := New(os.Stdout, os.Stderr, UseColor(cfg.Repl.Color, os.Stdout), opts...)
	return r.Run(ctx, ln)
}
