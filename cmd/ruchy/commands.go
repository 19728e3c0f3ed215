package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/history"
	"github.com/ruchy-lang/ruchy/internal/kernel"
	"github.com/ruchy-lang/ruchy/internal/notebook"
	"github.com/ruchy-lang/ruchy/internal/repl"
	"github.com/ruchy-lang/ruchy/internal/session"
)

// sessionOptions builds the options shared by every command that owns a
// session. When repl.history_db is configured the returned closer must be
// called to flush the recorder.
func (g *globals) sessionOptions() ([]session.Option, func(), error) {
	opts := []session.Option{session.WithLimits(g.cfg.Limits), session.WithLogger(g.logger)}
	if g.cfg.Repl.HistoryDB == "" {
		return opts, func() {}, nil
	}
	store, err := history.Open(g.cfg.Repl.HistoryDB)
	if err != nil {
		return nil, nil, err
	}
	return append(opts, session.WithRecorder(store)), func() { store.Close() }, nil
}

func cmdRun(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: ruchy run <file>")
		return 2
	}
	path := args[0]
	if !isSourceFile(path) {
		g.logger.Warn("unrecognized source extension", "path", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return evalAndReport(ctx, g, string(src), path, false, stdout, stderr)
}

func cmdEval(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	src := fs.String("e", "", "source to evaluate")
	printValue := fs.Bool("p", false, "print the value of the last statement")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *src == "" && fs.NArg() > 0 {
		*src = fs.Arg(0)
	}
	if *src == "" {
		fmt.Fprintln(stderr, "usage: ruchy eval [-p] -e <src>")
		return 2
	}
	return evalAndReport(ctx, g, *src, "<eval>", *printValue, stdout, stderr)
}

func evalAndReport(ctx context.Context, g *globals, src, file string, printValue bool, stdout, stderr io.Writer) int {
	opts, closeStore, err := g.sessionOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closeStore()

	sess := session.New(append(opts, session.WithOutput(stdout, stderr))...)
	prog, diags := session.Parse(src, file)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(stderr, d.Error())
		}
		return 1
	}

	var last evaluator.Object = evaluator.UNIT
	for _, stmt := range prog.Statements {
		res := sess.EvaluateTopLevel(ctx, stmt)
		if !res.OK() {
			for _, d := range res.Diagnostics {
				if d.File == "" {
					d.File = file
				}
				fmt.Fprintln(stderr, d.Report())
			}
			return 1
		}
		last = res.Value
	}
	if printValue {
		fmt.Fprintln(stdout, evaluator.Display(last))
	}
	return 0
}

func cmdRepl(ctx context.Context, g *globals, stderr io.Writer) int {
	opts, closeStore, err := g.sessionOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closeStore()
	if err := repl.RunInteractive(ctx, g.cfg, opts...); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func cmdNotebook(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: ruchy notebook <file.yaml>...")
		return 2
	}
	var notebooks []*notebook.Notebook
	for _, path := range args {
		nb, err := notebook.Load(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		notebooks = append(notebooks, nb)
	}

	opts, closeStore, err := g.sessionOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closeStore()

	reports, err := notebook.RunAll(ctx, notebooks, opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	code := 0
	for _, r := range reports {
		notebook.WriteReport(stdout, r)
		if r.Failed() {
			code = 1
		}
	}
	return code
}

func cmdServe(ctx context.Context, g *globals, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", g.cfg.Kernel.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts, closeStore, err := g.sessionOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closeStore()

	if err := kernel.Serve(ctx, *addr, kernel.NewServer(g.logger, opts...)); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func cmdReplay(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", g.cfg.Repl.HistoryDB, "history database")
	sessionID := fs.String("session", "", "session id to replay")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dbPath == "" || *sessionID == "" {
		fmt.Fprintln(stderr, "usage: ruchy replay -db <path> -session <id>")
		return 2
	}

	store, err := history.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Close()

	report, err := history.Replay(ctx, store, *sessionID, g.cfg.Limits, g.logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "replayed %d submissions of %s\n", report.Replayed, report.SessionID)
	for _, d := range report.Divergences {
		fmt.Fprintln(stdout, "diverged:", d.String())
	}
	if len(report.Divergences) > 0 {
		return 1
	}
	return 0
}

func cmdSessions(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "history database")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dbPath == "" {
		fmt.Fprintln(stderr, "usage: ruchy sessions -db <path>")
		return 2
	}
	store, err := history.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Close()

	infos, err := store.Sessions(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, info := range infos {
		fmt.Fprintf(stdout, "%s  %s  entries=%d failures=%d\n",
			info.ID, info.StartedAt.Format("2006-01-02 15:04:05"), info.Entries, info.Failures)
	}
	return 0
}
