package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ruchy-lang/ruchy/internal/config"
)

const usage = `Usage: ruchy [-config file] [-v] <command> [args]

Commands:
  run <file>                   run a source file
  eval [-p] -e <src>           evaluate source given on the command line
  repl                         start the interactive REPL
  notebook <file.yaml>...      run notebooks concurrently
  serve [-addr host:port]      serve sessions over gRPC
  replay -db <path> -session <id>
                               re-execute a recorded session and report divergences
  sessions -db <path>          list recorded sessions
  version                      print the version`

// globals are the options accepted before the command name.
type globals struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ruchy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }
	configPath := fs.String("config", "", "configuration file (default: nearest "+config.FileName+")")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	g, err := loadGlobals(*configPath, *verbose, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "run":
		return cmdRun(ctx, g, rest, stdout, stderr)
	case "eval":
		return cmdEval(ctx, g, rest, stdout, stderr)
	case "repl":
		return cmdRepl(ctx, g, stderr)
	case "notebook":
		return cmdNotebook(ctx, g, rest, stdout, stderr)
	case "serve":
		return cmdServe(ctx, g, rest, stderr)
	case "replay":
		return cmdReplay(ctx, g, rest, stdout, stderr)
	case "sessions":
		return cmdSessions(ctx, rest, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "ruchy", config.Version)
		return 0
	case "help", "-help", "--help":
		fmt.Fprintln(stdout, usage)
		return 0
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n%s\n", cmd, usage)
	return 2
}

func loadGlobals(path string, verbose bool, stderr io.Writer) (*globals, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.Find(wd); err != nil {
			return nil, err
		}
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		logger.Debug("config loaded", "path", path)
	}
	return &globals{cfg: cfg, logger: logger}, nil
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
