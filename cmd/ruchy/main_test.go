package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	code := run(append([]string{"-config", cfg}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEval(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{"print value", []string{"eval", "-p", "-e", "1 + 2"}, 0, "3\n"},
		{"output only", []string{"eval", "-e", `println("hi")`}, 0, "hi\n"},
		{"positional source", []string{"eval", "-p", "[1, 2].len()"}, 0, "2\n"},
		{"runtime error", []string{"eval", "-e", "1 / 0"}, 1, ""},
		{"syntax error", []string{"eval", "-e", "let = 1"}, 1, ""},
		{"missing source", []string{"eval"}, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit code: expected %d, got %d (stderr %q)", tt.code, code, errOut)
			}
			if out != tt.stdout {
				t.Errorf("stdout: expected %q, got %q", tt.stdout, out)
			}
		})
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.ruchy")
	src := "fun fib(n) { if n < 2 { n } else { fib(n - 1) + fib(n - 2) } }\nprintln(fib(15))\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "run", path)
	if code != 0 || out != "610\n" {
		t.Errorf("expected 610, got code %d out %q err %q", code, out, errOut)
	}
}

func TestRunReportsLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ruchy")
	if err := os.WriteFile(path, []byte("let a = 1\nlet b = missing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, "run", path)
	if code != 1 || !strings.Contains(errOut, "NameError") || !strings.Contains(errOut, "2:") {
		t.Errorf("expected a located NameError, got code %d stderr %q", code, errOut)
	}
}

func TestNotebookCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nb.yaml")
	doc := "title: t\ncells:\n  - id: a\n    source: let x = 5\n  - id: b\n    source: x * 2\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "notebook", path)
	if code != 0 || !strings.Contains(out, "Out[2] b: 10") {
		t.Errorf("unexpected result: code %d out %q err %q", code, out, errOut)
	}
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "h.db")
	cfg := filepath.Join(dir, "ruchy.yaml")
	if err := os.WriteFile(cfg, []byte("repl:\n  history_db: "+db+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if code := run([]string{"-config", cfg, "eval", "-e", "let x = 1\nx + 1"}, &out, &errOut); code != 0 {
		t.Fatalf("eval failed: %s", errOut.String())
	}

	out.Reset()
	if code := run([]string{"-config", cfg, "sessions", "-db", db}, &out, &errOut); code != 0 {
		t.Fatalf("sessions failed: %s", errOut.String())
	}
	id, _, _ := strings.Cut(out.String(), " ")
	if id == "" {
		t.Fatalf("no session listed: %q", out.String())
	}

	out.Reset()
	code := run([]string{"-config", cfg, "replay", "-session", id}, &out, &errOut)
	if code != 0 || !strings.Contains(out.String(), "replayed 2 submissions") {
		t.Errorf("replay: code %d out %q err %q", code, out.String(), errOut.String())
	}
}

func TestVersionAndUnknown(t *testing.T) {
	if code, out, _ := runCLI(t, "version"); code != 0 || !strings.HasPrefix(out, "ruchy ") {
		t.Errorf("version: code %d out %q", code, out)
	}
	if code, _, _ := runCLI(t, "frobnicate"); code != 2 {
		t.Errorf("unknown command: expected exit 2, got %d", code)
	}
}
