package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

type scriptedLines struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scriptedLines) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func runScript(t *testing.T, lines ...string) (string, string, *scriptedLines) {
	t.Helper()
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, false)
	script := &scriptedLines{lines: lines}
	if err := r.Run(context.Background(), script); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), errOut.String(), script
}

func TestRunPrintsValues(t *testing.T) {
	out, errOut, _ := runScript(t, "let x = 2", "x * 21", `println("hi")`)
	if !strings.Contains(out, "42\n") {
		t.Errorf("expected 42 in output, got %q", out)
	}
	if !strings.Contains(out, "hi\n") {
		t.Errorf("expected printed text in output, got %q", out)
	}
	if strings.Contains(out, "()") {
		t.Errorf("unit results should not be echoed: %q", out)
	}
	if errOut != "" {
		t.Errorf("unexpected errors: %q", errOut)
	}
}

func TestMultiLineInput(t *testing.T) {
	out, _, script := runScript(t, "fun sq(n) {", "  n * n", "}", "sq(9)")
	if !strings.Contains(out, "81\n") {
		t.Errorf("expected 81, got %q", out)
	}
	want := []string{promptMain, promptCont, promptCont, promptMain, promptMain}
	if strings.Join(script.prompts, "|") != strings.Join(want, "|") {
		t.Errorf("prompts: got %q, want %q", script.prompts, want)
	}
	if len(script.history) != 2 || script.history[0] != "fun sq(n) {   n * n }" {
		t.Errorf("unexpected history %q", script.history)
	}
}

func TestErrorsGoToErrOut(t *testing.T) {
	out, errOut, _ := runScript(t, "let a = 1", "a / 0", "a + 1")
	if !strings.Contains(errOut, "DivisionByZero") {
		t.Errorf("expected DivisionByZero on stderr, got %q", errOut)
	}
	if !strings.Contains(out, "2\n") {
		t.Errorf("session should continue after an error, got %q", out)
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"vars", []string{"let a = [1]", ":vars"}, "a = [1]\n"},
		{"env", []string{"let a = 1.5", ":env"}, "a: f64\n"},
		{"type", []string{":type \"s\""}, "String\n"},
		{"inspect", []string{":inspect [1, 2]"}, "type:  Array\nvalue: [1, 2]\nlen:   2\n"},
		{"history", []string{"1", ":history"}, "  1  1\n"},
		{"ast", []string{":ast let x = 1"}, "*ast.LetStatement"},
		{"help", []string{":help"}, ":inspect <expr>"},
		{"reset", []string{"let a = 1", ":reset", ":vars"}, "session reset\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, _ := runScript(t, tt.lines...)
			if !strings.Contains(out, tt.expected) {
				t.Errorf("expected %q in output, got %q (stderr %q)", tt.expected, out, errOut)
			}
		})
	}
}

func TestTypeDoesNotBind(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, false)
	r.Handle(context.Background(), ":type { let leaked = 1; leaked }")
	r.Handle(context.Background(), ":type let z = 3")
	if _, ok := r.Session().Lookup("z"); ok {
		t.Error(":type should not leave bindings behind")
	}
}

func TestQuit(t *testing.T) {
	out, _, script := runScript(t, ":quit", "1 + 1")
	if strings.Contains(out, "2\n") {
		t.Errorf("input after :quit was evaluated: %q", out)
	}
	if len(script.lines) != 1 {
		t.Errorf("expected remaining input to be unread, got %q", script.lines)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, errOut, _ := runScript(t, ":bogus")
	if !strings.Contains(errOut, "unknown command :bogus") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if UseColor("auto", &buf) {
		t.Error("a buffer is not a terminal")
	}
	if !UseColor("always", &buf) || UseColor("never", &buf) {
		t.Error("explicit modes must win")
	}
}
