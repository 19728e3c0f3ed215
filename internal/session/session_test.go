package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ruchy-lang/ruchy/internal/config"
	"github.com/ruchy-lang/ruchy/internal/evaluator"
)

func mustEval(t *testing.T, s *Session, src string) *Result {
	t.Helper()
	res := s.EvalSource(context.Background(), src)
	if !res.OK() {
		t.Fatalf("eval %q: %v", src, res.Err())
	}
	return res
}

func display(t *testing.T, s *Session, src string) string {
	t.Helper()
	return evaluator.Display(mustEval(t, s, src).Value)
}

func TestValueAndOutput(t *testing.T) {
	s := New()
	res := mustEval(t, s, "println(\"hi\")\neprint(\"warn\")\n1 + 2")
	if got := evaluator.Display(res.Value); got != "3" {
		t.Errorf("expected value 3, got %s", got)
	}
	if res.Stdout != "hi\n" {
		t.Errorf("expected stdout %q, got %q", "hi\n", res.Stdout)
	}
	if res.Stderr != "warn" {
		t.Errorf("expected stderr %q, got %q", "warn", res.Stderr)
	}

	// output is captured per call
	res = mustEval(t, s, "2")
	if res.Stdout != "" {
		t.Errorf("expected empty stdout, got %q", res.Stdout)
	}
}

func TestOutputTee(t *testing.T) {
	var out strings.Builder
	s := New(WithOutput(&out, nil))
	mustEval(t, s, `print("a")`)
	mustEval(t, s, `print("b")`)
	if out.String() != "ab" {
		t.Errorf("expected tee to see %q, got %q", "ab", out.String())
	}
}

func TestBindingsPersist(t *testing.T) {
	s := New()
	mustEval(t, s, "let x = 40")
	mustEval(t, s, "fun add2(n) { n + 2 }")
	if got := display(t, s, "add2(x)"); got != "42" {
		t.Errorf("expected 42, got %s", got)
	}
	if diff := cmp.Diff([]string{"add2", "x"}, s.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorIsolation(t *testing.T) {
	s := New()
	mustEval(t, s, "let a = 1")

	res := s.EvalSource(context.Background(), "let b = 1 / 0")
	if res.OK() || res.Diagnostics[0].Kind != evaluator.DivisionByZero {
		t.Fatalf("expected DivisionByZero, got %v", res.Err())
	}
	if _, ok := s.Lookup("a"); !ok {
		t.Error("a was lost after a failing statement")
	}
	if _, ok := s.Lookup("b"); ok {
		t.Error("failing let must not bind b")
	}

	res = s.EvalSource(context.Background(), "let c = 2\nlet d = missing\nlet e = 3")
	if res.OK() || res.Diagnostics[0].Kind != evaluator.NameError {
		t.Fatalf("expected NameError, got %v", res.Err())
	}
	if _, ok := s.Lookup("c"); !ok {
		t.Error("statements before the failure keep their bindings")
	}
	for _, name := range []string{"d", "e"} {
		if _, ok := s.Lookup(name); ok {
			t.Errorf("%s should not be bound", name)
		}
	}

	if got := display(t, s, "a + c"); got != "3" {
		t.Errorf("session unusable after errors: got %s", got)
	}
}

func TestSyntaxError(t *testing.T) {
	s := New()
	res := s.EvalSource(context.Background(), "let = 5")
	if res.OK() {
		t.Fatal("expected a syntax error")
	}
	if res.Diagnostics[0].Kind != evaluator.SyntaxError {
		t.Errorf("expected SyntaxError, got %s", res.Diagnostics[0].Kind)
	}
}

func TestExecutionCount(t *testing.T) {
	s := New()
	for i := 1; i <= 3; i++ {
		res := s.EvalSource(context.Background(), "1")
		if res.ExecutionCount != i {
			t.Errorf("submission %d: got count %d", i, res.ExecutionCount)
		}
	}
	s.EvalSource(context.Background(), "nope")
	if got := s.ExecutionCount(); got != 4 {
		t.Errorf("failed submissions are counted too: got %d", got)
	}
}

func TestStackOverflowKeepsSession(t *testing.T) {
	s := New(WithLimits(config.Limits{MaxCallDepth: 200}))
	mustEval(t, s, "let keep = 7")
	res := s.EvalSource(context.Background(), "fun f(n) { f(n + 1) }\nf(0)")
	if res.OK() || res.Diagnostics[0].Kind != evaluator.StackOverflow {
		t.Fatalf("expected StackOverflow, got %v", res.Err())
	}
	if got := display(t, s, "keep"); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestOversizedValuesKeepSession(t *testing.T) {
	s := New(WithLimits(config.Limits{MaxCollectionSize: 1 << 10}))
	mustEval(t, s, "let keep = 7")
	for _, src := range []string{
		`"ab" * 9223372036854775807`,
		"[0; 1152921504606846976]",
		"(0..9223372036854775807).to_array()",
	} {
		res := s.EvalSource(context.Background(), src)
		if res.OK() || res.Diagnostics[0].Kind != evaluator.ResourceExceeded {
			t.Errorf("%s: expected ResourceExceeded, got %v", src, res.Err())
		}
	}
	if got := display(t, s, "keep"); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestTimeout(t *testing.T) {
	s := New(WithLimits(config.Limits{Timeout: 20 * time.Millisecond}))
	res := s.EvalSource(context.Background(), "loop { }")
	if res.OK() || res.Diagnostics[0].Kind != evaluator.ResourceExceeded {
		t.Fatalf("expected ResourceExceeded, got %v", res.Err())
	}
}

func TestReset(t *testing.T) {
	s := New()
	mustEval(t, s, "let x = 1\nstruct P { a: i64 }")
	s.Reset()
	if len(s.Names()) != 0 {
		t.Errorf("expected no bindings after reset, got %v", s.Names())
	}
	if s.ExecutionCount() != 0 {
		t.Errorf("expected counter reset, got %d", s.ExecutionCount())
	}
	// builtins survive
	if got := display(t, s, "len([1, 2])"); got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	s := New()
	mustEval(t, s, "let mut counter = 0")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EvalSource(context.Background(), "counter += 1")
		}()
	}
	wg.Wait()

	if got := display(t, s, "counter"); got != "20" {
		t.Errorf("expected 20, got %s", got)
	}
}

type memoryRecorder struct {
	entries []Entry
}

func (m *memoryRecorder) Record(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestRecorder(t *testing.T) {
	rec := &memoryRecorder{}
	s := New(WithRecorder(rec), WithID("s1"))
	mustEval(t, s, `println("x")`)
	s.EvalSource(context.Background(), "1 / 0")

	want := []Entry{
		{SessionID: "s1", Seq: 1, Source: `println("x")`, Value: "()", Stdout: "x\n"},
		{SessionID: "s1", Seq: 2, Source: "1 / 0"},
	}
	if diff := cmp.Diff(want, rec.entries, cmpopts.IgnoreFields(Entry{}, "Duration", "Error")); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(rec.entries) == 2 && !strings.Contains(rec.entries[1].Error, "DivisionByZero") {
		t.Errorf("expected recorded error, got %q", rec.entries[1].Error)
	}
}

func TestResetKeepsRecordingSequence(t *testing.T) {
	rec := &memoryRecorder{}
	s := New(WithRecorder(rec), WithID("s1"))
	mustEval(t, s, "let x = 1")
	mustEval(t, s, "x + 1")
	s.Reset()
	res := mustEval(t, s, "2")
	if res.ExecutionCount != 1 {
		t.Errorf("expected the execution count to restart, got %d", res.ExecutionCount)
	}

	want := []Entry{
		{SessionID: "s1", Seq: 1, Epoch: 0, Source: "let x = 1", Value: "()"},
		{SessionID: "s1", Seq: 2, Epoch: 0, Source: "x + 1", Value: "2"},
		{SessionID: "s1", Seq: 3, Epoch: 1, Source: "2", Value: "2"},
	}
	if diff := cmp.Diff(want, rec.entries, cmpopts.IgnoreFields(Entry{}, "Duration")); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"fun f() {", true},
		{"let x = [1, 2,", true},
		{"let x = 1", false},
		{"1 +", true},
	}
	for _, tt := range tests {
		if got := Incomplete(tt.input); got != tt.expected {
			t.Errorf("Incomplete(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
