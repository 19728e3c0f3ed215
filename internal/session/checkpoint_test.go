package session

import (
	"context"
	"testing"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
)

func TestCheckpointRestore(t *testing.T) {
	s := New()
	mustEval(t, s, "let xs = [1]\nlet ys = xs")
	cp := s.Checkpoint("before")

	mustEval(t, s, "xs.push(2)\nlet extra = 1")
	s.Restore(cp)

	if got := display(t, s, "xs"); got != "[1]" {
		t.Errorf("expected [1], got %s", got)
	}
	if _, ok := s.Lookup("extra"); ok {
		t.Error("binding made after the checkpoint survived restore")
	}
	// aliasing between bindings is preserved by the copy
	if got := display(t, s, "ys.push(3)\nxs"); got != "[1, 3]" {
		t.Errorf("expected [1, 3], got %s", got)
	}

	// restoring twice yields the same state
	s.Restore(cp)
	if got := display(t, s, "xs"); got != "[1]" {
		t.Errorf("second restore: expected [1], got %s", got)
	}
}

func TestRestoreKeepsClosuresLive(t *testing.T) {
	s := New()
	mustEval(t, s, "let mut n = 0\nlet inc = || { n += 1; n }")
	cp := s.Checkpoint("zero")
	mustEval(t, s, "inc()\ninc()")
	s.Restore(cp)
	if got := display(t, s, "inc()"); got != "1" {
		t.Errorf("expected 1 after restore, got %s", got)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	s := New()
	mustEval(t, s, "let mut total = 1")

	res := s.Transaction(context.Background(), "total = 5\nlet partial = 2\nlet boom = 1 / 0")
	if res.OK() || res.Diagnostics[0].Kind != evaluator.DivisionByZero {
		t.Fatalf("expected DivisionByZero, got %v", res.Err())
	}
	if got := display(t, s, "total"); got != "1" {
		t.Errorf("expected rollback to 1, got %s", got)
	}
	if _, ok := s.Lookup("partial"); ok {
		t.Error("partial should have been rolled back")
	}

	res = s.Transaction(context.Background(), "total = 9")
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err())
	}
	if got := display(t, s, "total"); got != "9" {
		t.Errorf("expected committed 9, got %s", got)
	}
}
