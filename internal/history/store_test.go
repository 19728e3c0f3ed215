package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ruchy-lang/ruchy/internal/config"
	"github.com/ruchy-lang/ruchy/internal/session"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndEntries(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sess := session.New(session.WithRecorder(store), session.WithID("abc"))

	sess.EvalSource(ctx, "let x = 2")
	sess.EvalSource(ctx, `println(x * 21)`)
	sess.EvalSource(ctx, "x / 0")

	got, err := store.Entries(ctx, "abc")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	want := []session.Entry{
		{SessionID: "abc", Seq: 1, Source: "let x = 2", Value: "()"},
		{SessionID: "abc", Seq: 2, Source: `println(x * 21)`, Value: "()", Stdout: "42\n"},
		{SessionID: "abc", Seq: 3, Source: "x / 0"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(session.Entry{}, "Duration", "Error")); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(got) == 3 && got[2].Error == "" {
		t.Error("expected the failing entry to carry its error")
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	a := session.New(session.WithRecorder(store), session.WithID("a"))
	b := session.New(session.WithRecorder(store), session.WithID("b"))
	a.EvalSource(ctx, "1")
	b.EvalSource(ctx, "nope")
	a.EvalSource(ctx, "2")

	got, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	want := []SessionInfo{
		{ID: "a", Entries: 2, Failures: 0},
		{ID: "b", Entries: 1, Failures: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(SessionInfo{}, "StartedAt")); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sess := session.New(session.WithRecorder(store), session.WithID("r"))
	sess.EvalSource(ctx, "let mut n = 1")
	sess.EvalSource(ctx, "n = n * 10\nprintln(n)")
	sess.EvalSource(ctx, "n + 1")

	report, err := Replay(ctx, store, "r", config.Default().Limits, nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if report.Replayed != 3 {
		t.Errorf("expected 3 replayed, got %d", report.Replayed)
	}
	if len(report.Divergences) != 0 {
		t.Errorf("unexpected divergences: %v", report.Divergences)
	}
}

func TestReplayAcrossReset(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sess := session.New(session.WithRecorder(store), session.WithID("z"))
	sess.EvalSource(ctx, "let x = 1")
	sess.EvalSource(ctx, "x + 1")
	sess.Reset()
	sess.EvalSource(ctx, "x")
	sess.EvalSource(ctx, "let x = 5")

	entries, err := store.Entries(ctx, "z")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	var seqs, epochs []int
	for _, e := range entries {
		seqs = append(seqs, e.Seq)
		epochs = append(epochs, e.Epoch)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, seqs); diff != "" {
		t.Errorf("entries before the reset were overwritten (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0, 1, 1}, epochs); diff != "" {
		t.Errorf("epochs mismatch (-want +got):\n%s", diff)
	}

	report, err := Replay(ctx, store, "z", config.Default().Limits, nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if report.Replayed != 4 || len(report.Divergences) != 0 {
		t.Errorf("expected 4 faithful replays, got %d with divergences %v", report.Replayed, report.Divergences)
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Record(ctx, session.Entry{SessionID: "d", Seq: 1, Source: "1 + 1", Value: "3"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	report, err := Replay(ctx, store, "d", config.Default().Limits, nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(report.Divergences) != 1 || report.Divergences[0].Replayed.Value != "2" {
		t.Errorf("expected one divergence replaying to 2, got %v", report.Divergences)
	}
}

func TestReplayUnknownSession(t *testing.T) {
	if _, err := Replay(context.Background(), openStore(t), "missing", config.Default().Limits, nil); err == nil {
		t.Error("expected an error for an unknown session")
	}
}
