package notebook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `title: demo
cells:
  - id: setup
    source: |
      let mut xs = [1, 2]
      fun total(v) { v.fold(0, |a, b| a + b) }
  - id: push
    source: xs.push(3)
  - id: sum
    source: total(xs)
`

func TestParse(t *testing.T) {
	nb, err := Parse([]byte(sample), "demo.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var ids []string
	for _, c := range nb.Cells {
		ids = append(ids, c.ID)
	}
	if diff := cmp.Diff([]string{"setup", "push", "sum"}, ids); diff != "" {
		t.Errorf("cell ids mismatch (-want +got):\n%s", diff)
	}
	if nb.Title != "demo" {
		t.Errorf("expected title demo, got %q", nb.Title)
	}
}

func TestParseAssignsIDs(t *testing.T) {
	nb, err := Parse([]byte("cells:\n  - source: \"1\"\n  - source: \"2\"\n"), "x.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if nb.Cells[0].ID == "" || nb.Cells[0].ID == nb.Cells[1].ID {
		t.Errorf("expected distinct generated ids, got %q and %q", nb.Cells[0].ID, nb.Cells[1].ID)
	}
	if nb.Title != "x.yaml" {
		t.Errorf("expected title to default to the path, got %q", nb.Title)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte("cells:\n  - id: a\n    source: \"1\"\n  - id: a\n    source: \"2\"\n"), "dup.yaml")
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nb.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	nb, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if nb.Path != path || len(nb.Cells) != 3 {
		t.Errorf("unexpected notebook %+v", nb)
	}
}

func TestRun(t *testing.T) {
	nb, err := Parse([]byte(sample), "demo.yaml")
	if err != nil {
		t.Fatal(err)
	}
	results := NewEngine().Run(context.Background(), nb)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	last := results[2]
	if last.Failed() || last.Value != "6" || last.ExecutionCount != 3 {
		t.Errorf("unexpected last result %+v", last)
	}
}

func TestRunStopsAtFailure(t *testing.T) {
	nb := &Notebook{Title: "t", Cells: []Cell{
		{ID: "a", Source: "let a = 1"},
		{ID: "b", Source: "a / 0"},
		{ID: "c", Source: "a"},
	}}
	results := NewEngine().Run(context.Background(), nb)
	if len(results) != 2 || !results[1].Failed() {
		t.Fatalf("expected to stop after cell b, got %+v", results)
	}
	if !strings.Contains(results[1].Error, "DivisionByZero") {
		t.Errorf("expected DivisionByZero, got %q", results[1].Error)
	}
}

func TestEngineCheckpoints(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	e.ExecuteCell(ctx, Cell{ID: "1", Source: "let v = [1]"})
	e.Checkpoint("start")
	e.ExecuteCell(ctx, Cell{ID: "2", Source: "v.push(2)"})

	if err := e.Restore("start"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res := e.ExecuteCell(ctx, Cell{ID: "3", Source: "v"}); res.Value != "[1]" {
		t.Errorf("expected [1], got %s", res.Value)
	}
	if err := e.Restore("missing"); err == nil {
		t.Error("expected an error for an unknown checkpoint")
	}
}

func TestEngineTransaction(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	e.ExecuteCell(ctx, Cell{ID: "1", Source: "let mut n = 1"})
	res := e.Transaction(ctx, Cell{ID: "2", Source: "n = 2\nundefined_thing"})
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if got := e.ExecuteCell(ctx, Cell{ID: "3", Source: "n"}); got.Value != "1" {
		t.Errorf("expected rollback to 1, got %s", got.Value)
	}
}

func TestRunAll(t *testing.T) {
	var notebooks []*Notebook
	for i := 0; i < 8; i++ {
		notebooks = append(notebooks, &Notebook{Title: "nb", Cells: []Cell{
			{ID: "a", Source: "let mut s = 0"},
			{ID: "b", Source: "for i in 0..100 { s += i }"},
			{ID: "c", Source: "s"},
		}})
	}
	notebooks = append(notebooks, &Notebook{Title: "bad", Cells: []Cell{{ID: "x", Source: "1 / 0"}}})

	reports, err := RunAll(context.Background(), notebooks)
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	for i, r := range reports[:8] {
		if r.Failed() || r.Results[2].Value != "4950" {
			t.Errorf("notebook %d: unexpected results %+v", i, r.Results)
		}
	}
	if !reports[8].Failed() {
		t.Error("expected the last notebook to fail")
	}
}

func TestWriteReport(t *testing.T) {
	r := &Report{
		Notebook: &Notebook{Title: "demo"},
		Results: []CellResult{
			{CellID: "a", ExecutionCount: 1, Value: "()", Stdout: "hi\n"},
			{CellID: "b", ExecutionCount: 2, Value: "3"},
			{CellID: "c", ExecutionCount: 3, Error: "boom"},
		},
	}
	var sb strings.Builder
	WriteReport(&sb, r)
	want := "== demo\nhi\nOut[2] b: 3\nErr[3] c: boom\n"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}
