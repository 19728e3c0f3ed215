package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
limits:
  max_eval_depth: 500
  step_budget: 10000
  max_collection_size: 4096
  timeout: 2s
repl:
  color: never
  history_file: /tmp/h
kernel:
  addr: ":9000"
`)
	cfg, err := Parse(data, "ruchy.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Config{
		Limits: Limits{MaxEvalDepth: 500, MaxCallDepth: DefaultMaxCallDepth, StepBudget: 10000, Timeout: 2 * time.Second, MaxCollectionSize: 4096},
		Repl:   ReplConfig{HistoryFile: "/tmp/h", Color: "never"},
		Kernel: Kernel{Addr: ":9000"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"negative depth", "limits:\n  max_eval_depth: -1\n"},
		{"negative budget", "limits:\n  step_budget: -5\n"},
		{"negative collection size", "limits:\n  max_collection_size: -1\n"},
		{"bad color", "repl:\n  color: sometimes\n"},
		{"bad yaml", "limits: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data), "ruchy.yaml"); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limits.MaxEvalDepth != DefaultMaxEvalDepth {
		t.Errorf("MaxEvalDepth = %d, want %d", cfg.Limits.MaxEvalDepth, DefaultMaxEvalDepth)
	}
	if cfg.Limits.MaxCollectionSize != DefaultMaxCollectionSize {
		t.Errorf("MaxCollectionSize = %d, want %d", cfg.Limits.MaxCollectionSize, DefaultMaxCollectionSize)
	}
	if cfg.Repl.Color != "auto" {
		t.Errorf("Color = %q, want auto", cfg.Repl.Color)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte("kernel:\n  addr: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != path {
		t.Errorf("Find() = %q, want %q", got, path)
	}
}
