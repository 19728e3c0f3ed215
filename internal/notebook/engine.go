package notebook

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/session"
)

// CellResult is the outcome of executing one cell.
type CellResult struct {
	CellID         string
	ExecutionCount int
	Value          string
	Stdout         string
	Stderr         string
	Error          string
	Duration       time.Duration
}

func (r CellResult) Failed() bool { return r.Error != "" }

// Engine executes cells against one session. Named checkpoints let a
// front end rewind the session to an earlier state.
type Engine struct {
	sess *session.Session

	mu          sync.Mutex
	checkpoints map[string]*session.Checkpoint
}

func NewEngine(opts ...session.Option) *Engine {
	return &Engine{
		sess:        session.New(opts...),
		checkpoints: make(map[string]*session.Checkpoint),
	}
}

func (e *Engine) Session() *session.Session { return e.sess }

func (e *Engine) ExecuteCell(ctx context.Context, cell Cell) CellResult {
	return cellResult(cell.ID, e.sess.EvalSource(ctx, cell.Source))
}

// Transaction executes the cell and rolls the session back if it fails.
func (e *Engine) Transaction(ctx context.Context, cell Cell) CellResult {
	return cellResult(cell.ID, e.sess.Transaction(ctx, cell.Source))
}

func (e *Engine) Checkpoint(name string) {
	cp := e.sess.Checkpoint(name)
	e.mu.Lock()
	e.checkpoints[name] = cp
	e.mu.Unlock()
}

func (e *Engine) Restore(name string) error {
	e.mu.Lock()
	cp, ok := e.checkpoints[name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("no checkpoint named %q", name)
	}
	e.sess.Restore(cp)
	return nil
}

// Run executes the notebook's cells in order and stops after the first
// failing cell.
func (e *Engine) Run(ctx context.Context, nb *Notebook) []CellResult {
	results := make([]CellResult, 0, len(nb.Cells))
	for _, cell := range nb.Cells {
		if ctx.Err() != nil {
			break
		}
		res := e.ExecuteCell(ctx, cell)
		results = append(results, res)
		if res.Failed() {
			break
		}
	}
	return results
}

func cellResult(id string, res *session.Result) CellResult {
	out := CellResult{
		CellID:         id,
		ExecutionCount: res.ExecutionCount,
		Stdout:         res.Stdout,
		Stderr:         res.Stderr,
		Duration:       res.Duration,
	}
	if res.Value != nil {
		out.Value = evaluator.Display(res.Value)
	}
	if err := res.Err(); err != nil {
		out.Error = err.Error()
	}
	return out
}

// Report is the result of running one notebook.
type Report struct {
	Notebook *Notebook
	Results  []CellResult
}

func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return true
		}
	}
	return false
}

// RunAll runs independent notebooks concurrently, each in its own
// session. Reports come back in input order. A notebook whose cells fail
// is still reported; only context cancellation aborts the batch.
func RunAll(ctx context.Context, notebooks []*Notebook, opts ...session.Option) ([]*Report, error) {
	reports := make([]*Report, len(notebooks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, nb := range notebooks {
		i, nb := i, nb
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			engine := NewEngine(opts...)
			reports[i] = &Report{Notebook: nb, Results: engine.Run(ctx, nb)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

// WriteReport prints a report in a plain Out[n]: layout.
func WriteReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "== %s\n", r.Notebook.Title)
	for _, res := range r.Results {
		if res.Stdout != "" {
			io.WriteString(w, res.Stdout)
			if !strings.HasSuffix(res.Stdout, "\n") {
				io.WriteString(w, "\n")
			}
		}
		if res.Failed() {
			fmt.Fprintf(w, "Err[%d] %s: %s\n", res.ExecutionCount, res.CellID, res.Error)
			continue
		}
		if res.Value != "()" {
			fmt.Fprintf(w, "Out[%d] %s: %s\n", res.ExecutionCount, res.CellID, res.Value)
		}
	}
}
