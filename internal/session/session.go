package session

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/config"
	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/lexer"
	"github.com/ruchy-lang/ruchy/internal/parser"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
)

// Entry is one submitted unit as handed to a Recorder.
type Entry struct {
	SessionID string
	// Seq numbers submissions across the whole session; it does not
	// restart on Reset.
	Seq int
	// Epoch counts the resets that preceded the submission.
	Epoch    int
	Source   string
	Value    string
	Error    string
	Stdout   string
	Duration time.Duration
}

// Recorder receives every submission after it has been evaluated.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Result describes one call to EvaluateTopLevel or EvalSource.
type Result struct {
	Value          evaluator.Object
	Diagnostics    []*evaluator.Error
	Stdout         string
	Stderr         string
	ExecutionCount int
	Duration       time.Duration
}

// OK reports whether the submission completed without diagnostics.
func (r *Result) OK() bool { return len(r.Diagnostics) == 0 }

// Err returns the first diagnostic, or nil.
func (r *Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	return r.Diagnostics[0]
}

// Session is a persistent evaluation context. The root scope survives
// across submissions; a failing statement leaves earlier bindings intact.
type Session struct {
	ID string

	mu       sync.Mutex
	eval     *evaluator.Evaluator
	prelude  *evaluator.Environment
	root     *evaluator.Environment
	count    int
	seq      int
	epoch    int
	limits   config.Limits
	logger   *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
	recorder Recorder
	history  []string
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithLimits(l config.Limits) Option {
	return func(s *Session) { s.limits = l }
}

// WithOutput tees captured output to the given writers as it is produced.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Session) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithID overrides the generated session ID; replay uses it.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

func New(opts ...Option) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		limits: config.Default().Limits,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eval = evaluator.New()
	s.eval.Logger = s.logger
	s.eval.ApplyLimits(s.limits)
	s.prelude = evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(s.prelude)
	s.root = evaluator.NewEnclosedEnvironment(s.prelude)
	return s
}

// ExecutionCount is the number of submissions evaluated so far.
func (s *Session) ExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// History returns the submitted sources in order.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// EvaluateTopLevel evaluates a single already-parsed statement as one unit.
func (s *Session) EvaluateTopLevel(ctx context.Context, stmt ast.Statement) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit(ctx, stmt.String(), func(res *Result) {
		s.runUnit(ctx, stmt, res)
	})
}

// EvalSource parses src and evaluates its statements in order. Each
// statement is its own unit: evaluation stops at the first failure, and
// the bindings made by the statements before it are kept.
func (s *Session) EvalSource(ctx context.Context, src string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evalSource(ctx, src)
}

func (s *Session) evalSource(ctx context.Context, src string) *Result {
	return s.submit(ctx, src, func(res *Result) {
		prog, diags := Parse(src, "")
		if len(diags) > 0 {
			res.Diagnostics = diags
			return
		}
		for _, stmt := range prog.Statements {
			if !s.runUnit(ctx, stmt, res) {
				return
			}
		}
	})
}

// submit wraps one submission: output capture, counting, timing, history
// and the recorder hook.
func (s *Session) submit(ctx context.Context, src string, body func(*Result)) *Result {
	var out, errOut bytes.Buffer
	s.eval.Out = tee(&out, s.stdout)
	s.eval.Err = tee(&errOut, s.stderr)

	s.count++
	s.seq++
	s.history = append(s.history, src)
	res := &Result{Value: evaluator.UNIT, ExecutionCount: s.count}
	start := time.Now()
	body(res)
	res.Duration = time.Since(start)
	res.Stdout = out.String()
	res.Stderr = errOut.String()

	if res.OK() {
		s.logger.Debug("unit evaluated", "session", s.ID, "count", res.ExecutionCount, "duration", res.Duration)
	} else {
		s.logger.Debug("unit failed", "session", s.ID, "count", res.ExecutionCount, "error", res.Diagnostics[0].Error())
	}
	s.record(ctx, src, res)
	return res
}

func (s *Session) runUnit(ctx context.Context, stmt ast.Statement, res *Result) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.limits.Timeout)
		defer cancel()
	}
	s.eval.Context = ctx
	val, err := s.eval.EvalTopLevel(stmt, s.root)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, err)
		res.Value = nil
		return false
	}
	res.Value = val
	return true
}

func (s *Session) record(ctx context.Context, src string, res *Result) {
	if s.recorder == nil {
		return
	}
	entry := Entry{
		SessionID: s.ID,
		Seq:       s.seq,
		Epoch:     s.epoch,
		Source:    src,
		Stdout:    res.Stdout,
		Duration:  res.Duration,
	}
	if res.Value != nil {
		entry.Value = evaluator.Display(res.Value)
	}
	if err := res.Err(); err != nil {
		entry.Error = err.Error()
	}
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("recording submission failed", "session", s.ID, "error", err)
	}
}

// Bindings returns the user bindings of the root scope.
func (s *Session) Bindings() map[string]evaluator.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.root.Snapshot()
	out := make(map[string]evaluator.Object, len(snap))
	for name, b := range snap {
		out[name] = b.Value
	}
	return out
}

// Names lists the user bindings of the root scope, sorted.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Names()
}

// Lookup resolves name through the root scope and the prelude.
func (s *Session) Lookup(name string) (evaluator.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Get(name)
}

// Reset discards every user binding and declared type. The session ID is
// kept; the execution counter restarts while recorded entries keep their
// sequence and move to a new epoch.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.Clear()
	s.eval.Types = make(map[string]evaluator.Object)
	s.count = 0
	s.epoch++
	s.history = nil
	s.logger.Debug("session reset", "session", s.ID)
}

// Parse runs the lexer and parser over src. Diagnostics are converted to
// SyntaxError values so callers see one error type.
func Parse(src, file string) (*ast.Program, []*evaluator.Error) {
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: src, FilePath: file})
	if ctx.HasErrors() {
		diags := make([]*evaluator.Error, 0, len(ctx.Errors))
		for _, d := range ctx.Errors {
			diags = append(diags, &evaluator.Error{
				Kind:    evaluator.SyntaxError,
				Message: d.Message,
				Line:    d.Token.Line,
				Column:  d.Token.Column,
				File:    d.File,
			})
		}
		return nil, diags
	}
	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return nil, []*evaluator.Error{{Kind: evaluator.SyntaxError, Message: "no program produced", File: file}}
	}
	return prog, nil
}

// Incomplete reports whether src ended inside an open construct, so an
// interactive host should read another line.
func Incomplete(src string) bool {
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: src})
	return ctx.Incomplete
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
