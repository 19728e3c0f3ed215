package evaluator

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ruchy-lang/ruchy/internal/ast"
	"github.com/ruchy-lang/ruchy/internal/lexer"
	"github.com/ruchy-lang/ruchy/internal/parser"
	"github.com/ruchy-lang/ruchy/internal/pipeline"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: src, FilePath: "test.ruchy"})
	if ctx.HasErrors() {
		t.Fatalf("parse %q: %v", src, ctx.Errors[0])
	}
	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		t.Fatalf("parse %q: root is %T", src, ctx.AstRoot)
	}
	return prog
}

type harness struct {
	eval *Evaluator
	env  *Environment
	out  *bytes.Buffer
	err  *bytes.Buffer
}

func newHarness() *harness {
	e := New()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	e.Out, e.Err = out, errOut
	prelude := NewEnvironment()
	RegisterBuiltins(prelude)
	return &harness{eval: e, env: NewEnclosedEnvironment(prelude), out: out, err: errOut}
}

func (h *harness) run(t *testing.T, src string) (Object, *Error) {
	t.Helper()
	return h.eval.EvalProgram(parseSource(t, src), h.env)
}

func evalDisplay(t *testing.T, src string) string {
	t.Helper()
	val, err := newHarness().run(t, src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return Display(val)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"int add", "1 + 2", "3"},
		{"int division truncates", "7 / 2", "3"},
		{"float division", "7.0 / 2", "3.5"},
		{"mixed promotes", "1 + 2.0", "3.0"},
		{"power", "2 ** 10", "1024"},
		{"negative power", "2 ** -1", "0.5"},
		{"remainder sign", "-7 % 3", "-1"},
		{"bitwise and", "5 & 3", "1"},
		{"shift", "1 << 4", "16"},
		{"precedence", "2 + 3 * 4", "14"},
		{"string concat", `"ab" + "cd"`, `"abcd"`},
		{"string repeat", `"ab" * 3`, `"ababab"`},
		{"array concat", "[1, 2] + [3]", "[1, 2, 3]"},
		{"logical", "1 < 2 && 2 < 3", "true"},
		{"numeric equality", "1 == 1.0", "true"},
		{"tuple equality", "(1, 2) == (1, 2)", "true"},
		{"array ordering", "[1, 2] < [1, 3]", "true"},
		{"cast to float", "7 as f64", "7.0"},
		{"cast truncates", "3.9 as i64", "3"},
		{"coalesce none", "None ?? 5", "5"},
		{"coalesce some", "Some(3) ?? 5", "3"},
		{"pipeline", "[1, 2, 3] |> len", "3"},
		{"interpolation", `f"x = {1 + 1}"`, `"x = 2"`},
		{"float display", "1.0", "1.0"},
		{"single tuple", "(1,)", "(1,)"},
		{"unit", "()", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("%s: expected %s, got %s", tt.input, tt.expected, got)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"division by zero", "1 / 0", DivisionByZero},
		{"remainder by zero", "1 % 0", DivisionByZero},
		{"index out of bounds", "[1][5]", IndexOutOfBounds},
		{"missing field", "{a: 1}.b", NoSuchField},
		{"undefined name", "undefined_name", NameError},
		{"assign undefined", "nope = 1", NameError},
		{"mixed operands", "1 + true", TypeError},
		{"non-bool condition", "if 1 { 2 }", TypeError},
		{"non-exhaustive", "match 5 { 1 => 0 }", NonExhaustiveMatch},
		{"arity", "fun f(a) { a }\nf(1, 2)", ArityMismatch},
		{"top-level break", "break", InvalidControlFlow},
		{"throw", `throw "boom"`, UserError},
		{"not callable", "let x = 1\nx()", TypeError},
		{"open range", "..", TypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newHarness().run(t, tt.input)
			if err == nil {
				t.Fatalf("%s: expected %s, got no error", tt.input, tt.kind)
			}
			if err.Kind != tt.kind {
				t.Errorf("%s: expected %s, got %s (%s)", tt.input, tt.kind, err.Kind, err.Message)
			}
		})
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	_, err := newHarness().run(t, "let a = 1\nlet b = a / 0")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Line != 2 {
		t.Errorf("expected line 2, got %d", err.Line)
	}
}

func TestClosures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"capture by reference",
			"let mut x = 1\nlet f = || x\nx = 10\nf()",
			"10",
		},
		{
			"counter",
			`fun make_counter() {
  let mut n = 0
  || { n += 1; n }
}
let c = make_counter()
c()
c()
c()`,
			"3",
		},
		{
			"independent counters",
			`fun make_counter() {
  let mut n = 0
  || { n += 1; n }
}
let a = make_counter()
let b = make_counter()
a()
a()
[a(), b()]`,
			"[3, 1]",
		},
		{
			"default parameter",
			"fun greet(name, greeting = \"hi\") { f\"{greeting} {name}\" }\ngreet(\"bob\")",
			`"hi bob"`,
		},
		{
			"recursion",
			"fun fact(n) { if n <= 1 { 1 } else { n * fact(n - 1) } }\nfact(10)",
			"3628800",
		},
		{
			"mutual recursion in a block",
			`fun outer() {
  fun is_even(n) { if n == 0 { true } else { is_odd(n - 1) } }
  fun is_odd(n) { if n == 0 { false } else { is_even(n - 1) } }
  is_even(10)
}
outer()`,
			"true",
		},
		{
			"pipeline into call",
			"fun add(a, b) { a + b }\n5 |> add(3)",
			"8",
		},
		{
			"early return",
			`fun find(xs, t) {
  for (i, x) in xs.enumerate() {
    if x == t { return i }
  }
  -1
}
[find([5, 6, 7], 7), find([1], 9)]`,
			"[2, -1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestBlockScoping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"inner let does not leak",
			"let x = 1\nlet y = {\n  let x = 2\n  x * 10\n}\n[x, y]",
			"[1, 20]",
		},
		{
			"shadowing in same scope",
			"let x = 1\nlet x = x + 1\nx",
			"2",
		},
		{
			"assignment reaches outer scope",
			"let mut total = 0\nfor i in 1..4 { total += i }\ntotal",
			"6",
		},
		{
			"terminated block yields unit",
			"let v = { 1; }\nv",
			"()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestFailedLetBindsNothing(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "let (a, b) = (1, 2, 3)")
	if err == nil || err.Kind != NonExhaustiveMatch {
		t.Fatalf("expected NonExhaustiveMatch, got %v", err)
	}
	if _, ok := h.env.Get("a"); ok {
		t.Error("a should not be bound after a failed let")
	}
}

func TestAliasing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"arrays share storage",
			"let a = [1, 2]\nlet b = a\nb.push(3)\nb[0] = 9\na",
			"[9, 2, 3]",
		},
		{
			"records share storage",
			"let p = {x: 1}\nlet q = p\nq.x = 5\np.x",
			"5",
		},
		{
			"repeat copies elements",
			"let g = [[0]; 2]\ng[0].push(1)\ng",
			"[[0, 1], [0]]",
		},
		{
			"circular display",
			"let a = [1]\na.push(a)\na",
			"[1, <circular>]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLoops(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		output   string
		expected string
	}{
		{
			"loop with break",
			"let mut i = -1\nloop {\n  i += 1\n  if i > 2 { break }\n  println(i)\n}",
			"0\n1\n2\n",
			"()",
		},
		{
			"continue and break",
			"for i in 0..5 {\n  if i == 1 { continue }\n  if i == 4 { break }\n  println(i)\n}",
			"0\n2\n3\n",
			"()",
		},
		{
			"loop value",
			"let v = loop { break 42 }\nv",
			"",
			"42",
		},
		{
			"while",
			"let mut n = 0\nwhile n < 3 { n += 1 }\nn",
			"",
			"3",
		},
		{
			"while let",
			"let mut stack = [1, 2, 3]\nlet mut sum = 0\nwhile let Some(x) = stack.pop() {\n  sum += x\n}\nsum",
			"",
			"6",
		},
		{
			"labeled break",
			`let mut found = (0, 0)
'outer: for i in 0..5 {
  for j in 0..5 {
    if i * j == 6 {
      found = (i, j)
      break 'outer
    }
  }
}
found`,
			"",
			"(2, 3)",
		},
		{
			"iterate string",
			"for c in \"ab\" { print(c) }",
			"ab",
			"()",
		},
		{
			"comprehension",
			"[x * x for x in 0..5 if x % 2 == 0]",
			"",
			"[0, 4, 16]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			val, err := h.run(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := h.out.String(); got != tt.output {
				t.Errorf("output: expected %q, got %q", tt.output, got)
			}
			if got := Display(val); got != tt.expected {
				t.Errorf("value: expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestPropagate(t *testing.T) {
	h := newHarness()
	val, err := h.run(t, `fun half(n) {
  if n % 2 == 0 { Ok(n / 2) } else { Err("odd") }
}
fun quarter(n) {
  let h = half(n)?
  println("after first")
  Ok(half(h)?)
}
[quarter(8), quarter(6), quarter(5)]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := Display(val), `[Ok(2), Err("odd"), Err("odd")]`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got, want := h.out.String(), "after first\nafter first\n"; got != want {
		t.Errorf("expected output %q, got %q", want, got)
	}
}

func TestTryCatch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"catch payload",
			"let r = try {\n  throw \"bad\"\n} catch e {\n  f\"caught {e}\"\n}\nr",
			`"caught bad"`,
		},
		{
			"catch by kind",
			"try { 1 / 0 } catch DivisionByZero(msg) { msg }",
			`"division by zero"`,
		},
		{
			"error fields",
			"try { [1][3] } catch e { e.kind }",
			`"IndexOutOfBounds"`,
		},
		{
			"finally runs",
			"let mut log = []\nlet v = try { log.push(1); 10 } finally { log.push(2) }\n[v, log]",
			"[10, [1, 2]]",
		},
		{
			"no error",
			"try { 5 } catch e { 0 }",
			"5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestUncaughtKindPropagates(t *testing.T) {
	_, err := newHarness().run(t, "try { 1 / 0 } catch IndexOutOfBounds(m) { 0 }")
	if err == nil || err.Kind != DivisionByZero {
		t.Fatalf("expected DivisionByZero, got %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	h := newHarness()
	h.eval.MaxCallDepth = 100
	_, err := h.run(t, "fun f(n) { f(n + 1) }\nf(0)")
	if err == nil || err.Kind != StackOverflow {
		t.Fatalf("expected StackOverflow, got %v", err)
	}

	// The evaluator stays usable after an overflow.
	val, err := h.run(t, "1 + 1")
	if err != nil || Display(val) != "2" {
		t.Fatalf("expected 2 after overflow, got %v, %v", val, err)
	}
}

func TestStepBudget(t *testing.T) {
	h := newHarness()
	h.eval.StepBudget = 1000
	_, err := h.run(t, "loop { }")
	if err == nil || err.Kind != ResourceExceeded {
		t.Fatalf("expected ResourceExceeded, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h := newHarness()
	h.eval.Context = ctx
	_, err := h.run(t, "loop { }")
	if err == nil || err.Kind != ResourceExceeded {
		t.Fatalf("expected ResourceExceeded, got %v", err)
	}
}

func TestCollectionSizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"huge string repetition", `"ab" * 9223372036854775807`},
		{"string repetition over limit", `"ab" * 600`},
		{"compound repetition", "let mut s = \"abcd\"\ns *= 300"},
		{"huge array repetition", "[0; 1152921504606846976]"},
		{"array repetition over limit", "[0; 1001]"},
		{"unbounded to_array", "(0..9223372036854775807).to_array()"},
		{"stepped range over limit", "range(0, 5000, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.eval.MaxCollectionSize = 1000
			_, err := h.run(t, tt.input)
			if err == nil || err.Kind != ResourceExceeded {
				t.Fatalf("%s: expected ResourceExceeded, got %v", tt.input, err)
			}
		})
	}

	h := newHarness()
	h.eval.MaxCollectionSize = 1000
	val, err := h.run(t, `[("ab" * 500).len(), [0; 1000].len(), (1..=1000).to_array().len()]`)
	if err != nil {
		t.Fatalf("sizes at the limit: %v", err)
	}
	if got := Display(val); got != "[1000, 1000, 1000]" {
		t.Errorf("expected [1000, 1000, 1000], got %s", got)
	}
}

func TestDefaultCollectionLimit(t *testing.T) {
	_, err := newHarness().run(t, `"ab" * 9223372036854775807`)
	if err == nil || err.Kind != ResourceExceeded {
		t.Fatalf("expected ResourceExceeded, got %v", err)
	}
}

func TestPanicAbortsOnlyTheStatement(t *testing.T) {
	h := newHarness()
	h.env.Define("explode", &Builtin{Name: "explode", Fn: func(e *Evaluator, args ...Object) (Object, error) {
		panic("native failure")
	}})

	_, err := h.run(t, "let before = 1\nexplode()")
	if err == nil || err.Kind != RuntimeError {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if !strings.Contains(err.Message, "native failure") || err.Line != 2 {
		t.Errorf("expected a located error naming the panic, got %s", err.Error())
	}

	val, err := h.run(t, "before + 1")
	if err != nil {
		t.Fatalf("evaluator unusable after panic: %v", err)
	}
	if got := Display(val); got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
}

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"inclusive range ending at max",
			"let mut n = 0\nfor i in 9223372036854775806..=9223372036854775807 { n += 1 }\nn",
			"2",
		},
		{"full-width len saturates", "((-9223372036854775807 - 1)..9223372036854775807).len()", "9223372036854775807"},
		{"inclusive len", "(9223372036854775806..=9223372036854775807).len()", "2"},
		{"contains last", "(9223372036854775806..=9223372036854775807).contains(9223372036854775807)", "true"},
		{"exclusive excludes end", "(0..3).contains(3)", "false"},
		{"empty range", "(5..5).len()", "0"},
		{"step near max", "range(9223372036854775800, 9223372036854775807, 10)", "[9223372036854775800]"},
		{"negative step", "range(10, 0, -3)", "[10, 7, 4, 1]"},
		{"step", "range(0, 10, 3)", "[0, 3, 6, 9]"},
		{"step past bound", "range(0, 0, 1)", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestStructsAndEnums(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"struct methods",
			`struct Point { x: i64, y: i64 = 0 }
impl Point {
  fun new(x) { Point { x: x } }
  fun sum(self) { self.x + self.y }
}
let p = Point::new(3)
p.sum()`,
			"3",
		},
		{
			"struct display",
			"struct Point { x: i64, y: i64 = 0 }\nPoint { x: 3 }",
			"Point {x: 3, y: 0}",
		},
		{
			"enum dispatch",
			`enum Shape { Circle(f64), Square(f64), Empty }
fun area(s) {
  match s {
    Shape::Circle(r) => 3 * r * r,
    Shape::Square(w) => w * w,
    Empty => 0,
  }
}
[area(Shape::Circle(2)), area(Shape::Square(3)), area(Shape::Empty)]`,
			"[12, 9, 0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestBuiltinsAndMethods(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"array chain", "[3, 1, 2].sort().map(|x| x * 10).filter(|x| x > 10)", "[20, 30]"},
		{"split", `"a,b".split(",").len()`, "2"},
		{"upper", `"Hello".to_upper()`, `"HELLO"`},
		{"type_of", "type_of(1.5)", `"f64"`},
		{"parse_int ok", `parse_int("42")`, "Ok(42)"},
		{"min", "min(3, 1, 2)", "1"},
		{"option unwrap_or", "None.unwrap_or(7)", "7"},
		{"record keys", "{b: 1, a: 2}.keys()", `["a", "b"]`},
		{"range to array", "(1..=3).to_array()", "[1, 2, 3]"},
		{"slice", "[1, 2, 3, 4][1..3]", "[2, 3]"},
		{"is_tty", "is_tty()", "false"},
		{"json parse", `json_parse("{\"a\": [1, 2.5]}")`, "Ok({a: [1, 2.5]})"},
		{"json stringify", `json_stringify({b: 1, a: [true, ()]}) == "{\"a\":[true,null],\"b\":1}"`, "true"},
		{"yaml parse", `yaml_parse("a: 1\nb: [x, y]")`, `Ok({a: 1, b: ["x", "y"]})`},
		{"yaml stringify", `yaml_stringify({a: 1}) == "a: 1"`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("%s: expected %s, got %s", tt.input, tt.expected, got)
			}
		})
	}
}

func TestDbgWritesToErr(t *testing.T) {
	h := newHarness()
	val, err := h.run(t, "dbg([1, 2])")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Display(val) != "[1, 2]" {
		t.Errorf("dbg should return its argument, got %s", Display(val))
	}
	if got, want := h.err.String(), "[dbg] [1, 2]\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAssertFailure(t *testing.T) {
	_, err := newHarness().run(t, "assert_eq(1, 2)")
	if err == nil || err.Kind != RuntimeError {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
}
