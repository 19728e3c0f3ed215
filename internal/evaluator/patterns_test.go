package evaluator

import "testing"

func TestMatchArms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"first matching arm wins",
			"match 5 {\n  n if n > 3 => \"big\",\n  5 => \"five\",\n  _ => \"other\",\n}",
			`"big"`,
		},
		{"or pattern", `match 2 { 1 | 2 => "low", _ => "high" }`, `"low"`},
		{"range pattern", `match 7 { 0..5 => "a", 5..=9 => "b", _ => "c" }`, `"b"`},
		{"tuple pattern", "match (1, 2) { (a, 2) => a, _ => 0 }", "1"},
		{"middle rest", "match [1, 2, 3, 4] { [a, .., z] => a + z, _ => 0 }", "5"},
		{"empty array", "match [] { [] => \"empty\", _ => \"full\" }", `"empty"`},
		{"option", "match Some(4) { Some(x) => x * 2, None => 0 }", "8"},
		{"result err", `match Err("e") { Ok(v) => v, Err(m) => m }`, `"e"`},
		{"record pattern", "let p = {x: 1, y: 2}\nmatch p { {x, y} => x + y }", "3"},
		{"string literal", `match "hi" { "hi" => 1, _ => 2 }`, "1"},
		{
			"closed struct pattern rejects extra fields",
			"struct P { x: i64, y: i64 }\nlet p = P { x: 1, y: 2 }\nmatch p { P { x, !.. } => x, P { x, y } => x + y }",
			"3",
		},
		{"closed record pattern", "let r = {x: 1}\nmatch r { {x, !..} => x, _ => 0 }", "1"},
		{"open record pattern ignores extras", "let r = {x: 1, y: 2}\nmatch r { {x} => x, _ => 0 }", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLetDestructuring(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"rest binds tail", "let [first, ..rest] = [1, 2, 3]\n[first, rest]", "[1, [2, 3]]"},
		{"tuple", "let (a, b) = (1, \"x\")\nb", `"x"`},
		{"nested", "let (a, [b, c]) = (1, [2, 3])\na + b + c", "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalDisplay(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestGuardEvaluatedOnce(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{"guard passes", "2", `["yes", 1]`},
		{"guard fails", "1", `["no", 1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "let mut calls = 0\n" +
				"fun check(n) { calls += 1; n > 1 }\n" +
				"let r = match " + tt.subject + " {\n" +
				"  n if check(n) => \"yes\",\n" +
				"  _ => \"no\",\n" +
				"}\n" +
				"[r, calls]"
			if got := evalDisplay(t, src); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestGuardInsideOrAlternatives(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{"second alternative guard passes", "(-5, 1)", "[-5, 1]"},
		{"first alternative guard passes", "[7, 1]", "[7, 1]"},
		{"array shape skips tuple guard", "[1, 1]", "[0, 1]"},
		{"tuple shape skips array guard", "(5, 0)", "[0, 1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "let mut calls = 0\n" +
				"fun big(n) { calls += 1; n > 3 }\n" +
				"fun neg(n) { calls += 1; n < 0 }\n" +
				"let r = match " + tt.subject + " {\n" +
				"  ([x, _] if big(x)) | ((x, _) if neg(x)) => x,\n" +
				"  _ => 0,\n" +
				"}\n" +
				"[r, calls]"
			if got := evalDisplay(t, src); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestOrPatternBindsFromMatchingAlternative(t *testing.T) {
	got := evalDisplay(t, "match (0, 5) { (0, x) | (x, 0) => x, _ => -1 }")
	if got != "5" {
		t.Errorf("expected 5, got %s", got)
	}
}
