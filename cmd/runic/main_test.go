package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runic/internal/runtime"
	"strings"
	"testing"
)

// writeSource stores source in a temp .rn file and returns its path.
func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.rn")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

// runCLI runs the command line and captures both streams.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPrintsEchoOutput(t *testing.T) {
	path := writeSource(t, `echo 1, " ", true;`)
	code, out, errOut := runCLI(t, "run", path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if out != "1 true\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunPrintResult(t *testing.T) {
	path := writeSource(t, `let x = 3; x * 2`)
	code, out, _ := runCLI(t, "run", path, "--print-result")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "6\n" {
		t.Errorf("expected the final value, got %q", out)
	}

	// flags may also precede the file
	_, out, _ = runCLI(t, "run", "--print-result", path)
	if out != "6\n" {
		t.Errorf("expected the final value, got %q", out)
	}
}

func TestRunRuntimeError(t *testing.T) {
	path := writeSource(t, "echo \"before\";\nlet x = 1;\nx = 2;")
	code, out, errOut := runCLI(t, "run", path)
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out != "before\n" {
		t.Errorf("output before the error should stay, got %q", out)
	}
	if !strings.Contains(errOut, "[E3002] ImmutableReassignment at 3:1") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestRunSyntaxError(t *testing.T) {
	path := writeSource(t, `let x;`)
	code, out, errOut := runCLI(t, "run", path)
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out != "" {
		t.Errorf("nothing should run after a syntax error, got %q", out)
	}
	if !strings.Contains(errOut, "[E2001] SyntaxError") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestRunTrace(t *testing.T) {
	path := writeSource(t, `def id(v) { return v; } id(1);`)
	code, _, errOut := runCLI(t, "run", "--trace", path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(errOut, "function=id") {
		t.Errorf("expected call trace on stderr, got %q", errOut)
	}
}

func TestRunConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(cfg, []byte("run:\n  print_result: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeSource(t, `40 + 2`)
	code, out, errOut := runCLI(t, "run", "--config", cfg, path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if out != "42\n" {
		t.Errorf("expected config to enable result printing, got %q", out)
	}
}

func TestRunBadConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfg, []byte("run:\n  colour: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, "run", "--config", cfg, writeSource(t, `1`))
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "colour") {
		t.Errorf("expected the unknown key in the error, got %q", errOut)
	}
}

func TestRunFileNotFound(t *testing.T) {
	code, _, errOut := runCLI(t, "run", filepath.Join(t.TempDir(), "missing.rn"))
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "file not found") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	if code, _, _ := runCLI(t); code != exitUsage {
		t.Errorf("no command: expected exit 2, got %d", code)
	}
	code, _, errOut := runCLI(t, "frobnicate")
	if code != exitUsage || !strings.Contains(errOut, "unknown command 'frobnicate'") {
		t.Errorf("unknown command: got %d %q", code, errOut)
	}
	code, _, errOut = runCLI(t, "run")
	if code != exitUsage || !strings.Contains(errOut, "missing file argument") {
		t.Errorf("missing file: got %d %q", code, errOut)
	}
	code, _, _ = runCLI(t, "run", "--bogus", "x.rn")
	if code != exitUsage {
		t.Errorf("unknown flag: expected exit 2, got %d", code)
	}
}

func TestTokensText(t *testing.T) {
	code, out, _ := runCLI(t, "tokens", writeSource(t, `let x = 1;`))
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 token lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "let") || !strings.HasSuffix(lines[0], "1:1") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[5], "EOF") {
		t.Errorf("expected EOF last, got %q", lines[5])
	}
}

func TestTokensJSON(t *testing.T) {
	code, out, _ := runCLI(t, "tokens", writeSource(t, `a @ b`), "--json")
	if code != exitError {
		t.Errorf("expected exit 1 for an invalid character, got %d", code)
	}

	var result struct {
		Tokens []struct {
			Kind   string `json:"kind"`
			Lexeme string `json:"lexeme"`
		} `json:"tokens"`
		Diagnostics []map[string]interface{} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(result.Tokens) != 4 || result.Tokens[1].Kind != "INVALID" {
		t.Errorf("unexpected tokens %+v", result.Tokens)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0]["code"] != "E1001" {
		t.Errorf("unexpected diagnostics %v", result.Diagnostics)
	}
}

func TestParseJSON(t *testing.T) {
	code, out, _ := runCLI(t, "parse", writeSource(t, `echo 1 + 2;`))
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	prog, ok := result["ast"].(map[string]interface{})
	if !ok || prog["kind"] != "Program" {
		t.Errorf("expected a Program node, got %v", result["ast"])
	}
}

func TestParseJSONError(t *testing.T) {
	code, out, _ := runCLI(t, "parse", writeSource(t, `halt;`))
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	var result struct {
		AST         interface{}              `json:"ast"`
		Diagnostics []map[string]interface{} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.AST != nil {
		t.Errorf("expected no AST, got %v", result.AST)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0]["kind"] != "SyntaxError" {
		t.Errorf("unexpected diagnostics %v", result.Diagnostics)
	}
}

// ---- REPL session ----

func TestSessionPersistsDeclarations(t *testing.T) {
	var out bytes.Buffer
	sess := newSession(&out)

	if _, _, err := sess.eval("mut total = 1;"); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if _, _, err := sess.eval("total += 41;"); err != nil {
		t.Fatalf("eval: %v", err)
	}
	val, show, err := sess.eval("total")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !show || val != runtime.NumberVal(42) {
		t.Errorf("expected to show 42, got %v (show=%v)", val, show)
	}
}

func TestSessionShowsOnlyDefinedExpressions(t *testing.T) {
	sess := newSession(&bytes.Buffer{})
	tests := []struct {
		source string
		show   bool
	}{
		{`let a = 1;`, false},
		{`a + 1`, true},
		{`echo a;`, false},
		{`undefined`, false},
		{`def f() { }`, false},
		{`f`, true},
	}
	for _, tt := range tests {
		_, show, err := sess.eval(tt.source)
		if err != nil {
			t.Fatalf("%s: %v", tt.source, err)
		}
		if show != tt.show {
			t.Errorf("%s: expected show=%v, got %v", tt.source, tt.show, show)
		}
	}
}

func TestSessionErrorKeepsState(t *testing.T) {
	sess := newSession(&bytes.Buffer{})
	sess.eval("let k = 1;")
	if _, _, err := sess.eval("k = 2;"); err == nil {
		t.Fatal("expected an error")
	}
	val, _, err := sess.eval("k")
	if err != nil || val != runtime.NumberVal(1) {
		t.Errorf("expected k to stay 1, got %v (%v)", val, err)
	}
}

func TestSessionMultiLineInput(t *testing.T) {
	sess := newSession(&bytes.Buffer{})
	if _, done := sess.feed("def add(a, b) {"); done {
		t.Fatal("expected more input")
	}
	if !sess.pending() {
		t.Error("expected pending input")
	}
	src, done := sess.feed("  return a + b; }")
	if !done {
		t.Fatal("expected complete input")
	}
	if _, _, err := sess.eval(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	val, _, err := sess.eval("add(2, 3)")
	if err != nil || val != runtime.NumberVal(5) {
		t.Errorf("expected 5, got %v (%v)", val, err)
	}

	sess.feed("while true {")
	sess.reset()
	if sess.pending() {
		t.Error("reset should drop pending input")
	}
}

func TestFormatResult(t *testing.T) {
	if got := formatResult(runtime.TextVal("hi")); got != `"hi"` {
		t.Errorf("expected quoted text, got %s", got)
	}
	if got := formatResult(runtime.NumberVal(2.5)); got != "2.5" {
		t.Errorf("expected 2.5, got %s", got)
	}
}

func TestPalette(t *testing.T) {
	if p := newPalette(false); p.red != "" || p.reset != "" {
		t.Error("disabled palette must be empty")
	}
	if p := newPalette(true); p.red != colorRed {
		t.Error("enabled palette must carry escape codes")
	}
}
