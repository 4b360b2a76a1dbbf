package main

import (
	"errors"
	"fmt"
	"io"
	"runic/internal/ast"
	"runic/internal/lexer"
	"runic/internal/parser"
	"runic/internal/runtime"
	"strings"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// palette holds the escape codes in use; all empty when color is off.
type palette struct {
	reset, red, green, cyan, gray, bold string
}

func newPalette(enabled bool) palette {
	if !enabled {
		return palette{}
	}
	return palette{
		reset: colorReset,
		red:   colorRed,
		green: colorGreen,
		cyan:  colorCyan,
		gray:  colorGray,
		bold:  colorBold,
	}
}

// ---- session ----

// session is the state of one REPL run. Declarations persist across inputs
// because every input is evaluated against the same root environment.
type session struct {
	interp *runtime.Interpreter
	env    *runtime.Environment

	accumulated strings.Builder
	braceDepth  int
}

func newSession(out io.Writer) *session {
	return &session{
		interp: runtime.NewInterpreter(out),
		env:    runtime.NewEnvironment(nil),
	}
}

// feed adds one input line. It returns the accumulated source once every
// opened brace is closed.
func (s *session) feed(line string) (string, bool) {
	s.braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
	s.accumulated.WriteString(line)
	s.accumulated.WriteString("\n")

	if s.braceDepth > 0 {
		return "", false
	}
	source := s.accumulated.String()
	s.reset()
	return source, true
}

func (s *session) pending() bool {
	return s.braceDepth > 0
}

// reset drops any partially entered input.
func (s *session) reset() {
	s.accumulated.Reset()
	s.braceDepth = 0
}

// eval runs one complete input. show reports whether the value is worth
// printing: only a trailing expression with a defined value is.
func (s *session) eval(source string) (val runtime.Value, show bool, err error) {
	stmts, err := parser.Parse(lexer.Tokenize(source))
	if err != nil {
		return nil, false, err
	}
	if len(stmts) == 0 {
		return runtime.UndefinedVal{}, false, nil
	}

	val, err = s.interp.Evaluate(stmts, s.env)
	if err != nil {
		return nil, false, err
	}
	_, isExpr := stmts[len(stmts)-1].(*ast.ExprStmt)
	_, isUndef := val.(runtime.UndefinedVal)
	return val, isExpr && !isUndef, nil
}

// formatResult renders a REPL result; text is quoted so "1" and 1 differ.
func formatResult(val runtime.Value) string {
	if t, ok := val.(runtime.TextVal); ok {
		return fmt.Sprintf("%q", string(t))
	}
	return val.String()
}

func continuationPrompt(prompt string) string {
	width := len(prompt)
	if width < 4 {
		width = 4
	}
	return "..." + strings.Repeat(" ", width-3)
}

// ---- repl command ----

func cmdRepl(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("repl", stderr)
	configPath := fs.String("config", "", "path to a runic.yaml config file")
	if err := fs.Parse(args); err != nil {
		return argsError(stderr, err)
	}
	if fs.NArg() > 0 {
		return argsError(stderr, usageError(fmt.Sprintf("unexpected argument '%s'", fs.Arg(0))))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	historyFile, err := cfg.HistoryPath()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	in, ok := stdin.(io.ReadCloser)
	if !ok {
		in = io.NopCloser(stdin)
	}

	pal := newPalette(cfg.REPL.Color)
	prompt := pal.green + cfg.REPL.Prompt + pal.reset
	morePrompt := pal.gray + continuationPrompt(cfg.REPL.Prompt) + pal.reset

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             in,
		Stdout:            stdout,
		Stderr:            stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "readline init failed: %v\n", err)
		return exitError
	}
	defer rl.Close()

	// Welcome banner
	fmt.Fprintf(rl.Stdout(), "%s%srunic REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		pal.bold, pal.cyan, pal.reset, pal.gray, pal.reset)

	sess := newSession(rl.Stdout())

	for {
		if sess.pending() {
			rl.SetPrompt(morePrompt)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if sess.pending() {
					// Cancel multi-line input
					sess.reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", pal.gray, pal.reset)
				continue
			}
			// EOF (Ctrl+D) or other error → exit
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !sess.pending() && strings.TrimSpace(line) == "exit" {
			break
		}

		source, complete := sess.feed(line)
		if !complete || strings.TrimSpace(source) == "" {
			continue
		}

		val, show, err := sess.eval(source)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", pal.red, err, pal.reset)
			continue
		}
		if show {
			fmt.Fprintf(rl.Stdout(), "%s%s%s\n", pal.cyan, formatResult(val), pal.reset)
		}
	}
	return exitOK
}
