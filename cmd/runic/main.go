// Command runic is the CLI entry point for the runic toolchain.
//
// Usage:
//
//	runic tokens <file> [--json]                         Print tokens
//	runic parse  <file>                                  Print AST as JSON
//	runic run    <file> [--print-result] [--trace]       Run a source file
//	runic repl   [--config path]                         Start interactive REPL
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runic/internal/ast"
	"runic/internal/config"
	"runic/internal/lexer"
	"runic/internal/parser"
	"runic/internal/runtime"
	"runic/internal/token"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError is a command-line mistake found after flag parsing.
type usageError string

func (e usageError) Error() string { return string(e) }

const errMissingFile = usageError("missing file argument")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "tokens":
		return cmdTokens(rest, stdout, stderr)
	case "parse":
		return cmdParse(rest, stdout, stderr)
	case "run":
		return cmdRun(rest, stdout, stderr)
	case "repl":
		return cmdRepl(rest, stdin, stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "error: unknown command '%s'\n", command)
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  runic tokens <file> [--json]                     Tokenize and print tokens")
	fmt.Fprintln(w, "  runic parse  <file>                              Parse and print AST (JSON)")
	fmt.Fprintln(w, "  runic run    <file> [--print-result] [--trace]   Run a source file")
	fmt.Fprintln(w, "  runic repl                                       Start interactive REPL")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "run and repl accept --config <path>; otherwise ./runic.yaml is used when present.")
}

// parseFileArgs parses fs around a single positional file argument, so flags
// may come before or after it.
func parseFileArgs(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() == 0 {
		return "", errMissingFile
	}
	filename := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", usageError(fmt.Sprintf("unexpected argument '%s'", fs.Arg(0)))
	}
	return filename, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// argsError reports a command-line problem and picks the exit code for it.
func argsError(stderr io.Writer, err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	// flag has already printed its own parse errors
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return exitUsage
}

func readFile(filename string, stderr io.Writer) (string, bool) {
	source, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "error: file not found: %s\n", filename)
		} else {
			fmt.Fprintf(stderr, "error: cannot read file %s: %v\n", filename, err)
		}
		return "", false
	}
	return string(source), true
}

// ---- tokens command ----

func cmdTokens(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("tokens", stderr)
	jsonMode := fs.Bool("json", false, "print tokens as JSON")
	filename, err := parseFileArgs(fs, args)
	if err != nil {
		return argsError(stderr, err)
	}
	source, ok := readFile(filename, stderr)
	if !ok {
		return exitError
	}

	tokens := lexer.Tokenize(source)
	diags := invalidTokenDiags(tokens)

	if *jsonMode {
		if err := printTokensJSON(stdout, tokens, diags); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitError
		}
	} else {
		printTokensText(stdout, tokens)
		printDiagsText(stderr, diags)
	}

	if len(diags) > 0 {
		return exitError
	}
	return exitOK
}

// ---- parse command ----

func cmdParse(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("parse", stderr)
	filename, err := parseFileArgs(fs, args)
	if err != nil {
		return argsError(stderr, err)
	}
	source, ok := readFile(filename, stderr)
	if !ok {
		return exitError
	}

	prog, err := parser.New(lexer.Tokenize(source)).ParseProgram()

	output := map[string]interface{}{
		"ast":         nil,
		"diagnostics": errorsToSlice(err),
	}
	if prog != nil {
		output["ast"] = ast.NodeToMap(prog)
	}
	if jerr := printJSON(stdout, output); jerr != nil {
		fmt.Fprintf(stderr, "error: %v\n", jerr)
		return exitError
	}

	if err != nil {
		return exitError
	}
	return exitOK
}

// ---- run command ----

func cmdRun(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("run", stderr)
	printResult := fs.Bool("print-result", false, "print the program's final value")
	trace := fs.Bool("trace", false, "log function calls to stderr")
	configPath := fs.String("config", "", "path to a runic.yaml config file")
	filename, err := parseFileArgs(fs, args)
	if err != nil {
		return argsError(stderr, err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	source, ok := readFile(filename, stderr)
	if !ok {
		return exitError
	}

	stmts, err := parser.Parse(lexer.Tokenize(source))
	if err != nil {
		printDiagsText(stderr, []error{err})
		return exitError
	}

	var opts []runtime.Option
	if *trace || cfg.Run.Trace {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, runtime.WithLogger(slog.New(handler)))
	}

	interp := runtime.NewInterpreter(stdout, opts...)
	val, err := interp.Run(stmts)
	if err != nil {
		printDiagsText(stderr, []error{err})
		return exitError
	}

	if *printResult || cfg.Run.PrintResult {
		fmt.Fprintln(stdout, val.String())
	}
	return exitOK
}

func loadConfig(explicit string) (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Resolve(explicit, dir)
}

// invalidTokenDiags reports every INVALID token the lexer produced.
func invalidTokenDiags(tokens []token.Token) []error {
	var diags []error
	for _, tok := range tokens {
		if tok.Kind != token.INVALID {
			continue
		}
		diags = append(diags, parser.InvalidTokenError(tok))
	}
	return diags
}
