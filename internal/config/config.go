// Package config loads the runic CLI settings from runic.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "runic.yaml"

// Config holds the resolved CLI settings.
type Config struct {
	Path string // file the settings came from; empty for built-in defaults
	REPL REPLConfig
	Run  RunConfig
}

// REPLConfig configures the interactive session.
type REPLConfig struct {
	Prompt      string
	HistoryFile string // empty disables history
	Color       bool
}

// RunConfig configures `runic run`.
type RunConfig struct {
	PrintResult bool
	Trace       bool
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      "runic> ",
			HistoryFile: "~/.runic_history",
			Color:       true,
		},
	}
}

// on-disk shape; pointers tell "absent" apart from the zero value
type configFile struct {
	REPL *replFile `yaml:"repl"`
	Run  *runFile  `yaml:"run"`
}

type replFile struct {
	Prompt      *string `yaml:"prompt"`
	HistoryFile *string `yaml:"history_file"`
	Color       *bool   `yaml:"color"`
}

type runFile struct {
	PrintResult *bool `yaml:"print_result"`
	Trace       *bool `yaml:"trace"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "config %s validation failed:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses the config file at path and merges it over the defaults.
// Unknown keys are rejected. An empty file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := Default()
	cfg.Path = absPath
	raw.applyTo(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve picks the settings for a command: the explicit path when given,
// else FileName in dir when present, else the defaults.
func Resolve(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	candidate := filepath.Join(dir, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: stat %s: %w", candidate, err)
	}
	return Default(), nil
}

func (f configFile) applyTo(cfg *Config) {
	if r := f.REPL; r != nil {
		if r.Prompt != nil {
			cfg.REPL.Prompt = *r.Prompt
		}
		if r.HistoryFile != nil {
			cfg.REPL.HistoryFile = *r.HistoryFile
		}
		if r.Color != nil {
			cfg.REPL.Color = *r.Color
		}
	}
	if r := f.Run; r != nil {
		if r.PrintResult != nil {
			cfg.Run.PrintResult = *r.PrintResult
		}
		if r.Trace != nil {
			cfg.Run.Trace = *r.Trace
		}
	}
}

func (c *Config) validate() error {
	errs := ValidationError{Path: c.Path}
	if c.REPL.Prompt == "" {
		errs.Issues = append(errs.Issues, "repl.prompt must not be empty")
	}
	if strings.ContainsAny(c.REPL.Prompt, "\r\n") {
		errs.Issues = append(errs.Issues, "repl.prompt must be a single line")
	}
	if strings.HasPrefix(c.REPL.HistoryFile, "~") && !strings.HasPrefix(c.REPL.HistoryFile, "~/") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("repl.history_file %q: only '~/' is supported", c.REPL.HistoryFile))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// HistoryPath returns the REPL history file with a leading "~/" expanded.
// It returns "" when history is disabled.
func (c *Config) HistoryPath() (string, error) {
	return ExpandHome(c.REPL.HistoryFile)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
