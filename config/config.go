// Package config loads wat settings from YAML or TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/parser"
)

var (
	ErrUnknownFormat = errors.New("unknown config file format")
	ErrInvalidValue  = errors.New("invalid config value")
)

// Config is the complete wat configuration.
type Config struct {
	LogLevel string       `yaml:"log_level" toml:"log_level"`
	Color    string       `yaml:"color" toml:"color"`
	Parser   ParserConfig `yaml:"parser" toml:"parser"`
	Check    CheckConfig  `yaml:"check" toml:"check"`
	LSP      LSPConfig    `yaml:"lsp" toml:"lsp"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-" toml:"-"`
}

type ParserConfig struct {
	// ImplicitClose is one of "newline", "always" or "never".
	ImplicitClose string `yaml:"implicit_close" toml:"implicit_close"`
}

type CheckConfig struct {
	Jobs    int    `yaml:"jobs" toml:"jobs"`
	Context bool   `yaml:"context" toml:"context"`
	Format  string `yaml:"format" toml:"format"`
}

type LSPConfig struct {
	// Verbosity is passed to commonlog: 0 errors only, higher is chattier.
	Verbosity int    `yaml:"verbosity" toml:"verbosity"`
	LogFile   string `yaml:"log_file" toml:"log_file"`
}

var (
	colorModes   = []string{"auto", "always", "never"}
	checkFormats = []string{"pretty", "line", "json"}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Color:    "auto",
		Parser:   ParserConfig{ImplicitClose: parser.CloseOnNewline.String()},
		Check:    CheckConfig{Jobs: 0, Context: true, Format: "pretty"},
		LSP:      LSPConfig{Verbosity: 1},
	}
}

// Validate rejects unknown enum values and negative counts.
func (c *Config) Validate() error {
	var errs []error
	if !logging.IsValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("%w: log_level %q (want one of %s)", ErrInvalidValue, c.LogLevel, strings.Join(logging.Levels, ", ")))
	}
	if !slices.Contains(colorModes, c.Color) {
		errs = append(errs, fmt.Errorf("%w: color %q (want one of %s)", ErrInvalidValue, c.Color, strings.Join(colorModes, ", ")))
	}
	if _, err := parser.ParseImplicitClose(c.Parser.ImplicitClose); err != nil {
		errs = append(errs, fmt.Errorf("%w: parser.implicit_close: %v", ErrInvalidValue, err))
	}
	if c.Check.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%w: check.jobs %d is negative", ErrInvalidValue, c.Check.Jobs))
	}
	if !slices.Contains(checkFormats, c.Check.Format) {
		errs = append(errs, fmt.Errorf("%w: check.format %q (want one of %s)", ErrInvalidValue, c.Check.Format, strings.Join(checkFormats, ", ")))
	}
	if c.LSP.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("%w: lsp.verbosity %d is negative", ErrInvalidValue, c.LSP.Verbosity))
	}
	return errors.Join(errs...)
}

// ParserOptions converts the parser section into parser options. It assumes
// the configuration has been validated.
func (c *Config) ParserOptions() []parser.Option {
	policy, err := parser.ParseImplicitClose(c.Parser.ImplicitClose)
	if err != nil {
		policy = parser.CloseOnNewline
	}
	return []parser.Option{parser.WithImplicitClose(policy)}
}
