package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/config"
	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/parser"
)

// app carries the configuration resolved by the root command to the
// subcommands.
type app struct {
	cfg *config.Config

	configPath    string
	logLevel      string
	color         string
	implicitClose string
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "wat",
		Short: "A lossless, error-tolerant WebAssembly text parser",
		Long: `wat parses WebAssembly text (.wat, .wast) into a lossless syntax tree.

Every input produces a tree that reproduces the source byte for byte,
together with a list of syntax errors. Use it to inspect trees, check
files in bulk, or serve diagnostics to an editor.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to config file (default: search upward for .wat.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.color, "color", "", "colorize output: auto, always, never")
	flags.StringVar(&a.implicitClose, "implicit-close", "", "when a missing ')' is assumed before '(': newline, always, never")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newTokensCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newUICmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// load resolves the configuration: defaults, config file, environment, then
// flags. It installs the resulting logger into the command context.
func (a *app) load(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(a.configPath, wd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.color != "" {
		cfg.Color = a.color
	}
	if a.implicitClose != "" {
		cfg.Parser.ImplicitClose = a.implicitClose
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	logger.Debug("configuration loaded",
		logging.FieldConfig, cfg.Path,
		logging.FieldWorkingDir, wd,
		logging.FieldPolicy, cfg.Parser.ImplicitClose,
	)
	return nil
}

func (a *app) parserOptions() []parser.Option {
	return a.cfg.ParserOptions()
}

// readSource reads the named file, or stdin when path is empty or "-". The
// returned name is empty for stdin.
func readSource(stdin io.Reader, path string) (name string, source string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "", string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read file: %w", err)
	}
	return path, string(data), nil
}

// DiagnosticsError reports that syntax errors were found. It only sets the
// exit status; the diagnostics themselves have already been printed.
type DiagnosticsError struct {
	Errors int
	Files  int
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("%d syntax errors in %d files", e.Errors, e.Files)
}
