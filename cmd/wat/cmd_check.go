package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/parser"
	"github.com/dhamidi/wat/ui/pretty"
	"github.com/dhamidi/wat/workspace"
)

type checkFlags struct {
	format    string
	jobs      int
	noContext bool
	watch     bool
}

func newCheckCmd(a *app) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report syntax errors in .wat files",
		Long: `Parse WebAssembly text files and report their syntax errors.

By default, checks all .wat and .wast files below the current directory.
Directories are searched recursively; hidden directories are skipped.
Use "-" to read a single module from stdin.

Examples:
  wat check                     # Check current directory
  wat check src/ extra.wat      # Check a directory and a file
  wat check --format json       # Output as JSON for CI
  wat check --watch             # Recheck files as they change`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: pretty, line, json (default from config)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of files parsed concurrently (0: one per CPU)")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "do not show source lines under diagnostics")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "keep running and recheck files when they change")

	return cmd
}

func runCheck(cmd *cobra.Command, a *app, flags *checkFlags, args []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := a.cfg

	if cmd.Flags().Changed("format") {
		cfg.Check.Format = flags.format
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Check.Jobs = flags.jobs
	}
	if flags.noContext {
		cfg.Check.Context = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	var docs []*format.Document
	if len(args) == 1 && args[0] == "-" {
		_, source, err := readSource(cmd.InOrStdin(), "-")
		if err != nil {
			return err
		}
		docs = []*format.Document{format.NewDocument("", source, a.parserOptions()...)}
	} else {
		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		start := time.Now()
		docs, err = checkFiles(ctx, files, cfg.Check.Jobs, a.parserOptions())
		if err != nil {
			return err
		}
		logger.Debug("checked files",
			logging.FieldFiles, len(files),
			logging.FieldJobs, cfg.Check.Jobs,
			logging.FieldDuration, time.Since(start),
		)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(cfg.Color, out))
	stats, err := report(out, docs, cfg.Check.Format, styles, cfg.Check.Context)
	if err != nil {
		return err
	}

	if flags.watch {
		return watch(cmd, a, args, styles)
	}

	if stats.Errors > 0 {
		return &DiagnosticsError{Errors: stats.Errors, Files: stats.FilesWithErrors}
	}
	return nil
}

// collectFiles expands directories into the source files below them. Files
// named explicitly are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if workspace.IsSource(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}

// checkFiles parses files with at most jobs parsers running at once. The
// documents are returned in the order of files.
func checkFiles(ctx context.Context, files []string, jobs int, opts []parser.Option) ([]*format.Document, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	docs := make([]*format.Document, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			docs[i] = format.NewDocument(file, string(data), opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// report writes the diagnostics of docs in the given output format.
func report(w io.Writer, docs []*format.Document, outputFormat string, styles *pretty.Styles, showContext bool) (pretty.Stats, error) {
	stats := pretty.Stats{FilesChecked: len(docs)}
	for _, doc := range docs {
		if n := len(doc.Errors); n > 0 {
			stats.FilesWithErrors++
			stats.Errors += n
		}
	}

	switch outputFormat {
	case "pretty":
		for _, doc := range docs {
			if len(doc.Errors) == 0 {
				continue
			}
			fmt.Fprintln(w, styles.FormatFileHeader(doc.Path, len(doc.Errors)))
			fmt.Fprint(w, styles.FormatDocument(doc, showContext))
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, styles.FormatSummaryOneLine(stats))
	case "line":
		enc := format.NewLineEncoder(w)
		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return stats, fmt.Errorf("encode: %w", err)
			}
		}
	case "json":
		reports := make([]json.RawMessage, 0, len(docs))
		for _, doc := range docs {
			var buf bytes.Buffer
			if err := format.NewJSONEncoder(&buf).Encode(doc); err != nil {
				return stats, fmt.Errorf("encode: %w", err)
			}
			reports = append(reports, buf.Bytes())
		}
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return stats, fmt.Errorf("encode: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
	default:
		return stats, fmt.Errorf("unknown format: %s", outputFormat)
	}
	return stats, nil
}

// watch rechecks files below the first directory argument until interrupted.
func watch(cmd *cobra.Command, a *app, args []string, styles *pretty.Styles) error {
	root := "."
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			root = arg
			break
		}
	}

	ws := workspace.New(root, a.parserOptions()...)
	if err := ws.ScanAll(); err != nil {
		logging.FromContext(cmd.Context()).Warn("scan incomplete", logging.FieldPath, root, logging.FieldError, err)
	}
	fw, err := workspace.NewFileWatcher(ws)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	out := cmd.OutOrStdout()
	showContext := a.cfg.Check.Context
	outputFormat := a.cfg.Check.Format
	fw.OnChange = func(path string, f *workspace.File) {
		if f == nil {
			return
		}
		if _, err := report(out, []*format.Document{f.Doc}, outputFormat, styles, showContext); err != nil {
			logging.FromContext(cmd.Context()).Error("report failed", logging.FieldPath, path, logging.FieldError, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logging.FromContext(ctx).Info("watching for changes", logging.FieldPath, root)
	return fw.Run(ctx)
}
