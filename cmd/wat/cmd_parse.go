package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/logging"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var allowErrors bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .wat file and dump the syntax tree",
		Long: `Parse a WebAssembly text file and print its syntax tree.

Reads from stdin when no file (or "-") is given. Syntax errors are
listed on stderr after the tree.

Formats:
  tree   indented KIND@start..end dump
  json   nested JSON with kinds, spans and token text
  errors only the syntax errors, one per line`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			name, source, err := readSource(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			doc := format.NewDocument(name, source, a.parserOptions()...)
			logging.FromContext(cmd.Context()).Debug("parsed",
				logging.FieldPath, name,
				logging.FieldBytes, len(source),
				logging.FieldErrors, len(doc.Errors),
			)

			var encoder format.Encoder
			switch outputFormat {
			case "tree":
				encoder = format.NewTreeEncoder(cmd.OutOrStdout())
			case "json":
				encoder = format.NewASTJSONEncoder(cmd.OutOrStdout())
			case "errors":
				encoder = format.NewLineEncoder(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			if err := encoder.Encode(doc); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "json" {
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if outputFormat != "errors" {
				if err := format.NewLineEncoder(cmd.ErrOrStderr()).Encode(doc); err != nil {
					return fmt.Errorf("encode errors: %w", err)
				}
			}
			if len(doc.Errors) > 0 && !allowErrors {
				return &DiagnosticsError{Errors: len(doc.Errors), Files: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format: tree, json, errors")
	cmd.Flags().BoolVar(&allowErrors, "allow-errors", false, "exit with status 0 even if the input has syntax errors")

	return cmd
}
