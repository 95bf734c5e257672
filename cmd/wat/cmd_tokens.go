package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/format"
)

func newTokensCmd(a *app) *cobra.Command {
	var noTrivia bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "List the tokens of a .wat file",
		Long: `List every token of a WebAssembly text file as KIND, byte range and
quoted text. Words are classified without grammatical context.`,
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

			enc := format.NewTokenEncoder(cmd.OutOrStdout())
			enc.SkipTrivia = noTrivia
			if err := enc.Encode(format.NewDocument(name, source, a.parserOptions()...)); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noTrivia, "no-trivia", false, "omit whitespace and comments")

	return cmd
}
