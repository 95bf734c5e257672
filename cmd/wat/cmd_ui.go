package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/ui"
	"github.com/dhamidi/wat/workspace"
)

func newUICmd(a *app) *cobra.Command {
	var addr string
	var root string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the syntax tree explorer web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())

			ws := workspace.New(root, a.parserOptions()...)
			if err := ws.ScanAll(); err != nil {
				logger.Warn("scan incomplete", logging.FieldPath, root, logging.FieldError, err)
			}
			if fw, err := workspace.NewFileWatcher(ws); err != nil {
				logger.Warn("file watching disabled", logging.FieldError, err)
			} else {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go fw.Run(ctx)
			}

			server, err := ui.NewServer(ws, a.parserOptions()...)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().StringVar(&root, "root", ".", "directory whose source files are listed")

	return cmd
}
