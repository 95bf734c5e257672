package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/workspace"
)

func newLSPCmd(a *app) *cobra.Command {
	var tcpAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start a language server that publishes syntax diagnostics and offers
folding ranges, selection ranges and document symbols for .wat files.

The server speaks over stdio unless --tcp is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var logFile *string
			if a.cfg.LSP.LogFile != "" {
				logFile = &a.cfg.LSP.LogFile
			}
			workspace.ConfigureLogging(a.cfg.LSP.Verbosity, logFile)

			server := workspace.NewLSPServer(version, a.parserOptions()...)
			if tcpAddr != "" {
				logging.FromContext(cmd.Context()).Info("language server listening", logging.FieldAddr, tcpAddr)
				return server.RunTCP(tcpAddr)
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "listen on a TCP address instead of stdio")

	return cmd
}
