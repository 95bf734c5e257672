package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dhamidi/wat/logging"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
				ReportTimestamp: false,
				ReportCaller:    false,
			})
			logger.SetLevel(log.InfoLevel)
			logger.Info("wat", logging.FieldVersion, version)
		},
	}
}

