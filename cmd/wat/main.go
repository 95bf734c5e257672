package main

import (
	"errors"
	"os"

	"github.com/dhamidi/wat/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var diags *DiagnosticsError
		if !errors.As(err, &diags) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return 1
	}
	return 0
}
