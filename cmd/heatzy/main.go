// Heatzy is a command-line client for Heatzy pilot-wire heaters.
//
// It logs in to the Heatzy cloud, lists the heaters bound to an account,
// reads and changes their heating mode, and can serve device state as
// Prometheus metrics.
//
// Usage:
//
//	heatzy [command] [flags]
//
// A token is taken from --token, then HEATZY_TOKEN, then the session saved
// by 'heatzy login --save'. See 'heatzy --help' for available commands.
package main

import (
	"os"

	"github.com/muurk/heatzy/internal/logging"
	"github.com/muurk/heatzy/internal/ui"
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		ui.NewPrinter(os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
