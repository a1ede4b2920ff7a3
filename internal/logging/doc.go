// Package logging provides structured logging for the heatzy CLI.
//
// This package wraps a process-wide zap logger. The CLI is silent by default:
// nothing is logged unless --log-level or HEATZY_LOG_LEVEL is set. All output
// goes to stderr so that commands such as 'heatzy login' can print a bare
// token on stdout.
//
// # Log Levels
//
//   - Trace/Debug: request paths, status codes, raw mode values
//   - Info: operations (login, listing, mode changes)
//   - Warn: truncated device listings, expired saved tokens
//   - Error: command failures
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	client := heatzy.NewClient()
//	client.SetLogger(logging.Named("client"))
package logging
