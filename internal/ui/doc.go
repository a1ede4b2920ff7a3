// Package ui renders heatzy command output.
//
// Output is plain lines styled with Lipgloss: device listings, device
// details, the mode table and error lines with troubleshooting hints. The
// only interactive component is ModePicker, a Bubble Tea model used by
// "heatzy set-mode" when no mode is given on a terminal.
//
// # Logging Integration
//
// Logging is controlled via the HEATZY_LOG_LEVEL environment variable or the
// --log-level flag and always goes to stderr, so styled output on stdout stays
// clean. When neither is set zap logging is silent.
package ui
