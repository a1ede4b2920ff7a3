// Package config manages the heatzy CLI configuration file and environment.
//
// The YAML file stores the session token saved by 'heatzy login --save'
// and a few CLI preferences. The password is never written. Values are
// layered: command-line flags win over HEATZY_* environment variables,
// which win over the file.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/heatzy/config.yaml or $HOME/.config/heatzy/config.yaml
//   - macOS: $HOME/.config/heatzy/config.yaml
//   - Windows: %LOCALAPPDATA%\heatzy\config.yaml
//
// HEATZY_CONFIG or --config selects another file.
//
// # Environment
//
//	HEATZY_TOKEN      session token
//	HEATZY_LOG_LEVEL  trace, debug, info, warn, error
//	HEATZY_OUTPUT     table or json
//	HEATZY_CONFIG     alternate config file path
package config
