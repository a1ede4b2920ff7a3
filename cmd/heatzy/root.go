package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/heatzy/internal/config"
	"github.com/muurk/heatzy/internal/logging"
	"github.com/muurk/heatzy/internal/ui"
	"github.com/muurk/heatzy/internal/version"
	"github.com/muurk/heatzy/pkg/heatzy"
)

// cliApp holds the state shared by every command of one invocation
type cliApp struct {
	flags  config.Flags
	apiURL string

	env      config.Env
	cfg      *config.Config
	settings config.Settings
	now      func() time.Time
}

// deviceSelector is filled by --name / --id
type deviceSelector struct {
	name string
	id   string
}

// newRootCmd builds a fresh command tree. Flag values live in the cliApp, not in
// package variables, so repeated Execute calls in one process start clean.
func newRootCmd() *cobra.Command {
	app := &cliApp{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "heatzy",
		Short: "Control Heatzy pilot-wire heaters",
		Long: `A command-line client for the Heatzy cloud API.

Log in once with 'heatzy login --save', then list devices, read their
heating mode and change it. The token can also be passed with --token or
the HEATZY_TOKEN environment variable.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load()
		},
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.Token, "token", "", "Authentication token (overrides HEATZY_TOKEN and the saved session)")
	flags.StringVar(&app.flags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default: silent)")
	flags.StringVar(&app.flags.ConfigPath, "config", "", "Config file path (default: ~/.config/heatzy/config.yaml)")
	flags.StringVar(&app.flags.Output, "format", "", "Output format: table or json")
	flags.StringVar(&app.apiURL, "api-url", heatzy.DefaultBaseURL, "Heatzy API base URL")
	_ = flags.MarkHidden("api-url")

	rootCmd.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newDevicesCmd(app),
		newDeviceCmd(app),
		newGetModeCmd(app),
		newSetModeCmd(app),
		newModesCmd(app),
		newExporterCmd(app),
		newVersionCmd(),
	)

	return rootCmd
}

// load reads environment and config file, then initializes logging
func (a *cliApp) load() error {
	e, err := config.LoadEnv()
	if err != nil {
		return err
	}
	a.env = e

	cfg, err := config.Load(config.ResolveConfigPath(a.flags, e))
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.settings = config.Resolve(a.flags, e, cfg)

	switch a.settings.Output {
	case config.OutputTable, config.OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (use %s or %s)", a.settings.Output, config.OutputTable, config.OutputJSON)
	}

	if err := logging.Initialize(a.settings.LogLevel); err != nil {
		return err
	}
	logging.Debug("Settings resolved",
		zap.String("token_source", a.settings.TokenSource),
		zap.String("output", a.settings.Output),
		zap.String("config", a.settings.ConfigPath),
	)
	return nil
}

func (a *cliApp) jsonOutput() bool {
	return a.settings.Output == config.OutputJSON
}

// newClient builds an unauthenticated client
func (a *cliApp) newClient() *heatzy.Client {
	client := heatzy.NewClientWithURL(a.apiURL)
	client.UserAgent = version.UserAgent()
	client.SetLogger(logging.Named("client"))
	return client
}

// authenticatedClient builds a client with the resolved token installed.
// A saved session past its expiry only triggers a warning.
func (a *cliApp) authenticatedClient(cmd *cobra.Command) (*heatzy.Client, error) {
	if a.settings.Token == "" {
		return nil, heatzy.ErrNoToken
	}

	if a.settings.TokenSource == "config" && a.cfg.Session.Expired(a.now()) {
		expiry := time.Unix(a.cfg.Session.ExpireAt, 0).Format(time.RFC3339)
		ui.NewPrinter(cmd.ErrOrStderr()).PrintWarning(
			fmt.Sprintf("saved session expired at %s; run 'heatzy login --save' again", expiry))
	}

	client := a.newClient()
	client.SetToken(a.settings.Token)
	return client, nil
}

func (a *cliApp) configPath() string {
	return a.settings.ConfigPath
}

// addDeviceFlags registers --name and --id; exactly one is required when required is set
func addDeviceFlags(cmd *cobra.Command, sel *deviceSelector, required bool) {
	cmd.Flags().StringVarP(&sel.name, "name", "n", "", "Device name (alias)")
	cmd.Flags().StringVarP(&sel.id, "id", "i", "", "Device ID")
	cmd.MarkFlagsMutuallyExclusive("name", "id")
	if required {
		cmd.MarkFlagsOneRequired("name", "id")
	}
}

// resolveDevice returns the device ID, looking the name up when needed.
// The device is non-nil only when a name lookup happened.
func resolveDevice(client *heatzy.Client, sel deviceSelector) (string, *heatzy.Device, error) {
	if sel.id != "" {
		return sel.id, nil, nil
	}
	device, err := client.GetDeviceByName(sel.name)
	if err != nil {
		return "", nil, err
	}
	return device.DID, device, nil
}

// stdinTerminal reports whether r is a terminal, for interactive prompts
func stdinTerminal(r io.Reader) (*os.File, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return nil, false
	}
	return f, ui.IsTerminal(f)
}

func displayName(sel deviceSelector) string {
	return strings.TrimSpace(sel.name + sel.id)
}
