package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/heatzy/internal/exporter"
	"github.com/muurk/heatzy/internal/logging"
	"github.com/muurk/heatzy/internal/ui"
	"github.com/muurk/heatzy/internal/version"
	"github.com/muurk/heatzy/pkg/heatzy"
)

// modeOutput is the JSON form of a device mode
type modeOutput struct {
	DID  string `json:"did,omitempty"`
	Mode string `json:"mode"`
	Code int    `json:"code"`
	API  string `json:"api"`
}

func newModeOutput(deviceID string, mode heatzy.DeviceMode) modeOutput {
	return modeOutput{DID: deviceID, Mode: mode.CLIString(), Code: mode.Int(), API: mode.APIString()}
}

func newLoginCmd(app *cliApp) *cobra.Command {
	var (
		username string
		password string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print an authentication token",
		Long: `Exchange a username and password for an authentication token.

Only the token is printed on stdout, so it can be captured in a variable.
With --save the session is written to the config file and used by later
commands. The password is never saved.`,
		Example: `  # Print a token
  heatzy login -u me@example.com -p secret

  # Prompt for the password and save the session
  heatzy login -u me@example.com --save

  # Use the token in a script
  export HEATZY_TOKEN=$(heatzy login -u me@example.com -p secret)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				stdin, ok := stdinTerminal(cmd.InOrStdin())
				if !ok {
					return errors.New("password is required: pass --password or run from a terminal")
				}
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				secret, err := term.ReadPassword(int(stdin.Fd()))
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(secret)
			}

			auth, err := app.newClient().Login(username, password)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), auth.Token)

			if save {
				app.cfg.SetSession(username, auth.Token, auth.UID, auth.ExpireAt)
				if err := app.cfg.Save(app.configPath()); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
				logging.Info("Session saved", zap.String("username", username))
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Session saved")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Heatzy account username (email)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Heatzy account password (prompted when omitted)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the session in the config file")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newLogoutCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved session",
		Long: `Remove the session saved by 'heatzy login --save' from the config file.

The token is only forgotten locally; the Heatzy cloud is not contacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Session == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No saved session")
				return nil
			}
			app.cfg.ClearSession()
			if err := app.cfg.Save(app.configPath()); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newDevicesCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices bound to the account",
		Example: `  heatzy devices
  heatzy devices --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.authenticatedClient(cmd)
			if err != nil {
				return err
			}

			devices, err := client.ListDevices()
			if err != nil {
				return err
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			if app.jsonOutput() {
				return printer.PrintJSON(lo.Ternary(devices == nil, []heatzy.Device{}, devices))
			}
			printer.PrintDevices(devices)
			return nil
		},
	}
}

func newDeviceCmd(app *cliApp) *cobra.Command {
	var sel deviceSelector

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show details of one device",
		Example: `  heatzy device --name "Living Room"
  heatzy device --id 7xQxUSi8Z2u8TAmvo4PzDk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.authenticatedClient(cmd)
			if err != nil {
				return err
			}

			deviceID, listed, err := resolveDevice(client, sel)
			if err != nil {
				return err
			}

			device, err := client.GetDevice(deviceID)
			if err != nil {
				return err
			}
			// The single-device endpoint omits the alias
			if device.DevAlias == nil && listed != nil {
				device.DevAlias = listed.DevAlias
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			if app.jsonOutput() {
				return printer.PrintJSON(device)
			}
			printer.PrintDevice(device)
			return nil
		},
	}

	addDeviceFlags(cmd, &sel, true)
	return cmd
}

func newGetModeCmd(app *cliApp) *cobra.Command {
	var sel deviceSelector

	cmd := &cobra.Command{
		Use:   "get-mode",
		Short: "Print the current heating mode of a device",
		Example: `  heatzy get-mode --name "Living Room"
  heatzy get-mode --id 7xQxUSi8Z2u8TAmvo4PzDk --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.authenticatedClient(cmd)
			if err != nil {
				return err
			}

			deviceID, _, err := resolveDevice(client, sel)
			if err != nil {
				return err
			}

			mode, err := client.GetDeviceMode(deviceID)
			if err != nil {
				return err
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			if app.jsonOutput() {
				return printer.PrintJSON(newModeOutput(deviceID, mode))
			}
			printer.Println(mode.CLIString())
			return nil
		},
	}

	addDeviceFlags(cmd, &sel, true)
	return cmd
}

func newSetModeCmd(app *cliApp) *cobra.Command {
	var sel deviceSelector

	cmd := &cobra.Command{
		Use:   "set-mode [mode]",
		Short: "Change the heating mode of a device",
		Long: fmt.Sprintf(`Change the heating mode of a device.

Valid modes: %s.
"frost", "comfort-minus-1" and "comfort-minus-2" are accepted as aliases.
When the mode is omitted on a terminal, an interactive picker is shown.`,
			strings.Join(heatzy.CLIModeNames(), ", ")),
		Example: `  heatzy set-mode --name "Living Room" eco
  heatzy set-mode --id 7xQxUSi8Z2u8TAmvo4PzDk frost

  # Pick the mode interactively
  heatzy set-mode --name "Living Room"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				mode heatzy.DeviceMode
				err  error
			)
			// Reject an invalid mode before any request
			if len(args) == 1 {
				if mode, err = heatzy.ModeFromCLIString(args[0]); err != nil {
					return err
				}
			}

			client, err := app.authenticatedClient(cmd)
			if err != nil {
				return err
			}

			deviceID, _, err := resolveDevice(client, sel)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if mode, err = pickMode(cmd, client, deviceID, displayName(sel)); err != nil {
					return err
				}
			}

			if err := client.SetDeviceMode(deviceID, mode); err != nil {
				return err
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			if app.jsonOutput() {
				return printer.PrintJSON(newModeOutput(deviceID, mode))
			}
			printer.Println("Device mode set to: " + mode.CLIString())
			return nil
		},
	}

	addDeviceFlags(cmd, &sel, true)
	return cmd
}

// pickMode runs the interactive picker, preselecting the current mode when it can be read
func pickMode(cmd *cobra.Command, client *heatzy.Client, deviceID, name string) (heatzy.DeviceMode, error) {
	stdin, ok := stdinTerminal(cmd.InOrStdin())
	if !ok {
		return 0, fmt.Errorf("mode is required (one of: %s)", strings.Join(heatzy.CLIModeNames(), ", "))
	}

	current, err := client.GetDeviceMode(deviceID)
	if err != nil {
		logging.Debug("Could not read current mode", zap.Error(err))
		current = 0
	}

	return ui.PickMode("Select heating mode for "+name, current, stdin, cmd.OutOrStdout())
}

func newModesCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the heating modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := ui.NewPrinter(cmd.OutOrStdout())
			if app.jsonOutput() {
				return printer.PrintJSON(lo.Map(heatzy.Modes(), func(m heatzy.DeviceMode, _ int) modeOutput {
					return newModeOutput("", m)
				}))
			}
			printer.PrintModes()
			return nil
		},
	}
}

func newExporterCmd(app *cliApp) *cobra.Command {
	var (
		sel    deviceSelector
		listen string
	)

	cmd := &cobra.Command{
		Use:   "exporter",
		Short: "Serve device state as Prometheus metrics",
		Long: `Serve device connectivity and heating modes on /metrics.

Every scrape lists the account's devices and reads the mode of each online
device. Use --name or --id to export a single device.`,
		Example: `  heatzy exporter
  heatzy exporter --listen 127.0.0.1:9464 --name "Living Room"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.authenticatedClient(cmd)
			if err != nil {
				return err
			}

			collector := exporter.NewCollector(client, exporter.Filter{Name: sel.name, ID: sel.id}, logging.Named("exporter"))
			server := exporter.NewServer(&exporter.Config{ListenAddr: listen}, collector)
			if err := server.Listen(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", server.Addr())
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", exporter.DefaultListenAddr, "Address to serve metrics on")
	addDeviceFlags(cmd, &sel, false)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "heatzy %s\n", version.Full())
			return nil
		},
	}
}
