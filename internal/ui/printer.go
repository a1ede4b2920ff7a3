package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/muurk/heatzy/pkg/heatzy"
)

// Printer writes command output to a writer.
// Every heatzy command prints through one of these.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintDevices writes one line per device
func (p *Printer) PrintDevices(devices []heatzy.Device) {
	if len(devices) == 0 {
		p.Println(HintStyle.Render("No devices found"))
		return
	}
	p.Print(RenderDeviceList(devices))
}

// PrintDevice writes the detail block for one device
func (p *Printer) PrintDevice(device *heatzy.Device) {
	p.Print(RenderDeviceDetails(device))
}

// PrintModes writes the mode table
func (p *Printer) PrintModes() {
	p.Print(RenderModeTable())
}

// PrintError writes "Error: ..." followed by an optional hint
func (p *Printer) PrintError(err error) {
	p.Println(ErrorMessageStyle.Render("Error: " + err.Error()))
	if hint := heatzy.TroubleshootingHint(err); hint != "" {
		p.Println(HintStyle.Render(hint))
	}
}

// PrintWarning writes a single warning line
func (p *Printer) PrintWarning(message string) {
	p.Println(WarningStyle.Render("Warning: " + message))
}

// RenderDeviceList renders "<alias padded to 30> <did> <✓|✗> (<product>)" lines
func RenderDeviceList(devices []heatzy.Device) string {
	lines := lo.Map(devices, func(d heatzy.Device, _ int) string {
		name := fmt.Sprintf("%-*s", AliasColumnWidth, d.DisplayName())
		return fmt.Sprintf("%s %s %s %s",
			name,
			d.DID,
			onlineMarker(d.IsOnline),
			ProductStyle.Render("("+d.ProductName+")"),
		)
	})
	return strings.Join(lines, "\n") + "\n"
}

// RenderDeviceDetails renders the labelled fields of a device.
// The Name line is omitted when the API did not return an alias.
func RenderDeviceDetails(device *heatzy.Device) string {
	var rows []string
	if device.DevAlias != nil {
		rows = append(rows, detailRow("Name:", *device.DevAlias))
	}
	rows = append(rows,
		detailRow("ID:", device.DID),
		detailRow("Product:", device.ProductName),
		detailRow("MAC:", device.MAC),
		detailRow("Online:", lo.Ternary(device.IsOnline, "Yes", "No")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

// RenderModeTable renders code, API string and CLI name for every mode
func RenderModeTable() string {
	header := ProductStyle.Render(fmt.Sprintf("%-5s %-5s %s", "CODE", "API", "NAME"))
	rows := lo.Map(heatzy.Modes(), func(m heatzy.DeviceMode, _ int) string {
		return fmt.Sprintf("%-5d %-5s %s", m.Int(), m.APIString(), ModeStyle.Render(m.CLIString()))
	})
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func detailRow(key, value string) string {
	return DetailKeyStyle.Render(key) + DetailValueStyle.Render(value)
}

func onlineMarker(online bool) string {
	if online {
		return OnlineStyle.Render(OnlineMarker)
	}
	return OfflineStyle.Render(OfflineMarker)
}
