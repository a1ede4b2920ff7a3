package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/heatzy/pkg/heatzy"
)

// ErrPickerCancelled is returned by PickMode when the user quits without choosing
var ErrPickerCancelled = errors.New("mode selection cancelled")

// pickerKeyMap defines key bindings for the mode picker
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Choose, k.Quit},
	}
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// ModePicker is a Bubble Tea model listing the six heating modes.
// Digits 0-5 select a mode by its integer code directly.
type ModePicker struct {
	Title   string
	Current heatzy.DeviceMode // Highlighted as "(current)"; zero when unknown

	modes     []heatzy.DeviceMode
	cursor    int
	chosen    heatzy.DeviceMode
	done      bool
	cancelled bool

	help help.Model
	keys pickerKeyMap
}

// NewModePicker creates a picker with the cursor on current, if valid
func NewModePicker(title string, current heatzy.DeviceMode) ModePicker {
	modes := heatzy.Modes()
	cursor := 0
	for i, m := range modes {
		if m == current {
			cursor = i
		}
	}
	return ModePicker{
		Title:   title,
		Current: current,
		modes:   modes,
		cursor:  cursor,
		help:    help.New(),
		keys:    newPickerKeyMap(),
	}
}

// Init implements tea.Model
func (m ModePicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ModePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(m.modes) - 1
			}

		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % len(m.modes)

		case key.Matches(msg, m.keys.Choose):
			m.chosen = m.modes[m.cursor]
			m.done = true
			return m, tea.Quit

		default:
			if mode, ok := digitMode(msg); ok {
				m.chosen = mode
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View implements tea.Model
func (m ModePicker) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.Title))
	b.WriteString("\n\n")

	for i, mode := range m.modes {
		label := fmt.Sprintf("%d  %s", mode.Int(), mode.CLIString())
		if i == m.cursor {
			b.WriteString(SelectedItemStyle.Render(CursorMarker + " " + label))
		} else {
			b.WriteString(ItemStyle.Render("  " + label))
		}
		if mode == m.Current {
			b.WriteString(" " + CurrentTagStyle.Render("(current)"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Choice returns the selected mode once the picker has finished
func (m ModePicker) Choice() (heatzy.DeviceMode, bool) {
	return m.chosen, m.done
}

// Cancelled reports whether the user quit without choosing
func (m ModePicker) Cancelled() bool {
	return m.cancelled
}

// PickMode runs the picker on in/out and returns the chosen mode
func PickMode(title string, current heatzy.DeviceMode, in io.Reader, out io.Writer) (heatzy.DeviceMode, error) {
	p := tea.NewProgram(NewModePicker(title, current), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("mode picker failed: %w", err)
	}

	picker, ok := final.(ModePicker)
	if !ok {
		return 0, fmt.Errorf("mode picker returned unexpected model %T", final)
	}
	mode, chosen := picker.Choice()
	if !chosen {
		return 0, ErrPickerCancelled
	}
	return mode, nil
}

func digitMode(msg tea.KeyMsg) (heatzy.DeviceMode, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return 0, false
	}
	mode, err := heatzy.ModeFromInt(int(r - '0'))
	if err != nil {
		return 0, false
	}
	return mode, true
}
