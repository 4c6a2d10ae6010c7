// ABOUTME: Bubbletea model for the clock widget TUI
// ABOUTME: Routes frames from the widget session into the display variants
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chronosync/chrono-go/internal/widget"
)

// DisplayMode selects which renderer draws the clock.
type DisplayMode int

const (
	DisplayDigital DisplayMode = iota
	DisplayAnalogue
)

func (d DisplayMode) String() string {
	if d == DisplayAnalogue {
		return "analogue"
	}
	return "digital"
}

// FrameMsg delivers a widget frame into the TUI event loop.
type FrameMsg widget.Frame

// Model represents the TUI state.
type Model struct {
	session *widget.Session
	cfg     widget.Config
	display DisplayMode

	frame     widget.Frame
	haveFrame bool

	source string

	width  int
	height int

	showDebug bool

	styles styles
}

type styles struct {
	face      lipgloss.Style
	hand      lipgloss.Style
	accent    lipgloss.Style
	dim       lipgloss.Style
	statusBar lipgloss.Style
	help      lipgloss.Style
}

// NewModel creates a TUI model bound to a widget session.
func NewModel(session *widget.Session, cfg widget.Config, display DisplayMode, source string) Model {
	return Model{
		session: session,
		cfg:     cfg,
		display: display,
		source:  source,
		styles: styles{
			face:      lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.FaceColor)),
			hand:      lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.HandColor)),
			accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.AccentColor)).Bold(true),
			dim:       lipgloss.NewStyle().Faint(true),
			statusBar: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.FaceColor)),
			help:      lipgloss.NewStyle().Faint(true),
		},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.FocusMsg:
		// The terminal may have throttled us while unfocused; snap the
		// hands back to corrected phase.
		if m.session != nil {
			m.session.ForceRephase()
		}
	case FrameMsg:
		m.frame = widget.Frame(msg)
		m.haveFrame = true
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	case "tab":
		if m.display == DisplayDigital {
			m.display = DisplayAnalogue
		} else {
			m.display = DisplayDigital
		}
	}

	if m.session == nil {
		return m, nil
	}

	switch msg.String() {
	case "p", " ":
		if m.session.Paused() {
			m.session.Resume()
		} else {
			m.session.Pause()
		}
	case "s":
		go m.session.Resync()
	case "+", "=":
		m.session.AdjustBy(10)
	case "-":
		m.session.AdjustBy(-10)
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := m.renderStatus()

	if m.display == DisplayAnalogue {
		s += m.renderAnalogue()
	} else {
		s += m.renderDigital()
	}

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()
	return s
}

// renderStatus renders sync state and uncertainty.
func (m Model) renderStatus() string {
	status := "waiting for first frame"
	if m.haveFrame {
		switch m.frame.State {
		case widget.StateSynchronized:
			status = fmt.Sprintf("synced  offset %+.1fms ±%.1fms", m.frame.OffsetMs, m.frame.RangeMs/2)
		case widget.StateSynchronizing:
			status = "synchronizing…"
		default:
			status = "not synchronized"
		}
		if m.frame.SyncErr != "" {
			status = "Error: " + m.frame.SyncErr
		}
		if m.frame.Paused {
			status += "  [paused]"
		}
	}

	line := fmt.Sprintf(" chrono · %s · %s", m.source, status)
	return m.styles.statusBar.Render(line) + "\n\n"
}

func (m Model) renderDebug() string {
	if !m.haveFrame {
		return ""
	}
	id := m.frame.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return m.styles.help.Render(fmt.Sprintf(
		"\n session=%s state=%s mode=%s display_ms=%.1f sec=%.1f° min=%.1f° hour=%.1f°",
		id, m.frame.State, m.frame.Mode, m.frame.DisplayMs,
		m.frame.SecondDeg, m.frame.MinuteDeg, m.frame.HourDeg)) + "\n"
}

func (m Model) renderHelp() string {
	return m.styles.help.Render(
		"\n q quit · tab digital/analogue · p pause · s resync · +/- nudge · d debug") + "\n"
}
