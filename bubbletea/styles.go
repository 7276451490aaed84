package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/hacktrack"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg   lipgloss.Style
	BotMsg    lipgloss.Style
	EventCard lipgloss.Style
	Control   lipgloss.Style
	Focused   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t hacktrack.Theme) Styles {
	return Styles{
		UserMsg:   lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		BotMsg:    lipgloss.NewStyle().Foreground(ansiColor(t.BotMsg)).Bold(true),
		EventCard: lipgloss.NewStyle().Foreground(ansiColor(t.EventCard)),
		Control:   lipgloss.NewStyle().Foreground(ansiColor(t.Control)),
		Focused:   lipgloss.NewStyle().Foreground(ansiColor(t.Control)).Background(ansiColor(t.Focus)).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:   lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

// Notice returns the style for a notice of the given kind.
func (s Styles) Notice(kind hacktrack.NoticeKind) lipgloss.Style {
	switch kind {
	case hacktrack.NoticeError:
		return s.Error
	case hacktrack.NoticeSuccess:
		return s.Success
	default:
		return s.Accent
	}
}

// control renders an inline control label such as [Save].
func (s Styles) control(label string, focused bool) string {
	if focused {
		return s.Focused.Render("[" + label + "]")
	}
	return s.Control.Render("[" + label + "]")
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
