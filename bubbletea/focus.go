package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
)

// control identifies one actionable control in the focus ring: a save
// control on a transcript event card, or a share/remind control on a saved
// entry.
type control struct {
	action  hacktrack.ActionKind
	eventID string
	block   int // index into blocks, or -1
	saved   int // index into the saved list, or -1
}

var noControl = control{block: -1, saved: -1}

// controls returns the focus ring in display order: transcript controls
// first, then the saved list.
func (m Model) controls() []control {
	var out []control
	for i, b := range m.blocks {
		if card, ok := b.(*EventCardBlock); ok {
			e := card.Entity()
			out = append(out, control{action: e.Action, eventID: e.Event.ID, block: i, saved: -1})
		}
	}
	if m.session.SignedIn() {
		for i, ev := range m.saved.events {
			out = append(out,
				control{action: hacktrack.ActionShare, eventID: ev.ID, block: -1, saved: i},
				control{action: hacktrack.ActionRemind, eventID: ev.ID, block: -1, saved: i},
			)
		}
	}
	return out
}

// moveFocus moves focus by delta around the ring. From the input, Tab goes to
// the first control and Shift+Tab to the last.
func (m Model) moveFocus(delta int) Model {
	ring := m.controls()
	if len(ring) == 0 {
		return m
	}
	cur := -1
	for i, c := range ring {
		if c == m.focus {
			cur = i
			break
		}
	}
	var next int
	switch {
	case cur < 0 && delta > 0:
		next = 0
	case cur < 0:
		next = len(ring) - 1
	default:
		next = (cur + delta + len(ring)) % len(ring)
	}
	return m.setFocus(ring[next])
}

func (m Model) setFocus(c control) Model {
	prev := m.focus
	m.focus = c
	if prev.block >= 0 && prev.block < len(m.blocks) {
		m.blocks[prev.block], _ = m.blocks[prev.block].Update(FocusMsg{Focused: false})
	}
	m.saved.Blur()
	switch {
	case c.block >= 0:
		m.blocks[c.block], _ = m.blocks[c.block].Update(FocusMsg{Focused: true})
	case c.saved >= 0:
		m.saved.SetFocus(c.saved, c.action)
	}
	if c == noControl {
		m.Input.Focus()
	} else {
		m.Input.Blur()
	}
	if !m.ready {
		return m
	}
	content, line := m.renderContentAt(c.block)
	m.Viewport.SetContent(content)
	if line >= 0 && (line < m.Viewport.YOffset || line >= m.Viewport.YOffset+m.Viewport.Height) {
		m.Viewport.SetYOffset(line)
	}
	return m
}

func (m Model) focusInput() (Model, tea.Cmd) {
	m = m.setFocus(noControl)
	return m, m.Input.Focus()
}

// refocus drops saved-list focus whose entry no longer exists after a
// replace.
func (m Model) refocus() Model {
	if m.focus.saved < 0 {
		return m
	}
	events := m.saved.events
	if m.focus.saved < len(events) && events[m.focus.saved].ID == m.focus.eventID {
		m.saved.SetFocus(m.focus.saved, m.focus.action)
		return m
	}
	m, _ = m.focusInput()
	return m
}

// activate runs the focused control's action. The session precheck happens
// in the dispatcher, so a signed-out activation makes no network call.
func (m Model) activate(c control) tea.Cmd {
	d := m.dispatcher
	gen := m.session.Generation()
	switch c.action {
	case hacktrack.ActionSave:
		id := c.eventID
		return func() tea.Msg {
			return ActionResultMsg{Result: d.SaveEvent(context.Background(), id), Generation: gen}
		}
	case hacktrack.ActionShare:
		ev, ok := m.savedEvent(c)
		if !ok {
			return nil
		}
		return func() tea.Msg {
			return ActionResultMsg{Result: d.ShareEvent(context.Background(), ev), Generation: gen}
		}
	case hacktrack.ActionRemind:
		id := c.eventID
		return func() tea.Msg {
			return ActionResultMsg{Result: d.SetReminder(context.Background(), id), Generation: gen}
		}
	}
	return nil
}

func (m Model) savedEvent(c control) (hacktrack.Event, bool) {
	if c.saved < 0 || c.saved >= m.saved.Len() {
		return hacktrack.Event{}, false
	}
	ev := m.saved.events[c.saved]
	return ev, ev.ID == c.eventID
}
