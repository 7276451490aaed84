package bubbletea

import (
	"fmt"
	"strings"

	"github.com/fwojciec/hacktrack"
	"github.com/mattn/go-runewidth"
)

// SavedList renders the saved-events panel. Its contents are always the
// latest fetched snapshot: SetEvents replaces them in full.
type SavedList struct {
	events []hacktrack.Event
	styles Styles

	// focus is the index of the entry holding focus, or -1.
	focus  int
	action hacktrack.ActionKind
}

// NewSavedList creates an empty SavedList.
func NewSavedList(styles Styles) *SavedList {
	return &SavedList{styles: styles, focus: -1}
}

// SetEvents replaces the list with events.
func (l *SavedList) SetEvents(events []hacktrack.Event) {
	l.events = append([]hacktrack.Event(nil), events...)
	if l.focus >= len(l.events) {
		l.focus = -1
	}
}

// Clear empties the list.
func (l *SavedList) Clear() {
	l.events = nil
	l.focus = -1
}

// Events returns a copy of the listed events.
func (l *SavedList) Events() []hacktrack.Event {
	return append([]hacktrack.Event(nil), l.events...)
}

// Len returns the number of listed events.
func (l *SavedList) Len() int { return len(l.events) }

// SetFocus gives focus to the action control of entry i.
func (l *SavedList) SetFocus(i int, action hacktrack.ActionKind) {
	l.focus, l.action = i, action
}

// Blur removes focus from every entry.
func (l *SavedList) Blur() { l.focus = -1 }

// View renders the panel at width showing at most maxRows entries. The
// visible window follows the focused entry.
func (l *SavedList) View(width, maxRows int) string {
	var b strings.Builder
	b.WriteString(l.styles.Accent.Render(fmt.Sprintf("Saved events (%d)", len(l.events))))
	if len(l.events) == 0 {
		b.WriteString("\n" + l.styles.Muted.Render("  No saved events yet."))
		return b.String()
	}
	if maxRows < 1 {
		maxRows = 1
	}
	start := 0
	if l.focus >= maxRows {
		start = l.focus - maxRows + 1
	}
	end := min(start+maxRows, len(l.events))
	for i := start; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(l.entry(i, width))
	}
	if hidden := len(l.events) - (end - start); hidden > 0 {
		b.WriteString("\n" + l.styles.Muted.Render(fmt.Sprintf("  … %d more", hidden)))
	}
	return b.String()
}

// entry renders "<name> — <date> [Share] [Remind]", truncating the name to
// fit width.
func (l *SavedList) entry(i, width int) string {
	ev := l.events[i]
	date := oneLine(ev.Date)
	controls := l.styles.control("Share", l.focus == i && l.action == hacktrack.ActionShare) +
		" " + l.styles.control("Remind", l.focus == i && l.action == hacktrack.ActionRemind)
	// Indent, separator and the two control labels.
	fixed := 2 + runewidth.StringWidth(" — "+date+" ") + runewidth.StringWidth("[Share] [Remind]")
	avail := width - fixed
	if avail < 4 {
		avail = 4
	}
	name := runewidth.Truncate(oneLine(ev.Name), avail, "…")
	return "  " + name + l.styles.Muted.Render(" — "+date) + " " + controls
}

// oneLine sanitizes s and collapses its whitespace so it fits a single row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(hacktrack.Sanitize(s)), " ")
}
