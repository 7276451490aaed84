package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/hacktrack"
	"github.com/fwojciec/hacktrack/goldmark"
)

// MessageBlock is a renderable element in the transcript.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// FocusMsg tells a block holding a control whether that control has focus.
type FocusMsg struct {
	Focused bool
}

var (
	_ MessageBlock = (*UserTurnBlock)(nil)
	_ MessageBlock = (*BotTurnBlock)(nil)
	_ MessageBlock = (*EventCardBlock)(nil)
)

// UserTurnBlock renders a user turn with a "> " prefix.
type UserTurnBlock struct {
	text   string
	styles Styles
}

// NewUserTurnBlock creates a UserTurnBlock.
func NewUserTurnBlock(text string, styles Styles) *UserTurnBlock {
	return &UserTurnBlock{text: hacktrack.Sanitize(text), styles: styles}
}

func (b *UserTurnBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *UserTurnBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + b.text
	return lipgloss.NewStyle().Width(width).Render(content)
}

// BotTurnBlock renders assistant reply text as markdown. The rendered form is
// cached per width.
type BotTurnBlock struct {
	text     string
	failed   bool
	markdown *goldmark.Renderer
	styles   Styles

	cacheWidth int
	cache      string
}

// NewBotTurnBlock creates a BotTurnBlock. A failed turn is shown as plain
// error text.
func NewBotTurnBlock(text string, failed bool, markdown *goldmark.Renderer, styles Styles) *BotTurnBlock {
	return &BotTurnBlock{text: text, failed: failed, markdown: markdown, styles: styles, cacheWidth: -1}
}

func (b *BotTurnBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *BotTurnBlock) View(width int) string {
	if b.cacheWidth == width {
		return b.cache
	}
	var out string
	if b.failed {
		out = lipgloss.NewStyle().Width(width).Render(b.styles.Error.Render(hacktrack.Sanitize(b.text)))
	} else {
		out = b.markdown.Render(b.text, width)
	}
	b.cacheWidth, b.cache = width, out
	return out
}

// EventCardBlock renders a proposed event with its save control. The label
// is built from the event's fields by a fixed template.
type EventCardBlock struct {
	entity  hacktrack.Entity
	focused bool
	styles  Styles
}

// NewEventCardBlock creates an EventCardBlock for entity.
func NewEventCardBlock(entity hacktrack.Entity, styles Styles) *EventCardBlock {
	return &EventCardBlock{entity: entity, styles: styles}
}

// Entity returns the entity bound to the block's control.
func (b *EventCardBlock) Entity() hacktrack.Entity { return b.entity }

// Focused reports whether the block's control has focus.
func (b *EventCardBlock) Focused() bool { return b.focused }

func (b *EventCardBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if f, ok := msg.(FocusMsg); ok {
		b.focused = f.Focused
	}
	return b, nil
}

func (b *EventCardBlock) View(width int) string {
	ev := b.entity.Event
	label := "Event: " + oneLine(ev.Name) + " - " + oneLine(ev.Date)
	line := b.styles.EventCard.Render(label) + " " + b.styles.control(controlLabel(b.entity.Action), b.focused)

	var details []string
	if ev.Location != "" {
		details = append(details, oneLine(ev.Location))
	}
	if ev.Skills != "" {
		details = append(details, oneLine(ev.Skills))
	}
	if len(details) > 0 {
		line += "\n" + b.styles.Muted.Render("  "+strings.Join(details, " · "))
	}
	return lipgloss.NewStyle().Width(width).Render(line)
}

func controlLabel(a hacktrack.ActionKind) string {
	switch a {
	case hacktrack.ActionSave:
		return "Save"
	case hacktrack.ActionShare:
		return "Share"
	case hacktrack.ActionRemind:
		return "Remind"
	default:
		return string(a)
	}
}

// newTurnBlocks maps a transcript turn to its blocks. Entities come only from
// the turn's structured data.
func newTurnBlocks(turn hacktrack.Turn, markdown *goldmark.Renderer, styles Styles) []MessageBlock {
	if turn.Sender == hacktrack.SenderUser {
		return []MessageBlock{NewUserTurnBlock(turn.Text, styles)}
	}
	if len(turn.Entities) == 0 {
		return []MessageBlock{NewBotTurnBlock(turn.Text, turn.Failed, markdown, styles)}
	}
	blocks := make([]MessageBlock, 0, len(turn.Entities))
	for _, e := range turn.Entities {
		blocks = append(blocks, NewEventCardBlock(e, styles))
	}
	return blocks
}

// blockSeparator returns the separator written between two adjacent blocks.
// Consecutive event cards are listed tightly; other blocks get a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	_, prevCard := prev.(*EventCardBlock)
	_, currCard := curr.(*EventCardBlock)
	if prevCard && currCard {
		return "\n"
	}
	return "\n\n"
}
