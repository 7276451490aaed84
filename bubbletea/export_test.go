package bubbletea

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Blocks exports the rendered transcript blocks for testing.
func Blocks(m Model) []MessageBlock {
	return m.blocks
}

// FocusedEventID returns the event id of the focused control, or "".
func FocusedEventID(m Model) string {
	return m.focus.eventID
}

// ControlCount returns the size of the focus ring.
func ControlCount(m Model) int {
	return len(m.controls())
}

// ReplyHoldMsg is the message that releases replies held by a stalled send.
type ReplyHoldMsg = replyHoldMsg
