package hacktrack

// Transcript is the append-only sequence of chat turns. Insertion order is
// display order. It is not safe for concurrent use; the UI loop owns it.
type Transcript struct {
	turns []Turn
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Len returns the number of turns.
func (t *Transcript) Len() int { return len(t.turns) }

// Turns returns a copy of the turns in display order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}
