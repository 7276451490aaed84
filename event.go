package hacktrack

import "fmt"

// Event is a calendar event, either proposed by the assistant inside a chat
// reply or persisted server-side as a saved event.
type Event struct {
	ID       string
	Name     string
	Date     string
	Location string // optional
	Skills   string // optional
}

// Label returns the "name - date" text used on event cards.
func (e Event) Label() string {
	return fmt.Sprintf("%s - %s", e.Name, e.Date)
}

// Validate checks that the event can be bound to a control.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event %q has no id: %w", e.Name, ErrValidation)
	}
	return nil
}

// ChatReply is the backend's answer to a chat message.
type ChatReply struct {
	Reply  string
	Events []Event
}
