package hacktrack

import (
	"context"
	"errors"
	"fmt"
)

// Notice texts shown for event actions.
const (
	NoticeSignInToSave   = "Please sign in to save events."
	NoticeSignInToRemind = "Please sign in to set reminders."
	NoticeEventSaved     = "Event saved!"
	NoticeSaveFailed     = "Error saving event."
	NoticeReminderSet    = "Reminder set!"
	NoticeReminderFailed = "Error setting reminder."
	NoticeShareFailed    = "Error sharing event."
)

// Dispatcher runs save, share and remind actions for a single event and
// reconciles the saved-events snapshot. Actions are not deduplicated: issuing
// the same action twice makes two backend calls.
type Dispatcher struct {
	backend Backend
	session *Session
	sharer  Sharer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(backend Backend, session *Session, sharer Sharer) *Dispatcher {
	return &Dispatcher{backend: backend, session: session, sharer: sharer}
}

// SaveEvent persists the event server-side and refreshes the saved list.
func (d *Dispatcher) SaveEvent(ctx context.Context, eventID string) Result {
	res := Result{Action: ActionSave, EventID: eventID}
	if !d.session.SignedIn() {
		res.Err = ErrNotSignedIn
		res.Notice = Notice{Kind: NoticeError, Text: NoticeSignInToSave}
		return res
	}
	if err := d.backend.SaveEvent(ctx, eventID); err != nil {
		res.Err = err
		res.Notice = failureNotice(err, NoticeSignInToSave, NoticeSaveFailed)
		return res
	}
	saved, err := d.LoadSaved(ctx)
	if err != nil {
		res.RefreshErr = err
	} else {
		res.Refreshed = true
		res.Saved = saved
	}
	res.Notice = Notice{Kind: NoticeSuccess, Text: NoticeEventSaved}
	return res
}

// ShareEvent builds a share artifact locally. It does not contact the backend
// and does not require a session token.
func (d *Dispatcher) ShareEvent(ctx context.Context, event Event) Result {
	res := Result{Action: ActionShare, EventID: event.ID}
	if d.sharer == nil {
		res.Err = errors.New("sharing is not configured")
		res.Notice = Notice{Kind: NoticeError, Text: NoticeShareFailed}
		return res
	}
	art, err := d.sharer.Share(ctx, event)
	if err != nil {
		res.Err = err
		res.Notice = Notice{Kind: NoticeError, Text: NoticeShareFailed}
		return res
	}
	res.Share = &art
	res.Notice = Notice{Kind: NoticeInfo, Text: fmt.Sprintf("Share link for event %s: %s", event.ID, art.URL)}
	return res
}

// SetReminder asks the backend to create a reminder. Reminders are not
// visible state, so the saved list is not refreshed.
func (d *Dispatcher) SetReminder(ctx context.Context, eventID string) Result {
	res := Result{Action: ActionRemind, EventID: eventID}
	if !d.session.SignedIn() {
		res.Err = ErrNotSignedIn
		res.Notice = Notice{Kind: NoticeError, Text: NoticeSignInToRemind}
		return res
	}
	if err := d.backend.SetReminder(ctx, eventID); err != nil {
		res.Err = err
		res.Notice = failureNotice(err, NoticeSignInToRemind, NoticeReminderFailed)
		return res
	}
	res.Notice = Notice{Kind: NoticeSuccess, Text: NoticeReminderSet}
	return res
}

// LoadSaved fetches the saved-events list.
func (d *Dispatcher) LoadSaved(ctx context.Context) ([]Event, error) {
	if !d.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	events, err := d.backend.SavedEvents(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// failureNotice maps a backend error to its notice. A sign-out that raced
// the precheck surfaces as ErrNotSignedIn from the transport.
func failureNotice(err error, signIn, generic string) Notice {
	if errors.Is(err, ErrNotSignedIn) {
		return Notice{Kind: NoticeError, Text: signIn}
	}
	return Notice{Kind: NoticeError, Text: generic}
}
