// Package bubbletea provides the Bubble Tea TUI for hacktrack: the transcript,
// the saved-events panel, the status line and the chat input.
//
// All network work runs in tea.Cmd goroutines and reports back through the
// message types below. The Model's Update is the only writer of UI state.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits. Messages sent on initial are delivered after startup.
func Run(ctx context.Context, m Model, initial ...tea.Msg) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	for _, msg := range initial {
		go p.Send(msg)
	}
	_, err := p.Run()
	return err
}

// SignInMsg reports a successful sign-in by the identity provider.
type SignInMsg struct {
	Identity hacktrack.Identity
}

// SignInErrMsg reports a failed sign-in attempt.
type SignInErrMsg struct {
	Err error
}

// SignOutMsg reports that sign-out completed.
type SignOutMsg struct{}

// ChatReplyMsg carries the outcome of the send numbered Seq.
type ChatReplyMsg struct {
	Seq   uint64
	Reply hacktrack.ChatReply
	Err   error
}

// SavedEventsMsg carries a saved-events fetch. Generation is the session
// generation the fetch was issued under; a stale one is ignored.
type SavedEventsMsg struct {
	Events     []hacktrack.Event
	Err        error
	Generation uint64
}

// ActionResultMsg carries the outcome of an event action issued under the
// session generation Generation.
type ActionResultMsg struct {
	Result     hacktrack.Result
	Generation uint64
}

// replyHoldMsg asks the Model to release replies held past the hold period.
type replyHoldMsg struct{}
