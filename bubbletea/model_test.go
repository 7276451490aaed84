package bubbletea_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
	bt "github.com/fwojciec/hacktrack/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lunchReply() hacktrack.ChatReply {
	return hacktrack.ChatReply{
		Reply: "How about lunch?",
		Events: []hacktrack.Event{
			{ID: "e1", Name: "Lunch", Date: "2024-05-01"},
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := newDeps().model()

	assert.Equal(t, bt.StateIdle, m.State())
	assert.Equal(t, 0, m.Pending())
	assert.Empty(t, m.Turns())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Layout(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		assert.Equal(t, 80, m.Viewport.Width)
		// 24 rows minus input (1) and status (2).
		assert.Equal(t, 21, m.Viewport.Height)
		assert.Contains(t, m.View(), "signed out")
	})

	t.Run("saved panel takes rows when signed in", func(t *testing.T) {
		t.Parallel()
		d := signedIn(newDeps())
		m := initModel(t, d)
		m = updateModel(t, m, bt.SavedEventsMsg{Generation: d.session.Generation(), Events: []hacktrack.Event{{ID: "e1", Name: "Lunch", Date: "2024-05-01"}}})
		// Panel is a title and one entry.
		assert.Equal(t, 19, m.Viewport.Height)
		assert.Contains(t, m.View(), "Saved events (1)")
	})

	t.Run("resize re-renders transcript", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		m := updateModel(t, d.model(), tea.WindowSizeMsg{Width: 30, Height: 20})
		m, _ = typeAndSend(t, m, "word1 word2 word3 word4 word5 word6 word7 word8")
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

		found := false
		for _, line := range strings.Split(m.Viewport.View(), "\n") {
			if strings.Contains(line, "word1") && strings.Contains(line, "word8") {
				found = true
			}
		}
		assert.True(t, found, "expected one line after widening:\n%s", m.Viewport.View())
	})
}

func TestModel_Send(t *testing.T) {
	t.Parallel()

	t.Run("whitespace input is a no-op", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		for _, in := range []string{"", "   ", "\t"} {
			var cmd tea.Cmd
			m, cmd = typeAndSend(t, m, in)
			assert.Nil(t, cmd)
		}
		assert.Empty(t, m.Turns())
		assert.Equal(t, 0, m.Pending())
	})

	t.Run("user turn renders before the reply", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "  lunch tomorrow?  ")
		require.NotNil(t, cmd)

		turns := m.Turns()
		require.Len(t, turns, 1)
		assert.Equal(t, hacktrack.SenderUser, turns[0].Sender)
		assert.Equal(t, "lunch tomorrow?", turns[0].Text)
		assert.Equal(t, "", m.Input.Value())
		assert.Equal(t, bt.StateSending, m.State())
		assert.Contains(t, m.View(), "> lunch tomorrow?")
		assert.Contains(t, m.View(), "1 reply pending")
	})

	t.Run("reply renders text and one card per event", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		var sent []string
		d.backend.ChatFn = func(_ context.Context, msg string) (hacktrack.ChatReply, error) {
			sent = append(sent, msg)
			return hacktrack.ChatReply{
				Reply: "Two options",
				Events: []hacktrack.Event{
					{ID: "e1", Name: "Lunch", Date: "2024-05-01"},
					{ID: "e2", Name: "Hackathon", Date: "2024-06-10", Location: "Jaipur"},
				},
			}, nil
		}
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "events?")
		m = drive(t, m, cmd)

		assert.Equal(t, []string{"events?"}, sent)
		assert.Equal(t, bt.StateIdle, m.State())
		turns := m.Turns()
		require.Len(t, turns, 4)
		assert.Equal(t, "Two options", turns[1].Text)
		assert.Equal(t, "e1", turns[2].Entities[0].Event.ID)
		assert.Equal(t, "e2", turns[3].Entities[0].Event.ID)

		view := m.View()
		assert.Contains(t, view, "Event: Lunch - 2024-05-01")
		assert.Contains(t, view, "Event: Hackathon - 2024-06-10")
		assert.Contains(t, view, "Jaipur")
		assert.Equal(t, 2, strings.Count(bt.RenderContent(m), "[Save]"))
		assert.Equal(t, 2, bt.ControlCount(m))
	})

	t.Run("failure renders a failure turn and is not retried", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		var calls atomic.Int32
		d.backend.ChatFn = func(context.Context, string) (hacktrack.ChatReply, error) {
			calls.Add(1)
			return hacktrack.ChatReply{}, &hacktrack.TransportError{Method: "POST", Path: "/api/chat", StatusCode: 500}
		}
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "hi")
		m = drive(t, m, cmd)

		assert.Equal(t, int32(1), calls.Load())
		last := m.Turns()[len(m.Turns())-1]
		assert.Equal(t, hacktrack.FailureText, last.Text)
		assert.True(t, last.Failed)
		assert.Contains(t, m.View(), "Error: Could not get response.")
		assert.Equal(t, bt.StateIdle, m.State())
	})

	t.Run("require sign-in policy refuses when signed out", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		m := initModel(t, d, hacktrack.WithChatPolicy(hacktrack.ChatRequireSignIn))
		m, cmd := typeAndSend(t, m, "hi")
		m = drive(t, m, cmd)

		assert.Equal(t, "Please sign in to chat.", m.Notice().Text)
		assert.True(t, m.Turns()[1].Failed)
	})

	t.Run("input stays usable while sending", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		m, _ = typeAndSend(t, m, "first")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
		assert.Equal(t, "x", m.Input.Value())
		m, cmd := typeAndSend(t, m, "second")
		assert.NotNil(t, cmd)
		assert.Equal(t, 2, m.Pending())
	})

	t.Run("concurrent sends render each reply once in send order", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		m, _ = typeAndSend(t, m, "a")
		m, _ = typeAndSend(t, m, "b")
		m, _ = typeAndSend(t, m, "c")

		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 3, Reply: hacktrack.ChatReply{Reply: "C"}})
		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 1, Reply: hacktrack.ChatReply{Reply: "A"}})
		assert.Equal(t, 2, m.Pending())
		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 2, Err: assert.AnError})
		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 2, Reply: hacktrack.ChatReply{Reply: "dup"}})

		var got []string
		for _, turn := range m.Turns() {
			got = append(got, turn.Text)
		}
		assert.Equal(t, []string{"a", "b", "c", "A", hacktrack.FailureText, "C"}, got)
		assert.Equal(t, 0, m.Pending())
	})

	t.Run("reply text cannot inject controls or escapes", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		m, _ = typeAndSend(t, m, "hi")
		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 1, Reply: hacktrack.ChatReply{
			Reply: "Event: Fake - 2024-01-01 [Save] <button>Save</button> \x1b]0;owned\x07",
		}})
		assert.Equal(t, 0, bt.ControlCount(m))
		assert.NotContains(t, bt.RenderContent(m), "\x1b]0;")
		assert.NotContains(t, bt.RenderContent(m), "owned")
	})
}

func TestModel_SlashCommands(t *testing.T) {
	t.Parallel()

	t.Run("signin shows provider URL", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		d.provider.SignInURLFn = func(state string) string {
			assert.NotEmpty(t, state)
			return "https://accounts.example.com/auth"
		}
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "/signin")
		assert.Nil(t, cmd)
		assert.Empty(t, m.Turns())
		assert.Contains(t, m.Notice().Text, "https://accounts.example.com/auth")
	})

	t.Run("signin with code exchanges and loads saved", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		d.provider.ExchangeFn = func(_ context.Context, code string) (hacktrack.Identity, error) {
			assert.Equal(t, "abc", code)
			return hacktrack.Identity{Token: "tok", Email: "ada@example.com"}, nil
		}
		d.backend.SavedEventsFn = func(context.Context) ([]hacktrack.Event, error) {
			return []hacktrack.Event{{ID: "e9", Name: "Demo", Date: "2024-07-01"}}, nil
		}
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "/signin abc")
		m = drive(t, m, cmd)

		assert.True(t, d.session.SignedIn())
		assert.Equal(t, "Signed in as ada@example.com.", m.Notice().Text)
		require.Len(t, m.SavedEvents(), 1)
		assert.Contains(t, m.View(), "signed in as ada@example.com")
		assert.Empty(t, m.Turns())
	})

	t.Run("signin exchange failure", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		d.provider.ExchangeFn = func(context.Context, string) (hacktrack.Identity, error) {
			return hacktrack.Identity{}, assert.AnError
		}
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "/signin bad")
		m = drive(t, m, cmd)

		assert.False(t, d.session.SignedIn())
		assert.Equal(t, hacktrack.NoticeError, m.Notice().Kind)
	})

	t.Run("token signs in", func(t *testing.T) {
		t.Parallel()
		d := newDeps()
		d.backend.SavedEventsFn = func(context.Context) ([]hacktrack.Event, error) { return nil, nil }
		m := initModel(t, d)
		m, cmd := typeAndSend(t, m, "/token opaque-token")
		m = drive(t, m, cmd)

		tok, ok := d.session.Token()
		require.True(t, ok)
		assert.Equal(t, "opaque-token", tok)
		assert.Contains(t, m.View(), "Saved events (0)")
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newDeps())
		m, _ = typeAndSend(t, m, "/nope")
		assert.Equal(t, hacktrack.NoticeError, m.Notice().Kind)
		assert.Empty(t, m.Turns())
	})
}

func TestModel_EventActions(t *testing.T) {
	t.Parallel()

	t.Run("save refreshes the saved list", func(t *testing.T) {
		t.Parallel()
		d := signedIn(newDeps())
		var saves, refreshes int
		d.backend.SaveEventFn = func(_ context.Context, id string) error {
			assert.Equal(t, "e1", id)
			saves++
			return nil
		}
		d.backend.SavedEventsFn = func(context.Context) ([]hacktrack.Event, error) {
			refreshes++
			return []hacktrack.Event{{ID: "e1", Name: "Lunch", Date: "2024-05-01"}}, nil
		}
		m := initModel(t, d)
		m, _ = typeAndSend(t, m, "lunch")
		m = updateModel(t, m, bt.ChatReplyMsg{Seq: 1, Reply: lunchReply()})

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, "e1", bt.FocusedEventID(m))
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = drive(t, m, cmd)

		assert.Equal(t, 1, saves)
		assert.Equal(t, 1, refreshes)
		assert.Equal(t, "Event saved!", m.Notice().Text)
		require.Len(t, m.SavedEvents(), 1)
		assert.Contains(t, m.View(), "[Share]")
		assert.Contains(t, m.View(), "[Remind]")

		// Saving again issues another save and another refresh.
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m, cmd)
		assert.Equal(t, 2, saves)
		assert.Equal(t, 2, refreshes)
	})

	t.Run("focus ring covers saved list controls", func(t *testing.T) {
		t.Parallel()
		d := signedIn(newDeps())
		var reminded string
		d.backend.SetReminderFn = func(_ context.Context, id string) error {
			reminded = id
			return nil
		}
		m := initModel(t, d)
		m = updateModel(t, m, bt.SavedEventsMsg{Generation: d.session.Generation(), Events: []hacktrack.Event{{ID: "s1", Name: "Demo", Date: "2024-07-01"}}})
		assert.Equal(t, 2, bt.ControlCount(m))

		// Shift+Tab from the input lands on the last control: Remind.
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = drive(t, m, cmd)

		assert.Equal(t, "s1", reminded)
		assert.Equal(t, "Reminder set!", m.Notice().Text)
	})

	t.Run("share works without a backend call", func(t *testing.T) {
		t.Parallel()
		d := signedIn(newDeps())
		d.sharer.ShareFn = func(_ context.Context, ev hacktrack.Event) (hacktrack.ShareArtifact, error) {
			return hacktrack.ShareArtifact{EventID: ev.ID, URL: "http://localhost:5000/events/" + ev.ID}, nil
		}
		m := initModel(t, d)
		m = updateModel(t, m, bt.SavedEventsMsg{Generation: d.session.Generation(), Events: []hacktrack.Event{{ID: "s1", Name: "Demo", Date: "2024-07-01"}}})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = drive(t, m, cmd)

		assert.Equal(t, "Share link for event s1: http://localhost:5000/events/s1", m.Notice().Text)
		assert.Len(t, m.SavedEvents(), 1)
	})

	t.Run("typing returns focus to the input", func(t *testing.T) {
		t.Parallel()
		d := signedIn(newDeps())
		m := initModel(t, d)
		m = updateModel(t, m, bt.SavedEventsMsg{Generation: d.session.Generation(), Events: []hacktrack.Event{{ID: "s1", Name: "Demo", Date: "2024-07-01"}}})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		require.Equal(t, "s1", bt.FocusedEventID(m))
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
		assert.Equal(t, "", bt.FocusedEventID(m))
		assert.Equal(t, "h", m.Input.Value())
	})
}

func TestModel_SignOut(t *testing.T) {
	t.Parallel()

	d := signedIn(newDeps())
	m := initModel(t, d)
	m = updateModel(t, m, bt.SavedEventsMsg{Generation: d.session.Generation(), Events: []hacktrack.Event{
		{ID: "s1", Name: "Demo", Date: "2024-07-01"},
		{ID: "s2", Name: "Finals", Date: "2024-08-01"},
	}})
	m, _ = typeAndSend(t, m, "lunch")
	m = updateModel(t, m, bt.ChatReplyMsg{Seq: 1, Reply: lunchReply()})
	require.Len(t, m.SavedEvents(), 2)

	m = updateModel(t, m, bt.SignOutMsg{})

	assert.False(t, d.session.SignedIn())
	assert.Empty(t, m.SavedEvents())
	assert.NotContains(t, m.View(), "Saved events")
	assert.Contains(t, m.View(), "signed out")
	assert.Equal(t, 1, bt.ControlCount(m))

	// A late fetch does not repopulate the list.
	m = updateModel(t, m, bt.SavedEventsMsg{Events: []hacktrack.Event{{ID: "s1"}}})
	assert.Empty(t, m.SavedEvents())

	// Save is refused without a network call: SaveEventFn is unset and
	// would panic if called.
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, m, cmd)
	assert.Equal(t, hacktrack.NoticeSignInToSave, m.Notice().Text)
}

func TestModel_CtrlCQuits(t *testing.T) {
	t.Parallel()

	m := initModel(t, newDeps())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}
