package bubbletea_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
	bt "github.com/fwojciec/hacktrack/bubbletea"
	"github.com/fwojciec/hacktrack/mock"
	"github.com/stretchr/testify/require"
)

// deps bundles the collaborators behind a test model.
type deps struct {
	backend  *mock.Backend
	session  *hacktrack.Session
	sharer   *mock.Sharer
	provider *mock.IdentityProvider
}

func newDeps() *deps {
	return &deps{
		backend:  &mock.Backend{},
		session:  hacktrack.NewSession(),
		sharer:   &mock.Sharer{},
		provider: &mock.IdentityProvider{},
	}
}

func (d *deps) model(opts ...hacktrack.ChatOption) bt.Model {
	chat := hacktrack.NewChat(d.backend, d.session, opts...)
	dispatcher := hacktrack.NewDispatcher(d.backend, d.session, d.sharer)
	return bt.New(chat, dispatcher, d.session, d.provider, hacktrack.DefaultTheme(), bt.Config{})
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, d *deps, opts ...hacktrack.ChatOption) bt.Model {
	t.Helper()
	return updateModel(t, d.model(opts...), tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	m, _ = update(t, m, msg)
	return m
}

// update sends a message and returns the updated Model and command.
func update(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// typeAndSend sets the input to text and presses Enter.
func typeAndSend(t *testing.T, m bt.Model, text string) (bt.Model, tea.Cmd) {
	t.Helper()
	m.Input.SetValue(text)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// runCmd executes cmd, descending into batches, and returns every message
// other than spinner ticks and cursor blinks that the commands produce.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	case bt.ChatReplyMsg, bt.SavedEventsMsg, bt.ActionResultMsg, bt.SignInMsg, bt.SignInErrMsg, tea.QuitMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

// drive feeds every message produced by cmd back into the model.
func drive(t *testing.T, m bt.Model, cmd tea.Cmd) bt.Model {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		var next tea.Cmd
		m, next = update(t, m, msg)
		m = drive(t, m, next)
	}
	return m
}

func signedIn(d *deps) *deps {
	d.session.SetToken(hacktrack.Identity{Token: "tok", Email: "ada@example.com"})
	return d
}
