package bubbletea

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
	"github.com/google/uuid"
)

const helpText = "Commands: /signin, /signin <code>, /token <id-token>, /signout, /saved, /help"

// runCommand handles a slash command. Commands never produce chat turns.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/signin":
		if m.provider == nil {
			return m.setNotice(hacktrack.NoticeError, "Sign-in is not configured. Use /token <id-token>."), nil
		}
		if arg == "" {
			url := m.provider.SignInURL(uuid.NewString())
			return m.setNotice(hacktrack.NoticeInfo, "Open this URL to sign in, then run /signin <code>: "+url), nil
		}
		m = m.setNotice(hacktrack.NoticeInfo, "Signing in...")
		return m, exchangeCode(m.provider, arg)

	case "/token":
		if arg == "" {
			return m.setNotice(hacktrack.NoticeError, "Usage: /token <id-token>"), nil
		}
		id, err := m.parseID(arg)
		if err != nil {
			m.logger.Debug("token has no readable claims", "error", err)
			id = hacktrack.Identity{Token: arg}
		}
		return m.signIn(id)

	case "/signout":
		return m.signOut(), nil

	case "/saved":
		if !m.session.SignedIn() {
			return m.setNotice(hacktrack.NoticeError, "Please sign in to see saved events."), nil
		}
		return m, m.loadSaved()

	case "/help":
		return m.setNotice(hacktrack.NoticeInfo, helpText), nil

	default:
		return m.setNotice(hacktrack.NoticeError, "Unknown command "+name+". "+helpText), nil
	}
}

func exchangeCode(p hacktrack.IdentityProvider, code string) tea.Cmd {
	return func() tea.Msg {
		id, err := p.Exchange(context.Background(), code)
		if err != nil {
			return SignInErrMsg{Err: err}
		}
		return SignInMsg{Identity: id}
	}
}
