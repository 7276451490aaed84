package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/hacktrack"
	"github.com/fwojciec/hacktrack/goldmark"
)

var _ tea.Model = Model{}

// maxSavedRows caps the saved-events panel height.
const maxSavedRows = 6

// State is the interaction state shown to the user.
type State int

const (
	StateIdle State = iota
	StateComposing
	StateSending
)

func (s State) String() string {
	switch s {
	case StateComposing:
		return "composing"
	case StateSending:
		return "sending"
	default:
		return "idle"
	}
}

// Config holds optional collaborators for the Model.
type Config struct {
	// Logger receives diagnostic logs. Nil discards them.
	Logger *slog.Logger
	// ParseIdentity decodes display claims from a pasted token. Nil keeps the
	// token opaque.
	ParseIdentity func(raw string) (hacktrack.Identity, error)
	// ReplyHold bounds how long an outstanding send holds back later
	// replies. Zero means hacktrack.DefaultReplyHold.
	ReplyHold time.Duration
}

// Model is the Bubble Tea model for the hacktrack TUI.
type Model struct {
	// Input is the chat input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model
	// Spinner marks pending sends in the status line.
	Spinner spinner.Model

	chat       *hacktrack.Chat
	dispatcher *hacktrack.Dispatcher
	session    *hacktrack.Session
	provider   hacktrack.IdentityProvider
	styles     Styles
	markdown   *goldmark.Renderer
	logger     *slog.Logger
	parseID    func(string) (hacktrack.Identity, error)

	transcript *hacktrack.Transcript
	sequencer  *hacktrack.Sequencer
	blocks     []MessageBlock
	saved      *SavedList

	focus  control
	notice hacktrack.Notice

	width  int
	height int
	ready  bool
}

// New creates a TUI Model. provider may be nil, in which case only /token
// sign-in is available.
func New(chat *hacktrack.Chat, dispatcher *hacktrack.Dispatcher, session *hacktrack.Session, provider hacktrack.IdentityProvider, theme hacktrack.Theme, config Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.BotMsg

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	parseID := config.ParseIdentity
	if parseID == nil {
		parseID = func(raw string) (hacktrack.Identity, error) { return hacktrack.Identity{Token: raw}, nil }
	}

	m := Model{
		Input:      ti,
		Spinner:    sp,
		chat:       chat,
		dispatcher: dispatcher,
		session:    session,
		provider:   provider,
		styles:     styles,
		markdown:   goldmark.New(theme),
		logger:     logger,
		parseID:    parseID,
		transcript: &hacktrack.Transcript{},
		sequencer:  hacktrack.NewSequencer(hacktrack.WithReplyHold(config.ReplyHold)),
		saved:      NewSavedList(styles),
		focus:      noControl,
	}
	m.Input.Placeholder = m.placeholder()
	return m
}

// placeholder returns the input hint for the current policy and session.
func (m Model) placeholder() string {
	if m.chat.Policy() == hacktrack.ChatRequireSignIn && !m.session.SignedIn() {
		return "Sign in with /signin or /token to chat"
	}
	return "Ask about events, or /signin"
}

// State returns the current interaction state. Sending takes precedence:
// the input stays usable while replies are pending.
func (m Model) State() State {
	switch {
	case m.sequencer.Pending() > 0:
		return StateSending
	case strings.TrimSpace(m.Input.Value()) != "":
		return StateComposing
	default:
		return StateIdle
	}
}

// Pending returns the number of sends awaiting a reply.
func (m Model) Pending() int { return m.sequencer.Pending() }

// Notice returns the latest notice.
func (m Model) Notice() hacktrack.Notice { return m.notice }

// Turns returns the transcript in display order.
func (m Model) Turns() []hacktrack.Turn { return m.transcript.Turns() }

// SavedEvents returns the saved-events list as displayed.
func (m Model) SavedEvents() []hacktrack.Event { return m.saved.Events() }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.session.SignedIn() {
		return tea.Batch(textinput.Blink, m.loadSaved())
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatReplyMsg:
		return m.handleReply(msg)

	case replyHoldMsg:
		return m.flushHeld()

	case SignInMsg:
		return m.signIn(msg.Identity)

	case SignInErrMsg:
		m.logger.Warn("sign-in failed", "error", msg.Err)
		return m.setNotice(hacktrack.NoticeError, "Sign-in failed."), nil

	case SignOutMsg:
		return m.signOut(), nil

	case SavedEventsMsg:
		return m.handleSaved(msg), nil

	case ActionResultMsg:
		return m.handleResult(msg), nil

	case spinner.TickMsg:
		if m.sequencer.Pending() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	if panel := m.savedView(); panel != "" {
		b.WriteString(panel)
		b.WriteString("\n")
	}
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, 1)
		m.ready = true
	}
	m.Input.Width = msg.Width - lipgloss.Width(m.Input.Prompt) - 1
	m = m.layout()
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// layout sizes the viewport to the space left by the other sections.
func (m Model) layout() Model {
	if !m.ready {
		return m
	}
	used := 1 + lipgloss.Height(m.statusView())
	if panel := m.savedView(); panel != "" {
		used += lipgloss.Height(panel)
	}
	m.Viewport.Width = m.width
	m.Viewport.Height = max(m.height-used, 1)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyTab:
		return m.moveFocus(1), nil

	case tea.KeyShiftTab:
		return m.moveFocus(-1), nil

	case tea.KeyEsc:
		if m.focus != noControl {
			return m.focusInput()
		}
		return m, nil

	case tea.KeyEnter:
		if m.focus != noControl {
			return m, m.activate(m.focus)
		}
		return m.submit()

	case tea.KeyRunes, tea.KeySpace:
		if m.focus != noControl {
			var cmd tea.Cmd
			m, cmd = m.focusInput()
			var inputCmd tea.Cmd
			m.Input, inputCmd = m.Input.Update(msg)
			return m, tea.Batch(cmd, inputCmd)
		}
	}

	// Non-character keys also scroll the transcript. Character keys would
	// conflict with viewport bindings such as j and k.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.focus == noControl {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// submit handles Enter on the input. Blank input is a no-op.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.Input.Value())
	if text == "" {
		return m, nil
	}
	m.Input.SetValue("")
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	m = m.appendTurns(hacktrack.UserTurn(text))
	seq := m.sequencer.Next()
	m.logger.Debug("chat send", "seq", seq, "chars", len(text))
	m = m.layout()
	return m, tea.Batch(sendChat(m.chat, seq, text), m.Spinner.Tick)
}

func (m Model) handleReply(msg ChatReplyMsg) (Model, tea.Cmd) {
	var turns []hacktrack.Turn
	if msg.Err != nil {
		m.logger.Warn("chat failed", "seq", msg.Seq, "error", msg.Err)
		turns = []hacktrack.Turn{hacktrack.FailureTurn()}
		if errors.Is(msg.Err, hacktrack.ErrNotSignedIn) {
			m = m.setNotice(hacktrack.NoticeError, "Please sign in to chat.")
		}
	} else {
		m.logger.Debug("chat reply", "seq", msg.Seq, "events", len(msg.Reply.Events), "turns", m.transcript.Len())
		turns = hacktrack.ReplyTurns(msg.Reply)
	}
	released := m.sequencer.Deliver(msg.Seq, turns)
	m = m.appendTurns(released...)
	return m.layout(), m.holdTimer()
}

// flushHeld releases replies held back by a send that has been outstanding
// past the hold period.
func (m Model) flushHeld() (tea.Model, tea.Cmd) {
	released := m.sequencer.Flush()
	if len(released) > 0 {
		m.logger.Warn("released replies past a stalled send", "turns", len(released), "pending", m.sequencer.Pending())
	}
	m = m.appendTurns(released...)
	return m.layout(), m.holdTimer()
}

// holdTimer schedules a flush while arrived replies wait on an earlier send.
func (m Model) holdTimer() tea.Cmd {
	if !m.sequencer.Blocked() {
		return nil
	}
	return tea.Tick(m.sequencer.Hold(), func(time.Time) tea.Msg { return replyHoldMsg{} })
}

// appendTurns adds turns to the transcript and scrolls to the newest.
func (m Model) appendTurns(turns ...hacktrack.Turn) Model {
	if len(turns) == 0 {
		return m
	}
	for _, t := range turns {
		m.transcript.Append(t)
		m.blocks = append(m.blocks, newTurnBlocks(t, m.markdown, m.styles)...)
	}
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderContent() string {
	content, _ := m.renderContentAt(-1)
	return content
}

// renderContentAt renders every block and returns the first line of block
// target, or -1.
func (m Model) renderContentAt(target int) (string, int) {
	var b strings.Builder
	line := -1
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		if i == target {
			line = strings.Count(b.String(), "\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String(), line
}

func (m Model) signIn(id hacktrack.Identity) (tea.Model, tea.Cmd) {
	if id.Token == "" {
		return m.setNotice(hacktrack.NoticeError, "Sign-in failed."), nil
	}
	m.session.SetToken(id)
	m.Input.Placeholder = m.placeholder()
	m.logger.Info("signed in", "subject", id.Subject)
	m = m.setNotice(hacktrack.NoticeSuccess, "Signed in as "+id.DisplayName()+".")
	return m, m.loadSaved()
}

func (m Model) signOut() Model {
	m.session.Clear()
	m.saved.Clear()
	m.Input.Placeholder = m.placeholder()
	if m.focus.saved >= 0 {
		m.focus = noControl
		m.Input.Focus()
	}
	m.logger.Info("signed out")
	return m.setNotice(hacktrack.NoticeInfo, "Signed out.")
}

func (m Model) handleSaved(msg SavedEventsMsg) Model {
	if !m.session.SignedIn() || msg.Generation != m.session.Generation() {
		// A fetch that raced a sign-out or a change of identity.
		return m
	}
	if msg.Err != nil {
		m.logger.Warn("load saved events", "error", msg.Err)
		return m.setNotice(hacktrack.NoticeError, "Error loading saved events.")
	}
	m.saved.SetEvents(msg.Events)
	return m.refocus().layout()
}

func (m Model) handleResult(msg ActionResultMsg) Model {
	res := msg.Result
	if res.Err != nil {
		m.logger.Warn("event action failed", "action", res.Action, "event_id", res.EventID, "error", res.Err)
	}
	if res.RefreshErr != nil {
		m.logger.Warn("refresh saved events", "error", res.RefreshErr)
	}
	if res.Share != nil && res.Share.Path != "" {
		m.logger.Info("wrote share file", "event_id", res.EventID, "path", res.Share.Path)
	}
	if res.Refreshed && m.session.SignedIn() && msg.Generation == m.session.Generation() {
		m.saved.SetEvents(res.Saved)
		m = m.refocus()
	}
	m.notice = res.Notice
	return m.layout()
}

func (m Model) setNotice(kind hacktrack.NoticeKind, text string) Model {
	m.notice = hacktrack.Notice{Kind: kind, Text: text}
	return m.layout()
}

func (m Model) loadSaved() tea.Cmd {
	d := m.dispatcher
	gen := m.session.Generation()
	return func() tea.Msg {
		events, err := d.LoadSaved(context.Background())
		return SavedEventsMsg{Events: events, Err: err, Generation: gen}
	}
}

// sendChat runs one send. The session token is read when the command runs.
func sendChat(chat *hacktrack.Chat, seq uint64, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := chat.Send(context.Background(), text)
		return ChatReplyMsg{Seq: seq, Reply: reply, Err: err}
	}
}

func (m Model) savedView() string {
	if !m.session.SignedIn() {
		return ""
	}
	return m.saved.View(m.width, maxSavedRows)
}

func (m Model) statusView() string {
	var notice string
	if m.notice.Text != "" {
		notice = m.styles.Notice(m.notice.Kind).Render(hacktrack.Sanitize(m.notice.Text))
	} else {
		notice = m.styles.Muted.Render("Enter send · Tab controls · /signin · Ctrl+C quit")
	}
	if m.width > 0 {
		notice = lipgloss.NewStyle().Width(m.width).Render(notice)
	}

	var parts []string
	if n := m.sequencer.Pending(); n > 0 {
		parts = append(parts, m.Spinner.View()+" "+pluralize(n, "reply", "replies")+" pending")
	}
	if id, ok := m.session.Identity(); ok {
		parts = append(parts, "signed in as "+oneLine(id.DisplayName()))
	} else {
		parts = append(parts, "signed out")
	}
	return notice + "\n" + m.styles.Muted.Render(strings.Join(parts, " · "))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
