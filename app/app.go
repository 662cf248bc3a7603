package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/client"
	"github.com/miosa/lingo-tui/model"
	"github.com/miosa/lingo-tui/msg"
	"github.com/miosa/lingo-tui/style"
)

// Conversation is the send/stream side of the chat core.
type Conversation interface {
	Send(ctx context.Context, text string) error
	Cancel() bool
	Busy() bool
}

// Starter is the session bootstrap side of the chat core.
type Starter interface {
	Start(ctx context.Context) chat.Identity
	TestConnection(ctx context.Context) bool
}

// Backend serves the slash commands that bypass the stream.
type Backend interface {
	Health(ctx context.Context) (*client.HealthResponse, error)
	SessionInfo(ctx context.Context, sessionID, userID string) (*client.SessionInfoResponse, error)
	Direct(ctx context.Context, req client.ChatRequest) (*client.DirectResponse, error)
}

// Deps wires the program model to the chat core.
type Deps struct {
	Chat     Conversation
	Boot     Starter
	Session  *chat.Session
	Backend  Backend
	Log      zerolog.Logger
	Version  string
	BaseURL  string
	WordWrap int
	// Copy writes to the system clipboard. Defaults to atotto/clipboard.
	Copy func(string) error
}

var (
	errLocalSession = errors.New("local session is not known to the backend")
	errNoReply      = errors.New("no reply yet")
)

var commands = []string{"/help", "/session", "/health", "/reconnect", "/new", "/direct ", "/theme ", "/quit"}

type Model struct {
	deps        Deps
	ctx         context.Context
	chat        model.ChatModel
	input       model.InputModel
	status      model.StatusModel
	toasts      model.ToastsModel
	banner      model.BannerModel
	state       State
	keys        KeyMap
	width       int
	height      int
	confirmQuit bool

	// a /direct request is outstanding
	directPending bool
}

func New(deps Deps) Model {
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}
	c := model.NewChat(80, 20)
	c.SetWrap(deps.WordWrap)
	in := model.NewInput()
	in.SetCommands(commands)
	in.Focus()
	return Model{
		deps:   deps,
		ctx:    context.Background(),
		chat:   c,
		input:  in,
		status: model.NewStatus(),
		toasts: model.NewToasts(),
		banner: model.NewBanner(deps.Version, deps.BaseURL),
		state:  StateConnecting,
		keys:   DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

func (m Model) State() State { return m.state }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrap(), textinput.Blink, tickCmd(), tea.WindowSize())
}

func (m Model) Update(raw tea.Msg) (tea.Model, tea.Cmd) {
	switch v := raw.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.input.SetWidth(v.Width)
		m.layout()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(v)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(v)
		return m, cmd
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(v)
		return m, cmd

	// chat.UI, via Bridge
	case msg.AppendMessage:
		m.chat.Append(v.ID, v.Sender, v.Content)
		return m, nil
	case msg.UpdateMessage:
		if !m.chat.Replace(v.ID, v.Content) {
			m.deps.Log.Debug().Str("message_id", v.ID).Msg("update for unknown message")
		}
		return m, nil
	case msg.Typing:
		return m, m.chat.SetTyping(v.Visible)
	case msg.Notify:
		m.toasts.Add(v.Text, v.Severity)
		m.layout()
		return m, nil
	case msg.ConnStatus:
		m.status.SetConnection(v.State)
		return m, nil
	case msg.ClearInput:
		m.input.Clear()
		return m, nil
	case msg.SendEnabled:
		m.input.SetEnabled(v.Enabled)
		m.status.SetStreaming(!v.Enabled)
		if m.state != StateConnecting {
			m.state = StateIdle
			if !v.Enabled {
				m.state = StateStreaming
			}
		}
		return m, nil
	case msg.Progress:
		m.status.SetProgress(v.TotalWords, v.Percent)
		return m, nil

	// command results
	case msg.BootstrapDone:
		m.state = StateIdle
		m.status.SetSession(v.Identity)
		return m, m.input.Focus()
	case msg.SendDone:
		if v.Err != nil {
			m.deps.Log.Debug().Err(v.Err).Msg("send finished with error")
		}
		return m, nil
	case msg.ProbeResult:
		if v.OK {
			m.toasts.Add("Backend reachable.", chat.SeveritySuccess)
		} else {
			m.toasts.Add("Backend unreachable.", chat.SeverityError)
		}
		m.layout()
		return m, nil
	case msg.HealthResult:
		if v.Err != nil {
			m.chat.AddSystemMessage(fmt.Sprintf("Health check failed: %v", v.Err))
		} else {
			m.banner.SetService(v.Service)
			m.chat.AddSystemMessage(fmt.Sprintf("Backend %s is %s.", orDash(v.Service), v.Status))
		}
		return m, nil
	case msg.SessionInfoResult:
		m.chat.AddSystemMessage(m.sessionText(v))
		return m, nil
	case msg.DirectResult:
		m.directPending = false
		if v.Err != nil {
			m.toasts.Add(fmt.Sprintf("Direct reply failed: %v", v.Err), chat.SeverityError)
			m.layout()
			return m, nil
		}
		m.chat.Append("", chat.SenderBot, v.Response)
		return m, nil
	case msg.CopyResult:
		if v.Err != nil {
			m.toasts.Add("Clipboard unavailable: "+v.Err.Error(), chat.SeverityWarning)
		} else {
			m.toasts.Add(fmt.Sprintf("Copied %d characters.", v.Chars), chat.SeveritySuccess)
		}
		m.layout()
		return m, nil
	case msg.TickMsg:
		before := m.toasts.Len()
		m.toasts.Tick()
		if m.toasts.Len() != before {
			m.layout()
		}
		return m, tickCmd()
	}
	// cursor blink and anything else the prompt understands
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(raw)
	return m, cmd
}

func (m Model) View() string {
	sections := []string{
		m.banner.View(),
		m.chat.View(),
	}
	if t := m.toasts.View(m.width); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections,
		style.Rule(m.width),
		m.status.View(m.width),
		m.promptLine(),
	)
	if m.confirmQuit {
		sections = append(sections, style.Hint.Render("  Press Ctrl+C again to quit, or any key to stay."))
	} else {
		sections = append(sections, m.hintLine())
	}
	return strings.Join(sections, "\n")
}

func (m Model) promptLine() string {
	if m.state == StateConnecting {
		return style.Faint.Render("  Starting a session…")
	}
	return m.input.View()
}

func (m Model) hintLine() string {
	parts := make([]string, 0, 5)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return style.Hint.Render("  " + strings.Join(parts, " · "))
}

// layout gives the transcript whatever the other sections leave over.
func (m *Model) layout() {
	reserved := 5 // header, rule, status, prompt, hint
	reserved += m.toasts.Len()
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.chat.SetSize(m.width, h)
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		if key.Matches(k, m.keys.Quit) {
			return m, tea.Quit
		}
		m.confirmQuit = false
		m.layout()
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		if m.input.Value() != "" {
			m.input.Clear()
			return m, nil
		}
		m.confirmQuit = true
		m.layout()
		return m, nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return m, tea.Quit
		}
	case key.Matches(k, m.keys.Cancel):
		if m.deps.Chat.Cancel() {
			m.deps.Log.Debug().Msg("reply cancelled by user")
			return m, nil
		}
		m.input.Clear()
		return m, nil
	case key.Matches(k, m.keys.Copy):
		return m, m.copyLastReply()
	case key.Matches(k, m.keys.Help):
		m.chat.AddSystemMessage(helpText())
		return m, nil
	case key.Matches(k, m.keys.PageUp):
		m.chat.ScrollUp()
		return m, nil
	case key.Matches(k, m.keys.PageDown):
		m.chat.ScrollDown()
		return m, nil
	case key.Matches(k, m.keys.Submit):
		if m.state == StateConnecting {
			return m, nil
		}
		return m.submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

// submit routes a line either to a local command or to the chat core. The
// core owns validation: empty and busy sends come back as notices.
func (m Model) submit(text string) (Model, tea.Cmd) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		m.input.Remember(trimmed)
		m.input.Clear()
		return m.runCommand(trimmed)
	}
	m.input.Remember(trimmed)
	if m.directPending {
		return m.rejectBusy()
	}
	return m, m.send(text)
}

// busy reports whether a streamed or direct reply is outstanding.
func (m Model) busy() bool {
	return m.directPending || m.deps.Chat.Busy()
}

func (m Model) rejectBusy() (Model, tea.Cmd) {
	m.toasts.Add(chat.BusyNotice, chat.SeverityWarning)
	m.layout()
	return m, nil
}

func (m Model) runCommand(line string) (Model, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.chat.AddSystemMessage(helpText())
		return m, nil
	case "/session":
		return m, m.sessionInfo()
	case "/health":
		return m, m.health()
	case "/reconnect":
		return m, m.probe()
	case "/new":
		if m.busy() {
			return m.rejectBusy()
		}
		m.state = StateConnecting
		m.status.SetConnection(chat.ConnConnecting)
		m.chat.AddSystemMessage("Starting a new session…")
		return m, m.bootstrap()
	case "/direct":
		if arg == "" {
			m.toasts.Add("Usage: /direct <message>", chat.SeverityWarning)
			m.layout()
			return m, nil
		}
		if m.busy() {
			return m.rejectBusy()
		}
		m.directPending = true
		m.chat.Append("", chat.SenderUser, arg)
		return m, m.direct(arg)
	case "/theme":
		if !style.SetTheme(arg) {
			m.toasts.Add("Themes: "+strings.Join(style.ThemeNames, ", "), chat.SeverityWarning)
			m.layout()
			return m, nil
		}
		m.status.RestyleBar()
		m.chat.AddSystemMessage("Theme set to " + arg + ".")
		return m, nil
	}
	m.toasts.Add("Unknown command "+name+". Try /help.", chat.SeverityWarning)
	m.layout()
	return m, nil
}

func (m Model) sessionText(v msg.SessionInfoResult) string {
	id := m.deps.Session.Identity()
	if v.Err != nil {
		return fmt.Sprintf("Session %s (%s, user %s). Backend lookup failed: %v", id.SessionID, id.Kind, id.UserID, v.Err)
	}
	return fmt.Sprintf("Session %s (%s, user %s), created %s.", v.SessionID, id.Kind, v.UserID, orDash(v.CreatedAt))
}

// -- commands --

func (m Model) bootstrap() tea.Cmd {
	boot, ctx := m.deps.Boot, m.ctx
	return func() tea.Msg {
		return msg.BootstrapDone{Identity: boot.Start(ctx)}
	}
}

func (m Model) send(text string) tea.Cmd {
	c, ctx := m.deps.Chat, m.ctx
	return func() tea.Msg {
		return msg.SendDone{Err: c.Send(ctx, text)}
	}
}

func (m Model) probe() tea.Cmd {
	boot, ctx := m.deps.Boot, m.ctx
	return func() tea.Msg {
		return msg.ProbeResult{OK: boot.TestConnection(ctx)}
	}
}

func (m Model) health() tea.Cmd {
	be, ctx := m.deps.Backend, m.ctx
	return func() tea.Msg {
		h, err := be.Health(ctx)
		if err != nil {
			return msg.HealthResult{Err: err}
		}
		return msg.HealthResult{Status: h.Status, Service: h.Service}
	}
}

func (m Model) sessionInfo() tea.Cmd {
	be, ctx := m.deps.Backend, m.ctx
	id := m.deps.Session.Identity()
	return func() tea.Msg {
		if id.Kind == chat.KindLocal {
			return msg.SessionInfoResult{SessionID: id.SessionID, UserID: id.UserID, Err: errLocalSession}
		}
		info, err := be.SessionInfo(ctx, id.SessionID, id.UserID)
		if err != nil {
			return msg.SessionInfoResult{Err: err}
		}
		return msg.SessionInfoResult{SessionID: info.SessionID, UserID: info.UserID, CreatedAt: info.CreatedAt}
	}
}

func (m Model) direct(text string) tea.Cmd {
	be, ctx := m.deps.Backend, m.ctx
	id := m.deps.Session.Identity()
	return func() tea.Msg {
		resp, err := be.Direct(ctx, client.ChatRequest{
			Message:     text,
			SessionID:   id.SessionID,
			UserID:      id.UserID,
			SessionType: string(id.Kind),
		})
		if err != nil {
			return msg.DirectResult{Err: err}
		}
		return msg.DirectResult{Response: resp.Response}
	}
}

func (m Model) copyLastReply() tea.Cmd {
	text := m.chat.LastBotReply()
	cp := m.deps.Copy
	return func() tea.Msg {
		if text == "" {
			return msg.CopyResult{Err: errNoReply}
		}
		if err := cp(text); err != nil {
			return msg.CopyResult{Err: err}
		}
		return msg.CopyResult{Chars: len([]rune(text))}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func helpText() string {
	return `Commands:
  /help             Show this help
  /session          Show the current session
  /health           Check the backend
  /reconnect        Probe the connection again
  /new              Start a new session
  /direct <text>    Ask without streaming
  /theme <name>     Switch colors (dark, light, catppuccin)
  /quit             Exit

Keys:
  Enter             Send
  Esc               Stop the current reply
  Ctrl+Y            Copy the last reply
  PgUp/PgDn         Scroll
  Up/Down           Input history
  Tab               Complete a command
  F1                Help
  Ctrl+C            Clear input / quit`
}
