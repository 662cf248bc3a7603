package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/markdown"
	"github.com/miosa/lingo-tui/style"
)

// ChatMessage is a single entry in the transcript.
type ChatMessage struct {
	ID        string
	Sender    chat.Sender
	Content   string
	Timestamp time.Time
}

// ChatModel is a scrollable viewport over the transcript. Entries are
// addressed by id so a streaming reply can be rewritten in place.
type ChatModel struct {
	vp       viewport.Model
	sp       spinner.Model
	messages []ChatMessage
	index    map[string]int
	typing   bool
	wrap     int
	width    int
	height   int
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.SpinnerStyle
	m := ChatModel{
		vp:     vp,
		sp:     sp,
		index:  make(map[string]int),
		width:  width,
		height: height,
	}
	m.refresh()
	return m
}

// SetWrap caps the text width; 0 follows the viewport width.
func (m *ChatModel) SetWrap(cols int) {
	m.wrap = cols
	m.refresh()
}

// Append adds an entry. An id that already exists is treated as an update.
func (m *ChatModel) Append(id string, sender chat.Sender, content string) {
	if i, ok := m.index[id]; ok && id != "" {
		m.messages[i].Content = content
		m.refresh()
		return
	}
	if id != "" {
		m.index[id] = len(m.messages)
	}
	m.messages = append(m.messages, ChatMessage{
		ID:        id,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	})
	m.refresh()
}

// Replace rewrites entry id and reports whether it exists.
func (m *ChatModel) Replace(id, content string) bool {
	i, ok := m.index[id]
	if !ok {
		return false
	}
	m.messages[i].Content = content
	m.refresh()
	return true
}

// AddSystemMessage appends a dimmed local line that is never sent anywhere.
func (m *ChatModel) AddSystemMessage(text string) {
	m.Append("", chat.SenderSystem, text)
}

// SetTyping shows or hides the typing indicator. The returned command keeps
// the spinner animating.
func (m *ChatModel) SetTyping(on bool) tea.Cmd {
	if m.typing == on {
		return nil
	}
	m.typing = on
	m.refresh()
	if on {
		return m.sp.Tick
	}
	return nil
}

func (m ChatModel) Typing() bool { return m.typing }

// LastBotReply returns the newest non-empty assistant entry.
func (m ChatModel) LastBotReply() string {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Sender == chat.SenderBot && strings.TrimSpace(m.messages[i].Content) != "" {
			return m.messages[i].Content
		}
	}
	return ""
}

func (m ChatModel) Messages() []ChatMessage {
	return append([]ChatMessage(nil), m.messages...)
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

func (m *ChatModel) ScrollUp()   { m.vp.HalfViewUp() }
func (m *ChatModel) ScrollDown() { m.vp.HalfViewDown() }

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update drives the spinner and forwards the rest to the viewport.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(tick)
		m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

// refresh re-renders all messages. It follows the bottom only if the user
// had not scrolled away.
func (m *ChatModel) refresh() {
	atBottom := m.vp.AtBottom() || m.vp.TotalLineCount() <= m.vp.Height
	m.vp.SetContent(m.renderAll())
	if atBottom {
		m.vp.GotoBottom()
	}
}

func (m *ChatModel) textWidth() int {
	w := m.width - 2
	if m.wrap > 0 && m.wrap < w {
		w = m.wrap
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *ChatModel) renderAll() string {
	if len(m.messages) == 0 && !m.typing {
		return style.Faint.Render("  Say hello in English to start practising. /help lists commands.")
	}

	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg))
	}
	if m.typing {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.sp.View() + style.Faint.Render(" typing…"))
	}
	return sb.String()
}

func (m *ChatModel) renderMessage(msg ChatMessage) string {
	w := m.textWidth()
	switch msg.Sender {
	case chat.SenderUser:
		return style.UserLabel.Render("❯ You") + "\n" + wordwrap.String(msg.Content, w)
	case chat.SenderBot:
		body := msg.Content
		if body == "" {
			body = style.Faint.Render("…")
		} else {
			body = markdown.Render(body, w)
		}
		return style.BotLabel.Render("◆ Tutor") + "\n" + body
	default:
		return style.SystemText.Render(wordwrap.String(msg.Content, w))
	}
}
