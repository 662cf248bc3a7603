package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/msg"
)

// Poster is the part of *tea.Program the bridge needs.
type Poster interface {
	Send(tea.Msg)
}

// Bridge implements chat.UI by posting messages into the tea program. It is
// called from command goroutines, never from Update: Program.Send blocks
// until the event loop takes the message. Messages posted before Attach are
// queued and flushed in order.
type Bridge struct {
	mu      sync.Mutex
	program Poster
	queue   []tea.Msg
}

var _ chat.UI = (*Bridge)(nil)

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach connects the bridge to a running program.
func (b *Bridge) Attach(p Poster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
	for _, m := range b.queue {
		p.Send(m)
	}
	b.queue = nil
}

// post holds the lock while sending so messages from different goroutines
// cannot overtake a flush.
func (b *Bridge) post(m tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program == nil {
		b.queue = append(b.queue, m)
		return
	}
	b.program.Send(m)
}

func (b *Bridge) AppendMessage(content string, sender chat.Sender, id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	b.post(msg.AppendMessage{ID: id, Sender: sender, Content: content})
	return id
}

func (b *Bridge) UpdateMessage(id, content string) {
	b.post(msg.UpdateMessage{ID: id, Content: content})
}

func (b *Bridge) SetTyping(visible bool) {
	b.post(msg.Typing{Visible: visible})
}

func (b *Bridge) Notify(message string, severity chat.Severity) {
	b.post(msg.Notify{Text: message, Severity: severity})
}

func (b *Bridge) SetConnectionStatus(state chat.ConnState) {
	b.post(msg.ConnStatus{State: state})
}

func (b *Bridge) ClearInput() {
	b.post(msg.ClearInput{})
}

func (b *Bridge) SetSendEnabled(enabled bool) {
	b.post(msg.SendEnabled{Enabled: enabled})
}

func (b *Bridge) SetProgress(totalWords, percent int) {
	b.post(msg.Progress{TotalWords: totalWords, Percent: percent})
}
