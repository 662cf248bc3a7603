package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/miosa/lingo-tui/client"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type noticeRec struct {
	text     string
	severity Severity
}

type message struct {
	id      string
	sender  Sender
	content string
}

// recorderUI keeps the visible state the orchestrator produced.
type recorderUI struct {
	mu          sync.Mutex
	seq         int
	messages    []*message
	typing      bool
	sendEnabled bool
	cleared     int
	conn        ConnState
	notices     []noticeRec
	total       int
	percent     int
}

func newRecorderUI() *recorderUI {
	return &recorderUI{sendEnabled: true}
}

func (u *recorderUI) AppendMessage(content string, sender Sender, id string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if id == "" {
		u.seq++
		id = fmt.Sprintf("m%d", u.seq)
	}
	u.messages = append(u.messages, &message{id: id, sender: sender, content: content})
	return id
}

func (u *recorderUI) UpdateMessage(id, content string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, m := range u.messages {
		if m.id == id {
			m.content = content
		}
	}
}

func (u *recorderUI) SetTyping(visible bool) {
	u.mu.Lock()
	u.typing = visible
	u.mu.Unlock()
}

func (u *recorderUI) Notify(text string, severity Severity) {
	u.mu.Lock()
	u.notices = append(u.notices, noticeRec{text: text, severity: severity})
	u.mu.Unlock()
}

func (u *recorderUI) SetConnectionStatus(state ConnState) {
	u.mu.Lock()
	u.conn = state
	u.mu.Unlock()
}

func (u *recorderUI) ClearInput() {
	u.mu.Lock()
	u.cleared++
	u.mu.Unlock()
}

func (u *recorderUI) SetSendEnabled(enabled bool) {
	u.mu.Lock()
	u.sendEnabled = enabled
	u.mu.Unlock()
}

func (u *recorderUI) SetProgress(total, percent int) {
	u.mu.Lock()
	u.total, u.percent = total, percent
	u.mu.Unlock()
}

func (u *recorderUI) transcript() []message {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]message, 0, len(u.messages))
	for _, m := range u.messages {
		out = append(out, *m)
	}
	return out
}

func (u *recorderUI) lastBy(sender Sender) string {
	msgs := u.transcript()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].sender == sender {
			return msgs[i].content
		}
	}
	return ""
}

func (u *recorderUI) noticeList() []noticeRec {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]noticeRec(nil), u.notices...)
}

func (u *recorderUI) snapshot() (typing, sendEnabled bool, conn ConnState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.typing, u.sendEnabled, u.conn
}

// fakeBackend answers OpenStream with open, counting calls.
type fakeBackend struct {
	mu       sync.Mutex
	calls    int
	requests []client.ChatRequest
	open     func(ctx context.Context, n int) (io.ReadCloser, error)
}

func (b *fakeBackend) OpenStream(ctx context.Context, req client.ChatRequest) (io.ReadCloser, error) {
	b.mu.Lock()
	b.calls++
	n := b.calls
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	return b.open(ctx, n)
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func sse(payloads ...string) io.ReadCloser {
	var sb strings.Builder
	for _, p := range payloads {
		sb.WriteString("data: ")
		sb.WriteString(p)
		sb.WriteString("\n\n")
	}
	return io.NopCloser(strings.NewReader(sb.String()))
}

// heldBody yields head and then blocks until ctx is cancelled.
type heldBody struct {
	ctx  context.Context
	head *strings.Reader
}

func holdAfter(ctx context.Context, payloads ...string) *heldBody {
	var sb strings.Builder
	for _, p := range payloads {
		sb.WriteString("data: " + p + "\n")
	}
	return &heldBody{ctx: ctx, head: strings.NewReader(sb.String())}
}

func (h *heldBody) Read(p []byte) (int, error) {
	if h.head.Len() > 0 {
		return h.head.Read(p)
	}
	<-h.ctx.Done()
	return 0, h.ctx.Err()
}

func (h *heldBody) Close() error { return nil }

// fakeScheduler queues retries so tests can fire them one at a time.
type fakeScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	queue  []*scheduled
}

type scheduled struct {
	fn      func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) schedule(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &scheduled{fn: fn}
	s.delays = append(s.delays, d)
	s.queue = append(s.queue, job)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if job.fired || job.stopped {
			return false
		}
		job.stopped = true
		return true
	}
}

// fire runs the oldest queued retry and reports whether there was one.
func (s *fakeScheduler) fire() bool {
	s.mu.Lock()
	var job *scheduled
	for len(s.queue) > 0 {
		job, s.queue = s.queue[0], s.queue[1:]
		if !job.stopped {
			break
		}
		job = nil
	}
	if job != nil {
		job.fired = true
	}
	s.mu.Unlock()
	if job == nil {
		return false
	}
	job.fn()
	return true
}

func (s *fakeScheduler) observed() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
