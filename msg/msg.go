// Package msg defines the tea.Msg types dispatched within the lingo TUI.
// It imports only the chat vocabulary types, never app or model, to stay
// free of import cycles.
package msg

import "github.com/miosa/lingo-tui/chat"

// -- Transcript (posted by app.Bridge on behalf of the chat core) --

// AppendMessage adds a transcript entry with a caller-chosen id.
type AppendMessage struct {
	ID      string
	Sender  chat.Sender
	Content string
}

// UpdateMessage replaces the content of entry ID.
type UpdateMessage struct {
	ID      string
	Content string
}

// Typing toggles the typing indicator under the transcript.
type Typing struct {
	Visible bool
}

// Notify raises a toast.
type Notify struct {
	Text     string
	Severity chat.Severity
}

// ConnStatus updates the connection dot.
type ConnStatus struct {
	State chat.ConnState
}

// ClearInput empties the input field once a send is accepted.
type ClearInput struct{}

// SendEnabled toggles the send affordance.
type SendEnabled struct {
	Enabled bool
}

// Progress carries the learning counter.
type Progress struct {
	TotalWords int
	Percent    int
}

// -- Command results --

// BootstrapDone when a session identity is in place.
type BootstrapDone struct {
	Identity chat.Identity
}

// SendDone when an exchange finished, successfully or not. Err is already
// reported to the user; it is kept for logging.
type SendDone struct {
	Err error
}

// ProbeResult from /reconnect.
type ProbeResult struct {
	OK bool
}

// HealthResult from GET /health.
type HealthResult struct {
	Status  string
	Service string
	Err     error
}

// SessionInfoResult from GET /api/session/{id}.
type SessionInfoResult struct {
	SessionID string
	UserID    string
	CreatedAt string
	Err       error
}

// DirectResult from POST /api/chat/direct.
type DirectResult struct {
	Response string
	Err      error
}

// CopyResult after Ctrl+Y.
type CopyResult struct {
	Chars int
	Err   error
}

// -- UI events --

// TickMsg for periodic timer updates.
type TickMsg struct{}
