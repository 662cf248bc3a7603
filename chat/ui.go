// Package chat holds the client-side conversation core: the session identity,
// session bootstrap, the send/stream orchestrator and the learning-progress
// counter. It renders nothing itself; every visible effect goes through UI.
package chat

// Sender identifies who a transcript entry belongs to.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// Severity classifies a notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// ConnState is the connection indicator shown to the user.
type ConnState string

const (
	ConnConnecting   ConnState = "connecting"
	ConnConnected    ConnState = "connected"
	ConnDisconnected ConnState = "disconnected"
)

// UI is the presentation boundary. Implementations must be safe to call from
// any goroutine; calls made by one exchange arrive in the order they are made.
type UI interface {
	// AppendMessage adds a transcript entry and returns its id. An empty id
	// asks the implementation to allocate one.
	AppendMessage(content string, sender Sender, id string) string
	// UpdateMessage replaces the content of an existing entry.
	UpdateMessage(id, content string)
	SetTyping(visible bool)
	Notify(message string, severity Severity)
	SetConnectionStatus(state ConnState)

	ClearInput()
	SetSendEnabled(enabled bool)
	SetProgress(totalWords, percent int)
}
