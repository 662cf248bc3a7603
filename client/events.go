package client

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// EventKind names a stream event variant.
type EventKind string

const (
	KindSessionUpdate EventKind = "session_update"
	KindThinking      EventKind = "thinking"
	KindMessage       EventKind = "message"
	KindChunk         EventKind = "chunk"
	KindComplete      EventKind = "complete"
	KindError         EventKind = "error"
)

// Event is one parsed record of the chat stream. The set of implementations
// is closed: SessionUpdateEvent, ThinkingEvent, ChunkEvent, CompleteEvent,
// ErrorEvent and UnknownEvent.
type Event interface {
	Kind() EventKind
	isEvent()
}

// SessionUpdateEvent replaces the session identity mid-stream.
type SessionUpdateEvent struct {
	SessionID string
	UserID    string
}

// ThinkingEvent carries a transient preview of what the assistant is doing.
type ThinkingEvent struct {
	Text string
}

// ChunkEvent carries a piece of the reply. Kind is "message" or "chunk".
type ChunkEvent struct {
	Type EventKind
	Text string
}

// CompleteEvent ends the reply. FullResponse, when set, supersedes the
// accumulated chunks. WordCount is nil when the backend sent no count.
type CompleteEvent struct {
	Text         string
	FullResponse string
	EnglishWords []string
	WordCount    *int
}

// ErrorEvent reports a backend-side failure inside an otherwise healthy stream.
type ErrorEvent struct {
	Message      string
	FullResponse string
}

// UnknownEvent is any record whose type this client does not handle.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (SessionUpdateEvent) Kind() EventKind { return KindSessionUpdate }
func (ThinkingEvent) Kind() EventKind      { return KindThinking }
func (e ChunkEvent) Kind() EventKind       { return e.Type }
func (CompleteEvent) Kind() EventKind      { return KindComplete }
func (ErrorEvent) Kind() EventKind         { return KindError }
func (e UnknownEvent) Kind() EventKind     { return EventKind(e.Type) }

func (SessionUpdateEvent) isEvent() {}
func (ThinkingEvent) isEvent()      {}
func (ChunkEvent) isEvent()         {}
func (CompleteEvent) isEvent()      {}
func (ErrorEvent) isEvent()         {}
func (UnknownEvent) isEvent()       {}

// wireEvent is the union of all fields the backend may put in a record.
type wireEvent struct {
	Type         string   `json:"type"`
	EventType    string   `json:"event_type"`
	Text         string   `json:"text"`
	FullResponse string   `json:"full_response"`
	EnglishWords []string `json:"english_words"`
	WordCount    *int     `json:"word_count"`
	Error        string   `json:"error"`
	SessionID    string   `json:"session_id"`
	UserID       string   `json:"user_id"`
}

// ParseEvent decodes one JSON record. The discriminator is "type", falling
// back to "event_type". Records with an unrecognized or missing
// discriminator decode to UnknownEvent rather than an error.
func ParseEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "parse event")
	}
	kind := w.Type
	if kind == "" {
		kind = w.EventType
	}

	switch EventKind(kind) {
	case KindSessionUpdate:
		return SessionUpdateEvent{SessionID: w.SessionID, UserID: w.UserID}, nil
	case KindThinking:
		return ThinkingEvent{Text: w.Text}, nil
	case KindMessage, KindChunk:
		return ChunkEvent{Type: EventKind(kind), Text: w.Text}, nil
	case KindComplete:
		return CompleteEvent{
			Text:         w.Text,
			FullResponse: w.FullResponse,
			EnglishWords: w.EnglishWords,
			WordCount:    w.WordCount,
		}, nil
	case KindError:
		return ErrorEvent{Message: w.Error, FullResponse: w.FullResponse}, nil
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return UnknownEvent{Type: kind, Raw: raw}, nil
}
