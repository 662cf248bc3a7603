package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miosa/lingo-tui/client"
)

// MaxRetries caps consecutive failed attempts. The failure that reaches it is
// not retried.
const MaxRetries = 3

// Kind is where the session lives.
type Kind string

const (
	KindADK    Kind = "adk"
	KindSimple Kind = "simple"
	KindLocal  Kind = "local"
)

// Identity is the session identity sent with every chat request.
type Identity struct {
	SessionID string
	UserID    string
	Kind      Kind
}

// Session is the single shared piece of state: identity plus retry
// bookkeeping. All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         Identity
	retryCount int
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) SetIdentity(id Identity) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

func (s *Session) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}

func (s *Session) incRetries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retryCount < MaxRetries {
		s.retryCount++
	}
	return s.retryCount
}

func (s *Session) resetRetries() {
	s.mu.Lock()
	s.retryCount = 0
	s.mu.Unlock()
}

// SessionStarter is the slice of the backend used by Bootstrapper.
type SessionStarter interface {
	StartSession(ctx context.Context) (*client.SessionStartResponse, error)
	Probe(ctx context.Context) error
}

// Bootstrapper acquires the session identity and probes connectivity.
type Bootstrapper struct {
	backend SessionStarter
	session *Session
	ui      UI
	log     zerolog.Logger
	now     func() time.Time
}

func NewBootstrapper(backend SessionStarter, session *Session, ui UI, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		backend: backend,
		session: session,
		ui:      ui,
		log:     log,
		now:     time.Now,
	}
}

// Start creates a backend session. If the backend cannot be reached or
// declines, a local identity is synthesized instead, so the returned identity
// always has a non-empty session id. Either way the connection is reported as
// connected: local mode is usable.
func (b *Bootstrapper) Start(ctx context.Context) Identity {
	resp, err := b.backend.StartSession(ctx)
	if err == nil && resp.Success && resp.SessionID != "" {
		id := Identity{
			SessionID: resp.SessionID,
			UserID:    resp.UserID,
			Kind:      Kind(resp.SessionType),
		}
		if id.Kind == "" {
			id.Kind = KindADK
		}
		if id.UserID == "" {
			id.UserID = "user_" + shortHex()
		}
		b.session.SetIdentity(id)
		b.ui.SetConnectionStatus(ConnConnected)
		if resp.Warning != "" {
			b.ui.Notify(resp.Warning, SeverityWarning)
		}
		b.log.Info().Str("session_id", id.SessionID).Str("kind", string(id.Kind)).Msg("session started")
		return id
	}

	if err == nil {
		reason := resp.Error
		if reason == "" {
			reason = "backend returned no session"
		}
		err = errors.Errorf("start session: %s", reason)
	}
	id := b.localIdentity()
	b.session.SetIdentity(id)
	b.ui.SetConnectionStatus(ConnConnected)
	b.ui.Notify("Backend session unavailable, chatting in local mode.", SeverityInfo)
	b.log.Warn().Err(err).Str("session_id", id.SessionID).Msg("falling back to local session")
	return id
}

// TestConnection probes the session endpoint and reports the result as the
// connection state. The session identity is left untouched.
func (b *Bootstrapper) TestConnection(ctx context.Context) bool {
	if err := b.backend.Probe(ctx); err != nil {
		b.log.Debug().Err(err).Msg("connection probe failed")
		b.ui.SetConnectionStatus(ConnDisconnected)
		return false
	}
	b.ui.SetConnectionStatus(ConnConnected)
	return true
}

func (b *Bootstrapper) localIdentity() Identity {
	return Identity{
		SessionID: fmt.Sprintf("local_%d_%s", b.now().Unix(), shortHex()),
		UserID:    "user_" + shortHex(),
		Kind:      KindLocal,
	}
}

func shortHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
