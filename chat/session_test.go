package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/lingo-tui/client"
)

type fakeStarter struct {
	resp     *client.SessionStartResponse
	err      error
	probeErr error
}

func (f *fakeStarter) StartSession(context.Context) (*client.SessionStartResponse, error) {
	return f.resp, f.err
}

func (f *fakeStarter) Probe(context.Context) error { return f.probeErr }

func TestStart_Success(t *testing.T) {
	ui := newRecorderUI()
	s := NewSession()
	b := NewBootstrapper(&fakeStarter{resp: &client.SessionStartResponse{
		Success: true, SessionID: "sess-1", UserID: "u-1", SessionType: "adk",
	}}, s, ui, zerolog.Nop())

	id := b.Start(context.Background())

	assert.Equal(t, Identity{SessionID: "sess-1", UserID: "u-1", Kind: KindADK}, id)
	assert.Equal(t, id, s.Identity())
	_, _, conn := ui.snapshot()
	assert.Equal(t, ConnConnected, conn)
	assert.Empty(t, ui.noticeList())
}

func TestStart_SuccessDefaults(t *testing.T) {
	ui := newRecorderUI()
	b := NewBootstrapper(&fakeStarter{resp: &client.SessionStartResponse{
		Success: true, SessionID: "sess-1", Warning: "ADK unavailable, using simple mode",
	}}, NewSession(), ui, zerolog.Nop())

	id := b.Start(context.Background())

	assert.Equal(t, KindADK, id.Kind)
	assert.True(t, strings.HasPrefix(id.UserID, "user_"))
	assert.Equal(t, []noticeRec{{text: "ADK unavailable, using simple mode", severity: SeverityWarning}}, ui.noticeList())
}

func TestStart_LocalFallback(t *testing.T) {
	tests := []struct {
		name    string
		starter *fakeStarter
	}{
		{"network error", &fakeStarter{err: errors.New("dial tcp: connection refused")}},
		{"unsuccessful", &fakeStarter{resp: &client.SessionStartResponse{Success: false, Error: "runner down"}}},
		{"empty id", &fakeStarter{resp: &client.SessionStartResponse{Success: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := newRecorderUI()
			s := NewSession()
			b := NewBootstrapper(tt.starter, s, ui, zerolog.Nop())
			b.now = func() time.Time { return time.Unix(1700000000, 0) }

			id := b.Start(context.Background())

			assert.Equal(t, KindLocal, id.Kind)
			assert.Regexp(t, `^local_1700000000_[0-9a-f]{8}$`, id.SessionID)
			assert.Regexp(t, `^user_[0-9a-f]{8}$`, id.UserID)
			assert.Equal(t, id, s.Identity())

			_, _, conn := ui.snapshot()
			assert.Equal(t, ConnConnected, conn)
			notices := ui.noticeList()
			require.Len(t, notices, 1)
			assert.Equal(t, SeverityInfo, notices[0].severity)
		})
	}
}

func TestLocalIdentityIsUnique(t *testing.T) {
	b := NewBootstrapper(&fakeStarter{}, NewSession(), newRecorderUI(), zerolog.Nop())
	a, c := b.localIdentity(), b.localIdentity()
	assert.NotEqual(t, a.SessionID, c.SessionID)
}

func TestTestConnection(t *testing.T) {
	ui := newRecorderUI()
	s := NewSession()
	s.SetIdentity(Identity{SessionID: "keep", UserID: "me", Kind: KindSimple})
	starter := &fakeStarter{}
	b := NewBootstrapper(starter, s, ui, zerolog.Nop())

	assert.True(t, b.TestConnection(context.Background()))
	_, _, conn := ui.snapshot()
	assert.Equal(t, ConnConnected, conn)

	starter.probeErr = errors.New("502")
	assert.False(t, b.TestConnection(context.Background()))
	_, _, conn = ui.snapshot()
	assert.Equal(t, ConnDisconnected, conn)

	assert.Equal(t, Identity{SessionID: "keep", UserID: "me", Kind: KindSimple}, s.Identity())
}
