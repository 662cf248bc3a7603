package telemetry

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"
)

type buffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisabled_IsUsable(t *testing.T) {
	p := Disabled()
	_, span := p.Tracer.Start(context.Background(), "x")
	span.End()
	c, err := p.Meter.Int64Counter("lingo.test")
	require.NoError(t, err)
	c.Add(context.Background(), 1)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestShutdown_FlushesAndCloses(t *testing.T) {
	traces, metrics := &buffer{}, &buffer{}
	p, err := initWith(resource.Empty(), traces, metrics, time.Hour)
	require.NoError(t, err)

	_, span := p.Tracer.Start(context.Background(), "chat.exchange")
	span.End()
	c, err := p.Meter.Int64Counter("lingo.exchanges")
	require.NoError(t, err)
	c.Add(context.Background(), 2)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, traces.String(), "chat.exchange")
	assert.Contains(t, metrics.String(), "lingo.exchanges")
	assert.True(t, traces.closed)
	assert.True(t, metrics.closed)
}
