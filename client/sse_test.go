package client

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func collect(t *testing.T, ctx context.Context, r io.Reader) ([]Event, *trackingBody, error) {
	t.Helper()
	body := &trackingBody{Reader: r}
	var got []Event
	err := ReadStream(ctx, body, zerolog.Nop(), func(ev Event) {
		got = append(got, ev)
	})
	return got, body, err
}

func TestReadStream_MatchesIndependentParse(t *testing.T) {
	payloads := []string{
		`{"type":"session_update","session_id":"S2","user_id":"U2"}`,
		`{"type":"thinking","text":"looking up words"}`,
		`{"event_type":"chunk","text":"Hi"}`,
		`{"type":"message","text":" there"}`,
		`{"event_type":"complete","full_response":"Hi there","english_words":["hello"],"word_count":1}`,
	}

	var sb strings.Builder
	var want []Event
	for _, p := range payloads {
		sb.WriteString("data: " + p + "\n")
		ev, err := ParseEvent([]byte(p))
		require.NoError(t, err)
		want = append(want, ev)
	}

	got, body, err := collect(t, context.Background(), strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.True(t, body.closed)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReadStream_MultiByteAcrossReads(t *testing.T) {
	stream := "data: {\"type\":\"chunk\",\"text\":\"héllo 你好 👋\"}\n" +
		"data: {\"type\":\"chunk\",\"text\":\"¿qué tal?\"}\n"

	// One byte per Read splits every multi-byte rune across reads.
	got, _, err := collect(t, context.Background(), iotest.OneByteReader(strings.NewReader(stream)))
	require.NoError(t, err)

	want := []Event{
		ChunkEvent{Type: KindChunk, Text: "héllo 你好 👋"},
		ChunkEvent{Type: KindChunk, Text: "¿qué tal?"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReadStream_SkipsMalformedAndFramingLines(t *testing.T) {
	stream := strings.Join([]string{
		"id: 1",
		"event: message",
		`data: {"event_type":"chunk","text":"a"}`,
		"",
		": keepalive",
		"data: {not json",
		"data:    ",
		`data: {"event_type":"chunk","text":"b"}` + "\r",
		"",
	}, "\n")

	got, _, err := collect(t, context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ChunkEvent{Type: KindChunk, Text: "a"}, got[0])
	assert.Equal(t, ChunkEvent{Type: KindChunk, Text: "b"}, got[1])
}

func TestReadStream_TrailingLineWithoutNewline(t *testing.T) {
	got, _, err := collect(t, context.Background(), strings.NewReader(`data: {"type":"chunk","text":"tail"}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tail", got[0].(ChunkEvent).Text)
}

func TestReadStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, body, err := collect(t, ctx, strings.NewReader("data: {\"type\":\"chunk\",\"text\":\"x\"}\n"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.True(t, body.closed)
}

func TestReadStream_ReadErrorClosesBody(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("data: {\"type\":\"chunk\",\"text\":\"x\"}\n"),
		iotest.ErrReader(io.ErrUnexpectedEOF),
	)
	got, body, err := collect(t, context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Len(t, got, 1)
	assert.True(t, body.closed)
}

func TestReadStream_LineTooLong(t *testing.T) {
	long := "data: {\"type\":\"chunk\",\"text\":\"" + strings.Repeat("a", maxLineSize) + "\"}\n"
	_, body, err := collect(t, context.Background(), strings.NewReader(long))
	require.Error(t, err)
	assert.True(t, body.closed)
}
