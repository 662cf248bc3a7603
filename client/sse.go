package client

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	dataPrefix = "data: "

	// maxLineSize bounds a single stream line; longer lines abort the stream.
	maxLineSize = 1024 * 1024
)

// ReadStream consumes a chat stream body and calls handle for every parsed
// event, strictly in arrival order. Only "data: " lines are considered; "id:",
// "event:", comments and blank separators are skipped. A record that fails to
// parse is logged and dropped without ending the stream.
//
// Lines are split on raw bytes before any decoding, so a multi-byte character
// that straddles two network reads stays intact.
//
// ReadStream always closes body. It returns nil when the body is exhausted,
// ctx.Err() when the stream was cut by cancellation, and the read error
// otherwise.
func ReadStream(ctx context.Context, body io.ReadCloser, log zerolog.Logger, handle func(Event)) error {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, dataPrefix)
		if strings.TrimSpace(payload) == "" {
			continue
		}

		ev, err := ParseEvent([]byte(payload))
		if err != nil {
			log.Warn().Err(err).Str("payload", truncate(payload, 200)).Msg("skipping malformed stream event")
			continue
		}
		handle(ev)
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(err, "read stream")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
