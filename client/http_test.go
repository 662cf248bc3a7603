package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/start_session", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"session_id":"s1","user_id":"u1","session_type":"adk"}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL).StartSession(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "adk", resp.SessionType)
}

func TestStartSession_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"runner down"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).StartSession(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, err.Error(), "runner down")
}

func TestOpenStream_SendsRequestBody(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"type\":\"chunk\",\"text\":\"hi\"}\n")
	}))
	defer srv.Close()

	body, err := New(srv.URL).OpenStream(context.Background(), ChatRequest{
		Message: "hello", SessionID: "s1", UserID: "u1", SessionType: "adk",
	})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text":"hi"`)
	assert.Equal(t, ChatRequest{Message: "hello", SessionID: "s1", UserID: "u1", SessionType: "adk"}, got)
}

func TestOpenStream_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	body, err := New(srv.URL).OpenStream(context.Background(), ChatRequest{Message: "x"})
	require.Error(t, err)
	assert.Nil(t, body)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Probe(context.Background()))

	status.Store(http.StatusBadGateway)
	require.Error(t, c.Probe(context.Background()))
}

func TestSessionInfoAndDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session/s1":
			assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
			_, _ = io.WriteString(w, `{"success":true,"session_id":"s1","user_id":"u1","created_at":"2026-01-02T03:04:05"}`)
		case "/api/chat/direct":
			_, _ = io.WriteString(w, `{"success":true,"response":"Hello!","session_id":"s1","user_id":"u1"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	info, err := c.SessionInfo(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05", info.CreatedAt)

	direct, err := c.Direct(context.Background(), ChatRequest{Message: "hi", SessionID: "s1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", direct.Response)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"status":"healthy","service":"english_learning"}`)
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}
