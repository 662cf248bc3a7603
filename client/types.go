package client

// SessionStartResponse from POST /api/start_session.
type SessionStartResponse struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	SessionType string `json:"session_type,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ChatRequest for POST /api/chat/stream and POST /api/chat/direct.
type ChatRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	SessionType string `json:"session_type"`
}

// DirectResponse from POST /api/chat/direct.
type DirectResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Error     string `json:"error,omitempty"`
}

// SessionInfoResponse from GET /api/session/:id.
type SessionInfoResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse from GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// ErrorResponse for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
