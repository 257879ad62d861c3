package server

import "github.com/celebchat/persona-agent/internal/model"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Prompt    string `json:"prompt"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// SessionInfo is the reply to GET /sessions/{user_id}.
type SessionInfo struct {
	UserID         string   `json:"user_id"`
	ActiveSessions []string `json:"active_sessions"`
	TotalSessions  int      `json:"total_sessions"`
}

// TranscriptResponse is the reply to GET /sessions/{user_id}/{session_id}/transcript.
type TranscriptResponse struct {
	UserID    string          `json:"user_id"`
	SessionID string          `json:"session_id"`
	History   []model.Content `json:"history"`
}

// HealthResponse is the reply to GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Agent   string `json:"agent"`
	Service string `json:"service"`
}

// InfoResponse is the reply to GET /.
type InfoResponse struct {
	Message     string            `json:"message"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}
