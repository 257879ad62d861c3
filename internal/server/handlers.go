package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/celebchat/persona-agent/internal/agent"
	"github.com/celebchat/persona-agent/internal/session"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, InfoResponse{
		Message:     "Persona Agent API",
		Version:     version,
		Description: fmt.Sprintf("Chat with %s", s.options.PersonaName),
		Endpoints: map[string]string{
			"chat":           "/chat",
			"health":         "/health",
			"sessions":       "/sessions/{user_id}",
			"transcript":     "/sessions/{user_id}/{session_id}/transcript",
			"delete_session": "/sessions/{user_id}/{session_id}",
		},
	})
}

// handleHealth reports liveness only. It must succeed while the process is
// up, regardless of backend reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Agent:   s.options.PersonaName,
		Service: "running",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = session.NewSessionID()
	}

	sess, err := s.registry.GetOrCreate(r.Context(), req.UserID, req.SessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("session creation failed")
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	reply, err := s.invoker.Send(r.Context(), sess, req.Prompt)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user_id", req.UserID).
			Str("session_id", req.SessionID).
			Msg("turn failed")
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Status:    "success",
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	ids := s.registry.Sessions(userID)
	if len(ids) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no sessions for user %q", userID))
		return
	}

	s.writeJSON(w, http.StatusOK, SessionInfo{
		UserID:         userID,
		ActiveSessions: ids,
		TotalSessions:  len(ids),
	})
}

// handleTranscript serves the archived transcript for a pair. Transcripts
// exist only when the archive is configured and the session has completed at
// least one turn.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	sessionID := r.PathValue("session_id")

	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "transcript archive is not enabled")
		return
	}

	history, err := s.archive.Load(r.Context(), userID, sessionID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("session_id", sessionID).
			Msg("failed to load archived transcript")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no transcript for session %q of user %q", sessionID, userID))
		return
	}

	s.writeJSON(w, http.StatusOK, TranscriptResponse{
		UserID:    userID,
		SessionID: sessionID,
		History:   history,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	sessionID := r.PathValue("session_id")

	if !s.registry.Delete(userID, sessionID) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no session %q for user %q", sessionID, userID))
		return
	}

	if s.archive != nil {
		if err := s.archive.Delete(r.Context(), userID, sessionID); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID).
				Str("session_id", sessionID).
				Msg("failed to delete archived transcript")
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("session %q deleted for user %q", sessionID, userID),
		"status":  "success",
	})
}

// statusFor maps the error taxonomy to HTTP statuses: invalid input is the
// caller's fault, everything else is a backend failure.
func statusFor(err error) int {
	if errors.Is(err, session.ErrInvalidID) || errors.Is(err, agent.ErrEmptyPrompt) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:  msg,
		Status: "error",
	})
}
