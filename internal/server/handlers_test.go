package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/celebchat/persona-agent/internal/agent"
	"github.com/celebchat/persona-agent/internal/model"
	"github.com/celebchat/persona-agent/internal/repository"
	"github.com/celebchat/persona-agent/internal/session"
)

// stubInvoker returns a fixed reply or error without touching any backend.
type stubInvoker struct {
	reply string
	err   error
}

func (s *stubInvoker) Send(ctx context.Context, sess *session.Session, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// fakeArchive keeps transcripts in a map, mirroring the Archive contract
// (Load returns nil, nil for unknown pairs).
type fakeArchive struct {
	mu          sync.Mutex
	transcripts map[string][]model.Content
	loadErr     error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{transcripts: make(map[string][]model.Content)}
}

func (f *fakeArchive) Save(ctx context.Context, userID, sessionID string, history []model.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts[userID+"/"+sessionID] = history
	return nil
}

func (f *fakeArchive) Load(ctx context.Context, userID, sessionID string) ([]model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.transcripts[userID+"/"+sessionID], nil
}

func (f *fakeArchive) Delete(ctx context.Context, userID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.transcripts, userID+"/"+sessionID)
	return nil
}

func newTestServer(t *testing.T, invoker Invoker) (*Server, *session.Registry) {
	t.Helper()
	return newTestServerWithArchive(t, invoker, nil)
}

func newTestServerWithArchive(t *testing.T, invoker Invoker, archive repository.Archive) (*Server, *session.Registry) {
	t.Helper()

	registry := session.NewRegistry(func(ctx context.Context) (*genai.Chat, error) {
		return nil, nil
	})

	srv, err := New(Options{PersonaName: "BradAgent"}, registry, invoker, archive, zerolog.Nop())
	require.NoError(t, err)

	return srv, registry
}

func postChat(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestChatSuccess(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "Well, hi there."})
	handler := srv.Handler()

	rec := postChat(t, handler, ChatRequest{Prompt: "hey brad", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ChatResponse](t, rec)
	assert.Equal(t, "Well, hi there.", resp.Response)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "success", resp.Status)
}

func TestChatGeneratesSessionID(t *testing.T) {
	srv, registry := newTestServer(t, &stubInvoker{reply: "ok"})
	handler := srv.Handler()

	rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ChatResponse](t, rec)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, []string{resp.SessionID}, registry.Sessions("alice"))
}

func TestChatEmptyPrompt(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	rec := postChat(t, srv.Handler(), ChatRequest{Prompt: "", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "prompt")
}

func TestChatMissingUserID(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	rec := postChat(t, srv.Handler(), ChatRequest{Prompt: "hi", SessionID: "s1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "user_id")
}

func TestChatInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatBackendFailure(t *testing.T) {
	invoker := &stubInvoker{err: fmt.Errorf("agent: send message: %w: connection refused", agent.ErrBackendUnavailable)}
	srv, registry := newTestServer(t, invoker)
	handler := srv.Handler()

	rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error", resp.Status)

	// The registry survives the failure: the same session keeps serving once
	// the backend recovers.
	assert.Equal(t, []string{"s1"}, registry.Sessions("alice"))

	invoker.err = nil
	invoker.reply = "back again"
	rec = postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "back again", decode[ChatResponse](t, rec).Response)
}

func TestHealthAlwaysHealthy(t *testing.T) {
	// Health must not depend on backend reachability.
	srv, _ := newTestServer(t, &stubInvoker{err: agent.ErrBackendUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "BradAgent", resp.Agent)
}

func TestInfo(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[InfoResponse](t, rec)
	assert.Equal(t, "Persona Agent API", resp.Message)
	assert.Equal(t, "/chat", resp.Endpoints["chat"])
	assert.Equal(t, "/sessions/{user_id}/{session_id}", resp.Endpoints["delete_session"])
	assert.Equal(t, "/sessions/{user_id}/{session_id}/transcript", resp.Endpoints["transcript"])
}

func TestSessionsUnknownUser(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsListsUserSessions(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})
	handler := srv.Handler()

	for _, id := range []string{"s2", "s1"} {
		rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice", SessionID: id})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "bob", SessionID: "s7"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/sessions/alice", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)

	require.Equal(t, http.StatusOK, getRec.Code)

	info := decode[SessionInfo](t, getRec)
	assert.Equal(t, "alice", info.UserID)
	assert.Equal(t, []string{"s1", "s2"}, info.ActiveSessions)
	assert.Equal(t, 2, info.TotalSessions)
}

func TestDeleteSession(t *testing.T) {
	srv, registry := newTestServer(t, &stubInvoker{reply: "ok"})
	handler := srv.Handler()

	rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/alice/s1", nil)
	delRec := httptest.NewRecorder()
	handler.ServeHTTP(delRec, req)

	require.Equal(t, http.StatusOK, delRec.Code)
	assert.Empty(t, registry.Sessions("alice"))

	// Deleting again is a not-found.
	delRec = httptest.NewRecorder()
	handler.ServeHTTP(delRec, httptest.NewRequest(http.MethodDelete, "/sessions/alice/s1", nil))
	assert.Equal(t, http.StatusNotFound, delRec.Code)
}

func TestTranscript(t *testing.T) {
	archive := newFakeArchive()
	history := []model.Content{
		{Role: "user", Parts: []model.Part{{Text: "hey brad"}}},
		{Role: "model", Parts: []model.Part{{Text: "Well, hi there."}}},
	}
	require.NoError(t, archive.Save(context.Background(), "alice", "s1", history))

	srv, _ := newTestServerWithArchive(t, &stubInvoker{reply: "ok"}, archive)

	req := httptest.NewRequest(http.MethodGet, "/sessions/alice/s1/transcript", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TranscriptResponse](t, rec)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, history, resp.History)
}

func TestTranscriptUnknownSession(t *testing.T) {
	srv, _ := newTestServerWithArchive(t, &stubInvoker{reply: "ok"}, newFakeArchive())

	req := httptest.NewRequest(http.MethodGet, "/sessions/alice/ghost/transcript", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptArchiveDisabled(t *testing.T) {
	srv, _ := newTestServer(t, &stubInvoker{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/sessions/alice/s1/transcript", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptLoadFailure(t *testing.T) {
	archive := newFakeArchive()
	archive.loadErr = fmt.Errorf("find transcript: connection refused")

	srv, _ := newTestServerWithArchive(t, &stubInvoker{reply: "ok"}, archive)

	req := httptest.NewRequest(http.MethodGet, "/sessions/alice/s1/transcript", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteSessionRemovesTranscript(t *testing.T) {
	archive := newFakeArchive()
	require.NoError(t, archive.Save(context.Background(), "alice", "s1",
		[]model.Content{{Role: "model", Parts: []model.Part{{Text: "hi"}}}}))

	srv, _ := newTestServerWithArchive(t, &stubInvoker{reply: "ok"}, archive)
	handler := srv.Handler()

	rec := postChat(t, handler, ChatRequest{Prompt: "hi", UserID: "alice", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	delRec := httptest.NewRecorder()
	handler.ServeHTTP(delRec, httptest.NewRequest(http.MethodDelete, "/sessions/alice/s1", nil))
	require.Equal(t, http.StatusOK, delRec.Code)

	history, err := archive.Load(context.Background(), "alice", "s1")
	require.NoError(t, err)
	assert.Nil(t, history)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrap: %w", session.ErrInvalidID)))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrap: %w", agent.ErrEmptyPrompt)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(agent.ErrBackendUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}
