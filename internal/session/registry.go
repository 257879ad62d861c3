package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ErrInvalidID is returned when a caller supplies an empty user or session id.
var ErrInvalidID = errors.New("user id and session id must not be empty")

// ChatFactory constructs the runtime conversation handle backing a new
// session. The registry never holds its lock across this call.
type ChatFactory func(ctx context.Context) (*genai.Chat, error)

// Registry maps (user id, session id) pairs to live sessions. Sessions are
// created lazily on first contact and live until deleted or the process
// exits; there is no persistence and no eviction.
type Registry struct {
	factory ChatFactory

	mu       sync.RWMutex
	sessions map[string]*Session
	pending  map[string]*entry
}

// entry serializes creation for a single pair. The once guarantees exactly
// one factory call per pair even under concurrent first contact.
type entry struct {
	once sync.Once
	sess *Session
	err  error
}

// NewRegistry creates an empty registry backed by factory.
func NewRegistry(factory ChatFactory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Session),
		pending:  make(map[string]*entry),
	}
}

func key(userID, sessionID string) string {
	return userID + "/" + sessionID
}

// GetOrCreate returns the session for the pair, constructing it on first
// contact. Repeated calls with the same pair return the same *Session. If the
// factory fails, the error is surfaced and the pending entry is discarded so
// a later call can retry.
func (r *Registry) GetOrCreate(ctx context.Context, userID, sessionID string) (*Session, error) {
	if userID == "" || sessionID == "" {
		return nil, fmt.Errorf("session: get or create: %w", ErrInvalidID)
	}

	k := key(userID, sessionID)

	r.mu.RLock()
	sess, ok := r.sessions[k]
	r.mu.RUnlock()
	if ok {
		return sess, nil
	}

	r.mu.Lock()
	if sess, ok := r.sessions[k]; ok {
		r.mu.Unlock()
		return sess, nil
	}
	e, ok := r.pending[k]
	if !ok {
		e = &entry{}
		r.pending[k] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		chat, err := r.factory(ctx)
		if err != nil {
			e.err = fmt.Errorf("session: create %s: %w", k, err)
			return
		}
		e.sess = &Session{
			UserID:    userID,
			ID:        sessionID,
			CreatedAt: time.Now(),
			chat:      chat,
		}

		r.mu.Lock()
		r.sessions[k] = e.sess
		delete(r.pending, k)
		r.mu.Unlock()
	})

	if e.err != nil {
		r.mu.Lock()
		if r.pending[k] == e {
			delete(r.pending, k)
		}
		r.mu.Unlock()
		return nil, e.err
	}

	return e.sess, nil
}

// Sessions returns the session ids held for userID, sorted.
func (r *Registry) Sessions(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, sess := range r.sessions {
		if sess.UserID == userID {
			ids = append(ids, sess.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Delete removes the session for the pair. Reports whether a live session
// was removed.
func (r *Registry) Delete(userID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(userID, sessionID)
	if _, ok := r.sessions[k]; !ok {
		return false
	}
	delete(r.sessions, k)
	return true
}

// Len returns the total number of live sessions across all users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// NewSessionID generates an id for callers that did not supply one.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}
