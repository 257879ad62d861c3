package session

import (
	"sync"
	"time"

	"google.golang.org/genai"
)

// Session is a live conversation handle for one (user id, session id) pair.
// The conversation state itself is owned by the genai runtime through the
// chat handle; the session only pins it in memory for the process lifetime.
type Session struct {
	UserID    string
	ID        string
	CreatedAt time.Time

	chat *genai.Chat
	mu   sync.Mutex
}

// Turn runs fn with the session's chat handle while holding the turn lock.
// Concurrent turns on the same session are serialized; turns on different
// sessions do not contend.
func (s *Session) Turn(fn func(chat *genai.Chat) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.chat)
}
