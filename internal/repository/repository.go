package repository

import (
	"context"

	"github.com/celebchat/persona-agent/internal/model"
)

// Archive persists conversation transcripts for later inspection. It is an
// audit trail, not a session store: live sessions stay in memory and are
// never rehydrated from the archive.
type Archive interface {
	// Save persists the full transcript for a (user id, session id) pair.
	// Replaces any previously stored transcript for that pair.
	Save(ctx context.Context, userID, sessionID string, history []model.Content) error

	// Load retrieves the stored transcript for a pair.
	// Returns nil, nil if nothing was archived for it.
	Load(ctx context.Context, userID, sessionID string) ([]model.Content, error)

	// Delete removes the stored transcript for a pair.
	// Is a no-op if nothing was archived for it.
	Delete(ctx context.Context, userID, sessionID string) error
}
