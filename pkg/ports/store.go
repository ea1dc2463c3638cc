package ports

import (
	"context"

	"github.com/aretw0/mercato/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
// Implementations must not share memory with callers: a loaded session is the caller's copy.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for a customer identifier.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
