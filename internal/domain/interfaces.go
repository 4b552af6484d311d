package domain

import "context"

// SessionRepository defines the interface for session state storage
type SessionRepository interface {
	Create(ctx context.Context) (Session, error)
	// Get returns a snapshot of the session and marks it as seen.
	Get(ctx context.Context, id string) (Session, error)
	// Update applies fn to the stored session under the repository lock and
	// returns the result. Nothing is stored when fn fails.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) error
}
