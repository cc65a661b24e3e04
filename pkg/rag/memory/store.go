package memory

import (
	"context"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one (role, text) entry of a user's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store is the per-user conversation memory: an ordered sequence of turns
// keyed by user id, created lazily on first access and evicted by TTL so
// growth stays bounded. Reading or appending refreshes the entry's TTL.
type Store interface {
	// Get returns the user's turns in insertion order. A user without
	// history gets an empty slice, not an error.
	Get(ctx context.Context, userID string) ([]Turn, error)

	// Append adds turns at the tail of the user's history.
	Append(ctx context.Context, userID string, turns ...Turn) error

	// Clear removes the user's history.
	Clear(ctx context.Context, userID string) error
}
