// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/manasapp/manas/internal/domain"
)

// Repository defines the interface for persisting live conversation state
// and archived session summaries.
type Repository interface {
	// ListTurns retrieves the live conversation turns for a user in
	// insertion order. Returns an empty slice when no session is open.
	ListTurns(ctx context.Context, userID string) ([]domain.ConversationTurn, error)

	// ListMoods retrieves the live mood records for a user in insertion
	// order, positionally aligned with ListTurns.
	ListMoods(ctx context.Context, userID string) ([]domain.MoodRecord, error)

	// AppendExchange appends one turn and its mood record to the user's
	// live state atomically, preserving the equal-length invariant.
	AppendExchange(ctx context.Context, userID string, turn domain.ConversationTurn, mood domain.MoodRecord) error

	// ClearLiveState removes both live sequences for a user.
	ClearLiveState(ctx context.Context, userID string) error

	// AddSession appends a completed session record to the user's archive.
	AddSession(ctx context.Context, userID string, rec domain.SessionRecord) error

	// ListSessions retrieves all archived session records for a user in
	// the store's natural iteration order.
	ListSessions(ctx context.Context, userID string) ([]domain.SessionRecord, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
