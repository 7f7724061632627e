package store

import (
	"context"
	"errors"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. The gateway itself is stateless with respect to sessions;
// the store only holds the auth trail.
type Store interface {
	Events() Events

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Events interface {
	// RecordEvent appends one entry to the auth trail.
	RecordEvent(ctx context.Context, e domain.AuthEvent) error

	// ListRecentByEmail returns up to limit newest events for an email,
	// newest first. Operators use this when investigating login trouble.
	ListRecentByEmail(ctx context.Context, email string, limit int) ([]domain.AuthEvent, error)

	// DeleteEventsBefore removes entries older than cutoff (housekeeping).
	// Returns the number of rows removed.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
