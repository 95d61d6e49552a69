package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means no reservation exists for the given code.
	ErrNotFound = errors.New("reservation not found")
	// ErrCodeTaken means the confirmation code is already in use; the
	// service regenerates and retries.
	ErrCodeTaken = errors.New("confirmation code already in use")
)

// Store is the ledger's pluggable backing store. Reserve and Move are the
// only contended operations and every implementation makes them atomic per
// bucket key: no two concurrent calls may both observe free capacity and
// both claim the last unit.
type Store interface {
	// Reserve atomically increments the key's confirmed count if it is
	// below capacity. Returns false when the bucket is full.
	Reserve(ctx context.Context, key BucketKey, capacity int) (bool, error)

	// Release decrements the key's confirmed count, never below zero.
	Release(ctx context.Context, key BucketKey) error

	// Move atomically reserves `to` (against toCapacity) and releases
	// `from`. When `to` is full, nothing changes and false is returned.
	Move(ctx context.Context, from, to BucketKey, toCapacity int) (bool, error)

	// ConfirmedCount reports the current confirmed count for a bucket.
	// Reads run fully in parallel and never block writers.
	ConfirmedCount(ctx context.Context, venueID string, slot time.Time, bucket int) (int, error)

	// Insert stores a new reservation record, failing with ErrCodeTaken
	// on a confirmation-code collision.
	Insert(ctx context.Context, r *Reservation) error

	// Get fetches a reservation by confirmation code, ErrNotFound if absent.
	Get(ctx context.Context, code string) (*Reservation, error)

	// Update rewrites an existing reservation record.
	Update(ctx context.Context, r *Reservation) error

	// List returns reservations matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Reservation, error)
}
