// Package store provides durable persistence of credential records keyed by
// ID with exactly-once-per-ID write semantics.
//
// Uniqueness is enforced by the storage engine itself (primary key or
// single-writer transaction), not by the caller's prior Exists check, so
// concurrent Save attempts for the same ID are totally ordered: exactly one
// succeeds, the rest observe ErrConflict.
package store

import (
	"context"

	"vouch/internal/credential/models"
	"vouch/pkg/platform/sentinel"
)

// Store is the storage contract shared by the issuance and verification
// services. Implementations must be safe for concurrent use. There is no
// update or delete operation: records are append-only.
type Store interface {
	// Save inserts a new record. It returns sentinel.ErrConflict if a record
	// with the same ID already exists; it never overwrites.
	Save(ctx context.Context, record models.Record) error

	// Exists reports whether a record with the given ID is present.
	Exists(ctx context.Context, id string) (bool, error)

	// Get returns the stored record for the given ID, or sentinel.ErrNotFound.
	Get(ctx context.Context, id string) (models.Record, error)

	// ListIDs returns all stored credential IDs. Diagnostic use only.
	ListIDs(ctx context.Context) ([]string, error)

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error

	// Close releases the storage handle.
	Close() error
}

// Re-exported sentinels so callers of this package don't need to import the
// sentinel package for the common cases.
var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
