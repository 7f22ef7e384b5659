// Package store provides durable, crash-safe persistence for assessment
// sessions: one snapshot per session id, versioned so that stale writes are
// refused instead of silently overwriting newer data.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
)

var (
	// ErrNotFound is returned when no session exists for the given id.
	ErrNotFound = errors.New("session not found")
	// ErrVersionConflict is returned when a save carries a stale version.
	// The caller must re-read and retry; the store never resolves the
	// conflict by last-write-wins.
	ErrVersionConflict = errors.New("session version conflict")
)

// SessionStore persists full session snapshots keyed by session id.
// Save is a compare-and-swap on the version returned by Get/Create, which
// gives the single writer of a session read-after-write consistency and
// detects lost updates should two writers ever race.
type SessionStore interface {
	// Create persists a brand-new session at version 1.
	Create(ctx context.Context, sess *model.Session) error
	// Get returns the current snapshot and its version.
	Get(ctx context.Context, id uuid.UUID) (*model.Session, int64, error)
	// Save atomically replaces the snapshot iff the stored version equals
	// expectedVersion, returning the new version.
	Save(ctx context.Context, sess *model.Session, expectedVersion int64) (int64, error)
	// ListActive returns ids of sessions whose countdown is running
	// (in_progress), for the background expiry sweep.
	ListActive(ctx context.Context) ([]uuid.UUID, error)
}
