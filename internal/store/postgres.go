package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirestack/assessment-engine/internal/model"
)

// PostgresStore persists session snapshots as jsonb rows with a version
// column for optimistic concurrency control.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, sess *model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, candidate_id, test_id, status, snapshot, version)
		 VALUES ($1, $2, $3, $4, $5, 1)`,
		sess.ID, sess.CandidateID, sess.TestID, sess.Status, raw,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, int64, error) {
	var raw []byte
	var version int64

	err := s.pool.QueryRow(ctx,
		`SELECT snapshot, version FROM sessions WHERE id = $1`, id,
	).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("select session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, version, nil
}

// Save replaces the snapshot iff the stored version matches. The status
// column is denormalized from the snapshot so ListActive stays an index scan.
func (s *PostgresStore) Save(ctx context.Context, sess *model.Session, expectedVersion int64) (int64, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return 0, fmt.Errorf("marshal session: %w", err)
	}

	var newVersion int64
	err = s.pool.QueryRow(ctx,
		`UPDATE sessions
		 SET snapshot = $1, status = $2, version = version + 1, updated_at = NOW()
		 WHERE id = $3 AND version = $4
		 RETURNING version`,
		raw, sess.Status, sess.ID, expectedVersion,
	).Scan(&newVersion)
	if err == nil {
		return newVersion, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("update session: %w", err)
	}

	// No row matched: either the session is gone or the version is stale.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, sess.ID,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check session existence: %w", err)
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrVersionConflict
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM sessions WHERE status = $1`, model.SessionStatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
