package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
)

// MemoryStore is an in-memory SessionStore with the same CAS semantics as
// the durable implementations. Used in tests and as an embedded fallback.
type MemoryStore struct {
	mu       sync.RWMutex
	rows     map[uuid.UUID][]byte
	versions map[uuid.UUID]int64
	statuses map[uuid.UUID]model.SessionStatus
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:     make(map[uuid.UUID][]byte),
		versions: make(map[uuid.UUID]int64),
		statuses: make(map[uuid.UUID]model.SessionStatus),
	}
}

func (m *MemoryStore) Create(_ context.Context, sess *model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[sess.ID]; ok {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	m.rows[sess.ID] = raw
	m.versions[sess.ID] = 1
	m.statuses[sess.ID] = sess.Status
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*model.Session, int64, error) {
	m.mu.RLock()
	raw, ok := m.rows[id]
	version := m.versions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, 0, ErrNotFound
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, version, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *model.Session, expectedVersion int64) (int64, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return 0, fmt.Errorf("marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.versions[sess.ID]
	if !ok {
		return 0, ErrNotFound
	}
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}

	m.rows[sess.ID] = raw
	m.versions[sess.ID] = current + 1
	m.statuses[sess.ID] = sess.Status
	return current + 1, nil
}

func (m *MemoryStore) ListActive(_ context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []uuid.UUID
	for id, status := range m.statuses {
		if status == model.SessionStatusInProgress {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
