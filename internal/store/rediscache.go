package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/model"
)

// CachedStore wraps a SessionStore with a Redis read-through cache.
// The cache is an optimization only, never the source of truth: every write
// goes to the inner store first, and a cache miss self-heals from it.
type CachedStore struct {
	inner SessionStore
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedStore creates a CachedStore around inner.
func NewCachedStore(inner SessionStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedStore {
	return &CachedStore{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "session_cache").Logger(),
	}
}

type cachedSnapshot struct {
	Version  int64          `json:"version"`
	Snapshot *model.Session `json:"snapshot"`
}

func (c *CachedStore) Create(ctx context.Context, sess *model.Session) error {
	if err := c.inner.Create(ctx, sess); err != nil {
		return err
	}
	c.put(ctx, sess, 1)
	return nil
}

func (c *CachedStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, int64, error) {
	key := config.CacheKey.SessionSnapshotKey(id.String())

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedSnapshot
		if err := json.Unmarshal(raw, &cached); err == nil && cached.Snapshot != nil {
			return cached.Snapshot, cached.Version, nil
		}
		// Corrupt cache entry: drop it and fall through to the store.
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("session_id", id.String()).Msg("cache read failed")
	}

	sess, version, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	// Self-heal so the next read is fast.
	c.put(ctx, sess, version)
	return sess, version, nil
}

func (c *CachedStore) Save(ctx context.Context, sess *model.Session, expectedVersion int64) (int64, error) {
	newVersion, err := c.inner.Save(ctx, sess, expectedVersion)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			// The cached copy is stale too; evict so the retry re-reads.
			c.rdb.Del(ctx, config.CacheKey.SessionSnapshotKey(sess.ID.String()))
		}
		return 0, err
	}
	c.put(ctx, sess, newVersion)
	return newVersion, nil
}

func (c *CachedStore) ListActive(ctx context.Context) ([]uuid.UUID, error) {
	return c.inner.ListActive(ctx)
}

func (c *CachedStore) put(ctx context.Context, sess *model.Session, version int64) {
	raw, err := json.Marshal(cachedSnapshot{Version: version, Snapshot: sess})
	if err != nil {
		return
	}
	key := config.CacheKey.SessionSnapshotKey(sess.ID.String())
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		// Cache write failure is not an error for the caller.
		c.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("cache write failed")
	}
}
