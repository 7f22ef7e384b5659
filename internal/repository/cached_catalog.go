package repository

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

// CachedCatalog wraps a CatalogRepository with a Redis read-through cache.
// The catalog is read-only from this service's point of view, so a single
// payload entry per test (definition plus its questions) is enough; staleness
// is bounded by the TTL.
type CachedCatalog struct {
	inner *CatalogRepository
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedCatalog creates a CachedCatalog around inner.
func NewCachedCatalog(inner *CatalogRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "catalog_cache").Logger(),
	}
}

type cachedTestPayload struct {
	Test      *model.TestDefinition `json:"test"`
	Questions []model.Question      `json:"questions"`
}

// TestByID retrieves a test definition, preferring the cached payload.
func (c *CachedCatalog) TestByID(ctx context.Context, testID uuid.UUID) (*model.TestDefinition, error) {
	if payload := c.lookup(ctx, testID); payload != nil {
		return payload.Test, nil
	}
	payload, err := c.load(ctx, testID)
	if err != nil {
		return nil, err
	}
	return payload.Test, nil
}

// QuestionsForTest retrieves all questions for a test, preferring the cached
// payload.
func (c *CachedCatalog) QuestionsForTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	if payload := c.lookup(ctx, testID); payload != nil {
		return payload.Questions, nil
	}
	payload, err := c.load(ctx, testID)
	if err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (c *CachedCatalog) lookup(ctx context.Context, testID uuid.UUID) *cachedTestPayload {
	key := config.CacheKey.TestPayloadKey(testID.String())

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("test_id", testID.String()).Msg("cache read failed")
		}
		return nil
	}

	var payload cachedTestPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Test == nil {
		// Corrupt cache entry: drop it and fall through to the database.
		c.rdb.Del(ctx, key)
		return nil
	}
	return &payload
}

func (c *CachedCatalog) load(ctx context.Context, testID uuid.UUID) (*cachedTestPayload, error) {
	test, err := c.inner.TestByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	questions, err := c.inner.QuestionsForTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	payload := &cachedTestPayload{Test: test, Questions: questions}

	// Self-heal so the next read is fast.
	raw, err := json.Marshal(payload)
	if err == nil {
		key := config.CacheKey.TestPayloadKey(testID.String())
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("test_id", testID.String()).Msg("cache write failed")
		}
	}
	return payload, nil
}
