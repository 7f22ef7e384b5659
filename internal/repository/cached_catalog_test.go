package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/model"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedCatalogServesFromCache(t *testing.T) {
	ctx := context.Background()
	rdb := testRedis(t)

	testID := uuid.New()
	payload := cachedTestPayload{
		Test: &model.TestDefinition{
			ID:               testID,
			Title:            "Backend Screening",
			TimeLimitSeconds: 3600,
		},
		Questions: []model.Question{
			{ID: uuid.New(), TestID: testID, Type: model.QuestionTypeMultipleChoice, Points: 2},
			{ID: uuid.New(), TestID: testID, Type: model.QuestionTypeEssay, Points: 5},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, rdb.Set(ctx, config.CacheKey.TestPayloadKey(testID.String()), raw, time.Minute).Err())

	// A nil inner repository proves the database is never touched on a hit.
	cc := NewCachedCatalog(nil, rdb, time.Minute, zerolog.Nop())

	got, err := cc.TestByID(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Screening", got.Title)

	questions, err := cc.QuestionsForTest(ctx, testID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, model.QuestionTypeEssay, questions[1].Type)
}

func TestCachedCatalogDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	rdb := testRedis(t)

	testID := uuid.New()
	key := config.CacheKey.TestPayloadKey(testID.String())
	require.NoError(t, rdb.Set(ctx, key, "not-json", time.Minute).Err())

	cc := NewCachedCatalog(nil, rdb, time.Minute, zerolog.Nop())
	assert.Nil(t, cc.lookup(ctx, testID))

	// The corrupt entry is evicted so the next read repopulates.
	exists, err := rdb.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
