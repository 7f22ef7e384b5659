package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/model"
)

func newQueue(t *testing.T) (*RedisViolationQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisViolationQueue(rdb), mr
}

func TestPublishEnqueuesWireFormat(t *testing.T) {
	q, mr := newQueue(t)
	sessionID := uuid.New()
	at := time.Unix(1756500000, 0)

	err := q.Publish(context.Background(), sessionID, "cand-42", model.ViolationRecord{
		Type:      "tab_switch",
		Severity:  "high",
		Timestamp: at,
		Details:   "switched away twice",
	})
	require.NoError(t, err)

	raw, err := mr.Lpop(config.WorkerKey.PersistViolationsQueue)
	require.NoError(t, err)

	var payload violationPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, sessionID.String(), payload.SessionID)
	assert.Equal(t, "cand-42", payload.CandidateID)
	assert.Equal(t, "tab_switch", payload.Type)
	assert.Equal(t, "high", payload.Severity)
	assert.Equal(t, at.Unix(), payload.Timestamp)
	assert.Equal(t, "switched away twice", payload.Details)
}

func TestPublishPreservesQueueOrder(t *testing.T) {
	q, mr := newQueue(t)
	ctx := context.Background()
	sessionID := uuid.New()

	for _, typ := range []string{"first", "second", "third"} {
		require.NoError(t, q.Publish(ctx, sessionID, "cand-1", model.ViolationRecord{
			Type: typ, Severity: "low", Timestamp: time.Now(),
		}))
	}

	// BLPop consumes from the left, so order of arrival is preserved.
	for _, want := range []string{"first", "second", "third"} {
		raw, err := mr.Lpop(config.WorkerKey.PersistViolationsQueue)
		require.NoError(t, err)
		var payload violationPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &payload))
		assert.Equal(t, want, payload.Type)
	}
}
