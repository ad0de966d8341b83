package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

func newTestCache(t *testing.T) (*RatingCache, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { db.Close() })
	return NewRatingCache(db, time.Minute, logger), mock
}

func TestRatingCache_GetSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Hit", func(t *testing.T) {
		cache, mock := newTestCache(t)
		summary := models.NewRatingSummary([]models.Rating{
			{ID: uuid.New(), TripID: uuid.New(), UserID: uuid.New(), Rating: 4},
			{ID: uuid.New(), TripID: uuid.New(), UserID: uuid.New(), Rating: 2},
		})
		data, err := json.Marshal(summary)
		require.NoError(t, err)

		mock.ExpectGet("ratings:trip:1").SetVal(string(data))

		got, ok := cache.GetSummary(ctx, "ratings:trip:1")
		require.True(t, ok)
		assert.Equal(t, 2, got.Count)
		assert.Equal(t, 3.0, got.Average)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		cache, mock := newTestCache(t)
		mock.ExpectGet("ratings:trip:2").RedisNil()

		got, ok := cache.GetSummary(ctx, "ratings:trip:2")
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redis Down Falls Through", func(t *testing.T) {
		cache, mock := newTestCache(t)
		mock.ExpectGet("ratings:trip:3").SetErr(errors.New("connection refused"))

		_, ok := cache.GetSummary(ctx, "ratings:trip:3")
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Malformed Entry", func(t *testing.T) {
		cache, mock := newTestCache(t)
		mock.ExpectGet("ratings:trip:4").SetVal("not json")

		_, ok := cache.GetSummary(ctx, "ratings:trip:4")
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRatingCache_SetSummary(t *testing.T) {
	cache, mock := newTestCache(t)
	summary := models.NewRatingSummary(nil)
	data, err := json.Marshal(summary)
	require.NoError(t, err)

	mock.ExpectSet("ratings:driver:1", data, time.Minute).SetVal("OK")

	cache.SetSummary(context.Background(), "ratings:driver:1", summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingCache_Invalidate(t *testing.T) {
	cache, mock := newTestCache(t)

	mock.ExpectDel("ratings:trip:1", "ratings:driver:1").SetVal(2)

	cache.Invalidate(context.Background(), "ratings:trip:1", "ratings:driver:1")
	assert.NoError(t, mock.ExpectationsWereMet())

	// No keys, no round trip
	cache.Invalidate(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
