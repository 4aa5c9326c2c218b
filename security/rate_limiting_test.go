package security

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_AllowWithinLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := &redisStore{redis: db, limit: 3, window: time.Minute}

	mock.ExpectIncr("ratelimit:user:u1").SetVal(1)
	mock.ExpectExpire("ratelimit:user:u1", time.Minute).SetVal(true)

	allowed, err := store.Allow("user:u1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_DeniesOverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := &redisStore{redis: db, limit: 3, window: time.Minute}

	mock.ExpectIncr("ratelimit:user:u1").SetVal(4)

	allowed, err := store.Allow("user:u1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisStore_FailsOpenOnRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := &redisStore{redis: db, limit: 3, window: time.Minute}

	mock.ExpectIncr("ratelimit:1.2.3.4").SetErr(errors.New("connection refused"))

	allowed, err := store.Allow("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
}
