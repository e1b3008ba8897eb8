package translation

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheGetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")
	mock.ExpectGet("test:mykey").SetVal("译文")

	value, ok := cache.Get("mykey")
	assert.True(t, ok)
	assert.Equal(t, "译文", value)
	assert.Equal(t, int64(1), cache.Stats().Hits)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")
	mock.ExpectGet("test:mykey").RedisNil()

	value, ok := cache.Get("mykey")
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.Equal(t, int64(1), cache.Stats().Misses)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")
	mock.ExpectSet("test:mykey", "译文", 3600*time.Second).SetVal("OK")

	require.NoError(t, cache.Set("mykey", "译文"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheSetNoTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectSet("test:mykey", "v", 0).SetVal("OK")

	require.NoError(t, cache.Set("mykey", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheSetWithTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectSet("test:mykey", "v", time.Minute).SetVal("OK")

	require.NoError(t, cache.SetWithTTL("mykey", "v", time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectDel("test:mykey").SetVal(1)

	require.NoError(t, cache.Delete("mykey"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheClear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectKeys("test:*").SetVal([]string{"test:a", "test:b"})
	mock.ExpectDel("test:a", "test:b").SetVal(2)

	require.NoError(t, cache.Clear())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheDefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "")
	mock.ExpectGet(DefaultRedisKeyPrefix + "hash123").SetVal("translated")

	value, ok := cache.Get("hash123")
	assert.True(t, ok)
	assert.Equal(t, "translated", value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCachePing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectPing().SetVal("PONG")

	require.NoError(t, cache.Ping())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{URL: "not-a-redis-url"})
	require.Error(t, err)
}
