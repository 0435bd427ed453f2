package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func marshalSession(t *testing.T, sess *Session) string {
	t.Helper()
	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("failed to marshal session: %v", err)
	}
	return string(data)
}

func TestRedisStore_Create(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	ctx := context.Background()

	ttl := 24 * time.Hour
	mock.Regexp().ExpectSet(`session:[0-9A-HJKMNP-TV-Z]{26}`, `.+`, ttl).SetVal("OK")

	sess, err := store.Create(ctx, "discord-user-1", ttl)
	assert.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "discord-user-1", sess.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Create_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	redisErr := errors.New("connection refused")
	mock.Regexp().ExpectSet(`session:.+`, `.+`, time.Hour).SetErr(redisErr)

	sess, err := store.Create(context.Background(), "discord-user-1", time.Hour)
	assert.ErrorIs(t, err, redisErr)
	assert.Nil(t, sess)
}

func TestRedisStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	ctx := context.Background()

	stored := &Session{ID: "sess1", UserID: "discord-user-1", CreatedAt: time.Now().UTC()}

	t.Run("Hit", func(t *testing.T) {
		mock.ExpectGet("session:sess1").SetVal(marshalSession(t, stored))
		sess, err := store.Get(ctx, "sess1")
		assert.NoError(t, err)
		assert.NotNil(t, sess)
		assert.Equal(t, stored.ID, sess.ID)
		assert.Equal(t, stored.UserID, sess.UserID)
	})

	t.Run("Miss", func(t *testing.T) {
		mock.ExpectGet("session:missing").SetErr(redis.Nil)
		sess, err := store.Get(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection refused")
		mock.ExpectGet("session:sess1").SetErr(redisErr)
		sess, err := store.Get(ctx, "sess1")
		assert.ErrorIs(t, err, redisErr)
		assert.Nil(t, sess)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete_Idempotent(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	ctx := context.Background()

	// Deleting a key that is already gone still succeeds.
	mock.ExpectDel("session:gone").SetVal(0)
	assert.NoError(t, store.Delete(ctx, "gone"))

	mock.ExpectDel("session:sess1").SetVal(1)
	assert.NoError(t, store.Delete(ctx, "sess1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ActiveSessionForUser(t *testing.T) {
	ctx := context.Background()

	other := &Session{ID: "s1", UserID: "someone-else"}
	target := &Session{ID: "s2", UserID: "discord-user-1"}

	t.Run("Found", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db)

		mock.ExpectScan(0, "session:*", 0).SetVal([]string{"session:s1", "session:s2"}, 0)
		mock.ExpectGet("session:s1").SetVal(marshalSession(t, other))
		mock.ExpectGet("session:s2").SetVal(marshalSession(t, target))

		sess, err := store.ActiveSessionForUser(ctx, "discord-user-1")
		assert.NoError(t, err)
		assert.NotNil(t, sess)
		assert.Equal(t, "s2", sess.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db)

		mock.ExpectScan(0, "session:*", 0).SetVal([]string{"session:s1"}, 0)
		mock.ExpectGet("session:s1").SetVal(marshalSession(t, other))

		sess, err := store.ActiveSessionForUser(ctx, "discord-user-1")
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("ExpiredMidScanSkipped", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db)

		mock.ExpectScan(0, "session:*", 0).SetVal([]string{"session:s1", "session:s2"}, 0)
		mock.ExpectGet("session:s1").SetErr(redis.Nil)
		mock.ExpectGet("session:s2").SetVal(marshalSession(t, target))

		sess, err := store.ActiveSessionForUser(ctx, "discord-user-1")
		assert.NoError(t, err)
		assert.NotNil(t, sess)
		assert.Equal(t, "s2", sess.ID)
	})
}
