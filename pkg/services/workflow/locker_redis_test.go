package workflow

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("REPO_ATLAS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REPO_ATLAS_TEST_REDIS_ADDR not set")
	}

	cfg := RedisConfig{Addr: addr, Key: "repo-atlas:test:" + uuid.NewString(), TTL: time.Minute}
	first, err := NewRedisLocker(cfg)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewRedisLocker(cfg)
	require.NoError(t, err)
	defer second.Close()

	ctx := context.Background()
	release, err := first.TryLock(ctx)
	require.NoError(t, err)

	_, err = second.TryLock(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	release()

	release, err = second.TryLock(ctx)
	require.NoError(t, err)
	release()
}

func TestNewRedisLocker_Unreachable(t *testing.T) {
	_, err := NewRedisLocker(RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
