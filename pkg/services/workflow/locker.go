package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSyncInProgress is returned when a sync is requested while another one holds the lock.
var ErrSyncInProgress = errors.New("sync already in progress")

// Locker guards the single in-flight sync. TryLock never blocks: it returns
// ErrSyncInProgress when the lock is held, otherwise a release function.
type Locker interface {
	TryLock(ctx context.Context) (release func(), err error)
}

// LocalLocker serializes syncs within one process.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryLock(_ context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}

const (
	DefaultLockKey = "repo-atlas:sync:lock"
	DefaultLockTTL = time.Hour
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// TTL bounds how long a crashed holder keeps the lock.
	TTL time.Duration
}

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes syncs across processes sharing one cache.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLocker(cfg RedisConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if cfg.Key == "" {
		cfg.Key = DefaultLockKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultLockTTL
	}
	return &RedisLocker{client: client, key: cfg.Key, ttl: cfg.TTL}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
		})
	}, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
