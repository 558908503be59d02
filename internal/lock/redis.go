package lock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultRetryInterval = 25 * time.Millisecond
	defaultWaitTimeout   = 10 * time.Second
)

// Redis is a SET NX lock shared by every instance pointing at the same server.
type Redis struct {
	client        *redis.Client
	script        *redis.Script
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	waitTimeout   time.Duration
	log           *zap.Logger
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *Redis {
	if client == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{
		client:        client,
		script:        redis.NewScript(lockReleaseScript),
		prefix:        strings.TrimSpace(prefix),
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		waitTimeout:   defaultWaitTimeout,
		log:           log.Named("lock.redis"),
	}
}

// TryLock makes a single attempt and returns the owner token when it wins.
func (l *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Unlock deletes key only while it still holds token.
func (l *Redis) Unlock(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := l.prefix + key
	deadline := time.NewTimer(l.waitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(ctx, redisKey, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					if err := l.Unlock(releaseCtx, redisKey, token); err != nil {
						l.log.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
					}
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}
