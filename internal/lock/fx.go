package lock

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sevadesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "sevadesk:lock:"

var Module = fx.Module("lock",
	fx.Provide(New),
)

// New returns the in-process locker, chained with a Redis lock when REDIS_ADDR is set.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Locker {
	keyed := NewKeyed()

	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return keyed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	log.Info("distributed allocation lock enabled", zap.String("redis_addr", addr))
	return Chain{keyed, NewRedis(client, keyPrefix, cfg.Allocation.LockTTL, log)}
}
