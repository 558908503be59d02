package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sevadesk/internal/config"
	"go.uber.org/fx"
)

const keyReportGenerate = "sevadesk:ratelimit:report:%s"

// ReportLimiter throttles on-demand report generation per client.
type ReportLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewReportLimiter returns nil when rate limiting is disabled.
func NewReportLimiter(lc fx.Lifecycle, cfg config.Config) (*ReportLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil, errors.New("rate limit requires REDIS_ADDR")
	}
	if limitCfg.ReportRate <= 0 || limitCfg.ReportBurst <= 0 {
		return nil, errors.New("report rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}

	return &ReportLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.ReportRate,
		burst:   limitCfg.ReportBurst,
	}, nil
}

func (l *ReportLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow spends one token for client. A disabled limiter always allows.
func (l *ReportLimiter) Allow(ctx context.Context, client string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyReportGenerate, client), l.rate, l.burst)
}
