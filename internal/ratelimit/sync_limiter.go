package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/metrica/internal/config"
)

const keySyncClient = "sync:client:"

// SyncLimiter bounds how often one client can request a full resync. Without
// redis configured the limiter is disabled and every request passes.
type SyncLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewSyncLimiter(cfg config.Config) *SyncLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &SyncLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.SyncRate,
		burst:   cfg.SyncBurst,
	}
}

func (l *SyncLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *SyncLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, keySyncClient+strings.TrimSpace(clientKey), l.rate, l.burst)
}
