package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// JSONCache is satisfied by cache.Redis.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const (
	statsKey  = "mfo-admin:analytics:stats"
	reportKey = "mfo-admin:analytics:report"
)

// Cached memoizes a Provider for ttl. Cache failures are logged and the
// result is recomputed, so callers see the same contract as the inner
// provider.
type Cached struct {
	inner  Provider
	cache  JSONCache
	ttl    time.Duration
	logger *zap.SugaredLogger
}

var _ Provider = (*Cached)(nil)

func NewCached(inner Provider, c JSONCache, ttl time.Duration, logger *zap.SugaredLogger) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl, logger: logger}
}

func (c *Cached) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if c.lookup(ctx, statsKey, &st) {
		return &st, nil
	}
	out, err := c.inner.Stats(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, statsKey, out)
	return out, nil
}

func (c *Cached) Analytics(ctx context.Context) (*Report, error) {
	var rep Report
	if c.lookup(ctx, reportKey, &rep) {
		return &rep, nil
	}
	out, err := c.inner.Analytics(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, reportKey, out)
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, key string, dest any) bool {
	ok, err := c.cache.GetJSON(ctx, key, dest)
	if err != nil {
		c.logger.Warnw("analytics cache read failed", "key", key, "err", err)
		return false
	}
	return ok
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warnw("analytics cache write failed", "key", key, "err", err)
	}
}
