package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/openhaven/matchgrid/internal/infrastructure/database/redis"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/prometheus"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// cachedProvider decorates a Provider with a Redis-backed cache keyed by a
// hash of the profile text.  Profile synthesis is deterministic, so
// unchanged records hit the cache on every re-score.  Cache failures are
// logged and bypassed; they never fail an Embed call on their own.
type cachedProvider struct {
	inner   Provider
	cache   redis.Cache
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.Metrics
}

// NewCachedProvider wraps inner with a cache.  A nil cache returns inner
// unchanged, which keeps wiring simple when caching is disabled.  metrics
// may be nil.
func NewCachedProvider(inner Provider, cache redis.Cache, ttl time.Duration, logger logging.Logger, metrics *prometheus.Metrics) Provider {
	if cache == nil {
		return inner
	}
	return &cachedProvider{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.Named("embedding.cache"),
		metrics: metrics,
	}
}

func (c *cachedProvider) Dimensions() int { return c.inner.Dimensions() }

func (c *cachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	var vec []float32
	err := c.cache.Get(ctx, key, &vec)
	if err == nil && len(vec) == c.inner.Dimensions() {
		if c.metrics != nil {
			c.metrics.EmbeddingCacheHits.Inc()
		}
		return vec, nil
	}
	if err != nil && !errors.IsCode(err, errors.CodeNotFound) {
		c.logger.Warn("embedding cache read failed", logging.Err(err))
	}

	vec, embedErr := c.inner.Embed(ctx, text)
	if embedErr != nil {
		return nil, embedErr
	}

	if setErr := c.cache.Set(ctx, key, vec, c.ttl); setErr != nil {
		c.logger.Warn("embedding cache write failed", logging.Err(setErr))
	}
	return vec, nil
}

// cacheKey hashes the profile text so that arbitrarily long profiles map to
// fixed-size Redis keys.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + hex.EncodeToString(sum[:])
}
