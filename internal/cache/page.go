package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PageCacheOptions struct {
	// Name labels this cache's metrics, so several caches can share a
	// registry.
	Name       string
	TTL        time.Duration
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// PageCache stores values of type T as JSON in a Store. Backend errors are
// logged and reported through Result; they never fail the caller.
type PageCache[T any] struct {
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

func NewPageCache[T any](store Store, opts PageCacheOptions) *PageCache[T] {
	if store == nil {
		store = NopStore{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := opts.Name
	if name == "" {
		name = "default"
	}
	return &PageCache[T]{
		store:  store,
		ttl:    opts.TTL,
		logger: logger,
		lookups: promauto.With(opts.Registerer).NewCounterVec(prometheus.CounterOpts{
			Name:        "leadsearch_cache_lookups_total",
			Help:        "Result cache lookups, by outcome.",
			ConstLabels: prometheus.Labels{"cache": name},
		}, []string{"outcome"}),
	}
}

func (c *PageCache[T]) Lookup(ctx context.Context, key string) Result[T] {
	raw := c.store.Get(ctx, key)
	switch {
	case raw.Err() != nil:
		c.lookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache lookup failed", "key", key, "error", raw.Err())
		return Fail[T](raw.Err())
	case !raw.IsHit():
		c.lookups.WithLabelValues("miss").Inc()
		return Miss[T]()
	}

	var v T
	if err := json.Unmarshal(raw.Value(), &v); err != nil {
		c.lookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache entry unreadable", "key", key, "error", err)
		return Fail[T](fmt.Errorf("decode cache entry: %w", err))
	}
	c.lookups.WithLabelValues("hit").Inc()
	return Hit(v)
}

// Save writes v under key. Failures are logged and dropped.
func (c *PageCache[T]) Save(ctx context.Context, key string, v T) {
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("cache store failed", "key", key, "error", err)
	}
}

// Invalidate drops every entry in namespace.
func (c *PageCache[T]) Invalidate(ctx context.Context, namespace string) error {
	if err := c.store.InvalidateNamespace(ctx, namespace); err != nil {
		c.logger.Warn("cache invalidation failed", "namespace", namespace, "error", err)
		return err
	}
	return nil
}
