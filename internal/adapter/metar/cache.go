package metar

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/runway-selector/internal/observability"
)

// Source fetches raw METARs keyed by ICAO.
type Source interface {
	FetchMETARs(ctx context.Context, airports []string) (map[string]string, error)
}

// CachedSource wraps a Source with a per-airport cache whose entries expire
// after ttl. Airports the inner source returned no report for are remembered
// as absent for the same ttl. A fetch is served from cache only when every
// requested airport is either cached or known absent; otherwise the inner
// source is asked and the cache refreshed.
type CachedSource struct {
	inner   Source
	cache   *expirable.LRU[string, string]
	absent  *expirable.LRU[string, struct{}]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source.
func NewCachedSource(inner Source, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   expirable.NewLRU[string, string](maxEntries, nil, ttl),
		absent:  expirable.NewLRU[string, struct{}](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchMETARs(ctx context.Context, airports []string) (map[string]string, error) {
	if len(airports) > 0 {
		cached := make(map[string]string, len(airports))
		complete := true
		for _, icao := range airports {
			if report, ok := c.cache.Get(icao); ok {
				cached[icao] = report
				continue
			}
			if c.absent.Contains(icao) {
				continue
			}
			complete = false
			break
		}
		if complete {
			c.metrics.METARCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	c.metrics.METARCache.WithLabelValues("miss").Inc()

	reports, err := c.inner.FetchMETARs(ctx, airports)
	if err != nil {
		return nil, err
	}
	for icao, report := range reports {
		c.cache.Add(icao, report)
	}
	for _, icao := range airports {
		if _, ok := reports[icao]; ok {
			c.absent.Remove(icao)
		} else {
			c.absent.Add(icao, struct{}{})
		}
	}
	return reports, nil
}
