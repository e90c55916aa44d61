package gateway

import (
	"context"
	"sync"
	"time"

	"slabtrader/internal/codec"
	"slabtrader/internal/obs"
	"slabtrader/internal/schema"
)

// CachedGateway layers an advisory read cache over another gateway.
// Only slab accounts are cached: within the freshness window a read is
// served from the cache without touching the ledger, which saves the
// duplicate slab reads a snapshot load followed by a quote fan-out
// would otherwise issue. The cache never substitutes for the ledger's
// own commit-time seqno check.
type CachedGateway struct {
	inner   Gateway
	metrics *obs.Metrics
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[schema.Pubkey]cacheEntry
}

type cacheEntry struct {
	fetchedAt time.Time
	data      []byte
}

// NewCachedGateway wraps inner with a slab read cache. metrics may be
// nil; a non-positive ttl disables serving from the cache entirely.
func NewCachedGateway(inner Gateway, metrics *obs.Metrics, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		inner:   inner,
		metrics: metrics,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[schema.Pubkey]cacheEntry),
	}
}

// ReadAccount serves slab bytes from the cache while they are within
// the freshness window, and reads through otherwise. Non-slab records
// always pass through uncached.
func (g *CachedGateway) ReadAccount(ctx context.Context, address schema.Pubkey) ([]byte, error) {
	if g.ttl > 0 {
		g.mu.RLock()
		cached, hit := g.entries[address]
		g.mu.RUnlock()
		if hit && g.now().Sub(cached.fetchedAt) < g.ttl {
			g.metrics.IncCacheHit()
			return cached.data, nil
		}
	}

	data, err := g.inner.ReadAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	if _, ok := codec.PeekSlabSeqno(data); !ok {
		return data, nil
	}
	g.metrics.IncCacheMiss()

	stored := make([]byte, len(data))
	copy(stored, data)
	g.mu.Lock()
	g.entries[address] = cacheEntry{fetchedAt: g.now(), data: stored}
	g.mu.Unlock()
	return data, nil
}

// SubmitTransaction passes through.
func (g *CachedGateway) SubmitTransaction(ctx context.Context, signed []byte) (string, error) {
	return g.inner.SubmitTransaction(ctx, signed)
}

// Invalidate drops the cached entry for one address.
func (g *CachedGateway) Invalidate(address schema.Pubkey) {
	g.mu.Lock()
	delete(g.entries, address)
	g.mu.Unlock()
}
