package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"slabtrader/internal/codec"
	"slabtrader/internal/gateway"
	"slabtrader/internal/obs"
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// Quote is one venue's live top-of-book joined with its oracle price.
type Quote struct {
	Venue  schema.VenueRef
	Slab   schema.Slab
	Oracle schema.Oracle
}

// Aggregator fans out concurrent venue reads and joins the results.
type Aggregator struct {
	gw           gateway.Gateway
	metrics      *obs.Metrics
	maxStaleness int64
	now          func() int64
}

// New builds an aggregator. metrics may be nil. maxStaleness is in
// seconds.
func New(gw gateway.Gateway, metrics *obs.Metrics, maxStaleness int64) *Aggregator {
	return &Aggregator{
		gw:           gw,
		metrics:      metrics,
		maxStaleness: maxStaleness,
		now:          func() int64 { return time.Now().Unix() },
	}
}

type fetchResult struct {
	quote     Quote
	ok        bool
	staleOnly bool
	err       error
}

// FetchQuotes re-reads every venue's slab and oracle concurrently and
// returns the usable quotes in input order. Venues that fail to read
// or decode are dropped with a warning; venues whose only defect is a
// stale oracle are dropped as soft failures. With zero survivors the
// error is ErrStalePrice when staleness was the only problem seen,
// ErrNoLiquidity otherwise.
func (a *Aggregator) FetchQuotes(ctx context.Context, venues []schema.VenueRef) ([]Quote, error) {
	if len(venues) == 0 {
		return nil, exception.ErrNoLiquidity
	}
	start := time.Now()

	results := make([]fetchResult, len(venues))
	var wg sync.WaitGroup
	for i, venue := range venues {
		wg.Add(1)
		go func(i int, venue schema.VenueRef) {
			defer wg.Done()
			results[i] = a.fetchOne(ctx, venue)
		}(i, venue)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(venues))
	sawStaleOnly := false
	for i, r := range results {
		if r.ok {
			quotes = append(quotes, r.quote)
			a.metrics.IncVenueFetchOK()
			continue
		}
		logs.Warnf("drop venue %s: %+v", venues[i].SlabID.Short(), r.err)
		if r.staleOnly {
			sawStaleOnly = true
			a.metrics.IncVenueFetchStale()
		} else {
			a.metrics.IncVenueFetchDropped()
		}
	}
	a.metrics.ObserveFetch(time.Since(start))

	if len(quotes) == 0 {
		if sawStaleOnly {
			return nil, exception.ErrStalePrice
		}
		return nil, exception.ErrNoLiquidity
	}
	return quotes, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, venue schema.VenueRef) fetchResult {
	raw, err := a.gw.ReadAccount(ctx, venue.SlabID)
	if err != nil {
		return fetchResult{err: errors.Wrapf(exception.ErrVenueUnreadable, "slab read: %v", err)}
	}
	slab, err := codec.DecodeSlab(raw)
	if err != nil {
		return fetchResult{err: errors.Wrapf(exception.ErrVenueUnreadable, "slab decode: %v", err)}
	}

	raw, err = a.gw.ReadAccount(ctx, venue.OracleID)
	if err != nil {
		return fetchResult{err: errors.Wrapf(exception.ErrVenueUnreadable, "oracle read: %v", err)}
	}
	oracle, err := codec.DecodeOracle(raw, a.now(), a.maxStaleness)
	if err != nil {
		return fetchResult{err: errors.Wrapf(exception.ErrVenueUnreadable, "oracle decode: %v", err)}
	}
	if oracle.Stale {
		return fetchResult{
			staleOnly: true,
			err:       errors.Wrapf(exception.ErrStalePrice, "oracle ts %d", oracle.Timestamp),
		}
	}

	return fetchResult{
		quote: Quote{Venue: venue, Slab: slab, Oracle: oracle},
		ok:    true,
	}
}
