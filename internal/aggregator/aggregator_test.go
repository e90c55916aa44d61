package aggregator

import (
	"context"
	"errors"
	"testing"

	"slabtrader/internal/codec"
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

type fakeGateway struct {
	accounts map[schema.Pubkey][]byte
}

func (f *fakeGateway) ReadAccount(ctx context.Context, address schema.Pubkey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := f.accounts[address]
	if !ok {
		return nil, exception.ErrAccountNotFound
	}
	return data, nil
}

func (f *fakeGateway) SubmitTransaction(context.Context, []byte) (string, error) {
	return "sig", nil
}

func pk(b byte) schema.Pubkey {
	var p schema.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

const testNow = int64(1_700_000_000)

func testVenue(n byte, instrument schema.Pubkey) schema.VenueRef {
	return schema.VenueRef{
		Index:      uint16(n),
		SlabID:     pk(0x10 + n),
		OracleID:   pk(0x30 + n),
		Instrument: instrument,
	}
}

func populate(f *fakeGateway, venue schema.VenueRef, oracleTs int64) {
	f.accounts[venue.SlabID] = codec.EncodeSlab(nil, schema.Slab{
		Seqno:      1,
		Instrument: venue.Instrument,
		MarkPrice:  100_000_000,
		Quotes: schema.QuoteCache{
			Seqno: 1,
			Asks:  []schema.QuoteLevel{{Price: 101_000_000, AvailQty: 5_000_000}},
			Bids:  []schema.QuoteLevel{{Price: 99_000_000, AvailQty: 5_000_000}},
		},
	})
	f.accounts[venue.OracleID] = codec.EncodeNativeOracle(nil, schema.Oracle{
		Instrument: venue.Instrument,
		Price:      100_000_000,
		Timestamp:  oracleTs,
		Confidence: 1,
	}, pk(0x77))
}

func newTestAggregator(f *fakeGateway) *Aggregator {
	a := New(f, nil, 60)
	a.now = func() int64 { return testNow }
	return a
}

func TestFetchQuotesDropsUnreadableVenue(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venues := []schema.VenueRef{testVenue(0, instr), testVenue(1, instr), testVenue(2, instr)}
	populate(f, venues[0], testNow)
	populate(f, venues[2], testNow)
	// venues[1] has no accounts at all

	quotes, err := newTestAggregator(f).FetchQuotes(t.Context(), venues)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(quotes))
	}
	if quotes[0].Venue.Index != 0 || quotes[1].Venue.Index != 2 {
		t.Fatalf("order not preserved: %d, %d", quotes[0].Venue.Index, quotes[1].Venue.Index)
	}
}

func TestFetchOneTagsUnreadableVenue(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venue := testVenue(0, instr)

	r := newTestAggregator(f).fetchOne(t.Context(), venue)
	if r.ok {
		t.Fatal("missing accounts should not produce a quote")
	}
	if !errors.Is(r.err, exception.ErrVenueUnreadable) {
		t.Fatalf("got %v", r.err)
	}

	// A decodable slab with a stale oracle is a soft failure, not an
	// unreadable venue.
	populate(f, venue, testNow-3600)
	r = newTestAggregator(f).fetchOne(t.Context(), venue)
	if !r.staleOnly || !errors.Is(r.err, exception.ErrStalePrice) {
		t.Fatalf("got staleOnly=%v err=%v", r.staleOnly, r.err)
	}
}

func TestFetchQuotesAllUnreadable(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venues := []schema.VenueRef{testVenue(0, instr), testVenue(1, instr), testVenue(2, instr)}

	_, err := newTestAggregator(f).FetchQuotes(t.Context(), venues)
	if !errors.Is(err, exception.ErrNoLiquidity) {
		t.Fatalf("got %v", err)
	}
}

func TestFetchQuotesAllStale(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venues := []schema.VenueRef{testVenue(0, instr), testVenue(1, instr)}
	populate(f, venues[0], testNow-3600)
	populate(f, venues[1], testNow-3600)

	_, err := newTestAggregator(f).FetchQuotes(t.Context(), venues)
	if !errors.Is(err, exception.ErrStalePrice) {
		t.Fatalf("got %v", err)
	}
}

func TestFetchQuotesMixedStaleAndDead(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venues := []schema.VenueRef{testVenue(0, instr), testVenue(1, instr)}
	populate(f, venues[0], testNow-3600)
	// venues[1] unreadable; staleness was still seen, so the softer
	// error wins
	_, err := newTestAggregator(f).FetchQuotes(t.Context(), venues)
	if !errors.Is(err, exception.ErrStalePrice) {
		t.Fatalf("got %v", err)
	}
}

func TestFetchQuotesCancelled(t *testing.T) {
	instr := pk(9)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	venues := []schema.VenueRef{testVenue(0, instr)}
	populate(f, venues[0], testNow)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := newTestAggregator(f).FetchQuotes(ctx, venues)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadSnapshotSkipsBrokenVenues(t *testing.T) {
	instr := pk(9)
	registryAddr := pk(0x01)
	f := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}

	good := testVenue(0, instr)
	broken := testVenue(1, instr)
	populate(f, good, testNow)
	f.accounts[broken.SlabID] = []byte{1, 2, 3}

	f.accounts[registryAddr] = codec.EncodeRegistry(nil, schema.Registry{
		Entries: []schema.RegistryEntry{
			{SlabID: good.SlabID, OracleID: good.OracleID, Active: true},
			{SlabID: broken.SlabID, OracleID: broken.OracleID, Active: true},
			{SlabID: pk(0x55), OracleID: pk(0x56), Active: false},
		},
	})

	snap, err := LoadSnapshot(t.Context(), f, registryAddr)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(snap.Venues()); got != 1 {
		t.Fatalf("venues = %d, want 1", got)
	}
	if got := ListVenues(snap, instr); len(got) != 1 || got[0].SlabID != good.SlabID {
		t.Fatalf("list = %+v", got)
	}
}
