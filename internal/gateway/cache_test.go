package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"slabtrader/internal/codec"
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

type fakeGateway struct {
	accounts map[schema.Pubkey][]byte
	reads    int
}

func (f *fakeGateway) ReadAccount(_ context.Context, address schema.Pubkey) ([]byte, error) {
	f.reads++
	data, ok := f.accounts[address]
	if !ok {
		return nil, exception.ErrAccountNotFound
	}
	return data, nil
}

func (f *fakeGateway) SubmitTransaction(context.Context, []byte) (string, error) {
	return "sig", nil
}

func slabBytes(seqno uint32) []byte {
	return codec.EncodeSlab(nil, schema.Slab{Seqno: seqno, Quotes: schema.QuoteCache{Seqno: seqno}})
}

func newTestCache(inner Gateway, ttl time.Duration) (*CachedGateway, *time.Time) {
	clock := time.Unix(1_700_000_000, 0)
	g := NewCachedGateway(inner, nil, ttl)
	g.now = func() time.Time { return clock }
	return g, &clock
}

func TestCacheServesWithinWindow(t *testing.T) {
	addr := schema.Pubkey{1}
	inner := &fakeGateway{accounts: map[schema.Pubkey][]byte{addr: slabBytes(7)}}
	g, _ := newTestCache(inner, time.Second)

	if _, err := g.ReadAccount(t.Context(), addr); err != nil {
		t.Fatalf("read: %v", err)
	}
	if inner.reads != 1 {
		t.Fatalf("reads = %d, want 1", inner.reads)
	}

	data, err := g.ReadAccount(t.Context(), addr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if inner.reads != 1 {
		t.Fatalf("fresh entry should skip the network read, reads = %d", inner.reads)
	}
	if seq, ok := codec.PeekSlabSeqno(data); !ok || seq != 7 {
		t.Fatalf("seqno = %d, want 7", seq)
	}
}

func TestCacheRefreshesAfterWindow(t *testing.T) {
	addr := schema.Pubkey{1}
	inner := &fakeGateway{accounts: map[schema.Pubkey][]byte{addr: slabBytes(7)}}
	g, clock := newTestCache(inner, time.Second)

	if _, err := g.ReadAccount(t.Context(), addr); err != nil {
		t.Fatalf("read: %v", err)
	}

	inner.accounts[addr] = slabBytes(8)
	*clock = clock.Add(2 * time.Second)

	data, err := g.ReadAccount(t.Context(), addr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if inner.reads != 2 {
		t.Fatalf("expired entry should read through, reads = %d", inner.reads)
	}
	if seq, ok := codec.PeekSlabSeqno(data); !ok || seq != 8 {
		t.Fatalf("seqno = %d, want 8", seq)
	}
}

func TestCacheDisabledWithoutWindow(t *testing.T) {
	addr := schema.Pubkey{1}
	inner := &fakeGateway{accounts: map[schema.Pubkey][]byte{addr: slabBytes(7)}}
	g, _ := newTestCache(inner, 0)

	for i := 0; i < 3; i++ {
		if _, err := g.ReadAccount(t.Context(), addr); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if inner.reads != 3 {
		t.Fatalf("reads = %d, want 3", inner.reads)
	}
}

func TestCacheSkipsNonSlabRecords(t *testing.T) {
	addr := schema.Pubkey{2}
	inner := &fakeGateway{accounts: map[schema.Pubkey][]byte{
		addr: codec.EncodeVault(nil, schema.Vault{}),
	}}
	g, _ := newTestCache(inner, time.Second)

	if _, err := g.ReadAccount(t.Context(), addr); err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := g.ReadAccount(t.Context(), addr); err != nil {
		t.Fatalf("read: %v", err)
	}
	if inner.reads != 2 {
		t.Fatalf("non-slab records must always read through, reads = %d", inner.reads)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.entries) != 0 {
		t.Fatalf("non-slab record cached: %d entries", len(g.entries))
	}
}

func TestCachePropagatesNotFound(t *testing.T) {
	inner := &fakeGateway{accounts: map[schema.Pubkey][]byte{}}
	g, _ := newTestCache(inner, time.Second)

	_, err := g.ReadAccount(t.Context(), schema.Pubkey{9})
	if !errors.Is(err, exception.ErrAccountNotFound) {
		t.Fatalf("got %v", err)
	}
}
