package aggregator

import (
	"context"

	"github.com/yanun0323/logs"

	"slabtrader/internal/codec"
	"slabtrader/internal/gateway"
	"slabtrader/internal/schema"
)

// LoadSnapshot reads the registry account and every active slab it
// references, joining them into a venue snapshot. Venues whose slab
// read or decode fails are logged and left out of the snapshot.
func LoadSnapshot(ctx context.Context, gw gateway.Gateway, registryAddr schema.Pubkey) (schema.Snapshot, error) {
	raw, err := gw.ReadAccount(ctx, registryAddr)
	if err != nil {
		return schema.Snapshot{}, err
	}
	reg, err := codec.DecodeRegistry(raw)
	if err != nil {
		return schema.Snapshot{}, err
	}

	slabs := make(map[schema.Pubkey]schema.Slab, len(reg.Entries))
	for _, entry := range reg.Entries {
		if !entry.Active {
			continue
		}
		raw, err := gw.ReadAccount(ctx, entry.SlabID)
		if err != nil {
			logs.Warnf("skip venue %s, read failed: %+v", entry.SlabID.Short(), err)
			continue
		}
		slab, err := codec.DecodeSlab(raw)
		if err != nil {
			logs.Warnf("skip venue %s, decode failed: %+v", entry.SlabID.Short(), err)
			continue
		}
		slabs[entry.SlabID] = slab
	}
	return schema.NewSnapshot(reg, slabs), nil
}

// ListVenues returns the venues in the snapshot quoting the given
// instrument.
func ListVenues(snap schema.Snapshot, instrument schema.Pubkey) []schema.VenueRef {
	return snap.ForInstrument(instrument)
}
