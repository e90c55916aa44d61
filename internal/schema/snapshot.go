package schema

// VenueRef pairs a registry entry with its decoded slab header. It is
// the unit the aggregator and router work with.
type VenueRef struct {
	Index      uint16
	SlabID     Pubkey
	OracleID   Pubkey
	Instrument Pubkey
	Slab       Slab
}

// Snapshot is a point-in-time view of the venue registry joined with
// the slab accounts it references. Lookups never touch the ledger.
type Snapshot struct {
	venues  []VenueRef
	byIndex map[uint16]int
	byInstr map[Pubkey][]int
}

// NewSnapshot joins registry entries with their decoded slabs. Entries
// without a decoded slab (inactive, or the slab read failed upstream)
// are skipped.
func NewSnapshot(reg Registry, slabs map[Pubkey]Slab) Snapshot {
	s := Snapshot{
		byIndex: make(map[uint16]int, len(reg.Entries)),
		byInstr: make(map[Pubkey][]int),
	}
	for i, e := range reg.Entries {
		if !e.Active {
			continue
		}
		slab, ok := slabs[e.SlabID]
		if !ok {
			continue
		}
		ref := VenueRef{
			Index:      uint16(i),
			SlabID:     e.SlabID,
			OracleID:   e.OracleID,
			Instrument: slab.Instrument,
			Slab:       slab,
		}
		s.byIndex[ref.Index] = len(s.venues)
		s.byInstr[ref.Instrument] = append(s.byInstr[ref.Instrument], len(s.venues))
		s.venues = append(s.venues, ref)
	}
	return s
}

// Venue returns the venue at the given registry index.
func (s Snapshot) Venue(index uint16) (VenueRef, bool) {
	i, ok := s.byIndex[index]
	if !ok {
		return VenueRef{}, false
	}
	return s.venues[i], true
}

// Venues returns all joined venues in registry order.
func (s Snapshot) Venues() []VenueRef {
	out := make([]VenueRef, len(s.venues))
	copy(out, s.venues)
	return out
}

// ForInstrument returns the venues quoting the given instrument, in
// registry order.
func (s Snapshot) ForInstrument(instrument Pubkey) []VenueRef {
	idxs := s.byInstr[instrument]
	out := make([]VenueRef, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.venues[i])
	}
	return out
}
