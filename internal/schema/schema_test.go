package schema

import (
	"math/big"
	"testing"
)

func TestScaledDecimal(t *testing.T) {
	cases := []struct {
		in     Price
		expect string
	}{
		{0, "0"},
		{1_000_000, "1"},
		{1_500_000, "1.5"},
		{-2_250_000, "-2.25"},
		{123, "0.000123"},
		{50_000_120_000, "50000.12"},
	}
	for _, c := range cases {
		if got := string(c.in.Decimal()); got != c.expect {
			t.Fatalf("Decimal(%d) = %q, want %q", c.in, got, c.expect)
		}
	}
	if got := string(Collateral(1_500_000_000).Decimal()); got != "1.5" {
		t.Fatalf("collateral = %q", got)
	}
}

func TestInt128RoundTripBig(t *testing.T) {
	values := []int64{0, 1, -1, 1 << 40, -(1 << 40)}
	for _, v := range values {
		i := Int128From64(v)
		if got := Int128FromBig(i.BigInt()); got != i {
			t.Fatalf("round trip %d: got %+v", v, got)
		}
		if i.Int64() != v {
			t.Fatalf("Int64() = %d, want %d", i.Int64(), v)
		}
	}

	wide := new(big.Int).Lsh(big.NewInt(3), 70)
	i := Int128FromBig(wide)
	if i.BigInt().Cmp(wide) != 0 {
		t.Fatalf("wide round trip: %s != %s", i.BigInt(), wide)
	}

	negWide := new(big.Int).Neg(wide)
	i = Int128FromBig(negWide)
	if i.BigInt().Cmp(negWide) != 0 {
		t.Fatalf("negative wide round trip: %s != %s", i.BigInt(), negWide)
	}
	if !i.IsNegative() {
		t.Fatal("expected negative")
	}
}

func TestSnapshotLookups(t *testing.T) {
	instrA := Pubkey{0xA}
	instrB := Pubkey{0xB}
	reg := Registry{
		Entries: []RegistryEntry{
			{SlabID: Pubkey{1}, Active: true},
			{SlabID: Pubkey{2}, Active: false},
			{SlabID: Pubkey{3}, Active: true},
		},
	}
	slabs := map[Pubkey]Slab{
		{1}: {Instrument: instrA},
		{3}: {Instrument: instrB},
	}
	snap := NewSnapshot(reg, slabs)

	if got := len(snap.Venues()); got != 2 {
		t.Fatalf("venues = %d, want 2", got)
	}
	if _, ok := snap.Venue(1); ok {
		t.Fatal("inactive venue should not resolve")
	}
	v, ok := snap.Venue(2)
	if !ok || v.Instrument != instrB {
		t.Fatalf("venue 2: %+v, %v", v, ok)
	}
	if got := snap.ForInstrument(instrA); len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("forInstrument = %+v", got)
	}
}

func TestSideAndOrderType(t *testing.T) {
	if !SideBuy.Valid() || !SideSell.Valid() || Side(2).Valid() {
		t.Fatal("side validity")
	}
	if SideBuy.Sign() != 1 || SideSell.Sign() != -1 {
		t.Fatal("side sign")
	}
	if !OrderTypeMarket.Valid() || OrderType(9).Valid() {
		t.Fatal("order type validity")
	}
}
