package market

import "testing"

func TestPlacementValidation(t *testing.T) {
	l := NewLedger(2)
	var m Marketplace

	cases := []struct {
		name  string
		offer Offer
	}{
		{"zero amount", Offer{Resource: 0, Amount: 0, PricePerUnit: 1, Owner: CompanyOwner(0)}},
		{"negative amount", Offer{Resource: 0, Amount: -3, PricePerUnit: 1, Owner: CompanyOwner(0)}},
		{"resource out of range", Offer{Resource: 2, Amount: 1, PricePerUnit: 1, Owner: CompanyOwner(0)}},
	}
	for _, tc := range cases {
		if _, ok := m.PlaceOffer(l, tc.offer); ok {
			t.Errorf("%s: offer should be rejected", tc.name)
		}
	}
	if len(l.Offers) != 0 || m.Stats.OffersPlaced != 0 {
		t.Fatal("rejected placements must not mutate ledger or stats")
	}

	if _, ok := m.PlaceOrder(l, Order{Resource: 2, Amount: 1, MaxPricePerUnit: 1}); ok {
		t.Fatal("order with out-of-range resource should be rejected")
	}
}

func TestHandleAllocationMonotonic(t *testing.T) {
	l := NewLedger(1)
	var m Marketplace

	h1, _ := m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 1, TimeToLive: 10})
	h2, _ := m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 1, TimeToLive: 10})
	if h2 <= h1 {
		t.Fatalf("handles not monotonic: %d then %d", h1, h2)
	}

	// Removal must not free the handle for reuse.
	l.RemoveOffer(h2)
	h3, _ := m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 1, TimeToLive: 10})
	if h3 <= h2 {
		t.Fatalf("handle %d reused after removing %d", h3, h2)
	}
}

func TestStatsCountCompanyOwnersOnly(t *testing.T) {
	l := NewLedger(1)
	var m Marketplace

	m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 1, Owner: MarketOwner(), TimeToLive: 10})
	m.PlaceOrder(l, Order{Resource: 0, Amount: 1, MaxPricePerUnit: 1, Owner: MarketOwner(), TimeToLive: 10})
	if m.Stats.OffersPlaced != 0 || m.Stats.OrdersPlaced != 0 {
		t.Fatal("market-owned placements must not count")
	}

	m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 1, Owner: CompanyOwner(0), TimeToLive: 10})
	m.PlaceOrder(l, Order{Resource: 0, Amount: 1, MaxPricePerUnit: 1, Owner: CompanyOwner(0), TimeToLive: 10})
	if m.Stats.OffersPlaced != 1 || m.Stats.OrdersPlaced != 1 {
		t.Fatalf("company placements not counted: %+v", m.Stats)
	}
}

func TestPriceIndexFreshness(t *testing.T) {
	l := NewLedger(1)
	var m Marketplace

	if _, ok := l.BestPrice(0); ok {
		t.Fatal("empty ledger should have no best price")
	}

	m.PlaceOffer(l, Offer{Resource: 0, Amount: 5, PricePerUnit: 9, TimeToLive: 10})
	cheap, _ := m.PlaceOffer(l, Offer{Resource: 0, Amount: 5, PricePerUnit: 4, TimeToLive: 10})
	m.PlaceOffer(l, Offer{Resource: 0, Amount: 5, PricePerUnit: 6, TimeToLive: 10})

	if p, ok := l.BestPrice(0); !ok || p != 4 {
		t.Fatalf("best price = %f, want 4", p)
	}
	if l.PriceIndex[0].Handle != cheap {
		t.Fatalf("price index handle = %d, want %d", l.PriceIndex[0].Handle, cheap)
	}

	// Removing the cheapest offer must surface the next-cheapest.
	l.RemoveOffer(cheap)
	if p, ok := l.BestPrice(0); !ok || p != 6 {
		t.Fatalf("best price after removal = %f, want 6", p)
	}

	l.RemoveOffer(l.PriceIndex[0].Handle)
	l.RemoveOffer(l.PriceIndex[0].Handle)
	if _, ok := l.BestPrice(0); ok {
		t.Fatal("drained resource should have no best price")
	}
}

func TestOrderIndexTracksHighestBid(t *testing.T) {
	l := NewLedger(1)
	var m Marketplace

	m.PlaceOrder(l, Order{Resource: 0, Amount: 1, MaxPricePerUnit: 3, TimeToLive: 10})
	high, _ := m.PlaceOrder(l, Order{Resource: 0, Amount: 1, MaxPricePerUnit: 8, TimeToLive: 10})
	m.PlaceOrder(l, Order{Resource: 0, Amount: 1, MaxPricePerUnit: 5, TimeToLive: 10})

	if p, ok := l.BestBid(0); !ok || p != 8 {
		t.Fatalf("best bid = %f, want 8", p)
	}
	if l.OrderIndex[0].Handle != high {
		t.Fatalf("order index handle = %d, want %d", l.OrderIndex[0].Handle, high)
	}
}

func TestEqualPriceTieBreakIsEarliestPlaced(t *testing.T) {
	l := NewLedger(1)
	var m Marketplace

	first, _ := m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 5, TimeToLive: 10})
	m.PlaceOffer(l, Offer{Resource: 0, Amount: 1, PricePerUnit: 5, TimeToLive: 10})

	h, _, ok := l.CheapestOffer(0)
	if !ok || h != first {
		t.Fatalf("cheapest at equal price = handle %d, want earliest %d", h, first)
	}
}
