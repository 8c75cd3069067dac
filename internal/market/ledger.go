package market

import "github.com/hoenas/econosim/internal/economy"

// Quote is a best-price index entry: the handle of the best live intent
// for a resource and its price.
type Quote struct {
	Handle int     `yaml:"handle"`
	Price  float64 `yaml:"price"`
}

// Ledger is the shared book of live offers and orders, keyed by handle,
// plus the derived per-resource best-price indices. Iteration over live
// intents follows insertion order (the handle queues), so equal-price
// tie-breaks are deterministic: earliest placed wins.
type Ledger struct {
	Offers map[OfferHandle]*Offer `yaml:"offers"`
	Orders map[OrderHandle]*Order `yaml:"orders"`

	// Insertion-ordered live handles. Kept alongside the maps so scans
	// do not depend on map iteration order.
	OfferQueue []OfferHandle `yaml:"offer_queue"`
	OrderQueue []OrderHandle `yaml:"order_queue"`

	NextOfferID OfferHandle `yaml:"next_offer_id"`
	NextOrderID OrderHandle `yaml:"next_order_id"`

	// PriceIndex caches the cheapest live offer per resource, OrderIndex
	// the highest live bid. A nil entry means no live intent exists.
	PriceIndex map[economy.ResourceHandle]*Quote `yaml:"price_index"`
	OrderIndex map[economy.ResourceHandle]*Quote `yaml:"order_index"`

	ResourceCount int `yaml:"resource_count"`
}

// NewLedger creates an empty ledger for the given resource count.
func NewLedger(resourceCount int) *Ledger {
	l := &Ledger{
		Offers:        make(map[OfferHandle]*Offer),
		Orders:        make(map[OrderHandle]*Order),
		PriceIndex:    make(map[economy.ResourceHandle]*Quote),
		OrderIndex:    make(map[economy.ResourceHandle]*Quote),
		ResourceCount: resourceCount,
	}
	for r := 0; r < resourceCount; r++ {
		l.PriceIndex[r] = nil
		l.OrderIndex[r] = nil
	}
	return l
}

// AddOffer validates and inserts an offer, assigns the next monotonic
// handle, and refreshes the price index for the offer's resource.
// Invalid offers (non-positive amount, resource out of range) are rejected
// without mutation.
func (l *Ledger) AddOffer(o Offer) (OfferHandle, bool) {
	if o.Amount <= 0 || o.Resource < 0 || o.Resource >= l.ResourceCount {
		return 0, false
	}
	l.NextOfferID++
	h := l.NextOfferID
	l.Offers[h] = &o
	l.OfferQueue = append(l.OfferQueue, h)
	l.refreshPriceFor(o.Resource)
	return h, true
}

// AddOrder is the buy-side counterpart of AddOffer, refreshing the order
// index instead.
func (l *Ledger) AddOrder(o Order) (OrderHandle, bool) {
	if o.Amount <= 0 || o.Resource < 0 || o.Resource >= l.ResourceCount {
		return 0, false
	}
	l.NextOrderID++
	h := l.NextOrderID
	l.Orders[h] = &o
	l.OrderQueue = append(l.OrderQueue, h)
	l.refreshOrderFor(o.Resource)
	return h, true
}

// RemoveOffer deletes an offer and refreshes the price index for its
// resource. Removing an unknown handle is a no-op.
func (l *Ledger) RemoveOffer(h OfferHandle) {
	o, ok := l.Offers[h]
	if !ok {
		return
	}
	delete(l.Offers, h)
	l.OfferQueue = dropHandle(l.OfferQueue, h)
	l.refreshPriceFor(o.Resource)
}

// RemoveOrder deletes an order and refreshes the order index for its
// resource.
func (l *Ledger) RemoveOrder(h OrderHandle) {
	o, ok := l.Orders[h]
	if !ok {
		return
	}
	delete(l.Orders, h)
	l.OrderQueue = dropHandle(l.OrderQueue, h)
	l.refreshOrderFor(o.Resource)
}

// CheapestOffer scans live offers in insertion order and returns the
// cheapest one for a resource. At equal prices the earliest-placed offer
// wins.
func (l *Ledger) CheapestOffer(resource economy.ResourceHandle) (OfferHandle, *Offer, bool) {
	var bestHandle OfferHandle
	var best *Offer
	for _, h := range l.OfferQueue {
		o := l.Offers[h]
		if o.Resource != resource {
			continue
		}
		if best == nil || o.PricePerUnit < best.PricePerUnit {
			bestHandle, best = h, o
		}
	}
	return bestHandle, best, best != nil
}

// HighestOrder returns the live order with the highest bid for a resource.
func (l *Ledger) HighestOrder(resource economy.ResourceHandle) (OrderHandle, *Order, bool) {
	var bestHandle OrderHandle
	var best *Order
	for _, h := range l.OrderQueue {
		o := l.Orders[h]
		if o.Resource != resource {
			continue
		}
		if best == nil || o.MaxPricePerUnit > best.MaxPricePerUnit {
			bestHandle, best = h, o
		}
	}
	return bestHandle, best, best != nil
}

// BestPrice returns the cached cheapest offer price for a resource.
func (l *Ledger) BestPrice(resource economy.ResourceHandle) (float64, bool) {
	q := l.PriceIndex[resource]
	if q == nil {
		return 0, false
	}
	return q.Price, true
}

// BestBid returns the cached highest order price for a resource.
func (l *Ledger) BestBid(resource economy.ResourceHandle) (float64, bool) {
	q := l.OrderIndex[resource]
	if q == nil {
		return 0, false
	}
	return q.Price, true
}

// RefreshPriceIndex recomputes the cheapest-offer cache for every resource.
func (l *Ledger) RefreshPriceIndex() {
	for r := 0; r < l.ResourceCount; r++ {
		l.refreshPriceFor(r)
	}
}

// RefreshOrderIndex recomputes the highest-bid cache for every resource.
func (l *Ledger) RefreshOrderIndex() {
	for r := 0; r < l.ResourceCount; r++ {
		l.refreshOrderFor(r)
	}
}

func (l *Ledger) refreshPriceFor(resource economy.ResourceHandle) {
	if h, o, ok := l.CheapestOffer(resource); ok {
		l.PriceIndex[resource] = &Quote{Handle: h, Price: o.PricePerUnit}
	} else {
		l.PriceIndex[resource] = nil
	}
}

func (l *Ledger) refreshOrderFor(resource economy.ResourceHandle) {
	if h, o, ok := l.HighestOrder(resource); ok {
		l.OrderIndex[resource] = &Quote{Handle: h, Price: o.MaxPricePerUnit}
	} else {
		l.OrderIndex[resource] = nil
	}
}

func dropHandle(queue []int, h int) []int {
	for i, v := range queue {
		if v == h {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}
