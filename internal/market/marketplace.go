package market

import (
	"fmt"
	"log/slog"

	"github.com/hoenas/econosim/internal/economy"
)

// Marketplace is the matching engine. It holds no between-tick state other
// than the fulfillment statistics; all book state lives in the Ledger
// passed into each call.
type Marketplace struct {
	Stats Stats `yaml:"stats"`

	// trades collects the settlement steps of the current tick for
	// telemetry and the live feed. Rebuilt every tick, not persisted.
	trades []Trade
}

// PlaceOffer submits an offer to the ledger. Escrow (removing the resources
// from the seller's stock) is the caller's responsibility before
// submission; market-owned offers carry no escrow at all. Returns false if
// the ledger rejects the offer.
func (m *Marketplace) PlaceOffer(l *Ledger, o Offer) (OfferHandle, bool) {
	h, ok := l.AddOffer(o)
	if !ok {
		return 0, false
	}
	if _, isCompany := o.Owner.AsCompany(); isCompany {
		m.Stats.OffersPlaced++
	}
	return h, true
}

// PlaceOrder submits an order to the ledger. The caller escrows
// Amount x MaxPricePerUnit from a company owner before submission.
func (m *Marketplace) PlaceOrder(l *Ledger, o Order) (OrderHandle, bool) {
	h, ok := l.AddOrder(o)
	if !ok {
		return 0, false
	}
	if _, isCompany := o.Owner.AsCompany(); isCompany {
		m.Stats.OrdersPlaced++
	}
	return h, true
}

// Tick runs one full clearing pass: match every live order against the
// cheapest eligible offers, sweep completed orders, expire stale intents
// with refunds, and recompute the order index. The price index is kept
// current incrementally during matching.
func (m *Marketplace) Tick(l *Ledger, companies []*economy.Company) {
	m.trades = m.trades[:0]
	m.executeOrders(l, companies)
	m.removeCompletedOrders(l)
	m.expireOrders(l, companies)
	m.expireOffers(l, companies)
	l.RefreshOrderIndex()
}

// LastTrades returns the settlement steps of the most recent Tick. The
// slice is reused across ticks; callers must not retain it.
func (m *Marketplace) LastTrades() []Trade {
	return m.trades
}

// executeOrders matches each live order until its remaining amount is zero
// or no offer at or under its price limit exists. Orders that cannot match
// stay live and are retried next tick.
func (m *Marketplace) executeOrders(l *Ledger, companies []*economy.Company) {
	// Snapshot the queue: settlement removes drained offers but never
	// removes orders, so every handle here stays resolvable for the pass.
	queue := make([]OrderHandle, len(l.OrderQueue))
	copy(queue, l.OrderQueue)

	for _, orderHandle := range queue {
		order, ok := l.Orders[orderHandle]
		if !ok {
			panic(fmt.Sprintf("market: order %d vanished during matching pass", orderHandle))
		}
		for order.Amount > 0 {
			offerHandle, offer, found := l.CheapestOffer(order.Resource)
			if !found || offer.PricePerUnit > order.MaxPricePerUnit {
				break
			}
			m.settle(l, companies, orderHandle, order, offerHandle, offer)
		}
	}
}

// settle executes one trade step between an order and the cheapest
// eligible offer at the offer's price.
func (m *Marketplace) settle(l *Ledger, companies []*economy.Company, orderHandle OrderHandle, order *Order, offerHandle OfferHandle, offer *Offer) {
	tradeAmount := order.Amount
	if offer.Amount < tradeAmount {
		tradeAmount = offer.Amount
	}
	price := offer.PricePerUnit

	if buyer, isCompany := order.Owner.AsCompany(); isCompany {
		// The buyer receives the goods plus the over-escrow: currency was
		// escrowed at the order's max price but settlement happens at the
		// offer price.
		companies[buyer].AddResource(order.Resource, tradeAmount)
		companies[buyer].AddCurrency((order.MaxPricePerUnit - price) * tradeAmount)
	}
	if seller, isCompany := offer.Owner.AsCompany(); isCompany {
		companies[seller].AddCurrency(price * tradeAmount)
	}

	order.Amount -= tradeAmount
	offer.Amount -= tradeAmount

	m.countFill(order.Amount, order.Owner, &m.Stats.OrdersFulfilled, &m.Stats.OrdersPartlyFulfilled)
	m.countFill(offer.Amount, offer.Owner, &m.Stats.OffersFulfilled, &m.Stats.OffersPartlyFulfilled)

	m.trades = append(m.trades, Trade{
		Resource:     order.Resource,
		Amount:       tradeAmount,
		PricePerUnit: price,
		Buyer:        order.Owner,
		Seller:       offer.Owner,
	})
	slog.Debug("trade settled",
		"resource", order.Resource,
		"amount", tradeAmount,
		"price", price,
		"order", orderHandle,
		"offer", offerHandle,
	)

	if offer.Amount <= 0 {
		l.RemoveOffer(offerHandle)
	}
}

// countFill records one side of a settlement step: fully fulfilled when the
// side's remaining amount reached zero, partly fulfilled otherwise. Market
// flow is not counted.
func (m *Marketplace) countFill(remaining float64, owner Owner, full, partial *uint64) {
	if _, isCompany := owner.AsCompany(); !isCompany {
		return
	}
	if remaining <= 0 {
		*full++
	} else {
		*partial++
	}
}

// removeCompletedOrders sweeps orders whose amount reached zero. Matching
// leaves completed orders in place, so this pass is where they leave the
// ledger. Running it twice in a row removes nothing the second time.
func (m *Marketplace) removeCompletedOrders(l *Ledger) {
	var completed []OrderHandle
	for _, h := range l.OrderQueue {
		if l.Orders[h].Amount <= 0 {
			completed = append(completed, h)
		}
	}
	for _, h := range completed {
		l.RemoveOrder(h)
	}
}

// expireOrders counts down time-to-live on every remaining live order and
// removes the ones that reach zero, refunding the full remaining escrow to
// company owners: the order never found a willing seller in its lifetime.
func (m *Marketplace) expireOrders(l *Ledger, companies []*economy.Company) {
	var dead []OrderHandle
	for _, h := range l.OrderQueue {
		order := l.Orders[h]
		order.TimeToLive--
		if order.TimeToLive <= 0 {
			dead = append(dead, h)
		}
	}
	for _, h := range dead {
		order := l.Orders[h]
		if buyer, isCompany := order.Owner.AsCompany(); isCompany {
			companies[buyer].AddCurrency(order.MaxPricePerUnit * order.Amount)
		}
		l.RemoveOrder(h)
	}
}

// expireOffers is the sell-side counterpart: expired offers return their
// remaining escrowed resources to the owner's stock.
func (m *Marketplace) expireOffers(l *Ledger, companies []*economy.Company) {
	var dead []OfferHandle
	for _, h := range l.OfferQueue {
		offer := l.Offers[h]
		offer.TimeToLive--
		if offer.TimeToLive <= 0 {
			dead = append(dead, h)
		}
	}
	for _, h := range dead {
		offer := l.Offers[h]
		if seller, isCompany := offer.Owner.AsCompany(); isCompany {
			companies[seller].AddResource(offer.Resource, offer.Amount)
		}
		l.RemoveOffer(h)
	}
}
