// Package engine drives the simulation: the World ties the economy, the
// market ledger, and the matching engine together and advances them one
// tick at a time.
package engine

import (
	"log/slog"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/hoenas/econosim/internal/agent"
	"github.com/hoenas/econosim/internal/economy"
	"github.com/hoenas/econosim/internal/market"
)

// yieldAmplitude bounds the noise-driven variation of producer output.
const yieldAmplitude = 0.25

// World holds the complete simulation state. It is mutated only from
// within a single tick's control flow; concurrent readers (the HTTP API)
// go through View.
type World struct {
	Seed           int64   `yaml:"seed"`
	ProcessorPrice float64 `yaml:"processor_price"`
	// IntentTTL is the lifetime given to company-placed intents.
	IntentTTL int `yaml:"intent_ttl"`

	Resources *economy.ResourceCatalog `yaml:"resource_data"`
	Recipes   *economy.RecipeTable     `yaml:"recipe_data"`
	Companies []*economy.Company       `yaml:"companies"`
	Producers []*economy.Producer      `yaml:"producers"`
	Consumers []*economy.Consumer      `yaml:"consumers"`

	Ledger *market.Ledger      `yaml:"market_data"`
	Market *market.Marketplace `yaml:"market_place"`

	ActionSpace agent.ActionSpace `yaml:"action_space"`
	// Deciders holds one controller per company, index-aligned with
	// Companies. Serialized with the world so trained policies survive.
	Deciders []*agent.QLearner `yaml:"deciders"`

	LastTick uint64 `yaml:"last_tick"`

	mu      sync.RWMutex
	noise   opensimplex.Noise
	pending []decision
}

// decision remembers what a company saw and chose this tick, so the
// post-clearing reward can be fed back to its controller.
type decision struct {
	state  agent.CompanyState
	action int
	valid  bool
}

// NewWorld creates an empty world over the given catalog and recipes.
func NewWorld(resources *economy.ResourceCatalog, recipes *economy.RecipeTable, seed int64) *World {
	return &World{
		Seed:        seed,
		IntentTTL:   100,
		Resources:   resources,
		Recipes:     recipes,
		Ledger:      market.NewLedger(resources.Count()),
		Market:      &market.Marketplace{},
		ActionSpace: agent.NewActionSpace(resources.Count(), recipes.Count()),
	}
}

// View runs fn with the world read-locked. Used by API handlers that read
// state while the engine loop ticks.
func (w *World) View(fn func(*World)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(w)
}

// CurrentTick returns the most recently completed tick number.
func (w *World) CurrentTick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.LastTick
}

// Tick advances the world one step in the fixed order: producers emit
// ownerless supply, consumers emit ownerless demand, companies act on the
// previous tick's cleared state, then the matching engine clears the
// ledger. Agents never see same-tick settlement results.
func (w *World) Tick(train bool, exploration float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.LastTick++
	w.updateProducers()
	w.updateConsumers()
	w.updateCompanies(train, exploration)
	w.Market.Tick(w.Ledger, w.Companies)
	w.rewardCompanies(train)
}

func (w *World) updateProducers() {
	for i, p := range w.Producers {
		for _, intent := range p.Tick(w.producerYield(i)) {
			w.Market.PlaceOffer(w.Ledger, market.Offer{
				Resource:     intent.Resource,
				Amount:       intent.Amount,
				PricePerUnit: intent.PricePerUnit,
				Owner:        market.MarketOwner(),
				TimeToLive:   intent.TimeToLive,
			})
		}
	}
}

func (w *World) updateConsumers() {
	for _, c := range w.Consumers {
		for _, intent := range c.Tick() {
			w.Market.PlaceOrder(w.Ledger, market.Order{
				Resource:        intent.Resource,
				Amount:          intent.Amount,
				MaxPricePerUnit: intent.MaxPricePerUnit,
				Owner:           market.MarketOwner(),
				TimeToLive:      intent.TimeToLive,
			})
		}
	}
}

func (w *World) updateCompanies(train bool, exploration float64) {
	if len(w.pending) != len(w.Companies) {
		w.pending = make([]decision, len(w.Companies))
	}
	explore := 0.0
	if train {
		explore = exploration
	}

	for i, company := range w.Companies {
		company.Tick(w.Recipes)

		w.pending[i] = decision{}
		if i < len(w.Deciders) && w.Deciders[i] != nil {
			var d agent.Decider = w.Deciders[i]
			state := w.observe(i)
			action := d.Decide(state, w.ActionSpace, explore)
			w.applyAction(company, w.ActionSpace.Actions[action])
			w.pending[i] = decision{state: state, action: action, valid: true}
		}

		w.submitIntents(i, company)
	}
}

// applyAction translates a discrete action into company state changes or
// queued intents. Trade actions price themselves off the current indices:
// buys bid the best ask, sells ask the best bid (or join the best ask when
// no bid exists).
func (w *World) applyAction(company *economy.Company, action agent.Action) {
	switch action.Kind {
	case agent.ActionNothing:
	case agent.ActionBuyProcessor:
		company.BuyProcessor(action.Recipe, w.Recipes, w.ProcessorPrice)
	case agent.ActionSellProcessor:
		company.SellProcessor(action.Recipe, w.ProcessorPrice)
	case agent.ActionBuyResource:
		price, ok := w.Ledger.BestPrice(action.Resource)
		if !ok {
			return
		}
		company.QueueOrder(action.Resource, action.Amount, price, w.IntentTTL)
	case agent.ActionSellResource:
		price, ok := w.Ledger.BestBid(action.Resource)
		if !ok {
			price, ok = w.Ledger.BestPrice(action.Resource)
		}
		if !ok {
			return
		}
		company.QueueOffer(action.Resource, action.Amount, price, w.IntentTTL)
	}
}

// submitIntents escrows and places the company's queued intents. Offers
// escrow resources from stock, orders escrow currency at the max price;
// intents the company cannot cover are dropped.
func (w *World) submitIntents(handle economy.CompanyHandle, company *economy.Company) {
	for _, intent := range company.PendingOffers {
		if !company.Stock.RemoveIfPossible(intent.Resource, intent.Amount) {
			continue
		}
		_, ok := w.Market.PlaceOffer(w.Ledger, market.Offer{
			Resource:     intent.Resource,
			Amount:       intent.Amount,
			PricePerUnit: intent.PricePerUnit,
			Owner:        market.CompanyOwner(handle),
			TimeToLive:   intent.TimeToLive,
		})
		if !ok {
			company.Stock.Add(intent.Resource, intent.Amount)
		}
	}
	company.PendingOffers = company.PendingOffers[:0]

	for _, intent := range company.PendingOrders {
		escrow := intent.MaxPricePerUnit * intent.Amount
		if company.Currency < escrow {
			continue
		}
		company.Currency -= escrow
		_, ok := w.Market.PlaceOrder(w.Ledger, market.Order{
			Resource:        intent.Resource,
			Amount:          intent.Amount,
			MaxPricePerUnit: intent.MaxPricePerUnit,
			Owner:           market.CompanyOwner(handle),
			TimeToLive:      intent.TimeToLive,
		})
		if !ok {
			company.Currency += escrow
		}
	}
	company.PendingOrders = company.PendingOrders[:0]
}

// rewardCompanies re-marks every company's value against the cleared
// ledger and feeds the delta back to the controllers as reward.
func (w *World) rewardCompanies(train bool) {
	priceOf := func(r economy.ResourceHandle) (float64, bool) {
		return w.Ledger.BestPrice(r)
	}
	for i, company := range w.Companies {
		delta := company.UpdateValue(priceOf, w.ProcessorPrice)
		if !train || !w.pending[i].valid {
			continue
		}
		w.Deciders[i].Learn(w.pending[i].state, w.pending[i].action, delta, w.observe(i), w.ActionSpace)
	}
}

// observe builds a company's observable state vector from its balances and
// the ledger indices.
func (w *World) observe(handle economy.CompanyHandle) agent.CompanyState {
	company := w.Companies[handle]
	resourceCount := w.Resources.Count()
	recipeCount := w.Recipes.Count()

	state := agent.CompanyState{
		Stock:      make([]float64, resourceCount),
		Currency:   company.Currency,
		PriceIndex: make([]float64, resourceCount),
		OrderIndex: make([]float64, resourceCount),
		Processors: make([]float64, recipeCount),
		Production: make([]float64, recipeCount),
	}
	for r := 0; r < resourceCount; r++ {
		state.Stock[r] = company.Stock.Amount(r)
		if price, ok := w.Ledger.BestPrice(r); ok {
			state.PriceIndex[r] = price
		}
		if bid, ok := w.Ledger.BestBid(r); ok {
			state.OrderIndex[r] = bid
		}
	}
	for _, p := range company.Processors {
		state.Processors[p.Recipe]++
		if p.ProducedLastTick {
			state.Production[p.Recipe]++
		}
	}
	return state
}

// producerYield modulates producer output with smooth simplex noise over
// the tick axis, one noise lane per producer.
func (w *World) producerYield(producer int) float64 {
	if w.noise == nil {
		w.noise = opensimplex.New(w.Seed)
	}
	yield := 1 + yieldAmplitude*w.noise.Eval2(float64(w.LastTick)*0.01, float64(producer))
	if yield < 0 {
		return 0
	}
	return yield
}

// LogInfo writes a world status report to the log: company balances and
// the live order book.
func (w *World) LogInfo() {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, company := range w.Companies {
		slog.Info("company status",
			"company", company.Name,
			"currency", company.Currency,
			"value", company.Value,
			"processors", len(company.Processors),
		)
		for resource, amount := range company.Stock.Resources {
			if amount == 0 {
				continue
			}
			slog.Info("company stock",
				"company", company.Name,
				"resource", w.Resources.Name(resource),
				"amount", amount,
			)
		}
	}
	for _, h := range w.Ledger.OfferQueue {
		offer := w.Ledger.Offers[h]
		slog.Info("market offer",
			"seller", w.ownerName(offer.Owner, "Producer"),
			"resource", w.Resources.Name(offer.Resource),
			"amount", offer.Amount,
			"price_per_unit", offer.PricePerUnit,
			"ttl", offer.TimeToLive,
		)
	}
	for _, h := range w.Ledger.OrderQueue {
		order := w.Ledger.Orders[h]
		slog.Info("market order",
			"buyer", w.ownerName(order.Owner, "Consumer"),
			"resource", w.Resources.Name(order.Resource),
			"amount", order.Amount,
			"max_price_per_unit", order.MaxPricePerUnit,
			"ttl", order.TimeToLive,
		)
	}
	slog.Info("market stats",
		"offers_placed", w.Market.Stats.OffersPlaced,
		"orders_placed", w.Market.Stats.OrdersPlaced,
		"offers_fulfilled", w.Market.Stats.OffersFulfilled,
		"orders_fulfilled", w.Market.Stats.OrdersFulfilled,
	)
}

func (w *World) ownerName(o market.Owner, anonymous string) string {
	if handle, isCompany := o.AsCompany(); isCompany {
		return w.Companies[handle].Name
	}
	return anonymous
}
