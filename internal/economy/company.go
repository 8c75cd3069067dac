package economy

import "log/slog"

// CompanyHandle indexes a company in the world's company table.
type CompanyHandle = int

// Company is an autonomous trading agent: a stock ledger, a currency
// balance, a set of processors, and the intents it has queued this tick.
type Company struct {
	Name       string      `yaml:"name"`
	Stock      Stock       `yaml:"stock"`
	Currency   float64     `yaml:"currency"`
	Processors []Processor `yaml:"processors"`

	// Intents queued by the decision step, drained by the orchestrator
	// at submission time.
	PendingOrders []BuyIntent  `yaml:"pending_orders"`
	PendingOffers []SellIntent `yaml:"pending_offers"`

	// Value is the mark-to-market worth (currency + stock at current
	// best prices + processors at the flat processor price).
	Value float64 `yaml:"value"`
}

// NewCompany creates a company with an empty stock and no processors.
func NewCompany(name string) *Company {
	return &Company{Name: name, Stock: NewStock()}
}

// Tick advances all processors one production cycle.
func (c *Company) Tick(recipes *RecipeTable) {
	slog.Debug("company economy tick", "company", c.Name)
	for i := range c.Processors {
		c.Processors[i].Tick(&c.Stock, recipes)
	}
}

// AddCurrency credits the currency balance. Settlement payouts and escrow
// refunds come through here.
func (c *Company) AddCurrency(amount float64) {
	c.Currency += amount
}

// AddResource credits the stock ledger. Settled buys and offer expiry
// refunds come through here.
func (c *Company) AddResource(resource ResourceHandle, amount float64) {
	c.Stock.Add(resource, amount)
}

// QueueOrder queues a buy intent for submission by the orchestrator.
func (c *Company) QueueOrder(resource ResourceHandle, amount, maxPricePerUnit float64, ttl int) {
	c.PendingOrders = append(c.PendingOrders, BuyIntent{
		Resource:        resource,
		Amount:          amount,
		MaxPricePerUnit: maxPricePerUnit,
		TimeToLive:      ttl,
	})
}

// QueueOffer queues a sell intent. The resources stay in stock until the
// orchestrator escrows them at submission.
func (c *Company) QueueOffer(resource ResourceHandle, amount, pricePerUnit float64, ttl int) {
	c.PendingOffers = append(c.PendingOffers, SellIntent{
		Resource:     resource,
		Amount:       amount,
		PricePerUnit: pricePerUnit,
		TimeToLive:   ttl,
	})
}

// BuyProcessor purchases a new processor for the given recipe at the flat
// processor price. Returns false if the company cannot afford it or the
// recipe handle is invalid.
func (c *Company) BuyProcessor(recipe RecipeHandle, recipes *RecipeTable, price float64) bool {
	r := recipes.Get(recipe)
	if r == nil || c.Currency < price {
		return false
	}
	c.Currency -= price
	c.Processors = append(c.Processors, Processor{
		Name:            r.Name,
		Recipe:          recipe,
		ProductionSpeed: r.ProductionSpeed,
		Productive:      true,
	})
	return true
}

// SellProcessor removes one processor running the given recipe and credits
// the flat processor price. Returns false if no such processor exists.
func (c *Company) SellProcessor(recipe RecipeHandle, price float64) bool {
	for i := range c.Processors {
		if c.Processors[i].Recipe == recipe {
			c.Processors = append(c.Processors[:i], c.Processors[i+1:]...)
			c.Currency += price
			return true
		}
	}
	return false
}

// UpdateValue re-marks the company value against current best offer prices
// and returns the change since the previous valuation. Resources without a
// live offer price contribute nothing.
func (c *Company) UpdateValue(priceOf func(ResourceHandle) (float64, bool), processorValue float64) float64 {
	value := c.Currency
	value += float64(len(c.Processors)) * processorValue
	for resource, amount := range c.Stock.Resources {
		if price, ok := priceOf(resource); ok {
			value += amount * price
		}
	}
	delta := value - c.Value
	c.Value = value
	return delta
}
