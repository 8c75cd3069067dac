package market

// Stats holds monotonically increasing fulfillment counters. Only
// company-owned intents are counted, separating agent performance from
// producer/consumer market-maker noise. Both sides of a settlement step
// are counted independently.
type Stats struct {
	OffersPlaced uint64 `yaml:"offers_placed" json:"offers_placed"`
	OrdersPlaced uint64 `yaml:"orders_placed" json:"orders_placed"`

	OffersPartlyFulfilled uint64 `yaml:"offers_partly_fulfilled" json:"offers_partly_fulfilled"`
	OrdersPartlyFulfilled uint64 `yaml:"orders_partly_fulfilled" json:"orders_partly_fulfilled"`

	OffersFulfilled uint64 `yaml:"offers_fulfilled" json:"offers_fulfilled"`
	OrdersFulfilled uint64 `yaml:"orders_fulfilled" json:"orders_fulfilled"`
}
