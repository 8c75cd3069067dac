package economy

// SellIntent is a draft offer queued by a company, producer, or world
// builder. It carries no owner; ownership is attached when the orchestrator
// submits it to the market ledger.
type SellIntent struct {
	Resource     ResourceHandle `yaml:"resource"`
	Amount       float64        `yaml:"amount"`
	PricePerUnit float64        `yaml:"price_per_unit"`
	TimeToLive   int            `yaml:"time_to_live"`
}

// BuyIntent is a draft order, the buy-side counterpart of SellIntent.
type BuyIntent struct {
	Resource        ResourceHandle `yaml:"resource"`
	Amount          float64        `yaml:"amount"`
	MaxPricePerUnit float64        `yaml:"max_price_per_unit"`
	TimeToLive      int            `yaml:"time_to_live"`
}
