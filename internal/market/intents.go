package market

import "github.com/hoenas/econosim/internal/economy"

// OfferHandle identifies a live offer in a ledger. Handles are allocated
// monotonically and never reused within a ledger instance.
type OfferHandle = int

// OrderHandle identifies a live order in a ledger.
type OrderHandle = int

// Offer is a live intent to sell. The escrowed resources were removed from
// the seller's stock at placement; Amount is the remaining unsold quantity.
type Offer struct {
	Resource     economy.ResourceHandle `yaml:"resource"`
	Amount       float64                `yaml:"amount"`
	PricePerUnit float64                `yaml:"price_per_unit"`
	Owner        Owner                  `yaml:"owner"`
	TimeToLive   int                    `yaml:"time_to_live"`
}

// Order is a live intent to buy. Currency of Amount x MaxPricePerUnit was
// escrowed from a company owner at placement; market-owned orders carry no
// escrow.
type Order struct {
	Resource        economy.ResourceHandle `yaml:"resource"`
	Amount          float64                `yaml:"amount"`
	MaxPricePerUnit float64                `yaml:"max_price_per_unit"`
	Owner           Owner                  `yaml:"owner"`
	TimeToLive      int                    `yaml:"time_to_live"`
}

// Trade records one settlement step, kept for the tick's clearing summary.
type Trade struct {
	Resource     economy.ResourceHandle `json:"resource"`
	Amount       float64                `json:"amount"`
	PricePerUnit float64                `json:"price_per_unit"`
	Buyer        Owner                  `json:"buyer"`
	Seller       Owner                  `json:"seller"`
}
