// Package market implements the continuous double-auction clearing engine:
// the shared ledger of live offers and orders, its derived best-price
// indices, and the matching engine that settles trades with escrow
// accounting.
package market

import "github.com/hoenas/econosim/internal/economy"

// OwnerKind discriminates the two owner variants of a trade intent.
type OwnerKind uint8

const (
	// OwnerMarket marks anonymous market flow: producer supply or consumer
	// demand. Market-owned intents are never paid, refunded, or credited.
	OwnerMarket OwnerKind = iota
	// OwnerCompany marks an intent placed by a company, which is subject
	// to escrow, settlement payment, and expiry refunds.
	OwnerCompany
)

// Owner identifies the economic agent behind an intent.
type Owner struct {
	Kind    OwnerKind              `yaml:"kind"`
	Company economy.CompanyHandle  `yaml:"company,omitempty"`
}

// MarketOwner returns the anonymous market-flow owner.
func MarketOwner() Owner {
	return Owner{Kind: OwnerMarket}
}

// CompanyOwner returns an owner for the given company handle.
func CompanyOwner(h economy.CompanyHandle) Owner {
	return Owner{Kind: OwnerCompany, Company: h}
}

// AsCompany returns the company handle and true when the owner is a
// company, false for market flow.
func (o Owner) AsCompany() (economy.CompanyHandle, bool) {
	return o.Company, o.Kind == OwnerCompany
}
