package economy

// StockLine is one resource/amount pair of a multi-line transaction.
type StockLine struct {
	Resource ResourceHandle `yaml:"resource"`
	Amount   float64        `yaml:"amount"`
}

// Stock is a per-owner ledger of resource quantities. No operation may
// leave an entry negative; debits that would do so fail without effect.
type Stock struct {
	Resources map[ResourceHandle]float64 `yaml:"resources"`
}

// NewStock returns an empty stock ledger.
func NewStock() Stock {
	return Stock{Resources: make(map[ResourceHandle]float64)}
}

// Amount returns the current quantity of a resource (0 if never stocked).
func (s *Stock) Amount(resource ResourceHandle) float64 {
	return s.Resources[resource]
}

// Add credits a quantity unconditionally.
func (s *Stock) Add(resource ResourceHandle, amount float64) {
	if s.Resources == nil {
		s.Resources = make(map[ResourceHandle]float64)
	}
	s.Resources[resource] += amount
}

// Has reports whether a debit of amount would keep the balance non-negative.
func (s *Stock) Has(resource ResourceHandle, amount float64) bool {
	return s.Resources[resource]-amount >= 0
}

// RemoveIfPossible debits a quantity if the resulting balance stays
// non-negative. Returns false and leaves the stock untouched otherwise.
func (s *Stock) RemoveIfPossible(resource ResourceHandle, amount float64) bool {
	remaining := s.Resources[resource] - amount
	if remaining < 0 {
		return false
	}
	if s.Resources == nil {
		s.Resources = make(map[ResourceHandle]float64)
	}
	s.Resources[resource] = remaining
	return true
}

// CanTransact checks every line of a transaction against current balances.
// Lines for the same resource are checked cumulatively.
func (s *Stock) CanTransact(lines []StockLine) bool {
	needed := make(map[ResourceHandle]float64, len(lines))
	for _, l := range lines {
		needed[l.Resource] += l.Amount
	}
	for resource, amount := range needed {
		if s.Resources[resource]-amount < 0 {
			return false
		}
	}
	return true
}

// TryTransact debits every line or none. Production recipes consume several
// resources at once and must never leave the stock partially debited, so
// feasibility is checked for the whole set before the first debit.
func (s *Stock) TryTransact(lines []StockLine) bool {
	if !s.CanTransact(lines) {
		return false
	}
	for _, l := range lines {
		s.Resources[l.Resource] -= l.Amount
	}
	return true
}
