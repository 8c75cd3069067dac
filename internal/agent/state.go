package agent

import (
	"math"
	"strconv"
	"strings"
)

// CompanyState is the observable state a controller decides on: the
// company's own balances plus the ledger-derived best prices. All values
// reflect the previous tick's cleared state; same-tick settlements are
// never visible to a decision.
type CompanyState struct {
	Stock      []float64 `yaml:"stock"`
	Currency   float64   `yaml:"currency"`
	PriceIndex []float64 `yaml:"price_index"` // cheapest offer per resource, 0 = none
	OrderIndex []float64 `yaml:"order_index"` // highest bid per resource, 0 = none
	Processors []float64 `yaml:"processors"`  // owned processor count per recipe
	Production []float64 `yaml:"production"`  // produced-last-tick count per recipe
}

// Vector flattens the state for controllers that consume feature vectors.
func (s CompanyState) Vector() []float64 {
	v := make([]float64, 0, len(s.Stock)+1+len(s.PriceIndex)+len(s.OrderIndex)+len(s.Processors)+len(s.Production))
	v = append(v, s.Stock...)
	v = append(v, s.Currency)
	v = append(v, s.PriceIndex...)
	v = append(v, s.OrderIndex...)
	v = append(v, s.Processors...)
	v = append(v, s.Production...)
	return v
}

// Key discretizes the state into a table key for tabular learners.
// Continuous values collapse into logarithmic buckets so nearby states
// share Q-values.
func (s CompanyState) Key() string {
	var b strings.Builder
	for i, v := range s.Vector() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(logBucket(v)))
	}
	return b.String()
}

func logBucket(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Log2(1+v)) + 1
}
