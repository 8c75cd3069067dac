package economy

// Producer injects ownerless supply into the market on a fixed cadence.
// It models extraction from outside the closed economy: the offered
// resources are created, not escrowed from any stock.
type Producer struct {
	Name string `yaml:"name"`
	// Production is the template batch emitted every OfferCreationTicks.
	Production         []SellIntent `yaml:"production"`
	OfferCreationTicks int          `yaml:"offer_creation_ticks"`
	CurrentTick        int          `yaml:"current_tick"`
}

// Tick advances the production timer. When the timer fires it returns the
// production batch with amounts scaled by yield (noise-driven seasonal
// variation supplied by the orchestrator); otherwise it returns nil.
func (p *Producer) Tick(yield float64) []SellIntent {
	p.CurrentTick++
	if p.CurrentTick < p.OfferCreationTicks {
		return nil
	}
	p.CurrentTick = 0
	if yield < 0 {
		yield = 0
	}
	batch := make([]SellIntent, 0, len(p.Production))
	for _, intent := range p.Production {
		intent.Amount *= yield
		if intent.Amount <= 0 {
			continue
		}
		batch = append(batch, intent)
	}
	return batch
}
