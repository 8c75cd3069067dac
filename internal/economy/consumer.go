package economy

// Consumer injects ownerless demand into the market on a fixed cadence.
// Resources bought by a consumer leave the economy; there is no payer and
// no stock on the consumer side.
type Consumer struct {
	Name string `yaml:"name"`
	// Consumption is the template batch emitted every OrderCreationTicks.
	Consumption        []BuyIntent `yaml:"consumption"`
	OrderCreationTicks int         `yaml:"order_creation_ticks"`
	CurrentTick        int         `yaml:"current_tick"`
}

// Tick advances the need timer and returns the consumption batch when it
// fires, nil otherwise.
func (c *Consumer) Tick() []BuyIntent {
	c.CurrentTick++
	if c.CurrentTick < c.OrderCreationTicks {
		return nil
	}
	c.CurrentTick = 0
	batch := make([]BuyIntent, len(c.Consumption))
	copy(batch, c.Consumption)
	return batch
}
