package economy

// Processor runs one recipe against its owner's stock each tick.
type Processor struct {
	Name            string       `yaml:"name"`
	Recipe          RecipeHandle `yaml:"recipe"`
	ProductionSpeed float64      `yaml:"production_speed"`
	Productive      bool         `yaml:"productive"`
	// ProducedLastTick records whether the most recent tick yielded output,
	// exposed to the owning company's decision state.
	ProducedLastTick bool `yaml:"produced_last_tick"`
}

// Tick attempts one production cycle: debit all ingredients atomically,
// then credit products scaled by production speed. A processor that cannot
// source its full ingredient set produces nothing this tick.
func (p *Processor) Tick(stock *Stock, recipes *RecipeTable) {
	p.ProducedLastTick = false
	if !p.Productive {
		return
	}
	recipe := recipes.Get(p.Recipe)
	if recipe == nil {
		return
	}
	if !stock.TryTransact(recipe.Ingredients) {
		return
	}
	for _, product := range recipe.Products {
		stock.Add(product.Resource, product.Amount*p.ProductionSpeed)
	}
	p.ProducedLastTick = true
}
