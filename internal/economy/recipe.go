package economy

// RecipeHandle indexes a recipe in the world's recipe table.
type RecipeHandle = int

// Recipe converts a set of ingredient resources into product resources.
// Production speed scales the product amounts per tick.
type Recipe struct {
	Name            string      `yaml:"name"`
	Ingredients     []StockLine `yaml:"ingredients"`
	Products        []StockLine `yaml:"products"`
	ProductionSpeed float64     `yaml:"production_speed"`
}

// RecipeTable is the immutable registry of recipes, indexed by handle.
type RecipeTable struct {
	Recipes []Recipe `yaml:"recipes"`
}

// Count returns the number of registered recipes.
func (t *RecipeTable) Count() int {
	return len(t.Recipes)
}

// Get returns the recipe for a handle, or nil for an invalid handle.
func (t *RecipeTable) Get(h RecipeHandle) *Recipe {
	if h < 0 || h >= len(t.Recipes) {
		return nil
	}
	return &t.Recipes[h]
}

// HandleByName looks up a recipe handle by its name.
func (t *RecipeTable) HandleByName(name string) (RecipeHandle, bool) {
	for h, r := range t.Recipes {
		if r.Name == name {
			return h, true
		}
	}
	return 0, false
}
