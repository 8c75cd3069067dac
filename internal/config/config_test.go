package config

import "testing"

const testDef = `
seed: 7
processor_price: 1000
intent_ttl: 80
resources: [labor, ore, iron]
recipes:
  - name: smelt
    ingredients:
      ore: 2
    products:
      iron: 1
    production_speed: 1
producers:
  - name: mine
    offer_creation_ticks: 10
    production:
      - resource: ore
        amount: 20
        price_per_unit: 2
        time_to_live: 50
consumers:
  - name: city
    order_creation_ticks: 10
    consumption:
      - resource: iron
        amount: 5
        max_price_per_unit: 12
        time_to_live: 50
companies:
  count: 2
  name_prefix: Works
  currency: 5000
  stock:
    ore: 10
  processors: [smelt]
`

func TestRenderWorldDef(t *testing.T) {
	def, err := Parse([]byte(testDef))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w, err := def.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if w.Resources.Count() != 3 {
		t.Fatalf("resources = %d, want 3", w.Resources.Count())
	}
	if w.Ledger.ResourceCount != 3 {
		t.Fatalf("ledger resource count = %d, want 3", w.Ledger.ResourceCount)
	}
	if w.IntentTTL != 80 || w.ProcessorPrice != 1000 {
		t.Fatalf("ttl/price = %d/%f", w.IntentTTL, w.ProcessorPrice)
	}

	if len(w.Companies) != 2 || len(w.Deciders) != 2 {
		t.Fatalf("companies/deciders = %d/%d, want 2/2", len(w.Companies), len(w.Deciders))
	}
	co := w.Companies[0]
	if co.Name != "Works 1" || co.Currency != 5000 {
		t.Fatalf("company = %q currency %f", co.Name, co.Currency)
	}
	ore, _ := w.Resources.HandleByName("ore")
	if co.Stock.Amount(ore) != 10 {
		t.Fatalf("starting ore = %f, want 10", co.Stock.Amount(ore))
	}
	if len(co.Processors) != 1 || co.Processors[0].Name != "smelt" {
		t.Fatalf("processors = %+v", co.Processors)
	}

	if len(w.Producers) != 1 || w.Producers[0].Production[0].Resource != ore {
		t.Fatal("producer resource not resolved to handle")
	}
	iron, _ := w.Resources.HandleByName("iron")
	if len(w.Consumers) != 1 || w.Consumers[0].Consumption[0].Resource != iron {
		t.Fatal("consumer resource not resolved to handle")
	}

	// 1 nothing + 1 buy + 1 sell processor + 2 tradable resources x 2.
	if w.ActionSpace.Size() != 7 {
		t.Fatalf("action space = %d, want 7", w.ActionSpace.Size())
	}
}

func TestRenderRejectsUnknownNames(t *testing.T) {
	def, err := Parse([]byte(`
resources: [ore]
producers:
  - name: mine
    offer_creation_ticks: 1
    production:
      - resource: gold
        amount: 1
        price_per_unit: 1
        time_to_live: 1
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := def.Render(); err == nil {
		t.Fatal("unknown resource name must fail rendering")
	}
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	if _, err := Parse([]byte(`processor_price: 10`)); err == nil {
		t.Fatal("definition without resources must fail")
	}
}
