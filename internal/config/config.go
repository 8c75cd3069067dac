// Package config loads YAML world definitions and renders them into a
// runnable world. Definitions reference resources and recipes by name;
// rendering resolves every name to a handle and fails on unknown ones.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hoenas/econosim/internal/agent"
	"github.com/hoenas/econosim/internal/economy"
	"github.com/hoenas/econosim/internal/engine"
)

// WorldDef is the top-level world definition document.
type WorldDef struct {
	Seed           int64   `yaml:"seed"`
	ProcessorPrice float64 `yaml:"processor_price"`
	IntentTTL      int     `yaml:"intent_ttl"`

	Resources []string      `yaml:"resources"`
	Recipes   []RecipeDef   `yaml:"recipes"`
	Producers []ProducerDef `yaml:"producers"`
	Consumers []ConsumerDef `yaml:"consumers"`
	Companies CompanyDef    `yaml:"companies"`
}

// RecipeDef maps ingredient and product names to amounts.
type RecipeDef struct {
	Name            string             `yaml:"name"`
	Ingredients     map[string]float64 `yaml:"ingredients"`
	Products        map[string]float64 `yaml:"products"`
	ProductionSpeed float64            `yaml:"production_speed"`
}

// OfferDef is a name-keyed sell intent template.
type OfferDef struct {
	Resource     string  `yaml:"resource"`
	Amount       float64 `yaml:"amount"`
	PricePerUnit float64 `yaml:"price_per_unit"`
	TimeToLive   int     `yaml:"time_to_live"`
}

// OrderDef is a name-keyed buy intent template.
type OrderDef struct {
	Resource        string  `yaml:"resource"`
	Amount          float64 `yaml:"amount"`
	MaxPricePerUnit float64 `yaml:"max_price_per_unit"`
	TimeToLive      int     `yaml:"time_to_live"`
}

// ProducerDef describes one ownerless supply source.
type ProducerDef struct {
	Name               string     `yaml:"name"`
	OfferCreationTicks int        `yaml:"offer_creation_ticks"`
	Production         []OfferDef `yaml:"production"`
}

// ConsumerDef describes one ownerless demand sink.
type ConsumerDef struct {
	Name               string     `yaml:"name"`
	OrderCreationTicks int        `yaml:"order_creation_ticks"`
	Consumption        []OrderDef `yaml:"consumption"`
}

// CompanyDef describes the generated companies and their shared starting
// conditions.
type CompanyDef struct {
	Count      int                `yaml:"count"`
	NamePrefix string             `yaml:"name_prefix"`
	Currency   float64            `yaml:"currency"`
	Stock      map[string]float64 `yaml:"stock"`
	Processors []string           `yaml:"processors"` // recipe names
}

// Load reads and parses a world definition file.
func Load(path string) (*WorldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world definition: %w", err)
	}
	return Parse(data)
}

// Parse parses a world definition document.
func Parse(data []byte) (*WorldDef, error) {
	var def WorldDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse world definition: %w", err)
	}
	if len(def.Resources) == 0 {
		return nil, fmt.Errorf("world definition has no resources")
	}
	return &def, nil
}

// Render resolves all names and builds a fresh world.
func (d *WorldDef) Render() (*engine.World, error) {
	catalog := economy.NewResourceCatalog(d.Resources)

	recipes := &economy.RecipeTable{}
	for _, rd := range d.Recipes {
		ingredients, err := renderLines(catalog, rd.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", rd.Name, err)
		}
		products, err := renderLines(catalog, rd.Products)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", rd.Name, err)
		}
		recipes.Recipes = append(recipes.Recipes, economy.Recipe{
			Name:            rd.Name,
			Ingredients:     ingredients,
			Products:        products,
			ProductionSpeed: rd.ProductionSpeed,
		})
	}

	w := engine.NewWorld(catalog, recipes, d.Seed)
	w.ProcessorPrice = d.ProcessorPrice
	if d.IntentTTL > 0 {
		w.IntentTTL = d.IntentTTL
	}

	for _, pd := range d.Producers {
		producer := &economy.Producer{Name: pd.Name, OfferCreationTicks: pd.OfferCreationTicks}
		for _, od := range pd.Production {
			handle, ok := catalog.HandleByName(od.Resource)
			if !ok {
				return nil, fmt.Errorf("producer %q: unknown resource %q", pd.Name, od.Resource)
			}
			producer.Production = append(producer.Production, economy.SellIntent{
				Resource:     handle,
				Amount:       od.Amount,
				PricePerUnit: od.PricePerUnit,
				TimeToLive:   od.TimeToLive,
			})
		}
		w.Producers = append(w.Producers, producer)
	}

	for _, cd := range d.Consumers {
		consumer := &economy.Consumer{Name: cd.Name, OrderCreationTicks: cd.OrderCreationTicks}
		for _, od := range cd.Consumption {
			handle, ok := catalog.HandleByName(od.Resource)
			if !ok {
				return nil, fmt.Errorf("consumer %q: unknown resource %q", cd.Name, od.Resource)
			}
			consumer.Consumption = append(consumer.Consumption, economy.BuyIntent{
				Resource:        handle,
				Amount:          od.Amount,
				MaxPricePerUnit: od.MaxPricePerUnit,
				TimeToLive:      od.TimeToLive,
			})
		}
		w.Consumers = append(w.Consumers, consumer)
	}

	prefix := d.Companies.NamePrefix
	if prefix == "" {
		prefix = "Company"
	}
	for i := 0; i < d.Companies.Count; i++ {
		company := economy.NewCompany(fmt.Sprintf("%s %d", prefix, i+1))
		company.Currency = d.Companies.Currency
		for name, amount := range d.Companies.Stock {
			handle, ok := catalog.HandleByName(name)
			if !ok {
				return nil, fmt.Errorf("company stock: unknown resource %q", name)
			}
			company.Stock.Add(handle, amount)
		}
		for _, recipeName := range d.Companies.Processors {
			handle, ok := recipes.HandleByName(recipeName)
			if !ok {
				return nil, fmt.Errorf("company processors: unknown recipe %q", recipeName)
			}
			r := recipes.Get(handle)
			company.Processors = append(company.Processors, economy.Processor{
				Name:            r.Name,
				Recipe:          handle,
				ProductionSpeed: r.ProductionSpeed,
				Productive:      true,
			})
		}
		w.Companies = append(w.Companies, company)
		w.Deciders = append(w.Deciders, agent.NewQLearner(d.Seed+int64(i)))
	}

	return w, nil
}

func renderLines(catalog *economy.ResourceCatalog, lines map[string]float64) ([]economy.StockLine, error) {
	rendered := make([]economy.StockLine, 0, len(lines))
	for name, amount := range lines {
		handle, ok := catalog.HandleByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
		rendered = append(rendered, economy.StockLine{Resource: handle, Amount: amount})
	}
	return rendered, nil
}
