// Package agent defines the decision interface between the simulation and
// a company's controller: the observable state vector, the discrete action
// space, and a tabular Q-learning default controller.
package agent

// ActionKind enumerates the discrete things a company can do in one tick.
type ActionKind uint8

const (
	ActionNothing ActionKind = iota
	ActionBuyProcessor
	ActionSellProcessor
	ActionBuyResource
	ActionSellResource
)

// Action is one entry of the action space. Recipe is set for processor
// actions, Resource and Amount for trade actions.
type Action struct {
	Kind     ActionKind `yaml:"kind"`
	Recipe   int        `yaml:"recipe,omitempty"`
	Resource int        `yaml:"resource,omitempty"`
	Amount   float64    `yaml:"amount,omitempty"`
}

// ActionSpace is the fixed enumeration of available actions, shared by all
// companies of a world.
type ActionSpace struct {
	Actions []Action `yaml:"actions"`
}

// tradeAmount is the fixed lot size of buy/sell resource actions.
const tradeAmount = 5

// NewActionSpace enumerates: do nothing, buy/sell a processor per recipe,
// and buy/sell a fixed lot of every tradable resource. Resource 0 is the
// untradable base resource and is skipped.
func NewActionSpace(resourceCount, recipeCount int) ActionSpace {
	actions := []Action{{Kind: ActionNothing}}
	for r := 0; r < recipeCount; r++ {
		actions = append(actions, Action{Kind: ActionBuyProcessor, Recipe: r})
	}
	for r := 0; r < recipeCount; r++ {
		actions = append(actions, Action{Kind: ActionSellProcessor, Recipe: r})
	}
	for res := 1; res < resourceCount; res++ {
		actions = append(actions,
			Action{Kind: ActionBuyResource, Resource: res, Amount: tradeAmount},
			Action{Kind: ActionSellResource, Resource: res, Amount: tradeAmount},
		)
	}
	return ActionSpace{Actions: actions}
}

// Size returns the number of actions in the space.
func (s ActionSpace) Size() int {
	return len(s.Actions)
}
