package agent

import "math/rand"

// Decider chooses an action for an observed company state. The simulation
// treats it as a black box; training feedback goes through Learn.
type Decider interface {
	// Decide returns an index into the action space. explore is the
	// probability of choosing a random action instead of the best known.
	Decide(state CompanyState, space ActionSpace, explore float64) int
	// Learn feeds back the reward observed after taking an action.
	Learn(prev CompanyState, action int, reward float64, next CompanyState, space ActionSpace)
}

// QLearner is an epsilon-greedy tabular Q-learning controller. Q-values
// are keyed by the discretized state and serialize with the world, so a
// trained world file carries its learned policy.
type QLearner struct {
	Alpha float64 `yaml:"alpha"` // learning rate
	Gamma float64 `yaml:"gamma"` // discount factor
	Seed  int64   `yaml:"seed"`

	Table map[string][]float64 `yaml:"table"`

	rng *rand.Rand
}

// NewQLearner creates a learner with the usual default hyperparameters.
func NewQLearner(seed int64) *QLearner {
	return &QLearner{
		Alpha: 0.1,
		Gamma: 0.9,
		Seed:  seed,
		Table: make(map[string][]float64),
	}
}

func (q *QLearner) random() *rand.Rand {
	// Lazily rebuilt after deserialization.
	if q.rng == nil {
		q.rng = rand.New(rand.NewSource(q.Seed))
	}
	return q.rng
}

func (q *QLearner) values(key string, size int) []float64 {
	if q.Table == nil {
		q.Table = make(map[string][]float64)
	}
	v, ok := q.Table[key]
	if !ok || len(v) != size {
		v = make([]float64, size)
		q.Table[key] = v
	}
	return v
}

// Decide picks a random action with probability explore, otherwise the
// action with the highest Q-value for the discretized state.
func (q *QLearner) Decide(state CompanyState, space ActionSpace, explore float64) int {
	rng := q.random()
	if rng.Float64() < explore {
		return rng.Intn(space.Size())
	}
	values := q.values(state.Key(), space.Size())
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// Learn applies the standard Q-update toward the reward plus the
// discounted best value of the successor state.
func (q *QLearner) Learn(prev CompanyState, action int, reward float64, next CompanyState, space ActionSpace) {
	values := q.values(prev.Key(), space.Size())
	nextValues := q.values(next.Key(), space.Size())
	bestNext := nextValues[0]
	for _, v := range nextValues[1:] {
		if v > bestNext {
			bestNext = v
		}
	}
	values[action] += q.Alpha * (reward + q.Gamma*bestNext - values[action])
}
