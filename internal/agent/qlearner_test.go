package agent

import "testing"

func TestActionSpaceEnumeration(t *testing.T) {
	space := NewActionSpace(4, 2)
	// 1 nothing + 2 buy processor + 2 sell processor + 3 tradable
	// resources x 2 trade actions.
	if space.Size() != 11 {
		t.Fatalf("action space size = %d, want 11", space.Size())
	}
	if space.Actions[0].Kind != ActionNothing {
		t.Fatal("first action must be Nothing")
	}
	for _, a := range space.Actions {
		if (a.Kind == ActionBuyResource || a.Kind == ActionSellResource) && a.Resource == 0 {
			t.Fatal("base resource must not be tradable")
		}
	}
}

func TestStateKeyBucketsNearbyValues(t *testing.T) {
	a := CompanyState{Stock: []float64{100}, Currency: 50}
	b := CompanyState{Stock: []float64{101}, Currency: 51}
	c := CompanyState{Stock: []float64{100000}, Currency: 50}

	if a.Key() != b.Key() {
		t.Fatalf("nearby states should share a key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Fatal("distant states should not share a key")
	}
}

// TestQLearnerBanditConvergence trains on a two-armed bandit where action 1
// always pays and checks that the greedy policy prefers it.
func TestQLearnerBanditConvergence(t *testing.T) {
	space := ActionSpace{Actions: []Action{{Kind: ActionNothing}, {Kind: ActionBuyResource, Resource: 1, Amount: 5}}}
	state := CompanyState{Stock: []float64{1}, Currency: 10}

	q := NewQLearner(7)
	for i := 0; i < 200; i++ {
		action := q.Decide(state, space, 0.3)
		reward := 0.0
		if action == 1 {
			reward = 1.0
		}
		q.Learn(state, action, reward, state, space)
	}

	if got := q.Decide(state, space, 0); got != 1 {
		t.Fatalf("greedy action = %d, want 1", got)
	}
}

func TestQLearnerDeterministicFromSeed(t *testing.T) {
	space := NewActionSpace(3, 1)
	state := CompanyState{Stock: []float64{5, 0, 2}, Currency: 100}

	a := NewQLearner(42)
	b := NewQLearner(42)
	for i := 0; i < 50; i++ {
		if a.Decide(state, space, 0.5) != b.Decide(state, space, 0.5) {
			t.Fatalf("same-seed learners diverged at step %d", i)
		}
	}
}
