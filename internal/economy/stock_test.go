package economy

import "testing"

func TestAddAndAmount(t *testing.T) {
	s := NewStock()
	s.Add(0, 5)
	s.Add(0, 2.5)
	if s.Amount(0) != 7.5 {
		t.Fatalf("Amount(0) = %f, want 7.5", s.Amount(0))
	}
	if s.Amount(1) != 0 {
		t.Fatalf("Amount(1) = %f, want 0 for never-stocked resource", s.Amount(1))
	}
}

func TestRemoveIfPossible(t *testing.T) {
	s := NewStock()
	s.Add(0, 10)

	if !s.RemoveIfPossible(0, 4) {
		t.Fatal("removing 4 of 10 should succeed")
	}
	if s.Amount(0) != 6 {
		t.Fatalf("Amount(0) = %f, want 6", s.Amount(0))
	}

	if s.RemoveIfPossible(0, 7) {
		t.Fatal("removing 7 of 6 should fail")
	}
	if s.Amount(0) != 6 {
		t.Fatalf("failed removal mutated stock: Amount(0) = %f, want 6", s.Amount(0))
	}

	// Exact drain is allowed.
	if !s.RemoveIfPossible(0, 6) {
		t.Fatal("removing exactly the balance should succeed")
	}
	if s.Amount(0) != 0 {
		t.Fatalf("Amount(0) = %f, want 0", s.Amount(0))
	}
}

func TestTryTransactAllOrNothing(t *testing.T) {
	s := NewStock()
	s.Add(0, 10)
	s.Add(1, 3)

	// Second line infeasible: nothing may change.
	ok := s.TryTransact([]StockLine{
		{Resource: 0, Amount: 5},
		{Resource: 1, Amount: 4},
	})
	if ok {
		t.Fatal("transaction with infeasible line should fail")
	}
	if s.Amount(0) != 10 || s.Amount(1) != 3 {
		t.Fatalf("failed transaction mutated stock: %f/%f, want 10/3", s.Amount(0), s.Amount(1))
	}

	ok = s.TryTransact([]StockLine{
		{Resource: 0, Amount: 5},
		{Resource: 1, Amount: 3},
	})
	if !ok {
		t.Fatal("feasible transaction should succeed")
	}
	if s.Amount(0) != 5 || s.Amount(1) != 0 {
		t.Fatalf("after transaction: %f/%f, want 5/0", s.Amount(0), s.Amount(1))
	}
}

func TestTryTransactCumulativeLines(t *testing.T) {
	s := NewStock()
	s.Add(0, 5)

	// Two lines on the same resource must be checked against the combined
	// amount, not individually.
	ok := s.TryTransact([]StockLine{
		{Resource: 0, Amount: 3},
		{Resource: 0, Amount: 3},
	})
	if ok {
		t.Fatal("combined debit of 6 against balance 5 should fail")
	}
	if s.Amount(0) != 5 {
		t.Fatalf("failed transaction mutated stock: %f, want 5", s.Amount(0))
	}
}
