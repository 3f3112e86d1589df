package idgen

import "testing"

func TestNext_StrictlyIncreasing(t *testing.T) {
	g := New()

	prev := g.Next()
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestObserve_RaisesFloor(t *testing.T) {
	g := New()

	high := g.Next() + 1_000_000
	g.Observe(high)

	if id := g.Next(); id <= high {
		t.Errorf("expected next id above observed %d, got %d", high, id)
	}
}

func TestObserve_IgnoresLowerIDs(t *testing.T) {
	g := New()

	current := g.Next()
	g.Observe(current - 500)

	if id := g.Next(); id <= current {
		t.Errorf("observing a lower id must not rewind the generator: got %d after %d", id, current)
	}
}
