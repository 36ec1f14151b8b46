package clock

import "testing"

func TestHappensBeforeIrreflexive(t *testing.T) {
	vc := New().Increment("a").Increment("b")
	if vc.HappensBefore(vc) {
		t.Errorf("clock must not happen-before itself")
	}
}

func TestHappensBeforeSingleDevice(t *testing.T) {
	a := New().Increment("a")
	b := a.Increment("a")
	if !a.HappensBefore(b) {
		t.Errorf("a should happen-before b")
	}
	if b.HappensBefore(a) {
		t.Errorf("b must not happen-before a")
	}
}

func TestHappensBeforeTransitive(t *testing.T) {
	a := New().Increment("a")
	b := a.Increment("a")
	c := b.Increment("a")
	if !(a.HappensBefore(b) && b.HappensBefore(c) && a.HappensBefore(c)) {
		t.Errorf("happens-before must be transitive")
	}
}

func TestConcurrentClocks(t *testing.T) {
	base := New().Increment("a").Increment("b")
	left := base.Increment("a")
	right := base.Increment("b")
	if !left.Concurrent(right) {
		t.Errorf("divergent single-device increments should be concurrent")
	}
	if !right.Concurrent(left) {
		t.Errorf("concurrency must be symmetric")
	}
	if left.HappensBefore(right) || right.HappensBefore(left) {
		t.Errorf("concurrent clocks must not happen-before each other")
	}
}

func TestMergeDominatesBothInputs(t *testing.T) {
	left := New().Increment("a").Increment("a")
	right := New().Increment("b")
	merged := left.Merge(right)

	if !left.HappensBefore(merged) && !left.Equal(merged) {
		t.Errorf("merge must dominate left input")
	}
	if !right.HappensBefore(merged) && !right.Equal(merged) {
		t.Errorf("merge must dominate right input")
	}
}

func TestMergeIsCoordinatewiseMax(t *testing.T) {
	left := VectorClock{"a": 3, "b": 1}
	right := VectorClock{"a": 1, "b": 5, "c": 2}
	got := left.Merge(right)
	want := VectorClock{"a": 3, "b": 5, "c": 2}
	if !got.Equal(want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestEqualIgnoresZeroOnlyDifferences(t *testing.T) {
	a := VectorClock{"x": 1}
	b := VectorClock{"x": 1, "y": 0}
	if !a.Equal(b) {
		t.Errorf("clocks differing only by an explicit zero entry should be equal")
	}
}

func TestMultiDeviceHappensBefore(t *testing.T) {
	a := VectorClock{"d1": 2, "d2": 1}
	b := VectorClock{"d1": 2, "d2": 2}
	if !a.HappensBefore(b) {
		t.Errorf("a should happen-before b when one coordinate advances and none regress")
	}
}
