package synth

import "testing"

func TestKmeansSeparatesDistinctBlobs(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.1, 0.1}, {-0.1, 0},
		{10, 10}, {10.1, 9.9}, {9.9, 10.1},
	}
	labels := kmeans(points, 2)
	if len(labels) != len(points) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(points))
	}

	firstBlob := labels[0]
	for i := 0; i < 3; i++ {
		if labels[i] != firstBlob {
			t.Errorf("point %d: label %d, want %d (same cluster as point 0)", i, labels[i], firstBlob)
		}
	}
	secondBlob := labels[3]
	if secondBlob == firstBlob {
		t.Fatalf("the two blobs should land in different clusters")
	}
	for i := 3; i < 6; i++ {
		if labels[i] != secondBlob {
			t.Errorf("point %d: label %d, want %d (same cluster as point 3)", i, labels[i], secondBlob)
		}
	}
}

func TestKmeansHandlesKLargerThanN(t *testing.T) {
	points := [][]float64{{1, 1}, {2, 2}}
	labels := kmeans(points, 5)
	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}
}

func TestKmeansEmptyInput(t *testing.T) {
	if got := kmeans(nil, 3); got != nil {
		t.Errorf("kmeans(nil) = %v, want nil", got)
	}
}
