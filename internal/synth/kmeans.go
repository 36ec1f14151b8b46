package synth

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const maxIterations = 100

// kmeans partitions points (each a row of length dim) into k clusters
// using Lloyd's algorithm, returning the cluster label for each point.
// gonum carries no batteries-included clustering routine, so this uses
// its floats package for the distance and centroid arithmetic, grounded
// on the vector math the teacher's own declared-but-unused gonum
// dependency implies.
func kmeans(points [][]float64, k int) []int {
	n := len(points)
	if n == 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	dim := len(points[0])

	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = append([]float64(nil), points[(i*n)/k]...)
	}

	labels := make([]int, n)
	diff := make([]float64, dim)

	for iter := 0; iter < maxIterations; iter++ {
		changed := false

		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				copy(diff, p)
				floats.Sub(diff, centroid)
				d := floats.Dot(diff, diff)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			floats.Add(sums[c], p)
			counts[c]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}

		if !changed {
			break
		}
	}

	return labels
}
