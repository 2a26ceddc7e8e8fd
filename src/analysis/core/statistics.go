package core

import "math"

// -----------------------------------------------------------------------------

// MeanIgnoringNaN averages the non-NaN values. n is the number of values
// used; when n is 0 the mean is NaN.
func MeanIgnoringNaN(data []float64) (mean float64, n int) {
	sum := 0.0
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), 0
	}
	return sum / float64(n), n
}

// -----------------------------------------------------------------------------

// Sum adds every value.
func Sum(data []float64) float64 {
	total := 0.0
	for _, v := range data {
		total += v
	}
	return total
}

// -----------------------------------------------------------------------------

// ArgMin returns the index of the smallest value, first occurrence on ties.
// It returns -1 for an empty slice.
func ArgMin(data []float64) int {
	best := -1
	for i, v := range data {
		if best == -1 || v < data[best] {
			best = i
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// ArgMax returns the index of the largest value, first occurrence on ties.
func ArgMax(data []float64) int {
	best := -1
	for i, v := range data {
		if best == -1 || v > data[best] {
			best = i
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// ReplaceNaN returns a copy of data with NaN cells set to fill, and the
// number of cells replaced.
func ReplaceNaN(data []float64, fill float64) ([]float64, int) {
	out := make([]float64, len(data))
	replaced := 0
	for i, v := range data {
		if math.IsNaN(v) {
			out[i] = fill
			replaced++
			continue
		}
		out[i] = v
	}
	return out, replaced
}
