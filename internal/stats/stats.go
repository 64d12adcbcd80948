// SPDX-License-Identifier: MPL-2.0

// Package stats provides the small statistical reductions used to summarize
// a series of run times. Samples are non-negative microsecond counts, the
// canonical serialized unit for traces.
package stats

import (
	"math"
	"slices"
	"time"
)

// MeanStdDev computes the arithmetic mean and the population standard
// deviation of a series of microsecond samples, returned as durations.
// The variance is computed as (Σx²)/n − mean² (division by n, not n−1).
// ok is false for an empty series.
func MeanStdDev(micros []uint64) (mean, stddev time.Duration, ok bool) {
	if len(micros) == 0 {
		return 0, 0, false
	}

	n := float64(len(micros))
	var sum, sumSq float64
	for _, x := range micros {
		fx := float64(x)
		sum += fx
		sumSq += fx * fx
	}

	m := sum / n
	variance := sumSq/n - m*m
	if variance < 0 {
		// Guard against rounding pushing a zero variance slightly negative.
		variance = 0
	}

	mean = time.Duration(m * float64(time.Microsecond))
	stddev = time.Duration(math.Sqrt(variance) * float64(time.Microsecond))
	return mean, stddev, true
}

// MinMedianMax reduces a series to its extrema and its positional median:
// the element at index ⌊n/2⌋ of the input order, NOT of a sorted order.
// Callers that want a true median must sort first or use SortedMedian.
// This positional behavior is part of the established trace contract.
// ok is false for an empty series.
func MinMedianMax(micros []uint64) (min, median, max uint64, ok bool) {
	if len(micros) == 0 {
		return 0, 0, 0, false
	}

	min, max = micros[0], micros[0]
	for _, x := range micros[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, micros[len(micros)/2], max, true
}

// SortedMedian returns the element at index ⌊n/2⌋ of a sorted copy of the
// series. ok is false for an empty series.
func SortedMedian(micros []uint64) (median uint64, ok bool) {
	if len(micros) == 0 {
		return 0, false
	}
	sorted := slices.Clone(micros)
	slices.Sort(sorted)
	return sorted[len(sorted)/2], true
}
