package chart

import (
	"math"
	"sort"
)

// Nearest returns the index of the timestamp closest to query in an ascending
// slice, preferring the lower index on ties. Queries outside the slice range
// resolve to the nearest boundary sample. It returns -1 for an empty slice.
func Nearest(times []int64, query float64) int {
	if len(times) == 0 {
		return -1
	}
	lo, hi := 0, len(times)-1
	for hi-lo > 1 {
		mid := int(uint(lo+hi) >> 1)
		if float64(times[mid]) < query {
			lo = mid
		} else {
			hi = mid
		}
	}
	if math.Abs(float64(times[lo])-query) <= math.Abs(float64(times[hi])-query) {
		// first index of a run of equal timestamps
		v := times[lo]
		return sort.Search(lo, func(i int) bool { return times[i] >= v })
	}
	return hi
}

func sampleTimes(samples []PriceSample) []int64 {
	times := make([]int64, len(samples))
	for i, s := range samples {
		times[i] = s.T
	}
	return times
}
