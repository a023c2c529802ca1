package history

import (
	"slices"

	"github.com/bububa/marksix-agents/marksix"
)

// Count is the occurrences of a number
type Count struct {
	Number int
	Count  int
}

// MainFrequencies counts main numbers ordered by count descending.
// Ties keep the order numbers were first seen scanning column n1 over all draws, then n2 and so on.
// Numbers never drawn are not included.
func MainFrequencies(records []Record) []Count {
	idx := make(map[int]int, marksix.MaxNumber)
	var counts []Count
	for col := 0; col < marksix.NumbersCount; col++ {
		for _, r := range records {
			n := r.Numbers[col]
			if i, ok := idx[n]; ok {
				counts[i].Count++
				continue
			}
			idx[n] = len(counts)
			counts = append(counts, Count{Number: n, Count: 1})
		}
	}
	slices.SortStableFunc(counts, func(a, b Count) int {
		return b.Count - a.Count
	})
	return counts
}

// NumberFrequency returns how many times n was drawn as a main number and as the extra number
func NumberFrequency(records []Record, n int) (drawn int, extra int) {
	for _, r := range records {
		if slices.Contains(r.Numbers[:], n) {
			drawn++
		}
		if r.Extra != nil && *r.Extra == n {
			extra++
		}
	}
	return drawn, extra
}

// Histogram returns main number counts indexed by number, index 0 unused
func Histogram(records []Record) [marksix.MaxNumber + 1]int {
	var ret [marksix.MaxNumber + 1]int
	for _, r := range records {
		for _, n := range r.Numbers {
			if n >= marksix.MinNumber && n <= marksix.MaxNumber {
				ret[n]++
			}
		}
	}
	return ret
}
