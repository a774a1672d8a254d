// Package metrics provides chart-number sets and the composite metrics
// derived from them.
package metrics

import "sort"

// ChartSet is a deduplicated set of chart numbers, keyed by the exact
// captured string form.
type ChartSet map[string]struct{}

// NewChartSet builds a set from the given members.
func NewChartSet(members ...string) ChartSet {
	s := make(ChartSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts a chart number.
func (s ChartSet) Add(id string) {
	s[id] = struct{}{}
}

// Contains reports membership.
func (s ChartSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending string order.
func (s ChartSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Intersection returns the chart numbers present in both a and b. A patient
// appearing in both equipment's output the same day is the domain's compound
// clinical event.
func Intersection(a, b ChartSet) ChartSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(ChartSet)
	for id := range a {
		if b.Contains(id) {
			out.Add(id)
		}
	}
	return out
}

// Union merges any number of sets, deduplicating across them. Used for a
// logical category serviced by physically separate archive locations.
func Union(sets ...ChartSet) ChartSet {
	out := make(ChartSet)
	for _, s := range sets {
		for id := range s {
			out.Add(id)
		}
	}
	return out
}

// Overlap returns how many chart numbers a and b share: |A| + |B| - |A∪B|.
// Reported as a diagnostic alongside union categories.
func Overlap(a, b ChartSet) int {
	return len(a) + len(b) - len(Union(a, b))
}
