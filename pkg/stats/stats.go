// Package stats computes dashboard aggregates over entity snapshots.
//
// Every function is total: empty input yields the metric's documented
// default rather than an error or a division by zero.
package stats

import (
	"math"
	"slices"
	"sort"
	"time"
)

// Documented defaults for empty collections.
const (
	// AttendanceDefault is optimistic: no records means no absences.
	AttendanceDefault = 100.0
	// ScoreDefault applies to GPA and other score ratios.
	ScoreDefault = 0.0
)

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Ratio is the percentage of items matching match, rounded to 2 places.
// It returns emptyDefault for an empty collection.
func Ratio[T any](items []T, match func(T) bool, emptyDefault float64) float64 {
	if len(items) == 0 {
		return emptyDefault
	}
	n := 0
	for _, it := range items {
		if match(it) {
			n++
		}
	}
	return Round(float64(n)/float64(len(items))*100, 2)
}

// Average is the mean of value over items, rounded to 2 places.
// It returns emptyDefault for an empty collection.
func Average[T any](items []T, value func(T) float64, emptyDefault float64) float64 {
	if len(items) == 0 {
		return emptyDefault
	}
	return Round(Sum(items, value)/float64(len(items)), 2)
}

// Sum totals value over items.
func Sum[T any](items []T, value func(T) float64) float64 {
	var total float64
	for _, it := range items {
		total += value(it)
	}
	return total
}

// Count is one labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Boundary is the inclusive lower edge of a bucket.
type Boundary struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
}

// GradeBoundaries are the letter-grade buckets over percentages.
var GradeBoundaries = []Boundary{
	{Label: "A", Min: 90},
	{Label: "B", Min: 80},
	{Label: "C", Min: 70},
	{Label: "D", Min: 60},
	{Label: "F", Min: 0},
}

// Bucket classifies each item into the first boundary whose Min it reaches.
// Bounds are expected in descending Min order; values below every Min land
// in the last bucket. The result keeps the caller's label order.
func Bucket[T any](items []T, value func(T) float64, bounds []Boundary) []Count {
	out := make([]Count, len(bounds))
	for i, b := range bounds {
		out[i] = Count{Label: b.Label}
	}
	if len(bounds) == 0 {
		return out
	}
	for _, it := range items {
		v := value(it)
		idx := len(bounds) - 1
		for i, b := range bounds {
			if v >= b.Min {
				idx = i
				break
			}
		}
		out[idx].Count++
	}
	return out
}

// GroupCount tallies keys. An item contributes once to each key it reports,
// so this is a multi-membership count, not a partition. Empty keys are skipped.
func GroupCount[T any](items []T, keys func(T) []string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		for _, k := range keys(it) {
			if k == "" {
				continue
			}
			out[k]++
		}
	}
	return out
}

// SortedCounts orders a tally by count descending, then label ascending.
func SortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TopN returns the n highest-scoring items. Ties keep insertion order.
func TopN[T any](items []T, score func(T) float64, n int) []T {
	if n <= 0 || len(items) == 0 {
		return []T{}
	}
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]) > score(sorted[j])
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Activity is one entry of a merged activity feed.
type Activity struct {
	Kind  string    `json:"kind"`
	ID    string    `json:"id"`
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// ActivitiesOf maps a collection onto feed entries.
func ActivitiesOf[T any](items []T, fn func(T) Activity) []Activity {
	out := make([]Activity, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

// RecentActivity merges groups and returns the n most recent entries.
// Equal timestamps keep argument order, then in-group order.
func RecentActivity(n int, groups ...[]Activity) []Activity {
	var merged []Activity
	for _, g := range groups {
		merged = append(merged, g...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].At.After(merged[j].At)
	})
	if n < 0 {
		n = 0
	}
	if n > len(merged) {
		n = len(merged)
	}
	out := make([]Activity, n)
	copy(out, merged[:n])
	return out
}
