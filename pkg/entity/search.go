package entity

import "strings"

// MatchText builds a case-insensitive substring predicate over the given
// fields. An empty or blank query matches everything.
func MatchText[T any](query string, fields ...func(T) string) func(T) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return func(T) bool { return true }
	}
	return func(v T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(v)), q) {
				return true
			}
		}
		return false
	}
}

// And combines predicates; all must hold.
func And[T any](preds ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}
