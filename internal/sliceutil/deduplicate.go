// Package sliceutil provides generic slice helpers.
package sliceutil

// UniqueBy returns the items whose key has not been seen before, in order.
// Items with a zero key are dropped.
//
//	genres := sliceutil.UniqueBy(all, func(g hotpepper.Genre) string { return g.Code })
func UniqueBy[T any, K comparable](items []T, key func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	var zero K
	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == zero {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}
	return result
}
