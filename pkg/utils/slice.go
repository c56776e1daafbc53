package utils

// FilterSlice maps every element through f and keeps the results for which
// f reports true.
func FilterSlice[S ~[]E, E any, T any](s S, f func(E) (T, bool)) []T {
	res := make([]T, 0, len(s))
	for _, item := range s {
		if v, ok := f(item); ok {
			res = append(res, v)
		}
	}
	return res
}

// FilterUniqSlice is FilterSlice with duplicate results dropped, keeping the
// first occurrence.
func FilterUniqSlice[S ~[]E, E any, T comparable](s S, f func(E) (T, bool)) []T {
	seen := make(map[T]struct{}, len(s))
	res := make([]T, 0, len(s))
	for _, item := range s {
		v, ok := f(item)
		if !ok {
			continue
		}
		if _, exist := seen[v]; exist {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// FirstDuplicate returns the first element that appears more than once.
func FirstDuplicate[T comparable](s []T) (T, bool) {
	seen := make(map[T]struct{}, len(s))
	for _, item := range s {
		if _, ok := seen[item]; ok {
			return item, true
		}
		seen[item] = struct{}{}
	}
	var zero T
	return zero, false
}

func SliceToMap[S ~[]E, E any, K comparable](s S, key func(E) K) map[K]E {
	m := make(map[K]E, len(s))
	for _, item := range s {
		m[key(item)] = item
	}
	return m
}

// Duplicates returns every element that appears more than once, each listed
// once in the order its first repeat is seen.
func Duplicates[T comparable](s []T) []T {
	seen := make(map[T]int, len(s))
	res := make([]T, 0)
	for _, item := range s {
		seen[item]++
		if seen[item] == 2 {
			res = append(res, item)
		}
	}
	return res
}
