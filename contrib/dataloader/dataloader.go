// Package dataloader provides the generic key utilities the relation loader
// uses to batch relation fetches across parent rows.
//
// A relation load collects the join keys of all parents, fetches the related
// rows with one query per chunk of keys, and distributes the rows back to
// their parents:
//
//	keys := dataloader.Unique(profileIDs)
//	var follows []*Follow
//	for _, chunk := range dataloader.Chunk(keys, 500) {
//	    rows, err := fetchFollowsOf(ctx, chunk)
//	    ...
//	    follows = append(follows, rows...)
//	}
//	groups := dataloader.GroupByKey(follows, func(f *Follow) string { return f.FollowingProfileID })
//	ordered := dataloader.OrderGroupsByKeys(profileIDs, groups)
package dataloader

import (
	"errors"
)

// ErrNotFound is returned when a key has no value in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from a value.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders values to match the order of requested keys.
// Missing values are represented as zero values with corresponding errors.
// The result always has the same length as keys.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError is like OrderByKeys, but returns zero values for
// missing keys without errors. Used for optional to-one relations.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups values by a key function, preserving the input order
// inside each group.
//
//	follows := ... // rows of follows where following_profile_id IN (...)
//	grouped := GroupByKey(follows, func(f *Follow) string { return f.FollowingProfileID })
//	// grouped[profileID] holds the followers of that profile.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped values to match the order of requested keys.
// Keys without a group get a nil slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// Unique returns the keys without duplicates, in first-seen order.
func Unique[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	result := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}
	return result
}

// Chunk splits keys into consecutive batches of at most size keys.
// A non-positive size returns a single batch.
func Chunk[K any](keys []K, size int) [][]K {
	if len(keys) == 0 {
		return nil
	}
	if size <= 0 || len(keys) <= size {
		return [][]K{keys}
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for size < len(keys) {
		keys, chunks = keys[size:], append(chunks, keys[:size:size])
	}
	return append(chunks, keys)
}
