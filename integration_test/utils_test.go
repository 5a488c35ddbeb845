package integration_test

import (
	"sort"

	"github.com/hupe1980/vectis/vector"
)

// exactTopK returns the keys of the k nearest items by Euclidean distance,
// ties broken by key.
func exactTopK(items map[string]vector.Vector, q vector.Vector, k int) []string {
	type scored struct {
		key  string
		dist float64
	}

	all := make([]scored, 0, len(items))
	for key, v := range items {
		d, err := q.EuclideanDistance(v)
		if err != nil {
			panic(err)
		}
		all = append(all, scored{key: key, dist: d})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].key < all[j].key
	})

	if k > len(all) {
		k = len(all)
	}
	out := make([]string, k)
	for i := range out {
		out[i] = all[i].key
	}
	return out
}
