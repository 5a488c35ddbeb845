// Package vector provides the canonical embedding type used by the vectis client.
//
// A Vector is an ordered, fixed-dimension sequence of float32 components.
// All pairwise metrics validate dimensions before computing and accumulate in
// float64.
//
// # Supported Metrics
//
//   - MetricCosine: 1 - cosine similarity
//   - MetricEuclidean: L2 distance
//   - MetricDot: negative dot product (maximum inner product search)
//   - MetricManhattan: L1 distance
//
// Lower distance means more similar for every metric.
//
// # Usage
//
//	a := vector.New([]float32{1, 0, 0})
//	b := vector.New([]float32{0, 1, 0})
//	sim, err := a.CosineSimilarity(b)      // 0
//	d, err := vector.Distance(a, b, vector.MetricEuclidean) // ~1.414
//	unit := a.Normalize()
//
// # Degenerate Inputs
//
// Normalizing the zero vector returns an unchanged copy. Cosine similarity
// against a zero-norm vector is defined as 0. Construction does not reject
// NaN or infinite components; call Validate before sending a vector to a
// remote store.
package vector
