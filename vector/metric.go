package vector

import (
	"fmt"
	"strings"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricCosine Metric = iota
	MetricEuclidean
	MetricDot
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	case MetricEuclidean:
		return "euclidean"
	case MetricDot:
		return "dotproduct"
	case MetricManhattan:
		return "manhattan"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMetric resolves a metric name, case-insensitively.
// Accepted aliases: l2, dot, inner, l1.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cosine":
		return MetricCosine, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "dotproduct", "dot", "inner":
		return MetricDot, nil
	case "manhattan", "l1":
		return MetricManhattan, nil
	default:
		return 0, fmt.Errorf("unknown distance metric: %q", name)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b Vector) (float64, error)

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCosine:
		return Vector.CosineDistance, nil
	case MetricEuclidean:
		return Vector.EuclideanDistance, nil
	case MetricDot:
		return dotDistance, nil
	case MetricManhattan:
		return Vector.ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Distance computes the distance between a and b under metric m.
// Lower values mean more similar vectors.
func Distance(a, b Vector, m Metric) (float64, error) {
	fn, err := Provider(m)
	if err != nil {
		return 0, err
	}
	return fn(a, b)
}

func dotDistance(a, b Vector) (float64, error) {
	d, err := a.DotProduct(b)
	if err != nil {
		return 0, err
	}
	return -d, nil
}
