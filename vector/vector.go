package vector

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Vector is a dense float32 embedding.
//
// The dimension is fixed at construction. Component values may be changed in
// place with Set; copies of a Vector value share their components, use Clone
// for an independent copy.
type Vector struct {
	data []float32
}

// New returns a vector holding a copy of data. Empty input yields a
// zero-dimension vector.
func New(data []float32) Vector {
	return Vector{data: slices.Clone(data)}
}

// FromFloat64 converts data to float32 precision.
func FromFloat64(data []float64) Vector {
	v := make([]float32, len(data))
	for i, x := range data {
		v[i] = float32(x)
	}
	return Vector{data: v}
}

// Zeros returns the zero vector of the given dimension.
// Negative dimensions are treated as 0.
func Zeros(dim int) Vector {
	if dim < 0 {
		dim = 0
	}
	return Vector{data: make([]float32, dim)}
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.data) }

// At returns the component at index i.
func (v Vector) At(i int) (float32, error) {
	if i < 0 || i >= len(v.data) {
		return 0, &ErrIndexOutOfRange{Index: i, Dimension: len(v.data)}
	}
	return v.data[i], nil
}

// Set overwrites the component at index i.
func (v Vector) Set(i int, x float32) error {
	if i < 0 || i >= len(v.data) {
		return &ErrIndexOutOfRange{Index: i, Dimension: len(v.data)}
	}
	v.data[i] = x
	return nil
}

// Slice returns a copy of the components.
func (v Vector) Slice() []float32 {
	return slices.Clone(v.data)
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	return Vector{data: slices.Clone(v.data)}
}

// Equal reports whether v and other have the same dimension and components.
func (v Vector) Equal(other Vector) bool {
	return slices.Equal(v.data, other.data)
}

// IsFinite reports whether every component is a finite number.
func (v Vector) IsFinite() bool {
	return v.Validate() == nil
}

// Validate returns *ErrNonFinite for the first NaN or infinite component.
func (v Vector) Validate() error {
	for i, x := range v.data {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &ErrNonFinite{Index: i, Value: x}
		}
	}
	return nil
}

// Magnitude returns the L2 norm.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(dot(v.data, v.data))
}

// Normalize returns a copy of v scaled to unit L2 norm.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	out := v.Clone()
	norm := v.Magnitude()
	if norm == 0 {
		return out
	}
	for i, x := range out.data {
		out.data[i] = float32(float64(x) / norm)
	}
	return out
}

// DotProduct returns the sum of componentwise products.
func (v Vector) DotProduct(other Vector) (float64, error) {
	if err := checkDims(v, other); err != nil {
		return 0, err
	}
	return dot(v.data, other.data), nil
}

// CosineSimilarity returns dot(v, other) / (|v| * |other|), in [-1, 1].
// The result is 0 when either vector has zero norm.
func (v Vector) CosineSimilarity(other Vector) (float64, error) {
	if err := checkDims(v, other); err != nil {
		return 0, err
	}
	return cosine(v.data, other.data), nil
}

// CosineDistance returns 1 - CosineSimilarity.
func (v Vector) CosineDistance(other Vector) (float64, error) {
	sim, err := v.CosineSimilarity(other)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// EuclideanDistance returns the L2 norm of the componentwise difference.
func (v Vector) EuclideanDistance(other Vector) (float64, error) {
	if err := checkDims(v, other); err != nil {
		return 0, err
	}
	return math.Sqrt(squaredL2(v.data, other.data)), nil
}

// ManhattanDistance returns the L1 norm of the componentwise difference.
func (v Vector) ManhattanDistance(other Vector) (float64, error) {
	if err := checkDims(v, other); err != nil {
		return 0, err
	}
	var sum float64
	for i := range v.data {
		sum += math.Abs(float64(v.data[i]) - float64(other.data[i]))
	}
	return sum, nil
}

// String renders at most the first five components.
func (v Vector) String() string {
	const preview = 5

	var sb strings.Builder
	fmt.Fprintf(&sb, "Vector(dim=%d, data=[", len(v.data))
	for i, x := range v.data {
		if i == preview {
			sb.WriteString(" ...")
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", x)
	}
	sb.WriteString("])")
	return sb.String()
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var d, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		d += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := d / (math.Sqrt(na) * math.Sqrt(nb))
	// Rounding can push parallel vectors slightly past the bounds.
	return max(-1, min(1, sim))
}
