package vector

import "fmt"

// ErrDimensionMismatch indicates a pairwise operation on vectors of different dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrIndexOutOfRange indicates component access outside [0, Dimension).
type ErrIndexOutOfRange struct {
	Index     int
	Dimension int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for dimension %d", e.Index, e.Dimension)
}

// ErrNonFinite indicates a NaN or infinite component.
type ErrNonFinite struct {
	Index int
	Value float32
}

func (e *ErrNonFinite) Error() string {
	return fmt.Sprintf("non-finite component %v at index %d", e.Value, e.Index)
}

func checkDims(a, b Vector) error {
	if len(a.data) != len(b.data) {
		return &ErrDimensionMismatch{Expected: len(a.data), Actual: len(b.data)}
	}
	return nil
}
