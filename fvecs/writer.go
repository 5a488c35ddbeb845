package fvecs

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/vectis/vector"
)

// Writer encodes vectors as .fvecs records. Call Flush when done.
type Writer struct {
	w   *bufio.Writer
	dim int
	n   int
	buf []byte
}

// NewWriter returns a Writer for w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends v. Every vector must have the dimension of the first.
func (w *Writer) Write(v vector.Vector) error {
	dim := v.Dim()
	if dim <= 0 || dim > MaxDimension {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if w.dim == 0 {
		w.dim = dim
	} else if dim != w.dim {
		return fmt.Errorf("%w: vector %d has %d, expected %d", ErrDimensionChanged, w.n, dim, w.dim)
	}

	need := 4 + 4*dim
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	buf := w.buf[:need]
	binary.LittleEndian.PutUint32(buf, uint32(dim)) //nolint:gosec
	for i, x := range v.Slice() {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(x))
	}

	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of vectors written.
func (w *Writer) Count() int {
	return w.n
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
