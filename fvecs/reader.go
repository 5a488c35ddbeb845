package fvecs

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/hupe1980/vectis/vector"
)

// MaxDimension bounds the dimension accepted from a record header.
const MaxDimension = 1 << 16

var (
	// ErrInvalidDimension is returned for a non-positive or oversized
	// record dimension.
	ErrInvalidDimension = errors.New("fvecs: invalid dimension")
	// ErrDimensionChanged is returned when a record's dimension differs
	// from the first record's.
	ErrDimensionChanged = errors.New("fvecs: dimension changed")
)

// Reader decodes vectors from an .fvecs stream.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
	size   int64 // -1 when unknown
	dim    int
	n      int
	buf    []byte
}

// Open opens the .fvecs file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// NewReader returns a Reader for r. When r can report its size (as
// *os.File does) EstimatedTotal is available.
func NewReader(r io.Reader) *Reader {
	size := int64(-1)
	if st, ok := r.(interface{ Stat() (fs.FileInfo, error) }); ok {
		if fi, err := st.Stat(); err == nil {
			size = fi.Size()
		}
	}
	return &Reader{
		r:    bufio.NewReaderSize(r, 64*1024),
		size: size,
	}
}

// Dimension returns the dimension of the file, reading the first record
// header if needed. It returns 0 for an empty stream.
func (r *Reader) Dimension() (int, error) {
	if r.dim > 0 {
		return r.dim, nil
	}
	hdr, err := r.r.Peek(4)
	if err != nil {
		if errors.Is(err, io.EOF) && len(hdr) == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("fvecs: read dimension: %w", err)
	}
	dim, err := checkDimension(hdr)
	if err != nil {
		return 0, err
	}
	r.dim = dim
	return dim, nil
}

// EstimatedTotal returns the number of vectors implied by the stream size,
// or -1 when the size is unknown.
func (r *Reader) EstimatedTotal() int {
	if r.size < 0 {
		return -1
	}
	dim, err := r.Dimension()
	if err != nil || dim == 0 {
		return 0
	}
	return int(r.size / int64(4+4*dim))
}

// Count returns the number of vectors read so far.
func (r *Reader) Count() int {
	return r.n
}

// Next returns the next vector, or io.EOF after the last one.
func (r *Reader) Next() (vector.Vector, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return vector.Vector{}, io.EOF
		}
		return vector.Vector{}, fmt.Errorf("fvecs: record %d: %w", r.n, err)
	}

	dim, err := checkDimension(hdr[:])
	if err != nil {
		return vector.Vector{}, fmt.Errorf("record %d: %w", r.n, err)
	}
	if r.dim == 0 {
		r.dim = dim
	} else if dim != r.dim {
		return vector.Vector{}, fmt.Errorf("%w: record %d has %d, expected %d", ErrDimensionChanged, r.n, dim, r.dim)
	}

	need := 4 * dim
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	buf := r.buf[:need]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return vector.Vector{}, fmt.Errorf("fvecs: record %d: %w", r.n, err)
	}

	data := make([]float32, dim)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	r.n++
	return vector.New(data), nil
}

// Close closes the underlying file if the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func checkDimension(hdr []byte) (int, error) {
	d := int32(binary.LittleEndian.Uint32(hdr)) //nolint:gosec
	if d <= 0 || d > MaxDimension {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDimension, d)
	}
	return int(d), nil
}
