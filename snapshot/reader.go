package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Reader decodes records from a snapshot stream.
type Reader struct {
	compression Compression
	dec         *json.Decoder
	zstd        *zstd.Decoder
}

// NewReader reads and validates the snapshot header from r.
func NewReader(r io.Reader) (*Reader, error) {
	c, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	sr := &Reader{compression: c}

	var src io.Reader = r
	switch c {
	case CompressionLZ4:
		src = lz4.NewReader(r)
	case CompressionZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: create decompressor: %w", err)
		}
		sr.zstd = d
		src = d
	}

	sr.dec = json.NewDecoder(src)
	return sr, nil
}

// Compression reports the codec recorded in the header.
func (r *Reader) Compression() Compression {
	return r.compression
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		return Record{}, fmt.Errorf("snapshot: read record: %w", err)
	}
	if err := rec.validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Close releases decompressor resources. It does not close the
// underlying reader.
func (r *Reader) Close() error {
	if r.zstd != nil {
		r.zstd.Close()
		r.zstd = nil
	}
	return nil
}
