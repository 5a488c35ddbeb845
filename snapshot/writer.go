package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/vectis/vector"
)

// Writer encodes records into a snapshot stream.
//
// Close must be called to flush the compressor. It does not close the
// underlying writer.
type Writer struct {
	buf   *bufio.Writer
	comp  io.WriteCloser // nil for CompressionNone
	enc   *json.Encoder
	count int
	done  bool
}

// NewWriter writes the snapshot header to w and returns a Writer for the
// records. An empty compression selects zstd.
func NewWriter(w io.Writer, c Compression) (*Writer, error) {
	if c == "" {
		c = CompressionZstd
	}
	if err := writeHeader(w, c); err != nil {
		return nil, err
	}

	sw := &Writer{}

	var dst io.Writer = w
	switch c {
	case CompressionLZ4:
		sw.comp = lz4.NewWriter(w)
		dst = sw.comp
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("snapshot: create compressor: %w", err)
		}
		sw.comp = enc
		dst = enc
	}

	sw.buf = bufio.NewWriter(dst)
	sw.enc = json.NewEncoder(sw.buf)
	return sw, nil
}

// WriteEntry appends a key/value record.
func (w *Writer) WriteEntry(key, value string) error {
	return w.write(Record{Kind: KindKV, Key: key, Value: value})
}

// WriteVector appends a vector record.
func (w *Writer) WriteVector(key string, v vector.Vector) error {
	return w.write(Record{Kind: KindVector, Key: key, Vector: &v})
}

func (w *Writer) write(rec Record) error {
	if w.done {
		return io.ErrClosedPipe
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("snapshot: encode record %q: %w", rec.Key, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered records and finishes the compressed stream.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	if w.comp != nil {
		if err := w.comp.Close(); err != nil {
			return fmt.Errorf("snapshot: close compressor: %w", err)
		}
	}
	return nil
}
