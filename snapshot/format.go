package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vectis/vector"
)

// ErrInvalidSnapshot is returned for streams that are not snapshots or
// that were written by an unsupported format version.
var ErrInvalidSnapshot = errors.New("snapshot: invalid snapshot")

var (
	magic         = [4]byte{'V', 'S', 'N', 'P'}
	formatVersion = uint8(1)
	headerLen     = 6
)

// Compression selects the codec for the record stream.
type Compression string

const (
	// CompressionNone stores records uncompressed.
	CompressionNone Compression = "none"
	// CompressionLZ4 uses LZ4 frames (fast).
	CompressionLZ4 Compression = "lz4"
	// CompressionZstd uses zstd (better ratio). This is the default.
	CompressionZstd Compression = "zstd"
)

// wire byte values
const (
	codeNone uint8 = 0
	codeLZ4  uint8 = 1
	codeZstd uint8 = 2
)

func (c Compression) code() (uint8, error) {
	switch c {
	case CompressionNone:
		return codeNone, nil
	case CompressionLZ4:
		return codeLZ4, nil
	case CompressionZstd, "":
		return codeZstd, nil
	default:
		return 0, fmt.Errorf("snapshot: unknown compression %q", string(c))
	}
}

func compressionFromCode(b uint8) (Compression, error) {
	switch b {
	case codeNone:
		return CompressionNone, nil
	case codeLZ4:
		return CompressionLZ4, nil
	case codeZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("%w: unknown compression %d", ErrInvalidSnapshot, b)
	}
}

func writeHeader(w io.Writer, c Compression) error {
	code, err := c.code()
	if err != nil {
		return err
	}

	buf := make([]byte, 0, headerLen)
	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion, code)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (Compression, error) {
	buf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", fmt.Errorf("%w: truncated header", ErrInvalidSnapshot)
		}
		return "", fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(buf[:4]) != magic {
		return "", fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if buf[4] != formatVersion {
		return "", fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, buf[4])
	}
	return compressionFromCode(buf[5])
}

// Kind tags a record.
type Kind string

const (
	KindKV     Kind = "kv"
	KindVector Kind = "vector"
)

// Record is a single snapshot entry.
type Record struct {
	Kind   Kind           `json:"kind"`
	Key    string         `json:"key"`
	Value  string         `json:"value,omitempty"`
	Vector *vector.Vector `json:"vector,omitempty"`
}

func (r *Record) validate() error {
	switch r.Kind {
	case KindKV:
		if r.Vector != nil {
			return fmt.Errorf("%w: kv record %q carries a vector", ErrInvalidSnapshot, r.Key)
		}
	case KindVector:
		if r.Vector == nil {
			return fmt.Errorf("%w: vector record %q has no vector", ErrInvalidSnapshot, r.Key)
		}
	default:
		return fmt.Errorf("%w: unknown record kind %q", ErrInvalidSnapshot, string(r.Kind))
	}
	return nil
}
