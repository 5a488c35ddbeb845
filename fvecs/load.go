package fvecs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vectis/vector"
)

// DefaultBatchSize is the number of vectors Load sends per PutVectors call.
const DefaultBatchSize = 256

// Target receives loaded vectors. *vectis.Client implements it.
type Target interface {
	PutVectors(ctx context.Context, items map[string]vector.Vector) error
}

// LoadOptions configures Load.
type LoadOptions struct {
	// KeyPrefix is prepended to the zero-based record index to form keys.
	KeyPrefix string
	// Limit stops after this many vectors. 0 loads the whole file.
	Limit int
	// BatchSize is the number of vectors per PutVectors call.
	BatchSize int
	// Progress, if set, is called after every batch with the running total.
	Progress func(loaded int)
}

// Load reads vectors from r and stores them in dst under
// KeyPrefix+index. It returns the number of vectors stored.
func Load(ctx context.Context, dst Target, r *Reader, opts LoadOptions) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	loaded := 0
	batch := make(map[string]vector.Vector, opts.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := dst.PutVectors(ctx, batch); err != nil {
			return err
		}
		loaded += len(batch)
		batch = make(map[string]vector.Vector, opts.BatchSize)
		if opts.Progress != nil {
			opts.Progress(loaded)
		}
		return nil
	}

	for i := 0; opts.Limit == 0 || i < opts.Limit; i++ {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		v, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return loaded, err
		}

		batch[fmt.Sprintf("%s%d", opts.KeyPrefix, i)] = v
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return loaded, err
			}
		}
	}

	if err := flush(); err != nil {
		return loaded, err
	}
	return loaded, nil
}
