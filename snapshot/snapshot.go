package snapshot

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hupe1980/vectis"
	"github.com/hupe1980/vectis/blobstore"
	"github.com/hupe1980/vectis/resource"
	"github.com/hupe1980/vectis/vector"
)

const (
	// DefaultPageSize is the scan page size used by Export.
	DefaultPageSize = 1000
	// DefaultBatchSize is the number of records Import sends per request.
	DefaultBatchSize = 256
)

// Source is the read side of a store. *vectis.Client implements it.
type Source interface {
	Scan(ctx context.Context, r vectis.ScanRange) ([]vectis.Entry, error)
	ListVectors(ctx context.Context) ([]vectis.VectorEntry, error)
}

// Target is the write side of a store. *vectis.Client implements it.
type Target interface {
	BatchPutEntries(ctx context.Context, entries []vectis.Entry) error
	PutVectors(ctx context.Context, items map[string]vector.Vector) error
}

var (
	_ Source = (*vectis.Client)(nil)
	_ Target = (*vectis.Client)(nil)
)

// Options configures snapshot export and import.
type Options struct {
	// Compression for Export and Save. Empty selects zstd.
	Compression Compression
	// Range limits the exported entries. Limit and Reverse are ignored.
	Range vectis.ScanRange
	// SkipVectors omits vectors from Export and ignores them on Import.
	SkipVectors bool
	// PageSize is the scan page size for Export.
	PageSize int
	// BatchSize is the number of records per write request on Import.
	BatchSize int
	// IO throttles Save and Load byte streams. Nil means unthrottled.
	IO *resource.Controller
	// Logger receives progress logs. Nil discards them.
	Logger *vectis.Logger
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Logger == nil {
		o.Logger = vectis.NoopLogger()
	}
	return o
}

// Stats counts the records handled by an export or import.
type Stats struct {
	Entries int `json:"entries" yaml:"entries"`
	Vectors int `json:"vectors" yaml:"vectors"`
}

// Export writes every entry in opts.Range and, unless opts.SkipVectors is
// set, every vector of src to w.
func Export(ctx context.Context, src Source, w io.Writer, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	start := time.Now()

	sw, err := NewWriter(w, opts.Compression)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	if err := exportEntries(ctx, src, sw, opts, &stats); err != nil {
		return stats, err
	}

	if !opts.SkipVectors {
		vectors, err := src.ListVectors(ctx)
		if err != nil {
			return stats, err
		}
		for _, ve := range vectors {
			if err := sw.WriteVector(ve.Key, ve.Vector); err != nil {
				return stats, err
			}
			stats.Vectors++
		}
	}

	if err := sw.Close(); err != nil {
		return stats, err
	}

	opts.Logger.InfoContext(ctx, "snapshot exported",
		"entries", stats.Entries,
		"vectors", stats.Vectors,
		"duration", time.Since(start),
	)
	return stats, nil
}

// exportEntries pages through the range in ascending key order. Each page
// resumes just past the last key seen.
func exportEntries(ctx context.Context, src Source, sw *Writer, opts Options, stats *Stats) error {
	r := vectis.ScanRange{
		Start: opts.Range.Start,
		End:   opts.Range.End,
		Limit: opts.PageSize,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := src.Scan(ctx, r)
		if err != nil {
			return err
		}
		for _, e := range page {
			if err := sw.WriteEntry(e.Key, e.Value); err != nil {
				return err
			}
			stats.Entries++
		}
		if len(page) < r.Limit {
			return nil
		}
		r.Start = page[len(page)-1].Key + "\x00"
	}
}

// Import replays the snapshot in r into dst.
func Import(ctx context.Context, dst Target, r io.Reader, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	start := time.Now()

	sr, err := NewReader(r)
	if err != nil {
		return Stats{}, err
	}
	defer sr.Close()

	var (
		stats   Stats
		entries = make([]vectis.Entry, 0, opts.BatchSize)
		vectors = make(map[string]vector.Vector, opts.BatchSize)
	)

	flushEntries := func() error {
		if len(entries) == 0 {
			return nil
		}
		if err := dst.BatchPutEntries(ctx, entries); err != nil {
			return err
		}
		stats.Entries += len(entries)
		entries = entries[:0]
		return nil
	}
	flushVectors := func() error {
		if len(vectors) == 0 {
			return nil
		}
		if err := dst.PutVectors(ctx, vectors); err != nil {
			return err
		}
		stats.Vectors += len(vectors)
		vectors = make(map[string]vector.Vector, opts.BatchSize)
		return nil
	}

	for {
		rec, err := sr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		switch rec.Kind {
		case KindKV:
			entries = append(entries, vectis.Entry{Key: rec.Key, Value: rec.Value})
			if len(entries) >= opts.BatchSize {
				if err := flushEntries(); err != nil {
					return stats, err
				}
			}
		case KindVector:
			if opts.SkipVectors {
				continue
			}
			// A repeated key in the same chunk keeps the later vector.
			vectors[rec.Key] = *rec.Vector
			if len(vectors) >= opts.BatchSize {
				if err := flushVectors(); err != nil {
					return stats, err
				}
			}
		}
	}

	if err := flushEntries(); err != nil {
		return stats, err
	}
	if err := flushVectors(); err != nil {
		return stats, err
	}

	opts.Logger.InfoContext(ctx, "snapshot imported",
		"entries", stats.Entries,
		"vectors", stats.Vectors,
		"duration", time.Since(start),
	)
	return stats, nil
}

// Save exports src into the blob called name. A failed export aborts the
// upload so no partial snapshot is left behind.
func Save(ctx context.Context, src Source, store blobstore.Store, name string, opts Options) (Stats, error) {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return Stats{}, err
	}

	var w io.Writer = wb
	if opts.IO != nil {
		w = resource.NewRateLimitedWriter(ctx, wb, opts.IO)
	}

	stats, err := Export(ctx, src, w, opts)
	if err != nil {
		_ = wb.Abort()
		return stats, err
	}
	if err := wb.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Load imports the blob called name into dst.
func Load(ctx context.Context, dst Target, store blobstore.Store, name string, opts Options) (Stats, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Stats{}, err
	}
	defer blob.Close()

	var r io.Reader = blob
	if opts.IO != nil {
		r = resource.NewRateLimitedReader(ctx, blob, opts.IO)
	}
	return Import(ctx, dst, r, opts)
}
