package main

import (
	"context"
	"fmt"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vectis"
	"github.com/hupe1980/vectis/blobstore"
	"github.com/hupe1980/vectis/blobstore/minio"
	"github.com/hupe1980/vectis/blobstore/s3"
	"github.com/hupe1980/vectis/resource"
	"github.com/hupe1980/vectis/snapshot"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export, import and list snapshots",
		Long:  "Snapshots are portable backups of all entries and vectors, stored on the configured backend (local, minio or s3).",
	}

	cmd.AddCommand(
		newSnapshotExportCmd(a),
		newSnapshotImportCmd(a),
		newSnapshotListCmd(a),
	)

	return cmd
}

// openStore builds the configured snapshot backend.
func (a *app) openStore(ctx context.Context) (blobstore.Store, error) {
	cfg := a.cfg.Snapshot

	switch cfg.Backend {
	case "minio":
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("minio backend needs snapshot.endpoint and snapshot.bucket")
		}
		client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("creating minio client: %w", err)
		}
		return minio.NewStore(client, cfg.Bucket, cfg.Prefix), nil

	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 backend needs snapshot.bucket")
		}
		opts := []s3.Option{s3.WithPrefix(cfg.Prefix), s3.WithPathStyle(cfg.PathStyle)}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.Endpoint))
		}
		store, err := s3.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating s3 client: %w", err)
		}
		return store, nil

	default:
		return blobstore.NewLocalStore(cfg.Dir), nil
	}
}

func (a *app) snapshotOptions(cmd *cobra.Command) snapshot.Options {
	opts := snapshot.Options{
		Compression: snapshot.Compression(a.cfg.Snapshot.Compression),
		Logger:      a.logger(cmd),
	}
	if a.cfg.Snapshot.IOLimit > 0 {
		opts.IO = resource.NewController(resource.Config{IOLimitBytesPerSec: a.cfg.Snapshot.IOLimit})
	}
	return opts
}

func renderStats(a *app, cmd *cobra.Command, verb, name string, stats snapshot.Stats) error {
	return a.render(cmd, stats, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s: %d entries, %d vectors\n", verb, name, stats.Entries, stats.Vectors)
		return err
	})
}

func newSnapshotExportCmd(a *app) *cobra.Command {
	var (
		start, end  string
		skipVectors bool
		pageSize    int
	)

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a snapshot of the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			opts := a.snapshotOptions(cmd)
			opts.Range = vectis.ScanRange{Start: start, End: end}
			opts.SkipVectors = skipVectors
			opts.PageSize = pageSize

			return a.withClient(cmd, func(c *vectis.Client) error {
				stats, err := snapshot.Save(cmd.Context(), c, store, args[0], opts)
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				return renderStats(a, cmd, "exported", args[0], stats)
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first key (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "last key (exclusive)")
	cmd.Flags().BoolVar(&skipVectors, "skip-vectors", false, "export entries only")
	cmd.Flags().IntVar(&pageSize, "page-size", snapshot.DefaultPageSize, "scan page size")

	return cmd
}

func newSnapshotImportCmd(a *app) *cobra.Command {
	var (
		skipVectors bool
		batchSize   int
	)

	cmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Replay a snapshot into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			opts := a.snapshotOptions(cmd)
			opts.SkipVectors = skipVectors
			opts.BatchSize = batchSize

			return a.withClient(cmd, func(c *vectis.Client) error {
				stats, err := snapshot.Load(cmd.Context(), c, store, args[0], opts)
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				return renderStats(a, cmd, "imported", args[0], stats)
			})
		},
	}

	cmd.Flags().BoolVar(&skipVectors, "skip-vectors", false, "import entries only")
	cmd.Flags().IntVar(&batchSize, "batch-size", snapshot.DefaultBatchSize, "records per write request")

	return cmd
}

func newSnapshotListCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			names, err := store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			return a.render(cmd, names, func(w io.Writer) error {
				for _, n := range names {
					if _, err := fmt.Fprintln(w, n); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only list names with this prefix")

	return cmd
}
