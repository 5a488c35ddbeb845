package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vectis"
)

type vectorResult struct {
	Key    string    `json:"key" yaml:"key"`
	Vector []float32 `json:"vector" yaml:"vector"`
}

func newVectorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vector",
		Short: "Store, fetch and search vectors",
	}

	cmd.AddCommand(
		newVectorPutCmd(a),
		newVectorGetCmd(a),
		newVectorSearchCmd(a),
		newVectorListCmd(a),
		newVectorStatsCmd(a),
	)

	return cmd
}

func newVectorPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <c1,c2,...>",
		Short: "Store a vector under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVector(args[1])
			if err != nil {
				return fmt.Errorf("invalid vector: %w", err)
			}
			return a.withClient(cmd, func(c *vectis.Client) error {
				if err := c.PutVector(cmd.Context(), args[0], v); err != nil {
					return err
				}
				return a.renderOK(cmd)
			})
		},
	}
}

func newVectorGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the vector stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				v, found, err := c.GetVector(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("vector %q not found", args[0])
				}
				return a.render(cmd, vectorResult{Key: args[0], Vector: v.Slice()}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, formatVector(v))
					return err
				})
			})
		},
	}
}

func newVectorSearchCmd(a *app) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <c1,c2,...>",
		Short: "Find the k nearest vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseVector(args[0])
			if err != nil {
				return fmt.Errorf("invalid vector: %w", err)
			}
			return a.withClient(cmd, func(c *vectis.Client) error {
				results, err := c.SearchSimilar(cmd.Context(), query, k)
				if err != nil {
					return err
				}
				return a.render(cmd, results, func(w io.Writer) error {
					for _, r := range results {
						if _, err := fmt.Fprintf(w, "%s\t%g\n", r.Key, r.Distance); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 10, "number of neighbours")

	return cmd
}

func newVectorListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				entries, err := c.ListVectors(cmd.Context())
				if err != nil {
					return err
				}

				results := make([]vectorResult, len(entries))
				for i, e := range entries {
					results[i] = vectorResult{Key: e.Key, Vector: e.Vector.Slice()}
				}

				return a.render(cmd, results, func(w io.Writer) error {
					for _, e := range entries {
						if _, err := fmt.Fprintf(w, "%s\t%s\n", e.Key, formatVector(e.Vector)); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}

func newVectorStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show vector index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				s, err := c.VectorStats(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd, s, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "index_enabled: %t\nnum_vectors: %d\ndimension: %d\nmetric: %s\n",
						s.IndexEnabled, s.NumVectors, s.Dimension, s.Metric)
					return err
				})
			})
		},
	}
}
