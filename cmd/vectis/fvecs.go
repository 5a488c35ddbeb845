package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vectis"
	"github.com/hupe1980/vectis/fvecs"
)

type fvecsResult struct {
	File      string `json:"file" yaml:"file"`
	Dimension int    `json:"dimension" yaml:"dimension"`
	Loaded    int    `json:"loaded" yaml:"loaded"`
}

func newFvecsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fvecs",
		Short: "Work with SIFT .fvecs datasets",
	}
	cmd.AddCommand(newFvecsLoadCmd(a))
	return cmd
}

func newFvecsLoadCmd(a *app) *cobra.Command {
	var opts fvecs.LoadOptions

	cmd := &cobra.Command{
		Use:   "load <file.fvecs>",
		Short: "Store every vector of an .fvecs file",
		Long:  "Store every vector of an .fvecs file under <prefix><index>.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fvecs.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			dim, err := r.Dimension()
			if err != nil {
				return err
			}

			logger := a.logger(cmd)
			total := r.EstimatedTotal()
			opts.Progress = func(loaded int) {
				logger.DebugContext(cmd.Context(), "fvecs progress", "loaded", loaded, "estimated_total", total)
			}

			return a.withClient(cmd, func(c *vectis.Client) error {
				n, err := fvecs.Load(cmd.Context(), c, r, opts)
				if err != nil {
					return fmt.Errorf("load failed after %d vectors: %w", n, err)
				}
				res := fvecsResult{File: args[0], Dimension: dim, Loaded: n}
				return a.render(cmd, res, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "loaded %d vectors of dimension %d from %s\n", n, dim, args[0])
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.KeyPrefix, "prefix", "sift:", "key prefix")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of vectors (0 = all)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", fvecs.DefaultBatchSize, "vectors per request")

	return cmd
}
