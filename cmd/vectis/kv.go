package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vectis"
)

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				if err := c.Put(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return a.renderOK(cmd)
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				value, found, err := c.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("key %q not found", args[0])
				}
				return a.render(cmd, vectis.Entry{Key: args[0], Value: value}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, value)
					return err
				})
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				if err := c.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return a.renderOK(cmd)
			})
		},
	}
}

func newScanCmd(a *app) *cobra.Command {
	var r vectis.ScanRange

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List entries in a key range",
		Long:  "List entries with keys in [start, end). An empty end is unbounded.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				entries, err := c.Scan(cmd.Context(), r)
				if err != nil {
					return err
				}
				return a.render(cmd, entries, func(w io.Writer) error {
					return writeEntries(w, entries)
				})
			})
		},
	}

	cmd.Flags().StringVar(&r.Start, "start", "", "first key (inclusive)")
	cmd.Flags().StringVar(&r.End, "end", "", "last key (exclusive)")
	cmd.Flags().IntVar(&r.Limit, "limit", 0, "maximum number of entries (0 = unbounded)")
	cmd.Flags().BoolVar(&r.Reverse, "reverse", false, "descending key order")

	return cmd
}

func newBatchPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch-put <key=value>...",
		Short: "Store several values in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make(map[string]string, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid pair %q (want key=value)", arg)
				}
				items[key] = value
			}

			return a.withClient(cmd, func(c *vectis.Client) error {
				if err := c.BatchPut(cmd.Context(), items); err != nil {
					return err
				}
				return a.renderOK(cmd)
			})
		},
	}
}

type lookupResult struct {
	Key   string  `json:"key" yaml:"key"`
	Value *string `json:"value" yaml:"value"`
}

func newBatchGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch-get <key>...",
		Short: "Fetch several keys in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				lookups, err := c.BatchGetOrdered(cmd.Context(), args)
				if err != nil {
					return err
				}

				results := make([]lookupResult, len(args))
				for i, l := range lookups {
					results[i].Key = args[i]
					if l.Found {
						results[i].Value = &l.Value
					}
				}

				return a.render(cmd, results, func(w io.Writer) error {
					for _, r := range results {
						value := "(not found)"
						if r.Value != nil {
							value = *r.Value
						}
						if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Key, value); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}

func newBatchDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch-delete <key>...",
		Short: "Delete several keys in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				if err := c.BatchDelete(cmd.Context(), args); err != nil {
					return err
				}
				return a.renderOK(cmd)
			})
		},
	}
}

func writeEntries(w io.Writer, entries []vectis.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
