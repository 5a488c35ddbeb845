package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/vectis"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show server statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				m, err := c.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return a.renderMap(cmd, m)
			})
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(c *vectis.Client) error {
				m, err := c.Health(cmd.Context())
				if err != nil {
					return err
				}
				return a.renderMap(cmd, m)
			})
		},
	}
}
