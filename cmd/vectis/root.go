package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/vectis"
)

type app struct {
	v   *viper.Viper
	cfg Config
}

// NewRootCmd creates the root vectis command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "vectis",
		Short:         "vectis - key-value and vector store client",
		Long:          "vectis talks to a vectis server over HTTP: key-value access, batch operations, vector similarity search and snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initViper(cmd)
		},
	}

	// Global flags map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("addr", "http://localhost:8080", "server base URL")
	root.PersistentFlags().Duration("timeout", vectis.DefaultTimeout, "per-request timeout")
	root.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPutCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newScanCmd(a),
		newBatchPutCmd(a),
		newBatchGetCmd(a),
		newBatchDeleteCmd(a),
		newVectorCmd(a),
		newStatsCmd(a),
		newHealthCmd(a),
		newSnapshotCmd(a),
		newFvecsCmd(a),
	)

	return root
}

// initViper applies defaults, environment, the optional config file and
// flags, in rising precedence, then decodes the result into a.cfg.
func (a *app) initViper(cmd *cobra.Command) error {
	v := a.v

	SetDefaults(v)
	SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("vectis")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vectis")
		// No config file is fine. Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"addr":    "addr",
		"timeout": "timeout",
		"output":  "output",
		"verbose": "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding %s flag: %w", flag, err)
		}
	}

	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return a.cfg.validate()
}

// logger writes to stderr at warn level, or debug with --verbose.
func (a *app) logger(cmd *cobra.Command) *vectis.Logger {
	level := slog.LevelWarn
	if a.cfg.Verbose {
		level = slog.LevelDebug
	}
	return vectis.NewWriterLogger(cmd.ErrOrStderr(), level)
}

// clientOptions translates the configuration into client options.
func (a *app) clientOptions(cmd *cobra.Command) []vectis.Option {
	opts := []vectis.Option{
		vectis.WithTimeout(a.cfg.Timeout),
		vectis.WithLogger(a.logger(cmd)),
		vectis.WithParallelism(a.cfg.Parallelism),
		vectis.WithUserAgent("vectis-cli"),
	}
	if a.cfg.RateLimit.RPS > 0 {
		opts = append(opts, vectis.WithRateLimit(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst))
	}
	if a.cfg.MaxInFlight > 0 {
		opts = append(opts, vectis.WithMaxInFlight(a.cfg.MaxInFlight))
	}
	return opts
}

// withClient runs fn against a connected client that is closed afterwards.
func (a *app) withClient(cmd *cobra.Command, fn func(*vectis.Client) error) error {
	return vectis.Use(cmd.Context(), a.cfg.Addr, fn, a.clientOptions(cmd)...)
}
