package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved CLI configuration.
type Config struct {
	Addr        string          `mapstructure:"addr"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	Verbose     bool            `mapstructure:"verbose"`
	Output      string          `mapstructure:"output"`
	MaxInFlight int             `mapstructure:"max_in_flight"`
	Parallelism int             `mapstructure:"parallelism"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Snapshot    SnapshotConfig  `mapstructure:"snapshot"`
}

// RateLimitConfig throttles outgoing requests.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// SnapshotConfig selects where snapshots are stored.
type SnapshotConfig struct {
	// Backend is one of local, minio or s3.
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Endpoint    string `mapstructure:"endpoint"`
	Region      string `mapstructure:"region"`
	PathStyle   bool   `mapstructure:"path_style"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	Compression string `mapstructure:"compression"`
	// IOLimit caps snapshot transfer throughput in bytes per second.
	IOLimit int64 `mapstructure:"io_limit"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", "http://localhost:8080")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("output", "text")
	v.SetDefault("parallelism", 8)
	v.SetDefault("snapshot.backend", "local")
	v.SetDefault("snapshot.dir", "snapshots")
	v.SetDefault("snapshot.compression", "zstd")
	v.SetDefault("snapshot.use_ssl", true)
}

// SetupEnv maps VECTIS_* environment variables onto keys, so
// VECTIS_SNAPSHOT_BUCKET sets snapshot.bucket.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("vectis")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"snapshot.bucket", "snapshot.prefix", "snapshot.endpoint", "snapshot.region",
		"snapshot.path_style", "snapshot.access_key", "snapshot.secret_key", "snapshot.io_limit",
		"rate_limit.rps", "rate_limit.burst", "max_in_flight",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *Config) validate() error {
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output)
	}
	switch c.Snapshot.Backend {
	case "local", "minio", "s3":
	default:
		return fmt.Errorf("invalid snapshot backend %q (want local, minio or s3)", c.Snapshot.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
