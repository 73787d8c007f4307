// Package config provides configuration types and defaults for jitlink.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/born-ml/jitlink/internal/funcify"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/logger"
	"github.com/born-ml/jitlink/internal/parallel"
	"github.com/born-ml/jitlink/internal/tracing"
)

// EnvPrefix prefixes environment overrides, e.g. JITLINK_LOG_LEVEL.
const EnvPrefix = "JITLINK"

// Config holds all configuration options for jitlink.
type Config struct {
	Log       logger.Config  `mapstructure:"log"`
	Vectorize bool           `mapstructure:"vectorize"` // broadcast Elemwise kernels over arrays
	Parallel  ParallelConfig `mapstructure:"parallel"`
	Cache     CacheConfig    `mapstructure:"cache"`
	Tracing   tracing.Config `mapstructure:"tracing"`
}

// ParallelConfig controls element loops of vectorized kernels.
type ParallelConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Workers      int  `mapstructure:"workers"`        // 0 means one per CPU
	MinChunkSize int  `mapstructure:"min_chunk_size"` // outputs below this run sequentially
}

// CacheConfig controls the compiled kernel cache.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"` // 0 keeps kernels forever
	Cleanup time.Duration `mapstructure:"cleanup"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	p := parallel.DefaultConfig()
	return Config{
		Log:       logger.NewConfig(),
		Vectorize: true,
		Parallel: ParallelConfig{
			Enabled:      p.Enabled,
			Workers:      0,
			MinChunkSize: p.MinChunkSize,
		},
		Cache: CacheConfig{
			TTL:     jit.DefaultCacheTTL,
			Cleanup: jit.DefaultCacheCleanupTick,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// SetDefaults registers every default with v so that env overrides and
// partial config files merge onto them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("vectorize", d.Vectorize)
	v.SetDefault("parallel.enabled", d.Parallel.Enabled)
	v.SetDefault("parallel.workers", d.Parallel.Workers)
	v.SetDefault("parallel.min_chunk_size", d.Parallel.MinChunkSize)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup", d.Cache.Cleanup)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Load reads configuration into v and decodes it. With an empty path the
// file is optional and looked up as ./jitlink.yaml, then
// ~/.config/jitlink/config.yaml. Environment variables override the file.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jitlink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "jitlink"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error

	switch c.Log.Format {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format))
	}
	if _, perr := zapcore.ParseLevel(c.Log.Level); perr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", perr))
	}
	if c.Parallel.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("parallel.workers must be >= 0, got %d", c.Parallel.Workers))
	}
	if c.Parallel.MinChunkSize < 1 {
		err = multierr.Append(err, fmt.Errorf("parallel.min_chunk_size must be >= 1, got %d", c.Parallel.MinChunkSize))
	}
	if c.Cache.TTL < 0 {
		err = multierr.Append(err, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Cache.Cleanup <= 0 {
		err = multierr.Append(err, fmt.Errorf("cache.cleanup must be positive, got %s", c.Cache.Cleanup))
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		err = multierr.Append(err, fmt.Errorf("tracing.exporter must be \"none\" or \"stdout\", got %q", c.Tracing.Exporter))
	}

	return err
}

// ParallelLoop converts to the loop configuration.
func (c Config) ParallelLoop() parallel.Config {
	p := parallel.DefaultConfig()
	p.Enabled = c.Parallel.Enabled
	if c.Parallel.Workers > 0 {
		p.NumWorkers = c.Parallel.Workers
	}
	p.MinChunkSize = c.Parallel.MinChunkSize
	return p
}

// Funcify returns the dispatcher configuration.
func (c Config) Funcify() funcify.Config {
	return funcify.Config{
		Vectorize: c.Vectorize,
		Parallel:  c.ParallelLoop(),
	}
}

// CompilerOptions returns the kernel cache settings as compiler options.
func (c Config) CompilerOptions() []jit.Option {
	return []jit.Option{jit.WithCache(c.Cache.TTL, c.Cache.Cleanup)}
}

// DefaultTemplate is the commented YAML written by WriteDefault.
const DefaultTemplate = `# jitlink configuration

log:
  format: console   # console or json
  level: info       # debug, info, warn, error

# Broadcast elementwise kernels over array arguments. When false an
# elementwise op compiles to its plain scalar kernel.
vectorize: true

parallel:
  enabled: true
  workers: 0            # 0 = one per CPU
  min_chunk_size: 1024

cache:
  ttl: 1h               # 0 keeps compiled kernels forever
  cleanup: 10m

tracing:
  enabled: false
  exporter: stdout      # none or stdout
  service_name: jitlink
`

// WriteDefault writes DefaultTemplate to path, creating parent directories.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultTemplate), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
