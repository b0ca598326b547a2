package cacheaside

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/cacheaside/pool"
)

// Config is the file form of the template's tunables.
//
//	freshness_window_seconds: 1800
//	use_stale_on_failure: true
//	write_timeout_seconds: 5
//	coalesce: false
//	pool:
//	  min_workers: 5
//	  max_workers: 10
//	  idle_timeout_seconds: 60
//	  queue_capacity: 20
type Config struct {
	FreshnessWindowSeconds int        `yaml:"freshness_window_seconds" validate:"gte=0"`
	UseStaleOnFailure      *bool      `yaml:"use_stale_on_failure"`
	WriteTimeoutSeconds    int        `yaml:"write_timeout_seconds" validate:"gte=0"`
	Coalesce               bool       `yaml:"coalesce"`
	Pool                   PoolConfig `yaml:"pool"`
}

// PoolConfig sizes the write pool. LoadConfig starts from the defaults, so an
// explicit 0 is rejected rather than read as "use the default".
type PoolConfig struct {
	MinWorkers         int `yaml:"min_workers" validate:"gte=1"`
	MaxWorkers         int `yaml:"max_workers" validate:"gte=1,gtefield=MinWorkers"`
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds" validate:"gte=1"`
	QueueCapacity      int `yaml:"queue_capacity" validate:"gte=1"`
}

// poolConfig resolves unset fields against the pool defaults without ever
// raising MaxWorkers past an explicit value.
func (c PoolConfig) poolConfig() pool.Config {
	pc := pool.Config{
		MinWorkers:  c.MinWorkers,
		MaxWorkers:  c.MaxWorkers,
		IdleTimeout: time.Duration(c.IdleTimeoutSeconds) * time.Second,
		QueueSize:   c.QueueCapacity,
	}
	if pc.MinWorkers <= 0 && pc.MaxWorkers > 0 {
		pc.MinWorkers = min(pool.DefaultMinWorkers, pc.MaxWorkers)
	}
	return pc
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig mirrors the zero-value Options defaults.
func DefaultConfig() Config {
	stale := true
	return Config{
		FreshnessWindowSeconds: int(DefaultWindow / time.Second),
		UseStaleOnFailure:      &stale,
		Pool: PoolConfig{
			MinWorkers:         pool.DefaultMinWorkers,
			MaxWorkers:         pool.DefaultMaxWorkers,
			IdleTimeoutSeconds: int(pool.DefaultIdleTimeout / time.Second),
			QueueCapacity:      pool.DefaultQueueSize,
		},
	}
}

// LoadConfig decodes YAML over DefaultConfig, so omitted keys keep their
// defaults. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("cacheaside: decode config: %w", err)
	}
	if cfg.UseStaleOnFailure == nil {
		stale := true
		cfg.UseStaleOnFailure = &stale
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cacheaside: read config: %w", err)
	}
	return LoadConfig(bytes.NewReader(b))
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("cacheaside: invalid config: %w", err)
	}
	return nil
}

// ApplyConfig copies cfg's tunables onto o. Store, Logger, Hooks and Executor are
// left untouched.
func ApplyConfig[V any](o *Options[V], cfg Config) {
	o.Window = time.Duration(cfg.FreshnessWindowSeconds) * time.Second
	o.DisableStaleOnFailure = cfg.UseStaleOnFailure != nil && !*cfg.UseStaleOnFailure
	o.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	o.Coalesce = cfg.Coalesce
	o.Pool = cfg.Pool.poolConfig()
}
