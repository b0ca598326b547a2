package cacheaside

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/cacheaside/pool"
)

func TestLoadConfigEmptyKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FreshnessWindowSeconds != 1800 {
		t.Fatalf("window: %d", cfg.FreshnessWindowSeconds)
	}
	if cfg.UseStaleOnFailure == nil || !*cfg.UseStaleOnFailure {
		t.Fatalf("stale-on-failure should default to true")
	}
	want := PoolConfig{MinWorkers: 5, MaxWorkers: 10, IdleTimeoutSeconds: 60, QueueCapacity: 20}
	if cfg.Pool != want {
		t.Fatalf("pool: got %+v want %+v", cfg.Pool, want)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
freshness_window_seconds: 60
use_stale_on_failure: false
write_timeout_seconds: 3
coalesce: true
pool:
  max_workers: 16
  queue_capacity: 100
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FreshnessWindowSeconds != 60 || *cfg.UseStaleOnFailure || cfg.WriteTimeoutSeconds != 3 || !cfg.Coalesce {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// untouched pool keys keep their defaults
	if cfg.Pool.MinWorkers != 5 || cfg.Pool.MaxWorkers != 16 || cfg.Pool.QueueCapacity != 100 {
		t.Fatalf("pool: %+v", cfg.Pool)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown_key":     "freshnes_window_seconds: 10\n",
		"negative_window": "freshness_window_seconds: -1\n",
		"max_below_min":   "pool:\n  min_workers: 8\n  max_workers: 2\n",
		"zero_min":        "pool:\n  min_workers: 0\n  max_workers: 3\n",
		"max_below_dflt":  "pool:\n  max_workers: 3\n",
		"zero_queue":      "pool:\n  queue_capacity: 0\n",
		"not_yaml":        "pool: [1, 2\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(strings.NewReader(in)); err == nil {
				t.Fatalf("expected an error for %q", in)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	if err := os.WriteFile(path, []byte("freshness_window_seconds: 90\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil || cfg.FreshnessWindowSeconds != 90 {
		t.Fatalf("cfg=%+v err=%v", cfg, err)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestApplyConfig(t *testing.T) {
	stale := false
	cfg := Config{
		FreshnessWindowSeconds: 120,
		UseStaleOnFailure:      &stale,
		WriteTimeoutSeconds:    2,
		Coalesce:               true,
		Pool:                   PoolConfig{MinWorkers: 1, MaxWorkers: 2, IdleTimeoutSeconds: 5, QueueCapacity: 3},
	}
	store := newMemStore()
	opts := Options[string]{Store: store}
	ApplyConfig(&opts, cfg)

	if opts.Store != store {
		t.Fatalf("ApplyConfig replaced the store")
	}
	if opts.Window != 2*time.Minute || !opts.DisableStaleOnFailure || opts.WriteTimeout != 2*time.Second || !opts.Coalesce {
		t.Fatalf("options: %+v", opts)
	}
	want := pool.Config{MinWorkers: 1, MaxWorkers: 2, IdleTimeout: 5 * time.Second, QueueSize: 3}
	if opts.Pool != want {
		t.Fatalf("pool: got %+v want %+v", opts.Pool, want)
	}

	tpl, err := New[string](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tpl.Close(context.Background())
}

func TestDefaultConfigMatchesOptionDefaults(t *testing.T) {
	var opts Options[string]
	ApplyConfig(&opts, DefaultConfig())
	if opts.Window != DefaultWindow || opts.DisableStaleOnFailure || opts.Pool != pool.DefaultConfig() {
		t.Fatalf("DefaultConfig drifted from defaults: %+v", opts)
	}
}

func TestApplyConfigNeverRaisesMaxWorkers(t *testing.T) {
	var opts Options[string]
	ApplyConfig(&opts, Config{Pool: PoolConfig{MaxWorkers: 3}})

	p := pool.New(opts.Pool)
	defer p.Close(context.Background())
	got := p.Config()
	if got.MaxWorkers != 3 || got.MinWorkers != 3 {
		t.Fatalf("max_workers=3 not honored: %+v", got)
	}

	cfg, err := LoadConfig(strings.NewReader("pool:\n  min_workers: 2\n  max_workers: 3\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	ApplyConfig(&opts, cfg)
	if got := pool.New(opts.Pool).Config(); got.MinWorkers != 2 || got.MaxWorkers != 3 {
		t.Fatalf("pool: %+v", got)
	}
}
