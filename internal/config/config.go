// Package config loads the workload profile used by cmd/bench.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is a complete benchmark run: the cache under test, the synthetic
// workload driving it and the diagnostic listeners.
type Profile struct {
	Cache    CacheConfig    `yaml:"cache"`
	Workload WorkloadConfig `yaml:"workload"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// CacheConfig maps onto cache.Options.
type CacheConfig struct {
	MaximumSize      int64         `yaml:"maximum_size"`
	Shards           int           `yaml:"shards"`
	Policy           string        `yaml:"policy"` // lru | 2q
	ExpireAfterWrite time.Duration `yaml:"expire_after_write"`
}

// WorkloadConfig describes the request mix.
type WorkloadConfig struct {
	Workers  int           `yaml:"workers"`
	Duration time.Duration `yaml:"duration"`
	// ReadPct of operations are reads; LoadPct of those go through Get with
	// a loader instead of GetIfPresent.
	ReadPct     int           `yaml:"read_pct"`
	LoadPct     int           `yaml:"load_pct"`
	LoadLatency time.Duration `yaml:"load_latency"`
	Keys        int           `yaml:"keys"`
	ZipfS       float64       `yaml:"zipf_s"`
	ZipfV       float64       `yaml:"zipf_v"`
	Seed        int64         `yaml:"seed"`
	Preload     int           `yaml:"preload"` // 0 => maximum_size/2
}

// HTTPConfig holds listen addresses; empty disables the endpoint.
type HTTPConfig struct {
	Metrics string `yaml:"metrics"`
	Pprof   string `yaml:"pprof"`
}

// Default returns the profile used when no file is given.
func Default() Profile {
	return Profile{
		Cache: CacheConfig{
			MaximumSize: 100_000,
			Policy:      "lru",
		},
		Workload: WorkloadConfig{
			Workers:  2 * runtime.GOMAXPROCS(0),
			Duration: 10 * time.Second,
			ReadPct:  80,
			Keys:     1_000_000,
			ZipfS:    1.1,
			ZipfV:    1.0,
		},
		HTTP: HTTPConfig{Metrics: ":8080"},
	}
}

// Parse decodes data over Default. Unknown fields are rejected.
func Parse(data []byte) (Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile validation failed: %w", err)
	}
	return p, nil
}

// Load reads and parses the profile at path.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Validate reports every invalid field at once.
func (p *Profile) Validate() error {
	var errs []error
	if p.Cache.MaximumSize < 0 {
		errs = append(errs, errors.New("cache.maximum_size must be >= 0"))
	}
	if p.Cache.Shards < 0 {
		errs = append(errs, errors.New("cache.shards must be >= 0"))
	}
	switch p.Cache.Policy {
	case "lru", "2q":
	default:
		errs = append(errs, fmt.Errorf("cache.policy %q is not one of lru, 2q", p.Cache.Policy))
	}
	if p.Cache.ExpireAfterWrite < 0 {
		errs = append(errs, errors.New("cache.expire_after_write must be >= 0"))
	}

	w := p.Workload
	if w.Workers <= 0 {
		errs = append(errs, errors.New("workload.workers must be > 0"))
	}
	if w.Duration <= 0 {
		errs = append(errs, errors.New("workload.duration must be > 0"))
	}
	if w.ReadPct < 0 || w.ReadPct > 100 {
		errs = append(errs, errors.New("workload.read_pct must be within [0, 100]"))
	}
	if w.LoadPct < 0 || w.LoadPct > 100 {
		errs = append(errs, errors.New("workload.load_pct must be within [0, 100]"))
	}
	if w.Keys <= 0 {
		errs = append(errs, errors.New("workload.keys must be > 0"))
	}
	if w.ZipfS <= 1 {
		errs = append(errs, errors.New("workload.zipf_s must be > 1"))
	}
	if w.ZipfV < 1 {
		errs = append(errs, errors.New("workload.zipf_v must be >= 1"))
	}
	return errors.Join(errs...)
}

// PreloadCount resolves the preload default.
func (p *Profile) PreloadCount() int {
	if p.Workload.Preload > 0 {
		return p.Workload.Preload
	}
	return int(p.Cache.MaximumSize / 2)
}
