package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IvanBrykalov/cachecore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	p := config.Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, 50_000, p.PreloadCount())
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	p, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), p)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  maximum_size: 1000
  policy: 2q
  expire_after_write: 30s
workload:
  duration: 2s
  load_pct: 25
  load_latency: 1ms
  preload: 10
http:
  metrics: ""
`), 0o600))

	p, err := config.Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, p.Cache.MaximumSize)
	assert.Equal(t, "2q", p.Cache.Policy)
	assert.Equal(t, 30*time.Second, p.Cache.ExpireAfterWrite)
	assert.Equal(t, 2*time.Second, p.Workload.Duration)
	assert.Equal(t, 25, p.Workload.LoadPct)
	assert.Equal(t, time.Millisecond, p.Workload.LoadLatency)
	assert.Equal(t, 10, p.PreloadCount())
	assert.Empty(t, p.HTTP.Metrics)
	assert.Equal(t, 80, p.Workload.ReadPct, "unset fields keep their default")
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"unknown field": {"cache:\n  capacity: 10\n", "capacity"},
		"bad policy":    {"cache:\n  policy: lfu\n", "cache.policy"},
		"bad read pct":  {"workload:\n  read_pct: 101\n", "read_pct"},
		"bad zipf":      {"workload:\n  zipf_s: 1\n", "zipf_s"},
		"bad duration":  {"workload:\n  duration: soon\n", "soon"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.yaml))
			require.ErrorContains(t, err, tc.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
