package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/IvanBrykalov/cachecore/writer"
)

// formatVersion is bumped on incompatible changes to the JSON layout.
const formatVersion = 1

type wireConfig struct {
	Shards           int           `json:"shards"`
	MaximumSize      int64         `json:"maximum_size,omitempty"`
	MaximumWeight    int64         `json:"maximum_weight,omitempty"`
	ExpireAfterWrite time.Duration `json:"expire_after_write,omitempty"`
	Writer           writer.Kind   `json:"writer"`
	Listener         removal.Kind  `json:"listener"`
}

type wireEntry[K comparable, V any] struct {
	Key   K `json:"k"`
	Value V `json:"v"`
}

type wireCache[K comparable, V any] struct {
	Version int               `json:"version"`
	Config  wireConfig        `json:"config"`
	Entries []wireEntry[K, V] `json:"entries"`
}

// MarshalJSON encodes the structural configuration and the live entries,
// least recently used first. It reads shards directly: no statistics are
// recorded and neither writer nor listener is invoked.
func (c *cache[K, V]) MarshalJSON() ([]byte, error) {
	now := c.now()
	w := wireCache[K, V]{
		Version: formatVersion,
		Config: wireConfig{
			Shards:           len(c.shards),
			MaximumSize:      c.opt.MaximumSize,
			MaximumWeight:    c.opt.MaximumWeight,
			ExpireAfterWrite: c.opt.ExpireAfterWrite,
			Writer:           writer.KindOf(c.opt.Writer),
			Listener:         removal.KindOf(c.opt.Listener),
		},
		Entries: make([]wireEntry[K, V], 0, c.entries.Load()),
	}
	for _, s := range c.shards {
		w.Entries = s.entries(now, w.Entries)
	}
	return json.Marshal(w)
}

// Unmarshal rebuilds a cache encoded by MarshalJSON. The encoded structural
// settings override base; functions (Weigher, Clock) and collaborators come
// from base. A nil base.Writer or base.Listener is rebuilt from its recorded
// built-in kind; a custom kind requires base to supply one.
//
// Restoring does not call the writer or listener, and starts with the
// statistics in base.Stats (fresh when nil). Expiry restarts from now.
func Unmarshal[K comparable, V any](data []byte, base Options[K, V]) (Cache[K, V], error) {
	var w wireCache[K, V]
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	if w.Version != formatVersion {
		return nil, fmt.Errorf("cache: decode: unsupported format version %d", w.Version)
	}

	base.Shards = w.Config.Shards
	base.MaximumSize = w.Config.MaximumSize
	base.MaximumWeight = w.Config.MaximumWeight
	base.ExpireAfterWrite = w.Config.ExpireAfterWrite

	if base.Writer == nil {
		wr, ok := writer.For[K, V](w.Config.Writer)
		if !ok {
			return nil, fmt.Errorf("cache: decode: writer kind %q needs Options.Writer", w.Config.Writer)
		}
		base.Writer = wr
	}
	if base.Listener == nil {
		l, ok := removal.ListenerFor[K, V](w.Config.Listener)
		if !ok {
			return nil, fmt.Errorf("cache: decode: listener kind %q needs Options.Listener", w.Config.Listener)
		}
		base.Listener = l
	}

	c, err := build(base, w.Entries)
	if err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	return c, nil
}
