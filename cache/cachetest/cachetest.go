// Package cachetest builds pre-populated caches for table-driven tests.
//
// A Spec fixes the preconditions of one case (population, listener, writer);
// Run expands a list of specs into subtests and hands each a fresh Context.
// Keys run from 1 to the population size and each value is the negated key.
package cachetest

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/IvanBrykalov/cachecore/stats"
	"github.com/IvanBrykalov/cachecore/writer"
	"github.com/stretchr/testify/require"
)

// Population is the number of entries a cache starts with.
type Population int

const (
	Empty     Population = 0
	Singleton Population = 1
	Partial   Population = 50
	Full      Population = 100
)

func (p Population) String() string {
	switch p {
	case Empty:
		return "empty"
	case Singleton:
		return "singleton"
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("population(%d)", int(p))
	}
}

// Populations and Listeners are the default matrix axes.
var (
	Populations = []Population{Empty, Singleton, Partial, Full}
	Listeners   = []removal.Kind{removal.KindDiscard, removal.KindRejecting, removal.KindConsuming}
)

// Spec describes one cache configuration under test.
type Spec struct {
	Population Population
	Listener   removal.Kind // "" => discard
	Writer     writer.Kind  // "" => disabled

	Shards           int
	MaximumSize      int64
	ExpireAfterWrite time.Duration
}

func (s Spec) String() string {
	l, w := s.Listener, s.Writer
	if l == "" {
		l = removal.KindDiscard
	}
	if w == "" {
		w = writer.KindDisabled
	}
	return fmt.Sprintf("%s/listener=%s/writer=%s", s.Population, l, w)
}

// Matrix returns the cross product of populations and listeners.
func Matrix(populations []Population, listeners []removal.Kind) []Spec {
	specs := make([]Spec, 0, len(populations)*len(listeners))
	for _, p := range populations {
		for _, l := range listeners {
			specs = append(specs, Spec{Population: p, Listener: l})
		}
	}
	return specs
}

// All is Matrix(Populations, Listeners).
func All() []Spec { return Matrix(Populations, Listeners) }

// Context is a built cache together with the fixtures describing it.
type Context struct {
	Spec  Spec
	Cache cache.Cache[int, int]

	// Original is the initial content; tests must not modify it.
	Original map[int]int

	// FirstKey, MiddleKey and LastKey are present unless the cache is empty.
	FirstKey, MiddleKey, LastKey int
	AbsentKey, AbsentValue       int

	Listener removal.Listener[int, int]
	Writer   writer.Writer[int, int]
	Stats    *stats.Counter
	Clock    *FakeClock
}

// New builds the cache described by s and closes it when t finishes.
func New(t testing.TB, s Spec) *Context {
	t.Helper()

	n := int(s.Population)
	ctx := &Context{
		Spec:        s,
		Original:    make(map[int]int, n),
		AbsentKey:   n + 1000,
		AbsentValue: -(n + 1000),
		Stats:       stats.NewCounter(),
		Clock:       NewFakeClock(),
	}
	for k := 1; k <= n; k++ {
		ctx.Original[k] = -k
	}
	if n > 0 {
		ctx.FirstKey, ctx.MiddleKey, ctx.LastKey = 1, max(n/2, 1), n
	} else {
		ctx.FirstKey, ctx.MiddleKey, ctx.LastKey = ctx.AbsentKey+1, ctx.AbsentKey+2, ctx.AbsentKey+3
	}

	var ok bool
	ctx.Listener, ok = removal.ListenerFor[int, int](s.Listener)
	require.True(t, ok, "listener kind %q", s.Listener)
	ctx.Writer, ok = writer.For[int, int](s.Writer)
	require.True(t, ok, "writer kind %q", s.Writer)

	ctx.Cache = cache.New(ctx.Options())
	t.Cleanup(func() { _ = ctx.Cache.Close() })
	return ctx
}

// Options returns the options the cache was built from, seeded with Original.
func (c *Context) Options() cache.Options[int, int] {
	return cache.Options[int, int]{
		Shards:           c.Spec.Shards,
		MaximumSize:      c.Spec.MaximumSize,
		ExpireAfterWrite: c.Spec.ExpireAfterWrite,
		Writer:           c.Writer,
		Listener:         c.Listener,
		Stats:            c.Stats,
		Clock:            c.Clock,
		Logger:           slog.New(slog.DiscardHandler),
		Initial:          c.Original,
	}
}

// InitialSize is the number of seeded entries.
func (c *Context) InitialSize() int64 { return int64(len(c.Original)) }

// FirstMiddleLastKeys returns the three landmark keys.
func (c *Context) FirstMiddleLastKeys() []int {
	return []int{c.FirstKey, c.MiddleKey, c.LastKey}
}

// AbsentKeys returns n keys that are not in Original.
func (c *Context) AbsentKeys(n int) []int {
	keys := make([]int, n)
	for i := range keys {
		keys[i] = c.AbsentKey + 10 + i
	}
	return keys
}

// Consuming returns the recording listener, or nil for other listener kinds.
func (c *Context) Consuming() *removal.Consuming[int, int] {
	l, _ := c.Listener.(*removal.Consuming[int, int])
	return l
}

// RequireNotified asserts that exactly want notifications were recorded, all
// with cause. It is a no-op unless the listener records notifications.
func (c *Context) RequireNotified(t testing.TB, cause removal.Cause, want int) {
	t.Helper()
	if l := c.Consuming(); l != nil {
		require.Equal(t, want, l.Count(cause), "notifications with cause %s", cause)
		require.Equal(t, want, l.Len(), "total notifications")
	}
}

// RequireStats asserts the request and load counters of the cache.
func (c *Context) RequireStats(t testing.TB, hits, misses, loadSuccess, loadFailure int64) {
	t.Helper()
	s := c.Cache.Stats()
	require.Equal(t, hits, s.HitCount, "hits")
	require.Equal(t, misses, s.MissCount, "misses")
	require.Equal(t, loadSuccess, s.LoadSuccessCount, "load successes")
	require.Equal(t, loadFailure, s.LoadFailureCount, "load failures")
}

// Run executes fn as a subtest for every matrix combination.
func Run(t *testing.T, specs []Spec, fn func(t *testing.T, ctx *Context)) {
	t.Helper()
	for _, s := range specs {
		t.Run(s.String(), func(t *testing.T) {
			fn(t, New(t, s))
		})
	}
}

// FakeClock is a manually advanced cache.Clock.
type FakeClock struct{ now atomic.Int64 }

// NewFakeClock starts at an arbitrary non-zero instant.
func NewFakeClock() *FakeClock {
	c := &FakeClock{}
	c.now.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *FakeClock) NowUnixNano() int64 { return c.now.Load() }

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

var _ cache.Clock = (*FakeClock)(nil)
