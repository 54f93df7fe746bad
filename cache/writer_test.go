package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/cache/cachetest"
	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/IvanBrykalov/cachecore/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_ConsumingSeesMutationsOnly(t *testing.T) {
	ctx := cachetest.New(t, cachetest.Spec{
		Population: cachetest.Partial, Writer: writer.KindConsuming,
	})
	w := ctx.Writer.(*writer.Consuming[int, int])
	require.Zero(t, w.Invocations(), "seeding bypasses the writer")

	_, _, _ = ctx.Cache.GetIfPresent(ctx.FirstKey)
	_, err := ctx.Cache.Get(context.Background(), ctx.AbsentKey, constLoader(ctx.AbsentValue))
	require.NoError(t, err)
	require.Zero(t, w.Invocations(), "reads and loads bypass the writer")

	require.NoError(t, ctx.Cache.Put(ctx.FirstKey, 7))
	require.NoError(t, ctx.Cache.Invalidate(ctx.LastKey))
	require.NoError(t, ctx.Cache.Invalidate(ctx.AbsentKey+1))

	assert.Equal(t, []writer.Op[int, int]{
		{Key: ctx.FirstKey, Value: 7},
		{Delete: true, Key: ctx.LastKey, Value: ctx.Original[ctx.LastKey], Cause: removal.Explicit},
	}, w.Ops())

	w.Reset()
	size := ctx.Cache.EstimatedSize()
	require.NoError(t, ctx.Cache.InvalidateAll())
	assert.EqualValues(t, size, w.Deletes())
	assert.Zero(t, w.Writes())
}

func TestWriter_RejectingVetoesMutations(t *testing.T) {
	specs := []cachetest.Spec{
		{Population: cachetest.Full, Writer: writer.KindRejecting, Listener: removal.KindConsuming},
	}
	cachetest.Run(t, specs, func(t *testing.T, ctx *cachetest.Context) {
		err := ctx.Cache.Put(ctx.AbsentKey, ctx.AbsentValue)
		require.ErrorIs(t, err, cache.ErrWriteRejected)
		require.ErrorIs(t, err, writer.ErrRejected)

		require.ErrorIs(t, ctx.Cache.Put(ctx.FirstKey, 1), cache.ErrWriteRejected)
		require.ErrorIs(t, ctx.Cache.Invalidate(ctx.FirstKey), cache.ErrWriteRejected)
		require.ErrorIs(t, ctx.Cache.PutAll(map[int]int{ctx.FirstKey: 1, ctx.AbsentKey: 1}), writer.ErrRejected)
		require.ErrorIs(t, ctx.Cache.InvalidateKeys(ctx.FirstMiddleLastKeys()), writer.ErrRejected)
		require.ErrorIs(t, ctx.Cache.InvalidateAll(), writer.ErrRejected)

		assert.Equal(t, ctx.InitialSize(), ctx.Cache.EstimatedSize())
		v, ok, err := ctx.Cache.GetIfPresent(ctx.FirstKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ctx.Original[ctx.FirstKey], v)
		assert.Zero(t, ctx.Consuming().Len(), "vetoed mutations notify nothing")
	})
}

func TestWriter_RejectingCannotVetoLoadsOrEvictions(t *testing.T) {
	l := removal.NewConsuming[int, int]()
	clock := cachetest.NewFakeClock()
	c := cache.New(cache.Options[int, int]{
		Shards:           1,
		MaximumSize:      2,
		ExpireAfterWrite: time.Minute,
		Writer:           writer.Rejecting[int, int]{},
		Listener:         l,
		Clock:            clock,
		Logger:           slog.New(slog.DiscardHandler),
		Initial:          map[int]int{1: -1, 2: -2},
	})

	v, err := c.Get(context.Background(), 3, constLoader(-3))
	require.NoError(t, err)
	assert.Equal(t, -3, v)
	assert.EqualValues(t, 2, c.EstimatedSize())
	assert.Equal(t, 1, l.Count(removal.Size))

	clock.Advance(2 * time.Minute)
	c.CleanUp()
	assert.Zero(t, c.EstimatedSize())
	assert.Equal(t, 2, l.Count(removal.Expired))
	assert.EqualValues(t, 3, c.Stats().EvictionCount)
}

func TestWriter_ExceptionalNeverCalledOnReadPaths(t *testing.T) {
	specs := []cachetest.Spec{
		{Population: cachetest.Full, Writer: writer.KindExceptional},
		{Population: cachetest.Empty, Writer: writer.KindExceptional},
	}
	cachetest.Run(t, specs, func(t *testing.T, ctx *cachetest.Context) {
		w := ctx.Writer.(*writer.Exceptional[int, int])

		_, _, _ = ctx.Cache.GetIfPresent(ctx.FirstKey)
		_, _, _ = ctx.Cache.GetIfPresent(ctx.AbsentKey)
		_, _ = ctx.Cache.GetAllPresent(ctx.FirstMiddleLastKeys())
		_, err := ctx.Cache.Get(context.Background(), ctx.AbsentKey, constLoader(ctx.AbsentValue))
		require.NoError(t, err)
		ctx.Cache.CleanUp()
		_ = ctx.Cache.EstimatedSize()
		_ = ctx.Cache.Stats()

		assert.Zero(t, w.Invocations())
	})
}

// vetoKey rejects every write and explicit delete of one key.
type vetoKey struct{ key int }

func (w vetoKey) Write(k, _ int) error {
	if k == w.key {
		return errBoom
	}
	return nil
}

func (w vetoKey) Delete(k, _ int, cause removal.Cause) error {
	if k == w.key && !cause.WasEvicted() {
		return errBoom
	}
	return nil
}

func TestWriter_BulkVetoFailsOnlyItsKey(t *testing.T) {
	l := removal.NewConsuming[int, int]()
	c := cache.New(cache.Options[int, int]{
		Writer:   vetoKey{key: 2},
		Listener: l,
		Initial:  map[int]int{1: -1, 2: -2, 3: -3},
	})
	t.Cleanup(func() { _ = c.Close() })

	err := c.PutAll(map[int]int{1: 10, 2: 20, 3: 30})
	require.ErrorIs(t, err, cache.ErrWriteRejected)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, l.Count(removal.Replaced))

	all, err := c.GetAllPresent([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 10, 2: -2, 3: 30}, all.Clone())

	err = c.InvalidateKeys([]int{1, 2, 3})
	require.ErrorIs(t, err, cache.ErrWriteRejected)
	assert.Equal(t, 2, l.Count(removal.Explicit))

	v, ok, err := c.GetIfPresent(2)
	require.NoError(t, err)
	require.True(t, ok, "vetoed key stays resident")
	assert.Equal(t, -2, v)
	assert.EqualValues(t, 1, c.EstimatedSize())
}
