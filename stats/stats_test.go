package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Records(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	c.RecordHits(3)
	c.RecordMisses(2)
	c.RecordLoadSuccess(2 * time.Second)
	c.RecordLoadFailure(1 * time.Second)
	c.RecordEviction()

	assert.Equal(t, Of(3, 2, 1, 1, 3*time.Second, 1), c.Snapshot())
}

// Combining contrived snapshots is pure arithmetic: Minus is not clamped.
func TestSnapshot_PlusMinusSigned(t *testing.T) {
	t.Parallel()

	base := Snapshot{}
	a := Of(1, 2, 3, 4, 5, 6)
	b := Of(6, 5, 4, 3, 2, 1)

	got := base.Plus(a.Minus(b))
	assert.Equal(t, Of(-5, -3, -1, 1, 3, 5), got)
}

func TestSnapshot_PlusIsCommutativeAndAssociative(t *testing.T) {
	t.Parallel()

	a := Of(1, 2, 3, 4, 5, 6)
	b := Of(10, 20, 30, 40, 50, 60)
	c := Of(7, 0, 7, 0, 7, 0)

	assert.Equal(t, a.Plus(b), b.Plus(a))
	assert.Equal(t, a.Plus(b).Plus(c), a.Plus(b.Plus(c)))
	assert.Equal(t, a, a.Plus(b).Minus(b))
}

func TestSnapshot_DerivedRates(t *testing.T) {
	t.Parallel()

	empty := Snapshot{}
	assert.Equal(t, 1.0, empty.HitRate())
	assert.Equal(t, 0.0, empty.MissRate())
	assert.Equal(t, 0.0, empty.LoadFailureRate())
	assert.Equal(t, time.Duration(0), empty.AverageLoadPenalty())

	s := Of(3, 1, 3, 1, 8*time.Millisecond, 0)
	assert.Equal(t, int64(4), s.RequestCount())
	assert.InDelta(t, 0.75, s.HitRate(), 1e-9)
	assert.InDelta(t, 0.25, s.MissRate(), 1e-9)
	assert.Equal(t, int64(4), s.LoadCount())
	assert.InDelta(t, 0.25, s.LoadFailureRate(), 1e-9)
	assert.Equal(t, 2*time.Millisecond, s.AverageLoadPenalty())
	assert.Contains(t, s.String(), "hits=3")
}

func TestCounter_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	c.RecordHits(1)
	snap := c.Snapshot()
	c.RecordHits(5)

	assert.Equal(t, int64(1), snap.HitCount)
	assert.Equal(t, int64(6), c.Snapshot().HitCount)
}

func TestCounter_IncrementBy(t *testing.T) {
	t.Parallel()

	total := NewCounter()
	one := NewCounter()
	one.RecordHits(2)
	one.RecordLoadSuccess(time.Second)
	two := NewCounter()
	two.RecordMisses(4)
	two.RecordEviction()

	total.IncrementBy(one)
	total.IncrementBy(two)

	assert.Equal(t, one.Snapshot().Plus(two.Snapshot()), total.Snapshot())
}

func TestCounter_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	const workers, perWorker = 8, 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.RecordHits(1)
				c.RecordMisses(1)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Equal(t, int64(workers*perWorker), snap.HitCount)
	require.Equal(t, int64(workers*perWorker), snap.MissCount)
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	var d Disabled
	d.RecordHits(10)
	d.RecordLoadFailure(time.Second)
	assert.Equal(t, Snapshot{}, d.Snapshot())
}
