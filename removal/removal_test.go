package removal

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCause_StringAndWasEvicted(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cause   Cause
		label   string
		evicted bool
	}{
		{Explicit, "explicit", false},
		{Replaced, "replaced", false},
		{Collected, "collected", true},
		{Expired, "expired", true},
		{Size, "size", true},
		{Cause(99), "unknown", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.cause.String())
		assert.Equal(t, tc.evicted, tc.cause.WasEvicted(), tc.label)
	}
	assert.True(t, Notification[int, int]{Cause: Size}.WasEvicted())
}

func TestNotifier_DefaultDiscards(t *testing.T) {
	t.Parallel()

	n := NewNotifier[string, int](nil, nil)
	n.Notify("a", 1, Explicit)

	assert.Equal(t, KindDiscard, KindOf(n.Listener()))
	assert.Zero(t, n.Failures())
}

func TestNotifier_ConsumingRecordsInOrder(t *testing.T) {
	t.Parallel()

	c := NewConsuming[string, int]()
	n := NewNotifier[string, int](c, nil)

	n.Notify("a", 1, Replaced)
	n.NotifyAll([]Notification[string, int]{
		{Key: "b", Value: 2, Cause: Explicit},
		{Key: "c", Value: 3, Cause: Explicit},
	})

	require.Equal(t, 3, c.Len())
	assert.Equal(t, 1, c.Count(Replaced))
	assert.Equal(t, 2, c.Count(Explicit))
	assert.Equal(t, "a", c.Notifications()[0].Key)
	assert.Equal(t, "c", c.Notifications()[2].Key)

	c.Reset()
	assert.Zero(t, c.Len())
}

// A rejecting listener must be contained: Notify returns normally and the
// failure is logged and counted.
func TestNotifier_RejectingIsContained(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewNotifier[string, int](Rejecting[string, int]{}, logger)

	assert.NotPanics(t, func() { n.Notify("a", 1, Explicit) })
	assert.Equal(t, int64(1), n.Failures())
	assert.Contains(t, buf.String(), "removal listener failed")
	assert.Contains(t, buf.String(), "cause=explicit")
}

func TestNotifier_PanicIsContained(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := ListenerFunc[string, int](func(Notification[string, int]) error { panic("boom") })
	n := NewNotifier[string, int](l, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.NotPanics(t, func() {
		n.NotifyAll([]Notification[string, int]{{Key: "a"}, {Key: "b"}})
	})
	assert.Equal(t, int64(2), n.Failures())
	assert.Contains(t, buf.String(), "boom")
}

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindDiscard, KindRejecting, KindConsuming} {
		l, ok := ListenerFor[int, int](k)
		require.True(t, ok, k)
		assert.Equal(t, k, KindOf(l))
	}

	_, ok := ListenerFor[int, int](KindCustom)
	assert.False(t, ok)

	custom := ListenerFunc[int, int](func(Notification[int, int]) error { return nil })
	assert.Equal(t, KindCustom, KindOf[int, int](custom))
	assert.Equal(t, KindDiscard, KindOf[int, int](nil))
}
