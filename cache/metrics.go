package cache

import (
	"time"

	"github.com/IvanBrykalov/cachecore/removal"
)

// NoopMetrics is the default Metrics implementation; it does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                       {}
func (NoopMetrics) Miss()                      {}
func (NoopMetrics) LoadSuccess(time.Duration)  {}
func (NoopMetrics) LoadFailure(time.Duration)  {}
func (NoopMetrics) Evict(removal.Cause)        {}
func (NoopMetrics) Size(entries, weight int64) {}

var _ Metrics = NoopMetrics{}
