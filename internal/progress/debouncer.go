package progress

import (
	"math"
	"sync"
	"time"
)

const (
	// DefaultInterval is the minimum spacing between accepted updates
	DefaultInterval = 100 * time.Millisecond

	// Threshold is the progress delta that is always accepted
	Threshold = 0.05
)

// Debouncer decides whether a progress update is worth publishing.
// An update passes when it moved at least Threshold from the last accepted
// value or when minInterval has elapsed since the last accepted update.
type Debouncer struct {
	mu          sync.Mutex
	minInterval time.Duration
	now         func() time.Time
	lastValue   float64
	lastEmit    time.Time
	emitted     bool
}

// Option configures a Debouncer
type Option func(*Debouncer)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(d *Debouncer) {
		d.now = now
	}
}

// New creates a debouncer. A non-positive minInterval uses DefaultInterval.
func New(minInterval time.Duration, opts ...Option) *Debouncer {
	if minInterval <= 0 {
		minInterval = DefaultInterval
	}
	d := &Debouncer{
		minInterval: minInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ShouldUpdate reports whether fraction should be published and, if so,
// records it as the last accepted value.
func (d *Debouncer) ShouldUpdate(fraction float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.emitted && math.Abs(fraction-d.lastValue) < Threshold && now.Sub(d.lastEmit) < d.minInterval {
		return false
	}
	d.lastValue = fraction
	d.lastEmit = now
	d.emitted = true
	return true
}

// Reset forgets the last accepted update
func (d *Debouncer) Reset() {
	d.mu.Lock()
	d.lastValue = 0
	d.lastEmit = time.Time{}
	d.emitted = false
	d.mu.Unlock()
}
