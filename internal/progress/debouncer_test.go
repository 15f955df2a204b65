package progress

import (
	"testing"
	"time"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestDebouncer_FirstCallAccepted(t *testing.T) {
	for _, v := range []float64{0, 0.01, 0.5} {
		clock := &stepClock{now: time.Unix(1000, 0)}
		d := New(DefaultInterval, WithClock(clock.Now))
		if !d.ShouldUpdate(v) {
			t.Errorf("first ShouldUpdate(%v) = false, expected true", v)
		}
	}
}

func TestDebouncer_Rules(t *testing.T) {
	clock := &stepClock{now: time.Unix(1000, 0)}
	d := New(100*time.Millisecond, WithClock(clock.Now))

	steps := []struct {
		advance  time.Duration
		value    float64
		expected bool
	}{
		{0, 0.25, true},
		{10 * time.Millisecond, 0.26, false},                // small delta, too soon
		{10 * time.Millisecond, 0.3125, true},               // delta above threshold
		{10 * time.Millisecond, 0.32, false},                // reset by previous acceptance
		{90 * time.Millisecond, 0.33, true},                 // interval elapsed
		{99 * time.Millisecond, 0.33, false},                // one millisecond short
		{1 * time.Millisecond, 0.33, true},                  // interval exactly reached
		{0, 0.25, true},                                     // backwards move counts as delta
		{50 * time.Millisecond, 0.25 + Threshold/2, false}, // below threshold
	}

	for i, step := range steps {
		clock.Advance(step.advance)
		if got := d.ShouldUpdate(step.value); got != step.expected {
			t.Errorf("step %d: ShouldUpdate(%v) = %v, expected %v", i, step.value, got, step.expected)
		}
	}
}

func TestDebouncer_ZeroStreamThrottled(t *testing.T) {
	clock := &stepClock{now: time.Unix(1000, 0)}
	d := New(100*time.Millisecond, WithClock(clock.Now))

	accepted := 0
	for i := 0; i < 100; i++ {
		if d.ShouldUpdate(0) {
			accepted++
		}
		clock.Advance(10 * time.Millisecond)
	}
	if accepted != 10 {
		t.Errorf("accepted %d updates over 1s at 100ms interval, expected 10", accepted)
	}
}

func TestDebouncer_Reset(t *testing.T) {
	clock := &stepClock{now: time.Unix(1000, 0)}
	d := New(time.Second, WithClock(clock.Now))

	d.ShouldUpdate(0.5)
	if d.ShouldUpdate(0.51) {
		t.Fatal("expected rejection before reset")
	}
	d.Reset()
	if !d.ShouldUpdate(0.51) {
		t.Error("expected acceptance after reset")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	d := New(0)
	if d.minInterval != DefaultInterval {
		t.Errorf("minInterval = %v, expected %v", d.minInterval, DefaultInterval)
	}
}
