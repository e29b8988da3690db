package nrf24sim

import (
	"math"
	"sort"
	"time"

	"periph.io/x/conn/v3/physic"
)

// StepClock is a reference Clock implementation for hosts that drive the
// simulation by single-stepping a cycle counter (exactly the model
// spec.md §5 describes: "the host is a deterministic cycle stepper").
// It is not required -- any Clock implementation works -- but it is the
// one this package's own tests use, and is exported so a minimal MCU host
// can use it directly instead of writing its own timer-identity bookkeeping.
//
// A StepClock keys pending callbacks by TimerKind alone, mirroring one
// radio's view of its MCU's timer queue. Give each Radio its own
// StepClock; a host simulating several radios on one physical MCU's
// shared cycle counter needs a Clock implementation that also keys on
// caller identity (as simavr's avr_cycle_timer_register does via its
// (callback, context) pair).
type StepClock struct {
	period  time.Duration // duration of one cycle at freq
	cycle   uint64
	pending map[TimerKind]*pendingCallback
}

type pendingCallback struct {
	due uint64
	fn  func()
}

// NewStepClock builds a StepClock ticking at freq.
func NewStepClock(freq physic.Frequency) *StepClock {
	return &StepClock{
		period:  time.Duration(freq.Period()),
		pending: make(map[TimerKind]*pendingCallback),
	}
}

// Now returns the current cycle count.
func (c *StepClock) Now() uint64 { return c.cycle }

// NowMicros implements Clock.
func (c *StepClock) NowMicros() float64 {
	return float64(c.cycle) * float64(c.period) / float64(time.Microsecond)
}

func (c *StepClock) cyclesFor(d time.Duration) uint64 {
	if c.period <= 0 {
		return 0
	}
	return uint64(math.Round(float64(d) / float64(c.period)))
}

func (c *StepClock) ScheduleMicros(kind TimerKind, delayUs float64, fn func()) {
	c.schedule(kind, time.Duration(delayUs*float64(time.Microsecond)), fn)
}

func (c *StepClock) ScheduleMillis(kind TimerKind, delayMs float64, fn func()) {
	c.schedule(kind, time.Duration(delayMs*float64(time.Millisecond)), fn)
}

func (c *StepClock) schedule(kind TimerKind, delay time.Duration, fn func()) {
	c.pending[kind] = &pendingCallback{due: c.cycle + c.cyclesFor(delay), fn: fn}
}

func (c *StepClock) Cancel(kind TimerKind) {
	delete(c.pending, kind)
}

// Advance steps the clock forward by n cycles, firing any callback whose
// deadline falls at or before the new cycle count, in TimerKind order for
// ties (a deterministic, if arbitrary, tie-break).
func (c *StepClock) Advance(n uint64) {
	target := c.cycle + n
	for c.cycle < target {
		next, ok := c.nextDeadline()
		if !ok || next > target {
			c.cycle = target
			return
		}
		c.cycle = next
		c.fireDue()
	}
}

// AdvanceToNext jumps directly to the next pending deadline and fires it,
// or does nothing if nothing is pending. Useful for tests that only care
// about ordering, not absolute timing.
func (c *StepClock) AdvanceToNext() bool {
	next, ok := c.nextDeadline()
	if !ok {
		return false
	}
	c.cycle = next
	c.fireDue()
	return true
}

func (c *StepClock) nextDeadline() (uint64, bool) {
	found := false
	var min uint64
	for _, p := range c.pending {
		if !found || p.due < min {
			min = p.due
			found = true
		}
	}
	return min, found
}

func (c *StepClock) fireDue() {
	kinds := make([]TimerKind, 0, len(c.pending))
	for kind, p := range c.pending {
		if p.due <= c.cycle {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		p, ok := c.pending[kind]
		if !ok || p.due > c.cycle {
			continue // cancelled or rescheduled by an earlier callback
		}
		delete(c.pending, kind)
		p.fn()
	}
}
