// Package timer implements the APU's three programmable down-counters.
package timer

// Timer is one of the APU's three programmable timers. Two run at a
// resolution of 256 SMP sub-cycles per internal tick, one at 32.
type Timer struct {
	resolution int32
	running    bool
	ticks      int32

	hasTarget bool
	target    uint8

	counterLow  uint8
	counterHigh uint8
}

// New creates a timer with the given resolution (256 or 32 on real hardware).
func New(resolution int32) *Timer {
	return &Timer{resolution: resolution}
}

// CPUCyclesCallback advances the timer by n SMP sub-cycles, firing the
// internal counter (and, on target match, the public counter) for every
// resolution-sized chunk consumed.
func (t *Timer) CPUCyclesCallback(numCycles int32) {
	if !t.running {
		return
	}

	t.ticks += numCycles
	for t.ticks >= t.resolution {
		t.ticks -= t.resolution

		t.counterLow++
		if t.hasTarget && t.counterLow == t.target {
			t.counterHigh++
			t.counterLow = 0
		}
	}
}

// SetStartStopBit enables or disables the timer. Enabling a stopped timer
// resets its sub-tick accumulator and low counter.
func (t *Timer) SetStartStopBit(value bool) {
	if value && !t.running {
		t.ticks = 0
		t.counterLow = 0
	}
	t.running = value
}

// SetTarget sets the timer's target count. A value of 0 disables firing
// (the public counter never advances) just as on real hardware.
func (t *Timer) SetTarget(value uint8) {
	t.hasTarget = value != 0
	t.target = value
}

// ReadCounter returns the public 4-bit counter and clears it, per the
// gateway's "reading a timer counter clears it" behavior.
func (t *Timer) ReadCounter() uint8 {
	ret := t.counterHigh & 0x0f
	t.counterHigh = 0
	return ret
}
