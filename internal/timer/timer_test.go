package timer

import "testing"

// TestCadenceWrapsAndClearsOnRead exercises scenario S5 from the spec:
// timer 2 (resolution 32) with target 4, run for 32*4*16 cycles, expect
// 16 target hits, which the 4-bit public counter reads back as 0.
func TestCadenceWrapsAndClearsOnRead(t *testing.T) {
	tm := New(32)
	tm.SetTarget(4)
	tm.SetStartStopBit(true)

	tm.CPUCyclesCallback(32 * 4 * 16)

	got := tm.ReadCounter()
	if got != 0 {
		t.Fatalf("expected public counter to have wrapped to 0 mod 16, got %d", got)
	}

	// Run a fresh timer for 3 of those 16 target periods to confirm the
	// counter does advance, and that reading it clears it.
	tm2 := New(32)
	tm2.SetTarget(4)
	tm2.SetStartStopBit(true)
	tm2.CPUCyclesCallback(32 * 4 * 3)
	if got := tm2.ReadCounter(); got != 3 {
		t.Fatalf("expected counter 3 after 3 target hits, got %d", got)
	}
	if got := tm2.ReadCounter(); got != 0 {
		t.Fatalf("expected read to clear counter, got %d", got)
	}
}

func TestStoppedTimerDoesNotAdvance(t *testing.T) {
	tm := New(256)
	tm.SetTarget(1)
	tm.CPUCyclesCallback(10_000)
	if got := tm.ReadCounter(); got != 0 {
		t.Fatalf("stopped timer must not advance, got %d", got)
	}
}

func TestZeroTargetDisablesFiring(t *testing.T) {
	tm := New(32)
	tm.SetStartStopBit(true)
	tm.CPUCyclesCallback(32 * 256)
	if got := tm.ReadCounter(); got != 0 {
		t.Fatalf("target=0 must disable firing, got %d", got)
	}
}

func TestEnablingResetsAccumulator(t *testing.T) {
	tm := New(32)
	tm.SetTarget(4)
	tm.SetStartStopBit(true)
	tm.CPUCyclesCallback(32*4*2 + 10) // partial progress into the next target
	tm.ReadCounter()                  // drain the two hits from before the restart
	tm.SetStartStopBit(false)
	tm.SetStartStopBit(true) // re-enabling while stopped resets ticks/counterLow
	tm.CPUCyclesCallback(32*4*1 + 5)
	if got := tm.ReadCounter(); got != 1 {
		t.Fatalf("expected counter 1 after re-enable reset, got %d", got)
	}
}
