package apu

import "testing"

func TestIPLROMOverlayReadsBootCode(t *testing.T) {
	a := New(nil)
	got := a.Read8(0xffc0)
	if got != defaultIPLROM[0] {
		t.Fatalf("expected IPL ROM overlay byte 0x%02X at 0xffc0, got 0x%02X", defaultIPLROM[0], got)
	}
}

func TestDisablingIPLROMExposesUnderlyingRAM(t *testing.T) {
	a := New(nil)
	a.ram[0xffc0] = 0x77
	a.setControlReg(0x00) // clears the IPL ROM enable bit (0x80)
	if got := a.Read8(0xffc0); got != 0x77 {
		t.Fatalf("expected RAM byte 0x77 once IPL ROM is disabled, got 0x%02X", got)
	}
}

func TestTimerTargetRoutedThroughRegisterGateway(t *testing.T) {
	a := New(nil)
	a.Write8(0xfa, 4)
	a.setControlReg(0x01) // start timer 0
	a.Cycles(256 * 4 * 10)
	if got := a.Read8(0xfd); got != 10 {
		t.Fatalf("expected timer 0 counter to read 10, got %d", got)
	}
}

func TestDSPRegisterGatewayRoundTrips(t *testing.T) {
	a := New(nil)
	a.Write8(0xf2, 0x0c) // select MVOLL
	a.Write8(0xf3, 0x40) // latch a write through to the DSP
	if got := a.Read8(0xf2); got != 0x0c {
		t.Fatalf("expected dsp_reg_address readback 0x0c, got 0x%02X", got)
	}
	// Every real DSP register reads back 0 once flushed; only the
	// address latch itself (0xf2) is readable.
	if got := a.Read8(0xf3); got != 0 {
		t.Fatalf("expected DSP register read to report 0 post-flush, got 0x%02X", got)
	}
}

func TestTestRegisterWriteIsIgnoredNotFatal(t *testing.T) {
	a := New(nil)
	a.Write8(0xf0, 0xff) // would panic in the original; must be a harmless no-op here
}

func TestClearEchoBufferFillsWithAllOnes(t *testing.T) {
	a := New(nil)
	a.Write8(0xf2, 0x6d) // ESA: echo start address (page 0x6d00)
	a.Write8(0xf3, 0x6d)
	a.Write8(0xf2, 0x7d) // EDL: echo delay of 1 (0x800 bytes)
	a.Write8(0xf3, 0x01)

	a.ClearEchoBuffer()

	start := int32(a.Dsp.GetEchoStartAddress())
	length := a.Dsp.CalculateEchoLength()
	for i := start; i < start+length; i++ {
		if a.ram[i] != 0xff {
			t.Fatalf("expected echo buffer byte at %04X to be 0xff, got 0x%02X", i, a.ram[i])
		}
	}
}

func TestRenderOnSilentStateProducesZeroSamples(t *testing.T) {
	a := New(nil)
	// With KON never set and all voices silent, flushing should still
	// terminate (no voice holds the DSP in a perpetual non-idle state)
	// and produce a buffer of zero samples.
	left := make([]int16, 64)
	right := make([]int16, 64)
	a.Render(left, right, 64)
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("expected silence at frame %d, got (%d, %d)", i, left[i], right[i])
		}
	}
}
