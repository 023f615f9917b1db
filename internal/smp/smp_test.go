package smp

import "testing"

// fakeBus is a flat 64K RAM with a no-op cycle sink, enough to drive the
// interpreter in isolation from the APU shell.
type fakeBus struct {
	mem [65536]uint8
}

func (b *fakeBus) Read8(addr uint16) uint8        { return b.mem[addr] }
func (b *fakeBus) Write8(addr uint16, value uint8) { b.mem[addr] = value }
func (b *fakeBus) Cycles(int32)                    {}

func newTestSmp(program ...uint8) (*Smp, *fakeBus) {
	bus := &fakeBus{}
	for i, b := range program {
		bus.mem[0x0200+i] = b
	}
	s := New(bus)
	s.RegPC = 0x0200
	return s, bus
}

func TestNopConsumesTwoCyclesViaStoppedPath(t *testing.T) {
	s, _ := newTestSmp(0xef) // SLEEP, then run continues via the stopped branch
	consumed := s.Run(10)
	if !s.IsStopped() {
		t.Fatal("expected SLEEP to stop the CPU")
	}
	if consumed < 10 {
		t.Errorf("Run should not return before reaching target_cycles, got %d", consumed)
	}
	if got := s.Run(2); got != 2 {
		t.Errorf("expected one stopped-path iteration to consume 2 cycles, got %d", got)
	}
}

func TestMovImmediateSetsAccumulatorAndFlags(t *testing.T) {
	s, _ := newTestSmp(0xe8, 0x00) // MOV A, #$00
	s.Run(4)
	if s.RegA != 0 {
		t.Errorf("expected A=0, got %d", s.RegA)
	}
	if !s.pswZ {
		t.Error("expected Z flag set after loading 0")
	}
	if s.pswN {
		t.Error("expected N flag clear after loading 0")
	}
}

func TestMovImmediateNegative(t *testing.T) {
	s, _ := newTestSmp(0xe8, 0x80) // MOV A, #$80
	s.Run(4)
	if s.RegA != 0x80 {
		t.Errorf("expected A=0x80, got 0x%02X", s.RegA)
	}
	if !s.pswN {
		t.Error("expected N flag set after loading a negative value")
	}
}

func TestAdcSetsCarryOnOverflow(t *testing.T) {
	s, _ := newTestSmp(0xe8, 0xff, 0x88, 0x02) // MOV A,#$ff ; ADC A,#$02
	s.Run(8)
	if s.RegA != 0x01 {
		t.Errorf("expected A=0x01, got 0x%02X", s.RegA)
	}
	if !s.pswC {
		t.Error("expected carry set on unsigned overflow")
	}
}

func TestBranchNotEqualTakenAndNotTaken(t *testing.T) {
	// MOV A,#1 ; CMP A,#1 ; BNE +2 (not taken, falls through) ; MOV X,#0xAA
	s, _ := newTestSmp(0xe8, 0x01, 0x68, 0x01, 0xd0, 0x02, 0xcd, 0xaa)
	s.Run(20)
	if s.RegX != 0xaa {
		t.Errorf("expected BNE to fall through when equal, X=0x%02X", s.RegX)
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	// MOV A,#$42 ; PUSH A ; MOV A,#$00 ; POP A
	s, _ := newTestSmp(0xe8, 0x42, 0x2d, 0xe8, 0x00, 0xae)
	s.Run(16)
	if s.RegA != 0x42 {
		t.Errorf("expected PUSH/POP to round-trip the accumulator, got 0x%02X", s.RegA)
	}
}

func TestDirectPageFlagRelocatesZeroPageAccess(t *testing.T) {
	s, bus := newTestSmp(0x20, 0xc4, 0x10) // CLRP ; MOV $10, A
	s.RegA = 0x55
	s.Run(6)
	if bus.mem[0x0010] != 0x55 {
		t.Errorf("expected direct page 0 write at $0010, got mem[0x10]=0x%02X", bus.mem[0x0010])
	}
}

func TestJsrRtsRoundTripsProgramCounter(t *testing.T) {
	// at 0x0200: JSR 0x0210 ; NOP(after return) -- at 0x0210: RTS
	prog := make([]uint8, 0x20)
	prog[0] = 0x3f
	prog[1] = 0x10
	prog[2] = 0x02
	prog[0x10] = 0x6f // RTS
	s, _ := newTestSmp(prog...)
	s.Run(13) // JSR (8 cycles) + RTS (5 cycles), stopping before the NOP
	if s.RegPC != 0x0203 {
		t.Errorf("expected PC to return to 0x0203 after JSR/RTS, got 0x%04X", s.RegPC)
	}
}
