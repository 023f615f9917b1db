// Package smp implements the SPC700 CPU interpreter: the 8-bit
// accumulator/index machine that runs the APU's program RAM and drives
// the DSP and timers via its memory-mapped I/O writes.
package smp

import "nitro-core-dx/internal/debug"

// Bus is the memory and cycle-accounting surface the SMP needs from its
// host. Read8/Write8 reach the full 64K address space (RAM, the I/O
// register gateway, and the IPL ROM overlay); Cycles reports elapsed
// sub-cycles so the host can drive the DSP and timers in step with CPU
// execution. Smp holds the Bus it is given at construction and reaches
// RAM, I/O, and cycle accounting only through this interface, never
// through a concrete APU type.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)
	Cycles(n int32)
}

// Smp is the SPC700 CPU: register file, processor status flags, and
// the cycle-counted instruction interpreter.
type Smp struct {
	bus Bus

	RegPC uint16
	RegA  uint8
	RegX  uint8
	RegY  uint8
	RegSP uint8

	pswC, pswZ, pswH, pswP, pswV, pswN, pswI, pswB bool

	isStopped bool

	cycleCount int32

	debugger    *debug.Debugger
	cycleLogger *debug.CycleLogger
}

// SetDebugger attaches a breakpoint/step debugger. Run checks it before
// every instruction fetch and returns early the moment it pauses
// execution, so the host can inspect state and Resume() to continue.
func (s *Smp) SetDebugger(d *debug.Debugger) { s.debugger = d }

// SetCycleLogger attaches a cycle-by-cycle trace writer. Run logs one
// line per executed instruction once attached.
func (s *Smp) SetCycleLogger(c *debug.CycleLogger) { s.cycleLogger = c }

// New returns an Smp wired to bus, with hardware reset register values.
func New(bus Bus) *Smp {
	return &Smp{
		bus:   bus,
		RegPC: 0xffc0,
		RegSP: 0xef,
		pswZ:  true,
	}
}

func isNegative(value uint32) bool { return value&0x80 != 0 }

func (s *Smp) setRegYA(value uint16) {
	s.RegA = uint8(value)
	s.RegY = uint8(value >> 8)
}

func (s *Smp) getRegYA() uint16 {
	return uint16(s.RegY)<<8 | uint16(s.RegA)
}

// SetPSW unpacks a PSW byte into the individual flags. Bits 2 (I) and 4
// (B) are not part of this byte on real hardware's PLP/RTI either; they
// are managed separately via the dedicated I/B-setting opcodes.
func (s *Smp) SetPSW(value uint8) {
	s.pswC = value&0x01 != 0
	s.pswZ = value&0x02 != 0
	s.pswH = value&0x08 != 0
	s.pswP = value&0x20 != 0
	s.pswV = value&0x40 != 0
	s.pswN = value&0x80 != 0
}

// GetPSW packs the flags this CPU tracks as part of PSW into one byte.
func (s *Smp) GetPSW() uint8 {
	var v uint8
	if s.pswN {
		v |= 0x80
	}
	if s.pswV {
		v |= 0x40
	}
	if s.pswP {
		v |= 0x20
	}
	if s.pswH {
		v |= 0x08
	}
	if s.pswZ {
		v |= 0x02
	}
	if s.pswC {
		v |= 0x01
	}
	return v
}

func (s *Smp) cycles(n int32) {
	s.bus.Cycles(n)
	s.cycleCount += n
}

func (s *Smp) read(addr uint16) uint8 {
	s.cycles(1)
	return s.bus.Read8(addr)
}

func (s *Smp) write(addr uint16, value uint8) {
	s.cycles(1)
	s.bus.Write8(addr, value)
}

func (s *Smp) readPC() uint8 {
	addr := s.RegPC
	ret := s.read(addr)
	s.RegPC++
	return ret
}

func (s *Smp) readSP() uint8 {
	s.RegSP++
	return s.read(0x0100 | uint16(s.RegSP))
}

func (s *Smp) writeSP(value uint8) {
	addr := 0x0100 | uint16(s.RegSP)
	s.RegSP--
	s.write(addr, value)
}

func (s *Smp) readDP(addr uint8) uint8 {
	var page uint16
	if s.pswP {
		page = 0x0100
	}
	return s.read(page | uint16(addr))
}

func (s *Smp) writeDP(addr uint8, value uint8) {
	var page uint16
	if s.pswP {
		page = 0x0100
	}
	s.write(page|uint16(addr), value)
}

func (s *Smp) setPSWNZ(x uint32) {
	s.pswN = isNegative(x)
	s.pswZ = x == 0
}

// ALU helpers. Each mirrors one addressing-mode-agnostic opcode
// operation; the dispatch table below supplies the operands.

func (s *Smp) adc(x, y uint8) uint8 {
	xi, yi := int32(x), int32(y)
	c := int32(0)
	if s.pswC {
		c = 1
	}
	r := xi + yi + c
	s.pswN = isNegative(uint32(r))
	s.pswV = (^(xi^yi)&(xi^r)&0x80) != 0
	s.pswH = (xi^yi^r)&0x10 != 0
	s.pswZ = uint8(r) == 0
	s.pswC = r > 0xff
	return uint8(r)
}

func (s *Smp) and(x, y uint8) uint8 {
	ret := x & y
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) asl(x uint8) uint8 {
	s.pswC = isNegative(uint32(x))
	ret := x << 1
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) cmp(x, y uint8) uint8 {
	r := int32(x) - int32(y)
	s.pswN = r&0x80 != 0
	s.pswZ = uint8(r) == 0
	s.pswC = r >= 0
	return x
}

func (s *Smp) dec(x uint8) uint8 {
	ret := x - 1
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) eor(x, y uint8) uint8 {
	ret := x ^ y
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) inc(x uint8) uint8 {
	ret := x + 1
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) ld(_, y uint8) uint8 {
	s.setPSWNZ(uint32(y))
	return y
}

func (s *Smp) lsr(x uint8) uint8 {
	s.pswC = x&0x01 != 0
	ret := x >> 1
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) or(x, y uint8) uint8 {
	ret := x | y
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) rol(x uint8) uint8 {
	var carry uint8
	if s.pswC {
		carry = 1
	}
	s.pswC = x&0x80 != 0
	ret := (x << 1) | carry
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) ror(x uint8) uint8 {
	var carry uint8
	if s.pswC {
		carry = 0x80
	}
	s.pswC = x&0x01 != 0
	ret := carry | (x >> 1)
	s.setPSWNZ(uint32(ret))
	return ret
}

func (s *Smp) sbc(x, y uint8) uint8 {
	return s.adc(x, ^y)
}

func (s *Smp) st(_, y uint8) uint8 {
	return y
}

// 16-bit (word) ALU helpers, used by the YA-register opcodes.

func (s *Smp) adw(x, y uint16) uint16 {
	s.pswC = false
	ret := uint16(s.adc(uint8(x), uint8(y)))
	ret |= uint16(s.adc(uint8(x>>8), uint8(y>>8))) << 8
	s.pswZ = ret == 0
	return ret
}

func (s *Smp) cpw(x, y uint16) uint16 {
	r := int32(x) - int32(y)
	s.pswN = r&0x8000 != 0
	s.pswZ = uint16(r) == 0
	s.pswC = r >= 0
	return x
}

func (s *Smp) ldw(_, y uint16) uint16 {
	s.pswN = y&0x8000 != 0
	s.pswZ = y == 0
	return y
}

func (s *Smp) sbw(x, y uint16) uint16 {
	s.pswC = true
	ret := uint16(s.sbc(uint8(x), uint8(y)))
	ret |= uint16(s.sbc(uint8(x>>8), uint8(y>>8))) << 8
	s.pswZ = ret == 0
	return ret
}

func (s *Smp) adjustDPW(x uint16) {
	addr := s.readPC()
	result := uint16(s.readDP(addr)) + x
	s.writeDP(addr, uint8(result))
	addr++
	high := uint8(result >> 8)
	high += s.readDP(addr)
	result = uint16(high)<<8 | (result & 0xff)
	s.writeDP(addr, uint8(result>>8))
	s.pswN = result&0x8000 != 0
	s.pswZ = result == 0
}

// Control-flow and special-opcode handlers.

func (s *Smp) branch(cond bool) {
	offset := s.readPC()
	if !cond {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(offset)))
}

func (s *Smp) branchBit(x uint8) {
	addr := s.readPC()
	sp := s.readDP(addr)
	y := s.readPC()
	s.cycles(1)
	if ((sp&(1<<(x>>5)) != 0)) == (x&0x10 != 0) {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(y)))
}

func (s *Smp) push(x uint8) {
	s.cycles(2)
	s.writeSP(x)
}

func (s *Smp) setAddrBit(opcode uint8) {
	x := uint16(s.readPC())
	x |= uint16(s.readPC()) << 8
	bit := x >> 13
	x &= 0x1fff
	y := uint16(s.read(x))
	switch opcode >> 5 {
	case 0, 1: // orc addr:bit; orc !addr:bit
		s.cycles(1)
		s.pswC = s.pswC || ((y&(1<<bit) != 0) != (opcode&0x20 != 0))
	case 2, 3: // and addr:bit; and !addr:bit
		s.pswC = s.pswC && ((y&(1<<bit) != 0) != (opcode&0x20 != 0))
	case 4: // eor addr:bit
		s.cycles(1)
		s.pswC = s.pswC != (y&(1<<bit) != 0)
	case 5: // ldc addr:bit
		s.pswC = y&(1<<bit) != 0
	case 6: // stc addr:bit
		s.cycles(1)
		var c uint16
		if s.pswC {
			c = 1
		}
		y = (y &^ (1 << bit)) | (c << bit)
		s.write(x, uint8(y))
	case 7: // not addr:bit
		y ^= 1 << bit
		s.write(x, uint8(y))
	}
}

func (s *Smp) setBit(opcode uint8) {
	addr := s.readPC()
	x := s.readDP(addr) &^ (1 << (opcode >> 5))
	var bit uint8
	if opcode&0x10 == 0 {
		bit = 1
	}
	s.writeDP(addr, x|(bit<<(opcode>>5)))
}

func (s *Smp) testAddr(setBits bool) {
	addr := uint16(s.readPC())
	addr |= uint16(s.readPC()) << 8
	y := s.read(addr)
	regA := s.RegA
	s.setPSWNZ(uint32(regA - y))
	s.read(addr)
	if setBits {
		s.write(addr, y|regA)
	} else {
		s.write(addr, y&^regA)
	}
}

func (s *Smp) bneDP() {
	addr := s.readPC()
	x := s.readDP(addr)
	y := s.readPC()
	s.cycles(1)
	if s.RegA == x {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(y)))
}

func (s *Smp) bneDPDec() {
	addr := s.readPC()
	x := s.readDP(addr) - 1
	s.writeDP(addr, x)
	y := s.readPC()
	if x == 0 {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(y)))
}

func (s *Smp) bneDPX() {
	addr := s.readPC()
	s.cycles(1)
	x := s.readDP(addr + s.RegX)
	y := s.readPC()
	s.cycles(1)
	if s.RegA == x {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(y)))
}

func (s *Smp) bneYDec() {
	x := s.readPC()
	s.cycles(2)
	s.RegY--
	if s.RegY == 0 {
		return
	}
	s.cycles(2)
	s.RegPC += uint16(int16(int8(x)))
}

func (s *Smp) brk() {
	addr := uint16(s.read(0xffde))
	addr |= uint16(s.read(0xffdf)) << 8
	s.cycles(2)
	s.writeSP(uint8(s.RegPC >> 8))
	s.writeSP(uint8(s.RegPC))
	s.writeSP(s.GetPSW())
	s.RegPC = addr
	s.pswB = true
	s.pswI = false
}

func (s *Smp) clv() {
	s.cycles(1)
	s.pswV = false
	s.pswH = false
}

func (s *Smp) cmc() {
	s.cycles(2)
	s.pswC = !s.pswC
}

func (s *Smp) daa() {
	s.cycles(2)
	if s.pswC || s.RegA > 0x99 {
		s.RegA += 0x60
		s.pswC = true
	}
	if s.pswH || (s.RegA&0x0f) > 0x09 {
		s.RegA += 0x06
	}
	s.setPSWNZ(uint32(s.RegA))
}

func (s *Smp) das() {
	s.cycles(2)
	if !s.pswC || s.RegA > 0x99 {
		s.RegA -= 0x60
		s.pswC = false
	}
	if !s.pswH || (s.RegA&0x0f) > 0x09 {
		s.RegA -= 0x06
	}
	s.setPSWNZ(uint32(s.RegA))
}

func (s *Smp) divYA() {
	s.cycles(11)
	ya := s.getRegYA()
	s.pswV = s.RegY >= s.RegX
	s.pswH = (s.RegY & 0x0f) >= (s.RegX & 0x0f)
	x := uint16(s.RegX)
	if uint16(s.RegY) < x<<1 {
		s.RegA = uint8(ya / x)
		s.RegY = uint8(ya % x)
	} else {
		s.RegA = uint8(255 - (ya-(x<<9))/(256-x))
		s.RegY = uint8(x + (ya-(x<<9))%(256-x))
	}
	s.setPSWNZ(uint32(s.RegA))
}

func (s *Smp) jmpAddr() {
	addr := uint16(s.readPC())
	addr |= uint16(s.readPC()) << 8
	s.RegPC = addr
}

func (s *Smp) jmpIAddrX() {
	addr := uint16(s.readPC())
	addr |= uint16(s.readPC()) << 8
	s.cycles(1)
	addr += uint16(s.RegX)
	addr2 := uint16(s.read(addr))
	addr++
	addr2 |= uint16(s.read(addr)) << 8
	s.RegPC = addr2
}

func (s *Smp) jspDP() {
	addr := s.readPC()
	s.cycles(2)
	s.writeSP(uint8(s.RegPC >> 8))
	s.writeSP(uint8(s.RegPC))
	s.RegPC = 0xff00 | uint16(addr)
}

func (s *Smp) jsrAddr() {
	addr := uint16(s.readPC())
	addr |= uint16(s.readPC()) << 8
	s.cycles(3)
	s.writeSP(uint8(s.RegPC >> 8))
	s.writeSP(uint8(s.RegPC))
	s.RegPC = addr
}

func (s *Smp) jst(opcode uint8) {
	addr := uint16(0xffde) - uint16(opcode>>4)<<1
	addr2 := uint16(s.read(addr))
	addr++
	addr2 |= uint16(s.read(addr)) << 8
	s.cycles(3)
	s.writeSP(uint8(s.RegPC >> 8))
	s.writeSP(uint8(s.RegPC))
	s.RegPC = addr2
}

func (s *Smp) ldaIXInc() {
	s.cycles(1)
	s.RegA = s.readDP(s.RegX)
	s.RegX++
	s.cycles(1)
	s.setPSWNZ(uint32(s.RegA))
}

func (s *Smp) mulYA() {
	s.cycles(8)
	ya := uint16(s.RegY) * uint16(s.RegA)
	s.RegA = uint8(ya)
	s.RegY = uint8(ya >> 8)
	s.setPSWNZ(uint32(s.RegY))
}

func (s *Smp) nop() { s.cycles(1) }

func (s *Smp) plp() {
	s.cycles(2)
	s.SetPSW(s.readSP())
}

func (s *Smp) rti() {
	s.SetPSW(s.readSP())
	addr := uint16(s.readSP())
	addr |= uint16(s.readSP()) << 8
	s.cycles(2)
	s.RegPC = addr
}

func (s *Smp) rts() {
	addr := uint16(s.readSP())
	addr |= uint16(s.readSP()) << 8
	s.cycles(2)
	s.RegPC = addr
}

func (s *Smp) staIDPX() {
	addr := s.readPC() + s.RegX
	s.cycles(1)
	addr2 := uint16(s.readDP(addr))
	addr++
	addr2 |= uint16(s.readDP(addr)) << 8
	s.read(addr2)
	s.write(addr2, s.RegA)
}

func (s *Smp) staIDPY() {
	addr := s.readPC()
	addr2 := uint16(s.readDP(addr))
	addr++
	addr2 |= uint16(s.readDP(addr)) << 8
	s.cycles(1)
	addr2 += uint16(s.RegY)
	s.read(addr2)
	s.write(addr2, s.RegA)
}

func (s *Smp) staIX() {
	s.cycles(1)
	s.readDP(s.RegX)
	s.writeDP(s.RegX, s.RegA)
}

func (s *Smp) staIXInc() {
	s.cycles(2)
	s.writeDP(s.RegX, s.RegA)
	s.RegX++
}

func (s *Smp) stwDP() {
	addr := s.readPC()
	s.readDP(addr)
	s.writeDP(addr, s.RegA)
	addr++
	s.writeDP(addr, s.RegY)
}

func (s *Smp) sleepStop() {
	s.cycles(2)
	s.isStopped = true
}

func (s *Smp) xcn() {
	s.cycles(4)
	s.RegA = (s.RegA >> 4) | (s.RegA << 4)
	s.setPSWNZ(uint32(s.RegA))
}

// Run executes instructions until at least targetCycles sub-cycles have
// elapsed, and returns the number actually consumed (it only ever
// overshoots by the last instruction's length, matching hardware: there
// is no mid-instruction suspension). If a debugger is attached and pauses
// execution (a breakpoint or the end of a single-step run), Run returns
// immediately so the host can inspect state before resuming.
func (s *Smp) Run(targetCycles int32) int32 {
	s.cycleCount = 0
	for s.cycleCount < targetCycles {
		if s.debugger != nil && s.debugger.ShouldBreak(s.RegPC) {
			return s.cycleCount
		}
		if !s.isStopped {
			s.step()
		} else {
			s.cycles(2)
		}
		if s.cycleLogger != nil {
			s.cycleLogger.LogCycle(&debug.SMPStateSnapshot{
				PC:     s.RegPC,
				A:      s.RegA,
				X:      s.RegX,
				Y:      s.RegY,
				SP:     s.RegSP,
				PSW:    s.GetPSW(),
				Cycles: uint32(s.cycleCount),
			})
		}
	}
	return s.cycleCount
}

// IsStopped reports whether a SLEEP/STOP instruction has halted the CPU.
// Once halted, Run charges 2 cycles per iteration and executes nothing.
func (s *Smp) IsStopped() bool { return s.isStopped }
