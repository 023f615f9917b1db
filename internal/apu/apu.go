// Package apu is the APU shell: the 64K RAM arena, the IPL ROM boot
// overlay, the F0-FF memory-mapped I/O register gateway, and the glue
// that drives the SMP, DSP, and three timers together each cycle.
package apu

import (
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/dsp"
	"nitro-core-dx/internal/smp"
	"nitro-core-dx/internal/timer"
)

// RAMLen is the size of the APU's address space.
const RAMLen = 0x10000

// IPLROMLen is the size of the boot ROM overlaid at 0xffc0-0xffff while
// the IPL ROM enable bit is set.
const IPLROMLen = 64

// defaultIPLROM is the stock SPC700 IPL boot program: it waits for the
// S-CPU to hand off a transfer via ports 0-3, copies it into RAM, then
// jumps to the loaded program. Real software relies on its exact bytes
// (e.g. port handshake timing), so this is transcribed verbatim rather
// than reimplemented.
var defaultIPLROM = [IPLROMLen]uint8{
	0xcd, 0xef, 0xbd, 0xe8, 0x00, 0xc6, 0x1d, 0xd0,
	0xfc, 0x8f, 0xaa, 0xf4, 0x8f, 0xbb, 0xf5, 0x78,
	0xcc, 0xf4, 0xd0, 0xfb, 0x2f, 0x19, 0xeb, 0xf4,
	0xd0, 0xfc, 0x7e, 0xf4, 0xd0, 0x0b, 0xe4, 0xf5,
	0xcb, 0xf4, 0xd7, 0x00, 0xfc, 0xd0, 0xf3, 0xab,
	0x01, 0x10, 0xef, 0x7e, 0xf4, 0x10, 0xeb, 0xba,
	0xf6, 0xda, 0x00, 0xba, 0xf4, 0xc4, 0xf4, 0xdd,
	0x5d, 0xd0, 0xdb, 0x1f, 0x00, 0x00, 0xc0, 0xff,
}

// Apu owns the whole APU: RAM, IPL ROM, the SMP interpreter, the DSP,
// and the three hardware timers. It implements both smp.Bus and
// dsp.RAM, since on real hardware the DSP's memory access goes through
// the exact same gateway the SMP sees (there is no separate DSP-only
// memory path).
type Apu struct {
	logger *debug.Logger

	ram    [RAMLen]uint8
	iplROM [IPLROMLen]uint8

	Smp *smp.Smp
	Dsp *dsp.Dsp

	timers [3]*timer.Timer

	isIPLROMEnabled bool
	dspRegAddress   uint8
}

// New returns an Apu with hardware power-on defaults: IPL ROM enabled,
// all RAM zeroed, timers at their real resolutions (256, 256, 32).
func New(logger *debug.Logger) *Apu {
	a := &Apu{
		logger:          logger,
		iplROM:          defaultIPLROM,
		isIPLROMEnabled: true,
		timers:          [3]*timer.Timer{timer.New(256), timer.New(256), timer.New(32)},
	}
	a.Dsp = dsp.New(logger)
	a.Smp = smp.New(a)
	return a
}

// SPCState is the decoded payload of a .spc capture, handed off by
// package spcfile without either package depending on the other's
// internals beyond this struct.
type SPCState struct {
	RAM    [RAMLen]uint8
	IPLROM [IPLROMLen]uint8
	DSPRegs [128]uint8

	PC             uint16
	A, X, Y, PSW, SP uint8
}

// LoadSPCState seeds RAM, IPL ROM, SMP registers, DSP registers, timer
// targets, and the control register from a decoded .spc capture.
func (a *Apu) LoadSPCState(state *SPCState) {
	a.ram = state.RAM
	a.iplROM = state.IPLROM

	a.Smp.RegPC = state.PC
	a.Smp.RegA = state.A
	a.Smp.RegX = state.X
	a.Smp.RegY = state.Y
	a.Smp.SetPSW(state.PSW)
	a.Smp.RegSP = state.SP

	a.Dsp.SetState(a, &state.DSPRegs)

	for i := 0; i < 3; i++ {
		a.timers[i].SetTarget(a.ram[0xfa+i])
	}
	a.setControlReg(a.ram[0xf1])
	a.dspRegAddress = a.ram[0xf2]
}

// Render runs the SMP/DSP forward until numSamples stereo frames are
// queued, then drains exactly that many into left/right.
func (a *Apu) Render(left, right []int16, numSamples int32) {
	for a.Dsp.AvailableSamples() < numSamples {
		a.Smp.Run(numSamples * 64)
		a.Dsp.Flush(a)
	}
	a.Dsp.Render(left, right, int(numSamples))
}

// Cycles satisfies smp.Bus: every SMP sub-cycle also advances the DSP's
// tick accumulator and all three timers in lockstep.
func (a *Apu) Cycles(numCycles int32) {
	a.Dsp.CyclesCallback(numCycles)
	for _, t := range a.timers {
		t.CPUCyclesCallback(numCycles)
	}
}

// Read8 implements the full APU address space as seen by the SMP and
// the DSP: the F0-FF I/O register gateway, the IPL ROM overlay at the
// top of the map, and RAM everywhere else.
func (a *Apu) Read8(address uint16) uint8 {
	if address >= 0xf0 && address < 0x0100 {
		switch {
		case address == 0xf0 || address == 0xf1:
			return 0
		case address == 0xf2:
			return a.dspRegAddress
		case address == 0xf3:
			return a.Dsp.GetRegister(a, a.dspRegAddress)
		case address >= 0xfa && address <= 0xfc:
			return 0
		case address == 0xfd:
			return a.timers[0].ReadCounter()
		case address == 0xfe:
			return a.timers[1].ReadCounter()
		case address == 0xff:
			return a.timers[2].ReadCounter()
		default:
			return a.ram[address]
		}
	}
	if address >= 0xffc0 && a.isIPLROMEnabled {
		return a.iplROM[address-0xffc0]
	}
	return a.ram[address]
}

// Write8 is Read8's write-side counterpart.
func (a *Apu) Write8(address uint16, value uint8) {
	if address >= 0x00f0 && address < 0x0100 {
		switch {
		case address == 0xf0:
			a.setTestReg(value)
		case address == 0xf1:
			a.setControlReg(value)
		case address == 0xf2:
			a.dspRegAddress = value
		case address == 0xf3:
			a.Dsp.SetRegister(a, a.dspRegAddress, value)
		case address >= 0xf4 && address <= 0xf9:
			a.ram[address] = value
		case address == 0xfa:
			a.timers[0].SetTarget(value)
		case address == 0xfb:
			a.timers[1].SetTarget(value)
		case address == 0xfc:
			a.timers[2].SetTarget(value)
		default:
			// No register lives here; writes are discarded.
		}
		return
	}
	a.ram[address] = value
}

// ClearEchoBuffer fills the DSP's active echo region with 0xFF, matching
// the soft-reset behavior real software relies on to silence stale echo
// history rather than leaving it zeroed.
func (a *Apu) ClearEchoBuffer() {
	length := a.Dsp.CalculateEchoLength()
	start := int32(a.Dsp.GetEchoStartAddress())
	end := start + length
	if end > RAMLen {
		end = RAMLen
	}
	for i := start; i < end; i++ {
		a.ram[i] = 0xff
	}
}

// setTestReg handles a write to the test register (0xf0). Real hardware
// exposes factory test-mode behavior here that no retail software uses;
// this ported core logs the attempt and otherwise ignores it rather than
// aborting the run, since an emulator's job is to keep playing.
func (a *Apu) setTestReg(value uint8) {
	if a.logger != nil {
		a.logger.LogSystemf(debug.LogLevelWarning, "write to test register (0xf0) ignored: 0x%02x", value)
	}
}

func (a *Apu) setControlReg(value uint8) {
	a.isIPLROMEnabled = value&0x80 != 0
	if value&0x20 != 0 {
		a.Write8(0xf6, 0x00)
		a.Write8(0xf7, 0x00)
	}
	if value&0x10 != 0 {
		a.Write8(0xf4, 0x00)
		a.Write8(0xf5, 0x00)
	}
	a.timers[0].SetStartStopBit(value&0x01 != 0)
	a.timers[1].SetStartStopBit(value&0x02 != 0)
	a.timers[2].SetStartStopBit(value&0x04 != 0)
}
