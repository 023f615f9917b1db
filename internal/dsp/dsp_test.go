package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRAM struct {
	bytes [65536]uint8
}

func (m *fakeRAM) Read8(addr uint16) uint8        { return m.bytes[addr] }
func (m *fakeRAM) Write8(addr uint16, value uint8) { m.bytes[addr] = value }

func TestCyclesSinceLastFlushModulo64(t *testing.T) {
	d := New(nil)
	mem := &fakeRAM{}

	const totalCycles = 64*37 + 17
	d.CyclesCallback(totalCycles)
	d.Flush(mem)

	assert.Equal(t, int32(totalCycles%64), d.cyclesSinceLastFlush)
}

func TestCounterFiringCountsMatchPeriod(t *testing.T) {
	d := New(nil)
	for rate := int32(1); rate < 32; rate++ {
		fires := 0
		saved := d.counter
		d.counter = 0
		for i := int32(0); i < CounterRange; i++ {
			if d.counterFires(rate) {
				fires++
			}
			d.counter = (d.counter + 1) % CounterRange
		}
		d.counter = saved
		assert.Equalf(t, int(CounterRange/counterRates[rate]), fires, "rate %d fired an unexpected number of times", rate)
	}
}

func TestRateZeroNeverFires(t *testing.T) {
	d := New(nil)
	for i := int32(0); i < CounterRange; i++ {
		assert.False(t, d.counterFires(0))
		d.counter = (d.counter + 1) % CounterRange
	}
}

func TestNoiseLFSRPeriodIs32767(t *testing.T) {
	noise := int32(0x4000)
	seen := make(map[int32]bool)
	count := 0
	for {
		if seen[noise] {
			break
		}
		seen[noise] = true
		feedback := (noise << 13) ^ (noise << 14)
		noise = (feedback & 0x4000) ^ (noise >> 1)
		count++
		if count > 40000 {
			t.Fatal("LFSR did not cycle back within a reasonable bound")
		}
	}
	assert.Equal(t, 32767, count)
}

func TestEchoCursorStaysMultipleOf4AndInBounds(t *testing.T) {
	d := New(nil)
	mem := &fakeRAM{}
	d.echoDelay = 1 // echoLength = 0x800 = 2048

	for i := 0; i < 2000; i++ {
		d.CyclesCallback(64)
		d.Flush(mem)
		assert.Zerof(t, d.echoPos%4, "echo_pos %d not a multiple of 4", d.echoPos)
		if d.echoLength > 0 {
			assert.Lessf(t, d.echoPos, d.echoLength, "echo_pos %d not less than echo_length %d", d.echoPos, d.echoLength)
		}
	}
}

func TestNoiseOnlyVoiceProducesNonZeroOutputAndMatchesLFSRRecurrence(t *testing.T) {
	d := New(nil)
	mem := &fakeRAM{}
	var regs [128]uint8
	d.SetState(mem, &regs)

	d.SetRegister(mem, 0x0c, 0x7f) // master vol left
	d.SetRegister(mem, 0x1c, 0x7f) // master vol right
	d.SetRegister(mem, 0x00, 0x7f) // voice 0 vol left
	d.SetRegister(mem, 0x01, 0x7f) // voice 0 vol right
	d.SetRegister(mem, 0x07, 0x7f) // voice 0 GAIN: direct mode, level 0x7f0
	d.SetRegister(mem, 0x3d, 0x01) // NOV: voice 0 is a noise source
	d.SetRegister(mem, 0x6c, 0x1f) // FLG: max noise rate, echo write enabled
	d.SetRegister(mem, 0x4c, 0x01) // KON: key-on voice 0

	const numSamples = 100
	d.CyclesCallback(numSamples * 64)
	d.Flush(mem)

	left := make([]int16, numSamples)
	right := make([]int16, numSamples)
	d.Render(left, right, numSamples)

	nonZero := false
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "expected a noise-only voice to produce audible output")

	wantNoise := int32(0x4000)
	for i := 0; i < numSamples; i++ {
		feedback := (wantNoise << 13) ^ (wantNoise << 14)
		wantNoise = (feedback & 0x4000) ^ (wantNoise >> 1)
	}
	assert.Equal(t, wantNoise, d.noise, "LFSR state after 100 ticks at max rate diverged from the standalone recurrence")
}

func TestKeyOnRetriggerResetsEnvelopeAndSampleStream(t *testing.T) {
	d := New(nil)
	mem := &fakeRAM{}
	var regs [128]uint8
	d.SetState(mem, &regs)

	// Source directory at page 2 (0x0200), voice 0's entry points at a
	// single-block BRR stream of all-zero samples at 0x0300.
	d.SetRegister(mem, 0x5d, 0x02) // DIR
	mem.Write8(0x0200, 0x00)
	mem.Write8(0x0201, 0x03)
	mem.Write8(0x0202, 0x00)
	mem.Write8(0x0203, 0x03)
	mem.bytes[0x0300] = 0x01 // filter 0, shift 0, end-of-stream flag

	d.SetRegister(mem, 0x0c, 0x7f)
	d.SetRegister(mem, 0x1c, 0x7f)
	d.SetRegister(mem, 0x00, 0x7f)
	d.SetRegister(mem, 0x01, 0x7f)
	d.SetRegister(mem, 0x04, 0x00) // SRCN: voice 0 uses directory entry 0
	d.SetRegister(mem, 0x4c, 0x01) // KON voice 0

	d.CyclesCallback(100 * 64)
	d.Flush(mem)
	d.Voices[0].KeyOff()
	assert.Equal(t, modeRelease, d.Voices[0].Envelope.mode)

	d.SetRegister(mem, 0x4c, 0x01) // re-trigger KON
	assert.Equal(t, modeAttack, d.Voices[0].Envelope.mode, "re-KON must restart the envelope at Attack")
	assert.Equal(t, int32(0), d.Voices[0].Envelope.Level, "re-KON must restart the envelope at level 0")
	// The stream restarts at sample_start (0x0300); KeyOn has already
	// decoded that first 9-byte block, so the cursor sits one block past it.
	assert.Equal(t, uint16(0x0300+9), d.Voices[0].sampleAddress, "re-KON must restart the BRR stream at sample_start")
	assert.Equal(t, int32(0), d.Voices[0].samplePos, "re-KON must reset the fractional sample position")
}

func TestSilentLoadProducesZeroOutput(t *testing.T) {
	d := New(nil)
	mem := &fakeRAM{}
	var regs [128]uint8
	d.SetState(mem, &regs)

	d.CyclesCallback(32000 * 64)
	d.Flush(mem)

	left := make([]int16, 32000)
	right := make([]int16, 32000)
	d.Render(left, right, 32000)

	for i, s := range left {
		assert.Zerof(t, s, "left[%d] not silent", i)
	}
	for i, s := range right {
		assert.Zerof(t, s, "right[%d] not silent", i)
	}
}
