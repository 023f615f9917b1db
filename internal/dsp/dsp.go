// Package dsp implements the APU's eight-voice sample-based synthesis
// engine: voices, envelopes, BRR decoding, Gaussian/linear resampling,
// noise, and the stereo echo FIR path.
package dsp

import "nitro-core-dx/internal/debug"

// NumVoices is the number of independent sample-playback channels.
const NumVoices = 8

// CounterRange is the modulus of the DSP's shared tick counter.
const CounterRange = 30720

// counterRates/counterOffsets select the (period, offset) pair for each of
// the 32 rate indices used by envelope ADSR/Gain rates and the noise clock.
// Rate 0 never fires; its table entries (CounterRange+1, 1) make the
// firing formula below naturally false for every counter value.
var counterRates = [32]int32{
	CounterRange + 1, 2048, 1536, 1280, 1024, 768, 640, 512,
	384, 320, 256, 192, 160, 128, 96, 80,
	64, 48, 40, 32, 24, 20, 16, 12,
	10, 8, 6, 5, 4, 3, 2, 1,
}

var counterOffsets = [32]int32{
	1, 0, 1040, 536, 0, 1040, 536, 0,
	1040, 536, 0, 1040, 536, 0, 1040, 536,
	0, 1040, 536, 0, 1040, 536, 0, 1040,
	536, 0, 1040, 536, 0, 1040, 0, 0,
}

// Dsp is the eight-voice synthesis core.
type Dsp struct {
	logger *debug.Logger

	Voices      [NumVoices]*Voice
	leftFilter  Filter
	rightFilter Filter
	ring        SampleRing

	volLeft, volRight         uint8
	echoVolLeft, echoVolRight uint8
	noiseClock                uint8
	echoWriteEnabled          bool
	echoFeedback              uint8
	sourceDir                 uint8
	echoStartAddress          uint16
	echoDelay                 uint8

	counter              int32
	cyclesSinceLastFlush int32
	isFlushing           bool

	noise      int32
	echoPos    int32
	echoLength int32

	resamplingMode ResamplingMode
}

// New creates a DSP with hardware power-on defaults.
func New(logger *debug.Logger) *Dsp {
	d := &Dsp{
		logger:           logger,
		volLeft:          0x89,
		volRight:         0x9c,
		echoVolLeft:      0x9f,
		echoVolRight:     0x9c,
		echoStartAddress: 0x6000,
		echoDelay:        0x0e,
		noise:            0x4000,
		resamplingMode:   ResamplingGaussian,
	}
	for i := range d.Voices {
		d.Voices[i] = NewVoice()
	}
	for i := 0; i < numTaps; i++ {
		d.leftFilter.SetCoefficient(i, defaultFIR[i])
		d.rightFilter.SetCoefficient(i, defaultFIR[i])
	}
	return d
}

var defaultFIR = [numTaps]uint8{0x80, 0xff, 0x9a, 0xff, 0x67, 0xff, 0x0f, 0xff}

// GetCounter exposes the shared tick counter for cycle-log inspection.
func (d *Dsp) GetCounter() int32 { return d.counter }

// GetEchoPos exposes the echo cursor for cycle-log inspection.
func (d *Dsp) GetEchoPos() int32 { return d.echoPos }

// GetEchoStartAddress reports the RAM address the echo buffer begins at.
func (d *Dsp) GetEchoStartAddress() uint16 { return d.echoStartAddress }

// CalculateEchoLength reports the current echo buffer length in bytes,
// derived from the echo delay register. The APU shell's ClearEchoBuffer
// uses this to fill the echo buffer with 0xFF without needing to wait for
// a wrap to latch d.echoLength itself.
func (d *Dsp) CalculateEchoLength() int32 { return int32(d.echoDelay) * 0x800 }

// CyclesCallback accumulates elapsed SMP sub-cycles toward the next flush.
func (d *Dsp) CyclesCallback(n int32) {
	d.cyclesSinceLastFlush += n
}

// counterFires reports whether rate r's schedule fires on the current tick.
func (d *Dsp) counterFires(rate int32) bool {
	return (d.counter+counterOffsets[rate])%counterRates[rate] == 0
}

func (d *Dsp) context(mem RAM) *TickContext {
	return &TickContext{
		Mem:            mem,
		SourceDirPage:  d.sourceDir,
		ResamplingMode: d.resamplingMode,
		CounterFires:   d.counterFires,
	}
}

// Flush advances the DSP by whole 64-sub-cycle ticks for every batch of
// cycles accumulated since the last flush.
func (d *Dsp) Flush(mem RAM) {
	if d.isFlushing {
		return
	}
	d.isFlushing = true
	defer func() { d.isFlushing = false }()

	for d.cyclesSinceLastFlush >= 64 {
		d.tick(mem)
		d.cyclesSinceLastFlush -= 64
	}
}

func (d *Dsp) areAnyVoicesSolod() bool {
	for _, v := range d.Voices {
		if v.IsSolod {
			return true
		}
	}
	return false
}

func (d *Dsp) tick(mem RAM) {
	if d.counterFires(int32(d.noiseClock)) {
		feedback := (d.noise << 13) ^ (d.noise << 14)
		d.noise = (feedback & 0x4000) ^ (d.noise >> 1)
	}

	ctx := d.context(mem)
	anySolod := d.areAnyVoicesSolod()

	var leftOut, rightOut int32
	var leftEchoOut, rightEchoOut int32
	lastVoiceOut := int32(0)

	for _, v := range d.Voices {
		left, right, dry := v.RenderOneTick(ctx, lastVoiceOut, d.noise, anySolod)
		lastVoiceOut = dry

		leftOut = clamp16(leftOut + left)
		rightOut = clamp16(rightOut + right)
		if v.EchoOn {
			leftEchoOut = clamp16(leftEchoOut + left)
			rightEchoOut = clamp16(rightEchoOut + right)
		}
	}

	leftOut = multiplyVolume(leftOut, d.volLeft)
	rightOut = multiplyVolume(rightOut, d.volRight)

	echoAddr := d.echoStartAddress + uint16(d.echoPos)
	leftEchoIn := int32(int16(readLE16(mem, echoAddr))) &^ 1
	rightEchoIn := int32(int16(readLE16(mem, echoAddr+2))) &^ 1

	leftEchoIn = d.leftFilter.Next(leftEchoIn)
	rightEchoIn = d.rightFilter.Next(rightEchoIn)
	leftEchoIn = clamp16(leftEchoIn)
	rightEchoIn = clamp16(rightEchoIn)

	outLeft := clamp16(leftOut + multiplyVolume(leftEchoIn, d.echoVolLeft))
	outRight := clamp16(rightOut + multiplyVolume(rightEchoIn, d.echoVolRight))
	d.ring.WriteSample(int16(outLeft), int16(outRight))

	if d.echoWriteEnabled {
		echoOutLeft := clamp16(leftEchoOut+((leftEchoIn*int32(int8(d.echoFeedback)))>>7)) &^ 1
		echoOutRight := clamp16(rightEchoOut+((rightEchoIn*int32(int8(d.echoFeedback)))>>7)) &^ 1
		writeLE16(mem, echoAddr, uint16(int16(echoOutLeft)))
		writeLE16(mem, echoAddr+2, uint16(int16(echoOutRight)))
	}

	if d.echoPos == 0 {
		d.echoLength = int32(d.echoDelay) * 0x800
	}
	d.echoPos += 4
	if d.echoPos >= d.echoLength {
		d.echoPos = 0
	}

	d.counter = (d.counter + 1) % CounterRange
}

func writeLE16(mem RAM, addr uint16, value uint16) {
	mem.Write8(addr, uint8(value))
	mem.Write8(addr+1, uint8(value>>8))
}

// Render drains exactly numSamples stereo frames from the ring into
// left/right. It does not flush: the caller (the APU shell) is
// responsible for running the SMP, feeding cycles via CyclesCallback and
// flushing until AvailableSamples reaches numSamples before calling Render.
func (d *Dsp) Render(left, right []int16, numSamples int) {
	d.ring.Read(left, right, numSamples)
}

// AvailableSamples reports how many frames are queued in the ring.
func (d *Dsp) AvailableSamples() int32 {
	return d.ring.GetSampleCount()
}

// SetKON key-ons every voice named in the mask.
func (d *Dsp) SetKON(mem RAM, mask uint8) {
	ctx := d.context(mem)
	for i, v := range d.Voices {
		if mask&(1<<uint(i)) != 0 {
			v.KeyOn(ctx)
		}
	}
}

// SetKOF key-offs every voice named in the mask.
func (d *Dsp) SetKOF(mask uint8) {
	for i, v := range d.Voices {
		if mask&(1<<uint(i)) != 0 {
			v.KeyOff()
		}
	}
}

// SetFLG applies the FLG register: noise clock (bits 0-4), echo-write
// inhibit (bit 5, inverted). The soft reset bit (bit 7) and the other
// remaining bits are ignored.
func (d *Dsp) SetFLG(value uint8) {
	d.noiseClock = value & 0x1f
	d.echoWriteEnabled = value&0x20 == 0
}

// SetPMON applies the pitch-modulation mask. Voice 0 has no predecessor to
// modulate against, so its bit is always ignored, matching hardware.
func (d *Dsp) SetPMON(value uint8) {
	for i := 1; i < NumVoices; i++ {
		d.Voices[i].PitchMod = value&(1<<uint(i)) != 0
	}
}

// SetNOV applies the noise-enable mask.
func (d *Dsp) SetNOV(value uint8) {
	for i, v := range d.Voices {
		v.NoiseOn = value&(1<<uint(i)) != 0
	}
}

// SetEON applies the echo-enable mask.
func (d *Dsp) SetEON(value uint8) {
	for i, v := range d.Voices {
		v.EchoOn = value&(1<<uint(i)) != 0
	}
}

// SetFilterCoefficient writes FIR tap index on both the left and right
// filters (hardware shares one coefficient set across channels).
func (d *Dsp) SetFilterCoefficient(index int, value uint8) {
	d.leftFilter.SetCoefficient(index, value)
	d.rightFilter.SetCoefficient(index, value)
}

// SetRegister writes one of the 128 DSP registers by address, flushing
// pending ticks first so cycle-accurate ordering with SMP writes holds.
// Addresses with bit 7 set are out of range and silently ignored.
func (d *Dsp) SetRegister(mem RAM, address uint8, value uint8) {
	if address&0x80 != 0 {
		return
	}
	if !d.isFlushing {
		d.Flush(mem)
	}

	voiceIndex := address >> 4
	voiceAddress := address & 0x0f

	if voiceAddress < 0x0a && voiceIndex < NumVoices {
		v := d.Voices[voiceIndex]
		switch voiceAddress {
		case 0x00:
			v.VolLeft = value
		case 0x01:
			v.VolRight = value
		case 0x02:
			v.PitchLow = value
		case 0x03:
			v.PitchHigh = value & 0x3f
		case 0x04:
			v.Source = value
		case 0x05:
			v.Envelope.ADSR0 = value
		case 0x06:
			v.Envelope.ADSR1 = value
		case 0x07:
			v.Envelope.Gain = value
		}
		return
	}

	if voiceAddress == 0x0f && voiceIndex < NumVoices {
		d.SetFilterCoefficient(int(voiceIndex), value)
		return
	}

	switch address {
	case 0x0c:
		d.volLeft = value
	case 0x1c:
		d.volRight = value
	case 0x2c:
		d.echoVolLeft = value
	case 0x3c:
		d.echoVolRight = value
	case 0x4c:
		d.SetKON(mem, value)
	case 0x5c:
		d.SetKOF(value)
	case 0x6c:
		d.SetFLG(value)
	case 0x0d:
		d.echoFeedback = value
	case 0x2d:
		d.SetPMON(value)
	case 0x3d:
		d.SetNOV(value)
	case 0x4d:
		d.SetEON(value)
	case 0x5d:
		d.sourceDir = value
	case 0x6d:
		d.echoStartAddress = uint16(value) << 8
	case 0x7d:
		d.echoDelay = value & 0x0f
	}
}

// GetRegister flushes pending ticks and returns 0 for every address.
// Register values written through SetRegister are not read back, so a
// read of F3 at the APU shell layer also yields 0.
func (d *Dsp) GetRegister(mem RAM, address uint8) uint8 {
	if !d.isFlushing {
		d.Flush(mem)
	}
	return 0
}

// SetState seeds all 128 DSP registers from a captured image, skipping
// KON/KOF (0x4c/0x5c) in the address sweep and then applying the KON value
// last as a key-on pulse. The KOF value is not applied.
func (d *Dsp) SetState(mem RAM, regs *[128]uint8) {
	for addr := 0; addr < 128; addr++ {
		if addr == 0x4c || addr == 0x5c {
			continue
		}
		d.SetRegister(mem, uint8(addr), regs[addr])
	}
	d.SetKON(mem, regs[0x4c])
}
