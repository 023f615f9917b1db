package dsp

// ResamplingMode selects how a voice turns its decoded BRR samples into
// one output sample per DSP tick.
type ResamplingMode int

const (
	ResamplingGaussian ResamplingMode = iota
	ResamplingLinear
)

// RAM is the memory surface Voice/DSP need: reading the source directory,
// BRR blocks, and the echo buffer, and writing the echo buffer back. The
// APU shell is the only implementer; passing it in per-call (rather than
// a back-reference held by Voice/DSP) is the context-argument
// rearchitecture the design notes call for.
type RAM interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)
}

// TickContext is the shared, per-tick state a Voice needs that it does not
// itself own: the RAM surface, the sample directory page, the resampling
// mode, and the DSP's counter-fire test for envelope rate gating.
type TickContext struct {
	Mem            RAM
	SourceDirPage  uint8
	ResamplingMode ResamplingMode
	CounterFires   func(rate int32) bool
}

// Voice is one of the DSP's 8 sample-playback channels.
type Voice struct {
	VolLeft, VolRight uint8
	PitchLow          uint8
	PitchHigh         uint8
	Source            uint8
	PitchMod          bool
	NoiseOn           bool
	EchoOn            bool
	IsMuted           bool
	IsSolod           bool

	Envelope Envelope

	decoder BlockDecoder

	sampleStartAddress uint16
	loopStartAddress   uint16
	sampleAddress      uint16
	samplePos          int32 // 12-bit fractional position

	resampleBuffer    [4]int32
	resampleBufferPos int
}

// NewVoice returns a voice with hardware reset defaults.
func NewVoice() *Voice {
	return &Voice{PitchHigh: 0x10}
}

func readLE16(mem RAM, addr uint16) uint16 {
	return uint16(mem.Read8(addr)) | uint16(mem.Read8(addr+1))<<8
}

func (v *Voice) readEntry(ctx *TickContext) {
	base := uint16(ctx.SourceDirPage)*0x100 + uint16(v.Source)*4
	v.sampleStartAddress = readLE16(ctx.Mem, base)
	v.loopStartAddress = readLE16(ctx.Mem, base+2)
}

func (v *Voice) readNextBlock(ctx *TickContext) {
	var block [9]byte
	for i := range block {
		block[i] = ctx.Mem.Read8(v.sampleAddress + uint16(i))
	}
	v.decoder.Read(&block)
	v.sampleAddress += 9
}

func (v *Voice) readNextSample() {
	v.resampleBufferPos--
	if v.resampleBufferPos < 0 {
		v.resampleBufferPos = 3
	}
	v.resampleBuffer[v.resampleBufferPos] = int32(v.decoder.ReadNextSample())
}

// KeyOn restarts the BRR stream from the sample directory entry and resets
// the envelope to a fresh Attack, per the key-on re-trigger scenario.
func (v *Voice) KeyOn(ctx *TickContext) {
	v.readEntry(ctx)
	v.sampleAddress = v.sampleStartAddress
	v.decoder.Reset(0, 0)
	v.readNextBlock(ctx)
	v.samplePos = 0
	v.resampleBuffer = [4]int32{}
	v.resampleBufferPos = 0
	v.readNextSample()
	v.Envelope.KeyOn()
}

// KeyOff places the envelope into Release.
func (v *Voice) KeyOff() {
	v.Envelope.KeyOff()
}

func (v *Voice) resample(mode ResamplingMode) int32 {
	s1 := v.resampleBuffer[v.resampleBufferPos]
	s2 := v.resampleBuffer[(v.resampleBufferPos+1)%4]

	if mode == ResamplingLinear {
		p1 := v.samplePos
		p2 := int32(0x1000) - p1
		return (s1*p1 + s2*p2) >> 12
	}

	s3 := v.resampleBuffer[(v.resampleBufferPos+2)%4]
	s4 := v.resampleBuffer[(v.resampleBufferPos+3)%4]
	kernelIndex := (v.samplePos >> 2) & 0xff
	t0 := gaussianHalfKernel[kernelIndex]
	t1 := gaussianHalfKernel[kernelIndex+256]
	t2 := gaussianHalfKernel[511-kernelIndex]
	t3 := gaussianHalfKernel[255-kernelIndex]
	return (s1*t0 + s2*t1 + s3*t2 + s4*t3) >> 11
}

// RenderOneTick advances the voice by one DSP tick, producing its left,
// right, and dry (pre-volume) contributions for this tick. prevDry is the
// previous voice's dry output (index-1, used only for pitch modulation);
// noise is the DSP's current noise LFSR value; anySolod reports whether
// any voice in the bank is soloed.
func (v *Voice) RenderOneTick(ctx *TickContext, prevDry int32, noise int32, anySolod bool) (left, right, dry int32) {
	pitch := int32(v.PitchHigh)<<8 | int32(v.PitchLow)
	if v.PitchMod {
		pitch += ((prevDry >> 5) * pitch) >> 10
	}
	if pitch < 0 {
		pitch = 0
	}
	if pitch > 0x3fff {
		pitch = 0x3fff
	}

	var sample int32
	if !v.NoiseOn {
		sample = clamp16(v.resample(ctx.ResamplingMode)) &^ 1
	} else {
		sample = int32(int16(noise * 2))
	}

	v.Envelope.Tick(ctx.CounterFires)
	sample = (sample * v.Envelope.Level) >> 11
	sample &^= 1

	if v.decoder.IsEnd && !v.decoder.IsLooping {
		v.Envelope.KeyOff()
		v.Envelope.Level = 0
	}

	v.samplePos += pitch
	for v.samplePos >= 0x1000 {
		v.samplePos -= 0x1000
		v.readNextSample()
		if v.decoder.IsFinished() {
			if v.decoder.IsEnd && v.decoder.IsLooping {
				v.readEntry(ctx)
				v.sampleAddress = v.loopStartAddress
			}
			v.readNextBlock(ctx)
		}
	}

	if v.IsSolod || (!v.IsMuted && !anySolod) {
		left = multiplyVolume(sample, v.VolLeft)
		right = multiplyVolume(sample, v.VolRight)
		dry = sample
	}
	return left, right, dry
}
