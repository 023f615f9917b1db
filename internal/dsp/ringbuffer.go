package dsp

// SampleRate is the DSP's fixed native output rate.
const SampleRate = 32000

// bufferLen gives the ring two seconds of headroom, matching the reference.
const bufferLen = SampleRate * 2

// SampleRing is the bounded stereo sample buffer the DSP produces into and
// the host drains from. Single producer (the DSP flush loop), single
// consumer (render's caller); never blocks.
type SampleRing struct {
	left, right        [bufferLen]int16
	writePos, readPos  int32
	sampleCount        int32
}

// WriteSample appends one stereo frame.
func (r *SampleRing) WriteSample(left, right int16) {
	r.left[r.writePos] = left
	r.right[r.writePos] = right
	r.writePos = (r.writePos + 1) % bufferLen
	r.sampleCount++
}

// Read copies numSamples frames starting at the read cursor into out,
// advancing the read cursor and decrementing the available count.
func (r *SampleRing) Read(outLeft, outRight []int16, numSamples int) {
	for i := 0; i < numSamples; i++ {
		outLeft[i] = r.left[r.readPos]
		outRight[i] = r.right[r.readPos]
		r.readPos = (r.readPos + 1) % bufferLen
	}
	r.sampleCount -= int32(numSamples)
}

// GetSampleCount returns how many frames are currently available to read.
func (r *SampleRing) GetSampleCount() int32 {
	return r.sampleCount
}
