package dsp

// numTaps is the width of the echo FIR filter.
const numTaps = 8

// Filter is one channel's 8-tap FIR filter over the echo RAM feed.
type Filter struct {
	coefficients [numTaps]uint8
	buffer       [numTaps]int32
	bufferPos    int32
}

// SetCoefficient sets tap index's raw register byte (interpreted as signed
// at evaluation time in Next).
func (f *Filter) SetCoefficient(index int, value uint8) {
	f.coefficients[index] = value
}

// Next feeds one new sample into the delay line and returns the filtered
// output, matching the 8-tap signed multiply-accumulate shifted right 7.
func (f *Filter) Next(value int32) int32 {
	f.buffer[f.bufferPos] = value

	out := int32(0)
	for i := 0; i < numTaps; i++ {
		tap := (f.bufferPos + int32(i)) % numTaps
		out += (f.buffer[tap] * int32(int8(f.coefficients[i]))) >> 7
	}

	f.bufferPos--
	if f.bufferPos < 0 {
		f.bufferPos = numTaps - 1
	}

	return out
}
