package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func alwaysFires(int32) bool { return true }

func TestAttackIsMonotoneNonDecreasingUntilDecay(t *testing.T) {
	var e Envelope
	e.ADSR0 = 0x80 | 0x0f // ADSR mode, attack rate = 31 (fast path, +0x400/tick)
	e.ADSR1 = 0x00
	e.KeyOn()

	prev := e.Level
	sawDecay := false
	for i := 0; i < 64; i++ {
		e.Tick(alwaysFires)
		if e.mode == modeDecay {
			sawDecay = true
			break
		}
		assert.GreaterOrEqualf(t, e.Level, prev, "attack level decreased at tick %d", i)
		prev = e.Level
	}
	assert.True(t, sawDecay, "expected attack to transition to decay within 64 ticks")
	assert.LessOrEqual(t, e.Level, int32(0x7ff))
}

func TestReleaseReachesZeroWithinBudget(t *testing.T) {
	var e Envelope
	e.Level = 0x7ff
	e.KeyOff()

	const maxTicks = 256 // ceil(0x7FF/8)
	for i := 0; i < maxTicks; i++ {
		if e.Level == 0 {
			return
		}
		e.Tick(alwaysFires)
	}
	assert.Equal(t, int32(0), e.Level, "release did not reach 0 within %d ticks", maxTicks)
}

func TestCommitOnlyWhenCounterFires(t *testing.T) {
	var e Envelope
	e.ADSR0 = 0x80 | 0x0f
	e.KeyOn()
	before := e.Level
	e.Tick(func(int32) bool { return false })
	assert.Equal(t, before, e.Level, "level must not change when the counter does not fire")
}
