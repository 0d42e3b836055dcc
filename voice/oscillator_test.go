package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anthropics/wavesynth/soundfont"
)

func rampSample(n int) *soundfont.Sample {
	data := make([]int16, n)
	for i := range data {
		data[i] = int16(i)
	}
	return &soundfont.Sample{Data: data, Valid: true}
}

func TestOscillatorPointInterpNoLoop(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeNoLoop, 0, 10, 0, 0)
	for i := 0; i < 10; i++ {
		v := o.Next(1.0, InterpPoint, false)
		assert.Equal(t, float64(i), v)
	}
	assert.True(t, o.Done(false))
}

func TestOscillatorLinearInterpBetweenFrames(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeNoLoop, 0, 10, 0, 0)
	v := o.Next(0.5, InterpLinear, false)
	assert.InDelta(t, 0.0, v, 1e-9)
	v2 := o.Next(0.5, InterpLinear, false)
	assert.InDelta(t, 0.5, v2, 1e-9)
}

func TestOscillatorContinuousLoopWraps(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeLoopContinuous, 0, 10, 2, 8)
	// Walk the attack region into the loop first; wrapping only governs
	// phases at or past the loop start.
	o.Next(1.0, InterpPoint, false)
	o.Next(1.0, InterpPoint, false)
	for i := 0; i < 100; i++ {
		o.Next(1.0, InterpPoint, false)
		assert.GreaterOrEqual(t, o.Phase, 2.0)
		assert.Less(t, o.Phase, 8.0)
	}
	assert.False(t, o.Done(false), "a continuously looping oscillator is never done")
}

func TestOscillatorLoopUntilReleaseHonorsForceLoopFlag(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeLoopUntilRelease, 0, 10, 2, 8)

	// Once release starts (forceLoop=false), this mode does not loop.
	assert.False(t, o.looping(false))
	// Before release (forceLoop=true), it does.
	assert.True(t, o.looping(true))
}

func TestOscillatorNoLoopRunsPastEndWithoutWrapping(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeNoLoop, 0, 10, 0, 0)
	for i := 0; i < 9; i++ {
		o.Next(1.0, InterpPoint, false)
	}
	assert.False(t, o.Done(false))
	o.Next(1.0, InterpPoint, false)
	assert.True(t, o.Done(false), "phase must have reached End with no loop to pull it back")
}

func TestOscillatorAtClampsAtNonLoopBoundaries(t *testing.T) {
	s := rampSample(10)
	var o Oscillator
	o.Reset(s, soundfont.SampleModeNoLoop, 0, 10, 0, 0)
	assert.Equal(t, o.at(0, false), o.at(-5, false), "reads before Start clamp to Start")
	assert.Equal(t, o.at(9, false), o.at(50, false), "reads past End clamp to the last frame")
}

func TestCubic4PassesThroughKnownPoints(t *testing.T) {
	// At frac=0, cubic4 must reproduce y0 exactly; at frac=1, y1 exactly.
	assert.InDelta(t, 10.0, cubic4(0, 10, 20, 30, 0), 1e-9)
	assert.InDelta(t, 20.0, cubic4(0, 10, 20, 30, 1), 1e-9)
}

func TestHermite7PassesThroughKnownPoints(t *testing.T) {
	assert.InDelta(t, 0.0, hermite7(-3, -2, -1, 0, 1, 2, 3, 0), 1e-9)
	assert.InDelta(t, 1.0, hermite7(-3, -2, -1, 0, 1, 2, 3, 1), 1e-9)
}
