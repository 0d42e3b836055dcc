package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverbInactiveProcessMixIsNoop(t *testing.T) {
	r := NewReverb(44100, false)
	send := make([]float64, 64)
	for i := range send {
		send[i] = 1.0
	}
	outL := make([]float64, 64)
	outR := make([]float64, 64)
	r.ProcessMix(send, outL, outR)
	for i := range outL {
		assert.Equal(t, 0.0, outL[i])
		assert.Equal(t, 0.0, outR[i])
	}
}

func TestReverbInactiveProcessReplaceZeroesOutput(t *testing.T) {
	r := NewReverb(44100, false)
	outL := []float64{1, 2, 3}
	outR := []float64{4, 5, 6}
	r.ProcessReplace(make([]float64, 3), outL, outR)
	assert.Equal(t, []float64{0, 0, 0}, outL)
	assert.Equal(t, []float64{0, 0, 0}, outR)
}

func TestReverbActiveProducesNonSilentOutput(t *testing.T) {
	r := NewReverb(44100, true)
	send := make([]float64, 4096)
	send[0] = 1.0 // a single impulse
	outL := make([]float64, len(send))
	outR := make([]float64, len(send))
	r.ProcessMix(send, outL, outR)

	var energy float64
	for i := range outL {
		energy += outL[i]*outL[i] + outR[i]*outR[i]
	}
	assert.Greater(t, energy, 0.0, "an impulse through an active reverb must produce audible tail energy")
}

func TestReverbResetClearsState(t *testing.T) {
	r := NewReverb(44100, true)
	send := make([]float64, 512)
	send[0] = 1.0
	outL := make([]float64, len(send))
	outR := make([]float64, len(send))
	r.ProcessMix(send, outL, outR)

	r.Reset()

	silentSend := make([]float64, 512)
	outL2 := make([]float64, len(silentSend))
	outR2 := make([]float64, len(silentSend))
	r.ProcessMix(silentSend, outL2, outR2)
	for i := range outL2 {
		assert.Equal(t, 0.0, outL2[i], "after reset, silence in must produce silence out")
		assert.Equal(t, 0.0, outR2[i])
	}
}

func TestReverbActiveReportsConstructorFlag(t *testing.T) {
	assert.True(t, NewReverb(44100, true).Active())
	assert.False(t, NewReverb(44100, false).Active())
}
