package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChorusInactiveProcessMixIsNoop(t *testing.T) {
	c := NewChorus(44100, false)
	send := make([]float64, 64)
	for i := range send {
		send[i] = 1.0
	}
	outL := make([]float64, 64)
	outR := make([]float64, 64)
	c.ProcessMix(send, outL, outR)
	for i := range outL {
		assert.Equal(t, 0.0, outL[i])
		assert.Equal(t, 0.0, outR[i])
	}
}

func TestChorusInactiveProcessReplaceZeroesOutput(t *testing.T) {
	c := NewChorus(44100, false)
	outL := []float64{1, 2, 3}
	outR := []float64{4, 5, 6}
	c.ProcessReplace(make([]float64, 3), outL, outR)
	assert.Equal(t, []float64{0, 0, 0}, outL)
	assert.Equal(t, []float64{0, 0, 0}, outR)
}

func TestChorusActiveProducesNonSilentOutput(t *testing.T) {
	c := NewChorus(44100, true)
	send := make([]float64, 4096)
	for i := range send {
		send[i] = 0.5
	}
	outL := make([]float64, len(send))
	outR := make([]float64, len(send))
	c.ProcessMix(send, outL, outR)

	var energy float64
	for i := range outL {
		energy += outL[i]*outL[i] + outR[i]*outR[i]
	}
	assert.Greater(t, energy, 0.0)
}

func TestChorusSetParamsClampsTapCount(t *testing.T) {
	c := NewChorus(44100, true)
	c.SetParams(ChorusParams{Nr: 500, Level: 1, SpeedHz: 1, DepthMs: 1})
	assert.Equal(t, maxChorusTaps, c.params.Nr)

	c.SetParams(ChorusParams{Nr: -5, Level: 1, SpeedHz: 1, DepthMs: 1})
	assert.Equal(t, 0, c.params.Nr)
}

func TestChorusLFOBounds(t *testing.T) {
	c := NewChorus(44100, true)
	c.SetParams(ChorusParams{Mode: ModeSine})
	for p := 0.0; p < 1.0; p += 0.01 {
		v := c.lfo(p)
		assert.GreaterOrEqual(t, v, -1.0001)
		assert.LessOrEqual(t, v, 1.0001)
	}
	c.SetParams(ChorusParams{Mode: ModeTriangle})
	for p := 0.0; p < 1.0; p += 0.01 {
		v := c.lfo(p)
		assert.GreaterOrEqual(t, v, -1.0001)
		assert.LessOrEqual(t, v, 1.0001)
	}
}

func TestChorusResetClearsDelayLine(t *testing.T) {
	c := NewChorus(44100, true)
	send := make([]float64, 256)
	send[0] = 1.0
	outL := make([]float64, len(send))
	outR := make([]float64, len(send))
	c.ProcessMix(send, outL, outR)

	c.Reset()

	silent := make([]float64, 256)
	outL2 := make([]float64, len(silent))
	outR2 := make([]float64, len(silent))
	c.ProcessMix(silent, outL2, outR2)
	for i := range outL2 {
		assert.Equal(t, 0.0, outL2[i])
	}
}
