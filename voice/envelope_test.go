package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBlockRate = 44100.0 / 64.0

func TestEnvelopeSkipsZeroDelayStraightToAttack(t *testing.T) {
	var e Envelope
	e.Configure(0, 0.01, 0, 0.01, 0.01, 0.5, testBlockRate)
	e.Retrigger()
	assert.Equal(t, StageAttack, e.Stage(), "zero delay must enter Attack immediately")
}

func TestEnvelopeDelayHoldsAtZero(t *testing.T) {
	var e Envelope
	e.Configure(0.05, 0.01, 0, 0.01, 0.01, 0.5, testBlockRate)
	e.Retrigger()
	assert.Equal(t, StageDelay, e.Stage())
	assert.Equal(t, 0.0, e.Advance())
}

func TestEnvelopeAttackReachesUnity(t *testing.T) {
	var e Envelope
	e.Configure(0, 0.01, 0, 0.01, 0.01, 0.3, testBlockRate)
	e.Retrigger()
	var last float64
	for i := 0; i < 1000 && e.Stage() == StageAttack; i++ {
		last = e.Advance()
	}
	assert.Equal(t, 1.0, last)
	assert.Equal(t, StageHold, e.Stage())
}

func TestEnvelopeDecaysToSustainAndHolds(t *testing.T) {
	var e Envelope
	sustain := 0.4
	e.Configure(0, 0.001, 0, 0.02, 0.02, sustain, testBlockRate)
	e.Retrigger()
	for i := 0; i < 10000 && e.Stage() != StageSustain; i++ {
		e.Advance()
	}
	assert.Equal(t, StageSustain, e.Stage())
	assert.InDelta(t, sustain, e.Value(), 1e-6)

	for i := 0; i < 5; i++ {
		assert.InDelta(t, sustain, e.Advance(), 1e-9, "sustain must hold steady until release")
	}
}

func TestEnvelopeForceReleaseFromSustainReachesFinished(t *testing.T) {
	var e Envelope
	e.Configure(0, 0.001, 0, 0.001, 0.02, 0.5, testBlockRate)
	e.Retrigger()
	for i := 0; i < 10000 && e.Stage() != StageSustain; i++ {
		e.Advance()
	}
	e.ForceRelease()
	assert.Equal(t, StageRelease, e.Stage())

	for i := 0; i < 100000 && e.Stage() != StageFinished; i++ {
		e.Advance()
	}
	assert.Equal(t, StageFinished, e.Stage())
	assert.Equal(t, 0.0, e.Value())
}

func TestEnvelopeForceFinishedBypassesRelease(t *testing.T) {
	var e Envelope
	e.Configure(0, 0.01, 0, 0.01, 0.5, 0.5, testBlockRate)
	e.Retrigger()
	e.ForceFinished()
	assert.Equal(t, StageFinished, e.Stage())
	assert.Equal(t, 0.0, e.Value())
}

func TestEnvelopeForceReleaseOnFinishedIsNoop(t *testing.T) {
	var e Envelope
	e.Configure(0, 0.01, 0, 0.01, 0.01, 0.5, testBlockRate)
	e.Retrigger()
	e.ForceFinished()
	e.ForceRelease()
	assert.Equal(t, StageFinished, e.Stage(), "force_release on an already-finished envelope must not resurrect it")
}

func TestEnvelopePastAttack(t *testing.T) {
	var e Envelope
	e.Configure(0.01, 0.01, 0, 0.01, 0.01, 0.5, testBlockRate)
	e.Retrigger()
	assert.False(t, e.PastAttack(), "still in Delay")
	e.Advance()
	for e.Stage() == StageDelay || e.Stage() == StageAttack {
		assert.False(t, e.PastAttack())
		e.Advance()
	}
	assert.True(t, e.PastAttack())
}
