package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCentsToHzSaturatesAtDomainEdges(t *testing.T) {
	below := CentsToHz(0)
	at := CentsToHz(centsToHzMin)
	assert.Equal(t, at, below, "below-domain cents should saturate to the minimum table entry")

	above := CentsToHz(20000)
	atMax := CentsToHz(centsToHzMax)
	assert.Equal(t, atMax, above, "above-domain cents should saturate to the maximum table entry")
}

func TestCentsToHzMonotonic(t *testing.T) {
	prev := CentsToHz(centsToHzMin)
	for c := centsToHzMin + 100; c <= centsToHzMax; c += 100 {
		next := CentsToHz(float64(c))
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestCentibelsToAmpEndpoints(t *testing.T) {
	assert.InDelta(t, 1.0, CentibelsToAmp(0), 1e-9, "0 centibels of attenuation is unity gain")
	assert.InDelta(t, 1.0, CentibelsToAmp(-5), 1e-9, "negative input saturates to the 0cb table entry")
	assert.Equal(t, 0.0, CentibelsToAmp(float64(centibelsToAmpMax)), "at the noise floor, gain is exactly 0")
	assert.Equal(t, 0.0, CentibelsToAmp(float64(centibelsToAmpMax)+1), "beyond the noise floor, gain saturates to 0")
}

func TestAttenuationToAmpWiderDomain(t *testing.T) {
	assert.InDelta(t, 1.0, AttenuationToAmp(0), 1e-9)
	assert.Equal(t, 0.0, AttenuationToAmp(float64(attenuationToAmpMax)))
	assert.Equal(t, 0.0, AttenuationToAmp(float64(attenuationToAmpMax)+100))
}

func TestConcaveConvexEndpointsAndShape(t *testing.T) {
	assert.InDelta(t, 0.0, Concave(0), 1e-9)
	assert.InDelta(t, 1.0, Concave(127), 1e-9)
	assert.InDelta(t, 0.0, Convex(0), 1e-9)
	assert.InDelta(t, 1.0, Convex(127), 1e-9)

	// Concave rises slowly at first then steeply; convex is its mirror.
	// At the midpoint, concave should be below the linear diagonal and
	// convex above it.
	mid := 63.5
	assert.Less(t, Concave(mid), mid/127.0)
	assert.Greater(t, Convex(mid), mid/127.0)
}

func TestConcaveConvexClampOutOfRange(t *testing.T) {
	assert.Equal(t, Concave(0), Concave(-10))
	assert.Equal(t, Concave(127), Concave(200))
}

func TestPanEndpointsAndClamp(t *testing.T) {
	assert.InDelta(t, 0.0, Pan(0), 1e-9, "index 0 is hard-left/attenuated-zero")
	assert.InDelta(t, 1.0, Pan(PanSteps), 1e-9, "the last index is unity")
	assert.Equal(t, Pan(0), Pan(-5), "negative indices clamp to 0")
	assert.Equal(t, Pan(PanSteps), Pan(PanSteps+50), "indices beyond PanSteps clamp to the top")
}

func TestCentsToHzExactUncappedDomain(t *testing.T) {
	// A 5 Hz vibrato sits at roughly -900 cents, well below the capped
	// table's [1500, 13500] domain; CentsToHzExact must still evaluate the
	// formula directly rather than saturating.
	hz := CentsToHzExact(-900)
	assert.Greater(t, hz, 0.0)
	assert.Less(t, hz, 10.0)
}

func TestTimecentsToSecDelayInstant(t *testing.T) {
	assert.Equal(t, 0.0, TimecentsToSecDelay(-32768))
	assert.Equal(t, 0.0, TimecentsToSecDelay(-40000))
}

func TestTimecentsToSecMonotonic(t *testing.T) {
	a := TimecentsToSecAttack(-1200)
	b := TimecentsToSecAttack(0)
	c := TimecentsToSecAttack(1200)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestTimecentsToSecReleaseCapsAtUpperBound(t *testing.T) {
	atCap := TimecentsToSecRelease(8000)
	beyond := TimecentsToSecRelease(20000)
	assert.Equal(t, atCap, beyond)
}
