// Package conv holds the process-wide conversion tables the synthesis
// engine uses to turn SoundFont parameter units (cents, centibels,
// timecents, 0-127 curve indices) into the linear quantities the DSP
// inner loop wants. Every table is built once, lazily, and never mutated
// afterward.
package conv

import (
	"math"
	"sync"
)

const (
	centsToHzMin = 1500
	centsToHzMax = 13500

	centibelsToAmpMax   = 960
	attenuationToAmpMax = 1440

	panSteps = 1001
)

var (
	once sync.Once

	centsToHzTable        [centsToHzMax - centsToHzMin + 1]float64
	centibelsToAmpTable   [centibelsToAmpMax + 1]float64
	attenuationToAmpTable [attenuationToAmpMax + 1]float64
	concaveTable          [128]float64
	convexTable           [128]float64
	panTable              [panSteps + 1]float64
)

func build() {
	// 8.176 Hz is MIDI note 0 at A440 tuning (2^(-69/12) * 440); cents are
	// measured from that reference, matching the SoundFont 2.01 convention.
	for c := centsToHzMin; c <= centsToHzMax; c++ {
		centsToHzTable[c-centsToHzMin] = 8.176 * math.Pow(2.0, float64(c)/1200.0)
	}

	for cb := 0; cb <= centibelsToAmpMax; cb++ {
		centibelsToAmpTable[cb] = math.Pow(10.0, -float64(cb)/200.0)
	}

	for a := 0; a <= attenuationToAmpMax; a++ {
		attenuationToAmpTable[a] = math.Pow(10.0, -float64(a)/200.0)
	}

	// The SoundFont 2.01 Appendix C curves: -20/96 * log10(i^2/127^2) dB
	// mapped to the unit interval, concave filled from the top down and
	// convex as its complement, endpoints pinned exactly.
	concaveTable[0] = 0
	convexTable[0] = 0
	concaveTable[127] = 1
	convexTable[127] = 1
	for i := 1; i < 127; i++ {
		x := -20.0 / 96.0 * math.Log10(float64(i*i)/(127.0*127.0))
		concaveTable[127-i] = x
		convexTable[i] = 1.0 - x
	}

	for i := 0; i <= panSteps; i++ {
		panTable[i] = math.Sin(float64(i) * math.Pi / (2.0 * float64(panSteps)))
	}
}

func ensure() { once.Do(build) }

// CentsToHz converts an absolute pitch in cents to a frequency in Hz.
// Out-of-domain input saturates to the table's endpoints rather than
// extrapolating; the SoundFont spec never asks for pitches outside
// [1500, 13500] cents (roughly 19 Hz to 20 kHz) in practice.
func CentsToHz(cents float64) float64 {
	ensure()
	if cents <= centsToHzMin {
		return centsToHzTable[0]
	}
	if cents >= centsToHzMax {
		return centsToHzTable[len(centsToHzTable)-1]
	}
	lo := int(cents)
	frac := cents - float64(lo)
	i := lo - centsToHzMin
	a := centsToHzTable[i]
	b := centsToHzTable[i+1]
	return a + (b-a)*frac
}

// CentibelsToAmp converts an attenuation in centibels to a linear
// amplitude multiplier. Values at or beyond the noise floor saturate to 0.
func CentibelsToAmp(cb float64) float64 {
	ensure()
	if cb <= 0 {
		return centibelsToAmpTable[0]
	}
	if cb >= float64(centibelsToAmpMax) {
		return 0
	}
	lo := int(cb)
	frac := cb - float64(lo)
	a := centibelsToAmpTable[lo]
	b := centibelsToAmpTable[lo+1]
	return a + (b-a)*frac
}

// AttenuationToAmp is CentibelsToAmp's wider-domain sibling, used for the
// summed initial-attenuation generator which can exceed the centibel
// table's range once modulators pile on.
func AttenuationToAmp(a float64) float64 {
	ensure()
	if a <= 0 {
		return attenuationToAmpTable[0]
	}
	if a >= float64(attenuationToAmpMax) {
		return 0
	}
	lo := int(a)
	frac := a - float64(lo)
	x := attenuationToAmpTable[lo]
	y := attenuationToAmpTable[lo+1]
	return x + (y-x)*frac
}

// Concave evaluates the SoundFont 2.01 Appendix C concave curve at v,
// clamped to [0, 127].
func Concave(v float64) float64 {
	ensure()
	return lookup127(concaveTable[:], v)
}

// Convex evaluates the SoundFont 2.01 Appendix C convex curve at v,
// clamped to [0, 127].
func Convex(v float64) float64 {
	ensure()
	return lookup127(convexTable[:], v)
}

func lookup127(table []float64, v float64) float64 {
	if v <= 0 {
		return table[0]
	}
	if v >= 127 {
		return table[127]
	}
	lo := int(v)
	frac := v - float64(lo)
	if lo >= 127 {
		return table[127]
	}
	a := table[lo]
	b := table[lo+1]
	return a + (b-a)*frac
}

// Pan returns the equal-power gain for one side of a pan law, indexed
// 0..1001 where 0 is hard left/attenuated-zero and 1001 is hard right/unity.
func Pan(i int) float64 {
	ensure()
	if i < 0 {
		i = 0
	}
	if i > panSteps {
		i = panSteps
	}
	return panTable[i]
}

// PanSteps is the resolution of the Pan lookup table.
const PanSteps = panSteps

// CentsToHzExact evaluates the same cents-to-Hz formula as CentsToHz
// without going through the pitch table, so it is not restricted to the
// table's [1500, 13500] domain. LFO rate generators are expressed in this
// same cents convention but routinely fall well below 1500 cents (a 5 Hz
// vibrato is about -900 cents), so they use this uncapped form instead.
func CentsToHzExact(cents float64) float64 {
	return 8.176 * math.Pow(2.0, cents/1200.0)
}

// TimecentsToSecDelay converts a timecent value to seconds for envelope
// delay stages. Timecents at or below -32768 mean "instant" (0 seconds).
func TimecentsToSecDelay(tc float64) float64 { return timecentsToSec(tc) }

// TimecentsToSecAttack converts a timecent value to seconds for envelope
// attack stages.
func TimecentsToSecAttack(tc float64) float64 { return timecentsToSec(tc) }

// TimecentsToSecRelease converts a timecent value to seconds for envelope
// release stages.
func TimecentsToSecRelease(tc float64) float64 { return timecentsToSec(tc) }

func timecentsToSec(tc float64) float64 {
	if tc <= -32768 {
		return 0
	}
	if tc > 8000 {
		tc = 8000
	}
	return math.Pow(2.0, tc/1200.0)
}
