package voice

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// Filter wraps a resonant low-pass biquad section, recomputed once per
// block from the generator-resolved cutoff/Q, using the RBJ audio-EQ-cookbook
// low-pass design. The underlying biquad.Section only exposes coefficient
// assignment through its constructor, so a coefficient change here rebuilds
// the section and so also clears its delay line; at block granularity
// this is an inaudible transient rather than the sample-accurate
// coefficient interpolation a continuously-swept filter would need (see
// DESIGN.md).
type Filter struct {
	section *biquad.Section
	fc, q   float64
}

// Reset clears the filter's delay-line state (z1, z2), used on note-on so
// a stolen or reused voice does not carry over the previous note's tail.
func (f *Filter) Reset() {
	f.section = biquad.NewSection(biquad.Coefficients{})
	f.fc, f.q = 0, 0
}

// SetParams recomputes the biquad coefficients for a new cutoff (Hz) and
// Q (dB of resonance peak, per the SoundFont GenInitialFilterQ convention)
// if they changed since the last block; the rebuild is skipped when
// nothing moved, since this runs once per block per voice.
func (f *Filter) SetParams(sampleRate, cutoffHz, qDb float64) {
	if cutoffHz >= sampleRate*0.5 {
		cutoffHz = sampleRate * 0.499
	}
	if cutoffHz < 20 {
		cutoffHz = 20
	}
	if cutoffHz == f.fc && qDb == f.q {
		return
	}
	f.fc, f.q = cutoffHz, qDb

	qLinear := math.Pow(10, qDb/20)
	if qLinear < 0.5 {
		qLinear = 0.5
	}

	w0 := 2 * math.Pi * cutoffHz / sampleRate
	sinw0, cosw0 := math.Sin(w0), math.Cos(w0)
	alpha := sinw0 / (2 * qLinear)

	a0 := 1 + alpha
	inv := 1 / a0

	f.section = biquad.NewSection(biquad.Coefficients{
		B0: (1 - cosw0) * 0.5 * inv,
		B1: (1 - cosw0) * inv,
		B2: (1 - cosw0) * 0.5 * inv,
		A1: -2 * cosw0 * inv,
		A2: (1 - alpha) * inv,
	})
}

// Process filters one sample through the current biquad state.
func (f *Filter) Process(x float64) float64 {
	if f.section == nil {
		f.section = biquad.NewSection(biquad.Coefficients{})
	}
	return f.section.ProcessSample(x)
}
