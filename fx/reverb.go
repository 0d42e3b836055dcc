// Package fx implements the two shared send effects the engine routes
// every voice's wet signal through: a Schroeder/Freeverb-style reverb and a
// multi-tap modulated-delay chorus. Both are self-contained DSP units —
// not the "interesting part" of the system, but real
// implementations rather than stubs, since nothing external provides
// them.
package fx

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

const (
	numCombs     = 8
	numAllpass   = 4
	stereoSpread = 23 // samples of comb-tuning offset between L and R, Freeverb convention
)

// combTuningsL are the classic Freeverb comb delay lengths in samples at
// its reference 44100Hz rate; other sample rates scale them proportionally.
var combTuningsL = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}

// allpassTuningsL are the classic Freeverb allpass delay lengths.
var allpassTuningsL = [numAllpass]int{556, 441, 341, 225}

const allpassFeedback = 0.5

type comb struct {
	buf      []float64
	pos      int
	feedback float64
	damp     float64
	store    float64 // onepole lowpass state in the feedback path
}

func newComb(length int) *comb {
	if length < 1 {
		length = 1
	}
	return &comb{buf: make([]float64, length)}
}

func (c *comb) process(x float64) float64 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = x + c.store*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *comb) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.store = 0
}

// allpass is the classic Schroeder allpass: a delay line read/written
// with the feedback/feedforward coefficient, not an RBJ biquad allpass.
type allpass struct {
	buf []float64
	pos int
}

func newAllpass(length int) *allpass {
	if length < 1 {
		length = 1
	}
	return &allpass{buf: make([]float64, length)}
}

func (a *allpass) process(x float64) float64 {
	bufOut := a.buf[a.pos]
	out := -x + bufOut
	a.buf[a.pos] = x + bufOut*allpassFeedback
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpass) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
}

// ReverbParams configures the reverb's room geometry and output mix.
type ReverbParams struct {
	RoomSize float64 // [0, 1.07]
	Damp     float64 // [0, 1]
	Width    float64 // [0, 1]
	Level    float64 // [0, 1]
}

// DefaultReverbParams mirrors Freeverb's conventional starting point.
func DefaultReverbParams() ReverbParams {
	return ReverbParams{RoomSize: 0.5, Damp: 0.5, Width: 1.0, Level: 1.0}
}

// Reverb is a Freeverb-style eight-comb, four-allpass network run once
// per stereo side, with a shared input lowpass
// (a one-pole expressed through the same biquad dependency voice.Filter
// uses) standing in for Freeverb's usual fixed pre-damping.
type Reverb struct {
	active bool

	sampleRate float64

	combsL [numCombs]*comb
	combsR [numCombs]*comb
	apL    [numAllpass]*allpass
	apR    [numAllpass]*allpass

	input       *biquad.Section
	inputCoeffs biquad.Coefficients

	params          ReverbParams
	wet1, wet2, dry float64
}

// NewReverb constructs a Reverb tuned for sampleRate; active mirrors
// the synth descriptor's reverb switch — an inactive reverb still
// exists (so ProcessReplace/ProcessMix never need a nil check) but is a
// no-op.
func NewReverb(sampleRate int, active bool) *Reverb {
	scale := float64(sampleRate) / 44100.0
	r := &Reverb{active: active, sampleRate: float64(sampleRate)}
	for i := 0; i < numCombs; i++ {
		r.combsL[i] = newComb(int(float64(combTuningsL[i])*scale + 0.5))
		r.combsR[i] = newComb(int(float64(combTuningsL[i]+stereoSpread)*scale + 0.5))
	}
	for i := 0; i < numAllpass; i++ {
		r.apL[i] = newAllpass(int(float64(allpassTuningsL[i])*scale + 0.5))
		r.apR[i] = newAllpass(int(float64(allpassTuningsL[i]+stereoSpread)*scale + 0.5))
	}
	r.SetParams(DefaultReverbParams())
	return r
}

// SetParams installs new room parameters, recomputing the comb
// feedback/damp coefficients and the stereo mix weights.
func (r *Reverb) SetParams(p ReverbParams) {
	r.params = p
	feedback := p.RoomSize*0.28 + 0.7 // Freeverb's room-size-to-feedback mapping, clamped range
	if feedback > 0.98 {
		feedback = 0.98
	}
	damp := p.Damp * 0.4
	for i := 0; i < numCombs; i++ {
		r.combsL[i].feedback, r.combsL[i].damp = feedback, damp
		r.combsR[i].feedback, r.combsR[i].damp = feedback, damp
	}
	r.wet1 = p.Level * (p.Width/2 + 0.5)
	r.wet2 = p.Level * ((1 - p.Width) / 2)
	r.dry = 0

	// One-pole lowpass in front of the comb bank, standing in for
	// Freeverb's fixed input damping; higher Damp pulls the cutoff down.
	cutoff := 8000.0 - p.Damp*4000.0
	pole := math.Exp(-2 * math.Pi * cutoff / r.sampleRate)
	r.inputCoeffs = biquad.Coefficients{B0: 1 - pole, A1: -pole}
	r.input = biquad.NewSection(r.inputCoeffs)
}

// Reset clears every delay line and filter state; synth.Synth drives it
// on a MIDI System Reset.
func (r *Reverb) Reset() {
	for i := 0; i < numCombs; i++ {
		r.combsL[i].reset()
		r.combsR[i].reset()
	}
	for i := 0; i < numAllpass; i++ {
		r.apL[i].reset()
		r.apR[i].reset()
	}
	// biquad.Section only takes state through its constructor, so the
	// input filter's delay line is cleared by rebuilding it.
	r.input = biquad.NewSection(r.inputCoeffs)
}

func (r *Reverb) tick(in float64) (l, r2 float64) {
	damped := r.input.ProcessSample(in)
	var outL, outR float64
	for i := 0; i < numCombs; i++ {
		outL += r.combsL[i].process(damped)
		outR += r.combsR[i].process(damped)
	}
	for i := 0; i < numAllpass; i++ {
		outL = r.apL[i].process(outL)
		outR = r.apR[i].process(outR)
	}
	return outL, outR
}

// ProcessMix accumulates the reverberated signal into outL/outR, used
// when the caller is still mixing in the dry signal.
func (r *Reverb) ProcessMix(send, outL, outR []float64) {
	if !r.active {
		return
	}
	n := len(send)
	for i := 0; i < n; i++ {
		l, rr := r.tick(send[i])
		outL[i] += l*r.wet1 + rr*r.wet2
		outR[i] += rr*r.wet1 + l*r.wet2
	}
}

// ProcessReplace overwrites outL/outR with the reverberated send signal
// (zeros when the unit is inactive) — used by hosts that want the
// effect's output on its own bus rather than summed into the dry mix.
func (r *Reverb) ProcessReplace(send, outL, outR []float64) {
	if !r.active {
		for i := range outL {
			outL[i] = 0
			outR[i] = 0
		}
		return
	}
	n := len(send)
	for i := 0; i < n; i++ {
		l, rr := r.tick(send[i])
		outL[i] = l*r.wet1 + rr*r.wet2
		outR[i] = rr*r.wet1 + l*r.wet2
	}
}

// Active reports whether this reverb unit is enabled.
func (r *Reverb) Active() bool { return r.active }
