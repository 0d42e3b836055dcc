package voice

import "github.com/anthropics/wavesynth/soundfont"

// Interp selects the resampling kernel the oscillator uses to read between
// sample frames.
type Interp int

const (
	InterpPoint Interp = iota
	InterpLinear
	InterpCubic4
	InterpHermite7
)

// Oscillator walks a sample's PCM data at an arbitrary playback rate,
// looping according to the sample's loop mode: until the release stage
// begins (SampleModeLoopUntilRelease) or unconditionally
// (SampleModeLoopContinuous). Phase is kept as a float64 sample index
// rather than the fixed-point 32.32 representation some engines use: at
// float64 precision the accumulated phase error over any realistic note
// duration is far below a sample's worth of drift, so the simpler
// representation is used.
//
// Start/End/LoopStart/LoopEnd are copied out of the shared Sample and
// shifted by this note's sample-offset generators rather than mutating
// the Sample itself, since the same Sample is shared read-only across
// every voice that plays it.
type Oscillator struct {
	Sample             *soundfont.Sample
	Mode               soundfont.SampleMode
	Phase              float64
	Start, End         int // End is exclusive
	LoopStart, LoopEnd int // LoopEnd is exclusive
}

// Reset starts the oscillator at its (possibly offset) first frame. start,
// end, loopStart and loopEnd are this note's sample bounds after the
// offset generators have been applied; end and loopEnd are exclusive.
func (o *Oscillator) Reset(s *soundfont.Sample, mode soundfont.SampleMode, start, end, loopStart, loopEnd int) {
	o.Sample = s
	o.Mode = mode
	o.Start, o.End = start, end
	o.LoopStart, o.LoopEnd = loopStart, loopEnd
	o.Phase = float64(start)
}

// Looping reports whether the oscillator should wrap at the loop points
// right now; forceLoop is true from note-on until the voice is released,
// which is while "loop until release" samples keep looping.
func (o *Oscillator) looping(forceLoop bool) bool {
	switch o.Mode {
	case soundfont.SampleModeLoopContinuous:
		return true
	case soundfont.SampleModeLoopUntilRelease:
		return forceLoop
	default:
		return false
	}
}

// Next returns one interpolated output sample and advances the phase by
// incr (in samples/output-sample, i.e. the playback ratio). forceLoop
// selects "loop until release" behavior; pass false once release has
// started to let the sample play out to its natural end.
func (o *Oscillator) Next(incr float64, method Interp, forceLoop bool) float64 {
	v := o.sampleAt(o.Phase, method, forceLoop)
	o.Phase += incr
	o.wrap(forceLoop)
	return v
}

// Done reports whether the oscillator has run past the sample's end and
// will not loop back (non-looping mode exhausted).
func (o *Oscillator) Done(forceLoop bool) bool {
	return !o.looping(forceLoop) && o.Phase >= float64(o.End)
}

func (o *Oscillator) wrap(forceLoop bool) {
	if !o.looping(forceLoop) {
		return
	}
	loopLen := float64(o.LoopEnd - o.LoopStart)
	if loopLen <= 0 {
		return
	}
	for o.Phase >= float64(o.LoopEnd) {
		o.Phase -= loopLen
	}
}

// at reads sample frame i, wrapping through the loop region when looping
// is active and i has run past the loop end or before its start (needed
// for the neighbor taps higher-order interpolation reads).
func (o *Oscillator) at(i int, forceLoop bool) float64 {
	if o.looping(forceLoop) {
		loopLen := o.LoopEnd - o.LoopStart
		if loopLen > 0 {
			for i >= o.LoopEnd {
				i -= loopLen
			}
			for i < o.LoopStart {
				i += loopLen
			}
		}
	} else {
		if i >= o.End {
			i = o.End - 1
		}
		if i < o.Start {
			i = o.Start
		}
	}
	if i < 0 || i >= len(o.Sample.Data) {
		return 0
	}
	return float64(o.Sample.Data[i])
}

func (o *Oscillator) sampleAt(phase float64, method Interp, forceLoop bool) float64 {
	i0 := int(phase)
	frac := phase - float64(i0)

	switch method {
	case InterpPoint:
		return o.at(i0, forceLoop)
	case InterpLinear:
		a := o.at(i0, forceLoop)
		b := o.at(i0+1, forceLoop)
		return a + (b-a)*frac
	case InterpCubic4:
		ym1 := o.at(i0-1, forceLoop)
		y0 := o.at(i0, forceLoop)
		y1 := o.at(i0+1, forceLoop)
		y2 := o.at(i0+2, forceLoop)
		return cubic4(ym1, y0, y1, y2, frac)
	default: // InterpHermite7
		ym3 := o.at(i0-3, forceLoop)
		ym2 := o.at(i0-2, forceLoop)
		ym1 := o.at(i0-1, forceLoop)
		y0 := o.at(i0, forceLoop)
		y1 := o.at(i0+1, forceLoop)
		y2 := o.at(i0+2, forceLoop)
		y3 := o.at(i0+3, forceLoop)
		return hermite7(ym3, ym2, ym1, y0, y1, y2, y3, frac)
	}
}

// cubic4 is the classic 4-point, 3rd-order Catmull-Rom-style interpolator.
func cubic4(ym1, y0, y1, y2, frac float64) float64 {
	c0 := y0
	c1 := 0.5 * (y1 - ym1)
	c2 := ym1 - 2.5*y0 + 2*y1 - 0.5*y2
	c3 := 0.5*(y2-ym1) + 1.5*(y0-y1)
	return ((c3*frac+c2)*frac+c1)*frac + c0
}

// hermite7 widens cubic4 with a correction term built from the outer
// taps; it trades extra taps for lower passband ripple than cubic4, the
// usual reason a synth offers it as a higher-quality option. The
// correction vanishes at frac 0 and 1 (the kernel still interpolates
// exactly at integer phases) and cancels on locally linear signals, so
// it only acts where the outer taps carry information the inner four
// don't.
func hermite7(ym3, ym2, ym1, y0, y1, y2, y3, frac float64) float64 {
	base := cubic4(ym1, y0, y1, y2, frac)
	correction := 0.0625 * frac * (1 - frac) * ((y3 - y2) - (ym2 - ym3))
	return base + correction
}
