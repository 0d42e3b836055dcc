package fx

import "math"

// ChorusMode selects the chorus LFO waveform.
type ChorusMode int

const (
	ModeSine ChorusMode = iota
	ModeTriangle
)

const (
	maxChorusTaps    = 99
	maxChorusDelayMs = 30.0
)

// ChorusParams configures the chorus's tap count, depth and rate.
type ChorusParams struct {
	Nr      int // [0, 99]
	Level   float64
	SpeedHz float64
	DepthMs float64
	Mode    ChorusMode
}

// DefaultChorusParams mirrors common SoundFont-synth defaults (3 voices,
// moderate depth, slow sine sweep).
func DefaultChorusParams() ChorusParams {
	return ChorusParams{Nr: 3, Level: 2.0, SpeedHz: 0.3, DepthMs: 8.0, Mode: ModeSine}
}

type chorusTap struct {
	phase float64
}

// Chorus is a modulated-delay-line chorus: each of Nr taps reads the
// shared delay buffer at a slowly swept offset and the results are summed
// and scaled by Level.
type Chorus struct {
	active bool

	sampleRate float64
	buf        []float64
	pos        int

	params ChorusParams
	taps   []chorusTap
}

// NewChorus constructs a Chorus sized for sampleRate; active mirrors
// the synth descriptor's chorus switch.
func NewChorus(sampleRate int, active bool) *Chorus {
	c := &Chorus{
		active:     active,
		sampleRate: float64(sampleRate),
	}
	bufLen := int(maxChorusDelayMs/1000.0*c.sampleRate) + 8
	c.buf = make([]float64, bufLen)
	c.SetParams(DefaultChorusParams())
	return c
}

// SetParams installs new chorus parameters and resizes the tap phase
// table if the voice count changed.
func (c *Chorus) SetParams(p ChorusParams) {
	if p.Nr < 0 {
		p.Nr = 0
	}
	if p.Nr > maxChorusTaps {
		p.Nr = maxChorusTaps
	}
	c.params = p
	if len(c.taps) != p.Nr {
		c.taps = make([]chorusTap, p.Nr)
		for i := range c.taps {
			// Spread initial phases evenly so voices don't all sweep in
			// lockstep, the usual reason a chorus sounds like one voice
			// instead of several when taps share a phase.
			c.taps[i].phase = float64(i) / float64(max1(p.Nr))
		}
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (c *Chorus) lfo(phase float64) float64 {
	switch c.params.Mode {
	case ModeTriangle:
		p := phase - math.Floor(phase)
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Reset clears the delay line and tap phases.
func (c *Chorus) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	for i := range c.taps {
		c.taps[i].phase = float64(i) / float64(max1(len(c.taps)))
	}
}

func (c *Chorus) tick(in float64) float64 {
	c.buf[c.pos] = in
	centerSamples := c.params.DepthMs / 1000.0 * c.sampleRate
	phaseIncrement := c.params.SpeedHz / c.sampleRate

	var sum float64
	for i := range c.taps {
		t := &c.taps[i]
		delaySamples := centerSamples * (1 + c.lfo(t.phase)) / 2
		readPos := float64(c.pos) - delaySamples
		sum += c.interp(readPos)

		t.phase += phaseIncrement
		if t.phase >= 1 {
			t.phase -= math.Floor(t.phase)
		}
	}

	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return sum
}

// interp linearly interpolates the delay line at a fractional read
// position, wrapping through the ring buffer.
func (c *Chorus) interp(pos float64) float64 {
	n := len(c.buf)
	for pos < 0 {
		pos += float64(n)
	}
	i0 := int(pos) % n
	i1 := (i0 + 1) % n
	frac := pos - math.Floor(pos)
	return c.buf[i0]*(1-frac) + c.buf[i1]*frac
}

// ProcessMix accumulates the chorused signal (summed equally into both
// channels, then scaled by Level) into outL/outR.
func (c *Chorus) ProcessMix(send, outL, outR []float64) {
	if !c.active {
		return
	}
	for i, in := range send {
		wet := c.tick(in) * c.params.Level
		outL[i] += wet
		outR[i] += wet
	}
}

// ProcessReplace overwrites outL/outR with the chorused signal.
func (c *Chorus) ProcessReplace(send, outL, outR []float64) {
	if !c.active {
		for i := range outL {
			outL[i] = 0
			outR[i] = 0
		}
		return
	}
	for i, in := range send {
		wet := c.tick(in) * c.params.Level
		outL[i] = wet
		outR[i] = wet
	}
}

// Active reports whether this chorus unit is enabled.
func (c *Chorus) Active() bool { return c.active }
