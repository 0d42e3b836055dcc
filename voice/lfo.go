package voice

// LFO is a triangle-wave low-frequency oscillator evaluated once per
// 64-sample block.
type LFO struct {
	phase     float64 // 0..1
	increment float64 // phase advanced per block
	delay     int     // blocks to hold at 0 before starting
	waited    int
}

// Configure sets this LFO's frequency (Hz) and delay (seconds) against the
// block rate (sampleRate/64).
func (l *LFO) Configure(freqHz, delaySec, blockRate float64) {
	l.increment = freqHz / blockRate
	l.delay = int(delaySec*blockRate + 0.5)
}

// Retrigger resets phase and delay counters, as happens on every note-on.
func (l *LFO) Retrigger() {
	l.phase = 0
	l.waited = 0
}

// Advance steps the LFO by one block and returns its triangle output in
// [-1, 1].
func (l *LFO) Advance() float64 {
	if l.waited < l.delay {
		l.waited++
		return 0
	}
	l.phase += l.increment
	if l.phase >= 1 {
		_, frac := splitFrac(l.phase)
		l.phase = frac
	}
	return triangle(l.phase)
}

func splitFrac(v float64) (int, float64) {
	i := int(v)
	return i, v - float64(i)
}

// triangle evaluates a period-1, amplitude-1 triangle wave that starts at 0
// and ramps upward, matching the SoundFont convention for the modulation
// and vibrato LFOs.
func triangle(phase float64) float64 {
	switch {
	case phase < 0.25:
		return phase * 4
	case phase < 0.75:
		return 2 - phase*4
	default:
		return phase*4 - 4
	}
}
