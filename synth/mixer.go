package synth

import "github.com/anthropics/wavesynth/voice"

// oneBlock renders one 64-sample block: clear every bus, render
// every playing voice into its audio group and the shared effect sends,
// then run reverb/chorus and fold them into the primary stereo bus
// (mixFx=true) or leave them on their own buses (mixFx=false, for hosts
// that want the dry and wet signals separately).
func (s *Synth) oneBlock(mixFx bool) {
	for g := range s.leftBuf {
		clear(s.leftBuf[g])
		clear(s.rightBuf[g])
	}
	clear(s.fxReverb)
	clear(s.fxChorus)

	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Status == voice.Clean {
			continue
		}
		c := &s.channels[v.Channel]
		src := s.sources(c, v.Key, v.Velocity)
		group := v.Channel % s.audioGroups
		v.Block(s.leftBuf[group], s.rightBuf[group], s.fxReverb, s.fxChorus, &src, c.interp, s.sampleRate, s.blockRate)
	}

	if mixFx {
		s.reverb.ProcessMix(s.fxReverb, s.leftBuf[0], s.rightBuf[0])
		s.chorus.ProcessMix(s.fxChorus, s.leftBuf[0], s.rightBuf[0])
	} else {
		s.reverb.ProcessReplace(s.fxReverb, s.reverbOutL, s.reverbOutR)
		s.chorus.ProcessReplace(s.fxChorus, s.chorusOutL, s.chorusOutR)
	}

	s.masterTick += BlockSize
}

// ReadNext returns a single stereo frame from audio group 0, rendering a
// new block when the previous one is exhausted.
func (s *Synth) ReadNext() (float32, float32) {
	if s.cursor >= BlockSize {
		s.oneBlock(true)
		s.cursor = 0
	}
	gain := s.desc.Gain
	l := float32(s.leftBuf[0][s.cursor] * gain)
	r := float32(s.rightBuf[0][s.cursor] * gain)
	s.cursor++
	return l, r
}

// WriteFloat fills strided planar float32 output buffers with length
// frames. loff/roff are the starting element offsets and lincr/rincr the
// stride between successive frames,
// matching the host contract of writing into an existing larger buffer
// (e.g. an interleaved multi-channel mix) without this engine needing to
// know its layout.
func (s *Synth) WriteFloat(length int, left []float32, loff, lincr int, right []float32, roff, rincr int) {
	li, ri := loff, roff
	for i := 0; i < length; i++ {
		l, r := s.ReadNext()
		left[li] = l
		right[ri] = r
		li += lincr
		ri += rincr
	}
}

// WriteFloat64 is WriteFloat's float64 sibling.
func (s *Synth) WriteFloat64(length int, left []float64, loff, lincr int, right []float64, roff, rincr int) {
	li, ri := loff, roff
	for i := 0; i < length; i++ {
		l, r := s.ReadNext()
		left[li] = float64(l)
		right[ri] = float64(r)
		li += lincr
		ri += rincr
	}
}

// ditherTableSize is the fixed length of the two precomputed
// first-order-difference noise tables int16 output dithers with, and the
// modulus the persistent dither index wraps at.
const ditherTableSize = 48000

var ditherTableL, ditherTableR = buildDitherTables()

// buildDitherTables precomputes two deterministic triangular-PDF noise
// sequences (first-order difference of a uniform LCG) so int16 output is
// reproducible across runs — math/rand's default source is seeded
// process-wide and not guaranteed stable, so this uses a fixed linear congruential sequence instead.
func buildDitherTables() ([ditherTableSize]float64, [ditherTableSize]float64) {
	var l, r [ditherTableSize]float64
	fill := func(seed uint32, out *[ditherTableSize]float64) {
		state := seed
		prev := 0.0
		for i := range out {
			state = state*1664525 + 1013904223
			u := float64(state>>8) / float64(1<<24) // uniform in [0,1)
			out[i] = u - prev
			prev = u
		}
	}
	fill(0x9E3779B9, &l)
	fill(0x85EBCA6B, &r)
	return l, r
}

func clampI16(f float64) int16 {
	if f >= 32767 {
		return 32767
	}
	if f <= -32768 {
		return -32768
	}
	return int16(f)
}

// WriteInt16 is WriteFloat's int16 sibling: dithers and
// clamps each sample to [-32768, 32767].
func (s *Synth) WriteInt16(length int, left []int16, loff, lincr int, right []int16, roff, rincr int) {
	li, ri := loff, roff
	for i := 0; i < length; i++ {
		l, r := s.ReadNext()
		dl := ditherTableL[s.ditherIdx]
		dr := ditherTableR[s.ditherIdx]
		s.ditherIdx++
		if s.ditherIdx >= ditherTableSize {
			s.ditherIdx = 0
		}
		left[li] = clampI16(float64(l)*32767.0 + dl)
		right[ri] = clampI16(float64(r)*32767.0 + dr)
		li += lincr
		ri += rincr
	}
}
