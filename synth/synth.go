package synth

import (
	"github.com/anthropics/wavesynth/fontbank"
	"github.com/anthropics/wavesynth/fx"
	"github.com/anthropics/wavesynth/soundfont"
	"github.com/anthropics/wavesynth/tuning"
	"github.com/anthropics/wavesynth/voice"
	"github.com/charmbracelet/log"
)

// BlockSize is the fixed render granularity of the mix loop.
const BlockSize = voice.BlockSize

// Synth is the real-time synthesis engine: a voice pool, a bank of MIDI
// channels, a loaded-font stack, and the fixed-block mixer that drives
// them.
//
// Not safe for concurrent use: SendEvent and the audio pull methods
// must all be called from the same goroutine, or externally
// synchronized by the host.
type Synth struct {
	desc Descriptor

	Bank *fontbank.Bank

	channels []channel
	pool     *pool

	reverb *fx.Reverb
	chorus *fx.Chorus

	sampleRate    float64
	blockRate     float64
	minNoteBlocks int

	audioGroups int

	leftBuf, rightBuf      [][]float64 // [audioGroups][BlockSize]
	fxReverb, fxChorus     []float64   // [BlockSize] send accumulators
	reverbOutL, reverbOutR []float64
	chorusOutL, chorusOutR []float64

	cursor int

	ditherIdx int

	masterTick uint64

	logger *log.Logger
}

// New constructs a Synth from a Descriptor, or returns a settings error
// if any field is out of range.
func New(desc Descriptor) (*Synth, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}

	s := &Synth{
		desc:        desc,
		Bank:        fontbank.New(),
		channels:    make([]channel, desc.MidiChannels),
		pool:        newPool(desc.Polyphony, desc.Polyphony),
		sampleRate:  float64(desc.SampleRate),
		audioGroups: desc.AudioGroups,
	}
	s.blockRate = s.sampleRate / float64(BlockSize)
	s.minNoteBlocks = int(float64(desc.MinNoteLengthMS)/1000.0*s.blockRate + 0.5)

	for i := range s.channels {
		s.channels[i] = *newChannel(i, desc.DrumsChannelActive)
	}

	s.reverb = fx.NewReverb(desc.SampleRate, desc.ReverbActive)
	s.chorus = fx.NewChorus(desc.SampleRate, desc.ChorusActive)

	s.leftBuf = make([][]float64, s.audioGroups)
	s.rightBuf = make([][]float64, s.audioGroups)
	for g := range s.leftBuf {
		s.leftBuf[g] = make([]float64, BlockSize)
		s.rightBuf[g] = make([]float64, BlockSize)
	}
	s.fxReverb = make([]float64, BlockSize)
	s.fxChorus = make([]float64, BlockSize)
	s.reverbOutL = make([]float64, BlockSize)
	s.reverbOutR = make([]float64, BlockSize)
	s.chorusOutL = make([]float64, BlockSize)
	s.chorusOutR = make([]float64, BlockSize)

	s.cursor = BlockSize // force a render on the first read

	return s, nil
}

// Gain returns the current master gain scalar.
func (s *Synth) Gain() float64 { return s.desc.Gain }

// SetGain installs a new master gain, clamped to [0.0, 10.0].
func (s *Synth) SetGain(g float64) {
	if g < 0 {
		g = 0
	}
	if g > 10 {
		g = 10
	}
	s.desc.Gain = g
}

// ActiveVoiceCount reports the number of voices currently On or
// Sustained, i.e. the count held against the polyphony limit.
func (s *Synth) ActiveVoiceCount() int { return s.pool.activeCount() }

// ChannelCount reports the number of MIDI channels the synth was built
// with.
func (s *Synth) ChannelCount() int { return len(s.channels) }

// ChannelVoiceCount reports how many voices are currently sounding (On
// or Sustained) on one channel, for host activity displays.
func (s *Synth) ChannelVoiceCount(channelIdx int) int {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return 0
	}
	n := 0
	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Channel == channelIdx && (v.Status == voice.On || v.Status == voice.Sustained) {
			n++
		}
	}
	return n
}

// SetInterpMethod selects the oscillator resampling kernel for one
// channel's voices. It
// applies to playing voices from their next block onward as well as to
// newly triggered ones.
func (s *Synth) SetInterpMethod(channelIdx int, m voice.Interp) error {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	s.channels[channelIdx].interp = m
	return nil
}

// SetTuning installs (or clears, with tuning=nil) a retuning table on a
// channel.
func (s *Synth) SetTuning(channelIdx int, t *tuning.Table) error {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	s.channels[channelIdx].tuning = t
	return nil
}

func (s *Synth) sources(c *channel, key, vel int) voice.Sources {
	var src voice.Sources
	src.Velocity01 = float64(vel) / 127.0
	src.Key01 = float64(key) / 127.0
	src.PolyPressure01 = c.polyPressure[key]
	src.ChannelPressure01 = c.channelPressure
	src.PitchWheel01 = (c.pitchBend01() + 1) / 2 // Raw()/Map() apply bipolar transform; store unipolar-normalized raw
	src.PitchWheelSens01 = c.pitchWheelSemitones / 127.0
	src.CC = c.cc
	if c.tuning != nil {
		src.KeyCents = c.tuning.Pitch[key]
	} else {
		src.KeyCents = 100 * float64(key)
	}
	src.GenOverrides = &c.genOverrides
	return src
}

// SetChannelGen installs a channel-level offset for one generator,
// added on top of every voice's resolved value for it. Playing voices
// pick the change up on their next block.
func (s *Synth) SetChannelGen(channelIdx int, kind soundfont.GeneratorKind, value float32) error {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	if kind < 0 || int(kind) >= len(s.channels[channelIdx].genOverrides) {
		return validationErr(ErrCtrlOutOfRange, "generator", int(kind))
	}
	s.channels[channelIdx].genOverrides[kind] = value
	return nil
}

// ChannelGen reports the channel-level offset currently installed for a
// generator.
func (s *Synth) ChannelGen(channelIdx int, kind soundfont.GeneratorKind) (float32, error) {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return 0, validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	if kind < 0 || int(kind) >= len(s.channels[channelIdx].genOverrides) {
		return 0, validationErr(ErrCtrlOutOfRange, "generator", int(kind))
	}
	return s.channels[channelIdx].genOverrides[kind], nil
}
