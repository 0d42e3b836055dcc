// Package voice implements the per-voice DSP state machine: oscillator,
// envelopes, LFOs, filter and the per-block render loop that turns a
// resolved note-on (internal/gen.VoiceSpec) into audio.
package voice

import (
	"math"

	"github.com/anthropics/wavesynth/internal/conv"
	"github.com/anthropics/wavesynth/internal/gen"
	"github.com/anthropics/wavesynth/soundfont"
)

// Status is a voice's lifecycle state.
type Status int

const (
	// Clean is an unused pool slot, available for any note.
	Clean Status = iota
	// On is a sounding voice that has not yet been released.
	On
	// Sustained is a released voice held by a channel's sustain pedal.
	Sustained
	// Off is a voice in its release stage (or fully silent and awaiting
	// pool reclamation).
	Off
)

// BlockSize is the fixed render granularity every block-rate parameter
// (envelopes, LFOs, filter coefficients) is recomputed at.
const BlockSize = 64

// Sources supplies the normalized [0,1] domain values a ModSource reads
// from for one voice, for one block. Every field is already scaled into
// the unipolar-linear domain ModSource.Map expects before it applies
// direction, curve and polarity.
type Sources struct {
	Velocity01        float64
	Key01             float64
	PolyPressure01    float64
	ChannelPressure01 float64
	PitchWheel01      float64
	PitchWheelSens01  float64
	CC                [128]float64

	// KeyCents is the channel-tuned pitch, in cents, for this voice's
	// key: ordinarily 100*key, but replaced by a channel Tuning table's
	// per-key entry when one is installed.
	KeyCents float64

	// GenOverrides points at the channel's per-generator offset table;
	// each entry is added on top of the voice's resolved generator value
	// alongside the modulator sum. Nil means no channel overrides.
	GenOverrides *[128]float32
}

// Raw returns the normalized domain value for one modulator source.
func (s *Sources) Raw(src soundfont.ModSource) float64 {
	if src.Palette == soundfont.PaletteMIDI {
		if src.Index >= 0 && src.Index < 128 {
			return s.CC[src.Index]
		}
		return 0
	}
	switch src.Index {
	case soundfont.GeneralNone:
		return 1
	case soundfont.GeneralNoteOnVelocity:
		return s.Velocity01
	case soundfont.GeneralNoteOnKey:
		return s.Key01
	case soundfont.GeneralPolyPressure:
		return s.PolyPressure01
	case soundfont.GeneralChannelPressure:
		return s.ChannelPressure01
	case soundfont.GeneralPitchWheel:
		return s.PitchWheel01
	case soundfont.GeneralPitchWheelSensitivity:
		return s.PitchWheelSens01
	}
	return 0
}

// Voice is one playing instance of a sample, walking through the
// envelope/LFO/filter/oscillator state machine one 64-sample block at a
// time.
type Voice struct {
	Status Status

	Channel  int
	Key      int
	Velocity int
	NoteID   uint64
	StartSeq uint64 // monotonic note-on sequence number, for stealing's "oldest" tie-break

	gen  soundfont.GeneratorList
	mods []soundfont.Modulator

	osc    Oscillator
	filter Filter
	volEnv Envelope
	modEnv Envelope
	modLFO LFO
	vibLFO LFO

	minReleaseBlocks    int
	blocksSinceStart    int
	pendingForceRelease bool

	sampleMode soundfont.SampleMode

	PanLeft, PanRight      float64
	ReverbSend, ChorusSend float64
}

// NoteOn installs a resolved voice spec into this (assumed Clean) voice
// and retriggers every stage, oscillator and filter. minNoteBlocks is the
// engine's configured minimum note length, in render blocks; a note-off
// arriving before that many blocks have elapsed is deferred.
func (v *Voice) NoteOn(spec gen.VoiceSpec, channel, key, vel int, noteID, seq uint64, sampleRate, blockRate float64, minNoteBlocks int) {
	v.Status = On
	v.Channel, v.Key, v.Velocity = channel, key, vel
	v.NoteID, v.StartSeq = noteID, seq
	v.gen = spec.Generators
	v.mods = spec.Modulators
	v.blocksSinceStart = 0

	sampleModes := int(v.gen.Total(soundfont.GenSampleModes))
	v.sampleMode = soundfont.SampleMode(sampleModes)

	s := spec.Sample
	startOff := int(v.gen[soundfont.GenStartAddrsOffset].Value) + int(v.gen[soundfont.GenStartAddrsCoarseOffset].Value)*32768
	endOff := int(v.gen[soundfont.GenEndAddrsOffset].Value) + int(v.gen[soundfont.GenEndAddrsCoarseOffset].Value)*32768
	loopStartOff := int(v.gen[soundfont.GenStartloopAddrsOffset].Value) + int(v.gen[soundfont.GenStartloopAddrsCoarseOffset].Value)*32768
	loopEndOff := int(v.gen[soundfont.GenEndloopAddrsOffset].Value) + int(v.gen[soundfont.GenEndloopAddrsCoarseOffset].Value)*32768

	start := clampInt(s.Start+startOff, 0, len(s.Data))
	end := clampInt(s.End+1+endOff, start+1, len(s.Data))
	loopStart := clampInt(s.LoopStart+loopStartOff, start, end)
	loopEnd := clampInt(s.LoopEnd+1+loopEndOff, loopStart+1, end)

	v.osc.Reset(s, v.sampleMode, start, end, loopStart, loopEnd)
	v.filter.Reset()

	blockRate = math.Max(blockRate, 1)

	v.volEnv.Configure(
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDelayVolEnv)),
		conv.TimecentsToSecAttack(v.gen.Total(soundfont.GenAttackVolEnv)),
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenHoldVolEnv)+v.gen.Total(soundfont.GenKeynumToVolEnvHold)*(60-float64(key))),
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDecayVolEnv)+v.gen.Total(soundfont.GenKeynumToVolEnvDecay)*(60-float64(key))),
		conv.TimecentsToSecRelease(v.gen.Total(soundfont.GenReleaseVolEnv)),
		1.0-clamp(v.gen.Total(soundfont.GenSustainVolEnv), 0, 1000)/1000.0,
		blockRate,
	)
	v.volEnv.Retrigger()

	v.modEnv.Configure(
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDelayModEnv)),
		conv.TimecentsToSecAttack(v.gen.Total(soundfont.GenAttackModEnv)),
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenHoldModEnv)+v.gen.Total(soundfont.GenKeynumToModEnvHold)*(60-float64(key))),
		conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDecayModEnv)+v.gen.Total(soundfont.GenKeynumToModEnvDecay)*(60-float64(key))),
		conv.TimecentsToSecRelease(v.gen.Total(soundfont.GenReleaseModEnv)),
		1.0-clamp(v.gen.Total(soundfont.GenSustainModEnv), 0, 1000)/1000.0,
		blockRate,
	)
	v.modEnv.Retrigger()

	v.modLFO.Configure(conv.CentsToHzExact(v.gen.Total(soundfont.GenFreqModLFO)), conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDelayModLFO)), blockRate)
	v.modLFO.Retrigger()
	v.vibLFO.Configure(conv.CentsToHzExact(v.gen.Total(soundfont.GenFreqVibLFO)), conv.TimecentsToSecDelay(v.gen.Total(soundfont.GenDelayVibLFO)), blockRate)
	v.vibLFO.Retrigger()

	v.minReleaseBlocks = minNoteBlocks
}

// ReleaseKey starts the release stage, or moves the voice to Sustained if
// the channel's sustain pedal is currently held. A note released before
// minReleaseBlocks have elapsed still reports Status Off immediately (so
// the voice pool stops treating it as a live note to protect), but the
// envelopes keep running until that minimum has elapsed before their
// release stage actually begins — the engine's minimum note length,
// which exists so a very short note-on/note-off pair is still audible
// instead of clicking silently.
func (v *Voice) ReleaseKey(sustainHeld bool) {
	if v.Status == Off || v.Status == Clean {
		return
	}
	if sustainHeld {
		v.Status = Sustained
		return
	}
	v.Status = Off
	v.triggerRelease()
}

// SustainOff releases a Sustained voice once the pedal lifts.
func (v *Voice) SustainOff() {
	if v.Status != Sustained {
		return
	}
	v.Status = Off
	v.triggerRelease()
}

func (v *Voice) triggerRelease() {
	if v.blocksSinceStart >= v.minReleaseBlocks {
		v.volEnv.ForceRelease()
		v.modEnv.ForceRelease()
		return
	}
	v.pendingForceRelease = true
}

// Kill force-stops the voice immediately (all-sound-off, or stealing),
// bypassing the release stage.
func (v *Voice) Kill() {
	v.Status = Clean
	v.volEnv.ForceFinished()
	v.modEnv.ForceFinished()
}

// Finished reports whether the voice has fully decayed and its pool slot
// can be reclaimed.
func (v *Voice) Finished() bool {
	return v.volEnv.Stage() == StageFinished
}

// PriorityScore implements the voice pool's stealing heuristic: lower
// scores are stolen first. channelAssigned is false for a voice whose
// channel has since been removed from the synth (never the case in
// this engine, but kept so the scoring reads the same as the heuristic
// it implements).
func (v *Voice) PriorityScore(channelAssigned bool, currentSeq uint64) float64 {
	score := 10000.0
	if !channelAssigned {
		score -= 2000
	}
	if v.Status == Sustained {
		score -= 1000
	}
	score -= float64(currentSeq - v.StartSeq)
	if v.volEnv.PastAttack() {
		score += v.volEnv.Value() * 1000
	}
	return score
}

// Block renders BlockSize samples into left/right (dry bus) and
// fxReverb/fxChorus (effects send buses), all pre-allocated to BlockSize
// and accumulated into (not overwritten). method is the owning channel's
// selected interpolation kernel; sampleRate is the engine's output
// sample rate.
func (v *Voice) Block(left, right, fxReverb, fxChorus []float64, src *Sources, method Interp, sampleRate, blockRate float64) {
	if v.Status == Clean || v.Finished() {
		return
	}

	if v.pendingForceRelease && v.blocksSinceStart >= v.minReleaseBlocks {
		v.volEnv.ForceRelease()
		v.modEnv.ForceRelease()
		v.pendingForceRelease = false
	}

	volVal := v.volEnv.Advance()
	modVal := v.modEnv.Advance()
	modLfoVal := v.modLFO.Advance()
	vibLfoVal := v.vibLFO.Advance()
	v.blocksSinceStart++

	evaluateModulators(&v.gen, v.mods, src)

	rootKey := v.rootKey()
	scale := v.gen.Total(soundfont.GenScaleTuning)
	keyCents := src.KeyCents
	pitchCents := 100*float64(rootKey) +
		(keyCents-100*float64(rootKey))/100*scale +
		v.gen.Total(soundfont.GenCoarseTune)*100 +
		v.gen.Total(soundfont.GenFineTune) +
		float64(v.osc.Sample.PitchCorrection) +
		v.gen.Total(soundfont.GenModEnvToPitch)*modVal +
		v.gen.Total(soundfont.GenModLfoToPitch)*modLfoVal +
		v.gen.Total(soundfont.GenVibLfoToPitch)*vibLfoVal +
		v.gen.Total(soundfont.GenPitch)

	rootFreq := conv.CentsToHz(100 * float64(rootKey))
	freq := conv.CentsToHz(pitchCents)
	incr := (freq / rootFreq) * (float64(v.osc.Sample.SampleRate) / sampleRate)
	if incr <= 0 {
		incr = 1e-6
	}

	cutoffCents := v.gen.Total(soundfont.GenInitialFilterFc) +
		v.gen.Total(soundfont.GenModLfoToFilterFc)*modLfoVal +
		v.gen.Total(soundfont.GenModEnvToFilterFc)*modVal
	cutoffHz := conv.CentsToHzExact(cutoffCents)
	qDb := v.gen.Total(soundfont.GenInitialFilterQ) / 10.0
	v.filter.SetParams(sampleRate, cutoffHz, qDb)

	attenuationCb := v.gen.Total(soundfont.GenInitialAttenuation) - v.gen.Total(soundfont.GenModLfoToVolume)*modLfoVal
	ampLinear := conv.AttenuationToAmp(attenuationCb) * volVal

	// A voice whose output sits below the sample's noise floor for a
	// whole block is inaudible; stop it instead of spending a block of
	// interpolation on silence.
	if v.volEnv.PastAttack() && ampLinear < v.osc.Sample.NoiseFloorAmp {
		v.Kill()
		return
	}

	panCents := clamp(v.gen.Total(soundfont.GenPan), -500, 500)
	idx := int((panCents+500)/1000*conv.PanSteps + 0.5)
	v.PanRight = conv.Pan(idx)
	v.PanLeft = conv.Pan(conv.PanSteps - idx)
	v.ReverbSend = clamp(v.gen.Total(soundfont.GenReverbEffectsSend), 0, 1000) / 1000.0
	v.ChorusSend = clamp(v.gen.Total(soundfont.GenChorusEffectsSend), 0, 1000) / 1000.0

	forceLoop := v.sampleMode == soundfont.SampleModeLoopContinuous ||
		(v.sampleMode == soundfont.SampleModeLoopUntilRelease && v.Status != Off)

	for i := 0; i < BlockSize; i++ {
		raw := v.osc.Next(incr, method, forceLoop)
		filtered := v.filter.Process(raw)
		amp := filtered * ampLinear / 32768.0

		left[i] += amp * v.PanLeft
		right[i] += amp * v.PanRight
		fxReverb[i] += amp * v.ReverbSend
		fxChorus[i] += amp * v.ChorusSend

		if v.osc.Done(forceLoop) {
			v.Kill()
			break
		}
	}

}

func (v *Voice) rootKey() int {
	if ov := int(v.gen.Total(soundfont.GenOverridingRootKey)); ov >= 0 {
		return ov
	}
	return v.osc.Sample.OriginalKey
}

func evaluateModulators(gl *soundfont.GeneratorList, mods []soundfont.Modulator, src *Sources) {
	for k := soundfont.GeneratorKind(0); k < soundfont.GenCount; k++ {
		if src.GenOverrides != nil {
			gl[k].ModSum = float64(src.GenOverrides[k])
		} else {
			gl[k].ModSum = 0
		}
	}
	for _, m := range mods {
		v1 := m.Src1.Map(src.Raw(m.Src1))
		v2 := m.Src2.Map(src.Raw(m.Src2))
		out := v1 * v2 * m.Amount
		if m.Transform == soundfont.TransformAbsoluteValue {
			out = math.Abs(out)
		}
		gl[m.Dest].ModSum += out
		gl[m.Dest].Modulated = true
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
