package soundfont

// GeneratorKind enumerates the SoundFont 2.01 generator parameters, in
// their spec-assigned order. The set is closed and dense (0..GenEndOper),
// so it is used directly as an array index rather than through a map.
type GeneratorKind int

const (
	GenStartAddrsOffset GeneratorKind = iota
	GenEndAddrsOffset
	GenStartloopAddrsOffset
	GenEndloopAddrsOffset
	GenStartAddrsCoarseOffset
	GenModLfoToPitch
	GenVibLfoToPitch
	GenModEnvToPitch
	GenInitialFilterFc
	GenInitialFilterQ
	GenModLfoToFilterFc
	GenModEnvToFilterFc
	GenEndAddrsCoarseOffset
	GenModLfoToVolume
	GenUnused1
	GenChorusEffectsSend
	GenReverbEffectsSend
	GenPan
	GenUnused2
	GenUnused3
	GenUnused4
	GenDelayModLFO
	GenFreqModLFO
	GenDelayVibLFO
	GenFreqVibLFO
	GenDelayModEnv
	GenAttackModEnv
	GenHoldModEnv
	GenDecayModEnv
	GenSustainModEnv
	GenReleaseModEnv
	GenKeynumToModEnvHold
	GenKeynumToModEnvDecay
	GenDelayVolEnv
	GenAttackVolEnv
	GenHoldVolEnv
	GenDecayVolEnv
	GenSustainVolEnv
	GenReleaseVolEnv
	GenKeynumToVolEnvHold
	GenKeynumToVolEnvDecay
	GenInstrument
	GenReserved1
	GenKeyRange
	GenVelRange
	GenStartloopAddrsCoarseOffset
	GenKeynum
	GenVelocity
	GenInitialAttenuation
	GenReserved2
	GenEndloopAddrsCoarseOffset
	GenCoarseTune
	GenFineTune
	GenSampleID
	GenSampleModes
	GenReserved3
	GenScaleTuning
	GenExclusiveClass
	GenOverridingRootKey
	GenUnused5
	GenEndOper

	// GenPitch is not a real SoundFont generator index; it is an internal
	// modulation destination (following the convention real synthesizers
	// use for the default pitch-wheel modulator, which does not target
	// any of the 61 standard generators but the voice's combined pitch
	// instead). It is appended after the standard range so GeneratorList
	// can carry it alongside everything else.
	GenPitch

	// GenCount is one past the last valid generator kind; GeneratorList
	// is sized to it.
	GenCount = GenPitch + 1
)

// SampleMode is the decoded value of GenSampleModes.
type SampleMode int

const (
	SampleModeNoLoop SampleMode = iota
	SampleModeLoopContinuous
	SampleModeNoLoopAlt // reserved value 2, spec says behave as no-loop
	SampleModeLoopUntilRelease
)

// nonAddable holds the generators the SoundFont spec forbids a preset zone
// from adding to: they are absolute overrides at the instrument layer and
// preset-layer values for them are ignored entirely.
var nonAddable = map[GeneratorKind]bool{
	GenKeyRange:                   true,
	GenVelRange:                   true,
	GenSampleID:                   true,
	GenInstrument:                 true,
	GenOverridingRootKey:          true,
	GenScaleTuning:                true,
	GenExclusiveClass:             true,
	GenSampleModes:                true,
	GenStartAddrsOffset:           true,
	GenEndAddrsOffset:             true,
	GenStartloopAddrsOffset:       true,
	GenEndloopAddrsOffset:         true,
	GenStartAddrsCoarseOffset:     true,
	GenEndAddrsCoarseOffset:       true,
	GenStartloopAddrsCoarseOffset: true,
	GenEndloopAddrsCoarseOffset:   true,
}

// IsAddable reports whether a preset-layer generator value is additive to
// the instrument layer (true) or must be ignored at the preset layer
// (false, "non-addable" in the SoundFont spec).
func (k GeneratorKind) IsAddable() bool { return !nonAddable[k] }

// defaultGeneratorValues holds the SoundFont 2.01 Appendix B default value
// for every generator kind. Kinds absent here default to 0.
var defaultGeneratorValues = map[GeneratorKind]float64{
	GenInitialFilterFc:   13500,
	GenDelayModLFO:       -12000,
	GenDelayVibLFO:       -12000,
	GenDelayModEnv:       -12000,
	GenAttackModEnv:      -12000,
	GenHoldModEnv:        -12000,
	GenDecayModEnv:       -12000,
	GenReleaseModEnv:     -12000,
	GenDelayVolEnv:       -12000,
	GenAttackVolEnv:      -12000,
	GenHoldVolEnv:        -12000,
	GenDecayVolEnv:       -12000,
	GenReleaseVolEnv:     -12000,
	GenKeyRange:          0x7F00, // low=0, high=127 packed
	GenVelRange:          0x7F00,
	GenKeynum:            -1,
	GenVelocity:          -1,
	GenScaleTuning:       100,
	GenOverridingRootKey: -1,
	GenSampleModes:       float64(SampleModeNoLoop),
}

// DefaultValue returns the SoundFont 2.01 default amount for a generator
// kind.
func (k GeneratorKind) DefaultValue() float64 {
	if v, ok := defaultGeneratorValues[k]; ok {
		return v
	}
	return 0
}

// GenEntry is one slot of a GeneratorList: the resolved amount for a
// generator kind, whether a zone explicitly set it, whether a modulator
// currently targets it, and the running sum of modulator contributions.
type GenEntry struct {
	Value float64
	Set   bool
	// Modulated is true once at least one modulator routes to this
	// generator; the voice recomputes its derived DSP parameter whenever
	// this is set even if the modulator's current output is zero.
	Modulated bool
	// ModSum is the live sum of all modulator outputs currently routed to
	// this generator, recomputed every block. It is never
	// folded into Value — Value is resolved once at note-on.
	ModSum float64
}

// GeneratorList is a fixed-size, kind-indexed array of generator entries.
// It is copied by value into each voice at note-on and never re-derived
// from the zone tree afterward.
type GeneratorList [GenCount]GenEntry

// NewDefaultGeneratorList returns a GeneratorList with every entry at its
// SoundFont 2.01 default, none of them explicitly Set.
func NewDefaultGeneratorList() GeneratorList {
	var gl GeneratorList
	for k := GeneratorKind(0); k < GenCount; k++ {
		gl[k].Value = k.DefaultValue()
	}
	return gl
}

// Total returns the DSP-facing value of a generator: its resolved amount
// plus the live modulator sum.
func (gl *GeneratorList) Total(k GeneratorKind) float64 {
	e := &gl[k]
	return e.Value + e.ModSum
}

// KeyRange decodes the packed {low, high} byte range of GenKeyRange or
// GenVelRange.
func KeyRange(amount float64) (low, high int) {
	u := uint16(int16(amount))
	return int(u & 0xFF), int((u >> 8) & 0xFF)
}
