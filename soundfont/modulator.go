package soundfont

import "github.com/anthropics/wavesynth/internal/conv"

// ModCurve is the transfer curve applied to a modulator source value
// before it reaches the multiplier.
type ModCurve int

const (
	CurveLinear ModCurve = iota
	CurveConcave
	CurveConvex
	CurveSwitch
)

// ModPolarity selects whether a source's domain is [0,1] (unipolar) or
// [-1,1] (bipolar).
type ModPolarity int

const (
	PolarityUnipolar ModPolarity = iota
	PolarityBipolar
)

// ModDirection selects whether increasing controller value increases or
// decreases the mapped output.
type ModDirection int

const (
	DirectionPositive ModDirection = iota
	DirectionNegative
)

// ModPalette selects which index space a ModSource's 7-bit index lives
// in: the general controller palette (note-on velocity, key, pitch
// wheel, etc.) or the raw MIDI CC palette.
type ModPalette int

const (
	PaletteGeneral ModPalette = iota
	PaletteMIDI
)

// General controller indices, valid when a ModSource's palette is
// PaletteGeneral.
const (
	GeneralNone = iota
	GeneralNoteOnVelocity
	GeneralNoteOnKey
	GeneralPolyPressure
	GeneralChannelPressure
	GeneralPitchWheel
	GeneralPitchWheelSensitivity
	GeneralLink
)

// ModSource is a single modulator source: a 7-bit controller index plus
// the four flag bits the SoundFont spec packs alongside it (palette,
// direction, polarity, curve).
type ModSource struct {
	Index     int
	Palette   ModPalette
	Direction ModDirection
	Polarity  ModPolarity
	Curve     ModCurve
}

// Map applies this source's curve, direction and polarity to a raw
// controller value already normalized to [0,1] (unipolar domain before
// direction/polarity are applied).
func (s ModSource) Map(raw01 float64) float64 {
	v := raw01
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if s.Direction == DirectionNegative {
		v = 1 - v
	}

	switch s.Curve {
	case CurveConcave:
		v = conv.Concave(v * 127)
	case CurveConvex:
		v = conv.Convex(v * 127)
	case CurveSwitch:
		if v >= 0.5 {
			v = 1
		} else {
			v = 0
		}
	}

	if s.Polarity == PolarityBipolar {
		v = 2*v - 1
	}
	return v
}

// Modulator is a single routing rule: two sources, a destination
// generator, an amount and a transform applied to the product before it
// is summed into the destination's ModSum.
type Modulator struct {
	Src1      ModSource
	Src2      ModSource
	Dest      GeneratorKind
	Amount    float64
	Transform ModTransform
}

// ModTransform is applied to the final product of a modulator before
// summation. SoundFont 2.01 only defines Linear and AbsoluteValue.
type ModTransform int

const (
	TransformLinear ModTransform = iota
	TransformAbsoluteValue
)

// Identical reports whether two modulators share source1, source2,
// destination and transform (amount is allowed to differ) — the
// "identical modulator" relation used when merging default, instrument
// and preset modulator lists.
func (m Modulator) Identical(o Modulator) bool {
	return m.Src1 == o.Src1 && m.Src2 == o.Src2 && m.Dest == o.Dest && m.Transform == o.Transform
}

// sourceAlwaysOn is the constant-1 second source used by modulators that
// only have one real source (the SoundFont spec encodes "no second
// source" as this palette-general index-0 unipolar-linear source, whose
// Map always returns 1).
var sourceAlwaysOn = ModSource{Index: GeneralNone, Palette: PaletteGeneral, Polarity: PolarityUnipolar, Curve: CurveLinear}

func src(index int, palette ModPalette, dir ModDirection, pol ModPolarity, curve ModCurve) ModSource {
	return ModSource{Index: index, Palette: palette, Direction: dir, Polarity: pol, Curve: curve}
}

// DefaultModulators returns the default modulators every voice starts
// with. The pitch-wheel modulator is sometimes not counted in the
// "default modulator" tally (it routes to the internal pitch destination
// rather than a generator), which is why implementations disagree on
// whether there are nine or ten of these; this returns all of them.
// Callers get a fresh slice every call since modulator lists are mutated
// per note-on.
func DefaultModulators() []Modulator {
	return []Modulator{
		// MIDI note-on velocity -> initial attenuation, negative/concave, ~960cb at vel 0
		{
			Src1:   src(GeneralNoteOnVelocity, PaletteGeneral, DirectionNegative, PolarityUnipolar, CurveConcave),
			Src2:   sourceAlwaysOn,
			Dest:   GenInitialAttenuation,
			Amount: 960,
		},
		// MIDI note-on velocity -> filter cutoff: the positive-switch second
		// source gates the route off entirely below half velocity; above it,
		// the negative-linear first source scales the -2400 cent reduction
		// from about -1190 cents at velocity 64 down to none at 127.
		{
			Src1:   src(GeneralNoteOnVelocity, PaletteGeneral, DirectionNegative, PolarityUnipolar, CurveLinear),
			Src2:   src(GeneralNoteOnVelocity, PaletteGeneral, DirectionPositive, PolarityUnipolar, CurveSwitch),
			Dest:   GenInitialFilterFc,
			Amount: -2400,
		},
		// MIDI channel pressure -> vibrato LFO pitch depth
		{
			Src1:   src(GeneralChannelPressure, PaletteGeneral, DirectionPositive, PolarityUnipolar, CurveLinear),
			Src2:   sourceAlwaysOn,
			Dest:   GenVibLfoToPitch,
			Amount: 50,
		},
		// CC1 (mod wheel) -> vibrato LFO pitch depth
		{
			Src1:   src(1, PaletteMIDI, DirectionPositive, PolarityUnipolar, CurveLinear),
			Src2:   sourceAlwaysOn,
			Dest:   GenVibLfoToPitch,
			Amount: 50,
		},
		// CC7 (channel volume) -> initial attenuation
		{
			Src1:   src(7, PaletteMIDI, DirectionNegative, PolarityUnipolar, CurveConcave),
			Src2:   sourceAlwaysOn,
			Dest:   GenInitialAttenuation,
			Amount: 960,
		},
		// CC10 (pan) -> pan
		{
			Src1:   src(10, PaletteMIDI, DirectionPositive, PolarityBipolar, CurveLinear),
			Src2:   sourceAlwaysOn,
			Dest:   GenPan,
			Amount: 500,
		},
		// CC11 (expression) -> initial attenuation
		{
			Src1:   src(11, PaletteMIDI, DirectionNegative, PolarityUnipolar, CurveConcave),
			Src2:   sourceAlwaysOn,
			Dest:   GenInitialAttenuation,
			Amount: 960,
		},
		// CC91 (reverb send) -> reverb effects send
		{
			Src1:   src(91, PaletteMIDI, DirectionPositive, PolarityUnipolar, CurveLinear),
			Src2:   sourceAlwaysOn,
			Dest:   GenReverbEffectsSend,
			Amount: 200,
		},
		// CC93 (chorus send) -> chorus effects send
		{
			Src1:   src(93, PaletteMIDI, DirectionPositive, PolarityUnipolar, CurveLinear),
			Src2:   sourceAlwaysOn,
			Dest:   GenChorusEffectsSend,
			Amount: 200,
		},
		// Pitch wheel -> pitch, scaled by pitch wheel sensitivity
		{
			Src1:   src(GeneralPitchWheel, PaletteGeneral, DirectionPositive, PolarityBipolar, CurveLinear),
			Src2:   src(GeneralPitchWheelSensitivity, PaletteGeneral, DirectionPositive, PolarityUnipolar, CurveLinear),
			Dest:   GenPitch,
			Amount: 12700,
		},
	}
}
