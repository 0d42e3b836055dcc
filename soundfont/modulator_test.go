package soundfont

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModSourceMapLinearUnipolar(t *testing.T) {
	s := ModSource{Polarity: PolarityUnipolar, Curve: CurveLinear, Direction: DirectionPositive}
	assert.InDelta(t, 0.0, s.Map(0), 1e-9)
	assert.InDelta(t, 1.0, s.Map(1), 1e-9)
	assert.InDelta(t, 0.5, s.Map(0.5), 1e-9)
}

func TestModSourceMapNegativeDirectionInverts(t *testing.T) {
	s := ModSource{Polarity: PolarityUnipolar, Curve: CurveLinear, Direction: DirectionNegative}
	assert.InDelta(t, 1.0, s.Map(0), 1e-9)
	assert.InDelta(t, 0.0, s.Map(1), 1e-9)
}

func TestModSourceMapBipolarDoublesRange(t *testing.T) {
	s := ModSource{Polarity: PolarityBipolar, Curve: CurveLinear, Direction: DirectionPositive}
	assert.InDelta(t, -1.0, s.Map(0), 1e-9)
	assert.InDelta(t, 0.0, s.Map(0.5), 1e-9)
	assert.InDelta(t, 1.0, s.Map(1), 1e-9)
}

func TestModSourceMapSwitchCurve(t *testing.T) {
	s := ModSource{Polarity: PolarityUnipolar, Curve: CurveSwitch, Direction: DirectionPositive}
	assert.Equal(t, 0.0, s.Map(0.49))
	assert.Equal(t, 1.0, s.Map(0.5))
	assert.Equal(t, 1.0, s.Map(1.0))
}

func TestModSourceMapClampsOutOfRangeInput(t *testing.T) {
	s := ModSource{Polarity: PolarityUnipolar, Curve: CurveLinear, Direction: DirectionPositive}
	assert.InDelta(t, 0.0, s.Map(-5), 1e-9)
	assert.InDelta(t, 1.0, s.Map(5), 1e-9)
}

func TestModSourceMapConcaveConvexMonotonic(t *testing.T) {
	concave := ModSource{Polarity: PolarityUnipolar, Curve: CurveConcave, Direction: DirectionPositive}
	convex := ModSource{Polarity: PolarityUnipolar, Curve: CurveConvex, Direction: DirectionPositive}
	assert.InDelta(t, 0.0, concave.Map(0), 1e-9)
	assert.InDelta(t, 1.0, concave.Map(1), 1e-9)
	assert.InDelta(t, 0.0, convex.Map(0), 1e-9)
	assert.InDelta(t, 1.0, convex.Map(1), 1e-9)
}

func TestModulatorIdenticalIgnoresAmount(t *testing.T) {
	a := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenPan, Amount: 100}
	b := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenPan, Amount: 999}
	assert.True(t, a.Identical(b))
}

func TestModulatorIdenticalDiffersOnDestination(t *testing.T) {
	a := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenPan, Amount: 100}
	b := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenChorusEffectsSend, Amount: 100}
	assert.False(t, a.Identical(b))
}

func TestModulatorIdenticalDiffersOnTransform(t *testing.T) {
	a := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenPan, Transform: TransformLinear}
	b := Modulator{Src1: sourceAlwaysOn, Src2: sourceAlwaysOn, Dest: GenPan, Transform: TransformAbsoluteValue}
	assert.False(t, a.Identical(b))
}

func TestDefaultModulatorsShapeAndDestinations(t *testing.T) {
	mods := DefaultModulators()
	// Nine spec-listed defaults plus the pitch-wheel route to the internal
	// pitch destination.
	assert.Len(t, mods, 10)

	dests := make(map[GeneratorKind]int)
	for _, m := range mods {
		dests[m.Dest]++
	}
	assert.Equal(t, 3, dests[GenInitialAttenuation], "velocity, channel volume and expression all target attenuation")
	assert.Equal(t, 1, dests[GenPitch], "exactly one default modulator targets the internal pitch destination")
	assert.Equal(t, 1, dests[GenPan])
}

func TestDefaultModulatorsFreshSliceEachCall(t *testing.T) {
	a := DefaultModulators()
	b := DefaultModulators()
	a[0].Amount = -1
	assert.NotEqual(t, a[0].Amount, b[0].Amount, "callers must not share backing storage across calls")
}

func TestPitchWheelModulatorSensitivityNormalization(t *testing.T) {
	var pw Modulator
	for _, m := range DefaultModulators() {
		if m.Dest == GenPitch {
			pw = m
		}
	}
	// At full bend (+1 bipolar) and full RPN0 sensitivity (127 semitones,
	// mapped to unipolar 1), the modulator must yield Amount cents exactly
	// (12700 cents = 127 semitones), matching the MIDI convention that RPN0
	// MSB directly names the number of semitones of bend range.
	bend := pw.Src1.Map(1.0)
	sens := pw.Src2.Map(127.0 / 127.0)
	assert.InDelta(t, 1.0, bend, 1e-9)
	assert.InDelta(t, 1.0, sens, 1e-9)
	assert.InDelta(t, 12700.0, bend*sens*pw.Amount, 1e-6)

	// At the default 2-semitone sensitivity, full bend must yield exactly
	// 200 cents.
	sensDefault := pw.Src2.Map(2.0 / 127.0)
	assert.InDelta(t, 200.0, bend*sensDefault*pw.Amount, 1e-6)
}
