package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anthropics/wavesynth/soundfont"
)

func sampleFixture() *soundfont.Sample {
	return &soundfont.Sample{Name: "test", Valid: true, SampleRate: 44100, Start: 0, End: 999}
}

func instrumentZone(low, high int, s *soundfont.Sample, set func(*soundfont.GeneratorList)) soundfont.Zone {
	gl := soundfont.NewDefaultGeneratorList()
	if set != nil {
		set(&gl)
	}
	return soundfont.Zone{KeyLow: low, KeyHigh: high, VelLow: 0, VelHigh: 127, Sample: s, Generators: gl}
}

func presetZone(inst *soundfont.Instrument, low, high int, set func(*soundfont.GeneratorList)) soundfont.Zone {
	gl := soundfont.NewDefaultGeneratorList()
	if set != nil {
		set(&gl)
	}
	return soundfont.Zone{KeyLow: low, KeyHigh: high, VelLow: 0, VelHigh: 127, Instrument: inst, Generators: gl}
}

func TestResolveSkipsOutOfRangeZones(t *testing.T) {
	s := sampleFixture()
	inst := &soundfont.Instrument{
		Name:  "inst",
		Zones: []soundfont.Zone{instrumentZone(60, 72, s, nil)},
	}
	preset := &soundfont.Preset{
		Name:  "preset",
		Zones: []soundfont.Zone{presetZone(inst, 0, 127, nil)},
	}

	assert.Empty(t, Resolve(preset, 40, 100), "a key outside the instrument zone's range must not produce a voice")
	assert.Len(t, Resolve(preset, 65, 100), 1)
}

func TestResolveSkipsInvalidSample(t *testing.T) {
	s := sampleFixture()
	s.Valid = false
	inst := &soundfont.Instrument{Zones: []soundfont.Zone{instrumentZone(0, 127, s, nil)}}
	preset := &soundfont.Preset{Zones: []soundfont.Zone{presetZone(inst, 0, 127, nil)}}

	assert.Empty(t, Resolve(preset, 60, 100))
}

func TestResolveCrossProductOfZones(t *testing.T) {
	s1, s2 := sampleFixture(), sampleFixture()
	inst := &soundfont.Instrument{
		Zones: []soundfont.Zone{
			instrumentZone(0, 127, s1, nil),
			instrumentZone(0, 127, s2, nil),
		},
	}
	preset := &soundfont.Preset{
		Zones: []soundfont.Zone{
			presetZone(inst, 0, 127, nil),
		},
	}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 2, "one voice per matching instrument zone under the matching preset zone")
}

func TestResolveInstrumentLayerIsAbsolute(t *testing.T) {
	s := sampleFixture()
	inst := &soundfont.Instrument{
		Zones: []soundfont.Zone{instrumentZone(0, 127, s, func(gl *soundfont.GeneratorList) {
			gl[soundfont.GenPan].Value = 250
			gl[soundfont.GenPan].Set = true
		})},
	}
	preset := &soundfont.Preset{Zones: []soundfont.Zone{presetZone(inst, 0, 127, nil)}}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 1)
	assert.Equal(t, 250.0, specs[0].Generators[soundfont.GenPan].Value)
}

func TestResolvePresetLayerIsAdditive(t *testing.T) {
	s := sampleFixture()
	inst := &soundfont.Instrument{
		Zones: []soundfont.Zone{instrumentZone(0, 127, s, func(gl *soundfont.GeneratorList) {
			gl[soundfont.GenPan].Value = 100
			gl[soundfont.GenPan].Set = true
		})},
	}
	preset := &soundfont.Preset{
		Zones: []soundfont.Zone{presetZone(inst, 0, 127, func(gl *soundfont.GeneratorList) {
			gl[soundfont.GenPan].Value = 50
			gl[soundfont.GenPan].Set = true
		})},
	}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 1)
	assert.Equal(t, 150.0, specs[0].Generators[soundfont.GenPan].Value, "preset-layer pan must add to the instrument-layer value")
}

func TestResolveNonAddableGeneratorIgnoredAtPresetLayer(t *testing.T) {
	s := sampleFixture()
	inst := &soundfont.Instrument{
		Zones: []soundfont.Zone{instrumentZone(0, 127, s, func(gl *soundfont.GeneratorList) {
			gl[soundfont.GenExclusiveClass].Value = 3
			gl[soundfont.GenExclusiveClass].Set = true
		})},
	}
	preset := &soundfont.Preset{
		Zones: []soundfont.Zone{presetZone(inst, 0, 127, func(gl *soundfont.GeneratorList) {
			gl[soundfont.GenExclusiveClass].Value = 7
			gl[soundfont.GenExclusiveClass].Set = true
		})},
	}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 1)
	assert.Equal(t, 3.0, specs[0].Generators[soundfont.GenExclusiveClass].Value, "a non-addable generator at the preset layer must be ignored entirely")
}

func TestResolveGlobalZoneAppliesToAllRegularZones(t *testing.T) {
	s1, s2 := sampleFixture(), sampleFixture()
	inst := &soundfont.Instrument{
		Global: &soundfont.Zone{Generators: func() soundfont.GeneratorList {
			gl := soundfont.NewDefaultGeneratorList()
			gl[soundfont.GenPan].Value = 42
			gl[soundfont.GenPan].Set = true
			return gl
		}()},
		Zones: []soundfont.Zone{
			instrumentZone(0, 60, s1, nil),
			instrumentZone(61, 127, s2, nil),
		},
	}
	preset := &soundfont.Preset{Zones: []soundfont.Zone{presetZone(inst, 0, 127, nil)}}

	for _, key := range []int{10, 100} {
		specs := Resolve(preset, key, 100)
		assert.Len(t, specs, 1)
		assert.Equal(t, 42.0, specs[0].Generators[soundfont.GenPan].Value)
	}
}

func TestMergeModulatorsIdenticalReplaceAtInstrumentLayer(t *testing.T) {
	s := sampleFixture()
	custom := soundfont.Modulator{
		Src1:   soundfont.ModSource{Index: soundfont.GeneralNoteOnVelocity, Palette: soundfont.PaletteGeneral, Direction: soundfont.DirectionNegative, Polarity: soundfont.PolarityUnipolar, Curve: soundfont.CurveConcave},
		Src2:   soundfont.ModSource{Palette: soundfont.PaletteGeneral, Polarity: soundfont.PolarityUnipolar},
		Dest:   soundfont.GenInitialAttenuation,
		Amount: 500,
	}
	iz := instrumentZone(0, 127, s, nil)
	iz.Modulators = []soundfont.Modulator{custom}
	inst := &soundfont.Instrument{Zones: []soundfont.Zone{iz}}
	preset := &soundfont.Preset{Zones: []soundfont.Zone{presetZone(inst, 0, 127, nil)}}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 1)

	found := 0
	for _, m := range specs[0].Modulators {
		if m.Dest == soundfont.GenInitialAttenuation && m.Identical(custom) {
			found++
			assert.Equal(t, 500.0, m.Amount, "an identical instrument-layer modulator must replace the default's amount")
		}
	}
	assert.Equal(t, 1, found, "the default velocity->attenuation modulator and the custom one are identical and must collapse to one entry")
}

func TestMergeModulatorsIdenticalAddAtPresetLayer(t *testing.T) {
	s := sampleFixture()
	inst := &soundfont.Instrument{Zones: []soundfont.Zone{instrumentZone(0, 127, s, nil)}}

	custom := soundfont.Modulator{
		Src1:   soundfont.ModSource{Index: soundfont.GeneralNoteOnVelocity, Palette: soundfont.PaletteGeneral, Direction: soundfont.DirectionNegative, Polarity: soundfont.PolarityUnipolar, Curve: soundfont.CurveConcave},
		Src2:   soundfont.ModSource{Palette: soundfont.PaletteGeneral, Polarity: soundfont.PolarityUnipolar},
		Dest:   soundfont.GenInitialAttenuation,
		Amount: 100,
	}
	pz := presetZone(inst, 0, 127, nil)
	pz.Modulators = []soundfont.Modulator{custom}
	preset := &soundfont.Preset{Zones: []soundfont.Zone{pz}}

	specs := Resolve(preset, 60, 100)
	assert.Len(t, specs, 1)

	for _, m := range specs[0].Modulators {
		if m.Dest == soundfont.GenInitialAttenuation && m.Identical(custom) {
			assert.Equal(t, 1060.0, m.Amount, "an identical preset-layer modulator must add to the existing amount (960 default + 100)")
		}
	}
}
