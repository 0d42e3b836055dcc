// Package gen implements the note-on resolution path: turning a
// (preset, key, velocity) triple into the list of voice specs
// (one per matching preset-zone × instrument-zone pair), each carrying a
// fully resolved generator vector and modulator list.
package gen

import "github.com/anthropics/wavesynth/soundfont"

// VoiceSpec is everything a newly triggered voice needs from the
// SoundFont model: which sample to play and the generator/modulator
// state resolved for this exact note.
type VoiceSpec struct {
	Sample     *soundfont.Sample
	Generators soundfont.GeneratorList
	Modulators []soundfont.Modulator
}

// Resolve turns a note-on into its voice specs: the cross product of
// matching preset zones and instrument zones becomes one VoiceSpec each,
// with generators applied instrument-layer-then-preset-layer (additive
// except for non-addable kinds) and modulators merged default, then
// instrument, then preset.
func Resolve(preset *soundfont.Preset, key, vel int) []VoiceSpec {
	var specs []VoiceSpec

	for pi := range preset.Zones {
		pz := &preset.Zones[pi]
		if !pz.InRange(key, vel) || pz.Instrument == nil {
			continue
		}
		inst := pz.Instrument

		for ii := range inst.Zones {
			iz := &inst.Zones[ii]
			if !iz.InRange(key, vel) || iz.Sample == nil {
				continue
			}
			if !iz.Sample.Valid {
				continue
			}

			spec := VoiceSpec{Sample: iz.Sample}
			spec.Generators = soundfont.NewDefaultGeneratorList()

			// Instrument layer: global zone then regular zone, absolute.
			if inst.Global != nil {
				applyAbsolute(&spec.Generators, &inst.Global.Generators)
			}
			applyAbsolute(&spec.Generators, &iz.Generators)

			// Preset layer: global zone then regular zone, additive
			// (except non-addable kinds).
			if preset.Global != nil {
				applyAdditive(&spec.Generators, &preset.Global.Generators)
			}
			applyAdditive(&spec.Generators, &pz.Generators)

			spec.Modulators = mergeModulators(inst.Global, iz, preset.Global, pz)

			specs = append(specs, spec)
		}
	}

	return specs
}

// applyAbsolute copies every explicitly-Set generator from src into dst,
// replacing whatever default or previous value was there.
func applyAbsolute(dst *soundfont.GeneratorList, src *soundfont.GeneratorList) {
	for k := soundfont.GeneratorKind(0); k < soundfont.GenCount; k++ {
		if src[k].Set {
			dst[k].Value = src[k].Value
			dst[k].Set = true
		}
	}
}

// applyAdditive adds every explicitly-Set, addable generator from src
// onto dst; non-addable kinds (KeyRange, VelRange, SampleID, Instrument,
// OverridingRootKey, ScaleTuning, ExclusiveClass, SampleModes, and the
// sample-offset generators) are ignored at the preset layer
// entirely.
func applyAdditive(dst *soundfont.GeneratorList, src *soundfont.GeneratorList) {
	for k := soundfont.GeneratorKind(0); k < soundfont.GenCount; k++ {
		if src[k].Set && k.IsAddable() {
			dst[k].Value += src[k].Value
			dst[k].Set = true
		}
	}
}

// mergeModulators merges the modulator layers: defaults, then instrument
// (global then regular) with identical-replaces semantics, then preset
// (global then regular) with identical-adds semantics.
func mergeModulators(instGlobal *soundfont.Zone, instZone *soundfont.Zone, presetGlobal *soundfont.Zone, presetZone *soundfont.Zone) []soundfont.Modulator {
	mods := soundfont.DefaultModulators()

	applyReplace := func(list []soundfont.Modulator) {
		for _, m := range list {
			replaced := false
			for i := range mods {
				if mods[i].Identical(m) {
					mods[i] = m
					replaced = true
					break
				}
			}
			if !replaced {
				mods = append(mods, m)
			}
		}
	}
	applyAdd := func(list []soundfont.Modulator) {
		for _, m := range list {
			added := false
			for i := range mods {
				if mods[i].Identical(m) {
					mods[i].Amount += m.Amount
					added = true
					break
				}
			}
			if !added {
				mods = append(mods, m)
			}
		}
	}

	if instGlobal != nil {
		applyReplace(instGlobal.Modulators)
	}
	applyReplace(instZone.Modulators)

	if presetGlobal != nil {
		applyAdd(presetGlobal.Modulators)
	}
	applyAdd(presetZone.Modulators)

	return mods
}
