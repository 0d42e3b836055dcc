// Package loader is the SoundFont file reader: a RIFF/hydra binary
// reader that turns an io.Reader positioned at the start of an SF2/SF3
// file into the immutable soundfont.Font tree the engine resolves
// voices against.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/anthropics/wavesynth/soundfont"
)

const noiseFloorAmp = 1.0 / 32768.0

// Load reads a complete SF2 file and returns the resolved Font. A file whose
// ifil version is above 2.4 (which includes every SF3 file) is rejected with
// ErrUnsupportedVersion; a sample header carrying the SF3 compressed flag is
// rejected with ErrUnknownSampleType. Vorbis decompression is out of the
// core's scope.
func Load(r io.Reader) (*soundfont.Font, error) {
	var riff chunk
	if err := riff.expect(r, "RIFF"); err != nil {
		return nil, err
	}
	body := riff.reader()

	var form [4]byte
	if _, err := io.ReadFull(body, form[:]); err != nil {
		return nil, err
	}
	if string(form[:]) != "sfbk" {
		return nil, fmt.Errorf("%w: not a SoundFont RIFF form (%q)", ErrMalformedChunk, form)
	}

	var infoList, sdtaList, pdtaList chunk
	if err := infoList.expect(body, "LIST"); err != nil {
		return nil, fmt.Errorf("%w: INFO list", ErrMissingChunk)
	}
	version := readInfoVersion(infoList.data)
	if version.Major > 2 || (version.Major == 2 && version.Minor > 4) {
		return nil, fmt.Errorf("%w: ifil %d.%d", ErrUnsupportedVersion, version.Major, version.Minor)
	}

	if err := sdtaList.expect(body, "LIST"); err != nil {
		return nil, fmt.Errorf("%w: sdta list", ErrMissingChunk)
	}
	pcm, sm24, err := readSampleData(sdtaList.data)
	if err != nil {
		return nil, err
	}

	if err := pdtaList.expect(body, "LIST"); err != nil {
		return nil, fmt.Errorf("%w: pdta list", ErrMissingChunk)
	}
	h, err := readHydra(pdtaList.data)
	if err != nil {
		return nil, err
	}

	samples, err := buildSamples(h.samples, pcm, sm24)
	if err != nil {
		return nil, err
	}

	instruments, err := buildInstruments(h, samples)
	if err != nil {
		return nil, err
	}

	presets, err := buildPresets(h, instruments)
	if err != nil {
		return nil, err
	}

	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Bank != presets[j].Bank {
			return presets[i].Bank < presets[j].Bank
		}
		return presets[i].Program < presets[j].Program
	})

	return &soundfont.Font{Presets: presets}, nil
}

type version struct{ Major, Minor uint16 }

func readInfoVersion(listData []byte) version {
	r := newListReader(listData, "INFO")
	if r == nil {
		return version{}
	}
	for {
		var c chunk
		if err := c.parse(r); err != nil {
			return version{}
		}
		if string(c.id[:]) == "ifil" && len(c.data) >= 4 {
			return version{
				Major: binary.LittleEndian.Uint16(c.data[0:2]),
				Minor: binary.LittleEndian.Uint16(c.data[2:4]),
			}
		}
	}
}

func newListReader(listData []byte, want string) io.Reader {
	if len(listData) < 4 || string(listData[:4]) != want {
		return nil
	}
	return bytes.NewReader(listData[4:])
}

func readSampleData(listData []byte) (pcm []int16, sm24 []byte, err error) {
	r := newListReader(listData, "sdta")
	if r == nil {
		return nil, nil, fmt.Errorf("%w: sdta", ErrMissingChunk)
	}

	var smpl chunk
	if err := smpl.expect(r, "smpl"); err != nil {
		return nil, nil, fmt.Errorf("%w: smpl", ErrMissingChunk)
	}
	pcm = make([]int16, len(smpl.data)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(smpl.data[i*2:]))
	}

	var sm24Chunk chunk
	if err := sm24Chunk.parse(r); err == nil && string(sm24Chunk.id[:]) == "sm24" {
		sm24 = sm24Chunk.data
	}

	return pcm, sm24, nil
}

func buildSamples(raw []rawSampleHeader, pcm []int16, _ []byte) ([]*soundfont.Sample, error) {
	// The trailing terminal record is a required sentinel, not a real
	// sample; it is excluded from the returned slice.
	n := len(raw)
	if n > 0 {
		n--
	}
	out := make([]*soundfont.Sample, n)
	for i := 0; i < n; i++ {
		rs := raw[i]
		// The link kind comes from sfSampleType (1 mono, 2 right, 4 left,
		// 8 linked, plus 0x8000 for ROM); wSampleLink is only the index of
		// the paired sample.
		var link soundfont.SampleLink
		switch rs.SampleType & 0x0F {
		case 2:
			link = soundfont.LinkRight
		case 4:
			link = soundfont.LinkLeft
		case 8:
			link = soundfont.LinkLinked
		}
		if rs.SampleType&0x8000 != 0 {
			link += soundfont.LinkROMMono
		}
		valid := true

		if link.IsROM() {
			valid = false
		}
		if rs.SampleType&0x10 != 0 { // SF3 Ogg Vorbis compressed flag
			return nil, fmt.Errorf("%w: compressed sample %q", ErrUnknownSampleType, cstring(rs.Name[:]))
		}
		if int(rs.End) > len(pcm) || rs.End < rs.Start {
			valid = false
		}

		s := &soundfont.Sample{
			Name:            cstring(rs.Name[:]),
			OriginalKey:     int(rs.OriginalKey),
			PitchCorrection: int(rs.Correction),
			SampleRate:      int(rs.SampleRate),
			Start:           int(rs.Start),
			End:             int(rs.End),
			LoopStart:       int(rs.LoopStart),
			LoopEnd:         int(rs.LoopEnd),
			Link:            link,
			Data:            pcm,
			Valid:           valid,
			NoiseFloorAmp:   noiseFloorAmp,
		}
		out[i] = s
	}
	return out, nil
}

// zoneRange returns the [lo, hi) half-open range of pgen/pmod (or
// igen/imod) entries a bag index range covers, given the next bag's
// index as the exclusive end.
func zoneRange(lo, hi uint16) (int, int) { return int(lo), int(hi) }

func buildInstruments(h *hydra, samples []*soundfont.Sample) ([]*soundfont.Instrument, error) {
	n := len(h.insts)
	if n > 0 {
		n--
	}
	out := make([]*soundfont.Instrument, n)
	for i := 0; i < n; i++ {
		inst := &soundfont.Instrument{Name: cstring(h.insts[i].Name[:])}

		bagLo := h.insts[i].InstBagNdx
		bagHi := h.insts[i+1].InstBagNdx
		zones, err := buildZonesFromBags(h.ibag, h.igen, h.imod, bagLo, bagHi, func(z *soundfont.Zone, sampleID int) {
			if sampleID >= 0 && sampleID < len(samples) {
				z.Sample = samples[sampleID]
			}
		}, soundfont.GenSampleID)
		if err != nil {
			return nil, err
		}
		if len(zones) > 0 && zones[0].Sample == nil && isGlobal(zones[0]) {
			g := zones[0]
			inst.Global = &g
			zones = zones[1:]
		}
		inst.Zones = zones
		out[i] = inst
	}
	return out, nil
}

func buildPresets(h *hydra, instruments []*soundfont.Instrument) ([]soundfont.Preset, error) {
	n := len(h.presets)
	if n > 0 {
		n--
	}
	out := make([]soundfont.Preset, n)
	for i := 0; i < n; i++ {
		ph := h.presets[i]
		p := soundfont.Preset{
			Name:    cstring(ph.Name[:]),
			Bank:    int(ph.Bank),
			Program: int(ph.Preset),
		}

		bagLo := ph.PresetBagNdx
		bagHi := h.presets[i+1].PresetBagNdx
		zones, err := buildZonesFromBags(h.pbag, h.pgen, h.pmod, bagLo, bagHi, func(z *soundfont.Zone, instID int) {
			if instID >= 0 && instID < len(instruments) {
				z.Instrument = instruments[instID]
			}
		}, soundfont.GenInstrument)
		if err != nil {
			return nil, err
		}
		if len(zones) > 0 && zones[0].Instrument == nil && isGlobal(zones[0]) {
			g := zones[0]
			p.Global = &g
			zones = zones[1:]
		}
		p.Zones = zones
		out[i] = p
	}
	return out, nil
}

// isGlobal reports whether a zone resolved to no instrument or sample;
// buildZonesFromBags has already attempted to resolve the link, so a zone
// whose link generator is absent or points out of range counts as global.
func isGlobal(z soundfont.Zone) bool { return z.Instrument == nil && z.Sample == nil }

func buildZonesFromBags(bags []rawBag, gens []rawGenerator, mods []rawModulator, bagLo, bagHi uint16, link func(*soundfont.Zone, int), linkGen soundfont.GeneratorKind) ([]soundfont.Zone, error) {
	if int(bagHi) > len(bags) || bagLo > bagHi {
		return nil, fmt.Errorf("%w: bag index out of range", ErrMalformedChunk)
	}
	zones := make([]soundfont.Zone, 0, bagHi-bagLo)
	for b := bagLo; b < bagHi; b++ {
		bag := bags[b]
		var nextGen, nextMod uint16
		if int(b+1) < len(bags) {
			nextGen = bags[b+1].GenNdx
			nextMod = bags[b+1].ModNdx
		}
		genLo, genHi := zoneRange(bag.GenNdx, nextGen)
		modLo, modHi := zoneRange(bag.ModNdx, nextMod)

		z := soundfont.Zone{KeyLow: 0, KeyHigh: 127, VelLow: 0, VelHigh: 127}
		z.Generators = soundfont.NewDefaultGeneratorList()

		linkID := -1
		if genHi > len(gens) || genLo > genHi {
			return nil, fmt.Errorf("%w: generator index out of range", ErrMalformedChunk)
		}
		for _, g := range gens[genLo:genHi] {
			kind := soundfont.GeneratorKind(g.Oper)
			if kind >= soundfont.GenCount {
				continue // unknown/reserved generator, ignored per spec
			}
			amount := float64(g.Amount)
			z.Generators[kind] = soundfont.GenEntry{Value: amount, Set: true}
			switch kind {
			case soundfont.GenKeyRange:
				lo, hi := soundfont.KeyRange(amount)
				z.KeyLow, z.KeyHigh = lo, hi
			case soundfont.GenVelRange:
				lo, hi := soundfont.KeyRange(amount)
				z.VelLow, z.VelHigh = lo, hi
			}
			if kind == linkGen {
				linkID = int(uint16(int16(amount)))
			}
		}

		if modHi > len(mods) || modLo > modHi {
			return nil, fmt.Errorf("%w: modulator index out of range", ErrMalformedChunk)
		}
		z.Modulators = decodeModulators(mods[modLo:modHi])

		if linkID >= 0 {
			link(&z, linkID)
		}

		zones = append(zones, z)
	}
	return zones, nil
}

func decodeModulators(raw []rawModulator) []soundfont.Modulator {
	out := make([]soundfont.Modulator, 0, len(raw))
	for _, m := range raw {
		out = append(out, soundfont.Modulator{
			Src1:      decodeSource(m.SrcOper),
			Src2:      decodeSource(m.AmtSrcOper),
			Dest:      soundfont.GeneratorKind(m.DestOper),
			Amount:    float64(m.Amount),
			Transform: soundfont.ModTransform(m.Transform),
		})
	}
	return foldIdenticalModulators(out)
}

// foldIdenticalModulators applies the "identical modulator" merge rule
// in instrument context, at load time, within a
// single zone's modulator list: a later modulator identical to an
// earlier one overrides it rather than appending a duplicate route.
func foldIdenticalModulators(mods []soundfont.Modulator) []soundfont.Modulator {
	out := make([]soundfont.Modulator, 0, len(mods))
	for _, m := range mods {
		replaced := false
		for i := range out {
			if out[i].Identical(m) {
				out[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, m)
		}
	}
	return out
}

func decodeSource(raw uint16) soundfont.ModSource {
	index := int(raw & 0x7F)
	palette := soundfont.PaletteGeneral
	if raw&0x0080 != 0 {
		palette = soundfont.PaletteMIDI
	}
	direction := soundfont.DirectionPositive
	if raw&0x0100 != 0 {
		direction = soundfont.DirectionNegative
	}
	polarity := soundfont.PolarityUnipolar
	if raw&0x0200 != 0 {
		polarity = soundfont.PolarityBipolar
	}
	var curve soundfont.ModCurve
	switch (raw >> 10) & 0x3F {
	case 1:
		curve = soundfont.CurveConcave
	case 2:
		curve = soundfont.CurveConvex
	case 3:
		curve = soundfont.CurveSwitch
	default:
		curve = soundfont.CurveLinear
	}
	return soundfont.ModSource{Index: index, Palette: palette, Direction: direction, Polarity: polarity, Curve: curve}
}
