// Package synth ties the engine together: channel state, the voice pool
// and its stealing heuristic, MIDI event dispatch, and the fixed-block
// audio mix loop.
package synth

import (
	"github.com/anthropics/wavesynth/fontbank"
	"github.com/anthropics/wavesynth/soundfont"
	"github.com/anthropics/wavesynth/tuning"
	"github.com/anthropics/wavesynth/voice"
)

// defaultInterp is the interpolation method every channel starts with.
// Four-point cubic is the conventional default quality/cost point;
// hosts that want cheaper or cleaner resampling select per channel via
// Synth.SetInterpMethod.
const defaultInterp = voice.InterpCubic4

// FontUnassigned is an exported sentinel for "no font id". The engine does
// not use it: a channel tracks whether a font was explicitly selected with
// its fontSet flag, and without one it resolves presets through
// Bank.FindPreset.
const FontUnassigned = 0xFFFFFFFF

// channel is one MIDI channel's persistent state.
type channel struct {
	id int

	bank    int
	program int
	fontSet bool
	fontID  fontbank.FontID
	preset  *soundfont.Preset

	cc                  [128]float64 // 0..1 normalized, for modulator Sources
	ccRaw               [128]int     // raw 7-bit value, for RPN/NRPN bookkeeping
	pitchBend           int          // 14-bit, center 0x2000
	pitchWheelSemitones float64

	channelPressure float64
	polyPressure    [128]float64

	genOverrides [128]float32

	interp voice.Interp

	tuning *tuning.Table

	rpnMSB, rpnLSB   int
	nrpnMSB, nrpnLSB int
	rpnActive        bool // true once RPN MSB/LSB selects a known parameter

	isDrum bool
}

func newChannel(id int, drumsActive bool) *channel {
	c := &channel{id: id}
	c.reset(drumsActive && id == 9)
	return c
}

// reset re-initializes controllers to their power-on defaults.
func (c *channel) reset(isDrum bool) {
	for i := range c.cc {
		c.cc[i] = 0
		c.ccRaw[i] = 0
	}
	c.cc[7] = 1 // channel volume defaults to maximum
	c.ccRaw[7] = 127
	c.cc[11] = 1 // expression defaults to maximum
	c.ccRaw[11] = 127
	c.pitchBend = 0x2000
	c.pitchWheelSemitones = 2
	c.channelPressure = 0
	for i := range c.polyPressure {
		c.polyPressure[i] = 0
	}
	c.rpnMSB, c.rpnLSB = 0x7F, 0x7F
	c.nrpnMSB, c.nrpnLSB = 0x7F, 0x7F
	c.rpnActive = false
	c.interp = defaultInterp
	for i := range c.genOverrides {
		c.genOverrides[i] = 0
	}
	c.isDrum = isDrum
	if isDrum {
		c.bank = 128
	} else {
		c.bank = 0
	}
	c.program = 0
	c.fontSet = false
	c.fontID = fontbank.FontID{}
}

// sustainHeld reports whether CC64 (sustain pedal) is currently
// depressed (>= 64 counts as "on").
func (c *channel) sustainHeld() bool { return c.ccRaw[64] >= 64 }

// setCC records a raw 7-bit controller value and its normalized [0,1]
// form, and applies any reserved side effects.
func (c *channel) setCC(ctrl, value int) (sustainReleased bool) {
	wasHeld := c.ctrl64Held()
	c.ccRaw[ctrl] = value
	c.cc[ctrl] = float64(value) / 127.0

	switch ctrl {
	case 0: // Bank select MSB
		c.bank = (c.bank &^ 0x3F80) | (value << 7)
	case 32: // Bank select LSB
		c.bank = (c.bank &^ 0x7F) | value
	case 6: // Data entry MSB
		c.applyDataEntry(value, true)
	case 38: // Data entry LSB
		c.applyDataEntry(value, false)
	case 96, 97: // Data increment/decrement
		// Not modeled beyond acknowledging the controller; no RPN in this
		// engine currently needs increment/decrement semantics.
	case 98: // NRPN LSB
		c.nrpnLSB = value
		c.rpnActive = false
	case 99: // NRPN MSB
		c.nrpnMSB = value
		c.rpnActive = false
	case 100: // RPN LSB
		c.rpnLSB = value
		c.rpnActive = true
	case 101: // RPN MSB
		c.rpnMSB = value
		c.rpnActive = true
	case 64:
		if wasHeld && value < 64 {
			sustainReleased = true
		}
	}
	return sustainReleased
}

func (c *channel) ctrl64Held() bool { return c.ccRaw[64] >= 64 }

// applyDataEntry implements the RPN 0 (pitch wheel sensitivity) parse
// state machine; other RPNs and all NRPNs are acknowledged but not acted
// on, since this engine exposes no further RPN-addressable parameters.
func (c *channel) applyDataEntry(value int, msb bool) {
	if !c.rpnActive || c.rpnMSB != 0 || c.rpnLSB != 0 {
		return
	}
	if msb {
		c.pitchWheelSemitones = float64(value)
	}
	// LSB (cents) is accepted but this engine only models whole-semitone
	// pitch bend sensitivity.
}

func (c *channel) setPitchBend(value int) { c.pitchBend = value }

func (c *channel) pitchBend01() float64 {
	return float64(c.pitchBend-0x2000) / 8192.0
}

func (c *channel) setChannelPressure(value int) { c.channelPressure = float64(value) / 127.0 }

func (c *channel) setPolyPressure(key, value int) { c.polyPressure[key] = float64(value) / 127.0 }
