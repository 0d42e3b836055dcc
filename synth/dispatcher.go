package synth

import (
	"github.com/anthropics/wavesynth/internal/gen"
	"github.com/anthropics/wavesynth/voice"
)

// SendEvent validates and applies one MidiEvent. On validation failure,
// engine state is left bit-identical to before the call and the returned
// error identifies the failed check.
func (s *Synth) SendEvent(e MidiEvent) error {
	if err := e.check(len(s.channels)); err != nil {
		return err
	}

	switch e.Kind {
	case EventNoteOn:
		s.noteOn(e.Channel, e.Key, e.Velocity)
	case EventNoteOff:
		s.noteOff(e.Channel, e.Key)
	case EventControlChange:
		s.controlChange(e.Channel, e.Ctrl, e.Value)
	case EventAllNotesOff:
		s.allNotesOff(e.Channel)
	case EventAllSoundOff:
		s.allSoundOff(e.Channel)
	case EventPitchBend:
		s.channels[e.Channel].setPitchBend(e.Value)
	case EventProgramChange:
		s.programChange(e.Channel, e.Program)
	case EventChannelPressure:
		s.channels[e.Channel].setChannelPressure(e.Value)
	case EventPolyphonicKeyPressure:
		s.channels[e.Channel].setPolyPressure(e.Key, e.Value)
	case EventSystemReset:
		s.systemReset()
	}
	return nil
}

// noteOn resolves the channel's current preset into voice specs and
// triggers one pool voice per spec. A channel with no preset assigned
// (PresetNotFound on the last program change, or never selected)
// produces no voices — not an error.
func (s *Synth) noteOn(channelIdx, key, vel int) {
	c := &s.channels[channelIdx]
	if c.preset == nil {
		return
	}
	specs := gen.Resolve(c.preset, key, vel)
	var noteID uint64
	for _, spec := range specs {
		idx, ok := s.pool.allocate(true)
		if !ok {
			continue // voice-steal with empty usable pool: drop the note
		}
		id, seq := s.pool.nextIDs()
		if noteID == 0 {
			// Every voice of this note shares its first voice's noteID.
			noteID = id
		}
		s.pool.voices[idx].NoteOn(spec, channelIdx, key, vel, noteID, seq, s.sampleRate, s.blockRate, s.minNoteBlocks)
	}
}

// noteOff releases every voice on this channel playing this key.
func (s *Synth) noteOff(channelIdx, key int) {
	c := &s.channels[channelIdx]
	held := c.sustainHeld()
	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Channel == channelIdx && v.Key == key && (v.Status == voice.On) {
			v.ReleaseKey(held)
		}
	}
}

func (s *Synth) controlChange(channelIdx, ctrl, value int) {
	c := &s.channels[channelIdx]
	sustainReleased := c.setCC(ctrl, value)
	if sustainReleased {
		s.damp(channelIdx)
	}
	switch ctrl {
	case 120:
		s.allSoundOff(channelIdx)
	case 123:
		s.allNotesOff(channelIdx)
	case 121:
		s.resetChannelControllers(channelIdx)
	}
}

// damp releases every Sustained voice on a channel once the pedal
// lifts.
func (s *Synth) damp(channelIdx int) {
	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Channel == channelIdx && v.Status == voice.Sustained {
			v.SustainOff()
		}
	}
}

// allNotesOff processes a note-off for every voice on the channel,
// honoring the sustain pedal exactly as an explicit per-key note-off
// would.
func (s *Synth) allNotesOff(channelIdx int) {
	c := &s.channels[channelIdx]
	held := c.sustainHeld()
	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Channel == channelIdx && v.Status == voice.On {
			v.ReleaseKey(held)
		}
	}
}

// allSoundOff forces every voice on the channel to Off immediately,
// bypassing release.
func (s *Synth) allSoundOff(channelIdx int) {
	for i := range s.pool.voices {
		v := &s.pool.voices[i]
		if v.Channel == channelIdx && v.Status != voice.Clean {
			v.Kill()
		}
	}
}

// programChange resolves and installs a new preset for the channel.
// Drum channels always resolve against bank 128; a preset-not-found is
// logged and the previous preset retained, not an error.
func (s *Synth) programChange(channelIdx, program int) {
	c := &s.channels[channelIdx]
	c.program = program
	bank := c.bank
	if c.isDrum {
		bank = 128
	}
	if p, _, ok := s.Bank.FindPreset(bank, program); ok {
		c.preset = p
		c.bank = bank
		c.fontSet = false
	} else {
		s.logf("no preset for bank=%d program=%d on channel %d; retaining previous preset", bank, program, channelIdx)
	}
}

// resetChannelControllers implements CC121 (reset all controllers): CC
// values return to power-on defaults but bank/program/preset are left
// alone (unlike systemReset, which also reassigns the default preset).
func (s *Synth) resetChannelControllers(channelIdx int) {
	c := &s.channels[channelIdx]
	preset, bank, program := c.preset, c.bank, c.program
	fontID, fontSet := c.fontID, c.fontSet
	c.reset(c.isDrum)
	c.preset, c.bank, c.program = preset, bank, program
	c.fontID, c.fontSet = fontID, fontSet
}

// systemReset implements MIDI System Reset: every voice is
// force-killed, every channel reinitializes its controllers and
// reassigns preset (0, 0) if available, and the shared effects are
// cleared.
func (s *Synth) systemReset() {
	for i := range s.pool.voices {
		s.pool.voices[i].Kill()
	}
	for i := range s.channels {
		c := &s.channels[i]
		c.reset(c.isDrum)
		bank := c.bank
		if p, _, ok := s.Bank.FindPreset(bank, 0); ok {
			c.preset = p
			c.program = 0
			c.fontSet = false
		} else {
			c.preset = nil
		}
	}
	s.reverb.Reset()
	s.chorus.Reset()
}
