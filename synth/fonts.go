package synth

import (
	"github.com/anthropics/wavesynth/fontbank"
	"github.com/anthropics/wavesynth/soundfont"
)

// AddFont pushes a loaded SoundFont onto the bank stack. Fonts loaded
// later mask identical bank/program combinations in fonts loaded
// earlier.
func (s *Synth) AddFont(font *soundfont.Font) fontbank.FontID {
	return s.Bank.Add(font)
}

// RemoveFont removes a previously added font from the stack. Channels
// currently pointing at a preset from the removed font keep playing their already-triggered voices; the next
// program change re-resolves against whatever remains on the stack.
func (s *Synth) RemoveFont(id fontbank.FontID) error {
	return s.Bank.Remove(id)
}

// FontCount reports how many fonts are currently on the stack.
func (s *Synth) FontCount() int { return s.Bank.Count() }

// NthFont returns the FontID at stack position i, 0 being the first
// added.
func (s *Synth) NthFont(i int) (fontbank.FontID, bool) { return s.Bank.Nth(i) }

// SetBankOffset installs a saturating bank-number offset for one font:
// a request below the offset resolves as bank 0 rather than wrapping.
func (s *Synth) SetBankOffset(id fontbank.FontID, offset uint32) error {
	return s.Bank.SetBankOffset(id, offset)
}

// SelectBank sets a channel's current bank without resolving a preset;
// the next program change (or a call to SelectProgram) performs the
// actual lookup.
func (s *Synth) SelectBank(channelIdx, bank int) error {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	s.channels[channelIdx].bank = bank
	return nil
}

// SelectProgram resolves and installs a preset directly from a specific
// font, bypassing the stack's top-down mask search. A font/bank/program
// combination that does not resolve leaves the channel's current preset
// untouched and reports PresetNotFound.
func (s *Synth) SelectProgram(channelIdx int, id fontbank.FontID, bank, program int) error {
	if channelIdx < 0 || channelIdx >= len(s.channels) {
		return validationErr(ErrChannelOutOfRange, "channel", channelIdx)
	}
	p, ok := s.Bank.Preset(id, bank, program)
	if !ok {
		return newErr(ErrPresetNotFound, "no preset bank=%d program=%d in font %v", bank, program, id)
	}
	c := &s.channels[channelIdx]
	c.preset = p
	c.bank = bank
	c.program = program
	c.fontID = id
	c.fontSet = true
	return nil
}

// Program reports the channel's current bank/program selection and,
// when the preset was pinned to a specific font via SelectProgram,
// that font's ID.
func (s *Synth) Program(channelIdx int) (fontbank.FontID, bool, int, int) {
	c := &s.channels[channelIdx]
	return c.fontID, c.fontSet, c.bank, c.program
}
