// Package fontbank implements the generational arena of loaded
// SoundFonts, the most-recently-added-first stack that governs preset
// masking, and the per-font bank-offset map.
package fontbank

import (
	"fmt"

	"github.com/anthropics/wavesynth/soundfont"
)

// FontID identifies a loaded font. It carries a generation counter so
// that a lookup against a removed font's ID fails instead of aliasing a
// reused slot.
type FontID struct {
	index      int
	generation uint32
}

type slot struct {
	font       *soundfont.Font
	generation uint32
	occupied   bool
	bankOffset uint32
}

// Bank is a stack of loaded SoundFonts plus their bank offsets. It is not
// safe for concurrent use, matching the rest of the engine.
type Bank struct {
	slots []slot
	// stack holds slot indices, most-recently-added last; find_preset
	// walks it top-down (from the end).
	stack []int
}

// New returns an empty font bank.
func New() *Bank { return &Bank{} }

// Add pushes a font on top of the stack and returns its ID.
func (b *Bank) Add(f *soundfont.Font) FontID {
	for i := range b.slots {
		if !b.slots[i].occupied {
			b.slots[i] = slot{font: f, generation: b.slots[i].generation + 1, occupied: true}
			b.stack = append(b.stack, i)
			return FontID{index: i, generation: b.slots[i].generation}
		}
	}
	b.slots = append(b.slots, slot{font: f, generation: 1, occupied: true})
	idx := len(b.slots) - 1
	b.stack = append(b.stack, idx)
	return FontID{index: idx, generation: 1}
}

// Remove removes a font from the arena, the stack, and its bank offset.
// It returns an error if the ID is stale or unknown.
func (b *Bank) Remove(id FontID) error {
	if !b.valid(id) {
		return fmt.Errorf("fontbank: unknown font id")
	}
	b.slots[id.index] = slot{generation: b.slots[id.index].generation}
	for i, idx := range b.stack {
		if idx == id.index {
			b.stack = append(b.stack[:i], b.stack[i+1:]...)
			break
		}
	}
	return nil
}

func (b *Bank) valid(id FontID) bool {
	return id.index >= 0 && id.index < len(b.slots) && b.slots[id.index].occupied && b.slots[id.index].generation == id.generation
}

// Font returns the font behind an ID, if it is still present.
func (b *Bank) Font(id FontID) (*soundfont.Font, bool) {
	if !b.valid(id) {
		return nil, false
	}
	return b.slots[id.index].font, true
}

// Count returns the number of fonts currently loaded.
func (b *Bank) Count() int { return len(b.stack) }

// Nth returns the font ID at stack position i (0 = bottom of the stack,
// i.e. first added), for host introspection.
func (b *Bank) Nth(i int) (FontID, bool) {
	if i < 0 || i >= len(b.stack) {
		return FontID{}, false
	}
	idx := b.stack[i]
	return FontID{index: idx, generation: b.slots[idx].generation}, true
}

// SetBankOffset installs an offset subtracted from requested bank
// numbers when resolving presets in this font (with saturation: a
// request below the offset is treated as bank 0).
func (b *Bank) SetBankOffset(id FontID, offset uint32) error {
	if !b.valid(id) {
		return fmt.Errorf("fontbank: unknown font id")
	}
	b.slots[id.index].bankOffset = offset
	return nil
}

// BankOffset returns the currently installed bank offset for a font.
func (b *Bank) BankOffset(id FontID) (uint32, error) {
	if !b.valid(id) {
		return 0, fmt.Errorf("fontbank: unknown font id")
	}
	return b.slots[id.index].bankOffset, nil
}

func applyOffset(bank int, offset uint32) int {
	b := bank - int(offset)
	if b < 0 {
		return 0
	}
	return b
}

// Preset looks up a preset in one specific font, applying that font's
// bank offset (saturating) to the requested bank.
func (b *Bank) Preset(id FontID, bank, program int) (*soundfont.Preset, bool) {
	if !b.valid(id) {
		return nil, false
	}
	s := b.slots[id.index]
	return s.font.Preset(applyOffset(bank, s.bankOffset), program)
}

// FindPreset walks the stack top-down (most-recently-added first) and
// returns the first font whose effective bank (after its offset) and
// program match — implementing preset masking.
func (b *Bank) FindPreset(bank, program int) (*soundfont.Preset, FontID, bool) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		idx := b.stack[i]
		s := b.slots[idx]
		if p, ok := s.font.Preset(applyOffset(bank, s.bankOffset), program); ok {
			return p, FontID{index: idx, generation: s.generation}, true
		}
	}
	return nil, FontID{}, false
}
