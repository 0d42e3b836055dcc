package fontbank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anthropics/wavesynth/soundfont"
)

func fontWithPreset(bank, program int, name string) *soundfont.Font {
	return &soundfont.Font{
		Name:    name,
		Presets: []soundfont.Preset{{Name: name, Bank: bank, Program: program}},
	}
}

func TestAddAndCount(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.Count())
	id := b.Add(fontWithPreset(0, 0, "a"))
	assert.Equal(t, 1, b.Count())
	f, ok := b.Font(id)
	assert.True(t, ok)
	assert.Equal(t, "a", f.Name)
}

func TestRemoveInvalidatesID(t *testing.T) {
	b := New()
	id := b.Add(fontWithPreset(0, 0, "a"))
	assert.NoError(t, b.Remove(id))
	_, ok := b.Font(id)
	assert.False(t, ok, "a removed font's ID must no longer resolve")
	assert.Equal(t, 0, b.Count())
}

func TestRemoveActuallyRemovesFromStack(t *testing.T) {
	b := New()
	id1 := b.Add(fontWithPreset(0, 0, "a"))
	b.Add(fontWithPreset(0, 1, "b"))
	assert.NoError(t, b.Remove(id1))
	assert.Equal(t, 1, b.Count(), "removing a font must shrink the stack, not just clear its slot")

	only, ok := b.Nth(0)
	assert.True(t, ok)
	f, _ := b.Font(only)
	assert.Equal(t, "b", f.Name)
}

func TestRemoveStaleIDAfterSlotReuseFails(t *testing.T) {
	b := New()
	id1 := b.Add(fontWithPreset(0, 0, "a"))
	assert.NoError(t, b.Remove(id1))
	b.Add(fontWithPreset(0, 0, "b")) // reuses id1's slot, new generation

	assert.Error(t, b.Remove(id1), "a stale generation must not be able to remove the new occupant of a reused slot")
}

func TestSetBankOffsetSaturates(t *testing.T) {
	b := New()
	id := b.Add(fontWithPreset(0, 5, "a"))
	assert.NoError(t, b.SetBankOffset(id, 10))

	// Requested bank 10 with offset 10 resolves to font-local bank 0.
	p, ok := b.Preset(id, 10, 5)
	assert.True(t, ok)
	assert.Equal(t, 5, p.Program)

	// Requested bank 3 (below the offset) saturates to font-local bank 0
	// rather than going negative.
	p2, ok2 := b.Preset(id, 3, 5)
	assert.True(t, ok2)
	assert.Same(t, p, p2)
}

func TestFindPresetMasksTopOfStackFirst(t *testing.T) {
	b := New()
	b.Add(fontWithPreset(0, 0, "bottom"))
	b.Add(fontWithPreset(0, 0, "top"))

	p, _, ok := b.FindPreset(0, 0)
	assert.True(t, ok)
	assert.Equal(t, "top", p.Name, "the most recently added font must mask earlier fonts with the same bank/program")
}

func TestFindPresetFallsThroughWhenTopLacksProgram(t *testing.T) {
	b := New()
	b.Add(fontWithPreset(0, 0, "bottom"))
	b.Add(fontWithPreset(0, 1, "top"))

	p, _, ok := b.FindPreset(0, 0)
	assert.True(t, ok)
	assert.Equal(t, "bottom", p.Name)
}

func TestFindPresetHonorsPerFontBankOffset(t *testing.T) {
	b := New()
	base := b.Add(fontWithPreset(0, 0, "base"))
	offsetFont := b.Add(fontWithPreset(0, 0, "offset"))
	assert.NoError(t, b.SetBankOffset(offsetFont, 16))

	// With offset 16, a request for bank 16 resolves to the top font's
	// local bank 0, so the top font serves it ahead of the base font.
	p, id, ok := b.FindPreset(16, 0)
	assert.True(t, ok)
	assert.Equal(t, "offset", p.Name)
	assert.Equal(t, offsetFont, id)
	assert.NotEqual(t, base, id)
}

func TestNthOrdersBottomToTop(t *testing.T) {
	b := New()
	b.Add(fontWithPreset(0, 0, "first"))
	b.Add(fontWithPreset(0, 0, "second"))

	id0, ok0 := b.Nth(0)
	assert.True(t, ok0)
	f0, _ := b.Font(id0)
	assert.Equal(t, "first", f0.Name)

	id1, ok1 := b.Nth(1)
	assert.True(t, ok1)
	f1, _ := b.Font(id1)
	assert.Equal(t, "second", f1.Name)

	_, ok2 := b.Nth(2)
	assert.False(t, ok2)
}
