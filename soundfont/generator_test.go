package soundfont

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValueKnownGenerators(t *testing.T) {
	assert.Equal(t, 13500.0, GenInitialFilterFc.DefaultValue())
	assert.Equal(t, -12000.0, GenDelayVolEnv.DefaultValue())
	assert.Equal(t, 100.0, GenScaleTuning.DefaultValue())
	assert.Equal(t, -1.0, GenOverridingRootKey.DefaultValue())
}

func TestDefaultValueUnlistedGeneratorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, GenPan.DefaultValue())
	assert.Equal(t, 0.0, GenChorusEffectsSend.DefaultValue())
}

func TestIsAddableNonAddableGenerators(t *testing.T) {
	for _, k := range []GeneratorKind{
		GenKeyRange, GenVelRange, GenSampleID, GenInstrument,
		GenOverridingRootKey, GenScaleTuning, GenExclusiveClass,
		GenSampleModes, GenStartAddrsOffset, GenEndAddrsOffset,
	} {
		assert.False(t, k.IsAddable(), "generator %v should be non-addable", k)
	}
}

func TestIsAddableOrdinaryGeneratorsAreAddable(t *testing.T) {
	for _, k := range []GeneratorKind{
		GenInitialAttenuation, GenPan, GenCoarseTune, GenFineTune,
		GenAttackVolEnv, GenReleaseVolEnv,
	} {
		assert.True(t, k.IsAddable(), "generator %v should be addable", k)
	}
}

func TestNewDefaultGeneratorListAppliesDefaultsUnset(t *testing.T) {
	gl := NewDefaultGeneratorList()
	assert.Equal(t, 13500.0, gl[GenInitialFilterFc].Value)
	assert.False(t, gl[GenInitialFilterFc].Set)
	assert.Equal(t, 0.0, gl[GenPan].Value)
}

func TestGeneratorListTotalIncludesModSum(t *testing.T) {
	var gl GeneratorList
	gl[GenInitialFilterFc].Value = 8000
	gl[GenInitialFilterFc].ModSum = 1200
	assert.Equal(t, 9200.0, gl.Total(GenInitialFilterFc))
}

func TestKeyRangeDecodesPackedDefault(t *testing.T) {
	low, high := KeyRange(GenKeyRange.DefaultValue())
	assert.Equal(t, 0, low)
	assert.Equal(t, 127, high)
}

func TestKeyRangeDecodesArbitraryRange(t *testing.T) {
	// low=36 (0x24), high=96 (0x60) packed low-byte-first per SF2 convention.
	packed := float64(0x24 | 0x60<<8)
	low, high := KeyRange(packed)
	assert.Equal(t, 36, low)
	assert.Equal(t, 96, high)
}
