package voice

import "math"

// Stage is one segment of the seven-stage envelope state machine.
type Stage int

const (
	StageDelay Stage = iota
	StageAttack
	StageHold
	StageDecay
	StageSustain
	StageRelease
	StageFinished
)

type segment struct {
	blocks    int
	coeff     float64
	increment float64
	min, max  float64
}

// Envelope is a linear/exponential-segment envelope generator advanced
// once per 64-sample block. Attack ramps linearly in amplitude; decay and
// release approach their target multiplicatively, which is the usual
// approximation of an exponential segment without a pow() call per block.
type Envelope struct {
	segs [StageFinished + 1]segment

	stage      Stage
	blocksLeft int
	value      float64
	sustain    float64
}

const releaseFloor = 1.0 / 32768.0

// Configure installs stage durations (in seconds) and the sustain level
// (linear 0..1 for the volume envelope; the modulation envelope's caller
// treats "sustain" as a 0..1 fraction of its own cents range the same
// way). blockRate is sampleRate/64, the number of blocks per second.
func (e *Envelope) Configure(delaySec, attackSec, holdSec, decaySec, releaseSec, sustain, blockRate float64) {
	if sustain < 0 {
		sustain = 0
	}
	if sustain > 1 {
		sustain = 1
	}
	e.sustain = sustain

	toBlocks := func(sec float64) int {
		if sec <= 0 {
			return 0
		}
		b := int(sec*blockRate + 0.5)
		if b < 1 {
			b = 1
		}
		return b
	}

	e.segs[StageDelay] = segment{blocks: toBlocks(delaySec)}

	ab := toBlocks(attackSec)
	inc := 1.0
	if ab > 0 {
		inc = 1.0 / float64(ab)
	}
	e.segs[StageAttack] = segment{blocks: ab, increment: inc}

	e.segs[StageHold] = segment{blocks: toBlocks(holdSec)}

	db := toBlocks(decaySec)
	sustainFloor := sustain
	if sustainFloor < 1e-4 {
		sustainFloor = 1e-4
	}
	decayCoeff := math.Pow(sustainFloor, 1.0/float64(db))
	e.segs[StageDecay] = segment{blocks: db, coeff: decayCoeff, min: sustain}

	rb := toBlocks(releaseSec)
	releaseCoeff := math.Pow(releaseFloor, 1.0/float64(rb))
	e.segs[StageRelease] = segment{blocks: rb, coeff: releaseCoeff, min: 0}
}

// Retrigger resets the envelope to its first stage (Delay), as happens on
// every note-on.
func (e *Envelope) Retrigger() {
	e.stage = StageDelay
	e.blocksLeft = e.segs[StageDelay].blocks
	e.value = 0
	if e.blocksLeft == 0 {
		e.enterStage(StageAttack)
	}
}

func (e *Envelope) enterStage(s Stage) {
	e.stage = s
	e.blocksLeft = e.segs[s].blocks
}

// Advance steps the envelope by one block and returns its current value.
func (e *Envelope) Advance() float64 {
	switch e.stage {
	case StageDelay:
		e.value = 0
		e.blocksLeft--
		if e.blocksLeft <= 0 {
			e.enterStage(StageAttack)
		}
	case StageAttack:
		e.value += e.segs[StageAttack].increment
		e.blocksLeft--
		if e.value >= 1 || e.blocksLeft <= 0 {
			e.value = 1
			e.enterStage(StageHold)
		}
	case StageHold:
		e.value = 1
		e.blocksLeft--
		if e.blocksLeft <= 0 {
			e.enterStage(StageDecay)
		}
	case StageDecay:
		e.value *= e.segs[StageDecay].coeff
		e.blocksLeft--
		if e.value <= e.sustain || e.blocksLeft <= 0 {
			e.value = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.value = e.sustain
	case StageRelease:
		e.value *= e.segs[StageRelease].coeff
		e.blocksLeft--
		if e.value <= releaseFloor || e.blocksLeft <= 0 {
			e.value = 0
			e.stage = StageFinished
		}
	case StageFinished:
		e.value = 0
	}
	return e.value
}

// ForceRelease transitions the envelope into its Release stage
// immediately, from whatever value it currently holds, unless it has
// already finished.
func (e *Envelope) ForceRelease() {
	if e.stage == StageFinished {
		return
	}
	e.stage = StageRelease
	e.blocksLeft = e.segs[StageRelease].blocks
}

// ForceFinished is used by all_sound_off / voice stealing, which bypass
// the release stage entirely.
func (e *Envelope) ForceFinished() {
	e.stage = StageFinished
	e.value = 0
}

// Stage reports the envelope's current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Value reports the envelope's current value without advancing it.
func (e *Envelope) Value() float64 { return e.value }

// PastAttack reports whether the envelope has progressed beyond the
// Attack stage, used by the voice pool's stealing priority.
func (e *Envelope) PastAttack() bool {
	return e.stage != StageDelay && e.stage != StageAttack
}
