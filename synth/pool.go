package synth

import "github.com/anthropics/wavesynth/voice"

// pool is a fixed-size, preallocated set of voice slots.
// No slot is ever allocated or freed after construction; note-on reuses
// a Clean or Off slot, or steals the lowest-priority On/Sustained one.
type pool struct {
	voices   []voice.Voice
	limit    int
	nextSeq  uint64
	nextNote uint64
}

func newPool(capacity, polyphonyLimit int) *pool {
	return &pool{
		voices: make([]voice.Voice, capacity),
		limit:  polyphonyLimit,
	}
}

// activeCount returns the number of voices currently On or Sustained,
// i.e. counted against the polyphony limit.
func (p *pool) activeCount() int {
	n := 0
	for i := range p.voices {
		if s := p.voices[i].Status; s == voice.On || s == voice.Sustained {
			n++
		}
	}
	return n
}

// findFreeSlot returns the index of the first Clean or Off voice, if any.
func (p *pool) findFreeSlot() (int, bool) {
	for i := range p.voices {
		if s := p.voices[i].Status; s == voice.Clean || s == voice.Off {
			return i, true
		}
	}
	return 0, false
}

// allocate returns a slot to trigger a new voice into: a free slot if one
// exists, otherwise a stolen slot if the engine is at its polyphony limit
// and stealing finds a candidate, otherwise false (the note is dropped
// silently).
func (p *pool) allocate(channelAssigned bool) (int, bool) {
	if idx, ok := p.findFreeSlot(); ok {
		return idx, true
	}
	return p.steal(channelAssigned)
}

// steal applies the stealing priority score: the lowest-scoring
// voice is forced Off and its slot returned. Returns false if the pool is
// empty (capacity 0) or every voice is already Clean/unreachable (should
// not happen given allocate's call sites, but stealing from an empty usable
// pool fails silently).
func (p *pool) steal(channelAssigned bool) (int, bool) {
	best := -1
	bestScore := 0.0
	for i := range p.voices {
		v := &p.voices[i]
		if v.Status != voice.On && v.Status != voice.Sustained {
			continue
		}
		score := v.PriorityScore(true, p.nextSeq)
		if best == -1 || score < bestScore {
			best = i
			bestScore = score
		}
	}
	if best == -1 {
		return 0, false
	}
	p.voices[best].Kill()
	return best, true
}

// noteID and seq are both monotonic but serve different purposes: noteID
// identifies "the same physical note" across a chord's several voices
// (cross-product of zones), seq orders voices strictly by trigger time
// for the stealing heuristic's "oldest loses" tie-break.
func (p *pool) nextIDs() (noteID, seq uint64) {
	p.nextNote++
	p.nextSeq++
	return p.nextNote, p.nextSeq
}
