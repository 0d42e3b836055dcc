package audio

import (
	"encoding/binary"

	"github.com/ebitengine/oto/v3"

	"github.com/anthropics/wavesynth/synth"
)

// RealtimeOutput drives a live stereo oto stream from a synth.Synth,
// pulling blocks through WriteInt16 on oto's own audio callback.
//
// synth.Synth is not safe for concurrent use, so every call into it
// happens on oto's callback goroutine inside audioStream.Read. SendEvent()
// only enqueues onto a channel and is safe to call from any goroutine.
type RealtimeOutput struct {
	s         *synth.Synth
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	left      []int16
	right     []int16
	running   bool
	events    chan synth.MidiEvent
}

// NewRealtimeOutput opens an oto context at sampleRate and starts
// streaming s's output through it.
func NewRealtimeOutput(s *synth.Synth, sampleRate int) (*RealtimeOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	rt := &RealtimeOutput{
		s:       s,
		otoCtx:  otoCtx,
		left:    make([]int16, 512),
		right:   make([]int16, 512),
		running: true,
		events:  make(chan synth.MidiEvent, 1024),
	}

	rt.otoPlayer = otoCtx.NewPlayer(&audioStream{rt: rt})
	rt.otoPlayer.SetBufferSize(sampleRate / 10) // 100ms buffer
	rt.otoPlayer.Play()

	return rt, nil
}

// SendEvent queues a MIDI event to be applied at the start of the next
// block oto pulls. Safe to call from any goroutine.
func (rt *RealtimeOutput) SendEvent(e synth.MidiEvent) {
	select {
	case rt.events <- e:
	default:
		// Queue full: drop rather than block the caller. A synth that
		// can't keep up with its own event queue has bigger problems than
		// one dropped note.
	}
}

// Close stops playback.
func (rt *RealtimeOutput) Close() {
	rt.running = false
	if rt.otoPlayer != nil {
		rt.otoPlayer.Close()
	}
}

// audioStream adapts synth.Synth's pull-model output to oto's io.Reader
// callback contract, draining any queued events before each pull so
// event application and audio rendering never race.
type audioStream struct {
	rt *RealtimeOutput
}

func (a *audioStream) Read(buf []byte) (int, error) {
	if !a.rt.running {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

drain:
	for {
		select {
		case e := <-a.rt.events:
			a.rt.s.SendEvent(e)
		default:
			break drain
		}
	}

	frames := len(buf) / 4 // stereo, 16-bit: 4 bytes per frame
	if frames > len(a.rt.left) {
		a.rt.left = make([]int16, frames)
		a.rt.right = make([]int16, frames)
	}

	a.rt.s.WriteInt16(frames, a.rt.left, 0, 1, a.rt.right, 0, 1)

	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(a.rt.left[i]))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(a.rt.right[i]))
	}

	return frames * 4, nil
}
