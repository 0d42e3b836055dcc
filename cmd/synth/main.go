// Command synth renders or plays a Standard MIDI File through a
// SoundFont, either live through the system's audio output or offline
// to a WAV file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/anthropics/wavesynth/pkg/audio"
	"github.com/anthropics/wavesynth/pkg/tui"
	"github.com/anthropics/wavesynth/soundfont"
	"github.com/anthropics/wavesynth/soundfont/loader"
	"github.com/anthropics/wavesynth/synth"
)

func main() {
	soundfontPath := flag.StringP("soundfont", "s", "", "path to a .sf2 file (required)")
	midiPath := flag.StringP("midi", "m", "", "path to a Standard MIDI File to play")
	wavPath := flag.StringP("wav", "w", "", "render to this WAV file instead of live playback")
	durationSec := flag.Float64("duration", 0, "render/play duration in seconds (0 = length of the MIDI file plus a release tail)")
	gain := flag.Float64("gain", 0.2, "master gain [0, 10]")
	polyphony := flag.Int("polyphony", 256, "maximum simultaneous voices")
	sampleRate := flag.Int("sample-rate", 44100, "output sample rate in Hz")
	channels := flag.Int("midi-channels", 16, "MIDI channel count (multiple of 16)")
	noReverb := flag.Bool("no-reverb", false, "disable the reverb send")
	noChorus := flag.Bool("no-chorus", false, "disable the chorus send")
	tuiMode := flag.Bool("tui", false, "show a live playback monitor with per-channel voice meters")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *soundfontPath == "" {
		logger.Fatal("missing required flag", "flag", "--soundfont")
	}

	desc := synth.DefaultDescriptor()
	desc.Gain = *gain
	desc.Polyphony = *polyphony
	desc.SampleRate = *sampleRate
	desc.MidiChannels = *channels
	desc.ReverbActive = !*noReverb
	desc.ChorusActive = !*noChorus

	s, err := synth.New(desc)
	if err != nil {
		logger.Fatal("building synth", "err", err)
	}
	s.SetLogger(logger)

	font, err := loadFont(*soundfontPath)
	if err != nil {
		logger.Fatal("loading soundfont", "path", *soundfontPath, "err", err)
	}
	s.AddFont(font)
	logger.Info("loaded soundfont", "path", *soundfontPath, "presets", len(font.Presets))

	for c := 0; c < desc.MidiChannels; c++ {
		if err := s.SendEvent(synth.ProgramChange(c, 0)); err != nil {
			logger.Warn("initial program change failed", "channel", c, "err", err)
		}
	}

	var sched *schedule
	if *midiPath != "" {
		sched, err = loadSchedule(*midiPath)
		if err != nil {
			logger.Fatal("loading MIDI file", "path", *midiPath, "err", err)
		}
		logger.Info("loaded MIDI file", "path", *midiPath, "events", len(sched.events), "duration", sched.lastSeconds)
	}

	duration := *durationSec
	if duration <= 0 {
		duration = 2.0
		if sched != nil {
			duration = sched.lastSeconds + 3.0 // let reverb/chorus/release tails ring out
		}
	}

	if *wavPath != "" {
		if err := renderToFile(s, sched, *wavPath, *sampleRate, duration); err != nil {
			logger.Fatal("rendering WAV", "err", err)
		}
		logger.Info("wrote WAV", "path", *wavPath, "duration", duration)
		return
	}

	if *tuiMode {
		title := filepath.Base(*soundfontPath)
		if *midiPath != "" {
			title = filepath.Base(*midiPath)
		}
		if err := playTUI(s, sched, *sampleRate, duration, title); err != nil {
			logger.Fatal("playback monitor", "err", err)
		}
		return
	}

	if err := playLive(s, sched, *sampleRate, duration, logger); err != nil {
		logger.Fatal("live playback", "err", err)
	}
}

// playTUI streams to the audio device like playLive, but drives event
// scheduling from the monitor's own tick loop and renders per-channel
// voice meters while playing.
func playTUI(s *synth.Synth, sched *schedule, sampleRate int, duration float64, title string) error {
	rt, err := audio.NewRealtimeOutput(s, sampleRate)
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	defer rt.Close()

	var events []tui.Event
	if sched != nil {
		events = make([]tui.Event, 0, len(sched.events))
		for _, e := range sched.events {
			events = append(events, tui.Event{Seconds: e.seconds, Event: e.event})
		}
	}

	p := tea.NewProgram(tui.NewModel(s, rt, events, duration, title))
	_, err = p.Run()
	return err
}

func loadFont(path string) (*soundfont.Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loader.Load(f)
}

// scheduledEvent is one dispatched MIDI event, timestamped in seconds
// from the start of playback.
type scheduledEvent struct {
	seconds float64
	event   synth.MidiEvent
}

type schedule struct {
	events      []scheduledEvent
	lastSeconds float64
}

// loadSchedule flattens every track of a Standard MIDI File into one
// time-ordered event list, resolving tempo (set_tempo meta events)
// against the file's pulses-per-quarter-note time format.
func loadSchedule(path string) (*schedule, error) {
	data, err := smf.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ppq := 960
	if mt, ok := data.TimeFormat.(smf.MetricTicks); ok {
		ppq = int(mt)
	}

	type tempoPoint struct {
		tick         int64
		microsPerQrt float64
	}
	tempoMap := []tempoPoint{{0, 500000}} // 120 BPM until told otherwise

	type rawEvent struct {
		tick int64
		msg  []byte
	}
	var raw []rawEvent

	for _, track := range data.Tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			if micros, isTempo := decodeTempoMeta(ev.Message); isTempo {
				tempoMap = append(tempoMap, tempoPoint{tick, micros})
				continue
			}
			if b := ev.Message.Bytes(); len(b) >= 1 && b[0] >= 0x80 && b[0] < 0xF0 {
				raw = append(raw, rawEvent{tick, b})
			}
		}
	}

	// tempoMap must be tick-sorted for ticksToSeconds' scan to work; track
	// interleaving during the merge above can leave it unsorted.
	for i := 1; i < len(tempoMap); i++ {
		for j := i; j > 0 && tempoMap[j].tick < tempoMap[j-1].tick; j-- {
			tempoMap[j], tempoMap[j-1] = tempoMap[j-1], tempoMap[j]
		}
	}

	ticksToSeconds := func(tick int64) float64 {
		var seconds float64
		var lastTick int64
		lastMicros := tempoMap[0].microsPerQrt
		for _, tp := range tempoMap {
			if tp.tick > tick {
				break
			}
			seconds += float64(tp.tick-lastTick) / float64(ppq) * lastMicros / 1e6
			lastTick = tp.tick
			lastMicros = tp.microsPerQrt
		}
		seconds += float64(tick-lastTick) / float64(ppq) * lastMicros / 1e6
		return seconds
	}

	sc := &schedule{}
	for _, re := range raw {
		e, ok := decodeChannelMessage(re.msg)
		if !ok {
			continue
		}
		seconds := ticksToSeconds(re.tick)
		sc.events = append(sc.events, scheduledEvent{seconds, e})
		if seconds > sc.lastSeconds {
			sc.lastSeconds = seconds
		}
	}

	for i := 1; i < len(sc.events); i++ {
		for j := i; j > 0 && sc.events[j].seconds < sc.events[j-1].seconds; j-- {
			sc.events[j], sc.events[j-1] = sc.events[j-1], sc.events[j]
		}
	}

	return sc, nil
}

// decodeTempoMeta reports whether msg is a Set Tempo meta event and, if
// so, its microseconds-per-quarter-note value (GetMetaTempo itself
// reports BPM).
func decodeTempoMeta(msg smf.Message) (float64, bool) {
	var bpm float64
	if msg.GetMetaTempo(&bpm) && bpm > 0 {
		return 60000000.0 / bpm, true
	}
	return 0, false
}

// decodeChannelMessage maps raw MIDI channel-voice bytes onto this
// engine's event vocabulary; message kinds it has no use for (system
// exclusive, most meta events) are dropped.
func decodeChannelMessage(b []byte) (synth.MidiEvent, bool) {
	if len(b) == 0 {
		return synth.MidiEvent{}, false
	}
	status := b[0]
	if status < 0x80 {
		return synth.MidiEvent{}, false
	}
	channel := int(status & 0x0F)
	switch status & 0xF0 {
	case 0x90:
		if len(b) < 3 {
			return synth.MidiEvent{}, false
		}
		if b[2] == 0 {
			return synth.NoteOff(channel, int(b[1])), true
		}
		return synth.NoteOn(channel, int(b[1]), int(b[2])), true
	case 0x80:
		if len(b) < 3 {
			return synth.MidiEvent{}, false
		}
		return synth.NoteOff(channel, int(b[1])), true
	case 0xB0:
		if len(b) < 3 {
			return synth.MidiEvent{}, false
		}
		return synth.ControlChange(channel, int(b[1]), int(b[2])), true
	case 0xC0:
		if len(b) < 2 {
			return synth.MidiEvent{}, false
		}
		return synth.ProgramChange(channel, int(b[1])), true
	case 0xD0:
		if len(b) < 2 {
			return synth.MidiEvent{}, false
		}
		return synth.ChannelPressure(channel, int(b[1])), true
	case 0xA0:
		if len(b) < 3 {
			return synth.MidiEvent{}, false
		}
		return synth.PolyphonicKeyPressure(channel, int(b[1]), int(b[2])), true
	case 0xE0:
		if len(b) < 3 {
			return synth.MidiEvent{}, false
		}
		value := int(b[1]) | int(b[2])<<7
		return synth.PitchBend(channel, value), true
	}
	return synth.MidiEvent{}, false
}

// renderToFile dispatches sched's events at their scheduled block and
// writes duration seconds of stereo 16-bit PCM.
func renderToFile(s *synth.Synth, sched *schedule, path string, sampleRate int, duration float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	totalFrames := int(duration * float64(sampleRate))
	dataSize := totalFrames * 4
	w := audio.NewWAVWriter(f, sampleRate, 2)
	if err := w.WriteHeader(dataSize); err != nil {
		return err
	}

	const chunk = 4096
	left := make([]int16, chunk)
	right := make([]int16, chunk)
	next := 0
	for written := 0; written < totalFrames; {
		n := chunk
		if remaining := totalFrames - written; remaining < n {
			n = remaining
		}
		if sched != nil {
			for next < len(sched.events) {
				frame := int(sched.events[next].seconds * float64(sampleRate))
				if frame > written {
					// End this chunk where the next event is due.
					if frame-written < n {
						n = frame - written
					}
					break
				}
				s.SendEvent(sched.events[next].event)
				next++
			}
		}
		s.WriteInt16(n, left, 0, 1, right, 0, 1)
		if err := w.WriteFrames(left[:n], right[:n]); err != nil {
			return err
		}
		written += n
	}
	return nil
}

// playLive streams s's output through the system's audio device. Events
// are handed to rt.SendEvent, which queues them for application on
// oto's own callback goroutine (the only goroutine allowed to touch s)
// at the start of its next pulled block; this goroutine only paces
// itself against wall-clock time to decide when to enqueue each event,
// so timing tracks real playback rate rather than this loop's own
// polling interval.
func playLive(s *synth.Synth, sched *schedule, sampleRate int, duration float64, logger *log.Logger) error {
	rt, err := audio.NewRealtimeOutput(s, sampleRate)
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	defer rt.Close()

	if sched == nil {
		fmt.Fprintf(os.Stderr, "playing %.1fs of silence (no --midi given)\n", duration)
	}

	start := time.Now()
	next := 0
	const pollInterval = 5 * time.Millisecond
	for elapsed := 0.0; elapsed < duration; elapsed = time.Since(start).Seconds() {
		if sched != nil {
			for next < len(sched.events) && sched.events[next].seconds <= elapsed {
				rt.SendEvent(sched.events[next].event)
				next++
			}
		}
		time.Sleep(pollInterval)
	}
	return nil
}
