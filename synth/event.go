package synth

// EventKind tags a MidiEvent's variant, expressed as a closed sum type
// rather than an interface hierarchy: the set of events is fixed and the
// dispatch switch stays branch-predictable in the audio path.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventControlChange
	EventAllNotesOff
	EventAllSoundOff
	EventPitchBend
	EventProgramChange
	EventChannelPressure
	EventPolyphonicKeyPressure
	EventSystemReset
)

// MidiEvent is a single MIDI-derived instruction for the engine. Only the
// fields relevant to Kind are meaningful; SendEvent validates every
// relevant field before applying any state change.
type MidiEvent struct {
	Kind EventKind

	Channel int

	Key      int // NoteOn, NoteOff, PolyphonicKeyPressure
	Velocity int // NoteOn
	Ctrl     int // ControlChange
	Value    int // ControlChange, PitchBend (14-bit), ChannelPressure, PolyphonicKeyPressure
	Program  int // ProgramChange
}

// NoteOn builds a NoteOn event.
func NoteOn(channel, key, velocity int) MidiEvent {
	return MidiEvent{Kind: EventNoteOn, Channel: channel, Key: key, Velocity: velocity}
}

// NoteOff builds a NoteOff event.
func NoteOff(channel, key int) MidiEvent {
	return MidiEvent{Kind: EventNoteOff, Channel: channel, Key: key}
}

// ControlChange builds a ControlChange event.
func ControlChange(channel, ctrl, value int) MidiEvent {
	return MidiEvent{Kind: EventControlChange, Channel: channel, Ctrl: ctrl, Value: value}
}

// AllNotesOff builds an AllNotesOff event.
func AllNotesOff(channel int) MidiEvent { return MidiEvent{Kind: EventAllNotesOff, Channel: channel} }

// AllSoundOff builds an AllSoundOff event.
func AllSoundOff(channel int) MidiEvent { return MidiEvent{Kind: EventAllSoundOff, Channel: channel} }

// PitchBend builds a PitchBend event; value is the 14-bit bend (center 0x2000).
func PitchBend(channel, value int) MidiEvent {
	return MidiEvent{Kind: EventPitchBend, Channel: channel, Value: value}
}

// ProgramChange builds a ProgramChange event.
func ProgramChange(channel, program int) MidiEvent {
	return MidiEvent{Kind: EventProgramChange, Channel: channel, Program: program}
}

// ChannelPressure builds a ChannelPressure event.
func ChannelPressure(channel, value int) MidiEvent {
	return MidiEvent{Kind: EventChannelPressure, Channel: channel, Value: value}
}

// PolyphonicKeyPressure builds a PolyphonicKeyPressure event.
func PolyphonicKeyPressure(channel, key, value int) MidiEvent {
	return MidiEvent{Kind: EventPolyphonicKeyPressure, Channel: channel, Key: key, Value: value}
}

// SystemReset builds a SystemReset event (channel is ignored).
func SystemReset() MidiEvent { return MidiEvent{Kind: EventSystemReset} }

// check validates an event's fields against the MIDI value ranges,
// without mutating any state. channelCount is the engine's configured
// channel count.
func (e MidiEvent) check(channelCount int) error {
	if e.Kind != EventSystemReset {
		if e.Channel < 0 || e.Channel >= channelCount {
			return validationErr(ErrChannelOutOfRange, "channel", e.Channel)
		}
	}
	switch e.Kind {
	case EventNoteOn, EventNoteOff, EventPolyphonicKeyPressure:
		if e.Key < 0 || e.Key > 127 {
			return validationErr(ErrKeyOutOfRange, "key", e.Key)
		}
	}
	switch e.Kind {
	case EventNoteOn:
		if e.Velocity < 0 || e.Velocity > 127 {
			return validationErr(ErrVelocityOutOfRange, "velocity", e.Velocity)
		}
	case EventControlChange:
		if e.Ctrl < 0 || e.Ctrl > 127 {
			return validationErr(ErrCtrlOutOfRange, "ctrl", e.Ctrl)
		}
		if e.Value < 0 || e.Value > 127 {
			return validationErr(ErrCCValueOutOfRange, "value", e.Value)
		}
	case EventPitchBend:
		if e.Value < 0 || e.Value > 16383 {
			return validationErr(ErrPitchBendOutOfRange, "value", e.Value)
		}
	case EventProgramChange:
		if e.Program < 0 || e.Program > 127 {
			return validationErr(ErrProgramOutOfRange, "program", e.Program)
		}
	case EventChannelPressure:
		if e.Value < 0 || e.Value > 127 {
			return validationErr(ErrChannelPressureOutOfRange, "value", e.Value)
		}
	case EventPolyphonicKeyPressure:
		if e.Value < 0 || e.Value > 127 {
			return validationErr(ErrKeyPressureOutOfRange, "value", e.Value)
		}
	}
	return nil
}
