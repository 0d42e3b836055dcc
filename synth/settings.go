package synth

// Descriptor configures a Synth at construction time. Zero-value fields
// are not valid input; use DefaultDescriptor and override only the
// fields a caller cares about.
type Descriptor struct {
	ReverbActive       bool
	ChorusActive       bool
	DrumsChannelActive bool

	Polyphony    int // [1, 65535]
	MidiChannels int // multiple of 16, [16, 256]

	Gain float64 // [0.0, 10.0]

	AudioChannels int // [1, 128]
	AudioGroups   int // [1, 128]

	SampleRate int // [8000, 96000] Hz

	MinNoteLengthMS int // [0, 65535] ms
}

// DefaultDescriptor returns the documented default configuration.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		ReverbActive:       true,
		ChorusActive:       true,
		DrumsChannelActive: true,
		Polyphony:          256,
		MidiChannels:       16,
		Gain:               0.2,
		AudioChannels:      1,
		AudioGroups:        1,
		SampleRate:         44100,
		MinNoteLengthMS:    10,
	}
}

func rangeErr(field string, got int, lo, hi int) *Error {
	return newErr(ErrRangeError, "synth: %s must be in [%d, %d], got %d", field, lo, hi, got)
}

// validate checks every field against its documented range
// and returns the first violation found.
func (d *Descriptor) validate() error {
	if d.Polyphony < 1 || d.Polyphony > 65535 {
		return rangeErr("polyphony", d.Polyphony, 1, 65535)
	}
	if d.MidiChannels < 16 || d.MidiChannels > 256 {
		return rangeErr("midi_channels", d.MidiChannels, 16, 256)
	}
	if d.MidiChannels%16 != 0 {
		return newErr(ErrMidiChannelsNotMultipleOf16, "synth: midi_channels must be a multiple of 16, got %d", d.MidiChannels)
	}
	if d.Gain < 0.0 || d.Gain > 10.0 {
		return rangeErr("gain", int(d.Gain), 0, 10)
	}
	if d.AudioChannels < 1 || d.AudioChannels > 128 {
		return rangeErr("audio_channels", d.AudioChannels, 1, 128)
	}
	if d.AudioGroups < 1 || d.AudioGroups > 128 {
		return rangeErr("audio_groups", d.AudioGroups, 1, 128)
	}
	if d.SampleRate < 8000 || d.SampleRate > 96000 {
		return rangeErr("sample_rate", d.SampleRate, 8000, 96000)
	}
	if d.MinNoteLengthMS < 0 || d.MinNoteLengthMS > 65535 {
		return rangeErr("min_note_length", d.MinNoteLengthMS, 0, 65535)
	}
	return nil
}
