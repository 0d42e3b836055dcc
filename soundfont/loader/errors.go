package loader

import "errors"

// Errors the loader returns, one sentinel per failure kind.
var (
	ErrMalformedChunk     = errors.New("soundfont: malformed RIFF chunk")
	ErrUnknownSampleType  = errors.New("soundfont: unknown sample type")
	ErrUnsupportedVersion = errors.New("soundfont: unsupported SoundFont version")
	ErrMissingChunk       = errors.New("soundfont: missing required chunk")
)
