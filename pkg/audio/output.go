// Package audio provides host-side adapters for driving a synth.Synth:
// a WAV writer for offline rendering and an oto-backed stream for live
// playback.
package audio

import (
	"encoding/binary"
	"io"

	"github.com/anthropics/wavesynth/synth"
)

// WAVWriter writes a stereo 16-bit PCM WAV stream.
type WAVWriter struct {
	writer      io.Writer
	sampleRate  int
	channels    int
	dataWritten int
}

// NewWAVWriter creates a WAV writer for the given sample rate and channel
// count (2 for the stereo output this engine always produces).
func NewWAVWriter(w io.Writer, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{
		writer:     w,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// WriteHeader writes the RIFF/WAVE header for dataSize bytes of 16-bit
// PCM payload that follow.
func (w *WAVWriter) WriteHeader(dataSize int) error {
	w.writer.Write([]byte("RIFF"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize+36))
	w.writer.Write([]byte("WAVE"))

	w.writer.Write([]byte("fmt "))
	binary.Write(w.writer, binary.LittleEndian, uint32(16))
	binary.Write(w.writer, binary.LittleEndian, uint16(1))
	binary.Write(w.writer, binary.LittleEndian, uint16(w.channels))
	binary.Write(w.writer, binary.LittleEndian, uint32(w.sampleRate))
	byteRate := w.sampleRate * w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint32(byteRate))
	blockAlign := w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint16(blockAlign))
	binary.Write(w.writer, binary.LittleEndian, uint16(16))

	w.writer.Write([]byte("data"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize))

	return nil
}

// WriteFrames writes interleaved stereo frames as 16-bit PCM.
func (w *WAVWriter) WriteFrames(left, right []int16) error {
	for i := range left {
		if err := binary.Write(w.writer, binary.LittleEndian, left[i]); err != nil {
			return err
		}
		if err := binary.Write(w.writer, binary.LittleEndian, right[i]); err != nil {
			return err
		}
		w.dataWritten += 4
	}
	return nil
}

// RenderWAV pulls durationSeconds of stereo audio out of s and writes it
// as a 16-bit PCM WAV file, in fixed-size chunks so a render of any
// length costs only one chunk's worth of memory.
func RenderWAV(s *synth.Synth, writer io.Writer, sampleRate int, durationSeconds float64) error {
	totalFrames := int(durationSeconds * float64(sampleRate))
	dataSize := totalFrames * 4 // stereo, 16-bit

	w := NewWAVWriter(writer, sampleRate, 2)
	if err := w.WriteHeader(dataSize); err != nil {
		return err
	}

	const chunkFrames = 4096
	left := make([]int16, chunkFrames)
	right := make([]int16, chunkFrames)
	for written := 0; written < totalFrames; {
		n := chunkFrames
		if remaining := totalFrames - written; remaining < n {
			n = remaining
		}
		s.WriteInt16(n, left, 0, 1, right, 0, 1)
		if err := w.WriteFrames(left[:n], right[:n]); err != nil {
			return err
		}
		written += n
	}
	return nil
}
