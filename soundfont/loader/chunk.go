package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// chunk is one RIFF chunk: a 4-byte id, a little-endian size, and that
// many bytes of data. SF2/SF3 files are RIFF containers throughout.
type chunk struct {
	id   [4]byte
	data []byte
}

func (c *chunk) parse(r io.Reader) error {
	if _, err := io.ReadFull(r, c.id[:]); err != nil {
		return err
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return err
	}
	c.data = make([]byte, size)
	if _, err := io.ReadFull(r, c.data); err != nil {
		return fmt.Errorf("%w: chunk %q truncated: %v", ErrMalformedChunk, c.id, err)
	}
	// RIFF chunks are word-aligned; an odd-sized chunk is followed by one
	// pad byte that isn't part of its data.
	if size%2 == 1 {
		var pad [1]byte
		io.ReadFull(r, pad[:])
	}
	return nil
}

func (c *chunk) expect(r io.Reader, id string) error {
	if err := c.parse(r); err != nil {
		return err
	}
	if string(c.id[:]) != id {
		return fmt.Errorf("%w: expected %q, got %q", ErrMalformedChunk, id, c.id)
	}
	return nil
}

func (c *chunk) reader() io.Reader { return bytes.NewReader(c.data) }

// cstring trims a fixed-size, NUL-padded ASCII field down to its
// meaningful prefix.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
