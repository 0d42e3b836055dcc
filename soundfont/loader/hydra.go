package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Raw hydra records, laid out exactly as the SoundFont 2.01 spec's binary
// structs (fixed-width fields, little endian). These never escape the
// loader package; readHydra turns them into the soundfont package's
// immutable tree.

type rawPresetHeader struct {
	Name         [20]byte
	Preset       uint16
	Bank         uint16
	PresetBagNdx uint16
	Library      uint32
	Genre        uint32
	Morphology   uint32
}

type rawBag struct {
	GenNdx uint16
	ModNdx uint16
}

type rawModulator struct {
	SrcOper    uint16
	DestOper   uint16
	Amount     int16
	AmtSrcOper uint16
	Transform  uint16
}

type rawGenerator struct {
	Oper   uint16
	Amount int16
}

type rawInstHeader struct {
	Name       [20]byte
	InstBagNdx uint16
}

type rawSampleHeader struct {
	Name               [20]byte
	Start, End         uint32
	LoopStart, LoopEnd uint32
	SampleRate         uint32
	OriginalKey        uint8
	Correction         int8
	SampleLink         uint16
	SampleType         uint16
}

// readSlice decodes a chunk's data as a dense array of fixed-size
// records.
func readSlice[T any](data []byte) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("%w: record size mismatch (%d bytes, record size %d)", ErrMalformedChunk, len(data), size)
	}
	n := len(data) / size
	out := make([]T, n)
	r := bytes.NewReader(data)
	for i := 0; i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedChunk, err)
		}
	}
	return out, nil
}

// hydra holds every decoded pdta sub-chunk before it is cross-linked into
// the preset/instrument/sample tree.
type hydra struct {
	presets []rawPresetHeader
	pbag    []rawBag
	pmod    []rawModulator
	pgen    []rawGenerator
	insts   []rawInstHeader
	ibag    []rawBag
	imod    []rawModulator
	igen    []rawGenerator
	samples []rawSampleHeader
}

func readHydra(listData []byte) (*hydra, error) {
	r := bytes.NewReader(listData)
	var lt [4]byte
	if _, err := io.ReadFull(r, lt[:]); err != nil {
		return nil, err
	}
	if string(lt[:]) != "pdta" {
		return nil, fmt.Errorf("%w: expected pdta LIST, got %q", ErrMalformedChunk, lt)
	}

	h := &hydra{}
	expectRead := func(id string) ([]byte, error) {
		var c chunk
		if err := c.expect(r, id); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingChunk, id)
		}
		return c.data, nil
	}

	var err error
	var data []byte

	if data, err = expectRead("phdr"); err != nil {
		return nil, err
	}
	if h.presets, err = readSlice[rawPresetHeader](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("pbag"); err != nil {
		return nil, err
	}
	if h.pbag, err = readSlice[rawBag](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("pmod"); err != nil {
		return nil, err
	}
	if h.pmod, err = readSlice[rawModulator](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("pgen"); err != nil {
		return nil, err
	}
	if h.pgen, err = readSlice[rawGenerator](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("inst"); err != nil {
		return nil, err
	}
	if h.insts, err = readSlice[rawInstHeader](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("ibag"); err != nil {
		return nil, err
	}
	if h.ibag, err = readSlice[rawBag](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("imod"); err != nil {
		return nil, err
	}
	if h.imod, err = readSlice[rawModulator](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("igen"); err != nil {
		return nil, err
	}
	if h.igen, err = readSlice[rawGenerator](data); err != nil {
		return nil, err
	}
	if data, err = expectRead("shdr"); err != nil {
		return nil, err
	}
	if h.samples, err = readSlice[rawSampleHeader](data); err != nil {
		return nil, err
	}

	return h, nil
}
