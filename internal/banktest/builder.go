// SPDX-License-Identifier: EPL-2.0

// Package banktest builds bank container fixtures for tests.
//
// The builders emit byte-exact files from small declarative specs so the
// decoder tests can hand-construct minimal banks without repeating offset
// arithmetic. The package deliberately avoids importing the public
// packages so both decoders can use it from their tests.
package banktest

import (
	"bytes"
	"encoding/binary"
)

// PackFormat packs the mini-waveform descriptor for the given container
// version: fields are codec tag, channels, sample rate and block align,
// least-significant-bit first. Version 1 uses a 1-bit tag, later versions
// 2 bits.
func PackFormat(version, tag, channels, rate, align uint32) uint32 {
	if version == 1 {
		return tag&0x1 | channels<<1 | rate<<4 | align<<22
	}

	return tag&0x3 | channels<<2 | rate<<5 | align<<23
}

// WaveEntry describes one audio item of a wave-bank fixture.
type WaveEntry struct {
	Format           uint32 // ignored for compact banks
	FlagsAndDuration uint32
	Payload          []byte
}

// WaveBankSpec describes a wave-bank fixture.
type WaveBankSpec struct {
	Version       uint32
	Name          string
	Compact       bool
	CompactFormat uint32
	Alignment     uint32 // compact banks only; payloads are padded to it
	MetaElemSize  uint32 // 0 selects the version default
	Entries       []WaveEntry
}

func (s WaveBankSpec) lastSegment() int {
	if s.Version <= 3 {
		return 3
	}

	return 4
}

func (s WaveBankSpec) nameLen() int {
	if s.Version == 2 || s.Version == 3 {
		return 16
	}

	return 64
}

func (s WaveBankSpec) metaElemSize() uint32 {
	if s.MetaElemSize != 0 {
		return s.MetaElemSize
	}
	if s.Compact {
		return 4
	}
	if s.Version == 1 {
		return 20
	}

	return 24
}

func (s WaveBankSpec) headerSize() int {
	size := 4 + 4 // magic + version
	if s.Version >= 42 {
		size += 4 // header version
	}

	return size + 8*(s.lastSegment()+1)
}

func (s WaveBankSpec) infoSize() int {
	size := 4 + 4 + s.nameLen() // flags + entry count + name
	if s.Version != 1 {
		size += 12 // element sizes + alignment
		if s.Compact {
			size += 4
		}
	}

	return size
}

func pad(n, align int) int {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + align - rem
	}

	return n
}

// BuildWaveBank lays out a complete wave-bank file for the spec.
func BuildWaveBank(spec WaveBankSpec) []byte {
	elemSize := int(spec.metaElemSize())
	metaOffset := spec.headerSize() + spec.infoSize()
	playOffset := metaOffset + len(spec.Entries)*elemSize

	// Payload layout first, so the metadata can point at it.
	offsets := make([]int, len(spec.Entries))
	playData := new(bytes.Buffer)
	for i, e := range spec.Entries {
		if spec.Compact {
			playData.Write(make([]byte, pad(playData.Len(), int(spec.Alignment))-playData.Len()))
		}
		offsets[i] = playData.Len()
		playData.Write(e.Payload)
	}
	if spec.Compact {
		playData.Write(make([]byte, pad(playData.Len(), int(spec.Alignment))-playData.Len()))
	}

	buf := new(bytes.Buffer)
	le := func(v any) { binary.Write(buf, binary.LittleEndian, v) }

	buf.WriteString("WBND")
	le(spec.Version)
	if spec.Version >= 42 {
		le(uint32(spec.Version)) // header version field
	}

	// Segment table: 0 = bank info, 1 = entry metadata, last = play data.
	segments := make([][2]uint32, spec.lastSegment()+1)
	segments[0] = [2]uint32{uint32(spec.headerSize()), uint32(spec.infoSize())}
	segments[1] = [2]uint32{uint32(metaOffset), uint32(len(spec.Entries) * elemSize)}
	segments[spec.lastSegment()] = [2]uint32{uint32(playOffset), uint32(playData.Len())}
	for _, seg := range segments {
		le(seg[0])
		le(seg[1])
	}

	// Bank info.
	var flags uint32
	if spec.Compact {
		flags |= 0x00020000
	}
	le(flags)
	le(uint32(len(spec.Entries)))
	name := make([]byte, spec.nameLen())
	copy(name, spec.Name)
	buf.Write(name)
	if spec.Version != 1 {
		le(uint32(elemSize))
		le(uint32(0)) // entry name element size
		le(spec.Alignment)
		if spec.Compact {
			le(spec.CompactFormat)
		}
	}

	// Entry metadata.
	for i, e := range spec.Entries {
		start := buf.Len()
		if spec.Compact {
			le(uint32(offsets[i]) / spec.Alignment)
		} else if spec.Version == 1 {
			le(e.Format)
			le(uint32(offsets[i]))
			le(uint32(len(e.Payload)))
			le(uint32(0)) // loop offset
			le(uint32(0)) // loop length
		} else {
			fields := []uint32{
				e.FlagsAndDuration,
				e.Format,
				uint32(offsets[i]),
				uint32(len(e.Payload)),
				0, // loop offset
				0, // loop length
			}
			for j := 0; j < elemSize/4 && j < len(fields); j++ {
				le(fields[j])
			}
		}
		// Keep each record exactly elemSize bytes.
		buf.Write(make([]byte, start+elemSize-buf.Len()))
	}

	buf.Write(playData.Bytes())

	return buf.Bytes()
}
