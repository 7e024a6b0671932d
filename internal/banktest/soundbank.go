// SPDX-License-Identifier: EPL-2.0

package banktest

import (
	"bytes"
	"encoding/binary"
)

// Variation table entry encodings.
const (
	TableWave        = 0
	TableSound       = 1
	TableCompactWave = 4
)

// SoundSpec describes one sound record. A simple record references a wave
// directly; a complex one nests other records (clips) by index into
// SoundBankSpec.Sounds.
type SoundSpec struct {
	Complex       bool
	TrackIndex    uint16
	WaveBankIndex uint8
	Clips         []int
}

func (s SoundSpec) size() int {
	// flags + category + volume + pitch + priority + entry length.
	const fixed = 1 + 2 + 1 + 2 + 1 + 2
	if s.Complex {
		return fixed + 1 + 9*len(s.Clips)
	}

	return fixed + 3
}

// VariationEntry is one row of a complex cue's variation table. Which
// fields apply depends on the table type.
type VariationEntry struct {
	TrackIndex    uint16
	WaveBankIndex uint8
	SoundIndex    int // TableSound only
	WeightMin     byte
	WeightMax     byte
}

// ComplexCueSpec describes one record of the complex cue table. With
// SoundCue set the record carries a single sound reference (flags bit 2);
// otherwise it points at a variation table.
type ComplexCueSpec struct {
	SoundCue   bool
	SoundIndex int
	TableType  uint16
	Entries    []VariationEntry
}

func (c ComplexCueSpec) tableSize() int {
	size := 2 + 2 + 4 // entry count + flags + reserved
	switch c.TableType {
	case TableWave:
		size += 5 * len(c.Entries)
	case TableSound:
		size += 6 * len(c.Entries)
	case TableCompactWave:
		size += 3 * len(c.Entries)
	}

	return size
}

// SoundBankSpec describes a sound-bank fixture. CueNames covers simple
// cues first, then complex, index-aligned with the two tables.
type SoundBankSpec struct {
	WaveBanks []string
	CueNames  []string
	Simple    []int // sound index per simple cue
	Complex   []ComplexCueSpec
	Sounds    []SoundSpec
}

const soundBankHeaderSize = 74

// BuildSoundBank lays out a complete sound-bank file for the spec.
func BuildSoundBank(spec SoundBankSpec) []byte {
	cueNames := new(bytes.Buffer)
	for _, name := range spec.CueNames {
		cueNames.WriteString(name)
		cueNames.WriteByte(0)
	}

	wbNamesOffset := soundBankHeaderSize
	cueNamesOffset := wbNamesOffset + 64*len(spec.WaveBanks)
	soundsOffset := cueNamesOffset + cueNames.Len()

	// Sound records can reference each other, so assign offsets first.
	soundOffsets := make([]int, len(spec.Sounds))
	next := soundsOffset
	for i, s := range spec.Sounds {
		soundOffsets[i] = next
		next += s.size()
	}

	tablesOffset := next
	tableOffsets := make([]int, len(spec.Complex))
	for i, c := range spec.Complex {
		tableOffsets[i] = next
		if !c.SoundCue {
			next += c.tableSize()
		}
	}

	simpleCuesOffset := next
	complexCuesOffset := simpleCuesOffset + 5*len(spec.Simple)

	buf := new(bytes.Buffer)
	le := func(v any) { binary.Write(buf, binary.LittleEndian, v) }

	buf.WriteString("SDBK")
	le(uint16(46))   // tool version
	le(uint16(43))   // format version
	le(uint16(0))    // crc
	le(uint32(0))    // last modified low
	le(uint32(0))    // last modified high
	buf.WriteByte(1) // platform
	le(uint16(len(spec.Simple)))
	le(uint16(len(spec.Complex)))
	le(uint16(0)) // unknown
	le(uint16(len(spec.Simple) + len(spec.Complex)))
	buf.WriteByte(byte(len(spec.WaveBanks)))
	le(uint16(len(spec.Sounds)))
	le(uint16(cueNames.Len()))
	le(uint16(0)) // unknown
	le(uint32(simpleCuesOffset))
	le(uint32(complexCuesOffset))
	le(uint32(cueNamesOffset))
	le(uint32(0)) // unknown
	le(uint32(tablesOffset))
	le(uint32(0)) // unknown
	le(uint32(wbNamesOffset))
	le(uint32(0)) // cue name hash table
	le(uint32(0)) // cue name hash values
	le(uint32(soundsOffset))

	for _, name := range spec.WaveBanks {
		padded := make([]byte, 64)
		copy(padded, name)
		buf.Write(padded)
	}

	buf.Write(cueNames.Bytes())

	for _, s := range spec.Sounds {
		var flags byte
		if s.Complex {
			flags |= 0x1
		}
		buf.WriteByte(flags)
		le(uint16(0))    // category
		buf.WriteByte(0) // volume
		le(int16(0))     // pitch
		buf.WriteByte(0) // priority
		le(uint16(0))    // entry length
		if s.Complex {
			buf.WriteByte(byte(len(s.Clips)))
			for _, clip := range s.Clips {
				buf.WriteByte(0) // clip volume
				le(uint32(soundOffsets[clip]))
				le(uint32(0)) // reserved
			}
		} else {
			le(s.TrackIndex)
			buf.WriteByte(s.WaveBankIndex)
		}
	}

	for _, c := range spec.Complex {
		if c.SoundCue {
			continue
		}
		le(uint16(len(c.Entries)))
		le(c.TableType << 3) // variation flags
		buf.WriteByte(0)
		le(uint16(0))
		buf.WriteByte(0)
		for _, e := range c.Entries {
			switch c.TableType {
			case TableWave:
				le(e.TrackIndex)
				buf.WriteByte(e.WaveBankIndex)
				buf.WriteByte(e.WeightMin)
				buf.WriteByte(e.WeightMax)
			case TableSound:
				le(uint32(soundOffsets[e.SoundIndex]))
				buf.WriteByte(e.WeightMin)
				buf.WriteByte(e.WeightMax)
			case TableCompactWave:
				le(e.TrackIndex)
				buf.WriteByte(e.WaveBankIndex)
			}
		}
	}

	for _, soundIndex := range spec.Simple {
		buf.WriteByte(0) // cue flags
		le(uint32(soundOffsets[soundIndex]))
	}

	for i, c := range spec.Complex {
		if c.SoundCue {
			buf.WriteByte(0x04)
			le(uint32(soundOffsets[c.SoundIndex]))
			le(uint32(0)) // reserved
		} else {
			buf.WriteByte(0)
			le(uint32(tableOffsets[i]))
			le(uint32(0)) // transition table offset
			le(uint32(0)) // instance limit record
			le(uint16(0))
		}
	}

	return buf.Bytes()
}
