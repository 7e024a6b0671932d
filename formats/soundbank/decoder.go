// SPDX-License-Identifier: EPL-2.0

package soundbank

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/internal/bankio"
)

var magic = []byte("SDBK")

// Lookup resolves a bank name to a decoded wave bank. *audio.Registry
// satisfies it.
type Lookup interface {
	Lookup(name string) (*audio.WaveBank, bool)
}

// SoundBank is a named set of cues referencing wave-bank entries. It is
// constructed unloaded: the file is opened and parsed on the first cue
// access, so wave banks and sound banks can be created in either order as
// long as the registry holds the referenced banks by then.
type SoundBank struct {
	fileName string
	open     audio.OpenFunc
	banks    Lookup

	mtx       sync.Mutex
	loaded    bool
	waveBanks []*audio.WaveBank
	cues      map[string]Cue
}

// New creates an unloaded sound bank. Nothing is read until the first
// GetCue call.
func New(fileName string, open audio.OpenFunc, banks Lookup) *SoundBank {
	return &SoundBank{
		fileName: fileName,
		open:     open,
		banks:    banks,
	}
}

// FileName reports the resource name this bank parses on first access.
func (sb *SoundBank) FileName() string { return sb.fileName }

func badFormat(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadFormat, what, err)
	}

	return fmt.Errorf("%w: %s", ErrBadFormat, what)
}

// GetCue returns the named cue, loading the bank first if needed. The
// load-once transition is serialized so concurrent first accesses cannot
// parse the file twice or observe a half-built cue table.
func (sb *SoundBank) GetCue(name string) (Cue, error) {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()

	if !sb.loaded {
		if err := sb.load(); err != nil {
			return nil, err
		}
		sb.loaded = true
	}

	cue, ok := sb.cues[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCueNotFound, name)
	}

	return cue, nil
}

// PlayCue resolves the named cue and hands its wave to the player.
func (sb *SoundBank) PlayCue(name string, player audio.Player) error {
	cue, err := sb.GetCue(name)
	if err != nil {
		return err
	}

	wave, err := cue.Wave()
	if err != nil {
		return err
	}

	return player.Play(wave)
}

// resolveDirect looks a wave up through this bank's own referenced-bank
// list, then by track index inside the bank.
func (sb *SoundBank) resolveDirect(bankIndex uint8, track uint16) (*audio.Wave, error) {
	if int(bankIndex) >= len(sb.waveBanks) {
		return nil, fmt.Errorf("%w: wave bank %d of %d", ErrOutOfRangeReference, bankIndex, len(sb.waveBanks))
	}

	bank := sb.waveBanks[bankIndex]
	if int(track) >= bank.Len() {
		return nil, fmt.Errorf("%w: track %d of %d in %q", ErrOutOfRangeReference, track, bank.Len(), bank.Name)
	}

	return bank.Entries[track], nil
}

func (sb *SoundBank) load() error {
	r, err := sb.open(sb.fileName)
	if err != nil {
		return fmt.Errorf("opening %s: %w", sb.fileName, err)
	}

	cur := bankio.NewCursor(r)

	tag, err := cur.Bytes(4)
	if err != nil {
		return badFormat("magic", err)
	}
	if !bytes.Equal(tag, magic) {
		return badFormat(fmt.Sprintf("magic %q", tag), nil)
	}

	hdr, err := readHeader(cur)
	if err != nil {
		return err
	}

	if err := sb.readWaveBankNames(cur, hdr); err != nil {
		return err
	}

	names, err := readCueNames(cur, hdr)
	if err != nil {
		return err
	}
	if len(names) < int(hdr.numSimpleCues)+int(hdr.numComplexCues) {
		return badFormat("cue name table shorter than cue count", nil)
	}

	sb.cues = make(map[string]Cue, len(names))
	if err := sb.readSimpleCues(cur, hdr, names); err != nil {
		return err
	}
	if err := sb.readComplexCues(cur, hdr, names); err != nil {
		return err
	}

	return nil
}

// header holds the scalar fields of the bank header. All fields are
// consumed in file order even when unused, since the offsets that follow
// are absolute.
type header struct {
	numSimpleCues   uint16
	numComplexCues  uint16
	numWaveBanks    uint8
	cueNameTableLen uint16

	simpleCuesOffset  uint32
	complexCuesOffset uint32
	cueNamesOffset    uint32
	wbNamesOffset     uint32
}

func readHeader(cur *bankio.Cursor) (header, error) {
	var hdr header

	// tool version, format version, crc, two modification-time words,
	// platform byte.
	if err := cur.Skip(2 + 2 + 2 + 4 + 4 + 1); err != nil {
		return hdr, badFormat("header", err)
	}

	var err error
	read16 := func(dst *uint16) {
		if err != nil {
			return
		}
		*dst, err = cur.Uint16()
	}
	read32 := func(dst *uint32) {
		if err != nil {
			return
		}
		*dst, err = cur.Uint32()
	}
	discard16 := func() { var v uint16; read16(&v) }
	discard32 := func() { var v uint32; read32(&v) }

	read16(&hdr.numSimpleCues)
	read16(&hdr.numComplexCues)
	discard16() // unknown
	discard16() // total cue count
	if err == nil {
		hdr.numWaveBanks, err = cur.Byte()
	}
	discard16() // sound count
	read16(&hdr.cueNameTableLen)
	discard16() // unknown
	read32(&hdr.simpleCuesOffset)
	read32(&hdr.complexCuesOffset)
	read32(&hdr.cueNamesOffset)
	discard32() // unknown
	discard32() // variation tables offset
	discard32() // unknown
	read32(&hdr.wbNamesOffset)
	discard32() // cue name hash table offset
	discard32() // cue name hash values offset
	discard32() // sounds offset
	if err != nil {
		return hdr, badFormat("header", err)
	}

	return hdr, nil
}

// readWaveBankNames resolves the bank reference list against the
// registry. The registry must already hold every referenced bank.
func (sb *SoundBank) readWaveBankNames(cur *bankio.Cursor, hdr header) error {
	if err := cur.Seek(int64(hdr.wbNamesOffset)); err != nil {
		return badFormat("wave bank name table", err)
	}

	sb.waveBanks = make([]*audio.WaveBank, 0, hdr.numWaveBanks)
	for i := 0; i < int(hdr.numWaveBanks); i++ {
		raw, err := cur.Bytes(64)
		if err != nil {
			return badFormat("wave bank name", err)
		}
		name := strings.TrimRight(string(raw), "\x00")

		bank, ok := sb.banks.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWaveBank, name)
		}
		sb.waveBanks = append(sb.waveBanks, bank)
	}

	return nil
}

func readCueNames(cur *bankio.Cursor, hdr header) ([]string, error) {
	if err := cur.Seek(int64(hdr.cueNamesOffset)); err != nil {
		return nil, badFormat("cue name table", err)
	}

	blob, err := cur.Bytes(int(hdr.cueNameTableLen))
	if err != nil {
		return nil, badFormat("cue name table", err)
	}
	if len(blob) == 0 {
		return nil, nil
	}

	return strings.Split(strings.TrimRight(string(blob), "\x00"), "\x00"), nil
}

func (sb *SoundBank) readSimpleCues(cur *bankio.Cursor, hdr header, names []string) error {
	if err := cur.Seek(int64(hdr.simpleCuesOffset)); err != nil {
		return badFormat("simple cue table", err)
	}

	for i := 0; i < int(hdr.numSimpleCues); i++ {
		if _, err := cur.Byte(); err != nil { // cue flags
			return badFormat("simple cue flags", err)
		}
		soundOffset, err := cur.Uint32()
		if err != nil {
			return badFormat("simple cue sound offset", err)
		}

		sound, err := sb.parseSound(cur, soundOffset)
		if err != nil {
			return err
		}

		name := names[i]
		sb.cues[name] = &Simple{name: name, sound: sound}
	}

	return nil
}

func (sb *SoundBank) readComplexCues(cur *bankio.Cursor, hdr header, names []string) error {
	if err := cur.Seek(int64(hdr.complexCuesOffset)); err != nil {
		return badFormat("complex cue table", err)
	}

	for i := 0; i < int(hdr.numComplexCues); i++ {
		name := names[int(hdr.numSimpleCues)+i]

		flags, err := cur.Byte()
		if err != nil {
			return badFormat("complex cue flags", err)
		}

		if flags&0x4 != 0 {
			// A single sound reference living in the complex table.
			soundOffset, err := cur.Uint32()
			if err != nil {
				return badFormat("complex cue sound offset", err)
			}
			if _, err := cur.Uint32(); err != nil { // reserved
				return badFormat("complex cue reserved", err)
			}

			sound, err := sb.parseSound(cur, soundOffset)
			if err != nil {
				return err
			}
			sb.cues[name] = &Simple{name: name, sound: sound}
			continue
		}

		tableOffset, err := cur.Uint32()
		if err != nil {
			return badFormat("variation table offset", err)
		}
		if _, err := cur.Uint32(); err != nil { // transition table offset
			return badFormat("transition table offset", err)
		}

		// The table parse seeks away; the outer cue loop must continue
		// right after this record.
		saved, err := cur.Pos()
		if err != nil {
			return badFormat("complex cue table", err)
		}

		cue, err := sb.readVariationTable(cur, name, tableOffset)
		if err != nil {
			return err
		}
		sb.cues[name] = cue

		if err := cur.Seek(saved); err != nil {
			return badFormat("complex cue table", err)
		}

		// The cue record trails a 6-byte instance-limit block in this
		// branch; consume it so the next record starts cleanly.
		if err := cur.Skip(6); err != nil {
			return badFormat("instance limit", err)
		}
	}

	return nil
}

func (sb *SoundBank) readVariationTable(cur *bankio.Cursor, name string, offset uint32) (*Complex, error) {
	if err := cur.Seek(int64(offset)); err != nil {
		return nil, badFormat("variation table", err)
	}

	numEntries, err := cur.Uint16()
	if err != nil {
		return nil, badFormat("variation entry count", err)
	}
	variationFlags, err := cur.Uint16()
	if err != nil {
		return nil, badFormat("variation flags", err)
	}
	if err := cur.Skip(4); err != nil { // reserved / alignment
		return nil, badFormat("variation table", err)
	}

	tableType := variationFlags >> 3 & 0x7

	sounds := make([]*Sound, 0, numEntries)
	for i := 0; i < int(numEntries); i++ {
		switch tableType {
		case 0: // wave
			track, err := cur.Uint16()
			if err != nil {
				return nil, badFormat("wave variation entry", err)
			}
			bankIndex, err := cur.Byte()
			if err != nil {
				return nil, badFormat("wave variation entry", err)
			}
			// Weight bytes are consumed but not retained in this subset.
			if err := cur.Skip(2); err != nil {
				return nil, badFormat("wave variation weights", err)
			}

			sounds = append(sounds, &Sound{owner: sb, track: track, bankIndex: bankIndex})

		case 1: // sound
			soundOffset, err := cur.Uint32()
			if err != nil {
				return nil, badFormat("sound variation entry", err)
			}
			if err := cur.Skip(2); err != nil { // weights, not retained
				return nil, badFormat("sound variation weights", err)
			}

			sound, err := sb.parseSound(cur, soundOffset)
			if err != nil {
				return nil, err
			}
			sounds = append(sounds, sound)

		case 4: // compact wave, no weights present
			track, err := cur.Uint16()
			if err != nil {
				return nil, badFormat("compact wave variation entry", err)
			}
			bankIndex, err := cur.Byte()
			if err != nil {
				return nil, badFormat("compact wave variation entry", err)
			}

			sounds = append(sounds, &Sound{owner: sb, track: track, bankIndex: bankIndex})

		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVariationType, tableType)
		}
	}

	return &Complex{
		name:    name,
		sounds:  sounds,
		weights: make([]float32, numEntries),
	}, nil
}
