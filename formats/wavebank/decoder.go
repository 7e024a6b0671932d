// SPDX-License-Identifier: EPL-2.0

package wavebank

import (
	"fmt"
	"io"
	"strings"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/codec"
	"github.com/ik5/xactbank/internal/bankio"
)

const (
	// flagCompact selects the packed one-word-per-entry metadata layout.
	flagCompact = 0x00020000

	// compactOffsetMask extracts the 21-bit aligned offset from a packed
	// compact entry word.
	compactOffsetMask = 0x1FFFFF

	maxSegments = 5
)

// segment is a byte range within the bank file.
type segment struct {
	offset uint32
	length uint32
}

type header struct {
	version     uint32
	lastSegment int
	segments    [maxSegments]segment
}

type bankInfo struct {
	flags         uint32
	entryCount    uint32
	name          string
	metaElemSize  uint32
	nameElemSize  uint32
	alignment     uint32
	compactFormat uint32
	metaOffset    int64
}

// entry is the transient per-item metadata; only the decoded wave survives.
type entry struct {
	format           uint32
	play             segment
	loop             segment
	flagsAndDuration uint32
}

// Decoder parses a wave-bank container and eagerly decodes every entry.
type Decoder struct {
	// ADPCM converts compressed entries to PCM. Leave nil to use the
	// pure-Go codec.DecodeMSADPCM.
	ADPCM audio.ADPCMFunc
}

func badFormat(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadFormat, what, err)
	}

	return fmt.Errorf("%w: %s", ErrBadFormat, what)
}

// Decode reads a whole bank. Any malformed field aborts the entire decode;
// entry offsets build on each other, so there is no per-entry recovery.
// The caller registers the returned bank wherever sound banks will look
// it up.
func (d Decoder) Decode(r io.ReadSeeker) (*audio.WaveBank, error) {
	cur := bankio.NewCursor(r)

	hdr, err := readHeader(cur)
	if err != nil {
		return nil, err
	}

	info, err := readInfo(cur, hdr)
	if err != nil {
		return nil, err
	}

	entries, err := readEntries(cur, hdr, info)
	if err != nil {
		return nil, err
	}

	adpcm := d.ADPCM
	if adpcm == nil {
		adpcm = codec.DecodeMSADPCM
	}

	bank := &audio.WaveBank{
		Name:    info.name,
		Entries: make([]*audio.Wave, 0, len(entries)),
	}

	fields := layoutFor(hdr.version)
	for i, e := range entries {
		wave, err := decodePayload(cur, fields.unpack(e.format), e.play, adpcm)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		bank.Entries = append(bank.Entries, wave)
	}

	return bank, nil
}

func readHeader(cur *bankio.Cursor) (header, error) {
	var hdr header

	// The tag is only required to be present; legacy tools wrote it in
	// either byte order and the rest of the layout disambiguates.
	if _, err := cur.Bytes(4); err != nil {
		return hdr, badFormat("magic tag", err)
	}

	version, err := cur.Uint32()
	if err != nil {
		return hdr, badFormat("version", err)
	}
	hdr.version = version

	hdr.lastSegment = 4
	if version <= 3 {
		hdr.lastSegment = 3
	}
	if version >= 42 {
		// Header version, carried but meaningless to the decode.
		if _, err := cur.Uint32(); err != nil {
			return hdr, badFormat("header version", err)
		}
	}

	for i := 0; i <= hdr.lastSegment; i++ {
		if hdr.segments[i].offset, err = cur.Uint32(); err != nil {
			return hdr, badFormat("segment table", err)
		}
		if hdr.segments[i].length, err = cur.Uint32(); err != nil {
			return hdr, badFormat("segment table", err)
		}
	}

	return hdr, nil
}

func readInfo(cur *bankio.Cursor, hdr header) (bankInfo, error) {
	var info bankInfo

	if err := cur.Seek(int64(hdr.segments[0].offset)); err != nil {
		return info, badFormat("bank info segment", err)
	}

	var err error
	if info.flags, err = cur.Uint32(); err != nil {
		return info, badFormat("flags", err)
	}
	if info.entryCount, err = cur.Uint32(); err != nil {
		return info, badFormat("entry count", err)
	}

	nameLen := 64
	if hdr.version == 2 || hdr.version == 3 {
		nameLen = 16
	}
	nameBytes, err := cur.Bytes(nameLen)
	if err != nil {
		return info, badFormat("bank name", err)
	}
	info.name = strings.TrimRight(string(nameBytes), "\x00")

	if hdr.version == 1 {
		// Version 1 has no sizing fields; metadata follows the name
		// directly at a fixed 20 bytes per entry.
		info.metaElemSize = 20
		if info.metaOffset, err = cur.Pos(); err != nil {
			return info, badFormat("metadata offset", err)
		}

		return info, nil
	}

	if info.metaElemSize, err = cur.Uint32(); err != nil {
		return info, badFormat("metadata element size", err)
	}
	if info.nameElemSize, err = cur.Uint32(); err != nil {
		return info, badFormat("entry name element size", err)
	}
	if info.alignment, err = cur.Uint32(); err != nil {
		return info, badFormat("alignment", err)
	}
	info.metaOffset = int64(hdr.segments[1].offset)

	if info.flags&flagCompact != 0 {
		if info.compactFormat, err = cur.Uint32(); err != nil {
			return info, badFormat("compact format", err)
		}
	}

	return info, nil
}

// playRegionBase is where entry payload offsets are relative to: the last
// segment when the header declares one, otherwise the end of the metadata
// table.
func playRegionBase(hdr header, info bankInfo) int64 {
	if off := hdr.segments[hdr.lastSegment].offset; off != 0 {
		return int64(off)
	}

	return info.metaOffset + int64(info.entryCount)*int64(info.metaElemSize)
}

func readEntries(cur *bankio.Cursor, hdr header, info bankInfo) ([]entry, error) {
	base := playRegionBase(hdr, info)
	entries := make([]entry, 0, info.entryCount)

	for i := uint32(0); i < info.entryCount; i++ {
		if err := cur.Seek(info.metaOffset + int64(i)*int64(info.metaElemSize)); err != nil {
			return nil, badFormat("entry metadata", err)
		}

		var (
			e   entry
			err error
		)
		switch {
		case info.flags&flagCompact != 0:
			e, err = readCompactEntry(cur, hdr, info, i)
		case hdr.version == 1:
			e, err = readEntryV1(cur)
		default:
			e, err = readEntryLatest(cur, hdr, info)
		}
		if err != nil {
			return nil, err
		}

		e.play.offset += uint32(base)
		entries = append(entries, e)
	}

	return entries, nil
}

// readCompactEntry decodes the packed one-word layout. The word holds only
// the aligned offset; an entry's length is the distance to the next
// entry's offset, or to the end of the play segment for the last one.
func readCompactEntry(cur *bankio.Cursor, hdr header, info bankInfo, i uint32) (entry, error) {
	var e entry

	word, err := cur.Uint32()
	if err != nil {
		return e, badFormat("compact entry", err)
	}

	e.format = info.compactFormat
	e.play.offset = (word & compactOffsetMask) * info.alignment

	var end uint32
	if i == info.entryCount-1 {
		end = hdr.segments[hdr.lastSegment].length
	} else {
		// Peek the next entry's word; its derived offset is where this
		// entry ends.
		if err := cur.Seek(info.metaOffset + int64(i+1)*int64(info.metaElemSize)); err != nil {
			return e, badFormat("compact entry lookahead", err)
		}
		next, err := cur.Uint32()
		if err != nil {
			return e, badFormat("compact entry lookahead", err)
		}
		end = (next & compactOffsetMask) * info.alignment
	}

	if end < e.play.offset {
		return e, badFormat(fmt.Sprintf("compact entry %d: negative length", i), nil)
	}
	e.play.length = end - e.play.offset

	return e, nil
}

func readEntryV1(cur *bankio.Cursor) (entry, error) {
	var (
		e   entry
		err error
	)

	read := func(dst *uint32) {
		if err != nil {
			return
		}
		*dst, err = cur.Uint32()
	}

	read(&e.format)
	read(&e.play.offset)
	read(&e.play.length)
	read(&e.loop.offset)
	read(&e.loop.length)
	if err != nil {
		return e, badFormat("entry metadata", err)
	}

	return e, nil
}

// readEntryLatest reads the general layout where the element size gates
// which fields are present; absent fields keep their zero value.
func readEntryLatest(cur *bankio.Cursor, hdr header, info bankInfo) (entry, error) {
	var (
		e   entry
		err error
	)

	read := func(dst *uint32, threshold uint32) {
		if err != nil || info.metaElemSize < threshold {
			return
		}
		*dst, err = cur.Uint32()
	}

	read(&e.flagsAndDuration, 4)
	read(&e.format, 8)
	read(&e.play.offset, 12)
	read(&e.play.length, 16)
	read(&e.loop.offset, 20)
	read(&e.loop.length, 24)
	if err != nil {
		return e, badFormat("entry metadata", err)
	}

	// Truncated metadata cannot carry a play length; old single-entry
	// banks expect the whole play segment in that case.
	if info.metaElemSize < 24 && e.play.length != 0 {
		e.play.length = hdr.segments[hdr.lastSegment].length
	}

	return e, nil
}

func decodePayload(cur *bankio.Cursor, mf miniFormat, play segment, adpcm audio.ADPCMFunc) (*audio.Wave, error) {
	if err := cur.Seek(int64(play.offset)); err != nil {
		return nil, badFormat("play region", err)
	}

	payload, err := cur.Bytes(int(play.length))
	if err != nil {
		return nil, badFormat("play region", err)
	}

	switch mf.tag {
	case TagPCM:
		return &audio.Wave{
			Data:       payload,
			SampleRate: mf.rate,
			Channels:   mf.channels,
			Kind:       audio.KindPCM,
		}, nil

	case TagADPCM:
		// The packed align field stores blockAlign/channels - 22.
		blockAlign := (mf.align + 22) * mf.channels
		pcm, err := adpcm(payload, mf.channels, blockAlign)
		if err != nil {
			return nil, fmt.Errorf("%w: ADPCM: %v", ErrBadFormat, err)
		}

		return &audio.Wave{
			Data:       pcm,
			SampleRate: mf.rate,
			Channels:   mf.channels,
			Kind:       audio.KindPCM,
		}, nil

	case TagWMA:
		kind, ok := codec.Detect(payload)
		if !ok {
			// XMA2 or raw xWMA packets: no platform decoder to hand
			// them to.
			return nil, fmt.Errorf("%w: unrecognized compressed payload", ErrUnsupportedCodec)
		}

		return &audio.Wave{
			Data:       payload,
			SampleRate: mf.rate,
			Channels:   mf.channels,
			Kind:       kind,
		}, nil

	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, mf.tag)
	}
}
