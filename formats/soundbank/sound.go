// SPDX-License-Identifier: EPL-2.0

package soundbank

import (
	"fmt"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/internal/bankio"
)

// Sound is one sound record from the bank stream: either a direct wave
// reference, or a complex record nesting further sound records (clips).
// Wave references stay name/index pairs until resolved; the sound never
// owns the wave data.
type Sound struct {
	owner *SoundBank

	complex  bool
	category uint16
	volume   byte
	pitch    int16

	// direct form
	track     uint16
	bankIndex uint8

	// complex form
	clips []*Sound
}

// Complex reports whether the record nests clips instead of referencing a
// wave directly.
func (s *Sound) Complex() bool { return s.complex }

// Ref returns the direct wave reference (bank index, track index). Only
// meaningful when Complex is false.
func (s *Sound) Ref() (uint8, uint16) { return s.bankIndex, s.track }

// Clips returns the nested sound records of a complex sound.
func (s *Sound) Clips() []*Sound { return s.clips }

func (s *Sound) wave() (*audio.Wave, error) {
	if !s.complex {
		return s.owner.resolveDirect(s.bankIndex, s.track)
	}

	// Complex records are decode-only in this subset; resolve through the
	// first clip so the cue still yields a playable wave.
	if len(s.clips) == 0 {
		return nil, ErrOutOfRangeReference
	}

	return s.clips[0].wave()
}

// parseSound reads a sound record at an absolute offset and restores the
// cursor afterwards, since callers are mid-way through iterating a cue or
// variation table.
func (sb *SoundBank) parseSound(cur *bankio.Cursor, offset uint32) (*Sound, error) {
	saved, err := cur.Pos()
	if err != nil {
		return nil, badFormat("sound record", err)
	}
	defer cur.Seek(saved)

	if err := cur.Seek(int64(offset)); err != nil {
		return nil, badFormat("sound record", err)
	}

	return sb.readSound(cur)
}

func (sb *SoundBank) readSound(cur *bankio.Cursor) (*Sound, error) {
	s := &Sound{owner: sb}

	flags, err := cur.Byte()
	if err != nil {
		return nil, badFormat("sound flags", err)
	}
	s.complex = flags&0x1 != 0

	if s.category, err = cur.Uint16(); err != nil {
		return nil, badFormat("sound category", err)
	}
	if s.volume, err = cur.Byte(); err != nil {
		return nil, badFormat("sound volume", err)
	}
	if s.pitch, err = cur.Int16(); err != nil {
		return nil, badFormat("sound pitch", err)
	}
	if _, err = cur.Byte(); err != nil { // priority
		return nil, badFormat("sound priority", err)
	}
	if _, err = cur.Uint16(); err != nil { // entry length
		return nil, badFormat("sound entry length", err)
	}

	if !s.complex {
		if s.track, err = cur.Uint16(); err != nil {
			return nil, badFormat("sound track index", err)
		}
		if s.bankIndex, err = cur.Byte(); err != nil {
			return nil, badFormat("sound bank index", err)
		}

		return s, nil
	}

	numClips, err := cur.Byte()
	if err != nil {
		return nil, badFormat("sound clip count", err)
	}

	s.clips = make([]*Sound, 0, numClips)
	for i := 0; i < int(numClips); i++ {
		if _, err := cur.Byte(); err != nil { // clip volume
			return nil, badFormat("clip volume", err)
		}
		clipOffset, err := cur.Uint32()
		if err != nil {
			return nil, badFormat("clip offset", err)
		}
		if _, err := cur.Uint32(); err != nil { // reserved
			return nil, badFormat("clip reserved", err)
		}

		clip, err := sb.parseSound(cur, clipOffset)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		s.clips = append(s.clips, clip)
	}

	return s, nil
}
