// SPDX-License-Identifier: EPL-2.0

package wavebank

// Tag identifies the codec of one entry, as stored in the packed
// mini-waveform descriptor.
type Tag uint32

const (
	TagPCM   Tag = 0
	TagXMA   Tag = 1
	TagADPCM Tag = 2
	TagWMA   Tag = 3
)

// layout gives the bit widths of the packed mini-waveform fields, read
// least-significant-bit first: codec, channels, sample rate, block align.
// Version 1 banks spend only one bit on the codec.
type layout struct {
	tagBits     uint
	channelBits uint
	rateBits    uint
	alignBits   uint
}

var (
	layoutV1     = layout{tagBits: 1, channelBits: 3, rateBits: 18, alignBits: 8}
	layoutLatest = layout{tagBits: 2, channelBits: 3, rateBits: 18, alignBits: 8}
)

func layoutFor(version uint32) layout {
	if version == 1 {
		return layoutV1
	}

	return layoutLatest
}

// miniFormat is the unpacked descriptor of one entry.
type miniFormat struct {
	tag      Tag
	channels int
	rate     int
	align    int
}

func (l layout) unpack(v uint32) miniFormat {
	take := func(bits uint) uint32 {
		field := v & (1<<bits - 1)
		v >>= bits
		return field
	}

	return miniFormat{
		tag:      Tag(take(l.tagBits)),
		channels: int(take(l.channelBits)),
		rate:     int(take(l.rateBits)),
		align:    int(take(l.alignBits)),
	}
}
