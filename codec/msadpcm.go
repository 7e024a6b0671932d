// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrBadChannelCount = errors.New("ADPCM channel count must be 1 or 2")
	ErrBadBlockAlign   = errors.New("ADPCM block alignment smaller than block header")
)

var adaptationTable = []int{
	230, 230, 230, 230, 307, 409, 512, 614,
	768, 614, 512, 409, 307, 230, 230, 230,
}

var adaptCoeff1 = []int{256, 512, 0, 192, 240, 460, 392}
var adaptCoeff2 = []int{0, -256, 0, 64, 0, -208, -232}

// channelState is the per-channel predictor state carried across the
// samples of one ADPCM block.
type channelState struct {
	coeff1  int
	coeff2  int
	delta   int
	sample1 int
	sample2 int
}

// decode expands one 4-bit code to a 16-bit sample and advances the
// predictor.
func (s *channelState) decode(nibble int) int16 {
	signed := nibble
	if signed >= 8 {
		signed -= 16
	}

	predicted := (s.sample1*s.coeff1+s.sample2*s.coeff2)>>8 + signed*s.delta
	if predicted > 32767 {
		predicted = 32767
	} else if predicted < -32768 {
		predicted = -32768
	}

	s.sample2 = s.sample1
	s.sample1 = predicted

	s.delta = adaptationTable[nibble] * s.delta / 256
	if s.delta < 16 {
		s.delta = 16
	}

	return int16(predicted)
}

// blockHeaderSize is 7 bytes per channel: predictor index, initial delta,
// and the two seed samples.
func blockHeaderSize(channels int) int { return 7 * channels }

// DecodeMSADPCM converts MS-ADPCM compressed bytes into 16-bit
// little-endian PCM. blockAlign is the full byte size of one block across
// all channels; a trailing partial block that cannot hold a complete
// header is ignored, matching what encoders emit.
func DecodeMSADPCM(data []byte, channels, blockAlign int) ([]byte, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrBadChannelCount, channels)
	}

	headerSize := blockHeaderSize(channels)
	if blockAlign < headerSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrBadBlockAlign, blockAlign, headerSize)
	}

	// Each block yields 2 seed samples per channel plus 2 codes per
	// remaining byte.
	samplesPerBlock := 2*channels + (blockAlign-headerSize)*2
	blocks := len(data) / blockAlign
	out := make([]byte, 0, blocks*samplesPerBlock*2)

	emit := func(s int16) {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}

	for pos := 0; pos+headerSize <= len(data); pos += blockAlign {
		block := data[pos:]
		if len(block) > blockAlign {
			block = block[:blockAlign]
		}

		states := make([]channelState, channels)
		for ch := range states {
			predictor := int(block[ch])
			if predictor >= len(adaptCoeff1) {
				predictor = len(adaptCoeff1) - 1
			}
			states[ch].coeff1 = adaptCoeff1[predictor]
			states[ch].coeff2 = adaptCoeff2[predictor]
		}
		for ch := range states {
			off := channels + 2*ch
			states[ch].delta = int(int16(binary.LittleEndian.Uint16(block[off : off+2])))
		}
		for ch := range states {
			off := 3*channels + 2*ch
			states[ch].sample1 = int(int16(binary.LittleEndian.Uint16(block[off : off+2])))
		}
		for ch := range states {
			off := 5*channels + 2*ch
			states[ch].sample2 = int(int16(binary.LittleEndian.Uint16(block[off : off+2])))
		}

		// The two header samples are PCM already, oldest first.
		for ch := range states {
			emit(int16(states[ch].sample2))
		}
		for ch := range states {
			emit(int16(states[ch].sample1))
		}

		for _, b := range block[headerSize:] {
			hi := int(b >> 4)
			lo := int(b & 0x0F)
			if channels == 1 {
				emit(states[0].decode(hi))
				emit(states[0].decode(lo))
			} else {
				emit(states[0].decode(hi))
				emit(states[1].decode(lo))
			}
		}
	}

	return out, nil
}
