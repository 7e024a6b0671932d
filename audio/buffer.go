// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"

	goaudio "github.com/go-audio/audio"
)

// IntBuffer converts a PCM wave into a go-audio buffer, one int per sample,
// interleaved. Compressed waves cannot be represented this way and return
// ErrNotPCM; decode them with a platform codec first.
func (w *Wave) IntBuffer() (*goaudio.IntBuffer, error) {
	if w.Kind != KindPCM {
		return nil, ErrNotPCM
	}

	if len(w.Data)%2 != 0 {
		return nil, ErrOddPCMLength
	}

	data := make([]int, len(w.Data)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(w.Data[2*i : 2*i+2])))
	}

	return &goaudio.IntBuffer{
		Data: data,
		Format: &goaudio.Format{
			NumChannels: w.Channels,
			SampleRate:  w.SampleRate,
		},
		SourceBitDepth: 16,
	}, nil
}
