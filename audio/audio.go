// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Kind classifies the payload of a decoded wave.
type Kind int

const (
	// KindPCM is uncompressed 16-bit little-endian PCM.
	KindPCM Kind = iota
	// KindWMA is an ASF-wrapped WMA payload, passed through opaque for a
	// platform decoder.
	KindWMA
	// KindM4A is an MP4/M4A payload, passed through opaque for a platform
	// decoder.
	KindM4A
)

func (k Kind) String() string {
	switch k {
	case KindPCM:
		return "pcm"
	case KindWMA:
		return "wma"
	case KindM4A:
		return "m4a"
	default:
		return "unknown"
	}
}

// Wave is one fully decoded wave-bank entry: either raw PCM or a natively
// playable compressed buffer, plus the sample rate and channel count the
// container declared for it.
type Wave struct {
	Data       []byte
	SampleRate int
	Channels   int
	Kind       Kind
}

// WaveBank is a named, fully decoded bank. Entries are indexed by their
// position in the container (the sound bank's track index).
type WaveBank struct {
	Name    string
	Entries []*Wave
}

// Len reports the number of entries in the bank.
func (b *WaveBank) Len() int { return len(b.Entries) }

// Player starts playback of a decoded wave. Implementations live outside
// this module (platform mixers, test fakes).
type Player interface {
	Play(w *Wave) error
}

// OpenFunc opens a named resource as a seekable byte stream. Sound banks use
// it to defer reading the file until the first cue access.
type OpenFunc func(name string) (io.ReadSeeker, error)

// ADPCMFunc converts MS-ADPCM bytes to 16-bit PCM. blockAlign is the full
// byte size of one ADPCM block across all channels.
type ADPCMFunc func(data []byte, channels, blockAlign int) ([]byte, error)

// Registry maps bank names to decoded wave banks. It is the shared state
// between wave-bank decoding (writers) and sound-bank resolution (readers);
// banks must be registered only after their decode fully completed.
type Registry struct {
	banks map[string]*WaveBank

	mtx sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		banks: make(map[string]*WaveBank),
	}
}

// Register publishes a bank under its decoded name. A later bank with the
// same name replaces the earlier one; the container toolchain performs no
// uniqueness check and neither do we.
func (r *Registry) Register(bank *WaveBank) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.banks[bank.Name] = bank
}

func (r *Registry) Lookup(name string) (*WaveBank, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	bank, ok := r.banks[name]
	return bank, ok
}
