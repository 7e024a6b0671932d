// SPDX-License-Identifier: EPL-2.0

package xactbank

import (
	"fmt"
	"io"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/formats/soundbank"
	"github.com/ik5/xactbank/formats/wavebank"
)

// Engine ties the decoders to their collaborators: the shared wave-bank
// registry, the resource opener, and an optional ADPCM converter
// override. It is the process-scoped context both bank kinds are created
// through; there is no hidden global.
type Engine struct {
	Banks *audio.Registry

	// ADPCM overrides the converter used for compressed wave-bank
	// entries. Nil selects the pure-Go default.
	ADPCM audio.ADPCMFunc

	open audio.OpenFunc
}

// NewEngine creates an engine that opens named resources through open.
func NewEngine(open audio.OpenFunc) *Engine {
	return &Engine{
		Banks: audio.NewRegistry(),
		open:  open,
	}
}

// LoadWaveBank decodes a wave bank from r and publishes it in the
// registry under its embedded name. Registration happens only after the
// whole bank decoded, so readers never see a partial bank.
func (e *Engine) LoadWaveBank(r io.ReadSeeker) (*audio.WaveBank, error) {
	dec := wavebank.Decoder{ADPCM: e.ADPCM}

	bank, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}

	e.Banks.Register(bank)

	return bank, nil
}

// OpenWaveBank opens a named resource and loads it as a wave bank.
func (e *Engine) OpenWaveBank(name string) (*audio.WaveBank, error) {
	r, err := e.open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}

	return e.LoadWaveBank(r)
}

// NewSoundBank creates an unloaded sound bank bound to this engine's
// registry. The file is read on the first cue access.
func (e *Engine) NewSoundBank(fileName string) *soundbank.SoundBank {
	return soundbank.New(fileName, e.open, e.Banks)
}

// PlayCue resolves a cue from the sound bank and hands its wave to the
// player.
func (e *Engine) PlayCue(sb *soundbank.SoundBank, name string, player audio.Player) error {
	return sb.PlayCue(name, player)
}
