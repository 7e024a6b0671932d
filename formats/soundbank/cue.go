// SPDX-License-Identifier: EPL-2.0

package soundbank

import "github.com/ik5/xactbank/audio"

// Cue is a named playable unit: either a single sound or a set of
// alternative sounds from a variation table.
type Cue interface {
	Name() string
	// Wave resolves the cue to a decoded wave-bank entry.
	Wave() (*audio.Wave, error)
}

// Simple is a cue owning exactly one sound.
type Simple struct {
	name  string
	sound *Sound
}

func (c *Simple) Name() string { return c.name }

func (c *Simple) Wave() (*audio.Wave, error) { return c.sound.wave() }

// Sound exposes the cue's single sound record.
func (c *Simple) Sound() *Sound { return c.sound }

// Complex is a cue owning an ordered set of alternative sounds with
// index-aligned selection weights.
//
// The legacy format subset decoded here reads the per-entry weight bytes
// but never retains them, so Weights stays all zero and no selection
// algorithm is applied: Wave resolves entry 0 deterministically.
type Complex struct {
	name    string
	sounds  []*Sound
	weights []float32
}

func (c *Complex) Name() string { return c.name }

func (c *Complex) Wave() (*audio.Wave, error) {
	if len(c.sounds) == 0 {
		return nil, ErrOutOfRangeReference
	}

	return c.sounds[0].wave()
}

// Sounds returns the cue's alternatives in table order.
func (c *Complex) Sounds() []*Sound { return c.sounds }

// Weights is index-aligned with Sounds. All zero in this subset.
func (c *Complex) Weights() []float32 { return c.weights }
