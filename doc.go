// SPDX-License-Identifier: EPL-2.0

// Package xactbank decodes the XACT binary audio-container format pair:
// wave banks (raw or compressed audio payloads with per-entry metadata)
// and sound banks (named playable cues referencing wave-bank entries,
// optionally through variation tables).
//
// # Banks and Cues
//
// A wave bank decodes eagerly: every entry's payload is read, classified
// by codec and converted at decode time, producing an audio.WaveBank of
// playable waves. A sound bank decodes lazily: it stores only a resource
// name until the first cue access, then parses its cue tables and
// resolves wave-bank references by name through a shared registry. The
// two may therefore be constructed in either order.
//
// # Quick Start
//
//	engine := xactbank.NewEngine(func(name string) (io.ReadSeeker, error) {
//	    return os.Open(name)
//	})
//
//	// Decode and register a wave bank.
//	bank, err := engine.OpenWaveBank("Waves.xwb")
//
//	// Sound banks load on first cue access.
//	sounds := engine.NewSoundBank("Sounds.xsb")
//	cue, err := sounds.GetCue("Explosion")
//	wave, err := cue.Wave()
//
// # Format Decoders
//
// Each container has its own decoder package:
//
//	// Wave banks (formats/wavebank)
//	dec := wavebank.Decoder{}
//	bank, err := dec.Decode(reader)
//
//	// Sound banks (formats/soundbank)
//	sb := soundbank.New("Sounds.xsb", opener, registry)
//
// The decoders share the audio package's types: Wave, WaveBank and the
// Registry that maps bank names to decoded banks.
//
// # Codecs
//
// Supported entry payloads are PCM (passthrough), MS-ADPCM (expanded to
// PCM by the codec package), and WMA/M4A containers (detected by
// signature and passed through opaque for a platform decoder). XMA and
// unrecognized compressed payloads fail the decode with a clean
// ErrUnsupportedCodec instead of producing unplayable waves.
//
// # Errors
//
// Decoding has no partial-success path: a bank either fully decodes or
// the operation fails with a sentinel error (wavebank.ErrBadFormat,
// wavebank.ErrUnsupportedCodec, soundbank.ErrUnknownWaveBank, ...) that
// callers test with errors.Is.
//
// # go-audio interoperability
//
// Decoded PCM waves convert to github.com/go-audio/audio buffers via
// Wave.IntBuffer, which is how cmd/xwb2wav writes bank entries out as
// WAV files.
package xactbank
