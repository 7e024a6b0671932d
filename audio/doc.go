// SPDX-License-Identifier: EPL-2.0

// Package audio holds the shared types that the wave-bank and sound-bank
// decoders exchange.
//
// # Waves and Banks
//
// A Wave is one fully decoded audio item: raw 16-bit PCM, or an opaque
// natively playable compressed buffer (WMA/M4A), together with its sample
// rate and channel count. A WaveBank is a named ordered collection of
// Waves, decoded eagerly when the bank container is parsed.
//
// # Registry
//
// The Registry maps bank names to decoded banks. Wave-bank decoding writes
// into it, sound-bank cue resolution reads from it; the two may run in
// either order because sound banks store bank references by name and
// resolve them only when first loaded:
//
//	reg := audio.NewRegistry()
//	reg.Register(bank)
//	bank, ok := reg.Lookup("Waves")
//
// Banks must be registered only after their decode completed, so a reader
// can never observe a half-decoded bank under a published name.
//
// # Collaborators
//
// Player, OpenFunc and ADPCMFunc are the seams to the platform: playback,
// named-resource access and ADPCM sample conversion are provided by the
// caller, not implemented here. The codec package supplies a pure-Go
// ADPCMFunc default.
//
// # go-audio interoperability
//
// Wave.IntBuffer converts PCM waves into github.com/go-audio/audio buffers
// for use with encoders and processing pipelines from that ecosystem.
package audio
