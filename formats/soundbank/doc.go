// SPDX-License-Identifier: EPL-2.0

// Package soundbank decodes the sound-bank cue container.
//
// A sound bank maps cue names to playable units. Simple cues own one
// sound record; complex cues own a variation table of alternatives, where
// each row is either a direct wave reference or a nested sound record.
// Wave references are (bank name, track index) pairs: the bank name list
// is part of the file, and resolution goes through a registry of decoded
// wave banks.
//
// Loading is deferred. New stores only the resource name; the file is
// opened and fully parsed on the first GetCue, under a mutex, so two
// goroutines racing the first access still produce exactly one parse:
//
//	sb := soundbank.New("sounds.xsb", opener, registry)
//	cue, err := sb.GetCue("Explosion")
//	wave, err := cue.Wave()
//
// Because of the deferred load, wave banks only have to be registered
// before the first cue access, not before the sound bank is constructed.
package soundbank
