// SPDX-License-Identifier: EPL-2.0

// Package wavebank decodes the wave-bank audio container.
//
// A wave bank is a versioned binary file holding raw or compressed audio
// payloads plus per-entry metadata. The layout is not fixed: the segment
// table size, the bank-name width, the per-entry metadata element size and
// the packed format field widths all vary with the version number embedded
// in the file, and a "compact" flag switches entries to a packed
// one-word-per-entry encoding whose lengths are derived from neighbouring
// offsets.
//
// Decoding is eager: every entry's payload is read and converted at
// Decode time, so the returned bank is immediately playable and never
// touches the stream again.
//
//	dec := wavebank.Decoder{}
//	bank, err := dec.Decode(bytes.NewReader(data))
//	if err != nil {
//	    // the whole bank failed; there is no partial success
//	}
//	reg.Register(bank)
//
// Supported entry codecs are PCM (passthrough), MS-ADPCM (converted to
// PCM via the codec package or a caller-supplied audio.ADPCMFunc), and
// WMA/M4A containers (passed through opaque for a platform decoder).
// Anything else fails the decode with ErrUnsupportedCodec.
package wavebank
