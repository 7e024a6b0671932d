// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"bytes"

	"github.com/ik5/xactbank/audio"
)

// ASF container GUID. A WMA payload stored inside a wave bank starts with
// the full 16-byte object id rather than any short tag.
var asfSignature = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

// MP4 "ftyp M4A " boxes, the two box sizes seen in shipped banks.
var m4aSignatures = [][]byte{
	{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x4D, 0x34, 0x41, 0x20, 0x00, 0x00, 0x00, 0x00},
	{0x00, 0x00, 0x00, 0x20, 0x66, 0x74, 0x79, 0x70, 0x4D, 0x34, 0x41, 0x20, 0x00, 0x00, 0x00, 0x00},
}

// Detect inspects the first bytes of a compressed payload and reports
// whether it is a container a platform decoder can play natively. The
// second return is false for payloads with no recognized signature
// (XMA2 or raw xWMA packets, which this module cannot play).
func Detect(data []byte) (audio.Kind, bool) {
	if bytes.HasPrefix(data, asfSignature) {
		return audio.KindWMA, true
	}

	for _, sig := range m4aSignatures {
		if bytes.HasPrefix(data, sig) {
			return audio.KindM4A, true
		}
	}

	return audio.KindPCM, false
}
