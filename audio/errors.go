// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrNotPCM       = errors.New("wave does not hold PCM data")
	ErrOddPCMLength = errors.New("PCM data length must be a multiple of 2")
)
