// SPDX-License-Identifier: EPL-2.0

package soundbank

import "errors"

var (
	ErrBadFormat                = errors.New("malformed sound bank")
	ErrUnsupportedVariationType = errors.New("unsupported variation table type")
	ErrUnknownWaveBank          = errors.New("referenced wave bank not registered")
	ErrCueNotFound              = errors.New("cue not found")
	ErrOutOfRangeReference      = errors.New("wave reference out of range")
)
