// SPDX-License-Identifier: EPL-2.0

package wavebank

import "errors"

var (
	ErrBadFormat        = errors.New("malformed wave bank")
	ErrUnsupportedCodec = errors.New("unsupported wave bank codec")
)
