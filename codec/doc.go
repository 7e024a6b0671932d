// SPDX-License-Identifier: EPL-2.0

// Package codec holds the pure payload transforms used by the wave-bank
// decoder: MS-ADPCM to PCM expansion and compressed-container signature
// detection.
//
// Nothing here touches a stream or a registry; every function maps bytes
// to bytes (or to a classification) so the transforms stay independently
// testable.
package codec
