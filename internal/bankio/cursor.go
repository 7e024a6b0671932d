// SPDX-License-Identifier: EPL-2.0

// Package bankio provides a little-endian binary cursor over a seekable stream.
//
// Both bank container formats mix sequential field reads with absolute seeks
// driven by offsets read earlier in the file, so the cursor keeps seek and read
// behind one type with explicit errors instead of scattering
// binary.Read/Seek pairs through the decoders.
package bankio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrSeekOutOfRange = errors.New("seek position out of range")

// Cursor reads little-endian scalars from an io.ReadSeeker and tracks
// absolute positioning for offset-driven container layouts.
type Cursor struct {
	r   io.ReadSeeker
	buf [8]byte
}

func NewCursor(r io.ReadSeeker) *Cursor {
	return &Cursor{r: r}
}

// Seek moves to an absolute offset from the start of the stream.
// Negative offsets are rejected rather than passed through, since a
// negative value here always means corrupt offset arithmetic upstream.
func (c *Cursor) Seek(off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrSeekOutOfRange, off)
	}

	if _, err := c.r.Seek(off, io.SeekStart); err != nil {
		return err
	}

	return nil
}

// Pos reports the current absolute offset.
func (c *Cursor) Pos() (int64, error) {
	pos, err := c.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	return pos, nil
}

// Skip advances the cursor n bytes without interpreting them.
func (c *Cursor) Skip(n int64) error {
	if _, err := c.r.Seek(n, io.SeekCurrent); err != nil {
		return err
	}

	return nil
}

func (c *Cursor) fill(n int) error {
	if _, err := io.ReadFull(c.r, c.buf[:n]); err != nil {
		return err
	}

	return nil
}

func (c *Cursor) Byte() (byte, error) {
	if err := c.fill(1); err != nil {
		return 0, err
	}

	return c.buf[0], nil
}

func (c *Cursor) Uint16() (uint16, error) {
	if err := c.fill(2); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(c.buf[:2]), nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()

	return int16(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	if err := c.fill(4); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(c.buf[:4]), nil
}

// Bytes reads exactly n bytes into a fresh slice.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrSeekOutOfRange, n)
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(c.r, out); err != nil {
		return nil, err
	}

	return out, nil
}
