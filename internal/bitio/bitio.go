/*
   Copyright Mycophonic.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package bitio provides MSB-first bit-granular reads over a byte stream,
// sized for FLAC's big-endian bitstream layout.
package bitio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/icza/bitio"
)

// ErrUnexpectedEnd is returned when a read runs past the end of the underlying stream.
var ErrUnexpectedEnd = errors.New("bitio: unexpected end of stream")

// ErrNotAligned is returned by GetByte when the reader is not currently byte-aligned.
var ErrNotAligned = errors.New("bitio: reader is not byte-aligned")

// Reader draws unsigned/signed fixed-width fields and raw bytes from an
// underlying byte source, MSB-first. It tracks byte alignment itself since
// the wrapped icza/bitio.Reader does not expose its internal bit buffer.
type Reader struct {
	src      *bufio.Reader
	bio      *bitio.Reader
	bitsRead uint64
}

// NewReader returns a Reader drawing bits from r.
func NewReader(r io.Reader) *Reader {
	buf := bufio.NewReader(r)

	return &Reader{src: buf, bio: bitio.NewReader(buf)}
}

// GetUint reads n bits (1..64) MSB-first and returns them as an unsigned value.
func (r *Reader) GetUint(n uint8) (uint64, error) {
	v, err := r.bio.ReadBits(n)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %d bits: %v", ErrUnexpectedEnd, n, err) //nolint:errorlint
	}

	r.bitsRead += uint64(n)

	return v, nil
}

// GetInt reads n bits (1..64) MSB-first and sign-extends from bit n-1 to int64.
func (r *Reader) GetInt(n uint8) (int64, error) {
	u, err := r.GetUint(n)
	if err != nil {
		return 0, err
	}

	return signExtend(u, n), nil
}

// signExtend interprets the low n bits of u as a two's-complement signed value.
func signExtend(u uint64, n uint8) int64 {
	shift := 64 - n
	return int64(u<<shift) >> shift
}

// GetByte reads the next 8 bits as an unsigned byte. The reader must be
// byte-aligned; callers that need opaque byte skipping should Align first.
func (r *Reader) GetByte() (byte, error) {
	if !r.Aligned() {
		return 0, ErrNotAligned
	}

	v, err := r.GetUint(8)
	if err != nil {
		return 0, err
	}

	return byte(v), nil
}

// Align discards 0..7 buffered bits so the next read starts at a byte boundary.
func (r *Reader) Align() error {
	skip := uint8((8 - r.bitsRead%8) % 8) //nolint:gosec // bitsRead%8 is 0..7, skip fits uint8.
	if skip == 0 {
		return nil
	}

	if _, err := r.GetUint(skip); err != nil {
		return err
	}

	return nil
}

// Aligned reports whether the next read starts at a byte boundary.
func (r *Reader) Aligned() bool {
	return r.bitsRead%8 == 0
}

// EndOfStream reports whether the underlying source has no more bytes and
// any buffered bits are exhausted.
func (r *Reader) EndOfStream() bool {
	if !r.Aligned() {
		return false
	}

	_, err := r.src.Peek(1)

	return err != nil
}

// CountLeadingOnes counts the number of leading 1-bits in b, MSB-first.
func CountLeadingOnes(b byte) int {
	return bits.LeadingZeros8(^b)
}

// CountLeadingZeros counts the number of leading 0-bits in b, MSB-first.
func CountLeadingZeros(b byte) int {
	return bits.LeadingZeros8(b)
}
