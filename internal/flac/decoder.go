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

// Package flac implements the bit-granular FLAC decoder core: metadata
// parsing, frame/subframe decoding, Rice-coded residuals, and predictor
// inversion. It exposes a pull-based, four-state lifecycle facade; the
// public github.com/mycophonic/flacstream package wraps it behind an
// io.Reader-shaped API.
package flac

import (
	"fmt"
	"io"

	"github.com/mycophonic/flacstream/internal/bitio"
)

// State is the decoder's four-valued lifecycle tag. Transitions are
// monotonic: Init -> HasMarker -> HasMetadata -> Complete.
type State int

// Lifecycle states, in transition order.
const (
	StateInit State = iota
	StateHasMarker
	StateHasMetadata
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHasMarker:
		return "has_marker"
	case StateHasMetadata:
		return "has_metadata"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// DefaultBufferCapacity is the per-channel sample buffer capacity used when
// the caller does not need a smaller footprint. It covers the largest block
// size FLAC's 16-bit block-size field can express (65535 + 1 headroom).
const DefaultBufferCapacity = 65536

// Decoder holds the FLAC decoder's lifecycle state, stream metadata, and the
// reusable per-channel sample buffers. It is not safe for concurrent use;
// all calls on one instance must come from a single goroutine.
type Decoder struct {
	br             *bitio.Reader
	state          State
	info           StreamInfo
	bufferCapacity int
	buf            [maxChannelCount][]int64
	params         FrameParameters
	coeffCache     [32]int16
	frameChanCode  uint8
	blockView      [maxChannelCount][]int64
}

// NewDecoder returns a Decoder reading from r, with per-channel sample
// buffers pre-allocated at bufferCapacity. No allocation occurs on the
// decode hot path after construction.
func NewDecoder(r io.Reader, bufferCapacity int) *Decoder {
	d := &Decoder{
		br:             bitio.NewReader(r),
		bufferCapacity: bufferCapacity,
	}

	for ch := range d.buf {
		d.buf[ch] = make([]int64, bufferCapacity)
	}

	return d
}

// State returns the decoder's current lifecycle state.
func (d *Decoder) State() State { return d.state }

// StreamInfo returns the parsed STREAMINFO block. Only meaningful once
// State is StateHasMetadata or StateComplete.
func (d *Decoder) StreamInfo() StreamInfo { return d.info }

// BlockSize returns the most recently decoded frame's block size.
func (d *Decoder) BlockSize() uint16 { return d.params.BlockSize }

// BlockSampleRate returns the most recently decoded frame's effective sample rate.
func (d *Decoder) BlockSampleRate() uint32 { return d.params.SampleRate }

// FrameParameters returns the most recently decoded frame's parameters.
func (d *Decoder) FrameParameters() FrameParameters { return d.params }

// BlockData returns the decoded per-channel sample slices for the most
// recently decoded frame, each sliced to the frame's block size. Channel 0
// is always left (or mono); channel 1, when present, is always right.
func (d *Decoder) BlockData() [][]int64 {
	n := int(d.params.BlockSize)

	for ch := range d.params.ChannelCount {
		d.blockView[ch] = d.buf[ch][:n]
	}

	return d.blockView[:d.params.ChannelCount]
}

// DecodeMarker reads the stream magic. Must be called exactly once, before
// any DecodeMetadata or DecodeAudio call.
func (d *Decoder) DecodeMarker() error {
	if d.state != StateInit {
		return fmt.Errorf("%w: DecodeMarker in state %s", ErrIllegalState, d.state)
	}

	return d.decodeMarker()
}

// DecodeMetadata reads one metadata block, advancing to StateHasMetadata
// once the last-block flag is seen. Call in a loop until State() reports
// StateHasMetadata.
func (d *Decoder) DecodeMetadata() error {
	if d.state != StateHasMarker && d.state != StateHasMetadata {
		return fmt.Errorf("%w: DecodeMetadata in state %s", ErrIllegalState, d.state)
	}

	if d.state == StateHasMetadata {
		return fmt.Errorf("%w: metadata already complete", ErrIllegalState)
	}

	return d.decodeMetadata()
}

// DecodeAudio decodes the next audio frame, or transitions to StateComplete
// once the stream is exhausted. Call in a loop until State() reports
// StateComplete, reading BlockSize() samples per channel from BlockData()
// after each call.
func (d *Decoder) DecodeAudio() error {
	switch d.state {
	case StateHasMetadata:
		return d.decodeAudio()
	case StateComplete:
		return nil // no-op past end of stream.
	default:
		return fmt.Errorf("%w: DecodeAudio in state %s", ErrIllegalState, d.state)
	}
}
