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

// Package flacstream decodes a FLAC bitstream into interleaved little-endian
// signed PCM bytes. The decode algorithm lives in internal/flac; this
// package adapts its pull-based, frame-at-a-time state machine to the
// io.Reader shape Go audio plumbing expects.
package flacstream

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/mycophonic/flacstream/internal/flac"
)

//nolint:gochecknoglobals
var supportedBitDepths = []BitDepth{
	Depth4, Depth8, Depth12, Depth16, Depth20, Depth24, Depth32,
}

// ErrBitDepth is returned when a FLAC stream declares an unsupported bit depth.
var ErrBitDepth = errors.New("flacstream: unsupported bit depth")

// Re-exported decode error kinds, for callers that want to errors.Is against
// the decoder core's taxonomy without importing the internal package.
var (
	ErrBadMarker       = flac.ErrBadMarker
	ErrBadSync         = flac.ErrBadSync
	ErrBadReserved     = flac.ErrBadReserved
	ErrReserved        = flac.ErrReserved
	ErrUnsupported     = flac.ErrUnsupported
	ErrBufferTooSmall  = flac.ErrBufferTooSmall
	ErrBadPartitioning = flac.ErrBadPartitioning
	ErrUnexpectedEnd   = flac.ErrUnexpectedEnd
)

// Decoder streams decoded PCM from a FLAC source. It is not safe for
// concurrent use; the underlying byte source's lifetime must outlive it.
type Decoder struct {
	core           *flac.Decoder
	format         PCMFormat
	nChannels      int
	bytesPerSample int
	bitDepth       BitDepth

	// Per-frame buffer: filled by decodeFrame + interleave, drained by Read.
	buf    []byte
	bufOff int
	eof    bool
}

// NewDecoder reads a FLAC stream's marker and metadata, and returns a
// decoder ready to stream PCM via Read.
func NewDecoder(r io.Reader) (*Decoder, error) {
	core := flac.NewDecoder(r, flac.DefaultBufferCapacity)

	if err := core.DecodeMarker(); err != nil {
		return nil, err
	}

	for core.State() != flac.StateHasMetadata {
		if err := core.DecodeMetadata(); err != nil {
			return nil, err
		}
	}

	info := core.StreamInfo()
	bitDepth := BitDepth(info.SampleBitSize)

	if !slices.Contains(supportedBitDepths, bitDepth) {
		return nil, ErrBitDepth
	}

	return &Decoder{
		core:           core,
		nChannels:      int(info.ChannelCount),
		bytesPerSample: bitDepth.BytesPerSample(),
		bitDepth:       bitDepth,
		format: PCMFormat{
			SampleRate: int(info.SampleRate),
			BitDepth:   bitDepth,
			Channels:   uint(info.ChannelCount),
		},
	}, nil
}

// Format returns the PCM output format.
func (d *Decoder) Format() PCMFormat { return d.format }

// Read reads decoded PCM bytes from the FLAC stream.
func (d *Decoder) Read(p []byte) (int, error) { //nolint:varnamelen // p is idiomatic for io.Reader.Read
	total := 0

	for len(p) > 0 {
		if d.bufOff < len(d.buf) {
			n := copy(p, d.buf[d.bufOff:])
			d.bufOff += n
			total += n
			p = p[n:]

			continue
		}

		if d.eof {
			if total > 0 {
				return total, nil
			}

			return 0, io.EOF
		}

		if err := d.decodeFrame(); err != nil {
			return total, err
		}

		if d.eof && total > 0 {
			return total, nil
		}

		if d.eof {
			return 0, io.EOF
		}
	}

	return total, nil
}

// decodeFrame decodes the next audio frame into d.buf, or marks d.eof once
// the stream is exhausted.
func (d *Decoder) decodeFrame() error {
	if err := d.core.DecodeAudio(); err != nil {
		return err
	}

	if d.core.State() == flac.StateComplete {
		d.eof = true

		return nil
	}

	blockSize := int(d.core.BlockSize())
	frameBytes := blockSize * d.nChannels * d.bytesPerSample

	if cap(d.buf) < frameBytes {
		d.buf = make([]byte, frameBytes)
	} else {
		d.buf = d.buf[:frameBytes]
	}

	interleave(d.buf, d.core.BlockData(), blockSize, d.nChannels, d.bitDepth)
	d.bufOff = 0

	return nil
}

// FrameInfo describes one decoded audio frame, for callers that want
// per-frame telemetry without reaching into internal/flac themselves.
type FrameInfo struct {
	BlockSize         int
	SampleRate        int
	ChannelAssignment string
}

// DecodeFrame decodes the next audio frame and returns its parameters
// alongside the interleaved PCM bytes produced from it. It returns io.EOF
// once the stream is exhausted, matching Read's EOF contract.
func (d *Decoder) DecodeFrame() (FrameInfo, []byte, error) {
	if err := d.decodeFrame(); err != nil {
		return FrameInfo{}, nil, err
	}

	if d.eof {
		return FrameInfo{}, nil, io.EOF
	}

	params := d.core.FrameParameters()
	info := FrameInfo{
		BlockSize:         int(params.BlockSize),
		SampleRate:        int(params.SampleRate),
		ChannelAssignment: channelAssignmentName(params.ChannelAssignment),
	}

	pcm := make([]byte, len(d.buf))
	copy(pcm, d.buf)
	d.bufOff = len(d.buf)

	return info, pcm, nil
}

// channelAssignmentName renders a channel assignment code as the label
// zerolog callers expect in -verbose output.
func channelAssignmentName(a flac.ChannelAssignment) string {
	switch a {
	case flac.ChannelIndependent:
		return "independent"
	case flac.ChannelLeftSide:
		return "left/side"
	case flac.ChannelSideRight:
		return "side/right"
	case flac.ChannelMidSide:
		return "mid/side"
	default:
		return "unknown"
	}
}

// Decode reads a FLAC stream and decodes it to interleaved little-endian
// signed PCM bytes. Native bit depth is preserved (16-bit FLAC produces
// s16le, 24-bit produces s24le, etc.).
func Decode(r io.Reader) ([]byte, PCMFormat, error) {
	dec, err := NewDecoder(r)
	if err != nil {
		return nil, PCMFormat{}, err
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, PCMFormat{}, fmt.Errorf("decoding flac: %w", err)
	}

	return pcm, dec.Format(), nil
}

// interleave writes decoded per-channel samples into dst as interleaved
// little-endian signed PCM.
//
//revive:disable-next-line:cognitive-complexity // single switch over 4 bit-depth groups.
func interleave(dst []byte, channels [][]int64, blockSize, nChannels int, depth BitDepth) {
	switch depth {
	case Depth4, Depth8:
		pos := 0

		for i := range blockSize {
			for ch := range nChannels {
				dst[pos] = byte(int8(channels[ch][i])) //nolint:gosec // intentional truncation for 4/8-bit PCM.
				pos++
			}
		}
	case Depth12, Depth16:
		pos := 0

		for i := range blockSize {
			for ch := range nChannels {
				s := channels[ch][i]
				dst[pos] = byte(s)
				dst[pos+1] = byte(s >> 8)
				pos += 2
			}
		}
	case Depth20, Depth24:
		pos := 0

		for i := range blockSize {
			for ch := range nChannels {
				s := channels[ch][i]
				dst[pos] = byte(s)
				dst[pos+1] = byte(s >> 8)
				dst[pos+2] = byte(s >> 16)
				pos += 3
			}
		}
	case Depth32:
		pos := 0

		for i := range blockSize {
			for ch := range nChannels {
				s := channels[ch][i]
				dst[pos] = byte(s)
				dst[pos+1] = byte(s >> 8)
				dst[pos+2] = byte(s >> 16)
				dst[pos+3] = byte(s >> 24)
				pos += 4
			}
		}
	default:
		panic(fmt.Sprintf("flacstream: interleave called with unsupported bit depth %d", depth))
	}
}
