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

package flac

import "fmt"

const streamMarker = 0x664C6143 // "fLaC"

const maxChannelCount = 2

// StreamInfo holds the global invariants of a FLAC stream, filled once from
// the mandatory STREAMINFO metadata block.
type StreamInfo struct {
	MinBlockSize  uint16
	MaxBlockSize  uint16
	MinFrameSize  uint32 // bytes; 0 means unknown
	MaxFrameSize  uint32 // bytes; 0 means unknown
	SampleRate    uint32 // Hz
	ChannelCount  uint8
	SampleBitSize uint8
	SampleCount   uint64 // inter-channel sample frames; 0 means unknown
}

// decodeMarker reads the 32-bit stream magic and requires it to equal "fLaC".
func (d *Decoder) decodeMarker() error {
	v, err := d.br.GetUint(32)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedEnd, err)
	}

	if v != streamMarker {
		return fmt.Errorf("%w: got 0x%08x", ErrBadMarker, v)
	}

	d.state = StateHasMarker

	return nil
}

// decodeMetadata reads one METADATA_BLOCK_HEADER and its body. STREAMINFO
// (type 0) is parsed into d.info; any other block type is skipped byte by
// byte. The last-block flag advances the decoder to StateHasMetadata.
func (d *Decoder) decodeMetadata() error {
	lastBlock, err := d.br.GetUint(1)
	if err != nil {
		return fmt.Errorf("%w: metadata header: %w", ErrUnexpectedEnd, err)
	}

	blockType, err := d.br.GetUint(7)
	if err != nil {
		return fmt.Errorf("%w: metadata header: %w", ErrUnexpectedEnd, err)
	}

	bodyLen, err := d.br.GetUint(24)
	if err != nil {
		return fmt.Errorf("%w: metadata header: %w", ErrUnexpectedEnd, err)
	}

	if blockType == 0 {
		if err := d.decodeStreamInfoBody(); err != nil {
			return err
		}
	} else if err := d.skipBytes(uint32(bodyLen)); err != nil { //nolint:gosec // bodyLen is 24 bits.
		return err
	}

	if lastBlock == 1 {
		d.state = StateHasMetadata
	}

	return nil
}

// decodeStreamInfoBody parses the fixed 34-byte STREAMINFO body and skips
// the trailing 16-byte MD5 signature without verifying it.
func (d *Decoder) decodeStreamInfoBody() error {
	fields, err := d.readFields(16, 16, 24, 24, 20, 3, 5, 36)
	if err != nil {
		return err
	}

	info := StreamInfo{
		MinBlockSize:  uint16(fields[0]), //nolint:gosec // field width is 16 bits.
		MaxBlockSize:  uint16(fields[1]), //nolint:gosec // field width is 16 bits.
		MinFrameSize:  uint32(fields[2]), //nolint:gosec // field width is 24 bits.
		MaxFrameSize:  uint32(fields[3]), //nolint:gosec // field width is 24 bits.
		SampleRate:    uint32(fields[4]), //nolint:gosec // field width is 20 bits.
		ChannelCount:  uint8(fields[5]) + 1,
		SampleBitSize: uint8(fields[6]) + 1,
		SampleCount:   fields[7],
	}

	if info.ChannelCount > maxChannelCount {
		return fmt.Errorf("%w: channel count %d exceeds maximum %d", ErrUnsupported, info.ChannelCount, maxChannelCount)
	}

	if uint32(info.MaxBlockSize) > uint32(d.bufferCapacity) { //nolint:gosec // MaxBlockSize is 16 bits.
		return fmt.Errorf("%w: max_block_size=%d, capacity=%d", ErrBufferTooSmall, info.MaxBlockSize, d.bufferCapacity)
	}

	d.info = info

	for range 16 { // MD5 signature, parsed and discarded.
		if _, err := d.br.GetByte(); err != nil {
			return fmt.Errorf("%w: streaminfo md5: %w", ErrUnexpectedEnd, err)
		}
	}

	return nil
}

// readFields reads consecutive unsigned fields of the given bit widths.
func (d *Decoder) readFields(widths ...uint8) ([]uint64, error) {
	out := make([]uint64, len(widths))

	for i, w := range widths {
		v, err := d.br.GetUint(w)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrUnexpectedEnd, i, err)
		}

		out[i] = v
	}

	return out, nil
}

// skipBytes discards n opaque bytes, used for metadata blocks other than STREAMINFO.
func (d *Decoder) skipBytes(n uint32) error {
	for range n {
		if _, err := d.br.GetByte(); err != nil {
			return fmt.Errorf("%w: skipping metadata: %w", ErrUnexpectedEnd, err)
		}
	}

	return nil
}
