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

import (
	"fmt"

	"github.com/mycophonic/flacstream/internal/bitio"
)

const frameSyncCode = 0b11111111111110

// ChannelAssignment identifies how the frame's subframes map to output channels.
type ChannelAssignment uint8

// Channel assignment kinds, per the 4-bit frame header field.
const (
	ChannelIndependent ChannelAssignment = iota
	ChannelLeftSide
	ChannelSideRight
	ChannelMidSide
)

// FrameParameters holds the per-frame decode parameters, recomputed on every audio frame.
type FrameParameters struct {
	BlockSize         uint16
	SampleRate        uint32
	SampleBitSize     uint8
	ChannelCount      int
	ChannelAssignment ChannelAssignment
}

//nolint:gochecknoglobals
var standardSampleRates = [...]uint32{
	0, // unused; code 0 means "use StreamInfo"
	88200, 176400, 192000, 8000, 16000, 22050, 24000, 32000, 44100, 48000, 96000,
}

// decodeAudio decodes one audio frame, or transitions to StateComplete if the
// stream is exhausted. It is invoked repeatedly while state is StateHasMetadata.
func (d *Decoder) decodeAudio() error {
	if d.br.EndOfStream() {
		d.state = StateComplete

		return nil
	}

	if err := d.decodeFrameHeader(); err != nil {
		return err
	}

	assignment, channelCount, err := channelAssignmentFromCode(d.frameChanCode)
	if err != nil {
		return err
	}

	if channelCount > maxChannelCount {
		return fmt.Errorf("%w: %d independent channels", ErrUnsupported, channelCount)
	}

	d.params.ChannelAssignment = assignment
	d.params.ChannelCount = channelCount

	if err := d.decodeSubframes(assignment, channelCount); err != nil {
		return err
	}

	d.decorrelate(assignment)

	if err := d.br.Align(); err != nil {
		return fmt.Errorf("%w: frame padding: %w", ErrUnexpectedEnd, err)
	}

	if _, err := d.br.GetUint(16); err != nil { // CRC-16, consumed not verified.
		return fmt.Errorf("%w: frame footer: %w", ErrUnexpectedEnd, err)
	}

	return nil
}

// decodeFrameHeader reads the frame header fields
// and populates d.params plus the transient d.frameChanCode used to resolve
// the channel assignment after the header is fully consumed.
func (d *Decoder) decodeFrameHeader() error {
	sync, err := d.br.GetUint(14)
	if err != nil {
		return fmt.Errorf("%w: frame sync: %w", ErrUnexpectedEnd, err)
	}

	if sync != frameSyncCode {
		return fmt.Errorf("%w: got 0x%x", ErrBadSync, sync)
	}

	if err := d.expectZeroBit("frame reserved bit #1"); err != nil {
		return err
	}

	if _, err := d.br.GetUint(1); err != nil { // blocking strategy, ignored.
		return fmt.Errorf("%w: blocking strategy: %w", ErrUnexpectedEnd, err)
	}

	blockSizeCode, sampleRateCode, chanCode, bitSizeCode, err := d.readFrameFlags()
	if err != nil {
		return err
	}

	if err := d.expectZeroBit("frame reserved bit #2"); err != nil {
		return err
	}

	if err := d.skipUTF8FrameNumber(); err != nil {
		return err
	}

	blockSize, err := d.resolveBlockSize(uint8(blockSizeCode))
	if err != nil {
		return err
	}

	sampleRate, err := d.resolveSampleRate(uint8(sampleRateCode))
	if err != nil {
		return err
	}

	sampleBitSize, err := d.resolveSampleBitSize(uint8(bitSizeCode))
	if err != nil {
		return err
	}

	if _, err := d.br.GetUint(8); err != nil { // CRC-8, consumed not verified.
		return fmt.Errorf("%w: frame header crc: %w", ErrUnexpectedEnd, err)
	}

	d.params.BlockSize = blockSize
	d.params.SampleRate = sampleRate
	d.params.SampleBitSize = sampleBitSize
	d.frameChanCode = uint8(chanCode) //nolint:gosec // chanCode is a 4-bit field.

	return nil
}

func (d *Decoder) expectZeroBit(what string) error {
	v, err := d.br.GetUint(1)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnexpectedEnd, what, err)
	}

	if v != 0 {
		return fmt.Errorf("%w: %s", ErrBadReserved, what)
	}

	return nil
}

func (d *Decoder) readFrameFlags() (blockSizeCode, sampleRateCode, chanCode, bitSizeCode uint64, err error) {
	if blockSizeCode, err = d.br.GetUint(4); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: block size code: %w", ErrUnexpectedEnd, err)
	}

	if sampleRateCode, err = d.br.GetUint(4); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: sample rate code: %w", ErrUnexpectedEnd, err)
	}

	if chanCode, err = d.br.GetUint(4); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: channel assignment code: %w", ErrUnexpectedEnd, err)
	}

	if bitSizeCode, err = d.br.GetUint(3); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: sample bit size code: %w", ErrUnexpectedEnd, err)
	}

	return blockSizeCode, sampleRateCode, chanCode, bitSizeCode, nil
}

// skipUTF8FrameNumber consumes the UTF-8-like coded frame/sample number
// without validating its payload.
func (d *Decoder) skipUTF8FrameNumber() error {
	first, err := d.br.GetUint(8)
	if err != nil {
		return fmt.Errorf("%w: frame number: %w", ErrUnexpectedEnd, err)
	}

	leadingOnes := bitio.CountLeadingOnes(byte(first))
	extra := leadingOnes - 1

	for range extra {
		if _, err := d.br.GetUint(8); err != nil {
			return fmt.Errorf("%w: frame number continuation: %w", ErrUnexpectedEnd, err)
		}
	}

	return nil
}

// resolveBlockSize maps the 4-bit block-size code to an effective block size,
// reading trailing bits from the stream for codes 6 and 7.
func (d *Decoder) resolveBlockSize(code uint8) (uint16, error) {
	switch {
	case code == 0:
		return 0, fmt.Errorf("%w: block size code 0", ErrReserved)
	case code == 1:
		return 192, nil
	case code >= 2 && code <= 5:
		return 576 * (1 << (code - 2)), nil //nolint:gosec // result fits uint16 for code<=5.
	case code == 6:
		v, err := d.br.GetUint(8)
		if err != nil {
			return 0, fmt.Errorf("%w: block size (8-bit): %w", ErrUnexpectedEnd, err)
		}

		return uint16(v) + 1, nil //nolint:gosec // v is 8 bits.
	case code == 7:
		v, err := d.br.GetUint(16)
		if err != nil {
			return 0, fmt.Errorf("%w: block size (16-bit): %w", ErrUnexpectedEnd, err)
		}

		return uint16(v) + 1, nil //nolint:gosec // v is 16 bits; +1 may wrap only if v==0xFFFF, disallowed by spec range.
	default: // 8..15
		return 256 * (1 << (code - 8)), nil //nolint:gosec // result fits uint16 for code<=15.
	}
}

// resolveSampleRate maps the 4-bit sample-rate code to an effective rate,
// reading trailing bits for codes 12..14 and falling back to StreamInfo for code 0.
func (d *Decoder) resolveSampleRate(code uint8) (uint32, error) {
	switch {
	case code == 0:
		return d.info.SampleRate, nil
	case code >= 1 && code <= 11:
		return standardSampleRates[code], nil
	case code == 12:
		v, err := d.br.GetUint(8)
		if err != nil {
			return 0, fmt.Errorf("%w: sample rate (8-bit*1000): %w", ErrUnexpectedEnd, err)
		}

		return uint32(v) * 1000, nil //nolint:gosec // v is 8 bits.
	case code == 13:
		v, err := d.br.GetUint(16)
		if err != nil {
			return 0, fmt.Errorf("%w: sample rate (16-bit Hz): %w", ErrUnexpectedEnd, err)
		}

		return uint32(v), nil //nolint:gosec // v is 16 bits.
	case code == 14:
		v, err := d.br.GetUint(16)
		if err != nil {
			return 0, fmt.Errorf("%w: sample rate (16-bit*10): %w", ErrUnexpectedEnd, err)
		}

		return uint32(v) * 10, nil //nolint:gosec // v is 16 bits.
	default: // 15
		return 0, fmt.Errorf("%w: sample rate code 15", ErrReserved)
	}
}

// resolveSampleBitSize maps the 3-bit sample-depth code to an effective bit size.
func (d *Decoder) resolveSampleBitSize(code uint8) (uint8, error) {
	switch code {
	case 0:
		return d.info.SampleBitSize, nil
	case 1:
		return 8, nil
	case 2:
		return 12, nil
	case 4:
		return 16, nil
	case 5:
		return 20, nil
	case 6:
		return 24, nil
	case 7:
		return 32, nil
	default: // 3
		return 0, fmt.Errorf("%w: sample bit size code %d", ErrReserved, code)
	}
}

// channelAssignmentFromCode maps the 4-bit channel assignment code to an
// assignment kind and logical channel count.
func channelAssignmentFromCode(code uint8) (ChannelAssignment, int, error) {
	switch {
	case code <= 7:
		return ChannelIndependent, int(code) + 1, nil
	case code == 8:
		return ChannelLeftSide, 2, nil
	case code == 9:
		return ChannelSideRight, 2, nil
	case code == 10:
		return ChannelMidSide, 2, nil
	default: // 11..15
		return 0, 0, fmt.Errorf("%w: channel assignment code %d", ErrUnsupported, code)
	}
}

// decorrelate reconstructs left/right channels in place from the coded
// representation. Independent assignments need no work.
func (d *Decoder) decorrelate(assignment ChannelAssignment) {
	n := int(d.params.BlockSize)
	left, right := d.buf[0][:n], d.buf[1][:n]

	switch assignment {
	case ChannelIndependent:
		return
	case ChannelLeftSide:
		for i := range n {
			right[i] = left[i] - right[i]
		}
	case ChannelSideRight:
		for i := range n {
			left[i] += right[i]
		}
	case ChannelMidSide:
		for i := range n {
			mid, side := left[i], right[i]
			r := mid - (side >> 1)
			right[i] = r
			left[i] = r + side
		}
	}
}
