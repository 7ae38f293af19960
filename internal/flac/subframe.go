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

const maxLPCOrder = 32

// decodeSubframes decodes one subframe per logical channel, in ascending
// channel order, applying the extra bit of side-channel depth that
// left/side, side/right, and mid/side assignments require.
func (d *Decoder) decodeSubframes(assignment ChannelAssignment, channelCount int) error {
	n := int(d.params.BlockSize)
	depth := d.params.SampleBitSize

	for ch := range channelCount {
		effective := depth
		if isSideChannel(assignment, ch) {
			effective++
		}

		d.buf[ch] = d.buf[ch][:n]

		if err := d.decodeSubframe(ch, effective); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}

	return nil
}

// isSideChannel reports whether channel index ch carries the wider
// side/difference signal for the given decorrelation assignment.
func isSideChannel(assignment ChannelAssignment, ch int) bool {
	switch assignment {
	case ChannelLeftSide:
		return ch == 1
	case ChannelSideRight:
		return ch == 0
	case ChannelMidSide:
		return ch == 1
	case ChannelIndependent:
		return false
	default:
		return false
	}
}

// decodeSubframe parses one subframe header and dispatches to the type-specific decoder.
func (d *Decoder) decodeSubframe(ch int, sampleBitSize uint8) error {
	if _, err := d.br.GetUint(1); err != nil { // padding bit, not enforced zero.
		return fmt.Errorf("%w: subframe padding: %w", ErrUnexpectedEnd, err)
	}

	subframeType, err := d.br.GetUint(6)
	if err != nil {
		return fmt.Errorf("%w: subframe type: %w", ErrUnexpectedEnd, err)
	}

	wasted, err := d.readWastedBits()
	if err != nil {
		return err
	}

	depth := sampleBitSize - wasted
	buf := d.buf[ch]

	switch {
	case subframeType == 0:
		if err := d.decodeConstant(buf, depth); err != nil {
			return err
		}
	case subframeType == 1:
		if err := d.decodeVerbatim(buf, depth); err != nil {
			return err
		}
	case subframeType < 8:
		return fmt.Errorf("%w: subframe type %d", ErrReserved, subframeType)
	case subframeType < 13:
		order := int(subframeType) - 8
		if err := d.decodeFixed(buf, order, depth); err != nil {
			return err
		}
	case subframeType < 32:
		return fmt.Errorf("%w: subframe type %d", ErrReserved, subframeType)
	default:
		order := int(subframeType) - 31
		if err := d.decodeLPC(buf, order, depth); err != nil {
			return err
		}
	}

	if wasted > 0 {
		for i := range buf {
			buf[i] <<= wasted
		}
	}

	return nil
}

// readWastedBits reads the wasted-bits-present flag and, if set, the unary
// count of wasted least-significant bits.
func (d *Decoder) readWastedBits() (uint8, error) {
	present, err := d.br.GetUint(1)
	if err != nil {
		return 0, fmt.Errorf("%w: wasted bits flag: %w", ErrUnexpectedEnd, err)
	}

	if present == 0 {
		return 0, nil
	}

	var k uint8

	for {
		bit, err := d.br.GetUint(1)
		if err != nil {
			return 0, fmt.Errorf("%w: wasted bits unary: %w", ErrUnexpectedEnd, err)
		}

		if bit == 1 {
			return k, nil
		}

		k++
	}
}

func (d *Decoder) decodeConstant(buf []int64, depth uint8) error {
	v, err := d.br.GetInt(depth)
	if err != nil {
		return fmt.Errorf("%w: constant sample: %w", ErrUnexpectedEnd, err)
	}

	for i := range buf {
		buf[i] = v
	}

	return nil
}

func (d *Decoder) decodeVerbatim(buf []int64, depth uint8) error {
	for i := range buf {
		v, err := d.br.GetInt(depth)
		if err != nil {
			return fmt.Errorf("%w: verbatim sample %d: %w", ErrUnexpectedEnd, i, err)
		}

		buf[i] = v
	}

	return nil
}

func (d *Decoder) decodeFixed(buf []int64, order int, depth uint8) error {
	if err := d.readWarmup(buf, order, depth); err != nil {
		return err
	}

	if err := d.decodeResiduals(buf, order); err != nil {
		return err
	}

	invertFixed(buf, order)

	return nil
}

func (d *Decoder) decodeLPC(buf []int64, order int, depth uint8) error {
	if order > maxLPCOrder {
		return fmt.Errorf("%w: LPC order %d", ErrUnsupported, order)
	}

	if err := d.readWarmup(buf, order, depth); err != nil {
		return err
	}

	precisionCode, err := d.br.GetUint(4)
	if err != nil {
		return fmt.Errorf("%w: LPC precision: %w", ErrUnexpectedEnd, err)
	}

	if precisionCode == 15 {
		return fmt.Errorf("%w: LPC precision code 15", ErrReserved)
	}

	precision := uint8(precisionCode) + 1

	shift, err := d.br.GetInt(5)
	if err != nil {
		return fmt.Errorf("%w: LPC shift: %w", ErrUnexpectedEnd, err)
	}

	if shift < 0 {
		shift = 0 // reference FLAC clamps negative shifts to zero.
	}

	for i := range order {
		c, err := d.br.GetInt(precision)
		if err != nil {
			return fmt.Errorf("%w: LPC coefficient %d: %w", ErrUnexpectedEnd, i, err)
		}

		d.coeffCache[i] = int16(c) //nolint:gosec // precision <= 15 bits, fits int16.
	}

	if err := d.decodeResiduals(buf, order); err != nil {
		return err
	}

	invertLPC(buf, order, d.coeffCache[:order], uint8(shift)) //nolint:gosec // shift is clamped to 0..15.

	return nil
}

func (d *Decoder) readWarmup(buf []int64, order int, depth uint8) error {
	for i := range order {
		v, err := d.br.GetInt(depth)
		if err != nil {
			return fmt.Errorf("%w: warm-up sample %d: %w", ErrUnexpectedEnd, i, err)
		}

		buf[i] = v
	}

	return nil
}
