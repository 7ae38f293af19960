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

// decodeResiduals fills buf[order:] with the subframe's residual values,
// per the partitioned Rice/escape coding scheme.
func (d *Decoder) decodeResiduals(buf []int64, order int) error {
	method, err := d.br.GetUint(2)
	if err != nil {
		return fmt.Errorf("%w: residual coding method: %w", ErrUnexpectedEnd, err)
	}

	if method > 1 {
		return fmt.Errorf("%w: residual coding method %d", ErrReserved, method)
	}

	paramBits := uint8(4)
	escape := uint64(0xF)

	if method == 1 {
		paramBits = 5
		escape = 0x1F
	}

	partitionOrder, err := d.br.GetUint(4)
	if err != nil {
		return fmt.Errorf("%w: partition order: %w", ErrUnexpectedEnd, err)
	}

	partitions := 1 << partitionOrder
	blockSize := len(buf)

	if blockSize%partitions != 0 {
		return fmt.Errorf("%w: block_size=%d, partitions=%d", ErrBadPartitioning, blockSize, partitions)
	}

	partitionSize := blockSize / partitions

	for i := range partitions {
		start := i * partitionSize
		if i == 0 {
			start += order
		}

		end := (i + 1) * partitionSize

		if err := d.decodePartition(buf, start, end, paramBits, escape); err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
	}

	return nil
}

// decodePartition reads one partition's Rice parameter (or escape marker)
// and fills buf[start:end] accordingly.
func (d *Decoder) decodePartition(buf []int64, start, end int, paramBits uint8, escape uint64) error {
	param, err := d.br.GetUint(paramBits)
	if err != nil {
		return fmt.Errorf("%w: rice parameter: %w", ErrUnexpectedEnd, err)
	}

	if param == escape {
		bitCount, err := d.br.GetUint(5)
		if err != nil {
			return fmt.Errorf("%w: escape bit count: %w", ErrUnexpectedEnd, err)
		}

		for j := start; j < end; j++ {
			if bitCount == 0 {
				buf[j] = 0

				continue
			}

			v, err := d.br.GetInt(uint8(bitCount))
			if err != nil {
				return fmt.Errorf("%w: escape residual %d: %w", ErrUnexpectedEnd, j, err)
			}

			buf[j] = v
		}

		return nil
	}

	for j := start; j < end; j++ {
		v, err := d.decodeRice(uint8(param))
		if err != nil {
			return fmt.Errorf("%w: rice residual %d: %w", ErrUnexpectedEnd, j, err)
		}

		buf[j] = v
	}

	return nil
}

// decodeRice decodes one signed residual under Rice parameter k: a unary
// quotient terminated by a 1-bit, followed by a k-bit remainder, mapped to a
// signed value by zigzag.
func (d *Decoder) decodeRice(k uint8) (int64, error) {
	var q uint64

	for {
		bit, err := d.br.GetUint(1)
		if err != nil {
			return 0, err
		}

		if bit == 1 {
			break
		}

		q++
	}

	var r uint64

	if k > 0 {
		var err error

		r, err = d.br.GetUint(k)
		if err != nil {
			return 0, err
		}
	}

	u := (q << k) | r
	if u&1 == 1 {
		return -int64(u>>1) - 1, nil
	}

	return int64(u >> 1), nil
}
