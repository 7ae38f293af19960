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

// fixedCoefficients holds the canonical FLAC fixed-predictor coefficients,
// indexed by predictor order 0..4.
//
//nolint:gochecknoglobals
var fixedCoefficients = [5][]int64{
	{},
	{1},
	{2, -1},
	{3, -3, 1},
	{4, -6, 4, -1},
}

// invertFixed reconstructs buf[order:] in place using the canonical fixed
// predictor of the given order (shift is always 0 for fixed predictors).
func invertFixed(buf []int64, order int) {
	coeffs := fixedCoefficients[order]

	for i := order; i < len(buf); i++ {
		var sum int64

		for j := range order {
			sum += buf[i-1-j] * coeffs[j]
		}

		buf[i] += sum
	}
}

// invertLPC reconstructs buf[order:] in place from quantized LPC
// coefficients and a right shift. All arithmetic is
// 64-bit to avoid overflow at 32-bit sample depths with order-32 LPC.
func invertLPC(buf []int64, order int, coeffs []int16, shift uint8) {
	for i := order; i < len(buf); i++ {
		var sum int64

		for j := range order {
			sum += buf[i-1-j] * int64(coeffs[j])
		}

		buf[i] += sum >> shift
	}
}
