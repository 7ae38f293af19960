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

// Package wav writes canonical PCM WAVE containers around the interleaved
// PCM bytes produced by github.com/mycophonic/flacstream.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	flacstream "github.com/mycophonic/flacstream"
)

const headerSize = 44

// Write writes a standard RIFF/WAVE PCM container holding pcm to w, using
// format to fill in the fmt chunk. Sub-byte-aligned FLAC bit depths (4, 12,
// 20) are declared at their container width (8, 16, 24) since WAVE has no
// notion of a partial byte.
func Write(w io.Writer, format flacstream.PCMFormat, pcm []byte) error {
	bytesPerSample := format.BitDepth.BytesPerSample()
	blockAlign := int(format.Channels) * bytesPerSample
	byteRate := format.SampleRate * blockAlign
	dataSize := len(pcm)

	bitsPerSample := containerBitsPerSample(format.BitDepth)

	var hdr [headerSize]byte

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(headerSize-8+dataSize)) //nolint:gosec // dataSize bounded by decoded PCM length.
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(format.SampleRate)) //nolint:gosec // sample rates fit uint32.
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))          //nolint:gosec // byteRate fits uint32 for any real stream.
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(bitsPerSample))

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize)) //nolint:gosec // dataSize bounded by decoded PCM length.

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing WAV data: %w", err)
	}

	return nil
}

// containerBitsPerSample rounds a FLAC sample bit depth up to the nearest
// WAVE container width: 4->8, 12->16, 20->24. Standard depths pass through.
func containerBitsPerSample(depth flacstream.BitDepth) int {
	switch depth {
	case flacstream.Depth4:
		return int(flacstream.Depth8)
	case flacstream.Depth12:
		return int(flacstream.Depth16)
	case flacstream.Depth20:
		return int(flacstream.Depth24)
	default:
		return int(depth)
	}
}
