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

import "errors"

// Sentinel errors, one per taxonomy kind from the decoder's error design.
// Call sites wrap these with fmt.Errorf to attach the offending value.
var (
	ErrBadMarker       = errors.New("flac: stream does not start with fLaC marker")
	ErrBadSync         = errors.New("flac: frame sync code mismatch")
	ErrBadReserved     = errors.New("flac: reserved bit is set")
	ErrReserved        = errors.New("flac: reserved code point in stream")
	ErrUnsupported     = errors.New("flac: unsupported stream feature")
	ErrBufferTooSmall  = errors.New("flac: max block size exceeds buffer capacity")
	ErrBadPartitioning = errors.New("flac: residual partition count does not divide block size")
	ErrUnexpectedEnd   = errors.New("flac: unexpected end of stream")
	ErrIllegalState    = errors.New("flac: decoder call in wrong lifecycle state")
)
