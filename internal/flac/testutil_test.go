package flac

import (
	"bytes"

	"github.com/mycophonic/flacstream/internal/bitio"
)

// bitWriter packs MSB-first bits into a byte buffer, mirroring the layout
// bitio.Reader consumes. Only used by tests in this package.
type bitWriter struct {
	buf  []byte
	cur  byte
	nbit uint8
}

func (w *bitWriter) putUint(v uint64, n uint8) {
	for i := int(n) - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		w.cur = w.cur<<1 | bit
		w.nbit++

		if w.nbit == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nbit = 0, 0
		}
	}
}

func (w *bitWriter) putInt(v int64, n uint8) {
	w.putUint(uint64(v)&((1<<n)-1), n)
}

// putUnary writes q zero-bits followed by a terminating 1-bit.
func (w *bitWriter) putUnary(q uint64) {
	for range q {
		w.putUint(0, 1)
	}

	w.putUint(1, 1)
}

func (w *bitWriter) totalBits() int {
	return len(w.buf)*8 + int(w.nbit)
}

// padToByte writes the same number of filler bits Align() would discard,
// so a hand-assembled stream stays byte-aligned at the points FLAC requires.
func (w *bitWriter) padToByte() {
	skip := (8 - w.totalBits()%8) % 8
	if skip > 0 {
		w.putUint(0, uint8(skip)) //nolint:gosec // skip is 0..7.
	}
}

func (w *bitWriter) bytes() []byte {
	out := append([]byte{}, w.buf...)
	if w.nbit > 0 {
		out = append(out, w.cur<<(8-w.nbit))
	}

	return out
}

func (w *bitWriter) reader() *bitio.Reader {
	return bitio.NewReader(bytes.NewReader(w.bytes()))
}

func newTestDecoder(w *bitWriter) *Decoder {
	return &Decoder{br: w.reader(), bufferCapacity: DefaultBufferCapacity}
}
