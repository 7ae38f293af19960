package bitio_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mycophonic/flacstream/internal/bitio"
)

// bitWriter packs MSB-first bits into a byte buffer, mirroring the layout
// bitio.Reader consumes. Only used by tests.
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

func (w *bitWriter) bytes() []byte {
	out := w.buf
	if w.nbit > 0 {
		out = append(out, w.cur<<(8-w.nbit))
	}

	return out
}

func TestGetUintRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n uint8
		v uint64
	}{
		{1, 1}, {1, 0}, {4, 0xA}, {8, 0xFF}, {13, 0x1ABC}, {24, 0xABCDEF}, {36, 0xF00D_CAFE_1},
	}

	var w bitWriter
	for _, c := range cases {
		w.putUint(c.v, c.n)
	}

	r := bitio.NewReader(bytes.NewReader(w.bytes()))

	for _, c := range cases {
		got, err := r.GetUint(c.n)
		if err != nil {
			t.Fatalf("GetUint(%d): %v", c.n, err)
		}

		if got != c.v {
			t.Errorf("GetUint(%d) = 0x%x, want 0x%x", c.n, got, c.v)
		}
	}
}

func TestGetIntSignExtension(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n uint8
		v int64
	}{
		{4, -8}, {4, 7}, {4, -1}, {17, -65536}, {17, 65535}, {32, -1}, {32, 1},
	}

	var w bitWriter
	for _, c := range cases {
		w.putUint(uint64(c.v)&((1<<c.n)-1), c.n)
	}

	r := bitio.NewReader(bytes.NewReader(w.bytes()))

	for _, c := range cases {
		got, err := r.GetInt(c.n)
		if err != nil {
			t.Fatalf("GetInt(%d): %v", c.n, err)
		}

		if got != c.v {
			t.Errorf("GetInt(%d) = %d, want %d", c.n, got, c.v)
		}
	}
}

func TestAlignAndGetByte(t *testing.T) {
	t.Parallel()

	var w bitWriter
	w.putUint(0b101, 3)
	w.putUint(0xAB, 8)

	r := bitio.NewReader(bytes.NewReader(w.bytes()))

	if _, err := r.GetByte(); !errors.Is(err, bitio.ErrNotAligned) {
		t.Fatalf("GetByte before align: got %v, want ErrNotAligned", err)
	}

	if err := r.Align(); err != nil {
		t.Fatalf("Align: %v", err)
	}

	if !r.Aligned() {
		t.Fatal("Aligned() = false after Align()")
	}

	b, err := r.GetByte()
	if err != nil {
		t.Fatalf("GetByte after align: %v", err)
	}

	if b != 0xAB {
		t.Errorf("GetByte = 0x%x, want 0xAB", b)
	}

	if err := r.Align(); err != nil {
		t.Fatalf("Align on already-aligned reader: %v", err)
	}
}

func TestEndOfStream(t *testing.T) {
	t.Parallel()

	var w bitWriter
	w.putUint(0xFF, 8)

	r := bitio.NewReader(bytes.NewReader(w.bytes()))

	if r.EndOfStream() {
		t.Fatal("EndOfStream() = true before consuming the only byte")
	}

	if _, err := r.GetByte(); err != nil {
		t.Fatalf("GetByte: %v", err)
	}

	if !r.EndOfStream() {
		t.Fatal("EndOfStream() = false after consuming the only byte")
	}
}

func TestGetUintPastEnd(t *testing.T) {
	t.Parallel()

	r := bitio.NewReader(bytes.NewReader(nil))

	if _, err := r.GetUint(1); !errors.Is(err, bitio.ErrUnexpectedEnd) {
		t.Fatalf("GetUint on empty stream: got %v, want ErrUnexpectedEnd", err)
	}
}

func TestCountLeading(t *testing.T) {
	t.Parallel()

	if got := bitio.CountLeadingOnes(0b11110000); got != 4 {
		t.Errorf("CountLeadingOnes(0b11110000) = %d, want 4", got)
	}

	if got := bitio.CountLeadingZeros(0b00001111); got != 4 {
		t.Errorf("CountLeadingZeros(0b00001111) = %d, want 4", got)
	}

	if got := bitio.CountLeadingOnes(0x00); got != 0 {
		t.Errorf("CountLeadingOnes(0x00) = %d, want 0", got)
	}
}
