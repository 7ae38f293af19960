package wav_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	flacstream "github.com/mycophonic/flacstream"
	"github.com/mycophonic/flacstream/wav"
)

func TestWriteHeaderFields(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	format := flacstream.PCMFormat{SampleRate: 44100, BitDepth: flacstream.Depth16, Channels: 2}

	var buf bytes.Buffer

	if err := wav.Write(&buf, format, pcm); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data := buf.Bytes()
	if len(data) != 44+len(pcm) {
		t.Fatalf("output length = %d, want %d", len(data), 44+len(pcm))
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}

	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Fatal("missing fmt /data chunk IDs")
	}

	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("RIFF chunk size = %d, want %d", got, 36+len(pcm))
	}

	if got := binary.LittleEndian.Uint16(data[22:24]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}

	if got := binary.LittleEndian.Uint32(data[24:28]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}

	if got := binary.LittleEndian.Uint16(data[32:34]); got != 4 {
		t.Errorf("block align = %d, want 4", got)
	}

	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}

	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data chunk size = %d, want %d", got, len(pcm))
	}

	if !bytes.Equal(data[44:], pcm) {
		t.Error("PCM payload mismatch")
	}
}

func TestWriteRoundsContainerBitDepth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		depth flacstream.BitDepth
		want  uint16
	}{
		{flacstream.Depth4, 8},
		{flacstream.Depth12, 16},
		{flacstream.Depth20, 24},
		{flacstream.Depth24, 24},
		{flacstream.Depth32, 32},
	}

	for _, c := range cases {
		format := flacstream.PCMFormat{SampleRate: 8000, BitDepth: c.depth, Channels: 1}

		var buf bytes.Buffer

		if err := wav.Write(&buf, format, nil); err != nil {
			t.Fatalf("Write(%d): %v", c.depth, err)
		}

		got := binary.LittleEndian.Uint16(buf.Bytes()[34:36])
		if got != c.want {
			t.Errorf("depth %d: bits per sample = %d, want %d", c.depth, got, c.want)
		}
	}
}
