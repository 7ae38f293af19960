package flac

import "testing"

func TestDecodeMetadataSkipsNonStreamInfoBlocks(t *testing.T) {
	t.Parallel()

	var w bitWriter

	// A VORBIS_COMMENT-shaped block (type 4), not the last block.
	w.putUint(0, 1) // last = 0
	w.putUint(4, 7) // type 4
	w.putUint(3, 24)
	w.putUint(0xAA, 8)
	w.putUint(0xBB, 8)
	w.putUint(0xCC, 8)

	// Final STREAMINFO block, last = 1.
	w.putUint(1, 1)
	w.putUint(0, 7)
	w.putUint(34, 24)
	w.putUint(4096, 16)
	w.putUint(4096, 16)
	w.putUint(0, 24)
	w.putUint(0, 24)
	w.putUint(48000, 20)
	w.putUint(1, 3) // channel count - 1 = 1 -> 2 channels
	w.putUint(15, 5) // bit size - 1 = 15 -> 16 bits

	w.putUint(0, 36)

	for range 16 {
		w.putUint(0, 8)
	}

	d := &Decoder{br: w.reader(), bufferCapacity: DefaultBufferCapacity}

	if err := d.decodeMetadata(); err != nil {
		t.Fatalf("decodeMetadata (skip block): %v", err)
	}

	if d.state == StateHasMetadata {
		t.Fatal("state reached HasMetadata after non-last block")
	}

	if err := d.decodeMetadata(); err != nil {
		t.Fatalf("decodeMetadata (streaminfo): %v", err)
	}

	if d.state != StateHasMetadata {
		t.Fatalf("state = %s, want has_metadata", d.state)
	}

	if d.info.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", d.info.SampleRate)
	}

	if d.info.ChannelCount != 2 {
		t.Errorf("ChannelCount = %d, want 2", d.info.ChannelCount)
	}

	if d.info.SampleBitSize != 16 {
		t.Errorf("SampleBitSize = %d, want 16", d.info.SampleBitSize)
	}
}

func TestDecodeMetadataRejectsTooManyChannels(t *testing.T) {
	t.Parallel()

	var w bitWriter

	w.putUint(1, 1)
	w.putUint(0, 7)
	w.putUint(34, 24)
	w.putUint(4096, 16)
	w.putUint(4096, 16)
	w.putUint(0, 24)
	w.putUint(0, 24)
	w.putUint(44100, 20)
	w.putUint(7, 3) // channel count - 1 = 7 -> 8 channels, exceeds maxChannelCount
	w.putUint(15, 5)
	w.putUint(0, 36)

	for range 16 {
		w.putUint(0, 8)
	}

	d := &Decoder{br: w.reader(), bufferCapacity: DefaultBufferCapacity}

	if err := d.decodeMetadata(); err == nil {
		t.Fatal("decodeMetadata: expected ErrUnsupported for 8 channels, got nil")
	}
}
