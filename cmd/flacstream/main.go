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

// flacstream decodes a FLAC file to WAV or raw PCM on stdout.
//
// Usage:
//
//	flacstream [-format wav|pcm] [-verbose] <input.flac | ->
//
//nolint:gosec // Integer conversions are bounded by audio format constraints; file paths from CLI args.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	flacstream "github.com/mycophonic/flacstream"
	"github.com/mycophonic/flacstream/version"
	"github.com/mycophonic/flacstream/wav"
)

const formatWAV = "wav"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	outputFormat := flag.String("format", formatWAV, "output format: wav or pcm")
	verbose := flag.Bool("verbose", false, "log per-frame decode telemetry to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-format wav|pcm] [-verbose] <input.flac | ->\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if *outputFormat != formatWAV && *outputFormat != "pcm" {
		fmt.Fprintf(os.Stderr, "unknown format %q (use wav or pcm)\n", *outputFormat)
		os.Exit(1)
	}

	logger := newLogger(*verbose)

	os.Exit(run(*outputFormat, flag.Arg(0), logger))
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.Disabled
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func run(outputFormat, inputPath string, logger zerolog.Logger) int {
	reader, cleanup, err := openInput(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return 1
	}

	defer cleanup()

	dec, err := flacstream.NewDecoder(reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)

		return 1
	}

	pcmFormat := dec.Format()
	logger.Debug().
		Int("sample_rate", pcmFormat.SampleRate).
		Uint("bit_depth", uint(pcmFormat.BitDepth)).
		Uint("channels", pcmFormat.Channels).
		Msg("stream opened")

	pcm, err := decodeAll(dec, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)

		return 1
	}

	fmt.Fprintf(os.Stderr, "%d Hz, %d-bit, %d ch, %d bytes PCM\n",
		pcmFormat.SampleRate, pcmFormat.BitDepth, pcmFormat.Channels, len(pcm))

	if outputFormat == formatWAV {
		err = wav.Write(os.Stdout, pcmFormat, pcm)
	} else {
		_, err = os.Stdout.Write(pcm)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)

		return 1
	}

	return 0
}

// decodeAll drains dec frame by frame, logging per-frame telemetry at debug
// level, and returns the accumulated PCM bytes.
func decodeAll(dec *flacstream.Decoder, logger zerolog.Logger) ([]byte, error) {
	var pcm []byte

	for {
		info, frame, err := dec.DecodeFrame()
		if err != nil {
			if err == io.EOF { //nolint:errorlint // DecodeFrame returns io.EOF literally, not wrapped.
				return pcm, nil
			}

			return nil, err
		}

		logger.Debug().
			Int("block_size", info.BlockSize).
			Int("sample_rate", info.SampleRate).
			Str("channel_assignment", info.ChannelAssignment).
			Msg("decoded frame")

		pcm = append(pcm, frame...)
	}
}

// openInput returns a Reader for the given path, or buffers stdin when path is "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, func() {}, fmt.Errorf("reading stdin: %w", err)
		}

		return bytes.NewReader(data), func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening %s: %w", path, err)
	}

	return file, func() { _ = file.Close() }, nil
}
