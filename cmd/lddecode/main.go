/*
NAME
  main.go

DESCRIPTION
  lddecode is a command-line NTSC TBC-to-RGB decoder: it reads a raw
  16-bit sample stream and its accompanying `<input>.json` metadata
  document, and writes a flat 16-bit RGB triplet stream.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package main is the lddecode CLI entry point.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/decoder"
	"github.com/ldvision/lddecode/metadata"
	"github.com/ldvision/lddecode/rgbio"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "lddecode.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

// decoderFlagValues maps the -f/--decoder flag's string values onto
// decoder.Mode.
var decoderFlagValues = map[string]decoder.Mode{
	"pal2d":       decoder.ModePAL2D,
	"transform2d": decoder.ModeTransform2D,
	"transform3d": decoder.ModeTransform3D,
	"ntsc2d":      decoder.ModeNTSC2D,
	"ntsc3d":      decoder.ModeNTSC3D,
	"mono":        decoder.ModeMono,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lddecode", flag.ContinueOnError)

	start := fs.Int("s", 0, "first frame to decode")
	fs.IntVar(start, "start", 0, "first frame to decode")
	length := fs.Int("l", 0, "number of frames to decode (0 = to end of input)")
	fs.IntVar(length, "length", 0, "number of frames to decode (0 = to end of input)")
	reverse := fs.Bool("r", false, "accepted for compatibility; has no effect (fields are always decoded in forward order)")
	fs.BoolVar(reverse, "reverse", false, "accepted for compatibility; has no effect (fields are always decoded in forward order)")
	blackAndWhite := fs.Bool("b", false, "force black-and-white (luminance-only) output")
	fs.BoolVar(blackAndWhite, "blackandwhite", false, "force black-and-white (luminance-only) output")
	quiet := fs.Bool("q", false, "suppress info and warning logging")
	fs.BoolVar(quiet, "quiet", false, "suppress info and warning logging")
	debug := fs.Bool("d", false, "enable debug logging")
	fs.BoolVar(debug, "debug", false, "enable debug logging")
	decoderName := fs.String("f", "ntsc2d", "decoder variant: pal2d|transform2d|transform3d|ntsc2d|ntsc3d|mono")
	fs.StringVar(decoderName, "decoder", "ntsc2d", "decoder variant: pal2d|transform2d|transform3d|ntsc2d|ntsc3d|mono")
	threads := fs.Int("t", 0, "number of decode worker threads (0 = runtime.NumCPU())")
	fs.IntVar(threads, "threads", 0, "number of decode worker threads (0 = runtime.NumCPU())")
	ofTest := fs.Bool("o", false, "overlay the 3D comb's per-pixel motion metric in place of chroma, for debugging")
	fs.BoolVar(ofTest, "oftest", false, "overlay the 3D comb's per-pixel motion metric in place of chroma, for debugging")
	white100 := fs.Bool("w", false, "use the 100% white reference level instead of the default 75% scale")
	fs.BoolVar(white100, "white", false, "use the 100% white reference level instead of the default 75% scale")
	showVersion := fs.Bool("version", false, "show version")

	if err := fs.Parse(args); err != nil {
		return -1
	}
	if *showVersion {
		fmt.Println(version)
		return 0
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: lddecode [flags] <input> <output>")
		return -1
	}
	input, output := fs.Arg(0), fs.Arg(1)

	mode, ok := decoderFlagValues[*decoderName]
	if !ok {
		fmt.Fprintf(os.Stderr, "lddecode: unknown decoder variant %q\n", *decoderName)
		return -1
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	level := logging.Info
	if *debug {
		level = logging.Debug
	}
	log := logging.New(level, io.MultiWriter(fileLog, os.Stderr), *quiet)

	meta, err := metadata.Load(input + ".json")
	if err != nil {
		log.Error("failed to load metadata", "error", err)
		return -1
	}

	in, err := os.Open(input)
	if err != nil {
		log.Error("failed to open input", "error", err)
		return -1
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		log.Error("failed to create output", "error", err)
		return -1
	}
	defer out.Close()

	cfg := decoder.Config{
		Logger:             log,
		Mode:               mode,
		BlackAndWhite:      *blackAndWhite,
		WhitePoint100:      *white100,
		ShowOpticalFlowMap: *ofTest,
		Threads:            *threads,
		Start:              *start,
		Length:             *length,
		Reverse:            *reverse,
	}

	sink := rgbio.NewWriter(out, 0)
	dec, err := decoder.New(cfg, in, meta, sink)
	if err != nil {
		log.Error("failed to configure decoder", "error", err)
		return -1
	}

	if err := dec.Start(); err != nil {
		log.Error("failed to start decoder", "error", err)
		return -1
	}
	if err := <-dec.Errors(); err != nil {
		log.Error("decode failed", "error", err)
		return -1
	}
	dec.Stop()
	return 0
}
