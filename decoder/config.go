/*
NAME
  config.go

DESCRIPTION
  config.go defines Decoder's configuration: decode mode, thread count
  and the handful of flags exposed on the CLI.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package decoder

import (
	"fmt"
	"runtime"

	"github.com/ausocean/utils/logging"
)

// Mode selects the decoding variant, mirroring ld-chroma-decoder's
// -f/--decoder flag.
type Mode int

const (
	// ModeNTSC2D is the line-delay (2D) comb-filtered NTSC decode; the
	// default.
	ModeNTSC2D Mode = iota
	// ModeNTSC3D additionally applies the motion-guided frame-delay (3D)
	// comb.
	ModeNTSC3D
	// ModeMono emits luminance only: chroma is demodulated without the
	// 2D comb and then zeroed.
	ModeMono
	// ModePAL2D is acknowledged on the CLI surface but not implemented;
	// Validate rejects it explicitly (spec.md Non-goals).
	ModePAL2D
	// ModeTransform2D and ModeTransform3D select the frequency-domain
	// ("transform") decoder variants; acknowledged on the CLI surface,
	// not implemented, same as ModePAL2D.
	ModeTransform2D
	ModeTransform3D
)

func (m Mode) String() string {
	switch m {
	case ModeNTSC2D:
		return "ntsc2d"
	case ModeNTSC3D:
		return "ntsc3d"
	case ModeMono:
		return "mono"
	case ModePAL2D:
		return "pal2d"
	case ModeTransform2D:
		return "transform2d"
	case ModeTransform3D:
		return "transform3d"
	default:
		return "unknown"
	}
}

// implemented reports whether this mode has an actual decode path, as
// opposed to being acknowledged on the CLI surface only.
func (m Mode) implemented() bool {
	switch m {
	case ModeNTSC2D, ModeNTSC3D, ModeMono:
		return true
	default:
		return false
	}
}

// Config holds the full set of tunables for a Decoder run.
type Config struct {
	Logger logging.Logger

	Mode Mode

	// BlackAndWhite forces mono output regardless of Mode; it mirrors
	// the -b/--blackandwhite CLI flag layered on top of -f/--decoder.
	BlackAndWhite bool

	// WhitePoint100 selects the 100% white reference level instead of
	// the default 75% scale (-w/--white).
	WhitePoint100 bool

	// Use3D enables the motion-guided frame-delay comb; implied by
	// Mode == ModeNTSC3D but may also be set directly by callers of this
	// package (the CLI has no separate flag for it).
	Use3D bool

	// ShowOpticalFlowMap substitutes the per-pixel 3D-comb motion metric
	// into the output as a debug overlay (-o/--oftest).
	ShowOpticalFlowMap bool

	// Threads is the worker pool size. Zero means "use runtime.NumCPU()".
	Threads int

	// Start and Length select a sub-range of frames (field pairs) to
	// decode; Length zero means "to the end of input". Output frames are
	// numbered from 0 regardless of Start.
	Start  int
	Length int

	// Reverse carries the -r/--reverse flag. The decoder does not read
	// it: fields are always decoded in forward order.
	Reverse bool
}

// Validate checks Config for internal consistency and fills in derived
// defaults (Threads == 0 becomes runtime.NumCPU()). It does not touch
// the metadata document; metadata.Metadata.Validate covers that.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("decoder: config: Logger must not be nil")
	}
	if !c.Mode.implemented() {
		return fmt.Errorf("decoder: config: decoder mode %v is acknowledged but not implemented", c.Mode)
	}
	if c.Threads < 0 {
		return fmt.Errorf("decoder: config: Threads must not be negative, got %d", c.Threads)
	}
	if c.Threads == 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.Start < 0 {
		return fmt.Errorf("decoder: config: Start must not be negative, got %d", c.Start)
	}
	if c.Length < 0 {
		return fmt.Errorf("decoder: config: Length must not be negative, got %d", c.Length)
	}
	if c.Mode == ModeNTSC3D {
		c.Use3D = true
	}
	if c.BlackAndWhite {
		c.Mode = ModeMono
	}
	return nil
}
