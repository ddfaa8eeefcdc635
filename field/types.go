/*
NAME
  types.go

DESCRIPTION
  types.go defines the Field and Frame data model: a Field is one half of
  an interlaced frame as delivered by the upstream time-base corrector;
  a Frame pairs two fields and carries the derived active-region and
  reference-level metadata needed to crop and convert to RGB.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package field implements the field pool and frame assembler: the
// worker-pool scheduler that partitions the field sequence across
// threads, supplies each worker with its lookbehind/lookahead window,
// and reorders completed frames into strictly increasing output order.
package field

import (
	"github.com/ldvision/lddecode/chroma"
	"github.com/ldvision/lddecode/tbc"
)

// DropoutLocation marks an interval on one line known to be corrupted.
type DropoutLocation struct {
	FieldLine  int
	StartX     int
	EndX       int
	Location   DropoutKind
}

// DropoutKind classifies where on a line a dropout falls.
type DropoutKind int

const (
	DropoutVisibleLine DropoutKind = iota
	DropoutColourBurst
	DropoutUnknown
)

// Field is one half of an interlaced frame.
type Field struct {
	Seq            int // Unique, monotonically increasing sequence number.
	IsFirstField   bool
	SyncConf       float64
	MedianBurstIRE float64
	FieldPhaseID   int
	DropOuts       []DropoutLocation

	// VBI, NTSC and VITS metrics are carried opaquely: this decoder
	// neither interprets nor discards them, so that an external
	// VBI-only processor can still consume them from the same
	// metadata document.
	VBI         map[string]interface{}
	NTSCFlags   map[string]interface{}
	VITSMetrics map[string]interface{}

	Width, Height int
	Samples       []tbc.Sample // Width*Height raw samples, row-major.

	LowConfidence bool // Set by the decode worker on an anomalous line, PLL unlock or sync loss.
}

// Frame pairs a first and second field.
type Frame struct {
	Index int // Monotonically increasing output order.

	First, Second *Field

	FirstActiveLine, LastActiveLine int
	ActiveVideoStart, ActiveVideoEnd int
	Pad                              int
	Black16bIre, White16bIre         uint16

	// Planes holds the interlaced full-width Y/I/Q (pixels outside the
	// active video range are zero); the RGB sink crops it to the active
	// region.
	Planes *chroma.Plane

	// MotionMap is populated only in debug/showOpticalFlowMap mode: the
	// per-pixel 3D-comb motion metric, suitable for display as a debug
	// R channel.
	MotionMap []float64

	LowConfidence bool
}
