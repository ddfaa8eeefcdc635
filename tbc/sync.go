/*
NAME
  sync.go

DESCRIPTION
  sync.go implements the horizontal/vertical sync state machine: it scans
  the normalized sample stream for sync pulses, classifies the inter-sync
  gap of each line, tracks a low-pass-filtered "corrected line length"
  estimate, and emits field-boundary events.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package tbc

import (
	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/dsp"
)

// State is one of the sync tracker's finite states.
type State int

const (
	StateSearching State = iota
	StateInSync
	StatePostSync
	StateLineActive
	StateVerticalBlank
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateInSync:
		return "inSync"
	case StatePostSync:
		return "postSync"
	case StateLineActive:
		return "lineActive"
	case StateVerticalBlank:
		return "verticalBlank"
	default:
		return "unknown"
	}
}

// LineKind classifies the inter-sync gap preceding a detected sync pulse.
type LineKind int

const (
	LineNormal LineKind = iota
	LineHalf
	LineAnomalous
)

// Tuning constants, specific to the NTSC 8*Fsc capture rate (~28.636MHz).
// Per spec.md's open questions, scaling these by sampleRate/(8*Fsc) for
// other capture rates is implied but not confirmed, so it is not
// attempted here.
const (
	lowThreshold       = 0.1
	windowSize         = 32
	syncCountThreshold = 24
	hysteresisLow      = 8 // windowCount below this exits StateInSync.

	halfLineMin, halfLineMax     = 880, 940
	normalLineMin, normalLineMax = 1800, 1840

	// nominalLineLength is the exact NTSC line length in samples at
	// 8*Fsc (not a band edge like normalLineMin/Max); the burst PLL's
	// adjfreq and phase-quadrant calculations are defined against this
	// literal value, not the sync-acceptance band.
	nominalLineLength     = 1820
	watchdogSync          = nominalLineLength + 260
	watchdogSynthesizedGap = nominalLineLength

	maxAnomalousLines    = 10
	verticalBlankSentinel = 253
)

// LineEvent is emitted each time a horizontal sync pulse (real or
// watchdog-synthesized) is detected.
type LineEvent struct {
	IGap            int
	Kind            LineKind
	CorrectedLength float64 // Low-pass filtered line-length estimate, samples.
	Synthesized     bool    // True if the watchdog synthesized this boundary.
}

// FieldEvent is emitted when the vertical-blank sentinel line count is
// reached, marking the end of one field.
type FieldEvent struct {
	Index   int
	Parity  int // 0 or 1, alternates every field.
	Invalid bool
}

// SyncTracker tracks horizontal and vertical sync over a normalized
// sample stream. It is not safe for concurrent use.
type SyncTracker struct {
	log   logging.Logger
	state State

	window      [windowSize]bool
	windowIdx   int
	windowCount int

	lastsync int // Samples since the last detected sync transition.
	cfline   int // Current line-within-field counter.

	vCount         int // Half-line (vertical equalization) counter for the current field.
	anomalousCount int

	fieldIndex  int
	fieldParity int
	invalid     bool

	lineLen *dsp.Filter
}

// New returns a SyncTracker ready to consume a fresh sample stream.
func New(log logging.Logger) (*SyncTracker, error) {
	f, err := dsp.New(1, []float64{1, -0.95}, []float64{0.05, 0}) // Light single-pole LPF over igap.
	if err != nil {
		return nil, err
	}
	t := &SyncTracker{log: log, lineLen: f}
	t.Reset()
	return t, nil
}

// Reset returns the tracker to its initial state. After Reset, the next
// emitted field has index 0.
func (t *SyncTracker) Reset() {
	t.state = StateSearching
	t.window = [windowSize]bool{}
	t.windowIdx = 0
	t.windowCount = 0
	t.lastsync = 0
	t.cfline = 0
	t.vCount = 0
	t.anomalousCount = 0
	t.fieldIndex = 0
	t.fieldParity = 0
	t.invalid = false
	t.lineLen.Clear(normalLineMin + (normalLineMax-normalLineMin)/2)
}

// State reports the tracker's current state.
func (t *SyncTracker) State() State { return t.state }

// FieldIndex reports the index of the field currently being accumulated.
func (t *SyncTracker) FieldIndex() int { return t.fieldIndex }

// Feed advances the tracker by one normalized sample. It returns a
// non-nil LineEvent when a sync boundary (real or synthesized) is
// crossed, and a non-nil FieldEvent when that boundary also closes a
// field.
func (t *SyncTracker) Feed(v float64) (*LineEvent, *FieldEvent) {
	t.pushWindow(v < lowThreshold)
	t.lastsync++

	// Watchdog: avoid losing line-lock entirely on a dropped HSYNC.
	if t.lastsync == watchdogSync {
		t.lastsync -= nominalLineLength
		evt := t.closeLine(watchdogSynthesizedGap, true)
		t.cfline++
		return evt, t.maybeCloseField()
	}

	if t.windowCount >= syncCountThreshold && t.state != StateInSync {
		igap := t.lastsync
		t.lastsync = 0
		t.state = StateInSync
		evt := t.closeLine(igap, false)
		t.cfline++
		return evt, t.maybeCloseField()
	}

	if t.state == StateInSync && t.windowCount < hysteresisLow {
		if t.vCount > 0 && t.vCount < 6 {
			t.state = StateVerticalBlank
		} else {
			t.state = StateLineActive
		}
	}

	return nil, nil
}

// pushWindow maintains the sliding 32-sample below-threshold count.
func (t *SyncTracker) pushWindow(low bool) {
	idx := t.windowIdx % windowSize
	if t.window[idx] {
		t.windowCount--
	}
	t.window[idx] = low
	if low {
		t.windowCount++
	}
	t.windowIdx++
}

// closeLine classifies the inter-sync gap of the line just completed and
// updates the line-length estimate accordingly.
func (t *SyncTracker) closeLine(igap int, synthesized bool) *LineEvent {
	kind := LineAnomalous
	switch {
	case synthesized:
		kind = LineNormal
		t.lineLen.Feed(float64(igap))
		t.anomalousCount = 0
	case igap > halfLineMin && igap < halfLineMax:
		kind = LineHalf
		t.vCount++
	case igap > normalLineMin && igap < normalLineMax:
		kind = LineNormal
		t.lineLen.Feed(float64(igap))
		t.anomalousCount = 0
	default:
		t.anomalousCount++
		if t.anomalousCount > maxAnomalousLines {
			t.log.Warning("sync tracker: unresolvable sync loss, resetting to searching",
				"anomalousCount", t.anomalousCount, "field", t.fieldIndex)
			t.invalid = true
			t.state = StateSearching
			t.anomalousCount = 0
			// Forget the pulse in progress so it cannot re-trigger a sync
			// on the very next sample.
			t.window = [windowSize]bool{}
			t.windowCount = 0
		}
	}
	return &LineEvent{
		IGap:            igap,
		Kind:            kind,
		CorrectedLength: t.lineLen.Peek(),
		Synthesized:     synthesized,
	}
}

// maybeCloseField emits a FieldEvent once cfline reaches the
// vertical-blank sentinel, then resets the per-field counters.
func (t *SyncTracker) maybeCloseField() *FieldEvent {
	if t.cfline < verticalBlankSentinel {
		return nil
	}
	evt := &FieldEvent{
		Index:   t.fieldIndex,
		Parity:  t.fieldParity,
		Invalid: t.invalid,
	}
	t.fieldIndex++
	t.fieldParity ^= 1
	t.cfline = 0
	t.vCount = 0
	t.invalid = false
	return evt
}
