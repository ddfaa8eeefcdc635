/*
NAME
  burst.go

DESCRIPTION
  burst.go implements the color-burst phase-locked loop: it detects the
  8-9 cycle 3.58MHz reference burst sent after each HSYNC, derives a
  phase error against the locally generated oscillator, and updates the
  tracked phase and frequency-adjustment ratio used by the chroma
  demodulator.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package tbc

import (
	"math"

	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/dsp"
)

// SamplesPerCycle is the number of baseband samples per subcarrier cycle
// at the nominal NTSC 8*Fsc capture rate.
const SamplesPerCycle = 8

// Burst window and lock-criterion constants, measured in samples since
// the preceding HSYNC (lastsync) and normalized burst magnitude.
const (
	burstWindowStart = 170
	burstWindowEnd   = 270
	burstLevelMin    = 0.02
	burstLevelMax    = 0.10
	adjFreqMin       = 0.95
	adjFreqMax       = 1.05
)

// Mode selects the frequency-adjustment strategy.
type Mode int

const (
	// ModeHSYNC derives adjfreq from the SyncTracker's line-length
	// low-pass filter output.
	ModeHSYNC Mode = iota
	// ModeCBurst derives adjfreq directly from the burst phase error.
	ModeCBurst
)

// Result reports the outcome of processing one line's burst window.
type Result struct {
	Phase   float64
	AdjFreq float64
	Locked  bool
	Level   float64
}

// PLL tracks color-burst phase and subcarrier frequency across lines.
// Not safe for concurrent use; each decode worker owns its own instance.
type PLL struct {
	log  logging.Logger
	mode Mode

	phase   float64
	adjfreq float64

	iFilter, qFilter *dsp.Filter

	sinTable, cosTable [SamplesPerCycle]float64
}

// NewPLL returns a PLL in the given frequency-tracking mode, with phase 0
// and adjfreq 1.0.
func NewPLL(mode Mode, log logging.Logger) (*PLL, error) {
	iF, err := dsp.NewFromTable(dsp.TableBurstBandpass)
	if err != nil {
		return nil, err
	}
	qF, err := dsp.NewFromTable(dsp.TableBurstBandpass)
	if err != nil {
		return nil, err
	}
	p := &PLL{log: log, mode: mode, adjfreq: 1.0, iFilter: iF, qFilter: qF}
	p.rebuildTables()
	return p, nil
}

// Phase returns the current tracked phase, always in (-pi, pi].
func (p *PLL) Phase() float64 { return p.phase }

// AdjFreq returns the current normalized frequency multiplier.
func (p *PLL) AdjFreq() float64 { return p.adjfreq }

// CosAt and SinAt return the precomputed local-oscillator lookup for
// sample offset n within a line, reflecting the last locked phase.
func (p *PLL) CosAt(n int) float64 {
	idx := ((n % SamplesPerCycle) + SamplesPerCycle) % SamplesPerCycle
	return p.cosTable[idx]
}

func (p *PLL) SinAt(n int) float64 {
	idx := ((n % SamplesPerCycle) + SamplesPerCycle) % SamplesPerCycle
	return p.sinTable[idx]
}

// ProcessLine scans samples[burstWindowStart:burstWindowEnd] (clamped to
// len(samples)) for the color burst, and updates phase/adjfreq if the
// burst is within the lock-criterion magnitude band. correctedLineLength
// is the SyncTracker's low-pass filtered line-length estimate, used by
// ModeHSYNC; igap is the inter-sync gap of the line just closed, used to
// resolve the phase-error quadrant.
func (p *PLL) ProcessLine(samples []Sample, ire IRELevel, igap int, correctedLineLength float64) Result {
	p.iFilter.Clear(0)
	p.qFilter.Clear(0)

	end := burstWindowEnd
	if end > len(samples) {
		end = len(samples)
	}

	var bestMag, bestI, bestQ float64
	for n := burstWindowStart; n < end; n++ {
		v := ire.Normalize(samples[n])
		angle := 2 * math.Pi * float64(n) / SamplesPerCycle
		fc := p.iFilter.Feed(v * math.Cos(angle))
		fci := p.qFilter.Feed(v * -math.Sin(angle))
		mag := fc*fc + fci*fci
		if mag > bestMag {
			bestMag, bestI, bestQ = mag, fc, fci
		}
	}
	level := math.Sqrt(bestMag)

	if level < burstLevelMin || level > burstLevelMax {
		// Outside the lock criterion: carry the prior estimate.
		return Result{Phase: p.phase, AdjFreq: p.adjfreq, Locked: false, Level: level}
	}

	padj := math.Atan2(bestQ, math.Sqrt(bestI*bestI+bestQ*bestQ))
	if bestI > 0 {
		if igap > nominalLineLength {
			padj = math.Pi/2 - padj
		} else {
			padj = -math.Pi/2 - padj
		}
	}

	p.phase = wrapPhase(p.phase - padj*math.Sqrt2)

	prevAdjFreq := p.adjfreq
	switch p.mode {
	case ModeHSYNC:
		if correctedLineLength > 0 {
			p.adjfreq = nominalLineLength / correctedLineLength
		}
	case ModeCBurst:
		denom := nominalLineLength + padj*math.Pi/2
		if denom != 0 {
			p.adjfreq = nominalLineLength / denom
		}
	}
	if p.adjfreq < adjFreqMin || p.adjfreq > adjFreqMax {
		p.log.Warning("burst PLL: adjfreq out of band, carrying prior estimate",
			"adjfreq", p.adjfreq, "prev", prevAdjFreq)
		p.adjfreq = prevAdjFreq
	}

	p.rebuildTables()
	return Result{Phase: p.phase, AdjFreq: p.adjfreq, Locked: true, Level: level}
}

// wrapPhase normalizes a phase into (-pi, pi].
func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p <= -math.Pi {
		p += 2 * math.Pi
	}
	return p
}

// rebuildTables recomputes the sin/cos local-oscillator lookup tables to
// reflect the current locked phase.
func (p *PLL) rebuildTables() {
	for n := 0; n < SamplesPerCycle; n++ {
		angle := 2*math.Pi*float64(n)/SamplesPerCycle + p.phase
		p.cosTable[n] = math.Cos(angle)
		p.sinTable[n] = math.Sin(angle)
	}
}
