/*
NAME
  demod.go

DESCRIPTION
  demod.go implements the per-line quadrature chroma demodulator: it
  recovers Y/I/Q from a PLL-locked line of samples, applies the Y/chroma
  band-split filters, and maintains the one-line ring buffer used by the
  2D comb filter.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package chroma implements the NTSC chroma demodulator: quadrature
// demodulation, the 2D (line-delay) comb filter and the motion-guided 3D
// (frame-delay) comb filter.
package chroma

import (
	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/dsp"
	"github.com/ldvision/lddecode/tbc"
)

// DefaultChromaGain is the empirical I/Q gain applied after quadrature
// demodulation. Its derivation is not documented upstream; per spec.md's
// open questions the value is preserved verbatim and exposed as a
// tunable constant rather than re-derived.
const DefaultChromaGain = 2.5

// groupDelayOffset is the sample offset (in the recovered Y delay line)
// used to reconstruct the carrier when adding chroma back into Y; it
// mirrors the -3 offset applied to the I/Q lookup in the production
// comb-filter path.
const groupDelayOffset = 3

// Demodulator recovers Y/I/Q for one field's lines. It owns its own
// filter instances and 2D comb ring buffer; it is not safe for
// concurrent use and must not be shared between decode workers.
type Demodulator struct {
	log logging.Logger

	iFilter, qFilter *dsp.Filter // 30-tap 1.3MHz chroma band-pass.
	yDelay           *dsp.Filter // 17-sample group-delay compensation for Y.

	chromaGain float64
	comb2D     bool

	prevLineI, prevLineQ []float64 // Previous line's I/Q, for the 2D comb.
	havePrevLine         bool
}

// New returns a Demodulator. comb2D enables the line-delay comb filter;
// when false, raw (uncombed) I/Q is emitted.
func New(log logging.Logger, comb2D bool) (*Demodulator, error) {
	iF, err := dsp.NewFromTable(dsp.TableChromaBandpass)
	if err != nil {
		return nil, err
	}
	qF, err := dsp.NewFromTable(dsp.TableChromaBandpass)
	if err != nil {
		return nil, err
	}
	yD, err := dsp.NewFromTable(dsp.TableGroupDelay)
	if err != nil {
		return nil, err
	}
	return &Demodulator{
		log:        log,
		iFilter:    iF,
		qFilter:    qF,
		yDelay:     yD,
		chromaGain: DefaultChromaGain,
		comb2D:     comb2D,
	}, nil
}

// ResetField clears the 2D comb's line-to-line memory; call once per
// field so that chroma from the previous field's last line never leaks
// into the new field's first line.
func (d *Demodulator) ResetField() {
	d.havePrevLine = false
	d.prevLineI = nil
	d.prevLineQ = nil
}

// DemodulateLine demodulates one line of samples against the given
// locked PLL, returning per-sample Y, I and Q slices the same length as
// samples. Pixels outside [activeStart, activeEnd) are cleared to the
// black level (zero).
func (d *Demodulator) DemodulateLine(samples []tbc.Sample, ire tbc.IRELevel, pll *tbc.PLL, activeStart, activeEnd int) (y, i, q []float64) {
	n := len(samples)
	y = make([]float64, n)
	i = make([]float64, n)
	q = make([]float64, n)

	d.iFilter.Clear(0)
	d.qFilter.Clear(0)
	d.yDelay.Clear(0)

	rawI := make([]float64, n)
	rawQ := make([]float64, n)

	for x := 0; x < n; x++ {
		v := ire.Normalize(samples[x])

		qComp := d.qFilter.Feed(v * pll.CosAt(x))
		iComp := d.iFilter.Feed(v * -pll.SinAt(x))
		rawI[x], rawQ[x] = iComp, qComp

		yRaw := d.yDelay.Feed(v)
		yVal := yRaw + 2*iComp*pll.CosAt(x-groupDelayOffset) + 2*qComp*pll.SinAt(x-groupDelayOffset)
		y[x] = yVal
	}

	for x := activeStart; x < activeEnd && x < n; x++ {
		if x < 0 {
			continue
		}
		iVal := rawI[x] * d.chromaGain
		qVal := rawQ[x] * d.chromaGain
		if d.comb2D && d.havePrevLine && x < len(d.prevLineI) {
			iVal = (iVal - d.prevLineI[x]) / 2
			qVal = (qVal - d.prevLineQ[x]) / 2
		}
		i[x] = iVal
		q[x] = qVal
	}

	// Black-level fill outside the active video range.
	for x := 0; x < activeStart && x < n; x++ {
		y[x], i[x], q[x] = 0, 0, 0
	}
	for x := activeEnd; x < n; x++ {
		y[x], i[x], q[x] = 0, 0, 0
	}

	// Roll the ring buffer forward: store this line's pre-comb (scaled)
	// I/Q for the next line's comb pass.
	curI := make([]float64, n)
	curQ := make([]float64, n)
	for x := activeStart; x < activeEnd && x < n; x++ {
		if x < 0 {
			continue
		}
		curI[x] = rawI[x] * d.chromaGain
		curQ[x] = rawQ[x] * d.chromaGain
	}
	d.prevLineI, d.prevLineQ = curI, curQ
	d.havePrevLine = true

	return y, i, q
}
