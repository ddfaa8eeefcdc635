/*
NAME
  worker.go

DESCRIPTION
  worker.go implements the per-field decode worker: it drives a field's
  raw sample stream through the sync tracker, the burst PLL and the
  chroma demodulator, and assembles the result into a row-major Y/I/Q
  plane ready for frame pairing.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package field

import (
	"fmt"

	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/chroma"
	"github.com/ldvision/lddecode/tbc"
)

// DecodeParams carries the per-decode tuning that every worker shares,
// derived from decoder.Config and the metadata document.
type DecodeParams struct {
	IRE         tbc.IRELevel
	ActiveStart int
	ActiveEnd   int
	Comb2D      bool
	PLLMode     tbc.Mode
}

// Worker decodes one field at a time. It owns a SyncTracker, a PLL and a
// Demodulator; none of these are safe for concurrent use, so a Worker
// must not be shared between goroutines, per spec.md's "each worker
// owns independent filter state" requirement.
type Worker struct {
	log    logging.Logger
	params DecodeParams

	sync  *tbc.SyncTracker
	pll   *tbc.PLL
	demod *chroma.Demodulator
}

// NewWorker returns a Worker with fresh, independent filter state.
func NewWorker(log logging.Logger, params DecodeParams) (*Worker, error) {
	st, err := tbc.New(log)
	if err != nil {
		return nil, fmt.Errorf("field: worker: sync tracker: %w", err)
	}
	pll, err := tbc.NewPLL(params.PLLMode, log)
	if err != nil {
		return nil, fmt.Errorf("field: worker: burst PLL: %w", err)
	}
	dm, err := chroma.New(log, params.Comb2D)
	if err != nil {
		return nil, fmt.Errorf("field: worker: demodulator: %w", err)
	}
	return &Worker{log: log, params: params, sync: st, pll: pll, demod: dm}, nil
}

// Decode runs f's raw sample stream through sync detection, burst lock
// and chroma demodulation, filling in f.LowConfidence and returning a
// Plane with one row per detected line, up to f.Height rows. Lines past
// the last one detected before the samples run out are left zeroed,
// mirroring the upstream decoder's behaviour on a short trailing field.
func (w *Worker) Decode(f *Field) (*chroma.Plane, error) {
	w.sync.Reset()
	w.demod.ResetField()

	plane := &chroma.Plane{
		Width:  f.Width,
		Height: f.Height,
		Y:      make([]float64, f.Width*f.Height),
		I:      make([]float64, f.Width*f.Height),
		Q:      make([]float64, f.Width*f.Height),
	}

	row := 0
	lineStart := 0
	for idx, s := range f.Samples {
		v := w.params.IRE.Normalize(s)
		lineEvt, _ := w.sync.Feed(v)
		if lineEvt == nil {
			continue
		}

		// The window of samples belonging to the line just closed runs
		// from lineStart up to (but not including) this sample index,
		// widened/narrowed to exactly f.Width so every row lines up with
		// the field's fixed output geometry.
		windowEnd := idx
		if windowEnd-lineStart > f.Width {
			windowEnd = lineStart + f.Width
		}
		line := make([]tbc.Sample, f.Width)
		copy(line, f.Samples[lineStart:windowEnd])
		lineStart = idx

		if lineEvt.Kind == tbc.LineAnomalous {
			f.LowConfidence = true
		}

		res := w.pll.ProcessLine(line, w.params.IRE, lineEvt.IGap, lineEvt.CorrectedLength)
		if !res.Locked {
			f.LowConfidence = true
		}

		if row >= f.Height {
			break
		}
		y, i, q := w.demod.DemodulateLine(line, w.params.IRE, w.pll, w.params.ActiveStart, w.params.ActiveEnd)
		copy(plane.Y[row*f.Width:(row+1)*f.Width], y)
		copy(plane.I[row*f.Width:(row+1)*f.Width], i)
		copy(plane.Q[row*f.Width:(row+1)*f.Width], q)
		row++
	}

	if w.sync.State() == tbc.StateSearching && row < f.Height/2 {
		f.LowConfidence = true
	}
	if row < f.Height {
		w.log.Warning("field: worker: fewer lines decoded than field height",
			"decoded", row, "height", f.Height, "seq", f.Seq)
	}

	return plane, nil
}
