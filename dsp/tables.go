/*
NAME
  tables.go

DESCRIPTION
  tables.go replaces the source repository's dozens of file-scope named
  coefficient array constants with a single registry, keyed by symbolic
  name, that builds windowed-sinc FIR tables on demand at configure time.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package dsp

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Table names used by the NTSC pipeline. Kept as a closed set so that a
// lookup miss is a configuration bug, not a typo silently producing a
// zero filter.
const (
	TablePreEmphasisLPF  = "pre-emphasis-lpf"   // Y pre-filter ahead of the sync tracker.
	TableBurstBandpass   = "burst-bandpass-65"  // 65-tap 0.6MHz LPF used in the burst I/Q detector.
	TableChromaBandpass  = "chroma-bandpass-30" // 30-tap 1.3MHz LPF used in chroma demod.
	TableGroupDelay      = "group-delay-17"     // 17-sample pure delay for Y/chroma alignment.
	TableChromaPrefilter = "chroma-prefilter"   // Narrowband pre-filter ahead of chroma demod.
)

// Spec describes how to build a named table: tap count, normalized cutoff
// (fraction of sample rate), and whether to apply a flat-top window
// (mirrors codec/pcm's use of window.FlatTop for its selective-frequency
// filters).
type Spec struct {
	Taps       int
	Cutoff     float64 // Normalized cutoff, 0 < Cutoff < 0.5.
	FlatTop    bool
	PureDelay  int // If > 0, table is a pure delay line of this many taps; Cutoff/FlatTop ignored.
}

// registry maps table names to build specs. It is a fixed package-level
// literal, so BuildTable is deterministic for a given name.
var registry = map[string]Spec{
	TablePreEmphasisLPF:  {Taps: 17, Cutoff: 2.5 / 28.636}, // ~2.5MHz @ 8*Fsc.
	TableBurstBandpass:   {Taps: 65, Cutoff: 0.6 / 28.636, FlatTop: true},
	TableChromaBandpass:  {Taps: 30, Cutoff: 1.3 / 28.636, FlatTop: true},
	TableGroupDelay:      {PureDelay: 17},
	TableChromaPrefilter: {Taps: 23, Cutoff: 3.0 / 28.636},
}

// tableCache memoizes built coefficient slices; callers get a shared
// immutable slice, never a private copy, matching the re-architecture
// note that coefficients (not delay-line state) are the only thing
// safely shared across decoder instances.
var tableCache = map[string][]float64{}

// BuildTable returns the (immutable, shared) coefficient slice for the
// named table, building and caching it on first use.
func BuildTable(name string) ([]float64, error) {
	if c, ok := tableCache[name]; ok {
		return c, nil
	}
	spec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("dsp: unknown coefficient table %q", name)
	}
	var coeffs []float64
	switch {
	case spec.PureDelay > 0:
		coeffs = make([]float64, spec.PureDelay+1)
		coeffs[spec.PureDelay] = 1
	default:
		coeffs = windowedSinc(spec.Taps, spec.Cutoff, spec.FlatTop)
	}
	tableCache[name] = coeffs
	return coeffs, nil
}

// NewFromTable looks up a named table and constructs a pure-FIR Filter
// over it.
func NewFromTable(name string) (*Filter, error) {
	coeffs, err := BuildTable(name)
	if err != nil {
		return nil, err
	}
	return New(len(coeffs)-1, nil, coeffs)
}

// windowedSinc builds a symmetric windowed-sinc low-pass FIR of exactly
// taps coefficients with normalized cutoff fc (fraction of the sample
// rate), scaled to unit DC gain. When flatTop is
// true a Blackman-Harris-like flat-top window is applied (via go-dsp's
// window.FlatTop), otherwise a Hamming window, matching the style of
// codec/pcm/filters.go's newLoHiFilter.
func windowedSinc(taps int, fc float64, flatTop bool) []float64 {
	size := taps
	coeffs := make([]float64, size)
	var win []float64
	if flatTop {
		win = window.FlatTop(size)
	} else {
		win = window.Hamming(size)
	}
	b := 2 * math.Pi * fc
	for n := 0; n < size/2; n++ {
		c := float64(n) - float64(size-1)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = y * win[n]
		coeffs[size-1-n] = coeffs[n]
	}
	if size%2 == 1 {
		coeffs[size/2] = 2 * fc * win[size/2]
	}
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	for n := range coeffs {
		coeffs[n] /= sum
	}
	return coeffs
}
