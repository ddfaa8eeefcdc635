/*
NAME
  filter.go

DESCRIPTION
  filter.go implements a generic linear difference equation (FIR/IIR)
  primitive with saved delay lines, used by the sync tracker, burst PLL and
  chroma demodulator.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package dsp provides streaming FIR/IIR filtering primitives and a
// registry of named coefficient tables used throughout the decode
// pipeline.
package dsp

import "fmt"

// Filter evaluates an arbitrary linear difference equation
//
//	a[0]*y[n] = sum(b[k]*x[n-k]) - sum(a[k]*y[n-k], k>=1)
//
// one sample at a time. A Filter is not safe for concurrent use; each
// decode worker owns its own instances.
type Filter struct {
	a, b []float64 // Coefficients, a[0] always present (implicit 1 for FIR).
	x, y []float64 // Delay lines, length order+1.
}

// New constructs a Filter from the given coefficients. If a is nil the
// filter is pure FIR with an implicit a = []float64{1}.
func New(order int, a, b []float64) (*Filter, error) {
	if order < 0 {
		return nil, fmt.Errorf("dsp: invalid filter order %d", order)
	}
	if len(b) != order+1 {
		return nil, fmt.Errorf("dsp: b has length %d, want %d", len(b), order+1)
	}
	if a == nil {
		a = []float64{1}
	}
	if len(a) != order+1 {
		return nil, fmt.Errorf("dsp: a has length %d, want %d", len(a), order+1)
	}
	if a[0] == 0 {
		return nil, fmt.Errorf("dsp: a[0] must be non-zero")
	}
	f := &Filter{
		a: append([]float64(nil), a...),
		b: append([]float64(nil), b...),
		x: make([]float64, order+1),
		y: make([]float64, order+1),
	}
	return f, nil
}

// Order returns the filter order.
func (f *Filter) Order() int { return len(f.b) - 1 }

// Clear sets every element of both delay lines to v.
func (f *Filter) Clear(v float64) {
	for i := range f.x {
		f.x[i] = v
	}
	for i := range f.y {
		f.y[i] = v
	}
}

// Feed advances the filter by one sample and returns the new output.
// Feed runs in O(order).
func (f *Filter) Feed(v float64) float64 {
	// Shift delay lines.
	copy(f.x[1:], f.x[:len(f.x)-1])
	f.x[0] = v

	var acc float64
	for k, bk := range f.b {
		acc += bk * f.x[k]
	}
	for k := 1; k < len(f.a); k++ {
		acc -= f.a[k] * f.y[k]
	}
	out := acc / f.a[0]

	copy(f.y[1:], f.y[:len(f.y)-1])
	f.y[0] = out
	return out
}

// Peek returns the most recently produced output without advancing the
// filter.
func (f *Filter) Peek() float64 {
	return f.y[0]
}

// Clone returns a new Filter sharing no state with f: same coefficients,
// independent (zeroed) delay lines. This lets many decoder instances
// borrow one immutable coefficient slice while keeping their own causal
// state, per the re-architecture note on shared-mutable filter objects.
func (f *Filter) Clone() *Filter {
	c := &Filter{
		a: f.a, // Coefficients are immutable once constructed; safe to share.
		b: f.b,
		x: make([]float64, len(f.x)),
		y: make([]float64, len(f.y)),
	}
	return c
}
