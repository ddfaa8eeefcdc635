/*
NAME
  burst_fft_test.go

DESCRIPTION
  burst_fft_test.go cross-checks the PLL's windowed quadrature burst
  detector against an independent FFT-based bin-magnitude measurement,
  used only as a diagnostic during development (not part of the decode
  hot path).

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package tbc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

// subcarrierBinMagnitude returns the normalized magnitude of the subcarrier
// bin (one cycle per SamplesPerCycle samples) within the burst window,
// via a real-input FFT, as a reference measurement independent of the
// PLL's own quadrature filters.
func subcarrierBinMagnitude(line []Sample, ire IRELevel) float64 {
	n := burstWindowEnd - burstWindowStart
	if n > len(line)-burstWindowStart {
		n = len(line) - burstWindowStart
	}
	in := make([]float64, n)
	for i := 0; i < n; i++ {
		in[i] = ire.Normalize(line[burstWindowStart+i])
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, in)

	// Bin corresponding to one cycle per SamplesPerCycle samples.
	bin := n / SamplesPerCycle
	if bin <= 0 || bin >= len(coeffs) {
		return 0
	}
	c := coeffs[bin]
	return 2 * math.Hypot(real(c), imag(c)) / float64(n)
}

func TestFFTReferenceAgreesWithLockDecision(t *testing.T) {
	p, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}

	strong := syntheticBurstLine(0.06, 0)
	res := p.ProcessLine(strong, testIRE, 1820, 1820)
	if !res.Locked {
		t.Fatalf("expected Locked=true for a 0.06-amplitude burst")
	}
	if refMag := subcarrierBinMagnitude(strong, testIRE); refMag < 0.02 {
		t.Fatalf("FFT reference magnitude %v unexpectedly low for locked burst", refMag)
	}

	p2, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	weak := syntheticBurstLine(0.001, 0)
	res2 := p2.ProcessLine(weak, testIRE, 1820, 1820)
	if res2.Locked {
		t.Fatalf("expected Locked=false for a 0.001-amplitude burst")
	}
	if refMag := subcarrierBinMagnitude(weak, testIRE); refMag > 0.02 {
		t.Fatalf("FFT reference magnitude %v unexpectedly high for sub-threshold burst", refMag)
	}
}
