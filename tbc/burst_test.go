/*
NAME
  burst_test.go

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package tbc

import (
	"math"
	"testing"
)

var testIRE = IRELevel{Black: 32768, White: 65535}

// syntheticBurstLine builds a full line's worth of samples containing a
// pure subcarrier-frequency tone of the given normalized amplitude and
// phase across the whole line (including, but not limited to, the burst
// window); this is sufficient to exercise ProcessLine's windowed scan.
func syntheticBurstLine(amp, phase float64) []Sample {
	const lineLen = 1820
	s := make([]Sample, lineLen)
	for n := range s {
		v := amp * math.Cos(2*math.Pi*float64(n)/SamplesPerCycle+phase)
		s[n] = testIRE.Denormalize(v)
	}
	return s
}

func TestPhaseInvariantRange(t *testing.T) {
	p, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	phases := []float64{0, 0.3, -0.7, 1.9, -2.8, 3.14}
	for _, ph := range phases {
		line := syntheticBurstLine(0.06, ph)
		res := p.ProcessLine(line, testIRE, 1820, 1820)
		if res.Phase <= -math.Pi || res.Phase > math.Pi {
			t.Fatalf("Phase = %v out of (-pi, pi] range", res.Phase)
		}
	}
}

func TestBurstOnlySanityConvergesToZeroPhase(t *testing.T) {
	p, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	// A burst in antiphase with the reference oscillator correlates to a
	// negative I component (bestI<0): this is the nominal locked case,
	// where the fc>0 quadrant correction must stay dormant.
	line := syntheticBurstLine(0.06, math.Pi)
	var last Result
	for i := 0; i < 10; i++ {
		last = p.ProcessLine(line, testIRE, 1820, 1820)
	}
	if math.Abs(last.Phase) > 0.05 {
		t.Fatalf("Phase after 10 lines = %v, want within 0.05 of 0", last.Phase)
	}
}

// TestQuadrantCorrectionAppliesOnDriftedBurst exercises burst.go:143-149's
// nested fc>0/igap>nominalLineLength branches directly, per
// ntsc-decoder.cxx:608-619. A drifted burst phase (here, in phase with the
// reference oscillator rather than the nominal antiphase lock point) drives
// bestI positive, which must fold the raw atan2 result through a ±pi/2
// correction whose sign depends on which side of nominalLineLength igap
// falls.
func TestQuadrantCorrectionAppliesOnDriftedBurst(t *testing.T) {
	const drifted = 0 // In phase with the reference: bestI>0.

	above, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	line := syntheticBurstLine(0.06, drifted)
	resAbove := above.ProcessLine(line, testIRE, nominalLineLength+20, 1820)
	if !resAbove.Locked {
		t.Fatalf("expected Locked=true, level=%v", resAbove.Level)
	}
	wantAbove := -math.Pi / 2 * math.Sqrt2
	if math.Abs(resAbove.Phase-wantAbove) > 0.3 {
		t.Fatalf("igap>nominalLineLength: Phase = %v, want near %v", resAbove.Phase, wantAbove)
	}

	below, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	resBelow := below.ProcessLine(line, testIRE, nominalLineLength-20, 1820)
	if !resBelow.Locked {
		t.Fatalf("expected Locked=true, level=%v", resBelow.Level)
	}
	wantBelow := math.Pi / 2 * math.Sqrt2
	if math.Abs(resBelow.Phase-wantBelow) > 0.3 {
		t.Fatalf("igap<=nominalLineLength: Phase = %v, want near %v", resBelow.Phase, wantBelow)
	}

	// The two branches must disagree in sign: collapsing them to an
	// unconditional correction (the prior bug) would make them equal.
	if (resAbove.Phase > 0) == (resBelow.Phase > 0) {
		t.Fatalf("igap>nominalLineLength and igap<=nominalLineLength produced same-signed Phase: %v, %v",
			resAbove.Phase, resBelow.Phase)
	}
}

func TestLockCriterionRejectsWeakBurst(t *testing.T) {
	p, err := NewPLL(ModeCBurst, testLogger())
	if err != nil {
		t.Fatalf("NewPLL: %v", err)
	}
	line := syntheticBurstLine(0.002, 0.5) // Below burstLevelMin.
	res := p.ProcessLine(line, testIRE, 1820, 1820)
	if res.Locked {
		t.Fatalf("expected Locked=false for sub-threshold burst, level=%v", res.Level)
	}
	if res.Phase != 0 {
		t.Fatalf("expected prior phase (0) to be carried, got %v", res.Phase)
	}
}
