/*
NAME
  filter_test.go

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package dsp

import "testing"

func TestFeedAfterClearIsZero(t *testing.T) {
	f, err := New(2, nil, []float64{0.25, 0.5, 0.25})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.Clear(0)
	for i := 0; i < 3; i++ {
		if got := f.Feed(0); got != 0 {
			t.Fatalf("Feed(0) after Clear(0) = %v, want 0 (sample %d)", got, i)
		}
	}
}

func TestFeedRunningSum(t *testing.T) {
	// A pure 3-tap averaging FIR.
	f, err := New(2, nil, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.Clear(0)
	f.Feed(3)
	f.Feed(3)
	got := f.Feed(3)
	if want := 3.0; got != want {
		t.Fatalf("Feed = %v, want %v", got, want)
	}
	if got, want := f.Peek(), 3.0; got != want {
		t.Fatalf("Peek = %v, want %v", got, want)
	}
}

func TestNewRejectsBadCoefficients(t *testing.T) {
	if _, err := New(1, nil, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for mismatched b length")
	}
	if _, err := New(1, []float64{0, 1}, []float64{1, 1}); err == nil {
		t.Fatal("expected error for zero a[0]")
	}
}

func TestCloneIndependentState(t *testing.T) {
	f, err := New(1, nil, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.Feed(10)
	g := f.Clone()
	g.Feed(0)
	if f.Peek() == g.Peek() {
		t.Fatalf("clone shares delay-line state: f=%v g=%v", f.Peek(), g.Peek())
	}
}

func TestBuildTableIsCached(t *testing.T) {
	a, err := BuildTable(TableBurstBandpass)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	b, err := BuildTable(TableBurstBandpass)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("inconsistent table lengths: %d vs %d", len(a), len(b))
	}
	if len(a) != 65 {
		t.Fatalf("burst bandpass table length = %d, want 65", len(a))
	}
}

func TestBuildTableUnknown(t *testing.T) {
	if _, err := BuildTable("not-a-real-table"); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestGroupDelayTable(t *testing.T) {
	f, err := NewFromTable(TableGroupDelay)
	if err != nil {
		t.Fatalf("NewFromTable: %v", err)
	}
	f.Clear(0)
	for i := 0; i < 17; i++ {
		if got := f.Feed(1); got != 0 {
			t.Fatalf("sample %d: got %v, want 0 before delay elapses", i, got)
		}
	}
	if got := f.Feed(1); got != 1 {
		t.Fatalf("after 18 feeds, got %v, want 1", got)
	}
}
