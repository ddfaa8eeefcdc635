package field

import (
	"bytes"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/ldvision/lddecode/tbc"
)

func workerTestLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

// syntheticField builds a Field of height lines, each lineWidth samples
// long: a 30-sample sync pulse at black level followed by a constant
// mid-gray level for the remainder of the line.
func syntheticField(seq, lineWidth, height int, ire tbc.IRELevel) *Field {
	samples := make([]tbc.Sample, lineWidth*height)
	mid := ire.Denormalize(0.5)
	for line := 0; line < height; line++ {
		base := line * lineWidth
		for x := 0; x < lineWidth; x++ {
			if x < 30 {
				samples[base+x] = ire.Black
			} else {
				samples[base+x] = mid
			}
		}
	}
	return &Field{
		Seq:     seq,
		Width:   lineWidth,
		Height:  height,
		Samples: samples,
	}
}

func TestWorkerDecodeProducesFullSizedPlane(t *testing.T) {
	ire := tbc.IRELevel{Black: 0, White: 65535}
	f := syntheticField(0, 1820, 20, ire)

	params := DecodeParams{
		IRE:         ire,
		ActiveStart: 280,
		ActiveEnd:   1700,
		Comb2D:      true,
		PLLMode:     tbc.ModeHSYNC,
	}
	w, err := NewWorker(workerTestLogger(), params)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	plane, err := w.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if plane.Width != 1820 || plane.Height != 20 {
		t.Fatalf("plane dims = %dx%d, want 1820x20", plane.Width, plane.Height)
	}
	if len(plane.Y) != 1820*20 || len(plane.I) != 1820*20 || len(plane.Q) != 1820*20 {
		t.Fatal("plane channel lengths do not match Width*Height")
	}
}

func TestWorkerDecodeLeavesInactiveColumnsAtBlack(t *testing.T) {
	ire := tbc.IRELevel{Black: 0, White: 65535}
	f := syntheticField(0, 1820, 8, ire)

	params := DecodeParams{
		IRE:         ire,
		ActiveStart: 280,
		ActiveEnd:   1700,
		Comb2D:      false,
		PLLMode:     tbc.ModeHSYNC,
	}
	w, err := NewWorker(workerTestLogger(), params)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	plane, err := w.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// Column 0 of every row is before ActiveStart and must stay at black.
	for row := 0; row < plane.Height; row++ {
		idx := row*plane.Width + 0
		if plane.I[idx] != 0 || plane.Q[idx] != 0 {
			t.Fatalf("row %d: I/Q at inactive column = %v/%v, want 0/0", row, plane.I[idx], plane.Q[idx])
		}
	}
}
