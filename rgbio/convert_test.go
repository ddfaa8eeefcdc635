package rgbio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ldvision/lddecode/chroma"
	"github.com/ldvision/lddecode/field"
)

func solidFrame(width, height int, y, i, q float64, black, white uint16) *field.Frame {
	n := width * height
	plane := &chroma.Plane{Width: width, Height: height, Y: make([]float64, n), I: make([]float64, n), Q: make([]float64, n)}
	for idx := range plane.Y {
		plane.Y[idx], plane.I[idx], plane.Q[idx] = y, i, q
	}
	return &field.Frame{
		Index:            0,
		FirstActiveLine:  0,
		LastActiveLine:   height - 1,
		ActiveVideoStart: 0,
		ActiveVideoEnd:   width,
		Black16bIre:      black,
		White16bIre:      white,
		Planes:           plane,
	}
}

func TestWriteFrameBlackFrameIsAllZero(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	f := solidFrame(4, 4, 0, 0, 0, 0, 65535)
	if err := w.WriteFrame(f); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	for _, b := range buf.Bytes() {
		if b != 0 {
			t.Fatalf("expected an all-zero byte stream for a black frame, found non-zero byte")
		}
	}
}

func TestWriteFrameConstantLuminanceIsGray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	f := solidFrame(2, 2, 1.0, 0, 0, 0, 65535)
	if err := w.WriteFrame(f); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	data := buf.Bytes()
	if len(data) != 2*2*3*2 {
		t.Fatalf("wrote %d bytes, want %d", len(data), 2*2*3*2)
	}
	r := binary.LittleEndian.Uint16(data[0:])
	g := binary.LittleEndian.Uint16(data[2:])
	b := binary.LittleEndian.Uint16(data[4:])
	if r != g || g != b {
		t.Fatalf("zero-chroma pixel should be gray, got r=%d g=%d b=%d", r, g, b)
	}
	if r < 60000 {
		t.Fatalf("full-white luminance should map near 65535, got %d", r)
	}
}

func TestWriteFrameRejectsMissingPlanes(t *testing.T) {
	w := NewWriter(new(bytes.Buffer), 0)
	f := &field.Frame{Index: 0}
	if err := w.WriteFrame(f); err == nil {
		t.Fatal("expected an error for a frame with no decoded planes")
	}
}

func TestWriteFrameRejectsEmptyActiveRegion(t *testing.T) {
	w := NewWriter(new(bytes.Buffer), 0)
	f := solidFrame(4, 4, 0.5, 0, 0, 0, 65535)
	f.ActiveVideoStart = 4
	f.ActiveVideoEnd = 4
	if err := w.WriteFrame(f); err == nil {
		t.Fatal("expected an error for a frame whose active region is empty")
	}
}
