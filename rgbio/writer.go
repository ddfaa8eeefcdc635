/*
NAME
  writer.go

DESCRIPTION
  writer.go converts a decoded frame's Y/I/Q plane to gamma-corrected
  16-bit RGB and writes it as a flat little-endian triplet stream,
  mirroring device/file's io.Writer-based device style.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package rgbio converts decoded Y/I/Q frame planes to 16-bit RGB and
// writes them to an io.Writer as a flat, headerless byte stream.
package rgbio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ldvision/lddecode/field"
)

// gamma is the NTSC CRT gamma used to convert linear-ish Y/I/Q back to
// display-referred RGB, matching the 2.2 reference value used by
// ld-chroma-decoder's RGB conversion stage.
const gamma = 2.2

// Writer converts Frame planes to RGB and writes them to an underlying
// io.Writer. It implements field.FrameSink.
type Writer struct {
	w   io.Writer
	pad int

	buf []byte // Reused per-frame scratch buffer.
}

// NewWriter returns a Writer that writes to w, padding every edge of
// each frame's active region by pad samples/lines before cropping
// (spec.md section 6, active-region crop + pad).
func NewWriter(w io.Writer, pad int) *Writer {
	return &Writer{w: w, pad: pad}
}

var _ field.FrameSink = (*Writer)(nil)

// WriteFrame crops f to its active region (widened by the configured
// pad), converts each pixel to 16-bit RGB, and writes the flat
// little-endian triplet stream to the underlying writer.
func (rw *Writer) WriteFrame(f *field.Frame) error {
	p := f.Planes
	if p == nil {
		return fmt.Errorf("rgbio: frame %d has no decoded planes", f.Index)
	}

	x0 := clamp(f.ActiveVideoStart-rw.pad, 0, p.Width)
	x1 := clamp(f.ActiveVideoEnd+rw.pad, 0, p.Width)
	y0 := clamp(f.FirstActiveLine-rw.pad, 0, p.Height)
	y1 := clamp(f.LastActiveLine+1+rw.pad, 0, p.Height)
	if x0 >= x1 || y0 >= y1 {
		return fmt.Errorf("rgbio: frame %d: empty crop region [%d,%d)x[%d,%d)", f.Index, x0, x1, y0, y1)
	}

	cropW := x1 - x0
	cropH := y1 - y0
	need := cropW * cropH * 3 * 2
	if cap(rw.buf) < need {
		rw.buf = make([]byte, need)
	}
	buf := rw.buf[:need]

	black := float64(f.Black16bIre)
	white := float64(f.White16bIre)

	off := 0
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			idx := row*p.Width + col
			var r, g, b float64
			if f.MotionMap != nil {
				// showOpticalFlowMap debug overlay: substitute the motion
				// metric into the red channel, leave G/B at luminance.
				y := gammaScale(p.Y[idx], black, white)
				r = clampUnit(f.MotionMap[idx]) * 65535
				g, b = y, y
			} else {
				r, g, b = yiqToRGB(p.Y[idx], p.I[idx], p.Q[idx], black, white)
			}
			binary.LittleEndian.PutUint16(buf[off:], uint16(clampUnit16(r)))
			binary.LittleEndian.PutUint16(buf[off+2:], uint16(clampUnit16(g)))
			binary.LittleEndian.PutUint16(buf[off+4:], uint16(clampUnit16(b)))
			off += 6
		}
	}

	if _, err := rw.w.Write(buf); err != nil {
		return fmt.Errorf("rgbio: frame %d: write failed: %w", f.Index, err)
	}
	return nil
}

// yiqToRGB converts one normalized Y/I/Q sample to 16-bit gamma-corrected
// RGB, given the field's black/white reference levels.
func yiqToRGB(y, i, q, black, white float64) (r, g, b float64) {
	// Standard YIQ->RGB matrix, applied in the normalized [0,1] domain
	// and then rescaled by the reference span.
	span := white - black
	rNorm := y + 0.956*i + 0.621*q
	gNorm := y - 0.272*i - 0.647*q
	bNorm := y - 1.106*i + 1.703*q

	r = gammaCorrect(rNorm)*span + black
	g = gammaCorrect(gNorm)*span + black
	b = gammaCorrect(bNorm)*span + black
	return r, g, b
}

// gammaScale maps a normalized Y sample into the 16-bit reference range
// without gamma correction (used for the luminance channel when the
// motion-map overlay is active).
func gammaScale(y, black, white float64) float64 {
	return y*(white-black) + black
}

// gammaCorrect applies display gamma to a normalized (possibly
// out-of-[0,1]) linear value, preserving sign for chroma excursions
// below black.
func gammaCorrect(v float64) float64 {
	if v < 0 {
		return -math.Pow(-v, 1/gamma)
	}
	return math.Pow(v, 1/gamma)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampUnit16(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return v
}
