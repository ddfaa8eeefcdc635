/*
NAME
  source.go

DESCRIPTION
  source.go reads the raw sample stream (a headerless concatenation of
  16-bit little-endian samples) and slices it into fixed-geometry Field
  values, merging in the per-field metadata document entries.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package field

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ldvision/lddecode/metadata"
	"github.com/ldvision/lddecode/tbc"
)

// Source reads successive fixed-geometry fields from an underlying byte
// stream. It is stateful and must only be driven by the single reader
// thread (per spec.md's concurrency model); Pool serializes access to
// it internally.
type Source struct {
	r             io.Reader
	width, height int
	meta          *metadata.Metadata
	next          int
	buf           []byte
}

// NewSource returns a Source over r, sized per the metadata document's
// video parameters.
func NewSource(r io.Reader, meta *metadata.Metadata) *Source {
	vp := meta.VideoParameters
	return &Source{
		r:      r,
		width:  vp.FieldWidth,
		height: vp.FieldHeight,
		meta:   meta,
		buf:    make([]byte, vp.FieldWidth*vp.FieldHeight*2),
	}
}

// ReadField reads and returns the next field, or io.EOF if fewer than
// one field's worth of samples remain (per spec.md: "Input shorter than
// one field: zero frames emitted").
func (s *Source) ReadField() (*Field, error) {
	_, err := io.ReadFull(s.r, s.buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("field: sample read failed: %w", err)
	}

	samples := make([]tbc.Sample, s.width*s.height)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(s.buf[2*i:])
	}

	f := &Field{
		Seq:    s.next,
		Width:  s.width,
		Height: s.height,
		Samples: samples,
	}
	if s.next < len(s.meta.Fields) {
		fm := s.meta.Fields[s.next]
		f.IsFirstField = fm.IsFirstField
		f.SyncConf = fm.SyncConf
		f.MedianBurstIRE = fm.MedianBurstIRE
		f.FieldPhaseID = fm.FieldPhaseID
		f.VBI = fm.VBI
		f.NTSCFlags = fm.NTSC
		f.VITSMetrics = fm.VITSMetrics
		for _, d := range fm.DropOuts {
			f.DropOuts = append(f.DropOuts, DropoutLocation{
				FieldLine: d.FieldLine,
				StartX:    d.StartX,
				EndX:      d.EndX,
				Location:  DropoutKind(d.Location),
			})
		}
	}
	s.next++
	return f, nil
}
