/*
NAME
  validate.go

DESCRIPTION
  validate.go checks a Metadata document for internal consistency
  before the decoder configures itself from it.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package metadata

import "fmt"

// Validate checks the video parameters for the minimum set of fields a
// decode configuration needs. It does not mutate the document.
func (m *Metadata) Validate() error {
	vp := m.VideoParameters
	if vp.FieldWidth <= 0 || vp.FieldHeight <= 0 {
		return fmt.Errorf("metadata: fieldWidth/fieldHeight must be positive, got %dx%d", vp.FieldWidth, vp.FieldHeight)
	}
	if vp.ActiveVideoStart < 0 || vp.ActiveVideoEnd > vp.FieldWidth || vp.ActiveVideoStart >= vp.ActiveVideoEnd {
		return fmt.Errorf("metadata: invalid activeVideoStart/End: [%d,%d) for width %d",
			vp.ActiveVideoStart, vp.ActiveVideoEnd, vp.FieldWidth)
	}
	if vp.White16bIre <= vp.Black16bIre {
		return fmt.Errorf("metadata: white16bIre (%d) must exceed black16bIre (%d)", vp.White16bIre, vp.Black16bIre)
	}
	if vp.SampleRate <= 0 {
		return fmt.Errorf("metadata: sampleRate must be positive, got %v", vp.SampleRate)
	}
	return nil
}

// WhitePoint returns the 16-bit white reference level to use, scaled to
// 75% of full white when white100 is false (per the CLI's -w/--white
// flag, spec.md section 6).
func (vp *VideoParameters) WhitePoint(white100 bool) uint16 {
	if white100 {
		return vp.White16bIre
	}
	span := float64(vp.White16bIre) - float64(vp.Black16bIre)
	return vp.Black16bIre + uint16(span*0.75)
}
