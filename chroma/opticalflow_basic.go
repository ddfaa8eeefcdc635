//go:build !withcv
// +build !withcv

/*
NAME
  opticalflow_basic.go

DESCRIPTION
  opticalflow_basic.go provides the default (no Open CV dependency)
  motion estimator: a 5x5 windowed average of |Y_now - Y_prev|, as
  described in spec.md's 3D comb design.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package chroma

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

const windowMotionRadius = 2 // 5x5 window.

// basicMotion computes motion magnitude as a windowed mean absolute
// luminance difference. It requires no external dependency beyond
// gonum, which the wider example pack already uses for statistics
// (cmd/rv/probe.go's sharpness/contrast scoring).
type basicMotion struct{}

// NewMotionEstimator returns the default windowed-average motion
// estimator.
func NewMotionEstimator() MotionEstimator { return &basicMotion{} }

func (b *basicMotion) Close() error { return nil }

func (b *basicMotion) Estimate(curY, prevY []float64, width, height int) ([]float64, error) {
	if len(curY) != width*height || len(prevY) != width*height {
		return nil, fmt.Errorf("chroma: motion estimate size mismatch: got %d/%d, want %d", len(curY), len(prevY), width*height)
	}
	out := make([]float64, width*height)
	var window []float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			window = window[:0]
			for dy := -windowMotionRadius; dy <= windowMotionRadius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -windowMotionRadius; dx <= windowMotionRadius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width {
						continue
					}
					idx := ny*width + nx
					diff := curY[idx] - prevY[idx]
					if diff < 0 {
						diff = -diff
					}
					window = append(window, diff)
				}
			}
			out[y*width+x] = stat.Mean(window, nil)
		}
	}
	return out, nil
}
