//go:build withcv
// +build withcv

/*
NAME
  opticalflow_cv.go

DESCRIPTION
  opticalflow_cv.go provides a higher-fidelity motion estimator, built on
  gocv's dense Farneback optical flow, as an alternative to the
  lightweight windowed-average metric in opticalflow_basic.go.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package chroma

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Farneback optical flow parameters, chosen for NTSC field geometry.
const (
	flowPyrScale   = 0.5
	flowLevels     = 3
	flowWinSize    = 15
	flowIterations = 3
	flowPolyN      = 5
	flowPolySigma  = 1.2
	flowFlags      = 0
)

// cvMotion computes a per-pixel motion magnitude from dense optical
// flow, used in place of basicMotion when the withcv build tag is set
// (mirrors filter/motion.go's gocv.CalcOpticalFlowFarneback role for
// the turbidity/background motion filters).
type cvMotion struct{}

// NewMotionEstimator returns the gocv-backed dense optical flow motion
// estimator.
func NewMotionEstimator() MotionEstimator { return &cvMotion{} }

func (c *cvMotion) Close() error { return nil }

func (c *cvMotion) Estimate(curY, prevY []float64, width, height int) ([]float64, error) {
	if len(curY) != width*height || len(prevY) != width*height {
		return nil, fmt.Errorf("chroma: motion estimate size mismatch: got %d/%d, want %d", len(curY), len(prevY), width*height)
	}

	curMat, err := planeToMat(curY, width, height)
	if err != nil {
		return nil, err
	}
	defer curMat.Close()
	prevMat, err := planeToMat(prevY, width, height)
	if err != nil {
		return nil, err
	}
	defer prevMat.Close()

	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(prevMat, curMat, &flow,
		flowPyrScale, flowLevels, flowWinSize, flowIterations, flowPolyN, flowPolySigma, flowFlags)

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := flow.GetVecfAt(y, x)
			out[y*width+x] = float64(v[0]*v[0]+v[1]*v[1]) // Squared magnitude; cheaper, monotonic for thresholding.
		}
	}
	return out, nil
}

// planeToMat converts a row-major float64 luminance plane (expected
// normalized to roughly [0,1]) into an 8-bit single-channel gocv.Mat.
func planeToMat(y []float64, width, height int) (gocv.Mat, error) {
	m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			v := y[row*width+col] * 255
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			m.SetUCharAt(row, col, uint8(v))
		}
	}
	return m, nil
}
