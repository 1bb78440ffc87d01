/*
DESCRIPTION
  pyramid.go builds the ROI (region of interest) pyramid the per-frame
  tracker searches through: level 0 spans half the frame, and each level
  above it is a square 70% the side of the previous level's shorter
  dimension, mirroring the original tracker's dimensioned_buffer setup in
  psmove_tracker_new.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package update implements the per-frame tracking update: ROI search,
// blob segmentation, quality gating, adaptive smoothing, and online
// color adaptation.
package update

import (
	"image"

	"gocv.io/x/gocv"
)

// Pyramid holds the working buffers for every ROI level: the dimensions
// a level crops to, and a reusable HSV/mask Mat pair for that level so a
// frame update never allocates.
type Pyramid struct {
	Dims []image.Point
	hsv  []gocv.Mat
	mask []gocv.Mat
}

// NewPyramid builds a Pyramid of n levels sized from a frameW x frameH
// frame: level 0 is (frameW/2, frameH/2); each subsequent level is a
// square of side 0.7*min(prevW, prevH).
func NewPyramid(frameW, frameH, n int) *Pyramid {
	p := &Pyramid{
		Dims: make([]image.Point, n),
		hsv:  make([]gocv.Mat, n),
		mask: make([]gocv.Mat, n),
	}
	w, h := frameW/2, frameH/2
	for i := 0; i < n; i++ {
		if i > 0 {
			side := int(0.7 * float64(min(w, h)))
			if side < 1 {
				side = 1
			}
			w, h = side, side
		}
		p.Dims[i] = image.Point{X: w, Y: h}
		p.hsv[i] = gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
		p.mask[i] = gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	}
	return p
}

// Close releases every level's buffers.
func (p *Pyramid) Close() {
	for i := range p.hsv {
		p.hsv[i].Close()
		p.mask[i].Close()
	}
}
