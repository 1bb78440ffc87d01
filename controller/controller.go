/*
DESCRIPTION
  controller.go defines Record, the per-controller tracking state: the
  assigned and learned colors, the current region of interest, the
  smoothed position/radius, the quality metrics, and the bookkeeping
  needed for quadrant fallback and color re-adaptation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package controller defines the per-controller tracking record and the
// color-space helpers used to populate it.
package controller

import (
	"time"

	"github.com/ausocean/orbtracker/config"
	"github.com/lucasb-eyer/go-colorful"
)

// Handle is an opaque identity for a physical controller (e.g. its
// Bluetooth serial address). Records are keyed by Handle.
type Handle string

// BGR is a color as commanded to or sampled from a controller's LED, with
// channels ordered the way OpenCV orders them in Mat pixel data.
type BGR struct {
	B, G, R float64
}

// HSV is a color in OpenCV's 8-bit HSV convention: H in [0,180), S and V
// in [0,255]. This differs from go-colorful's Hsv(), which returns H in
// degrees and S/V in [0,1]; BGRToHSV performs the rescale.
type HSV struct {
	H, S, V float64
}

// BGRToHSV converts a BGR color to OpenCV-convention HSV using
// go-colorful's RGB<->HSV math, rescaled from colorful's [0,360)/[0,1]
// ranges to OpenCV's [0,180)/[0,255] ranges.
func BGRToHSV(c BGR) HSV {
	col := colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
	h, s, v := col.Hsv()
	return HSV{H: h / 2, S: s * 255, V: v * 255}
}

// Sub returns h minus o, channel-wise.
func (h HSV) Sub(o HSV) HSV { return HSV{h.H - o.H, h.S - o.S, h.V - o.V} }

// Add returns h plus o, channel-wise.
func (h HSV) Add(o HSV) HSV { return HSV{h.H + o.H, h.S + o.S, h.V + o.V} }

// SubjectiveDiff computes the hue-weighted L1 distance between h and o:
// |dH| + 0.5|dS| + 0.5|dV|, used to detect color drift during online
// adaptation (see §4.4.3 of the tracking spec).
func (h HSV) SubjectiveDiff(o HSV) float64 {
	return absf(h.H-o.H) + 0.5*absf(h.S-o.S) + 0.5*absf(h.V-o.V)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Dim scales c by factor (the configured DimmingFactor), clamping each
// channel to the valid byte range. A factor of 1 is a no-op.
func (c BGR) Dim(factor int) BGR {
	return BGR{
		B: clampByte(c.B * float64(factor)),
		G: clampByte(c.G * float64(factor)),
		R: clampByte(c.R * float64(factor)),
	}
}

func clampByte(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Record is the tracking state for a single registered controller.
type Record struct {
	Handle Handle

	// AssignedBGR is the color commanded to the LED (BGR-ordered).
	AssignedBGR BGR

	// ObservedBGR/ObservedHSV is the color actually seen by the camera
	// during the first (full) calibration.
	ObservedBGR BGR
	ObservedHSV HSV

	// AdaptedBGR/AdaptedHSV is the currently learned color, which may
	// drift from ObservedBGR/ObservedHSV under online adaptation.
	AdaptedBGR BGR
	AdaptedHSV HSV

	// ROI top-left in full-frame coordinates, and the pyramid level it
	// was drawn from (0 = largest).
	ROIX, ROIY, ROILevel int

	// X, Y is the smoothed image-space position of the orb center.
	X, Y float64

	// MX, MY is the mass-center of the segmented blob in the latest frame.
	MX, MY float64

	// R is the current radius estimate, RS its smoothed counterpart.
	R, RS float64

	// Quality metrics: Q1 pixel-ratio, Q2 relative radius change, Q3
	// absolute radius.
	Q1, Q2, Q3 float64

	// IsTracked is true iff the latest update passed the quality gates.
	IsTracked bool

	// LastColorUpdate is the wall-clock time of the last successful color
	// adaptation.
	LastColorUpdate time.Time

	// SearchQuadrant cycles 0..3 during full-frame fallback search.
	SearchQuadrant int
}

// NewRecord returns a Record for handle, seeded from a successful
// calibration: the assigned color, the first-observed color (which also
// becomes the adapted color), and a ROI reset to level 0 centered on the
// frame of dimensions (frameW, frameH) using roiW/roiH as the level-0 ROI
// size.
func NewRecord(handle Handle, assigned BGR, observed BGR, observedHSV HSV, frameW, frameH, roiW, roiH int) *Record {
	return &Record{
		Handle:      handle,
		AssignedBGR: assigned,
		ObservedBGR: observed,
		ObservedHSV: observedHSV,
		AdaptedBGR:  observed,
		AdaptedHSV:  observedHSV,
		ROIX:        clampROI(frameW/2-roiW/2, frameW, roiW),
		ROIY:        clampROI(frameH/2-roiH/2, frameH, roiH),
		ROILevel:    0,
	}
}

func clampROI(v, frameDim, roiDim int) int {
	if v < 0 {
		return 0
	}
	if v+roiDim > frameDim {
		return frameDim - roiDim
	}
	return v
}

// Distance returns the physical distance in millimetres between the orb
// and the camera, derived from the blob diameter (2*R) the way the
// original tracking core's psmove_tracker_calculate_distance does:
// distance = focalLength * orbDiameter * fudgeFactor / (blobDiameter *
// pixelHeight/100 + epsilon).
func (r *Record) Distance(cfg config.Config) float64 {
	blobDiameter := r.R * 2
	const epsilon = 1.1920929e-7 // float32 epsilon, matching the source's FLT_EPSILON use.
	return (cfg.CameraFocalLengthMM * cfg.OrbDiameterMM * cfg.DistanceFudgeFactor) /
		(blobDiameter*cfg.CameraPixelHeightUM/100.0 + epsilon)
}
