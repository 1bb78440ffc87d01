/*
DESCRIPTION
  update.go implements the per-frame tracking update for a single
  controller: crop the current ROI, threshold it to the controller's
  learned HSV range, find its blob, score it against the quality gates,
  smooth its position and radius, adapt its learned color, and either
  settle on it or escalate the search (shrink the ROI level, then fall
  back to a cycling full-frame quadrant search). This is a direct port of
  psmove_tracker_update_controller from the original tracking core.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package update

import (
	"image"
	"math"
	"time"

	"github.com/ausocean/orbtracker/blob"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"gocv.io/x/gocv"
)

// epsilon guards the smoothing and distance divisions against a
// zero denominator, matching the source's use of FLT_EPSILON.
const epsilon = 1.1920929e-7

// HSVBounds returns the InRange low/high scalars bracketing color by
// the configured hue/saturation/value tolerances. Exported so calibrate
// can run the same HSV-filter segmentation update uses, to revalidate a
// just-derived color against the frames that produced it.
func HSVBounds(c controller.HSV, cfg config.Config) (lo, hi gocv.Scalar) {
	tol := controller.HSV{H: cfg.HueRange, S: cfg.SaturationRange, V: cfg.ValueRange}
	lower := c.Sub(tol)
	upper := c.Add(tol)
	return gocv.NewScalar(lower.H, lower.S, lower.V, 0), gocv.NewScalar(upper.H, upper.S, upper.V, 0)
}

// segment crops frame to the ROI at the given pyramid level and returns
// a binary mask of pixels within rec's adapted HSV range. The returned
// region Mat must be closed by the caller once done with it (it backs
// the masked-mean color sample used during adaptation).
func segment(frame gocv.Mat, rec *controller.Record, pyr *Pyramid, cfg config.Config, level int) (region gocv.Mat, mask *gocv.Mat) {
	dim := pyr.Dims[level]
	rect := image.Rect(rec.ROIX, rec.ROIY, rec.ROIX+dim.X, rec.ROIY+dim.Y)
	region = frame.Region(rect)
	gocv.CvtColor(region, &pyr.hsv[level], gocv.ColorBGRToHSV)
	lo, hi := HSVBounds(rec.AdaptedHSV, cfg)
	gocv.InRangeWithScalar(pyr.hsv[level], lo, hi, &pyr.mask[level])
	return region, &pyr.mask[level]
}

// recenter re-segments the current ROI and, if a blob is found, returns
// the new ROI top-left that would center the ROI on that blob's mass
// center in full-frame coordinates. This mirrors
// psmove_tracker_center_roi_on_controller, called only when the
// tracker's FPS exceeds ROIAdjustFPST (recentering every frame would
// otherwise cost more than it buys at low frame rates).
func recenter(frame gocv.Mat, rec *controller.Record, pyr *Pyramid, cfg config.Config) (x, y int, ok bool) {
	dim := pyr.Dims[rec.ROILevel]
	region, mask := segment(frame, rec, pyr, cfg, rec.ROILevel)
	defer region.Close()

	contour, _, found := blob.Largest(*mask)
	if !found {
		return 0, 0, false
	}
	defer contour.Close()
	blob.Refill(mask, contour)

	mx, my, ok2 := blob.MassCenter(*mask)
	if !ok2 {
		return 0, 0, false
	}
	return int(mx) + rec.ROIX - dim.X/2, int(my) + rec.ROIY - dim.Y/2, true
}

// Update runs one tracking iteration for rec against frame, returning
// true iff the controller was found and passed the quality gates this
// frame. fps is the tracker's current measured frame rate, used to gate
// optional ROI recentering; now is the wall-clock time, used to pace
// color adaptation.
func Update(frame gocv.Mat, rec *controller.Record, pyr *Pyramid, cfg config.Config, fps float64, now time.Time) bool {
	frameW := frame.Cols()
	frameH := frame.Rows()

	for {
		if fps > cfg.ROIAdjustFPST {
			if x, y, ok := recenter(frame, rec, pyr, cfg); ok {
				setROI(rec, x, y, pyr.Dims[rec.ROILevel], frameW, frameH)
			}
		}

		region, mask := segment(frame, rec, pyr, cfg, rec.ROILevel)

		sphereFound := false
		contour, _, found := blob.Largest(*mask)
		if found {
			sphereFound = evaluate(region, mask, contour, rec, cfg, pyr, now, frameW, frameH)
			contour.Close()
		}
		region.Close()

		if sphereFound {
			rec.SearchQuadrant = 0
			rec.IsTracked = true
			return true
		}

		if rec.ROILevel > 0 {
			escalateLevel(rec, pyr, frameW, frameH)
			continue
		}

		fallbackQuadrant(rec, pyr, frameW, frameH)
		rec.IsTracked = false
		return false
	}
}

// evaluate scores a found blob against the quality gates, smooths
// position/radius, adapts color, and re-selects the ROI level on
// success. It returns whether the blob qualifies as a tracked sphere.
func evaluate(region gocv.Mat, mask *gocv.Mat, contour gocv.PointVector, rec *controller.Record, cfg config.Config, pyr *Pyramid, now time.Time, frameW, frameH int) bool {
	br := gocv.BoundingRect(contour)
	fitX, fitY, radius := blob.EstimateCircle(contour)
	blob.Refill(mask, contour)

	localMX, localMY, _ := blob.MassCenter(*mask)
	oldMX, oldMY := rec.MX, rec.MY
	rec.MX = localMX + float64(rec.ROIX)
	rec.MY = localMY + float64(rec.ROIY)

	oldRadius := rec.R
	rec.R = radius

	pixels := float64(gocv.CountNonZero(*mask))
	expected := math.Pi * rec.R * rec.R
	var q1 float64
	if expected > 0 {
		q1 = pixels / expected
	}
	if pixels < float64(cfg.SmallBlobPixels) {
		q1 /= 2
	}
	q3 := rec.R

	hadPriorRadius := oldRadius > 0 && rec.SearchQuadrant == 0
	var q2 float64
	sphereFound := q1 > cfg.TrackerT1 && q3 > cfg.TrackerT3
	if hadPriorRadius {
		q2 = math.Abs(oldRadius-rec.R) / (oldRadius + epsilon)
		sphereFound = sphereFound && q2 < cfg.TrackerT2
	} else {
		q2 = math.Inf(1)
	}

	if cfg.TrackerAdaptiveZ {
		rDiff := math.Abs(rec.RS - rec.R)
		rf := math.Min(rDiff/4+0.15, 1)
		rec.RS = rec.RS*(1-rf) + rec.R*rf
		rec.R = rec.RS
	}

	fullX := fitX + float64(rec.ROIX)
	fullY := fitY + float64(rec.ROIY)
	if cfg.TrackerAdaptiveXY {
		d := math.Hypot(rec.MX-oldMX, rec.MY-oldMY) + epsilon
		f := math.Min(d/7+0.15, 1)
		rec.X = rec.X*(1-f) + fullX*f
		rec.Y = rec.Y*(1-f) + fullY*f
	} else {
		rec.X, rec.Y = fullX, fullY
	}

	if q1 > cfg.SnapToMassCenterQ1 {
		rec.X, rec.Y = rec.MX, rec.MY
	}

	rec.Q1, rec.Q2, rec.Q3 = q1, q2, q3

	if sphereFound {
		sphereFound = adaptColor(region, mask, rec, cfg, now)
	}

	if sphereFound {
		reselectLevel(rec, pyr, br, frameW, frameH)
	}

	return sphereFound
}

// adaptColor updates rec's learned color from the masked mean of the
// current ROI, reverting to the first-calibration color (and clearing
// sphereFound) if the adapted color has drifted too far from it. This
// mirrors psmove_tracker_update_controller's color-adaptation tail,
// including the side effect that excess drift invalidates this frame's
// tracking result even though the blob itself passed quality gates.
func adaptColor(region gocv.Mat, mask *gocv.Mat, rec *controller.Record, cfg config.Config, now time.Time) bool {
	due := cfg.ColorUpdateRate > 0 && now.Sub(rec.LastColorUpdate) > cfg.ColorUpdateRate
	if !due || !(rec.Q1 > cfg.ColorT1 && rec.Q2 < cfg.ColorT2 && rec.Q3 > cfg.ColorT3) {
		return true
	}

	mean := region.MeanWithMask(*mask)
	newColor := controller.BGR{B: mean.Val1, G: mean.Val2, R: mean.Val3}
	rec.AdaptedBGR = controller.BGR{
		B: 0.5 * (rec.AdaptedBGR.B + newColor.B),
		G: 0.5 * (rec.AdaptedBGR.G + newColor.G),
		R: 0.5 * (rec.AdaptedBGR.R + newColor.R),
	}
	rec.AdaptedHSV = controller.BGRToHSV(rec.AdaptedBGR)
	rec.LastColorUpdate = now

	if rec.AdaptedHSV.SubjectiveDiff(rec.ObservedHSV) > cfg.AdaptMaxDiff {
		rec.AdaptedBGR = rec.ObservedBGR
		rec.AdaptedHSV = rec.ObservedHSV
		return false
	}
	return true
}

// reselectLevel picks the smallest pyramid level whose ROI comfortably
// contains the blob's bounding box (3x its longest side) and recenters
// the ROI there, resetting the quadrant-fallback cycle.
func reselectLevel(rec *controller.Record, pyr *Pyramid, br image.Rectangle, frameW, frameH int) {
	side := br.Dx()
	if br.Dy() > side {
		side = br.Dy()
	}
	need := side * 3

	// Dims is ordered largest to smallest; walk from the smallest level
	// up so the first fit found is the tightest one, falling back to the
	// largest ROI (level 0) if even that doesn't comfortably contain the
	// blob.
	level := 0
	for i := len(pyr.Dims) - 1; i >= 0; i-- {
		d := pyr.Dims[i]
		if d.X >= need && d.Y >= need {
			level = i
			break
		}
	}
	rec.ROILevel = level
	dim := pyr.Dims[level]
	setROI(rec, int(rec.X)-dim.X/2, int(rec.Y)-dim.Y/2, dim, frameW, frameH)
	rec.SearchQuadrant = 0
}

// escalateLevel shifts the ROI to keep its center fixed while dropping
// to the next (larger) pyramid level, the way the source widens its
// search after a miss at a smaller ROI.
func escalateLevel(rec *controller.Record, pyr *Pyramid, frameW, frameH int) {
	curDim := pyr.Dims[rec.ROILevel]
	cx := rec.ROIX + curDim.X/2
	cy := rec.ROIY + curDim.Y/2
	rec.ROILevel--
	newDim := pyr.Dims[rec.ROILevel]
	setROI(rec, cx-newDim.X/2, cy-newDim.Y/2, newDim, frameW, frameH)
}

// fallbackQuadrant resets the ROI to level 0 at the next quadrant in the
// cycling full-frame fallback search, used once escalation has exhausted
// every pyramid level without finding the controller.
func fallbackQuadrant(rec *controller.Record, pyr *Pyramid, frameW, frameH int) {
	x, y := quadrantOrigin(rec.SearchQuadrant, frameW, frameH)
	rec.SearchQuadrant = (rec.SearchQuadrant + 1) % 4
	rec.ROILevel = 0
	setROI(rec, x, y, pyr.Dims[0], frameW, frameH)
}
