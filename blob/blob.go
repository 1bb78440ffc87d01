/*
DESCRIPTION
  blob.go provides the contour/circle-fitting primitives shared by blink
  calibration and the per-frame tracker: finding the largest external
  contour in a binary mask, refilling a mask with just that contour, and
  estimating a circle from a contour by the maximal-chord method the
  original tracker uses (psmove_tracker_biggest_contour and
  psmove_tracker_estimate_circle_from_contour).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package blob provides contour-extraction and circle-fitting helpers
// shared by blink calibration and the per-frame tracker.
package blob

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Largest finds the largest external contour (by pixel area) in a binary
// mask. The caller owns the returned PointVector and must Close it.
func Largest(mask gocv.Mat) (contour gocv.PointVector, area float64, found bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	var bestArea float64
	for i := 0; i < contours.Size(); i++ {
		a := gocv.ContourArea(contours.At(i))
		if best < 0 || a > bestArea {
			bestArea = a
			best = i
		}
	}
	if best < 0 {
		return gocv.NewPointVector(), 0, false
	}
	return contours.At(best).Clone(), bestArea, true
}

// Refill clears mask to black and repaints only the given contour,
// filled. This is how both calibration and per-frame tracking restore
// "just the blob we picked" after FindContours has consumed the mask.
func Refill(mask *gocv.Mat, contour gocv.PointVector) {
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	pts := gocv.NewPointsVector()
	defer pts.Close()
	pts.Append(contour)
	gocv.DrawContours(mask, pts, -1, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
}

// EstimateCircle fits a circle to a contour of at least 2 points by
// finding the two most distant points among a bounded subsample (every
// max(1, n/20)-th point, compared all-pairs within that subsample): the
// center is their midpoint and the radius is half their distance. Ties
// are broken by whichever pair is encountered first, matching the
// source's strict "cd > d" comparison.
func EstimateCircle(contour gocv.PointVector) (cx, cy, radius float64) {
	pts := contour.ToPoints()
	n := len(pts)
	if n < 2 {
		return 0, 0, 0
	}

	step := n / 20
	if step < 1 {
		step = 1
	}

	var m1, m2 image.Point
	var maxDistSq float64
	for i := 0; i < n; i += step {
		p1 := pts[i]
		for j := i + step; j < n; j += step {
			p2 := pts[j]
			dx := float64(p1.X - p2.X)
			dy := float64(p1.Y - p2.Y)
			d := dx*dx + dy*dy
			if d > maxDistSq {
				maxDistSq = d
				m1, m2 = p1, p2
			}
		}
	}

	cx = 0.5 * float64(m1.X+m2.X)
	cy = 0.5 * float64(m1.Y+m2.Y)
	radius = math.Sqrt(maxDistSq) / 2
	return cx, cy, radius
}

// MassCenter returns the centroid of a binary mask via image moments
// (m10/m00, m01/m00), mirroring the original tracker's use of cvMoments
// to locate a blob's center of mass.
func MassCenter(mask gocv.Mat) (x, y float64, ok bool) {
	mu := gocv.Moments(mask, true)
	if mu["m00"] == 0 {
		return 0, 0, false
	}
	return mu["m10"] / mu["m00"], mu["m01"] / mu["m00"], true
}
