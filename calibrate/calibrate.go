/*
DESCRIPTION
  calibrate.go implements blink calibration: the controller's LED is
  cycled on and off BLINKS times, the camera frames bracketing each
  blink are differenced to isolate the glowing sphere from a static
  background, the sphere's observed color and HSV range are sampled from
  the first valid cycle's blob, and that color is then validated against
  every cycle's lit frame. This is a
  port of psmove_tracker_enable's full (non quick-verify) calibration
  path in the original tracking core.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package calibrate implements the blink-differencing calibration
// protocol that teaches the tracker a controller's LED color, and the
// quick-verify shortcut that skips it when a previously learned color
// still tracks.
package calibrate

import (
	"image"
	"math"
	"time"

	"github.com/ausocean/orbtracker/blob"
	"github.com/ausocean/orbtracker/camera"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"github.com/ausocean/orbtracker/led"
	"github.com/ausocean/orbtracker/update"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by Calibrate. Each names the specific validation the
// blink protocol failed so a caller can log or surface it distinctly.
var (
	// ErrTooFewValidCycles is returned when fewer than cfg.Blinks cycles
	// produced a usable blob, whether from the on/off diff or from the
	// derived-color HSV-filter revalidation pass (the sphere wasn't
	// reliably isolated).
	ErrTooFewValidCycles = errors.New("calibrate: too few valid blink cycles")

	// ErrSizeDispersion is returned when the blob size varied too much
	// across cycles (relative standard deviation over CalibSizeStd).
	ErrSizeDispersion = errors.New("calibrate: blob size too inconsistent across blinks")

	// ErrPositionDrift is returned when the blob's bounding-box top-left
	// moved more than CalibMaxDist pixels between any two cycles (the
	// controller or camera moved mid-calibration).
	ErrPositionDrift = errors.New("calibrate: blob position too inconsistent across blinks")

	// ErrTooSmall is returned when the first valid cycle's diff blob is
	// smaller than CalibMinSize pixels (too far from the camera, or not
	// lit at all).
	ErrTooSmall = errors.New("calibrate: blob too small")
)

// cycle holds the per-blink measurements needed for validation and, for
// the winning cycle, color sampling.
type cycle struct {
	mask  gocv.Mat // diff mask, post threshold/erode/dilate
	onROI gocv.Mat // the lit frame, full size
	ok    bool
}

// Calibrate runs the blink-differencing protocol against cam, commanding
// tp through cfg.Blinks on/off cycles, and returns a fresh Record seeded
// with the sphere's observed color on success. sleep paces the blink
// delay between LED commands and frame reads (time.Sleep in production,
// a no-op or fake clock advance in tests).
func Calibrate(cam camera.Camera, tp led.Transport, handle controller.Handle, assigned controller.BGR, cfg config.Config, log logging.Logger, sleep func(time.Duration)) (*controller.Record, error) {
	frameW, frameH := cam.FrameSize()

	cycles := make([]cycle, 0, cfg.Blinks)
	defer func() {
		for _, c := range cycles {
			c.mask.Close()
			c.onROI.Close()
		}
	}()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()

	dimmed := assigned.Dim(cfg.DimmingFactor)

	var fused gocv.Mat
	haveFused := false

	on := gocv.NewMat()
	defer on.Close()
	off := gocv.NewMat()
	defer off.Close()

	for i := 0; i < cfg.Blinks; i++ {
		if err := tp.SetRGB(byte(dimmed.R), byte(dimmed.G), byte(dimmed.B)); err != nil {
			return nil, errors.Wrap(err, "calibrate: commanding LED on")
		}
		sleep(cfg.BlinkDelay)
		if !cam.Read(&on) {
			log.Warning("calibrate: dropped frame reading LED-on")
			continue
		}

		if err := tp.SetRGB(0, 0, 0); err != nil {
			return nil, errors.Wrap(err, "calibrate: commanding LED off")
		}
		sleep(cfg.BlinkDelay)
		if !cam.Read(&off) {
			log.Warning("calibrate: dropped frame reading LED-off")
			continue
		}

		diff := gocv.NewMat()
		gocv.AbsDiff(on, off, &diff)
		gocv.CvtColor(diff, &diff, gocv.ColorBGRToGray)
		gocv.Threshold(diff, &diff, float32(cfg.CalibrationDiffT), 255, gocv.ThresholdBinary)
		gocv.Erode(diff, &diff, kernel)
		gocv.Dilate(diff, &diff, kernel)

		c := cycle{mask: diff, onROI: on.Clone()}
		if ct, _, found := blob.Largest(diff); found {
			ct.Close()
			c.ok = true
		} else {
			log.Warning("calibrate: no blob in blink cycle diff", "cycle", i)
		}
		cycles = append(cycles, c)

		if c.ok {
			if !haveFused {
				fused = diff.Clone()
				haveFused = true
			} else {
				gocv.BitwiseAnd(fused, diff, &fused)
			}
		}
	}
	if !haveFused {
		return nil, ErrTooFewValidCycles
	}
	defer fused.Close()

	// The color is sampled from the first valid cycle's lit frame, under
	// that cycle's largest diff blob repainted alone into the mask.
	var first cycle
	for _, c := range cycles {
		if c.ok {
			first = c
			break
		}
	}
	sampleContour, sampleArea, found := blob.Largest(first.mask)
	if !found {
		return nil, ErrTooSmall
	}
	defer sampleContour.Close()
	if sampleArea < float64(cfg.CalibMinSize) {
		return nil, ErrTooSmall
	}

	sampleMask := fused.Clone()
	defer sampleMask.Close()
	blob.Refill(&sampleMask, sampleContour)
	mean3 := first.onROI.MeanWithMask(sampleMask)
	observed := controller.BGR{B: mean3.Val1, G: mean3.Val2, R: mean3.Val3}
	observedHSV := controller.BGRToHSV(observed)

	// §4.3's revalidation pass: re-run the just-derived HSV filter against
	// each blink's lit frame, independent of the on/off diff used to find
	// the sphere in the first place, to confirm the learned color actually
	// isolates a stable, well-located blob rather than merely a brightness
	// change. Size and position dispersion are checked against this pass's
	// results, not the diff masks above.
	lo, hi := update.HSVBounds(observedHSV, cfg)
	hsv := gocv.NewMat()
	defer hsv.Close()
	filtered := gocv.NewMat()
	defer filtered.Close()

	valid := 0
	sizes := make([]float64, 0, cfg.Blinks)
	var centers []image.Point
	for _, c := range cycles {
		if !c.ok {
			continue
		}
		gocv.CvtColor(c.onROI, &hsv, gocv.ColorBGRToHSV)
		gocv.InRangeWithScalar(hsv, lo, hi, &filtered)
		gocv.Erode(filtered, &filtered, kernel)
		gocv.Dilate(filtered, &filtered, kernel)

		ct, area, found := blob.Largest(filtered)
		if !found {
			continue
		}
		br := gocv.BoundingRect(ct)
		ct.Close()
		valid++
		sizes = append(sizes, area)
		centers = append(centers, br.Min)
	}
	if valid < cfg.Blinks {
		return nil, ErrTooFewValidCycles
	}

	mean := stat.Mean(sizes, nil)
	std := stat.StdDev(sizes, nil)
	if mean > 0 && std/mean*100 > cfg.CalibSizeStd {
		return nil, ErrSizeDispersion
	}

	if maxPairDist(centers) > cfg.CalibMaxDist {
		return nil, ErrPositionDrift
	}

	pyr := update.NewPyramid(frameW, frameH, cfg.ROIs)
	defer pyr.Close()
	dim := pyr.Dims[0]

	rec := controller.NewRecord(handle, assigned, observed, observedHSV, frameW, frameH, dim.X, dim.Y)
	return rec, nil
}

// maxPairDist returns the largest distance between any two points in pts,
// used to bound how far the blob drifted between blink cycles.
func maxPairDist(pts []image.Point) float64 {
	var max float64
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			dx := float64(pts[i].X - pts[j].X)
			dy := float64(pts[i].Y - pts[j].Y)
			d := dx*dx + dy*dy
			if d > max {
				max = d
			}
		}
	}
	return math.Sqrt(max)
}
