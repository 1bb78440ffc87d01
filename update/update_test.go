package update

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"gocv.io/x/gocv"
)

var blueDisk = color.RGBA{R: 0, G: 0, B: 255, A: 255}

func blueRecord(frameW, frameH int, pyr *Pyramid) *controller.Record {
	assigned := controller.BGR{B: 255, G: 0, R: 0}
	observed := controller.BGR{B: 255, G: 0, R: 0}
	hsv := controller.BGRToHSV(observed)
	dim := pyr.Dims[0]
	return controller.NewRecord("blue", assigned, observed, hsv, frameW, frameH, dim.X, dim.Y)
}

func TestUpdateLocksOnCenteredBlob(t *testing.T) {
	const w, h = 320, 240
	frame := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer frame.Close()
	disk := SolidFrame(w, h, color.RGBA{})
	gocv.Circle(&disk, image.Pt(w/2, h/2), 20, blueDisk, -1)
	disk.CopyTo(&frame)
	disk.Close()

	cfg := config.Default()
	pyr := NewPyramid(w, h, cfg.ROIs)
	defer pyr.Close()

	rec := blueRecord(w, h, pyr)

	ok := Update(frame, rec, pyr, cfg, 0, time.Unix(0, 0))
	if !ok {
		t.Fatalf("Update() = false, want true for a centered blob in range")
	}
	if !rec.IsTracked {
		t.Errorf("rec.IsTracked = false, want true")
	}
	const wantX, wantY = w / 2, h / 2
	if dx := rec.X - wantX; dx > 5 || dx < -5 {
		t.Errorf("rec.X = %v, want close to %v", rec.X, wantX)
	}
	if dy := rec.Y - wantY; dy > 5 || dy < -5 {
		t.Errorf("rec.Y = %v, want close to %v", rec.Y, wantY)
	}
	if rec.R < 10 {
		t.Errorf("rec.R = %v, want roughly the disk radius", rec.R)
	}
}

// SolidFrame is a local copy of the camera package's fake-frame helper,
// so this package's tests do not import camera.
func SolidFrame(w, h int, c color.RGBA) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
	return m
}

func TestUpdateMissEscalatesThenFallsBackToQuadrants(t *testing.T) {
	const w, h = 320, 240
	frame := SolidFrame(w, h, color.RGBA{})
	defer frame.Close()

	cfg := config.Default()
	pyr := NewPyramid(w, h, cfg.ROIs)
	defer pyr.Close()

	rec := blueRecord(w, h, pyr)
	rec.ROILevel = len(pyr.Dims) - 1

	ok := Update(frame, rec, pyr, cfg, 0, time.Unix(0, 0))
	if ok {
		t.Fatalf("Update() = true, want false with no blob present anywhere")
	}
	if rec.ROILevel != 0 {
		t.Errorf("rec.ROILevel = %d, want 0 after exhausting escalation", rec.ROILevel)
	}
	if rec.SearchQuadrant != 1 {
		t.Errorf("rec.SearchQuadrant = %d, want 1 after one failed fallback pass", rec.SearchQuadrant)
	}
}

func TestColorAdaptationRevertsOnExcessDrift(t *testing.T) {
	const w, h = 320, 240
	frame := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer frame.Close()
	// A drastically different color (near-white) under the mask will push
	// the adapted color far enough from the observed color to trip the
	// drift guard.
	disk := SolidFrame(w, h, color.RGBA{})
	gocv.Circle(&disk, image.Pt(w/2, h/2), 20, blueDisk, -1)
	disk.CopyTo(&frame)
	disk.Close()

	cfg := config.Default()
	cfg.AdaptMaxDiff = 0.0001 // force the guard to trip on any measurable drift
	pyr := NewPyramid(w, h, cfg.ROIs)
	defer pyr.Close()

	rec := blueRecord(w, h, pyr)
	rec.LastColorUpdate = time.Unix(0, 0)

	Update(frame, rec, pyr, cfg, 0, time.Unix(0, 0).Add(2*cfg.ColorUpdateRate))

	if rec.AdaptedBGR != rec.ObservedBGR {
		t.Errorf("AdaptedBGR = %+v, want reverted to ObservedBGR %+v", rec.AdaptedBGR, rec.ObservedBGR)
	}
}
