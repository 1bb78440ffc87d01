package tracker

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ausocean/orbtracker/camera"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/led"
	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"
)

const (
	testW = 320
	testH = 240
)

var blueDisk = color.RGBA{R: 0, G: 0, B: 255, A: 255}

func blinkFrames(n int) []func(w, h int) gocv.Mat {
	frames := make([]func(w, h int) gocv.Mat, 0, n*2)
	for i := 0; i < n; i++ {
		frames = append(frames,
			func(w, h int) gocv.Mat {
				return camera.DiskFrame(w, h, color.RGBA{}, blueDisk, image.Pt(w/2, h/2), 20)
			},
			func(w, h int) gocv.Mat {
				return camera.SolidFrame(w, h, color.RGBA{})
			},
		)
	}
	return frames
}

func newTestTracker(t *testing.T) (*Tracker, *camera.Fake) {
	t.Helper()
	cfg := config.Default()
	cfg.Logger = logging.New(logging.Error, &bytes.Buffer{}, true)
	cfg.PersistDir = t.TempDir()

	fake := camera.NewFake(testW, testH)
	fake.Frames = append(
		[]func(w, h int) gocv.Mat{func(w, h int) gocv.Mat { return camera.SolidFrame(w, h, color.RGBA{}) }},
		blinkFrames(cfg.Blinks)...,
	)

	tr, err := New(fake, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr, fake
}

func TestNewProbesFrameAndAllocatesPyramid(t *testing.T) {
	tr, _ := newTestTracker(t)
	defer tr.Free()

	if tr.frameW != testW || tr.frameH != testH {
		t.Errorf("frame size = (%d,%d), want (%d,%d)", tr.frameW, tr.frameH, testW, testH)
	}
	if len(tr.pyr.Dims) != tr.cfg.ROIs {
		t.Errorf("pyramid levels = %d, want %d", len(tr.pyr.Dims), tr.cfg.ROIs)
	}
}

func TestEnableCalibratesAndRegistersController(t *testing.T) {
	tr, _ := newTestTracker(t)
	defer tr.Free()

	tp := &led.Fake{}
	assigned, err := tr.Enable("controller-1", tp)
	if err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if assigned.R == 0 && assigned.G == 0 && assigned.B == 0 {
		t.Errorf("Enable() assigned a zero color")
	}
	if tr.Status("controller-1") == NotCalibrated {
		t.Errorf("Status() = NotCalibrated after a successful Enable")
	}
	if tp.Calls == 0 {
		t.Errorf("LED transport was never commanded during calibration")
	}
}

func TestEnableTwiceFails(t *testing.T) {
	tr, _ := newTestTracker(t)
	defer tr.Free()

	tp := &led.Fake{}
	if _, err := tr.Enable("controller-1", tp); err != nil {
		t.Fatalf("first Enable() error = %v", err)
	}
	if _, err := tr.Enable("controller-1", tp); err != ErrAlreadyEnabled {
		t.Errorf("second Enable() error = %v, want ErrAlreadyEnabled", err)
	}
}

func TestDisableReleasesColorForReuse(t *testing.T) {
	tr, _ := newTestTracker(t)
	defer tr.Free()

	tp := &led.Fake{}
	assigned, err := tr.Enable("controller-1", tp)
	if err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if err := tr.Disable("controller-1"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if tr.Status("controller-1") != NotCalibrated {
		t.Errorf("Status() after Disable = %v, want NotCalibrated", tr.Status("controller-1"))
	}
	if err := tr.palette.ReserveSpecific(byte(assigned.R), byte(assigned.G), byte(assigned.B)); err != nil {
		t.Errorf("palette color not released by Disable: %v", err)
	}
}

func TestGetPositionReportsRegistrationNotTrackedState(t *testing.T) {
	tr, _ := newTestTracker(t)
	defer tr.Free()

	if _, _, _, _, ok := tr.GetPosition("nonexistent"); ok {
		t.Errorf("GetPosition() ok = true for an unregistered handle, want false")
	}

	tp := &led.Fake{}
	if _, err := tr.Enable("controller-1", tp); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	// Enable alone calibrates but doesn't run a per-frame Update, so the
	// controller isn't "tracked" yet; GetPosition's ok must still be true
	// because it reflects registration, not tracked state (§4.5).
	if _, _, _, _, ok := tr.GetPosition("controller-1"); !ok {
		t.Errorf("GetPosition() ok = false immediately after Enable, want true")
	}
}
