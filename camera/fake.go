/*
DESCRIPTION
  fake.go provides a deterministic, scripted Camera for tests: a fixed
  sequence of frames is replayed in order, then the last frame repeats.
  This plays the role of the "camera collaborator is a deterministic
  fake that returns scripted frames" referred to throughout the tracking
  spec's end-to-end scenarios.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package camera

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Fake is a scripted Camera. Frames is consulted in order; once
// exhausted, the last frame is repeated indefinitely (so a test can
// "teleport" a blob once, then let the tracker settle on it).
type Fake struct {
	W, H      int
	Frames    []func(w, h int) gocv.Mat
	idx       int
	lastParam Parameters
}

// NewFake returns a Fake camera of the given frame dimensions.
func NewFake(w, h int) *Fake {
	return &Fake{W: w, H: h}
}

// Read implements Camera.
func (f *Fake) Read(dst *gocv.Mat) bool {
	if len(f.Frames) == 0 {
		*dst = SolidFrame(f.W, f.H, color.RGBA{})
		return true
	}
	i := f.idx
	if i >= len(f.Frames) {
		i = len(f.Frames) - 1
	} else {
		f.idx++
	}
	m := f.Frames[i](f.W, f.H)
	m.CopyTo(dst)
	m.Close()
	return true
}

// FrameSize implements Camera.
func (f *Fake) FrameSize() (int, int) { return f.W, f.H }

// SetParameters implements Camera, recording the last-applied parameters
// for inspection by tests.
func (f *Fake) SetParameters(p Parameters) error {
	f.lastParam = p
	return nil
}

// LastParameters returns the parameters most recently passed to
// SetParameters, for test assertions.
func (f *Fake) LastParameters() Parameters { return f.lastParam }

// ReadCalibration implements Camera as a no-op; the fake has no lens to
// calibrate.
func (f *Fake) ReadCalibration(string, string) error { return nil }

// BackupSettings implements Camera as a no-op.
func (f *Fake) BackupSettings(string) error { return nil }

// RestoreSettings implements Camera as a no-op.
func (f *Fake) RestoreSettings(string) error { return nil }

// Close implements Camera as a no-op.
func (f *Fake) Close() error { return nil }

// SolidFrame returns a w x h BGR frame filled with a single color.
func SolidFrame(w, h int, c color.RGBA) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
	return m
}

// DiskFrame returns a w x h BGR frame filled with bg, with a filled disk
// of the given color drawn at center with the given radius. This is the
// synthetic "glowing orb" used throughout the test scenarios.
func DiskFrame(w, h int, bg, disk color.RGBA, center image.Point, radius int) gocv.Mat {
	m := SolidFrame(w, h, bg)
	gocv.Circle(&m, center, radius, disk, -1)
	return m
}
