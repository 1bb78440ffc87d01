/*
DESCRIPTION
  camera.go defines the Camera collaborator contract: the tracker core
  requires a device that can be opened by index, read for BGR frames,
  have its capture parameters (exposure, white balance, etc.) set, and
  have its vendor settings backed up/restored. Implementations are free
  to use whatever acquisition mechanism fits (a real sensor, a v4l2
  capture, a scripted fake for tests).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package camera defines the camera collaborator contract required by the
// orb tracker, and provides a gocv-backed implementation plus a
// deterministic fake for testing.
package camera

import "gocv.io/x/gocv"

// Parameters mirrors the capture parameter vector the original tracking
// core passes to its camera control layer: auto-exposure/gain/white
// balance toggles plus the static exposure value, with white-balance
// channels otherwise defaulting to 0xFFFF.
type Parameters struct {
	AutoExposure    int
	AutoGain        int
	AutoWhiteBalance int
	Exposure        int
	Gain            int
	WhiteBalanceRed   int
	WhiteBalanceGreen int
	WhiteBalanceBlue  int
	Contrast        int
	Brightness      int
}

// DefaultParameters returns the parameter vector the tracker applies on
// startup: every auto-* toggle off, a fixed exposure, and white-balance
// channels pinned to 0xFFFF.
func DefaultParameters(exposure int) Parameters {
	return Parameters{
		Exposure:          exposure,
		WhiteBalanceRed:   0xFFFF,
		WhiteBalanceGreen: 0xFFFF,
		WhiteBalanceBlue:  0xFFFF,
		Contrast:          -1,
		Brightness:        -1,
	}
}

// Camera is the capture collaborator the tracker facade depends on.
type Camera interface {
	// Read fills dst with the next available BGR 8-bit 3-channel frame,
	// returning false if the device has closed.
	Read(dst *gocv.Mat) bool

	// FrameSize returns the width and height of the frames this camera
	// produces.
	FrameSize() (w, h int)

	// SetParameters applies capture parameters such as exposure and white
	// balance.
	SetParameters(p Parameters) error

	// ReadCalibration loads lens intrinsics/distortion matrices from the
	// given file paths, in whatever format the underlying image library
	// uses (OpenCV's FileStorage XML format for the gocv-backed
	// implementation).
	ReadCalibration(intrinsicsPath, distortionPath string) error

	// BackupSettings persists the device's current vendor settings to
	// path, for later restoration by RestoreSettings.
	BackupSettings(path string) error

	// RestoreSettings restores vendor settings previously written by
	// BackupSettings.
	RestoreSettings(path string) error

	// Close releases the underlying capture device.
	Close() error
}
