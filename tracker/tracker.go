/*
DESCRIPTION
  tracker.go is the tracker facade (component E): it owns the camera,
  the ROI pyramid, the color palette, and every registered controller's
  Record, and wires calibration, per-frame update, and persistence
  together into the small public surface a caller needs: New, Enable,
  Update, GetPosition, Disable, Free. This corresponds to
  psmove_tracker_new/update/get_position/disable/free in the original
  tracking core.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tracker assembles calibration, per-frame update, the camera,
// and on-disk persistence into the orb tracker's public facade.
package tracker

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/ausocean/orbtracker/camera"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"github.com/ausocean/orbtracker/led"
	"github.com/ausocean/orbtracker/palette"
	"github.com/ausocean/orbtracker/persist"
	"github.com/ausocean/orbtracker/update"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Status describes how far a registered controller has progressed
// through calibration.
type Status int

const (
	NotCalibrated Status = iota
	Calibrated
	Tracking
)

func (s Status) String() string {
	switch s {
	case Calibrated:
		return "calibrated"
	case Tracking:
		return "tracking"
	default:
		return "not_calibrated"
	}
}

// entry bundles a registered controller's tracking state with the LED
// transport used to command it.
type entry struct {
	rec *controller.Record
	led led.Transport
}

// Tracker is the orb tracker facade: one camera, one ROI pyramid, one
// color palette, and the set of controllers currently registered
// against it.
type Tracker struct {
	cam camera.Camera
	cfg config.Config

	palette *palette.Palette
	colors  *persist.ColorStore
	watcher *persist.Watcher

	pyr            *update.Pyramid
	frameW, frameH int
	frame          gocv.Mat

	controllers map[controller.Handle]*entry

	settingsPath     string
	settingsBackedUp bool

	lastFrameAt time.Time
	fps         float64

	sleep func(time.Duration)
	now   func() time.Time
}

// New takes an already opened cam, probes its frame size, applies the static exposure the
// tracker runs at, backs up the camera's vendor settings if this is the
// first run against this PersistDir, and allocates the ROI pyramid and
// color palette. cfg is validated (defaulted) in place.
func New(cam camera.Camera, cfg config.Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "tracker: validating config")
	}

	if cfg.IntrinsicsPath != "" && cfg.DistortionPath != "" {
		if err := cam.ReadCalibration(cfg.IntrinsicsPath, cfg.DistortionPath); err != nil {
			cfg.Logger.Warning("tracker: lens calibration not loaded", "error", err.Error())
		}
	}

	if err := cam.SetParameters(camera.DefaultParameters(cfg.GoodExposure)); err != nil {
		return nil, errors.Wrap(err, "tracker: setting static exposure")
	}

	probe := gocv.NewMat()
	defer probe.Close()
	if !cam.Read(&probe) || probe.Empty() {
		return nil, errors.New("tracker: camera produced no frame on probe read")
	}
	w, h := cam.FrameSize()

	settingsPath := filepath.Join(cfg.PersistDir, camera.BackupFileName(runtime.GOOS))
	backedUp := camera.FileExists(settingsPath)
	if !backedUp {
		if err := cam.BackupSettings(settingsPath); err != nil {
			cfg.Logger.Warning("tracker: vendor settings backup failed", "error", err.Error())
		} else {
			backedUp = true
		}
	}

	colors, err := persist.NewColorStore(cfg.PersistDir)
	if err != nil {
		return nil, errors.Wrap(err, "tracker: opening color store")
	}

	return &Tracker{
		cam:              cam,
		cfg:              cfg,
		palette:          palette.New(),
		colors:           colors,
		pyr:              update.NewPyramid(w, h, cfg.ROIs),
		frameW:           w,
		frameH:           h,
		frame:            gocv.NewMat(),
		controllers:      make(map[controller.Handle]*entry),
		settingsPath:     settingsPath,
		settingsBackedUp: backedUp,
		sleep:            time.Sleep,
		now:              time.Now,
	}, nil
}

// WatchPersistedColors starts watching the tracker's color store
// directory; onChange is called with the changed file's path whenever an
// operator edits or removes a learned color out-of-band.
func (t *Tracker) WatchPersistedColors(onChange func(path string)) error {
	w, err := persist.WatchColorStore(t.colors, t.cfg.Logger, onChange)
	if err != nil {
		return err
	}
	t.watcher = w
	return nil
}

// UpdateImage reads the next frame from the camera into the tracker's
// frame buffer and updates the measured frame rate. It must be called
// once per tracking cycle before Update or UpdateAll.
func (t *Tracker) UpdateImage() error {
	if !t.cam.Read(&t.frame) {
		return errors.New("tracker: camera read failed")
	}
	now := t.now()
	if !t.lastFrameAt.IsZero() {
		if d := now.Sub(t.lastFrameAt); d > 0 {
			t.fps = float64(time.Second) / float64(d)
		}
	}
	t.lastFrameAt = now
	return nil
}

// Update runs one per-frame tracking update for handle against the
// tracker's current frame buffer (populated by the most recent
// UpdateImage call), returning true iff the controller was found and
// passed the tracking quality gates this frame.
func (t *Tracker) Update(handle controller.Handle) bool {
	e, ok := t.controllers[handle]
	if !ok {
		return false
	}
	return update.Update(t.frame, e.rec, t.pyr, t.cfg, t.fps, t.now())
}

// UpdateAll runs Update for every registered controller and returns the
// set of handles that tracked successfully this frame.
func (t *Tracker) UpdateAll() []controller.Handle {
	var tracked []controller.Handle
	for h, e := range t.controllers {
		if update.Update(t.frame, e.rec, t.pyr, t.cfg, t.fps, t.now()) {
			tracked = append(tracked, h)
		}
	}
	return tracked
}

// GetPosition returns handle's last committed image-space position and
// radius, plus the estimated distance from the camera in millimetres
// derived from that radius. These are the values committed by the most
// recent update that found a blob for handle, whether or not that blob
// passed the tracking quality gates. ok
// reports only whether handle is registered (§4.5), not whether it is
// currently tracked — check Status for that.
func (t *Tracker) GetPosition(handle controller.Handle) (x, y, radius, distanceMM float64, ok bool) {
	e, exists := t.controllers[handle]
	if !exists {
		return 0, 0, 0, 0, false
	}
	return e.rec.X, e.rec.Y, e.rec.R, e.rec.Distance(t.cfg), true
}

// Disable releases handle's palette color, persists its learned color,
// and forgets its tracking state.
func (t *Tracker) Disable(handle controller.Handle) error {
	e, ok := t.controllers[handle]
	if !ok {
		return nil
	}
	if err := t.colors.Save([]*controller.Record{e.rec}); err != nil {
		t.cfg.Logger.Warning("tracker: saving learned color on disable failed", "error", err.Error())
	}
	_ = t.palette.Release(byte(e.rec.AssignedBGR.R), byte(e.rec.AssignedBGR.G), byte(e.rec.AssignedBGR.B))
	delete(t.controllers, handle)
	return nil
}

// Free releases every resource the tracker owns: it persists every
// registered controller's learned color, restores the camera's
// backed-up vendor settings, closes the ROI pyramid and frame buffer,
// stops any active color-store watch, and closes the camera. This
// mirrors psmove_tracker_free, whose first statement is
// tracked_controller_save_colors.
func (t *Tracker) Free() error {
	if len(t.controllers) > 0 {
		recs := make([]*controller.Record, 0, len(t.controllers))
		for _, e := range t.controllers {
			recs = append(recs, e.rec)
		}
		if err := t.colors.Save(recs); err != nil {
			t.cfg.Logger.Warning("tracker: saving learned colors on shutdown failed", "error", err.Error())
		}
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
	if t.settingsBackedUp {
		if err := t.cam.RestoreSettings(t.settingsPath); err != nil {
			t.cfg.Logger.Warning("tracker: restoring vendor settings failed", "error", err.Error())
		}
	}
	t.pyr.Close()
	t.frame.Close()
	return t.cam.Close()
}
