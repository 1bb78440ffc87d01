/*
DESCRIPTION
  enable.go implements controller enable/registration: reserving a
  palette color, attempting the quick-verify shortcut against a
  previously persisted color, falling back to full blink calibration,
  and persisting the result. This is psmove_tracker_enable and
  psmove_tracker_enable_with_color from the original tracking core.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tracker

import (
	"github.com/ausocean/orbtracker/calibrate"
	"github.com/ausocean/orbtracker/controller"
	"github.com/ausocean/orbtracker/led"
	"github.com/pkg/errors"
)

// ErrAlreadyEnabled is returned by Enable/EnableWithColor when handle is
// already registered.
var ErrAlreadyEnabled = errors.New("tracker: controller already enabled")

// Enable registers handle, reserving the next free palette color and
// assigning it to tp. If a color was previously learned and persisted
// for that assignment, Enable tries the quick-verify shortcut before
// falling back to full blink calibration.
func (t *Tracker) Enable(handle controller.Handle, tp led.Transport) (controller.BGR, error) {
	if _, ok := t.controllers[handle]; ok {
		return controller.BGR{}, ErrAlreadyEnabled
	}
	r, g, b, ok := t.palette.Reserve()
	if !ok {
		return controller.BGR{}, errors.New("tracker: no free palette color")
	}
	assigned := controller.BGR{R: float64(r), G: float64(g), B: float64(b)}
	rec, err := t.calibrate(handle, tp, assigned, r, g, b)
	if err != nil {
		_ = t.palette.Release(r, g, b)
		return controller.BGR{}, err
	}
	t.controllers[handle] = &entry{rec: rec, led: tp}
	return assigned, nil
}

// EnableWithColor is like Enable but requires a specific palette color,
// failing with palette.ErrAlreadyUsed if another controller already
// holds it.
func (t *Tracker) EnableWithColor(handle controller.Handle, tp led.Transport, r, g, b byte) error {
	if _, ok := t.controllers[handle]; ok {
		return ErrAlreadyEnabled
	}
	if err := t.palette.ReserveSpecific(r, g, b); err != nil {
		return err
	}
	assigned := controller.BGR{R: float64(r), G: float64(g), B: float64(b)}
	rec, err := t.calibrate(handle, tp, assigned, r, g, b)
	if err != nil {
		_ = t.palette.Release(r, g, b)
		return err
	}
	t.controllers[handle] = &entry{rec: rec, led: tp}
	return nil
}

// calibrate attempts the quick-verify shortcut against a persisted color
// for (r,g,b), falling back to full blink calibration, and persists the
// result on success.
func (t *Tracker) calibrate(handle controller.Handle, tp led.Transport, assigned controller.BGR, r, g, b byte) (*controller.Record, error) {
	if observedBGR, observedHSV, found, err := t.colors.Load(r, g, b); err == nil && found {
		dim := t.pyr.Dims[0]
		rec := controller.NewRecord(handle, assigned, observedBGR, observedHSV, t.frameW, t.frameH, dim.X, dim.Y)
		if calibrate.QuickVerify(t.cam, tp, rec, t.pyr, t.cfg, t.sleep, t.now) {
			t.cfg.Logger.Info("tracker: quick-verify succeeded, skipping full calibration", "handle", string(handle))
			return rec, nil
		}
		t.cfg.Logger.Info("tracker: quick-verify failed, running full calibration", "handle", string(handle))
	}

	rec, err := calibrate.Calibrate(t.cam, tp, handle, assigned, t.cfg, t.cfg.Logger, t.sleep)
	if err != nil {
		return nil, errors.Wrap(err, "tracker: calibration failed")
	}
	if err := t.colors.Save([]*controller.Record{rec}); err != nil {
		t.cfg.Logger.Warning("tracker: persisting learned color failed", "error", err.Error())
	}
	return rec, nil
}

// GetColor returns handle's currently assigned LED color, scaled by
// DimmingFactor the way the color is actually commanded to the LED
// (§4.5), and false if handle isn't registered.
func (t *Tracker) GetColor(handle controller.Handle) (controller.BGR, bool) {
	e, ok := t.controllers[handle]
	if !ok {
		return controller.BGR{}, false
	}
	return e.rec.AssignedBGR.Dim(t.cfg.DimmingFactor), true
}

// Status reports how far handle has progressed: NotCalibrated if it
// isn't registered, Tracking if its most recent update passed the
// quality gates, Calibrated otherwise.
func (t *Tracker) Status(handle controller.Handle) Status {
	e, ok := t.controllers[handle]
	if !ok {
		return NotCalibrated
	}
	if e.rec.IsTracked {
		return Tracking
	}
	return Calibrated
}
