/*
DESCRIPTION
  quickverify.go implements the quick-verify shortcut: rather than
  re-running the full blink protocol on every enable, a previously
  persisted color is re-asserted on the LED and run through a handful of
  ordinary per-frame updates; if it tracks convincingly, full
  calibration is skipped entirely.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package calibrate

import (
	"time"

	"github.com/ausocean/orbtracker/camera"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"github.com/ausocean/orbtracker/led"
	"github.com/ausocean/orbtracker/update"
	"gocv.io/x/gocv"
)

// QuickVerify re-asserts rec's adapted color on tp's LED and pumps
// cfg.QuickVerifyTries frames through update.Update, pausing
// cfg.QuickVerifyDelay between each. It reports true only if every one
// of those tries tracks with Q1/Q3 comfortably above the ordinary
// tracking gates (QuickVerifyQ1/QuickVerifyQ3) — matching
// psmove_tracker_old_color_is_tracked's AND-across-iterations result,
// not a single lucky frame.
func QuickVerify(cam camera.Camera, tp led.Transport, rec *controller.Record, pyr *update.Pyramid, cfg config.Config, sleep func(time.Duration), now func() time.Time) bool {
	frame := gocv.NewMat()
	defer frame.Close()

	dimmed := rec.AssignedBGR.Dim(cfg.DimmingFactor)

	ok := true
	for i := 0; i < cfg.QuickVerifyTries; i++ {
		if err := tp.SetRGB(byte(dimmed.R), byte(dimmed.G), byte(dimmed.B)); err != nil {
			return false
		}
		sleep(cfg.QuickVerifyDelay)
		tracked := cam.Read(&frame) && update.Update(frame, rec, pyr, cfg, 0, now())
		ok = ok && tracked && rec.Q1 > cfg.QuickVerifyQ1 && rec.Q3 > cfg.QuickVerifyQ3
	}
	return ok
}
