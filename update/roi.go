/*
DESCRIPTION
  roi.go clamps and positions a controller's region of interest within
  the frame, and cycles the four-quadrant fallback search used once a
  controller has escalated all the way to the full-frame ROI level
  without finding its blob.

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

	"github.com/ausocean/orbtracker/controller"
)

// setROI positions rec's ROI top-left at (x, y), sized dim, clamping so
// the ROI never spills outside a frameW x frameH frame.
func setROI(rec *controller.Record, x, y int, dim image.Point, frameW, frameH int) {
	if x < 0 {
		x = 0
	}
	if x+dim.X > frameW {
		x = frameW - dim.X
	}
	if y < 0 {
		y = 0
	}
	if y+dim.Y > frameH {
		y = frameH - dim.Y
	}
	rec.ROIX, rec.ROIY = x, y
}

// quadrantOrigin returns the top-left of the q'th quadrant (0..3, in
// clockwise order starting top-left) of a frameW x frameH frame.
func quadrantOrigin(q, frameW, frameH int) (x, y int) {
	switch q % 4 {
	case 0:
		return 0, 0
	case 1:
		return frameW / 2, 0
	case 2:
		return frameW / 2, frameH / 2
	default:
		return 0, frameH / 2
	}
}
