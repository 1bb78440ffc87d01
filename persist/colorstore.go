/*
DESCRIPTION
  colorstore.go persists and loads the per-controller learned HSV color
  that lets the tracker skip full blink calibration on a subsequent
  enable (tracked_controller_load_color / tracked_controller_save_colors
  in the original tracker). Colors are addressed by the (r,g,b) triple
  they were assigned, the same hint the source's load function accepts.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package persist provides on-disk persistence for learned tracking
// colors, and a watch helper that calls back when an operator edits the
// stored colors out-of-band.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ausocean/orbtracker/controller"
	"github.com/pkg/errors"
)

// savedColor is the on-disk representation of a learned color.
type savedColor struct {
	ObservedBGR controller.BGR
	ObservedHSV controller.HSV
}

// ColorStore persists learned colors under a directory, one file per
// assigned (r,g,b) triple.
type ColorStore struct {
	Dir string
}

// NewColorStore returns a ColorStore rooted at dir, creating it if
// necessary.
func NewColorStore(dir string) (*ColorStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "persist: creating color store directory")
	}
	return &ColorStore{Dir: dir}, nil
}

func (s *ColorStore) path(r, g, b byte) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%02x%02x%02x.json", r, g, b))
}

// Load returns the previously saved color for (r, g, b), and false if
// none has been saved yet.
func (s *ColorStore) Load(r, g, b byte) (controller.BGR, controller.HSV, bool, error) {
	data, err := os.ReadFile(s.path(r, g, b))
	if os.IsNotExist(err) {
		return controller.BGR{}, controller.HSV{}, false, nil
	}
	if err != nil {
		return controller.BGR{}, controller.HSV{}, false, errors.Wrap(err, "persist: reading saved color")
	}
	var sc savedColor
	if err := json.Unmarshal(data, &sc); err != nil {
		return controller.BGR{}, controller.HSV{}, false, errors.Wrap(err, "persist: decoding saved color")
	}
	return sc.ObservedBGR, sc.ObservedHSV, true, nil
}

// Save writes the observed color for every record in records, keyed by
// each record's assigned color. This mirrors tracked_controller_save_colors,
// which bulk-saves every currently tracked controller's color on
// successful calibration and on tracker shutdown.
func (s *ColorStore) Save(records []*controller.Record) error {
	for _, r := range records {
		sc := savedColor{ObservedBGR: r.ObservedBGR, ObservedHSV: r.ObservedHSV}
		data, err := json.Marshal(sc)
		if err != nil {
			return errors.Wrap(err, "persist: encoding color")
		}
		path := s.path(byte(r.AssignedBGR.R), byte(r.AssignedBGR.G), byte(r.AssignedBGR.B))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(err, "persist: writing color")
		}
	}
	return nil
}
