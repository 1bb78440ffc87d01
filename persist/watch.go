/*
DESCRIPTION
  watch.go watches a ColorStore's directory for out-of-band edits (an
  operator hand-editing or deleting a saved calibration) and reports
  each changed file to a caller-supplied callback. It keeps no cached
  color state of its own.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package persist

import (
	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher notifies a callback whenever a file under a ColorStore's
// directory changes on disk.
type Watcher struct {
	w *fsnotify.Watcher
}

// WatchColorStore starts watching s's directory, calling onChange with
// the changed file's path whenever a write, create, or remove event is
// observed. The returned Watcher must be closed by the caller.
func WatchColorStore(s *ColorStore, log logging.Logger, onChange func(path string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "persist: creating watcher")
	}
	if err := w.Add(s.Dir); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "persist: watching color store directory")
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
					log.Debug("persist: color store changed on disk", "path", ev.Name)
					onChange(ev.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warning("persist: watch error", "error", err.Error())
			}
		}
	}()

	return &Watcher{w: w}, nil
}

// Close stops the watch.
func (w *Watcher) Close() error { return w.w.Close() }
