/*
DESCRIPTION
  orbtrackerd is a minimal standalone daemon exercising the orb tracker:
  it opens a camera, registers a single controller, calibrates it, and
  logs its tracked position once per frame until interrupted. It's a
  demonstration harness, not a full netsender client; a real deployment
  would swap stdoutLED for a Bluetooth/HID transport that actually
  commands a controller's LED.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// orbtrackerd is a minimal standalone daemon exercising the orb tracker
// against a live camera.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ausocean/orbtracker/camera"
	"github.com/ausocean/orbtracker/config"
	"github.com/ausocean/orbtracker/controller"
	"github.com/ausocean/orbtracker/tracker"
	"github.com/ausocean/utils/logging"
	"github.com/coreos/go-systemd/v22/daemon"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logging configuration.
const (
	logPath      = "/var/log/orbtracker/orbtracker.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

const controllerHandle controller.Handle = "controller-0"

// stdoutLED is a placeholder led.Transport that logs the color it would
// command, standing in for a real Bluetooth/HID-backed implementation.
type stdoutLED struct{ log logging.Logger }

func (s stdoutLED) SetRGB(r, g, b byte) error {
	s.log.Debug("orbtrackerd: LED set", "r", r, "g", g, "b", b)
	return nil
}

func main() {
	cameraIndex := flag.Int("camera", config.CameraIndex(0), "camera device index")
	configPath := flag.String("config", "/etc/orbtracker/orbtracker.toml", "path to tunable-override config file")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, fileLog, logSuppress)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config", "error", err)
	}
	cfg.Logger = log

	log.Info("opening camera", "index", *cameraIndex)
	cam, err := camera.Open(*cameraIndex)
	if err != nil {
		log.Fatal("could not open camera", "error", err)
	}

	log.Info("initialising tracker")
	tr, err := tracker.New(cam, cfg)
	if err != nil {
		log.Fatal("could not initialise tracker", "error", err)
	}
	defer tr.Free()

	if err := tr.WatchPersistedColors(func(path string) {
		log.Info("orbtrackerd: persisted color changed on disk", "path", path)
	}); err != nil {
		log.Warning("could not watch persisted colors", "error", err)
	}

	log.Info("enabling controller", "handle", string(controllerHandle))
	assigned, err := tr.Enable(controllerHandle, stdoutLED{log: log})
	if err != nil {
		log.Fatal("could not calibrate controller", "error", err)
	}
	log.Info("controller calibrated", "assignedBGR", assigned)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug("sd_notify unavailable", "error", err)
	}

	log.Info("starting tracking loop")
	run(tr, log, sigCh)

	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		log.Debug("sd_notify unavailable", "error", err)
	}
}

// run pumps the tracker once per frame, logging the controller's
// position whenever it's tracked, until sigCh fires.
func run(tr *tracker.Tracker, log logging.Logger, sigCh <-chan os.Signal) {
	for {
		select {
		case <-sigCh:
			log.Info("orbtrackerd: shutting down")
			return
		default:
		}

		if err := tr.UpdateImage(); err != nil {
			log.Warning("orbtrackerd: frame read failed", "error", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if tr.Update(controllerHandle) {
			x, y, radius, dist, ok := tr.GetPosition(controllerHandle)
			if ok {
				log.Debug("orbtrackerd: tracked", "x", x, "y", y, "radius", radius, "distanceMM", dist)
			}
		} else {
			log.Debug("orbtrackerd: controller not found this frame")
		}
	}
}
