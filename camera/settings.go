/*
DESCRIPTION
  settings.go persists and restores the PSEye-style vendor settings
  backup file (PSEye_backup_*.ini in the original tracker). No INI
  library exists anywhere in this module's dependency pool, so this one
  corner is a small hand-rolled key=value reader/writer over the standard
  library rather than a third-party format.

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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// BackupFileName returns the platform-suffixed vendor-settings backup
// file name the original tracker used: PSEye_backup_win.ini on Windows,
// PSEye_backup_v4l.ini elsewhere.
func BackupFileName(goos string) string {
	if goos == "windows" {
		return "PSEye_backup_win.ini"
	}
	return "PSEye_backup_v4l.ini"
}

func saveSettings(path string, p Parameters) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fields := map[string]int{
		"auto_exposure":       p.AutoExposure,
		"auto_gain":           p.AutoGain,
		"auto_white_balance":  p.AutoWhiteBalance,
		"exposure":            p.Exposure,
		"gain":                p.Gain,
		"white_balance_red":   p.WhiteBalanceRed,
		"white_balance_green": p.WhiteBalanceGreen,
		"white_balance_blue":  p.WhiteBalanceBlue,
		"contrast":            p.Contrast,
		"brightness":          p.Brightness,
	}
	for _, k := range []string{
		"auto_exposure", "auto_gain", "auto_white_balance", "exposure", "gain",
		"white_balance_red", "white_balance_green", "white_balance_blue",
		"contrast", "brightness",
	} {
		if _, err := fmt.Fprintf(w, "%s=%d\n", k, fields[k]); err != nil {
			return err
		}
	}
	return w.Flush()
}

func loadSettings(path string) (Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return Parameters{}, err
	}
	defer f.Close()

	var p Parameters
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(k) {
		case "auto_exposure":
			p.AutoExposure = n
		case "auto_gain":
			p.AutoGain = n
		case "auto_white_balance":
			p.AutoWhiteBalance = n
		case "exposure":
			p.Exposure = n
		case "gain":
			p.Gain = n
		case "white_balance_red":
			p.WhiteBalanceRed = n
		case "white_balance_green":
			p.WhiteBalanceGreen = n
		case "white_balance_blue":
			p.WhiteBalanceBlue = n
		case "contrast":
			p.Contrast = n
		case "brightness":
			p.Brightness = n
		}
	}
	return p, s.Err()
}

// FileExists reports whether path exists, mirroring th_file_exists from
// the source tracker (used to gate whether a fresh backup is taken).
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
