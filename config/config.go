/*
DESCRIPTION
  config.go provides the tunable parameters for the orb tracker: the
  blink-calibration protocol, the per-frame quality gates, the ROI
  pyramid, and the camera/persistence defaults. A new Config must be
  passed through Validate before use.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds the tunable parameters of the orb tracker and the
// defaulting/validation logic applied to them.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pelletier/go-toml/v2"
)

// PSMoveTrackerCameraEnv is the environment variable that, when set to a
// valid integer, overrides the autodetected camera index.
const PSMoveTrackerCameraEnv = "PSMOVE_TRACKER_CAMERA_ENV"

// Defaults for the blink calibration protocol and quality gates, named
// after the constants in the original tracking core.
const (
	DefaultDimmingFactor = 1
	DefaultGoodExposure  = 2051

	DefaultROIs        = 4
	DefaultBlinks      = 4
	DefaultBlinkDelay  = 50 * time.Millisecond
	DefaultCalibMinSize = 50
	DefaultCalibSizeStd = 10.0 // percent
	DefaultCalibMaxDist = 30.0

	DefaultHueRange        = 12
	DefaultSaturationRange = 85
	DefaultValueRange      = 85

	DefaultROIAdjustFPST = 160.0
	DefaultCalibrationDiffT = 20

	DefaultTrackerT1 = 0.3
	DefaultTrackerT2 = 0.7
	DefaultTrackerT3 = 4.0

	// DefaultTrackerAdaptiveXY and DefaultTrackerAdaptiveZ independently
	// gate the xy and radius smoothing steps. The source this tracker is
	// derived from reads a field that looks like a typo for "adaptive xy"
	// when gating the xy-smoothing step (both default to enabled, so
	// production behaviour is identical either way); this module treats
	// the two flags as genuinely independent rather than reproducing the
	// typo, since nothing depends on them being coupled.
	DefaultTrackerAdaptiveXY = true
	DefaultTrackerAdaptiveZ  = true

	DefaultAdaptMaxDiff = 35.0
	DefaultColorUpdateRate = 1 * time.Second

	DefaultColorT1 = 0.8
	DefaultColorT2 = 0.2
	DefaultColorT3 = 6.0

	DefaultSnapToMassCenterQ1 = 0.85
	DefaultSmallBlobPixels    = 20

	DefaultQuickVerifyTries    = 3
	DefaultQuickVerifyDelay    = 100 * time.Millisecond
	DefaultQuickVerifyQ1       = 0.83
	DefaultQuickVerifyQ3       = 8.0

	// Distance estimation constants, carried over from the original
	// tracker's psmove_tracker_calculate_distance.
	DefaultCameraFocalLengthMM = 28.3
	DefaultCameraPixelHeightUM = 5.0
	DefaultOrbDiameterMM       = 47.0
	DefaultDistanceFudgeFactor = 1.05

	DefaultPersistDir = "orbtracker-colors"
)

// Config holds every tunable of the tracking core. Zero-valued fields are
// replaced with defaults by Validate, which also logs every substitution
// via Logger, the same way revid/config.Config.Validate does.
type Config struct {
	Logger logging.Logger

	DimmingFactor int
	GoodExposure  int

	ROIs       int
	Blinks     int
	BlinkDelay time.Duration

	CalibMinSize  int
	CalibSizeStd  float64
	CalibMaxDist  float64
	CalibrationDiffT float64

	HueRange        float64
	SaturationRange float64
	ValueRange      float64

	ROIAdjustFPST float64

	TrackerT1 float64
	TrackerT2 float64
	TrackerT3 float64

	TrackerAdaptiveXY bool
	TrackerAdaptiveZ  bool

	AdaptMaxDiff     float64
	ColorUpdateRate  time.Duration
	ColorT1          float64
	ColorT2          float64
	ColorT3          float64

	SnapToMassCenterQ1 float64
	SmallBlobPixels    int

	QuickVerifyTries int
	QuickVerifyDelay time.Duration
	QuickVerifyQ1    float64
	QuickVerifyQ3    float64

	CameraFocalLengthMM float64
	CameraPixelHeightUM float64
	OrbDiameterMM       float64
	DistanceFudgeFactor float64

	// PersistDir is the directory under which per-controller learned
	// colors and the camera vendor-settings backup are stored.
	PersistDir string

	// IntrinsicsPath and DistortionPath optionally name OpenCV FileStorage
	// XML files holding the camera's lens calibration. Left empty, the
	// tracker skips loading a lens calibration entirely (distance
	// estimates are still derived from focal length, not these matrices).
	IntrinsicsPath  string
	DistortionPath  string
}

// Validate fills in any zero-valued field with its default, logging each
// substitution except for the boolean flags, and returns nil (errors are
// reserved for fields that cannot be defaulted, of which there are
// currently none).
func (c *Config) Validate() error {
	if c.Logger == nil {
		c.Logger = logging.New(logging.Warning, os.Stderr, true)
	}
	ifZeroInt(&c.DimmingFactor, DefaultDimmingFactor, "DimmingFactor", c)
	ifZeroInt(&c.GoodExposure, DefaultGoodExposure, "GoodExposure", c)
	ifZeroInt(&c.ROIs, DefaultROIs, "ROIs", c)
	ifZeroInt(&c.Blinks, DefaultBlinks, "Blinks", c)
	ifZeroDuration(&c.BlinkDelay, DefaultBlinkDelay, "BlinkDelay", c)
	ifZeroInt(&c.CalibMinSize, DefaultCalibMinSize, "CalibMinSize", c)
	ifZeroFloat(&c.CalibSizeStd, DefaultCalibSizeStd, "CalibSizeStd", c)
	ifZeroFloat(&c.CalibMaxDist, DefaultCalibMaxDist, "CalibMaxDist", c)
	ifZeroFloat(&c.CalibrationDiffT, DefaultCalibrationDiffT, "CalibrationDiffT", c)
	ifZeroFloat(&c.HueRange, DefaultHueRange, "HueRange", c)
	ifZeroFloat(&c.SaturationRange, DefaultSaturationRange, "SaturationRange", c)
	ifZeroFloat(&c.ValueRange, DefaultValueRange, "ValueRange", c)
	ifZeroFloat(&c.ROIAdjustFPST, DefaultROIAdjustFPST, "ROIAdjustFPST", c)
	ifZeroFloat(&c.TrackerT1, DefaultTrackerT1, "TrackerT1", c)
	ifZeroFloat(&c.TrackerT2, DefaultTrackerT2, "TrackerT2", c)
	ifZeroFloat(&c.TrackerT3, DefaultTrackerT3, "TrackerT3", c)
	ifZeroFloat(&c.AdaptMaxDiff, DefaultAdaptMaxDiff, "AdaptMaxDiff", c)
	ifZeroDuration(&c.ColorUpdateRate, DefaultColorUpdateRate, "ColorUpdateRate", c)
	ifZeroFloat(&c.ColorT1, DefaultColorT1, "ColorT1", c)
	ifZeroFloat(&c.ColorT2, DefaultColorT2, "ColorT2", c)
	ifZeroFloat(&c.ColorT3, DefaultColorT3, "ColorT3", c)
	ifZeroFloat(&c.SnapToMassCenterQ1, DefaultSnapToMassCenterQ1, "SnapToMassCenterQ1", c)
	ifZeroInt(&c.SmallBlobPixels, DefaultSmallBlobPixels, "SmallBlobPixels", c)
	ifZeroInt(&c.QuickVerifyTries, DefaultQuickVerifyTries, "QuickVerifyTries", c)
	ifZeroDuration(&c.QuickVerifyDelay, DefaultQuickVerifyDelay, "QuickVerifyDelay", c)
	ifZeroFloat(&c.QuickVerifyQ1, DefaultQuickVerifyQ1, "QuickVerifyQ1", c)
	ifZeroFloat(&c.QuickVerifyQ3, DefaultQuickVerifyQ3, "QuickVerifyQ3", c)
	ifZeroFloat(&c.CameraFocalLengthMM, DefaultCameraFocalLengthMM, "CameraFocalLengthMM", c)
	ifZeroFloat(&c.CameraPixelHeightUM, DefaultCameraPixelHeightUM, "CameraPixelHeightUM", c)
	ifZeroFloat(&c.OrbDiameterMM, DefaultOrbDiameterMM, "OrbDiameterMM", c)
	ifZeroFloat(&c.DistanceFudgeFactor, DefaultDistanceFudgeFactor, "DistanceFudgeFactor", c)
	if c.PersistDir == "" {
		c.LogInvalidField("PersistDir", DefaultPersistDir)
		c.PersistDir = DefaultPersistDir
	}

	// Booleans default to true (not the zero value), so they're set
	// explicitly, without logging, rather than through the ifZero helpers.
	if !c.TrackerAdaptiveXY {
		c.TrackerAdaptiveXY = DefaultTrackerAdaptiveXY
	}
	if !c.TrackerAdaptiveZ {
		c.TrackerAdaptiveZ = DefaultTrackerAdaptiveZ
	}
	return nil
}

// LogInvalidField logs, via the Config's Logger, that field name was bad
// or unset and has been defaulted to def.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

func ifZeroInt(f *int, def int, name string, c *Config) {
	if *f == 0 {
		c.LogInvalidField(name, def)
		*f = def
	}
}

func ifZeroFloat(f *float64, def float64, name string, c *Config) {
	if *f == 0 {
		c.LogInvalidField(name, def)
		*f = def
	}
}

func ifZeroDuration(f *time.Duration, def time.Duration, name string, c *Config) {
	if *f == 0 {
		c.LogInvalidField(name, def)
		*f = def
	}
}

// Default returns a Config populated entirely with defaults.
func Default() Config {
	c := Config{}
	c.Validate()
	return c
}

// overrides is the subset of Config's tunables an operator may retune via
// an on-disk TOML file without a rebuild. Field names mirror Config's.
type overrides struct {
	CalibMinSize     *int     `toml:"calib_min_size"`
	CalibSizeStd     *float64 `toml:"calib_size_std"`
	CalibMaxDist     *float64 `toml:"calib_max_dist"`
	TrackerT1        *float64 `toml:"tracker_t1"`
	TrackerT2        *float64 `toml:"tracker_t2"`
	TrackerT3        *float64 `toml:"tracker_t3"`
	ColorUpdateRate  *string  `toml:"color_update_rate"`
	AdaptMaxDiff     *float64 `toml:"adapt_max_diff"`
	GoodExposure     *int     `toml:"good_exposure"`
	PersistDir       *string  `toml:"persist_dir"`
}

// Load reads an optional TOML file of tunable overrides at path and
// overlays them onto a default Config. A missing file is not an error;
// Load simply returns Default(). This is how a deployment retunes the
// calibration and quality gates without a rebuild, the way cogentcore's
// TOML-backed settings are loaded.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, err
	}

	var o overrides
	if err := toml.Unmarshal(b, &o); err != nil {
		return c, err
	}
	if o.CalibMinSize != nil {
		c.CalibMinSize = *o.CalibMinSize
	}
	if o.CalibSizeStd != nil {
		c.CalibSizeStd = *o.CalibSizeStd
	}
	if o.CalibMaxDist != nil {
		c.CalibMaxDist = *o.CalibMaxDist
	}
	if o.TrackerT1 != nil {
		c.TrackerT1 = *o.TrackerT1
	}
	if o.TrackerT2 != nil {
		c.TrackerT2 = *o.TrackerT2
	}
	if o.TrackerT3 != nil {
		c.TrackerT3 = *o.TrackerT3
	}
	if o.ColorUpdateRate != nil {
		d, err := time.ParseDuration(*o.ColorUpdateRate)
		if err != nil {
			return c, err
		}
		c.ColorUpdateRate = d
	}
	if o.AdaptMaxDiff != nil {
		c.AdaptMaxDiff = *o.AdaptMaxDiff
	}
	if o.GoodExposure != nil {
		c.GoodExposure = *o.GoodExposure
	}
	if o.PersistDir != nil {
		c.PersistDir = *o.PersistDir
	}
	return c, nil
}

// CameraIndex resolves the camera index to open: the value of
// PSMoveTrackerCameraEnv if set to a valid integer, or def otherwise.
func CameraIndex(def int) int {
	v := os.Getenv(PSMoveTrackerCameraEnv)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
