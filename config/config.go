// Package config defines the structures that configure the viewer.
package config

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/probe"
	"go.viam.com/kinectviewer/viewer"
)

// Config is the whole viewer configuration.
type Config struct {
	Device    DeviceConfig    `json:"device"`
	Replay    ReplayConfig    `json:"replay"`
	Window    WindowConfig    `json:"window"`
	Histogram HistogramConfig `json:"histogram"`
	AutoRange AutoRangeConfig `json:"auto_range"`
	Probe     ProbeConfig     `json:"probe"`
	Save      SaveConfig      `json:"save"`
	Web       WebConfig       `json:"web"`
	Log       LogConfig       `json:"log"`
	// Frames stops the viewer after this many frames. Zero runs until quit.
	Frames int `json:"frames"`
}

// DeviceConfig selects a live device.
type DeviceConfig struct {
	Driver string `json:"driver"`
	Index  int    `json:"index"`
}

// ReplayConfig selects a pair of images to replay instead of a device.
type ReplayConfig struct {
	Color string `json:"color"`
	Depth string `json:"depth"`
	Watch bool   `json:"watch"`
}

// Enabled returns whether a replay pair was given.
func (rc ReplayConfig) Enabled() bool {
	return rc.Color != "" || rc.Depth != ""
}

// WindowConfig is the calibration the viewer starts with.
type WindowConfig struct {
	Min         int `json:"min"`
	Range       int `json:"range"`
	Blend       int `json:"blend"`
	TrackbarMax int `json:"trackbar_max"`
}

// HistogramConfig shapes the histogram.
type HistogramConfig struct {
	Buckets     int `json:"buckets"`
	BucketWidth int `json:"bucket_width"`
}

// AutoRangeConfig holds the auto-range percentiles as fractions of the pixel count.
type AutoRangeConfig struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ProbeConfig shapes the probe.
type ProbeConfig struct {
	HistoryCapacity int  `json:"history_capacity"`
	FollowPointer   bool `json:"follow_pointer"`
}

// SaveConfig controls where saved frames go.
type SaveConfig struct {
	Dir    string        `json:"dir"`
	Naming viewer.Naming `json:"naming"`
	Format viewer.Format `json:"format"`
}

// WebConfig controls the browser display.
type WebConfig struct {
	// Listen is the address to serve on. Empty disables the browser display.
	Listen string `json:"listen"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{Driver: "synthetic"},
		Window: WindowConfig{
			Min:         calibration.DefaultMin,
			Range:       calibration.DefaultRange,
			Blend:       calibration.DefaultBlend,
			TrackbarMax: calibration.TrackbarMax,
		},
		Histogram: HistogramConfig{
			Buckets:     calibration.DefaultBuckets,
			BucketWidth: calibration.DefaultBucketWidth,
		},
		AutoRange: AutoRangeConfig{
			Low:  calibration.DefaultLowPercentile,
			High: calibration.DefaultHighPercentile,
		},
		Probe: ProbeConfig{HistoryCapacity: probe.DefaultHistoryCapacity},
		Save:  SaveConfig{Naming: viewer.NamingDate, Format: viewer.FormatPNG},
		Log:   LogConfig{Level: "info"},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	for _, v := range []interface {
		Validate(path string) error
	}{
		&c.Device, &c.Replay, &c.Window, &c.Histogram, &c.AutoRange, &c.Probe, &c.Save, &c.Log,
	} {
		if err := v.Validate(path); err != nil {
			return err
		}
	}
	if c.Frames < 0 {
		return newConfigValidationError(path, "frames", errors.New("must not be negative"))
	}
	return nil
}

// Validate ensures the device can be opened.
func (dc *DeviceConfig) Validate(path string) error {
	if dc.Driver == "" {
		return newFieldRequiredError(path, "device.driver")
	}
	if dc.Index < 0 {
		return newConfigValidationError(path, "device.index", errors.Errorf("must not be negative, got %d", dc.Index))
	}
	return nil
}

// Validate ensures both images or neither are given.
func (rc *ReplayConfig) Validate(path string) error {
	if rc.Color != "" && rc.Depth == "" {
		return newFieldRequiredError(path, "replay.depth")
	}
	if rc.Depth != "" && rc.Color == "" {
		return newFieldRequiredError(path, "replay.color")
	}
	return nil
}

// Validate ensures the window fits the controls. A non-positive range is allowed; it is clamped
// when used.
func (wc *WindowConfig) Validate(path string) error {
	if wc.TrackbarMax <= 0 {
		return newConfigValidationError(path, "window.trackbar_max", errors.New("must be positive"))
	}
	if wc.Min < 0 || wc.Min > wc.TrackbarMax {
		return newConfigValidationError(path, "window.min", errors.Errorf("must be within [0, %d]", wc.TrackbarMax))
	}
	if wc.Range > wc.TrackbarMax {
		return newConfigValidationError(path, "window.range", errors.Errorf("must be at most %d", wc.TrackbarMax))
	}
	if wc.Blend < 0 || wc.Blend > 100 {
		return newConfigValidationError(path, "window.blend", errors.New("must be within [0, 100]"))
	}
	return nil
}

// Validate ensures the histogram has a shape.
func (hc *HistogramConfig) Validate(path string) error {
	if hc.Buckets <= 0 {
		return newConfigValidationError(path, "histogram.buckets", errors.New("must be positive"))
	}
	if hc.BucketWidth <= 0 {
		return newConfigValidationError(path, "histogram.bucket_width", errors.New("must be positive"))
	}
	return nil
}

// Validate ensures the percentiles are ordered fractions.
func (ac *AutoRangeConfig) Validate(path string) error {
	if ac.Low < 0 || ac.High > 1 || ac.Low >= ac.High {
		return newConfigValidationError(path, "auto_range",
			errors.Errorf("need 0 <= low < high <= 1, got low=%v high=%v", ac.Low, ac.High))
	}
	return nil
}

// Validate ensures the history can hold samples.
func (pc *ProbeConfig) Validate(path string) error {
	if pc.HistoryCapacity <= 0 {
		return newConfigValidationError(path, "probe.history_capacity", errors.New("must be positive"))
	}
	return nil
}

// Validate ensures the naming and format are known.
func (sc *SaveConfig) Validate(path string) error {
	if err := sc.Naming.Validate(); err != nil {
		return newConfigValidationError(path, "save.naming", err)
	}
	if err := sc.Format.Validate(); err != nil {
		return newConfigValidationError(path, "save.format", err)
	}
	return nil
}

// Validate ensures the level is known.
func (lc *LogConfig) Validate(path string) error {
	if _, err := logging.LevelFromString(lc.Level); err != nil {
		return newConfigValidationError(path, "log.level", err)
	}
	return nil
}

// State returns the calibration state the viewer starts with.
func (c *Config) State() *calibration.State {
	s := calibration.NewState()
	s.Window = calibration.Window{Min: c.Window.Min, Range: c.Window.Range}
	s.Blend = c.Window.Blend
	return s
}

// ViewerOptions returns the options for the render loop.
func (c *Config) ViewerOptions() viewer.Options {
	opts := viewer.DefaultOptions()
	opts.Buckets = c.Histogram.Buckets
	opts.BucketWidth = c.Histogram.BucketWidth
	opts.LowPercentile = c.AutoRange.Low
	opts.HighPercentile = c.AutoRange.High
	opts.HistoryCapacity = c.Probe.HistoryCapacity
	opts.FollowPointer = c.Probe.FollowPointer
	return opts
}

func newConfigValidationError(path, field string, err error) error {
	return errors.Wrapf(err, "error validating %q", fieldPath(path, field))
}

func newFieldRequiredError(path, field string) error {
	return errors.Errorf("error validating %q: field is required", fieldPath(path, field))
}

func fieldPath(path, field string) string {
	if path == "" {
		return field
	}
	return fmt.Sprintf("%s.%s", path, field)
}
