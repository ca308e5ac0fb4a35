package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the engine and daemon tunables.
type Config interface {
	// Device is the logical device name this daemon registers its engine
	// under. The control surface addresses engines by this name.
	Device() string
	// I2CDevice is the Linux I2C character device the accelerometer
	// hangs off, e.g. /dev/i2c-1.
	I2CDevice() string
	// I2CAddr is the accelerometer's 7-bit I2C address.
	I2CAddr() int
	PollInterval() time.Duration
	Debounce() time.Duration
	// Sensitivity is the k in threshold = mean + k*stddev.
	Sensitivity() float64
	ThresholdFloor() float64
	DefaultThreshold() float64
	// CalibrationSeconds is the default at-rest sampling window.
	CalibrationSeconds() int
	AllowNonRootAccess() bool
	// RecalibrateCron is an optional cron expression for unattended noise
	// re-baselining. Empty disables it.
	RecalibrateCron() string

	SetRecalibrateCron(string)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
