package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Device:             ptr.To("pad-0"),
		I2CDevice:          ptr.To("/dev/i2c-1"),
		I2CAddr:            ptr.To(0x53),
		PollIntervalMs:     ptr.To(15),
		DebounceMs:         ptr.To(300),
		Sensitivity:        ptr.To(2.5),
		ThresholdFloor:     ptr.To(0.5),
		DefaultThreshold:   ptr.To(1.0),
		CalibrationSeconds: ptr.To(3),
		AllowNonRootAccess: ptr.To(false),
		RecalibrateCron:    ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

// RawFileConfig is the on-disk shape. Absent fields fall back to defaults,
// so a partial config file stays valid across upgrades.
type RawFileConfig struct {
	Device             *string  `json:"device,omitempty"`
	I2CDevice          *string  `json:"i2cDevice,omitempty"`
	I2CAddr            *int     `json:"i2cAddr,omitempty"`
	PollIntervalMs     *int     `json:"pollIntervalMs,omitempty"`
	DebounceMs         *int     `json:"debounceMs,omitempty"`
	Sensitivity        *float64 `json:"sensitivity,omitempty"`
	ThresholdFloor     *float64 `json:"thresholdFloor,omitempty"`
	DefaultThreshold   *float64 `json:"defaultThreshold,omitempty"`
	CalibrationSeconds *int     `json:"calibrationSeconds,omitempty"`
	AllowNonRootAccess *bool    `json:"allowNonRootAccess,omitempty"`
	RecalibrateCron    *string  `json:"recalibrateCron,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Device:             ptr.To(c.Device()),
		I2CDevice:          ptr.To(c.I2CDevice()),
		I2CAddr:            ptr.To(c.I2CAddr()),
		PollIntervalMs:     ptr.To(int(c.PollInterval() / time.Millisecond)),
		DebounceMs:         ptr.To(int(c.Debounce() / time.Millisecond)),
		Sensitivity:        ptr.To(c.Sensitivity()),
		ThresholdFloor:     ptr.To(c.ThresholdFloor()),
		DefaultThreshold:   ptr.To(c.DefaultThreshold()),
		CalibrationSeconds: ptr.To(c.CalibrationSeconds()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		RecalibrateCron:    ptr.To(c.RecalibrateCron()),
	}

	return rawConfig, nil
}

func (f *File) Device() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return stringOr(f.c.Device, defaultFileConfig.Device)
}

func (f *File) I2CDevice() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return stringOr(f.c.I2CDevice, defaultFileConfig.I2CDevice)
}

func (f *File) I2CAddr() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.I2CAddr, defaultFileConfig.I2CAddr)
}

func (f *File) PollInterval() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(intOr(f.c.PollIntervalMs, defaultFileConfig.PollIntervalMs)) * time.Millisecond
}

func (f *File) Debounce() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(intOr(f.c.DebounceMs, defaultFileConfig.DebounceMs)) * time.Millisecond
}

func (f *File) Sensitivity() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.Sensitivity, defaultFileConfig.Sensitivity)
}

func (f *File) ThresholdFloor() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.ThresholdFloor, defaultFileConfig.ThresholdFloor)
}

func (f *File) DefaultThreshold() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.DefaultThreshold, defaultFileConfig.DefaultThreshold)
}

func (f *File) CalibrationSeconds() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.CalibrationSeconds, defaultFileConfig.CalibrationSeconds)
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return boolOr(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) RecalibrateCron() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return stringOr(f.c.RecalibrateCron, defaultFileConfig.RecalibrateCron)
}

func (f *File) SetRecalibrateCron(expr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.RecalibrateCron = &expr
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}
	configString := string(b)

	if strings.TrimSpace(configString) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"device":             f.Device(),
		"i2cDevice":          f.I2CDevice(),
		"pollInterval":       f.PollInterval(),
		"debounce":           f.Debounce(),
		"sensitivity":        f.Sensitivity(),
		"thresholdFloor":     f.ThresholdFloor(),
		"defaultThreshold":   f.DefaultThreshold(),
		"calibrationSeconds": f.CalibrationSeconds(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"recalibrateCron":    f.RecalibrateCron(),
	}
}

func stringOr(v, def *string) string {
	if v != nil {
		return *v
	}
	return *def
}

func intOr(v, def *int) int {
	if v != nil {
		return *v
	}
	return *def
}

func floatOr(v, def *float64) float64 {
	if v != nil {
		return *v
	}
	return *def
}

func boolOr(v, def *bool) bool {
	if v != nil {
		return *v
	}
	return *def
}
