package touch

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
)

// Calibrate samples the sensor for the given window while the device is
// expected to be at rest, derives the noise floor and replaces the
// detection threshold with mean + k*stddev (clamped to the floor). It
// fails with ErrInsufficientSamples if the window yielded too few
// readings, leaving the previous profile and threshold untouched. It
// cannot run while a session is active.
func (e *Engine) Calibrate(window time.Duration) (CalibrationProfile, error) {
	if window <= 0 {
		return CalibrationProfile{}, fmt.Errorf("calibration window must be positive, got %v", window)
	}

	e.mu.Lock()
	if e.running || e.calibrating {
		e.mu.Unlock()
		return CalibrationProfile{}, ErrAlreadyRunning
	}
	if !e.hwAvailable {
		e.mu.Unlock()
		return CalibrationProfile{}, ErrHardwareUnavailable
	}
	e.calibrating = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.calibrating = false
		e.mu.Unlock()
	}()

	samples, err := e.collectAtRest(window)
	if err != nil {
		e.mu.Lock()
		e.hwAvailable = false
		e.mu.Unlock()
		return CalibrationProfile{}, fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
	}
	if len(samples) < e.opts.MinCalibrationSamples {
		return CalibrationProfile{}, fmt.Errorf("%w: got %d, want at least %d",
			ErrInsufficientSamples, len(samples), e.opts.MinCalibrationSamples)
	}

	profile := deriveProfile(samples, e.opts.Sensitivity, e.opts.ThresholdFloor)

	base := meanVector(samples)
	e.mu.Lock()
	e.profile = profile
	e.calibrated = true
	e.threshold = profile.Threshold
	e.base.seed(base[0], base[1], base[2])
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"samples":   profile.Samples,
		"mean":      profile.BaselineMean,
		"stddev":    profile.BaselineStdDev,
		"threshold": profile.Threshold,
	}).Info("calibration complete")

	return profile, nil
}

func (e *Engine) collectAtRest(window time.Duration) ([]sensor.Sample, error) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	var samples []sensor.Sample
	for {
		select {
		case <-deadline.C:
			return samples, nil
		case <-ticker.C:
			s, err := e.source.Read()
			if err != nil {
				return nil, err
			}
			samples = append(samples, s)
		}
	}
}

// deriveProfile computes the noise-floor statistics of an at-rest sample
// series: magnitudes are taken against the per-axis mean of the window
// itself.
func deriveProfile(samples []sensor.Sample, sensitivity, floor float64) CalibrationProfile {
	base := meanVector(samples)

	mags := make([]float64, len(samples))
	for i, s := range samples {
		mags[i] = Magnitude(s, base)
	}

	mean := 0.0
	for _, m := range mags {
		mean += m
	}
	mean /= float64(len(mags))

	variance := 0.0
	for _, m := range mags {
		d := m - mean
		variance += d * d
	}
	variance /= float64(len(mags))
	stddev := math.Sqrt(variance)

	threshold := mean + sensitivity*stddev
	if threshold < floor {
		threshold = floor
	}

	return CalibrationProfile{
		BaselineMean:   mean,
		BaselineStdDev: stddev,
		Threshold:      threshold,
		Samples:        len(samples),
		CalibratedAt:   time.Now(),
	}
}

func meanVector(samples []sensor.Sample) [3]float64 {
	var v [3]float64
	for _, s := range samples {
		v[0] += s.X
		v[1] += s.Y
		v[2] += s.Z
	}
	n := float64(len(samples))
	v[0] /= n
	v[1] /= n
	v[2] /= n
	return v
}
