package touch

import (
	"errors"
	"sync"
	"time"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
)

// scriptedSource is a fake accelerometer. It sits at 1g on Z and injects
// an X-axis spike on the call numbers listed in spikes, which makes event
// timing a function of the poll count instead of the wall clock.
type scriptedSource struct {
	mu       sync.Mutex
	calls    int
	probeErr error
	readErr  error
	// failAfter makes Read fail once this many reads have happened.
	// Zero disables it.
	failAfter int
	spikes    map[int]float64
}

func (s *scriptedSource) Probe() error { return s.probeErr }

func (s *scriptedSource) Read() (sensor.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return sensor.Sample{}, s.readErr
	}
	s.calls++
	if s.failAfter > 0 && s.calls > s.failAfter {
		return sensor.Sample{}, errors.New("i2c read failed")
	}

	sample := sensor.Sample{Z: 1.0, Time: time.Now()}
	if amp, ok := s.spikes[s.calls]; ok {
		sample.X = amp
	}
	return sample, nil
}

func (s *scriptedSource) Close() error { return nil }

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// waitForCalls blocks until the source has served at least n reads or the
// timeout expires.
func (s *scriptedSource) waitForCalls(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.callCount() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func testOptions() Options {
	return Options{
		PollInterval:          time.Millisecond,
		Debounce:              5 * time.Millisecond,
		Sensitivity:           2.5,
		ThresholdFloor:        0.5,
		DefaultThreshold:      1.0,
		MinCalibrationSamples: 5,
	}
}
