package touch

import "errors"

var (
	// ErrHardwareUnavailable is returned when the accelerometer cannot be
	// reached. Once a probe or a mid-session read fails, every operation
	// that needs sampling fails fast with this error until an explicit
	// re-probe succeeds.
	ErrHardwareUnavailable = errors.New("accelerometer hardware unavailable")

	// ErrInsufficientSamples is returned when a calibration window ended
	// with too few valid samples. The previous profile is kept.
	ErrInsufficientSamples = errors.New("not enough samples collected to calibrate")

	// ErrAlreadyRunning is returned when a session or calibration is
	// requested while one is already active.
	ErrAlreadyRunning = errors.New("a detection session is already running")

	// ErrNotRunning is returned by Stop when no session is active.
	ErrNotRunning = errors.New("no detection session is running")
)
