// Package touch implements tap detection and calibration on top of a
// 3-axis acceleration source: noise-floor calibration, magnitude
// computation against a rolling baseline, a debounced trigger state
// machine, and a session controller that coordinates the sampling loop
// with concurrent status and tuning calls.
package touch

import "time"

// TouchEvent is a single detected tap. It is handed to the registered
// observer synchronously and not retained by the engine.
type TouchEvent struct {
	Time      time.Time `json:"ts"`
	Magnitude float64   `json:"magnitude"`
}

// Observer receives touch events. A failing or panicking observer is
// logged and never stops the detection loop.
type Observer interface {
	OnTouch(TouchEvent) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(TouchEvent) error

func (f ObserverFunc) OnTouch(e TouchEvent) error { return f(e) }

// CalibrationProfile is the result of one calibration run. Re-calibration
// replaces it wholesale.
type CalibrationProfile struct {
	BaselineMean   float64   `json:"baselineMean"`
	BaselineStdDev float64   `json:"baselineStdDev"`
	Threshold      float64   `json:"threshold"`
	Samples        int       `json:"samples"`
	CalibratedAt   time.Time `json:"calibratedAt"`
}

// EngineState is a point-in-time snapshot of the engine, safe to serialize.
type EngineState struct {
	HardwareAvailable bool       `json:"hardwareAvailable"`
	Calibrated        bool       `json:"calibrated"`
	Threshold         float64    `json:"threshold"`
	TouchCount        int        `json:"touchCount"`
	LastTouch         *time.Time `json:"lastTouch,omitempty"`
	Running           bool       `json:"running"`
}

// DetectionResult summarizes one bounded test session. Max and average are
// computed over every observed magnitude sample, not only triggering ones.
type DetectionResult struct {
	TouchesDetected int     `json:"touchesDetected"`
	MaxMagnitude    float64 `json:"maxMagnitude"`
	AvgMagnitude    float64 `json:"avgMagnitude"`
	WindowSeconds   float64 `json:"windowSeconds"`
}
