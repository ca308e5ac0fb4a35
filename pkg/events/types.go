package events

import "encoding/json"

// Event name constants
const (
	TouchDetected    = "touch.detected"
	SessionStarted   = "session.started"
	SessionStopped   = "session.stopped"
	CalibrationDone  = "calibration.done"
	ThresholdChanged = "threshold.changed"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// TouchDetectedEvent is the typed payload for touch.detected. This is the
// feedback contract with the LED/audio sinks: one event per detected tap.
type TouchDetectedEvent struct {
	Device     string  `json:"device"`
	Magnitude  float64 `json:"magnitude"`
	TouchCount int     `json:"touchCount"`
	Ts         int64   `json:"ts"`
}

// SessionEvent is the typed payload for session.started/session.stopped.
type SessionEvent struct {
	Device  string `json:"device"`
	Bounded bool   `json:"bounded"`
	Ts      int64  `json:"ts"`
}

// CalibrationDoneEvent is the typed payload for calibration.done.
type CalibrationDoneEvent struct {
	Device    string  `json:"device"`
	Threshold float64 `json:"threshold"`
	Samples   int     `json:"samples"`
	Ts        int64   `json:"ts"`
}

// ThresholdChangedEvent is the typed payload for threshold.changed.
type ThresholdChangedEvent struct {
	Device    string  `json:"device"`
	Threshold float64 `json:"threshold"`
	Ts        int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
