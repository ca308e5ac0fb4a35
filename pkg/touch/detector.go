package touch

import "time"

// detectorState is the trigger state machine state.
type detectorState int

const (
	stateIdle detectorState = iota
	stateTriggered
	stateDebounce
)

func (s detectorState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateTriggered:
		return "Triggered"
	case stateDebounce:
		return "Debounce"
	}
	return "Unknown"
}

// detector decides when a magnitude stream contains a discrete tap. A tap
// is an up-crossing of the threshold; after each tap further crossings are
// ignored for the debounce window so one physical tap's ringing is never
// counted twice. After the window the magnitude must fall back to or below
// the threshold before the detector re-arms, so a signal held above the
// threshold produces exactly one event.
type detector struct {
	debounce time.Duration

	state     detectorState
	reArmAt   time.Time
	prevAbove bool
}

func newDetector(debounce time.Duration) *detector {
	return &detector{debounce: debounce}
}

// reset returns the machine to Idle. Called at session start.
func (d *detector) reset() {
	d.state = stateIdle
	d.reArmAt = time.Time{}
	d.prevAbove = false
}

// process consumes one magnitude sample and reports whether it triggers a
// touch event. It is deterministic in (magnitude, threshold, now).
func (d *detector) process(magnitude, threshold float64, now time.Time) bool {
	above := magnitude > threshold
	defer func() { d.prevAbove = above }()

	switch d.state {
	case stateDebounce:
		if now.Before(d.reArmAt) {
			return false
		}
		d.state = stateIdle
		fallthrough
	case stateIdle:
		if above && !d.prevAbove {
			d.state = stateTriggered
			// Triggered is transient: exactly one event per crossing,
			// then straight into the debounce window.
			d.state = stateDebounce
			d.reArmAt = now.Add(d.debounce)
			return true
		}
	}

	return false
}
