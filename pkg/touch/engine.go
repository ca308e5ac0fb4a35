package touch

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
)

// Options are the engine tunables. Zero values fall back to defaults.
type Options struct {
	// PollInterval is the sensor sampling cadence.
	PollInterval time.Duration
	// Debounce is the minimum inter-touch interval.
	Debounce time.Duration
	// Sensitivity is the k in threshold = mean + k*stddev.
	Sensitivity float64
	// ThresholdFloor is the lowest the threshold may go. A zero or
	// negative threshold would make every sample a trigger.
	ThresholdFloor float64
	// DefaultThreshold is used until a calibration run or an explicit
	// operator override replaces it.
	DefaultThreshold float64
	// MinCalibrationSamples is the fewest samples a calibration window
	// may contain before it is rejected.
	MinCalibrationSamples int
	// BaselineAlpha is the per-axis EWMA coefficient of the rolling
	// baseline.
	BaselineAlpha float64
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 15 * time.Millisecond
	}
	if o.Debounce <= 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.Sensitivity <= 0 {
		o.Sensitivity = 2.5
	}
	if o.ThresholdFloor <= 0 {
		o.ThresholdFloor = 0.5
	}
	if o.DefaultThreshold <= 0 {
		o.DefaultThreshold = 1.0
	}
	if o.MinCalibrationSamples <= 0 {
		o.MinCalibrationSamples = 20
	}
	if o.BaselineAlpha <= 0 {
		o.BaselineAlpha = 0.05
	}
	return o
}

// Engine owns the sampling-and-detection loop and coordinates it with
// concurrent control calls. Only the worker goroutine mutates touch count
// and last-touch; the tuner owns threshold writes; every read under the
// mutex sees a fully-formed value.
type Engine struct {
	opts   Options
	source sensor.Source

	mu          sync.Mutex
	hwAvailable bool
	calibrated  bool
	threshold   float64
	touchCount  int
	lastTouch   time.Time
	running     bool
	calibrating bool
	stopped     bool

	profile  CalibrationProfile
	base     *baseline
	observer Observer

	stopCh chan struct{}
	doneCh chan struct{}
}

// sessionOutcome is the finalized result of one session, delivered on a
// channel owned by that session so a racing restart can never clobber it.
type sessionOutcome struct {
	result DetectionResult
	err    error
}

// New builds an engine on the given source and probes the hardware once.
// A failed probe leaves the engine alive but with hardware marked
// unavailable; Reprobe can recover it.
func New(source sensor.Source, opts Options) *Engine {
	opts = opts.withDefaults()

	e := &Engine{
		opts:      opts,
		source:    source,
		threshold: opts.DefaultThreshold,
		base:      newBaseline(opts.BaselineAlpha),
	}

	if err := source.Probe(); err != nil {
		logrus.WithError(err).Warn("accelerometer probe failed, engine starts with hardware unavailable")
	} else {
		e.hwAvailable = true
	}

	return e
}

// SetObserver registers the touch event sink. Passing nil removes it.
func (e *Engine) SetObserver(o Observer) {
	e.mu.Lock()
	e.observer = o
	e.mu.Unlock()
}

// Status returns a consistent snapshot of the engine state.
func (e *Engine) Status() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := EngineState{
		HardwareAvailable: e.hwAvailable,
		Calibrated:        e.calibrated,
		Threshold:         e.threshold,
		TouchCount:        e.touchCount,
		Running:           e.running,
	}
	if !e.lastTouch.IsZero() {
		t := e.lastTouch
		st.LastTouch = &t
	}
	return st
}

// Profile returns the current calibration profile. The zero profile means
// no calibration has run yet.
func (e *Engine) Profile() CalibrationProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// Reprobe re-checks the hardware. It cannot run during an active session.
func (e *Engine) Reprobe() error {
	e.mu.Lock()
	if e.running || e.calibrating {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.mu.Unlock()

	err := e.source.Probe()

	e.mu.Lock()
	e.hwAvailable = err == nil
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
	}
	return nil
}

// Threshold returns the current detection threshold.
func (e *Engine) Threshold() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.threshold
}

// IncreaseThreshold raises the threshold by delta and returns the new
// value. It takes effect on the next poll cycle.
func (e *Engine) IncreaseThreshold(delta float64) (float64, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive, got %v", delta)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.threshold += delta
	return e.threshold, nil
}

// DecreaseThreshold lowers the threshold by delta, clamped to the floor.
func (e *Engine) DecreaseThreshold(delta float64) (float64, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive, got %v", delta)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.threshold -= delta
	if e.threshold < e.opts.ThresholdFloor {
		e.threshold = e.opts.ThresholdFloor
	}
	return e.threshold, nil
}

// SetThreshold sets the threshold to an explicit operator-chosen value,
// clamped to the floor. The engine counts this as calibrated: the
// threshold no longer sits at an undefined default.
func (e *Engine) SetThreshold(v float64) (float64, error) {
	if v <= 0 {
		return 0, fmt.Errorf("threshold must be positive, got %v", v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if v < e.opts.ThresholdFloor {
		v = e.opts.ThresholdFloor
	}
	e.threshold = v
	e.calibrated = true
	return e.threshold, nil
}

// Start begins an unbounded interactive session. It fails with
// ErrAlreadyRunning if one is active and ErrHardwareUnavailable if the
// sensor is gone.
func (e *Engine) Start() error {
	_, err := e.startSession(0)
	return err
}

// Test runs one bounded session and blocks until the window closes,
// returning the finalized statistics.
func (e *Engine) Test(window time.Duration) (DetectionResult, error) {
	if window <= 0 {
		return DetectionResult{}, fmt.Errorf("test window must be positive, got %v", window)
	}

	out, err := e.startSession(window)
	if err != nil {
		return DetectionResult{}, err
	}

	o := <-out
	if o.err != nil {
		return DetectionResult{}, o.err
	}
	return o.result, nil
}

// Stop requests the worker to exit at the next poll boundary and waits
// until it has fully stopped. It returns ErrNotRunning when nothing is
// running, with no side effects.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	if !e.stopped {
		e.stopped = true
		close(e.stopCh)
	}
	done := e.doneCh
	e.mu.Unlock()

	<-done
	return nil
}

func (e *Engine) startSession(window time.Duration) (<-chan sessionOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.calibrating {
		return nil, ErrAlreadyRunning
	}
	if e.doneCh != nil {
		// A prior session must have fully joined before a new one starts.
		select {
		case <-e.doneCh:
		default:
			return nil, ErrAlreadyRunning
		}
	}
	if !e.hwAvailable {
		return nil, ErrHardwareUnavailable
	}

	e.running = true
	e.stopped = false
	e.touchCount = 0
	e.lastTouch = time.Time{}
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	det := newDetector(e.opts.Debounce)
	det.reset()
	col := newCollector(time.Now())
	out := make(chan sessionOutcome, 1)

	logrus.WithFields(logrus.Fields{
		"threshold": e.threshold,
		"window":    window,
	}).Debug("detection session starting")

	go e.run(det, col, window, out, e.stopCh, e.doneCh)

	return out, nil
}

// run is the sampling worker. It is the only goroutine that mutates the
// touch counter, last-touch timestamp and session statistics.
func (e *Engine) run(det *detector, col *collector, window time.Duration, out chan<- sessionOutcome, stop chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if window > 0 {
		timer := time.NewTimer(window)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-stop:
			e.finishSession(col, out, nil)
			return
		case <-deadline:
			e.finishSession(col, out, nil)
			return
		case <-ticker.C:
			sample, err := e.source.Read()
			if err != nil {
				logrus.WithError(err).Error("sensor read failed, ending session")
				e.finishSession(col, out, fmt.Errorf("%w: %v", ErrHardwareUnavailable, err))
				return
			}
			e.processSample(det, col, sample)
		}
	}
}

func (e *Engine) processSample(det *detector, col *collector, sample sensor.Sample) {
	e.mu.Lock()
	base := e.base.vector()
	if !e.base.primed {
		e.base.seed(sample.X, sample.Y, sample.Z)
		base = e.base.vector()
	}
	threshold := e.threshold
	e.mu.Unlock()

	mag := Magnitude(sample, base)
	col.observe(mag)

	if mag <= threshold {
		e.mu.Lock()
		e.base.update(sample)
		e.mu.Unlock()
	}

	if !det.process(mag, threshold, sample.Time) {
		return
	}

	ev := TouchEvent{Time: sample.Time, Magnitude: mag}

	e.mu.Lock()
	e.touchCount++
	e.lastTouch = ev.Time
	count := e.touchCount
	obs := e.observer
	e.mu.Unlock()

	col.event()

	logrus.WithFields(logrus.Fields{
		"magnitude":  mag,
		"threshold":  threshold,
		"touchCount": count,
	}).Debug("touch detected")

	notify(obs, ev)
}

// notify delivers one event to the observer. Detection matters more than
// feedback delivery: errors are logged and panics recovered.
func notify(obs Observer, ev TouchEvent) {
	if obs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("touch observer panicked: %v", r)
		}
	}()
	if err := obs.OnTouch(ev); err != nil {
		logrus.WithError(err).Warn("touch observer failed")
	}
}

func (e *Engine) finishSession(col *collector, out chan<- sessionOutcome, sessionErr error) {
	result := col.result(time.Now())

	e.mu.Lock()
	e.running = false
	if sessionErr != nil {
		e.hwAvailable = false
	}
	e.mu.Unlock()

	// Buffered and owned by this session, so the send never blocks and a
	// later session cannot overtake it.
	out <- sessionOutcome{result: result, err: sessionErr}

	logrus.WithFields(logrus.Fields{
		"touches":       result.TouchesDetected,
		"maxMagnitude":  result.MaxMagnitude,
		"avgMagnitude":  result.AvgMagnitude,
		"windowSeconds": result.WindowSeconds,
	}).Debug("detection session finished")
}
